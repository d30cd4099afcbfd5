package domain

import "time"

// ActivityKind classifies an analytics activity point.
type ActivityKind string

const (
	ActivityPurchase ActivityKind = "PURCHASE"
	ActivityVote     ActivityKind = "VOTE"
	ActivityProposal ActivityKind = "PROPOSAL"
	ActivityCancel   ActivityKind = "CANCEL"
)

// String returns the string representation of ActivityKind.
func (k ActivityKind) String() string {
	return string(k)
}

// IsValid checks if the kind is a known value.
func (k ActivityKind) IsValid() bool {
	switch k {
	case ActivityPurchase, ActivityVote, ActivityProposal, ActivityCancel:
		return true
	}
	return false
}

// ActivityPoint is one row of holder activity derived from an event.
// Corresponds to holder_activity table in ClickHouse.
type ActivityPoint struct {
	ActivityID string       // PRIMARY KEY, deterministic hash
	EventID    string       // source event
	Sequence   uint64       // source event sequence
	Kind       ActivityKind // PURCHASE | VOTE | PROPOSAL | CANCEL
	Holder     Holder       // buyer, voter or proposer
	Subject    string       // "item:7", "proposal:3"
	Amount     uint64       // unit price for purchases, weight for votes
	Direction  int8         // +1 for, -1 against, 0 otherwise
	Timestamp  time.Time
}

// ActivitySummary aggregates activity points of one kind.
type ActivitySummary struct {
	Kind    ActivityKind
	Count   uint64
	Amount  uint64 // sum of Amount
	Holders uint64 // distinct holders
}
