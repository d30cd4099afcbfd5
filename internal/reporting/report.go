package reporting

import (
	"time"

	"collection-governance/internal/domain"
)

// Report represents the collection and governance report structure.
type Report struct {
	// Metadata
	GeneratedAt  time.Time
	LastSequence uint64
	EventCount   int

	// Collection Summary
	Collection CollectionSummary

	// Governance Summary
	Governance GovernanceSummary

	// Holders (sorted by purchased DESC, holder ASC)
	Holders []HolderRow

	// Proposals (sorted by id ASC)
	Proposals []ProposalRow

	// Activity by kind (empty when no activity store is configured)
	Activity []ActivityRow
}

// CollectionSummary describes the allocation ledger.
type CollectionSummary struct {
	Name         string
	Symbol       string
	TotalSupply  uint64
	Sold         uint64
	Available    uint64
	PricePerItem uint64
	MaxPerHolder uint64
	BaseURI      string
	Revenue      uint64 // sold * price, in payment-token base units
	HolderCount  int
	Withdrawn    uint64 // sum of PaymentWithdrawn amounts
}

// GovernanceSummary describes thresholds and proposal outcomes.
type GovernanceSummary struct {
	MinProposalVotes   uint64
	MinVotesToApprove  uint64
	MinTokensToApprove uint64
	LedgerReference    domain.Holder
	TotalProposals     uint64
	ByStatus           map[domain.ProposalStatus]int
}

// HolderRow represents one holder.
type HolderRow struct {
	Holder         domain.Holder
	Purchased      uint64
	VotingPower    uint64
	RemainingQuota uint64
	Proposals      int
	Votes          int
}

// ProposalRow represents one proposal with its status at report time.
type ProposalRow struct {
	ID           domain.ProposalID
	Proposer     domain.Holder
	Username     string
	Description  string
	StartTime    time.Time
	EndTime      time.Time
	Status       domain.ProposalStatus
	VotesFor     uint64
	VotesAgainst uint64
	UniqueVoters uint64
}

// ActivityRow summarizes holder activity of one kind.
type ActivityRow struct {
	Kind    domain.ActivityKind
	Count   uint64
	Amount  uint64
	Holders uint64
}
