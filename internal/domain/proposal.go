package domain

import "time"

// ProposalID is a sequential proposal identifier starting at 0.
type ProposalID uint64

// ProposalMetadata is descriptive data attached to a proposal.
// It is stored and echoed back, never interpreted.
type ProposalMetadata struct {
	Username    string
	Description string
	Link        string // optional
}

// Proposal is a snapshot of a governance proposal.
type Proposal struct {
	ID           ProposalID
	Proposer     Holder
	Metadata     ProposalMetadata
	CreatedAt    time.Time
	StartTime    time.Time // voting opens (inclusive)
	EndTime      time.Time // voting closes (inclusive)
	VotesFor     uint64
	VotesAgainst uint64
	UniqueVoters uint64
	Cancelled    bool
}

// TotalVotingPower returns the combined weight of all cast votes.
func (p Proposal) TotalVotingPower() uint64 {
	return p.VotesFor + p.VotesAgainst
}

// Ballot records a single vote as cast.
type Ballot struct {
	ProposalID ProposalID
	Voter      Holder
	Support    bool
	Weight     uint64 // voting power at cast time
	CastAt     time.Time
}

// ProposalStatus is the computed lifecycle state of a proposal.
type ProposalStatus string

const (
	ProposalStatusNotFound  ProposalStatus = "NOT_FOUND"
	ProposalStatusCancelled ProposalStatus = "CANCELLED"
	ProposalStatusPending   ProposalStatus = "PENDING"
	ProposalStatusVoting    ProposalStatus = "VOTING"
	ProposalStatusApproved  ProposalStatus = "APPROVED"
	ProposalStatusRejected  ProposalStatus = "REJECTED"
)

// String returns the string representation of ProposalStatus.
func (s ProposalStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known value.
func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalStatusNotFound, ProposalStatusCancelled, ProposalStatusPending,
		ProposalStatusVoting, ProposalStatusApproved, ProposalStatusRejected:
		return true
	}
	return false
}

// IsFinal reports whether the status can no longer change with time.
func (s ProposalStatus) IsFinal() bool {
	return s == ProposalStatusCancelled || s == ProposalStatusApproved || s == ProposalStatusRejected
}
