package governance

import (
	"time"

	"collection-governance/internal/domain"
)

// Thresholds are the approval criteria applied after a voting window closes.
type Thresholds struct {
	MinVotesToApprove  uint64
	MinTokensToApprove uint64
}

// Evaluate computes the status of p at now. Cancellation overrides every
// other state. After the window, a proposal is approved only when it reaches
// both quorums and has strictly more weight for than against.
func Evaluate(p domain.Proposal, th Thresholds, now time.Time) domain.ProposalStatus {
	switch {
	case p.Cancelled:
		return domain.ProposalStatusCancelled
	case now.Before(p.StartTime):
		return domain.ProposalStatusPending
	case !now.After(p.EndTime):
		return domain.ProposalStatusVoting
	}

	if p.UniqueVoters >= th.MinVotesToApprove &&
		p.TotalVotingPower() >= th.MinTokensToApprove &&
		p.VotesFor > p.VotesAgainst {
		return domain.ProposalStatusApproved
	}
	return domain.ProposalStatusRejected
}

// Status returns the status of proposal id at now under the current thresholds.
func (e *Engine) Status(id domain.ProposalID, now time.Time) domain.ProposalStatus {
	p, err := e.get(id)
	if err != nil {
		return domain.ProposalStatusNotFound
	}
	return Evaluate(p.Proposal, e.Thresholds(), now)
}

// Thresholds returns the approval criteria currently in force.
func (e *Engine) Thresholds() Thresholds {
	return Thresholds{
		MinVotesToApprove:  e.cfg.MinVotesToApprove,
		MinTokensToApprove: e.cfg.MinTokensToApprove,
	}
}
