package governance

import (
	"time"

	"collection-governance/internal/domain"
)

// Config returns the current thresholds.
func (e *Engine) Config() domain.GovernanceConfig {
	return e.cfg
}

// LedgerReference returns the address of the voting power source.
func (e *Engine) LedgerReference() domain.Holder {
	return e.power.Address()
}

// VotingPower returns the live voting power of holder.
func (e *Engine) VotingPower(holder domain.Holder) uint64 {
	return e.power.VotingPower(holder)
}

// TotalProposals returns the number of proposals ever created.
func (e *Engine) TotalProposals() uint64 {
	return uint64(len(e.proposals))
}

// Proposal returns a snapshot of proposal id.
func (e *Engine) Proposal(id domain.ProposalID) (domain.Proposal, error) {
	p, err := e.get(id)
	if err != nil {
		return domain.Proposal{}, err
	}
	return p.Proposal, nil
}

// Proposals returns snapshots of all proposals in id order.
func (e *Engine) Proposals() []domain.Proposal {
	out := make([]domain.Proposal, len(e.proposals))
	for i, p := range e.proposals {
		out[i] = p.Proposal
	}
	return out
}

// HasVoted reports whether holder voted on proposal id.
func (e *Engine) HasVoted(id domain.ProposalID, holder domain.Holder) (bool, error) {
	p, err := e.get(id)
	if err != nil {
		return false, err
	}
	_, ok := p.ballots[holder]
	return ok, nil
}

// Ballots returns the votes on proposal id in cast order.
func (e *Engine) Ballots(id domain.ProposalID) ([]domain.Ballot, error) {
	p, err := e.get(id)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Ballot, len(p.voters))
	for i, v := range p.voters {
		out[i] = p.ballots[v]
	}
	return out, nil
}

// UniqueVoters returns the number of distinct voters on proposal id.
func (e *Engine) UniqueVoters(id domain.ProposalID) (uint64, error) {
	p, err := e.get(id)
	if err != nil {
		return 0, err
	}
	return p.UniqueVoters, nil
}

// TotalVotingPower returns the combined weight cast on proposal id.
func (e *Engine) TotalVotingPower(id domain.ProposalID) (uint64, error) {
	p, err := e.get(id)
	if err != nil {
		return 0, err
	}
	return p.TotalVotingPower(), nil
}

// NextProposalAllowedAt returns when proposer may next create a proposal.
// The zero time means immediately.
func (e *Engine) NextProposalAllowedAt(proposer domain.Holder) time.Time {
	last, ok := e.lastProposal[proposer]
	if !ok {
		return time.Time{}
	}
	return last.Add(e.cfg.ProposalCooldown)
}
