package governance

import (
	"fmt"
	"time"

	"collection-governance/internal/domain"
)

// ApplyCreated restores a proposal from the event log. at is the creation time.
func (e *Engine) ApplyCreated(ev domain.ProposalCreated, at time.Time) error {
	if want := domain.ProposalID(len(e.proposals)); ev.ProposalID != want {
		return fmt.Errorf("proposal %d restored out of sequence, expected %d: %w", ev.ProposalID, want, domain.ErrInvalidReference)
	}
	meta := domain.ProposalMetadata{Username: ev.Username, Description: ev.Description, Link: ev.Link}
	e.store(ev.ProposalID, ev.Proposer, meta, ev.StartTime, ev.EndTime, at)
	return nil
}

// ApplyVote restores a vote with the weight recorded at cast time.
func (e *Engine) ApplyVote(ev domain.VoteCast, at time.Time) error {
	p, err := e.get(ev.ProposalID)
	if err != nil {
		return err
	}
	if _, voted := p.ballots[ev.Voter]; voted {
		return fmt.Errorf("voter %s on proposal %d: %w", ev.Voter, ev.ProposalID, domain.ErrAlreadyVoted)
	}
	p.record(domain.Ballot{ProposalID: ev.ProposalID, Voter: ev.Voter, Support: ev.Support, Weight: ev.Weight, CastAt: at})
	return nil
}

// ApplyCancelled restores a cancellation.
func (e *Engine) ApplyCancelled(ev domain.ProposalCancelled) error {
	p, err := e.get(ev.ProposalID)
	if err != nil {
		return err
	}
	p.Cancelled = true
	return nil
}

// ApplyThreshold restores a threshold change.
func (e *Engine) ApplyThreshold(ev domain.ThresholdUpdated) error {
	target, err := e.thresholdField(ev.Threshold)
	if err != nil {
		return err
	}
	*target = ev.New
	return nil
}

// ApplyLedgerReference restores a voting power source change.
func (e *Engine) ApplyLedgerReference(ev domain.LedgerReferenceUpdated, src VotingPowerSource) error {
	if src == nil || src.Address() != ev.New {
		return fmt.Errorf("no voting power source for %s: %w", ev.New, domain.ErrInvalidReference)
	}
	e.power = src
	return nil
}
