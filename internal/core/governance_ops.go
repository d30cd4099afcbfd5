package core

import (
	"context"
	"time"

	"collection-governance/internal/domain"
	"collection-governance/internal/governance"
	"collection-governance/internal/observability"
)

// CreateProposal opens a proposal whose voting window is [start, end].
func (c *Core) CreateProposal(ctx context.Context, proposer domain.Holder, meta domain.ProposalMetadata, start, end time.Time) (domain.ProposalID, error) {
	var id domain.ProposalID
	err := c.run(ctx, "create_proposal", func(now time.Time) error {
		var err error
		id, err = c.gov.CreateProposal(proposer, meta, normalize(start), normalize(end), now)
		return err
	})
	if err == nil {
		observability.RecordProposalCreated()
	}
	return id, err
}

// Vote casts voter's current voting power on proposal id.
func (c *Core) Vote(ctx context.Context, voter domain.Holder, id domain.ProposalID, support bool) (domain.Ballot, error) {
	var b domain.Ballot
	err := c.run(ctx, "vote", func(now time.Time) error {
		var err error
		b, err = c.gov.Vote(voter, id, support, now)
		return err
	})
	if err == nil {
		observability.RecordVote(b.Support, b.Weight)
	}
	return b, err
}

// CancelProposal cancels proposal id on behalf of its proposer.
func (c *Core) CancelProposal(ctx context.Context, caller domain.Holder, id domain.ProposalID) error {
	err := c.run(ctx, "cancel_proposal", func(now time.Time) error {
		return c.gov.CancelProposal(caller, id, now)
	})
	if err == nil {
		observability.RecordProposalCancelled()
	}
	return err
}

// UpdateThreshold changes one governance threshold.
func (c *Core) UpdateThreshold(ctx context.Context, caller domain.Holder, th domain.Threshold, value uint64) error {
	return c.run(ctx, "update_threshold", func(time.Time) error {
		return c.gov.UpdateThreshold(caller, th, value)
	})
}

// UpdateLedgerReference points governance at another voting power source.
// The Core keeps selling from its own ledger.
func (c *Core) UpdateLedgerReference(ctx context.Context, caller domain.Holder, src governance.VotingPowerSource) error {
	return c.run(ctx, "update_ledger_reference", func(time.Time) error {
		return c.gov.UpdateLedgerReference(caller, src)
	})
}
