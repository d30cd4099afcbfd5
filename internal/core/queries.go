package core

import (
	"context"
	"time"

	"collection-governance/internal/domain"
	"collection-governance/internal/governance"
)

// CollectionInfo summarizes the ledger.
type CollectionInfo struct {
	Config         domain.LedgerConfig
	Address        domain.Holder
	Sold           uint64
	Available      uint64
	Holders        int
	PaymentBalance uint64
}

// ItemView is an item with its resolved metadata URI.
type ItemView struct {
	domain.Item
	URI string
}

// HolderView is everything known about one holder.
type HolderView struct {
	Holder         domain.Holder
	Purchased      uint64
	RemainingQuota uint64
	VotingPower    uint64
	Items          []domain.ItemID
	NextProposalAt time.Time // zero means now
}

// ProposalView is a proposal with its status at query time.
type ProposalView struct {
	domain.Proposal
	Status domain.ProposalStatus
}

// Collection returns the ledger summary.
func (c *Core) Collection(ctx context.Context) (CollectionInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	balance, err := c.ledger.PaymentBalance(ctx)
	if err != nil {
		return CollectionInfo{}, err
	}
	return CollectionInfo{
		Config:         c.ledger.Config(),
		Address:        c.ledger.Address(),
		Sold:           c.ledger.SoldCount(),
		Available:      c.ledger.AvailableCount(),
		Holders:        len(c.ledger.Holders()),
		PaymentBalance: balance,
	}, nil
}

// AvailableCount returns the number of unsold items.
func (c *Core) AvailableCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.AvailableCount()
}

// Item returns item id with its resolved URI.
func (c *Core) Item(id domain.ItemID) (ItemView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, err := c.ledger.Item(id)
	if err != nil {
		return ItemView{}, err
	}
	uri, err := c.ledger.ResolveURI(id)
	if err != nil {
		return ItemView{}, err
	}
	return ItemView{Item: item, URI: uri}, nil
}

// Holder returns the purchase and governance view of h.
func (c *Core) Holder(h domain.Holder) HolderView {
	c.mu.Lock()
	defer c.mu.Unlock()

	return HolderView{
		Holder:         h,
		Purchased:      c.ledger.Purchased(h),
		RemainingQuota: c.ledger.RemainingQuota(h),
		VotingPower:    c.gov.VotingPower(h),
		Items:          c.ledger.ItemsOf(h),
		NextProposalAt: c.gov.NextProposalAllowedAt(h),
	}
}

// Proposal returns proposal id with its status now.
func (c *Core) Proposal(id domain.ProposalID) (ProposalView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.gov.Proposal(id)
	if err != nil {
		return ProposalView{}, err
	}
	return ProposalView{Proposal: p, Status: governance.Evaluate(p, c.gov.Thresholds(), c.Now())}, nil
}

// Proposals returns every proposal in id order with its status now.
func (c *Core) Proposals() []ProposalView {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.Now()
	th := c.gov.Thresholds()
	all := c.gov.Proposals()
	out := make([]ProposalView, len(all))
	for i, p := range all {
		out[i] = ProposalView{Proposal: p, Status: governance.Evaluate(p, th, now)}
	}
	return out
}

// Status returns the status of proposal id now; NOT_FOUND for unknown ids.
func (c *Core) Status(id domain.ProposalID) domain.ProposalStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gov.Status(id, c.Now())
}

// Ballots returns the votes on proposal id in cast order.
func (c *Core) Ballots(id domain.ProposalID) ([]domain.Ballot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gov.Ballots(id)
}

// HasVoted reports whether holder voted on proposal id.
func (c *Core) HasVoted(id domain.ProposalID, holder domain.Holder) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gov.HasVoted(id, holder)
}

// Governance returns the current governance configuration.
func (c *Core) Governance() domain.GovernanceConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gov.Config()
}

// LedgerReference returns the voting power source address.
func (c *Core) LedgerReference() domain.Holder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gov.LedgerReference()
}
