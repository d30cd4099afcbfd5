package core

import (
	"context"
	"time"

	"collection-governance/internal/domain"
	"collection-governance/internal/observability"
)

// Purchase buys quantity items for buyer.
func (c *Core) Purchase(ctx context.Context, buyer domain.Holder, quantity uint64) ([]domain.ItemID, error) {
	var ids []domain.ItemID
	err := c.run(ctx, "purchase", func(time.Time) error {
		var err error
		ids, err = c.ledger.Purchase(ctx, buyer, quantity)
		return err
	})

	code := "OK"
	if err != nil {
		code = domain.Code(err)
	}
	observability.RecordPurchase(code, len(ids), uint64(len(ids))*c.ledger.PricePerItem())
	if err == nil {
		observability.UpdateItemsAvailable(c.AvailableCount())
	}
	return ids, err
}

// SetBaseURI replaces the collection base URI.
func (c *Core) SetBaseURI(ctx context.Context, caller domain.Holder, uri string) error {
	return c.run(ctx, "set_base_uri", func(time.Time) error {
		return c.ledger.SetBaseURI(caller, uri)
	})
}

// SetItemURI sets or clears the URI override of one item.
func (c *Core) SetItemURI(ctx context.Context, caller domain.Holder, id domain.ItemID, uri string) error {
	return c.run(ctx, "set_item_uri", func(time.Time) error {
		return c.ledger.SetItemURI(caller, id, uri)
	})
}

// Withdraw sweeps the ledger's payment balance to the administrator.
func (c *Core) Withdraw(ctx context.Context, caller domain.Holder) (uint64, error) {
	var amount uint64
	err := c.run(ctx, "withdraw", func(time.Time) error {
		var err error
		amount, err = c.ledger.Withdraw(ctx, caller)
		return err
	})
	return amount, err
}
