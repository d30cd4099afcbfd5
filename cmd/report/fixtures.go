package main

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"log"
	"time"

	"collection-governance/internal/address"
	"collection-governance/internal/config"
	"collection-governance/internal/core"
	"collection-governance/internal/domain"
	"collection-governance/internal/orchestrator"
)

var (
	fixtureStart = time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC)
	fixtureEnd   = fixtureStart.Add(72 * time.Hour)
)

// fixtureHolder derives a deterministic demo address.
func fixtureHolder(n byte) (domain.Holder, error) {
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 0xd0
	seed[1] = n
	return address.FromPublicKey(ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey))
}

// loadFixtures runs a short demo history against in-memory stores: five
// holders buy items, two proposals are opened and voted on, one of them is
// cancelled.
func loadFixtures(ctx context.Context, cfg *config.Config, logger *log.Logger) (*orchestrator.Stores, error) {
	holders := make([]domain.Holder, 5)
	for i := range holders {
		h, err := fixtureHolder(byte(i + 1))
		if err != nil {
			return nil, err
		}
		holders[i] = h
	}

	demo := *cfg
	demo.Payment.Balances = nil
	for _, h := range holders {
		demo.Payment.Balances = append(demo.Payment.Balances, config.BalanceConfig{
			Holder: h.String(),
			Amount: cfg.Collection.PricePerItem * cfg.Collection.MaxPerHolder,
		})
	}

	now := fixtureStart
	stores := orchestrator.MemoryStores()
	o, err := orchestrator.New(ctx, orchestrator.Options{
		Config: &demo,
		Logger: logger,
		Clock:  core.ClockFunc(func() time.Time { return now }),
		Stores: stores,
	})
	if err != nil {
		return nil, err
	}
	defer o.Close()

	c := o.Core
	quantities := []uint64{10, 10, 6, 3, 1}
	for i, h := range holders {
		quantity := min(quantities[i], cfg.Collection.MaxPerHolder)
		if _, err := c.Purchase(ctx, h, quantity); err != nil {
			return nil, fmt.Errorf("fixture purchase %d: %w", i, err)
		}
		now = now.Add(time.Minute)
	}

	quest, err := c.CreateProposal(ctx, holders[0], domain.ProposalMetadata{
		Username:    "dwarf-one",
		Description: "Commission a second art season",
		Link:        "https://example.org/season-two",
	}, now.Add(time.Hour), now.Add(25*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("fixture proposal: %w", err)
	}
	treasury, err := c.CreateProposal(ctx, holders[1], domain.ProposalMetadata{
		Username:    "dwarf-two",
		Description: "Move the treasury to a multisig",
	}, now.Add(time.Hour), now.Add(49*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("fixture proposal: %w", err)
	}

	now = now.Add(2 * time.Hour)
	for i, h := range holders {
		if _, err := c.Vote(ctx, h, quest, i != 3); err != nil {
			return nil, fmt.Errorf("fixture vote %d: %w", i, err)
		}
	}
	if _, err := c.Vote(ctx, holders[2], treasury, false); err != nil {
		return nil, fmt.Errorf("fixture vote: %w", err)
	}
	if err := c.CancelProposal(ctx, holders[1], treasury); err != nil {
		return nil, fmt.Errorf("fixture cancel: %w", err)
	}

	logger.Printf("Loaded fixture history: %d events", c.LastSequence())
	return stores, nil
}
