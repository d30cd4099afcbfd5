package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collection-governance/internal/domain"
	"collection-governance/internal/storage"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newEvent(seq uint64, p domain.Payload) *domain.Event {
	return &domain.Event{
		ID:         fmt.Sprintf("event-%d", seq),
		Sequence:   seq,
		Name:       p.EventName(),
		OccurredAt: t0.Add(time.Duration(seq) * time.Second),
		Payload:    p,
	}
}

func TestEventStore_AppendAndGetAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(pool)
	ctx := context.Background()

	events := []*domain.Event{
		newEvent(1, domain.ItemAllocated{ItemID: 1, Buyer: "buyer", UnitPrice: 1_000_000}),
		newEvent(2, domain.ProposalCreated{
			ProposalID:  0,
			Proposer:    "buyer",
			Username:    "enano",
			Description: "First proposal",
			StartTime:   t0.Add(time.Hour),
			EndTime:     t0.Add(25 * time.Hour),
		}),
		newEvent(3, domain.VoteCast{ProposalID: 0, Voter: "buyer", Support: true, Weight: 1}),
	}
	require.NoError(t, store.AppendBulk(ctx, events))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.Equal(t, uint64(1), all[0].Sequence)
	assert.Equal(t, events[0].Payload, all[0].Payload)
	assert.True(t, all[0].OccurredAt.Equal(events[0].OccurredAt))

	created, ok := all[1].Payload.(domain.ProposalCreated)
	require.True(t, ok, "expected ProposalCreated, got %T", all[1].Payload)
	assert.Equal(t, "First proposal", created.Description)
	assert.True(t, created.EndTime.Equal(t0.Add(25*time.Hour)))

	last, err := store.LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), last)
}

func TestEventStore_DuplicateSequence(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(pool)
	ctx := context.Background()

	first := newEvent(1, domain.BaseURIUpdated{URI: "ipfs://a/"})
	require.NoError(t, store.AppendBulk(ctx, []*domain.Event{first}))

	dup := newEvent(1, domain.BaseURIUpdated{URI: "ipfs://b/"})
	dup.ID = "other-id"
	err := store.AppendBulk(ctx, []*domain.Event{newEvent(2, domain.BaseURIUpdated{URI: "ipfs://c/"}), dup})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Whole batch rolled back.
	last, err := store.LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), last)
}

func TestEventStore_GetAfterAndByName(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(pool)
	ctx := context.Background()

	require.NoError(t, store.AppendBulk(ctx, []*domain.Event{
		newEvent(1, domain.ItemAllocated{ItemID: 1, Buyer: "a", UnitPrice: 1}),
		newEvent(2, domain.ItemAllocated{ItemID: 2, Buyer: "a", UnitPrice: 1}),
		newEvent(3, domain.ThresholdUpdated{Threshold: domain.ThresholdMinVotesToApprove, Old: 10, New: 3}),
	}))

	after, err := store.GetAfter(ctx, 1)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, uint64(2), after[0].Sequence)

	th, err := store.GetByName(ctx, domain.EventMinVotesToApproveUpdated)
	require.NoError(t, err)
	require.Len(t, th, 1)
	assert.Equal(t, domain.ThresholdUpdated{Threshold: domain.ThresholdMinVotesToApprove, Old: 10, New: 3}, th[0].Payload)
}

func TestEventStore_EmptyLog(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(pool)
	ctx := context.Background()

	last, err := store.LastSequence(ctx)
	require.NoError(t, err)
	assert.Zero(t, last)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
