package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collection-governance/internal/domain"
	"collection-governance/internal/storage"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func activity(id string, seq uint64, kind domain.ActivityKind, holder domain.Holder, amount uint64, offset time.Duration) *domain.ActivityPoint {
	return &domain.ActivityPoint{
		ActivityID: id,
		EventID:    "event-" + id,
		Sequence:   seq,
		Kind:       kind,
		Holder:     holder,
		Subject:    "item:1",
		Amount:     amount,
		Timestamp:  t0.Add(offset),
	}
}

func TestActivityStore_InsertAndGetByHolder(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewActivityStore(conn)
	ctx := context.Background()

	points := []*domain.ActivityPoint{
		activity("p1", 1, domain.ActivityPurchase, "alice", 1_000_000, 0),
		activity("p2", 2, domain.ActivityPurchase, "bob", 1_000_000, time.Second),
		activity("v1", 4, domain.ActivityVote, "alice", 1, 2*time.Hour),
	}
	points[2].Direction = 1
	points[2].Subject = "proposal:0"

	require.NoError(t, store.InsertBulk(ctx, points))

	alice, err := store.GetByHolder(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 2)
	assert.Equal(t, domain.ActivityPurchase, alice[0].Kind)
	assert.Equal(t, int8(1), alice[1].Direction)
	assert.True(t, alice[1].Timestamp.Equal(t0.Add(2*time.Hour)))
}

func TestActivityStore_Duplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewActivityStore(conn)
	ctx := context.Background()

	p := activity("p1", 1, domain.ActivityPurchase, "alice", 10, 0)
	require.NoError(t, store.InsertBulk(ctx, []*domain.ActivityPoint{p}))

	err := store.InsertBulk(ctx, []*domain.ActivityPoint{p})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	err = store.InsertBulk(ctx, []*domain.ActivityPoint{
		activity("x", 2, domain.ActivityVote, "bob", 1, 0),
		activity("x", 3, domain.ActivityVote, "bob", 1, 0),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestActivityStore_TimeRangeAndSummary(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewActivityStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.ActivityPoint{
		activity("p1", 1, domain.ActivityPurchase, "alice", 100, 0),
		activity("p2", 2, domain.ActivityPurchase, "alice", 100, time.Minute),
		activity("p3", 3, domain.ActivityPurchase, "bob", 100, 2*time.Minute),
		activity("c1", 4, domain.ActivityProposal, "bob", 0, 3*time.Minute),
	}))

	window, err := store.GetByTimeRange(ctx, t0.Add(time.Minute), t0.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, "p2", window[0].ActivityID)
	assert.Equal(t, "p3", window[1].ActivityID)

	summary, err := store.Summarize(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, domain.ActivitySummary{Kind: domain.ActivityPurchase, Count: 3, Amount: 300, Holders: 2}, summary[1])
}
