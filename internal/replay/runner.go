package replay

import (
	"context"
	"fmt"

	"collection-governance/internal/storage"
)

// Runner loads events from the event log and replays them in sequence order.
type Runner struct {
	store storage.EventStore
}

// NewRunner creates a new replay runner.
func NewRunner(store storage.EventStore) *Runner {
	return &Runner{store: store}
}

// RunAll replays the whole log through engine and returns the last sequence.
func (r *Runner) RunAll(ctx context.Context, engine ReplayEngine) (uint64, error) {
	return r.RunAfter(ctx, 0, engine)
}

// RunAfter replays events with sequence > after through engine and returns
// the last sequence applied, or after when there is nothing to apply.
// The log must continue from after without gaps.
func (r *Runner) RunAfter(ctx context.Context, after uint64, engine ReplayEngine) (uint64, error) {
	events, err := r.store.GetAfter(ctx, after)
	if err != nil {
		return after, fmt.Errorf("load events: %w", err)
	}

	if err := CheckOrdering(events, after); err != nil {
		return after, err
	}

	last := after
	for _, event := range events {
		if err := engine.OnEvent(ctx, event); err != nil {
			return last, err
		}
		last = event.Sequence
	}

	return last, nil
}
