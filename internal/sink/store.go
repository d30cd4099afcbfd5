package sink

import (
	"context"
	"errors"
	"fmt"

	"collection-governance/internal/domain"
	"collection-governance/internal/storage"
)

// StoreSink appends events to the durable event log.
type StoreSink struct {
	store storage.EventStore
}

// NewStoreSink creates a sink backed by store.
func NewStoreSink(store storage.EventStore) *StoreSink {
	return &StoreSink{store: store}
}

// Publish appends events in one batch. A retried batch may overlap events
// the store already holds when an earlier append committed but reported an
// error; those are skipped and the remainder appended.
func (s *StoreSink) Publish(ctx context.Context, events []*domain.Event) error {
	err := s.store.AppendBulk(ctx, events)
	if errors.Is(err, storage.ErrDuplicateKey) {
		err = s.appendMissing(ctx, events)
	}
	if err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	return nil
}

// appendMissing appends the events the store does not hold yet. An event
// whose sequence is stored under a different id is a real conflict.
func (s *StoreSink) appendMissing(ctx context.Context, events []*domain.Event) error {
	stored, err := s.store.GetAfter(ctx, events[0].Sequence-1)
	if err != nil {
		return err
	}
	ids := make(map[uint64]string, len(stored))
	for _, e := range stored {
		ids[e.Sequence] = e.ID
	}

	var rest []*domain.Event
	for _, e := range events {
		id, ok := ids[e.Sequence]
		if !ok {
			rest = append(rest, e)
			continue
		}
		if id != e.ID {
			return fmt.Errorf("event %d already stored as %s: %w", e.Sequence, id, storage.ErrDuplicateKey)
		}
	}
	return s.store.AppendBulk(ctx, rest)
}
