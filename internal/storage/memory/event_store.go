package memory

import (
	"context"
	"sort"
	"sync"

	"collection-governance/internal/domain"
	"collection-governance/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu   sync.RWMutex
	data []*domain.Event // ordered by sequence
	seqs map[uint64]bool
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		data: make([]*domain.Event, 0),
		seqs: make(map[uint64]bool),
	}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// AppendBulk adds events atomically. Fails entire batch on any duplicate sequence.
func (s *EventStore) AppendBulk(_ context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[uint64]bool, len(events))
	for _, e := range events {
		if e == nil || e.Sequence == 0 || e.Payload == nil {
			return storage.ErrInvalidInput
		}
		if s.seqs[e.Sequence] || batch[e.Sequence] {
			return storage.ErrDuplicateKey
		}
		batch[e.Sequence] = true
	}

	for _, e := range events {
		copy := *e
		s.data = append(s.data, &copy)
		s.seqs[e.Sequence] = true
	}
	sort.SliceStable(s.data, func(i, j int) bool {
		return s.data[i].Sequence < s.data[j].Sequence
	})

	return nil
}

// GetAll retrieves every event ordered by sequence ASC.
func (s *EventStore) GetAll(_ context.Context) ([]*domain.Event, error) {
	return s.filter(func(*domain.Event) bool { return true }), nil
}

// GetAfter retrieves events with sequence > after.
func (s *EventStore) GetAfter(_ context.Context, after uint64) ([]*domain.Event, error) {
	return s.filter(func(e *domain.Event) bool { return e.Sequence > after }), nil
}

// GetByName retrieves events of one kind.
func (s *EventStore) GetByName(_ context.Context, name domain.EventName) ([]*domain.Event, error) {
	return s.filter(func(e *domain.Event) bool { return e.Name == name }), nil
}

// LastSequence returns the highest stored sequence, or 0 when empty.
func (s *EventStore) LastSequence(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data) == 0 {
		return 0, nil
	}
	return s.data[len(s.data)-1].Sequence, nil
}

func (s *EventStore) filter(keep func(*domain.Event) bool) []*domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Event
	for _, e := range s.data {
		if keep(e) {
			copy := *e
			result = append(result, &copy)
		}
	}
	return result
}
