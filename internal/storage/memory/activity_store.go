package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"collection-governance/internal/domain"
	"collection-governance/internal/storage"
)

// ActivityStore is an in-memory implementation of storage.ActivityStore.
type ActivityStore struct {
	mu   sync.RWMutex
	data []*domain.ActivityPoint
	keys map[string]bool
}

// NewActivityStore creates a new in-memory activity store.
func NewActivityStore() *ActivityStore {
	return &ActivityStore{
		data: make([]*domain.ActivityPoint, 0),
		keys: make(map[string]bool),
	}
}

// Compile-time interface check.
var _ storage.ActivityStore = (*ActivityStore)(nil)

// InsertBulk adds multiple points atomically. Fails entire batch on duplicate activity_id.
func (s *ActivityStore) InsertBulk(_ context.Context, points []*domain.ActivityPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[string]bool, len(points))
	for _, p := range points {
		if p == nil || p.ActivityID == "" || !p.Kind.IsValid() {
			return storage.ErrInvalidInput
		}
		if s.keys[p.ActivityID] || batch[p.ActivityID] {
			return storage.ErrDuplicateKey
		}
		batch[p.ActivityID] = true
	}

	for _, p := range points {
		copy := *p
		s.data = append(s.data, &copy)
		s.keys[p.ActivityID] = true
	}

	return nil
}

// GetByHolder retrieves all points for a holder.
func (s *ActivityStore) GetByHolder(_ context.Context, holder domain.Holder) ([]*domain.ActivityPoint, error) {
	return s.filter(func(p *domain.ActivityPoint) bool { return p.Holder == holder }), nil
}

// GetByTimeRange retrieves points within [start, end] (inclusive).
func (s *ActivityStore) GetByTimeRange(_ context.Context, start, end time.Time) ([]*domain.ActivityPoint, error) {
	return s.filter(func(p *domain.ActivityPoint) bool {
		return !p.Timestamp.Before(start) && !p.Timestamp.After(end)
	}), nil
}

// Summarize aggregates all points per kind.
func (s *ActivityStore) Summarize(_ context.Context) ([]domain.ActivitySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKind := make(map[domain.ActivityKind]*domain.ActivitySummary)
	holders := make(map[domain.ActivityKind]map[domain.Holder]bool)
	for _, p := range s.data {
		sum, ok := byKind[p.Kind]
		if !ok {
			sum = &domain.ActivitySummary{Kind: p.Kind}
			byKind[p.Kind] = sum
			holders[p.Kind] = make(map[domain.Holder]bool)
		}
		sum.Count++
		sum.Amount += p.Amount
		holders[p.Kind][p.Holder] = true
	}

	result := make([]domain.ActivitySummary, 0, len(byKind))
	for kind, sum := range byKind {
		sum.Holders = uint64(len(holders[kind]))
		result = append(result, *sum)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Kind < result[j].Kind
	})
	return result, nil
}

func (s *ActivityStore) filter(keep func(*domain.ActivityPoint) bool) []*domain.ActivityPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ActivityPoint
	for _, p := range s.data {
		if keep(p) {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.Before(result[j].Timestamp)
		}
		if result[i].Sequence != result[j].Sequence {
			return result[i].Sequence < result[j].Sequence
		}
		return result[i].ActivityID < result[j].ActivityID
	})
	return result
}
