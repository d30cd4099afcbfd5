package replay

import (
	"fmt"
	"sort"

	"collection-governance/internal/domain"
)

// SortEvents orders events by sequence ASC.
func SortEvents(events []*domain.Event) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].Sequence < events[j].Sequence
	})
}

// CheckOrdering verifies that events continue the log after sequence after
// without gaps or repeats.
func CheckOrdering(events []*domain.Event, after uint64) error {
	want := after + 1
	for i, ev := range events {
		if ev.Sequence != want {
			return fmt.Errorf("event %d has sequence %d, expected %d: %w", i, ev.Sequence, want, ErrInvalidOrdering)
		}
		want++
	}
	return nil
}
