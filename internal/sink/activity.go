package sink

import (
	"context"
	"fmt"

	"collection-governance/internal/domain"
	"collection-governance/internal/idhash"
	"collection-governance/internal/storage"
)

// ActivitySink derives holder activity points and stores them.
type ActivitySink struct {
	store storage.ActivityStore
}

// NewActivitySink creates a sink backed by store.
func NewActivitySink(store storage.ActivityStore) *ActivitySink {
	return &ActivitySink{store: store}
}

// Publish stores the activity points derived from events.
// Events without holder activity are skipped.
func (s *ActivitySink) Publish(ctx context.Context, events []*domain.Event) error {
	var points []*domain.ActivityPoint
	for _, ev := range events {
		points = append(points, DeriveActivity(ev)...)
	}
	if len(points) == 0 {
		return nil
	}
	if err := s.store.InsertBulk(ctx, points); err != nil {
		return fmt.Errorf("insert %d activity points: %w", len(points), err)
	}
	return nil
}

// DeriveActivity maps an event to its activity points.
// Cancellations carry no holder because the event names only the proposal.
func DeriveActivity(ev *domain.Event) []*domain.ActivityPoint {
	point := func(kind domain.ActivityKind, holder domain.Holder, amount uint64, direction int8) []*domain.ActivityPoint {
		return []*domain.ActivityPoint{{
			ActivityID: idhash.ComputeActivityID(ev.ID, kind.String(), 0),
			EventID:    ev.ID,
			Sequence:   ev.Sequence,
			Kind:       kind,
			Holder:     holder,
			Subject:    ev.Payload.Subject(),
			Amount:     amount,
			Direction:  direction,
			Timestamp:  ev.OccurredAt,
		}}
	}

	switch p := ev.Payload.(type) {
	case domain.ItemAllocated:
		return point(domain.ActivityPurchase, p.Buyer, p.UnitPrice, 0)
	case domain.VoteCast:
		direction := int8(-1)
		if p.Support {
			direction = 1
		}
		return point(domain.ActivityVote, p.Voter, p.Weight, direction)
	case domain.ProposalCreated:
		return point(domain.ActivityProposal, p.Proposer, 0, 0)
	case domain.ProposalCancelled:
		return point(domain.ActivityCancel, "", 0, 0)
	default:
		return nil
	}
}
