package storage

import (
	"context"
	"time"

	"collection-governance/internal/domain"
)

// EventStore provides access to the committed event log.
// Events are append-only and keyed by sequence.
type EventStore interface {
	// AppendBulk adds events atomically. Returns ErrDuplicateKey if any sequence exists.
	AppendBulk(ctx context.Context, events []*domain.Event) error

	// GetAll retrieves every event ordered by sequence ASC.
	GetAll(ctx context.Context) ([]*domain.Event, error)

	// GetAfter retrieves events with sequence > after, ordered by sequence ASC.
	GetAfter(ctx context.Context, after uint64) ([]*domain.Event, error)

	// GetByName retrieves events of one kind, ordered by sequence ASC.
	GetByName(ctx context.Context, name domain.EventName) ([]*domain.Event, error)

	// LastSequence returns the highest stored sequence, or 0 when empty.
	LastSequence(ctx context.Context) (uint64, error)
}

// ActivityStore provides access to holder_activity analytics storage.
type ActivityStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate activity_id.
	InsertBulk(ctx context.Context, points []*domain.ActivityPoint) error

	// GetByHolder retrieves all points for a holder, ordered by (timestamp, sequence) ASC.
	GetByHolder(ctx context.Context, holder domain.Holder) ([]*domain.ActivityPoint, error)

	// GetByTimeRange retrieves points within [start, end] (inclusive), ordered by (timestamp, sequence) ASC.
	GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.ActivityPoint, error)

	// Summarize aggregates all points per kind, ordered by kind ASC.
	Summarize(ctx context.Context) ([]domain.ActivitySummary, error)
}
