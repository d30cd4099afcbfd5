package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"collection-governance/internal/domain"
	"collection-governance/internal/observability"
	"collection-governance/internal/storage"
)

// EventStore implements storage.EventStore using PostgreSQL.
type EventStore struct {
	pool *Pool
}

// NewEventStore creates a new EventStore.
func NewEventStore(pool *Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

const selectEvents = `
	SELECT sequence, event_id, name, occurred_at, payload
	FROM events
`

// AppendBulk adds events atomically. Fails entire batch on any duplicate sequence or event_id.
func (s *EventStore) AppendBulk(ctx context.Context, events []*domain.Event) (err error) {
	if len(events) == 0 {
		return nil
	}

	start := time.Now()
	defer func() {
		observability.RecordDBQuery("postgres", "append_events", time.Since(start).Seconds(), err)
	}()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO events (sequence, event_id, name, subject, occurred_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, e := range events {
		if e == nil || e.Sequence == 0 || e.Payload == nil {
			return storage.ErrInvalidInput
		}
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", e.Name, err)
		}

		_, err = tx.Exec(ctx, query,
			int64(e.Sequence),
			e.ID,
			string(e.Name),
			e.Payload.Subject(),
			e.OccurredAt,
			payload,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert event %d: %w", e.Sequence, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetAll retrieves every event ordered by sequence ASC.
func (s *EventStore) GetAll(ctx context.Context) ([]*domain.Event, error) {
	rows, err := s.pool.Query(ctx, selectEvents+` ORDER BY sequence ASC`)
	if err != nil {
		return nil, fmt.Errorf("get all events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetAfter retrieves events with sequence > after, ordered by sequence ASC.
func (s *EventStore) GetAfter(ctx context.Context, after uint64) ([]*domain.Event, error) {
	rows, err := s.pool.Query(ctx, selectEvents+` WHERE sequence > $1 ORDER BY sequence ASC`, int64(after))
	if err != nil {
		return nil, fmt.Errorf("get events after %d: %w", after, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetByName retrieves events of one kind, ordered by sequence ASC.
func (s *EventStore) GetByName(ctx context.Context, name domain.EventName) ([]*domain.Event, error) {
	rows, err := s.pool.Query(ctx, selectEvents+` WHERE name = $1 ORDER BY sequence ASC`, string(name))
	if err != nil {
		return nil, fmt.Errorf("get events by name: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// LastSequence returns the highest stored sequence, or 0 when empty.
func (s *EventStore) LastSequence(ctx context.Context) (uint64, error) {
	var last int64
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(sequence), 0) FROM events`).Scan(&last)
	if err != nil {
		if isNotFoundError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get last sequence: %w", err)
	}
	return uint64(last), nil
}

// scanEvents scans multiple rows into a slice of Event.
func scanEvents(rows pgx.Rows) ([]*domain.Event, error) {
	var events []*domain.Event

	for rows.Next() {
		var (
			e       domain.Event
			seq     int64
			name    string
			payload []byte
		)

		if err := rows.Scan(&seq, &e.ID, &name, &e.OccurredAt, &payload); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}

		p, err := domain.DecodePayload(domain.EventName(name), payload)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", seq, err)
		}

		e.Sequence = uint64(seq)
		e.Name = domain.EventName(name)
		e.OccurredAt = e.OccurredAt.UTC()
		e.Payload = p
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}

	return events, nil
}
