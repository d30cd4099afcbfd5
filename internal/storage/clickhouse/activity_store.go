package clickhouse

import (
	"context"
	"fmt"
	"time"

	"collection-governance/internal/domain"
	"collection-governance/internal/observability"
	"collection-governance/internal/storage"
)

// ActivityStore implements storage.ActivityStore using ClickHouse.
type ActivityStore struct {
	conn *Conn
}

// NewActivityStore creates a new ActivityStore.
func NewActivityStore(conn *Conn) *ActivityStore {
	return &ActivityStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ActivityStore = (*ActivityStore)(nil)

const selectActivity = `
	SELECT activity_id, event_id, sequence, kind, holder, subject, amount, direction, timestamp
	FROM holder_activity FINAL
`

// InsertBulk adds multiple points. Fails entire batch on duplicate activity_id.
func (s *ActivityStore) InsertBulk(ctx context.Context, points []*domain.ActivityPoint) (err error) {
	if len(points) == 0 {
		return nil
	}

	start := time.Now()
	defer func() {
		observability.RecordDBQuery("clickhouse", "insert_activity", time.Since(start).Seconds(), err)
	}()

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(points))
	ids := make([]string, 0, len(points))
	for _, p := range points {
		if p == nil || p.ActivityID == "" || !p.Kind.IsValid() {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[p.ActivityID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[p.ActivityID] = struct{}{}
		ids = append(ids, p.ActivityID)
	}

	// Check for duplicates against existing DB rows
	var existing uint64
	err = s.conn.QueryRow(ctx, `SELECT count() FROM holder_activity WHERE activity_id IN (?)`, ids).Scan(&existing)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if existing > 0 {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO holder_activity (
			activity_id, event_id, sequence, kind, holder, subject, amount, direction, timestamp
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.ActivityID, p.EventID, p.Sequence, string(p.Kind),
			string(p.Holder), p.Subject, p.Amount, p.Direction, p.Timestamp.UTC(),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByHolder retrieves all points for a holder, ordered by (timestamp, sequence) ASC.
func (s *ActivityStore) GetByHolder(ctx context.Context, holder domain.Holder) ([]*domain.ActivityPoint, error) {
	query := selectActivity + `
		WHERE holder = ?
		ORDER BY timestamp ASC, sequence ASC, activity_id ASC
	`

	rows, err := s.conn.Query(ctx, query, string(holder))
	if err != nil {
		return nil, fmt.Errorf("query by holder: %w", err)
	}
	defer rows.Close()

	return scanActivity(rows)
}

// GetByTimeRange retrieves points within [start, end] (inclusive).
func (s *ActivityStore) GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.ActivityPoint, error) {
	query := selectActivity + `
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC, sequence ASC, activity_id ASC
	`

	rows, err := s.conn.Query(ctx, query, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanActivity(rows)
}

// Summarize aggregates all points per kind, ordered by kind ASC.
func (s *ActivityStore) Summarize(ctx context.Context) ([]domain.ActivitySummary, error) {
	query := `
		SELECT kind, count() AS cnt, sum(amount) AS total, uniqExact(holder) AS holders
		FROM holder_activity FINAL
		GROUP BY kind
		ORDER BY kind ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("summarize activity: %w", err)
	}
	defer rows.Close()

	var result []domain.ActivitySummary
	for rows.Next() {
		var (
			kind string
			sum  domain.ActivitySummary
		)
		if err := rows.Scan(&kind, &sum.Count, &sum.Amount, &sum.Holders); err != nil {
			return nil, fmt.Errorf("scan activity summary row: %w", err)
		}
		sum.Kind = domain.ActivityKind(kind)
		result = append(result, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity summary rows: %w", err)
	}

	return result, nil
}

// scanActivity scans multiple rows.
func scanActivity(rows chRows) ([]*domain.ActivityPoint, error) {
	var points []*domain.ActivityPoint

	for rows.Next() {
		var (
			p      domain.ActivityPoint
			kind   string
			holder string
		)

		err := rows.Scan(
			&p.ActivityID, &p.EventID, &p.Sequence, &kind,
			&holder, &p.Subject, &p.Amount, &p.Direction, &p.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}

		p.Kind = domain.ActivityKind(kind)
		p.Holder = domain.Holder(holder)
		p.Timestamp = p.Timestamp.UTC()
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity rows: %w", err)
	}

	return points, nil
}
