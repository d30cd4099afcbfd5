package migrations

import (
	"context"
	"fmt"
	"log"

	"collection-governance/internal/storage/postgres"
)

// RunPostgresMigrations applies the Postgres set in order. Every file uses
// IF NOT EXISTS, so reapplying on each start is safe.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}

	migs, err := Postgres.Load()
	if err != nil {
		return err
	}
	for _, m := range migs {
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply %s migration %s: %w", Postgres.Name, m.File, err)
		}
		logger.Printf("Applied %s migration %s", Postgres.Name, m.File)
	}
	return nil
}
