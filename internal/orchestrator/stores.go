package orchestrator

import (
	"context"
	"fmt"
	"log"

	"collection-governance/internal/config"
	"collection-governance/internal/storage"
	chstore "collection-governance/internal/storage/clickhouse"
	"collection-governance/internal/storage/memory"
	"collection-governance/internal/storage/migrations"
	pgstore "collection-governance/internal/storage/postgres"
)

// Stores holds the event log and the activity analytics store.
type Stores struct {
	Events   storage.EventStore
	Activity storage.ActivityStore
	close    func()
}

// MemoryStores returns empty in-memory stores.
func MemoryStores() *Stores {
	return &Stores{
		Events:   memory.NewEventStore(),
		Activity: memory.NewActivityStore(),
		close:    func() {},
	}
}

// OpenStores connects to the configured storage. PostgreSQL holds the event
// log and ClickHouse the activity analytics; both are migrated on open.
func OpenStores(ctx context.Context, cfg config.StorageConfig, logger *log.Logger) (*Stores, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.UseMemory {
		logger.Println("Using in-memory storage")
		return MemoryStores(), nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate clickhouse: %w", err)
	}
	logger.Println("Connected to PostgreSQL and ClickHouse")

	return &Stores{
		Events:   pgstore.NewEventStore(pool),
		Activity: chstore.NewActivityStore(chConn),
		close: func() {
			chConn.Close()
			pool.Close()
		},
	}, nil
}

// Close releases the underlying connections.
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}
