// Package orchestrator assembles the service from configuration.
// Startup order: storage, payment token, state rebuilt from the event log,
// sinks, then the Core that serves every operation.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"collection-governance/internal/config"
	"collection-governance/internal/core"
	"collection-governance/internal/domain"
	"collection-governance/internal/observability"
	"collection-governance/internal/replay"
	"collection-governance/internal/sink"
	"collection-governance/internal/token"
)

// Options for creating an Orchestrator.
type Options struct {
	Config *config.Config
	Logger *log.Logger // nil uses log.Default()
	Clock  core.Clock  // nil uses core.SystemClock
	// Stores overrides the configured storage. The orchestrator does not
	// close stores it did not open.
	Stores *Stores
}

// Orchestrator owns the running components of the service.
type Orchestrator struct {
	Core          *core.Core
	Hub           *sink.Hub
	Stores        *Stores
	Payment       *token.MemoryToken
	LedgerAddress domain.Holder
	// Replayed is the number of events applied at startup.
	Replayed uint64

	ownStores bool
	closers   []io.Closer
	logger    *log.Logger
}

// New opens storage, rebuilds state from the event log and wires the sinks.
func New(ctx context.Context, opts Options) (*Orchestrator, error) {
	if opts.Config == nil {
		return nil, errors.New("orchestrator: config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	cfg := opts.Config

	o := &Orchestrator{Stores: opts.Stores, logger: logger}
	if o.Stores == nil {
		stores, err := OpenStores(ctx, cfg.Storage, logger)
		if err != nil {
			return nil, err
		}
		o.Stores = stores
		o.ownStores = true
	}

	if err := o.init(ctx, cfg, opts.Clock); err != nil {
		o.Close()
		return nil, err
	}
	return o, nil
}

func (o *Orchestrator) init(ctx context.Context, cfg *config.Config, clock core.Clock) error {
	ledgerAddr, err := cfg.LedgerAddress()
	if err != nil {
		return fmt.Errorf("derive ledger address: %w", err)
	}
	o.LedgerAddress = ledgerAddr
	// Balances are seeded fresh on every start; replay does not debit them.
	o.Payment = NewPaymentToken(cfg.Payment, ledgerAddr)

	state, err := replay.NewState(StateOptions(cfg, ledgerAddr, o.Payment.Client(ledgerAddr)))
	if err != nil {
		return fmt.Errorf("init state: %w", err)
	}

	start := time.Now()
	n, err := replay.NewRunner(o.Stores.Events).RunAll(ctx, state)
	if err != nil {
		return fmt.Errorf("replay event log: %w", err)
	}
	o.Replayed = n
	observability.RecordReplay(time.Now().Unix())
	o.logger.Printf("Replayed %d events in %v (last sequence %d)", n, time.Since(start), state.LastSequence)

	sinks, err := o.buildSinks(ctx, cfg)
	if err != nil {
		return err
	}

	c, err := core.New(core.Options{
		Ledger:       state.Ledger,
		Governance:   state.Governance,
		Clock:        clock,
		Log:          sink.NewStoreSink(o.Stores.Events),
		Sink:         sinks,
		Logger:       o.logger,
		LastSequence: state.LastSequence,
	})
	if err != nil {
		return err
	}
	o.Core = c
	observability.UpdateItemsAvailable(state.Ledger.AvailableCount())
	return nil
}

func (o *Orchestrator) buildSinks(ctx context.Context, cfg *config.Config) (*sink.Multi, error) {
	o.Hub = sink.NewHub(nil, o.logger)
	o.closers = append(o.closers, o.Hub)

	multi := sink.NewMulti(o.logger,
		sink.Named{Name: "activity", Sink: sink.NewActivitySink(o.Stores.Activity)},
		sink.Named{Name: "stream", Sink: o.Hub},
	)

	if cfg.Kafka.Enabled {
		k, err := sink.NewKafkaSink(sink.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		if err != nil {
			return nil, err
		}
		o.closers = append(o.closers, k)
		multi.Add("kafka", k)
		o.logger.Printf("Publishing events to Kafka topic %s", cfg.Kafka.Topic)
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.Timeout,
			ReadTimeout:  cfg.Redis.Timeout,
			WriteTimeout: cfg.Redis.Timeout,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		o.closers = append(o.closers, client)

		r, err := sink.NewRedisSink(client, sink.RedisConfig{Stream: cfg.Redis.Stream, MaxLen: cfg.Redis.MaxLen})
		if err != nil {
			return nil, err
		}
		multi.Add("redis", r)
		o.logger.Printf("Publishing events to Redis stream %s", cfg.Redis.Stream)
	}

	return multi, nil
}

// Close appends any events still pending for the event log, then stops the
// sinks and, when opened here, the stores.
func (o *Orchestrator) Close() error {
	var errs []error
	if o.Core != nil {
		if err := o.Core.Flush(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("flush event log (%d events lost): %w", o.Core.Backlog(), err))
		}
	}
	for i := len(o.closers) - 1; i >= 0; i-- {
		if err := o.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	o.closers = nil
	if o.ownStores && o.Stores != nil {
		o.Stores.Close()
		o.Stores = nil
	}
	return errors.Join(errs...)
}

// NewPaymentToken creates the in-process payment token with the configured
// opening balances, each approved in full for the ledger.
func NewPaymentToken(cfg config.PaymentConfig, ledgerAddr domain.Holder) *token.MemoryToken {
	tok := token.NewMemoryToken(cfg.Symbol)
	for _, b := range cfg.Balances {
		holder := domain.Holder(b.Holder)
		tok.Mint(holder, b.Amount)
		tok.Approve(holder, ledgerAddr, b.Amount)
	}
	return tok
}

// StateOptions returns the parameters for rebuilding state from events.
func StateOptions(cfg *config.Config, ledgerAddr domain.Holder, payment token.Port) replay.StateOptions {
	return replay.StateOptions{
		Ledger:        cfg.Ledger(),
		Governance:    cfg.GovernanceRules(),
		LedgerAddress: ledgerAddr,
		Payment:       payment,
	}
}
