// Package core serializes every operation on the allocation ledger and the
// governance engine, and turns their state changes into sequenced events.
//
// A Core holds a single mutex. Each operation reads the clock once, runs
// against the components, and on success stamps the pending payloads with
// contiguous sequence numbers and deterministic ids before handing them to
// the event log and then the sink. A failed operation publishes nothing.
//
// The event log must stay contiguous for replay. Events the log rejects are
// kept in order and appended ahead of the next batch.
package core

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"collection-governance/internal/domain"
	"collection-governance/internal/governance"
	"collection-governance/internal/idhash"
	"collection-governance/internal/ledger"
	"collection-governance/internal/observability"
	"collection-governance/internal/sink"
)

// Options configures a new Core.
type Options struct {
	Ledger     *ledger.Ledger
	Governance *governance.Engine
	Clock      Clock       // nil uses SystemClock
	Log        sink.Sink   // durable event log; nil discards events
	Sink       sink.Sink   // fan-out consumers; nil discards events
	Logger     *log.Logger // nil uses log.Default()
	// LastSequence is the sequence of the last event already in the log.
	LastSequence uint64
}

// Core is the mutual-exclusion boundary around ledger and governance state.
type Core struct {
	mu       sync.Mutex
	ledger   *ledger.Ledger
	gov      *governance.Engine
	clock    Clock
	eventLog sink.Sink
	sink     sink.Sink
	logger   *log.Logger
	seq      uint64
	pending  []domain.Payload
	backlog  []*domain.Event
}

// New wires a ledger and a governance engine. Both components' emitters are
// replaced so that their events flow through the Core.
func New(opts Options) (*Core, error) {
	if opts.Ledger == nil {
		return nil, errors.New("core: ledger is required")
	}
	if opts.Governance == nil {
		return nil, errors.New("core: governance engine is required")
	}

	c := &Core{
		ledger:   opts.Ledger,
		gov:      opts.Governance,
		clock:    opts.Clock,
		eventLog: opts.Log,
		sink:     opts.Sink,
		logger:   opts.Logger,
		seq:      opts.LastSequence,
	}
	if c.clock == nil {
		c.clock = SystemClock
	}
	if c.eventLog == nil {
		c.eventLog = sink.Discard
	}
	if c.sink == nil {
		c.sink = sink.Discard
	}
	if c.logger == nil {
		c.logger = log.Default()
	}

	collect := domain.EmitterFunc(func(p domain.Payload) {
		c.pending = append(c.pending, p)
	})
	c.ledger.SetEmitter(collect)
	c.gov.SetEmitter(collect)

	observability.UpdateItemsAvailable(c.ledger.AvailableCount())
	return c, nil
}

// LastSequence returns the sequence of the last committed event.
func (c *Core) LastSequence() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Now returns the current operation time as the Core sees it.
func (c *Core) Now() time.Time {
	return normalize(c.clock.Now())
}

// run executes op under the lock and commits the events it emitted.
func (c *Core) run(ctx context.Context, op string, fn func(now time.Time) error) error {
	start := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.Now()
	c.pending = c.pending[:0]

	err := fn(now)
	if err != nil {
		c.pending = c.pending[:0]
		observability.RecordOperation(op, domain.Code(err), string(domain.CategoryOf(err)), time.Since(start).Seconds())
		return err
	}

	c.commit(ctx, now)
	observability.RecordOperation(op, "", "", time.Since(start).Seconds())
	return nil
}

// commit stamps pending payloads, appends them to the event log and
// publishes them. Publish failures are logged; committed state is never
// rolled back.
func (c *Core) commit(ctx context.Context, now time.Time) {
	if len(c.pending) == 0 {
		return
	}

	events := make([]*domain.Event, len(c.pending))
	for i, p := range c.pending {
		c.seq++
		events[i] = &domain.Event{
			ID:         idhash.ComputeEventID(c.seq, p.EventName(), p.Subject(), now.UnixNano()),
			Sequence:   c.seq,
			Name:       p.EventName(),
			OccurredAt: now,
			Payload:    p,
		}
	}
	c.pending = c.pending[:0]

	observability.RecordEventsCommitted(len(events), c.seq)
	c.backlog = append(c.backlog, events...)
	if err := c.flush(ctx); err != nil {
		c.logger.Printf("append events %d-%d to log (%d pending): %v",
			c.backlog[0].Sequence, c.seq, len(c.backlog), err)
	}
	if err := c.sink.Publish(ctx, events); err != nil {
		c.logger.Printf("publish events %d-%d: %v", events[0].Sequence, c.seq, err)
	}
}

// flush appends the backlog to the event log as one batch. On failure the
// backlog is kept whole so the next attempt starts at the same sequence.
func (c *Core) flush(ctx context.Context) error {
	if len(c.backlog) == 0 {
		return nil
	}

	start := time.Now()
	err := c.eventLog.Publish(ctx, c.backlog)
	observability.RecordSinkPublish("log", time.Since(start).Seconds(), err)
	if err == nil {
		c.backlog = nil
	}
	observability.UpdateEventLogBacklog(len(c.backlog))
	return err
}

// Flush retries appending events the event log rejected earlier.
func (c *Core) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flush(ctx)
}

// Backlog returns the number of committed events not yet in the event log.
func (c *Core) Backlog() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.backlog)
}

// View runs fn with exclusive access to both components. fn must not retain
// them or call back into the Core.
func (c *Core) View(fn func(l *ledger.Ledger, g *governance.Engine)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.ledger, c.gov)
}
