// Package sink delivers committed events to external consumers: the durable
// event log, activity analytics, a websocket stream, Kafka and Redis.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"collection-governance/internal/domain"
	"collection-governance/internal/observability"
)

// Sink receives batches of committed events in sequence order.
type Sink interface {
	Publish(ctx context.Context, events []*domain.Event) error
}

// Func adapts a function to Sink.
type Func func(ctx context.Context, events []*domain.Event) error

// Publish calls f(ctx, events).
func (f Func) Publish(ctx context.Context, events []*domain.Event) error {
	return f(ctx, events)
}

// Discard drops every event.
var Discard Sink = Func(func(context.Context, []*domain.Event) error { return nil })

// Named labels a sink for logs and metrics.
type Named struct {
	Name string
	Sink Sink
}

// Multi fans a batch out to several sinks. Every sink is attempted even when
// an earlier one fails.
type Multi struct {
	sinks  []Named
	logger *log.Logger
}

// NewMulti creates a fan-out sink. logger may be nil.
func NewMulti(logger *log.Logger, sinks ...Named) *Multi {
	if logger == nil {
		logger = log.Default()
	}
	return &Multi{sinks: sinks, logger: logger}
}

// Add appends a sink.
func (m *Multi) Add(name string, s Sink) {
	m.sinks = append(m.sinks, Named{Name: name, Sink: s})
}

// Len returns the number of sinks.
func (m *Multi) Len() int {
	return len(m.sinks)
}

// Publish delivers events to every sink and joins their errors.
func (m *Multi) Publish(ctx context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	var errs []error
	for _, s := range m.sinks {
		start := time.Now()
		err := s.Sink.Publish(ctx, events)
		observability.RecordSinkPublish(s.Name, time.Since(start).Seconds(), err)
		if err != nil {
			m.logger.Printf("sink %s: publish %d events (seq %d-%d): %v",
				s.Name, len(events), events[0].Sequence, events[len(events)-1].Sequence, err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Envelope is the JSON wire form of an event shared by the stream sinks.
type Envelope struct {
	ID         string           `json:"id"`
	Sequence   uint64           `json:"sequence"`
	Name       domain.EventName `json:"name"`
	Subject    string           `json:"subject"`
	OccurredAt time.Time        `json:"occurred_at"`
	Payload    domain.Payload   `json:"payload"`
}

// NewEnvelope wraps ev for the wire.
func NewEnvelope(ev *domain.Event) Envelope {
	return Envelope{
		ID:         ev.ID,
		Sequence:   ev.Sequence,
		Name:       ev.Name,
		Subject:    ev.Payload.Subject(),
		OccurredAt: ev.OccurredAt,
		Payload:    ev.Payload,
	}
}

// Encode marshals ev as an Envelope.
func Encode(ev *domain.Event) ([]byte, error) {
	data, err := json.Marshal(NewEnvelope(ev))
	if err != nil {
		return nil, fmt.Errorf("encode event %d: %w", ev.Sequence, err)
	}
	return data, nil
}

// DecodeEnvelope restores an event from its Envelope encoding.
func DecodeEnvelope(data []byte) (*domain.Event, error) {
	var raw struct {
		ID         string           `json:"id"`
		Sequence   uint64           `json:"sequence"`
		Name       domain.EventName `json:"name"`
		OccurredAt time.Time        `json:"occurred_at"`
		Payload    json.RawMessage  `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	payload, err := domain.DecodePayload(raw.Name, raw.Payload)
	if err != nil {
		return nil, err
	}
	return &domain.Event{
		ID:         raw.ID,
		Sequence:   raw.Sequence,
		Name:       raw.Name,
		OccurredAt: raw.OccurredAt,
		Payload:    payload,
	}, nil
}
