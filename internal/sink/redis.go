package sink

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"collection-governance/internal/domain"
)

// RedisConfig configures a RedisSink.
type RedisConfig struct {
	Stream string
	MaxLen int64 // approximate stream cap, 0 for unbounded
}

// RedisSink appends events to a Redis stream and keeps the last committed
// sequence under "<stream>:last_sequence".
type RedisSink struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewRedisSink creates a sink writing through client.
func NewRedisSink(client redis.Cmdable, cfg RedisConfig) (*RedisSink, error) {
	if cfg.Stream == "" {
		return nil, fmt.Errorf("redis sink requires a stream name")
	}
	return &RedisSink{client: client, stream: cfg.Stream, maxLen: cfg.MaxLen}, nil
}

// Publish appends events in one transaction.
func (s *RedisSink) Publish(ctx context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, ev := range events {
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: s.stream,
				MaxLen: s.maxLen,
				Approx: s.maxLen > 0,
				ID:     "*",
				Values: streamValues(ev),
			})
		}
		pipe.Set(ctx, s.LastSequenceKey(), events[len(events)-1].Sequence, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("xadd %d events to %s: %w", len(events), s.stream, err)
	}
	return nil
}

// LastSequenceKey returns the key holding the last published sequence.
func (s *RedisSink) LastSequenceKey() string {
	return s.stream + ":last_sequence"
}

// streamValues flattens an event into stream entry fields: envelope
// attributes first, then payload fields in emission order.
func streamValues(ev *domain.Event) []interface{} {
	fields := ev.Payload.Fields()
	values := make([]interface{}, 0, 8+2*len(fields))
	values = append(values,
		"id", ev.ID,
		"sequence", strconv.FormatUint(ev.Sequence, 10),
		"name", ev.Name.String(),
		"occurred_at", ev.OccurredAt.UTC().Format(time.RFC3339Nano),
	)
	for _, f := range fields {
		values = append(values, f.Key, formatValue(f.Value))
	}
	return values
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
