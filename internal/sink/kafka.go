package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"collection-governance/internal/domain"
)

// messageWriter is the subset of *kafka.Writer used by KafkaSink.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures a KafkaSink.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// KafkaSink publishes event envelopes to a Kafka topic. Messages are keyed by
// subject so events about one item or proposal stay in one partition.
type KafkaSink struct {
	writer messageWriter
}

// NewKafkaSink creates a sink writing to cfg.Topic.
func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, fmt.Errorf("kafka sink requires brokers and topic")
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 10 * time.Millisecond
	}
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: batchTimeout,
		},
	}, nil
}

// Publish writes one message per event.
func (s *KafkaSink) Publish(ctx context.Context, events []*domain.Event) error {
	msgs, err := kafkaMessages(events)
	if err != nil {
		return err
	}
	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write kafka messages: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func kafkaMessages(events []*domain.Event) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		data, err := Encode(ev)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(ev.Payload.Subject()),
			Value: data,
			Time:  ev.OccurredAt,
			Headers: []kafka.Header{
				{Key: "event", Value: []byte(ev.Name)},
				{Key: "event_id", Value: []byte(ev.ID)},
			},
		})
	}
	return msgs, nil
}
