// Package kafka relays outbox messages to Kafka topics.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"venuedesk/internal/infrastructure/storage/postgres"
)

// DefaultTopic receives every domain event.
const DefaultTopic = "venuedesk.events"

// Producer publishes outbox messages with a synchronous sarama producer.
type Producer struct {
	sync  sarama.SyncProducer
	topic string
}

var _ postgres.OutboxHandler = (*Producer)(nil)

// NewProducer connects to brokers with idempotent, fully acknowledged
// delivery.
func NewProducer(brokers []string, topic string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1
	sync, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return NewProducerFrom(sync, topic), nil
}

// NewProducerFrom wraps an existing sync producer. An empty topic selects
// DefaultTopic.
func NewProducerFrom(sync sarama.SyncProducer, topic string) *Producer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Producer{sync: sync, topic: topic}
}

// Handle implements postgres.OutboxHandler. Messages of one aggregate share
// a key and therefore a partition, which keeps them in order.
func (p *Producer) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(msg.AggregateID.String()),
		Value: sarama.ByteEncoder(msg.Payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("message_id"), Value: []byte(msg.ID.String())},
			{Key: []byte("event_type"), Value: []byte(msg.EventType)},
			{Key: []byte("aggregate_type"), Value: []byte(msg.AggregateType)},
			{Key: []byte("created_at"), Value: []byte(msg.CreatedAt.UTC().Format(time.RFC3339Nano))},
		},
		Timestamp: msg.CreatedAt,
	}
	if _, _, err := p.sync.SendMessage(out); err != nil {
		return fmt.Errorf("send %s: %w", msg.EventType, err)
	}
	return nil
}

// Close flushes and closes the producer.
func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}
