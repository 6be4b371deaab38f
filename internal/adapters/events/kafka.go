package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/workgrid/contract-engine/internal/contracts"
	"github.com/workgrid/contract-engine/internal/ports"
)

// KafkaTopics maps the three event classes onto bus topics.
type KafkaTopics struct {
	Domain    string
	Analytics string
	DLQ       string
}

// KafkaPublisher writes envelopes to the event bus. Messages are keyed by
// partition key so all events of one contract land on one partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
	topics KafkaTopics
}

func NewKafkaPublisher(brokers []string, topics KafkaTopics) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topics.Domain == "" {
		topics.Domain = "contracts.domain"
	}
	if topics.Analytics == "" {
		topics.Analytics = "contracts.analytics"
	}
	if topics.DLQ == "" {
		topics.DLQ = "contracts.dlq"
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topics: topics,
	}, nil
}

var (
	_ ports.DomainPublisher    = (*KafkaPublisher)(nil)
	_ ports.AnalyticsPublisher = (*KafkaPublisher)(nil)
	_ ports.DLQPublisher       = (*KafkaPublisher)(nil)
)

func (p *KafkaPublisher) PublishDomain(ctx context.Context, envelope contracts.EventEnvelope) error {
	return p.publish(ctx, p.topics.Domain, envelope.PartitionKey, envelope)
}

func (p *KafkaPublisher) PublishAnalytics(ctx context.Context, envelope contracts.EventEnvelope) error {
	return p.publish(ctx, p.topics.Analytics, envelope.PartitionKey, envelope)
}

func (p *KafkaPublisher) PublishDLQ(ctx context.Context, record contracts.DLQRecord) error {
	return p.publish(ctx, p.topics.DLQ, record.OriginalEvent.PartitionKey, record)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  time.Now().UTC(),
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
