package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/workgrid/contract-engine/internal/contracts"
	"github.com/workgrid/contract-engine/internal/ports"
)

// LogPublisher writes envelopes to the structured log. It stands in for the
// mesh event bus in single-node deployments; swapping in a broker-backed
// publisher is a bootstrap concern.
type LogPublisher struct {
	logger *slog.Logger
	stream string
}

func NewLogPublisher(logger *slog.Logger, stream string) *LogPublisher {
	return &LogPublisher{logger: logger, stream: stream}
}

var (
	_ ports.DomainPublisher    = (*LogPublisher)(nil)
	_ ports.AnalyticsPublisher = (*LogPublisher)(nil)
)

func (p *LogPublisher) PublishDomain(ctx context.Context, envelope contracts.EventEnvelope) error {
	p.log(ctx, envelope)
	return nil
}

func (p *LogPublisher) PublishAnalytics(ctx context.Context, envelope contracts.EventEnvelope) error {
	p.log(ctx, envelope)
	return nil
}

func (p *LogPublisher) log(ctx context.Context, envelope contracts.EventEnvelope) {
	p.logger.InfoContext(ctx, "event published",
		"module", "events",
		"layer", "adapter",
		"operation", "publish",
		"outcome", "success",
		"stream", p.stream,
		"event_id", envelope.EventID,
		"event_type", envelope.EventType,
		"partition_key", envelope.PartitionKey,
		"trace_id", envelope.TraceID,
	)
}

// LogDLQPublisher records dead-lettered events at error level so operators
// can replay them by hand.
type LogDLQPublisher struct {
	logger *slog.Logger
}

func NewLogDLQPublisher(logger *slog.Logger) *LogDLQPublisher {
	return &LogDLQPublisher{logger: logger}
}

var _ ports.DLQPublisher = (*LogDLQPublisher)(nil)

func (p *LogDLQPublisher) PublishDLQ(ctx context.Context, record contracts.DLQRecord) error {
	p.logger.ErrorContext(ctx, "event dead-lettered",
		"module", "events",
		"layer", "adapter",
		"operation", "publish_dlq",
		"outcome", "failure",
		"event_id", record.OriginalEvent.EventID,
		"event_type", record.OriginalEvent.EventType,
		"error_summary", record.ErrorSummary,
		"source_topic", record.SourceTopic,
		"dlq_topic", record.DLQTopic,
		"trace_id", record.TraceID,
	)
	return nil
}

// CapturePublisher collects everything published; test-only sink.
type CapturePublisher struct {
	mu     sync.Mutex
	Events []contracts.EventEnvelope
	DLQ    []contracts.DLQRecord
	Err    error
}

var (
	_ ports.DomainPublisher    = (*CapturePublisher)(nil)
	_ ports.AnalyticsPublisher = (*CapturePublisher)(nil)
	_ ports.DLQPublisher       = (*CapturePublisher)(nil)
)

func (p *CapturePublisher) PublishDomain(_ context.Context, envelope contracts.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, envelope)
	return nil
}

func (p *CapturePublisher) PublishAnalytics(ctx context.Context, envelope contracts.EventEnvelope) error {
	return p.PublishDomain(ctx, envelope)
}

func (p *CapturePublisher) PublishDLQ(_ context.Context, record contracts.DLQRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.DLQ = append(p.DLQ, record)
	return nil
}

func (p *CapturePublisher) Published() []contracts.EventEnvelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]contracts.EventEnvelope, len(p.Events))
	copy(out, p.Events)
	return out
}
