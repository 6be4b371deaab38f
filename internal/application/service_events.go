package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/workgrid/contract-engine/internal/contracts"
	"github.com/workgrid/contract-engine/internal/domain"
	"github.com/workgrid/contract-engine/internal/ports"
)

// FlushOutbox drains pending outbox records to the configured publishers.
// Domain-class events that fail to publish go to the DLQ and stop the batch;
// analytics events are best-effort.
func (s *Service) FlushOutbox(ctx context.Context) error {
	if s.outbox == nil {
		return nil
	}
	pending, err := s.outbox.ListPending(ctx, s.cfg.OutboxFlushBatchSize)
	if err != nil {
		return err
	}
	for _, rec := range pending {
		now := s.nowFn()
		switch rec.EventClass {
		case domain.CanonicalEventClassDomain:
			if s.domainEvents != nil {
				if err := s.domainEvents.PublishDomain(ctx, rec.Envelope); err != nil {
					if s.dlq != nil {
						_ = s.dlq.PublishDLQ(ctx, contracts.DLQRecord{
							OriginalEvent: rec.Envelope,
							ErrorSummary:  err.Error(),
							RetryCount:    1,
							FirstSeenAt:   now,
							LastErrorAt:   now,
							SourceTopic:   rec.Envelope.EventType,
							DLQTopic:      s.cfg.ServiceName + ".dlq",
							TraceID:       rec.Envelope.TraceID,
						})
					}
					return err
				}
			}
		case domain.CanonicalEventClassAnalyticsOnly:
			if s.analytics != nil {
				_ = s.analytics.PublishAnalytics(ctx, rec.Envelope)
			}
		default:
			return fmt.Errorf("unsupported event class %q", rec.EventClass)
		}
		if err := s.outbox.MarkSent(ctx, rec.RecordID, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) enqueueEvent(ctx context.Context, eventType, traceID string, data any, contractID string) {
	if s.outbox == nil {
		return
	}
	if !domain.IsCanonicalEmittedEvent(eventType) {
		return
	}
	b, err := json.Marshal(data)
	if err != nil {
		return
	}
	if strings.TrimSpace(traceID) == "" {
		traceID = uuid.NewString()
	}
	now := s.nowFn()
	env := contracts.EventEnvelope{
		EventID:          uuid.NewString(),
		EventType:        eventType,
		EventClass:       domain.CanonicalEventClass(eventType),
		OccurredAt:       now,
		PartitionKeyPath: domain.CanonicalPartitionKeyPath(eventType),
		PartitionKey:     contractID,
		SourceService:    s.cfg.ServiceName,
		TraceID:          traceID,
		SchemaVersion:    "v1",
		Data:             b,
	}
	if err := s.outbox.Enqueue(ctx, ports.OutboxRecord{
		RecordID:   uuid.NewString(),
		EventClass: env.EventClass,
		Envelope:   env,
		CreatedAt:  now,
	}); err != nil {
		s.logger.ErrorContext(ctx, "outbox enqueue failed",
			"module", "events",
			"operation", "enqueue_event",
			"outcome", "failure",
			"event_type", eventType,
			"contract_id", contractID,
			"error", err,
		)
	}
}

func (s *Service) enqueueContractEvent(ctx context.Context, eventType string, contract domain.Contract, traceID string) {
	s.enqueueEvent(ctx, eventType, traceID, contracts.ContractStatusPayload{
		ContractID:     contract.ContractID,
		ContractType:   contract.Type,
		Status:         contract.Status,
		InitiatorID:    contract.InitiatorID,
		CounterpartyID: contract.CounterpartyID,
		ChangedAt:      contract.UpdatedAt.UTC().Format(time.RFC3339),
	}, contract.ContractID)
}

func (s *Service) enqueueEscrowHeld(ctx context.Context, hold domain.EscrowHold, traceID string) {
	s.enqueueEvent(ctx, domain.EventEscrowHeld, traceID, contracts.EscrowHeldPayload{
		EscrowID:   hold.EscrowID,
		ContractID: hold.ContractID,
		PayerID:    hold.PayerID,
		PayeeID:    hold.PayeeID,
		Amount:     hold.OriginalAmount,
		Currency:   hold.Currency,
		HeldAt:     hold.HeldAt.UTC().Format(time.RFC3339),
	}, hold.ContractID)
}

func (s *Service) enqueueEscrowRelease(ctx context.Context, eventType string, hold domain.EscrowHold, amount float64) {
	s.enqueueEvent(ctx, eventType, "", contracts.EscrowReleasePayload{
		EscrowID:         hold.EscrowID,
		ContractID:       hold.ContractID,
		Amount:           amount,
		RemainingBalance: hold.RemainingAmount,
		ReleasedAt:       s.nowFn().UTC().Format(time.RFC3339),
	}, hold.ContractID)
}

func (s *Service) enqueueEscrowRefund(ctx context.Context, hold domain.EscrowHold, amount float64, reason string) {
	s.enqueueEvent(ctx, domain.EventEscrowRefunded, "", contracts.EscrowRefundPayload{
		EscrowID:   hold.EscrowID,
		ContractID: hold.ContractID,
		Amount:     amount,
		Reason:     reason,
		RefundedAt: s.nowFn().UTC().Format(time.RFC3339),
	}, hold.ContractID)
}

func (s *Service) enqueueMilestonePaid(ctx context.Context, contract domain.Contract, milestone domain.Milestone, traceID string) {
	s.enqueueEvent(ctx, domain.EventMilestonePaid, traceID, contracts.MilestonePaidPayload{
		ContractID:  contract.ContractID,
		MilestoneID: milestone.MilestoneID,
		Amount:      milestone.Amount,
		PaidAt:      s.nowFn().UTC().Format(time.RFC3339),
	}, contract.ContractID)
}
