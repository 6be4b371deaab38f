package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/workgrid/contract-engine/internal/ports"
)

type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

var _ ports.OutboxRepository = (*OutboxRepository)(nil)

func (r *OutboxRepository) Enqueue(ctx context.Context, record ports.OutboxRecord) error {
	envelope, err := marshalEnvelope(record.Envelope)
	if err != nil {
		return err
	}
	model := outboxModel{
		RecordID:   record.RecordID,
		EventClass: record.EventClass,
		Envelope:   envelope,
		CreatedAt:  record.CreatedAt,
		SentAt:     record.SentAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("insert outbox record: %w", err)
	}
	return nil
}

func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]ports.OutboxRecord, error) {
	var models []outboxModel
	err := r.db.WithContext(ctx).
		Where("sent_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("select outbox records: %w", err)
	}
	records := make([]ports.OutboxRecord, 0, len(models))
	for _, m := range models {
		envelope, err := unmarshalEnvelope(m.Envelope)
		if err != nil {
			return nil, err
		}
		records = append(records, ports.OutboxRecord{
			RecordID:   m.RecordID,
			EventClass: m.EventClass,
			Envelope:   envelope,
			CreatedAt:  m.CreatedAt,
			SentAt:     m.SentAt,
		})
	}
	return records, nil
}

func (r *OutboxRepository) MarkSent(ctx context.Context, recordID string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("record_id = ? AND sent_at IS NULL", recordID).
		Update("sent_at", at)
	if res.Error != nil {
		return fmt.Errorf("mark outbox record sent: %w", res.Error)
	}
	return nil
}
