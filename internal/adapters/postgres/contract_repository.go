package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/workgrid/contract-engine/internal/domain"
	"github.com/workgrid/contract-engine/internal/ports"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

var _ ports.ContractRepository = (*ContractRepository)(nil)

func (r *ContractRepository) Create(ctx context.Context, row domain.Contract) error {
	model, err := toContractModel(row)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

func (r *ContractRepository) GetByID(ctx context.Context, contractID string) (domain.Contract, error) {
	var model contractModel
	err := r.db.WithContext(ctx).First(&model, "contract_id = ?", contractID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Contract{}, domain.ErrNotFound
		}
		return domain.Contract{}, fmt.Errorf("select contract: %w", err)
	}
	return fromContractModel(model)
}

func (r *ContractRepository) Update(ctx context.Context, row domain.Contract) error {
	model, err := toContractModel(row)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Model(&contractModel{}).
		Where("contract_id = ?", model.ContractID).
		Select("status", "terms", "escrow_id", "signed_name", "updated_at").
		Updates(map[string]any{
			"status":      model.Status,
			"terms":       model.Terms,
			"escrow_id":   model.EscrowID,
			"signed_name": model.SignedName,
			"updated_at":  model.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update contract: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ContractRepository) List(ctx context.Context, query ports.ContractListQuery) ([]domain.Contract, int, error) {
	tx := r.db.WithContext(ctx).Model(&contractModel{})
	if query.PartyID != "" {
		tx = tx.Where("initiator_id = ? OR counterparty_id = ?", query.PartyID, query.PartyID)
	}
	if query.Status != "" {
		tx = tx.Where("status = ?", query.Status)
	}
	if query.Type != "" {
		tx = tx.Where("contract_type = ?", query.Type)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count contracts: %w", err)
	}

	var models []contractModel
	err := tx.Order("created_at DESC").
		Limit(query.Limit).
		Offset(query.Offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("select contracts: %w", err)
	}

	rows := make([]domain.Contract, 0, len(models))
	for _, m := range models {
		row, err := fromContractModel(m)
		if err != nil {
			return nil, 0, err
		}
		rows = append(rows, row)
	}
	return rows, int(total), nil
}

func (r *ContractRepository) ListPendingExpired(ctx context.Context, now time.Time, limit int) ([]domain.Contract, error) {
	var models []contractModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", domain.StatusPending, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("select expired contracts: %w", err)
	}
	return fromContractModels(models)
}

// ListSignedWithoutHold feeds the reconciliation sweep. Only payment-bearing
// types with a positive amount qualify; invites and zero-amount contracts
// never receive a hold and must not occupy sweep batch slots.
func (r *ContractRepository) ListSignedWithoutHold(ctx context.Context, limit int) ([]domain.Contract, error) {
	var models []contractModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND (escrow_id IS NULL OR escrow_id = '') AND contract_type IN ? AND (terms->>'amount')::numeric > 0",
			domain.StatusSigned, domain.PaymentBearingTypes()).
		Order("updated_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("select unfunded contracts: %w", err)
	}
	return fromContractModels(models)
}

func (r *ContractRepository) AppendAudit(ctx context.Context, entry domain.AuditEntry) error {
	model := auditEntryModel{
		EntryID:    entry.EntryID,
		ContractID: entry.ContractID,
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		Detail:     entry.Detail,
		OccurredAt: entry.OccurredAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *ContractRepository) ListAudit(ctx context.Context, contractID string) ([]domain.AuditEntry, error) {
	var models []auditEntryModel
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("occurred_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("select audit entries: %w", err)
	}
	entries := make([]domain.AuditEntry, 0, len(models))
	for _, m := range models {
		entries = append(entries, fromAuditModel(m))
	}
	return entries, nil
}

func fromContractModels(models []contractModel) ([]domain.Contract, error) {
	rows := make([]domain.Contract, 0, len(models))
	for _, m := range models {
		row, err := fromContractModel(m)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
