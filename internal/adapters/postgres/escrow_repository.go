package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/workgrid/contract-engine/internal/domain"
	"github.com/workgrid/contract-engine/internal/ports"
)

type EscrowHoldRepository struct {
	db *gorm.DB
}

func NewEscrowHoldRepository(db *gorm.DB) *EscrowHoldRepository {
	return &EscrowHoldRepository{db: db}
}

var _ ports.EscrowHoldRepository = (*EscrowHoldRepository)(nil)

func (r *EscrowHoldRepository) Create(ctx context.Context, row domain.EscrowHold) error {
	model := toHoldModel(row)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert escrow hold: %w", err)
	}
	return nil
}

func (r *EscrowHoldRepository) GetByID(ctx context.Context, escrowID string) (domain.EscrowHold, error) {
	var model escrowHoldModel
	err := r.db.WithContext(ctx).First(&model, "escrow_id = ?", escrowID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.EscrowHold{}, domain.ErrNotFound
		}
		return domain.EscrowHold{}, fmt.Errorf("select escrow hold: %w", err)
	}
	return fromHoldModel(model), nil
}

func (r *EscrowHoldRepository) GetByContractID(ctx context.Context, contractID string) (domain.EscrowHold, error) {
	var model escrowHoldModel
	err := r.db.WithContext(ctx).First(&model, "contract_id = ?", contractID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.EscrowHold{}, domain.ErrNotFound
		}
		return domain.EscrowHold{}, fmt.Errorf("select escrow hold: %w", err)
	}
	return fromHoldModel(model), nil
}

func (r *EscrowHoldRepository) Update(ctx context.Context, row domain.EscrowHold) error {
	model := toHoldModel(row)
	res := r.db.WithContext(ctx).
		Model(&escrowHoldModel{}).
		Where("escrow_id = ?", model.EscrowID).
		Updates(map[string]any{
			"released_amount":  model.ReleasedAmount,
			"refunded_amount":  model.RefundedAmount,
			"remaining_amount": model.RemainingAmount,
			"status":           model.Status,
			"updated_at":       model.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update escrow hold: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
