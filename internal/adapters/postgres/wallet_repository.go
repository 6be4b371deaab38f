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

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

var _ ports.WalletRepository = (*WalletRepository)(nil)

func (r *WalletRepository) GetOrCreate(ctx context.Context, ownerID, ownerType, currency string) (domain.Wallet, error) {
	walletID := ownerType + ":" + ownerID
	now := time.Now().UTC()
	model := walletModel{
		WalletID:  walletID,
		OwnerID:   ownerID,
		OwnerType: ownerType,
		Currency:  currency,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := r.db.WithContext(ctx).Create(&model).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.Wallet{}, fmt.Errorf("insert wallet: %w", err)
	}
	return r.GetByID(ctx, walletID)
}

func (r *WalletRepository) GetByID(ctx context.Context, walletID string) (domain.Wallet, error) {
	var model walletModel
	err := r.db.WithContext(ctx).First(&model, "wallet_id = ?", walletID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Wallet{}, domain.ErrNotFound
		}
		return domain.Wallet{}, fmt.Errorf("select wallet: %w", err)
	}
	return fromWalletModel(model), nil
}

// Debit runs the balance guard and the ledger append in one database
// transaction. The guarded UPDATE touches the row only when the balance
// covers the amount, so two concurrent debits cannot take it negative.
func (r *WalletRepository) Debit(ctx context.Context, walletID string, amount float64, txn domain.Transaction) (domain.Wallet, error) {
	var out domain.Wallet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&walletModel{}).
			Where("wallet_id = ? AND balance >= ?", walletID, amount).
			Updates(map[string]any{
				"balance":    gorm.Expr("balance - ?", amount),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("debit wallet: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var exists walletModel
			if err := tx.First(&exists, "wallet_id = ?", walletID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrNotFound
				}
				return fmt.Errorf("select wallet: %w", err)
			}
			return domain.ErrInsufficientFunds
		}

		model := toTransactionModel(txn)
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		var updated walletModel
		if err := tx.First(&updated, "wallet_id = ?", walletID).Error; err != nil {
			return fmt.Errorf("select wallet: %w", err)
		}
		out = fromWalletModel(updated)
		return nil
	})
	if err != nil {
		return domain.Wallet{}, err
	}
	return out, nil
}

func (r *WalletRepository) Credit(ctx context.Context, walletID string, amount float64, txn domain.Transaction) (domain.Wallet, error) {
	var out domain.Wallet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&walletModel{}).
			Where("wallet_id = ?", walletID).
			Updates(map[string]any{
				"balance":    gorm.Expr("balance + ?", amount),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("credit wallet: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		model := toTransactionModel(txn)
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		var updated walletModel
		if err := tx.First(&updated, "wallet_id = ?", walletID).Error; err != nil {
			return fmt.Errorf("select wallet: %w", err)
		}
		out = fromWalletModel(updated)
		return nil
	})
	if err != nil {
		return domain.Wallet{}, err
	}
	return out, nil
}

func (r *WalletRepository) ListTransactions(ctx context.Context, walletID string, limit int) ([]domain.Transaction, error) {
	var models []transactionModel
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	txns := make([]domain.Transaction, 0, len(models))
	for _, m := range models {
		txns = append(txns, fromTransactionModel(m))
	}
	return txns, nil
}
