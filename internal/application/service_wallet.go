package application

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/workgrid/contract-engine/internal/domain"
)

// Deposit tops up the caller's wallet, creating it on first use.
func (s *Service) Deposit(ctx context.Context, actor Actor, input DepositInput) (domain.Wallet, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Wallet{}, domain.ErrUnauthorized
	}
	if actor.Role != "admin" && actor.SubjectID != input.OwnerID {
		return domain.Wallet{}, domain.ErrForbidden
	}
	if input.Amount <= 0 {
		return domain.Wallet{}, domain.ErrValidation
	}
	currency := input.Currency
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	if !domain.CurrencySupported(currency) {
		return domain.Wallet{}, domain.ErrValidation
	}
	ownerType := normalizeOwnerType(input.OwnerType)
	wallet, err := s.wallets.GetOrCreate(ctx, input.OwnerID, ownerType, currency)
	if err != nil {
		return domain.Wallet{}, err
	}
	return s.wallets.Credit(ctx, wallet.WalletID, input.Amount, domain.Transaction{
		TransactionID: uuid.NewString(),
		WalletID:      wallet.WalletID,
		Type:          domain.TransactionTypeDeposit,
		Amount:        input.Amount,
		Status:        domain.TransactionStatusCompleted,
		OccurredAt:    s.nowFn(),
	})
}

// Withdraw debits the caller's wallet. The debit is a single guarded
// operation on the wallet row; a failed sufficiency check leaves the balance
// untouched.
func (s *Service) Withdraw(ctx context.Context, actor Actor, input WithdrawInput) (domain.Wallet, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Wallet{}, domain.ErrUnauthorized
	}
	if actor.Role != "admin" && actor.SubjectID != input.OwnerID {
		return domain.Wallet{}, domain.ErrForbidden
	}
	if input.Amount <= 0 {
		return domain.Wallet{}, domain.ErrValidation
	}
	ownerType := normalizeOwnerType(input.OwnerType)
	wallet, err := s.wallets.GetOrCreate(ctx, input.OwnerID, ownerType, s.cfg.DefaultCurrency)
	if err != nil {
		return domain.Wallet{}, err
	}
	return s.wallets.Debit(ctx, wallet.WalletID, input.Amount, domain.Transaction{
		TransactionID: uuid.NewString(),
		WalletID:      wallet.WalletID,
		Type:          domain.TransactionTypeWithdrawal,
		Amount:        -input.Amount,
		Status:        domain.TransactionStatusCompleted,
		OccurredAt:    s.nowFn(),
	})
}

// GetWallet returns the wallet with its recent transaction history.
func (s *Service) GetWallet(ctx context.Context, actor Actor, ownerID, ownerType string) (domain.Wallet, []domain.Transaction, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Wallet{}, nil, domain.ErrUnauthorized
	}
	if actor.Role != "admin" && actor.SubjectID != ownerID {
		return domain.Wallet{}, nil, domain.ErrForbidden
	}
	wallet, err := s.wallets.GetOrCreate(ctx, ownerID, normalizeOwnerType(ownerType), s.cfg.DefaultCurrency)
	if err != nil {
		return domain.Wallet{}, nil, err
	}
	txns, err := s.wallets.ListTransactions(ctx, wallet.WalletID, 100)
	if err != nil {
		return domain.Wallet{}, nil, err
	}
	return wallet, txns, nil
}

// HasSufficientFunds is an advisory read: a later debit can still race and
// fail, so callers must not treat a true result as a reservation.
func (s *Service) HasSufficientFunds(ctx context.Context, ownerID, ownerType string, amount float64) (bool, error) {
	wallet, err := s.wallets.GetOrCreate(ctx, ownerID, normalizeOwnerType(ownerType), s.cfg.DefaultCurrency)
	if err != nil {
		return false, err
	}
	return wallet.Balance >= amount, nil
}

func normalizeOwnerType(raw string) string {
	if strings.ToLower(strings.TrimSpace(raw)) == domain.OwnerTypeAgency {
		return domain.OwnerTypeAgency
	}
	return domain.OwnerTypeUser
}
