package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/workgrid/contract-engine/internal/domain"
)

// ensureHold funds escrow for a contract exactly once. The hold id is derived
// from the contract id, so a replayed call finds the existing hold and
// returns it unchanged. The payer debit and the hold insert are two separate
// writes; a crash between them is the documented failure window the
// reconciliation sweep exists for.
func (s *Service) ensureHold(ctx context.Context, contract domain.Contract) (domain.EscrowHold, bool, error) {
	existing, err := s.holds.GetByContractID(ctx, contract.ContractID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.EscrowHold{}, false, err
	}

	currency := contract.Terms.Currency
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	payerWallet, err := s.wallets.GetOrCreate(ctx, contract.InitiatorID, domain.OwnerTypeUser, currency)
	if err != nil {
		return domain.EscrowHold{}, false, err
	}
	payeeWallet, err := s.wallets.GetOrCreate(ctx, contract.CounterpartyID, domain.OwnerTypeUser, currency)
	if err != nil {
		return domain.EscrowHold{}, false, err
	}

	now := s.nowFn()
	amount := contract.Terms.Amount
	if _, err := s.wallets.Debit(ctx, payerWallet.WalletID, amount, domain.Transaction{
		TransactionID: uuid.NewString(),
		WalletID:      payerWallet.WalletID,
		Type:          domain.TransactionTypeEscrowHold,
		Amount:        -amount,
		Status:        domain.TransactionStatusCompleted,
		ContractID:    contract.ContractID,
		Detail:        "escrow hold",
		OccurredAt:    now,
	}); err != nil {
		return domain.EscrowHold{}, false, err
	}

	hold := domain.EscrowHold{
		EscrowID:        domain.HoldID(contract.ContractID),
		ContractID:      contract.ContractID,
		PayerID:         contract.InitiatorID,
		PayeeID:         contract.CounterpartyID,
		PayerWalletID:   payerWallet.WalletID,
		PayeeWalletID:   payeeWallet.WalletID,
		Currency:        currency,
		OriginalAmount:  amount,
		RemainingAmount: amount,
		Status:          domain.HoldStatusHeld,
		HeldAt:          now,
		UpdatedAt:       now,
	}
	if err := s.holds.Create(ctx, hold); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost a creation race: another writer funded the hold first.
			// Return the debit so the payer is not charged twice.
			_, creditErr := s.wallets.Credit(ctx, payerWallet.WalletID, amount, domain.Transaction{
				TransactionID: uuid.NewString(),
				WalletID:      payerWallet.WalletID,
				Type:          domain.TransactionTypeRefund,
				Amount:        amount,
				Status:        domain.TransactionStatusCompleted,
				ContractID:    contract.ContractID,
				Detail:        "duplicate escrow hold reverted",
				OccurredAt:    s.nowFn(),
			})
			if creditErr != nil {
				s.logger.ErrorContext(ctx, "duplicate hold revert failed",
					"module", "escrow",
					"operation", "ensure_hold",
					"outcome", "failure",
					"contract_id", contract.ContractID,
					"error", creditErr,
				)
			}
			winner, getErr := s.holds.GetByContractID(ctx, contract.ContractID)
			if getErr != nil {
				return domain.EscrowHold{}, false, getErr
			}
			return winner, false, nil
		}
		return domain.EscrowHold{}, false, err
	}
	return hold, true, nil
}

// releasePartial credits the payee and shrinks the remaining hold amount.
// The hold flips to released exactly when the remainder reaches zero.
func (s *Service) releasePartial(ctx context.Context, hold domain.EscrowHold, amount float64, detail string) (domain.EscrowHold, error) {
	if hold.Status != domain.HoldStatusHeld && hold.Status != domain.HoldStatusPartiallyReleased {
		return domain.EscrowHold{}, domain.ErrHoldClosed
	}
	amount = domain.RoundCents(amount)
	if amount <= 0 {
		return domain.EscrowHold{}, domain.ErrValidation
	}
	if amount > domain.RoundCents(hold.RemainingAmount) {
		return domain.EscrowHold{}, domain.ErrExceedsBalance
	}

	now := s.nowFn()
	if _, err := s.wallets.Credit(ctx, hold.PayeeWalletID, amount, domain.Transaction{
		TransactionID: uuid.NewString(),
		WalletID:      hold.PayeeWalletID,
		Type:          domain.TransactionTypeEscrowRelease,
		Amount:        amount,
		Status:        domain.TransactionStatusCompleted,
		ContractID:    hold.ContractID,
		Detail:        detail,
		OccurredAt:    now,
	}); err != nil {
		return domain.EscrowHold{}, err
	}

	hold.ReleasedAmount = domain.RoundCents(hold.ReleasedAmount + amount)
	hold.RemainingAmount = domain.RoundCents(hold.RemainingAmount - amount)
	if hold.RemainingAmount <= 0 {
		hold.RemainingAmount = 0
		hold.Status = domain.HoldStatusReleased
	} else {
		hold.Status = domain.HoldStatusPartiallyReleased
	}
	hold.UpdatedAt = now
	if err := s.holds.Update(ctx, hold); err != nil {
		return domain.EscrowHold{}, err
	}

	eventType := domain.EventEscrowPartialRelease
	auditAction := domain.AuditEscrowPartialRelease
	if hold.Status == domain.HoldStatusReleased {
		eventType = domain.EventEscrowReleased
		auditAction = domain.AuditEscrowReleased
	}
	s.appendAudit(ctx, hold.ContractID, hold.PayerID, auditAction,
		fmt.Sprintf("amount=%.2f remaining=%.2f", amount, hold.RemainingAmount))
	s.enqueueEscrowRelease(ctx, eventType, hold, amount)
	return hold, nil
}

// refund returns the full amount to the payer. Only an untouched hold can be
// refunded; release and refund are mutually exclusive.
func (s *Service) refund(ctx context.Context, hold domain.EscrowHold, reason string) (domain.EscrowHold, error) {
	if hold.Status != domain.HoldStatusHeld {
		return domain.EscrowHold{}, domain.ErrHoldClosed
	}

	now := s.nowFn()
	amount := hold.RemainingAmount
	if _, err := s.wallets.Credit(ctx, hold.PayerWalletID, amount, domain.Transaction{
		TransactionID: uuid.NewString(),
		WalletID:      hold.PayerWalletID,
		Type:          domain.TransactionTypeRefund,
		Amount:        amount,
		Status:        domain.TransactionStatusCompleted,
		ContractID:    hold.ContractID,
		Detail:        reason,
		OccurredAt:    now,
	}); err != nil {
		return domain.EscrowHold{}, err
	}

	hold.RefundedAmount = amount
	hold.RemainingAmount = 0
	hold.Status = domain.HoldStatusRefunded
	hold.UpdatedAt = now
	if err := s.holds.Update(ctx, hold); err != nil {
		return domain.EscrowHold{}, err
	}
	s.appendAudit(ctx, hold.ContractID, hold.PayerID, domain.AuditEscrowRefunded,
		fmt.Sprintf("amount=%.2f reason=%s", amount, reason))
	s.enqueueEscrowRefund(ctx, hold, amount, reason)
	return hold, nil
}

// settleOnClose resolves escrow when a contract reaches completed (release
// the remainder to the payee) or terminated (refund the payer). Settlement
// problems never unwind the already-written terminal status; they surface in
// the audit trail.
func (s *Service) settleOnClose(ctx context.Context, contract domain.Contract, actor Actor, release bool) {
	hold, err := s.holds.GetByContractID(ctx, contract.ContractID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.ErrorContext(ctx, "escrow lookup failed on close",
				"module", "escrow",
				"operation", "settle_on_close",
				"outcome", "failure",
				"contract_id", contract.ContractID,
				"error", err,
			)
		}
		return
	}
	if hold.Closed() {
		return
	}
	if release {
		if hold.RemainingAmount > 0 {
			if _, err := s.releasePartial(ctx, hold, hold.RemainingAmount, "contract completed"); err != nil {
				s.logger.ErrorContext(ctx, "final release failed",
					"module", "escrow",
					"operation", "settle_on_close",
					"outcome", "failure",
					"contract_id", contract.ContractID,
					"error", err,
				)
			}
		}
		return
	}
	if _, err := s.refund(ctx, hold, "contract terminated"); err != nil {
		if errors.Is(err, domain.ErrHoldClosed) {
			// Partially released holds cannot be refunded; the remainder
			// stays held for the resolution center to settle.
			s.appendAudit(ctx, contract.ContractID, actor.SubjectID, domain.AuditEscrowRefundUnavailable,
				fmt.Sprintf("remaining=%.2f", hold.RemainingAmount))
			return
		}
		s.logger.ErrorContext(ctx, "refund failed on terminate",
			"module", "escrow",
			"operation", "settle_on_close",
			"outcome", "failure",
			"contract_id", contract.ContractID,
			"error", err,
		)
	}
}

func (s *Service) GetEscrowHold(ctx context.Context, actor Actor, contractID string) (domain.EscrowHold, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.EscrowHold{}, domain.ErrUnauthorized
	}
	hold, err := s.holds.GetByContractID(ctx, strings.TrimSpace(contractID))
	if err != nil {
		return domain.EscrowHold{}, err
	}
	if actor.Role != "admin" && actor.SubjectID != hold.PayerID && actor.SubjectID != hold.PayeeID {
		return domain.EscrowHold{}, domain.ErrForbidden
	}
	return hold, nil
}
