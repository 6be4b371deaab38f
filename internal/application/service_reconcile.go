package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/workgrid/contract-engine/internal/domain"
)

// ExpirePending sweeps pending contracts whose deadline has passed and moves
// them to expired. Returns the number of contracts transitioned.
func (s *Service) ExpirePending(ctx context.Context) (int, error) {
	rows, err := s.contracts.ListPendingExpired(ctx, s.nowFn(), s.cfg.SweepBatchSize)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, contract := range rows {
		if err := s.Expire(ctx, contract.ContractID); err != nil {
			s.logger.ErrorContext(ctx, "expire sweep item failed",
				"module", "reconcile",
				"operation", "expire_pending",
				"outcome", "failure",
				"contract_id", contract.ContractID,
				"error", err,
			)
			continue
		}
		expired++
	}
	return expired, nil
}

// ReconcileEscrow replays the escrow step for signed payment-bearing
// contracts whose hold guard is still unmet: a contract that signed while
// the payer lacked funds, or a crash between the status write and the hold
// insert. Each replay re-runs the same idempotent ensureHold, so a
// concurrently created hold is simply adopted.
func (s *Service) ReconcileEscrow(ctx context.Context) (int, error) {
	rows, err := s.contracts.ListSignedWithoutHold(ctx, s.cfg.SweepBatchSize)
	if err != nil {
		return 0, err
	}
	replayed := 0
	for _, contract := range rows {
		if !domain.PaymentBearing(contract.Type) || !domain.EscrowEligible(contract.Terms, s.cfg.DefaultCurrency) {
			continue
		}
		hold, created, err := s.ensureHold(ctx, contract)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientFunds) {
				// Still unfunded; the sweep will try again next round.
				continue
			}
			s.logger.ErrorContext(ctx, "escrow reconciliation failed",
				"module", "reconcile",
				"operation", "reconcile_escrow",
				"outcome", "failure",
				"contract_id", contract.ContractID,
				"error", err,
			)
			continue
		}
		contract.EscrowID = hold.EscrowID
		contract.UpdatedAt = s.nowFn()
		if err := s.contracts.Update(ctx, contract); err != nil {
			s.logger.ErrorContext(ctx, "escrow reference write failed",
				"module", "reconcile",
				"operation", "reconcile_escrow",
				"outcome", "failure",
				"contract_id", contract.ContractID,
				"error", err,
			)
			continue
		}
		if created {
			s.appendAudit(ctx, contract.ContractID, "", domain.AuditReconciliationHoldReplayed,
				fmt.Sprintf("escrow_id=%s amount=%.2f", hold.EscrowID, hold.OriginalAmount))
			s.enqueueEscrowHeld(ctx, hold, "")
		}
		replayed++
	}
	return replayed, nil
}
