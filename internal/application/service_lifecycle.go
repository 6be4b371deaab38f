package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/workgrid/contract-engine/internal/domain"
	"github.com/workgrid/contract-engine/internal/ports"
)

// Propose creates a contract in pending. Validation failures abort before any
// mutation; nothing is written on error.
func (s *Service) Propose(ctx context.Context, actor Actor, input ProposeInput) (domain.Contract, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Contract{}, domain.ErrUnauthorized
	}
	contractType := domain.NormalizeContractType(input.Type)
	if contractType == "" {
		return domain.Contract{}, domain.ErrValidation
	}
	counterparty := strings.TrimSpace(input.CounterpartyID)
	if counterparty == "" || counterparty == actor.SubjectID {
		return domain.Contract{}, domain.ErrValidation
	}
	if strings.TrimSpace(input.Title) == "" {
		return domain.Contract{}, domain.ErrValidation
	}
	if err := domain.ValidateTerms(contractType, input.Terms); err != nil {
		return domain.Contract{}, err
	}

	terms := input.Terms
	if terms.Currency == "" && terms.Amount > 0 {
		terms.Currency = s.cfg.DefaultCurrency
	}
	for i := range terms.Milestones {
		terms.Milestones[i].Status = domain.MilestoneStatusPending
	}

	now := s.nowFn()
	contract := domain.Contract{
		ContractID:     uuid.NewString(),
		Type:           contractType,
		Status:         domain.StatusPending,
		InitiatorID:    actor.SubjectID,
		CounterpartyID: counterparty,
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Terms:          terms,
		ExpiresAt:      input.ExpiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.contracts.Create(ctx, contract); err != nil {
		return domain.Contract{}, err
	}
	s.appendAudit(ctx, contract.ContractID, actor.SubjectID, domain.AuditProposed, fmt.Sprintf("type=%s counterparty=%s", contractType, counterparty))
	s.enqueueContractEvent(ctx, domain.EventContractProposed, contract, actor.RequestID)
	s.notifyOnce(ctx, contract.CounterpartyID, "contract_proposed", contract)
	return contract, nil
}

// Sign moves a pending contract to signed, funds escrow when the type is
// payment-bearing, applies enforcement grants and notifies the initiator.
// Escrow funding and enforcement are best-effort after the status write; a
// funding failure is downgraded to an audit entry, never a call failure.
func (s *Service) Sign(ctx context.Context, actor Actor, input SignInput) (domain.Contract, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Contract{}, domain.ErrUnauthorized
	}
	contract, err := s.contracts.GetByID(ctx, strings.TrimSpace(input.ContractID))
	if err != nil {
		return domain.Contract{}, err
	}
	// Authorization before state inspection: a caller who is not the
	// counterparty learns nothing about the contract's lifecycle.
	if actor.SubjectID != contract.CounterpartyID {
		return domain.Contract{}, domain.ErrUnauthorized
	}
	if contract.Status == domain.StatusSigned {
		return domain.Contract{}, domain.ErrAlreadySigned
	}
	if err := domain.ValidateStatusTransition(contract.Status, domain.StatusSigned); err != nil {
		return domain.Contract{}, err
	}

	now := s.nowFn()
	contract.Status = domain.StatusSigned
	contract.SignedName = strings.TrimSpace(input.FullName)
	contract.UpdatedAt = now
	if err := s.contracts.Update(ctx, contract); err != nil {
		return domain.Contract{}, err
	}
	s.appendAudit(ctx, contract.ContractID, actor.SubjectID, domain.AuditSigned, fmt.Sprintf("signed_name=%s", contract.SignedName))

	contract = s.fundEscrowOnSign(ctx, contract, actor)
	s.applyGrants(ctx, contract)
	s.enqueueContractEvent(ctx, domain.EventContractSigned, contract, actor.RequestID)
	s.notifyOnce(ctx, contract.InitiatorID, "contract_signed", contract)
	return contract, nil
}

// fundEscrowOnSign applies the §funding policy: non-monetary terms skip
// escrow with an audit note, and an insufficient-funds debit does not block
// the signature. The contract keeps its signed status either way.
func (s *Service) fundEscrowOnSign(ctx context.Context, contract domain.Contract, actor Actor) domain.Contract {
	if !domain.PaymentBearing(contract.Type) {
		return contract
	}
	if !domain.EscrowEligible(contract.Terms, s.cfg.DefaultCurrency) {
		s.appendAudit(ctx, contract.ContractID, "", domain.AuditEscrowSkippedNonMonetary,
			fmt.Sprintf("amount=%.2f currency=%s", contract.Terms.Amount, contract.Terms.Currency))
		return contract
	}
	hold, created, err := s.ensureHold(ctx, contract)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			s.appendAudit(ctx, contract.ContractID, contract.InitiatorID, domain.AuditEscrowSkippedNoFunds,
				fmt.Sprintf("amount=%.2f", contract.Terms.Amount))
			return contract
		}
		s.logger.ErrorContext(ctx, "escrow funding failed",
			"module", "lifecycle",
			"operation", "fund_escrow",
			"outcome", "failure",
			"contract_id", contract.ContractID,
			"error", err,
		)
		s.appendAudit(ctx, contract.ContractID, "", domain.AuditEscrowFailed, err.Error())
		return contract
	}
	contract.EscrowID = hold.EscrowID
	contract.UpdatedAt = s.nowFn()
	if err := s.contracts.Update(ctx, contract); err != nil {
		s.logger.ErrorContext(ctx, "escrow reference write failed",
			"module", "lifecycle",
			"operation", "fund_escrow",
			"outcome", "failure",
			"contract_id", contract.ContractID,
			"error", err,
		)
	}
	if created {
		s.appendAudit(ctx, contract.ContractID, contract.InitiatorID, domain.AuditEscrowHeld,
			fmt.Sprintf("escrow_id=%s amount=%.2f", hold.EscrowID, hold.OriginalAmount))
		s.enqueueEscrowHeld(ctx, hold, actor.RequestID)
	}
	return contract
}

// Reject declines a pending contract. No escrow or enforcement action runs.
func (s *Service) Reject(ctx context.Context, actor Actor, input RejectInput) (domain.Contract, error) {
	return s.declinePending(ctx, actor, input.ContractID, domain.StatusRejected, domain.AuditRejected, domain.EventContractRejected, input.Reason, false)
}

// Cancel withdraws a pending offer; only the initiator may cancel.
func (s *Service) Cancel(ctx context.Context, actor Actor, contractID string) (domain.Contract, error) {
	return s.declinePending(ctx, actor, contractID, domain.StatusCancelled, domain.AuditCancelled, domain.EventContractCancelled, "", true)
}

func (s *Service) declinePending(ctx context.Context, actor Actor, contractID, toStatus, auditAction, eventType, reason string, byInitiator bool) (domain.Contract, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Contract{}, domain.ErrUnauthorized
	}
	contract, err := s.contracts.GetByID(ctx, strings.TrimSpace(contractID))
	if err != nil {
		return domain.Contract{}, err
	}
	if err := domain.ValidateStatusTransition(contract.Status, toStatus); err != nil {
		return domain.Contract{}, err
	}
	required := contract.CounterpartyID
	other := contract.InitiatorID
	if byInitiator {
		required, other = contract.InitiatorID, contract.CounterpartyID
	}
	if actor.SubjectID != required {
		return domain.Contract{}, domain.ErrUnauthorized
	}

	contract.Status = toStatus
	contract.UpdatedAt = s.nowFn()
	if err := s.contracts.Update(ctx, contract); err != nil {
		return domain.Contract{}, err
	}
	s.appendAudit(ctx, contract.ContractID, actor.SubjectID, auditAction, strings.TrimSpace(reason))
	s.enqueueContractEvent(ctx, eventType, contract, actor.RequestID)
	s.notifyOnce(ctx, other, "contract_"+toStatus, contract)
	return contract, nil
}

// Expire is the system-triggered deadline transition. Calling it on a
// contract that already reached a terminal state is a no-op.
func (s *Service) Expire(ctx context.Context, contractID string) error {
	contract, err := s.contracts.GetByID(ctx, strings.TrimSpace(contractID))
	if err != nil {
		return err
	}
	if domain.IsTerminalStatus(contract.Status) {
		return nil
	}
	if contract.Status != domain.StatusPending {
		return nil
	}
	if contract.ExpiresAt == nil || s.nowFn().Before(*contract.ExpiresAt) {
		return nil
	}
	contract.Status = domain.StatusExpired
	contract.UpdatedAt = s.nowFn()
	if err := s.contracts.Update(ctx, contract); err != nil {
		return err
	}
	s.appendAudit(ctx, contract.ContractID, "", domain.AuditExpired, "deadline passed")
	s.enqueueContractEvent(ctx, domain.EventContractExpired, contract, "")
	s.notifyOnce(ctx, contract.InitiatorID, "contract_expired", contract)
	return nil
}

// Complete closes out a signed (or disputed) contract: remaining escrow is
// released to the payee and temporal grants are revoked. Only the initiator,
// the original payer, may complete.
func (s *Service) Complete(ctx context.Context, actor Actor, contractID string) (domain.Contract, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Contract{}, domain.ErrUnauthorized
	}
	contract, err := s.contracts.GetByID(ctx, strings.TrimSpace(contractID))
	if err != nil {
		return domain.Contract{}, err
	}
	if err := domain.ValidateStatusTransition(contract.Status, domain.StatusCompleted); err != nil {
		return domain.Contract{}, err
	}
	if actor.SubjectID != contract.InitiatorID {
		return domain.Contract{}, domain.ErrUnauthorized
	}

	contract.Status = domain.StatusCompleted
	contract.UpdatedAt = s.nowFn()
	if err := s.contracts.Update(ctx, contract); err != nil {
		return domain.Contract{}, err
	}
	s.appendAudit(ctx, contract.ContractID, actor.SubjectID, domain.AuditCompleted, "")
	s.settleOnClose(ctx, contract, actor, true)
	s.applyRevocations(ctx, contract)
	s.enqueueContractEvent(ctx, domain.EventContractCompleted, contract, actor.RequestID)
	s.notifyOnce(ctx, contract.CounterpartyID, "contract_completed", contract)
	return contract, nil
}

// Terminate ends a signed (or disputed) contract early. Held escrow is
// refunded to the payer; grants are revoked. Either party may terminate.
func (s *Service) Terminate(ctx context.Context, actor Actor, input TerminateInput) (domain.Contract, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Contract{}, domain.ErrUnauthorized
	}
	contract, err := s.contracts.GetByID(ctx, strings.TrimSpace(input.ContractID))
	if err != nil {
		return domain.Contract{}, err
	}
	if err := domain.ValidateStatusTransition(contract.Status, domain.StatusTerminated); err != nil {
		return domain.Contract{}, err
	}
	if actor.SubjectID != contract.InitiatorID && actor.SubjectID != contract.CounterpartyID {
		return domain.Contract{}, domain.ErrUnauthorized
	}

	contract.Status = domain.StatusTerminated
	contract.UpdatedAt = s.nowFn()
	if err := s.contracts.Update(ctx, contract); err != nil {
		return domain.Contract{}, err
	}
	s.appendAudit(ctx, contract.ContractID, actor.SubjectID, domain.AuditTerminated, strings.TrimSpace(input.Reason))
	s.settleOnClose(ctx, contract, actor, false)
	s.applyRevocations(ctx, contract)
	s.enqueueContractEvent(ctx, domain.EventContractTerminated, contract, actor.RequestID)
	other := contract.CounterpartyID
	if actor.SubjectID == other {
		other = contract.InitiatorID
	}
	s.notifyOnce(ctx, other, "contract_terminated", contract)
	return contract, nil
}

// Dispute freezes a signed contract. Escrow stays put until the dispute is
// resolved through Complete or Terminate.
func (s *Service) Dispute(ctx context.Context, actor Actor, input DisputeInput) (domain.Contract, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Contract{}, domain.ErrUnauthorized
	}
	if strings.TrimSpace(input.Reason) == "" {
		return domain.Contract{}, domain.ErrValidation
	}
	contract, err := s.contracts.GetByID(ctx, strings.TrimSpace(input.ContractID))
	if err != nil {
		return domain.Contract{}, err
	}
	if err := domain.ValidateStatusTransition(contract.Status, domain.StatusDisputed); err != nil {
		return domain.Contract{}, err
	}
	if actor.SubjectID != contract.InitiatorID && actor.SubjectID != contract.CounterpartyID {
		return domain.Contract{}, domain.ErrUnauthorized
	}

	contract.Status = domain.StatusDisputed
	contract.UpdatedAt = s.nowFn()
	if err := s.contracts.Update(ctx, contract); err != nil {
		return domain.Contract{}, err
	}
	s.appendAudit(ctx, contract.ContractID, actor.SubjectID, domain.AuditDisputed, strings.TrimSpace(input.Reason))
	s.enqueueContractEvent(ctx, domain.EventContractDisputed, contract, actor.RequestID)
	s.notifyOnce(ctx, contract.InitiatorID, "contract_disputed", contract)
	s.notifyOnce(ctx, contract.CounterpartyID, "contract_disputed", contract)
	return contract, nil
}

func (s *Service) GetContract(ctx context.Context, actor Actor, contractID string) (domain.Contract, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Contract{}, domain.ErrUnauthorized
	}
	contract, err := s.contracts.GetByID(ctx, strings.TrimSpace(contractID))
	if err != nil {
		return domain.Contract{}, err
	}
	if actor.Role != "admin" && actor.SubjectID != contract.InitiatorID && actor.SubjectID != contract.CounterpartyID {
		return domain.Contract{}, domain.ErrForbidden
	}
	audit, err := s.contracts.ListAudit(ctx, contract.ContractID)
	if err != nil {
		return domain.Contract{}, err
	}
	contract.Audit = audit
	return contract, nil
}

func (s *Service) ListContracts(ctx context.Context, actor Actor, query ports.ContractListQuery) (ListContractsOutput, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return ListContractsOutput{}, domain.ErrUnauthorized
	}
	if actor.Role != "admin" {
		query.PartyID = actor.SubjectID
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}
	if query.Offset < 0 {
		query.Offset = 0
	}
	items, total, err := s.contracts.List(ctx, query)
	if err != nil {
		return ListContractsOutput{}, err
	}
	return ListContractsOutput{Items: items, Total: total}, nil
}

func (s *Service) appendAudit(ctx context.Context, contractID, actorID, action, detail string) {
	entry := domain.AuditEntry{
		EntryID:    uuid.NewString(),
		ContractID: contractID,
		ActorID:    actorID,
		Action:     action,
		Detail:     detail,
		OccurredAt: s.nowFn(),
	}
	if err := s.contracts.AppendAudit(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "audit append failed",
			"module", "lifecycle",
			"operation", "append_audit",
			"outcome", "failure",
			"contract_id", contractID,
			"action", action,
			"error", err,
		)
	}
}

func (s *Service) notifyOnce(ctx context.Context, userID, kind string, contract domain.Contract) {
	if s.notifier == nil || strings.TrimSpace(userID) == "" {
		return
	}
	if s.dedup != nil {
		first, err := s.dedup.FirstDelivery(ctx, contract.ContractID+":"+kind+":"+userID, s.cfg.NotificationTTL)
		if err == nil && !first {
			return
		}
	}
	if err := s.notifier.Notify(ctx, userID, kind, map[string]any{
		"contract_id": contract.ContractID,
		"type":        contract.Type,
		"status":      contract.Status,
		"title":       contract.Title,
	}); err != nil {
		s.logger.WarnContext(ctx, "notification delivery failed",
			"module", "lifecycle",
			"operation", "notify",
			"outcome", "failure",
			"contract_id", contract.ContractID,
			"kind", kind,
			"error", err,
		)
	}
}
