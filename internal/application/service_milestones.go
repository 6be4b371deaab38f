package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/workgrid/contract-engine/internal/domain"
)

// SubmitMilestoneEvidence lets the counterparty attach proof of work and
// advance a milestone to submitted. Already-paid milestones are left alone.
func (s *Service) SubmitMilestoneEvidence(ctx context.Context, actor Actor, input MilestoneEvidenceInput) (domain.Contract, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Contract{}, domain.ErrUnauthorized
	}
	if strings.TrimSpace(input.Evidence) == "" {
		return domain.Contract{}, domain.ErrValidation
	}
	contract, err := s.contracts.GetByID(ctx, strings.TrimSpace(input.ContractID))
	if err != nil {
		return domain.Contract{}, err
	}
	if actor.SubjectID != contract.CounterpartyID {
		return domain.Contract{}, domain.ErrUnauthorized
	}
	if contract.Status != domain.StatusSigned {
		return domain.Contract{}, domain.ErrInvalidStateTransition
	}
	idx := milestoneIndex(contract.Terms.Milestones, input.MilestoneID)
	if idx < 0 {
		return domain.Contract{}, domain.ErrNotFound
	}
	milestone := contract.Terms.Milestones[idx]
	if milestone.Status == domain.MilestoneStatusPaid {
		return contract, nil
	}
	if err := domain.AdvanceMilestoneStatus(milestone.Status, domain.MilestoneStatusSubmitted); err != nil {
		return domain.Contract{}, err
	}

	now := s.nowFn()
	milestone.Status = domain.MilestoneStatusSubmitted
	milestone.Evidence = strings.TrimSpace(input.Evidence)
	milestone.SubmittedAt = &now
	contract.Terms.Milestones[idx] = milestone
	contract.UpdatedAt = now
	if err := s.contracts.Update(ctx, contract); err != nil {
		return domain.Contract{}, err
	}
	s.appendAudit(ctx, contract.ContractID, actor.SubjectID, domain.AuditMilestoneSubmitted,
		fmt.Sprintf("milestone=%s", milestone.MilestoneID))
	s.notifyOnce(ctx, contract.InitiatorID, "milestone_submitted", contract)
	return contract, nil
}

// ApproveMilestone is the payer's partial-release path: it pays the milestone
// amount out of escrow without a full contract transition. Re-approving a
// paid milestone is an idempotent no-op.
func (s *Service) ApproveMilestone(ctx context.Context, actor Actor, input ApproveMilestoneInput) (domain.Contract, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Contract{}, domain.ErrUnauthorized
	}
	contract, err := s.contracts.GetByID(ctx, strings.TrimSpace(input.ContractID))
	if err != nil {
		return domain.Contract{}, err
	}
	if actor.SubjectID != contract.InitiatorID {
		return domain.Contract{}, domain.ErrUnauthorized
	}
	if contract.Status != domain.StatusSigned {
		return domain.Contract{}, domain.ErrInvalidStateTransition
	}
	idx := milestoneIndex(contract.Terms.Milestones, input.MilestoneID)
	if idx < 0 {
		return domain.Contract{}, domain.ErrNotFound
	}
	milestone := contract.Terms.Milestones[idx]
	if milestone.Status == domain.MilestoneStatusPaid {
		return contract, nil
	}

	hold, err := s.holds.GetByContractID(ctx, contract.ContractID)
	if err != nil {
		return domain.Contract{}, err
	}
	if _, err := s.releasePartial(ctx, hold, milestone.Amount, "milestone "+milestone.MilestoneID); err != nil {
		return domain.Contract{}, err
	}

	now := s.nowFn()
	milestone.Status = domain.MilestoneStatusPaid
	milestone.PaidAt = &now
	contract.Terms.Milestones[idx] = milestone
	contract.UpdatedAt = now
	if err := s.contracts.Update(ctx, contract); err != nil {
		return domain.Contract{}, err
	}
	s.appendAudit(ctx, contract.ContractID, actor.SubjectID, domain.AuditMilestonePaid,
		fmt.Sprintf("milestone=%s amount=%.2f", milestone.MilestoneID, milestone.Amount))
	s.enqueueMilestonePaid(ctx, contract, milestone, actor.RequestID)
	s.notifyOnce(ctx, contract.CounterpartyID, "milestone_paid", contract)
	return contract, nil
}

func milestoneIndex(milestones []domain.Milestone, milestoneID string) int {
	id := strings.TrimSpace(milestoneID)
	for i, m := range milestones {
		if m.MilestoneID == id {
			return i
		}
	}
	return -1
}
