package application

import (
	"context"
	"fmt"

	"github.com/workgrid/contract-engine/internal/domain"
)

// applyGrants fans out the access grants for a newly signed contract.
// Each collaborator call is independent and best-effort: a failure is logged
// and audited but never aborts the siblings or the signature.
func (s *Service) applyGrants(ctx context.Context, contract domain.Contract) {
	terms := s.enrichTerms(ctx, contract)
	actions := domain.FilterActionable(domain.GrantActions(contract.Type, terms, contract.CounterpartyID))
	actions = append(actions, s.chatGrant(contract)...)

	applied := 0
	for _, action := range actions {
		if err := s.executeAction(ctx, action); err != nil {
			s.logger.ErrorContext(ctx, "enforcement grant failed",
				"module", "enforcement",
				"operation", "apply_grant",
				"outcome", "failure",
				"contract_id", contract.ContractID,
				"action", action.Kind,
				"target_id", action.TargetID,
				"error", err,
			)
			s.appendAudit(ctx, contract.ContractID, "", domain.AuditEnforcementGrantFailed,
				fmt.Sprintf("action=%s target=%s error=%s", action.Kind, action.TargetID, err.Error()))
			continue
		}
		applied++
	}
	if applied > 0 {
		s.appendAudit(ctx, contract.ContractID, "", domain.AuditEnforcementGrantApplied,
			fmt.Sprintf("applied=%d of %d", applied, len(actions)))
	}
}

// applyRevocations mirrors applyGrants for temporal grants when a contract
// reaches completed or terminated.
func (s *Service) applyRevocations(ctx context.Context, contract domain.Contract) {
	terms := s.enrichTerms(ctx, contract)
	actions := domain.FilterActionable(domain.RevokeActions(contract.Type, terms, contract.CounterpartyID))

	applied := 0
	for _, action := range actions {
		if err := s.executeAction(ctx, action); err != nil {
			s.logger.ErrorContext(ctx, "enforcement revoke failed",
				"module", "enforcement",
				"operation", "apply_revoke",
				"outcome", "failure",
				"contract_id", contract.ContractID,
				"action", action.Kind,
				"target_id", action.TargetID,
				"error", err,
			)
			s.appendAudit(ctx, contract.ContractID, "", domain.AuditEnforcementRevokeFailed,
				fmt.Sprintf("action=%s target=%s error=%s", action.Kind, action.TargetID, err.Error()))
			continue
		}
		applied++
	}
	if applied > 0 {
		s.appendAudit(ctx, contract.ContractID, "", domain.AuditEnforcementRevokeApplied,
			fmt.Sprintf("applied=%d of %d", applied, len(actions)))
	}
}

// enrichTerms fills the project id for task-scoped contracts when the terms
// only carry the task id. Lookup failures fall back to the raw terms.
func (s *Service) enrichTerms(ctx context.Context, contract domain.Contract) domain.Terms {
	terms := contract.Terms
	if terms.TaskID == "" || terms.ProjectID != "" || s.task == nil {
		return terms
	}
	ref, err := s.task.GetTask(ctx, terms.TaskID)
	if err != nil {
		s.logger.WarnContext(ctx, "task lookup failed",
			"module", "enforcement",
			"operation", "enrich_terms",
			"outcome", "failure",
			"contract_id", contract.ContractID,
			"task_id", terms.TaskID,
			"error", err,
		)
		return terms
	}
	terms.ProjectID = ref.ProjectID
	if terms.WorkspaceID == "" {
		terms.WorkspaceID = ref.WorkspaceID
	}
	return terms
}

// chatGrant adds the counterparty to the contract's conversation thread.
// The platform keys contract chats by contract id.
func (s *Service) chatGrant(contract domain.Contract) []domain.EnforcementAction {
	if s.chat == nil {
		return nil
	}
	return []domain.EnforcementAction{
		{Kind: domain.ActionAddChatMember, TargetID: contract.ContractID, UserID: contract.CounterpartyID, Role: "member"},
	}
}

func (s *Service) executeAction(ctx context.Context, action domain.EnforcementAction) error {
	switch action.Kind {
	case domain.ActionAddProjectMember:
		if s.project == nil {
			return nil
		}
		return s.project.AddMember(ctx, action.TargetID, action.UserID, action.Role, "contract")
	case domain.ActionRemoveProjectMember:
		if s.project == nil {
			return nil
		}
		return s.project.RemoveMember(ctx, action.TargetID, action.UserID)
	case domain.ActionReassignOwner:
		if s.project == nil {
			return nil
		}
		return s.project.ReassignOwner(ctx, action.TargetID, action.UserID)
	case domain.ActionAssignTask:
		if s.task == nil {
			return nil
		}
		return s.task.Assign(ctx, action.TargetID, action.UserID)
	case domain.ActionUnassignTask:
		if s.task == nil {
			return nil
		}
		return s.task.Unassign(ctx, action.TargetID, action.UserID)
	case domain.ActionSetTaskStatus:
		if s.task == nil {
			return nil
		}
		return s.task.SetStatus(ctx, action.TargetID, action.Status)
	case domain.ActionAddWorkspaceMember:
		if s.workspace == nil {
			return nil
		}
		return s.workspace.AddMember(ctx, action.TargetID, action.UserID, action.Role, "contract")
	case domain.ActionRemoveWorkspaceMember:
		if s.workspace == nil {
			return nil
		}
		return s.workspace.RemoveMember(ctx, action.TargetID, action.UserID)
	case domain.ActionAddChatMember:
		if s.chat == nil {
			return nil
		}
		return s.chat.AddMember(ctx, action.TargetID, action.UserID, action.Role)
	default:
		return fmt.Errorf("unknown enforcement action %q", action.Kind)
	}
}
