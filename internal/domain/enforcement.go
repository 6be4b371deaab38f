package domain

// Enforcement action kinds. Each kind maps onto one collaborator call; the
// executor fans them out best-effort and never rolls back siblings.
const (
	ActionAddProjectMember      = "add_project_member"
	ActionReassignOwner         = "reassign_project_owner"
	ActionAssignTask            = "assign_task"
	ActionSetTaskStatus         = "set_task_status"
	ActionAddWorkspaceMember    = "add_workspace_member"
	ActionAddChatMember         = "add_chat_member"
	ActionRemoveProjectMember   = "remove_project_member"
	ActionUnassignTask          = "unassign_task"
	ActionRemoveWorkspaceMember = "remove_workspace_member"
)

type EnforcementAction struct {
	Kind     string
	TargetID string
	UserID   string
	Role     string
	Status   string
}

// GrantActions is the pure rule table mapping a contract type and its terms
// to the access grants applied when the contract enters the signed state.
func GrantActions(contractType string, terms Terms, counterpartyID string) []EnforcementAction {
	role := terms.Role
	if role == "" {
		role = "member"
	}
	switch contractType {
	case TypeTaskAssignment:
		return []EnforcementAction{
			{Kind: ActionAssignTask, TargetID: terms.TaskID, UserID: counterpartyID},
			{Kind: ActionSetTaskStatus, TargetID: terms.TaskID, Status: "in_progress"},
			{Kind: ActionAddProjectMember, TargetID: terms.ProjectID, UserID: counterpartyID, Role: "contractor"},
		}
	case TypeProjectAssignment:
		return []EnforcementAction{
			{Kind: ActionAddProjectMember, TargetID: terms.ProjectID, UserID: counterpartyID, Role: role},
		}
	case TypeWorkspaceInvite, TypeAgencyInvite:
		return []EnforcementAction{
			{Kind: ActionAddWorkspaceMember, TargetID: terms.WorkspaceID, UserID: counterpartyID, Role: role},
		}
	case TypeEmployment:
		return []EnforcementAction{
			{Kind: ActionAddWorkspaceMember, TargetID: terms.WorkspaceID, UserID: counterpartyID, Role: role},
			{Kind: ActionAddProjectMember, TargetID: terms.ProjectID, UserID: counterpartyID, Role: role},
		}
	case TypeProjectAdminGrant:
		return []EnforcementAction{
			{Kind: ActionReassignOwner, TargetID: terms.ProjectID, UserID: counterpartyID},
		}
	case TypeTaskAdminGrant:
		return []EnforcementAction{
			{Kind: ActionAssignTask, TargetID: terms.TaskID, UserID: counterpartyID},
		}
	default:
		return nil
	}
}

// RevokeActions mirrors GrantActions for temporal/administrative grants when
// a contract reaches completed or terminated. Ownership transfers are
// permanent and are not unwound here.
func RevokeActions(contractType string, terms Terms, counterpartyID string) []EnforcementAction {
	switch contractType {
	case TypeTaskAssignment:
		return []EnforcementAction{
			{Kind: ActionUnassignTask, TargetID: terms.TaskID, UserID: counterpartyID},
		}
	case TypeProjectAssignment:
		return []EnforcementAction{
			{Kind: ActionRemoveProjectMember, TargetID: terms.ProjectID, UserID: counterpartyID},
		}
	case TypeWorkspaceInvite, TypeAgencyInvite:
		return []EnforcementAction{
			{Kind: ActionRemoveWorkspaceMember, TargetID: terms.WorkspaceID, UserID: counterpartyID},
		}
	case TypeEmployment:
		return []EnforcementAction{
			{Kind: ActionRemoveWorkspaceMember, TargetID: terms.WorkspaceID, UserID: counterpartyID},
			{Kind: ActionRemoveProjectMember, TargetID: terms.ProjectID, UserID: counterpartyID},
		}
	default:
		return nil
	}
}

// FilterActionable drops actions whose target id is empty: terms may omit an
// optional linked entity (for example a task contract with no project id).
func FilterActionable(actions []EnforcementAction) []EnforcementAction {
	out := make([]EnforcementAction, 0, len(actions))
	for _, a := range actions {
		if a.TargetID == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}
