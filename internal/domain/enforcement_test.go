package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantActionsTaskAssignment(t *testing.T) {
	terms := Terms{TaskID: "t-1", ProjectID: "p-1"}
	actions := GrantActions(TypeTaskAssignment, terms, "u-2")
	require.Len(t, actions, 3)
	assert.Equal(t, ActionAssignTask, actions[0].Kind)
	assert.Equal(t, "t-1", actions[0].TargetID)
	assert.Equal(t, "u-2", actions[0].UserID)
	assert.Equal(t, ActionSetTaskStatus, actions[1].Kind)
	assert.Equal(t, "in_progress", actions[1].Status)
	assert.Equal(t, ActionAddProjectMember, actions[2].Kind)
	assert.Equal(t, "contractor", actions[2].Role)
}

func TestGrantActionsAdminGrantTransfersOwnership(t *testing.T) {
	actions := GrantActions(TypeProjectAdminGrant, Terms{ProjectID: "p-1"}, "u-2")
	require.Len(t, actions, 1)
	assert.Equal(t, ActionReassignOwner, actions[0].Kind)
	assert.Equal(t, "p-1", actions[0].TargetID)

	// Ownership transfers are permanent; nothing to revoke on close.
	assert.Empty(t, RevokeActions(TypeProjectAdminGrant, Terms{ProjectID: "p-1"}, "u-2"))
}

func TestGrantActionsInviteUsesTermsRole(t *testing.T) {
	actions := GrantActions(TypeWorkspaceInvite, Terms{WorkspaceID: "w-1", Role: "editor"}, "u-2")
	require.Len(t, actions, 1)
	assert.Equal(t, ActionAddWorkspaceMember, actions[0].Kind)
	assert.Equal(t, "editor", actions[0].Role)

	defaulted := GrantActions(TypeWorkspaceInvite, Terms{WorkspaceID: "w-1"}, "u-2")
	assert.Equal(t, "member", defaulted[0].Role)
}

func TestRevokeActionsMirrorGrants(t *testing.T) {
	terms := Terms{WorkspaceID: "w-1", ProjectID: "p-1"}
	actions := RevokeActions(TypeEmployment, terms, "u-2")
	require.Len(t, actions, 2)
	assert.Equal(t, ActionRemoveWorkspaceMember, actions[0].Kind)
	assert.Equal(t, ActionRemoveProjectMember, actions[1].Kind)
}

func TestFilterActionableDropsEmptyTargets(t *testing.T) {
	actions := FilterActionable(GrantActions(TypeTaskAssignment, Terms{TaskID: "t-1"}, "u-2"))
	require.Len(t, actions, 2)
	for _, a := range actions {
		assert.NotEmpty(t, a.TargetID)
	}
}
