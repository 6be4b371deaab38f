package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStatusTransition(t *testing.T) {
	valid := []struct{ from, to string }{
		{StatusPending, StatusSigned},
		{StatusPending, StatusRejected},
		{StatusPending, StatusExpired},
		{StatusPending, StatusCancelled},
		{StatusSigned, StatusCompleted},
		{StatusSigned, StatusTerminated},
		{StatusSigned, StatusDisputed},
		{StatusDisputed, StatusCompleted},
		{StatusDisputed, StatusTerminated},
	}
	for _, tc := range valid {
		assert.NoError(t, ValidateStatusTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	invalid := []struct{ from, to string }{
		{StatusRejected, StatusSigned},
		{StatusExpired, StatusSigned},
		{StatusCancelled, StatusSigned},
		{StatusSigned, StatusPending},
		{StatusCompleted, StatusTerminated},
		{StatusTerminated, StatusCompleted},
		{StatusDisputed, StatusPending},
		{StatusPending, StatusCompleted},
		{StatusPending, StatusDisputed},
	}
	for _, tc := range invalid {
		assert.ErrorIs(t, ValidateStatusTransition(tc.from, tc.to), ErrInvalidStateTransition, "%s -> %s", tc.from, tc.to)
	}
}

func TestNoBackwardEdgesFromTerminalStatuses(t *testing.T) {
	terminal := []string{StatusRejected, StatusExpired, StatusCancelled, StatusCompleted, StatusTerminated}
	all := []string{StatusPending, StatusSigned, StatusRejected, StatusExpired, StatusCancelled, StatusCompleted, StatusTerminated, StatusDisputed}
	for _, from := range terminal {
		require.True(t, IsTerminalStatus(from))
		for _, to := range all {
			assert.ErrorIs(t, ValidateStatusTransition(from, to), ErrInvalidStateTransition, "%s -> %s", from, to)
		}
	}
}

func TestNormalizeContractType(t *testing.T) {
	assert.Equal(t, TypeTaskAssignment, NormalizeContractType(" Task_Assignment "))
	assert.Equal(t, TypeWorkspaceInvite, NormalizeContractType("workspace_invite"))
	assert.Equal(t, "", NormalizeContractType("equity_swap"))
}

func TestPaymentBearing(t *testing.T) {
	assert.True(t, PaymentBearing(TypeTaskAssignment))
	assert.True(t, PaymentBearing(TypeEmployment))
	assert.False(t, PaymentBearing(TypeWorkspaceInvite))
	assert.False(t, PaymentBearing(TypeAgencyInvite))
}

func TestValidateTerms(t *testing.T) {
	assert.NoError(t, ValidateTerms(TypeTaskAssignment, Terms{TaskID: "t-1", Amount: 100}))
	assert.ErrorIs(t, ValidateTerms(TypeTaskAssignment, Terms{Amount: 100}), ErrValidation)
	assert.ErrorIs(t, ValidateTerms(TypeProjectAssignment, Terms{Amount: 100}), ErrValidation)
	assert.ErrorIs(t, ValidateTerms(TypeWorkspaceInvite, Terms{}), ErrValidation)
	assert.ErrorIs(t, ValidateTerms(TypeEmployment, Terms{WorkspaceID: "w-1"}), ErrValidation)
	assert.NoError(t, ValidateTerms(TypeEmployment, Terms{Role: "engineer", WorkspaceID: "w-1"}))
	assert.ErrorIs(t, ValidateTerms(TypeTaskAssignment, Terms{TaskID: "t-1", Amount: -1}), ErrValidation)
	assert.ErrorIs(t, ValidateTerms("unknown", Terms{}), ErrValidation)
}

func TestValidateTermsMilestones(t *testing.T) {
	base := Terms{TaskID: "t-1", Amount: 500}

	ok := base
	ok.Milestones = []Milestone{
		{MilestoneID: "m-1", Amount: 200},
		{MilestoneID: "m-2", Amount: 300},
	}
	assert.NoError(t, ValidateTerms(TypeTaskAssignment, ok))

	dup := base
	dup.Milestones = []Milestone{
		{MilestoneID: "m-1", Amount: 100},
		{MilestoneID: "m-1", Amount: 100},
	}
	assert.ErrorIs(t, ValidateTerms(TypeTaskAssignment, dup), ErrValidation)

	overflow := base
	overflow.Milestones = []Milestone{
		{MilestoneID: "m-1", Amount: 400},
		{MilestoneID: "m-2", Amount: 400},
	}
	assert.ErrorIs(t, ValidateTerms(TypeTaskAssignment, overflow), ErrValidation)

	zero := base
	zero.Milestones = []Milestone{{MilestoneID: "m-1", Amount: 0}}
	assert.ErrorIs(t, ValidateTerms(TypeTaskAssignment, zero), ErrValidation)
}

func TestAdvanceMilestoneStatus(t *testing.T) {
	assert.NoError(t, AdvanceMilestoneStatus(MilestoneStatusPending, MilestoneStatusSubmitted))
	assert.NoError(t, AdvanceMilestoneStatus(MilestoneStatusPending, MilestoneStatusPaid))
	assert.NoError(t, AdvanceMilestoneStatus(MilestoneStatusSubmitted, MilestoneStatusPaid))
	assert.ErrorIs(t, AdvanceMilestoneStatus(MilestoneStatusPaid, MilestoneStatusSubmitted), ErrInvalidStateTransition)
	assert.ErrorIs(t, AdvanceMilestoneStatus(MilestoneStatusSubmitted, MilestoneStatusPending), ErrInvalidStateTransition)
}
