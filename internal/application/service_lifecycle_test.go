package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workgrid/contract-engine/internal/application"
	"github.com/workgrid/contract-engine/internal/domain"
	"github.com/workgrid/contract-engine/internal/ports"
)

func TestProposeValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Propose(ctx, application.Actor{}, application.ProposeInput{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = env.svc.Propose(ctx, actorFor(payerID), application.ProposeInput{
		Type:           "equity_swap",
		CounterpartyID: payeeID,
		Title:          "x",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.svc.Propose(ctx, actorFor(payerID), application.ProposeInput{
		Type:           domain.TypeTaskAssignment,
		CounterpartyID: payerID,
		Title:          "self-dealing",
		Terms:          domain.Terms{TaskID: "t-1"},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Nothing was persisted by the failed attempts.
	out, err := env.svc.ListContracts(ctx, actorFor(payerID), ports.ContractListQuery{})
	require.NoError(t, err)
	assert.Zero(t, out.Total)
}

func TestProposeDefaultsCurrencyAndMilestoneStatus(t *testing.T) {
	env := newTestEnv(t)
	contract := env.proposeTask(t, 500, []domain.Milestone{{MilestoneID: "m-1", Amount: 200, Status: "paid"}})

	assert.Equal(t, domain.StatusPending, contract.Status)
	assert.Equal(t, "USD", contract.Terms.Currency)
	assert.Equal(t, domain.MilestoneStatusPending, contract.Terms.Milestones[0].Status)
	assert.Contains(t, env.auditActions(t, contract.ContractID), domain.AuditProposed)
}

func TestSignFundsEscrow(t *testing.T) {
	env := newTestEnv(t)
	env.deposit(t, payerID, 500)
	contract := env.proposeTask(t, 500, nil)

	signed := env.sign(t, contract.ContractID)

	assert.Equal(t, domain.StatusSigned, signed.Status)
	assert.Equal(t, domain.HoldID(contract.ContractID), signed.EscrowID)
	assert.Equal(t, "Pat Doe", signed.SignedName)
	assert.Zero(t, env.balance(t, payerID))

	hold, err := env.repos.Holds.GetByContractID(context.Background(), contract.ContractID)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldStatusHeld, hold.Status)
	assert.Equal(t, 500.0, hold.OriginalAmount)
	assert.Equal(t, 500.0, hold.RemainingAmount)

	actions := env.auditActions(t, contract.ContractID)
	assert.Contains(t, actions, domain.AuditSigned)
	assert.Contains(t, actions, domain.AuditEscrowHeld)
}

func TestSignInsufficientFundsDoesNotBlockSignature(t *testing.T) {
	env := newTestEnv(t)
	env.deposit(t, payerID, 100)
	contract := env.proposeTask(t, 500, nil)

	signed := env.sign(t, contract.ContractID)

	assert.Equal(t, domain.StatusSigned, signed.Status)
	assert.Empty(t, signed.EscrowID)
	assert.Equal(t, 100.0, env.balance(t, payerID))

	_, err := env.repos.Holds.GetByContractID(context.Background(), contract.ContractID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	actions := env.auditActions(t, contract.ContractID)
	assert.Contains(t, actions, domain.AuditEscrowSkippedNoFunds)
	assert.NotContains(t, actions, domain.AuditEscrowHeld)
}

func TestSignNonMonetaryInviteSkipsEscrow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contract, err := env.svc.Propose(ctx, actorFor(payerID), application.ProposeInput{
		Type:           domain.TypeWorkspaceInvite,
		CounterpartyID: payeeID,
		Title:          "Join the workspace",
		Terms:          domain.Terms{WorkspaceID: "w-1"},
	})
	require.NoError(t, err)

	signed := env.sign(t, contract.ContractID)
	assert.Empty(t, signed.EscrowID)
	assert.NotContains(t, env.auditActions(t, contract.ContractID), domain.AuditEscrowSkippedNonMonetary)
	assert.Contains(t, env.clients.ops(), "workspace.add_member")
}

func TestSignZeroAmountSkipsEscrowWithAudit(t *testing.T) {
	env := newTestEnv(t)
	contract := env.proposeTask(t, 0, nil)

	signed := env.sign(t, contract.ContractID)
	assert.Empty(t, signed.EscrowID)
	assert.Contains(t, env.auditActions(t, contract.ContractID), domain.AuditEscrowSkippedNonMonetary)
}

func TestSignTwiceReturnsAlreadySigned(t *testing.T) {
	env := newTestEnv(t)
	env.deposit(t, payerID, 500)
	contract := env.proposeTask(t, 500, nil)
	env.sign(t, contract.ContractID)

	_, err := env.svc.Sign(context.Background(), actorFor(payeeID), application.SignInput{ContractID: contract.ContractID})
	assert.ErrorIs(t, err, domain.ErrAlreadySigned)

	// No duplicate hold or double debit on the replay.
	hold, getErr := env.repos.Holds.GetByContractID(context.Background(), contract.ContractID)
	require.NoError(t, getErr)
	assert.Equal(t, 500.0, hold.OriginalAmount)
	assert.Zero(t, env.balance(t, payerID))
}

func TestSignAfterRejectFails(t *testing.T) {
	env := newTestEnv(t)
	contract := env.proposeTask(t, 500, nil)

	_, err := env.svc.Reject(context.Background(), actorFor(payeeID), application.RejectInput{
		ContractID: contract.ContractID,
		Reason:     "rate too low",
	})
	require.NoError(t, err)

	_, err = env.svc.Sign(context.Background(), actorFor(payeeID), application.SignInput{ContractID: contract.ContractID})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestSignByWrongPartyFails(t *testing.T) {
	env := newTestEnv(t)
	contract := env.proposeTask(t, 500, nil)

	_, err := env.svc.Sign(context.Background(), actorFor(payerID), application.SignInput{ContractID: contract.ContractID})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = env.svc.Sign(context.Background(), actorFor("u-stranger"), application.SignInput{ContractID: contract.ContractID})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSignByStrangerDoesNotRevealLifecycleState(t *testing.T) {
	env := newTestEnv(t)
	env.deposit(t, payerID, 500)
	contract := env.proposeTask(t, 500, nil)
	env.sign(t, contract.ContractID)

	// A probing caller gets unauthorized, not already_signed: the error must
	// not leak whether the contract has been signed.
	_, err := env.svc.Sign(context.Background(), actorFor("u-stranger"), application.SignInput{ContractID: contract.ContractID})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// The counterparty still sees the signed state on a replay.
	_, err = env.svc.Sign(context.Background(), actorFor(payeeID), application.SignInput{ContractID: contract.ContractID})
	assert.ErrorIs(t, err, domain.ErrAlreadySigned)
}

func TestCancelOnlyByInitiator(t *testing.T) {
	env := newTestEnv(t)
	contract := env.proposeTask(t, 500, nil)

	_, err := env.svc.Cancel(context.Background(), actorFor(payeeID), contract.ContractID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	cancelled, err := env.svc.Cancel(context.Background(), actorFor(payerID), contract.ContractID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
}

func TestSignAppliesEnforcementGrants(t *testing.T) {
	env := newTestEnv(t)
	env.deposit(t, payerID, 500)
	contract := env.proposeTask(t, 500, nil)
	env.sign(t, contract.ContractID)

	ops := env.clients.ops()
	assert.Contains(t, ops, "task.assign")
	assert.Contains(t, ops, "task.set_status")
	assert.Contains(t, ops, "project.add_member")
	assert.Contains(t, ops, "chat.add_member")
	assert.Contains(t, env.auditActions(t, contract.ContractID), domain.AuditEnforcementGrantApplied)
}

func TestEnforcementFailureDoesNotFailSignature(t *testing.T) {
	env := newTestEnv(t)
	env.clients.fail["task.assign"] = assert.AnError
	env.deposit(t, payerID, 500)
	contract := env.proposeTask(t, 500, nil)

	signed := env.sign(t, contract.ContractID)
	assert.Equal(t, domain.StatusSigned, signed.Status)

	actions := env.auditActions(t, contract.ContractID)
	assert.Contains(t, actions, domain.AuditEnforcementGrantFailed)
	assert.Contains(t, actions, domain.AuditEnforcementGrantApplied)
	// Siblings still ran despite the failed assignment.
	assert.Contains(t, env.clients.ops(), "project.add_member")
}

func TestCompleteReleasesEscrowAndRevokesGrants(t *testing.T) {
	env := newTestEnv(t)
	env.deposit(t, payerID, 500)
	contract := env.proposeTask(t, 500, nil)
	env.sign(t, contract.ContractID)

	completed, err := env.svc.Complete(context.Background(), actorFor(payerID), contract.ContractID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)

	hold, err := env.repos.Holds.GetByContractID(context.Background(), contract.ContractID)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldStatusReleased, hold.Status)
	assert.Zero(t, hold.RemainingAmount)
	assert.Equal(t, 500.0, env.balance(t, payeeID))
	assert.Contains(t, env.clients.ops(), "task.unassign")
}

func TestCompleteOnlyByInitiator(t *testing.T) {
	env := newTestEnv(t)
	env.deposit(t, payerID, 500)
	contract := env.proposeTask(t, 500, nil)
	env.sign(t, contract.ContractID)

	_, err := env.svc.Complete(context.Background(), actorFor(payeeID), contract.ContractID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTerminateRefundsHeldEscrow(t *testing.T) {
	env := newTestEnv(t)
	env.deposit(t, payerID, 500)
	contract := env.proposeTask(t, 500, nil)
	env.sign(t, contract.ContractID)

	terminated, err := env.svc.Terminate(context.Background(), actorFor(payeeID), application.TerminateInput{
		ContractID: contract.ContractID,
		Reason:     "scope changed",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTerminated, terminated.Status)

	hold, err := env.repos.Holds.GetByContractID(context.Background(), contract.ContractID)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldStatusRefunded, hold.Status)
	assert.Equal(t, 500.0, env.balance(t, payerID))
	assert.Zero(t, env.balance(t, payeeID))
}

func TestDisputeRequiresReasonAndFreezesEscrow(t *testing.T) {
	env := newTestEnv(t)
	env.deposit(t, payerID, 500)
	contract := env.proposeTask(t, 500, nil)
	env.sign(t, contract.ContractID)

	_, err := env.svc.Dispute(context.Background(), actorFor(payeeID), application.DisputeInput{ContractID: contract.ContractID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	disputed, err := env.svc.Dispute(context.Background(), actorFor(payeeID), application.DisputeInput{
		ContractID: contract.ContractID,
		Reason:     "deliverable rejected",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDisputed, disputed.Status)

	hold, err := env.repos.Holds.GetByContractID(context.Background(), contract.ContractID)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldStatusHeld, hold.Status)

	// Resolution: completing a disputed contract releases the remainder.
	completed, err := env.svc.Complete(context.Background(), actorFor(payerID), contract.ContractID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	assert.Equal(t, 500.0, env.balance(t, payeeID))
}

func TestGetContractAccessControl(t *testing.T) {
	env := newTestEnv(t)
	contract := env.proposeTask(t, 500, nil)
	ctx := context.Background()

	_, err := env.svc.GetContract(ctx, actorFor("u-stranger"), contract.ContractID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := env.svc.GetContract(ctx, actorFor(payeeID), contract.ContractID)
	require.NoError(t, err)
	assert.NotEmpty(t, got.Audit)

	admin := application.Actor{SubjectID: "ops-1", Role: "admin"}
	_, err = env.svc.GetContract(ctx, admin, contract.ContractID)
	assert.NoError(t, err)
}

func TestListContractsScopedToParty(t *testing.T) {
	env := newTestEnv(t)
	env.proposeTask(t, 500, nil)
	ctx := context.Background()

	out, err := env.svc.ListContracts(ctx, actorFor("u-stranger"), ports.ContractListQuery{})
	require.NoError(t, err)
	assert.Zero(t, out.Total)

	out, err = env.svc.ListContracts(ctx, actorFor(payeeID), ports.ContractListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Total)
}

func TestExpirePendingSweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	expired, err := env.svc.Propose(ctx, actorFor(payerID), application.ProposeInput{
		Type:           domain.TypeTaskAssignment,
		CounterpartyID: payeeID,
		Title:          "stale offer",
		Terms:          domain.Terms{TaskID: "t-1", Amount: 100},
		ExpiresAt:      pastTime(time.Hour),
	})
	require.NoError(t, err)
	fresh := env.proposeTask(t, 100, nil)

	count, err := env.svc.ExpirePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := env.repos.Contracts.GetByID(ctx, expired.ContractID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, got.Status)

	got, err = env.repos.Contracts.GetByID(ctx, fresh.ContractID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)

	_, err = env.svc.Sign(ctx, actorFor(payeeID), application.SignInput{ContractID: expired.ContractID})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestNotificationDedupOnReplay(t *testing.T) {
	env := newTestEnv(t)
	env.deposit(t, payerID, 500)
	contract := env.proposeTask(t, 500, nil)
	env.sign(t, contract.ContractID)

	// A replayed signed notification for the same contract and recipient is
	// suppressed by the dedup window.
	assert.Equal(t, 1, env.notifier.byKey[payerID+":contract_signed"])
}
