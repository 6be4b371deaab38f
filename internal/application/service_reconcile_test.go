package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workgrid/contract-engine/internal/application"
	"github.com/workgrid/contract-engine/internal/domain"
)

func TestReconcileEscrowReplaysUnfundedSign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.deposit(t, payerID, 100)
	contract := env.proposeTask(t, 500, nil)
	env.sign(t, contract.ContractID)

	// First sweep: payer still cannot cover the amount, so the contract is
	// skipped without error and stays eligible for the next round.
	replayed, err := env.svc.ReconcileEscrow(ctx)
	require.NoError(t, err)
	assert.Zero(t, replayed)

	env.deposit(t, payerID, 400)
	replayed, err = env.svc.ReconcileEscrow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, replayed)

	hold, err := env.repos.Holds.GetByContractID(ctx, contract.ContractID)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldStatusHeld, hold.Status)
	assert.Equal(t, 500.0, hold.OriginalAmount)
	assert.Zero(t, env.balance(t, payerID))

	got, err := env.repos.Contracts.GetByID(ctx, contract.ContractID)
	require.NoError(t, err)
	assert.Equal(t, hold.EscrowID, got.EscrowID)
	assert.Contains(t, env.auditActions(t, contract.ContractID), domain.AuditReconciliationHoldReplayed)
}

func TestReconcileEscrowIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.deposit(t, payerID, 600)
	contract := env.proposeTask(t, 500, nil)
	env.sign(t, contract.ContractID)

	// The hold already exists; a sweep must not debit again.
	_, err := env.svc.ReconcileEscrow(ctx)
	require.NoError(t, err)
	_, err = env.svc.ReconcileEscrow(ctx)
	require.NoError(t, err)

	assert.Equal(t, 100.0, env.balance(t, payerID))
	hold, err := env.repos.Holds.GetByContractID(ctx, contract.ContractID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, hold.OriginalAmount)
}

func TestReconcileEscrowNotStarvedByNeverFundable(t *testing.T) {
	env := newTestEnvWith(t, func(deps *application.Dependencies) {
		deps.Config.SweepBatchSize = 1
	})
	ctx := context.Background()

	// A signed invite created first must not occupy the only batch slot.
	invite := env.proposeInvite(t)
	env.sign(t, invite.ContractID)

	env.deposit(t, payerID, 100)
	contract := env.proposeTask(t, 500, nil)
	env.sign(t, contract.ContractID)
	env.deposit(t, payerID, 400)

	replayed, err := env.svc.ReconcileEscrow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, replayed)

	hold, err := env.repos.Holds.GetByContractID(ctx, contract.ContractID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, hold.OriginalAmount)
	assert.Zero(t, env.balance(t, payerID))
}

func TestReconcileEscrowSkipsNonEligible(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	contract := env.proposeTask(t, 0, nil)
	env.sign(t, contract.ContractID)

	replayed, err := env.svc.ReconcileEscrow(ctx)
	require.NoError(t, err)
	assert.Zero(t, replayed)

	_, err = env.repos.Holds.GetByContractID(ctx, contract.ContractID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
