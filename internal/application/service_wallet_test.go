package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workgrid/contract-engine/internal/application"
	"github.com/workgrid/contract-engine/internal/domain"
)

func TestDepositAndWithdraw(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wallet, err := env.svc.Deposit(ctx, actorFor(payerID), application.DepositInput{OwnerID: payerID, Amount: 300})
	require.NoError(t, err)
	assert.Equal(t, 300.0, wallet.Balance)

	wallet, err = env.svc.Withdraw(ctx, actorFor(payerID), application.WithdrawInput{OwnerID: payerID, Amount: 120})
	require.NoError(t, err)
	assert.Equal(t, 180.0, wallet.Balance)

	_, txns, err := env.svc.GetWallet(ctx, actorFor(payerID), payerID, "user")
	require.NoError(t, err)
	require.Len(t, txns, 2)
	// Newest first; the withdrawal is a signed negative entry.
	assert.Equal(t, domain.TransactionTypeWithdrawal, txns[0].Type)
	assert.Equal(t, -120.0, txns[0].Amount)
	assert.Equal(t, domain.TransactionTypeDeposit, txns[1].Type)
	assert.Equal(t, 300.0, txns[1].Amount)
}

func TestWithdrawinsufficientFundsLeavesBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.deposit(t, payerID, 100)

	_, err := env.svc.Withdraw(ctx, actorFor(payerID), application.WithdrawInput{OwnerID: payerID, Amount: 250})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, 100.0, env.balance(t, payerID))

	// No transaction row was recorded for the rejected debit.
	_, txns, err := env.svc.GetWallet(ctx, actorFor(payerID), payerID, "user")
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestDepositValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Deposit(ctx, actorFor(payerID), application.DepositInput{OwnerID: payerID, Amount: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.svc.Deposit(ctx, actorFor(payerID), application.DepositInput{OwnerID: payerID, Amount: 10, Currency: "XRP"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.svc.Deposit(ctx, actorFor(payerID), application.DepositInput{OwnerID: payeeID, Amount: 10})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	admin := application.Actor{SubjectID: "ops-1", Role: "admin"}
	_, err = env.svc.Deposit(ctx, admin, application.DepositInput{OwnerID: payeeID, Amount: 10})
	assert.NoError(t, err)
}

func TestHasSufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.deposit(t, payerID, 100)

	ok, err := env.svc.HasSufficientFunds(ctx, payerID, "user", 50)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.svc.HasSufficientFunds(ctx, payerID, "user", 150)
	require.NoError(t, err)
	assert.False(t, ok)
}
