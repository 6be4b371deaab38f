package ports

import (
	"context"
	"time"

	"github.com/workgrid/contract-engine/internal/contracts"
	"github.com/workgrid/contract-engine/internal/domain"
)

type ContractListQuery struct {
	PartyID string
	Status  string
	Type    string
	Limit   int
	Offset  int
}

type ContractRepository interface {
	Create(ctx context.Context, row domain.Contract) error
	GetByID(ctx context.Context, contractID string) (domain.Contract, error)
	// Update persists the mutable contract fields; the audit trail is written
	// separately through AppendAudit so entries stay append-only.
	Update(ctx context.Context, row domain.Contract) error
	List(ctx context.Context, query ContractListQuery) ([]domain.Contract, int, error)
	// ListPendingExpired returns pending contracts whose expires_at has passed.
	ListPendingExpired(ctx context.Context, now time.Time, limit int) ([]domain.Contract, error)
	// ListSignedWithoutHold feeds the reconciliation sweep: signed payable
	// contracts whose escrow guard is still unmet.
	ListSignedWithoutHold(ctx context.Context, limit int) ([]domain.Contract, error)
	AppendAudit(ctx context.Context, entry domain.AuditEntry) error
	ListAudit(ctx context.Context, contractID string) ([]domain.AuditEntry, error)
}

type EscrowHoldRepository interface {
	// Create fails with domain.ErrConflict when a hold already exists for the
	// deterministic escrow id; callers treat that as idempotent success.
	Create(ctx context.Context, row domain.EscrowHold) error
	GetByID(ctx context.Context, escrowID string) (domain.EscrowHold, error)
	GetByContractID(ctx context.Context, contractID string) (domain.EscrowHold, error)
	Update(ctx context.Context, row domain.EscrowHold) error
}

type WalletRepository interface {
	GetOrCreate(ctx context.Context, ownerID, ownerType, currency string) (domain.Wallet, error)
	GetByID(ctx context.Context, walletID string) (domain.Wallet, error)
	// Debit decrements balance and appends the transaction as one atomic
	// operation scoped to the wallet row. Returns domain.ErrInsufficientFunds
	// when the balance guard fails; the balance is left untouched.
	Debit(ctx context.Context, walletID string, amount float64, txn domain.Transaction) (domain.Wallet, error)
	// Credit is unconditional and appends the paired transaction.
	Credit(ctx context.Context, walletID string, amount float64, txn domain.Transaction) (domain.Wallet, error)
	ListTransactions(ctx context.Context, walletID string, limit int) ([]domain.Transaction, error)
}

type OutboxRecord struct {
	RecordID   string
	EventClass string
	Envelope   contracts.EventEnvelope
	CreatedAt  time.Time
	SentAt     *time.Time
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, record OutboxRecord) error
	ListPending(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkSent(ctx context.Context, recordID string, at time.Time) error
}
