package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/workgrid/contract-engine/internal/domain"
	"github.com/workgrid/contract-engine/internal/ports"
)

// Repositories is the in-memory repository set used by the local runtime and
// the unit suites. Behavior mirrors the postgres adapter, including the
// balance guard on debit and the conflict on duplicate hold creation.
type Repositories struct {
	Contracts *ContractRepository
	Holds     *EscrowHoldRepository
	Wallets   *WalletRepository
	Outbox    *OutboxRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Contracts: &ContractRepository{rows: map[string]domain.Contract{}, audit: map[string][]domain.AuditEntry{}},
		Holds:     &EscrowHoldRepository{rows: map[string]domain.EscrowHold{}},
		Wallets:   &WalletRepository{rows: map[string]domain.Wallet{}, txns: map[string][]domain.Transaction{}},
		Outbox:    &OutboxRepository{rows: map[string]ports.OutboxRecord{}},
	}
}

type ContractRepository struct {
	mu    sync.Mutex
	rows  map[string]domain.Contract
	audit map[string][]domain.AuditEntry
	order []string
}

func (r *ContractRepository) Create(_ context.Context, row domain.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[row.ContractID]; ok {
		return domain.ErrConflict
	}
	r.rows[row.ContractID] = cloneContract(row)
	r.order = append(r.order, row.ContractID)
	return nil
}

func (r *ContractRepository) GetByID(_ context.Context, contractID string) (domain.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[strings.TrimSpace(contractID)]
	if !ok {
		return domain.Contract{}, domain.ErrNotFound
	}
	return cloneContract(row), nil
}

func (r *ContractRepository) Update(_ context.Context, row domain.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[row.ContractID]; !ok {
		return domain.ErrNotFound
	}
	r.rows[row.ContractID] = cloneContract(row)
	return nil
}

func (r *ContractRepository) List(_ context.Context, query ports.ContractListQuery) ([]domain.Contract, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]domain.Contract, 0)
	for _, id := range r.order {
		row := r.rows[id]
		if query.PartyID != "" && row.InitiatorID != query.PartyID && row.CounterpartyID != query.PartyID {
			continue
		}
		if query.Status != "" && row.Status != query.Status {
			continue
		}
		if query.Type != "" && row.Type != query.Type {
			continue
		}
		matched = append(matched, cloneContract(row))
	}
	total := len(matched)
	if query.Offset >= total {
		return []domain.Contract{}, total, nil
	}
	end := query.Offset + query.Limit
	if query.Limit <= 0 || end > total {
		end = total
	}
	return matched[query.Offset:end], total, nil
}

func (r *ContractRepository) ListPendingExpired(_ context.Context, now time.Time, limit int) ([]domain.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Contract, 0)
	for _, id := range r.order {
		row := r.rows[id]
		if row.Status != domain.StatusPending || row.ExpiresAt == nil || now.Before(*row.ExpiresAt) {
			continue
		}
		out = append(out, cloneContract(row))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *ContractRepository) ListSignedWithoutHold(_ context.Context, limit int) ([]domain.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Contract, 0)
	for _, id := range r.order {
		row := r.rows[id]
		if row.Status != domain.StatusSigned || row.EscrowID != "" {
			continue
		}
		// Mirror the SQL feed: never-fundable contracts stay out so they
		// cannot crowd eligible rows out of the sweep batch.
		if !domain.PaymentBearing(row.Type) || row.Terms.Amount <= 0 {
			continue
		}
		out = append(out, cloneContract(row))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *ContractRepository) AppendAudit(_ context.Context, entry domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.EntryID == "" {
		entry.EntryID = uuid.NewString()
	}
	r.audit[entry.ContractID] = append(r.audit[entry.ContractID], entry)
	return nil
}

func (r *ContractRepository) ListAudit(_ context.Context, contractID string) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.audit[strings.TrimSpace(contractID)]
	out := make([]domain.AuditEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

type EscrowHoldRepository struct {
	mu   sync.Mutex
	rows map[string]domain.EscrowHold
}

func (r *EscrowHoldRepository) Create(_ context.Context, row domain.EscrowHold) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[row.EscrowID]; ok {
		return domain.ErrConflict
	}
	r.rows[row.EscrowID] = row
	return nil
}

func (r *EscrowHoldRepository) GetByID(_ context.Context, escrowID string) (domain.EscrowHold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[strings.TrimSpace(escrowID)]
	if !ok {
		return domain.EscrowHold{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *EscrowHoldRepository) GetByContractID(ctx context.Context, contractID string) (domain.EscrowHold, error) {
	return r.GetByID(ctx, domain.HoldID(strings.TrimSpace(contractID)))
}

func (r *EscrowHoldRepository) Update(_ context.Context, row domain.EscrowHold) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[row.EscrowID]; !ok {
		return domain.ErrNotFound
	}
	r.rows[row.EscrowID] = row
	return nil
}

type WalletRepository struct {
	mu   sync.Mutex
	rows map[string]domain.Wallet
	txns map[string][]domain.Transaction
}

func (r *WalletRepository) GetOrCreate(_ context.Context, ownerID, ownerType, currency string) (domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := ownerType + ":" + ownerID
	if row, ok := r.rows[key]; ok {
		return row, nil
	}
	now := time.Now().UTC()
	row := domain.Wallet{
		WalletID:  key,
		OwnerID:   ownerID,
		OwnerType: ownerType,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.rows[key] = row
	return row, nil
}

func (r *WalletRepository) GetByID(_ context.Context, walletID string) (domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[strings.TrimSpace(walletID)]
	if !ok {
		return domain.Wallet{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *WalletRepository) Debit(_ context.Context, walletID string, amount float64, txn domain.Transaction) (domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[walletID]
	if !ok {
		return domain.Wallet{}, domain.ErrNotFound
	}
	if row.Balance < amount {
		return domain.Wallet{}, domain.ErrInsufficientFunds
	}
	row.Balance -= amount
	row.UpdatedAt = time.Now().UTC()
	r.rows[walletID] = row
	r.txns[walletID] = append(r.txns[walletID], txn)
	return row, nil
}

func (r *WalletRepository) Credit(_ context.Context, walletID string, amount float64, txn domain.Transaction) (domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[walletID]
	if !ok {
		return domain.Wallet{}, domain.ErrNotFound
	}
	row.Balance += amount
	row.UpdatedAt = time.Now().UTC()
	r.rows[walletID] = row
	r.txns[walletID] = append(r.txns[walletID], txn)
	return row, nil
}

func (r *WalletRepository) ListTransactions(_ context.Context, walletID string, limit int) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.txns[strings.TrimSpace(walletID)]
	out := make([]domain.Transaction, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type OutboxRepository struct {
	mu    sync.Mutex
	rows  map[string]ports.OutboxRecord
	order []string
}

func (r *OutboxRepository) Enqueue(_ context.Context, row ports.OutboxRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[row.RecordID]; ok {
		return domain.ErrConflict
	}
	r.rows[row.RecordID] = row
	r.order = append(r.order, row.RecordID)
	return nil
}

func (r *OutboxRepository) ListPending(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	out := make([]ports.OutboxRecord, 0, limit)
	for _, id := range r.order {
		row, ok := r.rows[id]
		if !ok || row.SentAt != nil {
			continue
		}
		out = append(out, row)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *OutboxRepository) MarkSent(_ context.Context, recordID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[recordID]
	if !ok {
		return domain.ErrNotFound
	}
	row.SentAt = &at
	r.rows[recordID] = row
	return nil
}

func cloneContract(row domain.Contract) domain.Contract {
	out := row
	if len(row.Terms.Milestones) > 0 {
		out.Terms.Milestones = make([]domain.Milestone, len(row.Terms.Milestones))
		copy(out.Terms.Milestones, row.Terms.Milestones)
	}
	return out
}
