package postgres

import "gorm.io/gorm"

// Repositories bundles the postgres-backed implementations so the bootstrap
// can wire them in one call.
type Repositories struct {
	Contracts *ContractRepository
	Holds     *EscrowHoldRepository
	Wallets   *WalletRepository
	Outbox    *OutboxRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Contracts: NewContractRepository(db),
		Holds:     NewEscrowHoldRepository(db),
		Wallets:   NewWalletRepository(db),
		Outbox:    NewOutboxRepository(db),
	}
}
