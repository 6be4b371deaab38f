package postgres

import "time"

type contractModel struct {
	ContractID     string     `gorm:"column:contract_id;primaryKey"`
	Type           string     `gorm:"column:contract_type"`
	Status         string     `gorm:"column:status"`
	InitiatorID    string     `gorm:"column:initiator_id"`
	CounterpartyID string     `gorm:"column:counterparty_id"`
	Title          string     `gorm:"column:title"`
	Description    string     `gorm:"column:description"`
	Terms          string     `gorm:"column:terms;type:jsonb"`
	EscrowID       *string    `gorm:"column:escrow_id"`
	SignedName     string     `gorm:"column:signed_name"`
	ExpiresAt      *time.Time `gorm:"column:expires_at"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (contractModel) TableName() string { return "contracts" }

type auditEntryModel struct {
	EntryID    string    `gorm:"column:entry_id;primaryKey"`
	ContractID string    `gorm:"column:contract_id"`
	ActorID    string    `gorm:"column:actor_id"`
	Action     string    `gorm:"column:action"`
	Detail     string    `gorm:"column:detail"`
	OccurredAt time.Time `gorm:"column:occurred_at"`
}

func (auditEntryModel) TableName() string { return "contract_audit" }

type escrowHoldModel struct {
	EscrowID        string    `gorm:"column:escrow_id;primaryKey"`
	ContractID      string    `gorm:"column:contract_id;uniqueIndex"`
	PayerID         string    `gorm:"column:payer_id"`
	PayeeID         string    `gorm:"column:payee_id"`
	PayerWalletID   string    `gorm:"column:payer_wallet_id"`
	PayeeWalletID   string    `gorm:"column:payee_wallet_id"`
	Currency        string    `gorm:"column:currency"`
	OriginalAmount  float64   `gorm:"column:original_amount"`
	ReleasedAmount  float64   `gorm:"column:released_amount"`
	RefundedAmount  float64   `gorm:"column:refunded_amount"`
	RemainingAmount float64   `gorm:"column:remaining_amount"`
	Status          string    `gorm:"column:status"`
	HeldAt          time.Time `gorm:"column:held_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (escrowHoldModel) TableName() string { return "escrow_holds" }

type walletModel struct {
	WalletID  string    `gorm:"column:wallet_id;primaryKey"`
	OwnerID   string    `gorm:"column:owner_id"`
	OwnerType string    `gorm:"column:owner_type"`
	Currency  string    `gorm:"column:currency"`
	Balance   float64   `gorm:"column:balance"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (walletModel) TableName() string { return "wallets" }

type transactionModel struct {
	TransactionID string    `gorm:"column:transaction_id;primaryKey"`
	WalletID      string    `gorm:"column:wallet_id"`
	Type          string    `gorm:"column:transaction_type"`
	Amount        float64   `gorm:"column:amount"`
	Status        string    `gorm:"column:status"`
	ContractID    *string   `gorm:"column:contract_id"`
	Detail        string    `gorm:"column:detail"`
	OccurredAt    time.Time `gorm:"column:occurred_at"`
}

func (transactionModel) TableName() string { return "wallet_transactions" }

type outboxModel struct {
	RecordID   string     `gorm:"column:record_id;primaryKey"`
	EventClass string     `gorm:"column:event_class"`
	Envelope   string     `gorm:"column:envelope;type:jsonb"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	SentAt     *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string { return "contract_outbox" }
