package domain

import (
	"math"
	"time"
)

const (
	OwnerTypeUser   = "user"
	OwnerTypeAgency = "agency"
)

const (
	TransactionTypeDeposit       = "deposit"
	TransactionTypeWithdrawal    = "withdrawal"
	TransactionTypePayment       = "payment"
	TransactionTypeEscrowHold    = "escrow_hold"
	TransactionTypeEscrowRelease = "escrow_release"
	TransactionTypeRefund        = "refund"
)

const (
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Transaction amounts are signed: debits are negative, credits positive.
type Transaction struct {
	TransactionID string
	WalletID      string
	Type          string
	Amount        float64
	Status        string
	ContractID    string
	Detail        string
	OccurredAt    time.Time
}

type Wallet struct {
	WalletID  string
	OwnerID   string
	OwnerType string
	Currency  string
	Balance   float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

var supportedCurrencies = map[string]bool{
	"USD": true,
	"EUR": true,
	"GBP": true,
}

func CurrencySupported(currency string) bool {
	return supportedCurrencies[currency]
}

// RoundCents snaps ledger arithmetic to two decimals so tranche math never
// strands a sub-cent remainder on a hold.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// EscrowEligible reports whether terms describe fundable money movement.
// Zero or negative amounts and unknown currencies skip escrow rather than
// fail the signature; the lifecycle records the skip in the audit trail.
// Terms without a currency fall back to the caller's configured default.
func EscrowEligible(terms Terms, defaultCurrency string) bool {
	if terms.Amount <= 0 {
		return false
	}
	currency := terms.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	return CurrencySupported(currency)
}
