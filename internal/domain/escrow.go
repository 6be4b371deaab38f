package domain

import "time"

const (
	HoldStatusHeld              = "held"
	HoldStatusPartiallyReleased = "partially_released"
	HoldStatusReleased          = "released"
	HoldStatusRefunded          = "refunded"
)

// HoldID derives the deterministic escrow id for a contract. One hold per
// contract; the id doubles as the idempotency guard on creation.
func HoldID(contractID string) string { return "escrow_" + contractID }

type EscrowHold struct {
	EscrowID        string
	ContractID      string
	PayerID         string
	PayeeID         string
	PayerWalletID   string
	PayeeWalletID   string
	Currency        string
	OriginalAmount  float64
	ReleasedAmount  float64
	RefundedAmount  float64
	RemainingAmount float64
	Status          string
	HeldAt          time.Time
	UpdatedAt       time.Time
}

// Closed reports whether the hold has reached a terminal state. Release and
// refund are mutually exclusive once either completes.
func (h EscrowHold) Closed() bool {
	return h.Status == HoldStatusReleased || h.Status == HoldStatusRefunded
}
