package contracts

import (
	"encoding/json"
	"time"
)

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	EventClass       string          `json:"event_class,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    string          `json:"schema_version"`
	Data             json.RawMessage `json:"data"`
}

type ContractStatusPayload struct {
	ContractID     string `json:"contract_id"`
	ContractType   string `json:"contract_type"`
	Status         string `json:"status"`
	InitiatorID    string `json:"initiator_id"`
	CounterpartyID string `json:"counterparty_id"`
	ChangedAt      string `json:"changed_at"`
}

type EscrowHeldPayload struct {
	EscrowID   string  `json:"escrow_id"`
	ContractID string  `json:"contract_id"`
	PayerID    string  `json:"payer_id"`
	PayeeID    string  `json:"payee_id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	HeldAt     string  `json:"held_at"`
}

type EscrowReleasePayload struct {
	EscrowID         string  `json:"escrow_id"`
	ContractID       string  `json:"contract_id"`
	Amount           float64 `json:"amount"`
	RemainingBalance float64 `json:"remaining_balance"`
	ReleasedAt       string  `json:"released_at"`
}

type EscrowRefundPayload struct {
	EscrowID   string  `json:"escrow_id"`
	ContractID string  `json:"contract_id"`
	Amount     float64 `json:"amount"`
	Reason     string  `json:"reason,omitempty"`
	RefundedAt string  `json:"refunded_at"`
}

type MilestonePaidPayload struct {
	ContractID  string  `json:"contract_id"`
	MilestoneID string  `json:"milestone_id"`
	Amount      float64 `json:"amount"`
	PaidAt      string  `json:"paid_at"`
}

type DLQRecord struct {
	OriginalEvent EventEnvelope `json:"original_event"`
	ErrorSummary  string        `json:"error_summary"`
	RetryCount    int           `json:"retry_count"`
	FirstSeenAt   time.Time     `json:"first_seen_at"`
	LastErrorAt   time.Time     `json:"last_error_at"`
	SourceTopic   string        `json:"source_topic"`
	DLQTopic      string        `json:"dlq_topic"`
	TraceID       string        `json:"trace_id"`
}
