package contracts

import "time"

type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Status string       `json:"status"`
	Error  ErrorPayload `json:"error"`
}

type MilestoneRequest struct {
	MilestoneID string  `json:"milestone_id"`
	Title       string  `json:"title,omitempty"`
	Amount      float64 `json:"amount"`
}

type TermsRequest struct {
	Amount      float64            `json:"amount,omitempty"`
	Currency    string             `json:"currency,omitempty"`
	ProjectID   string             `json:"project_id,omitempty"`
	WorkspaceID string             `json:"workspace_id,omitempty"`
	TaskID      string             `json:"task_id,omitempty"`
	AgencyID    string             `json:"agency_id,omitempty"`
	Role        string             `json:"role,omitempty"`
	Milestones  []MilestoneRequest `json:"milestones,omitempty"`
	StartsAt    *time.Time         `json:"starts_at,omitempty"`
	EndsAt      *time.Time         `json:"ends_at,omitempty"`
}

type ProposeContractRequest struct {
	Type           string       `json:"type"`
	CounterpartyID string       `json:"counterparty_id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Terms          TermsRequest `json:"terms"`
	ExpiresAt      *time.Time   `json:"expires_at,omitempty"`
}

type SignContractRequest struct {
	FullName string `json:"full_name"`
}

type RejectContractRequest struct {
	Reason string `json:"reason,omitempty"`
}

type TerminateContractRequest struct {
	Reason string `json:"reason,omitempty"`
}

type DisputeContractRequest struct {
	Reason string `json:"reason"`
}

type SubmitMilestoneEvidenceRequest struct {
	Evidence string `json:"evidence"`
}

type DepositRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}

type WithdrawRequest struct {
	Amount float64 `json:"amount"`
}

type MilestoneResponse struct {
	MilestoneID string     `json:"milestone_id"`
	Title       string     `json:"title,omitempty"`
	Amount      float64    `json:"amount"`
	Status      string     `json:"status"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

type ContractResponse struct {
	ContractID     string              `json:"contract_id"`
	Type           string              `json:"type"`
	Status         string              `json:"status"`
	InitiatorID    string              `json:"initiator_id"`
	CounterpartyID string              `json:"counterparty_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	Amount         float64             `json:"amount,omitempty"`
	Currency       string              `json:"currency,omitempty"`
	EscrowID       string              `json:"escrow_id,omitempty"`
	Milestones     []MilestoneResponse `json:"milestones,omitempty"`
	ExpiresAt      *time.Time          `json:"expires_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type AuditEntryResponse struct {
	ActorID    string    `json:"actor_id,omitempty"`
	Action     string    `json:"action"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type HoldResponse struct {
	EscrowID        string  `json:"escrow_id"`
	ContractID      string  `json:"contract_id"`
	Status          string  `json:"status"`
	Currency        string  `json:"currency"`
	OriginalAmount  float64 `json:"original_amount"`
	RemainingAmount float64 `json:"remaining_amount"`
	ReleasedAmount  float64 `json:"released_amount"`
	RefundedAmount  float64 `json:"refunded_amount"`
}

type TransactionResponse struct {
	TransactionID string    `json:"transaction_id"`
	Type          string    `json:"type"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	ContractID    string    `json:"contract_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type WalletResponse struct {
	WalletID     string                `json:"wallet_id"`
	OwnerID      string                `json:"owner_id"`
	OwnerType    string                `json:"owner_type"`
	Currency     string                `json:"currency"`
	Balance      float64               `json:"balance"`
	Transactions []TransactionResponse `json:"transactions,omitempty"`
}

type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

type ContractListResponse struct {
	Items      []ContractResponse `json:"items"`
	Pagination Pagination         `json:"pagination"`
}
