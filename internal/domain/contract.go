package domain

import (
	"strings"
	"time"
)

// Contract types form a closed set; anything else is rejected at the edge.
const (
	TypeTaskAssignment    = "task_assignment"
	TypeProjectAssignment = "project_assignment"
	TypeWorkspaceInvite   = "workspace_invite"
	TypeAgencyInvite      = "agency_invite"
	TypeEmployment        = "employment"
	TypeProjectAdminGrant = "project_admin_grant"
	TypeTaskAdminGrant    = "task_admin_grant"
)

const (
	StatusPending    = "pending"
	StatusSigned     = "signed"
	StatusRejected   = "rejected"
	StatusExpired    = "expired"
	StatusCancelled  = "cancelled"
	StatusCompleted  = "completed"
	StatusTerminated = "terminated"
	StatusDisputed   = "disputed"
)

const (
	MilestoneStatusPending   = "pending"
	MilestoneStatusSubmitted = "submitted"
	MilestoneStatusPaid      = "paid"
)

type Milestone struct {
	MilestoneID string     `json:"milestone_id"`
	Title       string     `json:"title"`
	Amount      float64    `json:"amount"`
	Status      string     `json:"status"`
	Evidence    string     `json:"evidence,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

// Terms is the typed bag attached to a contract. Which fields are required
// depends on the contract type; see ValidateTerms.
type Terms struct {
	Amount      float64     `json:"amount"`
	Currency    string      `json:"currency,omitempty"`
	ProjectID   string      `json:"project_id,omitempty"`
	WorkspaceID string      `json:"workspace_id,omitempty"`
	TaskID      string      `json:"task_id,omitempty"`
	AgencyID    string      `json:"agency_id,omitempty"`
	Role        string      `json:"role,omitempty"`
	Milestones  []Milestone `json:"milestones,omitempty"`
	StartsAt    *time.Time  `json:"starts_at,omitempty"`
	EndsAt      *time.Time  `json:"ends_at,omitempty"`
}

type Contract struct {
	ContractID     string
	Type           string
	Status         string
	InitiatorID    string
	CounterpartyID string
	Title          string
	Description    string
	Terms          Terms
	EscrowID       string
	SignedName     string
	ExpiresAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Audit          []AuditEntry
}

func NormalizeContractType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case TypeTaskAssignment:
		return TypeTaskAssignment
	case TypeProjectAssignment:
		return TypeProjectAssignment
	case TypeWorkspaceInvite:
		return TypeWorkspaceInvite
	case TypeAgencyInvite:
		return TypeAgencyInvite
	case TypeEmployment:
		return TypeEmployment
	case TypeProjectAdminGrant:
		return TypeProjectAdminGrant
	case TypeTaskAdminGrant:
		return TypeTaskAdminGrant
	default:
		return ""
	}
}

var paymentBearingTypes = []string{
	TypeTaskAssignment,
	TypeProjectAssignment,
	TypeEmployment,
	TypeProjectAdminGrant,
	TypeTaskAdminGrant,
}

// PaymentBearing reports whether a contract type moves money when signed.
// Plain invites grant access only and never touch the ledger.
func PaymentBearing(contractType string) bool {
	for _, t := range paymentBearingTypes {
		if contractType == t {
			return true
		}
	}
	return false
}

// PaymentBearingTypes returns the contract types that move money; the
// reconciliation feed filters on it so invites never enter the sweep.
func PaymentBearingTypes() []string {
	out := make([]string, len(paymentBearingTypes))
	copy(out, paymentBearingTypes)
	return out
}

func IsTerminalStatus(status string) bool {
	switch status {
	case StatusRejected, StatusExpired, StatusCancelled, StatusCompleted, StatusTerminated:
		return true
	default:
		return false
	}
}

// ValidateStatusTransition is the single edge table for the contract state
// machine. Transitions are monotonic; there is no backward edge.
func ValidateStatusTransition(from, to string) error {
	allowed := map[string]map[string]bool{
		StatusPending: {
			StatusSigned:    true,
			StatusRejected:  true,
			StatusExpired:   true,
			StatusCancelled: true,
		},
		StatusSigned: {
			StatusCompleted:  true,
			StatusTerminated: true,
			StatusDisputed:   true,
		},
		StatusDisputed: {
			StatusCompleted:  true,
			StatusTerminated: true,
		},
	}
	if next, ok := allowed[from]; ok && next[to] {
		return nil
	}
	return ErrInvalidStateTransition
}

// ValidateTerms checks the per-type required fields before a contract is
// created. Nothing here touches wallets; purely structural.
func ValidateTerms(contractType string, terms Terms) error {
	switch contractType {
	case TypeTaskAssignment, TypeTaskAdminGrant:
		if strings.TrimSpace(terms.TaskID) == "" {
			return ErrValidation
		}
	case TypeProjectAssignment, TypeProjectAdminGrant:
		if strings.TrimSpace(terms.ProjectID) == "" {
			return ErrValidation
		}
	case TypeWorkspaceInvite:
		if strings.TrimSpace(terms.WorkspaceID) == "" {
			return ErrValidation
		}
	case TypeAgencyInvite:
		if strings.TrimSpace(terms.AgencyID) == "" {
			return ErrValidation
		}
	case TypeEmployment:
		if strings.TrimSpace(terms.Role) == "" {
			return ErrValidation
		}
	default:
		return ErrValidation
	}
	if terms.Amount < 0 {
		return ErrValidation
	}
	return validateMilestones(terms)
}

func validateMilestones(terms Terms) error {
	if len(terms.Milestones) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var total float64
	for _, m := range terms.Milestones {
		id := strings.TrimSpace(m.MilestoneID)
		if id == "" || seen[id] {
			return ErrValidation
		}
		seen[id] = true
		if m.Amount <= 0 {
			return ErrValidation
		}
		total += m.Amount
	}
	if terms.Amount > 0 && RoundCents(total) > RoundCents(terms.Amount) {
		return ErrValidation
	}
	return nil
}

// AdvanceMilestoneStatus enforces forward-only milestone movement.
func AdvanceMilestoneStatus(from, to string) error {
	switch {
	case from == MilestoneStatusPending && (to == MilestoneStatusSubmitted || to == MilestoneStatusPaid):
		return nil
	case from == MilestoneStatusSubmitted && to == MilestoneStatusPaid:
		return nil
	default:
		return ErrInvalidStateTransition
	}
}
