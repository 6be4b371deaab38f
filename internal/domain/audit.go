package domain

import "time"

// Audit actions recorded on the contract trail. The trail is append-only;
// entries are never rewritten or removed.
const (
	AuditProposed                   = "proposed"
	AuditSigned                     = "signed"
	AuditRejected                   = "rejected"
	AuditExpired                    = "expired"
	AuditCancelled                  = "cancelled"
	AuditCompleted                  = "completed"
	AuditTerminated                 = "terminated"
	AuditDisputed                   = "disputed"
	AuditEscrowHeld                 = "escrow_held"
	AuditEscrowSkippedNonMonetary   = "escrow_skipped_non_monetary"
	AuditEscrowSkippedNoFunds       = "escrow_skipped_insufficient_funds"
	AuditEscrowFailed               = "escrow_failed"
	AuditEscrowPartialRelease       = "escrow_partial_release"
	AuditEscrowReleased             = "escrow_released"
	AuditEscrowRefunded             = "escrow_refunded"
	AuditEscrowRefundUnavailable    = "escrow_refund_unavailable"
	AuditMilestoneSubmitted         = "milestone_submitted"
	AuditMilestonePaid              = "milestone_paid"
	AuditEnforcementGrantApplied    = "enforcement_grant_applied"
	AuditEnforcementGrantFailed     = "enforcement_grant_failed"
	AuditEnforcementRevokeApplied   = "enforcement_revoke_applied"
	AuditEnforcementRevokeFailed    = "enforcement_revoke_failed"
	AuditReconciliationHoldReplayed = "reconciliation_hold_replayed"
)

type AuditEntry struct {
	EntryID    string
	ContractID string
	ActorID    string
	Action     string
	Detail     string
	OccurredAt time.Time
}
