package domain

const (
	CanonicalEventClassDomain        = "domain"
	CanonicalEventClassAnalyticsOnly = "analytics_only"
)

const (
	EventContractProposed     = "contract.proposed"
	EventContractSigned       = "contract.signed"
	EventContractRejected     = "contract.rejected"
	EventContractExpired      = "contract.expired"
	EventContractCancelled    = "contract.cancelled"
	EventContractCompleted    = "contract.completed"
	EventContractTerminated   = "contract.terminated"
	EventContractDisputed     = "contract.disputed"
	EventEscrowHeld           = "escrow.held"
	EventEscrowPartialRelease = "escrow.partial_release"
	EventEscrowReleased       = "escrow.released"
	EventEscrowRefunded       = "escrow.refunded"
	EventMilestonePaid        = "milestone.paid"
)

func IsCanonicalEmittedEvent(eventType string) bool {
	switch eventType {
	case EventContractProposed, EventContractSigned, EventContractRejected,
		EventContractExpired, EventContractCancelled, EventContractCompleted,
		EventContractTerminated, EventContractDisputed,
		EventEscrowHeld, EventEscrowPartialRelease, EventEscrowReleased,
		EventEscrowRefunded, EventMilestonePaid:
		return true
	default:
		return false
	}
}

func CanonicalEventClass(eventType string) string {
	switch eventType {
	case EventContractProposed, EventEscrowHeld, EventEscrowPartialRelease:
		return CanonicalEventClassAnalyticsOnly
	default:
		if IsCanonicalEmittedEvent(eventType) {
			return CanonicalEventClassDomain
		}
		return ""
	}
}

func CanonicalPartitionKeyPath(eventType string) string {
	if IsCanonicalEmittedEvent(eventType) {
		return "data.contract_id"
	}
	return ""
}
