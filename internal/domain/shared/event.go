package shared

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a ledger event published on the events topic
type EventType string

const (
	EventRateUpdated         EventType = "rate.updated"
	EventObligationCreated   EventType = "obligation.created"
	EventObligationUpdated   EventType = "obligation.updated"
	EventObligationPaid      EventType = "obligation.paid"
	EventObligationCancelled EventType = "obligation.cancelled"
	EventObligationOverdue   EventType = "obligation.overdue"
	EventObligationDeleted   EventType = "obligation.deleted"
)

// Event is the envelope of every message the ledger publishes
type Event struct {
	ID            uuid.UUID `json:"id"`
	Type          EventType `json:"type"`
	OccurredAt    time.Time `json:"occurred_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Payload       any       `json:"payload"`
}

// NewEvent stamps a new event of type t
func NewEvent(t EventType, payload any, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		OccurredAt: at,
		Payload:    payload,
	}
}
