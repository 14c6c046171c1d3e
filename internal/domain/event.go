package domain

import "time"

// EventType names a domain event.
type EventType string

const (
	EventAutomationCreated       EventType = "automation.created"
	EventAutomationStatusChanged EventType = "automation.status_changed"
	EventQuoteCreated            EventType = "quote.created"
	EventQuoteStatusChanged      EventType = "quote.status_changed"
	EventDiscountOffersIssued    EventType = "discount.offers_issued"
	EventDiscountRedeemed        EventType = "discount.redeemed"
)

// Event is a fact emitted after a state change has been persisted.
type Event struct {
	Type       EventType
	TenantID   string
	SubjectID  string
	From       string
	To         string
	Actor      string
	Reason     string
	OccurredAt time.Time
}

// NewEvent stamps an event with the current time.
func NewEvent(typ EventType, tenantID, subjectID string) Event {
	return Event{
		Type:       typ,
		TenantID:   tenantID,
		SubjectID:  subjectID,
		OccurredAt: time.Now().UTC(),
	}
}
