package events

import "time"

// Event is the contract every bus message satisfies.
type Event interface {
	// EventType returns the unique code for this event (e.g. "DOCUMENT_PROCESSED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewDocumentProcessedEvent fires after an upload finishes the pipeline,
// whether or not every optional step succeeded.
func NewDocumentProcessedEvent(sessionID, subject, tier string, uploadsUsed, steps int) Event {
	return BaseEvent{
		Type: "DOCUMENT_PROCESSED",
		Data: map[string]interface{}{
			"session_id":   sessionID,
			"subject":      subject,
			"tier":         tier,
			"uploads_used": uploadsUsed,
			"steps":        steps,
		},
		OccurredAt: time.Now(),
	}
}

// NewTierChangedEvent fires when a user selects or is upgraded to a tier.
func NewTierChangedEvent(subject, email, tier string) Event {
	return BaseEvent{
		Type: "TIER_CHANGED",
		Data: map[string]interface{}{
			"subject": subject,
			"email":   email,
			"tier":    tier,
		},
		OccurredAt: time.Now(),
	}
}
