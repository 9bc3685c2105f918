package events

import "time"

// Feature lifecycle event types.
const (
	FeatureCreated  = "FEATURE_CREATED"
	FeatureUpdated  = "FEATURE_UPDATED"
	FeatureApproved = "FEATURE_APPROVED"
	FeatureDeleted  = "FEATURE_DELETED"
)

// Event is anything published on the catalog bus.
type Event interface {
	// EventType returns the unique code for this event (e.g. "FEATURE_CREATED").
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
