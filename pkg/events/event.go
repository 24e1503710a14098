package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all accounting events.
type Event interface {
	// EventID identifies one occurrence; the bus uses it to drop duplicate publishes.
	EventID() string

	// EventType returns the unique code for this event (e.g., "REVENUE_DISTRIBUTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	ID         string
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

// New builds a BaseEvent. An empty id gets a random one.
func New(id, eventType string, data map[string]interface{}, occurredAt time.Time) BaseEvent {
	if id == "" {
		id = uuid.NewString()
	}
	return BaseEvent{ID: id, Type: eventType, Data: data, OccurredAt: occurredAt}
}

func (e BaseEvent) EventID() string {
	return e.ID
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
