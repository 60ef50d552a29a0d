package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/medcourse-service/internal/domain"
)

// Actor identifies who caused an event.
type Actor struct {
	Type   string  `json:"type"`
	UserID *string `json:"user_id,omitempty"`
}

// Event is the envelope services publish after a command commits.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	EntityID  string         `json:"entity_id"`
	Actor     Actor          `json:"actor"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// FromDomain wraps a drained aggregate event into a publishable envelope.
func FromDomain(event domain.Event, entityID string, actor Actor) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      event.Type,
		EntityID:  entityID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   event.Payload,
	}
}
