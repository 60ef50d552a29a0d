package domain

// Event is a change recorded by an aggregate, drained and published by services.
type Event struct {
	Type    string
	Payload map[string]any
}

// eventRecorder is embedded by aggregates to collect pending events.
type eventRecorder struct {
	pending []Event
}

func (r *eventRecorder) record(eventType string, payload map[string]any) {
	r.pending = append(r.pending, Event{Type: eventType, Payload: payload})
}

// DrainEvents returns and clears pending events.
func (r *eventRecorder) DrainEvents() []Event {
	events := r.pending
	r.pending = nil
	return events
}
