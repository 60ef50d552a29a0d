package events

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/medcourse-service/internal/domain"
)

func TestDispatcherDeliversToTypeAndWildcard(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var typed, wildcard []string
	dispatcher.Subscribe(domain.EventBookingCreated, func(_ context.Context, e Event) error {
		typed = append(typed, e.Type)
		return nil
	})
	dispatcher.Subscribe(SubscribeAll, func(_ context.Context, e Event) error {
		wildcard = append(wildcard, e.Type)
		return nil
	})

	_ = dispatcher.Publish(context.Background(), Event{Type: domain.EventBookingCreated})
	_ = dispatcher.Publish(context.Background(), Event{Type: domain.EventPaymentSucceeded})

	if len(typed) != 1 || typed[0] != domain.EventBookingCreated {
		t.Fatalf("typed handler got %v", typed)
	}
	if len(wildcard) != 2 {
		t.Fatalf("wildcard handler got %v", wildcard)
	}
}

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	called := false
	dispatcher.Subscribe("x", func(context.Context, Event) error {
		return errors.New("boom")
	})
	dispatcher.Subscribe("x", func(context.Context, Event) error {
		called = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: "x"}); err != nil {
		t.Fatalf("publish returned %v", err)
	}
	if !called {
		t.Fatal("second handler not invoked after first errored")
	}
}

func TestFromDomainFillsEnvelope(t *testing.T) {
	actorID := "user-1"
	event := FromDomain(domain.Event{Type: "course.published", Payload: map[string]any{"slug": "acls"}},
		"course-1", Actor{Type: "USER", UserID: &actorID})

	if event.ID == "" {
		t.Fatal("expected generated event id")
	}
	if event.EntityID != "course-1" || event.Type != "course.published" {
		t.Fatalf("unexpected envelope %+v", event)
	}
	if event.Payload["slug"] != "acls" {
		t.Fatalf("payload not carried: %v", event.Payload)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("expected timestamp")
	}
}
