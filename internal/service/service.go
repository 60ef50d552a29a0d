// Package service hosts the application workflows. Every operation is a
// command or query struct dispatched through the request pipeline, so
// validation, caching, transactions, invalidation and audit apply uniformly.
package service

import (
	"context"
	"strings"

	"github.com/spec-kit/medcourse-service/internal/cache"
	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/events"
)

// Actor identifies the authenticated caller behind a command. Embedding it
// satisfies the pipeline's audit contract.
type Actor struct {
	ID   string
	Role domain.UserRole
}

// AuditActor reports the actor for the audit trail.
func (a Actor) AuditActor() (string, string) {
	if a.ID == "" {
		return "SYSTEM", ""
	}
	return string(a.Role), a.ID
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// Cache invalidation prefixes per resource.
const (
	prefixUserList         = "users"
	prefixCourseList       = "courses"
	prefixSlotList         = "slots"
	prefixBookingList      = "bookings"
	prefixEnrollmentList   = "enrollments"
	prefixReviewList       = "reviews"
	prefixPromoList        = "promos"
	prefixNotificationList = "notifications"
)

func userPrefix(id string) string   { return cache.Key("user", id) }
func coursePrefix(id string) string { return cache.Key("course", id) }
func slotPrefix(id string) string   { return cache.Key("slot", id) }

func enrollmentPrefix(studentID string) string {
	return cache.Key("enrollments", studentID)
}

func reviewPrefix(courseID string) string { return cache.Key("reviews", courseID) }

func notificationPrefix(recipientID string) string {
	return cache.Key("notifications", recipientID)
}

// normalizePromoCode applies the same normalization promo creation uses.
func normalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// publishDrained wraps aggregate events into envelopes and hands them to the
// event dispatcher. Delivery failures are the dispatcher's concern.
func publishDrained(ctx context.Context, dispatcher events.Dispatcher, entityID string, actor Actor, drained []domain.Event) {
	if dispatcher == nil {
		return
	}
	eventActor := events.Actor{Type: "SYSTEM"}
	if actor.ID != "" {
		id := actor.ID
		eventActor = events.Actor{Type: string(actor.Role), UserID: &id}
	}
	for _, event := range drained {
		_ = dispatcher.Publish(ctx, events.FromDomain(event, entityID, eventActor))
	}
}
