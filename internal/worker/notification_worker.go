// Package worker reacts to domain events and fans them out as in-app
// notifications, either from the in-process dispatcher or from an AMQP queue.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/events"
	"github.com/spec-kit/medcourse-service/internal/repository"
	"github.com/spec-kit/medcourse-service/internal/service"
)

// NotificationWorker turns domain events into notifications for the affected
// users. Recipient resolution goes through the repositories because event
// payloads only carry ids.
type NotificationWorker struct {
	notifications *service.NotificationService
	bookings      repository.BookingRepository
	slots         repository.SlotRepository
	courses       repository.CourseRepository
	emailFrom     string
	logger        *zap.Logger
}

// NewNotificationWorker constructs the worker. emailFrom is the sender
// identity stamped on the email copy of each notification.
func NewNotificationWorker(notifications *service.NotificationService, bookings repository.BookingRepository, slots repository.SlotRepository, courses repository.CourseRepository, emailFrom string, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{
		notifications: notifications,
		bookings:      bookings,
		slots:         slots,
		courses:       courses,
		emailFrom:     emailFrom,
		logger:        logger,
	}
}

// Register subscribes the worker to the in-process dispatcher.
func (w *NotificationWorker) Register(dispatcher events.Dispatcher) {
	for _, eventType := range []string{
		domain.EventBookingCreated,
		domain.EventBookingConfirmed,
		domain.EventBookingCancelled,
		domain.EventEnrollmentCreated,
		domain.EventPaymentSucceeded,
		domain.EventPaymentRefunded,
		domain.EventReviewAdded,
	} {
		dispatcher.Subscribe(eventType, w.Handle)
	}
}

// Handle routes one event to its notification builder.
func (w *NotificationWorker) Handle(ctx context.Context, event events.Event) error {
	var err error
	switch event.Type {
	case domain.EventBookingCreated:
		err = w.onBookingCreated(ctx, event)
	case domain.EventBookingConfirmed, domain.EventBookingCancelled:
		err = w.onBookingTransition(ctx, event)
	case domain.EventEnrollmentCreated:
		err = w.onEnrollmentCreated(ctx, event)
	case domain.EventPaymentSucceeded, domain.EventPaymentRefunded:
		err = w.onPaymentSettled(ctx, event)
	case domain.EventReviewAdded:
		err = w.onReviewAdded(ctx, event)
	default:
		return nil
	}
	if err != nil {
		w.logger.Warn("notification delivery failed",
			zap.String("event_type", event.Type),
			zap.String("entity_id", event.EntityID),
			zap.Error(err))
		return err
	}
	// The email channel is stubbed: record the envelope instead of sending.
	w.logger.Debug("email send skipped",
		zap.String("from", w.emailFrom),
		zap.String("event_type", event.Type),
		zap.String("entity_id", event.EntityID))
	return nil
}

func (w *NotificationWorker) onBookingCreated(ctx context.Context, event events.Event) error {
	slotID := payloadString(event.Payload, "slot_id")
	if slotID == "" {
		return fmt.Errorf("event %s missing slot_id", event.ID)
	}
	slot, err := w.slots.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	_, err = w.notifications.Notify(ctx, slot.InstructorID, event.Type,
		"New booking request",
		fmt.Sprintf("A student requested the session starting %s.", slot.StartsAt.Format("Jan 2 15:04 MST")),
		&event.EntityID)
	return err
}

func (w *NotificationWorker) onBookingTransition(ctx context.Context, event events.Event) error {
	booking, err := w.bookings.GetByID(ctx, event.EntityID)
	if err != nil {
		return err
	}
	title := "Booking confirmed"
	body := "Your booking was confirmed by the instructor."
	if event.Type == domain.EventBookingCancelled {
		title = "Booking cancelled"
		body = "Your booking was cancelled."
	}
	_, err = w.notifications.Notify(ctx, booking.StudentID, event.Type, title, body, &event.EntityID)
	return err
}

func (w *NotificationWorker) onEnrollmentCreated(ctx context.Context, event events.Event) error {
	studentID := payloadString(event.Payload, "student_id")
	courseID := payloadString(event.Payload, "course_id")
	if studentID == "" || courseID == "" {
		return fmt.Errorf("event %s missing enrollment ids", event.ID)
	}
	course, err := w.courses.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	_, err = w.notifications.Notify(ctx, studentID, event.Type,
		"Enrollment confirmed",
		fmt.Sprintf("You are enrolled in %q.", course.Title),
		&event.EntityID)
	return err
}

func (w *NotificationWorker) onPaymentSettled(ctx context.Context, event events.Event) error {
	payerID := payloadString(event.Payload, "payer_id")
	if payerID == "" && event.Actor.UserID != nil {
		payerID = *event.Actor.UserID
	}
	if payerID == "" {
		return fmt.Errorf("event %s missing payer", event.ID)
	}
	title := "Payment received"
	body := "Your payment was processed successfully."
	if event.Type == domain.EventPaymentRefunded {
		title = "Payment refunded"
		body = "Your payment was refunded."
	}
	_, err := w.notifications.Notify(ctx, payerID, event.Type, title, body, &event.EntityID)
	return err
}

func (w *NotificationWorker) onReviewAdded(ctx context.Context, event events.Event) error {
	courseID := payloadString(event.Payload, "course_id")
	if courseID == "" {
		return fmt.Errorf("event %s missing course_id", event.ID)
	}
	course, err := w.courses.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	_, err = w.notifications.Notify(ctx, course.InstructorID, event.Type,
		"New review",
		fmt.Sprintf("Your course %q received a new review.", course.Title),
		&event.EntityID)
	return err
}

// RunConsumer processes events from an AMQP queue until the context ends.
// Failed deliveries are nacked without requeue to avoid poison loops.
func (w *NotificationWorker) RunConsumer(ctx context.Context, consumer *events.AMQPConsumer) error {
	deliveries, err := consumer.Deliveries(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}
			var event events.Event
			if err := json.Unmarshal(delivery.Body, &event); err != nil {
				w.logger.Warn("discarding malformed event", zap.Error(err))
				_ = delivery.Nack(false, false)
				continue
			}
			if err := w.Handle(ctx, event); err != nil {
				_ = delivery.Nack(false, false)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	value, _ := payload[key].(string)
	return value
}
