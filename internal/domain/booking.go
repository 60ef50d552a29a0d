package domain

import (
	"errors"
	"time"
)

// BookingStatus enumerates booking lifecycle states.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// Event types recorded by the Booking aggregate.
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
)

var allowedBookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCancelled: {},
	BookingStatusCompleted: {},
}

// Booking is a student reservation of an availability slot.
type Booking struct {
	eventRecorder

	ID          string
	StudentID   string
	SlotID      string
	CourseID    *string
	Status      BookingStatus
	Note        string
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBooking constructs a pending booking and records its creation event.
func NewBooking(studentID, slotID string, courseID *string, note string) *Booking {
	b := &Booking{
		StudentID: studentID,
		SlotID:    slotID,
		CourseID:  courseID,
		Status:    BookingStatusPending,
		Note:      note,
	}
	b.record(EventBookingCreated, map[string]any{
		"student_id": studentID,
		"slot_id":    slotID,
	})
	return b
}

// Confirm transitions PENDING -> CONFIRMED.
func (b *Booking) Confirm() error {
	if err := b.transition(BookingStatusConfirmed); err != nil {
		return err
	}
	b.record(EventBookingConfirmed, map[string]any{"booking_id": b.ID})
	return nil
}

// Cancel transitions an active booking to CANCELLED.
func (b *Booking) Cancel(now time.Time) error {
	if err := b.transition(BookingStatusCancelled); err != nil {
		return err
	}
	b.CancelledAt = &now
	b.record(EventBookingCancelled, map[string]any{"booking_id": b.ID})
	return nil
}

// Complete transitions CONFIRMED -> COMPLETED.
func (b *Booking) Complete() error {
	if err := b.transition(BookingStatusCompleted); err != nil {
		return err
	}
	b.record(EventBookingCompleted, map[string]any{"booking_id": b.ID})
	return nil
}

// IsActive reports whether the booking still holds a seat.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

func (b *Booking) transition(next BookingStatus) error {
	for _, candidate := range allowedBookingTransitions[b.Status] {
		if candidate == next {
			b.Status = next
			return nil
		}
	}
	return errors.New("invalid booking transition from " + string(b.Status) + " to " + string(next))
}
