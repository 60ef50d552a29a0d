package domain

import (
	"errors"
	"time"
)

// SlotStatus enumerates availability slot states.
type SlotStatus string

const (
	SlotStatusOpen    SlotStatus = "OPEN"
	SlotStatusBlocked SlotStatus = "BLOCKED"
	SlotStatusFull    SlotStatus = "FULL"
)

// AvailabilitySlot is a bookable window offered by an instructor.
type AvailabilitySlot struct {
	ID           string
	InstructorID string
	CourseID     *string
	StartsAt     time.Time
	EndsAt       time.Time
	Capacity     int
	BookedCount  int
	Status       SlotStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAvailabilitySlot validates and constructs an open slot.
func NewAvailabilitySlot(instructorID string, courseID *string, startsAt, endsAt time.Time, capacity int) (*AvailabilitySlot, error) {
	if !startsAt.Before(endsAt) {
		return nil, errors.New("slot must start before it ends")
	}
	if capacity < 1 {
		return nil, errors.New("capacity must be at least 1")
	}
	return &AvailabilitySlot{
		InstructorID: instructorID,
		CourseID:     courseID,
		StartsAt:     startsAt,
		EndsAt:       endsAt,
		Capacity:     capacity,
		Status:       SlotStatusOpen,
	}, nil
}

// Reserve takes one seat; the slot flips to FULL at capacity.
func (s *AvailabilitySlot) Reserve() error {
	if s.Status == SlotStatusBlocked {
		return errors.New("slot is blocked")
	}
	if s.BookedCount >= s.Capacity {
		return errors.New("slot is full")
	}
	s.BookedCount++
	if s.BookedCount == s.Capacity {
		s.Status = SlotStatusFull
	}
	return nil
}

// Release returns one seat after a cancellation.
func (s *AvailabilitySlot) Release() {
	if s.BookedCount > 0 {
		s.BookedCount--
	}
	if s.Status == SlotStatusFull && s.BookedCount < s.Capacity {
		s.Status = SlotStatusOpen
	}
}

// Block marks the slot unavailable for new bookings.
func (s *AvailabilitySlot) Block() error {
	if s.Status == SlotStatusBlocked {
		return errors.New("slot already blocked")
	}
	s.Status = SlotStatusBlocked
	return nil
}

// HasActiveBookings reports whether seats are currently taken.
func (s *AvailabilitySlot) HasActiveBookings() bool {
	return s.BookedCount > 0
}
