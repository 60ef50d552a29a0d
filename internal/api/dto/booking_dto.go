package dto

import (
	"time"

	"github.com/spec-kit/medcourse-service/internal/domain"
)

// CreateSlotRequest payload for availability windows.
type CreateSlotRequest struct {
	CourseID *string   `json:"course_id"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Capacity int       `json:"capacity"`
}

// SlotResponse is the public view of an availability slot.
type SlotResponse struct {
	ID           string    `json:"id"`
	InstructorID string    `json:"instructor_id"`
	CourseID     *string   `json:"course_id,omitempty"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	Capacity     int       `json:"capacity"`
	BookedCount  int       `json:"booked_count"`
	Status       string    `json:"status"`
}

// SlotFromDomain maps a domain slot to its response view.
func SlotFromDomain(slot *domain.AvailabilitySlot) SlotResponse {
	return SlotResponse{
		ID:           slot.ID,
		InstructorID: slot.InstructorID,
		CourseID:     slot.CourseID,
		StartsAt:     slot.StartsAt,
		EndsAt:       slot.EndsAt,
		Capacity:     slot.Capacity,
		BookedCount:  slot.BookedCount,
		Status:       string(slot.Status),
	}
}

// SlotsFromDomain maps a slice of slots.
func SlotsFromDomain(slots []domain.AvailabilitySlot) []SlotResponse {
	out := make([]SlotResponse, len(slots))
	for i := range slots {
		out[i] = SlotFromDomain(&slots[i])
	}
	return out
}

// CreateBookingRequest payload for bookings.
type CreateBookingRequest struct {
	SlotID string `json:"slot_id"`
	Note   string `json:"note"`
}

// BookingResponse is the public view of a booking.
type BookingResponse struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"student_id"`
	SlotID      string     `json:"slot_id"`
	CourseID    *string    `json:"course_id,omitempty"`
	Status      string     `json:"status"`
	Note        string     `json:"note,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// BookingFromDomain maps a domain booking to its response view.
func BookingFromDomain(booking *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:          booking.ID,
		StudentID:   booking.StudentID,
		SlotID:      booking.SlotID,
		CourseID:    booking.CourseID,
		Status:      string(booking.Status),
		Note:        booking.Note,
		CancelledAt: booking.CancelledAt,
		CreatedAt:   booking.CreatedAt,
	}
}

// BookingsFromDomain maps a slice of bookings.
func BookingsFromDomain(bookings []domain.Booking) []BookingResponse {
	out := make([]BookingResponse, len(bookings))
	for i := range bookings {
		out[i] = BookingFromDomain(&bookings[i])
	}
	return out
}
