package domain

import (
	"errors"
	"time"
)

// EnrollmentStatus enumerates enrollment states.
type EnrollmentStatus string

const (
	EnrollmentStatusEnrolled  EnrollmentStatus = "ENROLLED"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
)

// EventEnrollmentCreated is recorded when a student enrolls.
const EventEnrollmentCreated = "enrollment.created"

// Enrollment links a student to a course they purchased.
type Enrollment struct {
	eventRecorder

	ID          string
	StudentID   string
	CourseID    string
	PricePaid   Money
	PromoCodeID *string
	Status      EnrollmentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewEnrollment constructs an active enrollment.
func NewEnrollment(studentID, courseID string, pricePaid Money, promoCodeID *string) *Enrollment {
	e := &Enrollment{
		StudentID:   studentID,
		CourseID:    courseID,
		PricePaid:   pricePaid,
		PromoCodeID: promoCodeID,
		Status:      EnrollmentStatusEnrolled,
	}
	e.record(EventEnrollmentCreated, map[string]any{
		"student_id": studentID,
		"course_id":  courseID,
	})
	return e
}

// Cancel ends an active enrollment.
func (e *Enrollment) Cancel() error {
	if e.Status != EnrollmentStatusEnrolled {
		return errors.New("only active enrollments can be cancelled")
	}
	e.Status = EnrollmentStatusCancelled
	return nil
}

// Complete marks the enrollment finished.
func (e *Enrollment) Complete() error {
	if e.Status != EnrollmentStatusEnrolled {
		return errors.New("only active enrollments can be completed")
	}
	e.Status = EnrollmentStatusCompleted
	return nil
}
