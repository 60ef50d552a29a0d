package domain

import (
	"errors"
	"strings"
	"time"
)

// EventReviewAdded is recorded when a student reviews a course.
const EventReviewAdded = "review.added"

// Review is a star rating with an optional comment, one per student per course.
type Review struct {
	eventRecorder

	ID        string
	CourseID  string
	StudentID string
	Stars     int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReview validates and constructs a review.
func NewReview(courseID, studentID string, stars int, comment string) (*Review, error) {
	if stars < 1 || stars > 5 {
		return nil, errors.New("stars must be between 1 and 5")
	}
	r := &Review{
		CourseID:  courseID,
		StudentID: studentID,
		Stars:     stars,
		Comment:   strings.TrimSpace(comment),
	}
	r.record(EventReviewAdded, map[string]any{
		"course_id":  courseID,
		"student_id": studentID,
		"stars":      stars,
	})
	return r, nil
}
