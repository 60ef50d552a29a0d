package dto

import (
	"time"

	"github.com/spec-kit/medcourse-service/internal/domain"
)

// MoneyResponse renders a price in minor units.
type MoneyResponse struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func moneyFromDomain(m domain.Money) MoneyResponse {
	return MoneyResponse{Amount: m.Amount, Currency: string(m.Currency)}
}

// CreateCourseRequest payload for new courses.
type CreateCourseRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Specialty     string  `json:"specialty"`
	PriceAmount   int64   `json:"price_amount"`
	PriceCurrency string  `json:"price_currency"`
	CoverURL      *string `json:"cover_url"`
}

// UpdateCourseRequest payload for course edits. All fields optional.
type UpdateCourseRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Specialty     *string `json:"specialty"`
	PriceAmount   *int64  `json:"price_amount"`
	PriceCurrency *string `json:"price_currency"`
	CoverURL      *string `json:"cover_url"`
}

// CourseResponse is the catalog view of a course.
type CourseResponse struct {
	ID           string        `json:"id"`
	InstructorID string        `json:"instructor_id"`
	Title        string        `json:"title"`
	Slug         string        `json:"slug"`
	Description  string        `json:"description,omitempty"`
	Specialty    string        `json:"specialty,omitempty"`
	Price        MoneyResponse `json:"price"`
	CoverURL     string        `json:"cover_url,omitempty"`
	Status       string        `json:"status"`
	PublishedAt  *time.Time    `json:"published_at,omitempty"`
	RatingAvg    float64       `json:"rating_avg"`
	RatingCount  int           `json:"rating_count"`
	CreatedAt    time.Time     `json:"created_at"`
}

// CourseFromDomain maps a domain course to its response view.
func CourseFromDomain(course *domain.Course) CourseResponse {
	resp := CourseResponse{
		ID:           course.ID,
		InstructorID: course.InstructorID,
		Title:        course.Title,
		Slug:         course.Slug,
		Description:  course.Description,
		Specialty:    course.Specialty,
		Price:        moneyFromDomain(course.Price),
		Status:       string(course.Status),
		PublishedAt:  course.PublishedAt,
		RatingAvg:    course.RatingAvg,
		RatingCount:  course.RatingCount,
		CreatedAt:    course.CreatedAt,
	}
	if course.CoverURL != nil {
		resp.CoverURL = course.CoverURL.String()
	}
	return resp
}

// CoursesFromDomain maps a slice of courses.
func CoursesFromDomain(courses []domain.Course) []CourseResponse {
	out := make([]CourseResponse, len(courses))
	for i := range courses {
		out[i] = CourseFromDomain(&courses[i])
	}
	return out
}

// AddReviewRequest payload for course reviews.
type AddReviewRequest struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

// ReviewResponse is the public view of a review.
type ReviewResponse struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	StudentID string    `json:"student_id"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewFromDomain maps a domain review to its response view.
func ReviewFromDomain(review *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID,
		CourseID:  review.CourseID,
		StudentID: review.StudentID,
		Stars:     review.Stars,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}

// ReviewsFromDomain maps a slice of reviews.
func ReviewsFromDomain(reviews []domain.Review) []ReviewResponse {
	out := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		out[i] = ReviewFromDomain(&reviews[i])
	}
	return out
}
