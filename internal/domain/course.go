package domain

import (
	"errors"
	"strings"
	"time"
)

// CourseStatus enumerates lifecycle states for courses.
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "DRAFT"
	CourseStatusPublished CourseStatus = "PUBLISHED"
	CourseStatusArchived  CourseStatus = "ARCHIVED"
)

// Event types recorded by the Course aggregate.
const (
	EventCoursePublished = "course.published"
	EventCourseArchived  = "course.archived"
)

// Course is the aggregate for instructor-owned course listings.
type Course struct {
	eventRecorder

	ID           string
	InstructorID string
	Title        string
	Slug         string
	Description  string
	Specialty    string
	Price        Money
	CoverURL     *WebURL
	Status       CourseStatus
	PublishedAt  *time.Time
	RatingAvg    float64
	RatingCount  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewCourse creates a draft course after guard checks.
func NewCourse(instructorID, title, description, specialty string, price Money) (*Course, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title required")
	}
	if price.Amount < 0 {
		return nil, errors.New("price must be non-negative")
	}
	if price.Currency == "" {
		return nil, errors.New("price currency required")
	}
	return &Course{
		InstructorID: instructorID,
		Title:        title,
		Slug:         slugify(title),
		Description:  strings.TrimSpace(description),
		Specialty:    strings.TrimSpace(specialty),
		Price:        price,
		Status:       CourseStatusDraft,
	}, nil
}

// UpdateDetails mutates mutable fields; archived courses are frozen.
func (c *Course) UpdateDetails(title, description, specialty *string, price *Money, coverURL *WebURL) error {
	if c.Status == CourseStatusArchived {
		return errors.New("archived course cannot be modified")
	}
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return errors.New("title required")
		}
		c.Title = trimmed
		c.Slug = slugify(trimmed)
	}
	if description != nil {
		c.Description = strings.TrimSpace(*description)
	}
	if specialty != nil {
		c.Specialty = strings.TrimSpace(*specialty)
	}
	if price != nil {
		if price.Amount < 0 {
			return errors.New("price must be non-negative")
		}
		c.Price = *price
	}
	if coverURL != nil {
		c.CoverURL = coverURL
	}
	return nil
}

// Publish transitions DRAFT -> PUBLISHED. Publishing twice fails.
func (c *Course) Publish(now time.Time) error {
	if c.Status == CourseStatusPublished {
		return errors.New("course already published")
	}
	if c.Status != CourseStatusDraft {
		return errors.New("only draft courses can be published")
	}
	c.Status = CourseStatusPublished
	c.PublishedAt = &now
	c.record(EventCoursePublished, map[string]any{
		"course_id":     c.ID,
		"instructor_id": c.InstructorID,
		"title":         c.Title,
	})
	return nil
}

// Archive transitions PUBLISHED -> ARCHIVED.
func (c *Course) Archive() error {
	if c.Status != CourseStatusPublished {
		return errors.New("only published courses can be archived")
	}
	c.Status = CourseStatusArchived
	c.record(EventCourseArchived, map[string]any{
		"course_id":     c.ID,
		"instructor_id": c.InstructorID,
	})
	return nil
}

// ApplyRating folds a new star rating into the aggregate average.
func (c *Course) ApplyRating(stars int) error {
	if stars < 1 || stars > 5 {
		return errors.New("stars must be between 1 and 5")
	}
	total := c.RatingAvg*float64(c.RatingCount) + float64(stars)
	c.RatingCount++
	c.RatingAvg = total / float64(c.RatingCount)
	return nil
}

func slugify(title string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	lastDash := true
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
