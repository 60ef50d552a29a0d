package service

import (
	"context"
	"testing"

	"github.com/spec-kit/medcourse-service/internal/domain"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

func TestCreateCourseRequiresInstructorRole(t *testing.T) {
	svc := NewCourseService(newMemCourseRepo(), newTestDispatcher(), &capturedEvents{})

	input := CourseInput{Title: "ECG Interpretation", PriceAmount: 4900, PriceCurrency: "USD"}
	if _, err := svc.CreateCourse(context.Background(), Actor{ID: "student-1", Role: domain.RoleStudent}, input); err == nil {
		t.Fatal("expected role rejection")
	}

	course, err := svc.CreateCourse(context.Background(), Actor{ID: "instructor-1", Role: domain.RoleInstructor}, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if course.Status != domain.CourseStatusDraft {
		t.Fatalf("status = %s", course.Status)
	}
	if course.Slug != "ecg-interpretation" {
		t.Fatalf("slug = %s", course.Slug)
	}
}

func TestCreateCourseRejectsUnknownCurrency(t *testing.T) {
	svc := NewCourseService(newMemCourseRepo(), newTestDispatcher(), &capturedEvents{})

	_, err := svc.CreateCourse(context.Background(), Actor{ID: "instructor-1", Role: domain.RoleInstructor},
		CourseInput{Title: "ECG Interpretation", PriceAmount: 4900, PriceCurrency: "JPY"})
	if err == nil {
		t.Fatal("expected currency rejection")
	}
}

func TestPublishCourseEnforcesOwnership(t *testing.T) {
	courses := newMemCourseRepo()
	bus := &capturedEvents{}
	svc := NewCourseService(courses, newTestDispatcher(), bus)

	owner := Actor{ID: "instructor-1", Role: domain.RoleInstructor}
	course, err := svc.CreateCourse(context.Background(), owner,
		CourseInput{Title: "Airway Management", PriceAmount: 12000, PriceCurrency: "EUR"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	other := Actor{ID: "instructor-2", Role: domain.RoleInstructor}
	if _, err := svc.PublishCourse(context.Background(), other, course.ID); err == nil {
		t.Fatal("expected ownership rejection")
	}

	published, err := svc.PublishCourse(context.Background(), owner, course.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.Status != domain.CourseStatusPublished || published.PublishedAt == nil {
		t.Fatalf("published = %+v", published)
	}

	// Publishing twice fails.
	if _, err := svc.PublishCourse(context.Background(), owner, course.ID); err == nil {
		t.Fatal("expected second publish rejection")
	}

	types := bus.types()
	if len(types) != 1 || types[0] != domain.EventCoursePublished {
		t.Fatalf("events = %v", types)
	}
}

func TestUpdateCourseFrozenWhenArchived(t *testing.T) {
	courses := newMemCourseRepo()
	svc := NewCourseService(courses, newTestDispatcher(), &capturedEvents{})

	owner := Actor{ID: "instructor-1", Role: domain.RoleInstructor}
	course, err := svc.CreateCourse(context.Background(), owner,
		CourseInput{Title: "Wound Care", PriceAmount: 3000, PriceCurrency: "USD"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.PublishCourse(context.Background(), owner, course.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := svc.ArchiveCourse(context.Background(), owner, course.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}

	title := "Renamed"
	_, err = svc.UpdateCourse(context.Background(), owner, course.ID, CourseUpdateInput{Title: &title})
	if err == nil {
		t.Fatal("expected archived freeze")
	}
	if apperrors.ToDomainError(err).Code != "UNPROCESSABLE" {
		t.Fatalf("code = %s", apperrors.ToDomainError(err).Code)
	}
}
