package service

import (
	"context"
	"testing"

	"github.com/spec-kit/medcourse-service/internal/domain"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

func newReviewFixture(t *testing.T) (*ReviewService, *memCourseRepo, *memEnrollmentRepo, *capturedEvents) {
	t.Helper()
	courses := newMemCourseRepo()
	enrollments := newMemEnrollmentRepo()
	bus := &capturedEvents{}
	svc := NewReviewService(newMemReviewRepo(), enrollments, courses, newTestDispatcher(), bus)
	return svc, courses, enrollments, bus
}

func TestAddReviewRequiresEnrollment(t *testing.T) {
	svc, courses, _, _ := newReviewFixture(t)
	course := seedPublishedCourse(t, courses, "instructor-1", 9900)

	_, err := svc.AddReview(context.Background(), Actor{ID: "student-1", Role: domain.RoleStudent}, course.ID, 5, "great")
	if err == nil {
		t.Fatal("expected enrollment requirement")
	}
	if apperrors.ToDomainError(err).Code != "FORBIDDEN" {
		t.Fatalf("code = %s", apperrors.ToDomainError(err).Code)
	}
}

func TestAddReviewUpdatesCourseRating(t *testing.T) {
	svc, courses, enrollments, bus := newReviewFixture(t)
	course := seedPublishedCourse(t, courses, "instructor-1", 9900)

	price, _ := domain.NewMoney(9900, domain.CurrencyUSD)
	for _, studentID := range []string{"student-1", "student-2"} {
		enrollment := domain.NewEnrollment(studentID, course.ID, price, nil)
		enrollment.DrainEvents()
		_ = enrollments.Create(context.Background(), enrollment)
	}

	if _, err := svc.AddReview(context.Background(), Actor{ID: "student-1", Role: domain.RoleStudent}, course.ID, 5, "excellent"); err != nil {
		t.Fatalf("first review: %v", err)
	}
	if _, err := svc.AddReview(context.Background(), Actor{ID: "student-2", Role: domain.RoleStudent}, course.ID, 4, ""); err != nil {
		t.Fatalf("second review: %v", err)
	}

	stored, _ := courses.GetByID(context.Background(), course.ID)
	if stored.RatingCount != 2 {
		t.Fatalf("rating count = %d", stored.RatingCount)
	}
	if stored.RatingAvg != 4.5 {
		t.Fatalf("rating avg = %f", stored.RatingAvg)
	}

	types := bus.types()
	if len(types) != 2 || types[0] != domain.EventReviewAdded {
		t.Fatalf("events = %v", types)
	}
}

func TestAddReviewRejectsSecondReview(t *testing.T) {
	svc, courses, enrollments, _ := newReviewFixture(t)
	course := seedPublishedCourse(t, courses, "instructor-1", 9900)

	price, _ := domain.NewMoney(9900, domain.CurrencyUSD)
	enrollment := domain.NewEnrollment("student-1", course.ID, price, nil)
	enrollment.DrainEvents()
	_ = enrollments.Create(context.Background(), enrollment)

	student := Actor{ID: "student-1", Role: domain.RoleStudent}
	if _, err := svc.AddReview(context.Background(), student, course.ID, 5, ""); err != nil {
		t.Fatalf("first review: %v", err)
	}
	if _, err := svc.AddReview(context.Background(), student, course.ID, 3, ""); err == nil {
		t.Fatal("expected duplicate rejection")
	}
}

func TestAddReviewRejectsCancelledEnrollment(t *testing.T) {
	svc, courses, enrollments, _ := newReviewFixture(t)
	course := seedPublishedCourse(t, courses, "instructor-1", 9900)

	price, _ := domain.NewMoney(9900, domain.CurrencyUSD)
	enrollment := domain.NewEnrollment("student-1", course.ID, price, nil)
	enrollment.DrainEvents()
	_ = enrollment.Cancel()
	_ = enrollments.Create(context.Background(), enrollment)

	if _, err := svc.AddReview(context.Background(), Actor{ID: "student-1", Role: domain.RoleStudent}, course.ID, 2, ""); err == nil {
		t.Fatal("expected cancelled enrollment rejection")
	}
}

func TestAddReviewValidatesStars(t *testing.T) {
	svc, courses, _, _ := newReviewFixture(t)
	course := seedPublishedCourse(t, courses, "instructor-1", 9900)

	_, err := svc.AddReview(context.Background(), Actor{ID: "student-1", Role: domain.RoleStudent}, course.ID, 6, "")
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if apperrors.ToDomainError(err).Code != "VALIDATION_FAILED" {
		t.Fatalf("code = %s", apperrors.ToDomainError(err).Code)
	}
}
