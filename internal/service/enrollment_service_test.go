package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/medcourse-service/internal/domain"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

func seedPublishedCourse(t *testing.T, repo *memCourseRepo, instructorID string, priceCents int64) *domain.Course {
	t.Helper()
	price, _ := domain.NewMoney(priceCents, domain.CurrencyUSD)
	course, err := domain.NewCourse(instructorID, "Advanced Cardiac Life Support", "", "cardiology", price)
	if err != nil {
		t.Fatalf("new course: %v", err)
	}
	if err := repo.Create(context.Background(), course); err != nil {
		t.Fatalf("create course: %v", err)
	}
	if err := course.Publish(time.Now()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	course.DrainEvents()
	if err := repo.Update(context.Background(), course); err != nil {
		t.Fatalf("update course: %v", err)
	}
	return course
}

func TestEnrollCreatesEnrollmentAtListPrice(t *testing.T) {
	courses := newMemCourseRepo()
	enrollments := newMemEnrollmentRepo()
	bus := &capturedEvents{}
	svc := NewEnrollmentService(enrollments, courses, newMemPromoRepo(), newTestDispatcher(), bus)

	course := seedPublishedCourse(t, courses, "instructor-1", 9900)
	student := Actor{ID: "student-1", Role: domain.RoleStudent}

	enrollment, err := svc.Enroll(context.Background(), student, course.ID, nil)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if enrollment.PricePaid.Amount != 9900 {
		t.Fatalf("price paid = %d", enrollment.PricePaid.Amount)
	}
	if enrollment.Status != domain.EnrollmentStatusEnrolled {
		t.Fatalf("status = %s", enrollment.Status)
	}
	types := bus.types()
	if len(types) != 1 || types[0] != domain.EventEnrollmentCreated {
		t.Fatalf("events = %v", types)
	}
}

func TestEnrollRejectsDuplicate(t *testing.T) {
	courses := newMemCourseRepo()
	enrollments := newMemEnrollmentRepo()
	svc := NewEnrollmentService(enrollments, courses, newMemPromoRepo(), newTestDispatcher(), &capturedEvents{})

	course := seedPublishedCourse(t, courses, "instructor-1", 9900)
	student := Actor{ID: "student-1", Role: domain.RoleStudent}

	if _, err := svc.Enroll(context.Background(), student, course.ID, nil); err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	_, err := svc.Enroll(context.Background(), student, course.ID, nil)
	if err == nil {
		t.Fatal("expected duplicate rejection")
	}
	if apperrors.ToDomainError(err).Code != "CONFLICT" {
		t.Fatalf("code = %s", apperrors.ToDomainError(err).Code)
	}
}

func TestEnrollRejectsDraftCourse(t *testing.T) {
	courses := newMemCourseRepo()
	svc := NewEnrollmentService(newMemEnrollmentRepo(), courses, newMemPromoRepo(), newTestDispatcher(), &capturedEvents{})

	price, _ := domain.NewMoney(5000, domain.CurrencyUSD)
	draft, _ := domain.NewCourse("instructor-1", "Suturing Basics", "", "surgery", price)
	_ = courses.Create(context.Background(), draft)

	if _, err := svc.Enroll(context.Background(), Actor{ID: "student-1", Role: domain.RoleStudent}, draft.ID, nil); err == nil {
		t.Fatal("expected draft course rejection")
	}
}

func TestEnrollAppliesAndRedeemsPromo(t *testing.T) {
	courses := newMemCourseRepo()
	enrollments := newMemEnrollmentRepo()
	promos := newMemPromoRepo()
	svc := NewEnrollmentService(enrollments, courses, promos, newTestDispatcher(), &capturedEvents{})

	course := seedPublishedCourse(t, courses, "instructor-1", 10000)
	promo, err := domain.NewPercentPromo("launch25", 25,
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 1)
	if err != nil {
		t.Fatalf("new promo: %v", err)
	}
	_ = promos.Create(context.Background(), promo)

	code := "launch25"
	enrollment, err := svc.Enroll(context.Background(), Actor{ID: "student-1", Role: domain.RoleStudent}, course.ID, &code)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if enrollment.PricePaid.Amount != 7500 {
		t.Fatalf("discounted price = %d", enrollment.PricePaid.Amount)
	}
	if enrollment.PromoCodeID == nil || *enrollment.PromoCodeID != promo.ID {
		t.Fatalf("promo id = %v", enrollment.PromoCodeID)
	}

	stored, _ := promos.GetByID(context.Background(), promo.ID)
	if stored.RedeemedCount != 1 {
		t.Fatalf("redeemed count = %d", stored.RedeemedCount)
	}

	// Redemption limit reached, next student is rejected.
	if _, err := svc.Enroll(context.Background(), Actor{ID: "student-2", Role: domain.RoleStudent}, course.ID, &code); err == nil {
		t.Fatal("expected exhausted promo rejection")
	}
}

func TestEnrollRejectsOwnCourse(t *testing.T) {
	courses := newMemCourseRepo()
	svc := NewEnrollmentService(newMemEnrollmentRepo(), courses, newMemPromoRepo(), newTestDispatcher(), &capturedEvents{})

	course := seedPublishedCourse(t, courses, "instructor-1", 9900)
	if _, err := svc.Enroll(context.Background(), Actor{ID: "instructor-1", Role: domain.RoleInstructor}, course.ID, nil); err == nil {
		t.Fatal("expected own-course rejection")
	}
}
