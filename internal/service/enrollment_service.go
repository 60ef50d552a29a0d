package service

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/medcourse-service/internal/cache"
	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/events"
	"github.com/spec-kit/medcourse-service/internal/pipeline"
	"github.com/spec-kit/medcourse-service/internal/repository"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

// EnrollmentService coordinates course purchases.
type EnrollmentService struct {
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	promos      repository.PromoRepository
	dispatcher  *pipeline.Dispatcher
	events      events.Dispatcher
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(enrollments repository.EnrollmentRepository, courses repository.CourseRepository, promos repository.PromoRepository, dispatcher *pipeline.Dispatcher, eventBus events.Dispatcher) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollments,
		courses:     courses,
		promos:      promos,
		dispatcher:  dispatcher,
		events:      eventBus,
	}
}

type enrollCommand struct {
	Actor
	CourseID  string
	PromoCode *string
}

func (c enrollCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.CourseID, validation.Required),
	)
}

func (c enrollCommand) RequiresTransaction() bool { return true }

func (c enrollCommand) InvalidatePrefixes() []string {
	return []string{enrollmentPrefix(c.Actor.ID), prefixEnrollmentList}
}

// Enroll purchases a published course for the calling student, applying an
// optional promo code. Enrollment and promo redemption commit together.
func (s *EnrollmentService) Enroll(ctx context.Context, actor Actor, courseID string, promoCode *string) (*domain.Enrollment, error) {
	cmd := enrollCommand{Actor: actor, CourseID: courseID, PromoCode: promoCode}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleEnroll)
}

func (s *EnrollmentService) handleEnroll(ctx context.Context, cmd enrollCommand) (*domain.Enrollment, error) {
	course, err := s.courses.GetByID(ctx, cmd.CourseID)
	if err != nil {
		return nil, err
	}
	if course.Status != domain.CourseStatusPublished {
		return nil, apperrors.NewUnprocessable("course is not open for enrollment", nil)
	}
	if course.InstructorID == cmd.Actor.ID {
		return nil, apperrors.NewUnprocessable("instructors cannot enroll in their own course", nil)
	}

	if _, err := s.enrollments.GetByStudentAndCourse(ctx, cmd.Actor.ID, cmd.CourseID); err == nil {
		return nil, apperrors.NewConflict("already enrolled", nil)
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	price := course.Price
	var promoID *string
	if cmd.PromoCode != nil && *cmd.PromoCode != "" {
		promo, err := s.promos.GetByCode(ctx, normalizePromoCode(*cmd.PromoCode))
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewUnprocessable("unknown promo code", nil)
			}
			return nil, err
		}
		now := time.Now().UTC()
		if err := promo.Redeem(now); err != nil {
			return nil, apperrors.NewUnprocessable(err.Error(), nil)
		}
		discounted, err := promo.Apply(course.Price)
		if err != nil {
			return nil, apperrors.NewUnprocessable(err.Error(), nil)
		}
		if err := s.promos.Update(ctx, promo); err != nil {
			return nil, err
		}
		price = discounted
		promoID = &promo.ID
	}

	enrollment := domain.NewEnrollment(cmd.Actor.ID, cmd.CourseID, price, promoID)
	// Drain before persisting so the stored aggregate never carries
	// already-published events back out of the repository.
	drained := enrollment.DrainEvents()
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, err
	}
	publishDrained(ctx, s.events, enrollment.ID, cmd.Actor, drained)
	return enrollment, nil
}

type transitionEnrollmentCommand struct {
	Actor
	EnrollmentID string
	Complete     bool
}

func (c transitionEnrollmentCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.EnrollmentID, validation.Required),
	)
}

func (c transitionEnrollmentCommand) InvalidatePrefixes() []string {
	return []string{enrollmentPrefix(c.Actor.ID), prefixEnrollmentList}
}

// CancelEnrollment ends the caller's active enrollment.
func (s *EnrollmentService) CancelEnrollment(ctx context.Context, actor Actor, enrollmentID string) (*domain.Enrollment, error) {
	cmd := transitionEnrollmentCommand{Actor: actor, EnrollmentID: enrollmentID}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleTransitionEnrollment)
}

// CompleteEnrollment marks the caller's enrollment finished.
func (s *EnrollmentService) CompleteEnrollment(ctx context.Context, actor Actor, enrollmentID string) (*domain.Enrollment, error) {
	cmd := transitionEnrollmentCommand{Actor: actor, EnrollmentID: enrollmentID, Complete: true}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleTransitionEnrollment)
}

func (s *EnrollmentService) handleTransitionEnrollment(ctx context.Context, cmd transitionEnrollmentCommand) (*domain.Enrollment, error) {
	enrollment, err := s.enrollments.GetByID(ctx, cmd.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.StudentID != cmd.Actor.ID && !cmd.Actor.IsAdmin() {
		return nil, apperrors.NewForbidden("not your enrollment")
	}
	if cmd.Complete {
		err = enrollment.Complete()
	} else {
		err = enrollment.Cancel()
	}
	if err != nil {
		return nil, apperrors.NewUnprocessable(err.Error(), nil)
	}
	if err := s.enrollments.Update(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

type listEnrollmentsQuery struct {
	StudentID string
	Statuses  []domain.EnrollmentStatus
	Limit     int
	Offset    int
}

func (q listEnrollmentsQuery) CacheKey() string {
	fields := map[string]any{"page": fmt.Sprintf("%d:%d", q.Limit, q.Offset)}
	for i, status := range q.Statuses {
		fields[fmt.Sprintf("status%d", i)] = string(status)
	}
	return cache.Key("enrollments", q.StudentID, cache.FilterSegment(fields))
}

func (q listEnrollmentsQuery) CachePrefixes() []string {
	return []string{enrollmentPrefix(q.StudentID), prefixEnrollmentList}
}

// ListEnrollments returns a student's enrollments.
func (s *EnrollmentService) ListEnrollments(ctx context.Context, studentID string, statuses []domain.EnrollmentStatus, limit, offset int) ([]domain.Enrollment, error) {
	query := listEnrollmentsQuery{StudentID: studentID, Statuses: statuses, Limit: limit, Offset: offset}
	return pipeline.Dispatch(ctx, s.dispatcher, query, func(ctx context.Context, q listEnrollmentsQuery) ([]domain.Enrollment, error) {
		return s.enrollments.ListByStudent(ctx, q.StudentID, q.Statuses, q.Limit, q.Offset)
	})
}

// GetEnrollment fetches an enrollment visible to the caller.
func (s *EnrollmentService) GetEnrollment(ctx context.Context, actor Actor, id string) (*domain.Enrollment, error) {
	enrollment, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if enrollment.StudentID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("not your enrollment")
	}
	return enrollment, nil
}
