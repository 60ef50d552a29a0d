package service

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/medcourse-service/internal/cache"
	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/events"
	"github.com/spec-kit/medcourse-service/internal/pipeline"
	"github.com/spec-kit/medcourse-service/internal/repository"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

// ReviewService coordinates course ratings.
type ReviewService struct {
	reviews     repository.ReviewRepository
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	dispatcher  *pipeline.Dispatcher
	events      events.Dispatcher
}

// NewReviewService constructs the service.
func NewReviewService(reviews repository.ReviewRepository, enrollments repository.EnrollmentRepository, courses repository.CourseRepository, dispatcher *pipeline.Dispatcher, eventBus events.Dispatcher) *ReviewService {
	return &ReviewService{
		reviews:     reviews,
		enrollments: enrollments,
		courses:     courses,
		dispatcher:  dispatcher,
		events:      eventBus,
	}
}

type addReviewCommand struct {
	Actor
	CourseID string
	Stars    int
	Comment  string
}

func (c addReviewCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.CourseID, validation.Required),
		validation.Field(&c.Stars, validation.Min(1), validation.Max(5)),
		validation.Field(&c.Comment, validation.Length(0, 2000)),
	)
}

func (c addReviewCommand) RequiresTransaction() bool { return true }

func (c addReviewCommand) InvalidatePrefixes() []string {
	return []string{reviewPrefix(c.CourseID), coursePrefix(c.CourseID), prefixCourseList, prefixReviewList}
}

// AddReview lets an enrolled student rate a course once. The review row and
// the course rating aggregate commit together.
func (s *ReviewService) AddReview(ctx context.Context, actor Actor, courseID string, stars int, comment string) (*domain.Review, error) {
	cmd := addReviewCommand{Actor: actor, CourseID: courseID, Stars: stars, Comment: comment}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleAddReview)
}

func (s *ReviewService) handleAddReview(ctx context.Context, cmd addReviewCommand) (*domain.Review, error) {
	enrollment, err := s.enrollments.GetByStudentAndCourse(ctx, cmd.Actor.ID, cmd.CourseID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewForbidden("enrollment required to review")
		}
		return nil, err
	}
	if enrollment.Status == domain.EnrollmentStatusCancelled {
		return nil, apperrors.NewForbidden("enrollment required to review")
	}

	if _, err := s.reviews.GetByStudentAndCourse(ctx, cmd.Actor.ID, cmd.CourseID); err == nil {
		return nil, apperrors.NewConflict("course already reviewed", nil)
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	review, err := domain.NewReview(cmd.CourseID, cmd.Actor.ID, cmd.Stars, cmd.Comment)
	if err != nil {
		return nil, apperrors.NewUnprocessable(err.Error(), nil)
	}
	// Drain before persisting so the stored aggregate never carries
	// already-published events back out of the repository.
	drained := review.DrainEvents()
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, cmd.CourseID)
	if err != nil {
		return nil, err
	}
	if err := course.ApplyRating(cmd.Stars); err != nil {
		return nil, apperrors.NewUnprocessable(err.Error(), nil)
	}
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}

	publishDrained(ctx, s.events, review.ID, cmd.Actor, drained)
	return review, nil
}

type listReviewsQuery struct {
	CourseID string
	Limit    int
	Offset   int
}

func (q listReviewsQuery) CacheKey() string {
	return cache.Key("reviews", q.CourseID, fmt.Sprintf("%d:%d", q.Limit, q.Offset))
}

func (q listReviewsQuery) CachePrefixes() []string {
	return []string{reviewPrefix(q.CourseID), prefixReviewList}
}

// ListCourseReviews returns reviews for a course, newest first.
func (s *ReviewService) ListCourseReviews(ctx context.Context, courseID string, limit, offset int) ([]domain.Review, error) {
	query := listReviewsQuery{CourseID: courseID, Limit: limit, Offset: offset}
	return pipeline.Dispatch(ctx, s.dispatcher, query, func(ctx context.Context, q listReviewsQuery) ([]domain.Review, error) {
		return s.reviews.ListByCourse(ctx, q.CourseID, q.Limit, q.Offset)
	})
}
