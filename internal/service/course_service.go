package service

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/spec-kit/medcourse-service/internal/cache"
	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/events"
	"github.com/spec-kit/medcourse-service/internal/pipeline"
	"github.com/spec-kit/medcourse-service/internal/repository"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

// CourseService coordinates course catalog workflows.
type CourseService struct {
	courses    repository.CourseRepository
	dispatcher *pipeline.Dispatcher
	events     events.Dispatcher
}

// NewCourseService constructs the service.
func NewCourseService(courses repository.CourseRepository, dispatcher *pipeline.Dispatcher, eventBus events.Dispatcher) *CourseService {
	return &CourseService{courses: courses, dispatcher: dispatcher, events: eventBus}
}

// CourseInput describes course creation payload.
type CourseInput struct {
	Title         string
	Description   string
	Specialty     string
	PriceAmount   int64
	PriceCurrency string
	CoverURL      *string
}

type createCourseCommand struct {
	Actor
	Input CourseInput
}

func (c createCourseCommand) Validate() error {
	return validation.Errors{
		"title":          validation.Validate(c.Input.Title, validation.Required, validation.Length(1, 200)),
		"price_amount":   validation.Validate(c.Input.PriceAmount, validation.Min(int64(0))),
		"price_currency": validation.Validate(c.Input.PriceCurrency, validation.Required),
	}.Filter()
}

func (c createCourseCommand) InvalidatePrefixes() []string {
	return []string{prefixCourseList}
}

// CreateCourse creates a draft course owned by the calling instructor.
func (s *CourseService) CreateCourse(ctx context.Context, actor Actor, input CourseInput) (*domain.Course, error) {
	cmd := createCourseCommand{Actor: actor, Input: input}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleCreateCourse)
}

func (s *CourseService) handleCreateCourse(ctx context.Context, cmd createCourseCommand) (*domain.Course, error) {
	if cmd.Actor.Role != domain.RoleInstructor && !cmd.Actor.IsAdmin() {
		return nil, apperrors.NewForbidden("instructor role required")
	}
	price, err := domain.NewMoney(cmd.Input.PriceAmount, domain.Currency(cmd.Input.PriceCurrency))
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	course, err := domain.NewCourse(cmd.Actor.ID, cmd.Input.Title, cmd.Input.Description, cmd.Input.Specialty, price)
	if err != nil {
		return nil, apperrors.NewUnprocessable(err.Error(), nil)
	}
	if cmd.Input.CoverURL != nil {
		cover, err := domain.ParseWebURL(*cmd.Input.CoverURL)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
		course.CoverURL = &cover
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// CourseUpdateInput holds optional course fields.
type CourseUpdateInput struct {
	Title         *string
	Description   *string
	Specialty     *string
	PriceAmount   *int64
	PriceCurrency *string
	CoverURL      *string
}

type updateCourseCommand struct {
	Actor
	CourseID string
	Input    CourseUpdateInput
}

func (c updateCourseCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.CourseID, validation.Required),
	)
}

func (c updateCourseCommand) InvalidatePrefixes() []string {
	return []string{coursePrefix(c.CourseID), prefixCourseList}
}

// UpdateCourse mutates a course owned by the caller.
func (s *CourseService) UpdateCourse(ctx context.Context, actor Actor, courseID string, input CourseUpdateInput) (*domain.Course, error) {
	cmd := updateCourseCommand{Actor: actor, CourseID: courseID, Input: input}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleUpdateCourse)
}

func (s *CourseService) handleUpdateCourse(ctx context.Context, cmd updateCourseCommand) (*domain.Course, error) {
	course, err := s.loadOwned(ctx, cmd.Actor, cmd.CourseID)
	if err != nil {
		return nil, err
	}

	var price *domain.Money
	if cmd.Input.PriceAmount != nil {
		currency := string(course.Price.Currency)
		if cmd.Input.PriceCurrency != nil {
			currency = *cmd.Input.PriceCurrency
		}
		parsed, err := domain.NewMoney(*cmd.Input.PriceAmount, domain.Currency(currency))
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
		price = &parsed
	}
	var cover *domain.WebURL
	if cmd.Input.CoverURL != nil {
		parsed, err := domain.ParseWebURL(*cmd.Input.CoverURL)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
		cover = &parsed
	}

	if err := course.UpdateDetails(cmd.Input.Title, cmd.Input.Description, cmd.Input.Specialty, price, cover); err != nil {
		return nil, apperrors.NewUnprocessable(err.Error(), nil)
	}
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

type transitionCourseCommand struct {
	Actor
	CourseID string
	Archive  bool
}

func (c transitionCourseCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.CourseID, validation.Required),
	)
}

func (c transitionCourseCommand) InvalidatePrefixes() []string {
	return []string{coursePrefix(c.CourseID), prefixCourseList}
}

// PublishCourse transitions a draft course to published.
func (s *CourseService) PublishCourse(ctx context.Context, actor Actor, courseID string) (*domain.Course, error) {
	cmd := transitionCourseCommand{Actor: actor, CourseID: courseID}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleTransitionCourse)
}

// ArchiveCourse transitions a published course to archived.
func (s *CourseService) ArchiveCourse(ctx context.Context, actor Actor, courseID string) (*domain.Course, error) {
	cmd := transitionCourseCommand{Actor: actor, CourseID: courseID, Archive: true}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleTransitionCourse)
}

func (s *CourseService) handleTransitionCourse(ctx context.Context, cmd transitionCourseCommand) (*domain.Course, error) {
	course, err := s.loadOwned(ctx, cmd.Actor, cmd.CourseID)
	if err != nil {
		return nil, err
	}
	if cmd.Archive {
		err = course.Archive()
	} else {
		err = course.Publish(time.Now().UTC())
	}
	if err != nil {
		return nil, apperrors.NewUnprocessable(err.Error(), nil)
	}
	// Drain before persisting so the stored aggregate never carries
	// already-published events back out of the repository.
	drained := course.DrainEvents()
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}
	publishDrained(ctx, s.events, course.ID, cmd.Actor, drained)
	return course, nil
}

func (s *CourseService) loadOwned(ctx context.Context, actor Actor, courseID string) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.InstructorID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("not the course owner")
	}
	return course, nil
}

type getCourseQuery struct {
	ID string
}

func (q getCourseQuery) CacheKey() string {
	return cache.Key("course", q.ID)
}

func (q getCourseQuery) CachePrefixes() []string {
	return []string{coursePrefix(q.ID)}
}

// GetCourse fetches a course by id.
func (s *CourseService) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	return pipeline.Dispatch(ctx, s.dispatcher, getCourseQuery{ID: id}, func(ctx context.Context, q getCourseQuery) (*domain.Course, error) {
		return s.courses.GetByID(ctx, q.ID)
	})
}

type getCourseBySlugQuery struct {
	Slug string
}

func (q getCourseBySlugQuery) CacheKey() string {
	return cache.Key("course", "slug", q.Slug)
}

func (q getCourseBySlugQuery) CachePrefixes() []string {
	return []string{prefixCourseList}
}

// GetCourseBySlug fetches a course by its URL slug.
func (s *CourseService) GetCourseBySlug(ctx context.Context, slug string) (*domain.Course, error) {
	return pipeline.Dispatch(ctx, s.dispatcher, getCourseBySlugQuery{Slug: slug}, func(ctx context.Context, q getCourseBySlugQuery) (*domain.Course, error) {
		return s.courses.GetBySlug(ctx, q.Slug)
	})
}

type listCoursesQuery struct {
	Filter repository.CourseFilter
}

func (q listCoursesQuery) CacheKey() string {
	fields := map[string]any{}
	if q.Filter.InstructorID != nil {
		fields["instructor"] = *q.Filter.InstructorID
	}
	if q.Filter.Specialty != nil {
		fields["specialty"] = *q.Filter.Specialty
	}
	if q.Filter.SearchTerm != nil {
		fields["search"] = *q.Filter.SearchTerm
	}
	if q.Filter.MinPrice != nil {
		fields["min_price"] = *q.Filter.MinPrice
	}
	if q.Filter.MaxPrice != nil {
		fields["max_price"] = *q.Filter.MaxPrice
	}
	for i, status := range q.Filter.Statuses {
		fields[fmt.Sprintf("status%d", i)] = string(status)
	}
	fields["page"] = fmt.Sprintf("%d:%d", q.Filter.Limit, q.Filter.Offset)
	return cache.Key("courses", cache.FilterSegment(fields))
}

func (q listCoursesQuery) CachePrefixes() []string {
	return []string{prefixCourseList}
}

// ListCourses searches the catalog.
func (s *CourseService) ListCourses(ctx context.Context, filter repository.CourseFilter) ([]domain.Course, error) {
	return pipeline.Dispatch(ctx, s.dispatcher, listCoursesQuery{Filter: filter}, func(ctx context.Context, q listCoursesQuery) ([]domain.Course, error) {
		return s.courses.ListWithFilter(ctx, q.Filter)
	})
}
