package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/medcourse-service/internal/api/dto"
	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/repository"
	"github.com/spec-kit/medcourse-service/internal/service"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

// CoursesHandler exposes course catalog and review endpoints.
type CoursesHandler struct {
	courses *service.CourseService
	reviews *service.ReviewService
}

// NewCoursesHandler constructs handler.
func NewCoursesHandler(courses *service.CourseService, reviews *service.ReviewService) *CoursesHandler {
	return &CoursesHandler{courses: courses, reviews: reviews}
}

// Create handles POST /courses.
func (h *CoursesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	course, err := h.courses.CreateCourse(c.UserContext(), actorFromCtx(c), service.CourseInput{
		Title:         req.Title,
		Description:   req.Description,
		Specialty:     req.Specialty,
		PriceAmount:   req.PriceAmount,
		PriceCurrency: req.PriceCurrency,
		CoverURL:      req.CoverURL,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CourseFromDomain(course)})
}

// Update handles PATCH /courses/:id.
func (h *CoursesHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	course, err := h.courses.UpdateCourse(c.UserContext(), actorFromCtx(c), c.Params("id"), service.CourseUpdateInput{
		Title:         req.Title,
		Description:   req.Description,
		Specialty:     req.Specialty,
		PriceAmount:   req.PriceAmount,
		PriceCurrency: req.PriceCurrency,
		CoverURL:      req.CoverURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CourseFromDomain(course)})
}

// Publish handles POST /courses/:id/publish.
func (h *CoursesHandler) Publish(c *fiber.Ctx) error {
	course, err := h.courses.PublishCourse(c.UserContext(), actorFromCtx(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CourseFromDomain(course)})
}

// Archive handles POST /courses/:id/archive.
func (h *CoursesHandler) Archive(c *fiber.Ctx) error {
	course, err := h.courses.ArchiveCourse(c.UserContext(), actorFromCtx(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CourseFromDomain(course)})
}

// Get handles GET /courses/:id.
func (h *CoursesHandler) Get(c *fiber.Ctx) error {
	course, err := h.courses.GetCourse(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CourseFromDomain(course)})
}

// GetBySlug handles GET /courses/slug/:slug.
func (h *CoursesHandler) GetBySlug(c *fiber.Ctx) error {
	course, err := h.courses.GetCourseBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CourseFromDomain(course)})
}

// List handles GET /courses.
func (h *CoursesHandler) List(c *fiber.Ctx) error {
	limit, offset := paging(c)
	filter := repository.CourseFilter{
		InstructorID: optionalQuery(c, "instructor_id"),
		Specialty:    optionalQuery(c, "specialty"),
		SearchTerm:   optionalQuery(c, "q"),
		Limit:        limit,
		Offset:       offset,
	}
	if v := c.Query("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			filter.Statuses = append(filter.Statuses, domain.CourseStatus(strings.TrimSpace(s)))
		}
	}
	if v := int64(c.QueryInt("min_price", -1)); v >= 0 {
		filter.MinPrice = &v
	}
	if v := int64(c.QueryInt("max_price", -1)); v >= 0 {
		filter.MaxPrice = &v
	}

	courses, err := h.courses.ListCourses(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CoursesFromDomain(courses)})
}

// AddReview handles POST /courses/:id/reviews.
func (h *CoursesHandler) AddReview(c *fiber.Ctx) error {
	var req dto.AddReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	review, err := h.reviews.AddReview(c.UserContext(), actorFromCtx(c), c.Params("id"), req.Stars, req.Comment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ReviewFromDomain(review)})
}

// ListReviews handles GET /courses/:id/reviews.
func (h *CoursesHandler) ListReviews(c *fiber.Ctx) error {
	limit, offset := paging(c)
	reviews, err := h.reviews.ListCourseReviews(c.UserContext(), c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ReviewsFromDomain(reviews)})
}
