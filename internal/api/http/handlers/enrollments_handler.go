package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/medcourse-service/internal/api/dto"
	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/service"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

// EnrollmentsHandler exposes course enrollment endpoints.
type EnrollmentsHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentsHandler constructs handler.
func NewEnrollmentsHandler(enrollments *service.EnrollmentService) *EnrollmentsHandler {
	return &EnrollmentsHandler{enrollments: enrollments}
}

// Create handles POST /enrollments.
func (h *EnrollmentsHandler) Create(c *fiber.Ctx) error {
	var req dto.EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	enrollment, err := h.enrollments.Enroll(c.UserContext(), actorFromCtx(c), req.CourseID, req.PromoCode)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.EnrollmentFromDomain(enrollment)})
}

// Cancel handles POST /enrollments/:id/cancel.
func (h *EnrollmentsHandler) Cancel(c *fiber.Ctx) error {
	enrollment, err := h.enrollments.CancelEnrollment(c.UserContext(), actorFromCtx(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EnrollmentFromDomain(enrollment)})
}

// Complete handles POST /enrollments/:id/complete.
func (h *EnrollmentsHandler) Complete(c *fiber.Ctx) error {
	enrollment, err := h.enrollments.CompleteEnrollment(c.UserContext(), actorFromCtx(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EnrollmentFromDomain(enrollment)})
}

// Get handles GET /enrollments/:id.
func (h *EnrollmentsHandler) Get(c *fiber.Ctx) error {
	enrollment, err := h.enrollments.GetEnrollment(c.UserContext(), actorFromCtx(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EnrollmentFromDomain(enrollment)})
}

// List handles GET /enrollments. Admins may list any student's
// enrollments via student_id; everyone else sees their own.
func (h *EnrollmentsHandler) List(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	limit, offset := paging(c)

	studentID := actor.ID
	if actor.IsAdmin() {
		if v := c.Query("student_id"); v != "" {
			studentID = v
		}
	}

	var statuses []domain.EnrollmentStatus
	if v := c.Query("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			statuses = append(statuses, domain.EnrollmentStatus(strings.TrimSpace(s)))
		}
	}

	enrollments, err := h.enrollments.ListEnrollments(c.UserContext(), studentID, statuses, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EnrollmentsFromDomain(enrollments)})
}
