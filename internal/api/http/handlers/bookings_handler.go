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

// BookingsHandler exposes booking endpoints.
type BookingsHandler struct {
	bookings *service.BookingService
}

// NewBookingsHandler constructs handler.
func NewBookingsHandler(bookings *service.BookingService) *BookingsHandler {
	return &BookingsHandler{bookings: bookings}
}

// Create handles POST /bookings.
func (h *BookingsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	booking, err := h.bookings.CreateBooking(c.UserContext(), actorFromCtx(c), req.SlotID, req.Note)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.BookingFromDomain(booking)})
}

// Confirm handles POST /bookings/:id/confirm.
func (h *BookingsHandler) Confirm(c *fiber.Ctx) error {
	booking, err := h.bookings.ConfirmBooking(c.UserContext(), actorFromCtx(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BookingFromDomain(booking)})
}

// Cancel handles POST /bookings/:id/cancel.
func (h *BookingsHandler) Cancel(c *fiber.Ctx) error {
	booking, err := h.bookings.CancelBooking(c.UserContext(), actorFromCtx(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BookingFromDomain(booking)})
}

// Complete handles POST /bookings/:id/complete.
func (h *BookingsHandler) Complete(c *fiber.Ctx) error {
	booking, err := h.bookings.CompleteBooking(c.UserContext(), actorFromCtx(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BookingFromDomain(booking)})
}

// Get handles GET /bookings/:id.
func (h *BookingsHandler) Get(c *fiber.Ctx) error {
	booking, err := h.bookings.GetBooking(c.UserContext(), actorFromCtx(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BookingFromDomain(booking)})
}

// List handles GET /bookings. Non-admin callers only see their own side
// of the ledger: students their bookings, instructors their slots' bookings.
func (h *BookingsHandler) List(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	limit, offset := paging(c)
	filter := repository.BookingFilter{
		SlotID: optionalQuery(c, "slot_id"),
		Limit:  limit,
		Offset: offset,
	}
	if v := c.Query("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			filter.Statuses = append(filter.Statuses, domain.BookingStatus(strings.TrimSpace(s)))
		}
	}

	switch {
	case actor.IsAdmin():
		filter.StudentID = optionalQuery(c, "student_id")
		filter.InstructorID = optionalQuery(c, "instructor_id")
	case actor.Role == domain.RoleInstructor:
		id := actor.ID
		filter.InstructorID = &id
	default:
		id := actor.ID
		filter.StudentID = &id
	}

	bookings, err := h.bookings.ListBookings(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BookingsFromDomain(bookings)})
}
