package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/medcourse-service/internal/api/dto"
	"github.com/spec-kit/medcourse-service/internal/repository"
	"github.com/spec-kit/medcourse-service/internal/service"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

// SlotsHandler exposes availability slot endpoints.
type SlotsHandler struct {
	schedule *service.ScheduleService
}

// NewSlotsHandler constructs handler.
func NewSlotsHandler(schedule *service.ScheduleService) *SlotsHandler {
	return &SlotsHandler{schedule: schedule}
}

// Create handles POST /slots.
func (h *SlotsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	slot, err := h.schedule.CreateSlot(c.UserContext(), actorFromCtx(c), service.SlotInput{
		CourseID: req.CourseID,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Capacity: req.Capacity,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SlotFromDomain(slot)})
}

// Block handles PATCH /slots/:id/block.
func (h *SlotsHandler) Block(c *fiber.Ctx) error {
	slot, err := h.schedule.BlockSlot(c.UserContext(), actorFromCtx(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SlotFromDomain(slot)})
}

// Delete handles DELETE /slots/:id.
func (h *SlotsHandler) Delete(c *fiber.Ctx) error {
	if err := h.schedule.DeleteSlot(c.UserContext(), actorFromCtx(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// Get handles GET /slots/:id.
func (h *SlotsHandler) Get(c *fiber.Ctx) error {
	slot, err := h.schedule.GetSlot(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SlotFromDomain(slot)})
}

// List handles GET /slots.
func (h *SlotsHandler) List(c *fiber.Ctx) error {
	limit, offset := paging(c)
	filter := repository.SlotFilter{
		InstructorID: optionalQuery(c, "instructor_id"),
		CourseID:     optionalQuery(c, "course_id"),
		OpenOnly:     c.QueryBool("open_only", false),
		Limit:        limit,
		Offset:       offset,
	}
	if v := c.Query("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return apperrors.NewValidationError("invalid from timestamp", nil)
		}
		filter.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return apperrors.NewValidationError("invalid to timestamp", nil)
		}
		filter.To = &to
	}

	slots, err := h.schedule.ListSlots(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SlotsFromDomain(slots)})
}
