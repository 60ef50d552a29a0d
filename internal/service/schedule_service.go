package service

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/spec-kit/medcourse-service/internal/cache"
	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/pipeline"
	"github.com/spec-kit/medcourse-service/internal/repository"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

// ScheduleService coordinates instructor availability workflows.
type ScheduleService struct {
	slots      repository.SlotRepository
	bookings   repository.BookingRepository
	courses    repository.CourseRepository
	dispatcher *pipeline.Dispatcher
}

// NewScheduleService constructs the service.
func NewScheduleService(slots repository.SlotRepository, bookings repository.BookingRepository, courses repository.CourseRepository, dispatcher *pipeline.Dispatcher) *ScheduleService {
	return &ScheduleService{slots: slots, bookings: bookings, courses: courses, dispatcher: dispatcher}
}

// SlotInput describes slot creation payload.
type SlotInput struct {
	CourseID *string
	StartsAt time.Time
	EndsAt   time.Time
	Capacity int
}

type createSlotCommand struct {
	Actor
	Input SlotInput
}

func (c createSlotCommand) Validate() error {
	return validation.Errors{
		"starts_at": validation.Validate(c.Input.StartsAt, validation.Required),
		"ends_at":   validation.Validate(c.Input.EndsAt, validation.Required),
		"capacity":  validation.Validate(c.Input.Capacity, validation.Min(1)),
	}.Filter()
}

func (c createSlotCommand) InvalidatePrefixes() []string {
	return []string{prefixSlotList}
}

// CreateSlot opens a bookable window for the calling instructor.
func (s *ScheduleService) CreateSlot(ctx context.Context, actor Actor, input SlotInput) (*domain.AvailabilitySlot, error) {
	cmd := createSlotCommand{Actor: actor, Input: input}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleCreateSlot)
}

func (s *ScheduleService) handleCreateSlot(ctx context.Context, cmd createSlotCommand) (*domain.AvailabilitySlot, error) {
	if cmd.Actor.Role != domain.RoleInstructor && !cmd.Actor.IsAdmin() {
		return nil, apperrors.NewForbidden("instructor role required")
	}
	if cmd.Input.CourseID != nil {
		course, err := s.courses.GetByID(ctx, *cmd.Input.CourseID)
		if err != nil {
			return nil, err
		}
		if course.InstructorID != cmd.Actor.ID {
			return nil, apperrors.NewForbidden("course belongs to another instructor")
		}
	}
	slot, err := domain.NewAvailabilitySlot(cmd.Actor.ID, cmd.Input.CourseID, cmd.Input.StartsAt, cmd.Input.EndsAt, cmd.Input.Capacity)
	if err != nil {
		return nil, apperrors.NewUnprocessable(err.Error(), nil)
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

type blockSlotCommand struct {
	Actor
	SlotID string
}

func (c blockSlotCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SlotID, validation.Required),
	)
}

func (c blockSlotCommand) InvalidatePrefixes() []string {
	return []string{slotPrefix(c.SlotID), prefixSlotList}
}

// BlockSlot stops new bookings on a slot.
func (s *ScheduleService) BlockSlot(ctx context.Context, actor Actor, slotID string) (*domain.AvailabilitySlot, error) {
	cmd := blockSlotCommand{Actor: actor, SlotID: slotID}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleBlockSlot)
}

func (s *ScheduleService) handleBlockSlot(ctx context.Context, cmd blockSlotCommand) (*domain.AvailabilitySlot, error) {
	slot, err := s.loadOwned(ctx, cmd.Actor, cmd.SlotID)
	if err != nil {
		return nil, err
	}
	if err := slot.Block(); err != nil {
		return nil, apperrors.NewUnprocessable(err.Error(), nil)
	}
	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

type deleteSlotCommand struct {
	Actor
	SlotID string
}

func (c deleteSlotCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SlotID, validation.Required),
	)
}

func (c deleteSlotCommand) InvalidatePrefixes() []string {
	return []string{slotPrefix(c.SlotID), prefixSlotList}
}

// DeleteSlot removes a slot that has no active bookings.
func (s *ScheduleService) DeleteSlot(ctx context.Context, actor Actor, slotID string) error {
	cmd := deleteSlotCommand{Actor: actor, SlotID: slotID}
	_, err := pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleDeleteSlot)
	return err
}

func (s *ScheduleService) handleDeleteSlot(ctx context.Context, cmd deleteSlotCommand) (struct{}, error) {
	slot, err := s.loadOwned(ctx, cmd.Actor, cmd.SlotID)
	if err != nil {
		return struct{}{}, err
	}
	active, err := s.bookings.CountActiveBySlot(ctx, slot.ID)
	if err != nil {
		return struct{}{}, err
	}
	if active > 0 {
		return struct{}{}, apperrors.NewConflict("slot has active bookings", map[string]any{"active_bookings": active})
	}
	return struct{}{}, s.slots.Delete(ctx, slot.ID)
}

func (s *ScheduleService) loadOwned(ctx context.Context, actor Actor, slotID string) (*domain.AvailabilitySlot, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.InstructorID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("not the slot owner")
	}
	return slot, nil
}

type getSlotQuery struct {
	ID string
}

func (q getSlotQuery) CacheKey() string {
	return cache.Key("slot", q.ID)
}

func (q getSlotQuery) CachePrefixes() []string {
	return []string{slotPrefix(q.ID)}
}

// GetSlot fetches a slot by id.
func (s *ScheduleService) GetSlot(ctx context.Context, id string) (*domain.AvailabilitySlot, error) {
	return pipeline.Dispatch(ctx, s.dispatcher, getSlotQuery{ID: id}, func(ctx context.Context, q getSlotQuery) (*domain.AvailabilitySlot, error) {
		return s.slots.GetByID(ctx, q.ID)
	})
}

type listSlotsQuery struct {
	Filter repository.SlotFilter
}

func (q listSlotsQuery) CacheKey() string {
	fields := map[string]any{}
	if q.Filter.InstructorID != nil {
		fields["instructor"] = *q.Filter.InstructorID
	}
	if q.Filter.CourseID != nil {
		fields["course"] = *q.Filter.CourseID
	}
	if q.Filter.From != nil {
		fields["from"] = q.Filter.From.Unix()
	}
	if q.Filter.To != nil {
		fields["to"] = q.Filter.To.Unix()
	}
	if q.Filter.OpenOnly {
		fields["open"] = true
	}
	fields["page"] = fmt.Sprintf("%d:%d", q.Filter.Limit, q.Filter.Offset)
	return cache.Key("slots", cache.FilterSegment(fields))
}

func (q listSlotsQuery) CachePrefixes() []string {
	return []string{prefixSlotList}
}

// ListSlots searches availability windows.
func (s *ScheduleService) ListSlots(ctx context.Context, filter repository.SlotFilter) ([]domain.AvailabilitySlot, error) {
	return pipeline.Dispatch(ctx, s.dispatcher, listSlotsQuery{Filter: filter}, func(ctx context.Context, q listSlotsQuery) ([]domain.AvailabilitySlot, error) {
		return s.slots.ListWithFilter(ctx, q.Filter)
	})
}
