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

// BookingService coordinates slot reservations.
type BookingService struct {
	bookings   repository.BookingRepository
	slots      repository.SlotRepository
	dispatcher *pipeline.Dispatcher
	events     events.Dispatcher
}

// NewBookingService constructs the service.
func NewBookingService(bookings repository.BookingRepository, slots repository.SlotRepository, dispatcher *pipeline.Dispatcher, eventBus events.Dispatcher) *BookingService {
	return &BookingService{bookings: bookings, slots: slots, dispatcher: dispatcher, events: eventBus}
}

type createBookingCommand struct {
	Actor
	SlotID string
	Note   string
}

func (c createBookingCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SlotID, validation.Required),
		validation.Field(&c.Note, validation.Length(0, 500)),
	)
}

func (c createBookingCommand) RequiresTransaction() bool { return true }

func (c createBookingCommand) InvalidatePrefixes() []string {
	return []string{slotPrefix(c.SlotID), prefixSlotList, prefixBookingList}
}

// CreateBooking reserves a seat on a slot for the calling student. The seat
// count and the booking row are written in one transaction.
func (s *BookingService) CreateBooking(ctx context.Context, actor Actor, slotID, note string) (*domain.Booking, error) {
	cmd := createBookingCommand{Actor: actor, SlotID: slotID, Note: note}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleCreateBooking)
}

func (s *BookingService) handleCreateBooking(ctx context.Context, cmd createBookingCommand) (*domain.Booking, error) {
	slot, err := s.slots.GetByID(ctx, cmd.SlotID)
	if err != nil {
		return nil, err
	}
	if !slot.StartsAt.After(time.Now()) {
		return nil, apperrors.NewUnprocessable("slot already started", nil)
	}

	existing, err := s.bookings.ListWithFilter(ctx, repository.BookingFilter{
		StudentID: &cmd.Actor.ID,
		SlotID:    &cmd.SlotID,
		Statuses:  []domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed},
		Limit:     1,
	})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, apperrors.NewConflict("slot already booked", nil)
	}

	if err := slot.Reserve(); err != nil {
		return nil, apperrors.NewConflict(err.Error(), nil)
	}

	booking := domain.NewBooking(cmd.Actor.ID, slot.ID, slot.CourseID, cmd.Note)
	// Drain before persisting so the stored aggregate never carries
	// already-published events back out of the repository.
	drained := booking.DrainEvents()
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, err
	}
	publishDrained(ctx, s.events, booking.ID, cmd.Actor, drained)
	return booking, nil
}

type transitionBookingCommand struct {
	Actor
	BookingID string
	Target    domain.BookingStatus

	// slotID is filled in by the handler once the booking is loaded, so the
	// invalidation pass also drops the cached slot entry. Pointer because the
	// behaviors hold their own copy of the command.
	slotID *string
}

func (c transitionBookingCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BookingID, validation.Required),
	)
}

func (c transitionBookingCommand) RequiresTransaction() bool { return true }

func (c transitionBookingCommand) InvalidatePrefixes() []string {
	prefixes := []string{prefixBookingList, prefixSlotList}
	if c.slotID != nil && *c.slotID != "" {
		prefixes = append(prefixes, slotPrefix(*c.slotID))
	}
	return prefixes
}

// ConfirmBooking lets the slot owner accept a pending booking.
func (s *BookingService) ConfirmBooking(ctx context.Context, actor Actor, bookingID string) (*domain.Booking, error) {
	cmd := transitionBookingCommand{Actor: actor, BookingID: bookingID, Target: domain.BookingStatusConfirmed, slotID: new(string)}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleTransitionBooking)
}

// CancelBooking cancels an active booking and frees the seat.
func (s *BookingService) CancelBooking(ctx context.Context, actor Actor, bookingID string) (*domain.Booking, error) {
	cmd := transitionBookingCommand{Actor: actor, BookingID: bookingID, Target: domain.BookingStatusCancelled, slotID: new(string)}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleTransitionBooking)
}

// CompleteBooking marks a confirmed booking as held.
func (s *BookingService) CompleteBooking(ctx context.Context, actor Actor, bookingID string) (*domain.Booking, error) {
	cmd := transitionBookingCommand{Actor: actor, BookingID: bookingID, Target: domain.BookingStatusCompleted, slotID: new(string)}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleTransitionBooking)
}

func (s *BookingService) handleTransitionBooking(ctx context.Context, cmd transitionBookingCommand) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	slot, err := s.slots.GetByID(ctx, booking.SlotID)
	if err != nil {
		return nil, err
	}
	if cmd.slotID != nil {
		*cmd.slotID = slot.ID
	}

	isStudent := booking.StudentID == cmd.Actor.ID
	isOwner := slot.InstructorID == cmd.Actor.ID
	switch cmd.Target {
	case domain.BookingStatusCancelled:
		if !isStudent && !isOwner && !cmd.Actor.IsAdmin() {
			return nil, apperrors.NewForbidden("not your booking")
		}
	default:
		if !isOwner && !cmd.Actor.IsAdmin() {
			return nil, apperrors.NewForbidden("slot owner required")
		}
	}

	switch cmd.Target {
	case domain.BookingStatusConfirmed:
		err = booking.Confirm()
	case domain.BookingStatusCancelled:
		err = booking.Cancel(time.Now().UTC())
	case domain.BookingStatusCompleted:
		err = booking.Complete()
	default:
		err = fmt.Errorf("unsupported target status %s", cmd.Target)
	}
	if err != nil {
		return nil, apperrors.NewUnprocessable(err.Error(), nil)
	}

	drained := booking.DrainEvents()
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}
	if cmd.Target == domain.BookingStatusCancelled {
		slot.Release()
		if err := s.slots.Update(ctx, slot); err != nil {
			return nil, err
		}
	}
	publishDrained(ctx, s.events, booking.ID, cmd.Actor, drained)
	return booking, nil
}

type getBookingQuery struct {
	Actor
	BookingID string
}

// GetBooking fetches a booking visible to the caller.
func (s *BookingService) GetBooking(ctx context.Context, actor Actor, bookingID string) (*domain.Booking, error) {
	return pipeline.Dispatch(ctx, s.dispatcher, getBookingQuery{Actor: actor, BookingID: bookingID}, s.handleGetBooking)
}

func (s *BookingService) handleGetBooking(ctx context.Context, q getBookingQuery) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, q.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.StudentID == q.Actor.ID || q.Actor.IsAdmin() {
		return booking, nil
	}
	slot, err := s.slots.GetByID(ctx, booking.SlotID)
	if err != nil {
		return nil, err
	}
	if slot.InstructorID != q.Actor.ID {
		return nil, apperrors.NewForbidden("not your booking")
	}
	return booking, nil
}

type listBookingsQuery struct {
	Filter repository.BookingFilter
}

func (q listBookingsQuery) CacheKey() string {
	fields := map[string]any{}
	if q.Filter.StudentID != nil {
		fields["student"] = *q.Filter.StudentID
	}
	if q.Filter.SlotID != nil {
		fields["slot"] = *q.Filter.SlotID
	}
	if q.Filter.InstructorID != nil {
		fields["instructor"] = *q.Filter.InstructorID
	}
	for i, status := range q.Filter.Statuses {
		fields[fmt.Sprintf("status%d", i)] = string(status)
	}
	fields["page"] = fmt.Sprintf("%d:%d", q.Filter.Limit, q.Filter.Offset)
	return cache.Key("bookings", cache.FilterSegment(fields))
}

func (q listBookingsQuery) CachePrefixes() []string {
	return []string{prefixBookingList}
}

// ListBookings returns bookings matching the filter.
func (s *BookingService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	return pipeline.Dispatch(ctx, s.dispatcher, listBookingsQuery{Filter: filter}, func(ctx context.Context, q listBookingsQuery) ([]domain.Booking, error) {
		return s.bookings.ListWithFilter(ctx, q.Filter)
	})
}
