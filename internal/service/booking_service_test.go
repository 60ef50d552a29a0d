package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/medcourse-service/internal/cache"
	"github.com/spec-kit/medcourse-service/internal/config"
	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/pipeline"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

func seedSlot(t *testing.T, repo *memSlotRepo, instructorID string, capacity int) *domain.AvailabilitySlot {
	t.Helper()
	slot, err := domain.NewAvailabilitySlot(instructorID, nil,
		time.Now().Add(24*time.Hour), time.Now().Add(25*time.Hour), capacity)
	if err != nil {
		t.Fatalf("new slot: %v", err)
	}
	if err := repo.Create(context.Background(), slot); err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return slot
}

func TestCreateBookingReservesSeat(t *testing.T) {
	slots := newMemSlotRepo()
	bookings := newMemBookingRepo()
	bus := &capturedEvents{}
	svc := NewBookingService(bookings, slots, newTestDispatcher(), bus)

	slot := seedSlot(t, slots, "instructor-1", 1)
	student := Actor{ID: "student-1", Role: domain.RoleStudent}

	booking, err := svc.CreateBooking(context.Background(), student, slot.ID, "first visit")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if booking.Status != domain.BookingStatusPending {
		t.Fatalf("status = %s", booking.Status)
	}

	stored, _ := slots.GetByID(context.Background(), slot.ID)
	if stored.BookedCount != 1 || stored.Status != domain.SlotStatusFull {
		t.Fatalf("slot after booking: count=%d status=%s", stored.BookedCount, stored.Status)
	}

	types := bus.types()
	if len(types) != 1 || types[0] != domain.EventBookingCreated {
		t.Fatalf("events = %v", types)
	}
}

func TestCreateBookingRejectsFullSlot(t *testing.T) {
	slots := newMemSlotRepo()
	bookings := newMemBookingRepo()
	svc := NewBookingService(bookings, slots, newTestDispatcher(), &capturedEvents{})

	slot := seedSlot(t, slots, "instructor-1", 1)

	if _, err := svc.CreateBooking(context.Background(), Actor{ID: "student-1", Role: domain.RoleStudent}, slot.ID, ""); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	_, err := svc.CreateBooking(context.Background(), Actor{ID: "student-2", Role: domain.RoleStudent}, slot.ID, "")
	if err == nil {
		t.Fatal("expected full slot rejection")
	}
	if apperrors.ToDomainError(err).Code != "CONFLICT" {
		t.Fatalf("code = %s", apperrors.ToDomainError(err).Code)
	}
}

func TestCreateBookingRejectsDuplicate(t *testing.T) {
	slots := newMemSlotRepo()
	bookings := newMemBookingRepo()
	svc := NewBookingService(bookings, slots, newTestDispatcher(), &capturedEvents{})

	slot := seedSlot(t, slots, "instructor-1", 5)
	student := Actor{ID: "student-1", Role: domain.RoleStudent}

	if _, err := svc.CreateBooking(context.Background(), student, slot.ID, ""); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := svc.CreateBooking(context.Background(), student, slot.ID, ""); err == nil {
		t.Fatal("expected duplicate rejection")
	}
}

func TestCancelBookingReleasesSeat(t *testing.T) {
	slots := newMemSlotRepo()
	bookings := newMemBookingRepo()
	bus := &capturedEvents{}
	svc := NewBookingService(bookings, slots, newTestDispatcher(), bus)

	slot := seedSlot(t, slots, "instructor-1", 1)
	student := Actor{ID: "student-1", Role: domain.RoleStudent}

	booking, err := svc.CreateBooking(context.Background(), student, slot.ID, "")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	cancelled, err := svc.CancelBooking(context.Background(), student, booking.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.BookingStatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("cancelled booking = %+v", cancelled)
	}

	stored, _ := slots.GetByID(context.Background(), slot.ID)
	if stored.BookedCount != 0 || stored.Status != domain.SlotStatusOpen {
		t.Fatalf("slot after cancel: count=%d status=%s", stored.BookedCount, stored.Status)
	}
}

func TestBookingLifecyclePublishesEachEventOnce(t *testing.T) {
	slots := newMemSlotRepo()
	bookings := newMemBookingRepo()
	bus := &capturedEvents{}
	svc := NewBookingService(bookings, slots, newTestDispatcher(), bus)

	slot := seedSlot(t, slots, "instructor-1", 1)
	student := Actor{ID: "student-1", Role: domain.RoleStudent}
	owner := Actor{ID: "instructor-1", Role: domain.RoleInstructor}

	booking, err := svc.CreateBooking(context.Background(), student, slot.ID, "")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if _, err := svc.ConfirmBooking(context.Background(), owner, booking.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.CancelBooking(context.Background(), student, booking.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	want := []string{domain.EventBookingCreated, domain.EventBookingConfirmed, domain.EventBookingCancelled}
	got := bus.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestCancelBookingInvalidatesCachedSlot(t *testing.T) {
	slots := newMemSlotRepo()
	bookings := newMemBookingRepo()
	queryCache := cache.New(config.CacheConfig{})
	dispatcher := pipeline.NewDispatcher(
		pipeline.Validation(),
		pipeline.Caching(queryCache),
		pipeline.Invalidation(queryCache, nil),
	)
	bookingSvc := NewBookingService(bookings, slots, dispatcher, &capturedEvents{})
	scheduleSvc := NewScheduleService(slots, bookings, newMemCourseRepo(), dispatcher)

	slot := seedSlot(t, slots, "instructor-1", 1)
	student := Actor{ID: "student-1", Role: domain.RoleStudent}

	booking, err := bookingSvc.CreateBooking(context.Background(), student, slot.ID, "")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	// Warm the cache while the slot is full.
	cached, err := scheduleSvc.GetSlot(context.Background(), slot.ID)
	if err != nil {
		t.Fatalf("get slot: %v", err)
	}
	if cached.Status != domain.SlotStatusFull {
		t.Fatalf("status before cancel = %s", cached.Status)
	}

	if _, err := bookingSvc.CancelBooking(context.Background(), student, booking.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	fresh, err := scheduleSvc.GetSlot(context.Background(), slot.ID)
	if err != nil {
		t.Fatalf("get slot after cancel: %v", err)
	}
	if fresh.Status != domain.SlotStatusOpen || fresh.BookedCount != 0 {
		t.Fatalf("stale slot served after cancel: count=%d status=%s", fresh.BookedCount, fresh.Status)
	}
}

func TestConfirmBookingRequiresSlotOwner(t *testing.T) {
	slots := newMemSlotRepo()
	bookings := newMemBookingRepo()
	svc := NewBookingService(bookings, slots, newTestDispatcher(), &capturedEvents{})

	slot := seedSlot(t, slots, "instructor-1", 1)
	student := Actor{ID: "student-1", Role: domain.RoleStudent}
	booking, err := svc.CreateBooking(context.Background(), student, slot.ID, "")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if _, err := svc.ConfirmBooking(context.Background(), student, booking.ID); err == nil {
		t.Fatal("student must not confirm")
	}

	owner := Actor{ID: "instructor-1", Role: domain.RoleInstructor}
	confirmed, err := svc.ConfirmBooking(context.Background(), owner, booking.ID)
	if err != nil {
		t.Fatalf("owner confirm: %v", err)
	}
	if confirmed.Status != domain.BookingStatusConfirmed {
		t.Fatalf("status = %s", confirmed.Status)
	}
}

func TestCompleteBookingFollowsTransitionTable(t *testing.T) {
	slots := newMemSlotRepo()
	bookings := newMemBookingRepo()
	svc := NewBookingService(bookings, slots, newTestDispatcher(), &capturedEvents{})

	slot := seedSlot(t, slots, "instructor-1", 1)
	student := Actor{ID: "student-1", Role: domain.RoleStudent}
	owner := Actor{ID: "instructor-1", Role: domain.RoleInstructor}

	booking, err := svc.CreateBooking(context.Background(), student, slot.ID, "")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	// PENDING -> COMPLETED is not allowed.
	if _, err := svc.CompleteBooking(context.Background(), owner, booking.ID); err == nil {
		t.Fatal("expected transition rejection")
	}

	if _, err := svc.ConfirmBooking(context.Background(), owner, booking.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	completed, err := svc.CompleteBooking(context.Background(), owner, booking.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != domain.BookingStatusCompleted {
		t.Fatalf("status = %s", completed.Status)
	}
}
