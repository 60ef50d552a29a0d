package domain

import (
	"testing"
	"time"
)

func TestBookingTransitions(t *testing.T) {
	tests := []struct {
		name    string
		steps   func(b *Booking) error
		wantErr bool
		final   BookingStatus
	}{
		{
			"pending to confirmed",
			func(b *Booking) error { return b.Confirm() },
			false, BookingStatusConfirmed,
		},
		{
			"pending to cancelled",
			func(b *Booking) error { return b.Cancel(time.Now()) },
			false, BookingStatusCancelled,
		},
		{
			"pending to completed rejected",
			func(b *Booking) error { return b.Complete() },
			true, BookingStatusPending,
		},
		{
			"confirmed to completed",
			func(b *Booking) error {
				if err := b.Confirm(); err != nil {
					return err
				}
				return b.Complete()
			},
			false, BookingStatusCompleted,
		},
		{
			"cancelled is terminal",
			func(b *Booking) error {
				if err := b.Cancel(time.Now()); err != nil {
					return err
				}
				return b.Confirm()
			},
			true, BookingStatusCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBooking("stu-1", "slot-1", nil, "")
			err := tt.steps(b)
			if tt.wantErr && err == nil {
				t.Fatal("expected transition error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.Status != tt.final {
				t.Errorf("status = %s, want %s", b.Status, tt.final)
			}
		})
	}
}

func TestBookingCancelSetsTimestamp(t *testing.T) {
	b := NewBooking("stu-1", "slot-1", nil, "")
	now := time.Now()
	if err := b.Cancel(now); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if b.CancelledAt == nil || !b.CancelledAt.Equal(now) {
		t.Errorf("cancelled_at = %v, want %v", b.CancelledAt, now)
	}
}

func TestBookingRecordsEvents(t *testing.T) {
	b := NewBooking("stu-1", "slot-1", nil, "")
	if err := b.Confirm(); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	events := b.DrainEvents()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != EventBookingCreated || events[1].Type != EventBookingConfirmed {
		t.Errorf("event types = %s, %s", events[0].Type, events[1].Type)
	}
}

func TestSlotReserveRelease(t *testing.T) {
	slot, err := NewAvailabilitySlot("inst-1", nil, time.Now(), time.Now().Add(time.Hour), 2)
	if err != nil {
		t.Fatalf("new slot: %v", err)
	}

	if err := slot.Reserve(); err != nil {
		t.Fatalf("reserve 1: %v", err)
	}
	if slot.Status != SlotStatusOpen {
		t.Errorf("status = %s, want OPEN", slot.Status)
	}
	if err := slot.Reserve(); err != nil {
		t.Fatalf("reserve 2: %v", err)
	}
	if slot.Status != SlotStatusFull {
		t.Errorf("status = %s, want FULL", slot.Status)
	}
	if err := slot.Reserve(); err == nil {
		t.Error("expected error reserving a full slot")
	}

	slot.Release()
	if slot.Status != SlotStatusOpen || slot.BookedCount != 1 {
		t.Errorf("after release status=%s booked=%d", slot.Status, slot.BookedCount)
	}
}

func TestSlotGuards(t *testing.T) {
	now := time.Now()
	if _, err := NewAvailabilitySlot("inst-1", nil, now, now, 1); err == nil {
		t.Error("expected error for zero-length window")
	}
	if _, err := NewAvailabilitySlot("inst-1", nil, now.Add(time.Hour), now, 1); err == nil {
		t.Error("expected error for inverted window")
	}
	if _, err := NewAvailabilitySlot("inst-1", nil, now, now.Add(time.Hour), 0); err == nil {
		t.Error("expected error for zero capacity")
	}

	slot, err := NewAvailabilitySlot("inst-1", nil, now, now.Add(time.Hour), 1)
	if err != nil {
		t.Fatalf("new slot: %v", err)
	}
	if err := slot.Block(); err != nil {
		t.Fatalf("block: %v", err)
	}
	if err := slot.Reserve(); err == nil {
		t.Error("expected error reserving a blocked slot")
	}
}
