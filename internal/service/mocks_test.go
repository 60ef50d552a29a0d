package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/events"
	"github.com/spec-kit/medcourse-service/internal/pipeline"
	"github.com/spec-kit/medcourse-service/internal/repository"
)

func newTestDispatcher() *pipeline.Dispatcher {
	return pipeline.NewDispatcher(pipeline.Validation())
}

type capturedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturedEvents) Publish(_ context.Context, event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturedEvents) Subscribe(string, events.EventHandler) {}

func (c *capturedEvents) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, e := range c.events {
		out[i] = e.Type
	}
	return out
}

type memSlotRepo struct {
	mu    sync.Mutex
	seq   int
	slots map[string]*domain.AvailabilitySlot
}

func newMemSlotRepo() *memSlotRepo {
	return &memSlotRepo{slots: map[string]*domain.AvailabilitySlot{}}
}

func (r *memSlotRepo) Create(_ context.Context, slot *domain.AvailabilitySlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	slot.ID = fmt.Sprintf("slot-%d", r.seq)
	copied := *slot
	r.slots[slot.ID] = &copied
	return nil
}

func (r *memSlotRepo) Update(_ context.Context, slot *domain.AvailabilitySlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[slot.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *slot
	r.slots[slot.ID] = &copied
	return nil
}

func (r *memSlotRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.slots, id)
	return nil
}

func (r *memSlotRepo) GetByID(_ context.Context, id string) (*domain.AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *slot
	return &copied, nil
}

func (r *memSlotRepo) ListWithFilter(context.Context, repository.SlotFilter) ([]domain.AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AvailabilitySlot
	for _, slot := range r.slots {
		out = append(out, *slot)
	}
	return out, nil
}

type memBookingRepo struct {
	mu       sync.Mutex
	seq      int
	bookings map[string]*domain.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: map[string]*domain.Booking{}}
}

func (r *memBookingRepo) Create(_ context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	booking.ID = fmt.Sprintf("booking-%d", r.seq)
	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *memBookingRepo) Update(_ context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[booking.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *memBookingRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *booking
	return &copied, nil
}

func (r *memBookingRepo) CountActiveBySlot(_ context.Context, slotID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, booking := range r.bookings {
		if booking.SlotID == slotID && booking.IsActive() {
			count++
		}
	}
	return count, nil
}

func (r *memBookingRepo) ListWithFilter(_ context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Booking
	for _, booking := range r.bookings {
		if filter.StudentID != nil && booking.StudentID != *filter.StudentID {
			continue
		}
		if filter.SlotID != nil && booking.SlotID != *filter.SlotID {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if booking.Status == status {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *booking)
	}
	return out, nil
}

type memCourseRepo struct {
	mu      sync.Mutex
	seq     int
	courses map[string]*domain.Course
}

func newMemCourseRepo() *memCourseRepo {
	return &memCourseRepo{courses: map[string]*domain.Course{}}
}

func (r *memCourseRepo) Create(_ context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	course.ID = fmt.Sprintf("course-%d", r.seq)
	copied := *course
	r.courses[course.ID] = &copied
	return nil
}

func (r *memCourseRepo) Update(_ context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[course.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *course
	r.courses[course.ID] = &copied
	return nil
}

func (r *memCourseRepo) GetByID(_ context.Context, id string) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	course, ok := r.courses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *course
	return &copied, nil
}

func (r *memCourseRepo) GetBySlug(_ context.Context, slug string) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, course := range r.courses {
		if course.Slug == slug {
			copied := *course
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memCourseRepo) ListWithFilter(context.Context, repository.CourseFilter) ([]domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Course
	for _, course := range r.courses {
		out = append(out, *course)
	}
	return out, nil
}

type memEnrollmentRepo struct {
	mu          sync.Mutex
	seq         int
	enrollments map[string]*domain.Enrollment
}

func newMemEnrollmentRepo() *memEnrollmentRepo {
	return &memEnrollmentRepo{enrollments: map[string]*domain.Enrollment{}}
}

func (r *memEnrollmentRepo) Create(_ context.Context, enrollment *domain.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	enrollment.ID = fmt.Sprintf("enrollment-%d", r.seq)
	copied := *enrollment
	r.enrollments[enrollment.ID] = &copied
	return nil
}

func (r *memEnrollmentRepo) Update(_ context.Context, enrollment *domain.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enrollments[enrollment.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *enrollment
	r.enrollments[enrollment.ID] = &copied
	return nil
}

func (r *memEnrollmentRepo) GetByID(_ context.Context, id string) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	enrollment, ok := r.enrollments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *enrollment
	return &copied, nil
}

func (r *memEnrollmentRepo) GetByStudentAndCourse(_ context.Context, studentID, courseID string) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, enrollment := range r.enrollments {
		if enrollment.StudentID == studentID && enrollment.CourseID == courseID {
			copied := *enrollment
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memEnrollmentRepo) ListByStudent(_ context.Context, studentID string, _ []domain.EnrollmentStatus, _, _ int) ([]domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Enrollment
	for _, enrollment := range r.enrollments {
		if enrollment.StudentID == studentID {
			out = append(out, *enrollment)
		}
	}
	return out, nil
}

type memPromoRepo struct {
	mu     sync.Mutex
	seq    int
	promos map[string]*domain.PromoCode
}

func newMemPromoRepo() *memPromoRepo {
	return &memPromoRepo{promos: map[string]*domain.PromoCode{}}
}

func (r *memPromoRepo) Create(_ context.Context, promo *domain.PromoCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	promo.ID = fmt.Sprintf("promo-%d", r.seq)
	copied := *promo
	r.promos[promo.ID] = &copied
	return nil
}

func (r *memPromoRepo) Update(_ context.Context, promo *domain.PromoCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.promos[promo.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *promo
	r.promos[promo.ID] = &copied
	return nil
}

func (r *memPromoRepo) GetByID(_ context.Context, id string) (*domain.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	promo, ok := r.promos[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *promo
	return &copied, nil
}

func (r *memPromoRepo) GetByCode(_ context.Context, code string) (*domain.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, promo := range r.promos {
		if promo.Code == code {
			copied := *promo
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memPromoRepo) List(context.Context, bool, int, int) ([]domain.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.PromoCode
	for _, promo := range r.promos {
		out = append(out, *promo)
	}
	return out, nil
}

type memPaymentRepo struct {
	mu       sync.Mutex
	seq      int
	payments map[string]*domain.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: map[string]*domain.Payment{}}
}

func (r *memPaymentRepo) Create(_ context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	payment.ID = fmt.Sprintf("payment-%d", r.seq)
	copied := *payment
	r.payments[payment.ID] = &copied
	return nil
}

func (r *memPaymentRepo) Update(_ context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[payment.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *payment
	r.payments[payment.ID] = &copied
	return nil
}

func (r *memPaymentRepo) GetByID(_ context.Context, id string) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *payment
	return &copied, nil
}

func (r *memPaymentRepo) GetByIdempotencyKey(_ context.Context, key string) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, payment := range r.payments {
		if payment.IdempotencyKey == key {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memPaymentRepo) ListWithFilter(context.Context, repository.PaymentFilter) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payment
	for _, payment := range r.payments {
		out = append(out, *payment)
	}
	return out, nil
}

type memReviewRepo struct {
	mu      sync.Mutex
	seq     int
	reviews map[string]*domain.Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{reviews: map[string]*domain.Review{}}
}

func (r *memReviewRepo) Create(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	review.ID = fmt.Sprintf("review-%d", r.seq)
	copied := *review
	r.reviews[review.ID] = &copied
	return nil
}

func (r *memReviewRepo) GetByStudentAndCourse(_ context.Context, studentID, courseID string) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, review := range r.reviews {
		if review.StudentID == studentID && review.CourseID == courseID {
			copied := *review
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memReviewRepo) ListByCourse(_ context.Context, courseID string, _, _ int) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Review
	for _, review := range r.reviews {
		if review.CourseID == courseID {
			out = append(out, *review)
		}
	}
	return out, nil
}
