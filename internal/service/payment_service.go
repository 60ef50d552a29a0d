package service

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/events"
	"github.com/spec-kit/medcourse-service/internal/persistence"
	"github.com/spec-kit/medcourse-service/internal/pipeline"
	"github.com/spec-kit/medcourse-service/internal/repository"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

// idempotencyLockTTL bounds how long a payment creation holds its Redis lock.
const idempotencyLockTTL = 30 * time.Second

// PaymentService records money movement. No payment provider is called;
// succeed/fail/refund are explicit transitions driven by the API.
type PaymentService struct {
	payments    repository.PaymentRepository
	bookings    repository.BookingRepository
	enrollments repository.EnrollmentRepository
	redis       *persistence.Redis
	dispatcher  *pipeline.Dispatcher
	events      events.Dispatcher
}

// NewPaymentService constructs the service.
func NewPaymentService(payments repository.PaymentRepository, bookings repository.BookingRepository, enrollments repository.EnrollmentRepository, redis *persistence.Redis, dispatcher *pipeline.Dispatcher, eventBus events.Dispatcher) *PaymentService {
	return &PaymentService{
		payments:    payments,
		bookings:    bookings,
		enrollments: enrollments,
		redis:       redis,
		dispatcher:  dispatcher,
		events:      eventBus,
	}
}

// PaymentInput describes payment creation payload.
type PaymentInput struct {
	Purpose        string
	ReferenceID    string
	Amount         int64
	Currency       string
	IdempotencyKey string
}

type createPaymentCommand struct {
	Actor
	Input PaymentInput
}

func (c createPaymentCommand) Validate() error {
	return validation.Errors{
		"purpose": validation.Validate(c.Input.Purpose, validation.Required,
			validation.In(string(domain.PaymentPurposeBooking), string(domain.PaymentPurposeEnrollment))),
		"reference_id":    validation.Validate(c.Input.ReferenceID, validation.Required),
		"amount":          validation.Validate(c.Input.Amount, validation.Min(int64(1))),
		"currency":        validation.Validate(c.Input.Currency, validation.Required),
		"idempotency_key": validation.Validate(c.Input.IdempotencyKey, validation.Required, validation.Length(8, 128)),
	}.Filter()
}

// CreatePayment records a pending payment. Replays of the same idempotency key
// return the original payment instead of creating a second one.
func (s *PaymentService) CreatePayment(ctx context.Context, actor Actor, input PaymentInput) (*domain.Payment, error) {
	cmd := createPaymentCommand{Actor: actor, Input: input}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleCreatePayment)
}

func (s *PaymentService) handleCreatePayment(ctx context.Context, cmd createPaymentCommand) (*domain.Payment, error) {
	if existing, err := s.payments.GetByIdempotencyKey(ctx, cmd.Input.IdempotencyKey); err == nil {
		if existing.PayerID != cmd.Actor.ID {
			return nil, apperrors.NewConflict("idempotency key belongs to another payer", nil)
		}
		return existing, nil
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	// Short-lived Redis lock keeps two concurrent requests with the same key
	// from both passing the DB lookup above.
	if s.redis != nil && s.redis.Client != nil {
		lockKey := "payment:idem:" + cmd.Input.IdempotencyKey
		acquired, err := s.redis.Client.SetNX(ctx, lockKey, cmd.Actor.ID, idempotencyLockTTL).Result()
		if err == nil && !acquired {
			return nil, apperrors.NewConflict("payment creation already in progress", nil)
		}
	}

	amount, err := domain.NewMoney(cmd.Input.Amount, domain.Currency(cmd.Input.Currency))
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	purpose := domain.PaymentPurpose(cmd.Input.Purpose)
	if err := s.checkReference(ctx, cmd.Actor, purpose, cmd.Input.ReferenceID); err != nil {
		return nil, err
	}

	payment, err := domain.NewPayment(cmd.Actor.ID, purpose, cmd.Input.ReferenceID, amount, cmd.Input.IdempotencyKey)
	if err != nil {
		return nil, apperrors.NewUnprocessable(err.Error(), nil)
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) checkReference(ctx context.Context, actor Actor, purpose domain.PaymentPurpose, referenceID string) error {
	switch purpose {
	case domain.PaymentPurposeBooking:
		booking, err := s.bookings.GetByID(ctx, referenceID)
		if err != nil {
			return err
		}
		if booking.StudentID != actor.ID {
			return apperrors.NewForbidden("booking belongs to another student")
		}
	case domain.PaymentPurposeEnrollment:
		enrollment, err := s.enrollments.GetByID(ctx, referenceID)
		if err != nil {
			return err
		}
		if enrollment.StudentID != actor.ID {
			return apperrors.NewForbidden("enrollment belongs to another student")
		}
	}
	return nil
}

type transitionPaymentCommand struct {
	Actor
	PaymentID   string
	Target      domain.PaymentStatus
	ProviderRef string
	Reason      string
}

func (c transitionPaymentCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.PaymentID, validation.Required),
	)
}

func (c transitionPaymentCommand) RequiresTransaction() bool { return true }

// SucceedPayment settles a pending payment.
func (s *PaymentService) SucceedPayment(ctx context.Context, actor Actor, paymentID, providerRef string) (*domain.Payment, error) {
	cmd := transitionPaymentCommand{Actor: actor, PaymentID: paymentID, Target: domain.PaymentStatusSucceeded, ProviderRef: providerRef}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleTransitionPayment)
}

// FailPayment marks a pending payment failed.
func (s *PaymentService) FailPayment(ctx context.Context, actor Actor, paymentID, reason string) (*domain.Payment, error) {
	cmd := transitionPaymentCommand{Actor: actor, PaymentID: paymentID, Target: domain.PaymentStatusFailed, Reason: reason}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleTransitionPayment)
}

// RefundPayment refunds a settled payment. Admin only.
func (s *PaymentService) RefundPayment(ctx context.Context, actor Actor, paymentID string) (*domain.Payment, error) {
	cmd := transitionPaymentCommand{Actor: actor, PaymentID: paymentID, Target: domain.PaymentStatusRefunded}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleTransitionPayment)
}

func (s *PaymentService) handleTransitionPayment(ctx context.Context, cmd transitionPaymentCommand) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, cmd.PaymentID)
	if err != nil {
		return nil, err
	}

	switch cmd.Target {
	case domain.PaymentStatusSucceeded, domain.PaymentStatusFailed:
		if payment.PayerID != cmd.Actor.ID && !cmd.Actor.IsAdmin() {
			return nil, apperrors.NewForbidden("not your payment")
		}
	case domain.PaymentStatusRefunded:
		if !cmd.Actor.IsAdmin() {
			return nil, apperrors.NewForbidden("admin role required")
		}
	}

	switch cmd.Target {
	case domain.PaymentStatusSucceeded:
		err = payment.Succeed(cmd.ProviderRef)
	case domain.PaymentStatusFailed:
		err = payment.Fail(cmd.Reason)
	case domain.PaymentStatusRefunded:
		err = payment.Refund()
	}
	if err != nil {
		return nil, apperrors.NewUnprocessable(err.Error(), nil)
	}

	// Drain before persisting so the stored aggregate never carries
	// already-published events back out of the repository.
	drained := payment.DrainEvents()
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}
	publishDrained(ctx, s.events, payment.ID, cmd.Actor, drained)
	return payment, nil
}

// GetPayment fetches a payment visible to the caller.
func (s *PaymentService) GetPayment(ctx context.Context, actor Actor, id string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if payment.PayerID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("not your payment")
	}
	return payment, nil
}

// ListPayments returns payments matching the filter.
func (s *PaymentService) ListPayments(ctx context.Context, actor Actor, filter repository.PaymentFilter) ([]domain.Payment, error) {
	if !actor.IsAdmin() {
		id := actor.ID
		filter.PayerID = &id
	}
	return s.payments.ListWithFilter(ctx, filter)
}
