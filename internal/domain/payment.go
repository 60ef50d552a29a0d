package domain

import (
	"errors"
	"time"
)

// PaymentPurpose identifies what a payment pays for.
type PaymentPurpose string

const (
	PaymentPurposeBooking    PaymentPurpose = "BOOKING"
	PaymentPurposeEnrollment PaymentPurpose = "ENROLLMENT"
)

// PaymentStatus enumerates payment states.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Event types recorded by the Payment aggregate.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
	EventPaymentRefunded  = "payment.refunded"
)

// Payment records money movement for a booking or enrollment. No provider is
// called; succeed/fail/refund are explicit transitions.
type Payment struct {
	eventRecorder

	ID             string
	PayerID        string
	Purpose        PaymentPurpose
	ReferenceID    string
	Amount         Money
	Status         PaymentStatus
	IdempotencyKey string
	ProviderRef    *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewPayment constructs a pending payment.
func NewPayment(payerID string, purpose PaymentPurpose, referenceID string, amount Money, idempotencyKey string) (*Payment, error) {
	if purpose != PaymentPurposeBooking && purpose != PaymentPurposeEnrollment {
		return nil, errors.New("unknown payment purpose")
	}
	if referenceID == "" {
		return nil, errors.New("reference id required")
	}
	if idempotencyKey == "" {
		return nil, errors.New("idempotency key required")
	}
	return &Payment{
		PayerID:        payerID,
		Purpose:        purpose,
		ReferenceID:    referenceID,
		Amount:         amount,
		Status:         PaymentStatusPending,
		IdempotencyKey: idempotencyKey,
	}, nil
}

// Succeed transitions PENDING -> SUCCEEDED.
func (p *Payment) Succeed(providerRef string) error {
	if p.Status != PaymentStatusPending {
		return errors.New("only pending payments can succeed")
	}
	p.Status = PaymentStatusSucceeded
	if providerRef != "" {
		p.ProviderRef = &providerRef
	}
	p.record(EventPaymentSucceeded, map[string]any{
		"payment_id": p.ID,
		"payer_id":   p.PayerID,
		"amount":     p.Amount.Amount,
		"currency":   string(p.Amount.Currency),
	})
	return nil
}

// Fail transitions PENDING -> FAILED.
func (p *Payment) Fail(reason string) error {
	if p.Status != PaymentStatusPending {
		return errors.New("only pending payments can fail")
	}
	p.Status = PaymentStatusFailed
	p.record(EventPaymentFailed, map[string]any{
		"payment_id": p.ID,
		"reason":     reason,
	})
	return nil
}

// Refund transitions SUCCEEDED -> REFUNDED.
func (p *Payment) Refund() error {
	if p.Status != PaymentStatusSucceeded {
		return errors.New("only succeeded payments can be refunded")
	}
	p.Status = PaymentStatusRefunded
	p.record(EventPaymentRefunded, map[string]any{"payment_id": p.ID})
	return nil
}
