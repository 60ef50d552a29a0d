package dto

import (
	"time"

	"github.com/spec-kit/medcourse-service/internal/domain"
)

// EnrollRequest payload for course purchases.
type EnrollRequest struct {
	CourseID  string  `json:"course_id"`
	PromoCode *string `json:"promo_code"`
}

// EnrollmentResponse is the public view of an enrollment.
type EnrollmentResponse struct {
	ID          string        `json:"id"`
	StudentID   string        `json:"student_id"`
	CourseID    string        `json:"course_id"`
	PricePaid   MoneyResponse `json:"price_paid"`
	PromoCodeID *string       `json:"promo_code_id,omitempty"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// EnrollmentFromDomain maps a domain enrollment to its response view.
func EnrollmentFromDomain(enrollment *domain.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:          enrollment.ID,
		StudentID:   enrollment.StudentID,
		CourseID:    enrollment.CourseID,
		PricePaid:   moneyFromDomain(enrollment.PricePaid),
		PromoCodeID: enrollment.PromoCodeID,
		Status:      string(enrollment.Status),
		CreatedAt:   enrollment.CreatedAt,
	}
}

// EnrollmentsFromDomain maps a slice of enrollments.
func EnrollmentsFromDomain(enrollments []domain.Enrollment) []EnrollmentResponse {
	out := make([]EnrollmentResponse, len(enrollments))
	for i := range enrollments {
		out[i] = EnrollmentFromDomain(&enrollments[i])
	}
	return out
}

// CreatePaymentRequest payload for payments.
type CreatePaymentRequest struct {
	Purpose        string `json:"purpose"`
	ReferenceID    string `json:"reference_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	IdempotencyKey string `json:"idempotency_key"`
}

// SettlePaymentRequest payload for succeed/fail transitions.
type SettlePaymentRequest struct {
	ProviderRef string `json:"provider_ref"`
	Reason      string `json:"reason"`
}

// PaymentResponse is the public view of a payment.
type PaymentResponse struct {
	ID          string        `json:"id"`
	PayerID     string        `json:"payer_id"`
	Purpose     string        `json:"purpose"`
	ReferenceID string        `json:"reference_id"`
	Amount      MoneyResponse `json:"amount"`
	Status      string        `json:"status"`
	ProviderRef *string       `json:"provider_ref,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// PaymentFromDomain maps a domain payment to its response view.
func PaymentFromDomain(payment *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          payment.ID,
		PayerID:     payment.PayerID,
		Purpose:     string(payment.Purpose),
		ReferenceID: payment.ReferenceID,
		Amount:      moneyFromDomain(payment.Amount),
		Status:      string(payment.Status),
		ProviderRef: payment.ProviderRef,
		CreatedAt:   payment.CreatedAt,
	}
}

// PaymentsFromDomain maps a slice of payments.
func PaymentsFromDomain(payments []domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = PaymentFromDomain(&payments[i])
	}
	return out
}

// CreatePromoRequest payload for promo codes.
type CreatePromoRequest struct {
	Code           string    `json:"code"`
	DiscountType   string    `json:"discount_type"`
	PercentOff     int64     `json:"percent_off"`
	AmountOff      int64     `json:"amount_off"`
	Currency       string    `json:"currency"`
	ValidFrom      time.Time `json:"valid_from"`
	ValidUntil     time.Time `json:"valid_until"`
	MaxRedemptions int       `json:"max_redemptions"`
}

// PromoResponse is the admin view of a promo code.
type PromoResponse struct {
	ID             string         `json:"id"`
	Code           string         `json:"code"`
	DiscountType   string         `json:"discount_type"`
	PercentOff     int64          `json:"percent_off,omitempty"`
	AmountOff      *MoneyResponse `json:"amount_off,omitempty"`
	ValidFrom      time.Time      `json:"valid_from"`
	ValidUntil     time.Time      `json:"valid_until"`
	MaxRedemptions int            `json:"max_redemptions"`
	RedeemedCount  int            `json:"redeemed_count"`
	Active         bool           `json:"active"`
}

// PromoFromDomain maps a domain promo code to its response view.
func PromoFromDomain(promo *domain.PromoCode) PromoResponse {
	resp := PromoResponse{
		ID:             promo.ID,
		Code:           promo.Code,
		DiscountType:   string(promo.DiscountType),
		PercentOff:     promo.PercentOff,
		ValidFrom:      promo.ValidFrom,
		ValidUntil:     promo.ValidUntil,
		MaxRedemptions: promo.MaxRedemptions,
		RedeemedCount:  promo.RedeemedCount,
		Active:         promo.Active,
	}
	if promo.DiscountType == domain.DiscountFixed {
		amount := moneyFromDomain(promo.AmountOff)
		resp.AmountOff = &amount
	}
	return resp
}

// PreviewPromoRequest payload for checking a code against a price.
type PreviewPromoRequest struct {
	Code     string `json:"code"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PromoPreviewResponse shows the discounted price without redeeming.
type PromoPreviewResponse struct {
	Code       string        `json:"code"`
	Original   MoneyResponse `json:"original"`
	Discounted MoneyResponse `json:"discounted"`
}

// PromosFromDomain maps a slice of promo codes.
func PromosFromDomain(promos []domain.PromoCode) []PromoResponse {
	out := make([]PromoResponse, len(promos))
	for i := range promos {
		out[i] = PromoFromDomain(&promos[i])
	}
	return out
}
