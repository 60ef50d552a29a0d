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

// PaymentsHandler exposes payment endpoints.
type PaymentsHandler struct {
	payments *service.PaymentService
}

// NewPaymentsHandler constructs handler.
func NewPaymentsHandler(payments *service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{payments: payments}
}

// Create handles POST /payments.
func (h *PaymentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.Get("Idempotency-Key")
	}

	payment, err := h.payments.CreatePayment(c.UserContext(), actorFromCtx(c), service.PaymentInput{
		Purpose:        req.Purpose,
		ReferenceID:    req.ReferenceID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.PaymentFromDomain(payment)})
}

// Succeed handles POST /payments/:id/succeed.
func (h *PaymentsHandler) Succeed(c *fiber.Ctx) error {
	var req dto.SettlePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	payment, err := h.payments.SucceedPayment(c.UserContext(), actorFromCtx(c), c.Params("id"), req.ProviderRef)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PaymentFromDomain(payment)})
}

// Fail handles POST /payments/:id/fail.
func (h *PaymentsHandler) Fail(c *fiber.Ctx) error {
	var req dto.SettlePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	payment, err := h.payments.FailPayment(c.UserContext(), actorFromCtx(c), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PaymentFromDomain(payment)})
}

// Refund handles POST /payments/:id/refund. Admin only.
func (h *PaymentsHandler) Refund(c *fiber.Ctx) error {
	payment, err := h.payments.RefundPayment(c.UserContext(), actorFromCtx(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PaymentFromDomain(payment)})
}

// Get handles GET /payments/:id.
func (h *PaymentsHandler) Get(c *fiber.Ctx) error {
	payment, err := h.payments.GetPayment(c.UserContext(), actorFromCtx(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PaymentFromDomain(payment)})
}

// List handles GET /payments.
func (h *PaymentsHandler) List(c *fiber.Ctx) error {
	limit, offset := paging(c)
	filter := repository.PaymentFilter{
		PayerID: optionalQuery(c, "payer_id"),
		Limit:   limit,
		Offset:  offset,
	}
	if v := c.Query("purpose"); v != "" {
		p := domain.PaymentPurpose(v)
		filter.Purpose = &p
	}
	if v := c.Query("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			filter.Statuses = append(filter.Statuses, domain.PaymentStatus(strings.TrimSpace(s)))
		}
	}

	payments, err := h.payments.ListPayments(c.UserContext(), actorFromCtx(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PaymentsFromDomain(payments)})
}
