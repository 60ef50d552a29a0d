package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/medcourse-service/internal/api/dto"
	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/service"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

// PromosHandler exposes promo code endpoints.
type PromosHandler struct {
	promos *service.PromoService
}

// NewPromosHandler constructs handler.
func NewPromosHandler(promos *service.PromoService) *PromosHandler {
	return &PromosHandler{promos: promos}
}

// Create handles POST /promos. Admin only.
func (h *PromosHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePromoRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	promo, err := h.promos.CreatePromo(c.UserContext(), actorFromCtx(c), service.PromoInput{
		Code:           req.Code,
		DiscountType:   req.DiscountType,
		PercentOff:     req.PercentOff,
		AmountOff:      req.AmountOff,
		Currency:       req.Currency,
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
		MaxRedemptions: req.MaxRedemptions,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.PromoFromDomain(promo)})
}

// Deactivate handles POST /promos/:id/deactivate. Admin only.
func (h *PromosHandler) Deactivate(c *fiber.Ctx) error {
	promo, err := h.promos.DeactivatePromo(c.UserContext(), actorFromCtx(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PromoFromDomain(promo)})
}

// List handles GET /promos. Admin only.
func (h *PromosHandler) List(c *fiber.Ctx) error {
	limit, offset := paging(c)
	promos, err := h.promos.ListPromos(c.UserContext(), actorFromCtx(c), c.QueryBool("active_only", false), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PromosFromDomain(promos)})
}

// Preview handles POST /promos/preview. Any authenticated caller can
// check a code against a price before committing to an enrollment.
func (h *PromosHandler) Preview(c *fiber.Ctx) error {
	var req dto.PreviewPromoRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	price, err := domain.NewMoney(req.Amount, domain.Currency(req.Currency))
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	preview, err := h.promos.PreviewPromo(c.UserContext(), req.Code, price)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PromoPreviewResponse{
		Code:       preview.Code,
		Original:   dto.MoneyResponse{Amount: preview.Original.Amount, Currency: string(preview.Original.Currency)},
		Discounted: dto.MoneyResponse{Amount: preview.Discounted.Amount, Currency: string(preview.Discounted.Currency)},
	}})
}
