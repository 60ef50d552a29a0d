package service

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/medcourse-service/internal/cache"
	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/pipeline"
	"github.com/spec-kit/medcourse-service/internal/repository"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

// PromoService manages discount codes. All mutations are admin only.
type PromoService struct {
	promos     repository.PromoRepository
	dispatcher *pipeline.Dispatcher
}

// NewPromoService constructs the service.
func NewPromoService(promos repository.PromoRepository, dispatcher *pipeline.Dispatcher) *PromoService {
	return &PromoService{promos: promos, dispatcher: dispatcher}
}

// PromoInput describes promo code creation payload.
type PromoInput struct {
	Code           string
	DiscountType   string
	PercentOff     int64
	AmountOff      int64
	Currency       string
	ValidFrom      time.Time
	ValidUntil     time.Time
	MaxRedemptions int
}

type createPromoCommand struct {
	Actor
	Input PromoInput
}

func (c createPromoCommand) Validate() error {
	return validation.Errors{
		"code": validation.Validate(c.Input.Code, validation.Required, validation.Length(2, 40)),
		"discount_type": validation.Validate(c.Input.DiscountType, validation.Required,
			validation.In(string(domain.DiscountPercent), string(domain.DiscountFixed))),
		"valid_from":  validation.Validate(c.Input.ValidFrom, validation.Required),
		"valid_until": validation.Validate(c.Input.ValidUntil, validation.Required),
	}.Filter()
}

func (c createPromoCommand) InvalidatePrefixes() []string {
	return []string{prefixPromoList}
}

// CreatePromo creates a percent or fixed-amount promo code.
func (s *PromoService) CreatePromo(ctx context.Context, actor Actor, input PromoInput) (*domain.PromoCode, error) {
	cmd := createPromoCommand{Actor: actor, Input: input}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleCreatePromo)
}

func (s *PromoService) handleCreatePromo(ctx context.Context, cmd createPromoCommand) (*domain.PromoCode, error) {
	if !cmd.Actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}

	if _, err := s.promos.GetByCode(ctx, normalizePromoCode(cmd.Input.Code)); err == nil {
		return nil, apperrors.NewConflict("promo code already exists", nil)
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	var promo *domain.PromoCode
	var err error
	switch domain.DiscountType(cmd.Input.DiscountType) {
	case domain.DiscountPercent:
		promo, err = domain.NewPercentPromo(cmd.Input.Code, cmd.Input.PercentOff, cmd.Input.ValidFrom, cmd.Input.ValidUntil, cmd.Input.MaxRedemptions)
	case domain.DiscountFixed:
		var amount domain.Money
		amount, err = domain.NewMoney(cmd.Input.AmountOff, domain.Currency(cmd.Input.Currency))
		if err == nil {
			promo, err = domain.NewFixedPromo(cmd.Input.Code, amount, cmd.Input.ValidFrom, cmd.Input.ValidUntil, cmd.Input.MaxRedemptions)
		}
	}
	if err != nil {
		return nil, apperrors.NewUnprocessable(err.Error(), nil)
	}

	if err := s.promos.Create(ctx, promo); err != nil {
		return nil, err
	}
	return promo, nil
}

type deactivatePromoCommand struct {
	Actor
	PromoID string
}

func (c deactivatePromoCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.PromoID, validation.Required),
	)
}

func (c deactivatePromoCommand) InvalidatePrefixes() []string {
	return []string{prefixPromoList}
}

// DeactivatePromo disables a promo code.
func (s *PromoService) DeactivatePromo(ctx context.Context, actor Actor, promoID string) (*domain.PromoCode, error) {
	cmd := deactivatePromoCommand{Actor: actor, PromoID: promoID}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleDeactivatePromo)
}

func (s *PromoService) handleDeactivatePromo(ctx context.Context, cmd deactivatePromoCommand) (*domain.PromoCode, error) {
	if !cmd.Actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	promo, err := s.promos.GetByID(ctx, cmd.PromoID)
	if err != nil {
		return nil, err
	}
	promo.Deactivate()
	if err := s.promos.Update(ctx, promo); err != nil {
		return nil, err
	}
	return promo, nil
}

type listPromosQuery struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}

func (q listPromosQuery) CacheKey() string {
	return cache.Key("promos", fmt.Sprintf("%t:%d:%d", q.ActiveOnly, q.Limit, q.Offset))
}

func (q listPromosQuery) CachePrefixes() []string {
	return []string{prefixPromoList}
}

// ListPromos returns promo codes. Admin only.
func (s *PromoService) ListPromos(ctx context.Context, actor Actor, activeOnly bool, limit, offset int) ([]domain.PromoCode, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	query := listPromosQuery{ActiveOnly: activeOnly, Limit: limit, Offset: offset}
	return pipeline.Dispatch(ctx, s.dispatcher, query, func(ctx context.Context, q listPromosQuery) ([]domain.PromoCode, error) {
		return s.promos.List(ctx, q.ActiveOnly, q.Limit, q.Offset)
	})
}

// PromoPreview reports the price a code would produce.
type PromoPreview struct {
	Code       string
	Original   domain.Money
	Discounted domain.Money
}

// PreviewPromo checks a code against a price without redeeming it.
func (s *PromoService) PreviewPromo(ctx context.Context, code string, price domain.Money) (*PromoPreview, error) {
	promo, err := s.promos.GetByCode(ctx, normalizePromoCode(code))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("promo code", nil)
		}
		return nil, err
	}
	if err := promo.Usable(time.Now().UTC()); err != nil {
		return nil, apperrors.NewUnprocessable(err.Error(), nil)
	}
	discounted, err := promo.Apply(price)
	if err != nil {
		return nil, apperrors.NewUnprocessable(err.Error(), nil)
	}
	return &PromoPreview{Code: promo.Code, Original: price, Discounted: discounted}, nil
}
