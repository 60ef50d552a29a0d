package domain

import (
	"errors"
	"strings"
	"time"
)

// DiscountType selects between percentage and fixed-amount discounts.
type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountFixed   DiscountType = "FIXED"
)

// PromoCode applies a discount to enrollment prices.
type PromoCode struct {
	ID             string
	Code           string
	DiscountType   DiscountType
	PercentOff     int64
	AmountOff      Money
	ValidFrom      time.Time
	ValidUntil     time.Time
	MaxRedemptions int
	RedeemedCount  int
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewPercentPromo builds a percentage promo code.
func NewPercentPromo(code string, percentOff int64, validFrom, validUntil time.Time, maxRedemptions int) (*PromoCode, error) {
	if percentOff < 1 || percentOff > 100 {
		return nil, errors.New("percent off must be between 1 and 100")
	}
	return newPromo(code, DiscountPercent, percentOff, Money{}, validFrom, validUntil, maxRedemptions)
}

// NewFixedPromo builds a fixed-amount promo code.
func NewFixedPromo(code string, amountOff Money, validFrom, validUntil time.Time, maxRedemptions int) (*PromoCode, error) {
	if amountOff.Amount <= 0 {
		return nil, errors.New("amount off must be positive")
	}
	return newPromo(code, DiscountFixed, 0, amountOff, validFrom, validUntil, maxRedemptions)
}

func newPromo(code string, kind DiscountType, percentOff int64, amountOff Money, validFrom, validUntil time.Time, maxRedemptions int) (*PromoCode, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, errors.New("code required")
	}
	if !validFrom.Before(validUntil) {
		return nil, errors.New("valid_from must precede valid_until")
	}
	if maxRedemptions < 0 {
		return nil, errors.New("max redemptions must be non-negative")
	}
	return &PromoCode{
		Code:           normalized,
		DiscountType:   kind,
		PercentOff:     percentOff,
		AmountOff:      amountOff,
		ValidFrom:      validFrom,
		ValidUntil:     validUntil,
		MaxRedemptions: maxRedemptions,
		Active:         true,
	}, nil
}

// Usable reports whether the code can be redeemed at the given time.
func (p *PromoCode) Usable(now time.Time) error {
	if !p.Active {
		return errors.New("promo code inactive")
	}
	if now.Before(p.ValidFrom) || now.After(p.ValidUntil) {
		return errors.New("promo code outside validity window")
	}
	if p.MaxRedemptions > 0 && p.RedeemedCount >= p.MaxRedemptions {
		return errors.New("promo code exhausted")
	}
	return nil
}

// Apply returns the discounted price for the given base price.
func (p *PromoCode) Apply(price Money) (Money, error) {
	switch p.DiscountType {
	case DiscountPercent:
		return price.PercentOff(p.PercentOff)
	case DiscountFixed:
		return price.Sub(p.AmountOff)
	}
	return Money{}, errors.New("unknown discount type")
}

// Redeem consumes one redemption after a successful enrollment.
func (p *PromoCode) Redeem(now time.Time) error {
	if err := p.Usable(now); err != nil {
		return err
	}
	p.RedeemedCount++
	return nil
}

// Deactivate disables the code.
func (p *PromoCode) Deactivate() {
	p.Active = false
}
