package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Currency is a 3-letter ISO code.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

var supportedCurrencies = map[Currency]struct{}{
	CurrencyUSD: {},
	CurrencyEUR: {},
	CurrencyGBP: {},
}

// ParseCurrency validates and normalizes a currency code.
func ParseCurrency(code string) (Currency, error) {
	normalized := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := supportedCurrencies[normalized]; !ok {
		return "", fmt.Errorf("unsupported currency %q", code)
	}
	return normalized, nil
}

// Money holds an amount in minor units (cents) plus its currency.
type Money struct {
	Amount   int64    `json:"amount"`
	Currency Currency `json:"currency"`
}

// NewMoney builds a non-negative Money value.
func NewMoney(amount int64, currency Currency) (Money, error) {
	if amount < 0 {
		return Money{}, errors.New("amount must be non-negative")
	}
	cur, err := ParseCurrency(string(currency))
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: cur}, nil
}

// IsZero reports whether the value is the zero Money.
func (m Money) IsZero() bool {
	return m.Amount == 0 && m.Currency == ""
}

// Sub returns m minus other, clamped at zero. Currencies must match.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	amount := m.Amount - other.Amount
	if amount < 0 {
		amount = 0
	}
	return Money{Amount: amount, Currency: m.Currency}, nil
}

// PercentOff returns m reduced by pct percent, rounding half-up on minor units.
func (m Money) PercentOff(pct int64) (Money, error) {
	if pct < 0 || pct > 100 {
		return Money{}, errors.New("percentage out of range")
	}
	discount := (m.Amount*pct + 50) / 100
	return Money{Amount: m.Amount - discount, Currency: m.Currency}, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}
