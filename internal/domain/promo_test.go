package domain

import (
	"testing"
	"time"
)

func TestPromoValidityWindow(t *testing.T) {
	now := time.Now()
	promo, err := NewPercentPromo("launch20", 20, now.Add(-time.Hour), now.Add(time.Hour), 0)
	if err != nil {
		t.Fatalf("new promo: %v", err)
	}
	if promo.Code != "LAUNCH20" {
		t.Errorf("code = %q, want LAUNCH20", promo.Code)
	}

	if err := promo.Usable(now); err != nil {
		t.Errorf("usable now: %v", err)
	}
	if err := promo.Usable(now.Add(-2 * time.Hour)); err == nil {
		t.Error("expected error before valid_from")
	}
	if err := promo.Usable(now.Add(2 * time.Hour)); err == nil {
		t.Error("expected error after valid_until")
	}

	promo.Deactivate()
	if err := promo.Usable(now); err == nil {
		t.Error("expected error for inactive code")
	}
}

func TestPromoRedemptionLimit(t *testing.T) {
	now := time.Now()
	promo, err := NewPercentPromo("SINGLE", 10, now.Add(-time.Hour), now.Add(time.Hour), 1)
	if err != nil {
		t.Fatalf("new promo: %v", err)
	}

	if err := promo.Redeem(now); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	if err := promo.Redeem(now); err == nil {
		t.Error("expected error once exhausted")
	}
}

func TestPromoApply(t *testing.T) {
	now := time.Now()
	price := Money{Amount: 10000, Currency: CurrencyUSD}

	percent, err := NewPercentPromo("HALF", 50, now.Add(-time.Hour), now.Add(time.Hour), 0)
	if err != nil {
		t.Fatalf("percent promo: %v", err)
	}
	out, err := percent.Apply(price)
	if err != nil {
		t.Fatalf("apply percent: %v", err)
	}
	if out.Amount != 5000 {
		t.Errorf("amount = %d, want 5000", out.Amount)
	}

	fixed, err := NewFixedPromo("MINUS150", Money{Amount: 15000, Currency: CurrencyUSD}, now.Add(-time.Hour), now.Add(time.Hour), 0)
	if err != nil {
		t.Fatalf("fixed promo: %v", err)
	}
	out, err = fixed.Apply(price)
	if err != nil {
		t.Fatalf("apply fixed: %v", err)
	}
	if out.Amount != 0 {
		t.Errorf("amount = %d, want 0 (clamped)", out.Amount)
	}
}

func TestPromoGuards(t *testing.T) {
	now := time.Now()
	if _, err := NewPercentPromo("", 10, now, now.Add(time.Hour), 0); err == nil {
		t.Error("expected error for empty code")
	}
	if _, err := NewPercentPromo("X", 0, now, now.Add(time.Hour), 0); err == nil {
		t.Error("expected error for zero percent")
	}
	if _, err := NewPercentPromo("X", 10, now.Add(time.Hour), now, 0); err == nil {
		t.Error("expected error for inverted window")
	}
	if _, err := NewFixedPromo("X", Money{Amount: 0, Currency: CurrencyUSD}, now, now.Add(time.Hour), 0); err == nil {
		t.Error("expected error for zero fixed discount")
	}
}
