package domain

import "testing"

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		currency Currency
		wantErr  bool
	}{
		{"valid usd", 1999, CurrencyUSD, false},
		{"zero amount", 0, CurrencyEUR, false},
		{"lowercase currency normalized", 500, Currency("usd"), false},
		{"negative amount", -1, CurrencyUSD, true},
		{"unknown currency", 100, Currency("XYZ"), true},
		{"empty currency", 100, Currency(""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoney(tt.amount, tt.currency)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", m)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.Amount != tt.amount {
				t.Errorf("amount = %d, want %d", m.Amount, tt.amount)
			}
		})
	}
}

func TestMoneyPercentOff(t *testing.T) {
	m := Money{Amount: 1000, Currency: CurrencyUSD}

	discounted, err := m.PercentOff(25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if discounted.Amount != 750 {
		t.Errorf("amount = %d, want 750", discounted.Amount)
	}

	// 33% of 999 is 329.67; discount rounds half-up to 330
	m = Money{Amount: 999, Currency: CurrencyUSD}
	discounted, err = m.PercentOff(33)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if discounted.Amount != 669 {
		t.Errorf("amount = %d, want 669", discounted.Amount)
	}

	if _, err := m.PercentOff(101); err == nil {
		t.Error("expected error for percentage over 100")
	}
}

func TestMoneySub(t *testing.T) {
	m := Money{Amount: 500, Currency: CurrencyUSD}

	out, err := m.Sub(Money{Amount: 200, Currency: CurrencyUSD})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Amount != 300 {
		t.Errorf("amount = %d, want 300", out.Amount)
	}

	// clamps at zero
	out, err = m.Sub(Money{Amount: 900, Currency: CurrencyUSD})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Amount != 0 {
		t.Errorf("amount = %d, want 0", out.Amount)
	}

	if _, err := m.Sub(Money{Amount: 100, Currency: CurrencyEUR}); err == nil {
		t.Error("expected currency mismatch error")
	}
}

func TestParseEmail(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"Doctor@Example.COM", "doctor@example.com", false},
		{"  padded@clinic.org ", "padded@clinic.org", false},
		{"no-at-sign", "", true},
		{"two@@example.com", "", true},
		{"@example.com", "", true},
		{"user@", "", true},
		{"user@nodot", "", true},
		{"user@.leadingdot", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			email, err := ParseEmail(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", email)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if email.String() != tt.want {
				t.Errorf("email = %q, want %q", email, tt.want)
			}
		})
	}
}

func TestParseWebURL(t *testing.T) {
	if _, err := ParseWebURL("https://cdn.example.com/cover.png"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseWebURL("ftp://example.com/file"); err == nil {
		t.Error("expected error for non-http scheme")
	}
	if _, err := ParseWebURL("https://"); err == nil {
		t.Error("expected error for missing host")
	}
}
