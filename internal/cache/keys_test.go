package cache

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		want     string
	}{
		{"single", []string{"courses"}, "courses"},
		{"multiple", []string{"courses", "list", "p1"}, "courses::list::p1"},
		{"empty segment placeholder", []string{"courses", "", "p1"}, "courses::-::p1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.segments...); got != tt.want {
				t.Errorf("Key(%v) = %q, want %q", tt.segments, got, tt.want)
			}
		})
	}
}

func TestFilterSegmentDeterministic(t *testing.T) {
	fields := map[string]any{
		"specialty": "cardiology",
		"page":      2,
		"max_price": 5000,
	}

	first := FilterSegment(fields)
	for i := 0; i < 10; i++ {
		if got := FilterSegment(fields); got != first {
			t.Fatalf("non-deterministic: %q vs %q", got, first)
		}
	}
	if first != "max_price=5000,page=2,specialty=cardiology" {
		t.Errorf("segment = %q", first)
	}

	if got := FilterSegment(nil); got != "-" {
		t.Errorf("empty segment = %q, want -", got)
	}
}
