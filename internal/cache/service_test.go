package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/medcourse-service/internal/config"
)

func newTestService() *Service {
	return New(config.CacheConfig{
		Capacity:           100,
		NumShards:          2,
		TTLSeconds:         int((5 * time.Minute).Seconds()),
		EvictionPercentage: 10,
	})
}

func TestGetOrFetchCachesValue(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	calls := 0

	fetch := func(ctx context.Context) (string, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrFetch(ctx, svc, "courses::list", []string{"courses"}, fetch)
		if err != nil {
			t.Fatalf("get or fetch: %v", err)
		}
		if got != "value" {
			t.Errorf("got %q, want value", got)
		}
	}

	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
}

func TestGetOrFetchPropagatesError(t *testing.T) {
	svc := newTestService()
	wantErr := errors.New("db down")

	_, err := GetOrFetch(context.Background(), svc, "k", nil, func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestInvalidatePrefix(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	calls := map[string]int{}

	fetch := func(key string) FetchFn[string] {
		return func(ctx context.Context) (string, error) {
			calls[key]++
			return key, nil
		}
	}

	keys := []string{"courses::list::a", "courses::list::b", "slots::list"}
	prefixFor := map[string][]string{
		"courses::list::a": {"courses"},
		"courses::list::b": {"courses"},
		"slots::list":      {"slots"},
	}
	for _, key := range keys {
		if _, err := GetOrFetch(ctx, svc, key, prefixFor[key], fetch(key)); err != nil {
			t.Fatalf("prime %s: %v", key, err)
		}
	}

	removed := svc.InvalidatePrefix(ctx, "courses")
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	// course keys refetch, slot key does not
	for _, key := range keys {
		if _, err := GetOrFetch(ctx, svc, key, prefixFor[key], fetch(key)); err != nil {
			t.Fatalf("refetch %s: %v", key, err)
		}
	}
	if calls["courses::list::a"] != 2 || calls["courses::list::b"] != 2 {
		t.Errorf("course fetch counts = %v, want 2 each", calls)
	}
	if calls["slots::list"] != 1 {
		t.Errorf("slot fetch count = %d, want 1", calls["slots::list"])
	}
}

func TestInvalidateUnknownPrefix(t *testing.T) {
	svc := newTestService()
	if removed := svc.InvalidatePrefix(context.Background(), "nothing"); removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestDeleteUnindexesKey(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	calls := 0

	fetch := func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	}

	if _, err := GetOrFetch(ctx, svc, "k", []string{"p"}, fetch); err != nil {
		t.Fatalf("prime: %v", err)
	}
	svc.Delete(ctx, "k")

	if _, err := GetOrFetch(ctx, svc, "k", []string{"p"}, fetch); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if calls != 2 {
		t.Errorf("fetch called %d times, want 2", calls)
	}
}

func TestKeyRegisteredUnderMultiplePrefixes(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	calls := 0

	fetch := func(ctx context.Context) (string, error) {
		calls++
		return "x", nil
	}

	key := Key("courses", "detail", "c-1")
	if _, err := GetOrFetch(ctx, svc, key, []string{"courses", "courses::c-1"}, fetch); err != nil {
		t.Fatalf("prime: %v", err)
	}

	svc.InvalidatePrefix(ctx, "courses::c-1")
	if _, err := GetOrFetch(ctx, svc, key, []string{"courses", "courses::c-1"}, fetch); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if calls != 2 {
		t.Errorf("fetch called %d times, want 2", calls)
	}
}
