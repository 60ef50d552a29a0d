package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/spec-kit/medcourse-service/internal/cache"
	"github.com/spec-kit/medcourse-service/internal/config"
	"github.com/spec-kit/medcourse-service/internal/domain"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

type createWidgetCommand struct {
	Name string
}

func (c createWidgetCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
	)
}

func (c createWidgetCommand) InvalidatePrefixes() []string {
	return []string{"widgets"}
}

func (c createWidgetCommand) AuditActor() (string, string) {
	return "USER", "user-1"
}

type listWidgetsQuery struct {
	Page int
}

func (q listWidgetsQuery) CacheKey() string {
	return cache.Key("widgets", "list")
}

func (q listWidgetsQuery) CachePrefixes() []string {
	return []string{"widgets"}
}

type recordedAudit struct {
	entries []*domain.AuditLog
}

func (r *recordedAudit) Record(ctx context.Context, entry *domain.AuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func newTestCache() *cache.Service {
	return cache.New(config.CacheConfig{
		Capacity:           100,
		NumShards:          2,
		TTLSeconds:         int((time.Minute).Seconds()),
		EvictionPercentage: 10,
	})
}

func TestRequestName(t *testing.T) {
	tests := []struct {
		req  any
		want string
	}{
		{createWidgetCommand{}, "create_widget"},
		{&createWidgetCommand{}, "create_widget"},
		{listWidgetsQuery{}, "list_widgets"},
		{nil, "unknown"},
	}
	for _, tt := range tests {
		if got := RequestName(tt.req); got != tt.want {
			t.Errorf("RequestName(%T) = %q, want %q", tt.req, got, tt.want)
		}
	}
}

func TestValidationShortCircuits(t *testing.T) {
	d := NewDispatcher(Validation())
	handled := false

	_, err := Dispatch(context.Background(), d, createWidgetCommand{Name: ""}, func(ctx context.Context, c createWidgetCommand) (string, error) {
		handled = true
		return "", nil
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if handled {
		t.Error("handler should not run on validation failure")
	}

	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "VALIDATION_FAILED" {
		t.Errorf("code = %s, want VALIDATION_FAILED", domainErr.Code)
	}
	if _, ok := domainErr.Details["Name"]; !ok {
		t.Errorf("details = %v, want Name field error", domainErr.Details)
	}
}

func TestValidationPassesValidRequest(t *testing.T) {
	d := NewDispatcher(Validation())

	out, err := Dispatch(context.Background(), d, createWidgetCommand{Name: "stetho"}, func(ctx context.Context, c createWidgetCommand) (string, error) {
		return "created", nil
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if out != "created" {
		t.Errorf("out = %q, want created", out)
	}
}

func TestCachingBehaviorServesFromCache(t *testing.T) {
	svc := newTestCache()
	d := NewDispatcher(Caching(svc))
	calls := 0

	for i := 0; i < 3; i++ {
		out, err := Dispatch(context.Background(), d, listWidgetsQuery{Page: 1}, func(ctx context.Context, q listWidgetsQuery) ([]string, error) {
			calls++
			return []string{"a", "b"}, nil
		})
		if err != nil {
			t.Fatalf("dispatch: %v", err)
		}
		if len(out) != 2 {
			t.Errorf("out = %v", out)
		}
	}
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
}

func TestInvalidationRunsOnlyOnSuccess(t *testing.T) {
	svc := newTestCache()
	logger := zap.NewNop()
	d := NewDispatcher(Caching(svc), Invalidation(svc, logger))
	listCalls := 0

	list := func(ctx context.Context, q listWidgetsQuery) ([]string, error) {
		listCalls++
		return []string{"a"}, nil
	}

	if _, err := Dispatch(context.Background(), d, listWidgetsQuery{}, list); err != nil {
		t.Fatalf("prime: %v", err)
	}

	// failing command must not invalidate
	wantErr := errors.New("boom")
	_, err := Dispatch(context.Background(), d, createWidgetCommand{Name: "x"}, func(ctx context.Context, c createWidgetCommand) (string, error) {
		return "", wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v", err)
	}
	if _, err := Dispatch(context.Background(), d, listWidgetsQuery{}, list); err != nil {
		t.Fatalf("list after failure: %v", err)
	}
	if listCalls != 1 {
		t.Errorf("list handler ran %d times, want 1 (cache intact)", listCalls)
	}

	// successful command invalidates the prefix
	if _, err := Dispatch(context.Background(), d, createWidgetCommand{Name: "x"}, func(ctx context.Context, c createWidgetCommand) (string, error) {
		return "ok", nil
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := Dispatch(context.Background(), d, listWidgetsQuery{}, list); err != nil {
		t.Fatalf("list after success: %v", err)
	}
	if listCalls != 2 {
		t.Errorf("list handler ran %d times, want 2 (cache dropped)", listCalls)
	}
}

func TestLoggingWritesAudit(t *testing.T) {
	audit := &recordedAudit{}
	d := NewDispatcher(Logging(zap.NewNop(), audit))

	if _, err := Dispatch(context.Background(), d, createWidgetCommand{Name: "x"}, func(ctx context.Context, c createWidgetCommand) (string, error) {
		return "ok", nil
	}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	_, err := Dispatch(context.Background(), d, createWidgetCommand{Name: "x"}, func(ctx context.Context, c createWidgetCommand) (string, error) {
		return "", apperrors.NewConflict("duplicate widget", nil)
	})
	if err == nil {
		t.Fatal("expected error")
	}

	if len(audit.entries) != 2 {
		t.Fatalf("got %d audit entries, want 2", len(audit.entries))
	}
	first, second := audit.entries[0], audit.entries[1]
	if first.Outcome != domain.AuditOutcomeOK || first.Command != "create_widget" {
		t.Errorf("first entry = %+v", first)
	}
	if first.ActorType != "USER" || first.ActorID == nil || *first.ActorID != "user-1" {
		t.Errorf("actor = %s/%v", first.ActorType, first.ActorID)
	}
	if second.Outcome != domain.AuditOutcomeError || second.ErrorCode == nil || *second.ErrorCode != "CONFLICT" {
		t.Errorf("second entry = %+v", second)
	}
}

func TestBehaviorOrdering(t *testing.T) {
	var order []string
	mark := func(label string) Behavior {
		return func(name string, next Handler) Handler {
			return func(ctx context.Context, req any) (any, error) {
				order = append(order, label)
				return next(ctx, req)
			}
		}
	}

	d := NewDispatcher(mark("outer"), mark("middle"), mark("inner"))
	if _, err := d.Dispatch(context.Background(), "noop", struct{}{}, func(ctx context.Context, req any) (any, error) {
		order = append(order, "handler")
		return nil, nil
	}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	want := []string{"outer", "middle", "inner", "handler"}
	for i, label := range want {
		if order[i] != label {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
