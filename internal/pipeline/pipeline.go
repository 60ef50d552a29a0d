// Package pipeline implements the layered request-handling chain that wraps
// every command and query: logging/audit, validation, caching, cache
// invalidation and transaction management compose as behaviors around the
// innermost handler.
package pipeline

import (
	"context"
	"reflect"
	"strings"
	"unicode"
)

// Handler is the innermost unit of work for a dispatched request.
type Handler func(ctx context.Context, req any) (any, error)

// Behavior decorates a handler with a cross-cutting concern.
type Behavior func(name string, next Handler) Handler

// Dispatcher runs requests through its behavior chain.
type Dispatcher struct {
	behaviors []Behavior
}

// NewDispatcher builds a dispatcher; behaviors wrap outermost-first.
func NewDispatcher(behaviors ...Behavior) *Dispatcher {
	return &Dispatcher{behaviors: behaviors}
}

// Dispatch runs the request through the behavior chain into the handler.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, req any, handler Handler) (any, error) {
	wrapped := handler
	for i := len(d.behaviors) - 1; i >= 0; i-- {
		wrapped = d.behaviors[i](name, wrapped)
	}
	return wrapped(ctx, req)
}

// Dispatch is the type-safe entry point services use to run a request.
func Dispatch[Req any, Res any](ctx context.Context, d *Dispatcher, req Req, handle func(context.Context, Req) (Res, error)) (Res, error) {
	result, err := d.Dispatch(ctx, RequestName(req), req, func(ctx context.Context, r any) (any, error) {
		return handle(ctx, r.(Req))
	})
	if err != nil {
		var zero Res
		return zero, err
	}
	typed, ok := result.(Res)
	if !ok {
		var zero Res
		return zero, nil
	}
	return typed, nil
}

// RequestName derives a stable snake_case name from the request type,
// dropping pointer markers and Command/Query suffixes.
func RequestName(req any) string {
	t := reflect.TypeOf(req)
	if t == nil {
		return "unknown"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	name = strings.TrimSuffix(name, "Command")
	name = strings.TrimSuffix(name, "Query")
	if name == "" {
		return "unknown"
	}
	return toSnake(name)
}

func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
