// Package cache provides the prefix-indexed in-memory query cache used by the
// request pipeline. Reads go through a sturdyc client; every cached key is
// registered under one or more prefixes so writes can invalidate whole
// namespaces without scanning the cache.
package cache

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viccon/sturdyc"

	"github.com/spec-kit/medcourse-service/internal/config"
)

// FetchFn loads a value from the source of truth on cache miss.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Service wraps a sturdyc client and tracks which keys live under which prefix.
type Service struct {
	client   *sturdyc.Client[any]
	prefixes *xsync.MapOf[string, *xsync.MapOf[string, struct{}]]
}

// New builds the cache service from configuration.
func New(cfg config.CacheConfig) *Service {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 10000
	}
	shards := cfg.NumShards
	if shards <= 0 {
		shards = 64
	}
	eviction := cfg.EvictionPercentage
	if eviction < 1 || eviction > 100 {
		eviction = 10
	}

	return &Service{
		client:   sturdyc.New[any](capacity, shards, cfg.TTL(), eviction),
		prefixes: xsync.NewMapOf[string, *xsync.MapOf[string, struct{}]](),
	}
}

// GetOrFetch returns the cached value for key, fetching and storing it on miss.
// The key is registered under every given prefix before the lookup so that a
// concurrent invalidation cannot miss it.
func (s *Service) GetOrFetch(ctx context.Context, key string, prefixes []string, fetch func(ctx context.Context) (any, error)) (any, error) {
	for _, prefix := range prefixes {
		keys, _ := s.prefixes.LoadOrStore(prefix, xsync.NewMapOf[string, struct{}]())
		keys.Store(key, struct{}{})
	}
	return s.client.GetOrFetch(ctx, key, fetch)
}

// Delete removes a single entry and unindexes it everywhere.
func (s *Service) Delete(ctx context.Context, key string) {
	s.client.Delete(key)
	s.prefixes.Range(func(_ string, keys *xsync.MapOf[string, struct{}]) bool {
		keys.Delete(key)
		return true
	})
}

// InvalidatePrefix drops every key registered under the prefix and returns how
// many entries were removed.
func (s *Service) InvalidatePrefix(ctx context.Context, prefix string) int {
	keys, ok := s.prefixes.LoadAndDelete(prefix)
	if !ok {
		return 0
	}
	removed := 0
	keys.Range(func(key string, _ struct{}) bool {
		s.client.Delete(key)
		removed++
		return true
	})
	return removed
}

// Size returns the number of live cache entries.
func (s *Service) Size() int {
	return s.client.Size()
}

// GetOrFetch is a type-safe wrapper over Service.GetOrFetch.
func GetOrFetch[T any](ctx context.Context, s *Service, key string, prefixes []string, fetch FetchFn[T]) (T, error) {
	result, err := s.GetOrFetch(ctx, key, prefixes, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		var zero T
		return zero, nil
	}
	return typed, nil
}
