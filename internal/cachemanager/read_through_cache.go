package cachemanager

import (
	"context"
	"time"
)

// ReadThroughCache loads missing entries with fn and stores successful
// results. Errors are returned as is and never cached.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache  CacheManager[K, V]
	fn     func(ctx context.Context, input I) (V, error)
	bypass bool
	keep   func(V) bool
}

// NewReadThroughCache wraps fn. With bypass set every call goes to fn.
func NewReadThroughCache[K comparable, V any, I any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, input I) (V, error),
	bypass bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{cache: cache, fn: fn, bypass: bypass}
}

// KeepIf restricts caching to values for which keep returns true.
func (r *ReadThroughCache[K, V, I]) KeepIf(keep func(V) bool) *ReadThroughCache[K, V, I] {
	r.keep = keep
	return r
}

// Get returns the cached value for key, loading it from input on a miss.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if !r.bypass {
		if v, ok := r.cache.Get(ctx, key); ok {
			return v, nil
		}
	}
	return r.load(ctx, key, input, ttl)
}

// GetWithRefresh is Get that also restarts the TTL of a hit.
func (r *ReadThroughCache[K, V, I]) GetWithRefresh(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if !r.bypass {
		if v, ok := r.cache.GetWithRefresh(ctx, key, ttl); ok {
			return v, nil
		}
	}
	return r.load(ctx, key, input, ttl)
}

func (r *ReadThroughCache[K, V, I]) load(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	v, err := r.fn(ctx, input)
	if err != nil {
		return v, err
	}
	if !r.bypass && (r.keep == nil || r.keep(v)) {
		r.cache.Set(ctx, key, v, ttl)
	}
	return v, nil
}
