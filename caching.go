package mcpcache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Caching is a small helper for types that optionally cache: it holds a cache
// that may be nil and a default TTL. Every method is a no-op (or a miss) when
// no cache is set, so callers never branch on it.
type Caching[V any] struct {
	mu    sync.RWMutex
	cache Cache[V]
	ttl   atomic.Int64
	group singleflight.Group
}

// NewCaching returns a helper over cache (nil allowed) with a default TTL.
func NewCaching[V any](cache Cache[V], ttl time.Duration) *Caching[V] {
	h := &Caching[V]{cache: cache}
	h.ttl.Store(int64(ttl))
	return h
}

func (h *Caching[V]) Cache() Cache[V] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cache
}

// SetCache swaps the underlying cache. nil turns caching off.
func (h *Caching[V]) SetCache(cache Cache[V]) {
	h.mu.Lock()
	h.cache = cache
	h.mu.Unlock()
}

func (h *Caching[V]) TTL() time.Duration     { return time.Duration(h.ttl.Load()) }
func (h *Caching[V]) SetTTL(d time.Duration) { h.ttl.Store(int64(d)) }

func (h *Caching[V]) Get(ctx context.Context, key string) (V, bool, error) {
	cache := h.Cache()
	if cache == nil {
		var zero V
		return zero, false, nil
	}
	return cache.Get(ctx, key)
}

// Set stores value for the default TTL.
func (h *Caching[V]) Set(ctx context.Context, key string, value V) error {
	return h.SetFor(ctx, key, value, h.TTL())
}

func (h *Caching[V]) SetFor(ctx context.Context, key string, value V, ttl time.Duration) error {
	cache := h.Cache()
	if cache == nil {
		return nil
	}
	return cache.Set(ctx, key, value, ttl)
}

// Remember returns the cached value for key or computes it with fn and
// stores it for ttl (0 => default TTL). Concurrent misses on the same key
// within this process share one fn call.
func (h *Caching[V]) Remember(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) (V, error)) (V, error) {
	cache := h.Cache()
	if cache == nil {
		return fn(ctx)
	}
	if v, ok, err := cache.Get(ctx, key); err != nil {
		var zero V
		return zero, err
	} else if ok {
		return v, nil
	}
	if ttl == 0 {
		ttl = h.TTL()
	}

	res, err, _ := h.group.Do(key, func() (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return v, err
		}
		if err := cache.Set(ctx, key, v, ttl); err != nil {
			return v, err
		}
		return v, nil
	})
	v, _ := res.(V)
	return v, err
}
