package mcpcache

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/QuickenLoans/mcp-cache/clock"
	c "github.com/QuickenLoans/mcp-cache/codec"
	gen "github.com/QuickenLoans/mcp-cache/genstore"
	pr "github.com/QuickenLoans/mcp-cache/provider"
)

// SetCostFunc weighs an encoded entry for cost-aware providers (ristretto).
type SetCostFunc func(storageKey string, raw []byte) int64

// Cache is the high-level, provider-agnostic cache API.
// V is the caller's value type. Serialization is handled by a pluggable Codec[V].
//
// Every operation validates its keys first and returns ErrInvalidKey (as a
// *KeyError) before touching the provider.
type Cache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Single
	Get(ctx context.Context, key string) (v V, ok bool, err error)
	GetOr(ctx context.Context, key string, def V) (V, error)
	// Set stores value for ttl (0 => no expiry unless a maximum TTL is set).
	// A nil value (nil pointer, map, slice or interface) deletes the key.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Has reports whether an entry exists. The answer may be stale by the
	// time the caller acts on it.
	Has(ctx context.Context, key string) (bool, error)
	// Clear drops every entry of this cache. With a GenStore it bumps the
	// epoch and leaves the store untouched; otherwise it flushes the provider.
	Clear(ctx context.Context) error

	// Multiple. All keys (and values) are validated before any provider call.
	// After that, application is element-wise and may be partial.
	GetMultiple(ctx context.Context, keys []string, def V) (map[string]V, error)
	SetMultiple(ctx context.Context, items map[string]V, ttl time.Duration) error
	DeleteMultiple(ctx context.Context, keys []string) error

	// Runtime configuration; safe for concurrent use.
	SetMaximumTTL(d time.Duration)
	EnableStampedeProtection()
	SetStampedeBeta(beta int) error
	SetStampedeDelta(delta int) error
}

// Options tune the behavior of the cache.
// Only Provider and Codec are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Provider pr.Provider
	Codec    c.Codec[V]

	// Keys
	Prefix       string // "" => DefaultPrefix
	Suffix       string // optional per-deployment namespace
	Delimiter    string // "" => ":"
	MaxKeyLength int    // 0 => unlimited; memcached needs 250

	// Expiry
	MaxTTL             time.Duration // 0 => unbounded
	Clock              clock.Clock   // nil => clock.System
	StampedeProtection bool
	StampedeBeta       int        // 0 => stampede.DefaultBeta
	StampedeDelta      int        // 0 => stampede.DefaultDelta
	Rand               *rand.Rand // stampede draws; nil => seeded from runtime
	// NativeTTL trusts the provider to expire entries on time and skips the
	// deadline check (and stampede skew) on read.
	NativeTTL bool

	// Generations
	GenStore           gen.GenStore  // nil => Clear flushes the provider
	GenRefreshInterval time.Duration // 0 => epoch is loaded once, at New

	// Behavior
	Disabled bool // default false (enabled)
	// SurfaceBackendErrors returns *BackendError to the caller. By default
	// provider failures are logged and reads degrade to misses, writes to
	// no-ops.
	SurfaceBackendErrors bool
	ComputeSetCost       SetCostFunc // default 1

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
