// Package provider defines the storage capability mcpcache runs on.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation).
//
// Keys starting with the cache's prefix (default "mcp-cache-v1") are owned by
// mcpcache. Foreign writes under that prefix fail envelope validation and are
// deleted on read.
package provider

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks errors meaning the store cannot be reached at all
// (no servers, connection refused, closed database). Adapters wrap their
// native errors with it so the cache can log them at error level.
var ErrUnavailable = errors.New("provider: backend unavailable")

// Provider is a minimal byte store with TTLs. Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL (ttl <= 0: no expiry). May ignore
	// cost if unsupported. Returns ok=false when the store rejected the write
	// under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key. A missing key is not an error.
	Del(ctx context.Context, key string) error

	// Clear flushes the whole store. On shared stores this also removes keys
	// written by other applications.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Exister is implemented by stores with a cheaper existence probe than Get.
type Exister interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// MultiGetter fetches many keys in one round-trip. Missing keys are absent
// from the result.
type MultiGetter interface {
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)
}

// Entry is one write in a batch.
type Entry struct {
	Key   string
	Value []byte
	Cost  int64
	TTL   time.Duration
}

// MultiSetter writes many entries in one round-trip. Not transactional:
// entries before a failure may already be stored.
type MultiSetter interface {
	SetMulti(ctx context.Context, entries []Entry) error
}

// MultiDeleter removes many keys in one round-trip.
type MultiDeleter interface {
	DelMulti(ctx context.Context, keys []string) error
}
