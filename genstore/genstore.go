package genstore

import "context"

// Initial is the epoch a store reports before the first Bump.
const Initial uint64 = 1

// GenStore holds a namespace-wide generation (epoch). The cache salts every
// key with the current epoch, so bumping it orphans all previous entries
// without touching the backing store. Orphans age out through their own TTL.
//
// Use LocalGenStore for a single process, RedisGenStore to share the epoch
// across processes, or ProviderGenStore to keep it next to the data.
type GenStore interface {
	// Load returns the current epoch; missing => Initial.
	Load(ctx context.Context) (uint64, error)
	// Bump atomically increments and returns the new epoch.
	Bump(ctx context.Context) (uint64, error)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}
