package genstore

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/QuickenLoans/mcp-cache/provider"
)

// ProviderGenStore keeps the epoch as a decimal string under one key of an
// ordinary provider, next to the cached data. Bump is a read-modify-write:
// it is serialized within the process but two processes bumping at once may
// land on the same epoch. Use RedisGenStore when that matters.
//
// Do not point it at a provider whose Clear is used independently, or at a
// key the cache itself could write.
type ProviderGenStore struct {
	p   provider.Provider
	key string
	mu  sync.Mutex
}

var _ GenStore = (*ProviderGenStore)(nil)

func NewProviderGenStore(p provider.Provider, key string) *ProviderGenStore {
	return &ProviderGenStore{p: p, key: key}
}

func (s *ProviderGenStore) Load(ctx context.Context) (uint64, error) {
	b, ok, err := s.p.Get(ctx, s.key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return Initial, nil
	}
	u, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("provider gen parse: %w", err)
	}
	return u, nil
}

func (s *ProviderGenStore) Bump(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	next := cur + 1
	ok, err := s.p.Set(ctx, s.key, []byte(strconv.FormatUint(next, 10)), 1, 0)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("provider gen store: write of %q rejected", s.key)
	}
	return next, nil
}

// Close leaves the provider open; the cache owns it.
func (s *ProviderGenStore) Close(_ context.Context) error { return nil }
