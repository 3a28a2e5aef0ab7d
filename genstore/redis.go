package genstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisGenStore shares the epoch across processes and survives restarts.
// The key never expires: losing it would resurrect entries written under
// the initial epoch.
type RedisGenStore struct {
	rdb         redis.UniversalClient
	ns          string // logical namespace; usually the cache prefix
	closeClient bool
}

var _ GenStore = (*RedisGenStore)(nil)

// NewRedisGenStore creates a Redis-backed generation store. The client is
// left open on Close.
func NewRedisGenStore(client redis.UniversalClient, namespace string) *RedisGenStore {
	return &RedisGenStore{rdb: client, ns: namespace}
}

// NewOwnedRedisGenStore is NewRedisGenStore that closes the client on Close.
func NewOwnedRedisGenStore(client redis.UniversalClient, namespace string) *RedisGenStore {
	return &RedisGenStore{rdb: client, ns: namespace, closeClient: true}
}

func (s *RedisGenStore) key() string { return "gen:" + s.ns }

// Load returns the current epoch. A missing key reads as Initial.
func (s *RedisGenStore) Load(ctx context.Context) (uint64, error) {
	res, err := s.rdb.Get(ctx, s.key()).Result()
	if err == redis.Nil {
		return Initial, nil
	}
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(res, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis gen parse: %w", err)
	}
	return u, nil
}

// Bump seeds the key with Initial if absent and increments it, in a single
// MULTI/EXEC round-trip.
func (s *RedisGenStore) Bump(ctx context.Context) (uint64, error) {
	k := s.key()
	var incr *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SetNX(ctx, k, Initial, 0)
		incr = p.Incr(ctx, k)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return uint64(incr.Val()), nil
}

func (s *RedisGenStore) Close(_ context.Context) error {
	if s.closeClient {
		return s.rdb.Close()
	}
	return nil
}
