// Package memcache adapts bradfitz/gomemcache to provider.Provider.
package memcache

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	mc "github.com/bradfitz/gomemcache/memcache"

	"github.com/QuickenLoans/mcp-cache/clock"
	pr "github.com/QuickenLoans/mcp-cache/provider"
)

// Relative expirations above this are read by memcached as unix timestamps.
const maxRelativeTTL = 30 * 24 * time.Hour

var ErrNoServers = errors.New("memcache provider: no servers configured")

// client is the subset of *memcache.Client the provider uses.
type client interface {
	Get(key string) (*mc.Item, error)
	GetMulti(keys []string) (map[string]*mc.Item, error)
	Set(item *mc.Item) error
	Delete(key string) error
	DeleteAll() error
}

type Memcache struct {
	c     client
	clock clock.Clock
}

var (
	_ pr.Provider     = (*Memcache)(nil)
	_ pr.MultiGetter  = (*Memcache)(nil)
	_ pr.MultiDeleter = (*Memcache)(nil)
)

type Config struct {
	Servers      []string
	Timeout      time.Duration // 0 => gomemcache default
	MaxIdleConns int
	Clock        clock.Clock // used for absolute expirations; nil => clock.System
}

func New(cfg Config) (*Memcache, error) {
	if len(cfg.Servers) == 0 {
		return nil, ErrNoServers
	}
	c := mc.New(cfg.Servers...)
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
	}
	if cfg.MaxIdleConns > 0 {
		c.MaxIdleConns = cfg.MaxIdleConns
	}
	return newWithClient(c, cfg.Clock), nil
}

func newWithClient(c client, clk clock.Clock) *Memcache {
	if clk == nil {
		clk = clock.System{}
	}
	return &Memcache{c: c, clock: clk}
}

// expiration converts a TTL to memcached's expiration field.
func expiration(ttl time.Duration, now time.Time) int32 {
	if ttl <= 0 {
		return 0
	}
	secs := int64(ttl / time.Second)
	if secs == 0 {
		secs = 1
	}
	if ttl > maxRelativeTTL {
		return int32(min(now.Unix()+secs, math.MaxInt32))
	}
	return int32(secs)
}

// classify tags "cannot reach any server" failures with provider.ErrUnavailable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var (
		opErr *net.OpError
		toErr *mc.ConnectTimeoutError
	)
	if errors.Is(err, mc.ErrNoServers) || errors.As(err, &opErr) || errors.As(err, &toErr) {
		return fmt.Errorf("%w: %w", pr.ErrUnavailable, err)
	}
	return err
}

func (p *Memcache) Get(_ context.Context, key string) ([]byte, bool, error) {
	it, err := p.c.Get(key)
	if errors.Is(err, mc.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classify(err)
	}
	return it.Value, true, nil
}

func (p *Memcache) GetMulti(_ context.Context, keys []string) (map[string][]byte, error) {
	items, err := p.c.GetMulti(keys)
	if err != nil {
		return nil, classify(err)
	}
	out := make(map[string][]byte, len(items))
	for k, it := range items {
		out[k] = it.Value
	}
	return out, nil
}

func (p *Memcache) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	err := p.c.Set(&mc.Item{Key: key, Value: value, Expiration: expiration(ttl, p.clock.Now())})
	if err != nil {
		return false, classify(err)
	}
	return true, nil
}

func (p *Memcache) Del(_ context.Context, key string) error {
	err := p.c.Delete(key)
	if errors.Is(err, mc.ErrCacheMiss) {
		return nil
	}
	return classify(err)
}

func (p *Memcache) DelMulti(ctx context.Context, keys []string) error {
	var errs []error
	for _, k := range keys {
		if err := p.Del(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clear issues flush_all on every server.
func (p *Memcache) Clear(_ context.Context) error {
	return classify(p.c.DeleteAll())
}

func (p *Memcache) Close(_ context.Context) error { return nil }
