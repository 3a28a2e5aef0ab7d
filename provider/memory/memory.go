// Package memory is an in-process provider: a mutex-guarded map with native
// TTL enforcement and an optional sweep loop. It is the shared-memory flavour
// of store (one per process, shared by every cache built on it).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/QuickenLoans/mcp-cache/clock"
	pr "github.com/QuickenLoans/mcp-cache/provider"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

// Provider keeps entries in a map.
type Provider struct {
	mu    sync.RWMutex
	m     map[string]entry
	clock clock.Clock

	ticker    *time.Ticker
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var (
	_ pr.Provider     = (*Provider)(nil)
	_ pr.Exister      = (*Provider)(nil)
	_ pr.MultiGetter  = (*Provider)(nil)
	_ pr.MultiSetter  = (*Provider)(nil)
	_ pr.MultiDeleter = (*Provider)(nil)
)

type Config struct {
	Clock           clock.Clock   // nil => clock.System
	CleanupInterval time.Duration // 0 => expired entries are only dropped on read
}

func New(cfg Config) *Provider {
	p := &Provider{
		m:     make(map[string]entry),
		clock: cfg.Clock,
	}
	if p.clock == nil {
		p.clock = clock.System{}
	}
	if cfg.CleanupInterval > 0 {
		p.ticker = time.NewTicker(cfg.CleanupInterval)
		p.stopCh = make(chan struct{})
		p.wg.Add(1)
		go p.cleanupLoop()
	}
	return p
}

func (p *Provider) live(e entry, now time.Time) bool {
	return e.exp.IsZero() || now.Before(e.exp)
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.RLock()
	e, ok := p.m[key]
	p.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !p.live(e, p.clock.Now()) {
		p.mu.Lock()
		if cur, ok := p.m[key]; ok && !p.live(cur, p.clock.Now()) {
			delete(p.m, key)
		}
		p.mu.Unlock()
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *Provider) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok, _ := p.Get(ctx, k); ok {
			out[k] = v
		}
	}
	return out, nil
}

func (p *Provider) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := p.Get(ctx, key)
	return ok, err
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	p.m[key] = p.entry(value, ttl)
	p.mu.Unlock()
	return true, nil
}

func (p *Provider) SetMulti(_ context.Context, entries []pr.Entry) error {
	p.mu.Lock()
	for _, e := range entries {
		p.m[e.Key] = p.entry(e.Value, e.TTL)
	}
	p.mu.Unlock()
	return nil
}

func (p *Provider) entry(value []byte, ttl time.Duration) entry {
	var exp time.Time
	if ttl > 0 {
		exp = p.clock.Now().Add(ttl)
	}
	// own the bytes; callers may reuse their buffer
	return entry{v: append([]byte(nil), value...), exp: exp}
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.m, key)
	p.mu.Unlock()
	return nil
}

func (p *Provider) DelMulti(_ context.Context, keys []string) error {
	p.mu.Lock()
	for _, k := range keys {
		delete(p.m, k)
	}
	p.mu.Unlock()
	return nil
}

func (p *Provider) Clear(_ context.Context) error {
	p.mu.Lock()
	p.m = make(map[string]entry)
	p.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included until swept.
func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.m)
}

// Sweep drops every expired entry and returns how many were removed.
func (p *Provider) Sweep() int {
	now := p.clock.Now()
	removed := 0
	p.mu.Lock()
	for k, e := range p.m {
		if !p.live(e, now) {
			delete(p.m, k)
			removed++
		}
	}
	p.mu.Unlock()
	return removed
}

func (p *Provider) cleanupLoop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ticker.C:
			p.Sweep()
		case <-p.stopCh:
			return
		}
	}
}

func (p *Provider) Close(_ context.Context) error {
	p.closeOnce.Do(func() {
		if p.stopCh != nil {
			close(p.stopCh)
			p.ticker.Stop()
			p.wg.Wait()
		}
	})
	return nil
}
