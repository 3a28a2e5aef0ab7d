// Package asynchook moves hook delivery off the cache's hot path: events go
// into a bounded queue drained by a fixed worker pool. When the queue is full
// events are dropped and counted.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{SelfHealEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := mcpcache.New[User](mcpcache.Options[User]{
//	    Provider: provider,
//	    Codec:    codec.JSON[User]{},
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	mcpcache "github.com/QuickenLoans/mcp-cache"
)

type Hooks struct {
	inner   mcpcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards sends against close
	closed  bool
	dropped atomic.Uint64
}

var _ mcpcache.Hooks = (*Hooks)(nil)

func New(inner mcpcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events sent after Close
// are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded on a full queue or after Close.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) SelfHeal(k, r string) { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) BackendError(op string, err error) {
	h.try(func() { h.inner.BackendError(op, err) })
}
func (h *Hooks) GenLoadError(err error) { h.try(func() { h.inner.GenLoadError(err) }) }
func (h *Hooks) GenBumpError(err error) { h.try(func() { h.inner.GenBumpError(err) }) }
func (h *Hooks) EarlyExpiration(k string, remaining time.Duration) {
	h.try(func() { h.inner.EarlyExpiration(k, remaining) })
}
func (h *Hooks) ProviderSetRejected(k string, batch bool) {
	h.try(func() { h.inner.ProviderSetRejected(k, batch) })
}
