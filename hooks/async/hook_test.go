package asynchook

import (
	"errors"
	"sync"
	"testing"
	"time"

	mcpcache "github.com/QuickenLoans/mcp-cache"
)

type countingHooks struct {
	mcpcache.NopHooks
	mu     sync.Mutex
	events []string
	block  chan struct{}
}

func (c *countingHooks) record(ev string) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *countingHooks) SelfHeal(string, string)               { c.record("self_heal") }
func (c *countingHooks) EarlyExpiration(string, time.Duration) { c.record("early") }
func (c *countingHooks) BackendError(string, error)            { c.record("backend") }
func (c *countingHooks) GenLoadError(error)                    { c.record("gen_load") }
func (c *countingHooks) GenBumpError(error)                    { c.record("gen_bump") }
func (c *countingHooks) ProviderSetRejected(string, bool)      { c.record("rejected") }

func TestDeliversAllEventsBeforeClose(t *testing.T) {
	inner := &countingHooks{}
	h := New(inner, 2, 16)

	h.SelfHeal("k", mcpcache.HealCorrupt)
	h.EarlyExpiration("k", time.Second)
	h.BackendError("get", errors.New("x"))
	h.GenLoadError(errors.New("x"))
	h.GenBumpError(errors.New("x"))
	h.ProviderSetRejected("k", false)
	h.Close()

	if len(inner.events) != 6 {
		t.Fatalf("delivered %v", inner.events)
	}
	if h.Dropped() != 0 {
		t.Fatalf("dropped %d", h.Dropped())
	}
}

func TestDropsWhenFullAndAfterClose(t *testing.T) {
	inner := &countingHooks{block: make(chan struct{})}
	h := New(inner, 1, 1)

	// worker picks one event and blocks; the queue holds one more
	for i := 0; i < 10; i++ {
		h.SelfHeal("k", mcpcache.HealCorrupt)
	}
	close(inner.block)
	h.Close()
	h.SelfHeal("k", mcpcache.HealCorrupt)

	delivered := uint64(len(inner.events))
	if delivered+h.Dropped() != 11 {
		t.Fatalf("delivered %d + dropped %d != 11", delivered, h.Dropped())
	}
	if h.Dropped() == 0 {
		t.Fatalf("expected drops on a full queue")
	}
}
