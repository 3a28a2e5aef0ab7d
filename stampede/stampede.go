// Package stampede implements probabilistic early expiration.
//
// Near the end of an item's life a growing fraction of reads is told the item
// has already expired, so one of them recomputes the value before the real
// deadline instead of every reader missing at the same instant.
//
// For a read at real time now the protector returns an effective time
//
//	r      = randInt(1, 100) / 100
//	beta'  = ln(1 + beta * 0.4)
//	delta' = (delta / 100) * ttl
//	skew   = floor(beta' * delta' * ln(r))      (skew <= 0)
//	now'   = now - skew
//
// which the item then checks against its expiry. With the defaults (beta 3,
// delta 10%) a 60s item read 45s in expires early on about 5% of reads; 23s or
// more before the deadline it never does.
//
// See https://en.wikipedia.org/wiki/Cache_stampede#Probabilistic_early_expiration
package stampede

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultBeta  = 3
	DefaultDelta = 10

	MinBeta, MaxBeta   = 1, 10
	MinDelta, MaxDelta = 1, 100
)

// ErrInvalidConfiguration is returned for out-of-range beta or delta.
var ErrInvalidConfiguration = errors.New("cache: invalid configuration")

// Protector is opt-in: it returns now unchanged until Enable is called.
// Safe for concurrent use.
type Protector struct {
	enabled atomic.Bool
	beta    atomic.Int32
	delta   atomic.Int32

	mu  sync.Mutex
	rnd *rand.Rand // nil => package-level source
}

// Option configures a Protector.
type Option func(*Protector)

// WithRand makes draws come from r. Used to get repeatable sequences.
func WithRand(r *rand.Rand) Option {
	return func(p *Protector) { p.rnd = r }
}

// New returns a disabled protector with default beta and delta.
func New(opts ...Option) *Protector {
	p := &Protector{}
	p.beta.Store(DefaultBeta)
	p.delta.Store(DefaultDelta)
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Protector) Enable()       { p.enabled.Store(true) }
func (p *Protector) Enabled() bool { return p.enabled.Load() }

// SetBeta sets the early expiration scale (1..10). Higher expires earlier.
func (p *Protector) SetBeta(beta int) error {
	if beta < MinBeta || beta > MaxBeta {
		return fmt.Errorf("%w: beta %d: an integer between %d and %d is required",
			ErrInvalidConfiguration, beta, MinBeta, MaxBeta)
	}
	p.beta.Store(int32(beta))
	return nil
}

// SetDelta sets the share of the TTL (percent, 1..100) during which early
// expiration may happen.
func (p *Protector) SetDelta(delta int) error {
	if delta < MinDelta || delta > MaxDelta {
		return fmt.Errorf("%w: delta %d: an integer between %d and %d is required",
			ErrInvalidConfiguration, delta, MinDelta, MaxDelta)
	}
	p.delta.Store(int32(delta))
	return nil
}

func (p *Protector) Beta() int {
	if b := p.beta.Load(); b != 0 {
		return int(b)
	}
	return DefaultBeta
}

func (p *Protector) Delta() int {
	if d := p.delta.Load(); d != 0 {
		return int(d)
	}
	return DefaultDelta
}

// EffectiveNow returns the time an item with the given original TTL should be
// checked against. ttl == 0 (no bounded lifetime) or a disabled protector
// yields now.
func (p *Protector) EffectiveNow(ttl time.Duration, now time.Time) time.Time {
	if ttl <= 0 || !p.Enabled() {
		return now
	}
	return now.Add(-Skew(p.Beta(), p.Delta(), ttl, float64(p.draw())/100))
}

func (p *Protector) draw() int {
	if p.rnd == nil {
		return rand.IntN(100) + 1
	}
	p.mu.Lock()
	n := p.rnd.IntN(100) + 1
	p.mu.Unlock()
	return n
}

// Skew computes the (non-positive) shift for a draw r in (0, 1].
// Whole seconds only.
func Skew(beta, delta int, ttl time.Duration, r float64) time.Duration {
	if r <= 0 || r > 1 || ttl <= 0 {
		return 0
	}
	b := math.Log1p(float64(beta) * 0.4)
	d := (float64(delta) / 100) * ttl.Seconds()
	s := math.Floor(b * d * math.Log(r))
	if s == 0 {
		return 0 // avoid -0
	}
	return time.Duration(s) * time.Second
}
