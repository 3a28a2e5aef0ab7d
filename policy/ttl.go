// Package policy holds the TTL ceiling applied to every write.
package policy

import (
	"sync/atomic"
	"time"
)

// TTL clamps requested lifetimes against an optional maximum.
// The zero value is unbounded. Safe for concurrent use.
type TTL struct {
	max atomic.Int64 // seconds; 0 = unbounded
}

// NewTTL returns a policy with the given maximum.
func NewTTL(max time.Duration) *TTL {
	p := &TTL{}
	p.SetMaximum(max)
	return p
}

// SetMaximum sets the ceiling. Values are truncated to whole seconds;
// anything below one second removes the ceiling.
func (p *TTL) SetMaximum(max time.Duration) {
	p.max.Store(seconds(max))
}

// Maximum returns the configured ceiling (0 = unbounded).
func (p *TTL) Maximum() time.Duration {
	return time.Duration(p.max.Load()) * time.Second
}

// Determine resolves the TTL to store with.
//
//   - no ceiling: requested is returned (0 stays "no expiry")
//   - requested 0 with a ceiling: the ceiling wins
//   - requested above the ceiling: the ceiling
//   - otherwise requested
//
// The result is always whole seconds.
func (p *TTL) Determine(requested time.Duration) time.Duration {
	req := seconds(requested)
	max := p.max.Load()

	switch {
	case max == 0:
		return time.Duration(req) * time.Second
	case req == 0, req > max:
		return time.Duration(max) * time.Second
	default:
		return time.Duration(req) * time.Second
	}
}

func seconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}
