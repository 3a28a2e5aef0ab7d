// Package sloghooks reports cache events through log/slog. Storage keys are
// redacted and the noisy events are sampled.
package sloghooks

import (
	"log/slog"
	"sync/atomic"
	"time"

	mcpcache "github.com/QuickenLoans/mcp-cache"
	"github.com/QuickenLoans/mcp-cache/internal/util"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery uint64
	EarlyEvery    uint64
	// Optional key redactor. Defaults to a SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr atomic.Uint64
	earlyCtr    atomic.Uint64
}

var _ mcpcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return util.Digest(k)
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("mcpcache.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) EarlyExpiration(storageKey string, remaining time.Duration) {
	if h.l == nil || !sample(h.opts.EarlyEvery, &h.earlyCtr) {
		return
	}
	h.l.Debug("mcpcache.early_expiration",
		"key", h.redact(storageKey),
		"remaining", remaining)
}

func (h *Hooks) ProviderSetRejected(storageKey string, isBatch bool) {
	if h.l == nil {
		return
	}
	h.l.Warn("mcpcache.provider_set_rejected",
		"key", h.redact(storageKey),
		"is_batch", isBatch)
}

func (h *Hooks) BackendError(op string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("mcpcache.backend_error",
		"op", op,
		"err", err)
}

func (h *Hooks) GenLoadError(err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("mcpcache.gen_load_error", "err", err)
}

func (h *Hooks) GenBumpError(err error) {
	if h.l == nil {
		return
	}
	// clear had no effect; entries remain visible
	h.l.Error("mcpcache.gen_bump_error", "err", err)
}
