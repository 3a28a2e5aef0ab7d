package mcpcache

import "time"

// Self-heal reasons passed to Hooks.SelfHeal.
const (
	HealCorrupt       = "corrupt"
	HealCodecMismatch = "codec_mismatch"
	HealValueDecode   = "value_decode"
	HealExpired       = "expired"
)

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// An entry was deleted by the cache on read. reason is one of the Heal*
	// constants.
	SelfHeal(storageKey, reason string)

	// A read judged a still-valid entry expired (stampede protection).
	// remaining is the real time left before the entry's deadline.
	EarlyExpiration(storageKey string, remaining time.Duration)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string, isBatch bool)

	// A provider call failed. op is the cache operation ("get", "set", ...).
	BackendError(op string, err error)

	// GenStore errors. A failed load keeps the previous epoch; a failed bump
	// leaves Clear without effect.
	GenLoadError(err error)
	GenBumpError(err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) SelfHeal(string, string)               {}
func (NopHooks) EarlyExpiration(string, time.Duration) {}
func (NopHooks) ProviderSetRejected(string, bool)      {}
func (NopHooks) BackendError(string, error)            {}
func (NopHooks) GenLoadError(error)                    {}
func (NopHooks) GenBumpError(error)                    {}
