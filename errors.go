package mcpcache

import (
	"errors"
	"fmt"

	"github.com/QuickenLoans/mcp-cache/item"
	"github.com/QuickenLoans/mcp-cache/keys"
	pr "github.com/QuickenLoans/mcp-cache/provider"
	"github.com/QuickenLoans/mcp-cache/stampede"
)

var (
	// ErrInvalidKey: empty key or a key containing one of keys.Reserved.
	ErrInvalidKey = keys.ErrInvalidKey
	// ErrInvalidIterable: a loosely typed key/value collection was not iterable.
	ErrInvalidIterable = errors.New("cache: invalid iterable")
	// ErrUncacheableValue: the value is a live handle (file, conn, chan, func).
	ErrUncacheableValue = item.ErrUncacheable
	// ErrInvalidConfiguration: stampede beta/delta outside their range, or a
	// missing required option.
	ErrInvalidConfiguration = stampede.ErrInvalidConfiguration
	// ErrBackendUnavailable: the backing store failed. Only returned when
	// Options.SurfaceBackendErrors is set.
	ErrBackendUnavailable = pr.ErrUnavailable
)

// KeyError reports the offending key and unwraps to ErrInvalidKey.
type KeyError = keys.KeyError

// BackendError wraps a provider failure with the operation and logical key.
// It matches both ErrBackendUnavailable and the provider's own error.
type BackendError struct {
	Op  string
	Key string // empty for namespace-wide ops (clear) and batches
	Err error
}

func (e *BackendError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cache %s: backend failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cache %s %q: backend failed: %v", e.Op, e.Key, e.Err)
}

func (e *BackendError) Unwrap() []error {
	errs := make([]error, 0, 2)
	errs = append(errs, ErrBackendUnavailable)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
