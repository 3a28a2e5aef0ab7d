// Package item is the envelope stored for every cached value: the data, its
// absolute expiry and the TTL the caller originally asked for.
//
// The original TTL is kept (not recomputed from the remaining lifetime) so
// stampede protection can scale its skew to the full window.
package item

import (
	"errors"
	"io"
	"reflect"
	"time"
)

// ErrUncacheable is returned when the value is a live handle that cannot be
// serialized (channels, funcs, unsafe pointers, anything with Close).
var ErrUncacheable = errors.New("cache: value is not cacheable")

// Item is immutable once built.
type Item[V any] struct {
	data   V
	expiry time.Time     // zero => never expires
	ttl    time.Duration // original TTL; zero => none
}

// New wraps data. expiry may be the zero time for "never".
func New[V any](data V, expiry time.Time, ttl time.Duration) (Item[V], error) {
	if err := CheckCacheable(data); err != nil {
		return Item[V]{}, err
	}
	return Item[V]{data: data, expiry: expiry, ttl: ttl}, nil
}

// Value returns the data without any expiry check. Use it when the caller
// already gated on validity or the store enforces TTL itself.
func (it Item[V]) Value() V { return it.data }

// Data returns the value if it is still valid at now. Expiry is inclusive:
// reading at exactly the expiry instant is a miss.
func (it Item[V]) Data(now time.Time) (V, bool) {
	if it.Expired(now) {
		var zero V
		return zero, false
	}
	return it.data, true
}

// Expired reports whether the item is no longer valid at now.
func (it Item[V]) Expired(now time.Time) bool {
	if it.expiry.IsZero() {
		return false
	}
	return !now.Before(it.expiry)
}

// Expiry returns the absolute expiry; zero means never.
func (it Item[V]) Expiry() time.Time { return it.expiry }

// HasExpiry reports whether the item carries a deadline.
func (it Item[V]) HasExpiry() bool { return !it.expiry.IsZero() }

// TTL returns the original TTL unmodified.
func (it Item[V]) TTL() time.Duration { return it.ttl }

// CheckCacheable rejects live handles.
func CheckCacheable(v any) error {
	if v == nil {
		return nil
	}
	if _, ok := v.(io.Closer); ok {
		return ErrUncacheable
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return ErrUncacheable
	}
	return nil
}
