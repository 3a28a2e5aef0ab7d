// Package compat exposes the legacy cache surface on top of mcpcache.Cache[any]:
// nil instead of (value, ok), TTLs in whole seconds, and key/value collections
// passed as loosely typed iterables.
//
// Accepted key collections: []string, []any holding only strings, any slice or
// array of a string kind, iter.Seq[string], and maps with string keys (their
// keys are used). Accepted value collections for SetMultiple: any map with
// string keys and iter.Seq2[string, any]. Anything else fails with
// mcpcache.ErrInvalidIterable.
package compat

import (
	"context"
	"fmt"
	"iter"
	"reflect"
	"time"

	mcpcache "github.com/QuickenLoans/mcp-cache"
)

type Cache struct {
	c mcpcache.Cache[any]
}

func New(c mcpcache.Cache[any]) *Cache { return &Cache{c: c} }

// Unwrap returns the typed cache underneath.
func (l *Cache) Unwrap() mcpcache.Cache[any] { return l.c }

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

// Get returns the cached value or nil on a miss.
func (l *Cache) Get(ctx context.Context, key string) (any, error) {
	v, ok, err := l.c.Get(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	return v, nil
}

// Set stores value for ttlSeconds (0 => no expiry). A nil value deletes key.
func (l *Cache) Set(ctx context.Context, key string, value any, ttlSeconds int) (bool, error) {
	if err := l.c.Set(ctx, key, value, seconds(ttlSeconds)); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Cache) Delete(ctx context.Context, key string) (bool, error) {
	if err := l.c.Delete(ctx, key); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Cache) Clear(ctx context.Context) (bool, error) {
	if err := l.c.Clear(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Cache) Has(ctx context.Context, key string) (bool, error) {
	return l.c.Has(ctx, key)
}

// GetMultiple returns a value for every key, def for misses.
func (l *Cache) GetMultiple(ctx context.Context, keys any, def any) (map[string]any, error) {
	ks, err := Keys(keys)
	if err != nil {
		return nil, err
	}
	return l.c.GetMultiple(ctx, ks, def)
}

func (l *Cache) SetMultiple(ctx context.Context, values any, ttlSeconds int) (bool, error) {
	items, err := Values(values)
	if err != nil {
		return false, err
	}
	if err := l.c.SetMultiple(ctx, items, seconds(ttlSeconds)); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Cache) DeleteMultiple(ctx context.Context, keys any) (bool, error) {
	ks, err := Keys(keys)
	if err != nil {
		return false, err
	}
	if err := l.c.DeleteMultiple(ctx, ks); err != nil {
		return false, err
	}
	return true, nil
}

func invalid(v any) error {
	return fmt.Errorf("%w: %T", mcpcache.ErrInvalidIterable, v)
}

// Keys flattens a loosely typed key collection.
func Keys(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		return t, nil
	case []any:
		out := make([]string, len(t))
		for i, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T", mcpcache.ErrInvalidIterable, i, e)
			}
			out[i] = s
		}
		return out, nil
	case iter.Seq[string]:
		var out []string
		for s := range t {
			out = append(out, s)
		}
		return out, nil
	case func(func(string) bool):
		return Keys(iter.Seq[string](t))
	case nil:
		return nil, invalid(v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() != reflect.String {
			return nil, invalid(v)
		}
		out := make([]string, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).String()
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, invalid(v)
		}
		out := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			out = append(out, k.String())
		}
		return out, nil
	}
	return nil, invalid(v)
}

// Values flattens a loosely typed key => value collection.
func Values(v any) (map[string]any, error) {
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case iter.Seq2[string, any]:
		out := map[string]any{}
		for k, val := range t {
			out[k] = val
		}
		return out, nil
	case func(func(string, any) bool):
		return Values(iter.Seq2[string, any](t))
	case nil:
		return nil, invalid(v)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, invalid(v)
	}
	out := make(map[string]any, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		out[it.Key().String()] = it.Value().Interface()
	}
	return out, nil
}
