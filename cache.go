package mcpcache

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/QuickenLoans/mcp-cache/clock"
	c "github.com/QuickenLoans/mcp-cache/codec"
	gen "github.com/QuickenLoans/mcp-cache/genstore"
	"github.com/QuickenLoans/mcp-cache/internal/wire"
	"github.com/QuickenLoans/mcp-cache/item"
	"github.com/QuickenLoans/mcp-cache/keys"
	"github.com/QuickenLoans/mcp-cache/policy"
	pr "github.com/QuickenLoans/mcp-cache/provider"
	"github.com/QuickenLoans/mcp-cache/stampede"
)

type cache[V any] struct {
	provider pr.Provider
	codec    c.Codec[V]
	log      Logger
	hooks    Hooks
	clock    clock.Clock

	salter keys.Salter
	suffix string

	ttl      *policy.TTL
	stampede *stampede.Protector

	enabled        bool
	nativeTTL      bool
	surface        bool
	computeSetCost SetCostFunc

	// epoch; 0 when no GenStore is configured (not salted into keys)
	gens     gen.GenStore
	gen      atomic.Uint64
	genKnown atomic.Bool

	// background epoch refresh
	ticker    *time.Ticker
	stopCh    chan struct{}
	closeWg   sync.WaitGroup
	closeOnce sync.Once
}

var _ Cache[int] = (*cache[int])(nil)

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("%w: provider is required", ErrInvalidConfiguration)
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("%w: codec is required", ErrInvalidConfiguration)
	}

	var sopts []stampede.Option
	if opts.Rand != nil {
		sopts = append(sopts, stampede.WithRand(opts.Rand))
	}

	c := &cache[V]{
		provider:  opts.Provider,
		codec:     opts.Codec,
		suffix:    opts.Suffix,
		ttl:       policy.NewTTL(opts.MaxTTL),
		stampede:  stampede.New(sopts...),
		enabled:   !opts.Disabled,
		nativeTTL: opts.NativeTTL,
		surface:   opts.SurfaceBackendErrors,
		gens:      opts.GenStore,
	}
	c.salter = keys.Salter{
		Prefix:    coalesce(opts.Prefix, DefaultPrefix),
		Delimiter: opts.Delimiter,
		MaxLength: opts.MaxKeyLength,
	}

	if opts.StampedeBeta != 0 {
		if err := c.stampede.SetBeta(opts.StampedeBeta); err != nil {
			return nil, err
		}
	}
	if opts.StampedeDelta != 0 {
		if err := c.stampede.SetDelta(opts.StampedeDelta); err != nil {
			return nil, err
		}
	}
	if opts.StampedeProtection {
		c.stampede.Enable()
	}

	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.clock = coalesce[clock.Clock](opts.Clock, clock.System{})

	if opts.ComputeSetCost != nil {
		c.computeSetCost = opts.ComputeSetCost
	} else {
		c.computeSetCost = func(string, []byte) int64 { return 1 }
	}

	if c.gens != nil {
		c.refreshGen(context.Background())
		if c.enabled && opts.GenRefreshInterval > 0 {
			c.ticker = time.NewTicker(opts.GenRefreshInterval)
			c.stopCh = make(chan struct{})
			c.closeWg.Add(1)
			go c.refreshLoop()
		}
	}
	return c, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Close(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		if c.stopCh != nil {
			close(c.stopCh)
			c.closeWg.Wait()
			c.ticker.Stop()
		}
		// gen store first (best effort)
		if c.gens != nil {
			_ = c.gens.Close(ctx)
		}
		err = c.provider.Close(ctx)
	})
	return err
}

func (c *cache[V]) SetMaximumTTL(d time.Duration) { c.ttl.SetMaximum(d) }
func (c *cache[V]) EnableStampedeProtection()     { c.stampede.Enable() }
func (c *cache[V]) SetStampedeBeta(b int) error   { return c.stampede.SetBeta(b) }
func (c *cache[V]) SetStampedeDelta(d int) error  { return c.stampede.SetDelta(d) }

// ---- single ----

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if err := keys.Validate(key); err != nil {
		return zero, false, err
	}
	if !c.enabled {
		return zero, false, nil
	}
	if ok, err := c.epochReady(ctx, "get", key); !ok {
		return zero, false, err
	}
	k := c.storageKey(key)
	raw, ok, err := c.provider.Get(ctx, k)
	if err != nil {
		return zero, false, c.backendErr("get", key, err)
	}
	if !ok {
		return zero, false, nil
	}
	v, ok := c.resolve(ctx, k, raw, true)
	return v, ok, nil
}

func (c *cache[V]) GetOr(ctx context.Context, key string, def V) (V, error) {
	v, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

func (c *cache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	if err := keys.Validate(key); err != nil {
		return err
	}
	if isNil(value) {
		return c.Delete(ctx, key)
	}
	if err := item.CheckCacheable(value); err != nil {
		return err
	}
	if !c.enabled {
		return nil
	}
	if ok, err := c.epochReady(ctx, "set", key); !ok {
		return err
	}

	k := c.storageKey(key)
	raw, ttl, err := c.encode(value, ttl)
	if err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	ok, err := c.provider.Set(ctx, k, raw, c.computeSetCost(k, raw), ttl)
	if err != nil {
		return c.backendErr("set", key, err)
	}
	if !ok {
		c.hooks.ProviderSetRejected(k, false)
		c.log.Debug("Set rejected by provider (pressure)", Fields{"key": key})
	}
	return nil
}

func (c *cache[V]) Delete(ctx context.Context, key string) error {
	if err := keys.Validate(key); err != nil {
		return err
	}
	if !c.enabled {
		return nil
	}
	if ok, err := c.epochReady(ctx, "delete", key); !ok {
		return err
	}
	if err := c.provider.Del(ctx, c.storageKey(key)); err != nil {
		return c.backendErr("delete", key, err)
	}
	return nil
}

func (c *cache[V]) Has(ctx context.Context, key string) (bool, error) {
	if err := keys.Validate(key); err != nil {
		return false, err
	}
	if !c.enabled {
		return false, nil
	}
	if ok, err := c.epochReady(ctx, "has", key); !ok {
		return false, err
	}
	k := c.storageKey(key)

	// a physical entry may outlive its logical deadline unless the
	// provider enforces TTL itself
	if ex, ok := c.provider.(pr.Exister); ok && c.nativeTTL {
		found, err := ex.Exists(ctx, k)
		if err != nil {
			return false, c.backendErr("has", key, err)
		}
		return found, nil
	}

	raw, ok, err := c.provider.Get(ctx, k)
	if err != nil {
		return false, c.backendErr("has", key, err)
	}
	if !ok {
		return false, nil
	}
	_, ok = c.resolve(ctx, k, raw, false)
	return ok, nil
}

func (c *cache[V]) Clear(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	if c.gens != nil {
		g, err := c.gens.Bump(ctx)
		if err != nil {
			c.hooks.GenBumpError(err)
			return c.backendErr("clear", "", err)
		}
		c.gen.Store(g)
		c.genKnown.Store(true)
		c.log.Debug("cleared cache (bumped generation)", Fields{"gen": g})
		return nil
	}
	if err := c.provider.Clear(ctx); err != nil {
		return c.backendErr("clear", "", err)
	}
	c.log.Debug("cleared cache (flushed provider)", nil)
	return nil
}

// ---- multiple ----

func (c *cache[V]) GetMultiple(ctx context.Context, ks []string, def V) (map[string]V, error) {
	if err := keys.ValidateAll(ks); err != nil {
		return nil, err
	}
	out := make(map[string]V, len(ks))
	for _, k := range ks {
		out[k] = def
	}
	if !c.enabled || len(ks) == 0 {
		return out, nil
	}
	if ok, err := c.epochReady(ctx, "get_multiple", ""); !ok {
		return out, err
	}

	storage := make([]string, len(ks))
	for i, k := range ks {
		storage[i] = c.storageKey(k)
	}

	if mg, ok := c.provider.(pr.MultiGetter); ok {
		raws, err := mg.GetMulti(ctx, storage)
		if err != nil {
			return out, c.backendErr("get_multiple", "", err)
		}
		for i, k := range ks {
			raw, ok := raws[storage[i]]
			if !ok {
				continue
			}
			if v, ok := c.resolve(ctx, storage[i], raw, true); ok {
				out[k] = v
			}
		}
		return out, nil
	}

	var errs []error
	for i, k := range ks {
		raw, ok, err := c.provider.Get(ctx, storage[i])
		if err != nil {
			if be := c.backendErr("get_multiple", k, err); be != nil {
				errs = append(errs, be)
			}
			continue
		}
		if !ok {
			continue
		}
		if v, ok := c.resolve(ctx, storage[i], raw, true); ok {
			out[k] = v
		}
	}
	return out, errors.Join(errs...)
}

func (c *cache[V]) SetMultiple(ctx context.Context, items map[string]V, ttl time.Duration) error {
	for k, v := range items {
		if err := keys.Validate(k); err != nil {
			return err
		}
		if isNil(v) {
			continue
		}
		if err := item.CheckCacheable(v); err != nil {
			return fmt.Errorf("cache set_multiple %q: %w", k, err)
		}
	}
	if !c.enabled || len(items) == 0 {
		return nil
	}
	if ok, err := c.epochReady(ctx, "set_multiple", ""); !ok {
		return err
	}

	var (
		entries = make([]pr.Entry, 0, len(items))
		dels    []string
	)
	for k, v := range items {
		if isNil(v) {
			dels = append(dels, k)
			continue
		}
		sk := c.storageKey(k)
		raw, clamped, err := c.encode(v, ttl)
		if err != nil {
			return fmt.Errorf("cache set_multiple %q: %w", k, err)
		}
		entries = append(entries, pr.Entry{Key: sk, Value: raw, Cost: c.computeSetCost(sk, raw), TTL: clamped})
	}

	var errs []error
	if len(dels) > 0 {
		if err := c.DeleteMultiple(ctx, dels); err != nil {
			errs = append(errs, err)
		}
	}
	if len(entries) == 0 {
		return errors.Join(errs...)
	}

	if ms, ok := c.provider.(pr.MultiSetter); ok {
		if err := ms.SetMulti(ctx, entries); err != nil {
			if be := c.backendErr("set_multiple", "", err); be != nil {
				errs = append(errs, be)
			}
		}
		return errors.Join(errs...)
	}

	for _, e := range entries {
		ok, err := c.provider.Set(ctx, e.Key, e.Value, e.Cost, e.TTL)
		if err != nil {
			if be := c.backendErr("set_multiple", e.Key, err); be != nil {
				errs = append(errs, be)
			}
			continue
		}
		if !ok {
			c.hooks.ProviderSetRejected(e.Key, true)
		}
	}
	return errors.Join(errs...)
}

func (c *cache[V]) DeleteMultiple(ctx context.Context, ks []string) error {
	if err := keys.ValidateAll(ks); err != nil {
		return err
	}
	if !c.enabled || len(ks) == 0 {
		return nil
	}
	if ok, err := c.epochReady(ctx, "delete_multiple", ""); !ok {
		return err
	}
	storage := make([]string, len(ks))
	for i, k := range ks {
		storage[i] = c.storageKey(k)
	}

	if md, ok := c.provider.(pr.MultiDeleter); ok {
		if err := md.DelMulti(ctx, storage); err != nil {
			return c.backendErr("delete_multiple", "", err)
		}
		return nil
	}

	var errs []error
	for i, sk := range storage {
		if err := c.provider.Del(ctx, sk); err != nil {
			if be := c.backendErr("delete_multiple", ks[i], err); be != nil {
				errs = append(errs, be)
			}
		}
	}
	return errors.Join(errs...)
}

// ---- internals ----

func (c *cache[V]) storageKey(key string) string {
	return c.salter.Salt(key, c.suffix, c.gen.Load())
}

// encode clamps ttl and frames value. It returns the clamped ttl for the
// provider's native expiry.
func (c *cache[V]) encode(value V, ttl time.Duration) ([]byte, time.Duration, error) {
	ttl = c.ttl.Determine(ttl)
	payload, err := c.codec.Encode(value)
	if err != nil {
		return nil, 0, err
	}
	env := wire.Envelope{Codec: c.codec.ID(), Payload: payload}
	if ttl > 0 {
		env.HasExpiry = true
		env.Expiry = c.clock.Now().Add(ttl).UnixNano()
		env.TTL = uint32(min(int64(ttl/time.Second), math.MaxUint32))
	}
	return wire.Encode(env), ttl, nil
}

// resolve decodes a raw entry and applies expiry. Entries that cannot be
// decoded, or are past their real deadline, are deleted. early applies
// stampede protection.
func (c *cache[V]) resolve(ctx context.Context, storageKey string, raw []byte, early bool) (V, bool) {
	var zero V
	env, err := wire.Decode(raw)
	if err != nil {
		c.selfHeal(ctx, storageKey, HealCorrupt)
		return zero, false
	}
	if env.Codec != c.codec.ID() {
		c.selfHeal(ctx, storageKey, HealCodecMismatch)
		return zero, false
	}
	v, err := c.codec.Decode(env.Payload)
	if err != nil {
		c.selfHeal(ctx, storageKey, HealValueDecode)
		return zero, false
	}

	var expiry time.Time
	if env.HasExpiry {
		expiry = time.Unix(0, env.Expiry)
	}
	it, err := item.New(v, expiry, time.Duration(env.TTL)*time.Second)
	if err != nil {
		c.selfHeal(ctx, storageKey, HealValueDecode)
		return zero, false
	}
	if c.nativeTTL || !it.HasExpiry() {
		return it.Value(), true
	}

	now := c.clock.Now()
	if it.Expired(now) {
		c.selfHeal(ctx, storageKey, HealExpired)
		return zero, false
	}
	if early {
		if v, ok := it.Data(c.stampede.EffectiveNow(it.TTL(), now)); ok {
			return v, true
		}
		c.hooks.EarlyExpiration(storageKey, it.Expiry().Sub(now))
		return zero, false
	}
	return it.Value(), true
}

func (c *cache[V]) selfHeal(ctx context.Context, storageKey, reason string) {
	_ = c.provider.Del(ctx, storageKey)
	c.hooks.SelfHeal(storageKey, reason)
	c.log.Debug("self-healed entry", Fields{"key": storageKey, "reason": reason})
}

// backendErr logs and reports a provider failure. It returns nil in degraded
// mode and a *BackendError when errors are surfaced.
func (c *cache[V]) backendErr(op, key string, err error) error {
	c.hooks.BackendError(op, err)
	f := Fields{"op": op, "err": err}
	if key != "" {
		f["key"] = key
	}
	if errors.Is(err, pr.ErrUnavailable) {
		c.log.Error("cache backend unavailable", f)
	} else {
		c.log.Warn("cache backend error", f)
	}
	if !c.surface {
		return nil
	}
	return &BackendError{Op: op, Key: key, Err: err}
}

// epochReady reports whether the namespace epoch is known, retrying the
// load when it is not. Until then reads miss and writes are dropped, so
// entries from an epoch a Clear moved past stay invisible.
func (c *cache[V]) epochReady(ctx context.Context, op, key string) (bool, error) {
	if c.gens == nil || c.genKnown.Load() {
		return true, nil
	}
	if err := c.loadGen(ctx); err != nil {
		return false, c.backendErr(op, key, fmt.Errorf("load generation: %w", err))
	}
	return true, nil
}

func (c *cache[V]) loadGen(ctx context.Context) error {
	g, err := c.gens.Load(ctx)
	if err != nil {
		c.hooks.GenLoadError(err)
		return err
	}
	c.gen.Store(g)
	c.genKnown.Store(true)
	return nil
}

// refreshGen reloads the epoch. On failure the last known epoch is kept.
func (c *cache[V]) refreshGen(ctx context.Context) {
	if err := c.loadGen(ctx); err != nil {
		c.log.Warn("gen load error", Fields{"err": err, "known": c.genKnown.Load()})
	}
}

func (c *cache[V]) refreshLoop() {
	defer c.closeWg.Done()
	for {
		select {
		case <-c.ticker.C:
			c.refreshGen(context.Background())
		case <-c.stopCh:
			return
		}
	}
}

// isNil reports whether v is a nil pointer, map, slice, interface, chan or func.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}
