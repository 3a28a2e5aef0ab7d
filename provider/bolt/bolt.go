// Package bolt is a persistent provider on top of go.etcd.io/bbolt. Each value
// is stored as an 8-byte big-endian expiry (unix nanos, 0 = none) followed by
// the raw bytes. Expired entries are dropped lazily on read.
package bolt

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/QuickenLoans/mcp-cache/clock"
	pr "github.com/QuickenLoans/mcp-cache/provider"
)

const headerLen = 8

type Provider struct {
	db     *bolt.DB
	bucket []byte
	clock  clock.Clock
}

var (
	_ pr.Provider     = (*Provider)(nil)
	_ pr.Exister      = (*Provider)(nil)
	_ pr.MultiGetter  = (*Provider)(nil)
	_ pr.MultiSetter  = (*Provider)(nil)
	_ pr.MultiDeleter = (*Provider)(nil)
)

type Config struct {
	Path        string
	Bucket      string        // default "mcp-cache"
	OpenTimeout time.Duration // default 1s
	Clock       clock.Clock
}

// Open initializes or opens a database at cfg.Path.
func Open(cfg Config) (*Provider, error) {
	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, err
	}
	bucket := []byte("mcp-cache")
	if cfg.Bucket != "" {
		bucket = []byte(cfg.Bucket)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &Provider{db: db, bucket: bucket, clock: clk}, nil
}

func classify(err error) error {
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return fmt.Errorf("%w: %w", pr.ErrUnavailable, err)
	}
	return err
}

func (p *Provider) frame(value []byte, ttl time.Duration) []byte {
	var exp int64
	if ttl > 0 {
		exp = p.clock.Now().Add(ttl).UnixNano()
	}
	buf := make([]byte, headerLen+len(value))
	binary.BigEndian.PutUint64(buf[:headerLen], uint64(exp))
	copy(buf[headerLen:], value)
	return buf
}

// unframe returns a copy of the payload; bolt memory is only valid inside the tx.
func (p *Provider) unframe(raw []byte, now time.Time) ([]byte, bool) {
	if len(raw) < headerLen {
		return nil, false
	}
	exp := int64(binary.BigEndian.Uint64(raw[:headerLen]))
	if exp > 0 && now.UnixNano() >= exp {
		return nil, false
	}
	return append([]byte(nil), raw[headerLen:]...), true
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m, err := p.GetMulti(ctx, []string{key})
	if err != nil {
		return nil, false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

func (p *Provider) GetMulti(_ context.Context, keys []string) (map[string][]byte, error) {
	now := p.clock.Now()
	out := make(map[string][]byte, len(keys))
	var stale []string
	err := p.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(p.bucket)
		for _, k := range keys {
			raw := b.Get([]byte(k))
			if raw == nil {
				continue
			}
			if v, ok := p.unframe(raw, now); ok {
				out[k] = v
			} else {
				stale = append(stale, k)
			}
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(stale) > 0 {
		_ = p.deleteStale(stale, now)
	}
	return out, nil
}

// deleteStale removes keys that are still expired at now. A key rewritten
// since the read transaction is left alone.
func (p *Provider) deleteStale(keys []string, now time.Time) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(p.bucket)
		for _, k := range keys {
			raw := b.Get([]byte(k))
			if raw == nil {
				continue
			}
			if _, ok := p.unframe(raw, now); ok {
				continue
			}
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Provider) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := p.Get(ctx, key)
	return ok, err
}

func (p *Provider) Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (bool, error) {
	if err := p.SetMulti(ctx, []pr.Entry{{Key: key, Value: value, Cost: cost, TTL: ttl}}); err != nil {
		return false, err
	}
	return true, nil
}

// SetMulti writes every entry in a single transaction.
func (p *Provider) SetMulti(_ context.Context, entries []pr.Entry) error {
	err := p.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(p.bucket)
		for _, e := range entries {
			if err := b.Put([]byte(e.Key), p.frame(e.Value, e.TTL)); err != nil {
				return err
			}
		}
		return nil
	})
	return classify(err)
}

func (p *Provider) Del(_ context.Context, key string) error {
	return classify(p.deleteKeys([]string{key}))
}

func (p *Provider) DelMulti(_ context.Context, keys []string) error {
	return classify(p.deleteKeys(keys))
}

func (p *Provider) deleteKeys(keys []string) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(p.bucket)
		for _, k := range keys {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear drops and recreates the bucket.
func (p *Provider) Clear(_ context.Context) error {
	err := p.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(p.bucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(p.bucket)
		return err
	})
	return classify(err)
}

func (p *Provider) Close(_ context.Context) error {
	return p.db.Close()
}
