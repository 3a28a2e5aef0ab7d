package ristretto

import (
	"context"
	"errors"
	"testing"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{NumCounters: 1e4, MaxCost: 1 << 20, BufferItems: 64, SyncWrites: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestInvalidConfig(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("want ErrInvalidConfig, got %v", err)
	}
}

func TestSetGetDelClear(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	if ok, err := p.Set(ctx, "k", []byte("v"), 1, 0); !ok || err != nil {
		t.Fatalf("Set ok=%v err=%v", ok, err)
	}
	if v, ok, _ := p.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Fatalf("Get v=%q ok=%v", v, ok)
	}
	if ok, _ := p.Exists(ctx, "k"); !ok {
		t.Fatalf("Exists should report true")
	}
	_ = p.Del(ctx, "k")
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("Get after Del should miss")
	}

	_, _ = p.Set(ctx, "a", []byte("1"), 1, 0)
	_ = p.Clear(ctx)
	if ok, _ := p.Exists(ctx, "a"); ok {
		t.Fatalf("Clear should drop every entry")
	}
}
