package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	pr "github.com/QuickenLoans/mcp-cache/provider"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	p, err := New(Config{Client: client, CloseClient: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p, mr
}

func TestNilClient(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNilClient) {
		t.Fatalf("want ErrNilClient, got %v", err)
	}
}

func TestGetSetDel(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestRedis(t)

	if _, ok, err := p.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("miss expected: ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "k", []byte("v"), 0, 10*time.Second); !ok || err != nil {
		t.Fatalf("Set ok=%v err=%v", ok, err)
	}
	if ttl := mr.TTL("k"); ttl != 10*time.Second {
		t.Fatalf("native TTL=%v want 10s", ttl)
	}
	if v, ok, _ := p.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Fatalf("Get v=%q ok=%v", v, ok)
	}
	if ok, _ := p.Exists(ctx, "k"); !ok {
		t.Fatalf("Exists should be true")
	}
	mr.FastForward(10 * time.Second)
	if ok, _ := p.Exists(ctx, "k"); ok {
		t.Fatalf("key should expire natively")
	}

	_, _ = p.Set(ctx, "forever", []byte("v"), 0, 0)
	if ttl := mr.TTL("forever"); ttl != 0 {
		t.Fatalf("ttl<=0 should not set expiry, got %v", ttl)
	}
	if err := p.Del(ctx, "forever"); err != nil {
		t.Fatal(err)
	}
	if mr.Exists("forever") {
		t.Fatalf("Del did not remove key")
	}
}

func TestBatch(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestRedis(t)

	err := p.SetMulti(ctx, []pr.Entry{
		{Key: "a", Value: []byte("1"), TTL: time.Minute},
		{Key: "b", Value: []byte("2")},
	})
	if err != nil {
		t.Fatalf("SetMulti: %v", err)
	}
	if ttl := mr.TTL("a"); ttl != time.Minute {
		t.Fatalf("a TTL=%v", ttl)
	}
	got, err := p.GetMulti(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("GetMulti: %v", err)
	}
	if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Fatalf("GetMulti=%v", got)
	}
	if err := p.DelMulti(ctx, []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	if mr.Exists("a") || mr.Exists("b") {
		t.Fatalf("DelMulti left keys behind")
	}
}

func TestClearFlushesDB(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestRedis(t)
	_ = mr.Set("foreign", "x")
	_, _ = p.Set(ctx, "k", []byte("v"), 0, 0)

	if err := p.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("FlushDB left %v", mr.Keys())
	}
}

func TestUnavailableIsClassified(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestRedis(t)
	mr.Close()

	_, _, err := p.Get(ctx, "k")
	if err == nil {
		t.Fatalf("expected an error with the server gone")
	}
	if !errors.Is(err, pr.ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
}
