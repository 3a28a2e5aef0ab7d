package memory

import (
	"context"
	"testing"
	"time"

	"github.com/QuickenLoans/mcp-cache/clock"
	pr "github.com/QuickenLoans/mcp-cache/provider"
)

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	p := New(Config{})
	t.Cleanup(func() { _ = p.Close(ctx) })

	if _, ok, err := p.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("miss expected: ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "k", []byte("v"), 1, 0); !ok || err != nil {
		t.Fatalf("Set ok=%v err=%v", ok, err)
	}
	if v, ok, _ := p.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Fatalf("Get v=%q ok=%v", v, ok)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del of missing key should not error: %v", err)
	}
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("Get after Del should miss")
	}
}

func TestSetCopiesValue(t *testing.T) {
	ctx := context.Background()
	p := New(Config{})
	buf := []byte("abc")
	_, _ = p.Set(ctx, "k", buf, 1, 0)
	buf[0] = 'X'
	if v, _, _ := p.Get(ctx, "k"); string(v) != "abc" {
		t.Fatalf("stored value aliased caller buffer: %q", v)
	}
}

func TestNativeTTL(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2015, 8, 15, 12, 0, 0, 0, time.UTC))
	p := New(Config{Clock: clk})

	_, _ = p.Set(ctx, "k", []byte("v"), 1, 10*time.Second)
	clk.Advance(9 * time.Second)
	if ok, _ := p.Exists(ctx, "k"); !ok {
		t.Fatalf("entry expired early")
	}
	clk.Advance(time.Second)
	if ok, _ := p.Exists(ctx, "k"); ok {
		t.Fatalf("entry should expire at its deadline")
	}
	if p.Len() != 0 {
		t.Fatalf("expired entry not dropped on read, len=%d", p.Len())
	}
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(time.Unix(0, 0))
	p := New(Config{Clock: clk})

	_, _ = p.Set(ctx, "short", []byte("v"), 1, time.Second)
	_, _ = p.Set(ctx, "forever", []byte("v"), 1, 0)
	clk.Advance(time.Minute)

	if n := p.Sweep(); n != 1 {
		t.Fatalf("Sweep removed %d want 1", n)
	}
	if p.Len() != 1 {
		t.Fatalf("Len=%d want 1", p.Len())
	}
}

func TestBatchAndClear(t *testing.T) {
	ctx := context.Background()
	p := New(Config{CleanupInterval: time.Hour})
	t.Cleanup(func() { _ = p.Close(ctx) })

	err := p.SetMulti(ctx, []pr.Entry{
		{Key: "a", Value: []byte("1")},
		{Key: "b", Value: []byte("2")},
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := p.GetMulti(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Fatalf("GetMulti=%v", got)
	}
	if err := p.DelMulti(ctx, []string{"a"}); err != nil {
		t.Fatal(err)
	}
	if ok, _ := p.Exists(ctx, "a"); ok {
		t.Fatalf("a should be deleted")
	}
	if err := p.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if p.Len() != 0 {
		t.Fatalf("Clear left %d entries", p.Len())
	}
}

func TestCloseIdempotent(t *testing.T) {
	p := New(Config{CleanupInterval: time.Millisecond})
	if err := p.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
}
