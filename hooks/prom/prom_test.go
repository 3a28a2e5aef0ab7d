package promhooks

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	mcpcache "github.com/QuickenLoans/mcp-cache"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := New(reg, "app")
	if err != nil {
		t.Fatal(err)
	}

	h.SelfHeal("k", mcpcache.HealCorrupt)
	h.SelfHeal("k", mcpcache.HealCorrupt)
	h.SelfHeal("k", mcpcache.HealExpired)
	h.EarlyExpiration("k", 3*time.Second)
	h.ProviderSetRejected("k", true)
	h.BackendError("get", errors.New("x"))
	h.GenBumpError(errors.New("x"))

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"self_heal corrupt", testutil.ToFloat64(h.selfHeal.WithLabelValues(mcpcache.HealCorrupt)), 2},
		{"self_heal expired", testutil.ToFloat64(h.selfHeal.WithLabelValues(mcpcache.HealExpired)), 1},
		{"early", testutil.ToFloat64(h.early), 1},
		{"rejected batch", testutil.ToFloat64(h.setRejected.WithLabelValues("true")), 1},
		{"backend get", testutil.ToFloat64(h.backendErrors.WithLabelValues("get")), 1},
		{"gen bump", testutil.ToFloat64(h.genErrors.WithLabelValues("bump")), 1},
		{"gen load", testutil.ToFloat64(h.genErrors.WithLabelValues("load")), 0},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s = %v want %v", c.name, c.got, c.want)
		}
	}

	if n := testutil.CollectAndCount(h.earlyLeft); n != 1 {
		t.Fatalf("histogram series = %d", n)
	}
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg, "app"); err != nil {
		t.Fatal(err)
	}
	if _, err := New(reg, "app"); err == nil {
		t.Fatalf("second registration under the same namespace should fail")
	}
}
