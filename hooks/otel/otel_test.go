package otelhooks

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	mcpcache "github.com/QuickenLoans/mcp-cache"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumFor(t *testing.T, rm metricdata.ResourceMetrics, name string, attr attribute.KeyValue) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		t.Fatalf("%s not found", name)
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if attr.Key == "" {
			total += dp.Value
			continue
		}
		if v, ok := dp.Attributes.Value(attr.Key); ok && v == attr.Value {
			total += dp.Value
		}
	}
	return total
}

func TestHooksRecordMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	h, err := NewFromProvider(mp)
	if err != nil {
		t.Fatal(err)
	}

	h.SelfHeal("k", mcpcache.HealCodecMismatch)
	h.EarlyExpiration("k", 2*time.Second)
	h.EarlyExpiration("k", 4*time.Second)
	h.ProviderSetRejected("k", false)
	h.BackendError("set", errors.New("x"))
	h.GenLoadError(errors.New("x"))

	rm := collect(t, reader)
	if got := sumFor(t, rm, "cache.self_heal", attribute.String("cache.reason", mcpcache.HealCodecMismatch)); got != 1 {
		t.Errorf("self_heal = %d", got)
	}
	if got := sumFor(t, rm, "cache.early_expiration", attribute.KeyValue{}); got != 2 {
		t.Errorf("early_expiration = %d", got)
	}
	if got := sumFor(t, rm, "cache.backend.errors", attribute.String("cache.op", "set")); got != 1 {
		t.Errorf("backend.errors = %d", got)
	}
	if got := sumFor(t, rm, "cache.generation.errors", attribute.String("cache.gen.op", "load")); got != 1 {
		t.Errorf("generation.errors = %d", got)
	}

	hist := findMetric(rm, "cache.early_expiration.remaining")
	if hist == nil {
		t.Fatal("remaining histogram not found")
	}
	data, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok || len(data.DataPoints) != 1 || data.DataPoints[0].Count != 2 || data.DataPoints[0].Sum != 6 {
		t.Fatalf("histogram = %+v", hist.Data)
	}
}
