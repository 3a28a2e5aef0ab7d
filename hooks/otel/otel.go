// Package otelhooks records cache events as OpenTelemetry metrics.
package otelhooks

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	mcpcache "github.com/QuickenLoans/mcp-cache"
)

// ScopeName is the instrumentation scope used when a MeterProvider is given.
const ScopeName = "github.com/QuickenLoans/mcp-cache"

type Hooks struct {
	selfHeal    metric.Int64Counter
	early       metric.Int64Counter
	earlyLeft   metric.Float64Histogram
	setRejected metric.Int64Counter
	backendErrs metric.Int64Counter
	genErrs     metric.Int64Counter
}

var _ mcpcache.Hooks = (*Hooks)(nil)

// NewFromProvider creates hooks on mp.Meter(ScopeName).
func NewFromProvider(mp metric.MeterProvider) (*Hooks, error) {
	return New(mp.Meter(ScopeName))
}

func New(meter metric.Meter) (*Hooks, error) {
	var (
		h   Hooks
		err error
	)
	if h.selfHeal, err = meter.Int64Counter(
		"cache.self_heal",
		metric.WithDescription("Entries deleted on read"),
		metric.WithUnit("{entry}"),
	); err != nil {
		return nil, err
	}
	if h.early, err = meter.Int64Counter(
		"cache.early_expiration",
		metric.WithDescription("Reads that judged a live entry expired"),
		metric.WithUnit("{read}"),
	); err != nil {
		return nil, err
	}
	if h.earlyLeft, err = meter.Float64Histogram(
		"cache.early_expiration.remaining",
		metric.WithDescription("Real time left on entries expired early"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if h.setRejected, err = meter.Int64Counter(
		"cache.provider.set_rejected",
		metric.WithDescription("Writes the provider dropped under pressure"),
		metric.WithUnit("{write}"),
	); err != nil {
		return nil, err
	}
	if h.backendErrs, err = meter.Int64Counter(
		"cache.backend.errors",
		metric.WithDescription("Provider failures"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}
	if h.genErrs, err = meter.Int64Counter(
		"cache.generation.errors",
		metric.WithDescription("Generation store failures"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}
	return &h, nil
}

// hooks have no caller context; exporters only need one for cancellation.
var bg = context.Background()

func (h *Hooks) SelfHeal(_ string, reason string) {
	h.selfHeal.Add(bg, 1, metric.WithAttributes(attribute.String("cache.reason", reason)))
}

func (h *Hooks) EarlyExpiration(_ string, remaining time.Duration) {
	h.early.Add(bg, 1)
	h.earlyLeft.Record(bg, remaining.Seconds())
}

func (h *Hooks) ProviderSetRejected(_ string, isBatch bool) {
	h.setRejected.Add(bg, 1, metric.WithAttributes(attribute.Bool("cache.batch", isBatch)))
}

func (h *Hooks) BackendError(op string, _ error) {
	h.backendErrs.Add(bg, 1, metric.WithAttributes(attribute.String("cache.op", op)))
}

func (h *Hooks) GenLoadError(error) {
	h.genErrs.Add(bg, 1, metric.WithAttributes(attribute.String("cache.gen.op", "load")))
}

func (h *Hooks) GenBumpError(error) {
	h.genErrs.Add(bg, 1, metric.WithAttributes(attribute.String("cache.gen.op", "bump")))
}
