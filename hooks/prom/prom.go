// Package promhooks exports cache events as Prometheus counters.
package promhooks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	mcpcache "github.com/QuickenLoans/mcp-cache"
)

type Hooks struct {
	selfHeal      *prometheus.CounterVec
	early         prometheus.Counter
	earlyLeft     prometheus.Histogram
	setRejected   *prometheus.CounterVec
	backendErrors *prometheus.CounterVec
	genErrors     *prometheus.CounterVec
}

var _ mcpcache.Hooks = (*Hooks)(nil)

// New creates the collectors and registers them with reg (nil =>
// prometheus.DefaultRegisterer). namespace prefixes every metric name.
func New(reg prometheus.Registerer, namespace string) (*Hooks, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	h := &Hooks{
		selfHeal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_self_heal_total",
				Help:      "Entries deleted on read, by reason",
			},
			[]string{"reason"}, // corrupt, codec_mismatch, value_decode, expired
		),
		early: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_early_expirations_total",
				Help:      "Reads that judged a live entry expired (stampede protection)",
			},
		),
		earlyLeft: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cache_early_expiration_remaining_seconds",
				Help:      "Real time left on entries expired early",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 300},
			},
		),
		setRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_provider_set_rejected_total",
				Help:      "Writes the provider dropped under pressure",
			},
			[]string{"batch"},
		),
		backendErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_backend_errors_total",
				Help:      "Provider failures, by cache operation",
			},
			[]string{"op"},
		),
		genErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_generation_errors_total",
				Help:      "Generation store failures",
			},
			[]string{"kind"}, // load, bump
		),
	}
	for _, c := range []prometheus.Collector{h.selfHeal, h.early, h.earlyLeft, h.setRejected, h.backendErrors, h.genErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) SelfHeal(_ string, reason string) { h.selfHeal.WithLabelValues(reason).Inc() }

func (h *Hooks) EarlyExpiration(_ string, remaining time.Duration) {
	h.early.Inc()
	h.earlyLeft.Observe(remaining.Seconds())
}

func (h *Hooks) ProviderSetRejected(_ string, isBatch bool) {
	label := "false"
	if isBatch {
		label = "true"
	}
	h.setRejected.WithLabelValues(label).Inc()
}

func (h *Hooks) BackendError(op string, _ error) { h.backendErrors.WithLabelValues(op).Inc() }
func (h *Hooks) GenLoadError(error)              { h.genErrors.WithLabelValues("load").Inc() }
func (h *Hooks) GenBumpError(error)              { h.genErrors.WithLabelValues("bump").Inc() }
