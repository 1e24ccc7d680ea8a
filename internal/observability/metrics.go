package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts settlement engine activity. The registry is exposed so a
// host application can mount it on its own handler.
type Metrics struct {
	Registry *prometheus.Registry

	SettlementRuns     prometheus.Counter
	SettlementFailures prometheus.Counter
	SettlementDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		Registry: registry,
		SettlementRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "librelandlord_settlement_runs_total",
			Help: "Number of account period settlements attempted.",
		}),
		SettlementFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "librelandlord_settlement_failures_total",
			Help: "Number of account period settlements that failed.",
		}),
		SettlementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "librelandlord_settlement_duration_seconds",
			Help:    "Wall time of one account period settlement.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
