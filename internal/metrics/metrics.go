package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the fetch/compute pipeline.
type Metrics struct {
	FetchTotal  prometheus.Counter
	FetchErrors prometheus.Counter
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	RelayAttempts *prometheus.CounterVec // labels: provider
	RelayFailures *prometheus.CounterVec // labels: provider

	ComputeDur prometheus.Histogram
	RefreshDur prometheus.Histogram
}

// New registers and returns all metrics on the default registry.
func New() *Metrics {
	m := &Metrics{
		FetchTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockscope_fetch_total",
			Help: "Total reconcile fetches attempted",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockscope_fetch_errors_total",
			Help: "Total reconcile fetches that exhausted all upstream options",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockscope_cache_hits_total",
			Help: "Reconcile calls that found a cached series",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockscope_cache_misses_total",
			Help: "Reconcile calls with no cached series",
		}),
		RelayAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockscope_relay_attempts_total",
			Help: "Upstream attempts per relay provider",
		}, []string{"provider"}),
		RelayFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockscope_relay_failures_total",
			Help: "Failed upstream attempts per relay provider",
		}, []string{"provider"}),
		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockscope_indicator_compute_seconds",
			Help:    "Indicator recomputation duration",
			Buckets: prometheus.DefBuckets,
		}),
		RefreshDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockscope_refresh_batch_seconds",
			Help:    "Full watchlist refresh duration",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		}),
	}

	prometheus.MustRegister(
		m.FetchTotal, m.FetchErrors, m.CacheHits, m.CacheMisses,
		m.RelayAttempts, m.RelayFailures, m.ComputeDur, m.RefreshDur,
	)
	return m
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
