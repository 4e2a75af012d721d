// Package metrics exposes Prometheus instrumentation for the cache engine,
// the fetch gateway, and the persistent store.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CacheHitsTotal counts get_many lookups resolved from the store without
	// a network fetch, broken down by kind and freshness.
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metacache_hits_total",
			Help: "Total number of cache keys resolved from the store, by kind and freshness",
		},
		[]string{"kind", "freshness"}, // freshness: fresh | stale
	)

	CacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metacache_misses_total",
			Help: "Total number of cache keys that required a synchronous fetch, by kind",
		},
		[]string{"kind"},
	)

	BackgroundRefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metacache_background_refreshes_total",
			Help: "Total number of background revalidation tasks dispatched, by kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: refreshed | failed
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metacache_fetch_duration_seconds",
			Help:    "Time taken by one live fetch of a batch of keys, by kind",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	FetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metacache_fetch_errors_total",
			Help: "Total number of gateway fetch failures, by error class",
		},
		[]string{"class"}, // class: offline | other
	)

	StoreOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metacache_store_operation_duration_seconds",
			Help:    "Time taken by a store operation, by operation name",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation: lookup | upsert | prune
	)

	StoreRowsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "metacache_store_rows_total",
			Help: "Approximate row count in the cache table, by kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		CacheHitsTotal,
		CacheMissesTotal,
		BackgroundRefreshesTotal,
		FetchDuration,
		FetchErrorsTotal,
		StoreOperationDuration,
		StoreRowsTotal,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations against a histogram.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer, starting now.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed duration to a labeled histogram.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
