// Package metrics exposes Prometheus collectors for the dataset cache and exports.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	loadErrors   *prometheus.CounterVec
	exports      *prometheus.CounterVec
	emptyResults prometheus.Counter
	trendErrors  prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesdash",
			Name:      "dataset_cache_hits_total",
			Help:      "Dataset requests served from the cache.",
		}, []string{"source"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesdash",
			Name:      "dataset_cache_misses_total",
			Help:      "Dataset requests that had to read the source.",
		}, []string{"source"}),
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salesdash",
			Name:      "dataset_load_seconds",
			Help:      "Time spent reading and parsing the source.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		loadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesdash",
			Name:      "dataset_load_errors_total",
			Help:      "Failed source loads.",
		}, []string{"source"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesdash",
			Name:      "exports_total",
			Help:      "Downloads served, by format.",
		}, []string{"format"}),
		emptyResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salesdash",
			Name:      "empty_results_total",
			Help:      "Filter runs that left no rows.",
		}),
		trendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salesdash",
			Name:      "trend_errors_total",
			Help:      "Trend computations that failed.",
		}),
	}
	reg.MustRegister(m.cacheHits, m.cacheMisses, m.loadDuration, m.loadErrors,
		m.exports, m.emptyResults, m.trendErrors)
	return m
}

func (m *Metrics) CacheHit(source string) {
	m.cacheHits.WithLabelValues(source).Inc()
}

func (m *Metrics) CacheMiss(source string) {
	m.cacheMisses.WithLabelValues(source).Inc()
}

func (m *Metrics) LoadFinished(source string, elapsed time.Duration, err error) {
	m.loadDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if err != nil {
		m.loadErrors.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) Exported(format string) {
	m.exports.WithLabelValues(format).Inc()
}

func (m *Metrics) EmptyResult() {
	m.emptyResults.Inc()
}

func (m *Metrics) TrendFailed() {
	m.trendErrors.Inc()
}
