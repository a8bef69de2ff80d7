package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	upstreamCalls *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_cache_hits_total",
				Help: "Cache hits by tier and request kind",
			},
			[]string{"tier", "kind"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_cache_misses_total",
				Help: "Cache misses by tier and request kind",
			},
			[]string{"tier", "kind"},
		),
		upstreamCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_upstream_calls_total",
				Help: "Upstream provider calls by operation and result",
			},
			[]string{"operation", "result"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockpulse_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCacheHit records a hit on a cache tier for a request kind.
func (r *Recorder) RecordCacheHit(tier, kind string) {
	r.cacheHits.WithLabelValues(tier, kind).Inc()
}

// RecordCacheMiss records a miss on a cache tier for a request kind.
func (r *Recorder) RecordCacheMiss(tier, kind string) {
	r.cacheMisses.WithLabelValues(tier, kind).Inc()
}

// RecordUpstreamCall records one upstream provider call and its outcome.
func (r *Recorder) RecordUpstreamCall(operation, result string) {
	r.upstreamCalls.WithLabelValues(operation, result).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
