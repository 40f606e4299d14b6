// Package metrics exposes Prometheus metrics for the profile cache.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the profile cache instruments.
type Metrics struct {
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	UpstreamLatency prometheus.Histogram
}

// New registers the profile metrics with the default registry.
func New() *Metrics {
	return &Metrics{
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "proofgate_profile_cache_hits_total",
			Help: "Profile cache lookups served without an upstream fetch.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "proofgate_profile_cache_misses_total",
			Help: "Profile cache lookups that required an upstream fetch.",
		}),
		UpstreamLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "proofgate_profile_upstream_duration_seconds",
			Help:    "Latency of upstream profile fetches.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// IncrementHit records a cache hit.
func (m *Metrics) IncrementHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// IncrementMiss records a cache miss.
func (m *Metrics) IncrementMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

// ObserveUpstreamLatency records one upstream fetch duration.
func (m *Metrics) ObserveUpstreamLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamLatency.Observe(d.Seconds())
}
