package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway-wide Prometheus metrics. Feature modules carry
// their own metrics packages; this covers the shared HTTP surface.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
	SessionsCreated prometheus.Counter
}

// New creates and registers all gateway-level Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "proofgate_http_requests_total",
			Help: "Total HTTP requests by route and status class",
		}, []string{"route", "status"}),

		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "proofgate_sessions_created_total",
			Help: "Total verification sessions minted",
		}),

		HTTPLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "proofgate_http_request_duration_seconds",
			Help:    "HTTP request duration by route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(route, status).Inc()
		m.HTTPLatency.WithLabelValues(route).Observe(d.Seconds())
	}
}

// IncrementSessionsCreated records one minted session.
func (m *Metrics) IncrementSessionsCreated() {
	if m != nil {
		m.SessionsCreated.Inc()
	}
}
