package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verifier module.
type Metrics struct {
	// Verification outcomes by terminal state and reason
	Outcomes *prometheus.CounterVec

	// Cryptographic check latency
	CryptoLatency prometheus.Histogram

	// Overall verification latency including policy evaluation
	VerifyLatency prometheus.Histogram
}

// New creates a new Metrics instance with all verifier metrics registered.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "proofgate_verifier_outcomes_total",
			Help: "Total verification outcomes by terminal state and reason",
		}, []string{"state", "reason"}), // state: "policy_allowed", "policy_denied", "crypto_invalid", "malformed"

		CryptoLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "proofgate_verifier_crypto_duration_seconds",
			Help:    "Duration of the cryptographic proof check",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "proofgate_verifier_verify_duration_seconds",
			Help:    "Duration of full verification including policy evaluation",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementOutcome records a terminal verification state.
func (m *Metrics) IncrementOutcome(state, reason string) {
	if m != nil {
		m.Outcomes.WithLabelValues(state, reason).Inc()
	}
}

// ObserveCryptoLatency records the duration of the proof check.
func (m *Metrics) ObserveCryptoLatency(d time.Duration) {
	if m != nil {
		m.CryptoLatency.Observe(d.Seconds())
	}
}

// ObserveVerifyLatency records the total verification duration.
func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}
