// Package httptransport assembles the gateway's HTTP surface: the three
// verification endpoints plus health and metrics. Business logic lives in the
// feature packages; this layer only wires middleware and routes.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"proofgate/internal/platform/metrics"
	"proofgate/pkg/platform/httputil"
	"proofgate/pkg/platform/middleware/apikey"
	"proofgate/pkg/platform/middleware/metadata"
	"proofgate/pkg/platform/middleware/requestid"
	"proofgate/pkg/platform/middleware/requesttime"
)

// Registrar is a feature handler that mounts its routes on a chi router.
type Registrar interface {
	Register(r chi.Router)
}

// Deps collects everything the router needs.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	Session Registrar
	Verify  Registrar
	Profile Registrar

	// APIKeyHash gates POST /session when non-empty.
	APIKeyHash string

	// Audit receives API key rejection events; may be nil.
	Audit apikey.Auditor

	// HealthChecks run on GET /healthz; a name maps to its probe.
	HealthChecks map[string]func(ctx context.Context) error
}

// NewRouter builds the gateway router with the full middleware chain.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(observe(deps.Metrics))

	r.Get("/healthz", handleHealth(deps))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Relier-facing session creation, optionally API-key gated. The verify
	// endpoint is prover-facing and stays open: the proof itself is the
	// credential.
	r.Group(func(r chi.Router) {
		r.Use(apikey.Middleware(deps.APIKeyHash, deps.Audit))
		deps.Session.Register(r)
	})

	deps.Verify.Register(r)
	deps.Profile.Register(r)

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		overall := "ok"
		status := http.StatusOK
		checks := make(map[string]string, len(deps.HealthChecks))
		for name, probe := range deps.HealthChecks {
			if err := probe(ctx); err != nil {
				checks[name] = "unhealthy"
				overall = "degraded"
				status = http.StatusServiceUnavailable
				deps.Logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
				continue
			}
			checks[name] = "ok"
		}

		httputil.WriteJSON(w, status, map[string]any{
			"status": overall,
			"checks": checks,
		})
	}
}

// observe records request counts and latency per route pattern and status.
func observe(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(route, strconv.Itoa(ww.status), time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
