package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofgate/pkg/platform/audit"
	"proofgate/pkg/platform/middleware/apikey"
)

type stubRegistrar struct {
	method string
	path   string
}

func (s stubRegistrar) Register(r chi.Router) {
	r.MethodFunc(s.method, s.path, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func testDeps() Deps {
	return Deps{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Session: stubRegistrar{method: http.MethodPost, path: "/session"},
		Verify:  stubRegistrar{method: http.MethodPost, path: "/verify"},
		Profile: stubRegistrar{method: http.MethodGet, path: "/profile/{subjectKey}"},
	}
}

func TestRouterMountsEndpoints(t *testing.T) {
	router := NewRouter(testDeps())

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/session"},
		{http.MethodPost, "/verify"},
		{http.MethodGet, "/profile/alice"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code, "%s %s", tt.method, tt.path)
	}
}

func TestRouterSetsRequestIDHeader(t *testing.T) {
	router := NewRouter(testDeps())

	req := httptest.NewRequest(http.MethodPost, "/verify", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouterServesMetrics(t *testing.T) {
	router := NewRouter(testDeps())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzReportsChecks(t *testing.T) {
	deps := testDeps()
	deps.HealthChecks = map[string]func(ctx context.Context) error{
		"redis":    func(context.Context) error { return nil },
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	}
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Checks["redis"])
	assert.Equal(t, "unhealthy", body.Checks["postgres"])
}

func TestHealthzOKWithoutChecks(t *testing.T) {
	router := NewRouter(testDeps())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionEndpointRequiresAPIKeyWhenConfigured(t *testing.T) {
	hash, err := apikey.HashKey("relier-secret")
	require.NoError(t, err)

	deps := testDeps()
	deps.APIKeyHash = hash
	router := NewRouter(deps)

	// No key.
	req := httptest.NewRequest(http.MethodPost, "/session", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong key.
	req = httptest.NewRequest(http.MethodPost, "/session", nil)
	req.Header.Set(apikey.Header, "wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Right key.
	req = httptest.NewRequest(http.MethodPost, "/session", nil)
	req.Header.Set(apikey.Header, "relier-secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// The verify endpoint stays open regardless.
	req = httptest.NewRequest(http.MethodPost, "/verify", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

type capturingAuditor struct {
	events []audit.Event
}

func (a *capturingAuditor) Emit(_ context.Context, event audit.Event) error {
	a.events = append(a.events, event)
	return nil
}

func TestAPIKeyRejectionIsAudited(t *testing.T) {
	hash, err := apikey.HashKey("relier-secret")
	require.NoError(t, err)

	auditor := &capturingAuditor{}
	deps := testDeps()
	deps.APIKeyHash = hash
	deps.Audit = auditor
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodPost, "/session", nil)
	req.Header.Set(apikey.Header, "wrong")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	require.Len(t, auditor.events, 1)
	event := auditor.events[0]
	assert.Equal(t, string(audit.EventAPIKeyRejected), event.Action)
	assert.Equal(t, audit.CategorySecurity, event.Category)
	assert.Equal(t, "invalid_key", event.Reason)
	assert.NotEmpty(t, event.RequestID)

	req = httptest.NewRequest(http.MethodPost, "/session", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	require.Len(t, auditor.events, 2)
	assert.Equal(t, "missing_key", auditor.events[1].Reason)

	// An accepted request emits nothing.
	req = httptest.NewRequest(http.MethodPost, "/session", nil)
	req.Header.Set(apikey.Header, "relier-secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, auditor.events, 2)
}
