package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofgate/internal/session"
	"proofgate/pkg/platform/audit"
)

type recordingAuditor struct {
	events []audit.Event
}

func (a *recordingAuditor) Emit(_ context.Context, event audit.Event) error {
	a.events = append(a.events, event)
	return nil
}

func newTestHandler(t *testing.T) (http.Handler, *recordingAuditor) {
	t.Helper()

	broker, err := session.NewBroker("https://gateway.example.com/verify")
	require.NoError(t, err)

	auditor := &recordingAuditor{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(broker, auditor, logger, nil).Register(r)
	return r, auditor
}

func postSession(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/session", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleCreateReturnsDescriptor(t *testing.T) {
	h, auditor := newTestHandler(t)

	rec := postSession(t, h, `{
		"scopeId": "acme-shop",
		"requestedDisclosures": ["minimum_age", "nationality"],
		"attestationKinds": ["passport"]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "acme-shop", resp.ScopeID)
	assert.Equal(t, "https://gateway.example.com/verify", resp.Endpoint)
	assert.NotEmpty(t, resp.CorrelationUserID)

	require.Len(t, auditor.events, 1)
	event := auditor.events[0]
	assert.Equal(t, string(audit.EventSessionCreated), event.Action)
	assert.Equal(t, audit.CategoryOperations, event.Category)
	assert.Equal(t, "acme-shop", event.ScopeID)
	assert.Equal(t, resp.CorrelationUserID, event.CorrelationID)
}

func TestHandleCreateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "body is not JSON", body: "{broken"},
		{name: "missing scope id", body: `{"requestedDisclosures": ["minimum_age"]}`},
		{name: "unknown disclosure field", body: `{"scopeId": "acme-shop", "requestedDisclosures": ["shoe_size"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, auditor := newTestHandler(t)

			rec := postSession(t, h, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var envelope map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.Equal(t, "ConfigurationError", envelope["reasonCode"])
			assert.Empty(t, auditor.events, "rejected requests must not emit a session event")
		})
	}
}
