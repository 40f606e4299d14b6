package httputil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "proofgate/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON body: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %v", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatal("internal error must not carry a description")
		}
	})

	t.Run("coded error carries description and details", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeValidation, "subject key is required").WithDetails("subjectKey"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON body: %v", err)
		}
		if body["error"] != "validation_error" {
			t.Fatalf("expected error code validation_error, got %v", body["error"])
		}
		if body["error_description"] != "subject key is required" {
			t.Fatalf("unexpected description: %v", body["error_description"])
		}
	})

	t.Run("unclassified error defaults to internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, http.ErrBodyNotAllowed)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}

func TestDecodeBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("decodes valid JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"alice"}`))
		var p payload
		if err := DecodeBody(req, &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name != "alice" {
			t.Fatalf("expected alice, got %q", p.Name)
		}
	})

	t.Run("empty body classified as validation error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		var p payload
		err := DecodeBody(req, &p)
		if !dErrors.HasCode(err, dErrors.CodeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("invalid JSON classified as validation error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{broken"))
		var p payload
		err := DecodeBody(req, &p)
		if !dErrors.HasCode(err, dErrors.CodeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("oversized body rejected", func(t *testing.T) {
		huge := `{"name":"` + strings.Repeat("x", maxBodyBytes+1) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(huge))
		var p payload
		if err := DecodeBody(req, &p); err == nil {
			t.Fatal("expected an error for an oversized body")
		}
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("runs the validate hook", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":""}`))

		parsed, ok := DecodeAndPrepare[validatedPayload](w, req, nil)
		if ok {
			t.Fatal("expected validation failure")
		}
		if parsed != nil {
			t.Fatal("expected nil payload on failure")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("returns parsed payload on success", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"alice"}`))

		parsed, ok := DecodeAndPrepare[validatedPayload](w, req, nil)
		if !ok {
			t.Fatalf("expected success, response: %s", w.Body.String())
		}
		if parsed.Name != "alice" {
			t.Fatalf("expected alice, got %q", parsed.Name)
		}
	})

	t.Run("failures go through the custom error writer", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{broken"))

		var written error
		_, ok := DecodeAndPrepare[validatedPayload](w, req, func(w http.ResponseWriter, err error) {
			written = err
			WriteJSON(w, http.StatusTeapot, map[string]string{"custom": "envelope"})
		})
		if ok {
			t.Fatal("expected decode failure")
		}
		if !dErrors.HasCode(written, dErrors.CodeValidation) {
			t.Fatalf("expected validation error, got %v", written)
		}
		if w.Code != http.StatusTeapot {
			t.Fatalf("expected the custom writer's status, got %d", w.Code)
		}
	})
}

type validatedPayload struct {
	Name string `json:"name"`
}

func (p *validatedPayload) Validate() error {
	if p.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}
