// Package httputil centralizes JSON encoding, request decoding, and domain
// error translation so handlers stay thin and every endpoint speaks the same
// envelope for a given failure class.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "proofgate/pkg/domain-errors"
)

// maxBodyBytes bounds request bodies; proof blobs are large but bounded.
const maxBodyBytes = 1 << 20

// Validatable is implemented by request DTOs. Validate runs after JSON
// decoding and before any business logic, producing the uniform
// classification for bad input.
type Validatable interface {
	Validate() error
}

// WriteJSON encodes v with the given status. Encoding failures are swallowed
// because the status line has already been written.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the standard JSON error
// envelope. Internal errors omit the description so nothing leaks.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]any{
		"error": string(code),
	}
	if code != dErrors.CodeInternal {
		body["error_description"] = dErrors.MessageOf(err)
		if details := dErrors.DetailsOf(err); len(details) > 0 {
			body["details"] = details
		}
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}

// ErrorWriter writes the failure envelope for a rejected request. Handlers
// with a bespoke envelope (the session endpoint) pass their own.
type ErrorWriter func(w http.ResponseWriter, err error)

// DecodeAndPrepare decodes the request body into T and runs its Validate
// hook when *T implements Validatable. On failure it writes the error
// response through writeErr (WriteError when nil) and returns ok=false; the
// handler should simply return.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, writeErr ErrorWriter) (*T, bool) {
	if writeErr == nil {
		writeErr = WriteError
	}
	req := new(T)
	if err := DecodeBody(r, req); err != nil {
		writeErr(w, err)
		return nil, false
	}
	if v, ok := any(req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			writeErr(w, err)
			return nil, false
		}
	}
	return req, true
}

// DecodeBody decodes a JSON body into dst with a size cap. Callers that need
// a non-standard error envelope (the verify endpoint) use this directly.
func DecodeBody(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.New(dErrors.CodeValidation, "request body is required")
		}
		return dErrors.Wrap(dErrors.CodeValidation, "request body is not valid JSON", err)
	}
	return nil
}
