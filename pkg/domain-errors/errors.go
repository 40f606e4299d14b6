// Package domainerrors defines the gateway's stable, machine-readable error
// taxonomy. Services and handlers construct these; the HTTP layer translates
// them to transport status codes and wire error codes.
//
// For infrastructure facts (not found, already used, expired) stores return
// pkg/platform/sentinel errors and services wrap them into these codes.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for callers. Values are wire-stable.
type Code string

const (
	// CodeMalformedRequest covers missing or ill-typed fields on a proof
	// submission. Non-retryable; the client must resubmit correctly.
	CodeMalformedRequest Code = "malformed_request"

	// CodeCryptoInvalid covers proofs failing cryptographic checks, replayed
	// proofs, and attestation mismatches. Terminal, never retried.
	CodeCryptoInvalid Code = "crypto_invalid"

	// CodePolicyViolation covers cryptographically valid proofs that fail one
	// or more policy rules. Terminal; carries the full violation list.
	CodePolicyViolation Code = "policy_violation"

	// CodeConfiguration covers bad session-creation input. Non-retryable.
	CodeConfiguration Code = "configuration_error"

	// CodeUpstream covers profile-enrichment dependency failures. Retryable
	// by the caller; the cache is unaffected.
	CodeUpstream Code = "upstream_error"

	// CodeUpstreamTimeout is a deadline expiry on the enrichment fetch.
	// Retryable.
	CodeUpstreamTimeout Code = "upstream_timeout"

	// CodeVerificationTimeout is a deadline expiry on the cryptographic
	// check. Non-retryable without a fresh proof.
	CodeVerificationTimeout Code = "verification_timeout"

	// CodeValidation covers field-level input rejection outside the proof
	// submission path (e.g. a bad subject key).
	CodeValidation Code = "validation_error"

	CodeNotFound     Code = "not_found"
	CodeUnauthorized Code = "unauthorized"

	// CodeInternal is the generic classification for unexpected faults.
	// Details are logged, never surfaced.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. Details carries machine-readable diagnostic
// strings (e.g. the policy violation list) safe to return to callers.
type Error struct {
	Code    Code
	Message string
	Details []string
	cause   error
}

// New constructs a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap constructs a coded error preserving the underlying cause for logs
// and errors.Is/As chains.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// WithDetails attaches diagnostic detail strings and returns the error.
func (e *Error) WithDetails(details ...string) *Error {
	e.Details = append(e.Details, details...)
	return e
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// CodeOf extracts the domain code from an error chain, defaulting to
// CodeInternal for unclassified errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the error chain carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// DetailsOf extracts diagnostic details from an error chain, if any.
func DetailsOf(err error) []string {
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}

// MessageOf extracts the caller-safe message from an error chain. Internal
// errors deliberately fall back to a generic message.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Code != CodeInternal {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a code to its transport status. Note that the /verify
// endpoint does not use this mapping for crypto and policy failures: those
// are reported with a 200 status and an in-body taxonomy so relying clients
// always parse the body.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeMalformedRequest, CodeValidation, CodeConfiguration:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeCryptoInvalid, CodePolicyViolation:
		return http.StatusOK
	case CodeUpstream:
		return http.StatusBadGateway
	case CodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	case CodeVerificationTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// wireCodes maps taxonomy codes to the SCREAMING_SNAKE error_code values the
// verification wire protocol uses.
var wireCodes = map[Code]string{
	CodeMalformedRequest:    "MALFORMED_REQUEST",
	CodeCryptoInvalid:       "CRYPTO_INVALID",
	CodePolicyViolation:     "POLICY_VIOLATION",
	CodeConfiguration:       "CONFIGURATION_ERROR",
	CodeUpstream:            "UPSTREAM_FETCH_ERROR",
	CodeUpstreamTimeout:     "UPSTREAM_TIMEOUT",
	CodeVerificationTimeout: "VERIFICATION_TIMEOUT",
	CodeValidation:          "VALIDATION_ERROR",
	CodeNotFound:            "NOT_FOUND",
	CodeUnauthorized:        "UNAUTHORIZED",
}

// WireCode renders the code in the form the verify envelope uses.
func (c Code) WireCode() string {
	if wc, ok := wireCodes[c]; ok {
		return wc
	}
	return "UNKNOWN_ERROR"
}
