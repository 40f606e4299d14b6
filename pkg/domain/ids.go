package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "proofgate/pkg/domain-errors"
)

// ScopeID identifies a relying deployment (the "relier"). It is the value a
// verification session is created for and the value a policy can be keyed by.
// Invariant: non-empty, at most 64 characters, lowercase alphanumerics plus
// '-' and '_'.
//
// Usage: construct via ParseScopeID at trust boundaries; direct casting
// bypasses validation.
type ScopeID string

const maxScopeIDLength = 64

// ParseScopeID constructs a ScopeID from external input.
//
// Errors: returns CodeConfiguration when the value is empty, too long, or
// contains characters outside the allowed set.
func ParseScopeID(s string) (ScopeID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeConfiguration, "scope id is required")
	}
	if len(s) > maxScopeIDLength {
		return "", dErrors.New(dErrors.CodeConfiguration, "scope id must be at most 64 characters")
	}
	for _, r := range s {
		if !isScopeIDRune(r) {
			return "", dErrors.New(dErrors.CodeConfiguration, "scope id contains invalid characters")
		}
	}
	return ScopeID(s), nil
}

func isScopeIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	}
	return false
}

func (s ScopeID) String() string { return string(s) }

// CorrelationToken binds a verification session to its eventual proof
// submission. It must be unpredictable and unique per session so a proof
// minted for one session cannot be replayed against another.
type CorrelationToken uuid.UUID

// NewCorrelationToken mints a fresh random token.
func NewCorrelationToken() CorrelationToken {
	return CorrelationToken(uuid.New())
}

// ParseCorrelationToken constructs a token from its wire form.
func ParseCorrelationToken(s string) (CorrelationToken, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return CorrelationToken{}, dErrors.New(dErrors.CodeMalformedRequest, "user context data is not a valid correlation token")
	}
	return CorrelationToken(u), nil
}

func (t CorrelationToken) IsNil() bool {
	return uuid.UUID(t) == uuid.Nil
}

func (t CorrelationToken) String() string {
	return uuid.UUID(t).String()
}

// SubjectKey identifies a subject in the profile-enrichment cache. It is an
// opaque display-layer identifier and never participates in trust decisions.
type SubjectKey string

// ParseSubjectKey constructs a SubjectKey from external input.
func ParseSubjectKey(s string) (SubjectKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "subject key is required")
	}
	if len(s) > 128 {
		return "", dErrors.New(dErrors.CodeValidation, "subject key must be at most 128 characters")
	}
	return SubjectKey(s), nil
}

func (k SubjectKey) String() string { return string(k) }
