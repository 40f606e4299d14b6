// Package apikey gates relier-facing endpoints behind a static API key. The
// key is stored as a bcrypt hash in configuration so a leaked config file
// does not leak the key itself.
package apikey

import (
	"context"
	"crypto/sha256"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	dErrors "proofgate/pkg/domain-errors"
	"proofgate/pkg/platform/audit"
	"proofgate/pkg/platform/httputil"
	"proofgate/pkg/platform/middleware/metadata"
	"proofgate/pkg/requestcontext"
)

// Header carries the relier API key.
const Header = "X-API-Key"

// Auditor receives key rejection events. A nil auditor disables emission.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Middleware rejects requests whose API key does not match the configured
// bcrypt hash. An empty hash disables the check (open deployment).
//
// The presented key is pre-hashed with SHA-256 before the bcrypt comparison
// to sidestep bcrypt's 72-byte input limit.
func Middleware(keyHash string, auditor Auditor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if keyHash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(Header)
			if presented == "" {
				reject(w, r, auditor, "missing_key")
				return
			}
			digest := sha256.Sum256([]byte(presented))
			if err := bcrypt.CompareHashAndPassword([]byte(keyHash), digest[:]); err != nil {
				reject(w, r, auditor, "invalid_key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// reject writes the 401 and records the attempt for security monitoring.
// The emit is best effort: the request is rejected either way.
func reject(w http.ResponseWriter, r *http.Request, auditor Auditor, reason string) {
	ctx := r.Context()
	if auditor != nil {
		_ = auditor.Emit(ctx, audit.Event{
			Category:  audit.EventAPIKeyRejected.Category(),
			Timestamp: requestcontext.Now(ctx),
			Action:    string(audit.EventAPIKeyRejected),
			RequestID: requestcontext.RequestID(ctx),
			Reason:    reason,
			ClientIP:  metadata.GetClientIP(ctx),
		})
	}

	message := "invalid api key"
	if reason == "missing_key" {
		message = "api key required"
	}
	httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, message))
}

// HashKey derives the bcrypt hash for a plaintext key. Used by deploy tooling
// and tests.
func HashKey(key string) (string, error) {
	digest := sha256.Sum256([]byte(key))
	hash, err := bcrypt.GenerateFromPassword(digest[:], bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
