// Package requestid assigns each request a correlation ID, honoring one
// supplied by an upstream proxy.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"proofgate/pkg/requestcontext"
)

// Header is the inbound/outbound request ID header.
const Header = "X-Request-Id"

// Middleware ensures every request carries a request ID in both the context
// and the response headers so failures can be correlated across systems.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		w.Header().Set(Header, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
