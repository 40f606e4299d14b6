package metadata

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

// Context keys for client metadata.
type contextKeyClientIP struct{}
type contextKeyUserAgent struct{}
type contextKeyDeviceSummary struct{}

// ClientMetadata extracts the client IP address, User-Agent, and a coarse
// device summary from the request and adds them to the context for audit
// enrichment. This middleware should be applied early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIPFromRequest(r)
		ua := r.Header.Get("User-Agent")

		ctx := r.Context()
		ctx = context.WithValue(ctx, contextKeyClientIP{}, ip)
		ctx = context.WithValue(ctx, contextKeyUserAgent{}, ua)
		ctx = context.WithValue(ctx, contextKeyDeviceSummary{}, summarize(ua))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// summarize condenses a raw User-Agent into "browser/os (mobile?)" form so
// audit records never store the full fingerprintable string.
func summarize(rawUA string) string {
	if rawUA == "" {
		return ""
	}
	parsed := useragent.New(rawUA)
	name, version := parsed.Browser()
	summary := fmt.Sprintf("%s %s on %s", name, version, parsed.OS())
	if parsed.Mobile() {
		summary += " (mobile)"
	}
	return summary
}

// GetClientIP retrieves the client IP address from the context.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(contextKeyClientIP{}).(string); ok {
		return ip
	}
	return ""
}

// GetUserAgent retrieves the raw User-Agent from the context.
func GetUserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(contextKeyUserAgent{}).(string); ok {
		return ua
	}
	return ""
}

// GetDeviceSummary retrieves the condensed device description.
func GetDeviceSummary(ctx context.Context) string {
	if s, ok := ctx.Value(contextKeyDeviceSummary{}).(string); ok {
		return s
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, rawUA string) context.Context {
	ctx = context.WithValue(ctx, contextKeyClientIP{}, clientIP)
	ctx = context.WithValue(ctx, contextKeyUserAgent{}, rawUA)
	return context.WithValue(ctx, contextKeyDeviceSummary{}, summarize(rawUA))
}

// ClientIPFromRequest extracts the real client IP from the request, handling
// proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs; the first is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port" ("[::1]:port" for IPv6).
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}

	return "unknown"
}
