package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"proofgate/internal/profile/metrics"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
	"proofgate/pkg/platform/audit"
	"proofgate/pkg/requestcontext"
)

var tracer = otel.Tracer("proofgate/internal/profile")

// Fetcher retrieves a subject's enrichment document from the upstream
// service. The cache depends on this interface so tests can count fetches.
type Fetcher interface {
	Fetch(ctx context.Context, key domain.SubjectKey) (*Document, error)
}

// Auditor receives upstream failure events. A nil auditor disables emission.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// UpstreamClient fetches profile documents over HTTP.
type UpstreamClient struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
	auditor Auditor
}

// NewUpstreamClient builds the client. timeout bounds each fetch; expiry is
// classified as UpstreamTimeout so callers know a retry may succeed.
func NewUpstreamClient(baseURL string, timeout time.Duration, m *metrics.Metrics, auditor Auditor) (*UpstreamClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, dErrors.New(dErrors.CodeConfiguration, "profile upstream URL must be absolute")
	}
	return &UpstreamClient{
		baseURL: parsed.String(),
		client:  &http.Client{Timeout: timeout},
		metrics: m,
		auditor: auditor,
	}, nil
}

// Fetch retrieves the document for one subject.
func (c *UpstreamClient) Fetch(ctx context.Context, key domain.SubjectKey) (*Document, error) {
	ctx, span := tracer.Start(ctx, "profile.upstream_fetch",
		trace.WithAttributes(attribute.String("subject_key", key.String())))
	defer span.End()

	endpoint := fmt.Sprintf("%s/profiles/%s", c.baseURL, url.PathEscape(key.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "build upstream request", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	c.metrics.ObserveUpstreamLatency(time.Since(start))
	if err != nil {
		span.RecordError(err)
		if isTimeout(err) {
			c.emitFailure(ctx, key, "timeout")
			return nil, dErrors.Wrap(dErrors.CodeUpstreamTimeout, "profile fetch timed out", err)
		}
		c.emitFailure(ctx, key, "unreachable")
		return nil, dErrors.Wrap(dErrors.CodeUpstream, "profile upstream unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// A missing profile is a clean answer, not a failure.
		return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
	case resp.StatusCode != http.StatusOK:
		c.emitFailure(ctx, key, fmt.Sprintf("status_%d", resp.StatusCode))
		return nil, dErrors.New(dErrors.CodeUpstream,
			fmt.Sprintf("profile upstream returned status %d", resp.StatusCode))
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		c.emitFailure(ctx, key, "invalid_payload")
		return nil, dErrors.Wrap(dErrors.CodeUpstream, "profile upstream returned invalid JSON", err)
	}
	if doc.SubjectKey == "" {
		doc.SubjectKey = key.String()
	}
	return &doc, nil
}

// emitFailure records the failed fetch for operations review. Best effort:
// the fetch error already reaches the caller.
func (c *UpstreamClient) emitFailure(ctx context.Context, key domain.SubjectKey, reason string) {
	if c.auditor == nil {
		return
	}
	_ = c.auditor.Emit(ctx, audit.Event{
		Category:      audit.EventUpstreamFailure.Category(),
		Timestamp:     requestcontext.Now(ctx),
		Action:        string(audit.EventUpstreamFailure),
		RequestID:     requestcontext.RequestID(ctx),
		Reason:        reason,
		SubjectIDHash: audit.HashSubject(key.String()),
	})
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
