// Package session mints verification-session descriptors. The broker is a
// pure value constructor plus correlation-token generation: no network, no
// storage, nothing shared between calls.
package session

import (
	"context"
	"net/url"

	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
	"proofgate/pkg/requestcontext"
)

// Broker mints verification sessions for relying deployments.
type Broker struct {
	endpoint string
}

// NewBroker validates the callback endpoint once at startup. Provers submit
// proofs to this URL, so a malformed value is a configuration fault, not a
// per-request one.
func NewBroker(endpoint string) (*Broker, error) {
	if endpoint == "" {
		return nil, dErrors.New(dErrors.CodeConfiguration, "callback endpoint is required")
	}
	u, err := url.Parse(endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, dErrors.New(dErrors.CodeConfiguration, "callback endpoint must be an absolute http(s) URL")
	}
	return &Broker{endpoint: endpoint}, nil
}

// CreateSession builds a fresh descriptor. Duplicate disclosure fields and
// attestation kinds are collapsed preserving first-seen order so the encoded
// QR payload stays stable for identical inputs.
func (b *Broker) CreateSession(
	ctx context.Context,
	scopeID domain.ScopeID,
	requestedDisclosures []domain.DisclosureField,
	attestationKinds []domain.AttestationKind,
) (*VerificationSession, error) {
	if scopeID == "" {
		return nil, dErrors.New(dErrors.CodeConfiguration, "scope id is required")
	}

	return &VerificationSession{
		ScopeID:              scopeID,
		CorrelationUserID:    domain.NewCorrelationToken(),
		Endpoint:             b.endpoint,
		RequestedDisclosures: dedup(requestedDisclosures),
		AttestationKinds:     dedup(attestationKinds),
		CreatedAt:            requestcontext.Now(ctx),
	}, nil
}

func dedup[T comparable](in []T) []T {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[T]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
