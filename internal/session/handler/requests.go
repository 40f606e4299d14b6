package handler

import (
	"strings"

	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
)

// CreateSessionRequest is the HTTP request body for POST /session.
type CreateSessionRequest struct {
	ScopeID              string   `json:"scopeId"`
	RequestedDisclosures []string `json:"requestedDisclosures"`
	AttestationKinds     []string `json:"attestationKinds"`

	// Parsed values (populated by Validate)
	parsedScope       domain.ScopeID
	parsedDisclosures []domain.DisclosureField
	parsedKinds       []domain.AttestationKind
}

// Validate validates and parses the request. All session-creation input
// faults classify as ConfigurationError, as the relier controls every field.
func (r *CreateSessionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeConfiguration, "request body is required")
	}

	scope, err := domain.ParseScopeID(r.ScopeID)
	if err != nil {
		return err
	}
	r.parsedScope = scope

	for _, raw := range r.RequestedDisclosures {
		field, err := domain.ParseDisclosureField(strings.TrimSpace(raw))
		if err != nil {
			return dErrors.Wrap(dErrors.CodeConfiguration, "requested disclosures", err)
		}
		r.parsedDisclosures = append(r.parsedDisclosures, field)
	}

	for _, raw := range r.AttestationKinds {
		kind, err := domain.ParseAttestationKind(strings.TrimSpace(raw))
		if err != nil {
			return dErrors.Wrap(dErrors.CodeConfiguration, "attestation kinds", err)
		}
		r.parsedKinds = append(r.parsedKinds, kind)
	}

	return nil
}

// ParsedScope returns the validated scope ID.
func (r *CreateSessionRequest) ParsedScope() domain.ScopeID { return r.parsedScope }

// ParsedDisclosures returns the validated disclosure fields.
func (r *CreateSessionRequest) ParsedDisclosures() []domain.DisclosureField {
	return r.parsedDisclosures
}

// ParsedKinds returns the validated attestation kinds.
func (r *CreateSessionRequest) ParsedKinds() []domain.AttestationKind { return r.parsedKinds }
