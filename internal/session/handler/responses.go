package handler

import (
	"time"

	"proofgate/internal/session"
)

// SessionResponse is the descriptor returned from POST /session. This is the
// payload a relying client encodes into a QR code for the prover, so field
// names are wire-stable.
type SessionResponse struct {
	ScopeID              string    `json:"scopeId"`
	CorrelationUserID    string    `json:"correlationUserId"`
	Endpoint             string    `json:"endpoint"`
	RequestedDisclosures []string  `json:"requestedDisclosures"`
	AttestationKinds     []string  `json:"attestationKinds"`
	CreatedAt            time.Time `json:"createdAt"`
}

// FromSession converts a domain descriptor to its wire form.
func FromSession(s *session.VerificationSession) *SessionResponse {
	resp := &SessionResponse{
		ScopeID:              s.ScopeID.String(),
		CorrelationUserID:    s.CorrelationUserID.String(),
		Endpoint:             s.Endpoint,
		RequestedDisclosures: []string{},
		AttestationKinds:     []string{},
		CreatedAt:            s.CreatedAt,
	}
	for _, f := range s.RequestedDisclosures {
		resp.RequestedDisclosures = append(resp.RequestedDisclosures, f.String())
	}
	for _, k := range s.AttestationKinds {
		resp.AttestationKinds = append(resp.AttestationKinds, k.String())
	}
	return resp
}
