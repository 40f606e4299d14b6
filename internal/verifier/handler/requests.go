package handler

import (
	"encoding/json"

	"proofgate/internal/verifier"
)

// VerifyRequest is the proof submission body. All four fields are required;
// presence is checked before anything else so incomplete submissions never
// reach the verifier.
type VerifyRequest struct {
	AttestationID   string          `json:"attestationId"`
	Proof           json.RawMessage `json:"proof"`
	PublicSignals   []string        `json:"publicSignals"`
	UserContextData string          `json:"userContextData"`
}

// MissingFields lists absent required fields, in wire-name order.
func (r *VerifyRequest) MissingFields() []string {
	var missing []string
	if r.AttestationID == "" {
		missing = append(missing, "attestationId")
	}
	if len(r.Proof) == 0 || string(r.Proof) == "null" {
		missing = append(missing, "proof")
	}
	if len(r.PublicSignals) == 0 {
		missing = append(missing, "publicSignals")
	}
	if r.UserContextData == "" {
		missing = append(missing, "userContextData")
	}
	return missing
}

// Submission converts the wire body into the verifier's input.
func (r *VerifyRequest) Submission() verifier.Submission {
	return verifier.Submission{
		AttestationKind: r.AttestationID,
		Proof:           r.Proof,
		PublicSignals:   r.PublicSignals,
		UserContextData: r.UserContextData,
	}
}
