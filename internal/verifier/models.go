package verifier

import (
	"encoding/json"

	"proofgate/internal/policy"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
)

// Submission is one proof-verification attempt as received from the prover.
// Immutable; never stored after the verification call returns.
type Submission struct {
	// AttestationKind is the claimed credential category, unparsed.
	AttestationKind string

	// Proof is the opaque proof blob. The verifier never inspects it.
	Proof json.RawMessage

	// PublicSignals is the ordered sequence of field elements the proof
	// exposes.
	PublicSignals []string

	// UserContextData is the opaque correlation token minted at session
	// creation.
	UserContextData string
}

// CryptoReason is the fine-grained cause of a CryptoInvalid outcome.
type CryptoReason string

const (
	ReasonProofInvalid        CryptoReason = "proof_invalid"
	ReasonAttestationMismatch CryptoReason = "attestation_mismatch"
	ReasonProofReplayed       CryptoReason = "proof_replayed"
	ReasonCredentialExpired   CryptoReason = "credential_expired"
	ReasonSignalsMalformed    CryptoReason = "signals_malformed"
)

// Result is the terminal verification outcome. Not mutated after
// construction.
//
// On policy denial the disclosure is still populated for audit and logging
// but must never be treated as an authorization grant: Valid is the only
// grant signal.
type Result struct {
	Valid      bool
	Code       dErrors.Code
	Reason     CryptoReason
	Violations []policy.ViolationKind
	Disclosure *domain.Disclosure
}

// Details renders the machine-readable diagnostic list for the wire
// envelope.
func (r *Result) Details() []string {
	if r.Reason != "" {
		return []string{string(r.Reason)}
	}
	details := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		details = append(details, string(v))
	}
	return details
}
