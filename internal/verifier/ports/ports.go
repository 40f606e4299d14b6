// Package ports defines the verifier's external collaborator interfaces.
// The domain layer depends on these; adapters (the trusted proof library,
// Redis, a dev stub) implement them.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks ProofChecker,ReplayStore,AuditPort

import (
	"context"
	"encoding/json"
	"errors"

	"proofgate/pkg/domain"
	"proofgate/pkg/platform/audit"
)

// Classification errors a ProofChecker returns. The verifier maps each to a
// stable crypto-invalid reason; anything else is treated as an internal
// fault.
var (
	// ErrProofInvalid: the proof fails cryptographic verification.
	ErrProofInvalid = errors.New("proof invalid")

	// ErrAttestationMismatch: the proof is well formed but was produced for
	// a different attestation kind than claimed.
	ErrAttestationMismatch = errors.New("attestation mismatch")

	// ErrCredentialExpired: the underlying credential the proof attests to
	// has expired.
	ErrCredentialExpired = errors.New("credential expired")

	// ErrSignalMalformed: the public signals do not decode to the expected
	// layout for the attestation kind.
	ErrSignalMalformed = errors.New("public signals malformed")
)

// ProofChecker is the opaque, trusted cryptographic primitive. It confirms
// the proof is well formed, matches the claimed attestation kind, and is
// bound to the session's correlation token, then decodes the disclosure from
// the public signals.
//
// Implementations must be safe for concurrent use. The verifier never
// retries a failed check.
type ProofChecker interface {
	VerifyProof(ctx context.Context, kind domain.AttestationKind, proof json.RawMessage, publicSignals []string) (domain.Disclosure, error)
}

// ReplayStore tracks consumed proof nullifiers so the same proof cannot be
// submitted twice. Consume must be an atomic check-and-set: the first call
// for a nullifier succeeds, every later call returns
// sentinel.ErrAlreadyUsed.
type ReplayStore interface {
	Consume(ctx context.Context, nullifier string) error
}

// AuditPort emits verification outcomes to the audit pipeline. Defined here
// rather than importing the publisher so the verifier stays testable with a
// plain mock.
type AuditPort interface {
	Emit(ctx context.Context, event audit.Event) error
}
