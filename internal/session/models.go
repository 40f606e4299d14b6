package session

import (
	"time"

	"proofgate/pkg/domain"
)

// VerificationSession is the descriptor a relying client renders as a
// scannable code for the prover. Immutable once minted; the core keeps no
// copy of it, so there is nothing to expire server-side.
type VerificationSession struct {
	ScopeID domain.ScopeID

	// CorrelationUserID binds this session to the eventual proof
	// submission. Unpredictable and unique per session.
	CorrelationUserID domain.CorrelationToken

	// Endpoint is where the prover submits the finished proof.
	Endpoint string

	RequestedDisclosures []domain.DisclosureField
	AttestationKinds     []domain.AttestationKind
	CreatedAt            time.Time
}
