package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// EventCategory classifies audit events by their primary purpose. This
// enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// every terminal verification decision lands here.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring:
	// replayed proofs, rejected API keys.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging: session
	// minting, upstream fetch failures.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
//
// Events never carry raw personal data: subjects appear only as
// SubjectIDHash, and disclosures are reduced to the decision and reason.
type Event struct {
	Category      EventCategory
	Timestamp     time.Time
	Action        string
	ScopeID       string
	CorrelationID string
	RequestID     string
	Decision      string
	Reason        string
	Details       []string

	// SubjectIDHash is a SHA-256 of the proof's nullifier, for compliance
	// traceability without storing a linkable identifier.
	SubjectIDHash string

	// DeviceSummary is the condensed prover device description from the
	// metadata middleware, never the raw User-Agent.
	DeviceSummary string
	ClientIP      string
}

// AuditEvent names the known event kinds.
type AuditEvent string

const (
	EventSessionCreated     AuditEvent = "session_created"
	EventProofRejected      AuditEvent = "proof_rejected"
	EventProofReplayed      AuditEvent = "proof_replayed"
	EventVerificationPassed AuditEvent = "verification_passed"
	EventVerificationDenied AuditEvent = "verification_denied"
	EventUpstreamFailure    AuditEvent = "upstream_failure"
	EventAPIKeyRejected     AuditEvent = "api_key_rejected"
)

// eventCategories is the source of truth for category routing.
var eventCategories = map[AuditEvent]EventCategory{
	EventSessionCreated:     CategoryOperations,
	EventProofRejected:      CategoryCompliance,
	EventProofReplayed:      CategorySecurity,
	EventVerificationPassed: CategoryCompliance,
	EventVerificationDenied: CategoryCompliance,
	EventUpstreamFailure:    CategoryOperations,
	EventAPIKeyRejected:     CategorySecurity,
}

// Category resolves the routing category for an event kind, defaulting to
// operations for unknown kinds.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}

// HashSubject derives the stored subject hash from a raw identifier.
func HashSubject(raw string) string {
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Store persists audit events. Implementations must be safe for concurrent
// Append calls.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Sink receives a copy of every event for side channels (Kafka). Sinks are
// best-effort: a sink failure never fails the Emit.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
