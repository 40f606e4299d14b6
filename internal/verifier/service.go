// Package verifier implements the proof-verification state machine:
// Received -> CryptoInvalid | (CryptoValid -> PolicyAllowed | PolicyDenied).
// Structural checks run first and malformed submissions never reach the
// cryptographic primitive; crypto failures are terminal and never retried.
package verifier

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"proofgate/internal/policy"
	"proofgate/internal/verifier/metrics"
	"proofgate/internal/verifier/ports"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
	"proofgate/pkg/platform/audit"
	"proofgate/pkg/platform/middleware/metadata"
	"proofgate/pkg/platform/sentinel"
	"proofgate/pkg/requestcontext"
)

var tracer = otel.Tracer("proofgate/internal/verifier")

// Service runs verifications. One long-lived instance is constructed at
// process start with the full configuration (checker, policy set, replay
// store); nothing mutates it afterwards.
type Service struct {
	checker    ports.ProofChecker
	replay     ports.ReplayStore
	policies   *policy.Store
	policyName string
	audit      ports.AuditPort
	logger     *slog.Logger
	metrics    *metrics.Metrics
	deadline   time.Duration
}

// NewService constructs the verifier.
func NewService(
	checker ports.ProofChecker,
	replay ports.ReplayStore,
	policies *policy.Store,
	auditPort ports.AuditPort,
	logger *slog.Logger,
	m *metrics.Metrics,
	deadline time.Duration,
) (*Service, error) {
	if checker == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "proof checker is required")
	}
	if replay == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "replay store is required")
	}
	if policies == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "policy store is required")
	}
	return &Service{
		checker:    checker,
		replay:     replay,
		policies:   policies,
		policyName: policy.DefaultName,
		audit:      auditPort,
		logger:     logger,
		metrics:    m,
		deadline:   deadline,
	}, nil
}

// Verify drives one submission through the state machine.
//
// Crypto and policy failures are terminal outcomes, not errors: they return
// a Result with Valid=false so the transport layer can report them with the
// in-body taxonomy. Errors are reserved for malformed submissions,
// verification deadline expiry, and internal faults.
func (s *Service) Verify(ctx context.Context, sub Submission) (*Result, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveVerifyLatency(time.Since(start)) }()

	// State: Received. Structural completeness before anything else.
	kind, token, err := s.validate(sub)
	if err != nil {
		s.metrics.IncrementOutcome("malformed", "")
		return nil, err
	}

	// Cryptographic check, bounded by the configured deadline.
	disclosure, err := s.checkProof(ctx, kind, sub)
	if err != nil {
		var reason CryptoReason
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, dErrors.Wrap(dErrors.CodeVerificationTimeout, "cryptographic check exceeded deadline", err)
		case errors.Is(err, ports.ErrProofInvalid):
			reason = ReasonProofInvalid
		case errors.Is(err, ports.ErrAttestationMismatch):
			reason = ReasonAttestationMismatch
		case errors.Is(err, ports.ErrCredentialExpired):
			reason = ReasonCredentialExpired
		case errors.Is(err, ports.ErrSignalMalformed):
			reason = ReasonSignalsMalformed
		default:
			return nil, dErrors.Wrap(dErrors.CodeInternal, "proof check failed", err)
		}
		return s.cryptoInvalid(ctx, token, reason), nil
	}

	// Replay prevention: consume the proof's binding value exactly once.
	if err := s.consumeNullifier(ctx, token, disclosure); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return s.cryptoInvalid(ctx, token, ReasonProofReplayed), nil
		}
		// Fail closed: an unreachable replay store must not let proofs
		// through unchecked.
		return nil, dErrors.Wrap(dErrors.CodeInternal, "replay store unavailable", err)
	}

	// State: CryptoValid. Policy evaluation.
	_, span := tracer.Start(ctx, "verifier.policy_evaluate",
		trace.WithAttributes(attribute.String("policy", s.policyName)))
	decision := s.policies.Evaluate(s.policyName, kind, disclosure)
	span.End()

	if !decision.Allowed {
		result := &Result{
			Valid:      false,
			Code:       dErrors.CodePolicyViolation,
			Violations: decision.Violations,
			Disclosure: &disclosure,
		}
		s.metrics.IncrementOutcome("policy_denied", "")
		s.emitAudit(ctx, audit.EventVerificationDenied, token, disclosure.Nullifier, "denied", result.Details())
		return result, nil
	}

	result := &Result{Valid: true, Disclosure: &disclosure}
	s.metrics.IncrementOutcome("policy_allowed", "")
	s.emitAudit(ctx, audit.EventVerificationPassed, token, disclosure.Nullifier, "allowed", nil)
	return result, nil
}

// validate enforces structural completeness of the Received state. It never
// touches the cryptographic primitive.
func (s *Service) validate(sub Submission) (domain.AttestationKind, domain.CorrelationToken, error) {
	var missing []string
	if sub.AttestationKind == "" {
		missing = append(missing, "attestationId")
	}
	if len(sub.Proof) == 0 || string(sub.Proof) == "null" {
		missing = append(missing, "proof")
	}
	if len(sub.PublicSignals) == 0 {
		missing = append(missing, "publicSignals")
	}
	if sub.UserContextData == "" {
		missing = append(missing, "userContextData")
	}
	if len(missing) > 0 {
		return "", domain.CorrelationToken{}, dErrors.New(dErrors.CodeMalformedRequest,
			"proof submission is missing required fields").WithDetails(missing...)
	}

	kind, err := domain.ParseAttestationKind(sub.AttestationKind)
	if err != nil {
		return "", domain.CorrelationToken{}, dErrors.Wrap(dErrors.CodeMalformedRequest,
			"unsupported attestation kind", err)
	}

	token, err := domain.ParseCorrelationToken(sub.UserContextData)
	if err != nil {
		return "", domain.CorrelationToken{}, err
	}

	return kind, token, nil
}

func (s *Service) checkProof(ctx context.Context, kind domain.AttestationKind, sub Submission) (domain.Disclosure, error) {
	if s.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deadline)
		defer cancel()
	}

	ctx, span := tracer.Start(ctx, "verifier.crypto_check",
		trace.WithAttributes(attribute.String("attestation_kind", kind.String())))
	defer span.End()

	start := time.Now()
	disclosure, err := s.checker.VerifyProof(ctx, kind, sub.Proof, sub.PublicSignals)
	s.metrics.ObserveCryptoLatency(time.Since(start))
	if err != nil {
		span.RecordError(err)
	}
	return disclosure, err
}

func (s *Service) consumeNullifier(ctx context.Context, token domain.CorrelationToken, d domain.Disclosure) error {
	nullifier := d.Nullifier
	if nullifier == "" {
		// Older circuits expose no nullifier; the correlation token is the
		// only binding value available then.
		nullifier = token.String()
	}
	return s.replay.Consume(ctx, nullifier)
}

func (s *Service) cryptoInvalid(ctx context.Context, token domain.CorrelationToken, reason CryptoReason) *Result {
	result := &Result{Valid: false, Code: dErrors.CodeCryptoInvalid, Reason: reason}
	s.metrics.IncrementOutcome("crypto_invalid", string(reason))

	action := audit.EventProofRejected
	if reason == ReasonProofReplayed {
		action = audit.EventProofReplayed
	}
	s.emitAudit(ctx, action, token, "", "rejected", result.Details())
	return result
}

func (s *Service) emitAudit(ctx context.Context, action audit.AuditEvent, token domain.CorrelationToken, nullifier, decision string, details []string) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Timestamp:     requestcontext.Now(ctx),
		Action:        string(action),
		CorrelationID: token.String(),
		RequestID:     requestcontext.RequestID(ctx),
		Decision:      decision,
		Details:       details,
		SubjectIDHash: audit.HashSubject(nullifier),
		DeviceSummary: metadata.GetDeviceSummary(ctx),
		ClientIP:      metadata.GetClientIP(ctx),
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}
