// Package devstub is a ProofChecker for local development and tests. It
// performs no cryptography: the proof object declares its own outcome and
// the public signals carry the disclosure in the clear. It must never be
// enabled in production; the config layer gates it behind an explicit flag.
package devstub

import (
	"context"
	"encoding/json"
	"log/slog"

	"proofgate/internal/verifier/ports"
	"proofgate/pkg/domain"
)

// Signal layout expected from the dev circuit, in order.
const (
	signalKind = iota
	signalAgeOver
	signalNationality
	signalGender
	signalSanctions
	signalNullifier
	signalCount
)

type devProof struct {
	Outcome string `json:"outcome"`
}

// Checker implements ports.ProofChecker without verifying anything.
type Checker struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Checker {
	if logger != nil {
		logger.Warn("dev proof checker enabled, proofs are NOT verified")
	}
	return &Checker{logger: logger}
}

// VerifyProof decodes the canned layout. The proof's "outcome" field drives
// the failure modes so handler and service behavior can be exercised end to
// end: "invalid", "expired", or anything decodable defaulting to valid.
func (c *Checker) VerifyProof(_ context.Context, kind domain.AttestationKind, proof json.RawMessage, publicSignals []string) (domain.Disclosure, error) {
	var p devProof
	if err := json.Unmarshal(proof, &p); err != nil {
		return domain.Disclosure{}, ports.ErrProofInvalid
	}

	switch p.Outcome {
	case "invalid":
		return domain.Disclosure{}, ports.ErrProofInvalid
	case "expired":
		return domain.Disclosure{}, ports.ErrCredentialExpired
	}

	if len(publicSignals) < signalCount {
		return domain.Disclosure{}, ports.ErrSignalMalformed
	}
	if publicSignals[signalKind] != kind.String() {
		return domain.Disclosure{}, ports.ErrAttestationMismatch
	}

	var nationality domain.CountryCode
	if raw := publicSignals[signalNationality]; raw != "" {
		parsed, err := domain.ParseCountryCode(raw)
		if err != nil {
			return domain.Disclosure{}, ports.ErrSignalMalformed
		}
		nationality = parsed
	}

	return domain.Disclosure{
		AgeOverMinimum: publicSignals[signalAgeOver] == "1",
		Nationality:    nationality,
		Gender:         publicSignals[signalGender],
		SanctionsMatch: publicSignals[signalSanctions] == "1",
		Nullifier:      publicSignals[signalNullifier],
	}, nil
}
