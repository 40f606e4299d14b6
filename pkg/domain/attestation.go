package domain

import dErrors "proofgate/pkg/domain-errors"

// AttestationKind is the category of underlying credential the prover holds.
// Invariant: the value must be one of the supported kinds.
//
// Usage: construct via ParseAttestationKind at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type AttestationKind string

// Supported attestation kinds.
const (
	AttestationPassport    AttestationKind = "passport"
	AttestationNationalID  AttestationKind = "national_id"
	AttestationBiometricID AttestationKind = "biometric_id"
)

// validAttestationKinds is the single source of truth for valid kinds.
var validAttestationKinds = map[AttestationKind]bool{
	AttestationPassport:    true,
	AttestationNationalID:  true,
	AttestationBiometricID: true,
}

// ParseAttestationKind constructs an AttestationKind from external input.
//
// Errors: returns CodeValidation when the value is empty or unsupported.
func ParseAttestationKind(s string) (AttestationKind, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "attestation kind cannot be empty")
	}
	k := AttestationKind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "unsupported attestation kind")
	}
	return k, nil
}

// IsValid checks if the attestation kind is one of the supported enum values.
func (k AttestationKind) IsValid() bool {
	return validAttestationKinds[k]
}

func (k AttestationKind) String() string { return string(k) }

// DisclosureField names an attribute flag a relier can request to have
// surfaced from a valid proof.
type DisclosureField string

// Supported disclosure fields.
const (
	DisclosureMinimumAge  DisclosureField = "minimum_age"
	DisclosureNationality DisclosureField = "nationality"
	DisclosureGender      DisclosureField = "gender"
)

var validDisclosureFields = map[DisclosureField]bool{
	DisclosureMinimumAge:  true,
	DisclosureNationality: true,
	DisclosureGender:      true,
}

// ParseDisclosureField constructs a DisclosureField from external input.
func ParseDisclosureField(s string) (DisclosureField, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "disclosure field cannot be empty")
	}
	f := DisclosureField(s)
	if !validDisclosureFields[f] {
		return "", dErrors.New(dErrors.CodeValidation, "unsupported disclosure field")
	}
	return f, nil
}

func (f DisclosureField) String() string { return string(f) }
