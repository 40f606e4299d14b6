package policy

import (
	"fmt"

	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
)

// ViolationKind names a policy rule a disclosure failed. Values are
// wire-stable and returned verbatim in verification results.
type ViolationKind string

const (
	ViolationMinimumAge      ViolationKind = "minimum_age"
	ViolationExcludedCountry ViolationKind = "excluded_country"
	ViolationSanctions       ViolationKind = "sanctions_match"
	ViolationAttestationKind ViolationKind = "attestation_kind"
)

// Policy is a read-only disclosure policy. Construct via New; the zero value
// accepts everything, which is never what a deployment wants.
type Policy struct {
	minimumAge        *int
	excludedCountries map[domain.CountryCode]struct{}
	sanctionsScreen   bool
	acceptedKinds     map[domain.AttestationKind]struct{}
}

// Params is the raw policy input before validation.
type Params struct {
	// MinimumAge, when non-nil, requires the proof's age-floor result.
	// Invariant: 0 <= *MinimumAge <= 150.
	MinimumAge *int

	// ExcludedCountries lists jurisdictions the relier cannot serve.
	// Normalized to uppercase ISO codes, duplicates collapsed.
	ExcludedCountries []string

	// SanctionsScreen requires the in-proof sanctions signal to be clear.
	SanctionsScreen bool

	// AcceptedAttestationKinds restricts the credential categories. Empty
	// accepts every supported kind.
	AcceptedAttestationKinds []domain.AttestationKind
}

const maxMinimumAge = 150

// New validates and normalizes policy parameters.
func New(p Params) (Policy, error) {
	if p.MinimumAge != nil && (*p.MinimumAge < 0 || *p.MinimumAge > maxMinimumAge) {
		return Policy{}, dErrors.New(dErrors.CodeConfiguration,
			fmt.Sprintf("minimum age must be between 0 and %d", maxMinimumAge))
	}

	excluded := make(map[domain.CountryCode]struct{}, len(p.ExcludedCountries))
	for _, raw := range p.ExcludedCountries {
		code, err := domain.ParseCountryCode(raw)
		if err != nil {
			return Policy{}, dErrors.Wrap(dErrors.CodeConfiguration,
				fmt.Sprintf("excluded country %q", raw), err)
		}
		excluded[code] = struct{}{}
	}

	accepted := make(map[domain.AttestationKind]struct{}, len(p.AcceptedAttestationKinds))
	for _, kind := range p.AcceptedAttestationKinds {
		if !kind.IsValid() {
			return Policy{}, dErrors.New(dErrors.CodeConfiguration,
				fmt.Sprintf("unsupported attestation kind %q", kind))
		}
		accepted[kind] = struct{}{}
	}
	if len(accepted) == 0 {
		// No restriction configured: accept every supported kind.
		accepted = map[domain.AttestationKind]struct{}{
			domain.AttestationPassport:    {},
			domain.AttestationNationalID:  {},
			domain.AttestationBiometricID: {},
		}
	}

	var minAge *int
	if p.MinimumAge != nil {
		v := *p.MinimumAge
		minAge = &v
	}

	return Policy{
		minimumAge:        minAge,
		excludedCountries: excluded,
		sanctionsScreen:   p.SanctionsScreen,
		acceptedKinds:     accepted,
	}, nil
}

// MinimumAge returns the configured age floor, or nil when no age rule
// applies.
func (p Policy) MinimumAge() *int { return p.minimumAge }

// Decision is the complete evaluation outcome. Violations lists every failed
// rule in declaration order, never just the first.
type Decision struct {
	Allowed    bool
	Violations []ViolationKind
}

// Evaluate applies every rule independently, without short-circuiting, so
// the caller receives the complete violation set. Deterministic and
// side-effect free: the same inputs always yield the same decision.
func (p Policy) Evaluate(kind domain.AttestationKind, d domain.Disclosure) Decision {
	var violations []ViolationKind

	// Age rule: the prover must have proven age >= the configured floor.
	if p.minimumAge != nil && !d.AgeOverMinimum {
		violations = append(violations, ViolationMinimumAge)
	}

	// Country rule: a disclosed nationality must not be excluded.
	if d.Nationality != "" {
		if _, excluded := p.excludedCountries[d.Nationality]; excluded {
			violations = append(violations, ViolationExcludedCountry)
		}
	}

	// Sanctions rule: the in-proof screen signal is trusted as-is, never
	// recomputed here.
	if p.sanctionsScreen && d.SanctionsMatch {
		violations = append(violations, ViolationSanctions)
	}

	// Attestation-kind rule.
	if _, ok := p.acceptedKinds[kind]; !ok {
		violations = append(violations, ViolationAttestationKind)
	}

	return Decision{
		Allowed:    len(violations) == 0,
		Violations: violations,
	}
}
