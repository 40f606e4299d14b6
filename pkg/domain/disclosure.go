package domain

// Disclosure is the decoded, policy-relevant attribute set revealed by a
// valid proof. It is produced exclusively by the proof checker from public
// signals and is never accepted as untrusted caller input.
//
// The fields mirror what the circuit can disclose without revealing the
// underlying document: a boolean age-floor result, coarse identity
// attributes, and a sanctions-screen signal computed inside the proof.
type Disclosure struct {
	// AgeOverMinimum reports whether the prover demonstrated
	// age >= the session's requested minimum. False either means the check
	// failed or was not requested.
	AgeOverMinimum bool

	// Nationality is the disclosed nationality code, empty when not
	// requested.
	Nationality CountryCode

	// Gender is the disclosed gender marker as printed on the underlying
	// document, empty when not requested.
	Gender string

	// SanctionsMatch carries the in-circuit sanctions screen result. The
	// gateway treats it as a black-box signal and never recomputes it.
	SanctionsMatch bool

	// Nullifier is the proof's unique one-time binding value, used for
	// replay prevention. Stable for a given proof, unlinkable across scopes.
	Nullifier string
}

// Fields reports which disclosure fields carry meaningful values, so
// responses can be trimmed to what the relier asked for.
func (d Disclosure) Fields() []DisclosureField {
	var fields []DisclosureField
	fields = append(fields, DisclosureMinimumAge)
	if d.Nationality != "" {
		fields = append(fields, DisclosureNationality)
	}
	if d.Gender != "" {
		fields = append(fields, DisclosureGender)
	}
	return fields
}
