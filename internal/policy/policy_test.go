package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
)

func intPtr(v int) *int { return &v }

func TestNewPolicyValidation(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{
			name:   "valid full policy",
			params: Params{MinimumAge: intPtr(18), ExcludedCountries: []string{"ir", "KP"}, SanctionsScreen: true},
		},
		{
			name:   "zero minimum age allowed",
			params: Params{MinimumAge: intPtr(0)},
		},
		{
			name:    "negative minimum age rejected",
			params:  Params{MinimumAge: intPtr(-1)},
			wantErr: true,
		},
		{
			name:    "minimum age above 150 rejected",
			params:  Params{MinimumAge: intPtr(151)},
			wantErr: true,
		},
		{
			name:    "garbage country code rejected",
			params:  Params{ExcludedCountries: []string{"XYZ123"}},
			wantErr: true,
		},
		{
			name:   "alpha-3 country codes accepted",
			params: Params{ExcludedCountries: []string{"PRK"}},
		},
		{
			name:    "unsupported attestation kind rejected",
			params:  Params{AcceptedAttestationKinds: []domain.AttestationKind{"library_card"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.params)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, dErrors.CodeConfiguration, dErrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEvaluateCollectsAllViolations(t *testing.T) {
	p, err := New(Params{
		MinimumAge:               intPtr(18),
		ExcludedCountries:        []string{"KP"},
		SanctionsScreen:          true,
		AcceptedAttestationKinds: []domain.AttestationKind{domain.AttestationPassport},
	})
	require.NoError(t, err)

	decision := p.Evaluate(domain.AttestationBiometricID, domain.Disclosure{
		AgeOverMinimum: false,
		Nationality:    "KP",
		SanctionsMatch: true,
	})

	assert.False(t, decision.Allowed)
	// Every rule is evaluated; nothing short-circuits.
	assert.Equal(t, []ViolationKind{
		ViolationMinimumAge,
		ViolationExcludedCountry,
		ViolationSanctions,
		ViolationAttestationKind,
	}, decision.Violations)
}

func TestEvaluateSingleRuleFailures(t *testing.T) {
	base := Params{
		MinimumAge:        intPtr(18),
		ExcludedCountries: []string{"KP"},
		SanctionsScreen:   true,
	}

	passing := domain.Disclosure{
		AgeOverMinimum: true,
		Nationality:    "DE",
	}

	tests := []struct {
		name       string
		disclosure domain.Disclosure
		kind       domain.AttestationKind
		want       []ViolationKind
	}{
		{
			name:       "all rules satisfied",
			disclosure: passing,
			kind:       domain.AttestationPassport,
			want:       nil,
		},
		{
			name: "age floor not proven",
			disclosure: domain.Disclosure{
				AgeOverMinimum: false,
				Nationality:    "DE",
			},
			kind: domain.AttestationPassport,
			want: []ViolationKind{ViolationMinimumAge},
		},
		{
			name: "excluded nationality",
			disclosure: domain.Disclosure{
				AgeOverMinimum: true,
				Nationality:    "KP",
			},
			kind: domain.AttestationPassport,
			want: []ViolationKind{ViolationExcludedCountry},
		},
		{
			name: "sanctions signal set",
			disclosure: domain.Disclosure{
				AgeOverMinimum: true,
				Nationality:    "DE",
				SanctionsMatch: true,
			},
			kind: domain.AttestationPassport,
			want: []ViolationKind{ViolationSanctions},
		},
		{
			name:       "undisclosed nationality passes country rule",
			disclosure: domain.Disclosure{AgeOverMinimum: true},
			kind:       domain.AttestationPassport,
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(base)
			require.NoError(t, err)

			decision := p.Evaluate(tt.kind, tt.disclosure)
			assert.Equal(t, tt.want, decision.Violations)
			assert.Equal(t, len(tt.want) == 0, decision.Allowed)
		})
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	p, err := New(Params{MinimumAge: intPtr(21), SanctionsScreen: true})
	require.NoError(t, err)

	d := domain.Disclosure{AgeOverMinimum: false, SanctionsMatch: true}
	first := p.Evaluate(domain.AttestationNationalID, d)
	for range 10 {
		assert.Equal(t, first, p.Evaluate(domain.AttestationNationalID, d))
	}
}

func TestStoreLookupFallsBackToDefault(t *testing.T) {
	def, err := New(Params{MinimumAge: intPtr(18)})
	require.NoError(t, err)
	strict, err := New(Params{MinimumAge: intPtr(21)})
	require.NoError(t, err)

	store := NewStore(def)
	store.Register("casino", strict)

	adult := domain.Disclosure{AgeOverMinimum: true}

	assert.True(t, store.Evaluate("unknown-scope", domain.AttestationPassport, adult).Allowed)
	assert.True(t, store.Evaluate("casino", domain.AttestationPassport, adult).Allowed)
	assert.False(t, store.Evaluate("casino", domain.AttestationPassport, domain.Disclosure{}).Allowed)
}

func TestSanctionsScreenDisabledIgnoresSignal(t *testing.T) {
	p, err := New(Params{SanctionsScreen: false})
	require.NoError(t, err)

	decision := p.Evaluate(domain.AttestationPassport, domain.Disclosure{
		AgeOverMinimum: true,
		SanctionsMatch: true,
	})
	assert.True(t, decision.Allowed)
}
