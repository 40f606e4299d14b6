package devstub

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofgate/internal/verifier/ports"
	"proofgate/pkg/domain"
)

func TestVerifyProofDecodesSignals(t *testing.T) {
	checker := New(nil)

	disclosure, err := checker.VerifyProof(context.Background(),
		domain.AttestationPassport,
		json.RawMessage(`{}`),
		[]string{"passport", "1", "fr", "M", "0", "nullifier-7"})
	require.NoError(t, err)

	assert.True(t, disclosure.AgeOverMinimum)
	assert.Equal(t, domain.CountryCode("FR"), disclosure.Nationality)
	assert.Equal(t, "M", disclosure.Gender)
	assert.False(t, disclosure.SanctionsMatch)
	assert.Equal(t, "nullifier-7", disclosure.Nullifier)
}

func TestVerifyProofOutcomeOverrides(t *testing.T) {
	checker := New(nil)
	signals := []string{"passport", "1", "", "", "0", "n"}

	_, err := checker.VerifyProof(context.Background(), domain.AttestationPassport,
		json.RawMessage(`{"outcome":"invalid"}`), signals)
	assert.ErrorIs(t, err, ports.ErrProofInvalid)

	_, err = checker.VerifyProof(context.Background(), domain.AttestationPassport,
		json.RawMessage(`{"outcome":"expired"}`), signals)
	assert.ErrorIs(t, err, ports.ErrCredentialExpired)
}

func TestVerifyProofClassifiesBadInput(t *testing.T) {
	checker := New(nil)

	_, err := checker.VerifyProof(context.Background(), domain.AttestationPassport,
		json.RawMessage(`not json`), []string{"passport", "1", "", "", "0", "n"})
	assert.ErrorIs(t, err, ports.ErrProofInvalid)

	_, err = checker.VerifyProof(context.Background(), domain.AttestationPassport,
		json.RawMessage(`{}`), []string{"passport", "1"})
	assert.ErrorIs(t, err, ports.ErrSignalMalformed)

	_, err = checker.VerifyProof(context.Background(), domain.AttestationPassport,
		json.RawMessage(`{}`), []string{"national_id", "1", "", "", "0", "n"})
	assert.ErrorIs(t, err, ports.ErrAttestationMismatch)

	_, err = checker.VerifyProof(context.Background(), domain.AttestationPassport,
		json.RawMessage(`{}`), []string{"passport", "1", "NOT-A-COUNTRY", "", "0", "n"})
	assert.ErrorIs(t, err, ports.ErrSignalMalformed)
}
