package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
	"proofgate/pkg/requestcontext"
)

func TestNewBrokerEndpointValidation(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantErr  bool
	}{
		{name: "https endpoint", endpoint: "https://gateway.example.com/verify"},
		{name: "http endpoint", endpoint: "http://localhost:8080/verify"},
		{name: "empty", endpoint: "", wantErr: true},
		{name: "relative path", endpoint: "/verify", wantErr: true},
		{name: "missing host", endpoint: "https://", wantErr: true},
		{name: "wrong scheme", endpoint: "ftp://gateway.example.com/verify", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBroker(tt.endpoint)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, dErrors.CodeConfiguration, dErrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCreateSessionDescriptor(t *testing.T) {
	broker, err := NewBroker("https://gateway.example.com/verify")
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	sess, err := broker.CreateSession(ctx, "acme-web",
		[]domain.DisclosureField{domain.DisclosureMinimumAge, domain.DisclosureNationality, domain.DisclosureMinimumAge},
		[]domain.AttestationKind{domain.AttestationPassport, domain.AttestationPassport},
	)
	require.NoError(t, err)

	assert.Equal(t, domain.ScopeID("acme-web"), sess.ScopeID)
	assert.Equal(t, "https://gateway.example.com/verify", sess.Endpoint)
	assert.False(t, sess.CorrelationUserID.IsNil())
	assert.Equal(t, now, sess.CreatedAt)
	// Duplicates collapse, order preserved.
	assert.Equal(t, []domain.DisclosureField{domain.DisclosureMinimumAge, domain.DisclosureNationality}, sess.RequestedDisclosures)
	assert.Equal(t, []domain.AttestationKind{domain.AttestationPassport}, sess.AttestationKinds)
}

func TestCreateSessionRequiresScope(t *testing.T) {
	broker, err := NewBroker("https://gateway.example.com/verify")
	require.NoError(t, err)

	_, err = broker.CreateSession(context.Background(), "", nil, nil)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeConfiguration, dErrors.CodeOf(err))
}

func TestCorrelationTokensAreUnique(t *testing.T) {
	broker, err := NewBroker("https://gateway.example.com/verify")
	require.NoError(t, err)

	const n = 10000
	seen := make(map[domain.CorrelationToken]struct{}, n)
	for range n {
		sess, err := broker.CreateSession(context.Background(), "acme-web", nil, nil)
		require.NoError(t, err)
		_, dup := seen[sess.CorrelationUserID]
		require.False(t, dup, "correlation token collision")
		seen[sess.CorrelationUserID] = struct{}{}
	}
}
