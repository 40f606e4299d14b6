// Package receipt issues signed verification receipts. A receipt lets the
// relying application hand a positive verification outcome to its own backend
// without calling the gateway again. Receipts are only ever minted for
// allowed outcomes.
package receipt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
)

// Claims carried by a verification receipt.
type Claims struct {
	CorrelationToken string   `json:"correlation_token"`
	AttestationKind  string   `json:"attestation_kind"`
	AgeOverMinimum   bool     `json:"age_over_minimum"`
	Nationality      string   `json:"nationality,omitempty"`
	Gender           string   `json:"gender,omitempty"`
	Disclosed        []string `json:"disclosed"`
	jwt.RegisteredClaims
}

// Service mints and validates HS256 receipts.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// New builds the receipt service. An empty signing key disables issuance;
// callers check Enabled before minting.
func New(signingKey, issuer string, ttl time.Duration) *Service {
	return &Service{signingKey: []byte(signingKey), issuer: issuer, ttl: ttl}
}

// Enabled reports whether a signing key is configured.
func (s *Service) Enabled() bool { return len(s.signingKey) > 0 }

// Issue mints a receipt for an allowed verification.
func (s *Service) Issue(token domain.CorrelationToken, kind domain.AttestationKind, d domain.Disclosure) (string, error) {
	if !s.Enabled() {
		return "", dErrors.New(dErrors.CodeConfiguration, "receipt signing key not configured")
	}

	now := time.Now()
	disclosed := make([]string, 0, 3)
	for _, f := range d.Fields() {
		disclosed = append(disclosed, f.String())
	}

	receipt := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		CorrelationToken: token.String(),
		AttestationKind:  kind.String(),
		AgeOverMinimum:   d.AgeOverMinimum,
		Nationality:      string(d.Nationality),
		Gender:           d.Gender,
		Disclosed:        disclosed,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signed, err := receipt.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeInternal, "sign receipt", err)
	}
	return signed, nil
}

// Validate parses and verifies a receipt.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "receipt has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid receipt")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid receipt")
	}
	return claims, nil
}
