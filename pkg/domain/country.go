package domain

import (
	"strings"

	"github.com/asaskevich/govalidator"

	dErrors "proofgate/pkg/domain-errors"
)

// CountryCode is a normalized (uppercase) ISO 3166-1 country code. Both
// alpha-2 and alpha-3 forms are accepted because different attestation kinds
// disclose different forms.
type CountryCode string

// ParseCountryCode validates and normalizes an ISO 3166-1 country code.
//
// Errors: returns CodeValidation when the value is not a recognized alpha-2
// or alpha-3 code.
func ParseCountryCode(s string) (CountryCode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "country code cannot be empty")
	}
	if !govalidator.IsISO3166Alpha2(s) && !govalidator.IsISO3166Alpha3(s) {
		return "", dErrors.New(dErrors.CodeValidation, "invalid ISO 3166 country code")
	}
	return CountryCode(s), nil
}

func (c CountryCode) String() string { return string(c) }
