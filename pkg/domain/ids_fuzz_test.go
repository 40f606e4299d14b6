//go:build go1.18

package domain

import (
	"testing"
)

// FuzzParseScopeID verifies parsing never panics on arbitrary input and that
// accepted values round-trip unchanged. Scope IDs arrive from relier requests,
// so this is a trust boundary.
func FuzzParseScopeID(f *testing.F) {
	f.Add("")
	f.Add("acme-shop")
	f.Add("relier_42")
	f.Add("'; DROP TABLE sessions;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("acme\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseScopeID(input)
		if err != nil {
			return
		}

		roundTrip, err2 := ParseScopeID(id.String())
		if err2 != nil {
			t.Errorf("accepted scope id failed round-trip: %v", err2)
		}
		if roundTrip != id {
			t.Error("round-trip changed scope id value")
		}
	})
}

// FuzzParseCorrelationToken verifies the token parser never panics and that
// accepted tokens round-trip through their string form.
func FuzzParseCorrelationToken(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		token, err := ParseCorrelationToken(input)
		if err != nil {
			return
		}

		roundTrip, err2 := ParseCorrelationToken(token.String())
		if err2 != nil {
			t.Errorf("accepted token failed round-trip: %v", err2)
		}
		if roundTrip != token {
			t.Error("round-trip changed token value")
		}
	})
}
