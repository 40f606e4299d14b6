package policy

import (
	"proofgate/pkg/domain"
)

// DefaultName is the policy applied when a scope has no dedicated policy.
const DefaultName = "default"

// Store holds named disclosure policies. Populated once at startup and
// read-only during request handling, so no locking is needed.
type Store struct {
	policies map[string]Policy
}

// NewStore builds a store with the given default policy.
func NewStore(def Policy) *Store {
	return &Store{policies: map[string]Policy{DefaultName: def}}
}

// Register adds or replaces a named policy. Call only during startup wiring.
func (s *Store) Register(name string, p Policy) {
	s.policies[name] = p
}

// Lookup resolves a policy by name, falling back to the default for unknown
// names so per-scope policies stay optional.
func (s *Store) Lookup(name string) Policy {
	if p, ok := s.policies[name]; ok {
		return p
	}
	return s.policies[DefaultName]
}

// Evaluate resolves the named policy and evaluates the disclosure against
// it. The named form exists so callers never hold Policy values across
// requests.
func (s *Store) Evaluate(name string, kind domain.AttestationKind, d domain.Disclosure) Decision {
	return s.Lookup(name).Evaluate(kind, d)
}

// FromParams builds a store from raw configuration for main wiring.
func FromParams(def Params) (*Store, error) {
	p, err := New(def)
	if err != nil {
		return nil, err
	}
	return NewStore(p), nil
}
