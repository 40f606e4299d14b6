package replay

import (
	"context"
	"sync"
	"time"

	"proofgate/pkg/platform/sentinel"
)

// InMemoryStore tracks consumed nullifiers in process memory. Suitable for
// single-instance deployments and tests; expired entries are removed on
// access and by an amortized sweep so the map does not grow with nullifiers
// that are never submitted again.
type InMemoryStore struct {
	mu        sync.Mutex
	seen      map[string]time.Time
	ttl       time.Duration
	nextSweep time.Time
}

// NewInMemoryStore creates a store. A zero ttl keeps entries forever.
func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{seen: make(map[string]time.Time), ttl: ttl}
}

// Consume marks the nullifier as used. The check and the write happen under
// one lock so concurrent submissions of the same proof cannot both pass.
func (s *InMemoryStore) Consume(_ context.Context, nullifier string) error {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, ok := s.seen[nullifier]; ok {
		if expiry.IsZero() || now.Before(expiry) {
			return sentinel.ErrAlreadyUsed
		}
		delete(s.seen, nullifier)
	}
	s.sweepLocked(now)

	var expiry time.Time
	if s.ttl > 0 {
		expiry = now.Add(s.ttl)
	}
	s.seen[nullifier] = expiry
	return nil
}

// Len reports the number of tracked, unexpired nullifiers still held.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// sweepLocked drops expired entries at most once per ttl interval. Callers
// hold s.mu.
func (s *InMemoryStore) sweepLocked(now time.Time) {
	if s.ttl <= 0 || now.Before(s.nextSweep) {
		return
	}
	for nullifier, expiry := range s.seen {
		if !expiry.IsZero() && !now.Before(expiry) {
			delete(s.seen, nullifier)
		}
	}
	s.nextSweep = now.Add(s.ttl)
}
