package memory

import (
	"context"
	"sync"

	audit "proofgate/pkg/platform/audit"
)

// InMemoryStore keeps audit events in process memory. Default store for dev
// and tests; production deployments configure Postgres.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListRecent returns the most recent N events, newest last.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := len(s.events) - limit
	if limit <= 0 || start < 0 {
		start = 0
	}
	return append([]audit.Event{}, s.events[start:]...), nil
}

// Clear removes all events. Test helper.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
