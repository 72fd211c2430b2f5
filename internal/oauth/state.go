package oauth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultStateTTL bounds how long an authorization URL stays usable.
const DefaultStateTTL = 10 * time.Minute

// stateStore tracks outstanding authorization requests for one connector.
type stateStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]time.Time
	now     func() time.Time
}

func newStateStore(ttl time.Duration) *stateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &stateStore{
		ttl:     ttl,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *stateStore) issue() string {
	state := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	s.entries[state] = s.now().Add(s.ttl)
	return state
}

// consume removes state and reports whether it was outstanding.
func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expires, ok := s.entries[state]
	if !ok {
		return false
	}
	delete(s.entries, state)
	return s.now().Before(expires)
}

func (s *stateStore) pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	return len(s.entries) > 0
}

func (s *stateStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]time.Time)
}

func (s *stateStore) pruneLocked() {
	now := s.now()
	for state, expires := range s.entries {
		if !now.Before(expires) {
			delete(s.entries, state)
		}
	}
}
