package memory

import (
	"sync"
	"time"

	"flashmirror/internal/app/ports"
)

type Store struct {
	mu       sync.RWMutex
	sessions map[string][]ports.JournalEntry
	closed   map[string]time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string][]ports.JournalEntry),
		closed:   make(map[string]time.Time),
	}
}

// ClosedAt reports when a session was closed, if it was.
func (s *Store) ClosedAt(sessionID string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.closed[sessionID]
	return t, ok
}
