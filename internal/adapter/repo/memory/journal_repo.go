package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flashmirror/internal/app/ports"
)

type JournalRepo struct {
	store *Store
}

func NewJournalRepo(store *Store) JournalRepo {
	return JournalRepo{store: store}
}

func (r JournalRepo) Append(_ context.Context, entry ports.JournalEntry) error {
	if strings.TrimSpace(entry.SessionID) == "" {
		return fmt.Errorf("journal append: empty session id")
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, closed := r.store.closed[entry.SessionID]; closed {
		return fmt.Errorf("journal append: session %s is closed", entry.SessionID)
	}
	r.store.sessions[entry.SessionID] = append(r.store.sessions[entry.SessionID], entry)
	return nil
}

func (r JournalRepo) ListBySession(_ context.Context, sessionID string, limit int) ([]ports.JournalEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	entries, ok := r.store.sessions[sessionID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	n := len(entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]ports.JournalEntry, 0, n)
	for i := len(entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func (r JournalRepo) CloseSession(_ context.Context, sessionID string, closedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sessions[sessionID]; !ok {
		return ports.ErrNotFound
	}
	r.store.closed[sessionID] = closedAt
	return nil
}
