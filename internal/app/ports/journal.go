package ports

import (
	"context"
	"time"

	"flashmirror/internal/domain/snapshot"
)

type JournalEntry struct {
	SessionID string
	IntentID  string
	Intent    string
	Step      int
	Snapshot  snapshot.Snapshot
	AppliedAt time.Time
}

// SnapshotJournal records every snapshot the mirrors were reconciled to.
type SnapshotJournal interface {
	Append(ctx context.Context, entry JournalEntry) error
	// ListBySession returns entries newest first. limit <= 0 means all.
	ListBySession(ctx context.Context, sessionID string, limit int) ([]JournalEntry, error)
	CloseSession(ctx context.Context, sessionID string, closedAt time.Time) error
}
