package ports

import (
	"time"

	"flashmirror/internal/domain/snapshot"
)

type EventKind string

const (
	EventStateUpdated EventKind = "state_updated"
	EventError        EventKind = "error"
)

// Event is what observers see. A StateUpdated event with a nil Snapshot
// means the game was reset.
type Event struct {
	Kind       EventKind          `json:"type"`
	Intent     string             `json:"intent"`
	IntentID   string             `json:"intent_id"`
	Snapshot   *snapshot.Snapshot `json:"snapshot,omitempty"`
	Message    string             `json:"message,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(evt Event)
}
