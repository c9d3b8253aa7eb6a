package ports

import (
	"context"
	"encoding/json"

	"flashmirror/internal/domain/snapshot"
)

// Envelope is the decoded body of every remote response.
type Envelope struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	State   *snapshot.Snapshot `json:"state,omitempty"`
	Data    json.RawMessage    `json:"data,omitempty"`
}

func (e Envelope) HasState() bool {
	return e.State != nil
}

// Gateway issues one request against the remote authority. It performs no
// retries and keeps no state between calls. Failures are *TransportError.
type Gateway interface {
	Send(ctx context.Context, method, path string, body any) (Envelope, error)
}
