package hertzclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"flashmirror/internal/app/ports"
	"flashmirror/internal/domain/snapshot"
)

// The create route answers with initial_state; everything else uses state.
type wireEnvelope struct {
	Status       string          `json:"status"`
	Message      string          `json:"message"`
	State        json.RawMessage `json:"state"`
	InitialState json.RawMessage `json:"initial_state"`
	Data         json.RawMessage `json:"data"`
}

var acceptedStatuses = []string{"success", "connected"}

func accepted(status string) bool {
	for _, s := range acceptedStatuses {
		if strings.EqualFold(strings.TrimSpace(status), s) {
			return true
		}
	}
	return false
}

func decodeEnvelope(httpStatus int, raw []byte) (ports.Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(raw, &w); err != nil {
		return ports.Envelope{}, ports.DecodeError(fmt.Sprintf("envelope: %v", err), err)
	}
	if strings.TrimSpace(w.Status) == "" {
		return ports.Envelope{}, ports.DecodeError("envelope: missing status", nil)
	}
	if !accepted(w.Status) {
		msg := w.Message
		if msg == "" {
			msg = w.Status
		}
		return ports.Envelope{}, ports.RemoteError(httpStatus, msg)
	}

	env := ports.Envelope{Status: w.Status, Message: w.Message}
	if present(w.Data) {
		env.Data = w.Data
	}
	stateRaw := w.State
	if !present(stateRaw) {
		stateRaw = w.InitialState
	}
	if present(stateRaw) {
		s, err := decodeSnapshot(stateRaw)
		if err != nil {
			return ports.Envelope{}, err
		}
		env.State = &s
	}
	return env, nil
}

func decodeSnapshot(raw json.RawMessage) (snapshot.Snapshot, error) {
	var s snapshot.Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return snapshot.Snapshot{}, ports.DecodeError(fmt.Sprintf("snapshot: %v", err), err)
	}
	if err := s.Validate(); err != nil {
		return snapshot.Snapshot{}, ports.DecodeError(err.Error(), err)
	}
	return s, nil
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// peekMessage pulls a message out of an error body when it is an envelope.
func peekMessage(raw []byte) string {
	var w wireEnvelope
	if err := json.Unmarshal(raw, &w); err != nil {
		return ""
	}
	return strings.TrimSpace(w.Message)
}
