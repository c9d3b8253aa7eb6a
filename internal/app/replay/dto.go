package replay

import (
	"time"

	"flashmirror/internal/domain/snapshot"
)

type Request struct {
	SessionID string
	Limit     int
	FromStep  int
	ToStep    int
}

type EntrySummary struct {
	IntentID  string         `json:"intent_id"`
	Intent    string         `json:"intent"`
	Step      int            `json:"step"`
	AppliedAt time.Time      `json:"applied_at"`
	Stats     snapshot.Stats `json:"stats"`
}

type LatestSummary struct {
	Step         int            `json:"step"`
	Firefighters int            `json:"firefighters"`
	Rescuers     int            `json:"rescuers"`
	ActivePOIs   int            `json:"active_pois"`
	CarriedPOIs  int            `json:"carried_pois"`
	Stats        snapshot.Stats `json:"stats"`
	AppliedAt    time.Time      `json:"applied_at"`
}

type Response struct {
	SessionID string         `json:"session_id"`
	Entries   []EntrySummary `json:"entries"`
	Latest    *LatestSummary `json:"latest,omitempty"`
}
