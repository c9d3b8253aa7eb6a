package replay

import (
	"context"
	"errors"
	"strings"

	"flashmirror/internal/app/ports"
)

var ErrInvalidRequest = errors.New("invalid replay request")

type UseCase struct {
	Journal ports.SnapshotJournal
	// CurrentSession supplies the session id when the request names none.
	CurrentSession func() string
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" && u.CurrentSession != nil {
		sessionID = u.CurrentSession()
	}
	if sessionID == "" || req.Limit < 0 || (req.ToStep > 0 && req.ToStep < req.FromStep) {
		return Response{}, ErrInvalidRequest
	}
	entries, err := u.Journal.ListBySession(ctx, sessionID, req.Limit)
	if err != nil {
		return Response{}, err
	}
	entries = filterBySteps(entries, req.FromStep, req.ToStep)

	resp := Response{SessionID: sessionID, Entries: make([]EntrySummary, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, EntrySummary{
			IntentID:  e.IntentID,
			Intent:    e.Intent,
			Step:      e.Step,
			AppliedAt: e.AppliedAt,
			Stats:     e.Snapshot.Stats,
		})
	}
	if len(entries) > 0 {
		latest := summarize(entries[0])
		resp.Latest = &latest
	}
	return resp, nil
}

// filterBySteps keeps entries with from <= step <= to; zero bounds are open.
func filterBySteps(entries []ports.JournalEntry, from, to int) []ports.JournalEntry {
	if from <= 0 && to <= 0 {
		return entries
	}
	out := make([]ports.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if from > 0 && e.Step < from {
			continue
		}
		if to > 0 && e.Step > to {
			continue
		}
		out = append(out, e)
	}
	return out
}

func summarize(e ports.JournalEntry) LatestSummary {
	s := e.Snapshot
	out := LatestSummary{
		Step:         e.Step,
		Firefighters: len(s.Firefighters),
		ActivePOIs:   len(s.ActivePOIs()),
		Stats:        s.Stats,
		AppliedAt:    e.AppliedAt,
	}
	for _, a := range s.Firefighters {
		if a.Role.IsRescuer() {
			out.Rescuers++
		}
	}
	for _, p := range s.POIs {
		if !p.Rescued && p.CarriedBy != nil {
			out.CarriedPOIs++
		}
	}
	return out
}
