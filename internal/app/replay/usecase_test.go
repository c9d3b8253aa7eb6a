package replay

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"flashmirror/internal/app/ports"
	"flashmirror/internal/domain/snapshot"
)

func intp(v int) *int { return &v }

func journalEntry(step int) ports.JournalEntry {
	return ports.JournalEntry{
		SessionID: "s1",
		IntentID:  fmt.Sprintf("intent-%d", step),
		Intent:    "execute_step",
		Step:      step,
		AppliedAt: time.Unix(int64(step), 0),
		Snapshot: snapshot.Snapshot{
			Step: step,
			Firefighters: []snapshot.Agent{
				{ID: 1, Role: snapshot.RoleRescuer, Carrying: intp(2)},
				{ID: 2, Role: snapshot.RoleFireFighter},
			},
			POIs: []snapshot.POI{
				{ID: 1},
				{ID: 2, CarriedBy: intp(1)},
				{ID: 3, Rescued: true},
			},
			Stats: snapshot.Stats{RescuedPOIs: 1, FireCells: step},
		},
	}
}

func TestUseCase_SummarizesNewestEntry(t *testing.T) {
	repo := &fakeJournal{entries: []ports.JournalEntry{journalEntry(3), journalEntry(2), journalEntry(1)}}
	uc := UseCase{Journal: repo}

	out, err := uc.Execute(context.Background(), Request{SessionID: "s1", Limit: 10})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(out.Entries) != 3 || out.Entries[0].Step != 3 {
		t.Fatalf("unexpected entries: %+v", out.Entries)
	}
	if out.Latest == nil {
		t.Fatalf("expected latest summary")
	}
	want := LatestSummary{Step: 3, Firefighters: 2, Rescuers: 1, ActivePOIs: 1, CarriedPOIs: 1, Stats: snapshot.Stats{RescuedPOIs: 1, FireCells: 3}, AppliedAt: time.Unix(3, 0)}
	if *out.Latest != want {
		t.Fatalf("got=%+v want=%+v", *out.Latest, want)
	}
	if repo.gotLimit != 10 || repo.gotSession != "s1" {
		t.Fatalf("journal called with session=%q limit=%d", repo.gotSession, repo.gotLimit)
	}
}

func TestUseCase_FiltersBySteps(t *testing.T) {
	repo := &fakeJournal{entries: []ports.JournalEntry{journalEntry(5), journalEntry(4), journalEntry(3), journalEntry(2)}}
	out, err := UseCase{Journal: repo}.Execute(context.Background(), Request{SessionID: "s1", FromStep: 3, ToStep: 4})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(out.Entries) != 2 || out.Entries[0].Step != 4 || out.Entries[1].Step != 3 {
		t.Fatalf("unexpected entries: %+v", out.Entries)
	}
	if out.Latest.Step != 4 {
		t.Fatalf("latest step=%d want=4", out.Latest.Step)
	}
}

func TestUseCase_DefaultsToCurrentSession(t *testing.T) {
	repo := &fakeJournal{entries: []ports.JournalEntry{journalEntry(1)}}
	uc := UseCase{Journal: repo, CurrentSession: func() string { return "live" }}
	out, err := uc.Execute(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if out.SessionID != "live" || repo.gotSession != "live" {
		t.Fatalf("session=%q journal=%q", out.SessionID, repo.gotSession)
	}
}

func TestUseCase_RejectsInvalidRequests(t *testing.T) {
	uc := UseCase{Journal: &fakeJournal{}, CurrentSession: func() string { return "" }}
	cases := []Request{
		{},
		{SessionID: "s1", Limit: -1},
		{SessionID: "s1", FromStep: 5, ToStep: 2},
	}
	for _, req := range cases {
		if _, err := uc.Execute(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("req=%+v expected ErrInvalidRequest, got %v", req, err)
		}
	}
}

func TestUseCase_PropagatesNotFound(t *testing.T) {
	uc := UseCase{Journal: &fakeJournal{err: ports.ErrNotFound}}
	if _, err := uc.Execute(context.Background(), Request{SessionID: "gone"}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type fakeJournal struct {
	entries    []ports.JournalEntry
	err        error
	gotSession string
	gotLimit   int
}

func (f *fakeJournal) Append(context.Context, ports.JournalEntry) error { return nil }

func (f *fakeJournal) ListBySession(_ context.Context, sessionID string, limit int) ([]ports.JournalEntry, error) {
	f.gotSession = sessionID
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func (f *fakeJournal) CloseSession(context.Context, string, time.Time) error { return nil }
