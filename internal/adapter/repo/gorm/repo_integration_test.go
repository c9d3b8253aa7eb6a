package gormrepo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"flashmirror/db"
	"flashmirror/internal/app/ports"
	"flashmirror/internal/domain/snapshot"

	"github.com/google/uuid"
)

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("FLASHMIRROR_DB_DSN")
	if dsn == "" {
		t.Skip("FLASHMIRROR_DB_DSN is required for integration test")
	}
	return dsn
}

func TestJournalRepo_RoundTripNewestFirst(t *testing.T) {
	dsn := requireDSN(t)
	gdb, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	if _, err := ApplyMigrations(ctx, gdb, db.Migrations, db.MigrationsDir); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := NewJournalRepo(gdb)
	sessionID := "it-" + uuid.NewString()
	base := time.Now().UTC().Truncate(time.Millisecond)
	for step := 0; step < 3; step++ {
		err := repo.Append(ctx, ports.JournalEntry{
			SessionID: sessionID,
			IntentID:  uuid.NewString(),
			Intent:    "execute_step",
			Step:      step,
			Snapshot: snapshot.Snapshot{
				Step:       step,
				Dimensions: snapshot.Dimensions{Width: 1, Height: 1},
				Grid:       [][]snapshot.Cell{{{FireState: snapshot.FireSmoke}}},
				Stats:      snapshot.Stats{SmokeCells: 1},
			},
			AppliedAt: base.Add(time.Duration(step) * time.Second),
		})
		if err != nil {
			t.Fatalf("append step %d: %v", step, err)
		}
	}

	got, err := repo.ListBySession(ctx, sessionID, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Step != 2 || got[1].Step != 1 {
		t.Fatalf("unexpected entries: %+v", got)
	}
	if got[0].Snapshot.Grid[0][0].FireState != snapshot.FireSmoke {
		t.Fatalf("snapshot did not round trip: %+v", got[0].Snapshot)
	}

	if err := repo.CloseSession(ctx, sessionID, base.Add(time.Minute)); err != nil {
		t.Fatalf("close: %v", err)
	}
	err = repo.Append(ctx, ports.JournalEntry{SessionID: sessionID, IntentID: uuid.NewString(), Intent: "execute_step", Step: 3, AppliedAt: base})
	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestJournalRepo_UnknownSession(t *testing.T) {
	dsn := requireDSN(t)
	gdb, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	repo := NewJournalRepo(gdb)
	if _, err := repo.ListBySession(context.Background(), "it-missing-"+uuid.NewString(), 0); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.CloseSession(context.Background(), "it-missing-"+uuid.NewString(), time.Now()); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
