//go:build e2e

package e2e

import (
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"flashmirror/internal/adapter/gateway/hertzclient"
	"flashmirror/internal/adapter/mirror/spatial"
	"flashmirror/internal/adapter/mirror/summary"
	"flashmirror/internal/app/dispatch"
	"flashmirror/internal/app/ports"
	"flashmirror/internal/app/reconcile"
	"flashmirror/internal/domain/snapshot"

	"github.com/sirupsen/logrus"
)

func TestRemoteAPI_GameLifecycle(t *testing.T) {
	baseURL := strings.TrimRight(envOr("E2E_BASE_URL", "http://localhost:3690"), "/")
	gw, err := hertzclient.New(hertzclient.Config{BaseURL: baseURL, Timeout: 20 * time.Second})
	if err != nil {
		t.Fatalf("gateway: %v", err)
	}

	scene := spatial.NewScene(1)
	board := summary.NewBoard()
	engine := reconcile.NewEngine(
		reconcile.Target{Name: "spatial", Agents: scene.Agents(), POIs: scene.POIs(), Grid: scene},
		reconcile.Target{Name: "summary", Agents: board.Agents(), POIs: board.POIs(), Stats: board},
	)
	log := logrus.New()
	log.SetOutput(io.Discard)
	d, err := dispatch.New(dispatch.Deps{Gateway: gw, Engine: engine, Log: log})
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	ctx := context.Background()

	t.Run("ping", func(t *testing.T) {
		if _, err := d.Ping(ctx); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})

	t.Run("create step move reset", func(t *testing.T) {
		s, err := d.CreateGame(ctx, dispatch.GameConfig{Width: 6, Height: 6, NumFirefighters: 3, InitialPOIs: 3})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if s.Dimensions != (snapshot.Dimensions{Width: 6, Height: 6}) {
			t.Fatalf("dimensions=%+v", s.Dimensions)
		}
		assertCoverage(t, s, scene, board)

		if s, err = d.ExecuteStep(ctx); err != nil {
			t.Fatalf("step: %v", err)
		}
		assertCoverage(t, s, scene, board)

		if s, err = d.ExecuteSteps(ctx, 2); err != nil {
			t.Fatalf("steps: %v", err)
		}
		assertCoverage(t, s, scene, board)

		if len(s.Firefighters) > 0 {
			ff := s.Firefighters[0]
			_, err := d.MoveAgent(ctx, ff.ID, ff.Position.X, ff.Position.Y)
			if err != nil && !errors.Is(err, ports.ErrRemote) {
				t.Fatalf("move: %v", err)
			}
			cur, _ := d.Current()
			assertCoverage(t, cur, scene, board)
		}

		if err := d.ResetGame(ctx); err != nil {
			t.Fatalf("reset: %v", err)
		}
		if _, ok := d.Current(); ok {
			t.Fatalf("snapshot should be unset after reset")
		}
		if v := scene.View(); len(v.Firefighters) != 0 || len(v.POIs) != 0 {
			t.Fatalf("spatial mirror not cleared: %+v", v)
		}
	})

	t.Run("state without game is a network error", func(t *testing.T) {
		_, err := d.Refresh(ctx)
		if !errors.Is(err, ports.ErrNetwork) {
			t.Fatalf("expected network error after reset, got %v", err)
		}
	})
}

func assertCoverage(t *testing.T, s snapshot.Snapshot, scene *spatial.Scene, board *summary.Board) {
	t.Helper()
	wantAgents := make([]int, 0, len(s.Firefighters))
	for _, a := range s.Firefighters {
		wantAgents = append(wantAgents, a.ID)
	}
	wantPOIs := make([]int, 0, len(s.POIs))
	for _, p := range s.ActivePOIs() {
		wantPOIs = append(wantPOIs, p.ID)
	}
	sort.Ints(wantAgents)
	sort.Ints(wantPOIs)
	for name, got := range map[string][]int{
		"spatial agents": scene.Agents().IDs(),
		"summary agents": board.Agents().IDs(),
	} {
		if !equal(got, wantAgents) {
			t.Fatalf("%s=%v want=%v", name, got, wantAgents)
		}
	}
	for name, got := range map[string][]int{
		"spatial pois": scene.POIs().IDs(),
		"summary pois": board.POIs().IDs(),
	} {
		if !equal(got, wantPOIs) {
			t.Fatalf("%s=%v want=%v", name, got, wantPOIs)
		}
	}
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func envOr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}
