package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"flashmirror/internal/app/dispatch"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", envOf(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:3690" || cfg.RequestTimeout != 10*time.Second || cfg.AutoStepInterval != time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Game != dispatch.DefaultGameConfig() {
		t.Fatalf("game=%+v", cfg.Game)
	}
	if cfg.OpsAddr != ":8080" || cfg.FeedAddr != ":8081" || cfg.DBDSN != "" {
		t.Fatalf("unexpected addrs: %+v", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flashmirror.yaml")
	yml := `
base_url: http://sim.local:9000
request_timeout: 3s
autostep_interval: 500ms
game:
  width: 6
  height: 6
  num_firefighters: 3
  initial_pois: 2
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path, envOf(map[string]string{
		"FLASHMIRROR_AUTOSTEP_INTERVAL": "2",
		"FLASHMIRROR_DB_DSN":            "postgres://x",
		"LOG_FORMAT":                    "json",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://sim.local:9000" || cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.AutoStepInterval != 2*time.Second {
		t.Fatalf("env should override file: interval=%v", cfg.AutoStepInterval)
	}
	want := dispatch.GameConfig{Width: 6, Height: 6, NumFirefighters: 3, InitialPOIs: 2}
	if cfg.Game != want {
		t.Fatalf("game=%+v want=%+v", cfg.Game, want)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" || cfg.DBDSN != "postgres://x" {
		t.Fatalf("unexpected log/dsn: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []map[string]string{
		{"FLASHMIRROR_BASE_URL": "localhost:3690"},
		{"FLASHMIRROR_REQUEST_TIMEOUT": "soon"},
		{"FLASHMIRROR_AUTOSTEP_INTERVAL": "-1s"},
	}
	for _, env := range cases {
		if _, err := Load("", envOf(env)); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("env=%v expected ErrInvalidConfig, got %v", env, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), envOf(nil)); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"1.5":   1500 * time.Millisecond,
		"250ms": 250 * time.Millisecond,
		"2m":    2 * time.Minute,
	}
	for in, want := range cases {
		got, err := parseDuration(in)
		if err != nil || got != want {
			t.Fatalf("parseDuration(%q)=%v,%v want=%v", in, got, err, want)
		}
	}
}
