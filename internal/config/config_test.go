package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pitwall/pitwall/internal/alerts"
)

// writeConfig drops the given YAML into a temp file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pitwall.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validYAML = `
engine:
  smoothing_window: 500ms
  rate_lookback: 3m
  alert_dwell: 5s
  pit_window_pct: 25
  thresholds:
    tire_temp:
      warning: 105
      critical: 125
    fuel_pct:
      warning: 15
      critical: 8
      direction: falling
      dwell: 10s
server:
  http_port: 9090
  status_ttl: 10s
  broadcast_interval: 2s
  auth:
    mode: apikey
    key_env: PITWALL_API_KEY
feed:
  replay_path: stint.jsonl
  replay_rate: 60
  session_id: night-stint
`

func TestLoad_FullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.Engine.SmoothingWindow.Std(); got != 500*time.Millisecond {
		t.Errorf("SmoothingWindow = %v, want 500ms", got)
	}
	if got := cfg.Engine.RateLookback.Std(); got != 3*time.Minute {
		t.Errorf("RateLookback = %v, want 3m", got)
	}
	if cfg.Engine.PitWindowPct != 25 {
		t.Errorf("PitWindowPct = %.1f, want 25", cfg.Engine.PitWindowPct)
	}
	if cfg.Server.HTTPPort != 9090 {
		t.Errorf("HTTPPort = %d, want 9090", cfg.Server.HTTPPort)
	}
	if cfg.Feed.SessionID != "night-stint" {
		t.Errorf("SessionID = %q, want night-stint", cfg.Feed.SessionID)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "feed:\n  replay_path: a.jsonl\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Engine.SmoothingWindow.Std(); got != time.Second {
		t.Errorf("default SmoothingWindow = %v, want 1s", got)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("default HTTPPort = %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Feed.ReplayRate != DefaultReplayRate {
		t.Errorf("default ReplayRate = %d, want %d", cfg.Feed.ReplayRate, DefaultReplayRate)
	}
	if cfg.Feed.SessionID != DefaultSessionID {
		t.Errorf("default SessionID = %q, want %q", cfg.Feed.SessionID, DefaultSessionID)
	}
}

func TestLoad_Rejections(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing file is an error", ""}, // handled below
		{"invalid yaml", "engine: ["},
		{"bad duration", "engine:\n  smoothing_window: soon\n"},
		{"inverted rising thresholds", `
engine:
  thresholds:
    water_temp: {warning: 110, critical: 100}
`},
		{"inverted falling thresholds", `
engine:
  thresholds:
    fuel_pct: {warning: 5, critical: 15, direction: falling}
`},
		{"unknown direction", `
engine:
  thresholds:
    oil_temp: {warning: 100, critical: 130, direction: sideways}
`},
		{"port out of range", "server:\n  http_port: 70000\n"},
		{"unknown auth mode", "server:\n  auth:\n    mode: oauth\n"},
		{"negative replay rate", "feed:\n  replay_rate: -1\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var path string
			if tc.yaml == "" {
				path = filepath.Join(t.TempDir(), "absent.yaml")
			} else {
				path = writeConfig(t, tc.yaml)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("Load: expected error, got nil")
			}
		})
	}
}

func TestEngineOptions_MapsThresholds(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts := cfg.EngineOptions()

	if opts.SmoothingWindowSeconds != 0.5 {
		t.Errorf("SmoothingWindowSeconds = %.2f, want 0.5", opts.SmoothingWindowSeconds)
	}
	if opts.RateLookbackSeconds != 180 {
		t.Errorf("RateLookbackSeconds = %.1f, want 180", opts.RateLookbackSeconds)
	}

	tire := opts.Thresholds["tire_temp"]
	if tire.Warning != 105 || tire.Critical != 125 {
		t.Errorf("tire thresholds = %.0f/%.0f, want 105/125", tire.Warning, tire.Critical)
	}
	if tire.DwellSeconds != 5 {
		t.Errorf("tire dwell = %.1f, want shared 5s dwell", tire.DwellSeconds)
	}

	fuel := opts.Thresholds["fuel_pct"]
	if fuel.Direction != alerts.Falling {
		t.Error("fuel_pct direction: want Falling")
	}
	if fuel.DwellSeconds != 10 {
		t.Errorf("fuel dwell = %.1f, want per-metric 10s override", fuel.DwellSeconds)
	}

	// Metrics not mentioned in the file keep defaults but pick up the
	// shared dwell.
	water := opts.Thresholds["water_temp"]
	if water.Warning != 90 || water.Critical != 100 {
		t.Errorf("water thresholds = %.0f/%.0f, want defaults 90/100", water.Warning, water.Critical)
	}
	if water.DwellSeconds != 5 {
		t.Errorf("water dwell = %.1f, want shared 5s dwell", water.DwellSeconds)
	}
}

func TestAuthConfig_KeyResolution(t *testing.T) {
	a := AuthConfig{Mode: "apikey", KeyEnv: "PITWALL_TEST_KEY"}
	t.Setenv("PITWALL_TEST_KEY", "secret")
	if got := a.Key(); got != "secret" {
		t.Errorf("Key = %q, want secret", got)
	}
	if got := (AuthConfig{}).Key(); got != "" {
		t.Errorf("Key without KeyEnv = %q, want empty", got)
	}
	if got := a.EffectiveHeader(); got != "X-API-Key" {
		t.Errorf("EffectiveHeader = %q, want X-API-Key", got)
	}
}
