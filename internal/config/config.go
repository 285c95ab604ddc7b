package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pitwall/pitwall/internal/alerts"
	"github.com/pitwall/pitwall/internal/monitor"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort          = 8080
	DefaultStatusTTL         = 5 * time.Second
	DefaultBroadcastInterval = time.Second
	DefaultReplayRate        = 60
	DefaultSessionID         = "session"
)

// Duration wraps time.Duration so YAML values can be written as "30s" or
// "2m" instead of raw nanosecond integers.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler via time.ParseDuration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the top-level configuration. Fields map 1:1 to
// pitwall.example.yaml.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Server ServerConfig `yaml:"server"`
	Feed   FeedConfig   `yaml:"feed"`
}

// EngineConfig holds the derived-metrics engine tuning.
type EngineConfig struct {
	// SmoothingWindow sizes the temperature trend windows. Default 1s, which
	// retains about one second's worth of the 60 Hz feed.
	SmoothingWindow Duration `yaml:"smoothing_window"`

	// RateLookback bounds the per-minute consumption/wear rate windows.
	RateLookback Duration `yaml:"rate_lookback"`

	// AlertDwell is the hysteresis dwell applied to every metric that does
	// not override it.
	AlertDwell Duration `yaml:"alert_dwell"`

	// PitWindowPct is the fuel percentage below which the pit window is
	// reported open.
	PitWindowPct float64 `yaml:"pit_window_pct"`

	// Thresholds maps metric name → alert thresholds. Known metrics:
	// tire_temp (applies to all four corners), water_temp, oil_temp,
	// fuel_pct.
	Thresholds map[string]ThresholdConfig `yaml:"thresholds"`
}

// ThresholdConfig is one metric's alert boundaries.
type ThresholdConfig struct {
	Warning  float64 `yaml:"warning"`
	Critical float64 `yaml:"critical"`

	// Direction is "rising" (default) or "falling".
	Direction string `yaml:"direction"`

	// Dwell overrides engine.alert_dwell for this metric when set.
	Dwell Duration `yaml:"dwell"`
}

// ServerConfig holds the HTTP/WebSocket surface settings.
type ServerConfig struct {
	// HTTPPort serves the REST API, the WebSocket stream and /metrics.
	HTTPPort int `yaml:"http_port"`

	// StatusTTL is how long a session status stays live without updates
	// before the API reports the session offline.
	StatusTTL Duration `yaml:"status_ttl"`

	// BroadcastInterval is the WebSocket snapshot push cadence.
	BroadcastInterval Duration `yaml:"broadcast_interval"`

	// Auth configures optional API-key auth for the REST surface.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig specifies REST API authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// Header is the HTTP header the key is expected in. Defaults to
	// X-API-Key.
	Header string `yaml:"header"`

	// KeyEnv names the environment variable holding the expected key.
	KeyEnv string `yaml:"key_env"`
}

// EffectiveHeader returns the configured header name or the default.
func (a AuthConfig) EffectiveHeader() string {
	if a.Header == "" {
		return "X-API-Key"
	}
	return a.Header
}

// Key returns the API key resolved from the environment. Empty when KeyEnv
// is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// FeedConfig describes where samples come from.
type FeedConfig struct {
	// ReplayPath is the JSON-lines recording to replay.
	ReplayPath string `yaml:"replay_path"`

	// ReplayRate is the replay pace in samples per second; 0 replays as
	// fast as possible.
	ReplayRate int `yaml:"replay_rate"`

	// SessionID keys this feed's status in the store and the API.
	SessionID string `yaml:"session_id"`
}

// Load reads and parses the YAML config file at path. Missing optional
// fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			SmoothingWindow: Duration(time.Second),
			RateLookback:    Duration(2 * time.Minute),
			AlertDwell:      Duration(2 * time.Second),
			PitWindowPct:    monitor.DefaultPitWindowPct,
		},
		Server: ServerConfig{
			HTTPPort:          DefaultHTTPPort,
			StatusTTL:         Duration(DefaultStatusTTL),
			BroadcastInterval: Duration(DefaultBroadcastInterval),
		},
		Feed: FeedConfig{
			ReplayRate: DefaultReplayRate,
			SessionID:  DefaultSessionID,
		},
	}
}

// validate checks structural constraints. Threshold ordering matters: an
// inverted pair silently disables the band in between, so it is rejected
// here instead of surfacing as a never-firing alert.
func validate(cfg *Config) error {
	if cfg.Engine.SmoothingWindow <= 0 {
		return fmt.Errorf("engine.smoothing_window must be positive")
	}
	if cfg.Engine.RateLookback <= 0 {
		return fmt.Errorf("engine.rate_lookback must be positive")
	}
	if cfg.Engine.AlertDwell < 0 {
		return fmt.Errorf("engine.alert_dwell must not be negative")
	}
	if cfg.Engine.PitWindowPct < 0 || cfg.Engine.PitWindowPct > 100 {
		return fmt.Errorf("engine.pit_window_pct must be within 0-100")
	}
	for name, th := range cfg.Engine.Thresholds {
		switch th.Direction {
		case "", "rising":
			if th.Warning > th.Critical {
				return fmt.Errorf("thresholds.%s: warning %.1f above critical %.1f for a rising metric",
					name, th.Warning, th.Critical)
			}
		case "falling":
			if th.Warning < th.Critical {
				return fmt.Errorf("thresholds.%s: warning %.1f below critical %.1f for a falling metric",
					name, th.Warning, th.Critical)
			}
		default:
			return fmt.Errorf("thresholds.%s: unknown direction %q", name, th.Direction)
		}
	}
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port out of range")
	}
	if cfg.Server.StatusTTL <= 0 {
		return fmt.Errorf("server.status_ttl must be positive")
	}
	if cfg.Server.BroadcastInterval <= 0 {
		return fmt.Errorf("server.broadcast_interval must be positive")
	}
	switch cfg.Server.Auth.Mode {
	case "", "none", "apikey":
	default:
		return fmt.Errorf("server.auth: unknown mode %q", cfg.Server.Auth.Mode)
	}
	if cfg.Feed.ReplayRate < 0 {
		return fmt.Errorf("feed.replay_rate must not be negative")
	}
	return nil
}

// EngineOptions converts the engine section into monitor.Options. Metrics
// absent from the thresholds map keep the monitor's defaults.
func (c *Config) EngineOptions() monitor.Options {
	opts := monitor.DefaultOptions()
	opts.SmoothingWindowSeconds = c.Engine.SmoothingWindow.Std().Seconds()
	opts.RateLookbackSeconds = c.Engine.RateLookback.Std().Seconds()
	opts.PitWindowPct = c.Engine.PitWindowPct

	dwell := c.Engine.AlertDwell.Std().Seconds()
	for name := range opts.Thresholds {
		th := opts.Thresholds[name]
		th.DwellSeconds = dwell
		opts.Thresholds[name] = th
	}
	for name, tc := range c.Engine.Thresholds {
		th := alerts.Thresholds{
			Warning:      tc.Warning,
			Critical:     tc.Critical,
			DwellSeconds: dwell,
		}
		if tc.Direction == "falling" {
			th.Direction = alerts.Falling
		}
		if tc.Dwell > 0 {
			th.DwellSeconds = tc.Dwell.Std().Seconds()
		}
		opts.Thresholds[name] = th
	}
	return opts
}
