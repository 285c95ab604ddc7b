// Package config loads and watches the pitwall configuration file
// (pitwall.yaml).
//
// Top-level sections:
//   - engine — smoothing_window, rate_lookback, alert_dwell, pit_window_pct
//     and the per-metric alert thresholds (tire_temp, water_temp, oil_temp,
//     fuel_pct). EngineOptions() converts the section into monitor.Options.
//   - server — http_port, status_ttl, broadcast_interval and optional API-key
//     auth for the REST surface; the key value is resolved from the
//     environment, never stored in the file.
//   - feed — replay_path, replay_rate and the session id samples are filed
//     under.
//
// Load(path) reads the YAML file, applies defaults and validates thresholds
// (a rising metric's warning must not exceed its critical, and vice versa
// for falling metrics) and window signs.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create
// pattern used by atomic-save editors by re-adding the watch after the
// event. A reload that fails to parse keeps the previous config active.
package config
