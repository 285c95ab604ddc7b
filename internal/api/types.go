package api

import "github.com/pitwall/pitwall/internal/monitor"

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Sessions      int    `json:"sessions"`
	WorstSeverity string `json:"worst_severity"`
	AlertCount    int    `json:"alert_count"`
}

// SessionResponse is one session entry in GET /api/v1/status responses.
type SessionResponse struct {
	SessionID string         `json:"session_id"`
	Status    monitor.Status `json:"status"`
	LastSeen  string         `json:"last_seen"` // RFC3339
}

// AlertResponse is one active alert in GET /api/v1/alerts.
type AlertResponse struct {
	SessionID string  `json:"session_id"`
	Metric    string  `json:"metric"`
	Severity  string  `json:"severity"`
	Value     float64 `json:"value"`
	Since     float64 `json:"since"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
