package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pitwall/pitwall/internal/alerts"
	"github.com/pitwall/pitwall/internal/config"
	"github.com/pitwall/pitwall/internal/monitor"
	"github.com/pitwall/pitwall/internal/store"
)

func firingStatus() monitor.Status {
	return monitor.Status{
		Lap:     12,
		FuelPct: 18,
		Alerts: []monitor.ActiveAlert{
			{Metric: "fuel_pct", Severity: alerts.Warning, Value: 18, Since: 700},
			{Metric: "tire_temp_fl", Severity: alerts.Critical, Value: 123, Since: 710},
		},
	}
}

func newTestHandler(t *testing.T) (*store.Store, http.Handler) {
	t.Helper()
	st := store.New(5 * time.Second)
	return st, New(st, config.AuthConfig{})
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth_Empty(t *testing.T) {
	_, h := newTestHandler(t)
	rec := doGet(t, h, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Sessions != 0 || resp.WorstSeverity != "nominal" {
		t.Errorf("resp = %+v, want 0 sessions, nominal", resp)
	}
}

func TestHealth_ReportsWorstSeverity(t *testing.T) {
	st, h := newTestHandler(t)
	st.Put("stint", firingStatus())

	var resp HealthResponse
	rec := doGet(t, h, "/api/v1/health")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Sessions != 1 || resp.AlertCount != 2 || resp.WorstSeverity != "critical" {
		t.Errorf("resp = %+v, want 1 session, 2 alerts, critical", resp)
	}
}

func TestGetStatus_FoundAndMissing(t *testing.T) {
	st, h := newTestHandler(t)
	st.Put("stint", firingStatus())

	rec := doGet(t, h, "/api/v1/status/stint")
	if rec.Code != http.StatusOK {
		t.Fatalf("known session: status = %d, want 200", rec.Code)
	}
	var resp SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID != "stint" || resp.Status.Lap != 12 {
		t.Errorf("resp = %q lap %d, want stint lap 12", resp.SessionID, resp.Status.Lap)
	}

	rec = doGet(t, h, "/api/v1/status/ghost")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session: status = %d, want 404", rec.Code)
	}
}

func TestListAlerts_FlattensSessions(t *testing.T) {
	st, h := newTestHandler(t)
	st.Put("stint", firingStatus())

	rec := doGet(t, h, "/api/v1/alerts")
	var resp []AlertResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("got %d alerts, want 2", len(resp))
	}
	if resp[0].SessionID != "stint" || resp[0].Severity != "warning" {
		t.Errorf("alerts[0] = %+v, want stint/warning", resp[0])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, h := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/status", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", rec.Code)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	st := store.New(5 * time.Second)
	st.Put("stint", firingStatus())
	t.Setenv("PITWALL_TEST_API_KEY", "open-sesame")
	h := New(st, config.AuthConfig{Mode: "apikey", KeyEnv: "PITWALL_TEST_API_KEY"})

	// Missing key → 401.
	rec := doGet(t, h, "/api/v1/health")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", rec.Code)
	}

	// Wrong key → 401.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-API-Key", "guess")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want 401", rec.Code)
	}

	// Correct key → 200.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-API-Key", "open-sesame")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid key: status = %d, want 200", rec.Code)
	}
}
