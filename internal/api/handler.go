package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pitwall/pitwall/internal/alerts"
	"github.com/pitwall/pitwall/internal/config"
	"github.com/pitwall/pitwall/internal/store"
)

// Handler serves all /api/v1/* endpoints from the session status store.
type Handler struct {
	store *store.Store
	auth  config.AuthConfig
	mux   *http.ServeMux
}

// New creates a Handler wired to the given store and registers all routes.
func New(st *store.Store, auth config.AuthConfig) http.Handler {
	h := &Handler{store: st, auth: auth, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/status", h.listStatus)
	h.mux.HandleFunc("/api/v1/status/", h.getStatus) // subtree — extracts {session}
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		jsonErr(w, http.StatusUnauthorized, "invalid or missing API key")
		return
	}
	h.mux.ServeHTTP(w, r)
}

// authorized checks the API key header in apikey mode; any other mode
// admits everything.
func (h *Handler) authorized(r *http.Request) bool {
	if h.auth.Mode != "apikey" {
		return true
	}
	want := h.auth.Key()
	if want == "" {
		// Misconfiguration (key env unset): fail closed.
		return false
	}
	got := r.Header.Get(h.auth.EffectiveHeader())
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — live session count and worst severity.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	resp := HealthResponse{Sessions: len(entries)}

	worst := alerts.Nominal
	for _, e := range entries {
		resp.AlertCount += len(e.Status.Alerts)
		if s := e.Status.WorstSeverity(); s > worst {
			worst = s
		}
	}
	resp.WorstSeverity = worst.String()
	jsonResp(w, http.StatusOK, resp)
}

// listStatus returns GET /api/v1/status — all live sessions.
func (h *Handler) listStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	out := make([]SessionResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toSessionResponse(e))
	}
	jsonResp(w, http.StatusOK, out)
}

// getStatus returns GET /api/v1/status/{session} — one live session.
func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/status/")
	if id == "" {
		h.listStatus(w, r)
		return
	}

	e, ok := h.store.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "session not found")
		return
	}
	// A stale session is offline — indistinguishable from absent.
	if !h.store.Fresh(e) {
		jsonErr(w, http.StatusNotFound, "session not found")
		return
	}

	jsonResp(w, http.StatusOK, toSessionResponse(e))
}

// listAlerts returns GET /api/v1/alerts — active alerts across all live
// sessions.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	out := make([]AlertResponse, 0)
	for _, e := range h.store.List() {
		for _, a := range e.Status.Alerts {
			out = append(out, AlertResponse{
				SessionID: e.SessionID,
				Metric:    a.Metric,
				Severity:  a.Severity.String(),
				Value:     a.Value,
				Since:     a.Since,
			})
		}
	}
	jsonResp(w, http.StatusOK, out)
}

// --- helpers ----------------------------------------------------------------

func toSessionResponse(e store.Entry) SessionResponse {
	return SessionResponse{
		SessionID: e.SessionID,
		Status:    e.Status,
		LastSeen:  e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
