// Package api is the read-only JSON HTTP surface rendering and automation
// collaborators consume.
//
// Endpoints (all GET):
//   - /api/v1/health  — live session count and worst active severity
//   - /api/v1/status  — latest status of every live session
//   - /api/v1/status/{session} — one session's latest status; 404 covers
//     both unknown and stale (offline) sessions
//   - /api/v1/alerts  — every active alert across live sessions
//
// When auth mode is "apikey", every request must present the configured
// header with the key resolved from the environment; the comparison is
// constant time.
package api
