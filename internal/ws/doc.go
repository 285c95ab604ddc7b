// Package ws implements the WebSocket hub feeding live dashboards.
//
// Hub broadcasts two event kinds:
//
//	{"event": "status", "data": [ /* same schema as GET /api/v1/status */ ]}
//	{"event": "alert",  "data": { "session_id": ..., /* transition */ }}
//
// Status frames go out on a fixed interval; alert frames are pushed the
// moment a transition commits, so edge-triggered consumers (flash a light
// once on entering Critical) do not have to diff snapshots.
//
// The upgrader accepts all origins — apply CORS restrictions at the reverse
// proxy level. Endpoint is mounted at /ws/stream by the server.
package ws
