// Package store holds the latest Status per session with TTL-based
// staleness eviction.
//
// The engine itself has no notion of a stalled feed — it only runs when a
// sample arrives. The store is where "telemetry stopped" becomes visible: a
// session whose status has not been refreshed within the TTL drops out of
// List, and the HTTP API reports it offline.
package store
