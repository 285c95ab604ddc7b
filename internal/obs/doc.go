// Package obs exposes the engine's operational metrics through the default
// Prometheus registry. Call Init once at startup, then RecordStatus and
// RecordTransitions from the ingest loop; the HTTP server mounts promhttp
// for scraping.
package obs
