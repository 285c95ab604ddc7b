// Package telemetry defines the Sample value type — one decoded telemetry
// tick from the simulator — and the Feed abstraction that delivers Samples
// to the engine.
//
// Sample carries the endurance-relevant subset of the 60 Hz feed: fuel level
// and capacity, the four tire surface temperatures, the four suspension
// heights (the tire wear proxy), water and oil temperature, lap number and the
// session clock. Samples are immutable snapshots; the engine never retains
// one across calls.
//
// Capturing and decrypting the wire packet itself is out of scope — a Feed
// produces already-decoded Samples. ReplayFeed reads JSON-lines recordings,
// which is enough to drive the engine in development and for post-session
// analysis.
package telemetry
