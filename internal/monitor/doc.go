// Package monitor is the orchestrating façade of the derived-metrics engine.
//
// Monitor consumes one telemetry Sample per tick and maintains the full set
// of endurance signals behind it: a fuel RateEstimator, one wear
// RateEstimator per corner, a TrendTracker smoothing the six temperatures and
// four suspension heights, and one alert Evaluator per monitored metric.
// Update returns a flat Status snapshot assembled fresh each cycle; callers
// may keep it, the engine never reads it back.
//
// The session baseline (tank capacity, suspension heights at start) is
// captured from the first Sample and only ever changes through an explicit
// ResetBaseline call — the engine does not try to infer race restarts, pit
// stops or refuels from raw telemetry, because that inference is unreliable.
// Callers wire ResetBaseline to whatever restart signal they trust.
//
// Monitor is call-driven and not internally synchronized: one Update runs to
// completion before the next is accepted, and concurrent callers must
// serialize access themselves.
package monitor
