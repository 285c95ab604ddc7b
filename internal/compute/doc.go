// Package compute holds the stateless-leaning derivation primitives the
// endurance monitor is built from.
//
// window.go provides Window, a time-bounded rolling buffer of (timestamp,
// value) points with amortized O(1) eviction and a sample-count-weighted Mean.
//
// rate.go provides RateEstimator, which turns a slowly changing baseline
// quantity (fuel remaining, suspension height) into signed per-minute and
// per-lap rates over a configurable lookback.
//
// trend.go provides TrendTracker, one Window per monitored metric plus
// recorded baselines for delta-from-baseline (tire wear) readouts.
//
// Everything in this package takes explicit timestamps (telemetry-clock
// seconds) instead of reading the wall clock, so tests and replays are
// deterministic. Nothing here is safe for concurrent use; the monitor
// serializes access.
package compute
