// Package alerts implements the per-metric severity state machine for the
// endurance monitor.
//
// Each Evaluator tracks one metric against a warning and a critical
// threshold. Transitions — in both directions — only commit after the value
// has held past the threshold for the configured dwell time, so a
// single-sample spike at a boundary cannot flap the state. Committed
// transitions are reported as explicit events carrying the from/to severity,
// the triggering value and timestamp, which lets consumers act edge-triggered
// (flash once on entering Critical) instead of re-firing every tick.
//
// Rising metrics (temperatures) alert as the value climbs through the
// thresholds; falling metrics (fuel percentage) alert as it drops through
// them.
package alerts
