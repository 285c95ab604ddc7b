package alerts

import "fmt"

// Severity is the committed alert state of one monitored metric.
type Severity int

const (
	Nominal Severity = iota
	Warning
	Critical
)

// String returns the lowercase name used in logs, JSON and metric labels.
func (s Severity) String() string {
	switch s {
	case Nominal:
		return "nominal"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so Severity serializes as its
// name in JSON payloads.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting the names
// MarshalText produces so payloads decode back into typed values.
func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "nominal":
		*s = Nominal
	case "warning":
		*s = Warning
	case "critical":
		*s = Critical
	default:
		return fmt.Errorf("alerts: unknown severity %q", string(b))
	}
	return nil
}

// Direction selects which way through the thresholds a metric degrades.
type Direction int

const (
	// Rising metrics degrade as the value climbs (temperatures).
	Rising Direction = iota
	// Falling metrics degrade as the value drops (fuel percentage).
	Falling
)

// Thresholds configures one evaluator.
type Thresholds struct {
	// Warning and Critical are the severity boundaries. For Rising metrics
	// Warning <= Critical; for Falling metrics Warning >= Critical.
	Warning  float64
	Critical float64

	// Direction selects rising or falling degradation. Zero value is Rising.
	Direction Direction

	// DwellSeconds is how long a value must hold past a threshold before the
	// severity commits, in either direction. Negative values are clamped to
	// zero (transitions commit immediately).
	DwellSeconds float64
}

// Transition is the event emitted when a severity change commits.
type Transition struct {
	Metric    string   `json:"metric"`
	From      Severity `json:"from"`
	To        Severity `json:"to"`
	Value     float64  `json:"value"`
	Timestamp float64  `json:"timestamp"`
}

// Evaluator is the dwell-time severity state machine for a single metric.
// Initial state is Nominal; there is no terminal state. Not safe for
// concurrent use.
type Evaluator struct {
	metric string
	th     Thresholds

	state      Severity
	stateSince float64

	lastTS  float64
	haveTS  bool
	pending Severity
	// pendingSince is the last timestamp the metric was observed at a
	// severity other than pending. Dwell is measured from there, so an
	// update gap counts toward the dwell rather than restarting it.
	pendingSince float64
	havePending  bool
}

// NewEvaluator creates an evaluator for the named metric. A dwell below zero
// is clamped to zero.
func NewEvaluator(metric string, th Thresholds) *Evaluator {
	if th.DwellSeconds < 0 {
		th.DwellSeconds = 0
	}
	return &Evaluator{metric: metric, th: th}
}

// Metric returns the metric name the evaluator watches.
func (e *Evaluator) Metric() string { return e.metric }

// SetThresholds replaces the thresholds on a live evaluator. The committed
// state survives; any in-flight dwell is discarded because it was measured
// against the old boundaries. A dwell below zero is clamped to zero.
func (e *Evaluator) SetThresholds(th Thresholds) {
	if th.DwellSeconds < 0 {
		th.DwellSeconds = 0
	}
	e.th = th
	e.havePending = false
}

// State returns the committed severity.
func (e *Evaluator) State() Severity { return e.state }

// StateSince returns the timestamp of the last committed transition, zero if
// none has occurred.
func (e *Evaluator) StateSince() float64 { return e.stateSince }

// target maps an instantaneous value onto the severity it argues for.
func (e *Evaluator) target(value float64) Severity {
	if e.th.Direction == Falling {
		switch {
		case value <= e.th.Critical:
			return Critical
		case value <= e.th.Warning:
			return Warning
		default:
			return Nominal
		}
	}
	switch {
	case value >= e.th.Critical:
		return Critical
	case value >= e.th.Warning:
		return Warning
	default:
		return Nominal
	}
}

// Evaluate feeds one observation and returns the committed severity plus a
// non-nil Transition when, and only when, the severity just changed.
//
// An observation with a timestamp before the pending dwell start (rewound
// clock) restarts the dwell at that timestamp rather than producing a
// negative elapsed time.
func (e *Evaluator) Evaluate(ts, value float64) (Severity, *Transition) {
	tgt := e.target(value)

	if tgt == e.state {
		e.havePending = false
	} else {
		if !e.havePending || e.pending != tgt {
			e.pending = tgt
			if e.haveTS {
				e.pendingSince = e.lastTS
			} else {
				e.pendingSince = ts
			}
			e.havePending = true
		}
		if ts < e.pendingSince {
			e.pendingSince = ts
		}
		if ts-e.pendingSince >= e.th.DwellSeconds {
			tr := &Transition{
				Metric:    e.metric,
				From:      e.state,
				To:        tgt,
				Value:     value,
				Timestamp: ts,
			}
			e.state = tgt
			e.stateSince = ts
			e.havePending = false
			e.lastTS = ts
			e.haveTS = true
			return e.state, tr
		}
	}

	e.lastTS = ts
	e.haveTS = true
	return e.state, nil
}

// Reset returns the evaluator to Nominal without emitting a transition.
// Used when the caller resets the session baseline.
func (e *Evaluator) Reset() {
	e.state = Nominal
	e.stateSince = 0
	e.havePending = false
	e.haveTS = false
	e.lastTS = 0
}
