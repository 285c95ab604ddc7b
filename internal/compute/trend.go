package compute

// TrendTracker owns one rolling Window per monitored scalar and exposes the
// current smoothed value plus delta-from-baseline for metrics that have a
// recorded baseline (suspension heights).
type TrendTracker struct {
	span      float64
	windows   map[string]*Window
	baselines map[string]float64
}

// NewTrendTracker creates a tracker whose per-metric windows span the given
// number of seconds. At the nominal 60 Hz feed, the default 1 s span retains
// about 60 samples per metric.
func NewTrendTracker(spanSeconds float64) *TrendTracker {
	return &TrendTracker{
		span:      spanSeconds,
		windows:   make(map[string]*Window),
		baselines: make(map[string]float64),
	}
}

// Update feeds one observation into the metric's window and returns the
// current smoothed value. A metric seen for the first time gets a fresh
// window, so the first return equals the pushed value.
func (t *TrendTracker) Update(metric string, ts, value float64) float64 {
	w, ok := t.windows[metric]
	if !ok {
		w = NewWindow(t.span)
		t.windows[metric] = w
	}
	w.Push(ts, value)
	mean, _ := w.Mean() // never empty right after a push
	return mean
}

// Smoothed returns the current smoothed value for the metric; false when the
// metric has never been updated.
func (t *TrendTracker) Smoothed(metric string) (float64, bool) {
	w, ok := t.windows[metric]
	if !ok {
		return 0, false
	}
	return w.Mean()
}

// SetBaseline records the reference value the metric's delta is measured
// against.
func (t *TrendTracker) SetBaseline(metric string, value float64) {
	t.baselines[metric] = value
}

// DeltaFromBaseline returns current smoothed value minus the recorded
// baseline; false when the metric has no baseline or no observations yet.
func (t *TrendTracker) DeltaFromBaseline(metric string) (float64, bool) {
	base, ok := t.baselines[metric]
	if !ok {
		return 0, false
	}
	cur, ok := t.Smoothed(metric)
	if !ok {
		return 0, false
	}
	return cur - base, true
}

// Reset drops all windows and baselines.
func (t *TrendTracker) Reset() {
	t.windows = make(map[string]*Window)
	t.baselines = make(map[string]float64)
}
