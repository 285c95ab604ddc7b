package compute

// RateEstimator converts a slowly changing baseline quantity plus elapsed
// time into signed per-minute and per-lap rates.
//
// The estimator does not assume a direction: fuel burn comes out negative,
// and an unexpected increase (a refuel the caller has not acknowledged with a
// reset) is reported as a positive rate rather than suppressed. Treating a
// refuel or tire change as a new baseline is the caller's job.
type RateEstimator struct {
	lookback *Window

	// Per-lap accounting. A lap is complete once an observation arrives with
	// a different lap number.
	curLap      int
	haveLap     bool
	lapStartTS  float64
	lapFirstVal float64
	lapObs      int

	completedLaps    int
	lastLapDelta     float64
	lapDurationTotal float64
}

// NewRateEstimator creates an estimator with the given lookback in seconds.
// The lookback bounds the per-minute rate calculation; per-lap accounting is
// independent of it.
func NewRateEstimator(lookbackSeconds float64) *RateEstimator {
	return &RateEstimator{lookback: NewWindow(lookbackSeconds)}
}

// Observe records one (timestamp, value) observation tagged with a lap
// number. Out-of-order lap numbers (packet reordering, session restart) are
// treated as the start of a new disjoint lap, never an error.
func (r *RateEstimator) Observe(ts, value float64, lap int) {
	r.lookback.Push(ts, value)

	if !r.haveLap || lap != r.curLap {
		if r.haveLap && lap > r.curLap && r.lapObs >= 2 {
			// Lap completed on a forward transition. The boundary observation
			// closes the lap, so the delta covers the full lap span and stays
			// consistent with the per-minute rate over the same stretch.
			// Backward jumps mean the stream restarted; their partial lap is
			// discarded.
			r.completedLaps++
			r.lastLapDelta = value - r.lapFirstVal
			if d := ts - r.lapStartTS; d > 0 {
				r.lapDurationTotal += d
			}
		}
		r.curLap = lap
		r.haveLap = true
		r.lapStartTS = ts
		r.lapFirstVal = value
		r.lapObs = 0
	}
	r.lapObs++
}

// RatePerMinute returns the signed change per minute over the retained
// lookback. The second return is false with fewer than two observations or
// zero elapsed time.
func (r *RateEstimator) RatePerMinute() (float64, bool) {
	if r.lookback.Len() < 2 {
		return 0, false
	}
	oldTS, oldVal, _ := r.lookback.Oldest()
	newTS, newVal, _ := r.lookback.Newest()
	elapsed := newTS - oldTS
	if elapsed <= 0 {
		return 0, false
	}
	return (newVal - oldVal) / elapsed * 60, true
}

// RatePerLap returns the signed change per lap. With at least two completed
// laps it is the most recently completed lap's delta, measured from the
// lap's first observation to the boundary observation that closed it. With
// fewer, it falls back to the per-minute rate scaled by the average
// completed-lap duration; absent when no lap has completed or no per-minute
// rate exists yet.
func (r *RateEstimator) RatePerLap() (float64, bool) {
	if r.completedLaps >= 2 {
		return r.lastLapDelta, true
	}
	if r.completedLaps == 0 {
		return 0, false
	}
	perMin, ok := r.RatePerMinute()
	if !ok {
		return 0, false
	}
	avgLapMinutes := r.lapDurationTotal / float64(r.completedLaps) / 60
	if avgLapMinutes <= 0 {
		return 0, false
	}
	return perMin * avgLapMinutes, true
}

// CompletedLaps returns how many laps have been fully observed.
func (r *RateEstimator) CompletedLaps() int { return r.completedLaps }

// Reset discards all retained history, including lap accounting.
func (r *RateEstimator) Reset() {
	r.lookback.Reset()
	r.haveLap = false
	r.lapObs = 0
	r.completedLaps = 0
	r.lastLapDelta = 0
	r.lapDurationTotal = 0
}
