package compute

// point is one retained (timestamp, value) observation.
type point struct {
	ts    float64
	value float64
}

// Window is a time-bounded rolling buffer of scalar observations. The bound
// is a duration, not a count, so a change in sampling rate does not change
// smoothing behavior.
//
// Entries are kept strictly time-ordered; Push with a timestamp at or before
// the newest retained entry first discards everything from that timestamp on,
// treating the stream as having restarted (replay rewind, session clock
// reset).
type Window struct {
	span float64 // seconds retained relative to the newest entry
	pts  []point // ordered oldest → newest; front trimmed on eviction
	head int     // index of the oldest live entry in pts
}

// NewWindow creates a Window spanning the given number of seconds. A
// non-positive span is clamped to a single-entry window (only the newest
// observation survives each push).
func NewWindow(spanSeconds float64) *Window {
	if spanSeconds < 0 {
		spanSeconds = 0
	}
	return &Window{span: spanSeconds}
}

// Push inserts an observation and evicts entries older than span relative to
// ts. Amortized O(1): the backing slice is compacted only when the dead
// prefix outgrows the live region.
func (w *Window) Push(ts, value float64) {
	// Out-of-order or rewound clock: drop everything not strictly older so
	// the ordering invariant holds.
	for w.len() > 0 && w.newest().ts >= ts {
		w.pts = w.pts[:len(w.pts)-1]
		if w.head > len(w.pts) {
			w.head = len(w.pts)
		}
	}
	w.pts = append(w.pts, point{ts: ts, value: value})
	w.evict(ts)
}

// evict drops entries older than ts - span.
func (w *Window) evict(ts float64) {
	cutoff := ts - w.span
	for w.head < len(w.pts) && w.pts[w.head].ts < cutoff {
		w.head++
	}
	if w.head > len(w.pts)/2 && w.head > 32 {
		w.pts = append(w.pts[:0], w.pts[w.head:]...)
		w.head = 0
	}
}

// Mean returns the arithmetic mean of the retained observations. The second
// return is false when the window is empty. The mean is sample-count
// weighted, not time weighted — with uneven sampling, denser stretches carry
// proportionally more weight. Known approximation, fine at a steady 60 Hz.
func (w *Window) Mean() (float64, bool) {
	n := w.len()
	if n == 0 {
		return 0, false
	}
	var sum float64
	for _, p := range w.live() {
		sum += p.value
	}
	return sum / float64(n), true
}

// Oldest returns the oldest retained observation.
func (w *Window) Oldest() (ts, value float64, ok bool) {
	if w.len() == 0 {
		return 0, 0, false
	}
	p := w.pts[w.head]
	return p.ts, p.value, true
}

// Newest returns the most recent observation.
func (w *Window) Newest() (ts, value float64, ok bool) {
	if w.len() == 0 {
		return 0, 0, false
	}
	p := w.newest()
	return p.ts, p.value, true
}

// Len returns the number of retained observations.
func (w *Window) Len() int { return w.len() }

// Reset discards all retained observations.
func (w *Window) Reset() {
	w.pts = w.pts[:0]
	w.head = 0
}

func (w *Window) len() int       { return len(w.pts) - w.head }
func (w *Window) live() []point  { return w.pts[w.head:] }
func (w *Window) newest() *point { return &w.pts[len(w.pts)-1] }
