package monitor

import (
	"log/slog"

	"github.com/pitwall/pitwall/internal/alerts"
	"github.com/pitwall/pitwall/internal/compute"
	"github.com/pitwall/pitwall/internal/telemetry"
)

// Default tuning. Thresholds follow the simulator's usual operating ranges;
// all of them are configuration, not contract.
const (
	DefaultSmoothingWindowSeconds = 1.0
	DefaultRateLookbackSeconds    = 120.0
	DefaultDwellSeconds           = 2.0
	DefaultPitWindowPct           = 30.0
)

// DefaultThresholds returns the stock per-metric alert thresholds: tire
// surface 100/120 °C, water 90/100 °C, oil 130/150 °C rising, fuel 20/10 %
// falling.
func DefaultThresholds() map[string]alerts.Thresholds {
	return map[string]alerts.Thresholds{
		MetricTireTemp: {Warning: 100, Critical: 120, DwellSeconds: DefaultDwellSeconds},
		MetricWater:    {Warning: 90, Critical: 100, DwellSeconds: DefaultDwellSeconds},
		MetricOil:      {Warning: 130, Critical: 150, DwellSeconds: DefaultDwellSeconds},
		MetricFuelPct: {
			Warning: 20, Critical: 10,
			Direction:    alerts.Falling,
			DwellSeconds: DefaultDwellSeconds,
		},
	}
}

// Options configures one Monitor. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	// SmoothingWindowSeconds sizes the temperature trend windows. The
	// default keeps roughly one second of the 60 Hz feed.
	SmoothingWindowSeconds float64

	// RateLookbackSeconds bounds the per-minute rate calculations.
	RateLookbackSeconds float64

	// Thresholds maps metric name → alert thresholds. The tire_temp entry
	// applies to all four corners, each with independent state.
	Thresholds map[string]alerts.Thresholds

	// PitWindowPct is the fuel percentage under which the pit window is
	// reported open.
	PitWindowPct float64
}

// DefaultOptions returns Options with all stock tuning applied.
func DefaultOptions() Options {
	return Options{
		SmoothingWindowSeconds: DefaultSmoothingWindowSeconds,
		RateLookbackSeconds:    DefaultRateLookbackSeconds,
		Thresholds:             DefaultThresholds(),
		PitWindowPct:           DefaultPitWindowPct,
	}
}

// Baseline holds the session reference values wear and consumption are
// measured against. Captured once, replaced only by ResetBaseline.
type Baseline struct {
	Timestamp        float64
	Lap              int
	FuelCapacity     float64
	SuspensionHeight [telemetry.NumCorners]float64
}

// Monitor derives endurance signals from the raw sample stream. Construct
// with New; one instance per session. Not safe for concurrent use.
type Monitor struct {
	opts Options

	baseline    Baseline
	baselineSet bool

	fuelRate *compute.RateEstimator
	wearRate [telemetry.NumCorners]*compute.RateEstimator
	trend    *compute.TrendTracker

	tireEval  [telemetry.NumCorners]*alerts.Evaluator
	waterEval *alerts.Evaluator
	oilEval   *alerts.Evaluator
	fuelEval  *alerts.Evaluator

	updates uint64
	firstTS float64
}

// New creates a Monitor with the given options. Missing threshold entries
// and non-positive windows fall back to the defaults, so a partially filled
// Options is safe.
func New(opts Options) *Monitor {
	if opts.SmoothingWindowSeconds <= 0 {
		opts.SmoothingWindowSeconds = DefaultSmoothingWindowSeconds
	}
	if opts.RateLookbackSeconds <= 0 {
		opts.RateLookbackSeconds = DefaultRateLookbackSeconds
	}
	if opts.PitWindowPct <= 0 {
		opts.PitWindowPct = DefaultPitWindowPct
	}
	def := DefaultThresholds()
	if opts.Thresholds == nil {
		opts.Thresholds = def
	} else {
		for name, th := range def {
			if _, ok := opts.Thresholds[name]; !ok {
				opts.Thresholds[name] = th
			}
		}
	}

	m := &Monitor{
		opts:     opts,
		fuelRate: compute.NewRateEstimator(opts.RateLookbackSeconds),
		trend:    compute.NewTrendTracker(opts.SmoothingWindowSeconds),
	}
	for c := 0; c < telemetry.NumCorners; c++ {
		m.wearRate[c] = compute.NewRateEstimator(opts.RateLookbackSeconds)
		m.tireEval[c] = alerts.NewEvaluator(
			cornerMetric(MetricTireTemp, c), opts.Thresholds[MetricTireTemp])
	}
	m.waterEval = alerts.NewEvaluator(MetricWater, opts.Thresholds[MetricWater])
	m.oilEval = alerts.NewEvaluator(MetricOil, opts.Thresholds[MetricOil])
	m.fuelEval = alerts.NewEvaluator(MetricFuelPct, opts.Thresholds[MetricFuelPct])
	return m
}

// Retune applies new alert thresholds and pit-window tuning to a running
// monitor without discarding derivation history or committed alert states.
// Window sizing (smoothing span, rate lookback) is fixed at construction;
// changing it needs a new Monitor. Callers serialize Retune with Update.
func (m *Monitor) Retune(opts Options) {
	if opts.PitWindowPct > 0 {
		m.opts.PitWindowPct = opts.PitWindowPct
	}
	for name, th := range opts.Thresholds {
		m.opts.Thresholds[name] = th
		switch name {
		case MetricTireTemp:
			for c := 0; c < telemetry.NumCorners; c++ {
				m.tireEval[c].SetThresholds(th)
			}
		case MetricWater:
			m.waterEval.SetThresholds(th)
		case MetricOil:
			m.oilEval.SetThresholds(th)
		case MetricFuelPct:
			m.fuelEval.SetThresholds(th)
		}
	}
}

// Baseline returns the current session baseline and whether one has been
// captured yet.
func (m *Monitor) Baseline() (Baseline, bool) {
	return m.baseline, m.baselineSet
}

// Update ingests one sample and returns the consolidated status snapshot.
// The first call captures the session baseline from the sample.
func (m *Monitor) Update(s telemetry.Sample) Status {
	if !m.baselineSet {
		m.captureBaseline(s)
	}
	m.updates++

	m.fuelRate.Observe(s.Timestamp, s.FuelLevel, s.Lap)
	for c := 0; c < telemetry.NumCorners; c++ {
		m.wearRate[c].Observe(s.Timestamp, s.SuspensionHeight[c], s.Lap)
		m.trend.Update(cornerMetric(susPrefix, c), s.Timestamp, s.SuspensionHeight[c])
	}

	st := Status{
		Timestamp:      s.Timestamp,
		Lap:            s.Lap,
		Updates:        m.updates,
		SessionElapsed: s.Timestamp - m.firstTS,
		LapsCompleted:  m.fuelRate.CompletedLaps(),
		Paused:         s.Paused,
		FuelLevel:      s.FuelLevel,
		FuelCapacity:   s.FuelCapacity,
		FuelPct:        m.fuelPct(s),
		WaterTemp:      m.trend.Update(MetricWater, s.Timestamp, s.WaterTemp),
		OilTemp:        m.trend.Update(MetricOil, s.Timestamp, s.OilTemp),
		SpeedKPH:       s.SpeedKPH,
		RPM:            s.RPM,
		OilPressure:    s.OilPressure,
	}

	st.FuelPerMinute, st.FuelPerMinuteOK = m.fuelRate.RatePerMinute()
	st.FuelPerLap, st.FuelPerLapOK = m.fuelRate.RatePerLap()
	m.fillFuelStrategy(&st)

	var tempSum float64
	for c := 0; c < telemetry.NumCorners; c++ {
		smoothed := m.trend.Update(cornerMetric(MetricTireTemp, c), s.Timestamp, s.TireTemp[c])
		st.TireTemp[c] = smoothed
		tempSum += smoothed
		if c == 0 || smoothed > st.TireTempMax {
			st.TireTempMax = smoothed
		}

		if d, ok := m.trend.DeltaFromBaseline(cornerMetric(susPrefix, c)); ok {
			st.TireWear[c] = d
		}
		st.WearPerMinute[c], st.WearPerMinuteOK[c] = m.wearRate[c].RatePerMinute()
	}
	st.TireTempAvg = tempSum / telemetry.NumCorners

	m.evaluateAlerts(&st)
	return st
}

// ResetBaseline clears all derivation history and captures a fresh baseline
// from the sample. Callers invoke it at race restarts and after confirmed
// refuels or tire changes; the engine never does this on its own.
func (m *Monitor) ResetBaseline(s telemetry.Sample) {
	m.fuelRate.Reset()
	for c := 0; c < telemetry.NumCorners; c++ {
		m.wearRate[c].Reset()
		m.tireEval[c].Reset()
	}
	m.trend.Reset()
	m.waterEval.Reset()
	m.oilEval.Reset()
	m.fuelEval.Reset()
	m.updates = 0
	m.baselineSet = false
	m.captureBaseline(s)

	slog.Info("monitor: baseline reset",
		"timestamp", s.Timestamp,
		"lap", s.Lap,
		"fuel_capacity", s.FuelCapacity,
	)
}

// captureBaseline records the session reference values and primes the wear
// trend windows with the baseline heights, so delta-from-baseline reads 0.0
// immediately rather than being absent until the next tick.
func (m *Monitor) captureBaseline(s telemetry.Sample) {
	m.baseline = Baseline{
		Timestamp:        s.Timestamp,
		Lap:              s.Lap,
		FuelCapacity:     s.FuelCapacity,
		SuspensionHeight: s.SuspensionHeight,
	}
	for c := 0; c < telemetry.NumCorners; c++ {
		name := cornerMetric(susPrefix, c)
		m.trend.SetBaseline(name, s.SuspensionHeight[c])
		m.trend.Update(name, s.Timestamp, s.SuspensionHeight[c])
	}
	m.firstTS = s.Timestamp
	m.baselineSet = true
}

// fuelPct computes fuel percentage against the baseline capacity, falling
// back to the sample's own capacity before a baseline exists.
func (m *Monitor) fuelPct(s telemetry.Sample) float64 {
	capacity := m.baseline.FuelCapacity
	if !m.baselineSet || capacity <= 0 {
		return s.FuelPct()
	}
	pct := s.FuelLevel / capacity * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// fillFuelStrategy derives laps/minutes of fuel remaining from the burn
// rates. Rates at or above zero (not burning, or refueling) leave the
// readouts absent — "infinite fuel" is not a useful dashboard number.
func (m *Monitor) fillFuelStrategy(st *Status) {
	if st.FuelPerLapOK && st.FuelPerLap < 0 {
		st.FuelLapsRemaining = st.FuelLevel / -st.FuelPerLap
		st.FuelLapsRemainingOK = true
	}
	if st.FuelPerMinuteOK && st.FuelPerMinute < 0 {
		st.FuelMinutesRemaining = st.FuelLevel / -st.FuelPerMinute
		st.FuelMinutesRemainingOK = true
	}
	st.PitWindowOpen = st.FuelPct < m.opts.PitWindowPct
}

// evaluateAlerts runs every evaluator against this cycle's smoothed values
// and fills the active alert list plus any committed transitions.
func (m *Monitor) evaluateAlerts(st *Status) {
	type probe struct {
		eval  *alerts.Evaluator
		value float64
	}
	probes := make([]probe, 0, telemetry.NumCorners+3)
	for c := 0; c < telemetry.NumCorners; c++ {
		probes = append(probes, probe{m.tireEval[c], st.TireTemp[c]})
	}
	probes = append(probes,
		probe{m.waterEval, st.WaterTemp},
		probe{m.oilEval, st.OilTemp},
		probe{m.fuelEval, st.FuelPct},
	)

	for _, p := range probes {
		state, tr := p.eval.Evaluate(st.Timestamp, p.value)
		if tr != nil {
			st.Transitions = append(st.Transitions, *tr)
			slog.Info("monitor: alert transition",
				"metric", tr.Metric,
				"from", tr.From.String(),
				"to", tr.To.String(),
				"value", tr.Value,
				"timestamp", tr.Timestamp,
			)
		}
		if state > alerts.Nominal {
			st.Alerts = append(st.Alerts, ActiveAlert{
				Metric:   p.eval.Metric(),
				Severity: state,
				Value:    p.value,
				Since:    p.eval.StateSince(),
			})
		}
	}
}
