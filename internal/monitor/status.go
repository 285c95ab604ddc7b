package monitor

import (
	"github.com/pitwall/pitwall/internal/alerts"
	"github.com/pitwall/pitwall/internal/telemetry"
)

// Metric names used for alert evaluators and trend windows. Per-corner names
// are built with cornerMetric.
const (
	MetricTireTemp = "tire_temp"
	MetricWater    = "water_temp"
	MetricOil      = "oil_temp"
	MetricFuelPct  = "fuel_pct"

	susPrefix = "sus_height"
)

// cornerMetric builds the per-corner metric name, e.g. "tire_temp_fl".
func cornerMetric(base string, corner int) string {
	return base + "_" + telemetry.CornerName(corner)
}

// ActiveAlert is one currently firing (Warning or Critical) alert in a
// Status snapshot.
type ActiveAlert struct {
	Metric   string          `json:"metric"`
	Severity alerts.Severity `json:"severity"`
	Value    float64         `json:"value"`
	Since    float64         `json:"since"` // session seconds of the commit
}

// Status is the consolidated snapshot returned by every Update. It is a
// plain value assembled fresh each cycle; mutating it has no effect on the
// engine.
//
// Derived fields that need history come with an OK flag. A false flag means
// insufficient data (session just started, zero elapsed time), which is an
// expected steady-state condition, not an error.
type Status struct {
	Timestamp      float64 `json:"timestamp"`
	Lap            int     `json:"lap"`
	Updates        uint64  `json:"updates"`
	SessionElapsed float64 `json:"session_elapsed"`
	LapsCompleted  int     `json:"laps_completed"`
	Paused         bool    `json:"paused,omitempty"`

	FuelLevel    float64 `json:"fuel_level"`
	FuelCapacity float64 `json:"fuel_capacity"`
	FuelPct      float64 `json:"fuel_pct"`

	FuelPerMinute   float64 `json:"fuel_per_minute"`
	FuelPerMinuteOK bool    `json:"fuel_per_minute_ok"`
	FuelPerLap      float64 `json:"fuel_per_lap"`
	FuelPerLapOK    bool    `json:"fuel_per_lap_ok"`

	// Fuel strategy readouts: how much racing the remaining fuel buys.
	FuelLapsRemaining      float64 `json:"fuel_laps_remaining"`
	FuelLapsRemainingOK    bool    `json:"fuel_laps_remaining_ok"`
	FuelMinutesRemaining   float64 `json:"fuel_minutes_remaining"`
	FuelMinutesRemainingOK bool    `json:"fuel_minutes_remaining_ok"`
	PitWindowOpen          bool    `json:"pit_window_open"`

	// Smoothed tire surface temperatures per corner, with max and mean
	// across the car.
	TireTemp    [telemetry.NumCorners]float64 `json:"tire_temp"`
	TireTempMax float64                       `json:"tire_temp_max"`
	TireTempAvg float64                       `json:"tire_temp_avg"`

	// TireWear is the smoothed suspension height delta from the session
	// baseline per corner; negative as the tire wears down.
	TireWear [telemetry.NumCorners]float64 `json:"tire_wear"`

	// WearPerMinute is the signed suspension height change rate per corner.
	WearPerMinute   [telemetry.NumCorners]float64 `json:"wear_per_minute"`
	WearPerMinuteOK [telemetry.NumCorners]bool    `json:"wear_per_minute_ok"`

	WaterTemp float64 `json:"water_temp"` // smoothed
	OilTemp   float64 `json:"oil_temp"`   // smoothed

	// Pass-through dashboard fields, unmodified from the sample.
	SpeedKPH    float64 `json:"speed_kph"`
	RPM         float64 `json:"rpm"`
	OilPressure float64 `json:"oil_pressure"`

	// Alerts lists every metric currently at Warning or Critical.
	Alerts []ActiveAlert `json:"alerts"`

	// Transitions holds the alert state changes committed during this
	// update; empty on the vast majority of cycles.
	Transitions []alerts.Transition `json:"transitions,omitempty"`
}

// HasAlert reports whether the named metric is currently firing.
func (s *Status) HasAlert(metric string) bool {
	for _, a := range s.Alerts {
		if a.Metric == metric {
			return true
		}
	}
	return false
}

// WorstSeverity returns the highest severity among active alerts, Nominal
// when none are firing.
func (s *Status) WorstSeverity() alerts.Severity {
	worst := alerts.Nominal
	for _, a := range s.Alerts {
		if a.Severity > worst {
			worst = a.Severity
		}
	}
	return worst
}
