package telemetry

// Corner indexes into the per-wheel arrays on Sample.
// Order matches the simulator feed: front left, front right, rear left,
// rear right.
const (
	FrontLeft = iota
	FrontRight
	RearLeft
	RearRight

	// NumCorners is the length of every per-wheel array.
	NumCorners
)

// cornerNames maps corner indexes to the short names used in metric IDs and
// JSON output.
var cornerNames = [NumCorners]string{"fl", "fr", "rl", "rr"}

// CornerName returns the short name ("fl", "fr", "rl", "rr") for a corner
// index, or "??" for an out-of-range index.
func CornerName(corner int) string {
	if corner < 0 || corner >= NumCorners {
		return "??"
	}
	return cornerNames[corner]
}

// Sample is one telemetry tick. It is a plain value: produced by a Feed,
// passed into the engine, and never mutated.
//
// Values are forwarded from the simulator as-is. Negative or non-finite
// readings pass through unmodified; downstream consumers are responsible for
// display-level sanitization. The engine tolerates them without crashing.
type Sample struct {
	// Timestamp is the session clock in seconds. It comes from the telemetry
	// feed, not the wall clock, so replays are deterministic.
	Timestamp float64 `json:"timestamp"`

	// Lap is the current lap number, starting at 1 when the race is underway.
	// The feed can deliver out-of-order lap numbers after packet loss.
	Lap int `json:"lap"`

	FuelLevel    float64 `json:"fuel_level"`
	FuelCapacity float64 `json:"fuel_capacity"`

	// TireTemp is the surface temperature per corner in °C.
	TireTemp [NumCorners]float64 `json:"tire_temp"`

	// SuspensionHeight is the ride height per corner. It shrinks as the tire
	// wears, which makes its decline a usable wear signal.
	SuspensionHeight [NumCorners]float64 `json:"suspension_height"`

	WaterTemp float64 `json:"water_temp"`
	OilTemp   float64 `json:"oil_temp"`

	// Supplemental fields carried by the feed. Not used in derivations but
	// forwarded on the status snapshot for dashboards.
	RPM         float64 `json:"rpm"`
	SpeedKPH    float64 `json:"speed_kph"`
	OilPressure float64 `json:"oil_pressure"`
	LastLapTime float64 `json:"last_lap_time"` // seconds; 0 until a lap completes
	Paused      bool    `json:"paused"`
}

// FuelPct returns the fuel level as a percentage of capacity, clamped to
// [0, 100]. A zero or negative capacity yields 0 rather than a division blowup.
func (s Sample) FuelPct() float64 {
	if s.FuelCapacity <= 0 {
		return 0
	}
	pct := s.FuelLevel / s.FuelCapacity * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
