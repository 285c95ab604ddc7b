package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pitwall/pitwall/internal/alerts"
	"github.com/pitwall/pitwall/internal/monitor"
	"github.com/pitwall/pitwall/internal/telemetry"
)

const metricPrefix = "pitwall_"

var (
	registerOnce sync.Once

	samplesTotal     *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec

	fuelPct        *prometheus.GaugeVec
	fuelRatePerMin *prometheus.GaugeVec
	tireTemp       *prometheus.GaugeVec
	waterTemp      *prometheus.GaugeVec
	oilTemp        *prometheus.GaugeVec
	activeAlerts   *prometheus.GaugeVec
)

// Init registers the engine metrics with the default Prometheus registry.
// Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		samplesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "samples_total",
				Help: "Total telemetry samples processed by session",
			},
			[]string{"session"},
		)
		transitionsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alert_transitions_total",
				Help: "Total alert state transitions by metric and new severity",
			},
			[]string{"metric", "to"},
		)

		fuelPct = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "fuel_pct",
				Help: "Fuel remaining as a percentage of starting capacity",
			},
			[]string{"session"},
		)
		fuelRatePerMin = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "fuel_rate_per_minute",
				Help: "Estimated fuel consumption rate per minute (negative while burning)",
			},
			[]string{"session"},
		)
		tireTemp = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "tire_temp_celsius",
				Help: "Smoothed tire surface temperature per corner",
			},
			[]string{"session", "corner"},
		)
		waterTemp = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "water_temp_celsius",
				Help: "Smoothed water temperature",
			},
			[]string{"session"},
		)
		oilTemp = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "oil_temp_celsius",
				Help: "Smoothed oil temperature",
			},
			[]string{"session"},
		)
		activeAlerts = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "active_alerts",
				Help: "Number of metrics currently above Nominal, by severity",
			},
			[]string{"session", "severity"},
		)

		prometheus.MustRegister(
			samplesTotal,
			transitionsTotal,
			fuelPct,
			fuelRatePerMin,
			tireTemp,
			waterTemp,
			oilTemp,
			activeAlerts,
		)
	})
}

// RecordStatus updates the per-session gauges from a freshly computed status
// and counts the sample.
func RecordStatus(session string, st monitor.Status) {
	if samplesTotal == nil {
		return
	}
	samplesTotal.WithLabelValues(session).Inc()

	fuelPct.WithLabelValues(session).Set(st.FuelPct)
	if st.FuelPerMinuteOK {
		fuelRatePerMin.WithLabelValues(session).Set(st.FuelPerMinute)
	}
	for c := 0; c < telemetry.NumCorners; c++ {
		tireTemp.WithLabelValues(session, telemetry.CornerName(c)).Set(st.TireTemp[c])
	}
	waterTemp.WithLabelValues(session).Set(st.WaterTemp)
	oilTemp.WithLabelValues(session).Set(st.OilTemp)

	warn, crit := 0, 0
	for _, a := range st.Alerts {
		switch a.Severity {
		case alerts.Warning:
			warn++
		case alerts.Critical:
			crit++
		}
	}
	activeAlerts.WithLabelValues(session, alerts.Warning.String()).Set(float64(warn))
	activeAlerts.WithLabelValues(session, alerts.Critical.String()).Set(float64(crit))
}

// RecordTransitions counts committed alert transitions.
func RecordTransitions(trs []alerts.Transition) {
	if transitionsTotal == nil {
		return
	}
	for _, tr := range trs {
		transitionsTotal.WithLabelValues(tr.Metric, tr.To.String()).Inc()
	}
}
