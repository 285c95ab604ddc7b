package obs

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pitwall/pitwall/internal/alerts"
	"github.com/pitwall/pitwall/internal/monitor"
)

func TestRecordStatus_UpdatesGauges(t *testing.T) {
	Init()

	st := monitor.Status{
		FuelPct:         61.5,
		FuelPerMinute:   -2.4,
		FuelPerMinuteOK: true,
		WaterTemp:       88.0,
		OilTemp:         112.0,
		Alerts: []monitor.ActiveAlert{
			{Metric: monitor.MetricWater, Severity: alerts.Warning, Value: 92.0},
		},
	}
	RecordStatus("race-1", st)

	if got := testutil.ToFloat64(fuelPct.WithLabelValues("race-1")); got != 61.5 {
		t.Errorf("fuel_pct: got %v, want 61.5", got)
	}
	if got := testutil.ToFloat64(fuelRatePerMin.WithLabelValues("race-1")); got != -2.4 {
		t.Errorf("fuel_rate_per_minute: got %v, want -2.4", got)
	}
	if got := testutil.ToFloat64(activeAlerts.WithLabelValues("race-1", "warning")); got != 1 {
		t.Errorf("active_alerts{warning}: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(activeAlerts.WithLabelValues("race-1", "critical")); got != 0 {
		t.Errorf("active_alerts{critical}: got %v, want 0", got)
	}
}

func TestRecordTransitions_CountsByMetricAndSeverity(t *testing.T) {
	Init()

	before := testutil.ToFloat64(transitionsTotal.WithLabelValues(monitor.MetricOil, "critical"))
	RecordTransitions([]alerts.Transition{
		{Metric: monitor.MetricOil, From: alerts.Warning, To: alerts.Critical, Value: 151.0},
	})
	after := testutil.ToFloat64(transitionsTotal.WithLabelValues(monitor.MetricOil, "critical"))

	if after-before != 1 {
		t.Errorf("alert_transitions_total: got delta %v, want 1", after-before)
	}
}

func TestRecord_BeforeInitIsNoOp(t *testing.T) {
	// Nothing to assert beyond not panicking; package vars may already be
	// registered by an earlier test, so exercise the nil guards directly.
	var zero monitor.Status
	RecordStatus("x", zero)
	RecordTransitions(nil)
}
