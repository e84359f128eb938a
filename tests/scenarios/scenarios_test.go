package scenarios

import (
	"testing"
	"time"

	"github.com/drivewise/vehicle-health/internal/classifier"
	"github.com/drivewise/vehicle-health/internal/health"
	"github.com/drivewise/vehicle-health/internal/normalizer"
	"github.com/drivewise/vehicle-health/pkg/models"
)

func newScenarioMerger() *health.Merger {
	return health.NewMerger(classifier.New(classifier.Config{}))
}

func evaluate(raw models.RawSnapshot, prediction *models.MLPrediction) *models.HealthRecord {
	reading := normalizer.Normalize("veh-scenario", time.Now(), raw)
	return newScenarioMerger().Merge(reading, prediction)
}

func TestScenario_HealthyHighwayCruise(t *testing.T) {
	raw := models.RawSnapshot{
		"rpm":                    2500.0,
		"speed":                  105.0,
		"coolant_temp":           92.0,
		"engine_load":            48.0,
		"control_module_voltage": 14.2,
		"dtc_count":              0.0,
		"mil_status":             false,
	}

	record := evaluate(raw, nil)

	if record.HealthStatus != models.HealthNormal {
		t.Errorf("healthy cruise should label NORMAL, got %s", record.HealthStatus)
	}
	if record.MLHealthScore != 95.0 {
		t.Errorf("NORMAL fallback score should be 95.0, got %.1f", record.MLHealthScore)
	}
	if record.ModelDerived() {
		t.Error("record without a prediction must not claim a model source")
	}
}

func TestScenario_OverheatRampEscalates(t *testing.T) {
	// The same drive at three points of an overheat ramp. Status must never
	// improve as coolant climbs.
	temps := []float64{92.0, 108.0, 121.0}
	var classes []models.HealthClass

	for _, temp := range temps {
		raw := models.RawSnapshot{
			"rpm":          2200.0,
			"coolant_temp": temp,
			"mil_status":   false,
		}
		record := evaluate(raw, nil)
		classes = append(classes, record.HealthStatus)
	}

	if classes[0] != models.HealthNormal {
		t.Errorf("baseline temp should be NORMAL, got %s", classes[0])
	}
	if classes[2] != models.HealthCritical {
		t.Errorf("121C coolant should be CRITICAL, got %s", classes[2])
	}
	for i := 1; i < len(classes); i++ {
		if classes[i] < classes[i-1] {
			t.Errorf("status improved from %s to %s while coolant rose", classes[i-1], classes[i])
		}
	}
}

func TestScenario_CheckEngineWithStoredCodes(t *testing.T) {
	raw := models.RawSnapshot{
		"rpm":          1800.0,
		"coolant_temp": 95.0,
		"mil_status":   1.0, // daemons ship MIL as 0/1
		"dtc_count":    3.0,
	}

	record := evaluate(raw, nil)

	if record.HealthStatus != models.HealthCritical {
		t.Errorf("MIL plus three stored codes should be CRITICAL, got %s", record.HealthStatus)
	}
	if record.MLHealthScore != 20.0 {
		t.Errorf("CRITICAL fallback score should be 20.0, got %.1f", record.MLHealthScore)
	}
}

func TestScenario_GarbledTelemetryStaysUsable(t *testing.T) {
	// A degraded OBD link ships a garbage coolant value and an impossible
	// RPM. Both are preserved as anomalies and the remaining fields still
	// produce a classification.
	raw := models.RawSnapshot{
		"rpm":          99999.0,
		"coolant_temp": "ERROR",
		"mil_status":   true,
		"dtc_count":    1.0,
	}

	reading := normalizer.Normalize("veh-scenario", time.Now(), raw)
	if len(reading.Anomalies) != 2 {
		t.Fatalf("expected 2 anomalies, got %d", len(reading.Anomalies))
	}
	if reading.CoolantTemp != nil {
		t.Error("garbled coolant must not populate the typed field")
	}

	record := newScenarioMerger().Merge(reading, nil)
	if record.HealthStatus != models.HealthWarning {
		t.Errorf("MIL with one code should still classify WARNING, got %s", record.HealthStatus)
	}
}

func TestScenario_ModelOverridesRules(t *testing.T) {
	// Rules see an overheat and say CRITICAL; the model, with the full
	// feature window, calls it WARNING. The model drives the record but the
	// rule label is kept alongside.
	raw := models.RawSnapshot{
		"rpm":          2600.0,
		"coolant_temp": 121.0,
		"mil_status":   false,
	}

	prediction := &models.MLPrediction{
		PredictedHealthStatus: int(models.HealthWarning),
		ConfidenceScore:       88.0,
		ProbNormal:            0.05,
		ProbAdvisory:          0.15,
		ProbWarning:           0.70,
		ProbCritical:          0.10,
		RecommendedActions:    []string{"Inspect cooling system"},
	}

	record := evaluate(raw, prediction)

	if record.HealthStatus != models.HealthCritical {
		t.Errorf("rule label should stay CRITICAL, got %s", record.HealthStatus)
	}
	if record.MLStatus != "WARNING" {
		t.Errorf("model should drive the displayed status, got %s", record.MLStatus)
	}
	if record.MLHealthScore != 45.0 {
		t.Errorf("WARNING score should be 45.0, got %.1f", record.MLHealthScore)
	}
	if record.MLConfidence != 0.88 {
		t.Errorf("confidence should map to 0.88, got %.2f", record.MLConfidence)
	}
	if len(record.MLAlerts) != 1 || record.MLAlerts[0] != "Inspect cooling system" {
		t.Errorf("recommended actions should carry into alerts, got %v", record.MLAlerts)
	}
}

func TestScenario_BrokenModelFallsBack(t *testing.T) {
	// The inference service returns probabilities that do not sum to one.
	// The pipeline must degrade to the rule label instead of surfacing the
	// bad prediction.
	raw := models.RawSnapshot{
		"rpm":                    1500.0,
		"coolant_temp":           107.0,
		"control_module_voltage": 13.9,
	}

	prediction := &models.MLPrediction{
		PredictedHealthStatus: int(models.HealthNormal),
		ConfidenceScore:       99.0,
		ProbNormal:            0.9,
		ProbAdvisory:          0.9,
	}

	record := evaluate(raw, prediction)

	if record.ModelDerived() {
		t.Error("malformed prediction must not drive the record")
	}
	if record.MLStatus != "ADVISORY" {
		t.Errorf("fallback should use the rule label ADVISORY, got %s", record.MLStatus)
	}
	if record.MLConfidence != 0 {
		t.Errorf("fallback confidence should be 0, got %.2f", record.MLConfidence)
	}
	if record.MLAlerts == nil || len(record.MLAlerts) != 0 {
		t.Errorf("fallback alerts should be empty, not nil, got %v", record.MLAlerts)
	}
}

func TestScenario_WeakBatteryAdvisory(t *testing.T) {
	raw := models.RawSnapshot{
		"rpm":                    750.0,
		"coolant_temp":           88.0,
		"control_module_voltage": 11.2,
		"mil_status":             false,
	}

	record := evaluate(raw, nil)

	if record.HealthStatus != models.HealthAdvisory {
		t.Errorf("low charging voltage should be ADVISORY, got %s", record.HealthStatus)
	}
	if record.MLHealthScore != 70.0 {
		t.Errorf("ADVISORY fallback score should be 70.0, got %.1f", record.MLHealthScore)
	}
}
