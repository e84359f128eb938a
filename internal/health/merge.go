package health

import (
	"github.com/drivewise/vehicle-health/internal/classifier"
	"github.com/drivewise/vehicle-health/pkg/models"
)

// Merger turns a normalized reading plus an optional model prediction into
// the canonical HealthRecord. It is pure and stateless; callers may share one
// instance across goroutines.
//
// The design is fail-open: a missing or malformed prediction degrades to the
// rule classifier and never blocks the record. A vehicle with no usable model
// output still shows a rule-derived status, with ml_confidence zero so
// consumers can tell the record was not model-derived.
type Merger struct {
	rules *classifier.Classifier
}

func NewMerger(rules *classifier.Classifier) *Merger {
	return &Merger{rules: rules}
}

// Merge produces a fresh HealthRecord for the reading. The prediction may be
// nil. Merge never fails for data-quality reasons; it panics only when called
// without a reading, which is a caller bug, not noisy telemetry.
func (m *Merger) Merge(reading *models.SensorReading, prediction *models.MLPrediction) *models.HealthRecord {
	if reading == nil {
		panic("health: Merge called with nil reading")
	}

	// The rule-layer auto-label is computed unconditionally; it is stored
	// alongside the record even when the model drives the displayed status.
	ruleClass := m.rules.Classify(reading)

	record := &models.HealthRecord{
		VehicleID:    reading.VehicleID,
		Timestamp:    reading.Timestamp,
		HealthStatus: ruleClass,
	}

	if prediction.WellFormed() {
		class := prediction.PredictedClass()
		record.MLStatus = class.String()
		record.MLHealthScore = ScoreForClass(class)
		record.MLConfidence = clamp01(prediction.ConfidenceScore / 100.0)
		record.MLAlerts = copyAlerts(prediction.RecommendedActions)
		record.Source = models.SourceModel
		return record
	}

	record.MLStatus = ruleClass.String()
	record.MLHealthScore = ScoreForClass(ruleClass)
	record.MLConfidence = 0
	record.MLAlerts = []string{}
	record.Source = models.SourceRules
	return record
}

// copyAlerts preserves insertion order and guarantees a non-nil slice; the
// wire contract is an empty list, never null.
func copyAlerts(actions []string) []string {
	alerts := make([]string, len(actions))
	copy(alerts, actions)
	return alerts
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
