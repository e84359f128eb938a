package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivewise/vehicle-health/internal/classifier"
	"github.com/drivewise/vehicle-health/pkg/models"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
func intPtr(v int) *int           { return &v }

func newTestMerger() *Merger {
	return NewMerger(classifier.New(classifier.Config{}))
}

func healthyReading() *models.SensorReading {
	return &models.SensorReading{
		VehicleID:            "veh-1",
		Timestamp:            time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		RPM:                  intPtr(1800),
		CoolantTemp:          floatPtr(90),
		ControlModuleVoltage: floatPtr(14.2),
	}
}

func wellFormedPrediction() *models.MLPrediction {
	return &models.MLPrediction{
		PredictedHealthStatus: int(models.HealthWarning),
		PredictedStatus:       "WARNING",
		ConfidenceScore:       87.5,
		ProbNormal:            0.05,
		ProbAdvisory:          0.10,
		ProbWarning:           0.70,
		ProbCritical:          0.15,
		RecommendedActions:    []string{"inspect cooling system", "check battery"},
	}
}

func TestScoreForClass(t *testing.T) {
	assert.Equal(t, 95.0, ScoreForClass(models.HealthNormal))
	assert.Equal(t, 70.0, ScoreForClass(models.HealthAdvisory))
	assert.Equal(t, 45.0, ScoreForClass(models.HealthWarning))
	assert.Equal(t, 20.0, ScoreForClass(models.HealthCritical))
}

func TestMerge_ModelPath(t *testing.T) {
	m := newTestMerger()
	reading := healthyReading()
	prediction := wellFormedPrediction()

	record := m.Merge(reading, prediction)

	assert.Equal(t, "veh-1", record.VehicleID)
	assert.Equal(t, reading.Timestamp, record.Timestamp)
	assert.Equal(t, models.SourceModel, record.Source)
	assert.Equal(t, "WARNING", record.MLStatus)
	assert.Equal(t, 45.0, record.MLHealthScore, "score comes from the class band, not the probabilities")
	assert.InDelta(t, 0.875, record.MLConfidence, 1e-9)
	assert.Equal(t, []string{"inspect cooling system", "check battery"}, record.MLAlerts)
	assert.Equal(t, models.HealthNormal, record.HealthStatus, "rule label is stored alongside the model output")
}

func TestMerge_NilPredictionFallsBack(t *testing.T) {
	m := newTestMerger()
	reading := healthyReading()
	reading.MILStatus = boolPtr(true)

	record := m.Merge(reading, nil)

	assert.Equal(t, models.SourceRules, record.Source)
	assert.Equal(t, "WARNING", record.MLStatus)
	assert.Equal(t, 45.0, record.MLHealthScore)
	assert.Zero(t, record.MLConfidence, "fallback confidence is zero so consumers can tell")
	require.NotNil(t, record.MLAlerts)
	assert.Empty(t, record.MLAlerts, "alerts must be an empty list, never nil")
}

func TestMerge_MalformedPredictionFallsBack(t *testing.T) {
	m := newTestMerger()

	tests := []struct {
		name   string
		mutate func(p *models.MLPrediction)
	}{
		{
			name:   "class outside enum",
			mutate: func(p *models.MLPrediction) { p.PredictedHealthStatus = 7 },
		},
		{
			name:   "negative class",
			mutate: func(p *models.MLPrediction) { p.PredictedHealthStatus = -1 },
		},
		{
			name:   "confidence above 100",
			mutate: func(p *models.MLPrediction) { p.ConfidenceScore = 150 },
		},
		{
			name:   "negative confidence",
			mutate: func(p *models.MLPrediction) { p.ConfidenceScore = -5 },
		},
		{
			name:   "probability above one",
			mutate: func(p *models.MLPrediction) { p.ProbWarning = 1.7 },
		},
		{
			name: "probabilities do not sum to one",
			mutate: func(p *models.MLPrediction) {
				p.ProbNormal = 0.5
				p.ProbAdvisory = 0.5
				p.ProbWarning = 0.5
				p.ProbCritical = 0.5
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prediction := wellFormedPrediction()
			tt.mutate(prediction)

			record := m.Merge(healthyReading(), prediction)

			assert.Equal(t, models.SourceRules, record.Source)
			assert.Zero(t, record.MLConfidence)
			assert.Equal(t, "NORMAL", record.MLStatus, "fallback uses the rule class")
			assert.Equal(t, 95.0, record.MLHealthScore)
			assert.NotNil(t, record.MLAlerts)
		})
	}
}

func TestMerge_ProbSumTolerance(t *testing.T) {
	m := newTestMerger()

	// 1.01 is inside the accepted drift
	prediction := wellFormedPrediction()
	prediction.ProbCritical += 0.01
	record := m.Merge(healthyReading(), prediction)
	assert.Equal(t, models.SourceModel, record.Source)

	// 1.05 is not
	prediction = wellFormedPrediction()
	prediction.ProbCritical += 0.05
	record = m.Merge(healthyReading(), prediction)
	assert.Equal(t, models.SourceRules, record.Source)
}

func TestMerge_ConfidenceBoundaries(t *testing.T) {
	m := newTestMerger()

	prediction := wellFormedPrediction()
	prediction.ConfidenceScore = 100
	record := m.Merge(healthyReading(), prediction)
	assert.Equal(t, 1.0, record.MLConfidence)

	prediction = wellFormedPrediction()
	prediction.ConfidenceScore = 0
	record = m.Merge(healthyReading(), prediction)
	assert.Equal(t, models.SourceModel, record.Source, "zero confidence is still a valid model output")
	assert.Zero(t, record.MLConfidence)
}

func TestMerge_NilActionsBecomeEmptyAlerts(t *testing.T) {
	m := newTestMerger()
	prediction := wellFormedPrediction()
	prediction.RecommendedActions = nil

	record := m.Merge(healthyReading(), prediction)

	require.NotNil(t, record.MLAlerts)
	assert.Empty(t, record.MLAlerts)
}

func TestMerge_Pure(t *testing.T) {
	m := newTestMerger()
	reading := healthyReading()
	prediction := wellFormedPrediction()

	first := m.Merge(reading, prediction)
	second := m.Merge(reading, prediction)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second, "each call returns a fresh record")

	// Mutating the returned alerts must not leak into the prediction
	first.MLAlerts[0] = "changed"
	assert.Equal(t, "inspect cooling system", prediction.RecommendedActions[0])
}

func TestMerge_NilReadingPanics(t *testing.T) {
	m := newTestMerger()

	assert.Panics(t, func() {
		m.Merge(nil, wellFormedPrediction())
	})
}

func TestMerge_ModelAndRulesCanDisagree(t *testing.T) {
	m := newTestMerger()

	// Rules see a critical overheating engine; the model says normal. The
	// model wins the displayed status, the rule label keeps the truth.
	reading := healthyReading()
	reading.CoolantTemp = floatPtr(125)

	prediction := wellFormedPrediction()
	prediction.PredictedHealthStatus = int(models.HealthNormal)

	record := m.Merge(reading, prediction)

	assert.Equal(t, models.HealthCritical, record.HealthStatus)
	assert.Equal(t, "NORMAL", record.MLStatus)
	assert.Equal(t, models.SourceModel, record.Source)
}
