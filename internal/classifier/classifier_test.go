package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/drivewise/vehicle-health/pkg/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }

func newReading(mutate func(r *models.SensorReading)) *models.SensorReading {
	r := &models.SensorReading{
		VehicleID: "veh-1",
		Timestamp: time.Now(),
	}
	if mutate != nil {
		mutate(r)
	}
	return r
}

func TestClassify_EmptyReadingIsNormal(t *testing.T) {
	c := New(Config{})

	class := c.Classify(newReading(nil))

	assert.Equal(t, models.HealthNormal, class, "a reading with no fields has nothing to vote")
}

func TestClassify_SingleFieldSeverities(t *testing.T) {
	c := New(Config{})

	tests := []struct {
		name     string
		mutate   func(r *models.SensorReading)
		expected models.HealthClass
	}{
		{
			name:     "nominal values",
			mutate:   func(r *models.SensorReading) { r.CoolantTemp = floatPtr(90); r.ControlModuleVoltage = floatPtr(14.2) },
			expected: models.HealthNormal,
		},
		{
			name:     "low battery voltage",
			mutate:   func(r *models.SensorReading) { r.ControlModuleVoltage = floatPtr(11.0) },
			expected: models.HealthAdvisory,
		},
		{
			name:     "high long term fuel trim",
			mutate:   func(r *models.SensorReading) { r.FuelTrimLong = floatPtr(25.0) },
			expected: models.HealthAdvisory,
		},
		{
			name:     "negative fuel trim counts by magnitude",
			mutate:   func(r *models.SensorReading) { r.FuelTrimLong = floatPtr(-25.0) },
			expected: models.HealthAdvisory,
		},
		{
			name:     "mil lamp on",
			mutate:   func(r *models.SensorReading) { r.MILStatus = boolPtr(true) },
			expected: models.HealthWarning,
		},
		{
			name:     "mil lamp off votes nothing",
			mutate:   func(r *models.SensorReading) { r.MILStatus = boolPtr(false) },
			expected: models.HealthNormal,
		},
		{
			name:     "overheating coolant",
			mutate:   func(r *models.SensorReading) { r.CoolantTemp = floatPtr(108) },
			expected: models.HealthAdvisory,
		},
		{
			name:     "critically hot coolant alone is critical",
			mutate:   func(r *models.SensorReading) { r.CoolantTemp = floatPtr(120) },
			expected: models.HealthCritical,
		},
		{
			name:     "dead battery alone is critical",
			mutate:   func(r *models.SensorReading) { r.ControlModuleVoltage = floatPtr(9.0) },
			expected: models.HealthCritical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(newReading(tt.mutate)))
		})
	}
}

func TestClassify_CombinedFaults(t *testing.T) {
	c := New(Config{})

	// MIL on (3) + three stored codes (3) crosses the critical threshold
	reading := newReading(func(r *models.SensorReading) {
		r.MILStatus = boolPtr(true)
		r.DTCCount = intPtr(3)
	})
	assert.Equal(t, models.HealthCritical, c.Classify(reading))

	// MIL on (3) + one code (2) + distance with MIL (1) = 6
	reading = newReading(func(r *models.SensorReading) {
		r.MILStatus = boolPtr(true)
		r.DTCCount = intPtr(1)
		r.DistanceWMIL = floatPtr(12.5)
	})
	assert.Equal(t, models.HealthCritical, c.Classify(reading))

	// Two advisory-weight faults land in warning once they sum to 3
	reading = newReading(func(r *models.SensorReading) {
		r.OilTemp = floatPtr(135)
		r.EngineLoad = floatPtr(97)
	})
	assert.Equal(t, models.HealthWarning, c.Classify(reading))
}

func TestClassify_AbsentFieldsAreNeutral(t *testing.T) {
	c := New(Config{})

	// Same faults, one reading with extra healthy fields present. The class
	// must not change: absent fields do not vote in either direction.
	sparse := newReading(func(r *models.SensorReading) {
		r.DTCCount = intPtr(2)
	})
	dense := newReading(func(r *models.SensorReading) {
		r.DTCCount = intPtr(2)
		r.CoolantTemp = floatPtr(90)
		r.OilTemp = floatPtr(100)
		r.ControlModuleVoltage = floatPtr(14.0)
		r.EngineLoad = floatPtr(40)
	})

	assert.Equal(t, c.Classify(sparse), c.Classify(dense))
}

func TestClassify_MonotoneInSeverity(t *testing.T) {
	c := New(Config{})

	// Walking coolant temperature upward must never lower the class.
	previous := models.HealthNormal
	for _, temp := range []float64{80, 100, 105, 110, 118, 150} {
		class := c.Classify(newReading(func(r *models.SensorReading) {
			r.CoolantTemp = floatPtr(temp)
		}))
		assert.True(t, class >= previous,
			"class regressed from %s to %s at coolant %v", previous, class, temp)
		previous = class
	}

	// Same for DTC count.
	previous = models.HealthNormal
	for _, count := range []int{0, 1, 2, 3, 10} {
		class := c.Classify(newReading(func(r *models.SensorReading) {
			r.DTCCount = intPtr(count)
		}))
		assert.True(t, class >= previous,
			"class regressed from %s to %s at dtc_count %d", previous, class, count)
		previous = class
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(Config{})
	reading := newReading(func(r *models.SensorReading) {
		r.MILStatus = boolPtr(true)
		r.CoolantTemp = floatPtr(110)
		r.EngineStressScore = floatPtr(90)
	})

	first := c.Classify(reading)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(reading))
	}
}

func TestClassify_CustomThresholds(t *testing.T) {
	c := New(Config{
		CoolantWarnTemp: 95.0,
		CoolantCritTemp: 110.0,
	})

	reading := newReading(func(r *models.SensorReading) {
		r.CoolantTemp = floatPtr(100)
	})
	assert.Equal(t, models.HealthAdvisory, c.Classify(reading))

	reading = newReading(func(r *models.SensorReading) {
		r.CoolantTemp = floatPtr(112)
	})
	assert.Equal(t, models.HealthCritical, c.Classify(reading))
}
