package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivewise/vehicle-health/pkg/models"
)

func TestNormalize_TypedFields(t *testing.T) {
	raw := models.RawSnapshot{
		"rpm":                    2400.0,
		"coolant_temp":           92.5,
		"speed":                  63.0,
		"mil_status":             true,
		"dtc_count":              2.0,
		"fuel_system_status":     "closed_loop",
		"control_module_voltage": 14.1,
	}

	reading := Normalize("veh-1", time.Now(), raw)

	require.NotNil(t, reading.RPM)
	assert.Equal(t, 2400, *reading.RPM)
	require.NotNil(t, reading.CoolantTemp)
	assert.Equal(t, 92.5, *reading.CoolantTemp)
	require.NotNil(t, reading.MILStatus)
	assert.True(t, *reading.MILStatus)
	require.NotNil(t, reading.DTCCount)
	assert.Equal(t, 2, *reading.DTCCount)
	require.NotNil(t, reading.FuelSystemStatus)
	assert.Equal(t, "closed_loop", *reading.FuelSystemStatus)
	assert.Empty(t, reading.Anomalies)
}

func TestNormalize_AbsentStaysAbsent(t *testing.T) {
	raw := models.RawSnapshot{
		"rpm":          800.0,
		"coolant_temp": nil,
	}

	reading := Normalize("veh-1", time.Now(), raw)

	assert.Nil(t, reading.CoolantTemp, "null value must stay absent")
	assert.Nil(t, reading.OilTemp, "missing field must stay absent")
	assert.Empty(t, reading.Anomalies, "absent fields are not anomalies")
}

func TestNormalize_OutOfRangeBecomesAnomaly(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value interface{}
	}{
		{"coolant above max", "coolant_temp", 300.0},
		{"coolant below min", "coolant_temp", -80.0},
		{"negative rpm", "rpm", -100.0},
		{"dtc_count above max", "dtc_count", 500.0},
		{"engine_load above 100", "engine_load", 250.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := models.RawSnapshot{tt.field: tt.value}
			reading := Normalize("veh-1", time.Now(), raw)

			require.Len(t, reading.Anomalies, 1)
			assert.Equal(t, tt.field, reading.Anomalies[0].Field)
			assert.Equal(t, tt.value, reading.Anomalies[0].Value)
			assert.Zero(t, reading.FieldCount(), "rejected value must not be stored")
		})
	}
}

func TestNormalize_WrongTypeBecomesAnomaly(t *testing.T) {
	raw := models.RawSnapshot{
		"coolant_temp": "hot",
		"rpm":          2400.7,
		"mil_status":   "yes",
	}

	reading := Normalize("veh-1", time.Now(), raw)

	assert.Nil(t, reading.CoolantTemp)
	assert.Nil(t, reading.RPM)
	assert.Nil(t, reading.MILStatus)
	assert.Len(t, reading.Anomalies, 3)
}

func TestNormalize_NumericBoolCoercion(t *testing.T) {
	on := Normalize("veh-1", time.Now(), models.RawSnapshot{"mil_status": 1.0})
	require.NotNil(t, on.MILStatus)
	assert.True(t, *on.MILStatus)

	off := Normalize("veh-1", time.Now(), models.RawSnapshot{"mil_status": 0.0})
	require.NotNil(t, off.MILStatus)
	assert.False(t, *off.MILStatus)

	garbage := Normalize("veh-1", time.Now(), models.RawSnapshot{"mil_status": 2.0})
	assert.Nil(t, garbage.MILStatus)
	assert.Len(t, garbage.Anomalies, 1)
}

func TestNormalize_UnrecognizedKeysDropped(t *testing.T) {
	raw := models.RawSnapshot{
		"rpm":           1500.0,
		"cabin_temp":    22.0,
		"tire_pressure": 32.0,
	}

	reading := Normalize("veh-1", time.Now(), raw)

	assert.Equal(t, 1, reading.FieldCount())
	assert.Empty(t, reading.Anomalies, "unrecognized keys are dropped silently")
}

func TestNormalize_BoundaryValuesAccepted(t *testing.T) {
	raw := models.RawSnapshot{
		"coolant_temp": 215.0,
		"engine_load":  100.0,
		"rpm":          0.0,
		"dtc_count":    127.0,
	}

	reading := Normalize("veh-1", time.Now(), raw)

	assert.Empty(t, reading.Anomalies)
	assert.Equal(t, 4, reading.FieldCount())
}

func TestNormalize_Deterministic(t *testing.T) {
	raw := models.RawSnapshot{
		"rpm":          3000.0,
		"coolant_temp": 500.0,
		"speed":        "fast",
		"oil_temp":     110.0,
	}
	ts := time.Now()

	first := Normalize("veh-1", ts, raw)
	second := Normalize("veh-1", ts, raw)

	assert.Equal(t, first, second)
}

func TestNormalize_EmptySnapshot(t *testing.T) {
	reading := Normalize("veh-1", time.Now(), models.RawSnapshot{})

	assert.Equal(t, "veh-1", reading.VehicleID)
	assert.Zero(t, reading.FieldCount())
	assert.Empty(t, reading.Anomalies)
}

func TestRecognizedFields(t *testing.T) {
	fields := RecognizedFields()

	assert.Len(t, fields, 29)
	assert.Contains(t, fields, "rpm")
	assert.Contains(t, fields, "data_quality_score")
}
