package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthClass_String(t *testing.T) {
	assert.Equal(t, "NORMAL", HealthNormal.String())
	assert.Equal(t, "ADVISORY", HealthAdvisory.String())
	assert.Equal(t, "WARNING", HealthWarning.String())
	assert.Equal(t, "CRITICAL", HealthCritical.String())
	assert.Equal(t, "UNKNOWN", HealthClass(9).String())
	assert.Equal(t, "UNKNOWN", HealthClass(-1).String())
}

func TestHealthClass_Valid(t *testing.T) {
	for c := HealthNormal; c <= HealthCritical; c++ {
		assert.True(t, c.Valid())
	}
	assert.False(t, HealthClass(4).Valid())
	assert.False(t, HealthClass(-1).Valid())
}

func TestParseHealthClass(t *testing.T) {
	class, ok := ParseHealthClass("WARNING")
	assert.True(t, ok)
	assert.Equal(t, HealthWarning, class)

	_, ok = ParseHealthClass("warning")
	assert.False(t, ok, "names are case sensitive wire values")

	_, ok = ParseHealthClass("UNKNOWN")
	assert.False(t, ok)

	_, ok = ParseHealthClass("")
	assert.False(t, ok)
}

func TestHealthClass_AtLeast(t *testing.T) {
	assert.True(t, HealthCritical.AtLeast(HealthWarning))
	assert.True(t, HealthWarning.AtLeast(HealthWarning))
	assert.False(t, HealthAdvisory.AtLeast(HealthWarning))
}

func TestMLPrediction_WellFormed(t *testing.T) {
	valid := func() *MLPrediction {
		return &MLPrediction{
			PredictedHealthStatus: 1,
			ConfidenceScore:       72.0,
			ProbNormal:            0.2,
			ProbAdvisory:          0.6,
			ProbWarning:           0.15,
			ProbCritical:          0.05,
		}
	}

	assert.True(t, valid().WellFormed())

	var nilPrediction *MLPrediction
	assert.False(t, nilPrediction.WellFormed())

	p := valid()
	p.PredictedHealthStatus = 4
	assert.False(t, p.WellFormed())

	p = valid()
	p.ConfidenceScore = 100.1
	assert.False(t, p.WellFormed())

	p = valid()
	p.ProbNormal = -0.1
	assert.False(t, p.WellFormed())

	// Boundary confidence values are legal
	p = valid()
	p.ConfidenceScore = 0
	assert.True(t, p.WellFormed())
	p.ConfidenceScore = 100
	assert.True(t, p.WellFormed())
}

func TestSensorReading_MILOn(t *testing.T) {
	r := &SensorReading{}
	assert.False(t, r.MILOn(), "absent lamp status is not off or on")

	off := false
	r.MILStatus = &off
	assert.False(t, r.MILOn())

	on := true
	r.MILStatus = &on
	assert.True(t, r.MILOn())
}

func TestSensorReading_FieldCount(t *testing.T) {
	r := &SensorReading{}
	assert.Zero(t, r.FieldCount())

	rpm := 1500
	coolant := 92.0
	r.RPM = &rpm
	r.CoolantTemp = &coolant
	assert.Equal(t, 2, r.FieldCount())
}

func TestSensorReading_JSONOmitsAbsentFields(t *testing.T) {
	rpm := 1500
	r := &SensorReading{
		VehicleID: "veh-1",
		Timestamp: time.Now(),
		RPM:       &rpm,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Contains(t, decoded, "rpm")
	assert.NotContains(t, decoded, "coolant_temp", "absent fields must not serialize as zero")
}

func TestHealthRecord_ModelDerived(t *testing.T) {
	assert.True(t, (&HealthRecord{Source: SourceModel}).ModelDerived())
	assert.False(t, (&HealthRecord{Source: SourceRules}).ModelDerived())
}

func TestHealthRecord_StatusClass(t *testing.T) {
	record := &HealthRecord{MLStatus: "CRITICAL", HealthStatus: HealthNormal}
	assert.Equal(t, HealthCritical, record.StatusClass())

	record = &HealthRecord{MLStatus: "bogus", HealthStatus: HealthWarning}
	assert.Equal(t, HealthWarning, record.StatusClass(), "unknown name falls back to the rule label")
}

func TestVehicle_ConfigRoundTrip(t *testing.T) {
	v := NewVehicle("Family SUV", "1HGBH41JXMN109186")
	v.Config = &VehicleConfig{CollectorEndpoint: "http://daemon.local/telemetry"}

	data, err := v.ConfigJSON()
	require.NoError(t, err)

	restored := &Vehicle{}
	require.NoError(t, restored.ParseConfig(data))
	assert.Equal(t, v.Config.CollectorEndpoint, restored.Config.CollectorEndpoint)
}

func TestNewVehicle(t *testing.T) {
	v := NewVehicle("Daily Driver", "")

	assert.NotEmpty(t, v.ID)
	assert.Equal(t, VehicleStatusActive, v.Status)
	assert.True(t, v.IsActive())
}

func TestEvent_Builders(t *testing.T) {
	event := NewEvent(EventTypeAlert, "veh-1", "coolant critical").
		WithSeverity(SeverityCritical).
		WithData(map[string]string{"field": "coolant_temp"}).
		WithTraceID("trace-123")

	assert.Equal(t, EventTypeAlert, event.Type)
	assert.Equal(t, SeverityCritical, event.Severity)
	assert.Equal(t, "veh-1", event.VehicleID)
	assert.Equal(t, "trace-123", event.TraceID)
	assert.NotEmpty(t, event.ID)
}
