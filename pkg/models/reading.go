package models

import "time"

// RawSnapshot is one flat OBD-II snapshot as produced by an ingestion source:
// field name -> number/string/boolean/null. Arbitrary subsets of the
// recognized fields may be present; values may be garbage.
type RawSnapshot map[string]interface{}

// TelemetrySnapshot is one raw snapshot as delivered by an ingestion source,
// before normalization.
type TelemetrySnapshot struct {
	VehicleID string      `json:"vehicle_id"`
	Timestamp time.Time   `json:"timestamp"`
	Data      RawSnapshot `json:"data"`
}

// FieldAnomaly records a raw value that was rejected during normalization
// (outside the documented physical range, wrong type). The value is kept for
// diagnostics but never flows into the typed reading.
type FieldAnomaly struct {
	Field  string      `json:"field"`
	Value  interface{} `json:"value"`
	Reason string      `json:"reason"`
}

// SensorReading is one normalized vehicle snapshot. Every recognized field is
// a pointer: nil means the sensor did not report (or reported garbage), which
// is distinct from a genuine zero. Downstream code must never substitute zero
// for nil.
type SensorReading struct {
	VehicleID string    `json:"vehicle_id"`
	Timestamp time.Time `json:"timestamp"`

	// Engine
	RPM           *int     `json:"rpm,omitempty"`
	CoolantTemp   *float64 `json:"coolant_temp,omitempty"`
	EngineLoad    *float64 `json:"engine_load,omitempty"`
	ThrottlePos   *float64 `json:"throttle_pos,omitempty"`
	IntakeTemp    *float64 `json:"intake_temp,omitempty"`
	TimingAdvance *float64 `json:"timing_advance,omitempty"`
	AbsoluteLoad  *float64 `json:"absolute_load,omitempty"`
	OilTemp       *float64 `json:"oil_temp,omitempty"`
	RunTime       *float64 `json:"run_time,omitempty"`
	Speed         *float64 `json:"speed,omitempty"`

	// Fuel
	FuelLevel        *float64 `json:"fuel_level,omitempty"`
	FuelTrimShort    *float64 `json:"fuel_trim_short,omitempty"`
	FuelTrimLong     *float64 `json:"fuel_trim_long,omitempty"`
	FuelPressure     *float64 `json:"fuel_pressure,omitempty"`
	FuelSystemStatus *string  `json:"fuel_system_status,omitempty"`

	// Air / pressure
	MAF                *float64 `json:"maf,omitempty"`
	MAP                *float64 `json:"map,omitempty"`
	BarometricPressure *float64 `json:"barometric_pressure,omitempty"`
	AmbientAirTemp     *float64 `json:"ambient_air_temp,omitempty"`
	CatalystTemp       *float64 `json:"catalyst_temp,omitempty"`
	CommandedEGR       *float64 `json:"commanded_egr,omitempty"`

	// Electrical
	ControlModuleVoltage *float64 `json:"control_module_voltage,omitempty"`

	// Diagnostics
	DTCCount     *int     `json:"dtc_count,omitempty"`
	MILStatus    *bool    `json:"mil_status,omitempty"`
	DistanceWMIL *float64 `json:"distance_w_mil,omitempty"`

	// Derived (computed upstream by the collector daemon)
	FuelEfficiency    *float64 `json:"fuel_efficiency,omitempty"`
	EngineStressScore *float64 `json:"engine_stress_score,omitempty"`
	EGRError          *float64 `json:"egr_error,omitempty"`
	DataQualityScore  *int     `json:"data_quality_score,omitempty"`

	// Raw values rejected during normalization.
	Anomalies []FieldAnomaly `json:"anomalies,omitempty"`
}

// MILOn reports whether the check-engine lamp is known to be lit. An absent
// mil_status is not "off".
func (r *SensorReading) MILOn() bool {
	return r.MILStatus != nil && *r.MILStatus
}

// FieldCount returns how many recognized fields carry a value. Used for the
// data-quality gauge and for logging.
func (r *SensorReading) FieldCount() int {
	count := 0
	ptrs := []bool{
		r.RPM != nil, r.CoolantTemp != nil, r.EngineLoad != nil,
		r.ThrottlePos != nil, r.IntakeTemp != nil, r.TimingAdvance != nil,
		r.AbsoluteLoad != nil, r.OilTemp != nil, r.RunTime != nil,
		r.Speed != nil, r.FuelLevel != nil, r.FuelTrimShort != nil,
		r.FuelTrimLong != nil, r.FuelPressure != nil, r.FuelSystemStatus != nil,
		r.MAF != nil, r.MAP != nil, r.BarometricPressure != nil,
		r.AmbientAirTemp != nil, r.CatalystTemp != nil, r.CommandedEGR != nil,
		r.ControlModuleVoltage != nil, r.DTCCount != nil, r.MILStatus != nil,
		r.DistanceWMIL != nil, r.FuelEfficiency != nil,
		r.EngineStressScore != nil, r.EGRError != nil,
		r.DataQualityScore != nil,
	}
	for _, present := range ptrs {
		if present {
			count++
		}
	}
	return count
}
