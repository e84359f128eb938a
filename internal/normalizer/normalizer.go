package normalizer

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/drivewise/vehicle-health/pkg/models"
)

// Normalize validates a raw key/value snapshot into a typed SensorReading.
// It is a pure transform and never fails: unrecognized keys are dropped,
// null and missing values stay absent, and values outside the documented
// physical range become absent plus a recorded anomaly. Garbled telemetry is
// steady-state for OBD links, not an exceptional condition.
func Normalize(vehicleID string, timestamp time.Time, raw models.RawSnapshot) *models.SensorReading {
	reading := &models.SensorReading{
		VehicleID: vehicleID,
		Timestamp: timestamp,
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		spec, recognized := fieldRegistry[key]
		if !recognized {
			continue
		}

		value := raw[key]
		if value == nil {
			continue
		}

		switch spec.kind {
		case kindFloat:
			f, ok := toFloat(value)
			if !ok {
				reading.Anomalies = append(reading.Anomalies, anomaly(key, value, "not a number"))
				continue
			}
			if f < spec.min || f > spec.max {
				reading.Anomalies = append(reading.Anomalies, anomaly(key, value, rangeReason(spec)))
				continue
			}
			setFloat(reading, key, f)

		case kindInt:
			f, ok := toFloat(value)
			if !ok || f != math.Trunc(f) {
				reading.Anomalies = append(reading.Anomalies, anomaly(key, value, "not an integer"))
				continue
			}
			if f < spec.min || f > spec.max {
				reading.Anomalies = append(reading.Anomalies, anomaly(key, value, rangeReason(spec)))
				continue
			}
			setInt(reading, key, int(f))

		case kindBool:
			b, ok := toBool(value)
			if !ok {
				reading.Anomalies = append(reading.Anomalies, anomaly(key, value, "not a boolean"))
				continue
			}
			setBool(reading, key, b)

		case kindString:
			s, ok := value.(string)
			if !ok {
				reading.Anomalies = append(reading.Anomalies, anomaly(key, value, "not a string"))
				continue
			}
			setString(reading, key, s)
		}
	}

	return reading
}

func anomaly(field string, value interface{}, reason string) models.FieldAnomaly {
	return models.FieldAnomaly{Field: field, Value: value, Reason: reason}
}

func rangeReason(spec fieldSpec) string {
	return fmt.Sprintf("outside physical range [%g, %g]", spec.min, spec.max)
}

// toFloat accepts the numeric shapes a loosely-typed JSON payload produces.
func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toBool(value interface{}) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case float64:
		// Some ELM327 daemons report the lamp as 0/1.
		if v == 0 {
			return false, true
		}
		if v == 1 {
			return true, true
		}
		return false, false
	case int:
		if v == 0 {
			return false, true
		}
		if v == 1 {
			return true, true
		}
		return false, false
	default:
		return false, false
	}
}

func setFloat(r *models.SensorReading, key string, v float64) {
	switch key {
	case "coolant_temp":
		r.CoolantTemp = &v
	case "engine_load":
		r.EngineLoad = &v
	case "throttle_pos":
		r.ThrottlePos = &v
	case "intake_temp":
		r.IntakeTemp = &v
	case "timing_advance":
		r.TimingAdvance = &v
	case "absolute_load":
		r.AbsoluteLoad = &v
	case "oil_temp":
		r.OilTemp = &v
	case "run_time":
		r.RunTime = &v
	case "speed":
		r.Speed = &v
	case "fuel_level":
		r.FuelLevel = &v
	case "fuel_trim_short":
		r.FuelTrimShort = &v
	case "fuel_trim_long":
		r.FuelTrimLong = &v
	case "fuel_pressure":
		r.FuelPressure = &v
	case "maf":
		r.MAF = &v
	case "map":
		r.MAP = &v
	case "barometric_pressure":
		r.BarometricPressure = &v
	case "ambient_air_temp":
		r.AmbientAirTemp = &v
	case "catalyst_temp":
		r.CatalystTemp = &v
	case "commanded_egr":
		r.CommandedEGR = &v
	case "control_module_voltage":
		r.ControlModuleVoltage = &v
	case "distance_w_mil":
		r.DistanceWMIL = &v
	case "fuel_efficiency":
		r.FuelEfficiency = &v
	case "engine_stress_score":
		r.EngineStressScore = &v
	case "egr_error":
		r.EGRError = &v
	}
}

func setInt(r *models.SensorReading, key string, v int) {
	switch key {
	case "rpm":
		r.RPM = &v
	case "dtc_count":
		r.DTCCount = &v
	case "data_quality_score":
		r.DataQualityScore = &v
	}
}

func setBool(r *models.SensorReading, key string, v bool) {
	if key == "mil_status" {
		r.MILStatus = &v
	}
}

func setString(r *models.SensorReading, key string, v string) {
	if key == "fuel_system_status" {
		r.FuelSystemStatus = &v
	}
}
