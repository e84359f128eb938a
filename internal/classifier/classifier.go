package classifier

import (
	"math"

	"github.com/drivewise/vehicle-health/pkg/models"
)

// Config holds the rule thresholds. The zero value of any field falls back to
// the defaults below, matching the auto-label behavior the storage schema
// documents.
type Config struct {
	CoolantWarnTemp  float64 // degC, overheating starts
	CoolantCritTemp  float64 // degC, immediate critical
	OilWarnTemp      float64 // degC
	VoltageLow       float64 // volts, charging system suspect
	VoltageCritical  float64 // volts, immediate critical
	FuelTrimLimit    float64 // percent, |long term trim| above this is a lean/rich fault
	EngineLoadHigh   float64 // percent
	StressScoreHigh  float64 // collector-derived stress score
	EGRErrorLimit    float64 // percent
	CatalystWarnTemp float64 // degC

	AdvisoryPoints int // minimum severity points for ADVISORY
	WarningPoints  int // minimum severity points for WARNING
	CriticalPoints int // minimum severity points for CRITICAL
}

// Classifier derives a HealthClass directly from sensor thresholds. It is the
// deterministic fallback used whenever no model prediction is available, and
// it also produces the health_status auto-label stored with every record.
//
// The evaluation is a severity-point vote: each available field contributes
// points that never decrease as the field gets worse, and absent fields
// contribute nothing at all. Absent is not "nominal zero" - a missing
// dtc_count simply does not vote.
type Classifier struct {
	config Config
}

func New(cfg Config) *Classifier {
	if cfg.CoolantWarnTemp == 0 {
		cfg.CoolantWarnTemp = 105.0
	}
	if cfg.CoolantCritTemp == 0 {
		cfg.CoolantCritTemp = 118.0
	}
	if cfg.OilWarnTemp == 0 {
		cfg.OilWarnTemp = 130.0
	}
	if cfg.VoltageLow == 0 {
		cfg.VoltageLow = 11.5
	}
	if cfg.VoltageCritical == 0 {
		cfg.VoltageCritical = 9.5
	}
	if cfg.FuelTrimLimit == 0 {
		cfg.FuelTrimLimit = 20.0
	}
	if cfg.EngineLoadHigh == 0 {
		cfg.EngineLoadHigh = 95.0
	}
	if cfg.StressScoreHigh == 0 {
		cfg.StressScoreHigh = 85.0
	}
	if cfg.EGRErrorLimit == 0 {
		cfg.EGRErrorLimit = 30.0
	}
	if cfg.CatalystWarnTemp == 0 {
		cfg.CatalystWarnTemp = 1000.0
	}
	if cfg.AdvisoryPoints == 0 {
		cfg.AdvisoryPoints = 1
	}
	if cfg.WarningPoints == 0 {
		cfg.WarningPoints = 3
	}
	if cfg.CriticalPoints == 0 {
		cfg.CriticalPoints = 6
	}
	return &Classifier{config: cfg}
}

// Classify is a total function over sensor readings: it always returns a
// member of the closed enum and never errors. Same reading, same class.
func (c *Classifier) Classify(reading *models.SensorReading) models.HealthClass {
	points := c.severityPoints(reading)

	switch {
	case points >= c.config.CriticalPoints:
		return models.HealthCritical
	case points >= c.config.WarningPoints:
		return models.HealthWarning
	case points >= c.config.AdvisoryPoints:
		return models.HealthAdvisory
	default:
		return models.HealthNormal
	}
}

func (c *Classifier) severityPoints(r *models.SensorReading) int {
	points := 0

	if r.MILStatus != nil && *r.MILStatus {
		points += 3
	}

	if r.DTCCount != nil {
		switch {
		case *r.DTCCount >= 3:
			points += 3
		case *r.DTCCount >= 1:
			points += 2
		}
	}

	if r.DistanceWMIL != nil && *r.DistanceWMIL > 0 {
		points++
	}

	if r.CoolantTemp != nil {
		switch {
		case *r.CoolantTemp >= c.config.CoolantCritTemp:
			points += c.config.CriticalPoints
		case *r.CoolantTemp >= c.config.CoolantWarnTemp:
			points += 2
		}
	}

	if r.OilTemp != nil && *r.OilTemp >= c.config.OilWarnTemp {
		points += 2
	}

	if r.ControlModuleVoltage != nil {
		switch {
		case *r.ControlModuleVoltage <= c.config.VoltageCritical:
			points += c.config.CriticalPoints
		case *r.ControlModuleVoltage <= c.config.VoltageLow:
			points++
		}
	}

	if r.FuelTrimLong != nil && math.Abs(*r.FuelTrimLong) >= c.config.FuelTrimLimit {
		points++
	}

	if r.EngineLoad != nil && *r.EngineLoad >= c.config.EngineLoadHigh {
		points++
	}

	if r.EngineStressScore != nil && *r.EngineStressScore >= c.config.StressScoreHigh {
		points++
	}

	if r.EGRError != nil && math.Abs(*r.EGRError) >= c.config.EGRErrorLimit {
		points++
	}

	if r.CatalystTemp != nil && *r.CatalystTemp >= c.config.CatalystWarnTemp {
		points += 2
	}

	return points
}
