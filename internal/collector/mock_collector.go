package collector

import (
	"context"
	"math/rand"
	"time"

	"github.com/drivewise/vehicle-health/pkg/models"
)

// MockCollector produces synthetic snapshots for tests without a daemon or a
// broker behind it.
type MockCollector struct {
	vehicles     map[string]bool
	baseRPM      float64
	baseCoolant  float64
	variance     float64
	dtcCount     int
	milOn        bool
	dropFields   []string
	shouldFail   bool
	failureError error
}

type MockCollectorConfig struct {
	BaseRPM     float64
	BaseCoolant float64
	Variance    float64
}

func NewMockCollector(cfg MockCollectorConfig) *MockCollector {
	baseRPM := cfg.BaseRPM
	if baseRPM == 0 {
		baseRPM = 1800.0
	}

	baseCoolant := cfg.BaseCoolant
	if baseCoolant == 0 {
		baseCoolant = 90.0
	}

	variance := cfg.Variance
	if variance == 0 {
		variance = 5.0
	}

	return &MockCollector{
		vehicles:    make(map[string]bool),
		baseRPM:     baseRPM,
		baseCoolant: baseCoolant,
		variance:    variance,
	}
}

func (c *MockCollector) AddVehicle(vehicleID string) {
	c.vehicles[vehicleID] = true
}

func (c *MockCollector) SetBaseCoolant(temp float64) {
	c.baseCoolant = temp
}

func (c *MockCollector) SetFaults(dtcCount int, milOn bool) {
	c.dtcCount = dtcCount
	c.milOn = milOn
}

// SetDropFields makes subsequent snapshots omit the given fields, simulating
// sensors the vehicle does not support.
func (c *MockCollector) SetDropFields(fields ...string) {
	c.dropFields = fields
}

func (c *MockCollector) SetShouldFail(shouldFail bool, err error) {
	c.shouldFail = shouldFail
	c.failureError = err
}

func (c *MockCollector) Collect(ctx context.Context, vehicleID string) (*models.TelemetrySnapshot, error) {
	if c.shouldFail {
		if c.failureError != nil {
			return nil, c.failureError
		}
		return nil, ErrCollectionFailed
	}

	if !c.vehicles[vehicleID] {
		return nil, ErrVehicleNotFound
	}

	data := models.RawSnapshot{
		"rpm":                    float64(int(c.jitter(c.baseRPM, c.variance*20))),
		"coolant_temp":           c.jitter(c.baseCoolant, c.variance),
		"engine_load":            c.jitter(35.0, c.variance),
		"throttle_pos":           c.jitter(18.0, c.variance),
		"intake_temp":            c.jitter(28.0, c.variance),
		"fuel_level":             c.jitter(60.0, c.variance),
		"fuel_trim_short":        c.jitter(1.5, 2.0),
		"fuel_trim_long":         c.jitter(2.0, 2.0),
		"maf":                    c.jitter(9.0, 2.0),
		"map":                    c.jitter(95.0, 5.0),
		"control_module_voltage": c.jitter(14.1, 0.2),
		"dtc_count":              float64(c.dtcCount),
		"mil_status":             c.milOn,
		"data_quality_score":     float64(95),
	}

	for _, field := range c.dropFields {
		delete(data, field)
	}

	return &models.TelemetrySnapshot{
		VehicleID: vehicleID,
		Timestamp: time.Now(),
		Data:      data,
	}, nil
}

func (c *MockCollector) jitter(base, variance float64) float64 {
	value := base + (rand.Float64()*2-1)*variance
	if value < 0 {
		value = 0
	}
	return value
}

func (c *MockCollector) HealthCheck(ctx context.Context) error {
	if c.shouldFail {
		return ErrCollectionFailed
	}
	return nil
}

func (c *MockCollector) Close() error {
	return nil
}
