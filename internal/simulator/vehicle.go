package simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/drivewise/vehicle-health/pkg/models"
)

type VehicleSimConfig struct {
	BaseCoolant float64
	BaseVoltage float64
	Variance    float64
}

// VehicleSim emits raw OBD-II snapshots for one simulated vehicle. Fault
// injection deliberately produces the same dirty data a real daemon ships:
// overheating ramps, stored trouble codes, dropped fields and garbage values.
type VehicleSim struct {
	id          string
	baseCoolant float64
	baseVoltage float64
	variance    float64
	profile     Profile

	overheat   *Overheat
	dtcCount   int
	milOn      bool
	milStart   time.Time
	dropFields map[string]bool
	garble     map[string]interface{}

	mu sync.RWMutex
}

// Overheat ramps coolant temperature toward a target and holds it there for
// the duration.
type Overheat struct {
	TargetTemp      float64
	StartTime       time.Time
	Duration        time.Duration
	RampUp          time.Duration
	OriginalCoolant float64
}

func NewVehicleSim(id string, cfg VehicleSimConfig) *VehicleSim {
	if cfg.BaseCoolant == 0 {
		cfg.BaseCoolant = 90.0
	}
	if cfg.BaseVoltage == 0 {
		cfg.BaseVoltage = 14.2
	}
	if cfg.Variance == 0 {
		cfg.Variance = 2.0
	}

	return &VehicleSim{
		id:          id,
		baseCoolant: cfg.BaseCoolant,
		baseVoltage: cfg.BaseVoltage,
		variance:    cfg.Variance,
		profile:     ProfileIdle,
		dropFields:  make(map[string]bool),
		garble:      make(map[string]interface{}),
	}
}

func (v *VehicleSim) CollectSnapshot() *SnapshotResponse {
	v.mu.Lock()
	defer v.mu.Unlock()

	point := v.profile.Apply()
	coolant := v.currentCoolant()

	load := point.EngineLoad
	maf := 2.0 + load*0.28

	data := models.RawSnapshot{
		"rpm":                    math.Round(v.jitter(point.RPM, 50)),
		"speed":                  v.jitter(point.Speed, 2),
		"engine_load":            v.jitterClamped(load, v.variance, 0, 100),
		"throttle_pos":           v.jitterClamped(point.ThrottlePos, v.variance, 0, 100),
		"coolant_temp":           v.jitter(coolant, 0.8),
		"intake_temp":            v.jitter(28, 3),
		"ambient_air_temp":       v.jitter(21, 2),
		"oil_temp":               v.jitter(coolant+8, 2),
		"catalyst_temp":          v.jitter(420+load*3, 15),
		"fuel_level":             v.jitterClamped(62, 1, 0, 100),
		"fuel_trim_short":        v.jitter(0, 3),
		"fuel_trim_long":         v.jitter(1.5, 2),
		"fuel_pressure":          v.jitter(380, 10),
		"fuel_system_status":     "closed_loop",
		"maf":                    v.jitter(maf, 1),
		"map":                    v.jitter(35+load*0.6, 3),
		"barometric_pressure":    v.jitter(101, 0.5),
		"control_module_voltage": v.jitter(v.baseVoltage, 0.15),
		"commanded_egr":          v.jitterClamped(12, 4, 0, 100),
		"egr_error":              v.jitter(0, 4),
		"engine_stress_score":    v.jitterClamped(load*0.8, 5, 0, 100),
		"dtc_count":              v.dtcCount,
		"mil_status":             v.milOn,
		"data_quality_score":     93 + rand.Intn(7),
	}

	if v.milOn {
		data["distance_w_mil"] = time.Since(v.milStart).Minutes() * 1.2
	} else {
		data["distance_w_mil"] = 0.0
	}

	for field := range v.dropFields {
		delete(data, field)
	}
	for field, value := range v.garble {
		data[field] = value
	}

	return &SnapshotResponse{
		VehicleID: v.id,
		Timestamp: time.Now().Format(time.RFC3339),
		Data:      data,
	}
}

func (v *VehicleSim) currentCoolant() float64 {
	coolant := v.baseCoolant

	if v.overheat != nil {
		elapsed := time.Since(v.overheat.StartTime)

		if elapsed > v.overheat.Duration {
			// Overheat ended
			v.overheat = nil
		} else if elapsed < v.overheat.RampUp {
			// Ramping up
			progress := float64(elapsed) / float64(v.overheat.RampUp)
			coolant = v.overheat.OriginalCoolant + (v.overheat.TargetTemp-v.overheat.OriginalCoolant)*progress
		} else {
			// At peak
			coolant = v.overheat.TargetTemp
		}
	}

	return coolant
}

func (v *VehicleSim) jitter(base, variance float64) float64 {
	value := base + (rand.Float64()*2-1)*variance
	return math.Round(value*100) / 100
}

func (v *VehicleSim) jitterClamped(base, variance, min, max float64) float64 {
	value := v.jitter(base, variance)
	if value < min {
		value = min
	}
	if value > max {
		value = max
	}
	return value
}

func (v *VehicleSim) SetProfile(profile Profile) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.profile = profile
}

func (v *VehicleSim) GetProfile() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.profile.Name()
}

func (v *VehicleSim) SetBaseCoolant(temp float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.baseCoolant = temp
}

func (v *VehicleSim) SetBaseVoltage(voltage float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.baseVoltage = voltage
}

func (v *VehicleSim) InjectOverheat(targetTemp float64, duration, rampUp time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.overheat = &Overheat{
		TargetTemp:      targetTemp,
		StartTime:       time.Now(),
		Duration:        duration,
		RampUp:          rampUp,
		OriginalCoolant: v.baseCoolant,
	}
}

func (v *VehicleSim) SetFaults(dtcCount int, milOn bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.dtcCount = dtcCount
	if milOn && !v.milOn {
		v.milStart = time.Now()
	}
	v.milOn = milOn
}

func (v *VehicleSim) ClearFaults() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.dtcCount = 0
	v.milOn = false
	v.overheat = nil
	v.dropFields = make(map[string]bool)
	v.garble = make(map[string]interface{})
}

func (v *VehicleSim) SetDropFields(fields []string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.dropFields = make(map[string]bool)
	for _, field := range fields {
		v.dropFields[field] = true
	}
}

func (v *VehicleSim) SetGarbledField(field string, value interface{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.garble[field] = value
}

func (v *VehicleSim) Status() map[string]interface{} {
	v.mu.RLock()
	defer v.mu.RUnlock()

	overheatInfo := map[string]interface{}{"active": false}
	if v.overheat != nil {
		elapsed := time.Since(v.overheat.StartTime)
		remaining := v.overheat.Duration - elapsed
		if remaining < 0 {
			remaining = 0
		}
		overheatInfo = map[string]interface{}{
			"active":      true,
			"target_temp": v.overheat.TargetTemp,
			"remaining":   remaining.String(),
		}
	}

	dropped := make([]string, 0, len(v.dropFields))
	for field := range v.dropFields {
		dropped = append(dropped, field)
	}

	return map[string]interface{}{
		"id":           v.id,
		"profile":      v.profile.Name(),
		"base_coolant": v.baseCoolant,
		"base_voltage": v.baseVoltage,
		"dtc_count":    v.dtcCount,
		"mil_status":   v.milOn,
		"overheat":     overheatInfo,
		"drop_fields":  dropped,
	}
}

type SnapshotResponse struct {
	VehicleID string             `json:"vehicle_id"`
	Timestamp string             `json:"timestamp"`
	Data      models.RawSnapshot `json:"data"`
}
