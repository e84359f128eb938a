package simulator

import (
	"math"
	"math/rand"
	"time"
)

// OperatingPoint is the engine state a drive profile produces before noise and
// fault injection are layered on top.
type OperatingPoint struct {
	RPM         float64
	Speed       float64
	EngineLoad  float64
	ThrottlePos float64
}

type Profile interface {
	Apply() OperatingPoint
	Name() string
}

var (
	ProfileIdle    Profile = &IdleProfile{}
	ProfileCity    Profile = &CityProfile{}
	ProfileHighway Profile = &HighwayProfile{}
	ProfileTowing  Profile = &TowingProfile{startTime: time.Now()}
)

func ParseProfile(name string) Profile {
	switch name {
	case "city":
		return ProfileCity
	case "highway":
		return ProfileHighway
	case "towing":
		return &TowingProfile{startTime: time.Now()}
	default:
		return ProfileIdle
	}
}

// IdleProfile - parked with engine running
type IdleProfile struct{}

func (p *IdleProfile) Apply() OperatingPoint {
	return OperatingPoint{
		RPM:         750,
		Speed:       0,
		EngineLoad:  18,
		ThrottlePos: 12,
	}
}

func (p *IdleProfile) Name() string {
	return "idle"
}

// CityProfile - stop-and-go traffic with frequent load swings
type CityProfile struct{}

func (p *CityProfile) Apply() OperatingPoint {
	// Alternate between acceleration and coasting
	accelerating := rand.Float64() < 0.4

	if accelerating {
		return OperatingPoint{
			RPM:         2200 + rand.Float64()*800,
			Speed:       25 + rand.Float64()*30,
			EngineLoad:  55 + rand.Float64()*25,
			ThrottlePos: 40 + rand.Float64()*25,
		}
	}

	return OperatingPoint{
		RPM:         1100 + rand.Float64()*500,
		Speed:       10 + rand.Float64()*25,
		EngineLoad:  25 + rand.Float64()*15,
		ThrottlePos: 15 + rand.Float64()*10,
	}
}

func (p *CityProfile) Name() string {
	return "city"
}

// HighwayProfile - steady cruise at speed
type HighwayProfile struct{}

func (p *HighwayProfile) Apply() OperatingPoint {
	return OperatingPoint{
		RPM:         2400 + rand.Float64()*300,
		Speed:       100 + rand.Float64()*15,
		EngineLoad:  45 + rand.Float64()*10,
		ThrottlePos: 30 + rand.Float64()*8,
	}
}

func (p *HighwayProfile) Name() string {
	return "highway"
}

// TowingProfile - sustained high load that climbs the longer the trip runs
type TowingProfile struct {
	startTime time.Time
}

func (p *TowingProfile) Apply() OperatingPoint {
	elapsed := time.Since(p.startTime).Minutes()

	// Load creeps up 1% per minute, capped at +25%
	extraLoad := math.Min(elapsed, 25)

	load := 70 + extraLoad + rand.Float64()*5
	if load > 100 {
		load = 100
	}

	return OperatingPoint{
		RPM:         3100 + rand.Float64()*400,
		Speed:       80 + rand.Float64()*10,
		EngineLoad:  load,
		ThrottlePos: 55 + rand.Float64()*15,
	}
}

func (p *TowingProfile) Name() string {
	return "towing"
}
