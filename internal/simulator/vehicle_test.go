package simulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coolantOf(t *testing.T, resp *SnapshotResponse) float64 {
	t.Helper()
	value, ok := resp.Data["coolant_temp"].(float64)
	require.True(t, ok, "coolant_temp missing or wrong type")
	return value
}

func TestVehicleSim_Snapshot(t *testing.T) {
	sim := NewVehicleSim("sim-1", VehicleSimConfig{})

	resp := sim.CollectSnapshot()
	assert.Equal(t, "sim-1", resp.VehicleID)

	_, err := time.Parse(time.RFC3339, resp.Timestamp)
	assert.NoError(t, err)

	assert.InDelta(t, 90.0, coolantOf(t, resp), 5.0)
	assert.Equal(t, 0, resp.Data["dtc_count"])
	assert.Equal(t, false, resp.Data["mil_status"])
	assert.Contains(t, resp.Data, "rpm")
	assert.Contains(t, resp.Data, "control_module_voltage")
}

func TestVehicleSim_Profiles(t *testing.T) {
	sim := NewVehicleSim("sim-1", VehicleSimConfig{})
	assert.Equal(t, "idle", sim.GetProfile())

	sim.SetProfile(ParseProfile("highway"))
	assert.Equal(t, "highway", sim.GetProfile())

	resp := sim.CollectSnapshot()
	rpm, ok := resp.Data["rpm"].(float64)
	require.True(t, ok)
	assert.Greater(t, rpm, 2000.0, "highway cruise turns well above idle")

	assert.Equal(t, "idle", ParseProfile("unknown").Name())
}

func TestVehicleSim_OverheatRamp(t *testing.T) {
	sim := NewVehicleSim("sim-1", VehicleSimConfig{Variance: 0.1})
	sim.InjectOverheat(125, time.Hour, 50*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	peak := coolantOf(t, sim.CollectSnapshot())
	assert.InDelta(t, 125.0, peak, 2.0, "holds target after ramp-up")
}

func TestVehicleSim_OverheatExpires(t *testing.T) {
	sim := NewVehicleSim("sim-1", VehicleSimConfig{Variance: 0.1})
	sim.InjectOverheat(125, 10*time.Millisecond, time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.InDelta(t, 90.0, coolantOf(t, sim.CollectSnapshot()), 3.0, "returns to base once the overheat ends")
}

func TestVehicleSim_Faults(t *testing.T) {
	sim := NewVehicleSim("sim-1", VehicleSimConfig{})
	sim.SetFaults(4, true)

	resp := sim.CollectSnapshot()
	assert.Equal(t, 4, resp.Data["dtc_count"])
	assert.Equal(t, true, resp.Data["mil_status"])

	sim.ClearFaults()
	resp = sim.CollectSnapshot()
	assert.Equal(t, 0, resp.Data["dtc_count"])
	assert.Equal(t, false, resp.Data["mil_status"])
	assert.Equal(t, 0.0, resp.Data["distance_w_mil"])
}

func TestVehicleSim_DropAndGarble(t *testing.T) {
	sim := NewVehicleSim("sim-1", VehicleSimConfig{})
	sim.SetDropFields([]string{"maf", "fuel_level"})
	sim.SetGarbledField("coolant_temp", "ERROR")

	resp := sim.CollectSnapshot()
	assert.NotContains(t, resp.Data, "maf")
	assert.NotContains(t, resp.Data, "fuel_level")
	assert.Equal(t, "ERROR", resp.Data["coolant_temp"])

	sim.ClearFaults()
	resp = sim.CollectSnapshot()
	assert.Contains(t, resp.Data, "maf")
	_, isFloat := resp.Data["coolant_temp"].(float64)
	assert.True(t, isFloat)
}

func TestVehicleSim_Status(t *testing.T) {
	sim := NewVehicleSim("sim-1", VehicleSimConfig{BaseCoolant: 88})
	sim.SetFaults(2, true)
	sim.InjectOverheat(120, time.Minute, time.Second)

	status := sim.Status()
	assert.Equal(t, "sim-1", status["id"])
	assert.Equal(t, 88.0, status["base_coolant"])
	assert.Equal(t, 2, status["dtc_count"])

	overheat, ok := status["overheat"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, overheat["active"])
	assert.Equal(t, 120.0, overheat["target_temp"])
}
