package simulator

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator_TelemetryEndpoint(t *testing.T) {
	sim := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/telemetry/sim-1", nil)
	rec := httptest.NewRecorder()
	sim.telemetryHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SnapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sim-1", resp.VehicleID)
	assert.Contains(t, resp.Data, "coolant_temp")

	// First request creates the vehicle on the fly
	_, exists := sim.GetVehicle("sim-1")
	assert.True(t, exists)
}

func TestSimulator_TelemetryRequiresVehicleID(t *testing.T) {
	sim := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/telemetry/", nil)
	rec := httptest.NewRecorder()
	sim.telemetryHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulator_CreateAndDeleteVehicle(t *testing.T) {
	sim := New(Config{})

	body, _ := json.Marshal(CreateVehicleRequest{BaseCoolant: 85, Profile: "city"})
	req := httptest.NewRequest(http.MethodPost, "/vehicles/sim-2", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	sim.vehicleHandler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	vehicle, exists := sim.GetVehicle("sim-2")
	require.True(t, exists)
	assert.Equal(t, "city", vehicle.GetProfile())

	req = httptest.NewRequest(http.MethodDelete, "/vehicles/sim-2", nil)
	rec = httptest.NewRecorder()
	sim.vehicleHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	_, exists = sim.GetVehicle("sim-2")
	assert.False(t, exists)
}

func TestSimulator_FaultInjection(t *testing.T) {
	sim := New(Config{})

	body, _ := json.Marshal(FaultRequest{VehicleID: "sim-3", DTCCount: 2, MILStatus: true})
	req := httptest.NewRequest(http.MethodPost, "/fault", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	sim.faultHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	vehicle, _ := sim.GetVehicle("sim-3")
	snapshot := vehicle.CollectSnapshot()
	assert.Equal(t, 2, snapshot.Data["dtc_count"])
	assert.Equal(t, true, snapshot.Data["mil_status"])

	body, _ = json.Marshal(FaultRequest{VehicleID: "sim-3", Clear: true})
	req = httptest.NewRequest(http.MethodPost, "/fault", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	sim.faultHandler(rec, req)

	snapshot = vehicle.CollectSnapshot()
	assert.Equal(t, 0, snapshot.Data["dtc_count"])
}

func TestSimulator_Degrade(t *testing.T) {
	sim := New(Config{})

	body, _ := json.Marshal(DegradeRequest{
		VehicleID:   "sim-4",
		DropFields:  []string{"rpm"},
		GarbleField: "coolant_temp",
		GarbleValue: "not-a-number",
	})
	req := httptest.NewRequest(http.MethodPost, "/degrade", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	sim.degradeHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	vehicle, _ := sim.GetVehicle("sim-4")
	snapshot := vehicle.CollectSnapshot()
	assert.NotContains(t, snapshot.Data, "rpm")
	assert.Equal(t, "not-a-number", snapshot.Data["coolant_temp"])
}
