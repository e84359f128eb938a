package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivewise/vehicle-health/internal/resilience"
	"github.com/drivewise/vehicle-health/pkg/models"
)

func TestMockCollector_Collect(t *testing.T) {
	mock := NewMockCollector(MockCollectorConfig{})
	mock.AddVehicle("veh-1")

	snapshot, err := mock.Collect(context.Background(), "veh-1")
	require.NoError(t, err)

	assert.Equal(t, "veh-1", snapshot.VehicleID)
	assert.False(t, snapshot.Timestamp.IsZero())
	assert.Contains(t, snapshot.Data, "rpm")
	assert.Contains(t, snapshot.Data, "coolant_temp")
	assert.Contains(t, snapshot.Data, "mil_status")
}

func TestMockCollector_UnknownVehicle(t *testing.T) {
	mock := NewMockCollector(MockCollectorConfig{})

	_, err := mock.Collect(context.Background(), "veh-missing")
	assert.Equal(t, ErrVehicleNotFound, err)
}

func TestMockCollector_Faults(t *testing.T) {
	mock := NewMockCollector(MockCollectorConfig{Variance: 0.1})
	mock.AddVehicle("veh-1")
	mock.SetFaults(3, true)
	mock.SetBaseCoolant(120)

	snapshot, err := mock.Collect(context.Background(), "veh-1")
	require.NoError(t, err)

	assert.Equal(t, float64(3), snapshot.Data["dtc_count"])
	assert.Equal(t, true, snapshot.Data["mil_status"])
	assert.InDelta(t, 120.0, snapshot.Data["coolant_temp"].(float64), 1.0)
}

func TestMockCollector_DropFields(t *testing.T) {
	mock := NewMockCollector(MockCollectorConfig{})
	mock.AddVehicle("veh-1")
	mock.SetDropFields("coolant_temp", "maf")

	snapshot, err := mock.Collect(context.Background(), "veh-1")
	require.NoError(t, err)

	assert.NotContains(t, snapshot.Data, "coolant_temp")
	assert.NotContains(t, snapshot.Data, "maf")
	assert.Contains(t, snapshot.Data, "rpm")
}

func TestMockCollector_Failure(t *testing.T) {
	mock := NewMockCollector(MockCollectorConfig{})
	mock.AddVehicle("veh-1")

	linkDown := errors.New("bluetooth link down")
	mock.SetShouldFail(true, linkDown)

	_, err := mock.Collect(context.Background(), "veh-1")
	assert.Equal(t, linkDown, err)
	assert.Error(t, mock.HealthCheck(context.Background()))

	mock.SetShouldFail(false, nil)
	_, err = mock.Collect(context.Background(), "veh-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.HealthCheck(context.Background()))
}

// flakyCollector fails a fixed number of times before recovering.
type flakyCollector struct {
	failuresLeft int
	calls        int
}

func (c *flakyCollector) Collect(ctx context.Context, vehicleID string) (*models.TelemetrySnapshot, error) {
	c.calls++
	if c.failuresLeft > 0 {
		c.failuresLeft--
		return nil, ErrCollectionFailed
	}
	return &models.TelemetrySnapshot{VehicleID: vehicleID, Data: models.RawSnapshot{}}, nil
}

func (c *flakyCollector) HealthCheck(ctx context.Context) error { return nil }
func (c *flakyCollector) Close() error                          { return nil }

func TestResilientCollector_RetriesUntilSuccess(t *testing.T) {
	flaky := &flakyCollector{failuresLeft: 2}
	resilient := NewResilientCollector(ResilientCollectorConfig{
		Collector:     flaky,
		MaxFailures:   5,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	})

	snapshot, err := resilient.Collect(context.Background(), "veh-1")
	require.NoError(t, err)
	assert.Equal(t, "veh-1", snapshot.VehicleID)
	assert.Equal(t, 3, flaky.calls)
}

func TestResilientCollector_ExhaustedRetriesCountOnce(t *testing.T) {
	flaky := &flakyCollector{failuresLeft: 100}
	resilient := NewResilientCollector(ResilientCollectorConfig{
		Collector:     flaky,
		MaxFailures:   2,
		Timeout:       time.Minute,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	})

	_, err := resilient.Collect(context.Background(), "veh-1")
	assert.Equal(t, ErrCollectionFailed, err)
	assert.Equal(t, resilience.StateClosed, resilient.CircuitState(),
		"a full retry cycle counts as one breaker failure")

	_, err = resilient.Collect(context.Background(), "veh-1")
	assert.Equal(t, ErrCollectionFailed, err)
	assert.Equal(t, resilience.StateOpen, resilient.CircuitState())

	calls := flaky.calls
	_, err = resilient.Collect(context.Background(), "veh-1")
	assert.Equal(t, resilience.ErrCircuitOpen, err)
	assert.Equal(t, calls, flaky.calls, "open circuit skips the underlying collector")
}

func TestResilientCollector_CancelledContext(t *testing.T) {
	flaky := &flakyCollector{failuresLeft: 100}
	resilient := NewResilientCollector(ResilientCollectorConfig{
		Collector:     flaky,
		MaxFailures:   10,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := resilient.Collect(ctx, "veh-1")
	assert.Equal(t, context.Canceled, err)
}
