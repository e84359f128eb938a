package collector

import (
	"context"
	"errors"

	"github.com/drivewise/vehicle-health/pkg/models"
)

var (
	ErrCollectionFailed = errors.New("snapshot collection failed")
	ErrTimeout          = errors.New("collection timeout")
	ErrVehicleNotFound  = errors.New("vehicle not found")
	ErrNoSnapshot       = errors.New("no snapshot available")
	ErrInvalidResponse  = errors.New("invalid response from data source")
)

// Collector defines the interface for fetching raw OBD snapshots
type Collector interface {
	// Collect fetches the current raw snapshot for a vehicle
	Collect(ctx context.Context, vehicleID string) (*models.TelemetrySnapshot, error)

	// HealthCheck verifies the collector can reach its data source
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the collector
	Close() error
}
