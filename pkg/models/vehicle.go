package models

import (
	"encoding/json"
	"time"
)

type VehicleStatus string

const (
	VehicleStatusActive VehicleStatus = "active"
	VehicleStatusPaused VehicleStatus = "paused"
	VehicleStatusError  VehicleStatus = "error"
)

// VehicleConfig holds per-vehicle ingestion overrides.
type VehicleConfig struct {
	CollectorEndpoint string `json:"collector_endpoint,omitempty"`
	TelemetryTopic    string `json:"telemetry_topic,omitempty"`
}

type Vehicle struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	VIN        string         `json:"vin,omitempty"`
	Status     VehicleStatus  `json:"status"`
	UserID     *int           `json:"user_id,omitempty"`
	Config     *VehicleConfig `json:"config,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	LastSeenAt *time.Time     `json:"last_seen_at,omitempty"`
}

func NewVehicle(name, vin string) *Vehicle {
	now := time.Now()
	return &Vehicle{
		ID:        NewUUID(),
		Name:      name,
		VIN:       vin,
		Status:    VehicleStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (v *Vehicle) IsActive() bool {
	return v.Status == VehicleStatusActive
}

func (v *Vehicle) ConfigJSON() ([]byte, error) {
	if v.Config == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v.Config)
}

func (v *Vehicle) ParseConfig(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	v.Config = &VehicleConfig{}
	return json.Unmarshal(data, v.Config)
}
