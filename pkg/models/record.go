package models

import "time"

// RecordSource says which layer produced the status in a health record.
type RecordSource string

const (
	SourceModel RecordSource = "model"
	SourceRules RecordSource = "rules"
)

// HealthRecord is the canonical merged output persisted and displayed for one
// reading. The ml_* field names are a wire-level contract shared with the
// mobile app and the dashboard. A record is created fresh per reading and
// never mutated; the latest-per-vehicle projection is a storage concern.
type HealthRecord struct {
	VehicleID string    `json:"vehicle_id"`
	Timestamp time.Time `json:"timestamp"`

	// Rule-layer auto-label, always present regardless of ML availability.
	HealthStatus HealthClass `json:"health_status"`

	MLHealthScore float64  `json:"ml_health_score"`
	MLStatus      string   `json:"ml_status"`
	MLAlerts      []string `json:"ml_alerts"`
	MLConfidence  float64  `json:"ml_confidence"`

	Source RecordSource `json:"source"`
}

// ModelDerived reports whether the record came from the inference service.
// Consumers treat ml_confidence == 0 as the rule-fallback signal.
func (h *HealthRecord) ModelDerived() bool {
	return h.Source == SourceModel
}

// StatusClass decodes ml_status back to the enum. Falls back to the
// rule-layer label if the name is somehow unknown.
func (h *HealthRecord) StatusClass() HealthClass {
	if class, ok := ParseHealthClass(h.MLStatus); ok {
		return class
	}
	return h.HealthStatus
}
