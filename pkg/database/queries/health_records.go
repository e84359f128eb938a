package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/drivewise/vehicle-health/pkg/models"
)

var ErrHealthRecordNotFound = errors.New("health record not found")

type HealthRecordRepository struct {
	db *sql.DB
}

func NewHealthRecordRepository(db *sql.DB) *HealthRecordRepository {
	return &HealthRecordRepository{db: db}
}

func (r *HealthRecordRepository) Insert(ctx context.Context, record *models.HealthRecord) error {
	alertsJSON, err := marshalAlerts(record.MLAlerts)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO health_records
			(vehicle_id, time, health_status, ml_health_score, ml_status, ml_alerts, ml_confidence, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		record.VehicleID,
		record.Timestamp,
		int(record.HealthStatus),
		record.MLHealthScore,
		record.MLStatus,
		alertsJSON,
		record.MLConfidence,
		record.Source,
	)
	return err
}

// UpsertLatest writes the latest-per-vehicle projection. Last timestamp wins:
// a record older than the stored one is silently ignored so out-of-order
// pipeline output never regresses what dashboards show.
func (r *HealthRecordRepository) UpsertLatest(ctx context.Context, record *models.HealthRecord) error {
	alertsJSON, err := marshalAlerts(record.MLAlerts)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO vehicle_health_latest
			(vehicle_id, time, health_status, ml_health_score, ml_status, ml_alerts, ml_confidence, source, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (vehicle_id) DO UPDATE SET
			time            = EXCLUDED.time,
			health_status   = EXCLUDED.health_status,
			ml_health_score = EXCLUDED.ml_health_score,
			ml_status       = EXCLUDED.ml_status,
			ml_alerts       = EXCLUDED.ml_alerts,
			ml_confidence   = EXCLUDED.ml_confidence,
			source          = EXCLUDED.source,
			updated_at      = NOW()
		WHERE vehicle_health_latest.time <= EXCLUDED.time`

	_, err = r.db.ExecContext(ctx, query,
		record.VehicleID,
		record.Timestamp,
		int(record.HealthStatus),
		record.MLHealthScore,
		record.MLStatus,
		alertsJSON,
		record.MLConfidence,
		record.Source,
	)
	return err
}

func (r *HealthRecordRepository) GetLatest(ctx context.Context, vehicleID string) (*models.HealthRecord, error) {
	query := `
		SELECT vehicle_id, time, health_status, ml_health_score, ml_status, ml_alerts, ml_confidence, source
		FROM vehicle_health_latest
		WHERE vehicle_id = $1`

	row := r.db.QueryRowContext(ctx, query, vehicleID)
	record, err := scanHealthRecordFields(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrHealthRecordNotFound
	}
	return record, err
}

func (r *HealthRecordRepository) GetHistory(ctx context.Context, vehicleID string, from, to time.Time, limit int) ([]*models.HealthRecord, error) {
	if limit <= 0 {
		limit = 1000
	}

	query := `
		SELECT vehicle_id, time, health_status, ml_health_score, ml_status, ml_alerts, ml_confidence, source
		FROM health_records
		WHERE vehicle_id = $1 AND time >= $2 AND time <= $3
		ORDER BY time DESC
		LIMIT $4`

	rows, err := r.db.QueryContext(ctx, query, vehicleID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.HealthRecord
	for rows.Next() {
		record, err := scanHealthRecordFields(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// GetAlerting returns the latest record of every vehicle currently at or above
// the given severity.
func (r *HealthRecordRepository) GetAlerting(ctx context.Context, minStatus models.HealthClass) ([]*models.HealthRecord, error) {
	query := `
		SELECT vehicle_id, time, health_status, ml_health_score, ml_status, ml_alerts, ml_confidence, source
		FROM vehicle_health_latest
		WHERE health_status >= $1
		ORDER BY health_status DESC, time DESC`

	rows, err := r.db.QueryContext(ctx, query, int(minStatus))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.HealthRecord
	for rows.Next() {
		record, err := scanHealthRecordFields(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

type StatusCounts struct {
	Normal   int `json:"normal"`
	Advisory int `json:"advisory"`
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
}

func (r *HealthRecordRepository) GetStatusCounts(ctx context.Context) (*StatusCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE health_status = 0) as normal,
			COUNT(*) FILTER (WHERE health_status = 1) as advisory,
			COUNT(*) FILTER (WHERE health_status = 2) as warning,
			COUNT(*) FILTER (WHERE health_status = 3) as critical
		FROM vehicle_health_latest`

	var counts StatusCounts
	err := r.db.QueryRowContext(ctx, query).Scan(
		&counts.Normal,
		&counts.Advisory,
		&counts.Warning,
		&counts.Critical,
	)
	return &counts, err
}

func (r *HealthRecordRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM health_records WHERE time < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanHealthRecordFields(scan func(dest ...interface{}) error) (*models.HealthRecord, error) {
	var record models.HealthRecord
	var status int
	var alertsJSON []byte
	var source string

	err := scan(
		&record.VehicleID,
		&record.Timestamp,
		&status,
		&record.MLHealthScore,
		&record.MLStatus,
		&alertsJSON,
		&record.MLConfidence,
		&source,
	)
	if err != nil {
		return nil, err
	}

	record.HealthStatus = models.HealthClass(status)
	record.Source = models.RecordSource(source)
	record.MLAlerts = []string{}
	if len(alertsJSON) > 0 {
		if err := json.Unmarshal(alertsJSON, &record.MLAlerts); err != nil {
			return nil, err
		}
	}
	if record.MLAlerts == nil {
		record.MLAlerts = []string{}
	}

	return &record, nil
}

func marshalAlerts(alerts []string) ([]byte, error) {
	if alerts == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(alerts)
}
