package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/drivewise/vehicle-health/pkg/models"
)

var ErrReadingNotFound = errors.New("reading not found")

const readingColumns = `
	time, vehicle_id, rpm, coolant_temp, engine_load, throttle_pos,
	intake_temp, timing_advance, absolute_load, oil_temp, run_time, speed,
	fuel_level, fuel_trim_short, fuel_trim_long, fuel_pressure,
	fuel_system_status, maf, map, barometric_pressure, ambient_air_temp,
	catalyst_temp, commanded_egr, control_module_voltage, dtc_count,
	mil_status, distance_w_mil, fuel_efficiency, engine_stress_score,
	egr_error, data_quality_score, anomalies`

type ReadingRepository struct {
	db *sql.DB
}

func NewReadingRepository(db *sql.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

func (r *ReadingRepository) Insert(ctx context.Context, reading *models.SensorReading) error {
	anomaliesJSON, err := marshalAnomalies(reading.Anomalies)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sensor_readings (` + readingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26,
		        $27, $28, $29, $30, $31, $32)`

	_, err = r.db.ExecContext(ctx, query,
		reading.Timestamp,
		reading.VehicleID,
		reading.RPM,
		reading.CoolantTemp,
		reading.EngineLoad,
		reading.ThrottlePos,
		reading.IntakeTemp,
		reading.TimingAdvance,
		reading.AbsoluteLoad,
		reading.OilTemp,
		reading.RunTime,
		reading.Speed,
		reading.FuelLevel,
		reading.FuelTrimShort,
		reading.FuelTrimLong,
		reading.FuelPressure,
		reading.FuelSystemStatus,
		reading.MAF,
		reading.MAP,
		reading.BarometricPressure,
		reading.AmbientAirTemp,
		reading.CatalystTemp,
		reading.CommandedEGR,
		reading.ControlModuleVoltage,
		reading.DTCCount,
		reading.MILStatus,
		reading.DistanceWMIL,
		reading.FuelEfficiency,
		reading.EngineStressScore,
		reading.EGRError,
		reading.DataQualityScore,
		anomaliesJSON,
	)
	return err
}

func (r *ReadingRepository) GetLatest(ctx context.Context, vehicleID string) (*models.SensorReading, error) {
	query := `
		SELECT ` + readingColumns + `
		FROM sensor_readings
		WHERE vehicle_id = $1
		ORDER BY time DESC
		LIMIT 1`

	row := r.db.QueryRowContext(ctx, query, vehicleID)
	reading, err := scanReadingFields(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrReadingNotFound
	}
	return reading, err
}

func (r *ReadingRepository) GetRange(ctx context.Context, vehicleID string, from, to time.Time, limit int) ([]*models.SensorReading, error) {
	if limit <= 0 {
		limit = 1000
	}

	query := `
		SELECT ` + readingColumns + `
		FROM sensor_readings
		WHERE vehicle_id = $1 AND time >= $2 AND time <= $3
		ORDER BY time DESC
		LIMIT $4`

	rows, err := r.db.QueryContext(ctx, query, vehicleID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []*models.SensorReading
	for rows.Next() {
		reading, err := scanReadingFields(rows.Scan)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}

	return readings, rows.Err()
}

func (r *ReadingRepository) CountSince(ctx context.Context, vehicleID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM sensor_readings WHERE vehicle_id = $1 AND time >= $2`
	var count int
	err := r.db.QueryRowContext(ctx, query, vehicleID, since).Scan(&count)
	return count, err
}

func (r *ReadingRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM sensor_readings WHERE time < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanReadingFields(scan func(dest ...interface{}) error) (*models.SensorReading, error) {
	var reading models.SensorReading
	var anomaliesJSON []byte

	err := scan(
		&reading.Timestamp,
		&reading.VehicleID,
		&reading.RPM,
		&reading.CoolantTemp,
		&reading.EngineLoad,
		&reading.ThrottlePos,
		&reading.IntakeTemp,
		&reading.TimingAdvance,
		&reading.AbsoluteLoad,
		&reading.OilTemp,
		&reading.RunTime,
		&reading.Speed,
		&reading.FuelLevel,
		&reading.FuelTrimShort,
		&reading.FuelTrimLong,
		&reading.FuelPressure,
		&reading.FuelSystemStatus,
		&reading.MAF,
		&reading.MAP,
		&reading.BarometricPressure,
		&reading.AmbientAirTemp,
		&reading.CatalystTemp,
		&reading.CommandedEGR,
		&reading.ControlModuleVoltage,
		&reading.DTCCount,
		&reading.MILStatus,
		&reading.DistanceWMIL,
		&reading.FuelEfficiency,
		&reading.EngineStressScore,
		&reading.EGRError,
		&reading.DataQualityScore,
		&anomaliesJSON,
	)
	if err != nil {
		return nil, err
	}

	if len(anomaliesJSON) > 0 {
		if err := json.Unmarshal(anomaliesJSON, &reading.Anomalies); err != nil {
			return nil, err
		}
	}

	return &reading, nil
}

func marshalAnomalies(anomalies []models.FieldAnomaly) ([]byte, error) {
	if anomalies == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(anomalies)
}
