package queries

import (
	"context"
	"database/sql"
	"errors"

	"github.com/drivewise/vehicle-health/pkg/models"
)

var ErrVehicleNotFound = errors.New("vehicle not found")

type VehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) GetAll(ctx context.Context) ([]*models.Vehicle, error) {
	query := `
		SELECT id, name, vin, status, user_id, config, created_at, updated_at, last_seen_at
		FROM vehicles
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*models.Vehicle
	for rows.Next() {
		vehicle, err := r.scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}

	return vehicles, rows.Err()
}

func (r *VehicleRepository) GetByUser(ctx context.Context, userID int) ([]*models.Vehicle, error) {
	query := `
		SELECT id, name, vin, status, user_id, config, created_at, updated_at, last_seen_at
		FROM vehicles
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*models.Vehicle
	for rows.Next() {
		vehicle, err := r.scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}

	return vehicles, rows.Err()
}

func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	query := `
		SELECT id, name, vin, status, user_id, config, created_at, updated_at, last_seen_at
		FROM vehicles
		WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	vehicle, err := r.scanVehicleRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrVehicleNotFound
	}
	return vehicle, err
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	configJSON, err := vehicle.ConfigJSON()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO vehicles (id, name, vin, status, user_id, config)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		vehicle.ID,
		vehicle.Name,
		nullString(vehicle.VIN),
		vehicle.Status,
		nullInt(vehicle.UserID),
		configJSON,
	).Scan(&vehicle.CreatedAt, &vehicle.UpdatedAt)
}

func (r *VehicleRepository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	configJSON, err := vehicle.ConfigJSON()
	if err != nil {
		return err
	}

	query := `
		UPDATE vehicles
		SET name = $2, vin = $3, status = $4, config = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err = r.db.QueryRowContext(ctx, query,
		vehicle.ID,
		vehicle.Name,
		nullString(vehicle.VIN),
		vehicle.Status,
		configJSON,
	).Scan(&vehicle.UpdatedAt)

	if err == sql.ErrNoRows {
		return ErrVehicleNotFound
	}
	return err
}

func (r *VehicleRepository) UpdateStatus(ctx context.Context, id string, status models.VehicleStatus) error {
	query := `UPDATE vehicles SET status = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

func (r *VehicleRepository) TouchLastSeen(ctx context.Context, id string) error {
	query := `UPDATE vehicles SET last_seen_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *VehicleRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM vehicles WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrVehicleNotFound
	}

	return nil
}

func (r *VehicleRepository) GetActiveCount(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM vehicles WHERE status = 'active'`
	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

func (r *VehicleRepository) scanVehicle(rows *sql.Rows) (*models.Vehicle, error) {
	return scanVehicleFields(rows.Scan)
}

func (r *VehicleRepository) scanVehicleRow(row *sql.Row) (*models.Vehicle, error) {
	return scanVehicleFields(row.Scan)
}

func scanVehicleFields(scan func(dest ...interface{}) error) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	var vin sql.NullString
	var userID sql.NullInt64
	var configJSON []byte
	var lastSeen sql.NullTime
	var status string

	err := scan(
		&vehicle.ID,
		&vehicle.Name,
		&vin,
		&status,
		&userID,
		&configJSON,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
		&lastSeen,
	)
	if err != nil {
		return nil, err
	}

	vehicle.Status = models.VehicleStatus(status)
	if vin.Valid {
		vehicle.VIN = vin.String
	}
	if userID.Valid {
		id := int(userID.Int64)
		vehicle.UserID = &id
	}
	if lastSeen.Valid {
		t := lastSeen.Time
		vehicle.LastSeenAt = &t
	}
	if len(configJSON) > 0 {
		if err := vehicle.ParseConfig(configJSON); err != nil {
			return nil, err
		}
	}

	return &vehicle, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
