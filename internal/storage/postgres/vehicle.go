package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gocomet/fleet-rides/internal/domain/vehicle"
)

type vehicleRepo struct{ q querier }

const vehicleColumns = `id, plate, make, model, year, status, current_driver_id,
	total_distance_km, created_at, updated_at`

func (r *vehicleRepo) Create(ctx context.Context, v *vehicle.Vehicle) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO vehicles (
			id, plate, make, model, year, status, current_driver_id,
			total_distance_km, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		v.ID, v.Plate, v.Make, v.Model, v.Year, v.Status, nullUUID(v.CurrentDriverID),
		v.TotalDistanceKM, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

func (r *vehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	return scanVehicle(row)
}

func (r *vehicleRepo) Update(ctx context.Context, v *vehicle.Vehicle) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE vehicles SET
			plate = $2, make = $3, model = $4, year = $5, status = $6,
			current_driver_id = $7, total_distance_km = $8, updated_at = NOW()
		WHERE id = $1`,
		v.ID, v.Plate, v.Make, v.Model, v.Year, v.Status,
		nullUUID(v.CurrentDriverID), v.TotalDistanceKM,
	)
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	return requireAffected(res, vehicle.ErrVehicleNotFound)
}

func (r *vehicleRepo) SetStatus(ctx context.Context, id uuid.UUID, from, to vehicle.Status) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE vehicles SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return false, fmt.Errorf("set vehicle status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 1 {
		return true, nil
	}
	var exists bool
	if err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM vehicles WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, vehicle.ErrVehicleNotFound
	}
	return false, nil
}

func (r *vehicleRepo) SetCurrentDriver(ctx context.Context, id uuid.UUID, driverID *uuid.UUID) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE vehicles SET current_driver_id = $2, updated_at = NOW() WHERE id = $1`,
		id, nullUUID(driverID),
	)
	if err != nil {
		return fmt.Errorf("set vehicle driver: %w", err)
	}
	return requireAffected(res, vehicle.ErrVehicleNotFound)
}

func (r *vehicleRepo) AddDistance(ctx context.Context, id uuid.UUID, km float64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE vehicles SET total_distance_km = total_distance_km + $2, updated_at = NOW() WHERE id = $1`,
		id, km,
	)
	if err != nil {
		return fmt.Errorf("add vehicle distance: %w", err)
	}
	return requireAffected(res, vehicle.ErrVehicleNotFound)
}

func (r *vehicleRepo) List(ctx context.Context) ([]*vehicle.Vehicle, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY plate`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var out []*vehicle.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *vehicleRepo) CountByStatus(ctx context.Context) (map[vehicle.Status]int, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT status, COUNT(*) FROM vehicles GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count vehicles: %w", err)
	}
	defer rows.Close()

	counts := make(map[vehicle.Status]int)
	for rows.Next() {
		var s vehicle.Status
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[s] = n
	}
	return counts, rows.Err()
}

func scanVehicle(row rowScanner) (*vehicle.Vehicle, error) {
	var v vehicle.Vehicle
	var currentDriver uuid.NullUUID
	err := row.Scan(
		&v.ID, &v.Plate, &v.Make, &v.Model, &v.Year, &v.Status, &currentDriver,
		&v.TotalDistanceKM, &v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, vehicle.ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan vehicle: %w", err)
	}
	v.CurrentDriverID = uuidPtr(currentDriver)
	return &v, nil
}
