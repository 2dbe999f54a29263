package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gocomet/fleet-rides/internal/domain/driver"
)

type driverRepo struct{ q querier }

const driverColumns = `id, name, email, phone, status, current_latitude, current_longitude,
	rating, rating_count, total_distance_km, created_at, updated_at`

func (r *driverRepo) Create(ctx context.Context, d *driver.Driver) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO drivers (
			id, name, email, phone, status, current_latitude, current_longitude,
			rating, rating_count, total_distance_km, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		d.ID, d.Name, d.Email, d.Phone, d.Status, d.CurrentLatitude, d.CurrentLongitude,
		d.Rating, d.RatingCount, d.TotalDistanceKM, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert driver: %w", err)
	}
	return nil
}

func (r *driverRepo) GetByID(ctx context.Context, id uuid.UUID) (*driver.Driver, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id)
	return scanDriver(row)
}

func (r *driverRepo) Update(ctx context.Context, d *driver.Driver) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE drivers SET
			name = $2, email = $3, phone = $4, status = $5,
			current_latitude = $6, current_longitude = $7,
			rating = $8, rating_count = $9, total_distance_km = $10, updated_at = NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Email, d.Phone, d.Status,
		d.CurrentLatitude, d.CurrentLongitude,
		d.Rating, d.RatingCount, d.TotalDistanceKM,
	)
	if err != nil {
		return fmt.Errorf("update driver: %w", err)
	}
	return requireAffected(res, driver.ErrDriverNotFound)
}

func (r *driverRepo) SetStatus(ctx context.Context, id uuid.UUID, from, to driver.Status) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE drivers SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return false, fmt.Errorf("set driver status: %w", err)
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
		`SELECT EXISTS (SELECT 1 FROM drivers WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, driver.ErrDriverNotFound
	}
	return false, nil
}

func (r *driverRepo) AddDistance(ctx context.Context, id uuid.UUID, km float64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE drivers SET total_distance_km = total_distance_km + $2, updated_at = NOW() WHERE id = $1`,
		id, km,
	)
	if err != nil {
		return fmt.Errorf("add driver distance: %w", err)
	}
	return requireAffected(res, driver.ErrDriverNotFound)
}

func (r *driverRepo) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lng float64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE drivers SET current_latitude = $2, current_longitude = $3, updated_at = NOW() WHERE id = $1`,
		id, lat, lng,
	)
	if err != nil {
		return fmt.Errorf("update driver location: %w", err)
	}
	return requireAffected(res, driver.ErrDriverNotFound)
}

func (r *driverRepo) List(ctx context.Context) ([]*driver.Driver, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var out []*driver.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *driverRepo) CountByStatus(ctx context.Context) (map[driver.Status]int, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT status, COUNT(*) FROM drivers GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count drivers: %w", err)
	}
	defer rows.Close()

	counts := make(map[driver.Status]int)
	for rows.Next() {
		var s driver.Status
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[s] = n
	}
	return counts, rows.Err()
}

func scanDriver(row rowScanner) (*driver.Driver, error) {
	var d driver.Driver
	err := row.Scan(
		&d.ID, &d.Name, &d.Email, &d.Phone, &d.Status,
		&d.CurrentLatitude, &d.CurrentLongitude,
		&d.Rating, &d.RatingCount, &d.TotalDistanceKM, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, driver.ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan driver: %w", err)
	}
	return &d, nil
}

func requireAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
