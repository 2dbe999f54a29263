package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/fleet-rides/internal/domain/ride"
)

type rideRepo struct{ q querier }

const rideColumns = `id, requester_id, driver_id, vehicle_id, status, approval_status,
	department_head_id, project_manager_id, rejection_reason,
	start_latitude, start_longitude, start_address,
	end_latitude, end_longitude, end_address,
	actual_end_latitude, actual_end_longitude, actual_end_address,
	distance_km, rating, start_time, end_time, version, created_at, updated_at`

func (r *rideRepo) Create(ctx context.Context, rd *ride.Ride) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO rides (
			id, requester_id, driver_id, vehicle_id, status, approval_status,
			department_head_id, project_manager_id, rejection_reason,
			start_latitude, start_longitude, start_address,
			end_latitude, end_longitude, end_address,
			distance_km, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		rd.ID, rd.RequesterID, nullUUID(rd.DriverID), nullUUID(rd.VehicleID), rd.Status, rd.ApprovalStatus,
		nullUUID(rd.DepartmentHeadID), nullUUID(rd.ProjectManagerID), rd.RejectionReason,
		rd.StartLocation.Latitude, rd.StartLocation.Longitude, rd.StartLocation.Address,
		rd.EndLocation.Latitude, rd.EndLocation.Longitude, rd.EndLocation.Address,
		rd.DistanceKM, rd.Version, rd.CreatedAt, rd.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}
	return nil
}

func (r *rideRepo) GetByID(ctx context.Context, id uuid.UUID) (*ride.Ride, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, id)
	return scanRide(row)
}

func (r *rideRepo) Update(ctx context.Context, rd *ride.Ride) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE rides SET
			driver_id = $2, vehicle_id = $3, status = $4, approval_status = $5,
			department_head_id = $6, project_manager_id = $7, rejection_reason = $8,
			actual_end_latitude = $9, actual_end_longitude = $10, actual_end_address = $11,
			distance_km = $12, rating = $13, start_time = $14, end_time = $15,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $16`,
		rd.ID, nullUUID(rd.DriverID), nullUUID(rd.VehicleID), rd.Status, rd.ApprovalStatus,
		nullUUID(rd.DepartmentHeadID), nullUUID(rd.ProjectManagerID), rd.RejectionReason,
		actualLat(rd), actualLng(rd), actualAddr(rd),
		rd.DistanceKM, rd.Rating, rd.StartTime, rd.EndTime,
		rd.Version,
	)
	if err != nil {
		return fmt.Errorf("update ride: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := r.q.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM rides WHERE id = $1)`, rd.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ride.ErrRideNotFound
		}
		return ride.ErrVersionConflict
	}
	rd.Version++
	return nil
}

func (r *rideRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM rides WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ride: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ride.ErrRideNotFound
	}
	return nil
}

func (r *rideRepo) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*ride.Ride, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE requester_id = $1 ORDER BY created_at`, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list rides: %w", err)
	}
	defer rows.Close()

	var out []*ride.Ride
	for rows.Next() {
		rd, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

func (r *rideRepo) GetActiveByDriver(ctx context.Context, driverID uuid.UUID) (*ride.Ride, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+rideColumns+` FROM rides
		 WHERE driver_id = $1 AND status IN ('assigned', 'ongoing')
		 LIMIT 1`, driverID)
	return scanRide(row)
}

func (r *rideRepo) RatingsByDriver(ctx context.Context, driverID uuid.UUID) ([]int, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT rating FROM rides WHERE driver_id = $1 AND rating IS NOT NULL`, driverID)
	if err != nil {
		return nil, fmt.Errorf("ratings by driver: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *rideRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rides WHERE status NOT IN ('completed', 'cancelled')`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*ride.Ride, error) {
	var rd ride.Ride
	var driverID, vehicleID, deptHeadID, pmID uuid.NullUUID
	var actualLat, actualLng sql.NullFloat64
	var actualAddr sql.NullString
	var rating sql.NullInt64
	var startTime, endTime sql.NullTime

	err := row.Scan(
		&rd.ID, &rd.RequesterID, &driverID, &vehicleID, &rd.Status, &rd.ApprovalStatus,
		&deptHeadID, &pmID, &rd.RejectionReason,
		&rd.StartLocation.Latitude, &rd.StartLocation.Longitude, &rd.StartLocation.Address,
		&rd.EndLocation.Latitude, &rd.EndLocation.Longitude, &rd.EndLocation.Address,
		&actualLat, &actualLng, &actualAddr,
		&rd.DistanceKM, &rating, &startTime, &endTime, &rd.Version, &rd.CreatedAt, &rd.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ride.ErrRideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan ride: %w", err)
	}

	rd.DriverID = uuidPtr(driverID)
	rd.VehicleID = uuidPtr(vehicleID)
	rd.DepartmentHeadID = uuidPtr(deptHeadID)
	rd.ProjectManagerID = uuidPtr(pmID)
	if actualLat.Valid && actualLng.Valid {
		rd.ActualEndLocation = &ride.Location{
			Latitude:  actualLat.Float64,
			Longitude: actualLng.Float64,
			Address:   actualAddr.String,
		}
	}
	if rating.Valid {
		v := int(rating.Int64)
		rd.Rating = &v
	}
	rd.StartTime = timePtr(startTime)
	rd.EndTime = timePtr(endTime)
	return &rd, nil
}

func actualLat(rd *ride.Ride) *float64 {
	if rd.ActualEndLocation == nil {
		return nil
	}
	return &rd.ActualEndLocation.Latitude
}

func actualLng(rd *ride.Ride) *float64 {
	if rd.ActualEndLocation == nil {
		return nil
	}
	return &rd.ActualEndLocation.Longitude
}

func actualAddr(rd *ride.Ride) *string {
	if rd.ActualEndLocation == nil {
		return nil
	}
	return &rd.ActualEndLocation.Address
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func nullUUID(v *uuid.UUID) uuid.NullUUID {
	if v == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *v, Valid: true}
}

func uuidPtr(v uuid.NullUUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := v.UUID
	return &id
}
