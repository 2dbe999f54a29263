package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the engine's tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			department TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS drivers (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'offline',
			current_latitude DOUBLE PRECISION,
			current_longitude DOUBLE PRECISION,
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			rating_count INTEGER NOT NULL DEFAULT 0,
			total_distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS vehicles (
			id UUID PRIMARY KEY,
			plate TEXT NOT NULL,
			make TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			year INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'available',
			current_driver_id UUID,
			total_distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS rides (
			id UUID PRIMARY KEY,
			requester_id UUID NOT NULL,
			driver_id UUID,
			vehicle_id UUID,
			status TEXT NOT NULL,
			approval_status TEXT NOT NULL,
			department_head_id UUID,
			project_manager_id UUID,
			rejection_reason TEXT NOT NULL DEFAULT '',
			start_latitude DOUBLE PRECISION NOT NULL,
			start_longitude DOUBLE PRECISION NOT NULL,
			start_address TEXT NOT NULL DEFAULT '',
			end_latitude DOUBLE PRECISION NOT NULL,
			end_longitude DOUBLE PRECISION NOT NULL,
			end_address TEXT NOT NULL DEFAULT '',
			actual_end_latitude DOUBLE PRECISION,
			actual_end_longitude DOUBLE PRECISION,
			actual_end_address TEXT,
			distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
			rating INTEGER,
			start_time TIMESTAMPTZ,
			end_time TIMESTAMPTZ,
			version INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rides_requester ON rides (requester_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rides_driver_active ON rides (driver_id) WHERE status IN ('assigned', 'ongoing')`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			recipient_id UUID NOT NULL,
			recipient_type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			type TEXT NOT NULL,
			data JSONB,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			dispatched_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications (recipient_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_outbox ON notifications (created_at) WHERE dispatched_at IS NULL`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
