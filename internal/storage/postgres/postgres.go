// Package postgres implements the storage boundary on PostgreSQL. The unit
// of work maps to a database transaction; driver and vehicle status flips use
// guarded updates so a lost assignment race shows up as zero affected rows
// rather than a double binding.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gocomet/fleet-rides/internal/domain/driver"
	"github.com/gocomet/fleet-rides/internal/domain/notification"
	"github.com/gocomet/fleet-rides/internal/domain/ride"
	"github.com/gocomet/fleet-rides/internal/domain/user"
	"github.com/gocomet/fleet-rides/internal/domain/vehicle"
	"github.com/gocomet/fleet-rides/internal/storage"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements storage.Store over a PostgreSQL pool.
type Store struct {
	db *sql.DB
	q  querier
}

// New creates a store bound to the given pool.
func New(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

func (s *Store) Rides() ride.Repository                 { return &rideRepo{s.q} }
func (s *Store) Drivers() driver.Repository             { return &driverRepo{s.q} }
func (s *Store) Vehicles() vehicle.Repository           { return &vehicleRepo{s.q} }
func (s *Store) Users() user.Repository                 { return &userRepo{s.q} }
func (s *Store) Notifications() notification.Repository { return &notificationRepo{s.q} }

// WithinTx runs fn inside a database transaction. Nested calls reuse the
// already-open transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx storage.Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	txStore := &Store{db: s.db, q: tx}
	if err := fn(txStore); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
