package driver

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for driver data access
type Repository interface {
	// Create creates a new driver
	Create(ctx context.Context, d *Driver) error

	// GetByID retrieves a driver by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Driver, error)

	// Update updates a driver
	Update(ctx context.Context, d *Driver) error

	// SetStatus transitions the driver's status from an expected value to the
	// next one. Returns false without error when the driver was not in the
	// expected status, which is how a lost assignment race surfaces.
	SetStatus(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)

	// AddDistance increments the driver's total distance
	AddDistance(ctx context.Context, id uuid.UUID, km float64) error

	// UpdateLocation updates driver location
	UpdateLocation(ctx context.Context, id uuid.UUID, lat, lng float64) error

	// List retrieves all drivers
	List(ctx context.Context) ([]*Driver, error)

	// CountByStatus returns the number of drivers per status
	CountByStatus(ctx context.Context) (map[Status]int, error)
}
