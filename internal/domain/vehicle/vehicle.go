package vehicle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents vehicle availability status
type Status string

const (
	StatusAvailable   Status = "available"
	StatusBusy        Status = "busy"
	StatusMaintenance Status = "maintenance"
)

// Vehicle represents a fleet vehicle. CurrentDriverID is a lookup convenience
// pointing at the driver of the active assignment, not an ownership relation;
// it is cleared whenever the bound ride completes or cancels.
type Vehicle struct {
	ID              uuid.UUID  `json:"id"`
	Plate           string     `json:"plate"`
	Make            string     `json:"make"`
	Model           string     `json:"model"`
	Year            int        `json:"year"`
	Status          Status     `json:"status"`
	CurrentDriverID *uuid.UUID `json:"current_driver_id,omitempty"`
	TotalDistanceKM float64    `json:"total_distance_km"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Repository defines the interface for vehicle data access
type Repository interface {
	Create(ctx context.Context, v *Vehicle) error
	GetByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	Update(ctx context.Context, v *Vehicle) error
	// SetStatus transitions the vehicle's status from an expected value to the
	// next one; false means the vehicle was no longer in the expected status.
	SetStatus(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
	// SetCurrentDriver sets or clears the back-reference to the bound driver
	SetCurrentDriver(ctx context.Context, id uuid.UUID, driverID *uuid.UUID) error
	// AddDistance increments the vehicle's total distance
	AddDistance(ctx context.Context, id uuid.UUID, km float64) error
	List(ctx context.Context) ([]*Vehicle, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

var (
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrVehicleNotAvailable = errors.New("vehicle is not available")
	ErrInvalidPlate        = errors.New("invalid vehicle plate")
)

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusBusy, StatusMaintenance:
		return true
	}
	return false
}

// IsAvailable returns true if the vehicle can be bound to a ride
func (v *Vehicle) IsAvailable() bool {
	return v.Status == StatusAvailable
}
