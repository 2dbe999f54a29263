package driver

import (
	"time"

	"github.com/google/uuid"
)

// Status represents driver availability status
type Status string

const (
	StatusAvailable Status = "available"
	StatusBusy      Status = "busy"
	StatusOffline   Status = "offline"
)

// Driver represents a driver entity. Status is the only field the ride engine
// mutates; a driver is busy exactly while bound to one assigned or ongoing
// ride. Rating and RatingCount are a derived cache recomputed from rated
// rides and may lag the rides themselves.
type Driver struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	Status           Status     `json:"status"`
	CurrentLatitude  *float64   `json:"current_latitude,omitempty"`
	CurrentLongitude *float64   `json:"current_longitude,omitempty"`
	Rating           float64    `json:"rating"`
	RatingCount      int        `json:"rating_count"`
	TotalDistanceKM  float64    `json:"total_distance_km"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsValid validates the driver entity
func (d *Driver) IsValid() error {
	if d.Name == "" {
		return ErrInvalidDriverName
	}
	if !d.Status.IsValid() {
		return ErrInvalidDriverStatus
	}
	return nil
}

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusBusy, StatusOffline:
		return true
	}
	return false
}

// IsAvailable returns true if the driver can be bound to a ride
func (d *Driver) IsAvailable() bool {
	return d.Status == StatusAvailable
}

// SetLocation updates the driver's current location
func (d *Driver) SetLocation(lat, lng float64) {
	d.CurrentLatitude = &lat
	d.CurrentLongitude = &lng
	d.UpdatedAt = time.Now()
}
