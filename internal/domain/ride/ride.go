package ride

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents ride status
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusAssigned  Status = "assigned"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ApprovalStatus represents where a ride sits in the approval chain
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Location is a geographic point with its display address
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Ride represents a transport request tracked through approval and execution.
// RequesterID and the planned locations are immutable after creation; the
// actual end location and distance are captured at completion.
type Ride struct {
	ID                uuid.UUID      `json:"id"`
	RequesterID       uuid.UUID      `json:"requester_id"`
	DriverID          *uuid.UUID     `json:"driver_id,omitempty"`
	VehicleID         *uuid.UUID     `json:"vehicle_id,omitempty"`
	Status            Status         `json:"status"`
	ApprovalStatus    ApprovalStatus `json:"approval_status"`
	DepartmentHeadID  *uuid.UUID     `json:"department_head_id,omitempty"`
	ProjectManagerID  *uuid.UUID     `json:"project_manager_id,omitempty"`
	RejectionReason   string         `json:"rejection_reason,omitempty"`
	StartLocation     Location       `json:"start_location"`
	EndLocation       Location       `json:"end_location"`
	ActualEndLocation *Location      `json:"actual_end_location,omitempty"`
	DistanceKM        float64        `json:"distance_km"`
	Rating            *int           `json:"rating,omitempty"`
	StartTime         *time.Time     `json:"start_time,omitempty"`
	EndTime           *time.Time     `json:"end_time,omitempty"`
	Version           int            `json:"-"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Repository interface
type Repository interface {
	Create(ctx context.Context, r *Ride) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ride, error)
	// Update persists the ride, guarded by its Version: the write succeeds only
	// against the version the caller read, and bumps it.
	Update(ctx context.Context, r *Ride) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*Ride, error)
	// GetActiveByDriver returns the ride currently binding a driver, i.e. the
	// one with status assigned or ongoing, if any.
	GetActiveByDriver(ctx context.Context, driverID uuid.UUID) (*Ride, error)
	// RatingsByDriver returns all ratings given on the driver's rides.
	RatingsByDriver(ctx context.Context, driverID uuid.UUID) ([]int, error)
	CountActive(ctx context.Context) (int, error)
}

// Errors
var (
	ErrRideNotFound    = errors.New("ride not found")
	ErrVersionConflict = errors.New("ride modified concurrently")
)

// IsTerminal reports whether no further lifecycle transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// AwaitsDeptHeadDecision checks if the ride is at the department head stage
func (r *Ride) AwaitsDeptHeadDecision() bool {
	return r.Status == StatusPending && r.ApprovalStatus == ApprovalPending
}

// AwaitsPMDecision checks if the ride was escalated and awaits the project
// manager's decision
func (r *Ride) AwaitsPMDecision() bool {
	return r.Status == StatusPending && r.ApprovalStatus == ApprovalApproved && r.ProjectManagerID != nil
}

// CanAssign checks if resources can be bound to this ride
func (r *Ride) CanAssign() bool {
	return r.Status == StatusApproved && r.ApprovalStatus == ApprovalApproved
}

// CanStart checks if the bound driver can start the trip
func (r *Ride) CanStart() bool {
	return r.Status == StatusAssigned
}

// CanComplete checks if the bound driver can complete the trip
func (r *Ride) CanComplete() bool {
	return r.Status == StatusOngoing
}

// CanCancel checks if the administrative cancel override applies
func (r *Ride) CanCancel() bool {
	return !r.Status.IsTerminal()
}

// CanDelete checks if the ride can be hard-deleted
func (r *Ride) CanDelete() bool {
	return r.Status.IsTerminal()
}

// CanRate checks if a rating may still be recorded
func (r *Ride) CanRate() bool {
	return r.Status == StatusCompleted && r.Rating == nil
}

// IsBoundDriver reports whether the given driver is the one assigned
func (r *Ride) IsBoundDriver(driverID uuid.UUID) bool {
	return r.DriverID != nil && *r.DriverID == driverID
}
