// Package assignment binds drivers and vehicles to rides and releases them
// again. Both resources flip status through guarded compare-and-set writes, so
// two concurrent assignments of the same driver or vehicle resolve to exactly
// one winner.
package assignment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gocomet/fleet-rides/internal/domain/driver"
	"github.com/gocomet/fleet-rides/internal/domain/ride"
	"github.com/gocomet/fleet-rides/internal/domain/vehicle"
	"github.com/gocomet/fleet-rides/internal/storage"
	apperrors "github.com/gocomet/fleet-rides/pkg/errors"
	"github.com/gocomet/fleet-rides/pkg/logger"
)

// Manager performs the resource half of assignment and release. It operates
// on the transactional store handed in by the caller, which owns the
// transaction boundary.
type Manager struct {
	logger *logger.Logger
}

// NewManager creates an assignment manager.
func NewManager(log *logger.Logger) *Manager {
	return &Manager{logger: log}
}

// Binding names the driver and vehicle to attach to a ride.
type Binding struct {
	RideID    uuid.UUID
	DriverID  uuid.UUID
	VehicleID uuid.UUID
}

// Assign atomically binds the driver and vehicle to the ride. It must run
// inside a transaction: the driver flip rolls back if the vehicle flip loses.
// A lost race on either resource surfaces as ResourceUnavailable.
func (m *Manager) Assign(ctx context.Context, tx storage.Store, b Binding) (*ride.Ride, error) {
	rd, err := tx.Rides().GetByID(ctx, b.RideID)
	if errors.Is(err, ride.ErrRideNotFound) {
		return nil, apperrors.NotFound("Ride not found", err)
	}
	if err != nil {
		return nil, err
	}
	if !rd.CanAssign() {
		return nil, apperrors.PreconditionFailed("Ride is not approved for assignment", nil)
	}

	won, err := tx.Drivers().SetStatus(ctx, b.DriverID, driver.StatusAvailable, driver.StatusBusy)
	if errors.Is(err, driver.ErrDriverNotFound) {
		return nil, apperrors.NotFound("Driver not found", err)
	}
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, apperrors.ResourceUnavailable("Driver is not available", nil)
	}

	won, err = tx.Vehicles().SetStatus(ctx, b.VehicleID, vehicle.StatusAvailable, vehicle.StatusBusy)
	if errors.Is(err, vehicle.ErrVehicleNotFound) {
		return nil, apperrors.NotFound("Vehicle not found", err)
	}
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, apperrors.ResourceUnavailable("Vehicle is not available", nil)
	}

	if err := tx.Vehicles().SetCurrentDriver(ctx, b.VehicleID, &b.DriverID); err != nil {
		return nil, err
	}

	rd.DriverID = &b.DriverID
	rd.VehicleID = &b.VehicleID
	rd.Status = ride.StatusAssigned
	if err := tx.Rides().Update(ctx, rd); err != nil {
		if errors.Is(err, ride.ErrVersionConflict) {
			return nil, apperrors.Conflict("Ride was modified concurrently", err)
		}
		return nil, err
	}

	m.logger.Info("Resources bound to ride",
		logger.String("ride_id", rd.ID.String()),
		logger.String("driver_id", b.DriverID.String()),
		logger.String("vehicle_id", b.VehicleID.String()))
	return rd, nil
}

// Release frees the ride's driver and vehicle and, when the trip finished
// with a positive distance, accumulates it onto both. A missing or zero
// distance skips accumulation but still releases the resources.
func (m *Manager) Release(ctx context.Context, tx storage.Store, rd *ride.Ride, distanceKM float64) error {
	if rd.DriverID == nil || rd.VehicleID == nil {
		return nil
	}
	driverID, vehicleID := *rd.DriverID, *rd.VehicleID

	if _, err := tx.Drivers().SetStatus(ctx, driverID, driver.StatusBusy, driver.StatusAvailable); err != nil {
		return err
	}
	if _, err := tx.Vehicles().SetStatus(ctx, vehicleID, vehicle.StatusBusy, vehicle.StatusAvailable); err != nil {
		return err
	}
	if err := tx.Vehicles().SetCurrentDriver(ctx, vehicleID, nil); err != nil {
		return err
	}

	if distanceKM <= 0 {
		m.logger.Warn("Releasing resources without distance accumulation",
			logger.String("ride_id", rd.ID.String()),
			logger.Float64("distance_km", distanceKM))
		return nil
	}
	if err := tx.Drivers().AddDistance(ctx, driverID, distanceKM); err != nil {
		return err
	}
	if err := tx.Vehicles().AddDistance(ctx, vehicleID, distanceKM); err != nil {
		return err
	}
	return nil
}
