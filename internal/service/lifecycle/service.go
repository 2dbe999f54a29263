// Package lifecycle drives rides through their full state machine: creation,
// the two-stage approval chain, resource assignment, trip execution and
// rating. Every multi-entity write runs inside a single store transaction
// with its notification outbox row.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/fleet-rides/internal/domain/driver"
	"github.com/gocomet/fleet-rides/internal/domain/notification"
	"github.com/gocomet/fleet-rides/internal/domain/ride"
	"github.com/gocomet/fleet-rides/internal/domain/user"
	"github.com/gocomet/fleet-rides/internal/domain/vehicle"
	"github.com/gocomet/fleet-rides/internal/service/approval"
	"github.com/gocomet/fleet-rides/internal/service/assignment"
	"github.com/gocomet/fleet-rides/internal/service/location"
	"github.com/gocomet/fleet-rides/internal/service/notify"
	"github.com/gocomet/fleet-rides/internal/service/rating"
	"github.com/gocomet/fleet-rides/internal/storage"
	apperrors "github.com/gocomet/fleet-rides/pkg/errors"
	"github.com/gocomet/fleet-rides/pkg/logger"
	"github.com/gocomet/fleet-rides/pkg/monitoring"
)

// DefaultOperationTimeout bounds every lifecycle operation when the caller's
// context carries no earlier deadline.
const DefaultOperationTimeout = 10 * time.Second

// Service orchestrates the ride lifecycle.
type Service struct {
	store      storage.Store
	resolver   *approval.Resolver
	assigner   *assignment.Manager
	rater      *rating.Aggregator
	notifier   *notify.Service
	distance   location.Provider
	monitoring *monitoring.NewRelicApp
	logger     *logger.Logger
	opTimeout  time.Duration
}

// NewService wires the lifecycle service.
func NewService(
	store storage.Store,
	resolver *approval.Resolver,
	assigner *assignment.Manager,
	rater *rating.Aggregator,
	notifier *notify.Service,
	distance location.Provider,
	nr *monitoring.NewRelicApp,
	log *logger.Logger,
	opTimeout time.Duration,
) *Service {
	if opTimeout <= 0 {
		opTimeout = DefaultOperationTimeout
	}
	return &Service{
		store:      store,
		resolver:   resolver,
		assigner:   assigner,
		rater:      rater,
		notifier:   notifier,
		distance:   distance,
		monitoring: nr,
		logger:     log,
		opTimeout:  opTimeout,
	}
}

// CreateRideInput carries the requester-supplied fields of a new ride.
type CreateRideInput struct {
	StartLocation ride.Location
	EndLocation   ride.Location
	// DistanceKM overrides the computed planned distance when positive.
	DistanceKM float64
}

// CompleteRideInput carries the driver-supplied completion data.
type CompleteRideInput struct {
	ActualEndLocation *ride.Location
	// ActualDistanceKM replaces the planned distance when set.
	ActualDistanceKM *float64
}

// CreateRide validates the request, resolves the approval chain and persists
// the ride in its initial pending state, notifying the first approver.
func (s *Service) CreateRide(ctx context.Context, actor user.Principal, in CreateRideInput) (*ride.Ride, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := validateLocation("start_location", in.StartLocation); err != nil {
		return nil, err
	}
	if err := validateLocation("end_location", in.EndLocation); err != nil {
		return nil, err
	}
	if in.DistanceKM < 0 {
		return nil, apperrors.Validation("distance_km cannot be negative", nil)
	}

	requester, err := s.store.Users().GetByID(ctx, actor.ID)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, apperrors.NotFound("Requester not found", err)
	}
	if err != nil {
		return nil, s.mapErr(err)
	}

	chain, err := s.resolver.Resolve(ctx, requester)
	if err != nil {
		return nil, s.mapErr(err)
	}

	distanceKM := in.DistanceKM
	if distanceKM == 0 {
		distanceKM = s.distance.DistanceKM(in.StartLocation, in.EndLocation)
	}

	now := time.Now()
	rd := &ride.Ride{
		ID:               uuid.New(),
		RequesterID:      requester.ID,
		Status:           ride.StatusPending,
		ApprovalStatus:   ride.ApprovalPending,
		DepartmentHeadID: chain.DepartmentHeadID,
		StartLocation:    in.StartLocation,
		EndLocation:      in.EndLocation,
		DistanceKM:       distanceKM,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.store.WithinTx(ctx, func(tx storage.Store) error {
		if err := tx.Rides().Create(ctx, rd); err != nil {
			return err
		}
		if chain.DepartmentHeadID == nil {
			return nil
		}
		return s.notifier.Enqueue(ctx, tx, notify.Event{
			RecipientID:   *chain.DepartmentHeadID,
			RecipientType: string(user.RoleDepartmentHead),
			Type:          notification.TypeRideRequested,
			Title:         "Ride approval requested",
			Message:       fmt.Sprintf("%s requested a ride to %s", requester.Name, rd.EndLocation.Address),
			Ride:          rd,
		})
	})
	if err != nil {
		return nil, s.mapErr(err)
	}

	s.monitoring.RecordRideCreated()
	s.logger.Info("Ride created",
		logger.String("ride_id", rd.ID.String()),
		logger.String("requester_id", requester.ID.String()),
		logger.Bool("escalates", chain.RequesterIsDeptHead))
	return rd, nil
}

// ApproveAsDeptHead records the department-head decision. When the requester
// is themselves a department head the approval only escalates: the ride stays
// pending and a project manager is attached for the final say.
func (s *Service) ApproveAsDeptHead(ctx context.Context, actor user.Principal, rideID uuid.UUID) (*ride.Ride, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var out *ride.Ride
	err := s.store.WithinTx(ctx, func(tx storage.Store) error {
		rd, err := s.getRide(ctx, tx, rideID)
		if err != nil {
			return err
		}
		if err := s.resolver.ValidateDeptHeadDecision(rd, actor); err != nil {
			return err
		}
		if !rd.AwaitsDeptHeadDecision() {
			return apperrors.Conflict("Ride is not awaiting department head decision", nil)
		}

		requester, err := tx.Users().GetByID(ctx, rd.RequesterID)
		if err != nil {
			return err
		}

		action := ActionDeptHeadApprove
		if requester.Role == user.RoleDepartmentHead {
			action = ActionDeptHeadEscalate
		}
		next, ok := nextState(rd, action)
		if !ok {
			return apperrors.Conflict("Ride cannot be approved in its current state", nil)
		}
		rd.Status = next.status
		rd.ApprovalStatus = next.approval

		if action == ActionDeptHeadEscalate {
			pm, err := s.resolver.ResolveProjectManager(ctx, tx.Users(), rd.RequesterID)
			if err != nil {
				return err
			}
			rd.ProjectManagerID = &pm.ID
			if err := tx.Rides().Update(ctx, rd); err != nil {
				return err
			}
			out = rd
			return s.notifier.Enqueue(ctx, tx, notify.Event{
				RecipientID:   pm.ID,
				RecipientType: string(user.RoleProjectManager),
				Type:          notification.TypeRideEscalated,
				Title:         "Ride escalated for final approval",
				Message:       fmt.Sprintf("Department head %s's ride needs your approval", requester.Name),
				Ride:          rd,
			})
		}

		if err := tx.Rides().Update(ctx, rd); err != nil {
			return err
		}
		out = rd
		return s.notifier.Enqueue(ctx, tx, notify.Event{
			RecipientID:   rd.RequesterID,
			RecipientType: string(requester.Role),
			Type:          notification.TypeRideApproved,
			Title:         "Ride approved",
			Message:       "Your ride has been approved and awaits assignment",
			Ride:          rd,
		})
	})
	if err != nil {
		return nil, s.mapErr(err)
	}

	s.monitoring.RecordApprovalDecision("department_head", true)
	return out, nil
}

// RejectAsDeptHead rejects a pending ride with a mandatory reason.
func (s *Service) RejectAsDeptHead(ctx context.Context, actor user.Principal, rideID uuid.UUID, reason string) (*ride.Ride, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if reason == "" {
		return nil, apperrors.Validation("A rejection reason is required", nil)
	}

	var out *ride.Ride
	err := s.store.WithinTx(ctx, func(tx storage.Store) error {
		rd, err := s.getRide(ctx, tx, rideID)
		if err != nil {
			return err
		}
		if err := s.resolver.ValidateDeptHeadDecision(rd, actor); err != nil {
			return err
		}
		next, ok := nextState(rd, ActionDeptHeadReject)
		if !ok {
			return apperrors.Conflict("Ride is not awaiting department head decision", nil)
		}
		rd.Status = next.status
		rd.ApprovalStatus = next.approval
		rd.RejectionReason = reason
		if err := tx.Rides().Update(ctx, rd); err != nil {
			return err
		}
		out = rd
		return s.notifier.Enqueue(ctx, tx, notify.Event{
			RecipientID:   rd.RequesterID,
			RecipientType: string(user.RoleUser),
			Type:          notification.TypeRideRejected,
			Title:         "Ride rejected",
			Message:       fmt.Sprintf("Your ride was rejected: %s", reason),
			Ride:          rd,
		})
	})
	if err != nil {
		return nil, s.mapErr(err)
	}

	s.monitoring.RecordApprovalDecision("department_head", false)
	return out, nil
}

// ApproveAsPM gives final approval on an escalated ride.
func (s *Service) ApproveAsPM(ctx context.Context, actor user.Principal, rideID uuid.UUID) (*ride.Ride, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var out *ride.Ride
	err := s.store.WithinTx(ctx, func(tx storage.Store) error {
		rd, err := s.getRide(ctx, tx, rideID)
		if err != nil {
			return err
		}
		if err := s.resolver.ValidatePMDecision(rd, actor); err != nil {
			return err
		}
		next, ok := nextState(rd, ActionPMApprove)
		if !ok || !rd.AwaitsPMDecision() {
			return apperrors.Conflict("Ride is not awaiting project manager decision", nil)
		}
		rd.Status = next.status
		rd.ApprovalStatus = next.approval
		if err := tx.Rides().Update(ctx, rd); err != nil {
			return err
		}
		out = rd
		return s.notifier.Enqueue(ctx, tx, notify.Event{
			RecipientID:   rd.RequesterID,
			RecipientType: string(user.RoleDepartmentHead),
			Type:          notification.TypeRideApproved,
			Title:         "Ride approved",
			Message:       "Your ride received final approval and awaits assignment",
			Ride:          rd,
		})
	})
	if err != nil {
		return nil, s.mapErr(err)
	}

	s.monitoring.RecordApprovalDecision("project_manager", true)
	return out, nil
}

// RejectAsPM rejects an escalated ride with a mandatory reason.
func (s *Service) RejectAsPM(ctx context.Context, actor user.Principal, rideID uuid.UUID, reason string) (*ride.Ride, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if reason == "" {
		return nil, apperrors.Validation("A rejection reason is required", nil)
	}

	var out *ride.Ride
	err := s.store.WithinTx(ctx, func(tx storage.Store) error {
		rd, err := s.getRide(ctx, tx, rideID)
		if err != nil {
			return err
		}
		if err := s.resolver.ValidatePMDecision(rd, actor); err != nil {
			return err
		}
		next, ok := nextState(rd, ActionPMReject)
		if !ok || !rd.AwaitsPMDecision() {
			return apperrors.Conflict("Ride is not awaiting project manager decision", nil)
		}
		rd.Status = next.status
		rd.ApprovalStatus = next.approval
		rd.RejectionReason = reason
		if err := tx.Rides().Update(ctx, rd); err != nil {
			return err
		}
		out = rd
		return s.notifier.Enqueue(ctx, tx, notify.Event{
			RecipientID:   rd.RequesterID,
			RecipientType: string(user.RoleDepartmentHead),
			Type:          notification.TypeRideRejected,
			Title:         "Ride rejected",
			Message:       fmt.Sprintf("Your ride was rejected: %s", reason),
			Ride:          rd,
		})
	})
	if err != nil {
		return nil, s.mapErr(err)
	}

	s.monitoring.RecordApprovalDecision("project_manager", false)
	return out, nil
}

// AssignRide binds a driver and vehicle to an approved ride. Admin only. The
// whole binding is one transaction, so a lost race on either resource leaves
// nothing half-assigned.
func (s *Service) AssignRide(ctx context.Context, actor user.Principal, rideID, driverID, vehicleID uuid.UUID) (*ride.Ride, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if !actor.IsAdmin() {
		return nil, apperrors.Authorization("Only admins can assign rides", nil)
	}

	var out *ride.Ride
	err := s.store.WithinTx(ctx, func(tx storage.Store) error {
		rd, err := s.assigner.Assign(ctx, tx, assignment.Binding{
			RideID:    rideID,
			DriverID:  driverID,
			VehicleID: vehicleID,
		})
		if err != nil {
			return err
		}
		out = rd
		if err := s.notifier.Enqueue(ctx, tx, notify.Event{
			RecipientID:   driverID,
			RecipientType: string(user.RoleDriver),
			Type:          notification.TypeRideAssigned,
			Title:         "New ride assigned",
			Message:       fmt.Sprintf("Pick up at %s", rd.StartLocation.Address),
			Ride:          rd,
		}); err != nil {
			return err
		}
		return s.notifier.Enqueue(ctx, tx, notify.Event{
			RecipientID:   rd.RequesterID,
			RecipientType: string(user.RoleUser),
			Type:          notification.TypeRideAssigned,
			Title:         "Driver assigned",
			Message:       "A driver and vehicle have been assigned to your ride",
			Ride:          rd,
		})
	})
	s.monitoring.RecordAssignmentOutcome(err == nil)
	if err != nil {
		return nil, s.mapErr(err)
	}
	return out, nil
}

// StartRide transitions an assigned ride to ongoing. Only the bound driver
// may start it.
func (s *Service) StartRide(ctx context.Context, actor user.Principal, rideID uuid.UUID) (*ride.Ride, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var out *ride.Ride
	err := s.store.WithinTx(ctx, func(tx storage.Store) error {
		rd, err := s.getRide(ctx, tx, rideID)
		if err != nil {
			return err
		}
		if !rd.IsBoundDriver(actor.ID) {
			return apperrors.Authorization("Only the assigned driver can start this ride", nil)
		}
		next, ok := nextState(rd, ActionStart)
		if !ok {
			return apperrors.Conflict("Ride cannot be started in its current state", nil)
		}
		now := time.Now()
		rd.Status = next.status
		rd.StartTime = &now
		if err := tx.Rides().Update(ctx, rd); err != nil {
			return err
		}
		out = rd
		return s.notifier.Enqueue(ctx, tx, notify.Event{
			RecipientID:   rd.RequesterID,
			RecipientType: string(user.RoleUser),
			Type:          notification.TypeRideStarted,
			Title:         "Ride started",
			Message:       "Your driver has started the trip",
			Ride:          rd,
		})
	})
	if err != nil {
		return nil, s.mapErr(err)
	}
	return out, nil
}

// CompleteRide finishes an ongoing ride: it stamps the end time, captures the
// actual end location and distance when supplied, frees the driver and
// vehicle, and accumulates the travelled distance onto both.
func (s *Service) CompleteRide(ctx context.Context, actor user.Principal, rideID uuid.UUID, in CompleteRideInput) (*ride.Ride, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if in.ActualDistanceKM != nil && *in.ActualDistanceKM < 0 {
		return nil, apperrors.Validation("actual_distance_km cannot be negative", nil)
	}
	if in.ActualEndLocation != nil {
		if err := validateLocation("actual_end_location", *in.ActualEndLocation); err != nil {
			return nil, err
		}
	}

	var out *ride.Ride
	err := s.store.WithinTx(ctx, func(tx storage.Store) error {
		rd, err := s.getRide(ctx, tx, rideID)
		if err != nil {
			return err
		}
		if !rd.IsBoundDriver(actor.ID) && !actor.IsAdmin() {
			return apperrors.Authorization("Only the assigned driver can complete this ride", nil)
		}
		next, ok := nextState(rd, ActionComplete)
		if !ok {
			return apperrors.Conflict("Ride cannot be completed in its current state", nil)
		}

		now := time.Now()
		rd.Status = next.status
		rd.EndTime = &now
		if in.ActualEndLocation != nil {
			rd.ActualEndLocation = in.ActualEndLocation
		}
		// Totals only grow by a reported actual distance. Without one the ride
		// keeps its planned value and accumulation is skipped.
		travelledKM := 0.0
		if in.ActualDistanceKM != nil {
			rd.DistanceKM = *in.ActualDistanceKM
			travelledKM = *in.ActualDistanceKM
		}
		if err := tx.Rides().Update(ctx, rd); err != nil {
			return err
		}
		if err := s.assigner.Release(ctx, tx, rd, travelledKM); err != nil {
			return err
		}
		out = rd
		return s.notifier.Enqueue(ctx, tx, notify.Event{
			RecipientID:   rd.RequesterID,
			RecipientType: string(user.RoleUser),
			Type:          notification.TypeRideCompleted,
			Title:         "Ride completed",
			Message:       fmt.Sprintf("Trip finished, %.1f km travelled. You can rate your driver now.", rd.DistanceKM),
			Ride:          rd,
		})
	})
	if err != nil {
		return nil, s.mapErr(err)
	}

	s.monitoring.RecordRideCompleted(out.DistanceKM)
	return out, nil
}

// CancelRide cancels a non-terminal ride, releasing any bound resources
// without distance accumulation. Permitted for the requester and admins.
func (s *Service) CancelRide(ctx context.Context, actor user.Principal, rideID uuid.UUID) (*ride.Ride, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var out *ride.Ride
	err := s.store.WithinTx(ctx, func(tx storage.Store) error {
		rd, err := s.getRide(ctx, tx, rideID)
		if err != nil {
			return err
		}
		if rd.RequesterID != actor.ID && !actor.IsAdmin() {
			return apperrors.Authorization("Only the requester or an admin can cancel this ride", nil)
		}
		if !rd.CanCancel() {
			return apperrors.Conflict("Ride is already in a terminal state", nil)
		}

		driverID := rd.DriverID
		if err := s.assigner.Release(ctx, tx, rd, 0); err != nil {
			return err
		}
		rd.Status = ride.StatusCancelled
		if err := tx.Rides().Update(ctx, rd); err != nil {
			return err
		}
		out = rd

		if err := s.notifier.Enqueue(ctx, tx, notify.Event{
			RecipientID:   rd.RequesterID,
			RecipientType: string(user.RoleUser),
			Type:          notification.TypeRideCancelled,
			Title:         "Ride cancelled",
			Message:       "Your ride has been cancelled",
			Ride:          rd,
		}); err != nil {
			return err
		}
		if driverID == nil {
			return nil
		}
		return s.notifier.Enqueue(ctx, tx, notify.Event{
			RecipientID:   *driverID,
			RecipientType: string(user.RoleDriver),
			Type:          notification.TypeRideCancelled,
			Title:         "Ride cancelled",
			Message:       "An assigned ride was cancelled, you are available again",
			Ride:          rd,
		})
	})
	if err != nil {
		return nil, s.mapErr(err)
	}
	return out, nil
}

// DeleteRide removes a ride record. Only terminal rides may be deleted, and
// only by their requester or an admin.
func (s *Service) DeleteRide(ctx context.Context, actor user.Principal, rideID uuid.UUID) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.mapErr(s.store.WithinTx(ctx, func(tx storage.Store) error {
		rd, err := s.getRide(ctx, tx, rideID)
		if err != nil {
			return err
		}
		if rd.RequesterID != actor.ID && !actor.IsAdmin() {
			return apperrors.Authorization("Only the requester or an admin can delete this ride", nil)
		}
		if !rd.CanDelete() {
			return apperrors.Conflict("Only completed or cancelled rides can be deleted", nil)
		}
		return tx.Rides().Delete(ctx, rideID)
	}))
}

// RateRide records the requester's one-time rating of a completed ride and
// kicks off the driver aggregate recompute.
func (s *Service) RateRide(ctx context.Context, actor user.Principal, rideID uuid.UUID, score int) (*ride.Ride, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if score < 1 || score > 5 {
		return nil, apperrors.Validation("Rating must be between 1 and 5", nil)
	}

	var out *ride.Ride
	var ratedDriver *uuid.UUID
	err := s.store.WithinTx(ctx, func(tx storage.Store) error {
		rd, err := s.getRide(ctx, tx, rideID)
		if err != nil {
			return err
		}
		if rd.RequesterID != actor.ID {
			return apperrors.Authorization("Only the requester can rate this ride", nil)
		}
		if rd.Rating != nil {
			return apperrors.AlreadyRated("Ride has already been rated", nil)
		}
		if rd.Status != ride.StatusCompleted {
			return apperrors.Conflict("Only completed rides can be rated", nil)
		}
		rd.Rating = &score
		if err := tx.Rides().Update(ctx, rd); err != nil {
			return err
		}
		out = rd
		ratedDriver = rd.DriverID
		return nil
	})
	if err != nil {
		return nil, s.mapErr(err)
	}

	// Aggregate recompute is best effort once the rating committed.
	if ratedDriver != nil {
		if err := s.rater.Recompute(ctx, *ratedDriver); err != nil {
			s.logger.Error("Driver rating recompute failed",
				logger.String("driver_id", ratedDriver.String()),
				logger.Err(err))
		}
	}
	return out, nil
}

// GetRide returns a ride visible to the caller: its requester, its bound
// driver, anyone in its approval chain, or an admin.
func (s *Service) GetRide(ctx context.Context, actor user.Principal, rideID uuid.UUID) (*ride.Ride, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rd, err := s.getRide(ctx, s.store, rideID)
	if err != nil {
		return nil, s.mapErr(err)
	}
	if !canView(rd, actor) {
		return nil, apperrors.Authorization("You are not involved in this ride", nil)
	}
	return rd, nil
}

// ListMyRides returns the caller's rides in creation order.
func (s *Service) ListMyRides(ctx context.Context, actor user.Principal) ([]*ride.Ride, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rides, err := s.store.Rides().ListByRequester(ctx, actor.ID)
	if err != nil {
		return nil, s.mapErr(err)
	}
	return rides, nil
}

func canView(rd *ride.Ride, actor user.Principal) bool {
	if actor.IsAdmin() || rd.RequesterID == actor.ID || rd.IsBoundDriver(actor.ID) {
		return true
	}
	if rd.DepartmentHeadID != nil && *rd.DepartmentHeadID == actor.ID {
		return true
	}
	return rd.ProjectManagerID != nil && *rd.ProjectManagerID == actor.ID
}

func (s *Service) getRide(ctx context.Context, st storage.Store, id uuid.UUID) (*ride.Ride, error) {
	rd, err := st.Rides().GetByID(ctx, id)
	if errors.Is(err, ride.ErrRideNotFound) {
		return nil, apperrors.NotFound("Ride not found", err)
	}
	return rd, err
}

// opCtx bounds the operation with the configured timeout.
func (s *Service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

// mapErr normalizes storage and context errors into the API taxonomy.
// AppErrors pass through untouched.
func (s *Service) mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("Operation timed out", err)
	case errors.Is(err, ride.ErrRideNotFound):
		return apperrors.NotFound("Ride not found", err)
	case errors.Is(err, driver.ErrDriverNotFound):
		return apperrors.NotFound("Driver not found", err)
	case errors.Is(err, vehicle.ErrVehicleNotFound):
		return apperrors.NotFound("Vehicle not found", err)
	case errors.Is(err, user.ErrUserNotFound):
		return apperrors.NotFound("User not found", err)
	case errors.Is(err, ride.ErrVersionConflict):
		return apperrors.Conflict("Ride was modified concurrently", err)
	default:
		return apperrors.Internal("Unexpected error", err)
	}
}

func validateLocation(field string, loc ride.Location) error {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		return apperrors.Validation(fmt.Sprintf("%s latitude must be between -90 and 90", field), nil)
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		return apperrors.Validation(fmt.Sprintf("%s longitude must be between -180 and 180", field), nil)
	}
	return nil
}
