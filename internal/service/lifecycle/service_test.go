package lifecycle_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocomet/fleet-rides/internal/domain/driver"
	"github.com/gocomet/fleet-rides/internal/domain/ride"
	"github.com/gocomet/fleet-rides/internal/domain/user"
	"github.com/gocomet/fleet-rides/internal/domain/vehicle"
	"github.com/gocomet/fleet-rides/internal/service/approval"
	"github.com/gocomet/fleet-rides/internal/service/assignment"
	"github.com/gocomet/fleet-rides/internal/service/lifecycle"
	"github.com/gocomet/fleet-rides/internal/service/location"
	"github.com/gocomet/fleet-rides/internal/service/notify"
	"github.com/gocomet/fleet-rides/internal/service/rating"
	"github.com/gocomet/fleet-rides/internal/storage/memory"
	apperrors "github.com/gocomet/fleet-rides/pkg/errors"
	"github.com/gocomet/fleet-rides/pkg/logger"
	"github.com/gocomet/fleet-rides/pkg/monitoring"
	"github.com/gocomet/fleet-rides/pkg/websocket"
)

type nopSender struct{}

func (nopSender) SendToUser(string, websocket.Message) {}

type fixture struct {
	store *memory.Store
	svc   *lifecycle.Service

	requester user.Principal
	deptHead  user.Principal
	pm        user.Principal
	admin     user.Principal
	driver    user.Principal

	driverID  uuid.UUID
	vehicleID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	log := logger.NewNop()

	nr, err := monitoring.New(monitoring.Config{})
	require.NoError(t, err)

	svc := lifecycle.NewService(
		store,
		approval.NewResolver(store.Users()),
		assignment.NewManager(log),
		rating.NewAggregator(store),
		notify.NewService(store, nopSender{}, log),
		location.NewHaversineProvider(),
		nr,
		log,
		0,
	)

	f := &fixture{store: store, svc: svc}

	seed := func(name string, role user.Role, dept string) user.Principal {
		u := &user.User{
			ID:         uuid.New(),
			Name:       name,
			Email:      name + "@fleet.example",
			Role:       role,
			Department: dept,
			CreatedAt:  time.Now(),
		}
		require.NoError(t, store.Users().Create(ctx, u))
		return user.Principal{ID: u.ID, Role: role, Department: dept}
	}

	f.requester = seed("alice", user.RoleUser, "engineering")
	f.deptHead = seed("bob", user.RoleDepartmentHead, "engineering")
	f.pm = seed("carol", user.RoleProjectManager, "")
	f.admin = seed("dave", user.RoleAdmin, "")
	f.driver = seed("erin", user.RoleDriver, "")

	f.driverID = f.driver.ID
	require.NoError(t, store.Drivers().Create(ctx, &driver.Driver{
		ID:     f.driverID,
		Name:   "erin",
		Status: driver.StatusAvailable,
	}))

	f.vehicleID = uuid.New()
	require.NoError(t, store.Vehicles().Create(ctx, &vehicle.Vehicle{
		ID:     f.vehicleID,
		Plate:  "KA01AB1234",
		Make:   "Toyota",
		Model:  "Innova",
		Year:   2022,
		Status: vehicle.StatusAvailable,
	}))

	return f
}

func (f *fixture) createRide(t *testing.T, distanceKM float64) *ride.Ride {
	t.Helper()
	rd, err := f.svc.CreateRide(context.Background(), f.requester, lifecycle.CreateRideInput{
		StartLocation: ride.Location{Latitude: 12.9716, Longitude: 77.5946, Address: "HQ"},
		EndLocation:   ride.Location{Latitude: 13.1986, Longitude: 77.7066, Address: "Airport"},
		DistanceKM:    distanceKM,
	})
	require.NoError(t, err)
	return rd
}

func (f *fixture) approvedRide(t *testing.T, distanceKM float64) *ride.Ride {
	t.Helper()
	rd := f.createRide(t, distanceKM)
	rd, err := f.svc.ApproveAsDeptHead(context.Background(), f.deptHead, rd.ID)
	require.NoError(t, err)
	return rd
}

func (f *fixture) assignedRide(t *testing.T, distanceKM float64) *ride.Ride {
	t.Helper()
	rd := f.approvedRide(t, distanceKM)
	rd, err := f.svc.AssignRide(context.Background(), f.admin, rd.ID, f.driverID, f.vehicleID)
	require.NoError(t, err)
	return rd
}

func TestRideRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rd := f.createRide(t, 12.5)
	assert.Equal(t, ride.StatusPending, rd.Status)
	assert.Equal(t, ride.ApprovalPending, rd.ApprovalStatus)
	require.NotNil(t, rd.DepartmentHeadID)
	assert.Equal(t, f.deptHead.ID, *rd.DepartmentHeadID)

	// Dept head approval finalizes for a regular requester, no escalation.
	rd, err := f.svc.ApproveAsDeptHead(ctx, f.deptHead, rd.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusApproved, rd.Status)
	assert.Equal(t, ride.ApprovalApproved, rd.ApprovalStatus)
	assert.Nil(t, rd.ProjectManagerID)

	rd, err = f.svc.AssignRide(ctx, f.admin, rd.ID, f.driverID, f.vehicleID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusAssigned, rd.Status)

	d, err := f.store.Drivers().GetByID(ctx, f.driverID)
	require.NoError(t, err)
	assert.Equal(t, driver.StatusBusy, d.Status)
	v, err := f.store.Vehicles().GetByID(ctx, f.vehicleID)
	require.NoError(t, err)
	assert.Equal(t, vehicle.StatusBusy, v.Status)
	require.NotNil(t, v.CurrentDriverID)
	assert.Equal(t, f.driverID, *v.CurrentDriverID)

	rd, err = f.svc.StartRide(ctx, f.driver, rd.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusOngoing, rd.Status)
	assert.NotNil(t, rd.StartTime)

	actual := 12.5
	rd, err = f.svc.CompleteRide(ctx, f.driver, rd.ID, lifecycle.CompleteRideInput{
		ActualDistanceKM: &actual,
	})
	require.NoError(t, err)
	assert.Equal(t, ride.StatusCompleted, rd.Status)
	assert.NotNil(t, rd.EndTime)

	d, err = f.store.Drivers().GetByID(ctx, f.driverID)
	require.NoError(t, err)
	assert.Equal(t, driver.StatusAvailable, d.Status)
	assert.InDelta(t, 12.5, d.TotalDistanceKM, 0.001)

	v, err = f.store.Vehicles().GetByID(ctx, f.vehicleID)
	require.NoError(t, err)
	assert.Equal(t, vehicle.StatusAvailable, v.Status)
	assert.Nil(t, v.CurrentDriverID)
	assert.InDelta(t, 12.5, v.TotalDistanceKM, 0.001)

	rd, err = f.svc.RateRide(ctx, f.requester, rd.ID, 5)
	require.NoError(t, err)
	require.NotNil(t, rd.Rating)
	assert.Equal(t, 5, *rd.Rating)

	d, err = f.store.Drivers().GetByID(ctx, f.driverID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, d.Rating)
	assert.Equal(t, 1, d.RatingCount)

	_, err = f.svc.RateRide(ctx, f.requester, rd.ID, 4)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAlreadyRated))
}

func TestEscalationWhenRequesterIsDeptHead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rd, err := f.svc.CreateRide(ctx, f.deptHead, lifecycle.CreateRideInput{
		StartLocation: ride.Location{Latitude: 12.97, Longitude: 77.59},
		EndLocation:   ride.Location{Latitude: 13.19, Longitude: 77.70},
		DistanceKM:    30,
	})
	require.NoError(t, err)
	require.NotNil(t, rd.DepartmentHeadID)
	assert.Equal(t, f.deptHead.ID, *rd.DepartmentHeadID)

	// The dept head's own approval never finalizes: it escalates to a PM.
	rd, err = f.svc.ApproveAsDeptHead(ctx, f.deptHead, rd.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusPending, rd.Status)
	assert.Equal(t, ride.ApprovalApproved, rd.ApprovalStatus)
	require.NotNil(t, rd.ProjectManagerID)
	assert.Equal(t, f.pm.ID, *rd.ProjectManagerID)

	// The requester cannot give the final approval themselves.
	_, err = f.svc.ApproveAsPM(ctx, f.deptHead, rd.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))

	rd, err = f.svc.ApproveAsPM(ctx, f.pm, rd.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusApproved, rd.Status)
	assert.Equal(t, ride.ApprovalApproved, rd.ApprovalStatus)
}

func TestEscalatedRejection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rd, err := f.svc.CreateRide(ctx, f.deptHead, lifecycle.CreateRideInput{
		StartLocation: ride.Location{Latitude: 12.97, Longitude: 77.59},
		EndLocation:   ride.Location{Latitude: 13.19, Longitude: 77.70},
		DistanceKM:    30,
	})
	require.NoError(t, err)
	rd, err = f.svc.ApproveAsDeptHead(ctx, f.deptHead, rd.ID)
	require.NoError(t, err)

	_, err = f.svc.RejectAsPM(ctx, f.pm, rd.ID, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	rd, err = f.svc.RejectAsPM(ctx, f.pm, rd.ID, "budget freeze")
	require.NoError(t, err)
	assert.Equal(t, ride.StatusCancelled, rd.Status)
	assert.Equal(t, ride.ApprovalRejected, rd.ApprovalStatus)
	assert.Equal(t, "budget freeze", rd.RejectionReason)
}

func TestRejectionRequiresReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rd := f.createRide(t, 10)

	_, err := f.svc.RejectAsDeptHead(ctx, f.deptHead, rd.ID, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	rd, err = f.svc.RejectAsDeptHead(ctx, f.deptHead, rd.ID, "no justification provided")
	require.NoError(t, err)
	assert.Equal(t, ride.StatusCancelled, rd.Status)
	assert.Equal(t, ride.ApprovalRejected, rd.ApprovalStatus)
	assert.Equal(t, "no justification provided", rd.RejectionReason)
}

func TestApprovalRequiresExactApprover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rd := f.createRide(t, 10)

	// Another dept head, right role but not the one stored on the ride.
	other := user.Principal{ID: uuid.New(), Role: user.RoleDepartmentHead, Department: "sales"}
	_, err := f.svc.ApproveAsDeptHead(ctx, other, rd.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))

	_, err = f.svc.ApproveAsDeptHead(ctx, f.deptHead, rd.ID)
	require.NoError(t, err)

	// Repeating the decision conflicts instead of silently succeeding.
	_, err = f.svc.ApproveAsDeptHead(ctx, f.deptHead, rd.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestAdminApprovesWhenNoDeptHead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	orphan := user.Principal{}
	{
		u := &user.User{ID: uuid.New(), Name: "frank", Role: user.RoleUser, Department: "legal"}
		require.NoError(t, f.store.Users().Create(ctx, u))
		orphan = user.Principal{ID: u.ID, Role: u.Role, Department: u.Department}
	}

	rd, err := f.svc.CreateRide(ctx, orphan, lifecycle.CreateRideInput{
		StartLocation: ride.Location{Latitude: 12.97, Longitude: 77.59},
		EndLocation:   ride.Location{Latitude: 13.19, Longitude: 77.70},
		DistanceKM:    5,
	})
	require.NoError(t, err)
	assert.Nil(t, rd.DepartmentHeadID)

	_, err = f.svc.ApproveAsDeptHead(ctx, f.deptHead, rd.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))

	rd, err = f.svc.ApproveAsDeptHead(ctx, f.admin, rd.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusApproved, rd.Status)
}

func TestAssignPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rd := f.createRide(t, 10)

	// Not approved yet.
	_, err := f.svc.AssignRide(ctx, f.admin, rd.ID, f.driverID, f.vehicleID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodePreconditionFailed))

	// Not an admin.
	_, err = f.svc.AssignRide(ctx, f.requester, rd.ID, f.driverID, f.vehicleID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))

	// Unknown ride.
	_, err = f.svc.AssignRide(ctx, f.admin, uuid.New(), f.driverID, f.vehicleID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestAssignBusyDriver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.assignedRide(t, 10)

	// Same driver and vehicle are busy now; a second approved ride cannot take
	// them.
	second := f.approvedRide(t, 8)
	_, err := f.svc.AssignRide(ctx, f.admin, second.ID, f.driverID, f.vehicleID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeResourceUnavailable))

	// The second ride stays approved and unbound after the failed attempt.
	got, err := f.svc.GetRide(ctx, f.admin, second.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusApproved, got.Status)
	assert.Nil(t, got.DriverID)
	assert.Nil(t, got.VehicleID)
}

func TestConcurrentAssignmentSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.approvedRide(t, 10)
	second := f.approvedRide(t, 10)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, id := range []uuid.UUID{first.ID, second.ID} {
		wg.Add(1)
		go func(rideID uuid.UUID) {
			defer wg.Done()
			_, err := f.svc.AssignRide(ctx, f.admin, rideID, f.driverID, f.vehicleID)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		if err == nil {
			won++
			continue
		}
		require.True(t, apperrors.IsCode(err, apperrors.CodeResourceUnavailable), "unexpected error: %v", err)
		lost++
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	d, err := f.store.Drivers().GetByID(ctx, f.driverID)
	require.NoError(t, err)
	assert.Equal(t, driver.StatusBusy, d.Status)
}

func TestStartRequiresBoundDriver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rd := f.assignedRide(t, 10)

	stranger := user.Principal{ID: uuid.New(), Role: user.RoleDriver}
	_, err := f.svc.StartRide(ctx, stranger, rd.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))

	// Starting twice conflicts.
	_, err = f.svc.StartRide(ctx, f.driver, rd.ID)
	require.NoError(t, err)
	_, err = f.svc.StartRide(ctx, f.driver, rd.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestCompleteWithActuals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rd := f.assignedRide(t, 10)
	_, err := f.svc.StartRide(ctx, f.driver, rd.ID)
	require.NoError(t, err)

	actual := 18.4
	end := ride.Location{Latitude: 13.0, Longitude: 77.6, Address: "Detour"}
	rd, err = f.svc.CompleteRide(ctx, f.driver, rd.ID, lifecycle.CompleteRideInput{
		ActualEndLocation: &end,
		ActualDistanceKM:  &actual,
	})
	require.NoError(t, err)
	assert.InDelta(t, 18.4, rd.DistanceKM, 0.001)
	require.NotNil(t, rd.ActualEndLocation)
	assert.Equal(t, "Detour", rd.ActualEndLocation.Address)

	d, err := f.store.Drivers().GetByID(ctx, f.driverID)
	require.NoError(t, err)
	assert.InDelta(t, 18.4, d.TotalDistanceKM, 0.001)
}

func TestCompleteWithoutActualSkipsAccumulation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rd := f.assignedRide(t, 10)
	_, err := f.svc.StartRide(ctx, f.driver, rd.ID)
	require.NoError(t, err)

	rd, err = f.svc.CompleteRide(ctx, f.driver, rd.ID, lifecycle.CompleteRideInput{})
	require.NoError(t, err)
	assert.Equal(t, ride.StatusCompleted, rd.Status)
	// The planned distance stays on the ride but is never trusted as travelled.
	assert.InDelta(t, 10, rd.DistanceKM, 0.001)

	d, err := f.store.Drivers().GetByID(ctx, f.driverID)
	require.NoError(t, err)
	assert.Equal(t, driver.StatusAvailable, d.Status)
	assert.Zero(t, d.TotalDistanceKM)

	v, err := f.store.Vehicles().GetByID(ctx, f.vehicleID)
	require.NoError(t, err)
	assert.Equal(t, vehicle.StatusAvailable, v.Status)
	assert.Zero(t, v.TotalDistanceKM)
}

func TestCancelReleasesWithoutDistance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rd := f.assignedRide(t, 10)

	rd, err := f.svc.CancelRide(ctx, f.admin, rd.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusCancelled, rd.Status)

	d, err := f.store.Drivers().GetByID(ctx, f.driverID)
	require.NoError(t, err)
	assert.Equal(t, driver.StatusAvailable, d.Status)
	assert.Zero(t, d.TotalDistanceKM)

	v, err := f.store.Vehicles().GetByID(ctx, f.vehicleID)
	require.NoError(t, err)
	assert.Equal(t, vehicle.StatusAvailable, v.Status)
	assert.Nil(t, v.CurrentDriverID)

	// Cancelling again conflicts.
	_, err = f.svc.CancelRide(ctx, f.admin, rd.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestCancelAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rd := f.createRide(t, 10)

	stranger := user.Principal{ID: uuid.New(), Role: user.RoleUser}
	_, err := f.svc.CancelRide(ctx, stranger, rd.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))

	// The requester may cancel their own pending ride.
	_, err = f.svc.CancelRide(ctx, f.requester, rd.ID)
	require.NoError(t, err)
}

func TestDeleteOnlyTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rd := f.createRide(t, 10)

	err := f.svc.DeleteRide(ctx, f.requester, rd.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	_, err = f.svc.CancelRide(ctx, f.requester, rd.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteRide(ctx, f.requester, rd.ID))

	_, err = f.svc.GetRide(ctx, f.admin, rd.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestRateRideValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rd := f.assignedRide(t, 10)

	// Not completed yet.
	_, err := f.svc.RateRide(ctx, f.requester, rd.ID, 4)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	_, err = f.svc.StartRide(ctx, f.driver, rd.ID)
	require.NoError(t, err)
	_, err = f.svc.CompleteRide(ctx, f.driver, rd.ID, lifecycle.CompleteRideInput{})
	require.NoError(t, err)

	for _, score := range []int{0, 6, -1} {
		_, err = f.svc.RateRide(ctx, f.requester, rd.ID, score)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation), "score %d", score)
	}

	_, err = f.svc.RateRide(ctx, f.deptHead, rd.ID, 4)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))
}

func TestCreateRideValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   lifecycle.CreateRideInput
	}{
		{
			name: "latitude out of range",
			in: lifecycle.CreateRideInput{
				StartLocation: ride.Location{Latitude: 91, Longitude: 0},
				EndLocation:   ride.Location{Latitude: 13, Longitude: 77},
			},
		},
		{
			name: "longitude out of range",
			in: lifecycle.CreateRideInput{
				StartLocation: ride.Location{Latitude: 12, Longitude: 77},
				EndLocation:   ride.Location{Latitude: 13, Longitude: -181},
			},
		},
		{
			name: "negative distance",
			in: lifecycle.CreateRideInput{
				StartLocation: ride.Location{Latitude: 12, Longitude: 77},
				EndLocation:   ride.Location{Latitude: 13, Longitude: 78},
				DistanceKM:    -1,
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateRide(ctx, f.requester, tc.in)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
		})
	}
}

func TestCreateRideComputesDistance(t *testing.T) {
	f := newFixture(t)
	rd := f.createRide(t, 0)
	// Bengaluru HQ to airport, roughly 28km as the crow flies.
	assert.InDelta(t, 28, rd.DistanceKM, 3)
}

func TestCreateRideWritesOutboxRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createRide(t, 10)

	pending, err := f.store.Notifications().ListUndispatched(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, f.deptHead.ID, pending[0].RecipientID)
}

func TestRatingAggregateAcrossRides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	scores := []int{5, 4}
	for _, score := range scores {
		rd := f.assignedRide(t, 10)
		_, err := f.svc.StartRide(ctx, f.driver, rd.ID)
		require.NoError(t, err)
		_, err = f.svc.CompleteRide(ctx, f.driver, rd.ID, lifecycle.CompleteRideInput{})
		require.NoError(t, err)
		_, err = f.svc.RateRide(ctx, f.requester, rd.ID, score)
		require.NoError(t, err)
	}

	d, err := f.store.Drivers().GetByID(ctx, f.driverID)
	require.NoError(t, err)
	assert.Equal(t, 2, d.RatingCount)
	assert.InDelta(t, 4.5, d.Rating, 0.001)
}
