package readside_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocomet/fleet-rides/internal/domain/driver"
	"github.com/gocomet/fleet-rides/internal/domain/ride"
	"github.com/gocomet/fleet-rides/internal/domain/user"
	"github.com/gocomet/fleet-rides/internal/domain/vehicle"
	"github.com/gocomet/fleet-rides/internal/service/readside"
	"github.com/gocomet/fleet-rides/internal/storage/memory"
	"github.com/gocomet/fleet-rides/pkg/logger"
)

func TestRideViewDenormalizes(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	requester := &user.User{ID: uuid.New(), Name: "alice", Role: user.RoleUser}
	head := &user.User{ID: uuid.New(), Name: "bob", Role: user.RoleDepartmentHead}
	require.NoError(t, store.Users().Create(ctx, requester))
	require.NoError(t, store.Users().Create(ctx, head))

	d := &driver.Driver{ID: uuid.New(), Name: "erin", Status: driver.StatusBusy, Rating: 4.5}
	require.NoError(t, store.Drivers().Create(ctx, d))
	v := &vehicle.Vehicle{ID: uuid.New(), Plate: "KA01AB1234", Make: "Toyota", Model: "Innova", Status: vehicle.StatusBusy}
	require.NoError(t, store.Vehicles().Create(ctx, v))

	rd := &ride.Ride{
		ID:               uuid.New(),
		RequesterID:      requester.ID,
		DepartmentHeadID: &head.ID,
		DriverID:         &d.ID,
		VehicleID:        &v.ID,
		Status:           ride.StatusAssigned,
		ApprovalStatus:   ride.ApprovalApproved,
	}
	require.NoError(t, store.Rides().Create(ctx, rd))

	svc := readside.NewService(store, nil, logger.NewNop(), time.Minute, time.Minute)
	view, err := svc.RideView(ctx, rd)
	require.NoError(t, err)

	require.NotNil(t, view.Requester)
	assert.Equal(t, "alice", view.Requester.Name)
	require.NotNil(t, view.DepartmentHead)
	assert.Equal(t, "bob", view.DepartmentHead.Name)
	assert.Nil(t, view.ProjectManager)
	require.NotNil(t, view.Driver)
	assert.Equal(t, 4.5, view.Driver.Rating)
	require.NotNil(t, view.Vehicle)
	assert.Equal(t, "KA01AB1234", view.Vehicle.Plate)
}

func TestRideViewToleratesMissingReferences(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	// Requester deleted outside the engine, driver id points nowhere.
	ghost := uuid.New()
	rd := &ride.Ride{
		ID:          uuid.New(),
		RequesterID: uuid.New(),
		DriverID:    &ghost,
		Status:      ride.StatusAssigned,
	}
	require.NoError(t, store.Rides().Create(ctx, rd))

	svc := readside.NewService(store, nil, logger.NewNop(), time.Minute, time.Minute)
	view, err := svc.RideView(ctx, rd)
	require.NoError(t, err)
	assert.Nil(t, view.Requester)
	assert.Nil(t, view.Driver)
	assert.Equal(t, rd.ID, view.Ride.ID)
}

func TestFleetOverviewCounts(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	for _, st := range []driver.Status{driver.StatusAvailable, driver.StatusAvailable, driver.StatusBusy} {
		require.NoError(t, store.Drivers().Create(ctx, &driver.Driver{ID: uuid.New(), Name: "d", Status: st}))
	}
	for _, st := range []vehicle.Status{vehicle.StatusAvailable, vehicle.StatusMaintenance} {
		require.NoError(t, store.Vehicles().Create(ctx, &vehicle.Vehicle{ID: uuid.New(), Plate: "p", Status: st}))
	}
	require.NoError(t, store.Rides().Create(ctx, &ride.Ride{ID: uuid.New(), RequesterID: uuid.New(), Status: ride.StatusOngoing, ApprovalStatus: ride.ApprovalApproved}))
	require.NoError(t, store.Rides().Create(ctx, &ride.Ride{ID: uuid.New(), RequesterID: uuid.New(), Status: ride.StatusCompleted, ApprovalStatus: ride.ApprovalApproved}))

	svc := readside.NewService(store, nil, logger.NewNop(), time.Minute, time.Minute)
	overview, err := svc.FleetOverview(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, overview.Drivers[driver.StatusAvailable])
	assert.Equal(t, 1, overview.Drivers[driver.StatusBusy])
	assert.Equal(t, 1, overview.Vehicles[vehicle.StatusMaintenance])
	assert.Equal(t, 1, overview.ActiveRides)
}
