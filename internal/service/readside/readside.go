// Package readside serves the denormalized read views: a ride projection with
// driver, vehicle and approver summaries, and a fleet-wide status overview.
// Views are cached in Redis with short TTLs; the ride view key embeds the
// ride's version, so a stale cache entry can never outlive a write.
package readside

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gocomet/fleet-rides/internal/domain/driver"
	"github.com/gocomet/fleet-rides/internal/domain/ride"
	"github.com/gocomet/fleet-rides/internal/domain/user"
	"github.com/gocomet/fleet-rides/internal/domain/vehicle"
	"github.com/gocomet/fleet-rides/internal/storage"
	"github.com/gocomet/fleet-rides/pkg/logger"
)

// Service builds the read views.
type Service struct {
	store       storage.Store
	redis       *redis.Client
	logger      *logger.Logger
	rideTTL     time.Duration
	overviewTTL time.Duration
}

// NewService creates the readside service. The Redis client may be nil; views
// are then built from the store on every call.
func NewService(store storage.Store, rdb *redis.Client, log *logger.Logger, rideTTL, overviewTTL time.Duration) *Service {
	return &Service{
		store:       store,
		redis:       rdb,
		logger:      log,
		rideTTL:     rideTTL,
		overviewTTL: overviewTTL,
	}
}

// PersonSummary is the compact user block embedded in ride views.
type PersonSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// DriverSummary is the compact driver block embedded in ride views.
type DriverSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Rating float64   `json:"rating"`
}

// VehicleSummary is the compact vehicle block embedded in ride views.
type VehicleSummary struct {
	ID    uuid.UUID `json:"id"`
	Plate string    `json:"plate"`
	Make  string    `json:"make"`
	Model string    `json:"model"`
}

// RideView is the denormalized ride projection.
type RideView struct {
	Ride           *ride.Ride      `json:"ride"`
	Requester      *PersonSummary  `json:"requester,omitempty"`
	DepartmentHead *PersonSummary  `json:"department_head,omitempty"`
	ProjectManager *PersonSummary  `json:"project_manager,omitempty"`
	Driver         *DriverSummary  `json:"driver,omitempty"`
	Vehicle        *VehicleSummary `json:"vehicle,omitempty"`
}

// RideView assembles the projection for an already-authorized ride.
func (s *Service) RideView(ctx context.Context, rd *ride.Ride) (*RideView, error) {
	key := fmt.Sprintf("ride:view:%s:%d", rd.ID, rd.Version)
	if view, ok := s.cached(ctx, key, &RideView{}); ok {
		return view.(*RideView), nil
	}

	view := &RideView{Ride: rd}
	view.Requester = s.personSummary(ctx, &rd.RequesterID)
	view.DepartmentHead = s.personSummary(ctx, rd.DepartmentHeadID)
	view.ProjectManager = s.personSummary(ctx, rd.ProjectManagerID)

	if rd.DriverID != nil {
		d, err := s.store.Drivers().GetByID(ctx, *rd.DriverID)
		if err != nil && !errors.Is(err, driver.ErrDriverNotFound) {
			return nil, err
		}
		if d != nil {
			view.Driver = &DriverSummary{ID: d.ID, Name: d.Name, Rating: d.Rating}
		}
	}
	if rd.VehicleID != nil {
		v, err := s.store.Vehicles().GetByID(ctx, *rd.VehicleID)
		if err != nil && !errors.Is(err, vehicle.ErrVehicleNotFound) {
			return nil, err
		}
		if v != nil {
			view.Vehicle = &VehicleSummary{ID: v.ID, Plate: v.Plate, Make: v.Make, Model: v.Model}
		}
	}

	s.cache(ctx, key, view, s.rideTTL)
	return view, nil
}

// FleetOverview is the fleet-wide status snapshot.
type FleetOverview struct {
	Drivers     map[driver.Status]int  `json:"drivers"`
	Vehicles    map[vehicle.Status]int `json:"vehicles"`
	ActiveRides int                    `json:"active_rides"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// FleetOverview counts drivers and vehicles per status plus rides in flight.
func (s *Service) FleetOverview(ctx context.Context) (*FleetOverview, error) {
	const key = "fleet:overview"
	if view, ok := s.cached(ctx, key, &FleetOverview{}); ok {
		return view.(*FleetOverview), nil
	}

	drivers, err := s.store.Drivers().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.store.Vehicles().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.store.Rides().CountActive(ctx)
	if err != nil {
		return nil, err
	}

	view := &FleetOverview{
		Drivers:     drivers,
		Vehicles:    vehicles,
		ActiveRides: active,
		GeneratedAt: time.Now(),
	}
	s.cache(ctx, key, view, s.overviewTTL)
	return view, nil
}

func (s *Service) personSummary(ctx context.Context, id *uuid.UUID) *PersonSummary {
	if id == nil {
		return nil
	}
	u, err := s.store.Users().GetByID(ctx, *id)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn("Failed to load user for ride view",
			logger.String("user_id", id.String()),
			logger.Err(err))
		return nil
	}
	return &PersonSummary{ID: u.ID, Name: u.Name}
}

// cached loads a view from Redis into dst. Cache errors are treated as misses.
func (s *Service) cached(ctx context.Context, key string, dst any) (any, bool) {
	if s.redis == nil {
		return nil, false
	}
	raw, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("View cache read failed", logger.String("key", key), logger.Err(err))
		}
		return nil, false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, false
	}
	return dst, true
}

func (s *Service) cache(ctx context.Context, key string, view any, ttl time.Duration) {
	if s.redis == nil || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, raw, ttl).Err(); err != nil {
		s.logger.Warn("View cache write failed", logger.String("key", key), logger.Err(err))
	}
}
