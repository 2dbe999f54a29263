package location

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gocomet/fleet-rides/internal/domain/driver"
	"github.com/gocomet/fleet-rides/internal/storage"
	apperrors "github.com/gocomet/fleet-rides/pkg/errors"
	"github.com/gocomet/fleet-rides/pkg/logger"
)

const geoKey = "drivers:locations"

// Tracker keeps driver positions in a Redis geo index for nearby lookups and
// mirrors them into the store. Redis is the hot path; the store write is best
// effort.
type Tracker struct {
	redis  *redis.Client
	store  storage.Store
	logger *logger.Logger
}

// NewTracker creates a driver location tracker. The Redis client may be nil,
// in which case only the store is updated and nearby lookups are unavailable.
func NewTracker(rdb *redis.Client, store storage.Store, log *logger.Logger) *Tracker {
	return &Tracker{redis: rdb, store: store, logger: log}
}

// UpdateDriverLocation records the driver's current position.
func (t *Tracker) UpdateDriverLocation(ctx context.Context, driverID uuid.UUID, lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return apperrors.Validation("latitude/longitude out of range", nil)
	}

	if t.redis != nil {
		if err := t.redis.GeoAdd(ctx, geoKey, &redis.GeoLocation{
			Name:      driverID.String(),
			Longitude: lng,
			Latitude:  lat,
		}).Err(); err != nil {
			t.logger.Error("Failed to update driver geo index",
				logger.String("driver_id", driverID.String()),
				logger.Err(err))
		}
	}

	err := t.store.Drivers().UpdateLocation(ctx, driverID, lat, lng)
	if errors.Is(err, driver.ErrDriverNotFound) {
		return apperrors.NotFound("Driver not found", err)
	}
	return err
}

// NearbyDriver pairs a driver with its distance from the query point.
type NearbyDriver struct {
	Driver     *driver.Driver `json:"driver"`
	DistanceKM float64        `json:"distance_km"`
}

// NearbyAvailableDrivers returns available drivers within radiusKM of the
// point, nearest first, at most count of them.
func (t *Tracker) NearbyAvailableDrivers(ctx context.Context, lat, lng, radiusKM float64, count int) ([]NearbyDriver, error) {
	if t.redis == nil {
		return nil, apperrors.PreconditionFailed("Nearby driver search requires Redis", nil)
	}

	results, err := t.redis.GeoRadius(ctx, geoKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:   radiusKM,
		Unit:     "km",
		WithDist: true,
		Count:    count,
		Sort:     "ASC",
	}).Result()
	if err != nil {
		return nil, apperrors.Internal("Nearby driver search failed", err)
	}

	nearby := make([]NearbyDriver, 0, len(results))
	for _, res := range results {
		id, err := uuid.Parse(res.Name)
		if err != nil {
			continue
		}
		d, err := t.store.Drivers().GetByID(ctx, id)
		if errors.Is(err, driver.ErrDriverNotFound) {
			// Stale geo entry, driver was removed.
			continue
		}
		if err != nil {
			return nil, err
		}
		if !d.IsAvailable() {
			continue
		}
		nearby = append(nearby, NearbyDriver{Driver: d, DistanceKM: res.Dist})
	}
	return nearby, nil
}
