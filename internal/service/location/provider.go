// Package location supplies planned-distance estimates when the caller does
// not provide one. Real geocoding lives outside the engine; this provider
// only needs coordinates.
package location

import (
	"math"

	"github.com/gocomet/fleet-rides/internal/domain/ride"
)

// Provider estimates the distance between two points in kilometers.
type Provider interface {
	DistanceKM(start, end ride.Location) float64
}

// HaversineProvider computes great-circle distance.
type HaversineProvider struct{}

// NewHaversineProvider creates the default provider.
func NewHaversineProvider() *HaversineProvider {
	return &HaversineProvider{}
}

// DistanceKM calculates haversine distance between the two locations
func (p *HaversineProvider) DistanceKM(start, end ride.Location) float64 {
	const earthRadius = 6371 // kilometers

	dLat := toRadians(end.Latitude - start.Latitude)
	dLon := toRadians(end.Longitude - start.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(start.Latitude))*math.Cos(toRadians(end.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
