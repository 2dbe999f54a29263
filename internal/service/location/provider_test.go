package location

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gocomet/fleet-rides/internal/domain/ride"
)

func TestHaversineDistance(t *testing.T) {
	p := NewHaversineProvider()

	cases := []struct {
		name       string
		start, end ride.Location
		wantKM     float64
		tolerance  float64
	}{
		{
			name:      "same point",
			start:     ride.Location{Latitude: 12.9716, Longitude: 77.5946},
			end:       ride.Location{Latitude: 12.9716, Longitude: 77.5946},
			wantKM:    0,
			tolerance: 0.001,
		},
		{
			name:      "bengaluru city to airport",
			start:     ride.Location{Latitude: 12.9716, Longitude: 77.5946},
			end:       ride.Location{Latitude: 13.1986, Longitude: 77.7066},
			wantKM:    28,
			tolerance: 2,
		},
		{
			name:      "london to paris",
			start:     ride.Location{Latitude: 51.5074, Longitude: -0.1278},
			end:       ride.Location{Latitude: 48.8566, Longitude: 2.3522},
			wantKM:    344,
			tolerance: 5,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := p.DistanceKM(tc.start, tc.end)
			assert.InDelta(t, tc.wantKM, got, tc.tolerance)
		})
	}
}

func TestHaversineSymmetry(t *testing.T) {
	p := NewHaversineProvider()
	a := ride.Location{Latitude: 12.9716, Longitude: 77.5946}
	b := ride.Location{Latitude: 13.1986, Longitude: 77.7066}
	assert.InDelta(t, p.DistanceKM(a, b), p.DistanceKM(b, a), 0.0001)
}
