package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	p := Point{Lat: 37.7749, Lng: -122.4194, Alt: 100}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestDistanceKnownPairs(t *testing.T) {
	for _, tc := range []struct {
		name   string
		a, b   Point
		meters float64
		tol    float64
	}{
		{
			// SF downtown to SFO, ~17 km
			name:   "sf_to_sfo",
			a:      Point{Lat: 37.7749, Lng: -122.4194},
			b:      Point{Lat: 37.6213, Lng: -122.3790},
			meters: 17400,
			tol:    300,
		},
		{
			// One degree of latitude is ~111.2 km
			name:   "one_degree_lat",
			a:      Point{Lat: 37.0, Lng: -122.0},
			b:      Point{Lat: 38.0, Lng: -122.0},
			meters: 111195,
			tol:    100,
		},
		{
			// ~1.4 km diagonal hop used throughout the planner tests
			name:   "short_hop",
			a:      Point{Lat: 37.7749, Lng: -122.4194},
			b:      Point{Lat: 37.7849, Lng: -122.4094},
			meters: 1410,
			tol:    50,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.meters, Distance(tc.a, tc.b), tc.tol)
		})
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := Point{Lat: 37.7749, Lng: -122.4194}
	b := Point{Lat: 37.7949, Lng: -122.3994}
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
}

func TestDistance3DIncludesAltitude(t *testing.T) {
	a := Point{Lat: 37.7749, Lng: -122.4194, Alt: 100}
	b := Point{Lat: 37.7749, Lng: -122.4194, Alt: 400}

	// Pure vertical climb
	assert.InDelta(t, 300, Distance3D(a, b), 1e-9)

	// 3-D distance is never less than horizontal distance
	c := Point{Lat: 37.7849, Lng: -122.4094, Alt: 250}
	assert.GreaterOrEqual(t, Distance3D(a, c), Distance(a, c))
}

func TestBearingVectorMagnitude(t *testing.T) {
	a := Point{Lat: 37.7749, Lng: -122.4194, Alt: 100}
	b := Point{Lat: 37.7849, Lng: -122.4094, Alt: 150}

	vLat, vLng, vAlt := BearingVector(a, b, 15)
	mag := math.Sqrt(vLat*vLat + vLng*vLng + vAlt*vAlt)
	assert.InDelta(t, 15, mag, 1e-9)

	// Northeast climb: all components positive
	assert.Positive(t, vLat)
	assert.Positive(t, vLng)
	assert.Positive(t, vAlt)
}

func TestBearingVectorZeroForSamePoint(t *testing.T) {
	p := Point{Lat: 37.7749, Lng: -122.4194, Alt: 100}
	vLat, vLng, vAlt := BearingVector(p, p, 15)
	assert.Zero(t, vLat)
	assert.Zero(t, vLng)
	assert.Zero(t, vAlt)
}
