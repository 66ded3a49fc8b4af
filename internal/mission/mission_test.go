package mission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWaypoints() []Waypoint {
	return []Waypoint{
		{Lat: 37.7749, Lng: -122.4194, Altitude: 100},
		{Lat: 37.7849, Lng: -122.4094, Altitude: 120},
		{Lat: 37.7949, Lng: -122.3994, Altitude: 100},
	}
}

func TestNewCopiesWaypoints(t *testing.T) {
	src := sampleWaypoints()
	m := New(src, 90, 15, nil)

	src[0].Lat = 0 // caller mutation must not leak into the mission
	assert.Equal(t, 37.7749, m.Waypoints[0].Lat)
}

func TestWithWaypointsPreservesParameters(t *testing.T) {
	wx := &Weather{WindSpeed: 8}
	m := New(sampleWaypoints(), 85, 12, wx)

	opt := m.WithWaypoints([]Waypoint{
		{Lat: 37.77, Lng: -122.41, Altitude: 100},
		{Lat: 37.78, Lng: -122.40, Altitude: 100},
	})

	assert.Equal(t, 85.0, opt.BatteryCapacity)
	assert.Equal(t, 12.0, opt.MaxSpeed)
	assert.Same(t, wx, opt.Weather)
	assert.Len(t, opt.Waypoints, 2)
	// Original untouched
	assert.Len(t, m.Waypoints, 3)
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name    string
		mutate  func(*Mission)
		wantErr bool
	}{
		{"valid", func(m *Mission) {}, false},
		{"too_few_waypoints", func(m *Mission) { m.Waypoints = m.Waypoints[:1] }, true},
		{"lat_out_of_range", func(m *Mission) { m.Waypoints[0].Lat = 91 }, true},
		{"lng_out_of_range", func(m *Mission) { m.Waypoints[1].Lng = -181 }, true},
		{"altitude_negative", func(m *Mission) { m.Waypoints[2].Altitude = -1 }, true},
		{"altitude_above_ceiling", func(m *Mission) { m.Waypoints[0].Altitude = 450 }, true},
		{"battery_out_of_range", func(m *Mission) { m.BatteryCapacity = 120 }, true},
		{"zero_speed", func(m *Mission) { m.MaxSpeed = 0 }, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := New(sampleWaypoints(), 90, 15, nil)
			tc.mutate(&m)
			err := m.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRouteLength(t *testing.T) {
	m := New(sampleWaypoints(), 90, 15, nil)

	// Two ~1.4 km hops
	km := m.RouteLengthKm()
	require.Greater(t, km, 2.0)
	require.Less(t, km, 3.5)
	assert.InDelta(t, m.RouteLengthM(), km*1000, 1e-6)
}

func TestWeatherDefaults(t *testing.T) {
	var w *Weather
	assert.Equal(t, 5.0, w.WindOrDefault(5.0))
	assert.Equal(t, 7.5, w.GustOrDefault(7.5))

	w = &Weather{WindSpeed: 12, GustSpeed: 18}
	assert.Equal(t, 12.0, w.WindOrDefault(5.0))
	assert.Equal(t, 18.0, w.GustOrDefault(7.5))
}
