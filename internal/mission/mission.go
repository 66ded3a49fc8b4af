// Package mission defines the immutable value types describing a UAV
// mission: the ordered waypoint route plus vehicle and environment
// parameters.
package mission

import (
	"fmt"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/geo"
)

// Waypoint is a single 3-D point on a route. Insertion order in a
// Mission is flight order.
type Waypoint struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Altitude float64 `json:"altitude"`
}

// Point converts the waypoint to a geo.Point.
func (w Waypoint) Point() geo.Point {
	return geo.Point{Lat: w.Lat, Lng: w.Lng, Alt: w.Altitude}
}

// Weather is a snapshot of conditions along the route. A nil *Weather
// on a Mission means "use safe defaults".
type Weather struct {
	WindSpeed     float64 `json:"wind_speed"`     // m/s
	GustSpeed     float64 `json:"gust_speed"`     // m/s
	WindDirection float64 `json:"wind_direction"` // degrees
	Temperature   float64 `json:"temperature"`    // Celsius
	Humidity      float64 `json:"humidity"`       // percent
	Visibility    float64 `json:"visibility"`     // km
	Precipitation float64 `json:"precipitation"`  // mm/hr
	CloudCover    float64 `json:"cloud_cover"`    // percent
}

// WindOrDefault returns the snapshot wind speed, or def when the
// snapshot is absent.
func (w *Weather) WindOrDefault(def float64) float64 {
	if w == nil {
		return def
	}
	return w.WindSpeed
}

// GustOrDefault returns the snapshot gust speed, or def when absent.
func (w *Weather) GustOrDefault(def float64) float64 {
	if w == nil {
		return def
	}
	return w.GustSpeed
}

// Mission is an ordered route plus vehicle parameters. Treat values as
// immutable once planning starts: the optimizer returns a new Mission
// rather than mutating its input.
type Mission struct {
	Waypoints       []Waypoint `json:"waypoints"`
	BatteryCapacity float64    `json:"battery_capacity"` // percent, 0-100
	MaxSpeed        float64    `json:"max_speed"`        // m/s
	Weather         *Weather   `json:"weather,omitempty"`
}

// New builds a Mission with a defensive copy of the waypoint slice.
func New(waypoints []Waypoint, batteryCapacity, maxSpeed float64, weather *Weather) Mission {
	wps := make([]Waypoint, len(waypoints))
	copy(wps, waypoints)
	return Mission{
		Waypoints:       wps,
		BatteryCapacity: batteryCapacity,
		MaxSpeed:        maxSpeed,
		Weather:         weather,
	}
}

// WithWaypoints returns a copy of the mission carrying a different
// route but the same vehicle and weather parameters.
func (m Mission) WithWaypoints(waypoints []Waypoint) Mission {
	return New(waypoints, m.BatteryCapacity, m.MaxSpeed, m.Weather)
}

// Validate checks the boundary constraints on a mission. The core
// components define behavior for short routes rather than failing, so
// this is meant for the API edge.
func (m Mission) Validate() error {
	if len(m.Waypoints) < 2 {
		return fmt.Errorf("mission needs at least 2 waypoints, got %d", len(m.Waypoints))
	}
	for i, wp := range m.Waypoints {
		if wp.Lat < -90 || wp.Lat > 90 {
			return fmt.Errorf("waypoint %d: latitude %v out of range [-90,90]", i, wp.Lat)
		}
		if wp.Lng < -180 || wp.Lng > 180 {
			return fmt.Errorf("waypoint %d: longitude %v out of range [-180,180]", i, wp.Lng)
		}
		if wp.Altitude < 0 || wp.Altitude > 400 {
			return fmt.Errorf("waypoint %d: altitude %v out of range [0,400]", i, wp.Altitude)
		}
	}
	if m.BatteryCapacity < 0 || m.BatteryCapacity > 100 {
		return fmt.Errorf("battery capacity %v out of range [0,100]", m.BatteryCapacity)
	}
	if m.MaxSpeed <= 0 {
		return fmt.Errorf("max speed must be positive, got %v", m.MaxSpeed)
	}
	return nil
}

// RouteLengthM returns the sum of segment great-circle distances in
// meters.
func (m Mission) RouteLengthM() float64 {
	total := 0.0
	for i := 0; i < len(m.Waypoints)-1; i++ {
		total += geo.Distance(m.Waypoints[i].Point(), m.Waypoints[i+1].Point())
	}
	return total
}

// RouteLengthKm returns the route length in kilometers.
func (m Mission) RouteLengthKm() float64 {
	return m.RouteLengthM() / 1000.0
}
