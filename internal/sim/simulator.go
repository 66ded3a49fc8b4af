// Package sim is a physics-lite flight simulator: it flies a mission
// step by step, draining battery against distance, climb and wind, and
// tracking the instantaneous risk at each position.
package sim

import (
	"fmt"
	"math"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/airspace"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/geo"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/mission"
)

const (
	// TimeStepS is the simulation tick in seconds.
	TimeStepS = 0.5

	// batteryRatePerKm is the base consumption in percent per km.
	batteryRatePerKm = 2.0

	// windEffectFactor scales how much headwind eats into airspeed.
	windEffectFactor = 0.3

	// successBatteryMargin is the reserve required at mission end for
	// the run to count as a success.
	successBatteryMargin = 10.0

	// minSegmentSteps keeps even tiny segments sampled densely enough
	// for a smooth playback.
	minSegmentSteps = 10
)

// State is one simulation tick.
type State struct {
	Timestamp float64    `json:"timestamp"` // seconds since start
	Position  geo.Point  `json:"position"`
	Velocity  [3]float64 `json:"velocity"` // m/s, lat/lng/alt components
	Battery   float64    `json:"battery"`  // percent remaining
	RiskLevel float64    `json:"risk_level"`
	Speed     float64    `json:"speed"` // m/s ground speed
}

// Result is the outcome of a full mission run.
type Result struct {
	States         []State `json:"simulation_steps"`
	TotalDurationS float64 `json:"total_duration"`
	Success        bool    `json:"success"`
	FinalBattery   float64 `json:"final_battery"`
	TotalDistanceM float64 `json:"total_distance"`
}

// Simulator flies missions through the given airspace.
type Simulator struct {
	space airspace.Config
}

// NewSimulator creates a simulator over the given airspace.
func NewSimulator(space airspace.Config) *Simulator {
	return &Simulator{space: space}
}

// Run simulates the mission end to end at the given speed multiplier.
// The mission fails early if the battery depletes mid-flight; success
// requires finishing with more than the safety margin remaining.
func (s *Simulator) Run(m mission.Mission, speedMultiplier float64) (Result, error) {
	if len(m.Waypoints) < 2 {
		return Result{}, fmt.Errorf("mission must have at least 2 waypoints, got %d", len(m.Waypoints))
	}

	battery := m.BatteryCapacity
	timestamp := 0.0
	var states []State

	for i := 0; i < len(m.Waypoints)-1; i++ {
		segStates, depleted := s.flySegment(m.Waypoints[i], m.Waypoints[i+1], m, speedMultiplier, battery, timestamp)
		states = append(states, segStates...)

		if len(segStates) > 0 {
			last := segStates[len(segStates)-1]
			battery = last.Battery
			timestamp = last.Timestamp
		}
		if depleted {
			break
		}
	}

	finalBattery := 0.0
	if len(states) > 0 {
		finalBattery = states[len(states)-1].Battery
	}

	return Result{
		States:         states,
		TotalDurationS: float64(len(states)) * TimeStepS,
		Success:        finalBattery > successBatteryMargin,
		FinalBattery:   finalBattery,
		TotalDistanceM: totalDistance(states),
	}, nil
}

// flySegment simulates one waypoint-to-waypoint leg, linearly
// interpolating position over the step count. Returns the states
// produced and whether the battery depleted mid-segment.
func (s *Simulator) flySegment(start, end mission.Waypoint, m mission.Mission, speedMultiplier, battery, timestamp float64) ([]State, bool) {
	segmentDistance := geo.Distance(
		geo.Point{Lat: start.Lat, Lng: start.Lng},
		geo.Point{Lat: end.Lat, Lng: end.Lng},
	)
	altitudeChange := end.Altitude - start.Altitude

	totalSteps := minSegmentSteps
	if n := int(segmentDistance / (m.MaxSpeed * TimeStepS * speedMultiplier)); n > totalSteps {
		totalSteps = n
	}

	targetSpeed := m.MaxSpeed * speedMultiplier
	windSpeed := m.Weather.WindOrDefault(0)
	effectiveSpeed := math.Max(0, targetSpeed-windSpeed*windEffectFactor)

	// Battery cost per tick: distance flown, scaled up for climbs and
	// wind resistance.
	distanceStep := segmentDistance / float64(totalSteps)
	altitudeFactor := 1.0 + math.Abs(altitudeChange)/1000.0
	windFactor := 1.0 + windSpeed/10.0
	stepConsumption := (distanceStep / 1000.0) * batteryRatePerKm * altitudeFactor * windFactor

	vLat, vLng, vAlt := geo.BearingVector(start.Point(), end.Point(), effectiveSpeed)

	states := make([]State, 0, totalSteps)
	for step := 0; step < totalSteps; step++ {
		progress := 1.0
		if totalSteps > 1 {
			progress = float64(step) / float64(totalSteps-1)
		}

		pos := geo.Point{
			Lat: start.Lat + (end.Lat-start.Lat)*progress,
			Lng: start.Lng + (end.Lng-start.Lng)*progress,
			Alt: start.Altitude + altitudeChange*progress,
		}

		battery = math.Max(0, battery-stepConsumption)
		timestamp += TimeStepS

		states = append(states, State{
			Timestamp: timestamp,
			Position:  pos,
			Velocity:  [3]float64{vLat, vLng, vAlt},
			Battery:   battery,
			RiskLevel: s.positionRisk(pos, m),
			Speed:     effectiveSpeed,
		})

		if battery <= 0 {
			return states, true
		}
	}
	return states, false
}

// positionRisk scores the instantaneous risk at a position: altitude
// band, wind, and proximity to restricted zones.
func (s *Simulator) positionRisk(pos geo.Point, m mission.Mission) float64 {
	risk := 0.0

	if pos.Alt > 200 {
		risk += 0.1
	}
	if pos.Alt < 80 {
		risk += 0.2
	}

	wind := m.Weather.WindOrDefault(0)
	if wind > 12 {
		risk += 0.3
	} else if wind > 8 {
		risk += 0.1
	}

	zoneDist := s.space.MinZoneDistance(pos)
	if zoneDist < 500 {
		risk += 0.5
	} else if zoneDist < 1000 {
		risk += 0.2
	}

	return math.Min(1.0, risk)
}

func totalDistance(states []State) float64 {
	total := 0.0
	for i := 1; i < len(states); i++ {
		total += geo.Distance(
			geo.Point{Lat: states[i-1].Position.Lat, Lng: states[i-1].Position.Lng},
			geo.Point{Lat: states[i].Position.Lat, Lng: states[i].Position.Lng},
		)
	}
	return total
}
