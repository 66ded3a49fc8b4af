// Package planner is the service layer tying the planning pipeline
// together: weather lookup, risk scoring, route optimization,
// simulation, and optional persistence.
package planner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/airspace"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/mission"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/risk"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/route"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/sim"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/store"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/weather"
)

// Speed multiplier bounds for simulation requests.
const (
	minSpeedMultiplier = 0.1
	maxSpeedMultiplier = 5.0
)

// Warning thresholds on the per-category risk breakdown.
const (
	weatherWarnThreshold = 0.6
	batteryWarnThreshold = 0.7
	noFlyWarnThreshold   = 0.5
	terrainWarnThreshold = 0.6
)

// Service runs the mission planning pipeline. The store is optional;
// without one the service plans statelessly and simulates a built-in
// demo mission.
type Service struct {
	space     airspace.Config
	scorer    *risk.Scorer
	optimizer *route.Optimizer
	simulator *sim.Simulator
	weather   weather.Provider
	store     store.Store
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithStore attaches mission persistence.
func WithStore(st store.Store) ServiceOption {
	return func(s *Service) { s.store = st }
}

// WithWeatherProvider overrides the weather source.
func WithWeatherProvider(p weather.Provider) ServiceOption {
	return func(s *Service) { s.weather = p }
}

// NewService wires a planning service over the given airspace.
func NewService(space airspace.Config, scorer *risk.Scorer, opts ...ServiceOption) *Service {
	s := &Service{
		space:     space,
		scorer:    scorer,
		optimizer: route.NewOptimizer(space, scorer),
		simulator: sim.NewSimulator(space),
		weather:   weather.Static{Snapshot: *weather.Defaults()},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlanRequest is a mission to plan.
type PlanRequest struct {
	Waypoints       []mission.Waypoint `json:"waypoints"`
	BatteryCapacity float64            `json:"battery_capacity"`
	MaxSpeed        float64            `json:"max_speed"`
}

// PlanResult is the planned mission: the optimized route, its risk
// assessment, and flight estimates.
type PlanResult struct {
	MissionID         string             `json:"mission_id"`
	RiskScore         float64            `json:"risk_score"`
	EstimatedDuration float64            `json:"estimated_duration"` // seconds
	TotalDistanceM    float64            `json:"total_distance"`
	OptimizedRoute    []mission.Waypoint `json:"optimized_route"`
	RiskBreakdown     risk.Breakdown     `json:"risk_breakdown"`
	Warnings          []string           `json:"warnings"`
	Weather           *mission.Weather   `json:"weather"`
	Comparison        route.Comparison   `json:"comparison"`
	CreatedAt         time.Time          `json:"created_at"`
}

// Plan assesses, optimizes, and optionally persists a mission.
func (s *Service) Plan(ctx context.Context, req PlanRequest) (PlanResult, error) {
	m := mission.New(req.Waypoints, req.BatteryCapacity, req.MaxSpeed, nil)
	if err := m.Validate(); err != nil {
		return PlanResult{}, fmt.Errorf("invalid mission: %w", err)
	}

	wx, err := s.weather.Along(ctx, m.Waypoints)
	if err != nil {
		log.Printf("Weather lookup failed, using defaults: %v", err)
		wx = weather.Defaults()
	}
	m.Weather = wx

	initialRisk := s.scorer.Score(m)

	optimized := s.optimizer.Optimize(m)
	optimizedRisk := s.scorer.Score(optimized)
	breakdown := s.scorer.Explain(optimized)
	warnings := generateWarnings(breakdown)

	totalDistance := optimized.RouteLengthM()
	estimatedDuration := totalDistance / m.MaxSpeed

	result := PlanResult{
		MissionID:         "mission_" + uuid.NewString(),
		RiskScore:         optimizedRisk,
		EstimatedDuration: estimatedDuration,
		TotalDistanceM:    totalDistance,
		OptimizedRoute:    optimized.Waypoints,
		RiskBreakdown:     breakdown,
		Warnings:          warnings,
		Weather:           wx,
		Comparison:        route.Compare(m.Waypoints, optimized.Waypoints, s.scorer, m),
		CreatedAt:         time.Now().UTC(),
	}

	log.Printf("Mission %s planned: risk %.3f -> %.3f, %d warnings",
		result.MissionID, initialRisk, optimizedRisk, len(warnings))

	if s.store != nil {
		rec := store.MissionRecord{
			MissionID:         result.MissionID,
			Waypoints:         m.Waypoints,
			BatteryCapacity:   m.BatteryCapacity,
			MaxSpeed:          m.MaxSpeed,
			RiskScore:         optimizedRisk,
			TotalDistanceM:    totalDistance,
			EstimatedDuration: estimatedDuration,
			OptimizedRoute:    optimized.Waypoints,
			RiskBreakdown:     breakdown,
			Warnings:          warnings,
			Weather:           wx,
			CreatedAt:         result.CreatedAt,
			UpdatedAt:         result.CreatedAt,
		}
		if err := s.store.SaveMission(ctx, rec); err != nil {
			return PlanResult{}, fmt.Errorf("persisting mission: %w", err)
		}
	}
	return result, nil
}

// GetMission loads a stored mission.
func (s *Service) GetMission(ctx context.Context, missionID string) (store.MissionRecord, error) {
	if s.store == nil {
		return store.MissionRecord{}, store.ErrNotFound
	}
	return s.store.GetMission(ctx, missionID)
}

// ListMissions lists stored missions, newest first.
func (s *Service) ListMissions(ctx context.Context) ([]store.MissionSummary, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListMissions(ctx)
}

// SimulationResult is a completed simulation run.
type SimulationResult struct {
	MissionID    string `json:"mission_id"`
	SimulationID string `json:"simulation_id"`
	sim.Result
}

// Simulate runs a stored mission through the flight simulator. Without
// a store it flies a small built-in demo mission so the endpoint stays
// usable headless. The speed multiplier is clamped to a sane range.
func (s *Service) Simulate(ctx context.Context, missionID string, speedMultiplier float64) (SimulationResult, error) {
	speedMultiplier = clampMultiplier(speedMultiplier)

	m, err := s.missionForSimulation(ctx, missionID)
	if err != nil {
		return SimulationResult{}, err
	}

	res, err := s.simulator.Run(m, speedMultiplier)
	if err != nil {
		return SimulationResult{}, fmt.Errorf("simulating mission %s: %w", missionID, err)
	}

	out := SimulationResult{
		MissionID:    missionID,
		SimulationID: "sim_" + uuid.NewString(),
		Result:       res,
	}

	if s.store != nil {
		rec := store.RunRecord{
			SimulationID:    out.SimulationID,
			MissionID:       missionID,
			SpeedMultiplier: speedMultiplier,
			States:          res.States,
			Success:         res.Success,
			TotalDurationS:  res.TotalDurationS,
			FinalBattery:    res.FinalBattery,
			CreatedAt:       time.Now().UTC(),
		}
		if err := s.store.SaveRun(ctx, rec); err != nil {
			return SimulationResult{}, fmt.Errorf("persisting simulation run: %w", err)
		}
	}
	return out, nil
}

// missionForSimulation reconstructs the flyable mission: the optimized
// route of the stored record, or the demo mission when stateless.
func (s *Service) missionForSimulation(ctx context.Context, missionID string) (mission.Mission, error) {
	if s.store == nil {
		return demoMission(), nil
	}

	rec, err := s.store.GetMission(ctx, missionID)
	if err != nil {
		return mission.Mission{}, fmt.Errorf("loading mission %s: %w", missionID, err)
	}

	wps := rec.OptimizedRoute
	if len(wps) == 0 {
		wps = rec.Waypoints
	}
	return mission.New(wps, rec.BatteryCapacity, rec.MaxSpeed, rec.Weather), nil
}

func demoMission() mission.Mission {
	return mission.New([]mission.Waypoint{
		{Lat: 37.7749, Lng: -122.4194, Altitude: 100},
		{Lat: 37.7849, Lng: -122.4094, Altitude: 120},
	}, 80, 12, &mission.Weather{WindSpeed: 5, GustSpeed: 7})
}

func clampMultiplier(v float64) float64 {
	if v < minSpeedMultiplier {
		return minSpeedMultiplier
	}
	if v > maxSpeedMultiplier {
		return maxSpeedMultiplier
	}
	return v
}

// generateWarnings turns the risk breakdown into operator-facing
// warnings.
func generateWarnings(breakdown risk.Breakdown) []string {
	var warnings []string
	if breakdown[risk.CategoryWeather] > weatherWarnThreshold {
		warnings = append(warnings, "High wind conditions detected along route")
	}
	if breakdown[risk.CategoryBattery] > batteryWarnThreshold {
		warnings = append(warnings, "Insufficient battery for safe return - consider shorter route")
	}
	if breakdown[risk.CategoryNoFly] > noFlyWarnThreshold {
		warnings = append(warnings, "Route passes near restricted airspace")
	}
	if breakdown[risk.CategoryTerrain] > terrainWarnThreshold {
		warnings = append(warnings, "Challenging terrain detected - maintain safe altitude")
	}
	return warnings
}
