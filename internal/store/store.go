// Package store persists planned missions and simulation runs in
// PostgreSQL. Planning works without a store; persistence is an
// optional layer the service wires in when a database URL is
// configured.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/mission"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/risk"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/sim"
)

// ErrNotFound is returned when a mission or run does not exist.
var ErrNotFound = errors.New("not found")

// MissionRecord is a planned mission with its results.
type MissionRecord struct {
	MissionID         string             `json:"mission_id"`
	Name              string             `json:"name,omitempty"`
	Description       string             `json:"description,omitempty"`
	Waypoints         []mission.Waypoint `json:"waypoints"`
	BatteryCapacity   float64            `json:"battery_capacity"`
	MaxSpeed          float64            `json:"max_speed"`
	RiskScore         float64            `json:"risk_score"`
	TotalDistanceM    float64            `json:"total_distance"`
	EstimatedDuration float64            `json:"estimated_duration"`
	OptimizedRoute    []mission.Waypoint `json:"optimized_route"`
	RiskBreakdown     risk.Breakdown     `json:"risk_breakdown"`
	Warnings          []string           `json:"warnings"`
	Weather           *mission.Weather   `json:"weather,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	IsCompleted       bool               `json:"is_completed"`
}

// MissionSummary is the listing view of a mission.
type MissionSummary struct {
	MissionID         string    `json:"mission_id"`
	CreatedAt         time.Time `json:"created_at"`
	RiskScore         float64   `json:"risk_score"`
	TotalDistanceM    float64   `json:"total_distance"`
	EstimatedDuration float64   `json:"estimated_duration"`
}

// RunRecord is one simulation run of a stored mission.
type RunRecord struct {
	SimulationID    string      `json:"simulation_id"`
	MissionID       string      `json:"mission_id"`
	SpeedMultiplier float64     `json:"speed_multiplier"`
	States          []sim.State `json:"simulation_data"`
	Success         bool        `json:"success"`
	TotalDurationS  float64     `json:"total_duration"`
	FinalBattery    float64     `json:"final_battery"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Store is the persistence surface the planner depends on.
type Store interface {
	SaveMission(ctx context.Context, rec MissionRecord) error
	GetMission(ctx context.Context, missionID string) (MissionRecord, error)
	ListMissions(ctx context.Context) ([]MissionSummary, error)
	SaveRun(ctx context.Context, rec RunRecord) error
	ListRuns(ctx context.Context, missionID string) ([]RunRecord, error)
}
