package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS missions (
	id                 SERIAL PRIMARY KEY,
	mission_id         TEXT UNIQUE NOT NULL,
	name               TEXT,
	description        TEXT,
	waypoints          JSONB NOT NULL,
	battery_capacity   DOUBLE PRECISION NOT NULL DEFAULT 100,
	max_speed          DOUBLE PRECISION NOT NULL DEFAULT 15,
	risk_score         DOUBLE PRECISION,
	total_distance     DOUBLE PRECISION,
	estimated_duration DOUBLE PRECISION,
	optimized_route    JSONB,
	risk_breakdown     JSONB,
	warnings           JSONB,
	weather            JSONB,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	is_completed       BOOLEAN NOT NULL DEFAULT false
);
CREATE INDEX IF NOT EXISTS idx_missions_mission_id ON missions (mission_id);

CREATE TABLE IF NOT EXISTS simulation_runs (
	id               SERIAL PRIMARY KEY,
	simulation_id    TEXT UNIQUE NOT NULL,
	mission_id       TEXT NOT NULL,
	speed_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1.0,
	simulation_data  JSONB,
	success          BOOLEAN,
	total_duration   DOUBLE PRECISION,
	final_battery    DOUBLE PRECISION,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_simulation_runs_mission_id ON simulation_runs (mission_id);
`

// Postgres implements Store on a PostgreSQL database.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects to the database and ensures the schema exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) SaveMission(ctx context.Context, rec MissionRecord) error {
	waypoints, err := json.Marshal(rec.Waypoints)
	if err != nil {
		return fmt.Errorf("encoding waypoints: %w", err)
	}
	route, err := json.Marshal(rec.OptimizedRoute)
	if err != nil {
		return fmt.Errorf("encoding optimized route: %w", err)
	}
	breakdown, err := json.Marshal(rec.RiskBreakdown)
	if err != nil {
		return fmt.Errorf("encoding risk breakdown: %w", err)
	}
	warnings, err := json.Marshal(rec.Warnings)
	if err != nil {
		return fmt.Errorf("encoding warnings: %w", err)
	}
	weather, err := json.Marshal(rec.Weather)
	if err != nil {
		return fmt.Errorf("encoding weather: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO missions (
			mission_id, name, description, waypoints, battery_capacity,
			max_speed, risk_score, total_distance, estimated_duration,
			optimized_route, risk_breakdown, warnings, weather, is_completed
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (mission_id) DO UPDATE SET
			risk_score = EXCLUDED.risk_score,
			total_distance = EXCLUDED.total_distance,
			estimated_duration = EXCLUDED.estimated_duration,
			optimized_route = EXCLUDED.optimized_route,
			risk_breakdown = EXCLUDED.risk_breakdown,
			warnings = EXCLUDED.warnings,
			weather = EXCLUDED.weather,
			is_completed = EXCLUDED.is_completed,
			updated_at = now()`,
		rec.MissionID, rec.Name, rec.Description, waypoints, rec.BatteryCapacity,
		rec.MaxSpeed, rec.RiskScore, rec.TotalDistanceM, rec.EstimatedDuration,
		route, breakdown, warnings, weather, rec.IsCompleted,
	)
	if err != nil {
		return fmt.Errorf("saving mission %s: %w", rec.MissionID, err)
	}
	return nil
}

func (p *Postgres) GetMission(ctx context.Context, missionID string) (MissionRecord, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT mission_id, COALESCE(name, ''), COALESCE(description, ''),
		       waypoints, battery_capacity, max_speed,
		       COALESCE(risk_score, 0), COALESCE(total_distance, 0),
		       COALESCE(estimated_duration, 0),
		       COALESCE(optimized_route, 'null'), COALESCE(risk_breakdown, 'null'),
		       COALESCE(warnings, 'null'), COALESCE(weather, 'null'),
		       created_at, updated_at, is_completed
		FROM missions WHERE mission_id = $1`, missionID)

	var rec MissionRecord
	var waypoints, route, breakdown, warnings, weather []byte
	err := row.Scan(
		&rec.MissionID, &rec.Name, &rec.Description,
		&waypoints, &rec.BatteryCapacity, &rec.MaxSpeed,
		&rec.RiskScore, &rec.TotalDistanceM, &rec.EstimatedDuration,
		&route, &breakdown, &warnings, &weather,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.IsCompleted,
	)
	if err == sql.ErrNoRows {
		return MissionRecord{}, ErrNotFound
	}
	if err != nil {
		return MissionRecord{}, fmt.Errorf("loading mission %s: %w", missionID, err)
	}

	if err := json.Unmarshal(waypoints, &rec.Waypoints); err != nil {
		return MissionRecord{}, fmt.Errorf("decoding waypoints: %w", err)
	}
	if err := json.Unmarshal(route, &rec.OptimizedRoute); err != nil {
		return MissionRecord{}, fmt.Errorf("decoding optimized route: %w", err)
	}
	if err := json.Unmarshal(breakdown, &rec.RiskBreakdown); err != nil {
		return MissionRecord{}, fmt.Errorf("decoding risk breakdown: %w", err)
	}
	if err := json.Unmarshal(warnings, &rec.Warnings); err != nil {
		return MissionRecord{}, fmt.Errorf("decoding warnings: %w", err)
	}
	if err := json.Unmarshal(weather, &rec.Weather); err != nil {
		return MissionRecord{}, fmt.Errorf("decoding weather: %w", err)
	}
	return rec, nil
}

func (p *Postgres) ListMissions(ctx context.Context) ([]MissionSummary, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT mission_id, created_at, COALESCE(risk_score, 0),
		       COALESCE(total_distance, 0), COALESCE(estimated_duration, 0)
		FROM missions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing missions: %w", err)
	}
	defer rows.Close()

	var out []MissionSummary
	for rows.Next() {
		var s MissionSummary
		if err := rows.Scan(&s.MissionID, &s.CreatedAt, &s.RiskScore, &s.TotalDistanceM, &s.EstimatedDuration); err != nil {
			return nil, fmt.Errorf("scanning mission row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) SaveRun(ctx context.Context, rec RunRecord) error {
	states, err := json.Marshal(rec.States)
	if err != nil {
		return fmt.Errorf("encoding simulation states: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO simulation_runs (
			simulation_id, mission_id, speed_multiplier, simulation_data,
			success, total_duration, final_battery
		) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rec.SimulationID, rec.MissionID, rec.SpeedMultiplier, states,
		rec.Success, rec.TotalDurationS, rec.FinalBattery,
	)
	if err != nil {
		return fmt.Errorf("saving simulation run %s: %w", rec.SimulationID, err)
	}
	return nil
}

func (p *Postgres) ListRuns(ctx context.Context, missionID string) ([]RunRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT simulation_id, mission_id, speed_multiplier,
		       COALESCE(simulation_data, 'null'), COALESCE(success, false),
		       COALESCE(total_duration, 0), COALESCE(final_battery, 0), created_at
		FROM simulation_runs WHERE mission_id = $1 ORDER BY created_at DESC`, missionID)
	if err != nil {
		return nil, fmt.Errorf("listing runs for %s: %w", missionID, err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var states []byte
		if err := rows.Scan(&rec.SimulationID, &rec.MissionID, &rec.SpeedMultiplier,
			&states, &rec.Success, &rec.TotalDurationS, &rec.FinalBattery, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		if err := json.Unmarshal(states, &rec.States); err != nil {
			return nil, fmt.Errorf("decoding simulation states: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
