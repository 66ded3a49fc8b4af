package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/airspace"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/mission"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/risk"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/store"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/weather"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	missions map[string]store.MissionRecord
	runs     map[string][]store.RunRecord
}

func newMemStore() *memStore {
	return &memStore{
		missions: make(map[string]store.MissionRecord),
		runs:     make(map[string][]store.RunRecord),
	}
}

func (m *memStore) SaveMission(_ context.Context, rec store.MissionRecord) error {
	m.missions[rec.MissionID] = rec
	return nil
}

func (m *memStore) GetMission(_ context.Context, id string) (store.MissionRecord, error) {
	rec, ok := m.missions[id]
	if !ok {
		return store.MissionRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (m *memStore) ListMissions(_ context.Context) ([]store.MissionSummary, error) {
	out := make([]store.MissionSummary, 0, len(m.missions))
	for _, rec := range m.missions {
		out = append(out, store.MissionSummary{
			MissionID:         rec.MissionID,
			CreatedAt:         rec.CreatedAt,
			RiskScore:         rec.RiskScore,
			TotalDistanceM:    rec.TotalDistanceM,
			EstimatedDuration: rec.EstimatedDuration,
		})
	}
	return out, nil
}

func (m *memStore) SaveRun(_ context.Context, rec store.RunRecord) error {
	m.runs[rec.MissionID] = append(m.runs[rec.MissionID], rec)
	return nil
}

func (m *memStore) ListRuns(_ context.Context, missionID string) ([]store.RunRecord, error) {
	return m.runs[missionID], nil
}

type failingWeather struct{}

func (failingWeather) Along(context.Context, []mission.Waypoint) (*mission.Weather, error) {
	return nil, errors.New("upstream unavailable")
}

func newTestService(opts ...ServiceOption) *Service {
	space := airspace.SanFrancisco()
	return NewService(space, risk.NewScorer(space), opts...)
}

func testPlanRequest() PlanRequest {
	return PlanRequest{
		Waypoints: []mission.Waypoint{
			{Lat: 37.700, Lng: -122.480, Altitude: 100},
			{Lat: 37.710, Lng: -122.470, Altitude: 100},
		},
		BatteryCapacity: 90,
		MaxSpeed:        15,
	}
}

func TestPlanProducesCompleteResult(t *testing.T) {
	svc := newTestService()

	res, err := svc.Plan(context.Background(), testPlanRequest())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.MissionID, "mission_"))
	assert.GreaterOrEqual(t, res.RiskScore, 0.0)
	assert.LessOrEqual(t, res.RiskScore, 1.0)
	require.NotEmpty(t, res.OptimizedRoute)
	assert.Equal(t, 37.700, res.OptimizedRoute[0].Lat)
	assert.Greater(t, res.TotalDistanceM, 0.0)
	assert.InDelta(t, res.TotalDistanceM/15.0, res.EstimatedDuration, 1e-9)
	assert.NotNil(t, res.Weather)
	assert.False(t, res.CreatedAt.IsZero())

	// All six categories present in the breakdown
	for _, cat := range []string{
		risk.CategoryWeather, risk.CategoryBattery, risk.CategoryNoFly,
		risk.CategoryTerrain, risk.CategoryRoute, risk.CategoryAltitude,
	} {
		_, ok := res.RiskBreakdown[cat]
		assert.True(t, ok, "missing category %s", cat)
	}
}

func TestPlanRejectsInvalidMission(t *testing.T) {
	svc := newTestService()

	req := testPlanRequest()
	req.Waypoints = req.Waypoints[:1]
	_, err := svc.Plan(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mission")
}

func TestPlanFallsBackOnWeatherError(t *testing.T) {
	svc := newTestService(WithWeatherProvider(failingWeather{}))

	res, err := svc.Plan(context.Background(), testPlanRequest())
	require.NoError(t, err)
	assert.Equal(t, weather.Defaults(), res.Weather)
}

func TestPlanPersistsMission(t *testing.T) {
	st := newMemStore()
	svc := newTestService(WithStore(st))

	res, err := svc.Plan(context.Background(), testPlanRequest())
	require.NoError(t, err)

	rec, err := st.GetMission(context.Background(), res.MissionID)
	require.NoError(t, err)
	assert.Equal(t, res.RiskScore, rec.RiskScore)
	assert.Equal(t, res.OptimizedRoute, rec.OptimizedRoute)
	assert.Len(t, rec.Waypoints, 2)
}

func TestGetMissionWithoutStore(t *testing.T) {
	svc := newTestService()

	_, err := svc.GetMission(context.Background(), "mission_x")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSimulateHeadlessUsesDemoMission(t *testing.T) {
	svc := newTestService()

	res, err := svc.Simulate(context.Background(), "mission_demo", 1.0)
	require.NoError(t, err)

	assert.Equal(t, "mission_demo", res.MissionID)
	assert.True(t, strings.HasPrefix(res.SimulationID, "sim_"))
	assert.NotEmpty(t, res.States)
	assert.True(t, res.Success)
}

func TestSimulateStoredMissionPersistsRun(t *testing.T) {
	st := newMemStore()
	svc := newTestService(WithStore(st))

	planned, err := svc.Plan(context.Background(), testPlanRequest())
	require.NoError(t, err)

	res, err := svc.Simulate(context.Background(), planned.MissionID, 2.0)
	require.NoError(t, err)
	assert.NotEmpty(t, res.States)

	runs, err := st.ListRuns(context.Background(), planned.MissionID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.SimulationID, runs[0].SimulationID)
	assert.Equal(t, 2.0, runs[0].SpeedMultiplier)
}

func TestSimulateUnknownMission(t *testing.T) {
	svc := newTestService(WithStore(newMemStore()))

	_, err := svc.Simulate(context.Background(), "mission_missing", 1.0)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestClampMultiplier(t *testing.T) {
	assert.Equal(t, 0.1, clampMultiplier(0))
	assert.Equal(t, 0.1, clampMultiplier(-3))
	assert.Equal(t, 1.0, clampMultiplier(1.0))
	assert.Equal(t, 5.0, clampMultiplier(12))
}

func TestGenerateWarnings(t *testing.T) {
	tests := []struct {
		name      string
		breakdown risk.Breakdown
		want      int
	}{
		{"all calm", risk.Breakdown{}, 0},
		{"high wind", risk.Breakdown{risk.CategoryWeather: 0.7}, 1},
		{"at threshold is quiet", risk.Breakdown{risk.CategoryWeather: 0.6}, 0},
		{"battery and airspace", risk.Breakdown{
			risk.CategoryBattery: 0.8,
			risk.CategoryNoFly:   0.6,
		}, 2},
		{"everything", risk.Breakdown{
			risk.CategoryWeather: 0.9,
			risk.CategoryBattery: 0.9,
			risk.CategoryNoFly:   0.9,
			risk.CategoryTerrain: 0.9,
		}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, generateWarnings(tt.breakdown), tt.want)
		})
	}
}

func TestGenerateWarningTexts(t *testing.T) {
	got := generateWarnings(risk.Breakdown{
		risk.CategoryWeather: 0.9,
		risk.CategoryNoFly:   0.9,
	})
	assert.Contains(t, got, "High wind conditions detected along route")
	assert.Contains(t, got, "Route passes near restricted airspace")
}
