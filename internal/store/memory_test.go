package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/mission"
)

func testMission(id string, createdAt time.Time) MissionRecord {
	return MissionRecord{
		MissionID: id,
		Waypoints: []mission.Waypoint{
			{Lat: 37.77, Lng: -122.42, Altitude: 100},
			{Lat: 37.78, Lng: -122.41, Altitude: 100},
		},
		BatteryCapacity: 90,
		MaxSpeed:        15,
		RiskScore:       0.25,
		CreatedAt:       createdAt,
	}
}

func TestMemorySaveAndGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	rec := testMission("mission_a", time.Now())
	require.NoError(t, m.SaveMission(ctx, rec))

	got, err := m.GetMission(ctx, "mission_a")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = m.GetMission(ctx, "mission_b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	base := time.Now()
	require.NoError(t, m.SaveMission(ctx, testMission("mission_old", base.Add(-time.Hour))))
	require.NoError(t, m.SaveMission(ctx, testMission("mission_new", base)))

	list, err := m.ListMissions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "mission_new", list[0].MissionID)
	assert.Equal(t, "mission_old", list[1].MissionID)
}

func TestMemoryEvictsOldestBeyondCap(t *testing.T) {
	m := NewMemory(WithMaxMissions(2))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("mission_%d", i)
		require.NoError(t, m.SaveMission(ctx, testMission(id, time.Now())))
	}

	_, err := m.GetMission(ctx, "mission_0")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.GetMission(ctx, "mission_2")
	assert.NoError(t, err)
}

func TestMemoryRuns(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SaveRun(ctx, RunRecord{SimulationID: "sim_1", MissionID: "mission_a"}))
	require.NoError(t, m.SaveRun(ctx, RunRecord{SimulationID: "sim_2", MissionID: "mission_a"}))

	runs, err := m.ListRuns(ctx, "mission_a")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "sim_1", runs[0].SimulationID)

	empty, err := m.ListRuns(ctx, "mission_x")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryUpdateDoesNotDuplicate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	rec := testMission("mission_a", time.Now())
	require.NoError(t, m.SaveMission(ctx, rec))
	rec.RiskScore = 0.9
	require.NoError(t, m.SaveMission(ctx, rec))

	list, err := m.ListMissions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0.9, list[0].RiskScore)
}
