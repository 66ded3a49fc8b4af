package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Store used when no database is configured.
// Missions and runs survive for the life of the process; the oldest
// missions are evicted once the cap is reached.
type Memory struct {
	mu       sync.RWMutex
	missions map[string]MissionRecord
	runs     map[string][]RunRecord
	order    []string // mission IDs in insertion order, for eviction

	maxMissions int
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithMaxMissions caps how many missions are retained.
func WithMaxMissions(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.maxMissions = n
		}
	}
}

// NewMemory creates an in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		missions:    make(map[string]MissionRecord),
		runs:        make(map[string][]RunRecord),
		maxMissions: 1000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) SaveMission(_ context.Context, rec MissionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.missions[rec.MissionID]; !exists {
		m.order = append(m.order, rec.MissionID)
	}
	m.missions[rec.MissionID] = rec

	for len(m.order) > m.maxMissions {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.missions, oldest)
		delete(m.runs, oldest)
	}
	return nil
}

func (m *Memory) GetMission(_ context.Context, missionID string) (MissionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.missions[missionID]
	if !ok {
		return MissionRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) ListMissions(_ context.Context) ([]MissionSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]MissionSummary, 0, len(m.missions))
	for _, rec := range m.missions {
		out = append(out, MissionSummary{
			MissionID:         rec.MissionID,
			CreatedAt:         rec.CreatedAt,
			RiskScore:         rec.RiskScore,
			TotalDistanceM:    rec.TotalDistanceM,
			EstimatedDuration: rec.EstimatedDuration,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) SaveRun(_ context.Context, rec RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[rec.MissionID] = append(m.runs[rec.MissionID], rec)
	return nil
}

func (m *Memory) ListRuns(_ context.Context, missionID string) ([]RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := m.runs[missionID]
	out := make([]RunRecord, len(runs))
	copy(out, runs)
	return out, nil
}
