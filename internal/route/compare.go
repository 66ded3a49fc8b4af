package route

import (
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/geo"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/mission"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/risk"
)

// Comparison reports how an optimized route stacks up against the
// original for mission summaries.
type Comparison struct {
	OriginalDistanceKm  float64 `json:"original_distance_km"`
	OptimizedDistanceKm float64 `json:"optimized_distance_km"`
	DistanceIncreasePct float64 `json:"distance_increase_pct"`
	OriginalRisk        float64 `json:"original_risk_score"`
	OptimizedRisk       float64 `json:"optimized_risk_score"`
	RiskReductionPct    float64 `json:"risk_reduction_pct"`
	// EfficiencyRatio is optimized risk per kilometer; lower is better.
	EfficiencyRatio float64 `json:"efficiency_ratio"`
}

// Compare scores both routes under the mission's parameters and
// returns the deltas.
func Compare(original, optimized []mission.Waypoint, scorer *risk.Scorer, m mission.Mission) Comparison {
	c := Comparison{
		OriginalDistanceKm:  routeDistanceKm(original),
		OptimizedDistanceKm: routeDistanceKm(optimized),
		OriginalRisk:        scorer.Score(m.WithWaypoints(original)),
		OptimizedRisk:       scorer.Score(m.WithWaypoints(optimized)),
	}

	if c.OriginalDistanceKm > 0 {
		c.DistanceIncreasePct = (c.OptimizedDistanceKm - c.OriginalDistanceKm) / c.OriginalDistanceKm * 100
	}
	if c.OriginalRisk > 0 {
		c.RiskReductionPct = (c.OriginalRisk - c.OptimizedRisk) / c.OriginalRisk * 100
	}
	if c.OptimizedDistanceKm > 0 {
		c.EfficiencyRatio = c.OptimizedRisk / c.OptimizedDistanceKm
	}
	return c
}

func routeDistanceKm(wps []mission.Waypoint) float64 {
	total := 0.0
	for i := 0; i < len(wps)-1; i++ {
		total += geo.DistanceKm(wps[i].Point(), wps[i+1].Point())
	}
	return total
}
