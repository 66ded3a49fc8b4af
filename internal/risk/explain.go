package risk

import (
	"log"
	"math"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/mission"
)

// Risk breakdown category names.
const (
	CategoryWeather  = "weather_risk"
	CategoryBattery  = "battery_risk"
	CategoryNoFly    = "no_fly_risk"
	CategoryTerrain  = "terrain_risk"
	CategoryRoute    = "route_risk"
	CategoryAltitude = "altitude_risk"
)

// Breakdown attributes a risk score to named categories, each in [0,1].
type Breakdown map[string]float64

// Explain produces a per-category risk breakdown for a mission.
//
// With a learned model the per-feature attributions are grouped into
// the six categories and rescaled by the maximum category, so at least
// one category reaches 1.0 whenever any attribution is nonzero. The
// fallback path returns its raw formula values without renormalizing;
// the two paths intentionally keep the behavior of the deployed
// system rather than converging.
func (s *Scorer) Explain(m mission.Mission) Breakdown {
	if s.model != nil {
		fv := s.Features(m)
		attr, err := s.model.Attribute(fv)
		if err == nil {
			return groupAttributions(attr)
		}
		log.Printf("Risk model attribution failed, using fallback explanation: %v", err)
	}
	return s.fallbackExplain(m)
}

// Feature indexes into an attribution array, fixed by FeatureNames.
const (
	idxRouteLength = iota
	idxAvgAltitude
	idxMaxAltitude
	idxMinDistNoFly
	idxWindSpeed
	idxGustMax
	idxBatteryMargin
	idxOverBuildings
	idxLineOfSight
	idxRoughness
	idxSeverity
	idxComplexity
)

// groupAttributions folds per-feature attributions into categories and
// rescales every category by the maximum one.
func groupAttributions(attr [NumFeatures]float64) Breakdown {
	b := Breakdown{
		CategoryWeather:  math.Max(0, attr[idxWindSpeed]+attr[idxGustMax]+attr[idxSeverity]) / 3,
		CategoryBattery:  math.Abs(attr[idxBatteryMargin]),
		CategoryNoFly:    math.Abs(attr[idxMinDistNoFly]),
		CategoryTerrain:  math.Max(0, attr[idxRoughness]+attr[idxOverBuildings]) / 2,
		CategoryRoute:    math.Max(0, attr[idxRouteLength]+attr[idxComplexity]) / 2,
		CategoryAltitude: math.Max(0, attr[idxAvgAltitude]+attr[idxMaxAltitude]) / 2,
	}

	maxVal := 0.0
	for _, v := range b {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal > 0 {
		for k, v := range b {
			b[k] = clamp01(v / maxVal)
		}
	}
	return b
}

// fallbackExplain is the deterministic explanation used when no model
// attribution is available.
func (s *Scorer) fallbackExplain(m mission.Mission) Breakdown {
	fv := s.Features(m)
	wind := m.Weather.WindOrDefault(0)

	return Breakdown{
		CategoryWeather:  math.Min(1.0, wind/20.0),
		CategoryBattery:  math.Max(0.0, (30.0-fv.BatteryMargin)/30.0),
		CategoryNoFly:    math.Max(0.0, (1000.0-fv.MinDistanceToNoFly)/1000.0),
		CategoryTerrain:  0.2,
		CategoryRoute:    math.Min(1.0, fv.RouteLengthKm/15.0),
		CategoryAltitude: 0.1,
	}
}
