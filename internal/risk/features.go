// Package risk scores the probability of an unsafe outcome for a
// mission and attributes that score to named risk categories.
//
// Scoring is a pluggable capability: when a learned Model is supplied
// it is used, and any absence or failure falls back to a deterministic
// rule-based score. No path through this package returns an error to
// the caller.
package risk

import (
	"math"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/airspace"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/geo"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/mission"
)

// NumFeatures is the width of the feature vector.
const NumFeatures = 12

// FeatureNames lists the features in contract order. The order is part
// of the model contract: a learned model's weights are aligned to it,
// so it must never be reordered without re-deriving the model.
var FeatureNames = [NumFeatures]string{
	"route_length_km",
	"avg_altitude",
	"max_altitude",
	"min_distance_to_no_fly",
	"wind_speed_avg",
	"gust_max",
	"battery_margin",
	"waypoints_over_buildings",
	"line_of_sight_flag",
	"terrain_roughness",
	"weather_severity",
	"route_complexity",
}

// FeatureVector holds the 12 numeric features derived from a Mission.
type FeatureVector struct {
	RouteLengthKm          float64
	AvgAltitude            float64
	MaxAltitude            float64
	MinDistanceToNoFly     float64 // meters
	WindSpeedAvg           float64 // m/s
	GustMax                float64 // m/s
	BatteryMargin          float64 // percent remaining after consumption estimate
	WaypointsOverBuildings float64 // count
	LineOfSightFlag        float64 // 0 or 1
	TerrainRoughness       float64
	WeatherSeverity        float64
	RouteComplexity        float64
}

// Values returns the features as an array in contract order.
func (f FeatureVector) Values() [NumFeatures]float64 {
	return [NumFeatures]float64{
		f.RouteLengthKm,
		f.AvgAltitude,
		f.MaxAltitude,
		f.MinDistanceToNoFly,
		f.WindSpeedAvg,
		f.GustMax,
		f.BatteryMargin,
		f.WaypointsOverBuildings,
		f.LineOfSightFlag,
		f.TerrainRoughness,
		f.WeatherSeverity,
		f.RouteComplexity,
	}
}

// safeDefaults is returned for missions with fewer than 2 waypoints:
// a short benign route instead of an error.
func safeDefaults() FeatureVector {
	return FeatureVector{
		RouteLengthKm:          1.0,
		AvgAltitude:            100.0,
		MaxAltitude:            100.0,
		MinDistanceToNoFly:     1000.0,
		WindSpeedAvg:           5.0,
		GustMax:                7.0,
		BatteryMargin:          50.0,
		WaypointsOverBuildings: 0,
		LineOfSightFlag:        1,
		TerrainRoughness:       0.1,
		WeatherSeverity:        0.2,
		RouteComplexity:        0.1,
	}
}

// maxSegmentLosKm is the longest segment that still counts as within
// visual line of sight.
const maxSegmentLosKm = 5.0

// ExtractFeatures computes the feature vector for a mission against
// the given airspace. All values are finite for any valid input.
func ExtractFeatures(m mission.Mission, space airspace.Config) FeatureVector {
	if len(m.Waypoints) < 2 {
		return safeDefaults()
	}

	routeKm := m.RouteLengthKm()

	sumAlt, maxAlt := 0.0, 0.0
	for _, wp := range m.Waypoints {
		sumAlt += wp.Altitude
		if wp.Altitude > maxAlt {
			maxAlt = wp.Altitude
		}
	}
	avgAlt := sumAlt / float64(len(m.Waypoints))

	wind := m.Weather.WindOrDefault(5.0)
	gust := m.Weather.GustOrDefault(wind * 1.5)

	return FeatureVector{
		RouteLengthKm:          routeKm,
		AvgAltitude:            avgAlt,
		MaxAltitude:            maxAlt,
		MinDistanceToNoFly:     minDistanceToNoFly(m.Waypoints, space),
		WindSpeedAvg:           wind,
		GustMax:                gust,
		BatteryMargin:          batteryMargin(m, routeKm, maxAlt),
		WaypointsOverBuildings: float64(countOverUrban(m.Waypoints, space)),
		LineOfSightFlag:        boolToFlag(lineOfSight(m.Waypoints)),
		TerrainRoughness:       terrainRoughness(m.Waypoints, space),
		WeatherSeverity:        math.Min(1.0, wind/15.0),
		RouteComplexity:        routeComplexity(m.Waypoints, routeKm),
	}
}

// minDistanceToNoFly returns the minimum distance in meters from any
// waypoint to any restricted-zone center.
func minDistanceToNoFly(wps []mission.Waypoint, space airspace.Config) float64 {
	min := math.Inf(1)
	for _, wp := range wps {
		if d := space.MinZoneDistance(wp.Point()); d < min {
			min = d
		}
	}
	if math.IsInf(min, 1) {
		return 10000.0
	}
	return min
}

// batteryMargin estimates the battery percentage left after flying the
// route: 2 %/km base rate scaled by a max-altitude factor and, when a
// weather snapshot is present, a wind resistance factor. Clamped at 0.
func batteryMargin(m mission.Mission, routeKm, maxAlt float64) float64 {
	const baseRate = 2.0 // %/km

	altitudeFactor := maxAlt / 100.0
	windFactor := 1.0
	if m.Weather != nil {
		windFactor = 1.0 + (m.Weather.WindSpeed/10.0)*0.3
	}

	consumed := routeKm * baseRate * altitudeFactor * windFactor
	return math.Max(0.0, m.BatteryCapacity-consumed)
}

func countOverUrban(wps []mission.Waypoint, space airspace.Config) int {
	count := 0
	for _, wp := range wps {
		if space.InUrbanArea(wp.Lat, wp.Lng) {
			count++
		}
	}
	return count
}

// lineOfSight reports whether every segment stays under the visual
// range limit.
func lineOfSight(wps []mission.Waypoint) bool {
	for i := 0; i < len(wps)-1; i++ {
		if geo.DistanceKm(wps[i].Point(), wps[i+1].Point()) > maxSegmentLosKm {
			return false
		}
	}
	return true
}

// terrainRoughness is the mean per-waypoint roughness: 0.8 over hilly
// regions, 0.2 elsewhere.
func terrainRoughness(wps []mission.Waypoint, space airspace.Config) float64 {
	if len(wps) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, wp := range wps {
		if space.InHillyArea(wp.Lat, wp.Lng) {
			sum += 0.8
		} else {
			sum += 0.2
		}
	}
	return sum / float64(len(wps))
}

// routeComplexity accumulates direction changes over interior
// waypoints, normalized by route length and capped at 1.
func routeComplexity(wps []mission.Waypoint, routeKm float64) float64 {
	if len(wps) < 3 {
		return 0.1
	}

	totalTurn := 0.0
	for i := 1; i < len(wps)-1; i++ {
		v1Lat := wps[i].Lat - wps[i-1].Lat
		v1Lng := wps[i].Lng - wps[i-1].Lng
		v2Lat := wps[i+1].Lat - wps[i].Lat
		v2Lng := wps[i+1].Lng - wps[i].Lng
		totalTurn += math.Abs(v1Lat-v2Lat) + math.Abs(v1Lng-v2Lng)
	}

	complexity := (totalTurn*100 + float64(len(wps))) / math.Max(1.0, routeKm)
	return math.Min(1.0, complexity)
}

func boolToFlag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
