package planner

import (
	"context"
	"math"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/airspace"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/geo"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/mission"
)

// Heatmap grid density per axis.
const heatmapGridSize = 20

// Bounds is a map viewport.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// ZoneFeature is a restricted zone shaped for map rendering.
type ZoneFeature struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	RadiusM  float64 `json:"radius_m"`
	Severity string  `json:"severity"`
}

// HeatPoint is one cell of the risk heatmap.
type HeatPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Risk      float64 `json:"risk"`
	Intensity float64 `json:"intensity"`
}

// NoFlyZones returns the restricted zones intersecting the viewport.
func (s *Service) NoFlyZones(b Bounds) []ZoneFeature {
	out := make([]ZoneFeature, 0, len(s.space.RestrictedZones))
	for _, z := range s.space.RestrictedZones {
		if !zoneIntersects(z, b) {
			continue
		}
		out = append(out, ZoneFeature{
			ID: z.ID, Name: z.Name, Type: z.Type,
			Lat: z.Lat, Lng: z.Lng, RadiusM: z.RadiusM,
			Severity: z.Severity,
		})
	}
	return out
}

// zoneIntersects pads the viewport by the zone radius so zones whose
// center sits just outside still render.
func zoneIntersects(z airspace.Zone, b Bounds) bool {
	pad := z.RadiusM / 111000.0
	return z.Lat >= b.South-pad && z.Lat <= b.North+pad &&
		z.Lng >= b.West-pad && z.Lng <= b.East+pad
}

// RiskHeatmap samples a fixed grid over the viewport and scores each
// cell from the configured airspace: proximity to airports, urban
// areas, and restricted zones. Deterministic for a given viewport.
func (s *Service) RiskHeatmap(b Bounds) []HeatPoint {
	out := make([]HeatPoint, 0, heatmapGridSize*heatmapGridSize)
	for i := 0; i < heatmapGridSize; i++ {
		lat := gridValue(b.South, b.North, i)
		for j := 0; j < heatmapGridSize; j++ {
			lng := gridValue(b.West, b.East, j)
			r := s.cellRisk(lat, lng)
			out = append(out, HeatPoint{Lat: lat, Lng: lng, Risk: r, Intensity: r})
		}
	}
	return out
}

// gridValue interpolates the i-th of heatmapGridSize points across
// [lo, hi], endpoints included.
func gridValue(lo, hi float64, i int) float64 {
	return lo + (hi-lo)*float64(i)/float64(heatmapGridSize-1)
}

func (s *Service) cellRisk(lat, lng float64) float64 {
	p := geo.Point{Lat: lat, Lng: lng}
	risk := 0.3

	for _, z := range s.space.RestrictedZones {
		d := geo.Distance(p, z.Center())
		if z.Type == "airport" && d < z.RadiusM*2 {
			risk += 0.4
		}
		if d < z.RadiusM {
			risk += 0.5
		}
	}
	if s.space.InUrbanArea(lat, lng) {
		risk += 0.2
	}
	return math.Min(1.0, risk)
}

// PointWeather looks up current conditions at a single map location.
func (s *Service) PointWeather(ctx context.Context, lat, lng float64) (*mission.Weather, error) {
	return s.weather.Along(ctx, []mission.Waypoint{{Lat: lat, Lng: lng}})
}
