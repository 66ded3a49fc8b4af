// Package airspace holds the environment data the planner is
// configured with: restricted zones, urban areas, and terrain regions.
// Components receive a Config at construction instead of reaching for
// package-level globals, so tests can plug in their own geography.
package airspace

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/geo"
)

// Zone is a restricted area modeled as a center point with an
// avoidance radius.
type Zone struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Type     string  `yaml:"type"` // airport, military, ...
	Lat      float64 `yaml:"lat"`
	Lng      float64 `yaml:"lng"`
	RadiusM  float64 `yaml:"radius_m"`
	Severity string  `yaml:"severity"`
}

// Center returns the zone center as a geo.Point.
func (z Zone) Center() geo.Point {
	return geo.Point{Lat: z.Lat, Lng: z.Lng}
}

// Region is an axis-aligned lat/lng bounding box.
type Region struct {
	Name   string  `yaml:"name"`
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
	MinLng float64 `yaml:"min_lng"`
	MaxLng float64 `yaml:"max_lng"`
}

// Contains reports whether the point lies strictly inside the region.
func (r Region) Contains(lat, lng float64) bool {
	return lat > r.MinLat && lat < r.MaxLat && lng > r.MinLng && lng < r.MaxLng
}

// TerrainRegion is a region that carries a flat route-cost penalty for
// the optimizer (obstacles, hills).
type TerrainRegion struct {
	Region  `yaml:",inline"`
	Penalty float64 `yaml:"penalty"`
}

// Config bundles all environment data for one deployment area.
type Config struct {
	RestrictedZones []Zone          `yaml:"restricted_zones"`
	UrbanAreas      []Region        `yaml:"urban_areas"`
	HillyAreas      []Region        `yaml:"hilly_areas"`
	TerrainRegions  []TerrainRegion `yaml:"terrain_regions"`
}

// SanFrancisco returns the default deployment area used by the demo
// service: SFO plus a restricted military area, downtown as the urban
// region, and the central hills.
func SanFrancisco() Config {
	return Config{
		RestrictedZones: []Zone{
			{
				ID: "airport_sfo", Name: "San Francisco International Airport",
				Type: "airport", Lat: 37.621311, Lng: -122.378968,
				RadiusM: 2000, Severity: "high",
			},
			{
				ID: "military_base_1", Name: "Restricted Military Area",
				Type: "military", Lat: 37.759859, Lng: -122.447151,
				RadiusM: 1000, Severity: "critical",
			},
		},
		UrbanAreas: []Region{
			{Name: "sf_downtown", MinLat: 37.77, MaxLat: 37.79, MinLng: -122.42, MaxLng: -122.40},
		},
		HillyAreas: []Region{
			{Name: "sf_hills", MinLat: 37.75, MaxLat: 37.78, MinLng: -122.45, MaxLng: -122.42},
		},
		TerrainRegions: []TerrainRegion{
			{
				Region:  Region{Name: "sf_downtown", MinLat: 37.77, MaxLat: 37.79, MinLng: -122.42, MaxLng: -122.40},
				Penalty: 100.0,
			},
			{
				Region:  Region{Name: "sf_hills", MinLat: 37.75, MaxLat: 37.78, MinLng: -122.45, MaxLng: -122.42},
				Penalty: 50.0,
			},
		},
	}
}

// LoadFile reads a Config from a YAML file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read airspace config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse airspace config: %w", err)
	}
	return cfg, nil
}

// MinZoneDistance returns the distance in meters from the point to the
// nearest restricted-zone center. With no zones configured it returns
// 10000 (far enough to not register as a risk).
func (c Config) MinZoneDistance(p geo.Point) float64 {
	min := math.Inf(1)
	for _, z := range c.RestrictedZones {
		if d := geo.Distance(p, z.Center()); d < min {
			min = d
		}
	}
	if math.IsInf(min, 1) {
		return 10000.0
	}
	return min
}

// InUrbanArea reports whether the point is over any urban region.
func (c Config) InUrbanArea(lat, lng float64) bool {
	for _, r := range c.UrbanAreas {
		if r.Contains(lat, lng) {
			return true
		}
	}
	return false
}

// InHillyArea reports whether the point is over any hilly region.
func (c Config) InHillyArea(lat, lng float64) bool {
	for _, r := range c.HillyAreas {
		if r.Contains(lat, lng) {
			return true
		}
	}
	return false
}

// TerrainPenalty returns the route-cost penalty of the first terrain
// region containing the point, or 0.
func (c Config) TerrainPenalty(lat, lng float64) float64 {
	for _, tr := range c.TerrainRegions {
		if tr.Contains(lat, lng) {
			return tr.Penalty
		}
	}
	return 0
}
