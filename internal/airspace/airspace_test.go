package airspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/geo"
)

func TestRegionContains(t *testing.T) {
	r := Region{MinLat: 37.77, MaxLat: 37.79, MinLng: -122.42, MaxLng: -122.40}

	assert.True(t, r.Contains(37.78, -122.41))
	assert.False(t, r.Contains(37.80, -122.41))
	assert.False(t, r.Contains(37.78, -122.39))
	// Boundary is exclusive
	assert.False(t, r.Contains(37.77, -122.41))
}

func TestMinZoneDistance(t *testing.T) {
	cfg := SanFrancisco()

	// Exactly at the SFO zone center
	assert.Equal(t, 0.0, cfg.MinZoneDistance(geo.Point{Lat: 37.621311, Lng: -122.378968}))

	// Downtown SF is well clear of both zones
	d := cfg.MinZoneDistance(geo.Point{Lat: 37.7749, Lng: -122.4194})
	assert.Greater(t, d, 1000.0)

	// No zones configured: reports the "far away" sentinel
	empty := Config{}
	assert.Equal(t, 10000.0, empty.MinZoneDistance(geo.Point{Lat: 37.77, Lng: -122.41}))
}

func TestUrbanAndHillyPredicates(t *testing.T) {
	cfg := SanFrancisco()

	assert.True(t, cfg.InUrbanArea(37.78, -122.41))
	assert.False(t, cfg.InUrbanArea(37.70, -122.41))

	assert.True(t, cfg.InHillyArea(37.76, -122.43))
	assert.False(t, cfg.InHillyArea(37.76, -122.41))
}

func TestTerrainPenaltyOrder(t *testing.T) {
	cfg := SanFrancisco()

	// Downtown carries the higher obstacle penalty
	assert.Equal(t, 100.0, cfg.TerrainPenalty(37.78, -122.41))
	// Hills carry the moderate penalty
	assert.Equal(t, 50.0, cfg.TerrainPenalty(37.76, -122.43))
	// Open space is free
	assert.Equal(t, 0.0, cfg.TerrainPenalty(37.70, -122.48))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "airspace.yaml")

	doc := `
restricted_zones:
  - id: test_zone
    name: Test Zone
    type: airport
    lat: 40.0
    lng: -100.0
    radius_m: 1500
    severity: high
urban_areas:
  - name: city
    min_lat: 39.9
    max_lat: 40.1
    min_lng: -100.1
    max_lng: -99.9
terrain_regions:
  - name: city
    min_lat: 39.9
    max_lat: 40.1
    min_lng: -100.1
    max_lng: -99.9
    penalty: 75
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	require.Len(t, cfg.RestrictedZones, 1)
	assert.Equal(t, "test_zone", cfg.RestrictedZones[0].ID)
	assert.Equal(t, 1500.0, cfg.RestrictedZones[0].RadiusM)
	assert.True(t, cfg.InUrbanArea(40.0, -100.0))
	assert.Equal(t, 75.0, cfg.TerrainPenalty(40.0, -100.0))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("does/not/exist.yaml")
	assert.Error(t, err)
}
