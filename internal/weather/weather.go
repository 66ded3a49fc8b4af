// Package weather supplies wind and sky conditions along a route. The
// planner only needs a snapshot near the route, so providers look up
// conditions at the route's average position.
package weather

import (
	"context"
	"math/rand"
	"sync"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/mission"
)

// Provider fetches conditions for a route.
type Provider interface {
	Along(ctx context.Context, waypoints []mission.Waypoint) (*mission.Weather, error)
}

// Defaults returns safe fallback conditions, used when no provider is
// configured or a lookup fails.
func Defaults() *mission.Weather {
	return &mission.Weather{
		WindSpeed:     5.0,
		GustSpeed:     7.0,
		WindDirection: 180,
		Temperature:   20.0,
		Humidity:      60.0,
		Visibility:    10.0,
		Precipitation: 0.0,
		CloudCover:    30.0,
	}
}

// averagePosition returns the route centroid, or false for an empty
// route.
func averagePosition(waypoints []mission.Waypoint) (lat, lng float64, ok bool) {
	if len(waypoints) == 0 {
		return 0, 0, false
	}
	for _, wp := range waypoints {
		lat += wp.Lat
		lng += wp.Lng
	}
	n := float64(len(waypoints))
	return lat / n, lng / n, true
}

// ---------------------------------------------------------------------------
// Static provider
// ---------------------------------------------------------------------------

// Static always returns the same snapshot. Useful for tests and for
// pinning conditions from configuration.
type Static struct {
	Snapshot mission.Weather
}

func (s Static) Along(_ context.Context, _ []mission.Waypoint) (*mission.Weather, error) {
	w := s.Snapshot
	return &w, nil
}

// ---------------------------------------------------------------------------
// Simulated provider
// ---------------------------------------------------------------------------

// Simulated generates plausible coastal conditions with random
// variation around a windy baseline. The zero value is not usable; see
// NewSimulated.
type Simulated struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated creates a simulated provider seeded for reproducibility.
func NewSimulated(seed int64) *Simulated {
	return &Simulated{rng: rand.New(rand.NewSource(seed))}
}

func (s *Simulated) Along(_ context.Context, waypoints []mission.Waypoint) (*mission.Weather, error) {
	if _, _, ok := averagePosition(waypoints); !ok {
		return Defaults(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	variation := s.uniform(-3, 5)
	return &mission.Weather{
		WindSpeed:     max0(8.0 + variation),
		GustSpeed:     max0(12.0 + variation*1.5),
		WindDirection: s.uniform(0, 360),
		Temperature:   s.uniform(15, 25),
		Humidity:      s.uniform(40, 80),
		Visibility:    s.uniform(8, 15),
		Precipitation: s.precipitation(),
		CloudCover:    s.uniform(20, 80),
	}, nil
}

func (s *Simulated) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// precipitation is dry most of the time, with occasional drizzle.
func (s *Simulated) precipitation() float64 {
	choices := []float64{0, 0, 0, 0.1, 0.5}
	return choices[s.rng.Intn(len(choices))]
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// ---------------------------------------------------------------------------
// Forecast
// ---------------------------------------------------------------------------

// ForecastPoint is one hour of the short-range forecast.
type ForecastPoint struct {
	Hour       int             `json:"forecast_hour"`
	Conditions mission.Weather `json:"conditions"`
}

// Forecast projects conditions over the next few hours by sampling the
// provider and trending the wind upward slightly per hour.
func Forecast(ctx context.Context, p Provider, waypoints []mission.Waypoint, hoursAhead int) ([]ForecastPoint, error) {
	out := make([]ForecastPoint, 0, hoursAhead)
	for hour := 0; hour < hoursAhead; hour++ {
		w, err := p.Along(ctx, waypoints)
		if err != nil {
			return nil, err
		}
		w.WindSpeed *= 1.0 + float64(hour)*0.1
		out = append(out, ForecastPoint{Hour: hour + 1, Conditions: *w})
	}
	return out, nil
}
