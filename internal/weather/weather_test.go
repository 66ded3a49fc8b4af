package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/mission"
)

var testRoute = []mission.Waypoint{
	{Lat: 37.7749, Lng: -122.4194, Altitude: 100},
	{Lat: 37.7849, Lng: -122.4094, Altitude: 120},
}

func TestDefaults(t *testing.T) {
	w := Defaults()
	assert.Equal(t, 5.0, w.WindSpeed)
	assert.Equal(t, 7.0, w.GustSpeed)
	assert.Equal(t, 180.0, w.WindDirection)
	assert.Equal(t, 20.0, w.Temperature)
	assert.Equal(t, 60.0, w.Humidity)
	assert.Equal(t, 10.0, w.Visibility)
	assert.Zero(t, w.Precipitation)
	assert.Equal(t, 30.0, w.CloudCover)
}

func TestStaticProvider(t *testing.T) {
	p := Static{Snapshot: mission.Weather{WindSpeed: 11, GustSpeed: 14}}

	w, err := p.Along(context.Background(), testRoute)
	require.NoError(t, err)
	assert.Equal(t, 11.0, w.WindSpeed)

	// Returned snapshot is a copy, not a shared pointer
	w.WindSpeed = 99
	again, err := p.Along(context.Background(), testRoute)
	require.NoError(t, err)
	assert.Equal(t, 11.0, again.WindSpeed)
}

func TestSimulatedProviderRanges(t *testing.T) {
	p := NewSimulated(1)

	for i := 0; i < 50; i++ {
		w, err := p.Along(context.Background(), testRoute)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, w.WindSpeed, 0.0)
		assert.LessOrEqual(t, w.WindSpeed, 13.0)
		assert.GreaterOrEqual(t, w.GustSpeed, 0.0)
		assert.GreaterOrEqual(t, w.WindDirection, 0.0)
		assert.Less(t, w.WindDirection, 360.0)
		assert.GreaterOrEqual(t, w.Temperature, 15.0)
		assert.LessOrEqual(t, w.Temperature, 25.0)
		assert.Contains(t, []float64{0, 0.1, 0.5}, w.Precipitation)
	}
}

func TestSimulatedProviderEmptyRouteFallsBack(t *testing.T) {
	p := NewSimulated(1)

	w, err := p.Along(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), w)
}

func TestForecastTrendsWindUpward(t *testing.T) {
	p := Static{Snapshot: mission.Weather{WindSpeed: 10}}

	points, err := Forecast(context.Background(), p, testRoute, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, 1, points[0].Hour)
	assert.InDelta(t, 10.0, points[0].Conditions.WindSpeed, 1e-9)
	assert.InDelta(t, 11.0, points[1].Conditions.WindSpeed, 1e-9)
	assert.InDelta(t, 12.0, points[2].Conditions.WindSpeed, 1e-9)
}

func TestOpenMeteoParsesCurrentConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ms", r.URL.Query().Get("wind_speed_unit"))
		assert.NotEmpty(t, r.URL.Query().Get("latitude"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current":{
			"wind_speed_10m": 6.5,
			"wind_gusts_10m": 9.2,
			"wind_direction_10m": 270,
			"temperature_2m": 18.5,
			"relative_humidity_2m": 72,
			"visibility": 12000,
			"precipitation": 0.1,
			"cloud_cover": 45
		}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteo(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	w, err := p.Along(context.Background(), testRoute)
	require.NoError(t, err)

	assert.Equal(t, 6.5, w.WindSpeed)
	assert.Equal(t, 9.2, w.GustSpeed)
	assert.Equal(t, 270.0, w.WindDirection)
	assert.Equal(t, 18.5, w.Temperature)
	assert.Equal(t, 72.0, w.Humidity)
	assert.Equal(t, 12.0, w.Visibility)
	assert.Equal(t, 0.1, w.Precipitation)
	assert.Equal(t, 45.0, w.CloudCover)
}

func TestOpenMeteoErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewOpenMeteo(WithBaseURL(srv.URL))
	_, err := p.Along(context.Background(), testRoute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestOpenMeteoEmptyRouteFallsBack(t *testing.T) {
	p := NewOpenMeteo(WithBaseURL("http://127.0.0.1:0"))

	w, err := p.Along(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), w)
}
