package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/mission"
)

const defaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteo fetches current conditions from the Open-Meteo forecast
// API at the route's average position.
type OpenMeteo struct {
	baseURL string
	client  *http.Client
}

// OpenMeteoOption configures an OpenMeteo provider.
type OpenMeteoOption func(*OpenMeteo)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) OpenMeteoOption {
	return func(o *OpenMeteo) { o.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) OpenMeteoOption {
	return func(o *OpenMeteo) { o.client = c }
}

// NewOpenMeteo creates an Open-Meteo backed provider.
func NewOpenMeteo(opts ...OpenMeteoOption) *OpenMeteo {
	o := &OpenMeteo{
		baseURL: defaultOpenMeteoURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type openMeteoResponse struct {
	Current struct {
		WindSpeed     float64 `json:"wind_speed_10m"`
		WindGusts     float64 `json:"wind_gusts_10m"`
		WindDirection float64 `json:"wind_direction_10m"`
		Temperature   float64 `json:"temperature_2m"`
		Humidity      float64 `json:"relative_humidity_2m"`
		Visibility    float64 `json:"visibility"` // meters
		Precipitation float64 `json:"precipitation"`
		CloudCover    float64 `json:"cloud_cover"`
	} `json:"current"`
}

func (o *OpenMeteo) Along(ctx context.Context, waypoints []mission.Waypoint) (*mission.Weather, error) {
	lat, lng, ok := averagePosition(waypoints)
	if !ok {
		return Defaults(), nil
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("longitude", strconv.FormatFloat(lng, 'f', 6, 64))
	q.Set("current", "wind_speed_10m,wind_gusts_10m,wind_direction_10m,temperature_2m,relative_humidity_2m,visibility,precipitation,cloud_cover")
	q.Set("wind_speed_unit", "ms")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building weather request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var body openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding weather response: %w", err)
	}

	return &mission.Weather{
		WindSpeed:     body.Current.WindSpeed,
		GustSpeed:     body.Current.WindGusts,
		WindDirection: body.Current.WindDirection,
		Temperature:   body.Current.Temperature,
		Humidity:      body.Current.Humidity,
		Visibility:    body.Current.Visibility / 1000.0,
		Precipitation: body.Current.Precipitation,
		CloudCover:    body.Current.CloudCover,
	}, nil
}
