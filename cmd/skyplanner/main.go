package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/airspace"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/metrics"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/planner"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/risk"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/sim"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/store"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/weather"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Config holds application configuration.
type Config struct {
	// Server
	HTTPAddr string
	HTTPPort int

	// Deployment area; empty means the built-in San Francisco area
	AirspaceFile string

	// Trained risk model; empty means rule-based scoring only
	ModelFile string

	// Persistence; empty means stateless operation
	DatabaseURL string

	// Weather source: "openmeteo", "simulated", or "static"
	WeatherProvider string

	// Simulation stream pacing
	StreamInterval time.Duration
}

func loadConfig() Config {
	return Config{
		HTTPAddr:        getEnv("HTTP_ADDR", "0.0.0.0"),
		HTTPPort:        getEnvInt("HTTP_PORT", 8080),
		AirspaceFile:    getEnv("AIRSPACE_FILE", ""),
		ModelFile:       getEnv("MODEL_FILE", ""),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		WeatherProvider: getEnv("WEATHER_PROVIDER", "simulated"),
		StreamInterval:  getEnvDuration("STREAM_INTERVAL", 100*time.Millisecond),
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

// ---------------------------------------------------------------------------
// Application
// ---------------------------------------------------------------------------

// App holds all application components.
type App struct {
	config  Config
	planner *planner.Service
	db      *store.Postgres
	server  *http.Server

	upgrader websocket.Upgrader

	startTime time.Time
	ready     bool
}

// NewApp wires the planning service from configuration.
func NewApp(ctx context.Context, cfg Config) (*App, error) {
	space := airspace.SanFrancisco()
	if cfg.AirspaceFile != "" {
		loaded, err := airspace.LoadFile(cfg.AirspaceFile)
		if err != nil {
			return nil, fmt.Errorf("loading airspace config: %w", err)
		}
		space = loaded
		log.Printf("Loaded airspace config from %s: %d restricted zones",
			cfg.AirspaceFile, len(space.RestrictedZones))
	}

	scorerOpts := []risk.Option{}
	if cfg.ModelFile != "" {
		model, err := risk.LoadModelFile(cfg.ModelFile)
		if err != nil {
			return nil, fmt.Errorf("loading risk model: %w", err)
		}
		scorerOpts = append(scorerOpts, risk.WithModel(model))
		log.Printf("Loaded risk model from %s (version %s)", cfg.ModelFile, model.Version)
	} else {
		log.Println("No risk model configured, using rule-based scoring")
	}
	scorer := risk.NewScorer(space, scorerOpts...)

	var provider weather.Provider
	switch cfg.WeatherProvider {
	case "openmeteo":
		provider = weather.NewOpenMeteo()
		log.Println("Weather source: Open-Meteo")
	case "static":
		provider = weather.Static{Snapshot: *weather.Defaults()}
		log.Println("Weather source: static defaults")
	default:
		provider = weather.NewSimulated(time.Now().UnixNano())
		log.Println("Weather source: simulated conditions")
	}

	svcOpts := []planner.ServiceOption{planner.WithWeatherProvider(provider)}

	app := &App{
		config:    cfg,
		startTime: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	if cfg.DatabaseURL != "" {
		db, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		app.db = db
		svcOpts = append(svcOpts, planner.WithStore(db))
		log.Println("Mission persistence: PostgreSQL")
	} else {
		svcOpts = append(svcOpts, planner.WithStore(store.NewMemory()))
		log.Println("Mission persistence: in-memory (no database configured)")
	}

	app.planner = planner.NewService(space, scorer, svcOpts...)
	return app, nil
}

// Run starts the application and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	log.Println("SkyPlanner starting...")
	log.Printf("Configuration: addr=%s:%d weather=%s", a.config.HTTPAddr, a.config.HTTPPort, a.config.WeatherProvider)

	a.startHTTPServer()
	a.ready = true
	log.Println("SkyPlanner ready")

	<-ctx.Done()
	log.Println("Shutting down...")
	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("Database close error: %v", err)
		}
	}
	log.Println("SkyPlanner stopped")
	return nil
}

// ---------------------------------------------------------------------------
// HTTP Server
// ---------------------------------------------------------------------------

func (a *App) startHTTPServer() {
	r := mux.NewRouter()

	// Health endpoints
	r.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ready", a.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/live", a.handleLive).Methods(http.MethodGet)

	// Metrics endpoint
	r.HandleFunc("/metrics", a.handleMetrics).Methods(http.MethodGet)

	// Mission API
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/missions/plan", a.handlePlanMission).Methods(http.MethodPost)
	api.HandleFunc("/missions", a.handleListMissions).Methods(http.MethodGet)
	api.HandleFunc("/missions/{id}", a.handleGetMission).Methods(http.MethodGet)
	api.HandleFunc("/missions/{id}/simulate", a.handleSimulate).Methods(http.MethodPost)
	api.HandleFunc("/missions/{id}/simulate/stream", a.handleSimulateStream).Methods(http.MethodGet)

	// Map API
	api.HandleFunc("/map/no-fly-zones", a.handleNoFlyZones).Methods(http.MethodGet)
	api.HandleFunc("/map/heatmap", a.handleHeatmap).Methods(http.MethodGet)
	api.HandleFunc("/map/weather", a.handlePointWeather).Methods(http.MethodGet)

	addr := fmt.Sprintf("%s:%d", a.config.HTTPAddr, a.config.HTTPPort)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.metricsMiddleware(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", addr)
		if err := a.server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()
}

func (a *App) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.HTTPRequests.Inc()

		next.ServeHTTP(w, r)

		metrics.HTTPLatency.Observe(time.Since(start).Seconds())
	})
}

// ---------------------------------------------------------------------------
// Health Handlers
// ---------------------------------------------------------------------------

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(a.startTime).String(),
		"version":   "1.0.0",
	}

	if !a.ready {
		health["status"] = "starting"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(health)
}

func (a *App) handleReady(w http.ResponseWriter, r *http.Request) {
	if a.ready {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
	}
}

func (a *App) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}

// ---------------------------------------------------------------------------
// Metrics Handler
// ---------------------------------------------------------------------------

func (a *App) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.Write([]byte(metrics.Default().Export()))
}

// ---------------------------------------------------------------------------
// Mission Handlers
// ---------------------------------------------------------------------------

func (a *App) handlePlanMission(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	metrics.PlanRequests.Inc()

	var req planner.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.PlanErrors.Inc()
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := a.planner.Plan(r.Context(), req)
	metrics.PlanLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PlanErrors.Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	metrics.PlanRisk.Observe(result.RiskScore)
	metrics.RouteWaypoints.Set(float64(len(result.OptimizedRoute)))

	respondJSON(w, result)
}

func (a *App) handleListMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := a.planner.ListMissions(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]interface{}{
		"missions": missions,
		"count":    len(missions),
	})
}

func (a *App) handleGetMission(w http.ResponseWriter, r *http.Request) {
	missionID := mux.Vars(r)["id"]

	rec, err := a.planner.GetMission(r.Context(), missionID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "mission not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, rec)
}

type simulateRequest struct {
	SpeedMultiplier float64 `json:"speed_multiplier"`
}

func (a *App) handleSimulate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	metrics.SimulationRuns.Inc()

	missionID := mux.Vars(r)["id"]

	req := simulateRequest{SpeedMultiplier: 1.0}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	result, err := a.runSimulation(r.Context(), missionID, req.SpeedMultiplier)
	metrics.SimulationLatency.Observe(time.Since(start).Seconds())
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "mission not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, result)
}

func (a *App) runSimulation(ctx context.Context, missionID string, multiplier float64) (planner.SimulationResult, error) {
	result, err := a.planner.Simulate(ctx, missionID, multiplier)
	if err != nil {
		return planner.SimulationResult{}, err
	}
	if !result.Success {
		metrics.SimulationFailures.Inc()
	}
	return result, nil
}

// handleSimulateStream runs the simulation and replays it over a
// websocket, one state per message, paced by the stream interval.
func (a *App) handleSimulateStream(w http.ResponseWriter, r *http.Request) {
	missionID := mux.Vars(r)["id"]

	multiplier := 1.0
	if v := r.URL.Query().Get("speed_multiplier"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			multiplier = f
		}
	}

	metrics.SimulationRuns.Inc()
	result, err := a.runSimulation(r.Context(), missionID, multiplier)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "mission not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	ticker := time.NewTicker(a.config.StreamInterval)
	defer ticker.Stop()

	for _, state := range result.States {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
		if err := conn.WriteJSON(streamMessage{Type: "state", State: &state}); err != nil {
			log.Printf("Stream write failed for %s: %v", result.SimulationID, err)
			return
		}
	}

	summary := streamMessage{Type: "summary", Summary: &result}
	if err := conn.WriteJSON(summary); err != nil {
		log.Printf("Stream summary write failed for %s: %v", result.SimulationID, err)
	}
}

type streamMessage struct {
	Type    string                    `json:"type"`
	State   *sim.State                `json:"state,omitempty"`
	Summary *planner.SimulationResult `json:"summary,omitempty"`
}

// ---------------------------------------------------------------------------
// Map Handlers
// ---------------------------------------------------------------------------

func parseBounds(r *http.Request) (planner.Bounds, error) {
	var b planner.Bounds
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"north", &b.North}, {"south", &b.South},
		{"east", &b.East}, {"west", &b.West},
	} {
		v := r.URL.Query().Get(f.name)
		if v == "" {
			return b, fmt.Errorf("missing query parameter %q", f.name)
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return b, fmt.Errorf("invalid %q: %v", f.name, err)
		}
		*f.dst = parsed
	}
	return b, nil
}

func (a *App) handleNoFlyZones(w http.ResponseWriter, r *http.Request) {
	b, err := parseBounds(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	zones := a.planner.NoFlyZones(b)
	respondJSON(w, map[string]interface{}{
		"zones": zones,
		"count": len(zones),
	})
}

func (a *App) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	b, err := parseBounds(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, map[string]interface{}{
		"heatmap": a.planner.RiskHeatmap(b),
	})
}

func (a *App) handlePointWeather(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		http.Error(w, "invalid lat", http.StatusBadRequest)
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		http.Error(w, "invalid lng", http.StatusBadRequest)
		return
	}

	wx, err := a.planner.PointWeather(r.Context(), lat, lng)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	respondJSON(w, wx)
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()

	app, err := NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Startup error: %v", err)
	}
	if err := app.Run(ctx); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
