// Package api provides the HTTP API for observing the station.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"

	"github.com/talgya/habitat/internal/engine"
	"github.com/talgya/habitat/internal/grid"
	"github.com/talgya/habitat/internal/inhabitants"
	"github.com/talgya/habitat/internal/persistence"
)

// Server serves the station state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	PathLimiter    *RateLimiter  // Defaults to 60 requests per minute per IP
	FrameInterval  time.Duration // Websocket frame period, default 100ms
	MaxStreamConns int32         // Default 4

	// Active websocket connection count (atomic).
	streamConns int32
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	if s.PathLimiter == nil {
		s.PathLimiter = NewRateLimiter(60, time.Minute)
	}

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only: anyone can check in on the station).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/station", s.handleStation)
	mux.HandleFunc("/api/v1/inhabitants", s.handleInhabitants)
	mux.HandleFunc("/api/v1/inhabitant/", s.handleInhabitantDetail)
	mux.HandleFunc("/api/v1/path", RateLimitMiddleware(s.PathLimiter, s.handlePath))
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/schema", s.handleSchema)

	// Websocket frame feed for renderers.
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))
	mux.HandleFunc("/api/v1/intervention", s.adminOnly(s.handleIntervention))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	handler := s.Handler()
	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no STATIONSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Sim.CurrentStats()
	tick := s.Sim.CurrentTick()

	status := map[string]any{
		"name":     "Habitat",
		"seed":     s.Sim.Seed(),
		"tick":     tick,
		"sim_time": engine.SimTime(tick),
		"speed":    s.Eng.Speed(),
		"running":  s.Eng.Running(),
		"alive":    stats.Alive,
		"ghosts":   stats.Ghosts,
		"tiles":    stats.Tiles,
		"floors":   stats.Floors,
	}
	writeJSON(w, status)
}

func (s *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.StationLayout())
}

// inhabitantSummary is the list view of one crew member.
type inhabitantSummary struct {
	ID       uuid.UUID        `json:"id"`
	Label    string           `json:"label"`
	Kind     inhabitants.Type `json:"kind"`
	Health   uint8            `json:"health"`
	Hunger   uint8            `json:"hunger"`
	Thirst   uint8            `json:"thirst"`
	Behavior string           `json:"behavior"`
	Pos      grid.Point       `json:"pos"`
	Age      string           `json:"age"`
	Items    int              `json:"items"`
}

func (s *Server) handleInhabitants(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")

	result := []inhabitantSummary{}
	for _, h := range s.Sim.Crew() {
		if kind != "" && !strings.EqualFold(h.Kind.String(), kind) {
			continue
		}
		behavior := "Idle"
		if b, ok := h.Current(); ok {
			behavior = b.String()
		}
		result = append(result, inhabitantSummary{
			ID:       h.ID,
			Label:    h.Label(),
			Kind:     h.Kind,
			Health:   h.Health,
			Hunger:   h.Hunger,
			Thirst:   h.Thirst,
			Behavior: behavior,
			Pos:      h.Pos,
			Age:      h.Age.Round(time.Second).String(),
			Items:    len(h.Items),
		})
	}
	writeJSON(w, result)
}

// handleInhabitantDetail serves GET /api/v1/inhabitant/{id}.
func (s *Server) handleInhabitantDetail(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/inhabitant/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "invalid inhabitant id", http.StatusBadRequest)
		return
	}
	h, ok := s.Sim.Inhabitant(id)
	if !ok {
		http.Error(w, "inhabitant not found", http.StatusNotFound)
		return
	}
	writeJSON(w, h)
}

// handlePath serves GET /api/v1/path?from=x,y&to=x,y.
func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	from, err := parsePosition(r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "invalid from: "+err.Error(), http.StatusBadRequest)
		return
	}
	to, err := parsePosition(r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "invalid to: "+err.Error(), http.StatusBadRequest)
		return
	}

	path := s.Sim.PathBetween(from, to)
	if path == nil {
		path = []grid.Position{}
	}
	writeJSON(w, map[string]any{
		"from":      from,
		"to":        to,
		"reachable": len(path) > 0,
		"length":    len(path),
		"path":      path,
	})
}

func parsePosition(v string) (grid.Position, error) {
	xs, ys, ok := strings.Cut(v, ",")
	if !ok {
		return grid.Position{}, fmt.Errorf("want x,y, got %q", v)
	}
	x, err := strconv.ParseInt(strings.TrimSpace(xs), 10, 32)
	if err != nil {
		return grid.Position{}, err
	}
	y, err := strconv.ParseInt(strings.TrimSpace(ys), 10, 32)
	if err != nil {
		return grid.Position{}, err
	}
	return grid.Pos(int32(x), int32(y)), nil
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events := s.Sim.RecentEvents(0)

	// Optional category filter.
	if category := r.URL.Query().Get("category"); category != "" {
		filtered := []engine.Event{}
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}

	writeJSON(w, events[start:])
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.CurrentStats())
}

// handleSchema describes the snapshot format for external tooling.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, jsonschema.Reflect(&engine.Snapshot{}))
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 100 {
			http.Error(w, "speed must be 0-100", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	if err := s.DB.SaveState(s.Sim); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"tick":    s.Sim.CurrentTick(),
		"message": "snapshot saved",
	})
}

func (s *Server) handleIntervention(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Type        string `json:"type"`
		Description string `json:"description,omitempty"`
		Category    string `json:"category,omitempty"`
		Count       int    `json:"count,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	switch req.Type {
	case "event":
		if req.Description == "" {
			http.Error(w, "description required for event type", http.StatusBadRequest)
			return
		}
		cat := req.Category
		if cat == "" {
			cat = "intervention"
		}
		s.Sim.EmitEvent(engine.Event{
			Tick:        s.Sim.CurrentTick(),
			Description: req.Description,
			Category:    cat,
		})
		writeJSON(w, map[string]any{"success": true, "details": "event injected"})

	case "restock":
		desc, err := s.Sim.RestockStation()
		if err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		writeJSON(w, map[string]any{"success": true, "details": desc})

	case "recruit":
		count := req.Count
		if count == 0 {
			count = 1
		}
		desc, err := s.Sim.RecruitCrew(count)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"success": true, "details": desc})

	default:
		http.Error(w, fmt.Sprintf("unknown intervention type %q (want event, restock, recruit)", req.Type), http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Warn("write response failed", "error", err)
	}
}
