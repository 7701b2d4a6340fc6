// Package api provides the HTTP API for observing and steering the household.
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

	"github.com/dustin/go-humanize"

	"github.com/talgya/simbot/internal/agents"
	"github.com/talgya/simbot/internal/engine"
	"github.com/talgya/simbot/internal/persistence"
	"github.com/talgya/simbot/internal/tasks"
)

// Server serves the household state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Command submissions are cheap but still user input; cap the rate per IP.
	commandLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only; anyone can check in on the house).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/robots", s.handleRobots)
	mux.HandleFunc("/api/v1/robot/", s.handleRobotDetail)
	mux.HandleFunc("/api/v1/tasks", s.handleTasks)
	mux.HandleFunc("/api/v1/task/", s.handleTaskRoutes)
	mux.HandleFunc("/api/v1/rooms", s.handleRooms)
	mux.HandleFunc("/api/v1/patterns", s.handlePatterns)
	mux.HandleFunc("/api/v1/insights", s.handleInsights)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/command", RateLimitMiddleware(commandLimiter, s.adminOnly(s.handleCommand)))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/floorplan", s.adminOnly(s.handleFloorPlan))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set SIMBOT_CORS_ORIGINS to a comma-separated list of additional origins;
// localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("SIMBOT_CORS_ORIGINS"); env != "" {
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

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no SIMBOT_ADMIN_KEY set)", http.StatusForbidden)
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
	writeJSON(w, s.Sim.Status())
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Robots())
}

func (s *Server) handleRobotDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing robot id", http.StatusBadRequest)
		return
	}
	id := agents.RobotID(parts[4])
	for _, v := range s.Sim.Robots() {
		if v.ID == id {
			writeJSON(w, v)
			return
		}
	}
	http.Error(w, "robot not found", http.StatusNotFound)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	list := s.Sim.Tasks()

	// Optional filters. Start non-nil so an empty result encodes as [].
	if robot := r.URL.Query().Get("robot"); robot != "" {
		filtered := []tasks.Task{}
		for _, t := range list {
			if string(t.AssignedTo) == robot {
				filtered = append(filtered, t)
			}
		}
		writeJSON(w, filtered)
		return
	}
	writeJSON(w, list)
}

// handleTaskRoutes dispatches GET /api/v1/task/:id and POST /api/v1/task/:id/cancel.
func (s *Server) handleTaskRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing task id", http.StatusBadRequest)
		return
	}
	id := parts[4]

	if len(parts) >= 6 && parts[5] == "cancel" {
		s.adminOnly(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "POST required", http.StatusMethodNotAllowed)
				return
			}
			if !s.Sim.CancelTask(id) {
				http.Error(w, "task not found", http.StatusNotFound)
				return
			}
			writeJSON(w, map[string]any{"cancelled": id})
		})(w, r)
		return
	}

	for _, t := range s.Sim.Tasks() {
		if t.ID == id {
			writeJSON(w, t)
			return
		}
	}
	http.Error(w, "task not found", http.StatusNotFound)
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.RoomStates())
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Patterns())
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Insights())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	type eventEntry struct {
		engine.Event
		Ago string `json:"ago"`
	}
	events := s.Sim.Events(limit)
	out := make([]eventEntry, len(events))
	for i, e := range events {
		out[i] = eventEntry{Event: e, Ago: humanize.Time(e.At)}
	}
	writeJSON(w, out)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Command string `json:"command"`
		Robot   string `json:"robot,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		http.Error(w, "command required", http.StatusBadRequest)
		return
	}

	response, task := s.Sim.SubmitCommand(req.Command, agents.RobotID(req.Robot))
	result := map[string]any{
		"accepted": task != nil,
		"response": response,
	}
	if task != nil {
		result["task"] = task
	}
	writeJSON(w, result)
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
		if err := s.Sim.SetSpeed(req.Speed); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	writeJSON(w, map[string]float64{"speed": s.Sim.Speed()})
}

func (s *Server) handleFloorPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, map[string]string{"floor_plan": s.Sim.Status().FloorPlan})
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := s.Sim.SetFloorPlan(req.ID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"floor_plan": req.ID})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	if err := s.DB.SaveSession(s.Sim); err != nil {
		slog.Error("snapshot failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"saved": true, "clock": s.Sim.Status().Clock})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
