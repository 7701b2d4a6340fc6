// Command simbot runs the household robot simulation: three robots, a task
// queue, a charging policy, and a dispatch learner, served over HTTP.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/talgya/simbot/internal/api"
	"github.com/talgya/simbot/internal/engine"
	"github.com/talgya/simbot/internal/nav"
	"github.com/talgya/simbot/internal/persistence"
)

func main() {
	setupLogging()

	seed := envInt64("SIMBOT_SEED", 42)
	dbPath := envString("SIMBOT_DB", "data/simbot.db")
	apiPort := int(envInt64("SIMBOT_PORT", 8080))
	speed := envFloat("SIMBOT_SPEED", 1.0)
	planID := envString("SIMBOT_FLOORPLAN", nav.PlanCottage)

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	// A saved session's floor plan wins over the env default; an explicit
	// override still goes through the API afterwards.
	if saved, ok := db.LoadFloorPlan(); ok {
		planID = saved
	}

	plan, err := nav.PlanByID(planID)
	if err != nil {
		slog.Error("invalid floor plan", "plan", planID, "error", err)
		os.Exit(1)
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(plan, seed, speed)

	if state, ok := db.LoadLearnerState(); ok {
		sim.RestoreLearner(state)
		slog.Info("learner state restored",
			"events", len(state.Events),
			"rooms", len(state.RoomPatterns),
			"user_commands", state.TotalUserCommands,
		)
	} else {
		slog.Info("no saved learner state, starting fresh")
	}
	if minutes, ok := db.LoadClock(); ok {
		sim.RestoreClock(minutes)
		slog.Info("clock restored", "sim_minutes", fmt.Sprintf("%.1f", minutes))
	}
	if snaps, ok := db.LoadRoster(); ok {
		sim.RestoreRoster(snaps)
		slog.Info("roster restored", "robots", len(snaps))
	}

	// Auto-save on the simulation's minute cadence.
	sim.OnMinute = func(s *engine.Simulation) {
		go func() {
			if err := db.SaveSession(s); err != nil {
				slog.Error("periodic save failed", "error", err)
			}
		}()
	}

	eng := engine.New(sim)

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("SIMBOT_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("SIMBOT_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Sim:      sim,
		DB:       db,
		Port:     apiPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	status := sim.Status()
	fmt.Printf("\nThe house is awake: 3 robots on the %s plan, %s.\n", status.FloorPlan, status.Clock)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveSession(sim); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Simulation stopped. Session saved.")
}

// setupLogging picks a text handler on a terminal and JSON otherwise, so
// container logs stay machine-parseable.
func setupLogging() {
	level := slog.LevelInfo
	if os.Getenv("SIMBOT_DEBUG") != "" {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		slog.Warn("invalid env value, using default", "key", key, "value", v)
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		slog.Warn("invalid env value, using default", "key", key, "value", v)
	}
	return fallback
}
