package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/talgya/simbot/internal/agents"
	"github.com/talgya/simbot/internal/dispatch"
	"github.com/talgya/simbot/internal/nav"
	"github.com/talgya/simbot/internal/power"
	"github.com/talgya/simbot/internal/rooms"
	"github.com/talgya/simbot/internal/tasks"
	"github.com/talgya/simbot/internal/weather"
)

// Cadence intervals in accumulated sim-minutes (equivalently engine-seconds).
// Movement, work progress, resources, and decay run every frame; the slower
// policies run on these boundaries.
const (
	cadencePower   = 1.0
	cadenceLearner = 5.0
	cadenceMinute  = 60.0
)

// Event is a notable occurrence, kept in a bounded ring for the API feed.
type Event struct {
	SimMinutes  float64   `json:"sim_minutes"`
	At          time.Time `json:"at"`
	Category    string    `json:"category"` // "task", "power", "dispatch", "system"
	Description string    `json:"description"`
}

const maxEvents = 200

// SimStats tracks aggregate session counters.
type SimStats struct {
	TasksCompleted int     `json:"tasks_completed"`
	UserCompleted  int     `json:"user_completed"`
	AutoCompleted  int     `json:"auto_completed"`
	AvgBattery     float64 `json:"avg_battery"`
	AvgHappiness   float64 `json:"avg_happiness"`
}

// Simulation wires every subsystem together behind one mutex. The engine loop
// and the API both enter through its methods; nothing else touches the
// subsystems concurrently.
type Simulation struct {
	mu sync.Mutex

	Clock   *Clock
	Plan    *nav.FloorPlan
	Rooms   *rooms.Tracker
	Ctrl    *tasks.Controller
	Power   *power.Supervisor
	Learner *dispatch.Learner
	Weather *weather.Sim

	roster []*agents.Robot
	events []Event
	stats  SimStats
	seed   int64

	// Cadence accumulators, in sim-minutes since the last boundary.
	powerAcc   float64
	learnerAcc float64
	minuteAcc  float64

	// OnMinute fires on the sixty-second cadence with the lock held. The
	// process wires the persistence snapshot here.
	OnMinute func(s *Simulation)
}

// NewSimulation builds a fully wired simulation on the given floor plan.
func NewSimulation(plan *nav.FloorPlan, seed int64, speed float64) *Simulation {
	tracker := rooms.NewTracker(plan.RoomIDs(), seed)
	roster := agents.DefaultRoster(plan.Spawn)
	ctrl := tasks.NewController(plan, tracker, roster)

	s := &Simulation{
		Clock:   NewClock(speed),
		Plan:    plan,
		Rooms:   tracker,
		Ctrl:    ctrl,
		Power:   power.NewSupervisor(ctrl),
		Learner: dispatch.NewLearner(ctrl),
		Weather: weather.New(seed),
		roster:  roster,
		seed:    seed,
	}
	s.Learner.AutoDispatch = true

	ctrl.OnComplete = func(t *tasks.Task, r *agents.Robot) {
		s.onTaskComplete(t, r)
	}
	s.Power.Notify = func(r *agents.Robot, thought string, _ agents.Mood) {
		s.recordEvent("power", fmt.Sprintf("%s: %s", r.Name, thought))
	}
	return s
}

// onTaskComplete runs inside the controller's tick, lock already held.
func (s *Simulation) onTaskComplete(t *tasks.Task, r *agents.Robot) {
	now := s.Clock.SimMinutes

	// Upkeep trips are not housework: they stay out of the learner's history
	// and the completion counters.
	if t.Maintenance {
		s.recordEvent("power", fmt.Sprintf("%s arrived at the charging station", r.Name))
		slog.Debug("maintenance trip completed", "task", t.ID, "robot", r.ID)
		return
	}

	s.Learner.Record(t, r, now)

	s.stats.TasksCompleted++
	if t.Source == tasks.SourceUser {
		s.stats.UserCompleted++
	} else if t.Source.Auto() {
		s.stats.AutoCompleted++
	}

	s.recordEvent("task", fmt.Sprintf("%s finished %s in %s", r.Name, t.Type, t.TargetRoom))
	slog.Info("task completed",
		"task", t.ID,
		"robot", r.ID,
		"room", t.TargetRoom,
		"type", t.Type,
		"source", t.Source,
		"clock", s.Clock.Format(),
	)
}

func (s *Simulation) recordEvent(category, description string) {
	s.events = append(s.events, Event{
		SimMinutes:  s.Clock.SimMinutes,
		At:          time.Now(),
		Category:    category,
		Description: description,
	})
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
}

// Step advances the simulation by the given real-world seconds. Called by the
// engine loop every frame.
func (s *Simulation) Step(realSeconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dt := s.Clock.Advance(realSeconds)
	if dt <= 0 {
		return
	}
	now := s.Clock.SimMinutes

	// Per-frame systems: task lifecycle, resources, room decay.
	s.Ctrl.Tick(dt, now)

	cond := s.Weather.At(now)
	mods := agents.StockModifiers()
	mods.Comfort = cond.ComfortMultiplier()
	mods.CozyBonus = cond.CozyBonus()
	for _, r := range s.roster {
		agents.TickResources(r, dt, mods)
	}
	s.Rooms.Decay(dt)

	// One-second cadence: moods, then the charging policy. The supervisor may
	// overwrite a derived mood with an event mood; that sticks until the next
	// boundary. A large frame at high speed can span several intervals; the
	// modulo drain keeps each policy to one run per frame with no backlog.
	s.powerAcc += dt
	if s.powerAcc >= cadencePower {
		s.powerAcc = math.Mod(s.powerAcc, cadencePower)
		for _, r := range s.roster {
			r.Mood = agents.MoodFromNeeds(r.Needs)
		}
		s.Power.Tick(now)
	}

	// Five-second cadence: pattern analysis and auto-dispatch.
	s.learnerAcc += dt
	if s.learnerAcc >= cadenceLearner {
		s.learnerAcc = math.Mod(s.learnerAcc, cadenceLearner)
		s.Learner.Tick(now)
	}

	// Sixty-second cadence: stats refresh, persistence snapshot.
	s.minuteAcc += dt
	if s.minuteAcc >= cadenceMinute {
		s.minuteAcc = math.Mod(s.minuteAcc, cadenceMinute)
		s.refreshStats()
		slog.Debug("minute mark",
			"clock", s.Clock.Format(),
			"completed", s.stats.TasksCompleted,
			"avg_battery", fmt.Sprintf("%.1f", s.stats.AvgBattery),
			"weather", cond.Kind,
		)
		if s.OnMinute != nil {
			s.OnMinute(s)
		}
	}
}

func (s *Simulation) refreshStats() {
	var battery, happiness float64
	for _, r := range s.roster {
		battery += r.Battery
		happiness += r.Needs.Happiness
	}
	if n := len(s.roster); n > 0 {
		s.stats.AvgBattery = battery / float64(n)
		s.stats.AvgHappiness = happiness / float64(n)
	}
}

// SubmitCommand resolves and enqueues a user command. The response string is
// always set; a task is returned only when the command resolved.
func (s *Simulation) SubmitCommand(command string, assignee agents.RobotID) (string, *tasks.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Clock.SimMinutes
	t, response := s.Ctrl.Submit(command, tasks.SourceUser, assignee, now)
	if t == nil {
		slog.Info("command rejected", "command", command)
		return response, nil
	}
	s.recordEvent("task", fmt.Sprintf("%q queued for %s", command, t.AssignedTo))
	slog.Info("command accepted",
		"command", command,
		"task", t.ID,
		"robot", t.AssignedTo,
		"room", t.TargetRoom,
	)
	snapshot := *t
	return response, &snapshot
}

// CancelTask removes a task by id.
func (s *Simulation) CancelTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.Ctrl.Cancel(id)
	if ok {
		slog.Info("task cancelled", "task", id)
	}
	return ok
}

// SetSpeed changes the clock multiplier. Zero pauses the simulation.
func (s *Simulation) SetSpeed(speed float64) error {
	if speed < 0 || speed > 60 {
		return fmt.Errorf("speed %v out of range [0, 60]", speed)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Clock.Speed = speed
	slog.Info("speed changed", "speed", speed)
	return nil
}

// Speed returns the current clock multiplier.
func (s *Simulation) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Clock.Speed
}

// SetFloorPlan swaps the active floor plan. All tasks are dropped, robots
// reset to the new spawn, rooms reseeded, and charging latches cleared.
// Learned patterns survive the swap.
func (s *Simulation) SetFloorPlan(id string) error {
	plan, err := nav.PlanByID(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tracker := rooms.NewTracker(plan.RoomIDs(), s.seed)
	s.Plan = plan
	s.Rooms = tracker
	s.Ctrl.SetPlan(plan, tracker)
	s.Power.Reset()
	s.recordEvent("system", fmt.Sprintf("floor plan changed to %s", id))
	slog.Info("floor plan changed", "plan", id)
	return nil
}
