// Package power implements the charging supervisor: a periodic policy that
// starts and stops charging based on proximity and battery level, enforces
// the dead-battery cutoff, and dispatches low-battery robots to the charger.
package power

import (
	"log/slog"

	"github.com/talgya/simbot/internal/agents"
	"github.com/talgya/simbot/internal/tasks"
)

// Thresholds follow the household defaults: charge when parked below 95,
// head for the charger below 15, re-arm the dispatch latch above 25.
const (
	ChargingRange      = 2.0
	LowBattery         = 15.0
	FullCharge         = 95.0
	LatchResetMargin   = 10.0
	chargeTripDuration = 2.0 // engine-seconds of "parking" work at the charger
)

// Supervisor monitors the roster against the active charging point. It never
// touches tasks directly beyond the controller's entry points.
type Supervisor struct {
	Ctrl *tasks.Controller

	// ResetLatchOnUserOverride clears the one-shot dispatch latch when a
	// user command redirects a still-low robot. The observed behavior keeps
	// the latch set; flip this to let user overrides re-arm auto dispatch.
	ResetLatchOnUserOverride bool

	// Notify receives mood/thought transitions for external consumers.
	Notify func(r *agents.Robot, thought string, mood agents.Mood)

	latched map[agents.RobotID]bool
}

// NewSupervisor creates a charging supervisor bound to a controller.
func NewSupervisor(ctrl *tasks.Controller) *Supervisor {
	return &Supervisor{
		Ctrl:    ctrl,
		latched: make(map[agents.RobotID]bool),
	}
}

// Latched reports whether a robot has already been dispatched to the charger
// during the current low-battery episode.
func (s *Supervisor) Latched(id agents.RobotID) bool {
	return s.latched[id]
}

// Reset clears all dispatch latches. Called when the floor plan is swapped and
// every robot restarts from spawn with a full battery.
func (s *Supervisor) Reset() {
	s.latched = make(map[agents.RobotID]bool)
}

// Tick evaluates the charging policy for every robot. Runs on the
// one-second cadence, not per frame.
func (s *Supervisor) Tick(now float64) {
	plan := s.Ctrl.Plan
	for _, r := range s.Ctrl.Roster() {
		dist := r.Position.DistXZ(plan.Charging)
		near := dist < ChargingRange && r.Floor == plan.ChargingFloor

		// Proximity charging.
		if near && r.State == agents.StateIdle && r.Battery < FullCharge {
			if !r.IsCharging {
				r.IsCharging = true
				slog.Debug("charging started", "robot", r.ID, "battery", r.Battery)
			}
		} else if r.IsCharging {
			r.IsCharging = false
			if r.Battery >= FullCharge {
				s.latched[r.ID] = false
				s.say(r, "Fully charged! Ready to get back to work.", agents.MoodHappy)
				slog.Info("fully charged", "robot", r.ID)
			}
		}

		// Dead battery: hard cutoff. Every task goes, and the robot stays
		// parked until the charger revives it.
		if r.Battery <= 0 && !r.IsCharging {
			if cleared := s.Ctrl.ClearAgentTasks(r.ID); cleared > 0 || r.State != agents.StateIdle {
				r.State = agents.StateIdle
				r.ClearPath()
				s.say(r, "Battery depleted... shutting down until recharged.", agents.MoodTired)
				slog.Warn("battery depleted", "robot", r.ID, "tasks_cleared", cleared)
			}
			continue
		}

		// Low battery: one-shot dispatch to the charger.
		if r.Battery < LowBattery && !r.IsCharging && !s.latched[r.ID] {
			s.dispatchToCharger(r, now)
		}

		// Re-arm the latch once the battery has recovered past the margin.
		if r.Battery > LowBattery+LatchResetMargin {
			s.latched[r.ID] = false
		}

		if s.ResetLatchOnUserOverride && s.Ctrl.OverrideActive(r.ID, now) {
			s.latched[r.ID] = false
		}
	}
}

func (s *Supervisor) dispatchToCharger(r *agents.Robot, now float64) {
	s.Ctrl.ClearAgentTasks(r.ID)

	plan := s.Ctrl.Plan
	roomID := ""
	if room, ok := plan.NearestRoom(plan.Charging, plan.ChargingFloor); ok {
		roomID = room.ID
	}
	target := tasks.Target{
		RoomID:       roomID,
		Position:     plan.Charging,
		Floor:        plan.ChargingFloor,
		Type:         tasks.TypeGeneral,
		WorkDuration: chargeTripDuration,
		Description:  "Navigating to charging station.",
		Maintenance:  true,
	}
	s.Ctrl.SubmitTarget("Heading to charging station", target, tasks.SourceSchedule, r.ID, now)
	s.latched[r.ID] = true
	s.say(r, "Battery low... need to recharge.", agents.MoodTired)
	slog.Info("low battery dispatch", "robot", r.ID, "battery", r.Battery)
}

func (s *Supervisor) say(r *agents.Robot, thought string, mood agents.Mood) {
	r.Thought = thought
	r.Mood = mood
	if s.Notify != nil {
		s.Notify(r, thought, mood)
	}
}
