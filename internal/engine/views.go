package engine

import (
	"github.com/talgya/simbot/internal/agents"
	"github.com/talgya/simbot/internal/dispatch"
	"github.com/talgya/simbot/internal/rooms"
	"github.com/talgya/simbot/internal/tasks"
	"github.com/talgya/simbot/internal/weather"
)

// View accessors copy state out under the simulation lock so the API can
// marshal without racing the engine loop.

// StatusView is the top-level state summary.
type StatusView struct {
	Clock         string             `json:"clock"`
	SimMinutes    float64            `json:"sim_minutes"`
	Day           int                `json:"day"`
	Period        string             `json:"period"`
	Speed         float64            `json:"speed"`
	Paused        bool               `json:"paused"`
	FloorPlan     string             `json:"floor_plan"`
	Weather       weather.Conditions `json:"weather"`
	Confidence    string             `json:"learning_confidence"`
	ConfidencePct int                `json:"learning_confidence_pct"`
	Stats         SimStats           `json:"stats"`
}

// Status returns the state summary.
func (s *Simulation) Status() StatusView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatusView{
		Clock:         s.Clock.Format(),
		SimMinutes:    s.Clock.SimMinutes,
		Day:           s.Clock.Day(),
		Period:        s.Clock.Period(),
		Speed:         s.Clock.Speed,
		Paused:        s.Clock.Speed <= 0,
		FloorPlan:     s.Plan.ID,
		Weather:       s.Weather.At(s.Clock.SimMinutes),
		Confidence:    s.Learner.State.ConfidenceLevel(),
		ConfidencePct: s.Learner.State.ConfidencePercent(),
		Stats:         s.stats,
	}
}

// RobotView is one robot's externally visible state.
type RobotView struct {
	agents.Robot
	ActiveTask *tasks.Task `json:"active_task,omitempty"`
	Charging   bool        `json:"charging"`
	Latched    bool        `json:"low_battery_latched"`
}

// Robots returns a copy of every robot plus its active task.
func (s *Simulation) Robots() []RobotView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RobotView, 0, len(s.roster))
	for _, r := range s.roster {
		v := RobotView{Robot: *r, Charging: r.IsCharging, Latched: s.Power.Latched(r.ID)}
		if t := s.Ctrl.ActiveTask(r.ID); t != nil {
			snapshot := *t
			v.ActiveTask = &snapshot
		}
		out = append(out, v)
	}
	return out
}

// Tasks returns a copy of the current task list.
func (s *Simulation) Tasks() []tasks.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.Ctrl.Tasks()
	out := make([]tasks.Task, 0, len(list))
	for _, t := range list {
		out = append(out, *t)
	}
	return out
}

// RoomView pairs a room's meters with its attention score.
type RoomView struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Floor     int         `json:"floor"`
	State     rooms.State `json:"state"`
	Attention float64     `json:"attention"`
}

// RoomStates returns every room's meters in plan order.
func (s *Simulation) RoomStates() []RoomView {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Clock.SimMinutes
	out := make([]RoomView, 0, len(s.Plan.Rooms))
	for _, room := range s.Plan.Rooms {
		state, _ := s.Rooms.State(room.ID)
		out = append(out, RoomView{
			ID:        room.ID,
			Name:      room.Name,
			Floor:     room.Floor,
			State:     state,
			Attention: s.Rooms.Attention(room.ID, now),
		})
	}
	return out
}

// PatternsView is the learner's derived state plus its dispatch schedule.
type PatternsView struct {
	Confidence    string                          `json:"confidence"`
	ConfidencePct int                             `json:"confidence_pct"`
	EventCount    int                             `json:"event_count"`
	PeakHour      int                             `json:"peak_activity_hour"`
	Rooms         map[string]dispatch.RoomPattern `json:"rooms"`
	Schedule      []dispatch.AutoEntry            `json:"schedule"`
}

// Patterns returns the learned per-room patterns and auto-dispatch schedule.
func (s *Simulation) Patterns() PatternsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.Learner.State
	roomsCopy := make(map[string]dispatch.RoomPattern, len(st.RoomPatterns))
	for id, p := range st.RoomPatterns {
		roomsCopy[id] = p
	}
	return PatternsView{
		Confidence:    st.ConfidenceLevel(),
		ConfidencePct: st.ConfidencePercent(),
		EventCount:    len(st.Events),
		PeakHour:      st.PeakActivityHour,
		Rooms:         roomsCopy,
		Schedule:      s.Learner.Entries(),
	}
}

// Insights returns the learner's current findings, highest importance first.
func (s *Simulation) Insights() []dispatch.Insight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dispatch.Insight(nil), s.Learner.State.Insights...)
}

// Events returns up to limit recent events, newest last.
func (s *Simulation) Events(limit int) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	evs := s.events
	if limit > 0 && len(evs) > limit {
		evs = evs[len(evs)-limit:]
	}
	return append([]Event(nil), evs...)
}

// LearnerState returns a copy of the learner's persistable state.
func (s *Simulation) LearnerState() dispatch.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Learner.State
}

// RestoreLearner replaces the learner state, typically from a saved session.
func (s *Simulation) RestoreLearner(st dispatch.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Learner.Restore(st)
}

// RosterState captures the persistable meters of every robot.
func (s *Simulation) RosterState() []agents.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snaps := make([]agents.Snapshot, 0, len(s.roster))
	for _, r := range s.roster {
		snaps = append(snaps, r.Snapshot())
	}
	return snaps
}

// RestoreRoster applies saved meters to the matching roster robots. Unknown
// IDs are skipped, so a roster change between sessions degrades gracefully.
func (s *Simulation) RestoreRoster(snaps []agents.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snap := range snaps {
		for _, r := range s.roster {
			if r.ID == snap.ID {
				r.ApplySnapshot(snap)
			}
		}
	}
}

// RestoreClock resumes the saved sim-time.
func (s *Simulation) RestoreClock(simMinutes float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if simMinutes > 0 {
		s.Clock.SimMinutes = simMinutes
	}
}
