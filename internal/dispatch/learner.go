package dispatch

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/talgya/simbot/internal/agents"
	"github.com/talgya/simbot/internal/tasks"
)

// Log caps: the event window rolls, user interaction times keep a shorter
// tail.
const (
	maxEvents    = 500
	maxUserTimes = 200
)

// Auto-dispatch tuning.
const (
	// minRoomHistory is how many recorded tasks a room needs before its
	// pattern is eligible for auto-dispatch.
	minRoomHistory = 3
	// fireWindow is the sim-minute tolerance after the optimal time within
	// which an entry fires on the first observation of a day. Coarser learner
	// ticks are handled by the crossing check in autoDispatch, so the window
	// being narrower than the tick cadence cannot skip a slot.
	fireWindow = 2
	// minEfficiencySamples is how many completions back an efficiency-based
	// robot preference.
	minEfficiencySamples = 2
)

// Learner ingests completion events, periodically re-derives room patterns,
// and (when enabled) self-dispatches schedule-sourced tasks. It never mutates
// robots or tasks directly; all dispatch goes through the controller's
// submit entry point.
type Learner struct {
	State        State
	AutoDispatch bool
	Ctrl         *tasks.Controller

	// fired tracks room:taskType entries already dispatched today.
	fired   map[string]bool
	lastDay int
	// lastSeen is the sim-minute timestamp of the previous dispatch pass,
	// -1 before the first. Slots that fall between two passes fire on the
	// later one.
	lastSeen float64
}

// NewLearner creates a learner bound to a controller, starting from empty
// history.
func NewLearner(ctrl *tasks.Controller) *Learner {
	return &Learner{
		State:    EmptyState(),
		Ctrl:     ctrl,
		fired:    make(map[string]bool),
		lastDay:  -1,
		lastSeen: -1,
	}
}

// Restore replaces the learner's state with a persisted snapshot.
func (l *Learner) Restore(s State) {
	s.Normalize()
	l.State = s
}

// Record appends a completion event to the rolling log. Called synchronously
// from the controller's completion hook, so no completion is ever missed.
func (l *Learner) Record(t *tasks.Task, r *agents.Robot, now float64) {
	source := t.Source
	if source != tasks.SourceUser && source != tasks.SourceSchedule {
		source = tasks.SourceAI
	}

	// Actual time on the job, not the nominal duration: a fast robot's
	// multiplier shows up here, which is what the efficiency ranking keys on.
	workTime := t.WorkDuration
	if t.WorkStartedAt > 0 && t.CompletedAt > t.WorkStartedAt {
		workTime = t.CompletedAt - t.WorkStartedAt
	}

	ev := Event{
		RoomID:            t.TargetRoom,
		TaskType:          string(t.Type),
		SimMinutes:        now,
		TimeOfDay:         math.Mod(now, minutesPerDay),
		Source:            source,
		CleanlinessBefore: t.CleanlinessBefore,
		RobotID:           r.ID,
		WorkDuration:      workTime,
	}

	l.State.Events = append(l.State.Events, ev)
	if len(l.State.Events) > maxEvents {
		l.State.Events = l.State.Events[len(l.State.Events)-maxEvents:]
	}

	if source == tasks.SourceUser {
		l.State.TotalUserCommands++
		l.State.UserInteractionTimes = append(l.State.UserInteractionTimes, ev.TimeOfDay)
		if len(l.State.UserInteractionTimes) > maxUserTimes {
			l.State.UserInteractionTimes = l.State.UserInteractionTimes[len(l.State.UserInteractionTimes)-maxUserTimes:]
		}
	}
}

// Tick runs the periodic analysis pass and, when enabled, the daily
// auto-dispatch check. Runs on the five-second cadence.
func (l *Learner) Tick(now float64) {
	if ShouldReanalyze(l.State, now) {
		l.State = Analyze(l.State, now)
		slog.Debug("patterns analyzed",
			"events", len(l.State.Events),
			"rooms", len(l.State.RoomPatterns),
			"confidence", l.State.ConfidenceLevel(),
		)
	}

	if l.AutoDispatch {
		l.autoDispatch(now)
	}
}

// AutoEntry is one learned dispatch slot: a room, its dominant task type,
// and the minute-of-day to fire at.
type AutoEntry struct {
	RoomID      string  `json:"room_id"`
	TaskType    string  `json:"task_type"`
	Command     string  `json:"command"`
	OptimalTime float64 `json:"optimal_time"`
}

// Entries returns the auto-dispatch slots derived from learned patterns,
// ordered by time of day.
func (l *Learner) Entries() []AutoEntry {
	var entries []AutoEntry
	for _, roomID := range sortedPatternIDs(l.State.RoomPatterns) {
		p := l.State.RoomPatterns[roomID]
		if p.TotalTaskCount < minRoomHistory || len(p.TopTasks) == 0 {
			continue
		}
		top := p.TopTasks[0]
		command, ok := commandFor(p.RoomID, top.TaskType)
		if !ok {
			continue
		}
		entries = append(entries, AutoEntry{
			RoomID:      p.RoomID,
			TaskType:    top.TaskType,
			Command:     command,
			OptimalTime: p.OptimalCleanTime,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OptimalTime < entries[j].OptimalTime
	})
	return entries
}

func sortedPatternIDs(patterns map[string]RoomPattern) []string {
	ids := make([]string, 0, len(patterns))
	for id := range patterns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedEfficiencyIDs(eff map[agents.RobotID][]Efficiency) []agents.RobotID {
	ids := make([]agents.RobotID, 0, len(eff))
	for id := range eff {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (l *Learner) autoDispatch(now float64) {
	day := int(now / minutesPerDay)
	timeOfDay := math.Mod(now, minutesPerDay)
	dayStart := float64(day) * minutesPerDay

	if day != l.lastDay {
		l.fired = make(map[string]bool)
		l.lastDay = day
	}

	prev := l.lastSeen
	l.lastSeen = now

	for _, entry := range l.Entries() {
		key := entry.RoomID + ":" + entry.TaskType
		if l.fired[key] {
			continue
		}
		// An entry fires when its slot was crossed since the previous pass,
		// so a tick cadence coarser than the window never skips a slot. The
		// window alone applies on the very first pass, which has nothing to
		// compare against.
		at := dayStart + entry.OptimalTime
		inWindow := timeOfDay >= entry.OptimalTime && timeOfDay < entry.OptimalTime+fireWindow
		crossed := prev >= 0 && prev < at && now >= at
		if !inWindow && !crossed {
			continue
		}
		l.fired[key] = true

		robot := l.pickRobot(entry.TaskType, now)
		if robot == "" {
			continue
		}

		target, ok := l.Ctrl.Resolver.Resolve(entry.Command, l.Ctrl.Plan)
		if !ok {
			continue
		}
		t := l.Ctrl.SubmitTarget(entry.Command, target, tasks.SourceSchedule, robot, now)
		if r, found := l.Ctrl.Robot(robot); found {
			r.Thought = fmt.Sprintf("Learned schedule: time to %s.", entry.Command)
			r.Mood = agents.MoodFocused
		}
		slog.Info("auto dispatch",
			"room", entry.RoomID,
			"task_type", entry.TaskType,
			"robot", robot,
			"task", t.ID,
		)
	}
}

// pickRobot prefers the historically most efficient idle robot for the task
// type, then the least-busy idle robot, then whoever has the fewest queued
// tasks. Robots inside a user-override window are skipped.
func (l *Learner) pickRobot(taskType string, now float64) agents.RobotID {
	eligible := func(r *agents.Robot) bool {
		return r.Battery > 0 && !l.Ctrl.OverrideActive(r.ID, now)
	}

	if best, ok := BestRobot(l.State, taskType); ok {
		if r, found := l.Ctrl.Robot(best); found && eligible(r) &&
			r.State == agents.StateIdle && l.Ctrl.OpenCount(r.ID) == 0 {
			return best
		}
	}

	var pick agents.RobotID
	bestLoad := -1
	for _, r := range l.Ctrl.Roster() {
		if !eligible(r) || r.State != agents.StateIdle {
			continue
		}
		load := l.Ctrl.OpenCount(r.ID)
		if bestLoad < 0 || load < bestLoad {
			pick = r.ID
			bestLoad = load
		}
	}
	if pick != "" {
		return pick
	}

	bestLoad = -1
	for _, r := range l.Ctrl.Roster() {
		if !eligible(r) {
			continue
		}
		load := l.Ctrl.QueuedCount(r.ID)
		if bestLoad < 0 || load < bestLoad {
			pick = r.ID
			bestLoad = load
		}
	}
	return pick
}

// BestRobot returns the robot with the lowest average work duration for a
// task type, requiring a minimum sample size.
func BestRobot(s State, taskType string) (agents.RobotID, bool) {
	var best agents.RobotID
	bestAvg := math.Inf(1)
	for _, robotID := range sortedEfficiencyIDs(s.Efficiency) {
		for _, e := range s.Efficiency[robotID] {
			if e.TaskType != taskType || e.CompletionCount < minEfficiencySamples {
				continue
			}
			if e.AvgWorkDuration < bestAvg {
				bestAvg = e.AvgWorkDuration
				best = robotID
			}
		}
	}
	return best, best != ""
}

// commandFor maps a learned room/task pair back to a submit-able command.
var autoCommands = map[string]map[string]string{
	"kitchen": {
		"dishes":    "wash dishes",
		"cooking":   "cook meal",
		"sweeping":  "sweep kitchen",
		"cleaning":  "clean kitchen",
		"vacuuming": "vacuum kitchen",
	},
	"living-room": {
		"cleaning":  "clean living room",
		"vacuuming": "vacuum living room",
	},
	"bedroom": {
		"bed-making": "make bed",
		"organizing": "organize desk",
		"cleaning":   "tidy bedroom",
		"laundry":    "do laundry",
	},
	"bathroom": {
		"scrubbing": "scrub bathroom",
		"cleaning":  "clean bathroom",
	},
	"hallway": {
		"cleaning":  "clean hallway",
		"vacuuming": "vacuum hallway",
	},
	"f2-bedroom": {
		"bed-making": "make upstairs bed",
		"cleaning":   "clean upstairs bedroom",
	},
	"f2-office": {
		"organizing": "organize office",
		"cleaning":   "clean office",
	},
}

func commandFor(roomID, taskType string) (string, bool) {
	byType, ok := autoCommands[roomID]
	if !ok {
		return "", false
	}
	cmd, ok := byType[taskType]
	return cmd, ok
}
