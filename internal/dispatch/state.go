// Package dispatch implements the adaptive dispatch learner: it mines a
// rolling log of completed tasks for per-room service patterns and, when
// enabled, queues schedule-sourced tasks at each room's learned optimal time.
package dispatch

import (
	"github.com/talgya/simbot/internal/agents"
	"github.com/talgya/simbot/internal/tasks"
)

// Event is one observed completion: a task finished in a room at a certain
// sim-time. Events are append-only; the log is trimmed, never mutated.
type Event struct {
	RoomID            string         `json:"room_id"`
	TaskType          string         `json:"task_type"`
	SimMinutes        float64        `json:"sim_minutes"`
	TimeOfDay         float64        `json:"time_of_day"` // 0–1439 within the day
	Source            tasks.Source   `json:"source"`
	CleanlinessBefore float64        `json:"cleanliness_before"`
	RobotID           agents.RobotID `json:"robot_id,omitempty"`
	WorkDuration      float64        `json:"work_duration,omitempty"`
}

// RoomPattern is the aggregated service pattern for a single room. Patterns
// are fully recomputed from the event log each analysis pass, never
// incrementally mutated, so repeated analysis of the same log is idempotent.
type RoomPattern struct {
	RoomID string `json:"room_id"`
	// AvgDirtinessAtUserAction: how dirty the room was, on average, when the
	// user intervened manually.
	AvgDirtinessAtUserAction float64 `json:"avg_dirtiness_at_user_action"`
	UserInteractionCount     int     `json:"user_interaction_count"`
	TotalTaskCount           int     `json:"total_task_count"`
	HourlyActivity           [24]int `json:"hourly_activity"`
	PeakHour                 int     `json:"peak_hour"`
	// AvgDirtyRate approximates how fast the room dirties, per sim-hour.
	AvgDirtyRate float64 `json:"avg_dirty_rate"`
	// OptimalCleanTime is minutes within the day: one hour before the peak
	// hour, snapped to the half hour.
	OptimalCleanTime float64     `json:"optimal_clean_time"`
	TopTasks         []TaskCount `json:"top_tasks"`
}

// TaskCount pairs a task type with its frequency in a room.
type TaskCount struct {
	TaskType string `json:"task_type"`
	Count    int    `json:"count"`
}

// Efficiency tracks how quickly one robot performs one task type.
type Efficiency struct {
	RobotID           agents.RobotID `json:"robot_id"`
	TaskType          string         `json:"task_type"`
	CompletionCount   int            `json:"completion_count"`
	AvgWorkDuration   float64        `json:"avg_work_duration"`
	TotalWorkDuration float64        `json:"total_work_duration"`
}

// Insight is a natural-language finding derived from pattern analysis.
type Insight struct {
	ID          string  `json:"id"`
	Category    string  `json:"category"` // "room", "timing", "robot", "efficiency", "trend"
	Text        string  `json:"text"`
	Importance  float64 `json:"importance"` // 0–1
	GeneratedAt float64 `json:"generated_at"`
}

// State is the learner's full persistable state.
type State struct {
	Events               []Event                         `json:"events"`
	RoomPatterns         map[string]RoomPattern          `json:"room_patterns"`
	LastAnalyzedAt       float64                         `json:"last_analyzed_at"`
	UserInteractionTimes []float64                       `json:"user_interaction_times"`
	TotalUserCommands    int                             `json:"total_user_commands"`
	PeakActivityHour     int                             `json:"peak_activity_hour"`
	Efficiency           map[agents.RobotID][]Efficiency `json:"robot_efficiency"`
	Insights             []Insight                       `json:"insights"`
}

// EmptyState is the fallback for missing or corrupt persisted state.
func EmptyState() State {
	return State{
		RoomPatterns:     make(map[string]RoomPattern),
		PeakActivityHour: 9,
		Efficiency:       make(map[agents.RobotID][]Efficiency),
	}
}

// Normalize backfills nil maps on states loaded from older blobs.
func (s *State) Normalize() {
	if s.RoomPatterns == nil {
		s.RoomPatterns = make(map[string]RoomPattern)
	}
	if s.Efficiency == nil {
		s.Efficiency = make(map[agents.RobotID][]Efficiency)
	}
}

// Confidence bands partition total event count.
const (
	confidenceMedium = 20
	confidenceHigh   = 80
)

// ConfidenceLevel reports how much history backs the learned patterns.
func (s *State) ConfidenceLevel() string {
	switch {
	case len(s.Events) >= confidenceHigh:
		return "high"
	case len(s.Events) >= confidenceMedium:
		return "medium"
	default:
		return "low"
	}
}

// ConfidencePercent maps event count onto a 0–100 scale.
func (s *State) ConfidencePercent() int {
	pct := len(s.Events) * 100 / confidenceHigh
	if pct > 100 {
		pct = 100
	}
	return pct
}
