// Package agents provides the robot data model and the battery/needs
// resource simulator.
package agents

import (
	"github.com/talgya/simbot/internal/nav"
)

// RobotID identifies a robot in the fixed roster.
type RobotID string

// The default household roster.
const (
	RobotSim     RobotID = "sim"
	RobotChef    RobotID = "chef"
	RobotSparkle RobotID = "sparkle"
)

// State is a robot's discrete activity state.
type State uint8

const (
	StateIdle State = iota
	StateWalking
	StateWorking
)

// String returns the state name used in logs and the API.
func (s State) String() string {
	switch s {
	case StateWalking:
		return "walking"
	case StateWorking:
		return "working"
	default:
		return "idle"
	}
}

// Mood is a coarse emotional state derived from needs, consumed by external
// presentation layers.
type Mood string

const (
	MoodContent Mood = "content"
	MoodHappy   Mood = "happy"
	MoodTired   Mood = "tired"
	MoodLonely  Mood = "lonely"
	MoodBored   Mood = "bored"
	MoodFocused Mood = "focused"
)

// Needs tracks the four wellbeing meters, each in [0,100].
type Needs struct {
	Energy    float64 `json:"energy"`
	Happiness float64 `json:"happiness"`
	Social    float64 `json:"social"`
	Boredom   float64 `json:"boredom"`
}

// Robot is one autonomous household agent. Robots are created at process
// start and never destroyed during a session.
type Robot struct {
	ID      RobotID   `json:"id"`
	Name    string    `json:"name"`
	Position nav.Point `json:"position"`
	Heading  float64   `json:"heading"`
	Floor    int       `json:"floor"`

	State      State   `json:"state"`
	Battery    float64 `json:"battery"`
	Needs      Needs   `json:"needs"`
	IsCharging bool    `json:"is_charging"`

	Mood    Mood   `json:"mood"`
	Thought string `json:"thought"`

	// Navigation: the current route and the index of the waypoint being
	// walked toward. Empty when not walking.
	Path      []nav.Waypoint `json:"-"`
	PathIndex int            `json:"-"`
	// PausedUntil holds a sim-minute timestamp while the robot pauses at a
	// doorway waypoint.
	PausedUntil float64 `json:"-"`

	// TaskID references the robot's active (walking/working) task, if any.
	TaskID string `json:"task_id,omitempty"`

	// WalkSpeed is world units per engine-second.
	WalkSpeed float64 `json:"-"`
	// TaskSpeed maps task types to work-speed multipliers (>1 = faster).
	TaskSpeed map[string]float64 `json:"-"`
	// PreferredRooms biases autonomous dispatch toward a specialty.
	PreferredRooms []string `json:"-"`
}

// SpeedFor returns the robot's work-speed multiplier for a task type.
func (r *Robot) SpeedFor(taskType string) float64 {
	if m, ok := r.TaskSpeed[taskType]; ok && m > 0 {
		return m
	}
	return 1.0
}

// ClearPath drops the robot's route and doorway pause.
func (r *Robot) ClearPath() {
	r.Path = nil
	r.PathIndex = 0
	r.PausedUntil = 0
}

// Reset returns the robot to its spawn defaults. Used when the floor plan is
// swapped out.
func (r *Robot) Reset(spawn nav.Point) {
	r.Position = spawn
	r.Floor = 0
	r.State = StateIdle
	r.Battery = 100
	r.Needs = DefaultNeeds()
	r.IsCharging = false
	r.Mood = MoodContent
	r.Thought = ""
	r.TaskID = ""
	r.ClearPath()
}

// Snapshot is the subset of robot state that survives a restart. Routes,
// tasks, and charging status are session-local and rebuilt from scratch.
type Snapshot struct {
	ID       RobotID   `json:"id"`
	Position nav.Point `json:"position"`
	Floor    int       `json:"floor"`
	Battery  float64   `json:"battery"`
	Needs    Needs     `json:"needs"`
}

// Snapshot captures the robot's persistable meters.
func (r *Robot) Snapshot() Snapshot {
	return Snapshot{
		ID:       r.ID,
		Position: r.Position,
		Floor:    r.Floor,
		Battery:  r.Battery,
		Needs:    r.Needs,
	}
}

// ApplySnapshot restores persisted meters onto a freshly built robot. The
// robot comes back idle with no route or task.
func (r *Robot) ApplySnapshot(s Snapshot) {
	r.Position = s.Position
	r.Floor = s.Floor
	r.Battery = clampPercent(s.Battery)
	r.Needs = Needs{
		Energy:    clampPercent(s.Needs.Energy),
		Happiness: clampPercent(s.Needs.Happiness),
		Social:    clampPercent(s.Needs.Social),
		Boredom:   clampPercent(s.Needs.Boredom),
	}
	r.Mood = MoodFromNeeds(r.Needs)
}

// DefaultNeeds is the starting wellbeing state.
func DefaultNeeds() Needs {
	return Needs{Energy: 80, Happiness: 70, Social: 60, Boredom: 20}
}

// MoodFromNeeds maps the wellbeing meters to a coarse mood. Thresholds follow
// the household's observed behavior: exhaustion and loneliness dominate,
// contentment is the baseline.
func MoodFromNeeds(n Needs) Mood {
	switch {
	case n.Energy < 20:
		return MoodTired
	case n.Social < 15:
		return MoodLonely
	case n.Boredom > 75:
		return MoodBored
	case n.Happiness > 70 && n.Energy > 50:
		return MoodHappy
	default:
		return MoodContent
	}
}

// DefaultRoster creates the three stock robots at the given spawn point.
func DefaultRoster(spawn nav.Point) []*Robot {
	roster := []*Robot{
		{
			ID: RobotSim, Name: "Sim",
			WalkSpeed:      1.6,
			TaskSpeed:      map[string]float64{"cleaning": 1.1, "vacuuming": 1.1},
			PreferredRooms: []string{"living-room", "hallway", "bedroom"},
		},
		{
			ID: RobotChef, Name: "Chef",
			WalkSpeed:      1.4,
			TaskSpeed:      map[string]float64{"cooking": 1.4, "dishes": 1.3},
			PreferredRooms: []string{"kitchen"},
		},
		{
			ID: RobotSparkle, Name: "Sparkle",
			WalkSpeed:      1.5,
			TaskSpeed:      map[string]float64{"scrubbing": 1.4, "bed-making": 1.2},
			PreferredRooms: []string{"bathroom", "bedroom"},
		},
	}
	for _, r := range roster {
		r.Reset(spawn)
	}
	return roster
}
