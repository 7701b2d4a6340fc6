// Package tasks owns the task queue and the per-robot lifecycle state
// machine: queued tasks are assigned FIFO, routed through the navigation
// graph, worked to completion, and removed after a short grace delay.
package tasks

import (
	"github.com/talgya/simbot/internal/agents"
	"github.com/talgya/simbot/internal/nav"
)

// Source records who requested a task. Sources drive pre-emption: user
// commands displace ai/schedule work.
type Source string

const (
	SourceUser     Source = "user"
	SourceAI       Source = "ai"
	SourceSchedule Source = "schedule"
	SourceDemo     Source = "demo"
)

// Auto reports whether the source is machine-generated and therefore
// pre-emptable by a user command.
func (s Source) Auto() bool {
	return s == SourceAI || s == SourceSchedule
}

// Status is a task's lifecycle phase. Transitions run strictly forward;
// cancellation removes the task outright instead of rewinding it.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusWalking   Status = "walking"
	StatusWorking   Status = "working"
	StatusCompleted Status = "completed"
)

// Type categorizes work for durations, room boosts, and statistics.
type Type string

const (
	TypeCleaning   Type = "cleaning"
	TypeVacuuming  Type = "vacuuming"
	TypeDishes     Type = "dishes"
	TypeCooking    Type = "cooking"
	TypeLaundry    Type = "laundry"
	TypeOrganizing Type = "organizing"
	TypeBedMaking  Type = "bed-making"
	TypeScrubbing  Type = "scrubbing"
	TypeSweeping   Type = "sweeping"
	TypeGeneral    Type = "general"
)

// Task is one queued unit of work.
type Task struct {
	ID             string         `json:"id"`
	Command        string         `json:"command"`
	Source         Source         `json:"source"`
	TargetRoom     string         `json:"target_room"`
	TargetPosition nav.Point      `json:"target_position"`
	TargetFloor    int            `json:"target_floor"`
	Type           Type           `json:"task_type"`
	WorkDuration   float64        `json:"work_duration"` // engine-seconds of nominal work
	Status         Status         `json:"status"`
	Progress       float64        `json:"progress"` // 0–100, monotonic until completion
	AssignedTo     agents.RobotID `json:"assigned_to"`
	Description    string         `json:"description"`

	CreatedAt   float64 `json:"created_at"` // sim-minutes
	CompletedAt float64 `json:"completed_at,omitempty"`

	// Seq breaks FIFO ties between tasks created in the same tick.
	Seq uint64 `json:"-"`
	// Maintenance trips skip the room boost and the learner's event log.
	Maintenance bool `json:"-"`
	// WorkStartedAt is the sim-minute the robot arrived and began working.
	// Together with CompletedAt it yields the actual work time, which differs
	// per robot through the task-speed multipliers.
	WorkStartedAt float64 `json:"-"`
	// RemoveAt is the sim-minute after which a completed task is dropped.
	RemoveAt float64 `json:"-"`
	// CleanlinessBefore is the target room's reading captured when work
	// began, recorded into the learner's event log on completion.
	CleanlinessBefore float64 `json:"-"`
}

// Active reports whether the task currently occupies its robot.
func (t *Task) Active() bool {
	return t.Status == StatusWalking || t.Status == StatusWorking
}

// Open reports whether the task has not yet completed.
func (t *Task) Open() bool {
	return t.Status != StatusCompleted
}
