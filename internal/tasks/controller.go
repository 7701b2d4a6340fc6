package tasks

import (
	"math"

	"github.com/google/uuid"

	"github.com/talgya/simbot/internal/agents"
	"github.com/talgya/simbot/internal/nav"
	"github.com/talgya/simbot/internal/rooms"
)

// RejectResponse is returned when a command cannot be resolved to a target.
const RejectResponse = "I'm not sure what to do with that. Try asking me to clean a room!"

// Controller owns the task list and drives each robot through the
// assignment → routing → walking → working → completion state machine.
// All mutation of tasks and robots funnels through its entry points, so no
// two systems race on the same record within a tick.
type Controller struct {
	ArrivalRadius  float64 // world units for waypoint arrival
	RemoveDelay    float64 // sim-minutes a completed task stays visible
	DoorwayPause   float64 // sim-minutes to pause at doorway waypoints
	OverrideWindow float64 // sim-minutes the learner stays out of a robot's way after a user command

	Plan     *nav.FloorPlan
	Rooms    *rooms.Tracker
	Resolver Resolver

	roster []*agents.Robot
	byID   map[agents.RobotID]*agents.Robot

	tasks     []*Task
	seq       uint64
	overrides map[agents.RobotID]float64

	// OnComplete fires synchronously when a task completes, before the task
	// becomes removable. The engine wires statistics, learner events, and
	// log entries here.
	OnComplete func(t *Task, r *agents.Robot)
}

// NewController creates a lifecycle controller for the given plan and roster.
func NewController(plan *nav.FloorPlan, tracker *rooms.Tracker, roster []*agents.Robot) *Controller {
	c := &Controller{
		ArrivalRadius:  0.35,
		RemoveDelay:    1.5,
		DoorwayPause:   0.4,
		OverrideWindow: 10,
		Plan:           plan,
		Rooms:          tracker,
		Resolver:       KeywordResolver{},
		roster:         roster,
		byID:           make(map[agents.RobotID]*agents.Robot, len(roster)),
		overrides:      make(map[agents.RobotID]float64),
	}
	for _, r := range roster {
		c.byID[r.ID] = r
	}
	return c
}

// Roster returns the robots in fixed iteration order.
func (c *Controller) Roster() []*agents.Robot {
	return c.roster
}

// Robot returns a roster member by id.
func (c *Controller) Robot(id agents.RobotID) (*agents.Robot, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// Tasks returns the current task list. Callers must not retain the slice
// across ticks.
func (c *Controller) Tasks() []*Task {
	return c.tasks
}

// Task returns a task by id.
func (c *Controller) Task(id string) (*Task, bool) {
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// ActiveTask returns the robot's task in walking or working status, if any.
func (c *Controller) ActiveTask(id agents.RobotID) *Task {
	for _, t := range c.tasks {
		if t.AssignedTo == id && t.Active() {
			return t
		}
	}
	return nil
}

// QueuedCount returns how many queued tasks a robot has waiting.
func (c *Controller) QueuedCount(id agents.RobotID) int {
	n := 0
	for _, t := range c.tasks {
		if t.AssignedTo == id && t.Status == StatusQueued {
			n++
		}
	}
	return n
}

// OpenCount returns how many uncompleted tasks a robot has.
func (c *Controller) OpenCount(id agents.RobotID) int {
	n := 0
	for _, t := range c.tasks {
		if t.AssignedTo == id && t.Open() {
			n++
		}
	}
	return n
}

// OverrideActive reports whether a user command recently displaced auto work
// for this robot, in which case the learner holds off re-queuing.
func (c *Controller) OverrideActive(id agents.RobotID, now float64) bool {
	return now < c.overrides[id]
}

// ClearOverride drops a robot's override window.
func (c *Controller) ClearOverride(id agents.RobotID) {
	delete(c.overrides, id)
}

// Submit resolves a command and enqueues a task. An unresolvable command
// creates nothing and returns a diagnostic response for the user; this is a
// recoverable condition, never an error.
func (c *Controller) Submit(command string, source Source, assignee agents.RobotID, now float64) (*Task, string) {
	target, ok := c.Resolver.Resolve(command, c.Plan)
	if !ok {
		return nil, RejectResponse
	}
	t := c.SubmitTarget(command, target, source, assignee, now)
	return t, target.Response
}

// SubmitTarget enqueues a task for an already-resolved target. This is the
// single entry point shared by user commands, the dispatch learner, and the
// charging supervisor.
func (c *Controller) SubmitTarget(command string, target Target, source Source, assignee agents.RobotID, now float64) *Task {
	if _, ok := c.byID[assignee]; !ok {
		assignee = c.pickAssignee()
	}

	c.seq++
	t := &Task{
		ID:             uuid.NewString(),
		Command:        command,
		Source:         source,
		TargetRoom:     target.RoomID,
		TargetPosition: target.Position,
		TargetFloor:    target.Floor,
		Type:           target.Type,
		WorkDuration:   target.WorkDuration,
		Status:         StatusQueued,
		AssignedTo:     assignee,
		Description:    target.Description,
		CreatedAt:      now,
		Seq:            c.seq,
		Maintenance:    target.Maintenance,
	}

	if source == SourceUser {
		c.preempt(assignee, now)
	}

	c.tasks = append(c.tasks, t)
	return t
}

// preempt cancels a robot's in-flight auto tasks and opens the override
// window so the learner doesn't immediately re-queue them. The user's
// attention also lifts the robot's spirits.
func (c *Controller) preempt(id agents.RobotID, now float64) {
	for _, t := range c.openFor(id) {
		if t.Source.Auto() {
			c.Cancel(t.ID)
		}
	}
	c.overrides[id] = now + c.OverrideWindow

	if r, ok := c.byID[id]; ok {
		r.Needs.Social = math.Min(100, r.Needs.Social+12)
		r.Needs.Happiness = math.Min(100, r.Needs.Happiness+6)
		r.Needs.Boredom = math.Max(0, r.Needs.Boredom-10)
	}
}

// Cancel removes a task regardless of status. If it was its robot's active
// task the robot returns to idle with an empty path, within the same update.
func (c *Controller) Cancel(id string) bool {
	for i, t := range c.tasks {
		if t.ID != id {
			continue
		}
		if t.Active() {
			if r, ok := c.byID[t.AssignedTo]; ok && r.TaskID == t.ID {
				r.State = agents.StateIdle
				r.TaskID = ""
				r.ClearPath()
			}
		}
		c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
		return true
	}
	return false
}

// ClearAgentTasks removes every uncompleted task belonging to a robot.
// Used for the battery-exhaustion cutoff and low-battery redirect.
func (c *Controller) ClearAgentTasks(id agents.RobotID) int {
	cleared := 0
	for _, t := range c.openFor(id) {
		if c.Cancel(t.ID) {
			cleared++
		}
	}
	return cleared
}

func (c *Controller) openFor(id agents.RobotID) []*Task {
	var out []*Task
	for _, t := range c.tasks {
		if t.AssignedTo == id && t.Open() {
			out = append(out, t)
		}
	}
	return out
}

// pickAssignee chooses a robot for an unaddressed submission: an idle robot
// with the fewest queued tasks, else whoever has the shortest queue.
func (c *Controller) pickAssignee() agents.RobotID {
	var best *agents.Robot
	bestLoad := math.MaxInt32
	for _, r := range c.roster {
		load := c.OpenCount(r.ID)
		if r.State != agents.StateIdle {
			load += 100
		}
		if load < bestLoad {
			best = r
			bestLoad = load
		}
	}
	if best == nil {
		return ""
	}
	return best.ID
}

// Tick runs one control pass: for each robot in fixed order, assignment,
// routing, movement, work progress, and completion; then removal of
// completed tasks past their grace delay.
func (c *Controller) Tick(dt, now float64) {
	for _, r := range c.roster {
		c.tickRobot(r, dt, now)
	}
	c.removeExpired(now)
}

func (c *Controller) tickRobot(r *agents.Robot, dt, now float64) {
	// Dead robots wait for the charging supervisor.
	if r.Battery <= 0 {
		return
	}

	active := c.ActiveTask(r.ID)
	if active == nil {
		next := c.nextQueued(r.ID)
		if next == nil {
			if r.State != agents.StateIdle {
				r.State = agents.StateIdle
				r.ClearPath()
			}
			return
		}
		if !c.route(r, next) {
			// Unroutable: leave it queued and retry next pass.
			return
		}
		active = next
	}

	switch active.Status {
	case StatusWalking:
		c.walk(r, active, dt, now)
	case StatusWorking:
		c.work(r, active, dt, now)
	}
}

// nextQueued returns the robot's oldest queued task (FIFO by CreatedAt,
// submission order breaking ties).
func (c *Controller) nextQueued(id agents.RobotID) *Task {
	var oldest *Task
	for _, t := range c.tasks {
		if t.AssignedTo != id || t.Status != StatusQueued {
			continue
		}
		if oldest == nil || t.CreatedAt < oldest.CreatedAt ||
			(t.CreatedAt == oldest.CreatedAt && t.Seq < oldest.Seq) {
			oldest = t
		}
	}
	return oldest
}

// route plans a path to the task target and transitions it to walking.
func (c *Controller) route(r *agents.Robot, t *Task) bool {
	path := c.Plan.Graph.RouteWaypoints(r.Position, t.TargetPosition, r.Floor, t.TargetFloor)
	if len(path) == 0 {
		return false
	}
	t.Status = StatusWalking
	r.State = agents.StateWalking
	r.TaskID = t.ID
	r.IsCharging = false
	r.Path = path
	r.PathIndex = 0
	r.PausedUntil = 0
	return true
}

// walk advances the robot along its path by its speed budget for this tick.
func (c *Controller) walk(r *agents.Robot, t *Task, dt, now float64) {
	if now < r.PausedUntil {
		return
	}

	budget := r.WalkSpeed * dt
	for budget > 0 && r.PathIndex < len(r.Path) {
		wp := r.Path[r.PathIndex]
		dist := r.Position.DistXZ(wp.Pos)

		if dist <= c.ArrivalRadius || dist <= budget {
			budget -= dist
			r.Position = wp.Pos
			r.Floor = wp.Floor
			r.PathIndex++
			if wp.PauseAtDoorway && r.PathIndex < len(r.Path) {
				r.PausedUntil = now + c.DoorwayPause
				break
			}
			continue
		}

		frac := budget / dist
		r.Heading = math.Atan2(wp.Pos.X-r.Position.X, wp.Pos.Z-r.Position.Z)
		r.Position.X += (wp.Pos.X - r.Position.X) * frac
		r.Position.Y += (wp.Pos.Y - r.Position.Y) * frac
		r.Position.Z += (wp.Pos.Z - r.Position.Z) * frac
		budget = 0
	}

	if r.PathIndex >= len(r.Path) {
		t.Status = StatusWorking
		t.WorkStartedAt = now
		t.CleanlinessBefore = c.Rooms.Cleanliness(t.TargetRoom)
		r.State = agents.StateWorking
		r.ClearPath()
	}
}

// work accrues progress proportional to elapsed time over nominal duration,
// scaled by the robot's speed multiplier for the task type. Progress is
// monotonic and clamps at 100.
func (c *Controller) work(r *agents.Robot, t *Task, dt, now float64) {
	duration := t.WorkDuration
	if duration <= 0 {
		duration = DurationFor(TypeGeneral)
	}
	t.Progress += dt * r.SpeedFor(string(t.Type)) / duration * 100
	if t.Progress < 100 {
		return
	}
	c.complete(r, t, now)
}

// complete applies completion side effects atomically: room improvement,
// robot back to idle, then the engine's OnComplete hook, then scheduling the
// grace-delay removal.
func (c *Controller) complete(r *agents.Robot, t *Task, now float64) {
	t.Progress = 100
	t.Status = StatusCompleted
	t.CompletedAt = now
	t.RemoveAt = now + c.RemoveDelay

	r.State = agents.StateIdle
	r.TaskID = ""
	r.ClearPath()

	if !t.Maintenance {
		c.Rooms.Boost(t.TargetRoom, string(t.Type), now)
	}

	if c.OnComplete != nil {
		c.OnComplete(t, r)
	}
}

func (c *Controller) removeExpired(now float64) {
	kept := c.tasks[:0]
	for _, t := range c.tasks {
		if t.Status == StatusCompleted && now >= t.RemoveAt {
			continue
		}
		kept = append(kept, t)
	}
	c.tasks = kept
}

// SetPlan swaps the floor plan: all tasks are dropped, override windows
// cleared, and every robot reset to the new spawn point.
func (c *Controller) SetPlan(plan *nav.FloorPlan, tracker *rooms.Tracker) {
	c.Plan = plan
	c.Rooms = tracker
	c.tasks = nil
	c.overrides = make(map[agents.RobotID]float64)
	for _, r := range c.roster {
		r.Reset(plan.Spawn)
	}
}
