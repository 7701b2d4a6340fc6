package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/simbot/internal/agents"
	"github.com/talgya/simbot/internal/nav"
	"github.com/talgya/simbot/internal/rooms"
)

func newTestController() *Controller {
	plan := nav.CottagePlan()
	tracker := rooms.NewTracker(plan.RoomIDs(), 1)
	roster := agents.DefaultRoster(plan.Spawn)
	return NewController(plan, tracker, roster)
}

// run advances the controller in quarter-second frames.
func run(c *Controller, from, seconds float64) float64 {
	now := from
	for elapsed := 0.0; elapsed < seconds; elapsed += 0.25 {
		c.Tick(0.25, now)
		now += 0.25
	}
	return now
}

func TestSubmitUnresolvableCreatesNothing(t *testing.T) {
	c := newTestController()
	task, response := c.Submit("sing me a song", SourceUser, agents.RobotSim, 0)
	assert.Nil(t, task)
	assert.Equal(t, RejectResponse, response)
	assert.Empty(t, c.Tasks())
}

func TestSubmitAssignsAndQueues(t *testing.T) {
	c := newTestController()
	task, response := c.Submit("clean the kitchen", SourceUser, agents.RobotSim, 0)
	require.NotNil(t, task)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, StatusQueued, task.Status)
	assert.Equal(t, agents.RobotSim, task.AssignedTo)
	assert.Equal(t, "kitchen", task.TargetRoom)
	assert.Contains(t, response, "On my way!")
}

func TestSubmitUnknownAssigneePicksRobot(t *testing.T) {
	c := newTestController()
	task, _ := c.Submit("clean the kitchen", SourceUser, "", 0)
	require.NotNil(t, task)
	_, ok := c.Robot(task.AssignedTo)
	assert.True(t, ok)
}

func TestLifecycleRunsToCompletionAndRemoval(t *testing.T) {
	c := newTestController()
	var completed *Task
	c.OnComplete = func(t *Task, r *agents.Robot) { completed = t }

	task, _ := c.Submit("clean the kitchen", SourceUser, agents.RobotSim, 0)
	require.NotNil(t, task)

	now := run(c, 0, 120)
	require.NotNil(t, completed, "task should have completed")
	assert.Equal(t, task.ID, completed.ID)
	assert.Equal(t, 100.0, completed.Progress)
	assert.Greater(t, completed.CompletedAt, 0.0)

	robot, _ := c.Robot(agents.RobotSim)
	assert.Equal(t, agents.StateIdle, robot.State)
	assert.Empty(t, robot.TaskID)
	assert.Empty(t, robot.Path)

	// Completed tasks disappear after the grace delay.
	_, found := c.Task(task.ID)
	assert.False(t, found, "completed task should be removed after delay, now=%v", now)
}

func TestProgressIsMonotonic(t *testing.T) {
	c := newTestController()
	task, _ := c.Submit("clean the kitchen", SourceUser, agents.RobotSim, 0)
	require.NotNil(t, task)

	now, last := 0.0, 0.0
	for elapsed := 0.0; elapsed < 120; elapsed += 0.25 {
		c.Tick(0.25, now)
		now += 0.25
		if _, found := c.Task(task.ID); !found {
			return
		}
		require.GreaterOrEqual(t, task.Progress, last)
		require.LessOrEqual(t, task.Progress, 100.0)
		last = task.Progress
	}
	t.Fatal("task never finished")
}

func TestCompletionBoostsRoomAndCapturesBefore(t *testing.T) {
	c := newTestController()
	c.Rooms.Decay(200) // dirty the house first
	before := c.Rooms.Cleanliness("kitchen")

	var got *Task
	c.OnComplete = func(t *Task, r *agents.Robot) { got = t }

	_, _ = c.Submit("clean the kitchen", SourceUser, agents.RobotSim, 0)
	run(c, 0, 120)

	require.NotNil(t, got)
	assert.InDelta(t, before, got.CleanlinessBefore, 1e-9)
	assert.Greater(t, c.Rooms.Cleanliness("kitchen"), before)
}

func TestFIFOWithinRobot(t *testing.T) {
	c := newTestController()
	first, _ := c.Submit("clean the kitchen", SourceUser, agents.RobotSim, 0)
	second, _ := c.Submit("clean the bedroom", SourceUser, agents.RobotSim, 0)
	require.NotNil(t, first)
	require.NotNil(t, second)

	c.Tick(0.25, 0)
	assert.Equal(t, StatusWalking, first.Status)
	assert.Equal(t, StatusQueued, second.Status)
}

func TestAtMostOneActivePerRobot(t *testing.T) {
	c := newTestController()
	c.Submit("clean the kitchen", SourceUser, agents.RobotSim, 0)
	c.Submit("clean the bedroom", SourceUser, agents.RobotSim, 0)
	c.Submit("sweep the hall", SourceUser, agents.RobotSim, 0)

	now := 0.0
	for elapsed := 0.0; elapsed < 200; elapsed += 0.25 {
		c.Tick(0.25, now)
		now += 0.25

		active := 0
		for _, task := range c.Tasks() {
			if task.AssignedTo == agents.RobotSim && task.Active() {
				active++
			}
		}
		require.LessOrEqual(t, active, 1)
	}
}

func TestUserCommandPreemptsAutoWork(t *testing.T) {
	c := newTestController()
	auto, _ := c.Submit("clean the bedroom", SourceAI, agents.RobotSim, 0)
	require.NotNil(t, auto)
	c.Tick(0.25, 0)
	require.Equal(t, StatusWalking, auto.Status)

	user, _ := c.Submit("wash dishes", SourceUser, agents.RobotSim, 1)
	require.NotNil(t, user)

	_, found := c.Task(auto.ID)
	assert.False(t, found, "auto task should be cancelled")
	assert.True(t, c.OverrideActive(agents.RobotSim, 1))
	assert.True(t, c.OverrideActive(agents.RobotSim, 10.9))
	assert.False(t, c.OverrideActive(agents.RobotSim, 11.1))

	// The user task proceeds normally.
	c.Tick(0.25, 1)
	assert.Equal(t, StatusWalking, user.Status)
}

func TestUserCommandDoesNotCancelUserWork(t *testing.T) {
	c := newTestController()
	first, _ := c.Submit("clean the bedroom", SourceUser, agents.RobotSim, 0)
	second, _ := c.Submit("wash dishes", SourceUser, agents.RobotSim, 1)
	require.NotNil(t, first)
	require.NotNil(t, second)

	_, found := c.Task(first.ID)
	assert.True(t, found, "user tasks queue behind each other, never cancel")
}

func TestCancelActiveTaskIdlesRobot(t *testing.T) {
	c := newTestController()
	task, _ := c.Submit("clean the kitchen", SourceUser, agents.RobotSim, 0)
	c.Tick(0.25, 0)
	require.Equal(t, StatusWalking, task.Status)

	require.True(t, c.Cancel(task.ID))
	robot, _ := c.Robot(agents.RobotSim)
	assert.Equal(t, agents.StateIdle, robot.State)
	assert.Empty(t, robot.Path)
	assert.Empty(t, robot.TaskID)
	assert.False(t, c.Cancel(task.ID), "second cancel is a no-op")
}

func TestClearAgentTasks(t *testing.T) {
	c := newTestController()
	c.Submit("clean the kitchen", SourceUser, agents.RobotSim, 0)
	c.Submit("clean the bedroom", SourceUser, agents.RobotSim, 0)
	c.Submit("sweep the hall", SourceUser, agents.RobotChef, 0)

	assert.Equal(t, 2, c.ClearAgentTasks(agents.RobotSim))
	assert.Equal(t, 1, c.OpenCount(agents.RobotChef))
	assert.Zero(t, c.OpenCount(agents.RobotSim))
}

func TestDeadRobotDoesNotMove(t *testing.T) {
	c := newTestController()
	robot, _ := c.Robot(agents.RobotSim)
	robot.Battery = 0

	task, _ := c.Submit("clean the kitchen", SourceUser, agents.RobotSim, 0)
	run(c, 0, 10)
	assert.Equal(t, StatusQueued, task.Status)
	assert.Equal(t, agents.StateIdle, robot.State)
}

func TestDoorwayPause(t *testing.T) {
	c := newTestController()
	c.Submit("clean the kitchen", SourceUser, agents.RobotSim, 0)
	robot, _ := c.Robot(agents.RobotSim)

	paused := false
	now := 0.0
	for elapsed := 0.0; elapsed < 30; elapsed += 0.25 {
		c.Tick(0.25, now)
		now += 0.25
		if robot.PausedUntil > now {
			paused = true
		}
	}
	assert.True(t, paused, "robot should pause at the kitchen doorway")
}

func TestSetPlanResetsEverything(t *testing.T) {
	c := newTestController()
	c.Submit("clean the kitchen", SourceUser, agents.RobotSim, 0)
	c.Tick(0.25, 0)

	plan := nav.TownhousePlan()
	c.SetPlan(plan, rooms.NewTracker(plan.RoomIDs(), 2))

	assert.Empty(t, c.Tasks())
	for _, r := range c.Roster() {
		assert.Equal(t, plan.Spawn, r.Position)
		assert.Equal(t, 100.0, r.Battery)
		assert.Equal(t, agents.StateIdle, r.State)
	}
	assert.False(t, c.OverrideActive(agents.RobotSim, 0.5))
}
