package power

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/simbot/internal/agents"
	"github.com/talgya/simbot/internal/nav"
	"github.com/talgya/simbot/internal/rooms"
	"github.com/talgya/simbot/internal/tasks"
)

func newTestSupervisor() (*Supervisor, *tasks.Controller) {
	plan := nav.CottagePlan()
	tracker := rooms.NewTracker(plan.RoomIDs(), 1)
	roster := agents.DefaultRoster(plan.Spawn)
	ctrl := tasks.NewController(plan, tracker, roster)
	return NewSupervisor(ctrl), ctrl
}

func TestProximityStartsCharging(t *testing.T) {
	s, c := newTestSupervisor()
	r, _ := c.Robot(agents.RobotSim)
	r.Position = c.Plan.Charging
	r.Battery = 50

	s.Tick(0)
	assert.True(t, r.IsCharging)
}

func TestNoChargingWhenNearlyFull(t *testing.T) {
	s, c := newTestSupervisor()
	r, _ := c.Robot(agents.RobotSim)
	r.Position = c.Plan.Charging
	r.Battery = 96

	s.Tick(0)
	assert.False(t, r.IsCharging)
}

func TestNoChargingOutOfRange(t *testing.T) {
	s, c := newTestSupervisor()
	r, _ := c.Robot(agents.RobotSim)
	r.Position = nav.Point{X: c.Plan.Charging.X + 3, Z: c.Plan.Charging.Z}
	r.Battery = 50

	s.Tick(0)
	assert.False(t, r.IsCharging)
}

func TestFullChargeStopsAndClearsLatch(t *testing.T) {
	s, c := newTestSupervisor()
	r, _ := c.Robot(agents.RobotSim)
	r.Position = c.Plan.Charging
	r.Battery = 50
	s.Tick(0)
	require.True(t, r.IsCharging)

	r.Battery = 96
	s.Tick(1)
	assert.False(t, r.IsCharging)
	assert.False(t, s.Latched(agents.RobotSim))
	assert.Equal(t, agents.MoodHappy, r.Mood)
	assert.Contains(t, r.Thought, "Fully charged")
}

func TestLowBatteryDispatchesOnce(t *testing.T) {
	s, c := newTestSupervisor()
	r, _ := c.Robot(agents.RobotSim)
	r.Battery = 10

	s.Tick(0)
	require.True(t, s.Latched(agents.RobotSim))
	require.Equal(t, 1, c.OpenCount(agents.RobotSim))

	task := c.Tasks()[0]
	assert.Equal(t, tasks.SourceSchedule, task.Source)
	assert.Equal(t, c.Plan.Charging, task.TargetPosition)
	assert.Equal(t, agents.MoodTired, r.Mood)

	// The latch holds: repeated ticks don't queue a second trip.
	s.Tick(1)
	s.Tick(2)
	assert.Equal(t, 1, c.OpenCount(agents.RobotSim))
}

func TestChargeTripIsMaintenanceInNearestRoom(t *testing.T) {
	s, c := newTestSupervisor()
	r, _ := c.Robot(agents.RobotSim)
	r.Battery = 10

	s.Tick(0)
	require.Len(t, c.Tasks(), 1)
	task := c.Tasks()[0]

	// The cottage charger sits nearest the living room, not some fixed room id.
	assert.Equal(t, "living-room", task.TargetRoom)
	assert.True(t, task.Maintenance)
}

func TestLowBatteryDispatchDisplacesQueuedWork(t *testing.T) {
	s, c := newTestSupervisor()
	c.Submit("clean the kitchen", tasks.SourceUser, agents.RobotSim, 0)
	c.Submit("clean the bedroom", tasks.SourceUser, agents.RobotSim, 0)

	r, _ := c.Robot(agents.RobotSim)
	r.Battery = 10
	s.Tick(0)

	require.Equal(t, 1, c.OpenCount(agents.RobotSim))
	assert.Equal(t, tasks.SourceSchedule, c.Tasks()[0].Source)
}

func TestLatchRearmsAfterRecovery(t *testing.T) {
	s, c := newTestSupervisor()
	r, _ := c.Robot(agents.RobotSim)
	r.Battery = 10
	s.Tick(0)
	require.True(t, s.Latched(agents.RobotSim))

	// Not enough recovery yet: the margin keeps the latch set.
	c.ClearAgentTasks(agents.RobotSim)
	r.Battery = 20
	s.Tick(1)
	assert.True(t, s.Latched(agents.RobotSim))

	r.Battery = 26
	s.Tick(2)
	assert.False(t, s.Latched(agents.RobotSim))
}

func TestDeadBatteryClearsTasksAndParks(t *testing.T) {
	s, c := newTestSupervisor()
	task, _ := c.Submit("clean the kitchen", tasks.SourceUser, agents.RobotSim, 0)
	require.NotNil(t, task)
	c.Tick(0.25, 0)

	r, _ := c.Robot(agents.RobotSim)
	r.Battery = 0
	s.Tick(1)

	assert.Zero(t, c.OpenCount(agents.RobotSim))
	assert.Equal(t, agents.StateIdle, r.State)
	assert.Contains(t, r.Thought, "depleted")
	assert.Equal(t, agents.MoodTired, r.Mood)
}

func TestUserOverrideLatchResetIsOptIn(t *testing.T) {
	s, c := newTestSupervisor()
	r, _ := c.Robot(agents.RobotSim)
	r.Battery = 10
	s.Tick(0)
	require.True(t, s.Latched(agents.RobotSim))

	// A user command opens an override window but by default keeps the latch.
	c.ClearAgentTasks(agents.RobotSim)
	c.Submit("clean the kitchen", tasks.SourceUser, agents.RobotSim, 1)
	s.Tick(1)
	assert.True(t, s.Latched(agents.RobotSim))

	s.ResetLatchOnUserOverride = true
	s.Tick(2)
	assert.False(t, s.Latched(agents.RobotSim))
}

func TestNotifyReceivesTransitions(t *testing.T) {
	s, c := newTestSupervisor()
	var thoughts []string
	s.Notify = func(r *agents.Robot, thought string, mood agents.Mood) {
		thoughts = append(thoughts, thought)
	}

	r, _ := c.Robot(agents.RobotSim)
	r.Battery = 10
	s.Tick(0)
	require.NotEmpty(t, thoughts)
	assert.Contains(t, thoughts[0], "Battery low")
}

func TestLowBatteryRobotReachesChargerAndRecovers(t *testing.T) {
	s, c := newTestSupervisor()
	r, _ := c.Robot(agents.RobotSim)
	r.Battery = 12

	now := 0.0
	powerAcc := 0.0
	for elapsed := 0.0; elapsed < 300; elapsed += 0.25 {
		c.Tick(0.25, now)
		agents.TickResources(r, 0.25, agents.StockModifiers())
		powerAcc += 0.25
		if powerAcc >= 1 {
			powerAcc -= 1
			s.Tick(now)
		}
		now += 0.25
	}

	assert.GreaterOrEqual(t, r.Battery, 95.0)
	assert.False(t, r.IsCharging)
	assert.False(t, s.Latched(agents.RobotSim))
	assert.Less(t, r.Position.DistXZ(c.Plan.Charging), ChargingRange)
}