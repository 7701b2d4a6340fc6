package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/simbot/internal/nav"
)

func testRobot() *Robot {
	r := &Robot{ID: RobotSim, Name: "Sim", WalkSpeed: 1.6}
	r.Reset(nav.Point{})
	return r
}

func TestChargingRecoversBattery(t *testing.T) {
	r := testRobot()
	r.Battery = 50
	r.IsCharging = true

	TickResources(r, 10, StockModifiers())
	assert.InDelta(t, 72, r.Battery, 1e-9)
	// Charging also restores energy.
	assert.Greater(t, r.Needs.Energy, 80.0)
}

func TestDrainOrderingByActivity(t *testing.T) {
	drainFor := func(state State) float64 {
		r := testRobot()
		r.State = state
		TickResources(r, 10, StockModifiers())
		return 100 - r.Battery
	}

	idle := drainFor(StateIdle)
	walking := drainFor(StateWalking)
	working := drainFor(StateWorking)

	assert.Less(t, idle, walking)
	assert.Less(t, walking, working)
}

func TestBatteryClampsAtZero(t *testing.T) {
	r := testRobot()
	r.Battery = 0.5
	r.State = StateWorking

	TickResources(r, 1000, StockModifiers())
	assert.Equal(t, 0.0, r.Battery)
}

func TestBatteryClampsAtFull(t *testing.T) {
	r := testRobot()
	r.Battery = 99
	r.IsCharging = true

	TickResources(r, 10, StockModifiers())
	assert.Equal(t, 100.0, r.Battery)
}

func TestComfortModifierScalesDrain(t *testing.T) {
	base := testRobot()
	base.State = StateWorking
	TickResources(base, 10, StockModifiers())

	harsh := testRobot()
	harsh.State = StateWorking
	mods := StockModifiers()
	mods.Comfort = 1.2
	TickResources(harsh, 10, mods)

	assert.Less(t, harsh.Battery, base.Battery)
}

func TestCozyBonusLiftsHappiness(t *testing.T) {
	dry := testRobot()
	dry.State = StateWorking
	TickResources(dry, 10, StockModifiers())

	rainy := testRobot()
	rainy.State = StateWorking
	mods := StockModifiers()
	mods.CozyBonus = 0.03
	TickResources(rainy, 10, mods)

	assert.Greater(t, rainy.Needs.Happiness, dry.Needs.Happiness)
}

func TestZeroDeltaIsNoOp(t *testing.T) {
	r := testRobot()
	before := *r
	TickResources(r, 0, StockModifiers())
	assert.Equal(t, before.Battery, r.Battery)
	assert.Equal(t, before.Needs, r.Needs)
}

func TestMoodFromNeeds(t *testing.T) {
	cases := []struct {
		name  string
		needs Needs
		want  Mood
	}{
		{"exhausted", Needs{Energy: 10, Happiness: 90, Social: 90, Boredom: 0}, MoodTired},
		{"lonely", Needs{Energy: 60, Happiness: 50, Social: 5, Boredom: 0}, MoodLonely},
		{"bored", Needs{Energy: 60, Happiness: 50, Social: 50, Boredom: 90}, MoodBored},
		{"happy", Needs{Energy: 60, Happiness: 80, Social: 50, Boredom: 20}, MoodHappy},
		{"baseline", Needs{Energy: 60, Happiness: 50, Social: 50, Boredom: 20}, MoodContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MoodFromNeeds(tc.needs))
		})
	}
}

func TestDefaultRoster(t *testing.T) {
	spawn := nav.Point{X: 0.5, Z: 1.5}
	roster := DefaultRoster(spawn)
	require.Len(t, roster, 3)

	ids := map[RobotID]bool{}
	for _, r := range roster {
		ids[r.ID] = true
		assert.Equal(t, spawn, r.Position)
		assert.Equal(t, 100.0, r.Battery)
		assert.Equal(t, StateIdle, r.State)
		assert.Positive(t, r.WalkSpeed)
	}
	assert.True(t, ids[RobotSim] && ids[RobotChef] && ids[RobotSparkle])
}

func TestSpeedForFallsBackToNeutral(t *testing.T) {
	roster := DefaultRoster(nav.Point{})
	chef := roster[1]
	assert.Equal(t, 1.4, chef.SpeedFor("cooking"))
	assert.Equal(t, 1.0, chef.SpeedFor("scrubbing"))
}
