package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClockAdvanceScalesWithSpeed(t *testing.T) {
	c := NewClock(1)
	start := c.SimMinutes

	dt := c.Advance(2)
	assert.Equal(t, 2.0, dt)
	assert.Equal(t, start+2, c.SimMinutes)

	c.Speed = 10
	dt = c.Advance(2)
	assert.Equal(t, 20.0, dt)
}

func TestClockPausedIsFrozen(t *testing.T) {
	c := NewClock(0)
	start := c.SimMinutes
	assert.Zero(t, c.Advance(5))
	assert.Equal(t, start, c.SimMinutes)
}

func TestClockIgnoresNegativeDelta(t *testing.T) {
	c := NewClock(1)
	start := c.SimMinutes
	assert.Zero(t, c.Advance(-1))
	assert.Equal(t, start, c.SimMinutes)
}

func TestClockStartsMorning(t *testing.T) {
	c := NewClock(1)
	assert.Equal(t, 8, c.Hour())
	assert.Equal(t, 0, c.Minute())
	assert.Equal(t, 0, c.Day())
	assert.Equal(t, "morning", c.Period())
}

func TestClockDayRollover(t *testing.T) {
	c := NewClock(1)
	c.Advance(16*60 + 5) // 8:00 plus 16h05 lands at 00:05 next day
	assert.Equal(t, 1, c.Day())
	assert.Equal(t, 0, c.Hour())
	assert.Equal(t, 5, c.Minute())
	assert.Equal(t, "night", c.Period())
}

func TestClockFormat(t *testing.T) {
	c := NewClock(1)
	assert.Equal(t, "Day 1, 08:00", c.Format())
	c.Advance(6*60 + 30)
	assert.Equal(t, "Day 1, 14:30", c.Format())
}

func TestClockPeriods(t *testing.T) {
	c := &Clock{}
	cases := map[float64]string{
		3 * 60:  "night",
		9 * 60:  "morning",
		14 * 60: "afternoon",
		20 * 60: "evening",
	}
	for minutes, want := range cases {
		c.SimMinutes = minutes
		assert.Equal(t, want, c.Period(), "at minute %v", minutes)
	}
}
