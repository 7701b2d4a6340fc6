// Package engine provides the frame-based simulation loop and the shared
// simulation context every subsystem runs under.
package engine

import (
	"fmt"
	"math"
)

const minutesPerDay = 24 * 60

// Clock tracks simulated time. One engine-second at speed 1.0 advances the
// household clock by one sim-minute, so elapsed engine-seconds and elapsed
// sim-minutes share a single number.
type Clock struct {
	SimMinutes float64 `json:"sim_minutes"`
	Speed      float64 `json:"speed"`
}

// NewClock starts a clock at 08:00 on day zero.
func NewClock(speed float64) *Clock {
	return &Clock{SimMinutes: 8 * 60, Speed: speed}
}

// Advance moves the clock forward by the given real-world seconds, scaled by
// the speed multiplier, and returns the simulated delta. At speed zero the
// clock is frozen and the delta is zero.
func (c *Clock) Advance(realSeconds float64) float64 {
	if c.Speed <= 0 || realSeconds <= 0 {
		return 0
	}
	dt := realSeconds * c.Speed
	c.SimMinutes += dt
	return dt
}

// TimeOfDay returns the minute within the current day, in [0, 1440).
func (c *Clock) TimeOfDay() float64 {
	return math.Mod(c.SimMinutes, minutesPerDay)
}

// Day returns the zero-based simulated day number.
func (c *Clock) Day() int {
	return int(c.SimMinutes / minutesPerDay)
}

// Hour returns the hour of day, 0–23.
func (c *Clock) Hour() int {
	return int(c.TimeOfDay() / 60)
}

// Minute returns the minute within the hour, 0–59.
func (c *Clock) Minute() int {
	return int(c.TimeOfDay()) % 60
}

// Period names the coarse part of day, for presentation and logs.
func (c *Clock) Period() string {
	switch h := c.Hour(); {
	case h < 6:
		return "night"
	case h < 12:
		return "morning"
	case h < 18:
		return "afternoon"
	default:
		return "evening"
	}
}

// Format renders the clock as "Day 3, 14:05".
func (c *Clock) Format() string {
	return fmt.Sprintf("Day %d, %02d:%02d", c.Day()+1, c.Hour(), c.Minute())
}
