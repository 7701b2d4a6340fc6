package engine

import (
	"log/slog"
	"time"
)

// Engine drives the simulation at a fixed frame interval, feeding measured
// wall-clock deltas into the clock so frame jitter never skews sim-time.
type Engine struct {
	Sim      *Simulation
	Interval time.Duration

	stop chan struct{}
	done chan struct{}
}

// DefaultInterval is the frame interval: four updates per engine-second keeps
// movement smooth without burning a core.
const DefaultInterval = 250 * time.Millisecond

// maxFrameDelta caps a single frame's wall-clock delta. A long GC pause or a
// suspended laptop lid must not teleport robots across the house.
const maxFrameDelta = 1.0

// New creates an engine around a simulation.
func New(sim *Simulation) *Engine {
	return &Engine{
		Sim:      sim,
		Interval: DefaultInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run steps the simulation until Stop is called. Blocks; run it on its own
// goroutine.
func (e *Engine) Run() {
	defer close(e.done)
	slog.Info("engine started", "interval", e.Interval, "speed", e.Sim.Speed())

	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-e.stop:
			slog.Info("engine stopped", "clock", e.Sim.Status().Clock)
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if dt > maxFrameDelta {
				dt = maxFrameDelta
			}
			e.Sim.Step(dt)
		}
	}
}

// Stop halts the loop and waits for the in-flight frame to finish.
func (e *Engine) Stop() {
	close(e.stop)
	<-e.done
}
