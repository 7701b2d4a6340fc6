// Package rooms tracks per-room upkeep meters. Rooms accumulate dirt over
// simulated time and recover when a task completes in them; the pre-task
// cleanliness reading feeds the dispatch learner.
package rooms

import (
	"math/rand"
)

// State holds one room's upkeep meters, each in [0,100].
type State struct {
	Cleanliness      float64 `json:"cleanliness"`
	Tidiness         float64 `json:"tidiness"`
	Routine          float64 `json:"routine"`
	DecayCleanliness float64 `json:"decay_cleanliness"` // per sim-minute
	DecayTidiness    float64 `json:"decay_tidiness"`    // per sim-minute
	LastServicedAt   float64 `json:"last_serviced_at"`  // sim-minutes
}

// baseDecay maps room ids to dirt-accumulation rates. Unknown rooms use the
// default rate.
var baseDecay = map[string]struct{ cleanliness, tidiness float64 }{
	"living-room": {0.10, 0.12},
	"kitchen":     {0.16, 0.14},
	"hallway":     {0.08, 0.09},
	"bedroom":     {0.07, 0.10},
	"bathroom":    {0.14, 0.11},
	"f2-bedroom":  {0.07, 0.10},
	"f2-office":   {0.09, 0.10},
}

const (
	defaultDecay   = 0.10
	routineDecay   = 0.035
	defaultReading = 75
)

// boosts maps task types to the meter improvements applied on completion.
var boosts = map[string]struct{ cleanliness, tidiness, routine float64 }{
	"cleaning":   {24, 20, 14},
	"vacuuming":  {20, 12, 12},
	"dishes":     {26, 18, 16},
	"laundry":    {10, 28, 20},
	"organizing": {9, 26, 18},
	"cooking":    {8, 12, 16},
	"bed-making": {8, 24, 22},
	"scrubbing":  {30, 16, 14},
	"sweeping":   {22, 14, 14},
	"general":    {8, 8, 8},
}

// Tracker owns the room states for the active floor plan.
type Tracker struct {
	order  []string
	states map[string]*State
}

// NewTracker seeds fresh room states for the given room ids. Starting meters
// are jittered so a new house doesn't look machine-stamped.
func NewTracker(roomIDs []string, seed int64) *Tracker {
	rng := rand.New(rand.NewSource(seed))
	t := &Tracker{
		order:  append([]string(nil), roomIDs...),
		states: make(map[string]*State, len(roomIDs)),
	}
	for _, id := range roomIDs {
		decay, ok := baseDecay[id]
		if !ok {
			decay = struct{ cleanliness, tidiness float64 }{defaultDecay, defaultDecay}
		}
		t.states[id] = &State{
			Cleanliness:      78 + rng.Float64()*15,
			Tidiness:         76 + rng.Float64()*16,
			Routine:          70 + rng.Float64()*18,
			DecayCleanliness: decay.cleanliness,
			DecayTidiness:    decay.tidiness,
		}
	}
	return t
}

// Decay advances dirt accumulation by the elapsed simulated minutes.
func (t *Tracker) Decay(dtMinutes float64) {
	if dtMinutes <= 0 {
		return
	}
	for _, s := range t.states {
		s.Cleanliness = clamp(s.Cleanliness - s.DecayCleanliness*dtMinutes)
		s.Tidiness = clamp(s.Tidiness - s.DecayTidiness*dtMinutes)
		s.Routine = clamp(s.Routine - routineDecay*dtMinutes)
	}
}

// Boost applies the completion improvement for a task type to a room.
func (t *Tracker) Boost(roomID, taskType string, now float64) {
	s, ok := t.states[roomID]
	if !ok {
		return
	}
	b, ok := boosts[taskType]
	if !ok {
		b = boosts["general"]
	}
	s.Cleanliness = clamp(s.Cleanliness + b.cleanliness)
	s.Tidiness = clamp(s.Tidiness + b.tidiness)
	s.Routine = clamp(s.Routine + b.routine)
	s.LastServicedAt = now
}

// Cleanliness returns a room's cleanliness reading, or a neutral default for
// rooms the tracker doesn't know.
func (t *Tracker) Cleanliness(roomID string) float64 {
	if s, ok := t.states[roomID]; ok {
		return s.Cleanliness
	}
	return defaultReading
}

// State returns a copy of a room's meters.
func (t *Tracker) State(roomID string) (State, bool) {
	s, ok := t.states[roomID]
	if !ok {
		return State{}, false
	}
	return *s, true
}

// Snapshot returns all room states keyed by room id, in plan order.
func (t *Tracker) Snapshot() map[string]State {
	out := make(map[string]State, len(t.states))
	for id, s := range t.states {
		out[id] = *s
	}
	return out
}

// RoomIDs returns the tracked room ids in plan order.
func (t *Tracker) RoomIDs() []string {
	return t.order
}

// Attention scores how much a room wants service right now. Dirtier rooms
// and rooms long past their last service score higher.
func (t *Tracker) Attention(roomID string, now float64) float64 {
	s, ok := t.states[roomID]
	if !ok {
		return 0
	}
	score := (100 - s.Cleanliness) * 0.5
	score += (100 - s.Tidiness) * 0.3
	if since := now - s.LastServicedAt; since > 120 {
		score += 6
	}
	return score
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
