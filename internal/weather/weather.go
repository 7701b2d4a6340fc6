// Package weather simulates deterministic household weather. Smooth noise
// over simulated time picks the sky condition and an outdoor temperature
// curve; both feed modifier factors consumed by the resource simulator.
package weather

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Kind is the current sky condition.
type Kind string

const (
	Sunny Kind = "sunny"
	Rainy Kind = "rainy"
	Snowy Kind = "snowy"
)

// Conditions is the weather reading at one simulated instant.
type Conditions struct {
	Kind  Kind    `json:"kind"`
	TempC float64 `json:"temp_c"`
}

// Sim generates weather from seeded noise, so a given seed and sim-time
// always produce the same reading.
type Sim struct {
	sky  opensimplex.Noise
	temp opensimplex.Noise
}

// New creates a weather simulator from a seed.
func New(seed int64) *Sim {
	return &Sim{
		sky:  opensimplex.NewNormalized(seed),
		temp: opensimplex.NewNormalized(seed + 1),
	}
}

const minutesPerDay = 24 * 60

// At returns the weather at an absolute sim-minute timestamp. The sky shifts
// on a roughly three-sim-hour scale; temperature follows a daily arc peaking
// mid-afternoon, nudged by slow noise.
func (s *Sim) At(simMinutes float64) Conditions {
	sky := s.sky.Eval2(simMinutes/180, 0)

	kind := Sunny
	switch {
	case sky > 0.78:
		kind = Snowy
	case sky > 0.58:
		kind = Rainy
	}

	tod := math.Mod(simMinutes, minutesPerDay) / minutesPerDay
	daily := math.Sin((tod - 0.25) * 2 * math.Pi) // coldest pre-dawn, warmest mid-afternoon
	drift := s.temp.Eval2(simMinutes/720, 0)*10 - 5
	temp := 14 + daily*8 + drift
	if kind == Snowy {
		temp = math.Min(temp, 1)
	}

	return Conditions{Kind: kind, TempC: temp}
}

// ComfortMultiplier scales battery drain for thermal conditions. A house far
// from comfortable temperature works the robots a little harder.
func (c Conditions) ComfortMultiplier() float64 {
	dev := math.Abs(c.TempC - 20)
	if dev <= 8 {
		return 1.0
	}
	return math.Min(1.2, 1.0+(dev-8)*0.02)
}

// CozyBonus is the happiness delta per sim-minute for weather worth watching
// through a window.
func (c Conditions) CozyBonus() float64 {
	switch c.Kind {
	case Rainy:
		return 0.02
	case Snowy:
		return 0.03
	default:
		return 0
	}
}
