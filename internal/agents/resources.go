package agents

// Battery rates in percent per sim-minute, before modifiers. Working drains
// fastest, idle slowest, transit in between; charging recovers quickly.
const (
	chargeRate   = 2.2
	idleDrain    = 0.02
	walkingDrain = 0.06
	workingDrain = 0.12
)

// Modifiers scales the resource simulation with externally-supplied factors.
type Modifiers struct {
	// Efficiency multiplies battery drain; upgrades push it below 1.0.
	Efficiency float64
	// Comfort multiplies battery drain for thermal conditions; an
	// uncomfortable house pushes it above 1.0.
	Comfort float64
	// CozyBonus is a flat happiness delta per sim-minute (rain or snow on
	// the windows makes the house feel warm).
	CozyBonus float64
}

// StockModifiers is the neutral modifier set.
func StockModifiers() Modifiers {
	return Modifiers{Efficiency: 1, Comfort: 1}
}

// TickResources advances one robot's battery and needs by the elapsed
// simulated minutes. It is a pure function of (robot state, elapsed time,
// modifiers) and never reads or writes tasks.
func TickResources(r *Robot, dtMinutes float64, mods Modifiers) {
	if dtMinutes <= 0 {
		return
	}
	if mods.Efficiency <= 0 {
		mods.Efficiency = 1
	}
	if mods.Comfort <= 0 {
		mods.Comfort = 1
	}

	drainScale := mods.Efficiency * mods.Comfort

	if r.IsCharging {
		r.Battery += chargeRate * dtMinutes
	} else {
		switch r.State {
		case StateWorking:
			r.Battery -= workingDrain * drainScale * dtMinutes
		case StateIdle:
			r.Battery -= idleDrain * drainScale * dtMinutes
		default:
			r.Battery -= walkingDrain * drainScale * dtMinutes
		}
	}

	n := &r.Needs
	switch {
	case r.IsCharging:
		n.Energy += 1.2 * dtMinutes
		n.Boredom += 0.25 * dtMinutes
	case r.State == StateWorking:
		n.Energy -= 0.25 * dtMinutes
		n.Happiness += 0.08 * dtMinutes
		n.Social -= 0.10 * dtMinutes
		n.Boredom -= 0.50 * dtMinutes
	case r.State == StateWalking:
		n.Energy -= 0.15 * dtMinutes
		n.Happiness += 0.02 * dtMinutes
		n.Social -= 0.08 * dtMinutes
		n.Boredom -= 0.30 * dtMinutes
	default: // idle
		n.Energy += 0.30 * dtMinutes
		n.Happiness -= 0.05 * dtMinutes
		n.Social -= 0.15 * dtMinutes
		n.Boredom += 0.40 * dtMinutes
	}

	n.Happiness += mods.CozyBonus * dtMinutes

	r.Battery = clampPercent(r.Battery)
	n.Energy = clampPercent(n.Energy)
	n.Happiness = clampPercent(n.Happiness)
	n.Social = clampPercent(n.Social)
	n.Boredom = clampPercent(n.Boredom)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
