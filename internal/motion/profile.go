package motion

import "fmt"

// Phase labels an interval of a motion profile.
type Phase string

const (
	PhaseCruise      Phase = "CRUISE"   // Constant pre-stop speed
	PhaseDecel       Phase = "DECEL"    // Braking towards the stop line
	PhaseStop        Phase = "STOP"     // Stationary at the stop line
	PhaseAccel       Phase = "ACCEL"    // Pulling away
	PhaseCruiseAfter Phase = "CRUISE_A" // Constant post-stop speed
	PhasePastSim     Phase = "PAST_SIM" // Bookkeeping until the car has left the frame
)

// Phases lists every phase in profile order.
var Phases = [...]Phase{PhaseCruise, PhaseDecel, PhaseStop, PhaseAccel, PhaseCruiseAfter, PhasePastSim}

// Ord returns the position of the phase in profile order, or -1.
func (p Phase) Ord() int {
	for i, ph := range Phases {
		if ph == p {
			return i
		}
	}
	return -1
}

// ParsePhase validates a stored phase label.
func ParsePhase(name string) (Phase, error) {
	p := Phase(name)
	if p.Ord() < 0 {
		return "", fmt.Errorf("unknown phase %q", name)
	}
	return p, nil
}

// AfterStop reports whether the car has finished accelerating away.
func (p Phase) AfterStop() bool {
	return p == PhaseCruiseAfter || p == PhasePastSim
}

// Entry is one tick of a motion profile.
type Entry struct {
	Tick         int     `json:"tick"`        // Index on the tick grid
	Time         float64 `json:"time_s"`      // Tick time rounded to two decimals
	Phase        Phase   `json:"phase"`       // Profile phase at this tick
	StepDistance float64 `json:"step_px"`     // Distance covered since the previous tick (px)
	Distance     float64 `json:"distance_px"` // Cumulative distance (px)
	Speed        float64 `json:"speed_mps"`   // m/s
	Acceleration float64 `json:"accel_mpss"`  // m/s²
}

// Kinematics are the accepted draws of the rejection sampler.
type Kinematics struct {
	Decel       float64 `json:"decel_mpss"`
	Accel       float64 `json:"accel_mpss"`
	SpeedBefore float64 `json:"speed_before_mps"`
	SpeedAfter  float64 `json:"speed_after_mps"`
}

// StopDistance is the braking distance implied by the pre-stop speed.
func (k Kinematics) StopDistance() float64 {
	return k.SpeedBefore * k.SpeedBefore / (2 * -k.Decel)
}

// Profile is the immutable timeline of one car. Entries[i].Tick == i.
type Profile struct {
	Entries      []Entry
	Step         float64 // Tick step (s)
	Resolution   float64 // px per metre
	Kinematics   Kinematics
	StopDuration float64 // Sampled stop duration (s)
	Attempts     int     // Draws spent by the rejection sampler
}

// Len returns the number of entries.
func (p *Profile) Len() int { return len(p.Entries) }

// At returns the entry for a tick, clamped to the profile. Ticks past the
// end repeat the last entry so a car that has not yet left the frame keeps
// moving at its final speed.
func (p *Profile) At(tick int) Entry {
	if tick < 0 {
		tick = 0
	}
	if tick >= len(p.Entries) {
		tick = len(p.Entries) - 1
	}
	return p.Entries[tick]
}

// LastTime is the time of the last emitted entry.
func (p *Profile) LastTime() float64 {
	if len(p.Entries) == 0 {
		return 0
	}
	return p.Entries[len(p.Entries)-1].Time
}

// PhaseSpan returns the first and last tick of a phase.
func (p *Profile) PhaseSpan(ph Phase) (first, last int, ok bool) {
	first, last = -1, -1
	for _, e := range p.Entries {
		if e.Phase != ph {
			continue
		}
		if first < 0 {
			first = e.Tick
		}
		last = e.Tick
	}
	return first, last, first >= 0
}

// Duration is the time spent in a phase on the tick grid.
func (p *Profile) Duration(ph Phase) float64 {
	first, last, ok := p.PhaseSpan(ph)
	if !ok {
		return 0
	}
	return float64(last-first+1) * p.Step
}
