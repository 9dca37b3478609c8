package sim

import (
	"time"

	"github.com/sprasad796/Stop-And-Go/internal/units"
)

// Clock is the fixed-step simulation clock. Tick 0 is the initial state.
type Clock struct {
	Tick int
	Step float64 // s
}

// Time is the simulation time of the current tick, on the rounded tick grid.
func (c Clock) Time() float64 { return units.TickTime(c.Tick, c.Step) }

// Advance moves the clock forward one tick.
func (c *Clock) Advance() { c.Tick++ }

// Duration is the wall-clock length of one tick, used for real-time pacing.
func (c Clock) Duration() time.Duration {
	return time.Duration(c.Step * float64(time.Second))
}
