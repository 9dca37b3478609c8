// Package following keeps cars that share an exit lane from running into
// each other once they have left the intersection.
package following

import (
	"math"

	"github.com/sprasad796/Stop-And-Go/internal/geometry"
	"github.com/sprasad796/Stop-And-Go/internal/monitoring"
	"github.com/sprasad796/Stop-And-Go/internal/vehicle"
	"gonum.org/v1/gonum/floats/scalar"
)

// laneTolerance is how close two path coordinates must be to count as the
// same lane.
const laneTolerance = 1e-9

// Enforcer clamps a trailing car's speed to its leader's when the gap
// between them closes to the following distance.
type Enforcer struct {
	distance float64 // px
	log      *monitoring.Logger
}

// NewEnforcer returns an enforcer for a following distance in pixels.
func NewEnforcer(distancePx float64, log *monitoring.Logger) *Enforcer {
	return &Enforcer{distance: distancePx, log: log}
}

// Pair orders two cars on the same lane. ok is false when they do not share
// a lane, direction and post-stop phase.
func Pair(a, b *vehicle.State) (lead, trail *vehicle.State, gap float64, ok bool) {
	if !a.Phase.AfterStop() || !b.Phase.AfterStop() || a.Direction != b.Direction {
		return nil, nil, 0, false
	}

	var pa, pb float64
	switch geometry.TravelAxis(a.Direction) {
	case geometry.AxisY:
		if !scalar.EqualWithinAbs(a.Pose.Pos.X, b.Pose.Pos.X, laneTolerance) {
			return nil, nil, 0, false
		}
		pa, pb = a.Pose.Pos.Y, b.Pose.Pos.Y
	default:
		if !scalar.EqualWithinAbs(a.Pose.Pos.Y, b.Pose.Pos.Y, laneTolerance) {
			return nil, nil, 0, false
		}
		pa, pb = a.Pose.Pos.X, b.Pose.Pos.X
	}
	if pa <= 0 || pb <= 0 {
		return nil, nil, 0, false
	}

	// Heading south or east, the larger coordinate is ahead.
	forward := a.Direction == geometry.South || a.Direction == geometry.East
	if (pa > pb) == forward {
		lead, trail = a, b
	} else {
		lead, trail = b, a
	}
	return lead, trail, math.Abs(pa - pb), true
}

// Apply evaluates every unordered pair once and returns how many cars were
// clamped.
func (e *Enforcer) Apply(cars []*vehicle.State) int {
	clamped := 0
	for i := 0; i < len(cars); i++ {
		for j := i + 1; j < len(cars); j++ {
			if cars[i].Ended || cars[j].Ended {
				continue
			}
			lead, trail, gap, ok := Pair(cars[i], cars[j])
			if !ok || gap <= 0 || gap > e.distance || trail.Speed <= lead.Speed {
				continue
			}
			e.log.Debugf("car %d clamped %.3f -> %.3f m/s behind car %d (gap %.2fpx)",
				trail.Sequence, trail.Speed, lead.Speed, lead.Sequence, gap)
			trail.Speed = lead.Speed
			trail.SpeedOverride = true
			clamped++
		}
	}
	return clamped
}
