package vehicle

import (
	"github.com/sprasad796/Stop-And-Go/internal/geometry"
	"github.com/sprasad796/Stop-And-Go/internal/motion"
	"github.com/sprasad796/Stop-And-Go/internal/units"
	"gonum.org/v1/gonum/spatial/r2"
)

// Snapshot is the read-only view of a car that renderers and recorders
// consume. It is a value; later updates never change it.
type Snapshot struct {
	Sequence     int
	X, Y         float64 // Top-left of the axis-aligned body
	Center       r2.Vec
	Heading      float64
	Direction    geometry.Direction
	Speed        float64 // m/s
	SpeedPPS     float64 // px/s
	Acceleration float64
	Phase        motion.Phase
	Turn         geometry.Turn
	Width        float64
	Length       float64
	Boundary     [4]r2.Vec
	Ended        bool
}

// Snapshot captures the car's current externally visible state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Sequence:     s.Sequence,
		X:            s.Pose.Pos.X,
		Y:            s.Pose.Pos.Y,
		Center:       s.Pose.Center(),
		Heading:      s.Heading,
		Direction:    s.Direction,
		Speed:        s.Speed,
		SpeedPPS:     units.SpeedToPixels(s.Speed, s.Profile.Resolution),
		Acceleration: s.Acceleration,
		Phase:        s.Phase,
		Turn:         s.Turn,
		Width:        s.Pose.Width,
		Length:       s.Pose.Length,
		Boundary:     s.Boundary,
		Ended:        s.Ended,
	}
}
