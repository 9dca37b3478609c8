package vehicle

import (
	"fmt"
	"math"

	"github.com/sprasad796/Stop-And-Go/internal/geometry"
	"github.com/sprasad796/Stop-And-Go/internal/motion"
	"gonum.org/v1/gonum/spatial/r2"
)

// Update advances the car by one tick according to the gate set by the
// arbitrator. It panics on a zero turn radius, which can only come from a
// broken layout.
func (s *State) Update(l geometry.Layout) {
	s.PriorPose = s.Pose
	if s.Ended {
		s.TimeIndex++
		return
	}

	switch s.Gate {
	case GateQueued:
		s.StopWaitTimeIndex++
		s.prepareTurn(l)
		return
	case GateDwell:
		s.TimeIndex++
		s.prepareTurn(l)
		return
	}

	s.TimeIndex++
	e := s.Profile.At(s.TimeIndex)
	s.Phase = e.Phase
	dp := e.StepDistance
	if s.SpeedOverride {
		dp = s.Speed * s.Profile.Step * s.Profile.Resolution
	} else {
		s.Speed, s.Acceleration = e.Speed, e.Acceleration
	}

	if s.Overlap && s.Phase.Ord() >= motion.PhaseStop.Ord() {
		s.prepareTurn(l)
	}
	s.move(l, dp)

	if l.Outside(s.Pose) {
		s.Ended = true
	}
	s.refreshBoundary()
}

// prepareTurn computes the arc for a car that is about to turn. It runs at
// most once per car.
func (s *State) prepareTurn(l geometry.Layout) {
	if s.Turn == geometry.TurnNone || s.Turning || s.Turned || s.Swept != 0 {
		return
	}
	target := geometry.TargetOf(s.Sequence, s.Turn)
	c, r, err := geometry.CurvatureCenter(s.Sequence, s.Turn, s.Pose.Center(), l.Paths[target.Path].Const)
	if err != nil {
		panic(fmt.Sprintf("vehicle: car %d: %v", s.Sequence, err))
	}
	s.TurnCenter, s.TurnRadius, s.Turning = c, r, true
}

func (s *State) move(l geometry.Layout, dp float64) {
	if !s.Turning {
		s.Pose.Pos = r2.Add(s.Pose.Pos, r2.Scale(dp, geometry.StepVector(s.Direction)))
		return
	}

	s.Swept += dp
	swept := s.Swept / s.TurnRadius
	if geometry.TurnComplete(swept) {
		s.completeTurn(l)
		return
	}
	angle := geometry.TurningAngle(s.Sequence, s.Turn, swept)
	c := r2.Add(s.TurnCenter, geometry.DeltaPosition(s.Sequence, s.Turn, s.TurnRadius, angle))
	s.Pose.Pos = r2.Vec{X: c.X - s.Pose.Width/2, Y: c.Y - s.Pose.Length/2}
	s.Heading = swept
}

// completeTurn snaps the car onto its exit lane. The body extents swap here
// and nowhere else.
func (s *State) completeTurn(l geometry.Layout) {
	target := geometry.TargetOf(s.Sequence, s.Turn)
	s.Heading = math.Pi / 2
	s.Direction = target.Direction
	s.Pose = l.ExitPose(target, s.Pose.Length, s.Pose.Width)
	s.Turning = false
	s.Turned = true
}

func (s *State) refreshBoundary() {
	box := geometry.Box(s.Pose.Pos, s.Pose.Width, s.Pose.Length)
	if !s.Turning || s.Swept == 0 {
		s.Boundary = box
		return
	}
	angle := geometry.BodyAngle(s.Sequence, s.Turn,
		geometry.TurningAngle(s.Sequence, s.Turn, s.Swept/s.TurnRadius))
	pts := geometry.RotatePolygon(box[:], s.Pose.Center(), angle, geometry.RotationOf(s.Sequence, s.Turn))
	copy(s.Boundary[:], pts)
}
