// Package vehicle holds the mutable per-tick state of one car and its
// update step. A State is owned by its car; the arbitrator only sets the
// gate and zeroes speed, and the following-distance enforcer only sets the
// speed override.
package vehicle

import (
	"fmt"

	"github.com/sprasad796/Stop-And-Go/internal/geometry"
	"github.com/sprasad796/Stop-And-Go/internal/motion"
	"gonum.org/v1/gonum/spatial/r2"
)

// Gate is the arbitrator's decision for the coming update.
type Gate int

const (
	// GateProceed lets the car follow its profile.
	GateProceed Gate = iota
	// GateDwell holds the car at the stop line while it accrues its stop
	// duration. The profile clock keeps running.
	GateDwell
	// GateQueued holds the car behind a higher-priority car. The profile
	// clock is paused and the wait clock runs instead.
	GateQueued
)

func (g Gate) String() string {
	switch g {
	case GateDwell:
		return "dwell"
	case GateQueued:
		return "queued"
	default:
		return "proceed"
	}
}

// State is one car's kinematic state.
type State struct {
	Sequence int
	Profile  *motion.Profile

	Pose        geometry.Pose // Width/Length are the x/y extents of the body
	PriorPose   geometry.Pose
	InitialPose geometry.Pose
	Heading     float64 // Radians; 0 before a turn, the swept angle while turning, π/2 after
	Direction   geometry.Direction
	Boundary    [4]r2.Vec

	Speed         float64 // m/s
	Acceleration  float64 // m/s²
	SpeedOverride bool    // Speed was clamped by the following-distance enforcer
	Phase         motion.Phase

	TimeIndex         int     // Profile tick
	StopDuration      float64 // Seconds the car must dwell before it may queue
	StopWaitTicks     int     // Ticks accrued at the stop line
	StopWaitTimeIndex int     // Ticks spent queued with the profile clock paused

	Gate           Gate
	AtIntersection bool
	Locked         bool // Admitted into the intersection
	Overlap        bool // Body intersects the stop area

	Turn       geometry.Turn
	Turning    bool
	Turned     bool
	TurnCenter r2.Vec
	TurnRadius float64
	Swept      float64 // Arc length travelled while turning (px)

	Ended bool
}

// New places a car at the start of its approach.
func New(seq int, l geometry.Layout, prof *motion.Profile, turn geometry.Turn) *State {
	if !geometry.ValidSequence(seq) {
		panic(fmt.Sprintf("vehicle: invalid car sequence %d", seq))
	}
	pose := l.StartPose(seq)
	s := &State{
		Sequence:     seq,
		Profile:      prof,
		Pose:         pose,
		PriorPose:    pose,
		InitialPose:  pose,
		Direction:    l.PathFor(seq).Direction,
		Turn:         turn,
		StopDuration: prof.StopDuration,
	}
	e := prof.At(0)
	s.Speed, s.Acceleration, s.Phase = e.Speed, e.Acceleration, e.Phase
	s.refreshBoundary()
	return s
}

// ForcedStop reports whether the arbitrator is holding the car.
func (s *State) ForcedStop() bool { return s.Gate != GateProceed }

// StopWaitDuration is the time accrued at the stop line in seconds.
func (s *State) StopWaitDuration() float64 {
	return float64(s.StopWaitTicks) * s.Profile.Step
}

// Entry is the profile entry at the car's current tick.
func (s *State) Entry() motion.Entry {
	return s.Profile.At(s.TimeIndex)
}

// Width is the current x-extent of the body.
func (s *State) Width() float64 { return s.Pose.Width }

// Length is the current y-extent of the body.
func (s *State) Length() float64 { return s.Pose.Length }
