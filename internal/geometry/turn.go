package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrZeroRadius means a turning car's centre already sits on its target
	// lane. Radii come from non-zero lane offsets, so this is a logic defect.
	ErrZeroRadius = errors.New("turn radius is zero")
	// ErrNoArc is returned for a (sequence, turn) pair that has no arc.
	ErrNoArc = errors.New("no turn arc for sequence")
)

type turnKey struct {
	seq  int
	turn Turn
}

// angleMap converts the swept angle into the parametric circle angle.
type angleMap int

const (
	angleMirror     angleMap = iota // pi - swept
	angleDirect                     // swept
	angleComplement                 // pi/2 - swept
)

// arc is one row of the turn table.
type arc struct {
	// centerOffset is the unit offset from the car centre to the curvature centre.
	centerOffset r2.Vec
	// radiusAxis is the axis on which the car centre is compared with the lane constant.
	radiusAxis Axis
	angle      angleMap
	// delta holds the signs applied to (r·cos, r·sin).
	delta    r2.Vec
	rotation Rotation
	// bodyOffset is added to the circle angle before rotating the body polygon.
	bodyOffset float64
}

// The sign pattern is not a rotation of a single rule, so every case is listed.
var arcs = map[turnKey]arc{
	{1, TurnLeft}:  {centerOffset: r2.Vec{X: 0, Y: -1}, radiusAxis: AxisX, angle: angleComplement, delta: r2.Vec{X: 1, Y: 1}, rotation: Clockwise, bodyOffset: math.Pi / 2},
	{1, TurnRight}: {centerOffset: r2.Vec{X: 0, Y: 1}, radiusAxis: AxisX, angle: angleComplement, delta: r2.Vec{X: 1, Y: -1}, rotation: Anticlockwise, bodyOffset: math.Pi / 2},
	{2, TurnLeft}:  {centerOffset: r2.Vec{X: 1, Y: 0}, radiusAxis: AxisY, angle: angleMirror, delta: r2.Vec{X: 1, Y: 1}, rotation: Clockwise},
	{2, TurnRight}: {centerOffset: r2.Vec{X: -1, Y: 0}, radiusAxis: AxisY, angle: angleDirect, delta: r2.Vec{X: 1, Y: 1}, rotation: Clockwise},
	{3, TurnLeft}:  {centerOffset: r2.Vec{X: 0, Y: 1}, radiusAxis: AxisX, angle: angleComplement, delta: r2.Vec{X: -1, Y: -1}, rotation: Clockwise, bodyOffset: math.Pi / 2},
	{3, TurnRight}: {centerOffset: r2.Vec{X: 0, Y: -1}, radiusAxis: AxisX, angle: angleComplement, delta: r2.Vec{X: -1, Y: 1}, rotation: Anticlockwise, bodyOffset: math.Pi / 2},
	{4, TurnLeft}:  {centerOffset: r2.Vec{X: -1, Y: 0}, radiusAxis: AxisY, angle: angleDirect, delta: r2.Vec{X: 1, Y: -1}, rotation: Anticlockwise},
	{4, TurnRight}: {centerOffset: r2.Vec{X: 1, Y: 0}, radiusAxis: AxisY, angle: angleMirror, delta: r2.Vec{X: 1, Y: -1}, rotation: Anticlockwise},
}

// Target is where a car ends up: the path it joins and its final heading.
type Target struct {
	Path      int
	Direction Direction
}

var targets = map[turnKey]Target{
	{1, TurnNone}:  {Path: 0, Direction: East},
	{1, TurnLeft}:  {Path: 3, Direction: North},
	{1, TurnRight}: {Path: 1, Direction: South},
	{2, TurnNone}:  {Path: 1, Direction: South},
	{2, TurnLeft}:  {Path: 0, Direction: East},
	{2, TurnRight}: {Path: 2, Direction: West},
	{3, TurnNone}:  {Path: 2, Direction: West},
	{3, TurnLeft}:  {Path: 1, Direction: South},
	{3, TurnRight}: {Path: 3, Direction: North},
	{4, TurnNone}:  {Path: 3, Direction: North},
	{4, TurnLeft}:  {Path: 2, Direction: West},
	{4, TurnRight}: {Path: 0, Direction: East},
}

func arcFor(seq int, turn Turn) arc {
	a, ok := arcs[turnKey{seq, turn}]
	if !ok {
		panic(fmt.Sprintf("geometry: no turn arc for sequence %d turn %s", seq, turn))
	}
	return a
}

// TargetOf returns the exit path and heading for a sequence and turn.
func TargetOf(seq int, turn Turn) Target {
	t, ok := targets[turnKey{seq, turn}]
	if !ok {
		panic(fmt.Sprintf("geometry: no target for sequence %d turn %s", seq, turn))
	}
	return t
}

// CurvatureCenter returns the centre and radius of the arc a stopped car
// will sweep. laneConst is the constant coordinate of the target path.
func CurvatureCenter(seq int, turn Turn, carCenter r2.Vec, laneConst float64) (r2.Vec, float64, error) {
	a, ok := arcs[turnKey{seq, turn}]
	if !ok {
		return r2.Vec{}, 0, fmt.Errorf("%w %d turn %s", ErrNoArc, seq, turn)
	}
	var radius float64
	if a.radiusAxis == AxisX {
		radius = math.Abs(carCenter.X - laneConst)
	} else {
		radius = math.Abs(carCenter.Y - laneConst)
	}
	if radius == 0 {
		return r2.Vec{}, 0, fmt.Errorf("sequence %d turn %s at %v: %w", seq, turn, carCenter, ErrZeroRadius)
	}
	return r2.Add(carCenter, r2.Scale(radius, a.centerOffset)), radius, nil
}

// TurningAngle maps the swept angle (arc length over radius) onto the
// angle used by the parametric circle equations.
func TurningAngle(seq int, turn Turn, swept float64) float64 {
	switch arcFor(seq, turn).angle {
	case angleMirror:
		return math.Pi - swept
	case angleDirect:
		return swept
	default:
		return math.Pi/2 - swept
	}
}

// DeltaPosition is the car-centre offset from the curvature centre.
func DeltaPosition(seq int, turn Turn, radius, angle float64) r2.Vec {
	s := arcFor(seq, turn).delta
	return r2.Vec{
		X: s.X * radius * math.Cos(angle),
		Y: s.Y * radius * math.Sin(angle),
	}
}

// BodyAngle is the angle by which the axis-aligned body is rotated for a
// given circle angle.
func BodyAngle(seq int, turn Turn, angle float64) float64 {
	return arcFor(seq, turn).bodyOffset + angle
}

// RotationOf returns the body rotation sense for a sequence and turn.
func RotationOf(seq int, turn Turn) Rotation {
	return arcFor(seq, turn).rotation
}

// RotatePolygon rotates points about pivot.
func RotatePolygon(points []r2.Vec, pivot r2.Vec, angle float64, dir Rotation) []r2.Vec {
	if dir == Anticlockwise {
		angle = -angle
	}
	out := make([]r2.Vec, len(points))
	for i, p := range points {
		out[i] = r2.Rotate(p, angle, pivot)
	}
	return out
}

// TurnComplete reports whether a swept angle finishes a 90 degree turn.
func TurnComplete(swept float64) bool {
	return swept > math.Pi/2
}

// StepVector is the unit displacement for a heading direction.
func StepVector(d Direction) r2.Vec {
	switch d {
	case North:
		return r2.Vec{X: 0, Y: -1}
	case South:
		return r2.Vec{X: 0, Y: 1}
	case East:
		return r2.Vec{X: 1, Y: 0}
	default:
		return r2.Vec{X: -1, Y: 0}
	}
}

// TravelAxis is the axis a car moves along for a heading direction.
func TravelAxis(d Direction) Axis {
	if d == East || d == West {
		return AxisX
	}
	return AxisY
}

// Box returns the four corners of an axis-aligned body with top-left at
// pos, x-extent w and y-extent l, in drawing order.
func Box(pos r2.Vec, w, l float64) [4]r2.Vec {
	return [4]r2.Vec{
		{X: pos.X, Y: pos.Y},
		{X: pos.X + w, Y: pos.Y},
		{X: pos.X + w, Y: pos.Y + l},
		{X: pos.X, Y: pos.Y + l},
	}
}
