// Package geometry holds the fixed intersection layout and the table-driven
// circular-arc turn geometry. Everything here is pure; the vehicle package
// owns the mutable state that flows through it.
package geometry

import "fmt"

// Turn is the manoeuvre a car performs at the intersection.
type Turn int

const (
	TurnNone Turn = iota
	TurnLeft
	TurnRight
)

// Turns lists every turn in table order.
var Turns = [...]Turn{TurnNone, TurnLeft, TurnRight}

func (t Turn) String() string {
	switch t {
	case TurnNone:
		return "none"
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	default:
		return fmt.Sprintf("Turn(%d)", int(t))
	}
}

// ParseTurn maps a configuration name onto a Turn.
func ParseTurn(name string) (Turn, error) {
	switch name {
	case "none":
		return TurnNone, nil
	case "left":
		return TurnLeft, nil
	case "right":
		return TurnRight, nil
	}
	return TurnNone, fmt.Errorf("unknown turn %q", name)
}

// Direction is a heading-direction label in screen coordinates (y grows down).
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case South:
		return "S"
	case East:
		return "E"
	case West:
		return "W"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Axis names a screen axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Rotation is the sense in which a car's body polygon is rotated while turning.
type Rotation int

const (
	// Clockwise applies the standard rotation matrix. With y growing down
	// the result appears clockwise on screen.
	Clockwise Rotation = iota
	// Anticlockwise applies the inverse rotation.
	Anticlockwise
)

func (r Rotation) String() string {
	if r == Anticlockwise {
		return "anticlockwise"
	}
	return "clockwise"
}

// NumApproaches is the number of approaches into the intersection. Car
// sequence numbers 1..4 map one-to-one onto paths 0..3.
const NumApproaches = 4

// ValidSequence reports whether seq names an approach.
func ValidSequence(seq int) bool {
	return seq >= 1 && seq <= NumApproaches
}
