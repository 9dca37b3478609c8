package intersection

import (
	"fmt"

	"github.com/sprasad796/Stop-And-Go/internal/geometry"
)

// Action is what the second car in the queue must do relative to the head.
type Action int

const (
	// NoAction lets the car go alongside the head.
	NoAction Action = iota
	// WaitCrossIntersection holds the car until the head has cleared the
	// stop area.
	WaitCrossIntersection
	// WaitCrossCenter holds the car until the head has passed the midpoint.
	WaitCrossCenter
)

func (a Action) String() string {
	switch a {
	case NoAction:
		return "NO_ACTION"
	case WaitCrossIntersection:
		return "WAIT_CROSS_INTERSECTION"
	case WaitCrossCenter:
		return "WAIT_CROSS_CENTER_INTERSECTION"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Relation is where the priority car's approach sits relative to another car's.
type Relation int

const (
	Opposite Relation = iota
	ClockwiseNeighbour
	AnticlockwiseNeighbour
)

func (r Relation) String() string {
	switch r {
	case Opposite:
		return "opposite"
	case ClockwiseNeighbour:
		return "clockwise"
	case AnticlockwiseNeighbour:
		return "anticlockwise"
	default:
		return fmt.Sprintf("Relation(%d)", int(r))
	}
}

// Relations lists every relation in table order.
var Relations = [...]Relation{Opposite, ClockwiseNeighbour, AnticlockwiseNeighbour}

// RelationOf returns how other's approach relates to self's. Sequence
// numbers wrap 1..4, so the offset (other - self) mod 4 is 2 for the
// opposite approach, 1 for the clockwise neighbour and 3 for the
// anticlockwise one.
func RelationOf(self, other int) Relation {
	switch ((other-self)%geometry.NumApproaches + geometry.NumApproaches) % geometry.NumApproaches {
	case 2:
		return Opposite
	case 1:
		return ClockwiseNeighbour
	case 3:
		return AnticlockwiseNeighbour
	}
	panic(fmt.Sprintf("intersection: car %d has no relation to itself", self))
}

// rightOfWay is indexed [waiting car's turn][relation of the head][head's turn].
// Turn order is none, left, right.
var rightOfWay = [3][3][3]Action{
	geometry.TurnNone: {
		Opposite:               {NoAction, WaitCrossIntersection, NoAction},
		ClockwiseNeighbour:     {WaitCrossIntersection, WaitCrossIntersection, NoAction},
		AnticlockwiseNeighbour: {WaitCrossCenter, WaitCrossCenter, WaitCrossIntersection},
	},
	geometry.TurnLeft: {
		Opposite:               {WaitCrossCenter, WaitCrossIntersection, WaitCrossIntersection},
		ClockwiseNeighbour:     {WaitCrossIntersection, WaitCrossCenter, NoAction},
		AnticlockwiseNeighbour: {WaitCrossIntersection, WaitCrossCenter, NoAction},
	},
	geometry.TurnRight: {
		Opposite:               {NoAction, WaitCrossIntersection, NoAction},
		ClockwiseNeighbour:     {WaitCrossIntersection, NoAction, NoAction},
		AnticlockwiseNeighbour: {NoAction, NoAction, NoAction},
	},
}

// RightOfWay looks up the action for a waiting car. The table is total
// over every turn and relation.
func RightOfWay(waitingTurn geometry.Turn, rel Relation, headTurn geometry.Turn) Action {
	return rightOfWay[waitingTurn][rel][headTurn]
}
