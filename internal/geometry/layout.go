package geometry

import (
	"math"

	"github.com/sprasad796/Stop-And-Go/internal/config"
	"gonum.org/v1/gonum/spatial/r2"
)

// Path is one of the four fixed approach lanes. Paths 0 and 2 run east and
// west with a constant y; paths 1 and 3 run south and north with a constant x.
type Path struct {
	Index     int
	Const     float64
	Direction Direction
}

// Axis returns the axis whose coordinate is constant along the path.
func (p Path) Axis() Axis {
	if p.Direction == East || p.Direction == West {
		return AxisY
	}
	return AxisX
}

// Pose is an axis-aligned body placement: top-left corner plus extents.
// Width is the x-extent and Length the y-extent.
type Pose struct {
	Pos    r2.Vec
	Width  float64
	Length float64
}

// Center returns the middle of the body.
func (p Pose) Center() r2.Vec {
	return r2.Vec{X: p.Pos.X + p.Width/2, Y: p.Pos.Y + p.Length/2}
}

// Layout is the immutable intersection geometry derived from configuration.
type Layout struct {
	Width, Height float64
	Mid           r2.Vec

	Paths     [NumApproaches]Path
	StopLines [NumApproaches]r2.Vec
	StopArea  r2.Box

	CarWidth, CarLength float64
	BoundaryOffset      float64
	ExitOffset          float64
	SafetyBuffer        float64
}

// NewLayout builds the layout for a validated configuration.
func NewLayout(cfg *config.SimConfig) Layout {
	w, h := cfg.GetFrameWidthPx(), cfg.GetFrameHeightPx()
	mid := r2.Vec{X: w / 2, Y: h / 2}
	half := cfg.GetLaneBufferPx() / 2
	stop := cfg.GetStopLineOffsetPx()
	area := cfg.GetStopAreaHalfPx()

	l := Layout{
		Width:  w,
		Height: h,
		Mid:    mid,
		Paths: [NumApproaches]Path{
			{Index: 0, Const: mid.Y + half, Direction: East},
			{Index: 1, Const: mid.X - half, Direction: South},
			{Index: 2, Const: mid.Y - half, Direction: West},
			{Index: 3, Const: mid.X + half, Direction: North},
		},
		StopArea: r2.Box{
			Min: r2.Vec{X: mid.X - area, Y: mid.Y - area},
			Max: r2.Vec{X: mid.X + area, Y: mid.Y + area},
		},
		CarWidth:       cfg.GetCarWidthPx(),
		CarLength:      cfg.GetCarLengthPx(),
		BoundaryOffset: cfg.GetBoundaryOffsetPx(),
		ExitOffset:     cfg.GetExitOffsetPx(),
		SafetyBuffer:   cfg.GetSafetyBufferPx(),
	}
	l.StopLines = [NumApproaches]r2.Vec{
		{X: mid.X - stop, Y: l.Paths[0].Const},
		{X: l.Paths[1].Const, Y: mid.Y - stop},
		{X: mid.X + stop, Y: l.Paths[2].Const},
		{X: l.Paths[3].Const, Y: mid.Y + stop},
	}
	return l
}

// PathFor returns the approach path of a car sequence.
func (l Layout) PathFor(seq int) Path {
	return l.Paths[seq-1]
}

// BodySize returns the (x-extent, y-extent) of a car heading in d.
func (l Layout) BodySize(d Direction) (w, h float64) {
	if d == East || d == West {
		return l.CarLength, l.CarWidth
	}
	return l.CarWidth, l.CarLength
}

// StartPose places a car at the frame edge of its approach, centred on the lane.
func (l Layout) StartPose(seq int) Pose {
	p := l.PathFor(seq)
	w, h := l.BodySize(p.Direction)
	var pos r2.Vec
	switch p.Direction {
	case East:
		pos = r2.Vec{X: 0, Y: p.Const - h/2}
	case South:
		pos = r2.Vec{X: p.Const - w/2, Y: 0}
	case West:
		pos = r2.Vec{X: l.Width - w, Y: p.Const - h/2}
	default:
		pos = r2.Vec{X: p.Const - w/2, Y: l.Height - h}
	}
	return Pose{Pos: pos, Width: w, Length: h}
}

// Outside reports whether a body has left the frame. The extent tolerance
// uses the longer side so a car mid-swap is not cut early.
func (l Layout) Outside(p Pose) bool {
	ext := math.Max(p.Width, p.Length) + l.BoundaryOffset
	return p.Pos.X+ext < 0 || p.Pos.X >= l.Width ||
		p.Pos.Y >= l.Height || p.Pos.Y+ext < 0
}

// Overlaps reports whether a body intersects the central stop area.
// Touching edges count as overlap.
func (l Layout) Overlaps(p Pose) bool {
	a := l.StopArea
	return p.Pos.X+p.Width >= a.Min.X && p.Pos.X <= a.Max.X &&
		p.Pos.Y+p.Length >= a.Min.Y && p.Pos.Y <= a.Max.Y
}

// ExitPose snaps a car that has just finished a turn onto its target lane,
// just outside the stop area on the side it is leaving through. w and h are
// the post-swap extents.
func (l Layout) ExitPose(t Target, w, h float64) Pose {
	lane := l.Paths[t.Path].Const
	a := l.StopArea
	forward := t.Direction == East || t.Direction == South

	if TravelAxis(t.Direction) == AxisX {
		x := a.Min.X - w - l.ExitOffset
		if forward {
			x = a.Max.X + l.ExitOffset
		}
		return Pose{Pos: r2.Vec{X: x, Y: lane - h/2}, Width: w, Length: h}
	}
	y := a.Min.Y - h - l.ExitOffset
	if forward {
		y = a.Max.Y + l.ExitOffset
	}
	return Pose{Pos: r2.Vec{X: lane - w/2, Y: y}, Width: w, Length: h}
}

// CrossedCenter reports whether a car, identified by its approach and turn,
// has passed the intersection midpoint. Right turns never need the test and
// always report false.
func (l Layout) CrossedCenter(seq int, turn Turn, pos r2.Vec) bool {
	hi := l.Mid.X + l.SafetyBuffer
	lo := l.Mid.X - l.SafetyBuffer
	hiY := l.Mid.Y + l.SafetyBuffer
	loY := l.Mid.Y - l.SafetyBuffer

	switch turn {
	case TurnNone:
		switch seq {
		case 1:
			return pos.X > hi
		case 2:
			return pos.Y > hiY
		case 3:
			return pos.X < lo
		case 4:
			return pos.Y < loY
		}
	case TurnLeft:
		switch seq {
		case 1:
			return pos.X > hi && pos.Y < loY
		case 2:
			return pos.X > hi && pos.Y > hiY
		case 3:
			return pos.X < lo && pos.Y > hiY
		case 4:
			return pos.X < lo && pos.Y < loY
		}
	}
	return false
}
