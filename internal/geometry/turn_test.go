package geometry

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

const tol = 1e-9

// approachCenter places a car centre on its approach lane, 16px short of
// the intersection midpoint.
func approachCenter(l Layout, seq int) r2.Vec {
	p := l.PathFor(seq)
	switch p.Direction {
	case East:
		return r2.Vec{X: l.Mid.X - 16, Y: p.Const}
	case South:
		return r2.Vec{X: p.Const, Y: l.Mid.Y - 16}
	case West:
		return r2.Vec{X: l.Mid.X + 16, Y: p.Const}
	default:
		return r2.Vec{X: p.Const, Y: l.Mid.Y + 16}
	}
}

func laneConstFor(l Layout, seq int, turn Turn) float64 {
	return l.Paths[TargetOf(seq, turn).Path].Const
}

func TestArcTable_Exhaustive(t *testing.T) {
	l := testLayout()
	for seq := 1; seq <= NumApproaches; seq++ {
		for _, turn := range []Turn{TurnLeft, TurnRight} {
			t.Run(fmt.Sprintf("car%d_%s", seq, turn), func(t *testing.T) {
				start := approachCenter(l, seq)
				target := TargetOf(seq, turn)
				lane := l.Paths[target.Path]

				center, radius, err := CurvatureCenter(seq, turn, start, lane.Const)
				require.NoError(t, err)
				require.Greater(t, radius, 0.0)

				// At zero sweep the arc passes through the car centre.
				p0 := r2.Add(center, DeltaPosition(seq, turn, radius, TurningAngle(seq, turn, 0)))
				assert.InDelta(t, start.X, p0.X, tol)
				assert.InDelta(t, start.Y, p0.Y, tol)

				// After a quarter turn the centre sits on the target lane.
				p1 := r2.Add(center, DeltaPosition(seq, turn, radius, TurningAngle(seq, turn, math.Pi/2)))
				if lane.Axis() == AxisX {
					assert.InDelta(t, lane.Const, p1.X, tol)
				} else {
					assert.InDelta(t, lane.Const, p1.Y, tol)
				}

				// Every point on the arc is exactly one radius from the centre.
				mid := r2.Add(center, DeltaPosition(seq, turn, radius, TurningAngle(seq, turn, math.Pi/4)))
				assert.InDelta(t, radius, r2.Norm(r2.Sub(mid, center)), tol)
			})
		}
	}
}

func TestCurvatureCenter_Values(t *testing.T) {
	l := testLayout()
	tests := []struct {
		seq        int
		turn       Turn
		wantCenter r2.Vec
		wantRadius float64
	}{
		{1, TurnLeft, r2.Vec{X: 240, Y: 240}, 22},
		{1, TurnRight, r2.Vec{X: 240, Y: 272}, 10},
		{2, TurnLeft, r2.Vec{X: 272, Y: 240}, 22},
		{2, TurnRight, r2.Vec{X: 240, Y: 240}, 10},
		{3, TurnLeft, r2.Vec{X: 272, Y: 272}, 22},
		{3, TurnRight, r2.Vec{X: 272, Y: 240}, 10},
		{4, TurnLeft, r2.Vec{X: 240, Y: 272}, 22},
		{4, TurnRight, r2.Vec{X: 272, Y: 272}, 10},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("car%d_%s", tt.seq, tt.turn), func(t *testing.T) {
			c, r, err := CurvatureCenter(tt.seq, tt.turn, approachCenter(l, tt.seq), laneConstFor(l, tt.seq, tt.turn))
			require.NoError(t, err)
			assert.Equal(t, tt.wantRadius, r)
			assert.Equal(t, tt.wantCenter, c)
		})
	}
}

func TestCurvatureCenter_Errors(t *testing.T) {
	_, _, err := CurvatureCenter(1, TurnLeft, r2.Vec{X: 262, Y: 262}, 262)
	assert.True(t, errors.Is(err, ErrZeroRadius))

	_, _, err = CurvatureCenter(1, TurnNone, r2.Vec{X: 200, Y: 262}, 262)
	assert.True(t, errors.Is(err, ErrNoArc))

	assert.Panics(t, func() { TurningAngle(5, TurnLeft, 0) })
}

func TestTargets_Total(t *testing.T) {
	seen := map[Target]int{}
	for seq := 1; seq <= NumApproaches; seq++ {
		for _, turn := range Turns {
			assert.NotPanics(t, func() { seen[TargetOf(seq, turn)]++ })
		}
	}
	// Every path is reached by exactly three manoeuvres.
	for path := 0; path < NumApproaches; path++ {
		count := 0
		for tgt, n := range seen {
			if tgt.Path == path {
				count += n
			}
		}
		assert.Equal(t, 3, count, "path %d", path)
	}
}

func TestRotationOf(t *testing.T) {
	anti := map[turnKey]bool{
		{1, TurnRight}: true,
		{3, TurnRight}: true,
		{4, TurnLeft}:  true,
		{4, TurnRight}: true,
	}
	for seq := 1; seq <= NumApproaches; seq++ {
		for _, turn := range []Turn{TurnLeft, TurnRight} {
			want := Clockwise
			if anti[turnKey{seq, turn}] {
				want = Anticlockwise
			}
			assert.Equal(t, want, RotationOf(seq, turn), "car%d %s", seq, turn)
		}
	}
}

func TestRotatePolygon(t *testing.T) {
	pts := []r2.Vec{{X: 1, Y: 0}, {X: 0, Y: 1}}

	cw := RotatePolygon(pts, r2.Vec{}, math.Pi/2, Clockwise)
	assert.InDelta(t, 0, cw[0].X, tol)
	assert.InDelta(t, 1, cw[0].Y, tol)
	assert.InDelta(t, -1, cw[1].X, tol)
	assert.InDelta(t, 0, cw[1].Y, tol)

	acw := RotatePolygon(pts, r2.Vec{}, math.Pi/2, Anticlockwise)
	assert.InDelta(t, 0, acw[0].X, tol)
	assert.InDelta(t, -1, acw[0].Y, tol)

	pivot := r2.Vec{X: 10, Y: 10}
	same := RotatePolygon([]r2.Vec{pivot}, pivot, 1.2, Clockwise)
	assert.InDelta(t, 10, same[0].X, tol)
	assert.InDelta(t, 10, same[0].Y, tol)

	assert.Equal(t, []r2.Vec{{X: 1, Y: 0}, {X: 0, Y: 1}}, pts, "input is not mutated")
}

func TestTurnComplete(t *testing.T) {
	assert.False(t, TurnComplete(0))
	assert.False(t, TurnComplete(math.Pi/2))
	assert.True(t, TurnComplete(math.Pi/2+1e-6))
}

func TestStepVectorAndAxis(t *testing.T) {
	assert.Equal(t, r2.Vec{X: 1}, StepVector(East))
	assert.Equal(t, r2.Vec{X: -1}, StepVector(West))
	assert.Equal(t, r2.Vec{Y: 1}, StepVector(South))
	assert.Equal(t, r2.Vec{Y: -1}, StepVector(North))

	assert.Equal(t, AxisX, TravelAxis(East))
	assert.Equal(t, AxisX, TravelAxis(West))
	assert.Equal(t, AxisY, TravelAxis(North))
	assert.Equal(t, AxisY, TravelAxis(South))
}

func TestParseTurn(t *testing.T) {
	for _, turn := range Turns {
		got, err := ParseTurn(turn.String())
		require.NoError(t, err)
		assert.Equal(t, turn, got)
	}
	_, err := ParseTurn("u-turn")
	assert.Error(t, err)
}
