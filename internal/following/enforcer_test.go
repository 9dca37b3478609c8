package following

import (
	"testing"

	"github.com/sprasad796/Stop-And-Go/internal/geometry"
	"github.com/sprasad796/Stop-And-Go/internal/motion"
	"github.com/sprasad796/Stop-And-Go/internal/testutil"
	"github.com/sprasad796/Stop-And-Go/internal/vehicle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func laneCar(t *testing.T, seq int, dir geometry.Direction, pos r2.Vec, speed float64) *vehicle.State {
	t.Helper()
	l := testutil.Layout(t)
	c := vehicle.New(seq, l, testutil.Profile(t, 0.5), geometry.TurnNone)
	c.Direction = dir
	c.Pose.Pos = pos
	c.Phase = motion.PhaseCruiseAfter
	c.Speed = speed
	return c
}

func TestApply_SouthboundExample(t *testing.T) {
	lead := laneCar(t, 2, geometry.South, r2.Vec{X: 247, Y: 100}, 5)
	trail := laneCar(t, 4, geometry.South, r2.Vec{X: 247, Y: 80}, 5)
	e := NewEnforcer(25, nil)

	assert.Equal(t, 0, e.Apply([]*vehicle.State{lead, trail}), "equal speeds are left alone")
	assert.False(t, trail.SpeedOverride)

	trail.Speed = 7
	assert.Equal(t, 1, e.Apply([]*vehicle.State{lead, trail}))
	assert.Equal(t, 5.0, trail.Speed)
	assert.True(t, trail.SpeedOverride)
	assert.False(t, lead.SpeedOverride)
	assert.Equal(t, 5.0, lead.Speed)
}

func TestPair_OrderIndependent(t *testing.T) {
	tests := []struct {
		name     string
		dir      geometry.Direction
		a, b     r2.Vec
		wantLead r2.Vec
	}{
		{"south larger y leads", geometry.South, r2.Vec{X: 247, Y: 100}, r2.Vec{X: 247, Y: 80}, r2.Vec{X: 247, Y: 100}},
		{"east larger x leads", geometry.East, r2.Vec{X: 300, Y: 259}, r2.Vec{X: 320, Y: 259}, r2.Vec{X: 320, Y: 259}},
		{"north smaller y leads", geometry.North, r2.Vec{X: 259, Y: 200}, r2.Vec{X: 259, Y: 210}, r2.Vec{X: 259, Y: 200}},
		{"west smaller x leads", geometry.West, r2.Vec{X: 150, Y: 247}, r2.Vec{X: 140, Y: 247}, r2.Vec{X: 140, Y: 247}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := laneCar(t, 1, tt.dir, tt.a, 9)
			b := laneCar(t, 3, tt.dir, tt.b, 4)

			lead1, trail1, gap1, ok := Pair(a, b)
			require.True(t, ok)
			lead2, trail2, gap2, ok := Pair(b, a)
			require.True(t, ok)

			assert.Same(t, lead1, lead2)
			assert.Same(t, trail1, trail2)
			assert.Equal(t, gap1, gap2)
			assert.Equal(t, tt.wantLead, lead1.Pose.Pos)
		})
	}
}

func TestApply_ClampedSpeedIsOrderIndependent(t *testing.T) {
	build := func() (*vehicle.State, *vehicle.State) {
		return laneCar(t, 1, geometry.East, r2.Vec{X: 300, Y: 259}, 3),
			laneCar(t, 3, geometry.East, r2.Vec{X: 285, Y: 259}, 6)
	}
	lead, trail := build()
	NewEnforcer(25, nil).Apply([]*vehicle.State{lead, trail})
	lead2, trail2 := build()
	NewEnforcer(25, nil).Apply([]*vehicle.State{trail2, lead2})

	assert.Equal(t, trail.Speed, trail2.Speed)
	assert.Equal(t, 3.0, trail.Speed)
	assert.Equal(t, lead.Speed, lead2.Speed)
}

func TestApply_Skips(t *testing.T) {
	tests := []struct {
		name string
		mut  func(lead, trail *vehicle.State)
	}{
		{"gap beyond distance", func(_, trail *vehicle.State) { trail.Pose.Pos.Y = 60 }},
		{"different lane", func(_, trail *vehicle.State) { trail.Pose.Pos.X = 259 }},
		{"different direction", func(_, trail *vehicle.State) { trail.Direction = geometry.North }},
		{"not past the stop", func(_, trail *vehicle.State) { trail.Phase = motion.PhaseAccel }},
		{"leader not past the stop", func(lead, _ *vehicle.State) { lead.Phase = motion.PhaseStop }},
		{"non-positive coordinate", func(_, trail *vehicle.State) { trail.Pose.Pos.Y = -5 }},
		{"ended", func(lead, _ *vehicle.State) { lead.Ended = true }},
		{"trailing slower", func(_, trail *vehicle.State) { trail.Speed = 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := laneCar(t, 2, geometry.South, r2.Vec{X: 247, Y: 100}, 5)
			trail := laneCar(t, 4, geometry.South, r2.Vec{X: 247, Y: 80}, 7)
			tt.mut(lead, trail)
			assert.Equal(t, 0, NewEnforcer(25, nil).Apply([]*vehicle.State{lead, trail}))
			assert.False(t, trail.SpeedOverride)
		})
	}
}

func TestApply_PastSimCounts(t *testing.T) {
	lead := laneCar(t, 2, geometry.South, r2.Vec{X: 247, Y: 100}, 5)
	trail := laneCar(t, 4, geometry.South, r2.Vec{X: 247, Y: 76}, 7)
	lead.Phase = motion.PhasePastSim
	assert.Equal(t, 1, NewEnforcer(25, nil).Apply([]*vehicle.State{trail, lead}))
	assert.Equal(t, 5.0, trail.Speed)
}
