package geometry

import (
	"fmt"
	"testing"

	"github.com/sprasad796/Stop-And-Go/internal/config"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func testLayout() Layout {
	return NewLayout(config.EmptySimConfig())
}

func TestNewLayout_Defaults(t *testing.T) {
	l := testLayout()

	assert.Equal(t, r2.Vec{X: 256, Y: 256}, l.Mid)
	assert.Equal(t, [NumApproaches]Path{
		{Index: 0, Const: 262, Direction: East},
		{Index: 1, Const: 250, Direction: South},
		{Index: 2, Const: 250, Direction: West},
		{Index: 3, Const: 262, Direction: North},
	}, l.Paths)
	assert.Equal(t, [NumApproaches]r2.Vec{
		{X: 237, Y: 262},
		{X: 250, Y: 237},
		{X: 275, Y: 250},
		{X: 262, Y: 275},
	}, l.StopLines)
	assert.Equal(t, r2.Box{Min: r2.Vec{X: 236, Y: 236}, Max: r2.Vec{X: 276, Y: 276}}, l.StopArea)

	assert.Equal(t, AxisY, l.Paths[0].Axis())
	assert.Equal(t, AxisX, l.Paths[1].Axis())
}

func TestLayout_StartPose(t *testing.T) {
	l := testLayout()
	want := map[int]Pose{
		1: {Pos: r2.Vec{X: 0, Y: 259}, Width: 8, Length: 6},
		2: {Pos: r2.Vec{X: 247, Y: 0}, Width: 6, Length: 8},
		3: {Pos: r2.Vec{X: 504, Y: 247}, Width: 8, Length: 6},
		4: {Pos: r2.Vec{X: 259, Y: 504}, Width: 6, Length: 8},
	}
	for seq, w := range want {
		got := l.StartPose(seq)
		assert.Equal(t, w, got, "car%d", seq)
		assert.False(t, l.Outside(got), "car%d starts inside the frame", seq)
		assert.False(t, l.Overlaps(got), "car%d starts clear of the stop area", seq)

		c := got.Center()
		if l.PathFor(seq).Axis() == AxisX {
			assert.Equal(t, l.PathFor(seq).Const, c.X)
		} else {
			assert.Equal(t, l.PathFor(seq).Const, c.Y)
		}
	}
}

func TestLayout_Outside(t *testing.T) {
	l := testLayout()
	tests := []struct {
		pos  r2.Vec
		want bool
	}{
		{r2.Vec{X: -10, Y: 259}, false},
		{r2.Vec{X: -11, Y: 259}, true},
		{r2.Vec{X: 511, Y: 259}, false},
		{r2.Vec{X: 512, Y: 259}, true},
		{r2.Vec{X: 259, Y: 512}, true},
		{r2.Vec{X: 259, Y: -11}, true},
		{r2.Vec{X: 259, Y: -10}, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.pos), func(t *testing.T) {
			assert.Equal(t, tt.want, l.Outside(Pose{Pos: tt.pos, Width: 8, Length: 6}))
		})
	}
}

func TestLayout_Overlaps(t *testing.T) {
	l := testLayout()
	tests := []struct {
		name string
		pos  r2.Vec
		want bool
	}{
		{"front touches west edge", r2.Vec{X: 228, Y: 259}, true},
		{"one pixel short", r2.Vec{X: 227, Y: 259}, false},
		{"inside", r2.Vec{X: 250, Y: 259}, true},
		{"rear touches east edge", r2.Vec{X: 276, Y: 259}, true},
		{"past east edge", r2.Vec{X: 277, Y: 259}, false},
		{"above", r2.Vec{X: 250, Y: 229}, false},
		{"top touches", r2.Vec{X: 250, Y: 230}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Overlaps(Pose{Pos: tt.pos, Width: 8, Length: 6}))
		})
	}
}

func TestLayout_ExitPose(t *testing.T) {
	l := testLayout()
	tests := []struct {
		seq  int
		turn Turn
		want r2.Vec
	}{
		{1, TurnLeft, r2.Vec{X: 259, Y: 226}},
		{1, TurnRight, r2.Vec{X: 247, Y: 278}},
		{2, TurnLeft, r2.Vec{X: 278, Y: 259}},
		{2, TurnRight, r2.Vec{X: 226, Y: 247}},
		{3, TurnLeft, r2.Vec{X: 247, Y: 278}},
		{3, TurnRight, r2.Vec{X: 259, Y: 226}},
		{4, TurnLeft, r2.Vec{X: 226, Y: 247}},
		{4, TurnRight, r2.Vec{X: 278, Y: 259}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("car%d_%s", tt.seq, tt.turn), func(t *testing.T) {
			target := TargetOf(tt.seq, tt.turn)
			w, h := l.BodySize(target.Direction)
			got := l.ExitPose(target, w, h)
			assert.Equal(t, tt.want, got.Pos)
			assert.False(t, l.Overlaps(got), "exit pose is clear of the stop area")
		})
	}
}

func TestLayout_CrossedCenter(t *testing.T) {
	l := testLayout()
	tests := []struct {
		seq  int
		turn Turn
		pos  r2.Vec
		want bool
	}{
		{1, TurnNone, r2.Vec{X: 257, Y: 259}, false},
		{1, TurnNone, r2.Vec{X: 258, Y: 259}, true},
		{2, TurnNone, r2.Vec{X: 247, Y: 258}, true},
		{2, TurnNone, r2.Vec{X: 247, Y: 250}, false},
		{3, TurnNone, r2.Vec{X: 254, Y: 247}, true},
		{3, TurnNone, r2.Vec{X: 255, Y: 247}, false},
		{4, TurnNone, r2.Vec{X: 259, Y: 254}, true},
		{4, TurnNone, r2.Vec{X: 259, Y: 260}, false},

		{1, TurnLeft, r2.Vec{X: 258, Y: 254}, true},
		{1, TurnLeft, r2.Vec{X: 258, Y: 259}, false},
		{2, TurnLeft, r2.Vec{X: 258, Y: 258}, true},
		{2, TurnLeft, r2.Vec{X: 247, Y: 258}, false},
		{3, TurnLeft, r2.Vec{X: 254, Y: 258}, true},
		{3, TurnLeft, r2.Vec{X: 254, Y: 247}, false},
		{4, TurnLeft, r2.Vec{X: 254, Y: 254}, true},
		{4, TurnLeft, r2.Vec{X: 259, Y: 254}, false},

		{1, TurnRight, r2.Vec{X: 400, Y: 400}, false},
		{4, TurnRight, r2.Vec{X: 0, Y: 0}, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("car%d_%s_%v", tt.seq, tt.turn, tt.pos), func(t *testing.T) {
			assert.Equal(t, tt.want, l.CrossedCenter(tt.seq, tt.turn, tt.pos))
		})
	}
}
