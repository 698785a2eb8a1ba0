package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/diagrammer/backend-go/internal/diagram"
	"github.com/inamate/diagrammer/backend-go/internal/shape"
)

const tol = 1e-9

func TestPlaceUnrotated(t *testing.T) {
	d := diagram.New()
	c := diagram.NewComponent(d, diagram.ComponentParams{Width: 200, Height: 60, X: 100, Y: 40})

	p := Place(c)
	assert.InDeltaSlice(t, []float64{1, 0, 0, 1, 100, 40}, p.Transform, tol)
	assert.InDelta(t, 100, p.Bounds.X, tol)
	assert.InDelta(t, 40, p.Bounds.Y, tol)
	assert.InDelta(t, 200, p.Bounds.Width, tol)
	assert.InDelta(t, 60, p.Bounds.Height, tol)
}

func TestPlaceRotatedAndTurned(t *testing.T) {
	d := diagram.New()
	rotated := diagram.NewComponent(d, diagram.ComponentParams{Width: 200, Height: 60, X: 100, Y: 100, Angle: 90})
	turned := diagram.NewComponent(d, diagram.ComponentParams{Shape: shape.Pill, Width: 200, Height: 60, X: 100, Y: 100, Turned: true})

	for _, c := range []*diagram.Component{rotated, turned} {
		b := Place(c).Bounds
		assert.InDelta(t, 170, b.X, tol)
		assert.InDelta(t, 30, b.Y, tol)
		assert.InDelta(t, 60, b.Width, tol)
		assert.InDelta(t, 200, b.Height, tol)
	}
}

func TestPlaceFlipped(t *testing.T) {
	d := diagram.New()
	c := diagram.NewComponent(d, diagram.ComponentParams{Shape: shape.Parallelogram, Width: 200, Height: 60, X: 100, Y: 40, Flipped: true})

	p := Place(c)
	x, y := p.matrix.TransformPoint(0, 0)
	assert.InDelta(t, 300, x, tol, "the local origin lands on the top-right corner")
	assert.InDelta(t, 40, y, tol)
}

func TestHitTestUsesRotatedBox(t *testing.T) {
	d := diagram.New()
	diagram.NewComponent(d, diagram.ComponentParams{ID: "R", Width: 200, Height: 60, X: 100, Y: 100, Angle: 90})
	f := BuildFrame(d)

	assert.Equal(t, "R", HitTest(f, 200, 50))
	assert.Equal(t, "", HitTest(f, 120, 130), "inside the unrotated box only")
}

func TestHitTestTopmost(t *testing.T) {
	d := diagram.New()
	diagram.NewComponent(d, diagram.ComponentParams{ID: "BACK", Width: 200, Height: 200})
	diagram.NewComponent(d, diagram.ComponentParams{ID: "FRONT", Width: 100, Height: 100})
	f := BuildFrame(d)

	assert.Equal(t, "FRONT", HitTest(f, 50, 50))
	assert.Equal(t, "BACK", HitTest(f, 150, 150))
	assert.Equal(t, "", HitTest(f, 500, 500))
}

func TestGridLines(t *testing.T) {
	d := diagram.New()
	g := GridMarks(d)
	require.Len(t, g.Lines, 158)

	majors := 0
	for _, l := range g.Lines {
		if l.Major {
			majors++
		}
	}
	assert.Equal(t, 30, majors)

	first := g.Lines[0]
	assert.Equal(t, GridLine{X1: 10, Y1: 0, X2: 10, Y2: 800}, first)

	d.SetGridMajor(0)
	for _, l := range GridMarks(d).Lines {
		assert.False(t, l.Major)
	}

	d.SetShowGrid(false)
	g = GridMarks(d)
	assert.Empty(t, g.Lines)
	assert.Empty(t, g.Dots)
}

func TestGridDots(t *testing.T) {
	d := diagram.New()
	d.SetWidth(100)
	d.SetHeight(100)
	d.SetGridSpacing(25)
	d.SetGridMajor(2)
	d.SetGridType("dots")

	g := GridMarks(d)
	assert.Empty(t, g.Lines)
	require.Len(t, g.Dots, 9)

	var majors []GridDot
	for _, dot := range g.Dots {
		if dot.Major {
			majors = append(majors, dot)
		}
	}
	assert.Equal(t, []GridDot{{X: 50, Y: 50, Major: true}}, majors)
}

func TestMatrixInvert(t *testing.T) {
	m := Then(Translate(10, 20), RotateDegrees(30), Scale(2, 3))
	x, y := m.Invert().TransformPoint(m.TransformPoint(7, -4))
	assert.InDelta(t, 7, x, tol)
	assert.InDelta(t, -4, y, tol)

	assert.Equal(t, Identity(), Scale(0, 1).Invert())
}
