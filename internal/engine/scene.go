package engine

import (
	"math"

	"github.com/inamate/diagrammer/backend-go/internal/diagram"
	"github.com/inamate/diagrammer/backend-go/internal/document"
	"github.com/inamate/diagrammer/backend-go/internal/shape"
)

// Frame is the resolved geometry of a whole diagram, handed to the renderer.
type Frame struct {
	Canvas     Canvas      `json:"canvas"`
	Grid       Grid        `json:"grid"`
	Components []Placement `json:"components"`
	Selection  string      `json:"selection,omitempty"`
}

// Canvas is the drawing area outline.
type Canvas struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	BorderRadius float64 `json:"borderRadius"`
}

// Placement is a component's resolved geometry. Transform maps the local box
// (0,0)-(Width,Height) onto the canvas: the box is turned a quarter turn when
// Turned, mirrored when Flipped or Inverted, then rotated by Angle, all about
// its center.
type Placement struct {
	ID        string     `json:"id"`
	Shape     shape.Name `json:"shape"`
	Color     string     `json:"color"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Angle     float64    `json:"angle"`
	Flipped   bool       `json:"flipped"`
	Inverted  bool       `json:"inverted"`
	Turned    bool       `json:"turned"`
	Transform []float64  `json:"transform"`
	Bounds    Rect       `json:"bounds"`

	matrix Matrix2D
}

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains checks if a point is inside the rect.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Center returns the center point of the rect.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Place resolves a component through the snapped accessors.
func Place(c *diagram.Component) Placement {
	p := Placement{
		ID:       c.ID(),
		Shape:    c.Shape(),
		Color:    c.Color(),
		X:        c.X(),
		Y:        c.Y(),
		Width:    c.Width(),
		Height:   c.Height(),
		Angle:    c.Angle(),
		Flipped:  c.Flipped(),
		Inverted: c.Inverted(),
		Turned:   c.Turned(),
	}

	sx, sy := 1.0, 1.0
	if p.Flipped {
		sx = -1
	}
	if p.Inverted {
		sy = -1
	}
	turn := 0.0
	if p.Turned {
		turn = 90
	}

	p.matrix = Then(
		Translate(p.X+p.Width/2, p.Y+p.Height/2),
		RotateDegrees(p.Angle),
		Scale(sx, sy),
		RotateDegrees(turn),
		Translate(-p.Width/2, -p.Height/2),
	)
	p.Transform = p.matrix.ToSlice()
	p.Bounds = p.matrix.TransformRect(Rect{Width: p.Width, Height: p.Height})
	return p
}

// Hit reports whether the point lies inside the placed, rotated box.
func (p Placement) Hit(x, y float64) bool {
	lx, ly := p.matrix.Invert().TransformPoint(x, y)
	const eps = 1e-9
	return lx >= -eps && lx <= p.Width+eps && ly >= -eps && ly <= p.Height+eps
}

// Grid holds the grid marks for the current settings. Only one of Lines and
// Dots is filled, according to the grid type; both are empty when the grid
// is hidden.
type Grid struct {
	Type  document.GridType `json:"type"`
	Lines []GridLine        `json:"lines,omitempty"`
	Dots  []GridDot         `json:"dots,omitempty"`
}

type GridLine struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Major bool    `json:"major"`
}

type GridDot struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Major bool    `json:"major"`
}

// GridMarks lays out the grid strictly inside the canvas. Every majorth mark
// counted from the top-left is major; a major interval of 0 makes none major.
func GridMarks(d *diagram.Diagram) Grid {
	g := Grid{Type: d.GridType()}
	if !d.ShowGrid() {
		return g
	}

	spacing := d.GridSpacing()
	width, height := d.Width(), d.Height()
	major := d.GridMajor()
	isMajor := func(n int) bool {
		return major > 0 && math.Mod(float64(n), major) == 0
	}

	switch g.Type {
	case document.GridDots:
		for x, mx := spacing, 1; x < width; x, mx = x+spacing, mx+1 {
			for y, my := spacing, 1; y < height; y, my = y+spacing, my+1 {
				g.Dots = append(g.Dots, GridDot{X: x, Y: y, Major: isMajor(mx) && isMajor(my)})
			}
		}
	default:
		for x, m := spacing, 1; x < width; x, m = x+spacing, m+1 {
			g.Lines = append(g.Lines, GridLine{X1: x, Y1: 0, X2: x, Y2: height, Major: isMajor(m)})
		}
		for y, m := spacing, 1; y < height; y, m = y+spacing, m+1 {
			g.Lines = append(g.Lines, GridLine{X1: 0, Y1: y, X2: width, Y2: y, Major: isMajor(m)})
		}
	}
	return g
}
