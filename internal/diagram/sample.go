package diagram

import "github.com/inamate/diagrammer/backend-go/internal/shape"

// NewSample creates a diagram holding one component of every shape.
func NewSample(opts ...Option) *Diagram {
	d := New(opts...)

	params := []ComponentParams{
		{Shape: shape.Rectangle, X: 40, Y: 40},
		{Shape: shape.Ellipse, X: 320, Y: 40},
		{Shape: shape.Triangle, X: 480, Y: 40, Inverted: true},
		{Shape: shape.Pill, X: 40, Y: 240},
		{Shape: shape.Rhombus, X: 320, Y: 240, Angle: 15},
		{Shape: shape.Parallelogram, X: 40, Y: 440, Flipped: true},
	}
	for _, p := range params {
		NewComponent(d, p)
	}
	return d
}
