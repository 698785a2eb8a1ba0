package shape

import (
	"errors"
	"fmt"
)

// Name identifies one of the catalog shapes.
type Name string

const (
	Rectangle     Name = "rectangle"
	Ellipse       Name = "ellipse"
	Triangle      Name = "triangle"
	Pill          Name = "pill"
	Rhombus       Name = "rhombus"
	Parallelogram Name = "parallelogram"
)

var ErrUnknownShape = errors.New("unknown shape")

// Definition describes the sizing limits, defaults and legal transforms of a shape.
// Flip mirrors horizontally, invert mirrors vertically, turn rotates a quarter turn.
type Definition struct {
	Name          Name    `json:"name"`
	MinWidth      float64 `json:"minWidth"`
	MinHeight     float64 `json:"minHeight"`
	DefaultWidth  float64 `json:"defaultWidth"`
	DefaultHeight float64 `json:"defaultHeight"`
	DefaultColor  string  `json:"defaultColor"`
	CanFlip       bool    `json:"canFlip"`
	CanInvert     bool    `json:"canInvert"`
	CanTurn       bool    `json:"canTurn"`
}

// order is the catalog order used by Names and All.
var order = []Name{Rectangle, Ellipse, Triangle, Pill, Rhombus, Parallelogram}

var catalog = map[Name]Definition{
	Rectangle: {
		Name: Rectangle, MinWidth: 50, MinHeight: 20,
		DefaultWidth: 200, DefaultHeight: 60, DefaultColor: "#a670db",
	},
	Ellipse: {
		Name: Ellipse, MinWidth: 50, MinHeight: 20,
		DefaultWidth: 60, DefaultHeight: 60, DefaultColor: "#dbdb70",
	},
	Triangle: {
		Name: Triangle, MinWidth: 50, MinHeight: 20,
		DefaultWidth: 60, DefaultHeight: 60, DefaultColor: "#db70db",
		CanInvert: true, CanTurn: true,
	},
	Pill: {
		Name: Pill, MinWidth: 50, MinHeight: 20,
		DefaultWidth: 200, DefaultHeight: 60, DefaultColor: "#db7070",
		CanTurn: true,
	},
	Rhombus: {
		Name: Rhombus, MinWidth: 50, MinHeight: 20,
		DefaultWidth: 200, DefaultHeight: 60, DefaultColor: "#8bdb70",
	},
	Parallelogram: {
		Name: Parallelogram, MinWidth: 50, MinHeight: 20,
		DefaultWidth: 200, DefaultHeight: 60, DefaultColor: "#dba670",
		CanFlip: true, CanTurn: true,
	},
}

// Get returns the definition for name, or ErrUnknownShape.
func Get(name Name) (Definition, error) {
	def, ok := catalog[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}
	return def, nil
}

// Lookup is Get without the error allocation.
func Lookup(name Name) (Definition, bool) {
	def, ok := catalog[name]
	return def, ok
}

// Valid reports whether s names a catalog shape.
func Valid(s string) bool {
	_, ok := catalog[Name(s)]
	return ok
}

// Names returns the valid shape names in catalog order.
func Names() []Name {
	names := make([]Name, len(order))
	copy(names, order)
	return names
}

// All returns every definition in catalog order.
func All() []Definition {
	defs := make([]Definition, 0, len(order))
	for _, name := range order {
		defs = append(defs, catalog[name])
	}
	return defs
}
