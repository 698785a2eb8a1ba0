package engine

import (
	"encoding/json"
	"math"

	"github.com/inamate/diagrammer/backend-go/internal/diagram"
	"github.com/inamate/diagrammer/backend-go/internal/shape"
)

// ComponentSpec is the frontend's description of a new component. Omitted
// fields take the component defaults.
type ComponentSpec struct {
	ID       string     `json:"id,omitempty"`
	Shape    shape.Name `json:"shape,omitempty"`
	Width    float64    `json:"width,omitempty"`
	Height   float64    `json:"height,omitempty"`
	X        float64    `json:"x,omitempty"`
	Y        float64    `json:"y,omitempty"`
	Angle    float64    `json:"angle,omitempty"`
	Flipped  bool       `json:"flipped,omitempty"`
	Inverted bool       `json:"inverted,omitempty"`
	Turned   bool       `json:"turned,omitempty"`
}

func (s ComponentSpec) params() diagram.ComponentParams {
	return diagram.ComponentParams{
		ID:       s.ID,
		Shape:    s.Shape,
		Width:    s.Width,
		Height:   s.Height,
		X:        s.X,
		Y:        s.Y,
		Angle:    s.Angle,
		Flipped:  s.Flipped,
		Inverted: s.Inverted,
		Turned:   s.Turned,
	}
}

// applySettings runs each known key through its setter in a fixed order, so
// size changes land before anything that depends on them. Unknown keys are
// ignored; values of the wrong kind are rejected by the setters.
func applySettings(d *diagram.Diagram, changes map[string]any) {
	if v, ok := changes["width"]; ok {
		d.SetWidth(numberValue(v))
	}
	if v, ok := changes["height"]; ok {
		d.SetHeight(numberValue(v))
	}
	if v, ok := changes["borderRadius"]; ok {
		d.SetBorderRadius(numberValue(v))
	}
	if v, ok := boolChange(changes, "showGrid"); ok {
		d.SetShowGrid(v)
	}
	if v, ok := changes["gridSpacing"]; ok {
		d.SetGridSpacing(numberValue(v))
	}
	if v, ok := changes["gridMajor"]; ok {
		d.SetGridMajor(numberValue(v))
	}
	if v, ok := changes["gridType"]; ok {
		s, _ := v.(string)
		d.SetGridType(s)
	}
	if v, ok := boolChange(changes, "snapToGrid"); ok {
		d.SetSnapToGrid(v)
	}
	if v, ok := boolChange(changes, "snapToAngle"); ok {
		d.SetSnapToAngle(v)
	}
	if v, ok := changes["snapAngle"]; ok {
		d.SetSnapAngle(numberValue(v))
	}
}

// applyComponent applies the shape first, since it sets the minimum size,
// then the size, since it bounds the position.
func applyComponent(c *diagram.Component, changes map[string]any) {
	if v, ok := changes["shape"].(string); ok {
		c.SetShape(shape.Name(v))
	}
	if v, ok := changes["width"]; ok {
		c.SetWidth(numberValue(v))
	}
	if v, ok := changes["height"]; ok {
		c.SetHeight(numberValue(v))
	}
	if v, ok := changes["x"]; ok {
		c.SetX(numberValue(v))
	}
	if v, ok := changes["y"]; ok {
		c.SetY(numberValue(v))
	}
	if v, ok := changes["angle"]; ok {
		c.SetAngle(numberValue(v))
	}
	if v, ok := boolChange(changes, "flipped"); ok {
		c.SetFlipped(v)
	}
	if v, ok := boolChange(changes, "inverted"); ok {
		c.SetInverted(v)
	}
	if v, ok := boolChange(changes, "turned"); ok {
		c.SetTurned(v)
	}
}

// numberValue accepts JSON numbers and numeric strings from form inputs.
// Anything else becomes NaN, which every setter rejects.
func numberValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		return diagram.ParseNumber(n.String())
	case string:
		return diagram.ParseNumber(n)
	default:
		return math.NaN()
	}
}

func boolChange(changes map[string]any, key string) (bool, bool) {
	switch v := changes[key].(type) {
	case bool:
		return v, true
	case string:
		switch v {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}
