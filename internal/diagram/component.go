package diagram

import (
	"math"

	"github.com/inamate/diagrammer/backend-go/internal/document"
	"github.com/inamate/diagrammer/backend-go/internal/shape"
)

// TypeComponent is the type tag of Component records.
const TypeComponent = "component"

// Component is a shape placed on the canvas. It stores the geometry it was
// given and resolves it against the diagram settings and the shape catalog
// on every read: sizes and positions are limited to the canvas and snapped
// to the grid, the angle is snapped to the angle step, and transform flags
// the shape does not support read as false.
type Component struct {
	itemBase

	rawWidth  float64
	rawHeight float64
	rawX      float64
	rawY      float64
	rawAngle  float64
	shape     shape.Name
	flipped   bool
	inverted  bool
	turned    bool
}

// ComponentParams are the initial values of a new component. Zero values
// take the defaults: a generated id, a rectangle, the shape's default size,
// the top-left corner and no rotation.
type ComponentParams struct {
	ID       string
	Shape    shape.Name
	Width    float64
	Height   float64
	X        float64
	Y        float64
	Angle    float64
	Flipped  bool
	Inverted bool
	Turned   bool
}

// NewComponent creates a component and registers it with d.
func NewComponent(d *Diagram, p ComponentParams) *Component {
	c := &Component{
		itemBase: newItemBase(d, p.ID, "Component"),
		shape:    shape.Rectangle,
	}
	if shape.Valid(string(p.Shape)) {
		c.shape = p.Shape
	}

	def := c.definition()
	width, height := p.Width, p.Height
	if width == 0 {
		width = def.DefaultWidth
	}
	if height == 0 {
		height = def.DefaultHeight
	}

	c.setWidth(width)
	c.setHeight(height)
	c.setX(p.X)
	c.setY(p.Y)
	if !math.IsNaN(p.Angle) && !math.IsInf(p.Angle, 0) {
		c.rawAngle = p.Angle
	}
	c.flipped = p.Flipped && def.CanFlip
	c.inverted = p.Inverted && def.CanInvert
	c.turned = p.Turned && def.CanTurn

	d.AddItem(c)
	c.Draw()
	return c
}

// restoreComponent registers a component with exactly the raw geometry of
// rec, so that Record reproduces rec.
func restoreComponent(d *Diagram, rec document.Item) *Component {
	c := &Component{
		itemBase:  newItemBase(d, rec.ID, "Component"),
		shape:     shape.Rectangle,
		rawWidth:  rec.Width,
		rawHeight: rec.Height,
		rawX:      rec.X,
		rawY:      rec.Y,
	}
	d.AddItem(c)
	return c
}

func (c *Component) definition() shape.Definition {
	def, _ := shape.Lookup(c.shape)
	return def
}

func (c *Component) settings() Settings { return c.diagram.settings }

// Draw notifies the diagram's redraw hooks about this component.
func (c *Component) Draw() {
	c.diagram.notify(Notice{Kind: RedrawItem, ItemID: c.id})
}

// Remove unregisters the component from its diagram.
func (c *Component) Remove() Item {
	return c.diagram.RemoveItem(c)
}

// --- Size ---

func (c *Component) Width() float64 {
	s := c.settings()
	return s.SnapLength(Clamp(c.rawWidth, c.MinWidth(), s.CanvasWidth()))
}

func (c *Component) SetWidth(v float64) {
	if c.setWidth(v) {
		c.Draw()
	}
}

func (c *Component) setWidth(v float64) bool {
	if v = Clamp(v, c.MinWidth(), c.diagram.Width()); math.IsNaN(v) {
		return false
	}
	c.rawWidth = v
	return true
}

func (c *Component) MinWidth() float64 { return c.definition().MinWidth }

func (c *Component) Height() float64 {
	s := c.settings()
	return s.SnapLength(Clamp(c.rawHeight, c.MinHeight(), s.CanvasHeight()))
}

func (c *Component) SetHeight(v float64) {
	if c.setHeight(v) {
		c.Draw()
	}
}

func (c *Component) setHeight(v float64) bool {
	if v = Clamp(v, c.MinHeight(), c.diagram.Height()); math.IsNaN(v) {
		return false
	}
	c.rawHeight = v
	return true
}

func (c *Component) MinHeight() float64 { return c.definition().MinHeight }

// --- Position ---

// X is the left edge. The right edge never passes the canvas width.
func (c *Component) X() float64 {
	s := c.settings()
	return s.SnapLength(Clamp(c.rawX, 0, s.CanvasWidth()-c.Width()))
}

func (c *Component) SetX(v float64) {
	if c.setX(v) {
		c.Draw()
	}
}

func (c *Component) setX(v float64) bool {
	if v = Clamp(v, 0, c.diagram.Width()-c.Width()); math.IsNaN(v) {
		return false
	}
	c.rawX = v
	return true
}

// Y is the top edge. The bottom edge never passes the canvas height.
func (c *Component) Y() float64 {
	s := c.settings()
	return s.SnapLength(Clamp(c.rawY, 0, s.CanvasHeight()-c.Height()))
}

func (c *Component) SetY(v float64) {
	if c.setY(v) {
		c.Draw()
	}
}

func (c *Component) setY(v float64) bool {
	if v = Clamp(v, 0, c.diagram.Height()-c.Height()); math.IsNaN(v) {
		return false
	}
	c.rawY = v
	return true
}

// --- Shape ---

func (c *Component) Shape() shape.Name { return c.shape }

// SetShape ignores names outside the catalog.
func (c *Component) SetShape(name shape.Name) {
	if !shape.Valid(string(name)) {
		return
	}
	c.shape = name
	c.Draw()
}

// Color is the fill color of the current shape.
func (c *Component) Color() string { return c.definition().DefaultColor }

// --- Rotation ---

// Angle is the snapped rotation in degrees.
func (c *Component) Angle() float64 {
	return c.settings().SnapAngle(c.rawAngle)
}

// SetAngle stores v as given; it is only snapped when read.
func (c *Component) SetAngle(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	c.rawAngle = v
	c.Draw()
}

// Rotate adds delta to the current angle and returns the new angle.
func (c *Component) Rotate(delta float64) float64 {
	c.SetAngle(c.Angle() + delta)
	return c.Angle()
}

// --- Transforms ---

// Flipped reports a horizontal mirror; always false for shapes that cannot flip.
func (c *Component) Flipped() bool { return c.CanFlip() && c.flipped }

func (c *Component) SetFlipped(v bool) {
	if !c.CanFlip() {
		return
	}
	c.flipped = v
	c.Draw()
}

func (c *Component) CanFlip() bool { return c.definition().CanFlip }

// Inverted reports a vertical mirror; always false for shapes that cannot invert.
func (c *Component) Inverted() bool { return c.CanInvert() && c.inverted }

func (c *Component) SetInverted(v bool) {
	if !c.CanInvert() {
		return
	}
	c.inverted = v
	c.Draw()
}

func (c *Component) CanInvert() bool { return c.definition().CanInvert }

// Turned reports a quarter turn about the center; always false for shapes
// that cannot turn.
func (c *Component) Turned() bool { return c.CanTurn() && c.turned }

func (c *Component) SetTurned(v bool) {
	if !c.CanTurn() {
		return
	}
	c.turned = v
	c.Draw()
}

func (c *Component) CanTurn() bool { return c.definition().CanTurn }

// --- Serialization ---

// Record holds the stored geometry, not the snapped view.
func (c *Component) Record() document.Item {
	rec := c.record()
	rec.Width = c.rawWidth
	rec.Height = c.rawHeight
	rec.X = c.rawX
	rec.Y = c.rawY
	return rec
}

func (c *Component) String() string { return itemString(c) }
