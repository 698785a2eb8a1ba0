package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/diagrammer/backend-go/internal/diagram"
	"github.com/inamate/diagrammer/backend-go/internal/document"
	"github.com/inamate/diagrammer/backend-go/internal/shape"
)

var ErrItemNotFound = errors.New("item not found")

// maxPendingNotices bounds the notice backlog; past it the backlog collapses
// into a single full redraw.
const maxPendingNotices = 256

// Engine owns one diagram on behalf of the UI. It processes commands from the
// frontend, tracks whether the picture is stale through the diagram's redraw
// hook, and answers queries with resolved geometry.
type Engine struct {
	diagram *diagram.Diagram
	unhook  func()

	// Redraw listeners that survive document reloads
	hooks []func(diagram.Notice)

	// Notices since the last TakeNotices
	notices []diagram.Notice

	// Dirty flag - frame needs rebuild
	dirty bool
	frame Frame
}

// NewEngine creates an engine holding an empty diagram.
func NewEngine() *Engine {
	e := &Engine{}
	e.attach(diagram.New())
	return e
}

func (e *Engine) attach(d *diagram.Diagram) {
	if e.unhook != nil {
		e.unhook()
	}
	e.diagram = d
	e.unhook = d.OnRedraw(e.onRedraw)
	e.onRedraw(diagram.Notice{Kind: diagram.RedrawAll})
}

func (e *Engine) onRedraw(n diagram.Notice) {
	e.dirty = true
	if len(e.notices) >= maxPendingNotices {
		e.notices = append(e.notices[:0], diagram.Notice{Kind: diagram.RedrawAll})
	} else {
		e.notices = append(e.notices, n)
	}
	for _, fn := range e.hooks {
		fn(n)
	}
}

// OnRedraw registers fn for every redraw notice, including those of
// documents loaded later.
func (e *Engine) OnRedraw(fn func(diagram.Notice)) {
	e.hooks = append(e.hooks, fn)
}

// TakeNotices returns and clears the notices gathered since the last call.
func (e *Engine) TakeNotices() []diagram.Notice {
	out := e.notices
	e.notices = nil
	return out
}

// Diagram exposes the underlying diagram.
func (e *Engine) Diagram() *diagram.Diagram {
	return e.diagram
}

// --- Commands (frontend → engine) ---

// LoadDocument replaces the diagram with one decoded from JSON.
func (e *Engine) LoadDocument(jsonData string) error {
	doc, err := document.Parse([]byte(jsonData))
	if err != nil {
		return err
	}
	return e.LoadRecord(doc)
}

// LoadRecord replaces the diagram with one rebuilt from doc.
func (e *Engine) LoadRecord(doc *document.Diagram) error {
	d, err := diagram.Load(doc)
	if err != nil {
		return fmt.Errorf("load diagram: %w", err)
	}
	e.attach(d)
	return nil
}

// LoadSampleDocument replaces the diagram with the built-in sample.
func (e *Engine) LoadSampleDocument() {
	e.attach(diagram.NewSample())
}

// UpdateSettings applies a map of diagram property changes.
func (e *Engine) UpdateSettings(changes map[string]any) {
	applySettings(e.diagram, changes)
}

// CreateComponent adds a component and returns its id.
func (e *Engine) CreateComponent(spec ComponentSpec) string {
	c := diagram.NewComponent(e.diagram, spec.params())
	return c.ID()
}

// UpdateComponent applies a map of geometry, shape and flag changes.
func (e *Engine) UpdateComponent(id string, changes map[string]any) error {
	c, ok := e.diagram.Component(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	applyComponent(c, changes)
	return nil
}

// RotateComponent turns a component by delta degrees and returns its angle.
func (e *Engine) RotateComponent(id string, delta float64) (float64, error) {
	c, ok := e.diagram.Component(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return c.Rotate(delta), nil
}

// RemoveItem unregisters an item.
func (e *Engine) RemoveItem(id string) error {
	item, ok := e.diagram.GetItem(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	e.diagram.RemoveItem(item)
	return nil
}

// SetSelection selects an item by id; "" clears the selection.
func (e *Engine) SetSelection(id string) {
	e.diagram.Select(id)
}

// --- Queries (frontend ← engine) ---

// Frame returns the resolved geometry, rebuilding it if anything changed.
func (e *Engine) Frame() Frame {
	if e.dirty {
		e.frame = BuildFrame(e.diagram)
		e.dirty = false
	}
	return e.frame
}

// Render returns the frame as JSON.
func (e *Engine) Render() string {
	data, err := json.Marshal(e.Frame())
	if err != nil {
		return "{}"
	}
	return string(data)
}

// IsDirty reports whether the frame is stale.
func (e *Engine) IsDirty() bool {
	return e.dirty
}

// HitTest returns the id of the topmost component at (x, y), or "".
func (e *Engine) HitTest(x, y float64) string {
	return HitTest(e.Frame(), x, y)
}

// GetSelectionBounds returns the bounding box of the selection as JSON.
func (e *Engine) GetSelectionBounds() string {
	return RectToJSON(SelectionBounds(e.Frame()))
}

// GetSelection returns the selected item id, or "".
func (e *Engine) GetSelection() string {
	return e.diagram.SelectedID()
}

// GetDocument returns the serialized diagram as JSON.
func (e *Engine) GetDocument() string {
	return e.diagram.String()
}

// Document returns the serialized diagram.
func (e *Engine) Document() *document.Diagram {
	return e.diagram.Record()
}

// GetShapes returns the shape catalog as JSON.
func (e *Engine) GetShapes() string {
	data, _ := json.Marshal(shape.All())
	return string(data)
}

// GenerateUniqueID returns an id no item of the diagram uses.
func (e *Engine) GenerateUniqueID() string {
	return e.diagram.GenerateUniqueID()
}
