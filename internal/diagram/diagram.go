package diagram

import (
	"crypto/rand"
	"math"
	"math/big"
	"slices"
	"strings"

	"github.com/inamate/diagrammer/backend-go/internal/document"
)

const (
	idLength = 9
	idBase   = 36
)

// Diagram owns the item registry and the diagram-wide settings. It is not
// safe for concurrent use; callers that share one across goroutines must
// serialize access.
type Diagram struct {
	settings Settings

	items  map[string]Item
	byType map[string]map[string]Item
	order  []string // registration order of item ids

	selectedID string

	hooks      []hook
	nextHookID int

	newID func() string
}

// Option configures a Diagram at construction.
type Option func(*Diagram)

// WithIDSource replaces the random id generator. GenerateUniqueID still
// retries until the source yields an unused id.
func WithIDSource(fn func() string) Option {
	return func(d *Diagram) {
		d.newID = fn
	}
}

// WithProperties starts the diagram from p instead of the defaults. Values
// go through the regular setters.
func WithProperties(p document.Properties) Option {
	return func(d *Diagram) {
		d.applyProperties(p)
	}
}

// New creates an empty diagram with default settings.
func New(opts ...Option) *Diagram {
	d := &Diagram{
		settings: settingsFromProperties(document.DefaultProperties()),
		items:    make(map[string]Item),
		byType:   make(map[string]map[string]Item),
		newID:    randomID,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Settings returns a copy of the current settings.
func (d *Diagram) Settings() Settings {
	return d.settings
}

// --- Registry ---

// AddItem registers item by id and by type. An item already registered
// under the same id is replaced.
func (d *Diagram) AddItem(item Item) Item {
	id := item.ID()
	if prev, ok := d.items[id]; ok {
		delete(d.byType[prev.Type()], id)
	} else {
		d.order = append(d.order, id)
	}

	d.items[id] = item

	bucket, ok := d.byType[item.Type()]
	if !ok {
		bucket = make(map[string]Item)
		d.byType[item.Type()] = bucket
	}
	bucket[id] = item

	return item
}

// RemoveItem unregisters item. Removing an unknown item is a no-op.
func (d *Diagram) RemoveItem(item Item) Item {
	id := item.ID()
	if _, ok := d.items[id]; !ok {
		return item
	}

	delete(d.items, id)
	if bucket, ok := d.byType[item.Type()]; ok {
		delete(bucket, id)
	}
	if i := slices.Index(d.order, id); i >= 0 {
		d.order = slices.Delete(d.order, i, i+1)
	}
	if d.selectedID == id {
		d.selectedID = ""
	}

	d.notify(Notice{Kind: RedrawItem, ItemID: id})
	return item
}

// GetItem looks up a registered item.
func (d *Diagram) GetItem(id string) (Item, bool) {
	item, ok := d.items[id]
	return item, ok
}

// GetAllItems returns every registered item in registration order.
func (d *Diagram) GetAllItems() []Item {
	items := make([]Item, 0, len(d.order))
	for _, id := range d.order {
		items = append(items, d.items[id])
	}
	return items
}

// GetAllItemsByType returns the registered items of one type in registration
// order. An unknown type yields an empty slice.
func (d *Diagram) GetAllItemsByType(itemType string) []Item {
	bucket := d.byType[itemType]
	items := make([]Item, 0, len(bucket))
	for _, id := range d.order {
		if item, ok := bucket[id]; ok {
			items = append(items, item)
		}
	}
	return items
}

// Component looks up a registered component.
func (d *Diagram) Component(id string) (*Component, bool) {
	c, ok := d.items[id].(*Component)
	return c, ok
}

// Components returns every registered component in registration order.
func (d *Diagram) Components() []*Component {
	out := make([]*Component, 0, len(d.byType[TypeComponent]))
	for _, item := range d.GetAllItemsByType(TypeComponent) {
		out = append(out, item.(*Component))
	}
	return out
}

// GenerateUniqueID returns an id no registered item uses.
func (d *Diagram) GenerateUniqueID() string {
	for {
		id := d.newID()
		if _, taken := d.items[id]; !taken {
			return id
		}
	}
}

// randomID draws a 9 character upper-case base-36 string.
func randomID() string {
	limit := new(big.Int).Exp(big.NewInt(idBase), big.NewInt(idLength), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		panic(err)
	}
	id := strings.ToUpper(n.Text(idBase))
	return strings.Repeat("0", idLength-len(id)) + id
}

// --- Selection ---

// Select marks the item with the given id as selected. An empty id clears
// the selection; an unknown id is ignored. A change notifies the previously
// and newly selected items.
func (d *Diagram) Select(id string) {
	if id != "" {
		if _, ok := d.items[id]; !ok {
			return
		}
	}
	prev := d.selectedID
	if prev == id {
		return
	}
	d.selectedID = id

	if prev != "" {
		d.notify(Notice{Kind: RedrawItem, ItemID: prev})
	}
	if id != "" {
		d.notify(Notice{Kind: RedrawItem, ItemID: id})
	}
}

// SelectedID returns the selected item id, or "".
func (d *Diagram) SelectedID() string {
	return d.selectedID
}

// Selected returns the selected item, if any.
func (d *Diagram) Selected() (Item, bool) {
	return d.GetItem(d.selectedID)
}

// --- Settings ---

// Width is the grid-snapped canvas width.
func (d *Diagram) Width() float64 { return d.settings.CanvasWidth() }

// Height is the grid-snapped canvas height.
func (d *Diagram) Height() float64 { return d.settings.CanvasHeight() }

func (d *Diagram) SetWidth(v float64) {
	if v = Clamp(v, MinCanvasSize, MaxCanvasSize); math.IsNaN(v) {
		return
	}
	d.settings.Width = v
	d.notify(Notice{Kind: RedrawAll})
}

func (d *Diagram) SetHeight(v float64) {
	if v = Clamp(v, MinCanvasSize, MaxCanvasSize); math.IsNaN(v) {
		return
	}
	d.settings.Height = v
	d.notify(Notice{Kind: RedrawAll})
}

// BorderRadius is limited to MaxBorderRadius on every read, so it follows
// later changes to the canvas size.
func (d *Diagram) BorderRadius() float64 { return d.settings.Radius() }
func (d *Diagram) MaxBorderRadius() float64 { return d.settings.MaxBorderRadius() }

func (d *Diagram) SetBorderRadius(v float64) {
	if v = Clamp(v, 0, MaxBorderRadius); math.IsNaN(v) {
		return
	}
	d.settings.BorderRadius = v
	d.notify(Notice{Kind: RedrawCanvas})
}

func (d *Diagram) ShowGrid() bool { return d.settings.ShowGrid }

func (d *Diagram) SetShowGrid(v bool) {
	d.settings.ShowGrid = v
	d.notify(Notice{Kind: RedrawCanvas})
}

// ToggleGrid flips the grid visibility.
func (d *Diagram) ToggleGrid() {
	d.SetShowGrid(!d.settings.ShowGrid)
}

func (d *Diagram) GridSpacing() float64 { return d.settings.GridSpacing }

func (d *Diagram) SetGridSpacing(v float64) {
	if v = Clamp(v, MinGridSpacing, MaxGridSpacing); math.IsNaN(v) {
		return
	}
	d.settings.GridSpacing = v
	d.notify(Notice{Kind: RedrawAll})
}

// GridMajor is the number of grid steps between emphasized marks; 0 turns
// emphasis off.
func (d *Diagram) GridMajor() float64 { return d.settings.GridMajor }

func (d *Diagram) SetGridMajor(v float64) {
	if math.IsNaN(v) {
		return
	}
	if v <= 0 {
		v = 0
	} else {
		v = Clamp(v, 1, MaxGridMajor)
	}
	d.settings.GridMajor = v
	d.notify(Notice{Kind: RedrawCanvas})
}

func (d *Diagram) GridType() document.GridType { return d.settings.GridType }

// SetGridType falls back to lines for anything that is not a known grid type.
func (d *Diagram) SetGridType(v string) {
	switch t := document.GridType(v); t {
	case document.GridLines, document.GridDots:
		d.settings.GridType = t
	default:
		d.settings.GridType = document.GridLines
	}
	d.notify(Notice{Kind: RedrawCanvas})
}

func (d *Diagram) SnapToGrid() bool { return d.settings.SnapToGrid }

func (d *Diagram) SetSnapToGrid(v bool) {
	d.settings.SnapToGrid = v
	d.notify(Notice{Kind: RedrawAll})
}

func (d *Diagram) SnapToAngle() bool { return d.settings.SnapToAngle }

func (d *Diagram) SetSnapToAngle(v bool) {
	d.settings.SnapToAngle = v
	d.notify(Notice{Kind: RedrawItems})
}

// SnapAngle is the angle step in degrees.
func (d *Diagram) SnapAngle() float64 { return d.settings.AngleStep }

// SetSnapAngle clamps v to [5, 90] and rounds it to a multiple of 5.
func (d *Diagram) SetSnapAngle(v float64) {
	if v = Clamp(v, MinSnapAngle, MaxSnapAngle); math.IsNaN(v) {
		return
	}
	d.settings.AngleStep = roundHalfUp(v/SnapAngleStep) * SnapAngleStep
	d.notify(Notice{Kind: RedrawItems})
}

// GridSnap applies the current grid snapping to v.
func (d *Diagram) GridSnap(v float64) float64 { return d.settings.SnapLength(v) }

// AngleSnap applies the current angle snapping to v.
func (d *Diagram) AngleSnap(v float64) float64 { return d.settings.SnapAngle(v) }
