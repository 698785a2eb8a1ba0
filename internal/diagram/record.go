package diagram

import (
	"errors"
	"fmt"
	"math"

	"github.com/inamate/diagrammer/backend-go/internal/document"
)

var (
	ErrUnknownItemType = errors.New("unknown item type")
	ErrInvalidNumber   = errors.New("invalid number")
)

// Properties returns the stored settings in record form.
func (d *Diagram) Properties() document.Properties {
	return d.settings.properties()
}

// ApplyProperties sets every property through its setter, so out-of-range
// values are clamped and unknown grid types fall back to lines.
func (d *Diagram) ApplyProperties(p document.Properties) {
	d.applyProperties(p)
}

func (d *Diagram) applyProperties(p document.Properties) {
	d.SetWidth(p.Width)
	d.SetHeight(p.Height)
	d.SetBorderRadius(p.BorderRadius)
	d.SetShowGrid(p.ShowGrid)
	d.SetGridSpacing(p.GridSpacing)
	d.SetGridMajor(p.GridMajor)
	d.SetGridType(string(p.GridType))
	d.SetSnapToGrid(p.SnapToGrid)
	d.SetSnapToAngle(p.SnapToAngle)
	d.SetSnapAngle(p.SnapAngle)
}

// Record serializes the diagram: its stored settings and one record per
// registered item, in registration order.
func (d *Diagram) Record() *document.Diagram {
	items := make([]document.Item, 0, len(d.order))
	for _, item := range d.GetAllItems() {
		items = append(items, item.Record())
	}
	return &document.Diagram{
		Properties: d.Properties(),
		Items:      items,
	}
}

// String returns the record as JSON.
func (d *Diagram) String() string {
	data, err := d.Record().Marshal()
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Load rebuilds a diagram from its record. Item geometry is restored exactly,
// so Load followed by Record reproduces the item records.
func Load(doc *document.Diagram, opts ...Option) (*Diagram, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	d := New(append([]Option{WithProperties(doc.Properties)}, opts...)...)

	for _, rec := range doc.Items {
		switch rec.Type {
		case TypeComponent:
			if err := checkFinite(rec); err != nil {
				return nil, err
			}
			restoreComponent(d, rec)
		default:
			return nil, fmt.Errorf("%w: %q (item %s)", ErrUnknownItemType, rec.Type, rec.ID)
		}
	}
	return d, nil
}

func checkFinite(rec document.Item) error {
	for name, v := range map[string]float64{"width": rec.Width, "height": rec.Height, "x": rec.X, "y": rec.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s of item %s", ErrInvalidNumber, name, rec.ID)
		}
	}
	return nil
}
