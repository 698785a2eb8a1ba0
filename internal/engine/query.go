package engine

import (
	"encoding/json"

	"github.com/inamate/diagrammer/backend-go/internal/diagram"
)

// BuildFrame resolves every component of d, in registration order (back to
// front).
func BuildFrame(d *diagram.Diagram) Frame {
	components := d.Components()
	placements := make([]Placement, 0, len(components))
	for _, c := range components {
		placements = append(placements, Place(c))
	}

	return Frame{
		Canvas: Canvas{
			Width:        d.Width(),
			Height:       d.Height(),
			BorderRadius: d.BorderRadius(),
		},
		Grid:       GridMarks(d),
		Components: placements,
		Selection:  d.SelectedID(),
	}
}

// HitTest returns the id of the frontmost component containing the point,
// or empty string.
func HitTest(f Frame, x, y float64) string {
	for i := len(f.Components) - 1; i >= 0; i-- {
		p := f.Components[i]
		if !p.Bounds.Contains(x, y) {
			continue
		}
		if p.Hit(x, y) {
			return p.ID
		}
	}
	return ""
}

// SelectionBounds returns the world bounding box of the selected component.
func SelectionBounds(f Frame) Rect {
	if f.Selection == "" {
		return Rect{}
	}
	for _, p := range f.Components {
		if p.ID == f.Selection {
			return p.Bounds
		}
	}
	return Rect{}
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}
