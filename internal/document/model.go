package document

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidDocument = errors.New("invalid document")

type GridType string

const (
	GridLines GridType = "lines"
	GridDots  GridType = "dots"
)

// Diagram is the persisted form of a diagram: its settings and one record per item.
type Diagram struct {
	Properties Properties `json:"properties"`
	Items      []Item     `json:"items"`
}

// Properties are the diagram-wide settings.
type Properties struct {
	Width        float64  `json:"width" yaml:"width"`
	Height       float64  `json:"height" yaml:"height"`
	BorderRadius float64  `json:"borderRadius" yaml:"borderRadius"`
	ShowGrid     bool     `json:"showGrid" yaml:"showGrid"`
	GridSpacing  float64  `json:"gridSpacing" yaml:"gridSpacing"`
	GridMajor    float64  `json:"gridMajor" yaml:"gridMajor"`
	GridType     GridType `json:"gridType" yaml:"gridType"`
	SnapToGrid   bool     `json:"snapToGrid" yaml:"snapToGrid"`
	SnapToAngle  bool     `json:"snapToAngle" yaml:"snapToAngle"`
	SnapAngle    float64  `json:"snapAngle" yaml:"snapAngle"`
}

// Item is the record of one registered item. Geometry fields hold the raw,
// unsnapped values so a record survives later changes to the snap settings.
type Item struct {
	Type   string  `json:"type"`
	ID     string  `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// DefaultProperties returns the settings of a freshly opened diagram.
func DefaultProperties() Properties {
	return Properties{
		Width:        800,
		Height:       800,
		BorderRadius: 5,
		ShowGrid:     true,
		GridSpacing:  10,
		GridMajor:    5,
		GridType:     GridLines,
		SnapToGrid:   true,
		SnapToAngle:  true,
		SnapAngle:    5,
	}
}

// NewEmptyDocument creates a document with default settings and no items.
func NewEmptyDocument() *Diagram {
	return &Diagram{
		Properties: DefaultProperties(),
		Items:      []Item{},
	}
}

// Parse decodes a document. Properties missing from data keep their defaults.
func Parse(data []byte) (*Diagram, error) {
	doc := NewEmptyDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc.Items == nil {
		doc.Items = []Item{}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate checks the structural rules a loader relies on: every item has a
// type and an id, and ids are unique.
func (d *Diagram) Validate() error {
	seen := make(map[string]struct{}, len(d.Items))
	for i, item := range d.Items {
		if item.Type == "" {
			return fmt.Errorf("%w: item %d has no type", ErrInvalidDocument, i)
		}
		if item.ID == "" {
			return fmt.Errorf("%w: item %d has no id", ErrInvalidDocument, i)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: duplicate item id %q", ErrInvalidDocument, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// Marshal encodes the document as JSON.
func (d *Diagram) Marshal() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}
