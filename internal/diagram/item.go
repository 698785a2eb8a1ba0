package diagram

import (
	"encoding/json"
	"strings"

	"github.com/inamate/diagrammer/backend-go/internal/document"
)

// Item is anything the diagram registry holds. Every concrete item type
// supplies its own Draw; there is no default.
type Item interface {
	ID() string
	Type() string
	// Draw asks the rendering collaborator to redraw this item.
	Draw()
	// Record returns the serialized form of the item.
	Record() document.Item
}

// itemBase carries the identity shared by all items.
type itemBase struct {
	id       string
	itemType string
	diagram  *Diagram
}

// newItemBase assigns id, or a generated one when id is empty. typeName is
// the concrete type's name; its first letter is lower-cased for the tag.
func newItemBase(d *Diagram, id, typeName string) itemBase {
	if id == "" {
		id = d.GenerateUniqueID()
	}
	return itemBase{
		id:       id,
		itemType: strings.ToLower(typeName[:1]) + typeName[1:],
		diagram:  d,
	}
}

func (b *itemBase) ID() string { return b.id }
func (b *itemBase) Type() string { return b.itemType }
func (b *itemBase) Diagram() *Diagram { return b.diagram }
func (b *itemBase) record() document.Item {
	return document.Item{Type: b.itemType, ID: b.id}
}

func itemString(item Item) string {
	data, err := json.Marshal(item.Record())
	if err != nil {
		return "{}"
	}
	return string(data)
}
