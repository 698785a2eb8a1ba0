package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/diagrammer/backend-go/internal/document"
	"github.com/inamate/diagrammer/backend-go/internal/engine"
	"github.com/inamate/diagrammer/backend-go/internal/shape"
)

func newState(t *testing.T) *DocumentState {
	t.Helper()
	ds, err := NewDocumentState(document.NewEmptyDocument())
	require.NoError(t, err)
	return ds
}

func TestApplyCreate(t *testing.T) {
	ds := newState(t)

	_, err := ds.ApplyOperation(&Operation{ID: "op1", Type: OpComponentCreate})
	assert.ErrorIs(t, err, ErrInvalidOperation)

	op := &Operation{ID: "op2", Type: OpComponentCreate, Component: &engine.ComponentSpec{Shape: shape.Pill, X: 10, Y: 10}}
	res, err := ds.ApplyOperation(op)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ServerSeq)
	assert.Len(t, res.ItemID, 9)
	assert.Equal(t, res.ItemID, op.Component.ID, "the generated id is written back for broadcast")
	assert.NotEmpty(t, res.Notices)

	dup := &Operation{ID: "op3", Type: OpComponentCreate, Component: &engine.ComponentSpec{ID: res.ItemID}}
	_, err = ds.ApplyOperation(dup)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	doc, seq := ds.Document()
	assert.Equal(t, int64(1), seq)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, document.Item{Type: "component", ID: res.ItemID, Width: 200, Height: 60, X: 10, Y: 10}, doc.Items[0])
}

func TestApplyEdits(t *testing.T) {
	ds := newState(t)
	res, err := ds.ApplyOperation(&Operation{Type: OpComponentCreate, Component: &engine.ComponentSpec{ID: "A"}})
	require.NoError(t, err)
	require.Equal(t, "A", res.ItemID)

	_, err = ds.ApplyOperation(&Operation{Type: OpComponentUpdate, ItemID: "A", Changes: map[string]any{"width": 100.0, "x": "40"}})
	require.NoError(t, err)

	res, err = ds.ApplyOperation(&Operation{Type: OpComponentRotate, ItemID: "A", Delta: 32})
	require.NoError(t, err)
	require.NotNil(t, res.Angle)
	assert.Equal(t, 30.0, *res.Angle)

	_, err = ds.ApplyOperation(&Operation{Type: OpDiagramUpdate, Changes: map[string]any{"gridType": "dots"}})
	require.NoError(t, err)

	doc, seq := ds.Document()
	assert.Equal(t, int64(4), seq)
	assert.Equal(t, document.GridDots, doc.Properties.GridType)
	assert.Equal(t, 100.0, doc.Items[0].Width)
	assert.Equal(t, 40.0, doc.Items[0].X)

	_, err = ds.ApplyOperation(&Operation{Type: OpDiagramUpdate})
	assert.ErrorIs(t, err, ErrInvalidOperation)
	_, err = ds.ApplyOperation(&Operation{Type: OpComponentUpdate, ItemID: "missing", Changes: map[string]any{"x": 1.0}})
	assert.ErrorIs(t, err, engine.ErrItemNotFound)
	_, err = ds.ApplyOperation(&Operation{Type: OpComponentRotate, ItemID: "missing", Delta: 1})
	assert.ErrorIs(t, err, engine.ErrItemNotFound)
	_, err = ds.ApplyOperation(&Operation{Type: "object.transform"})
	assert.ErrorIs(t, err, ErrUnknownOperation)

	_, seq = ds.Document()
	assert.Equal(t, int64(4), seq, "rejected operations do not advance the sequence")
}

func TestApplyRemoveAndSelection(t *testing.T) {
	ds := newState(t)
	_, err := ds.ApplyOperation(&Operation{Type: OpComponentCreate, Component: &engine.ComponentSpec{ID: "A"}})
	require.NoError(t, err)

	_, dirty := ds.TakeDirty()
	assert.True(t, dirty)

	_, err = ds.ApplyOperation(&Operation{Type: OpSelectionSet, ItemID: "nope"})
	assert.ErrorIs(t, err, engine.ErrItemNotFound)
	_, err = ds.ApplyOperation(&Operation{Type: OpSelectionSet, ItemID: "A"})
	require.NoError(t, err)
	_, dirty = ds.TakeDirty()
	assert.False(t, dirty, "selection is not part of the record")

	res, err := ds.ApplyOperation(&Operation{Type: OpItemRemove, ItemID: "A"})
	require.NoError(t, err)
	assert.Equal(t, "A", res.ItemID)
	assert.NotEmpty(t, res.Notices)

	_, err = ds.ApplyOperation(&Operation{Type: OpItemRemove, ItemID: "A"})
	assert.ErrorIs(t, err, engine.ErrItemNotFound)

	doc, dirty := ds.TakeDirty()
	assert.True(t, dirty)
	assert.Empty(t, doc.Items)

	ds.MarkDirty()
	_, dirty = ds.TakeDirty()
	assert.True(t, dirty)
}

func TestNewDocumentStateRejectsBadRecords(t *testing.T) {
	doc := document.NewEmptyDocument()
	doc.Items = []document.Item{{Type: "arrow", ID: "X"}}
	_, err := NewDocumentState(doc)
	assert.Error(t, err)
}
