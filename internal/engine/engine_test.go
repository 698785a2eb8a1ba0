package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/diagrammer/backend-go/internal/diagram"
	"github.com/inamate/diagrammer/backend-go/internal/document"
	"github.com/inamate/diagrammer/backend-go/internal/shape"
)

func TestDirtyTracking(t *testing.T) {
	e := NewEngine()
	assert.True(t, e.IsDirty())

	e.Render()
	assert.False(t, e.IsDirty())

	e.UpdateSettings(map[string]any{"borderRadius": 8.0})
	assert.True(t, e.IsDirty())
	assert.Equal(t, 8.0, e.Frame().Canvas.BorderRadius)
	assert.False(t, e.IsDirty())

	e.SetSelection("nothing")
	assert.False(t, e.IsDirty(), "ignored selections do not invalidate the frame")
}

func TestUpdateSettingsParsesFormValues(t *testing.T) {
	e := NewEngine()
	e.UpdateSettings(map[string]any{
		"width":       "600",
		"height":      json.Number("420"),
		"gridType":    "bogus",
		"showGrid":    false,
		"snapToAngle": "false",
		"snapAngle":   "abc",
		"unknown":     1,
	})

	d := e.Diagram()
	assert.Equal(t, 600.0, d.Width())
	assert.Equal(t, 420.0, d.Height())
	assert.Equal(t, document.GridLines, d.GridType())
	assert.False(t, d.ShowGrid())
	assert.False(t, d.SnapToAngle())
	assert.Equal(t, 5.0, d.SnapAngle(), "non-numeric input is rejected")
}

func TestComponentCommands(t *testing.T) {
	e := NewEngine()
	id := e.CreateComponent(ComponentSpec{Shape: shape.Pill, X: 40, Y: 40})
	require.NotEmpty(t, id)

	require.NoError(t, e.UpdateComponent(id, map[string]any{"x": 700.0, "width": 100.0, "turned": true}))
	c, ok := e.Diagram().Component(id)
	require.True(t, ok)
	assert.Equal(t, 100.0, c.Width())
	assert.Equal(t, 700.0, c.X(), "width is applied before x")
	assert.True(t, c.Turned())

	angle, err := e.RotateComponent(id, 32)
	require.NoError(t, err)
	assert.Equal(t, 30.0, angle)

	require.NoError(t, e.UpdateComponent(id, map[string]any{"shape": "hexagon"}))
	assert.Equal(t, shape.Pill, c.Shape())

	assert.ErrorIs(t, e.UpdateComponent("missing", nil), ErrItemNotFound)
	_, err = e.RotateComponent("missing", 5)
	assert.ErrorIs(t, err, ErrItemNotFound)

	require.NoError(t, e.RemoveItem(id))
	assert.ErrorIs(t, e.RemoveItem(id), ErrItemNotFound)
	assert.Empty(t, e.Frame().Components)
}

func TestLoadDocumentRoundTrip(t *testing.T) {
	e := NewEngine()
	e.LoadSampleDocument()
	e.UpdateSettings(map[string]any{"gridSpacing": 20.0})

	data := e.GetDocument()

	other := NewEngine()
	require.NoError(t, other.LoadDocument(data))
	assert.Equal(t, e.Document(), other.Document())

	assert.Error(t, other.LoadDocument(`{"items":[{"type":"arrow","id":"A"}]}`))
	assert.Error(t, other.LoadDocument(`not json`))
	assert.Equal(t, e.Document(), other.Document(), "failed loads keep the current diagram")
}

func TestHooksSurviveReload(t *testing.T) {
	e := NewEngine()
	var notices []diagram.Notice
	e.OnRedraw(func(n diagram.Notice) { notices = append(notices, n) })

	e.LoadSampleDocument()
	notices = nil

	e.UpdateSettings(map[string]any{"showGrid": false})
	assert.Equal(t, []diagram.Notice{{Kind: diagram.RedrawCanvas}}, notices)

	taken := e.TakeNotices()
	assert.NotEmpty(t, taken)
	assert.Empty(t, e.TakeNotices())
}

func TestSelectionBounds(t *testing.T) {
	e := NewEngine()
	id := e.CreateComponent(ComponentSpec{Width: 200, Height: 60, X: 100, Y: 100})

	assert.JSONEq(t, `{"x":0,"y":0,"width":0,"height":0}`, e.GetSelectionBounds())

	e.SetSelection(id)
	assert.Equal(t, id, e.GetSelection())
	assert.JSONEq(t, `{"x":100,"y":100,"width":200,"height":60}`, e.GetSelectionBounds())
}

func TestRenderJSON(t *testing.T) {
	e := NewEngine()
	e.CreateComponent(ComponentSpec{ID: "A", Shape: shape.Triangle, Inverted: true})

	var frame map[string]any
	require.NoError(t, json.Unmarshal([]byte(e.Render()), &frame))

	components := frame["components"].([]any)
	require.Len(t, components, 1)
	first := components[0].(map[string]any)
	assert.Equal(t, "A", first["id"])
	assert.Equal(t, "triangle", first["shape"])
	assert.Equal(t, true, first["inverted"])
	assert.Len(t, first["transform"], 6)

	var shapes []shape.Definition
	require.NoError(t, json.Unmarshal([]byte(e.GetShapes()), &shapes))
	assert.Len(t, shapes, 6)
	assert.Len(t, e.GenerateUniqueID(), 9)
}
