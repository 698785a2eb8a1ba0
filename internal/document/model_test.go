package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsDefaults(t *testing.T) {
	doc, err := Parse([]byte(`{"properties":{"width":1200,"gridType":"dots"}}`))
	require.NoError(t, err)

	assert.Equal(t, 1200.0, doc.Properties.Width)
	assert.Equal(t, 800.0, doc.Properties.Height)
	assert.Equal(t, GridDots, doc.Properties.GridType)
	assert.True(t, doc.Properties.SnapToGrid)
	assert.NotNil(t, doc.Items)
	assert.Empty(t, doc.Items)
}

func TestParseRejectsBadItems(t *testing.T) {
	tests := map[string]string{
		"missing type": `{"items":[{"id":"A"}]}`,
		"missing id":   `{"items":[{"type":"component"}]}`,
		"duplicate id": `{"items":[{"type":"component","id":"A"},{"type":"component","id":"A"}]}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}

	_, err := Parse([]byte(`{"items":`))
	assert.Error(t, err)
}

func TestMarshalShape(t *testing.T) {
	doc := NewEmptyDocument()
	doc.Items = append(doc.Items, Item{Type: "component", ID: "ABC", Width: 120, Height: 40, X: 13, Y: 7})

	data, err := doc.Marshal()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	props := raw["properties"].(map[string]any)
	assert.ElementsMatch(t, []string{
		"width", "height", "borderRadius", "showGrid", "gridSpacing", "gridMajor",
		"gridType", "snapToGrid", "snapToAngle", "snapAngle",
	}, keys(props))

	item := raw["items"].([]any)[0].(map[string]any)
	assert.ElementsMatch(t, []string{"type", "id", "width", "height", "x", "y"}, keys(item))
	assert.Equal(t, 13.0, item["x"])
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
