package typeid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCarriesPrefix(t *testing.T) {
	id := NewDiagramID()
	assert.True(t, strings.HasPrefix(id, "diag_"), id)
	assert.NoError(t, Validate(id, PrefixDiagram))
	assert.NotEqual(t, id, NewDiagramID())
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate(NewUserID(), PrefixDiagram))
	assert.Error(t, Validate("not-an-id", PrefixUser))
}
