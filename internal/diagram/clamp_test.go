package diagram

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi float64
		want      float64
	}{
		{"inside", 5, 0, 10, 5},
		{"below", -1, 0, 10, 0},
		{"above", 11, 0, 10, 10},
		{"reversed bounds", 5, 10, 0, 5},
		{"reversed above", 20, 10, 0, 10},
		{"positive infinity", math.Inf(1), 0, 10, 10},
		{"negative infinity", math.Inf(-1), 0, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.v, tt.lo, tt.hi))
		})
	}

	assert.True(t, math.IsNaN(Clamp(math.NaN(), 0, 10)))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 12.5, ParseNumber("12.5"))
	assert.Equal(t, 7.0, ParseNumber(" 7 "))
	assert.Equal(t, -3.0, ParseNumber("-3"))
	assert.True(t, math.IsNaN(ParseNumber("abc")))
	assert.True(t, math.IsNaN(ParseNumber("")))

	assert.Equal(t, 100.0, ClampString("12", 100, 10000))
	assert.True(t, math.IsNaN(ClampString("wide", 100, 10000)))
}
