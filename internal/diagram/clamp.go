package diagram

import (
	"math"
	"strconv"
	"strings"
)

// Clamp limits v to the interval between lo and hi. Reversed bounds are
// swapped. NaN is returned unchanged; setters treat it as a rejected update.
func Clamp(v, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if math.IsNaN(v) {
		return math.NaN()
	}
	if v <= lo {
		return lo
	}
	if v >= hi {
		return hi
	}
	return v
}

// ParseNumber converts form input to a number. Anything that is not a number
// yields NaN.
func ParseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ClampString is Clamp applied to ParseNumber(s).
func ClampString(s string, lo, hi float64) float64 {
	return Clamp(ParseNumber(s), lo, hi)
}

// roundHalfUp rounds ties toward positive infinity, so -2.5 becomes -2.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
