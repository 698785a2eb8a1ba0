package diagram

import (
	"math"

	"github.com/inamate/diagrammer/backend-go/internal/document"
)

// Limits applied by the Diagram setters.
const (
	MinCanvasSize   = 100
	MaxCanvasSize   = 10000
	MaxBorderRadius = 10000
	MinGridSpacing  = 5
	MaxGridSpacing  = 99999
	MaxGridMajor    = 99999
	MinSnapAngle    = 5
	MaxSnapAngle    = 90
	SnapAngleStep   = 5
)

// Settings is a snapshot of the diagram-wide options. Width, Height and
// BorderRadius hold the stored values; CanvasWidth, CanvasHeight and Radius
// give the values that geometry is resolved against.
type Settings struct {
	Width        float64
	Height       float64
	BorderRadius float64
	ShowGrid     bool
	GridSpacing  float64
	GridMajor    float64
	GridType     document.GridType
	SnapToGrid   bool
	SnapToAngle  bool
	AngleStep    float64
}

// SnapLength projects a raw coordinate or length onto the grid.
func (s Settings) SnapLength(raw float64) float64 {
	if !s.SnapToGrid {
		return raw
	}
	if s.GridSpacing <= 0 {
		return 0
	}
	return roundHalfUp(raw/s.GridSpacing) * s.GridSpacing
}

// SnapAngle projects a raw angle in degrees onto the angle step. The result
// is not normalized; 725 stays 725.
func (s Settings) SnapAngle(raw float64) float64 {
	if !s.SnapToAngle || s.AngleStep <= 0 {
		return raw
	}
	return roundHalfUp(raw/s.AngleStep) * s.AngleStep
}

func (s Settings) CanvasWidth() float64 { return s.SnapLength(s.Width) }
func (s Settings) CanvasHeight() float64 { return s.SnapLength(s.Height) }

// MaxBorderRadius is half the shorter canvas side.
func (s Settings) MaxBorderRadius() float64 {
	return math.Min(s.CanvasWidth(), s.CanvasHeight()) / 2
}

// Radius is the stored border radius limited to MaxBorderRadius.
func (s Settings) Radius() float64 {
	return Clamp(s.BorderRadius, 0, s.MaxBorderRadius())
}

func settingsFromProperties(p document.Properties) Settings {
	return Settings{
		Width:        p.Width,
		Height:       p.Height,
		BorderRadius: p.BorderRadius,
		ShowGrid:     p.ShowGrid,
		GridSpacing:  p.GridSpacing,
		GridMajor:    p.GridMajor,
		GridType:     p.GridType,
		SnapToGrid:   p.SnapToGrid,
		SnapToAngle:  p.SnapToAngle,
		AngleStep:    p.SnapAngle,
	}
}

func (s Settings) properties() document.Properties {
	return document.Properties{
		Width:        s.Width,
		Height:       s.Height,
		BorderRadius: s.BorderRadius,
		ShowGrid:     s.ShowGrid,
		GridSpacing:  s.GridSpacing,
		GridMajor:    s.GridMajor,
		GridType:     s.GridType,
		SnapToGrid:   s.SnapToGrid,
		SnapToAngle:  s.SnapToAngle,
		SnapAngle:    s.AngleStep,
	}
}
