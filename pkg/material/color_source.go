package material

import (
	"github.com/df07/go-phong-raytracer/pkg/core"
)

// ColorSource provides the base color of a surface at a (u, v) coordinate.
// The set of implementations is closed: SolidColor, ImageTexture and NoColor.
type ColorSource interface {
	Evaluate(uv core.Vec2) core.Vec3
	isColorSource()
}

// SolidColor provides a uniform color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color source
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of UV
func (s *SolidColor) Evaluate(uv core.Vec2) core.Vec3 {
	return s.Color
}

func (s *SolidColor) isColorSource() {}

// NoColor is the absent material; it always evaluates to black
type NoColor struct{}

// Evaluate returns black
func (NoColor) Evaluate(uv core.Vec2) core.Vec3 {
	return core.Vec3{}
}

func (NoColor) isColorSource() {}
