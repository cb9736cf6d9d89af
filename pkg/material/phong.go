package material

import (
	"errors"
	"fmt"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

// ErrInvalidShading is returned by Validate for out-of-range Phong parameters
var ErrInvalidShading = errors.New("invalid shading parameters")

// Phong holds the local illumination parameters of a surface
type Phong struct {
	Color ColorSource // Base color; nil behaves like NoColor
	Ks    float64     // Specular coefficient in [0, 1]
	Kd    float64     // Diffuse coefficient in [0, 1]
	Ka    float64     // Ambient coefficient in [0, 1]
	Alpha float64     // Shininess exponent, > 0
}

// NewPhong creates shading parameters over a color source
func NewPhong(color ColorSource, ks, kd, ka, alpha float64) *Phong {
	return &Phong{
		Color: color,
		Ks:    ks,
		Kd:    kd,
		Ka:    ka,
		Alpha: alpha,
	}
}

// NewSolidPhong is shorthand for Phong shading over a uniform color
func NewSolidPhong(color core.Vec3, ks, kd, ka, alpha float64) *Phong {
	return NewPhong(NewSolidColor(color), ks, kd, ka, alpha)
}

// ColorAt samples the base color at the given surface coordinate
func (p *Phong) ColorAt(uv core.Vec2) core.Vec3 {
	if p.Color == nil {
		return core.Vec3{}
	}
	return p.Color.Evaluate(uv)
}

// Validate checks that the coefficients are in [0, 1] and alpha is positive
func (p *Phong) Validate() error {
	coefficients := []struct {
		name  string
		value float64
	}{
		{"ks", p.Ks},
		{"kd", p.Kd},
		{"ka", p.Ka},
	}
	for _, c := range coefficients {
		if !(c.value >= 0 && c.value <= 1) {
			return fmt.Errorf("%w: %s=%g outside [0, 1]", ErrInvalidShading, c.name, c.value)
		}
	}
	if !(p.Alpha > 0) {
		return fmt.Errorf("%w: alpha=%g must be positive", ErrInvalidShading, p.Alpha)
	}
	if tex, ok := p.Color.(*ImageTexture); ok {
		if tex.Width <= 0 || tex.Height <= 0 || len(tex.Pixels) != tex.Width*tex.Height {
			return fmt.Errorf("%w: texture is %dx%d with %d pixels", ErrInvalidShading, tex.Width, tex.Height, len(tex.Pixels))
		}
	}
	return nil
}
