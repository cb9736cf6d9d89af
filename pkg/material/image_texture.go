package material

import (
	"github.com/df07/go-phong-raytracer/pkg/core"
)

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x], row 0 at the top
}

// NewImageTexture creates a new image texture
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// Evaluate samples the texture with nearest-neighbor lookup. UV is expected
// in [0, 1); v = 0 is the top row. Out-of-range coordinates are clamped to
// the image edge.
func (t *ImageTexture) Evaluate(uv core.Vec2) core.Vec3 {
	x := clampIndex(int(uv.X*float64(t.Width)), t.Width)
	y := clampIndex(int(uv.Y*float64(t.Height)), t.Height)
	return t.Pixels[y*t.Width+x]
}

func (t *ImageTexture) isColorSource() {}

func clampIndex(i, n int) int {
	if i >= n {
		return n - 1
	}
	if i < 0 {
		return 0
	}
	return i
}
