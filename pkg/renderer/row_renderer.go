package renderer

import (
	"math"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

// BytesPerPixel is the size of one RGB pixel in the output buffer
const BytesPerPixel = 3

// RowRenderer traces every pixel of a single image row. It holds no mutable
// state, so one instance is shared by all workers.
type RowRenderer struct {
	scene  Scene
	view   viewport
	width  int
	linear bool
}

// newRowRenderer creates a row renderer for the given view frame
func newRowRenderer(scene Scene, view viewport, width int, linear bool) *RowRenderer {
	return &RowRenderer{
		scene:  scene,
		view:   view,
		width:  width,
		linear: linear,
	}
}

// RenderRow writes the row's RGB bytes into dst, which must hold
// width*BytesPerPixel bytes
func (rr *RowRenderer) RenderRow(row int, dst []byte) {
	direction := rr.view.rowStart(row)
	for col := 0; col < rr.width; col++ {
		color := rr.scene.Trace(core.NewRay(rr.view.origin, direction), 0)
		r, g, b := ColorToBytes(color, rr.linear)
		i := col * BytesPerPixel
		dst[i], dst[i+1], dst[i+2] = r, g, b
		direction = direction.Add(rr.view.xShift)
	}
}

// ColorToBytes converts a linear color to 8-bit channels. Channels are
// clamped to [0, 1] and, unless linear is set, passed through the sRGB
// transfer function first.
func ColorToBytes(color core.Vec3, linear bool) (byte, byte, byte) {
	c := color.Clamp(0, 1)
	if !linear {
		c = core.NewVec3(LinearToSRGB(c.X), LinearToSRGB(c.Y), LinearToSRGB(c.Z))
	}
	return channelToByte(c.X), channelToByte(c.Y), channelToByte(c.Z)
}

// LinearToSRGB applies the sRGB transfer function to a channel in [0, 1]
func LinearToSRGB(c float64) float64 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math.Pow(c, 1/2.4) - 0.055
}

func channelToByte(c float64) byte {
	// NaN fails both comparisons and maps to 0
	if !(c > 0) {
		return 0
	}
	if c >= 1 {
		return 255
	}
	return byte(math.Round(c * 255))
}
