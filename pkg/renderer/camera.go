package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

// ErrInvalidCamera is returned when the camera cannot form an orthonormal frame
var ErrInvalidCamera = errors.New("invalid camera")

// Camera is a pinhole camera positioned at Origin looking towards LookAt
type Camera struct {
	Origin core.Vec3
	LookAt core.Vec3
	Up     core.Vec3 // World up, need not be orthogonal to the view direction
}

// NewCamera creates a new camera
func NewCamera(origin, lookAt, up core.Vec3) Camera {
	return Camera{Origin: origin, LookAt: lookAt, Up: up}
}

// Basis returns the camera's forward, right and corrected up vectors.
// A degenerate camera (origin == lookAt, or up parallel to the view
// direction) yields non-finite vectors.
func (c Camera) Basis() (forward, right, up core.Vec3) {
	forward = c.LookAt.Subtract(c.Origin).Unit()
	right = forward.Cross(c.Up).Unit()
	up = right.Cross(forward)
	return forward, right, up
}

// Validate reports whether the camera produces a finite view frame
func (c Camera) Validate() error {
	forward, right, up := c.Basis()
	if !forward.IsFinite() || !right.IsFinite() || !up.IsFinite() {
		return fmt.Errorf("%w: origin %v, look at %v, up %v", ErrInvalidCamera, c.Origin, c.LookAt, c.Up)
	}
	return nil
}

// viewport holds the per-render ray generation frame. Rows run top to bottom
// and columns left to right.
type viewport struct {
	origin  core.Vec3
	topLeft core.Vec3 // Direction through pixel (0, 0)
	xShift  core.Vec3 // Direction step per column
	yShift  core.Vec3 // Direction step per row
}

// newViewport computes the view frame for an image of width x height pixels.
// The aspect correction uses (height-1)/(width-1) so that the outermost pixel
// centers land exactly on the field of view edges.
func newViewport(camera Camera, width, height int, hFov float64) viewport {
	forward, right, up := camera.Basis()

	gx := math.Tan(hFov / 2)
	gy := gx * float64(height-1) / float64(width-1)

	return viewport{
		origin:  camera.Origin,
		topLeft: forward.Subtract(right.Multiply(gx)).Add(up.Multiply(gy)),
		xShift:  right.Multiply(2 * gx / float64(width-1)),
		yShift:  up.Multiply(2 * gy / float64(height-1)),
	}
}

// rowStart returns the direction through the leftmost pixel of a row
func (v viewport) rowStart(row int) core.Vec3 {
	return v.topLeft.Subtract(v.yShift.Multiply(float64(row)))
}

// GetRay returns the primary ray through pixel (col, row)
func (v viewport) GetRay(col, row int) core.Ray {
	return core.NewRay(v.origin, v.rowStart(row).Add(v.xShift.Multiply(float64(col))))
}
