package lights

import (
	"github.com/df07/go-phong-raytracer/pkg/core"
)

// PointLight is an infinitesimal light with a position and an RGB intensity.
// Intensity is not attenuated with distance.
type PointLight struct {
	Position core.Vec3
	Color    core.Vec3
}

// NewPointLight creates a new point light
func NewPointLight(position, color core.Vec3) PointLight {
	return PointLight{Position: position, Color: color}
}

// DirectionFrom returns the unit direction from point towards the light and
// the distance between them
func (pl PointLight) DirectionFrom(point core.Vec3) (core.Vec3, float64) {
	toLight := pl.Position.Subtract(point)
	distance := toLight.Length()
	return toLight.Divide(distance), distance
}

// TotalColor sums the intensities of all lights, used for ambient shading
func TotalColor(lights []PointLight) core.Vec3 {
	var total core.Vec3
	for _, light := range lights {
		total = total.Add(light.Color)
	}
	return total
}
