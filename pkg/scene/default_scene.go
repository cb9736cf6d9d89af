package scene

import (
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/material"
	"github.com/df07/go-phong-raytracer/pkg/renderer"
)

// NewDefaultScene creates two balls resting on a green floor under a single
// white light
func NewDefaultScene() *Scene {
	camera := renderer.NewCamera(
		core.NewVec3(0, 3, -5), // Above and behind the balls
		core.NewVec3(0, 1, 0),  // Between the ball centers
		core.NewVec3(0, 1, 0),  // Standard up direction
	)

	s := NewScene(camera, RenderConfig{
		Width:       640,
		Height:      360,
		HFovDegrees: 90,
	})
	s.MaxDepth = 2

	// Create shading
	matteRed := material.NewSolidPhong(core.NewVec3(1, 0, 0), 0, 0.5, 1, 2)
	glossyWhite := material.NewSolidPhong(core.NewVec3(1, 1, 1), 0.5, 0.5, 1, 5)
	glossyGreen := material.NewSolidPhong(core.NewVec3(0.1, 0.9, 0), 0.5, 0.5, 1, 5)

	s.Shapes = append(s.Shapes,
		newSphere(core.NewVec3(2, 1, 0), 1, matteRed),
		geometry.NewPlane(core.NewVec3(0, 1, 0), 0, glossyGreen),
		newSphere(core.NewVec3(-2, 1, 0), 1, glossyWhite),
	)

	s.AddPointLight(core.NewVec3(5, 20, -5), core.NewVec3(1, 1, 1))

	return s
}

// newSphere creates a sphere from constant scene data, where the radius is
// known to be positive
func newSphere(center core.Vec3, radius float64, shading *material.Phong) *geometry.Sphere {
	return &geometry.Sphere{Center: center, Radius: radius, Shading: shading}
}
