package scene

import (
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/material"
	"github.com/df07/go-phong-raytracer/pkg/renderer"
)

// Cornell box dimensions
const cornellSize = 5.55

// NewCornellScene creates a Cornell box with a mirror sphere and a matte
// sphere, lit by a point light just below the ceiling
func NewCornellScene() *Scene {
	center := cornellSize / 2
	camera := renderer.NewCamera(
		core.NewVec3(center, center, -8),
		core.NewVec3(center, center, 0),
		core.NewVec3(0, 1, 0),
	)

	s := NewScene(camera, RenderConfig{
		Width:       400,
		Height:      400,
		HFovDegrees: 40,
	})
	s.MaxDepth = 4

	white := material.NewSolidPhong(core.NewVec3(0.73, 0.73, 0.73), 0.05, 0.9, 0.5, 10)
	red := material.NewSolidPhong(core.NewVec3(0.65, 0.05, 0.05), 0.05, 0.9, 0.5, 10)
	green := material.NewSolidPhong(core.NewVec3(0.12, 0.45, 0.15), 0.05, 0.9, 0.5, 10)
	mirror := material.NewSolidPhong(core.NewVec3(0.9, 0.9, 0.9), 0.9, 0.1, 0.1, 500)
	matte := material.NewSolidPhong(core.NewVec3(0.9, 0.8, 0.3), 0.1, 0.9, 0.6, 20)

	s.Shapes = append(s.Shapes,
		geometry.NewPlane(core.NewVec3(0, 1, 0), 0, white),             // floor
		geometry.NewPlane(core.NewVec3(0, -1, 0), -cornellSize, white), // ceiling
		geometry.NewPlane(core.NewVec3(0, 0, -1), -cornellSize, white), // back wall
		geometry.NewPlane(core.NewVec3(1, 0, 0), 0, red),               // left wall
		geometry.NewPlane(core.NewVec3(-1, 0, 0), -cornellSize, green), // right wall
		newSphere(core.NewVec3(1.85, 0.9, 3.7), 0.9, mirror),
		newSphere(core.NewVec3(3.8, 0.8, 1.9), 0.8, matte),
	)

	s.AddPointLight(core.NewVec3(center, cornellSize-0.3, center), core.NewVec3(1, 1, 1))

	return s
}
