package scene

import (
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/material"
	"github.com/df07/go-phong-raytracer/pkg/renderer"
)

// NewTextureScene creates a textured globe next to a mirror ball inside a
// three-walled room. A nil texture is replaced by a procedural checkerboard.
func NewTextureScene(texture *material.ImageTexture) *Scene {
	camera := renderer.NewCamera(
		core.NewVec3(0, 3, -5),
		core.NewVec3(0, 1, 0),
		core.NewVec3(0, 1, 0),
	)

	s := NewScene(camera, RenderConfig{
		Width:       640,
		Height:      360,
		HFovDegrees: 90,
	})
	s.MaxDepth = 3

	if texture == nil {
		texture = material.NewCheckerboardTexture(512, 256, 32,
			core.NewVec3(0.1, 0.3, 0.8), // Ocean blue
			core.NewVec3(0.2, 0.6, 0.2), // Land green
		)
	}

	mirror := material.NewSolidPhong(core.NewVec3(1, 1, 1), 0.96, 0.002, 0.01, 700)
	globe := material.NewPhong(texture, 0.2, 0.8, 0.02, 700)
	floor := material.NewSolidPhong(core.NewVec3(0, 0, 0), 0.1, 0.9, 0.02, 100)
	rightWall := material.NewSolidPhong(core.NewVec3(0.3, 0, 0), 0.1, 0.9, 0.1, 500)
	leftWall := material.NewSolidPhong(core.NewVec3(0, 0.3, 0), 0.1, 0.9, 0.1, 500)
	// UV debug pattern shows the plane's tiling
	backWall := material.NewPhong(material.NewUVDebugTexture(64, 64), 0.5, 0.5, 0.1, 500)

	s.Shapes = append(s.Shapes,
		newSphere(core.NewVec3(2, 1, 0), 1, mirror),
		newSphere(core.NewVec3(-2, 1, 0), 1, globe),
		geometry.NewPlane(core.NewVec3(0, 1, 0), 0, floor),
		geometry.NewPlane(core.NewVec3(-1, 0, 0), -4, rightWall),
		geometry.NewPlane(core.NewVec3(1, 0, 0), -4, leftWall),
		geometry.NewPlane(core.NewVec3(0, 0, -1), -4, backWall),
	)

	s.AddPointLight(core.NewVec3(3, 100, -30), core.NewVec3(1, 1, 1))

	return s
}
