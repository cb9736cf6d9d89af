package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/material"
	"github.com/df07/go-phong-raytracer/pkg/renderer"
)

// meshFitHeight is the size the mesh scene scales loaded models to
const meshFitHeight = 3.0

// NewTriangleMeshScene creates a scene showcasing a triangle mesh on a
// reflective floor. The mesh is scaled and moved to stand at the origin. A
// nil mesh is replaced by a procedural pyramid.
func NewTriangleMeshScene(data *geometry.MeshData) (*Scene, error) {
	camera := renderer.NewCamera(
		core.NewVec3(0, 5, -7), // Position camera to see the mesh
		core.NewVec3(0, 1, 0),  // Look at the center of the scene
		core.NewVec3(0, 1, 0),  // Standard up direction
	)

	s := NewScene(camera, RenderConfig{
		Width:       640,
		Height:      360,
		HFovDegrees: 90,
	})
	s.MaxDepth = 1

	if data == nil {
		data = newPyramidMeshData()
	}

	diffuseGrey := material.NewSolidPhong(core.NewVec3(1, 1, 1), 0, 0.8, 0.2, 700)
	mesh, err := geometry.NewTriangleMesh(data, diffuseGrey, fitMeshTransform(data, meshFitHeight))
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh scene: %w", err)
	}

	floor := material.NewSolidPhong(core.NewVec3(1, 1, 1), 0.5, 0.5, 0.02, 500)
	s.Shapes = append(s.Shapes, mesh, geometry.NewPlane(core.NewVec3(0, 1, 0), 0, floor))

	s.AddPointLight(core.NewVec3(3, 100, -30), core.NewVec3(1, 1, 1))

	return s, nil
}

// fitMeshTransform scales mesh data so its largest extent equals size and
// moves it to rest on y = 0, centered on the Y axis
func fitMeshTransform(data *geometry.MeshData, size float64) *geometry.MeshTransform {
	if len(data.Vertices) == 0 {
		return nil
	}

	lo := data.Vertices[0]
	hi := data.Vertices[0]
	for _, v := range data.Vertices[1:] {
		lo = core.NewVec3(math.Min(lo.X, v.X), math.Min(lo.Y, v.Y), math.Min(lo.Z, v.Z))
		hi = core.NewVec3(math.Max(hi.X, v.X), math.Max(hi.Y, v.Y), math.Max(hi.Z, v.Z))
	}

	extent := hi.Subtract(lo)
	largest := math.Max(extent.X, math.Max(extent.Y, extent.Z))
	if !(largest > 0) {
		return nil
	}

	scale := size / largest
	return &geometry.MeshTransform{
		Scale: core.NewVec3(scale, scale, scale),
		Translation: core.NewVec3(
			-(lo.X+hi.X)/2*scale,
			-lo.Y*scale,
			-(lo.Z+hi.Z)/2*scale,
		),
	}
}

// newPyramidMeshData builds a closed square pyramid
func newPyramidMeshData() *geometry.MeshData {
	data := &geometry.MeshData{
		Vertices: []core.Vec3{
			core.NewVec3(-1, 0, -1),
			core.NewVec3(1, 0, -1),
			core.NewVec3(1, 0, 1),
			core.NewVec3(-1, 0, 1),
			core.NewVec3(0, 1.5, 0), // apex
		},
	}

	// Sides
	for i := 0; i < 4; i++ {
		data.Faces = append(data.Faces, geometry.NewFace(i, 4, (i+1)%4))
	}
	// Base
	data.Faces = append(data.Faces,
		geometry.NewFace(0, 1, 2),
		geometry.NewFace(0, 2, 3),
	)

	return data
}
