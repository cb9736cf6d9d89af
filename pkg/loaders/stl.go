package loaders

import (
	"fmt"

	"github.com/fogleman/fauxgl"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
)

// LoadSTL loads an ASCII or binary STL file. STL carries positions only, so
// the resulting mesh is flat shaded.
func LoadSTL(filename string) (*geometry.MeshData, error) {
	mesh, err := fauxgl.LoadSTL(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load STL file: %w", err)
	}
	return fromFauxglMesh(mesh), nil
}

// fromFauxglMesh copies triangle soup into indexed mesh data
func fromFauxglMesh(mesh *fauxgl.Mesh) *geometry.MeshData {
	data := &geometry.MeshData{
		Vertices: make([]core.Vec3, 0, len(mesh.Triangles)*3),
		Faces:    make([]geometry.MeshFace, 0, len(mesh.Triangles)),
	}
	for _, t := range mesh.Triangles {
		base := len(data.Vertices)
		data.Vertices = append(data.Vertices,
			fromFauxglVector(t.V1.Position),
			fromFauxglVector(t.V2.Position),
			fromFauxglVector(t.V3.Position),
		)
		data.Faces = append(data.Faces, geometry.NewFace(base, base+1, base+2))
	}
	return data
}

func fromFauxglVector(v fauxgl.Vector) core.Vec3 {
	return core.NewVec3(v.X, v.Y, v.Z)
}
