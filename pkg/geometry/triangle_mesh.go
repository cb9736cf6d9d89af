package geometry

import (
	"errors"
	"fmt"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/material"
)

// ErrInvalidMesh is returned when mesh data references missing vertices,
// normals or texture coordinates
var ErrInvalidMesh = errors.New("invalid mesh data")

// MeshFace indexes one triangle corner-wise into MeshData. Normal and UV
// indices are -1 when the face has none.
type MeshFace struct {
	Vertices [3]int
	Normals  [3]int
	UVs      [3]int
}

// MeshData is indexed triangle data as produced by the mesh loaders
type MeshData struct {
	Vertices []core.Vec3
	Normals  []core.Vec3
	UVs      []core.Vec2
	Faces    []MeshFace
}

// NewFace creates a face with only vertex indices
func NewFace(a, b, c int) MeshFace {
	return MeshFace{
		Vertices: [3]int{a, b, c},
		Normals:  [3]int{-1, -1, -1},
		UVs:      [3]int{-1, -1, -1},
	}
}

// TriangleMesh is an ordered list of triangles sharing one shading record.
// Intersection is a linear scan over all triangles.
type TriangleMesh struct {
	Triangles []*Triangle
	Shading   *material.Phong
}

// NewTriangleMesh creates a mesh from loaded triangle data. The transform
// may be nil.
func NewTriangleMesh(data *MeshData, shading *material.Phong, transform *MeshTransform) (*TriangleMesh, error) {
	var tf *transformer
	if transform != nil {
		t := newTransformer(*transform)
		tf = &t
	}

	triangles := make([]*Triangle, 0, len(data.Faces))
	for i, face := range data.Faces {
		var vertices [3]core.Vec3
		for k, idx := range face.Vertices {
			if idx < 0 || idx >= len(data.Vertices) {
				return nil, fmt.Errorf("%w: face %d vertex index %d out of range (%d vertices)", ErrInvalidMesh, i, idx, len(data.Vertices))
			}
			vertices[k] = data.Vertices[idx]
			if tf != nil {
				vertices[k] = tf.point(vertices[k])
			}
		}

		normals, err := faceNormals(data, face, i, tf)
		if err != nil {
			return nil, err
		}
		uvs, err := faceUVs(data, face, i)
		if err != nil {
			return nil, err
		}

		triangles = append(triangles, NewTriangleWithAttributes(vertices[0], vertices[1], vertices[2], normals, uvs, nil))
	}

	return &TriangleMesh{
		Triangles: triangles,
		Shading:   shading,
	}, nil
}

// NewTriangleMeshFromTriangles wraps existing triangles in a mesh
func NewTriangleMeshFromTriangles(triangles []*Triangle, shading *material.Phong) *TriangleMesh {
	return &TriangleMesh{
		Triangles: triangles,
		Shading:   shading,
	}
}

func faceNormals(data *MeshData, face MeshFace, i int, tf *transformer) (*[3]core.Vec3, error) {
	if face.Normals[0] < 0 {
		return nil, nil
	}
	var normals [3]core.Vec3
	for k, idx := range face.Normals {
		if idx < 0 || idx >= len(data.Normals) {
			return nil, fmt.Errorf("%w: face %d normal index %d out of range (%d normals)", ErrInvalidMesh, i, idx, len(data.Normals))
		}
		normals[k] = data.Normals[idx]
		if tf != nil {
			normals[k] = tf.normal(normals[k])
		}
	}
	return &normals, nil
}

func faceUVs(data *MeshData, face MeshFace, i int) (*[3]core.Vec2, error) {
	if face.UVs[0] < 0 {
		return nil, nil
	}
	var uvs [3]core.Vec2
	for k, idx := range face.UVs {
		if idx < 0 || idx >= len(data.UVs) {
			return nil, fmt.Errorf("%w: face %d uv index %d out of range (%d uvs)", ErrInvalidMesh, i, idx, len(data.UVs))
		}
		uvs[k] = data.UVs[idx]
	}
	return &uvs, nil
}

// Hit returns the closest triangle hit, narrowing tMax as hits are found
func (tm *TriangleMesh) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	closest := tMax
	var winner *Triangle
	for _, triangle := range tm.Triangles {
		if t, ok := triangle.intersect(ray, tMin, closest); ok {
			closest = t
			winner = triangle
		}
	}
	if winner == nil {
		return nil, false
	}
	return winner.hitRecord(ray, closest, tm.Shading), true
}

// GetShading returns the mesh's shared shading parameters
func (tm *TriangleMesh) GetShading() *material.Phong {
	return tm.Shading
}

// GetTriangleCount returns the number of triangles in this mesh
func (tm *TriangleMesh) GetTriangleCount() int {
	return len(tm.Triangles)
}
