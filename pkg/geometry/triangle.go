package geometry

import (
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/material"
)

// Triangle represents a single triangle defined by three vertices, with
// optional per-vertex normals and texture coordinates
type Triangle struct {
	A, B, C core.Vec3       // The three vertices
	Normals *[3]core.Vec3   // Optional vertex normals for smooth shading
	UVs     *[3]core.Vec2   // Optional vertex texture coordinates
	Shading *material.Phong // Shading when used on its own; meshes override it
	normal  core.Vec3       // Cached flat normal
}

// NewTriangle creates a new flat-shaded triangle from three vertices
func NewTriangle(a, b, c core.Vec3, shading *material.Phong) *Triangle {
	return NewTriangleWithAttributes(a, b, c, nil, nil, shading)
}

// NewTriangleWithAttributes creates a triangle with optional vertex normals and UVs
func NewTriangleWithAttributes(a, b, c core.Vec3, normals *[3]core.Vec3, uvs *[3]core.Vec2, shading *material.Phong) *Triangle {
	t := &Triangle{
		A:       a,
		B:       b,
		C:       c,
		Normals: normals,
		UVs:     uvs,
		Shading: shading,
	}
	t.computeNormal()
	return t
}

// computeNormal caches the flat face normal. A degenerate triangle gets a
// non-finite normal and never reports a hit.
func (t *Triangle) computeNormal() {
	edge1 := t.B.Subtract(t.A)
	edge2 := t.C.Subtract(t.A)
	t.normal = edge1.Cross(edge2).Unit()
}

// Hit tests if a ray intersects with the triangle
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	tHit, ok := t.intersect(ray, tMin, tMax)
	if !ok {
		return nil, false
	}
	return t.hitRecord(ray, tHit, t.Shading), true
}

// GetShading returns the triangle's own shading parameters
func (t *Triangle) GetShading() *material.Phong {
	return t.Shading
}

// GetNormal returns the flat face normal
func (t *Triangle) GetNormal() core.Vec3 {
	return t.normal
}

// intersect intersects the triangle's plane and then checks that the hit
// lies on the inner side of all three edges
func (t *Triangle) intersect(ray core.Ray, tMin, tMax float64) (float64, bool) {
	tHit, ok := intersectPlane(ray, t.normal, t.A.Dot(t.normal), tMin, tMax)
	if !ok {
		return 0, false
	}

	p := ray.At(tHit)
	if t.B.Subtract(t.A).Cross(p.Subtract(t.A)).Dot(t.normal) < 0 ||
		t.C.Subtract(t.B).Cross(p.Subtract(t.B)).Dot(t.normal) < 0 ||
		t.A.Subtract(t.C).Cross(p.Subtract(t.C)).Dot(t.normal) < 0 {
		return 0, false
	}
	return tHit, true
}

// hitRecord builds the record for a confirmed intersection at tHit
func (t *Triangle) hitRecord(ray core.Ray, tHit float64, shading *material.Phong) *HitRecord {
	point := ray.At(tHit)
	u, v := t.Barycentric(point)

	hitRecord := &HitRecord{
		Ray:     ray,
		T:       tHit,
		Point:   point,
		Shading: shading,
		UV:      t.uvAt(u, v),
	}
	hitRecord.SetFaceNormal(ray, t.normalAt(u, v))
	return hitRecord
}

// Barycentric returns the weights (u, v) of vertices A and B for a point in
// the triangle's plane; C has weight 1-u-v. Solved from the 2x2 system over
// the edges AB and AC with Cramer's rule.
func (t *Triangle) Barycentric(point core.Vec3) (float64, float64) {
	ab := t.B.Subtract(t.A)
	ac := t.C.Subtract(t.A)
	ap := point.Subtract(t.A)

	abab := ab.LengthSquared()
	acac := ac.LengthSquared()
	abac := ab.Dot(ac)
	apab := ap.Dot(ab)
	apac := ap.Dot(ac)

	den := abab*acac - abac*abac
	wB := (acac*apab - abac*apac) / den
	wC := (abab*apac - abac*apab) / den
	return 1 - wB - wC, wB
}

// SurfaceUV returns the texture coordinate of a point on the triangle
func (t *Triangle) SurfaceUV(point core.Vec3) core.Vec2 {
	return t.uvAt(t.Barycentric(point))
}

func (t *Triangle) normalAt(u, v float64) core.Vec3 {
	if t.Normals == nil {
		return t.normal
	}
	w := 1 - u - v
	n := t.Normals[0].Multiply(u).
		Add(t.Normals[1].Multiply(v)).
		Add(t.Normals[2].Multiply(w))
	n.Normalize()
	if !n.IsFinite() {
		// Opposing vertex normals can cancel out
		return t.normal
	}
	return n
}

func (t *Triangle) uvAt(u, v float64) core.Vec2 {
	if t.UVs == nil {
		return core.NewVec2(u, v).Wrap()
	}
	w := 1 - u - v
	return t.UVs[0].Multiply(u).
		Add(t.UVs[1].Multiply(v)).
		Add(t.UVs[2].Multiply(w)).
		Wrap()
}
