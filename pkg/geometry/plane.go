package geometry

import (
	"math"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/material"
)

// Plane represents the infinite plane Normal·p = Distance·|Normal|
type Plane struct {
	Normal   core.Vec3 // Unit normal
	Distance float64   // Signed distance from the origin along Normal
	Shading  *material.Phong
}

// NewPlane creates a new plane. The normal is normalized; the plane is the
// same set of points as Normal·p = Distance·|Normal| for the given normal.
func NewPlane(normal core.Vec3, distance float64, shading *material.Phong) *Plane {
	return &Plane{
		Normal:   normal.Unit(),
		Distance: distance,
		Shading:  shading,
	}
}

// NewPlaneThroughPoint creates a plane with the given normal passing through point
func NewPlaneThroughPoint(point, normal core.Vec3, shading *material.Phong) *Plane {
	unit := normal.Unit()
	return &Plane{
		Normal:   unit,
		Distance: point.Dot(unit),
		Shading:  shading,
	}
}

// Hit tests if a ray intersects with the plane
func (p *Plane) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	t, ok := intersectPlane(ray, p.Normal, p.Distance*p.Normal.Length(), tMin, tMax)
	if !ok {
		return nil, false
	}

	point := ray.At(t)
	hitRecord := &HitRecord{
		Ray:     ray,
		T:       t,
		Point:   point,
		Shading: p.Shading,
		UV:      p.SurfaceUV(point),
	}
	hitRecord.SetFaceNormal(ray, p.Normal)

	return hitRecord, true
}

// GetShading returns the plane's shading parameters
func (p *Plane) GetShading() *material.Phong {
	return p.Shading
}

// SurfaceUV projects the point onto a tangent basis of the plane and wraps
// both coordinates into [0, 1). The basis comes from a cross product with a
// fixed world axis, so texture orientation follows the normal direction.
func (p *Plane) SurfaceUV(point core.Vec3) core.Vec2 {
	e1, e2 := tangentBasis(p.Normal)
	return core.NewVec2(point.Dot(e1), point.Dot(e2)).Wrap()
}

// intersectPlane solves normal·(o + t·d) = offset for t. A ray parallel to
// the plane has no unique solution and misses.
func intersectPlane(ray core.Ray, normal core.Vec3, offset, tMin, tMax float64) (float64, bool) {
	denominator := ray.Direction.Dot(normal)
	if !(math.Abs(denominator) > core.Epsilon) {
		return 0, false
	}

	t := (offset - ray.Origin.Dot(normal)) / denominator
	if !inRange(t, tMin, tMax) {
		return 0, false
	}
	return t, true
}

// tangentBasis returns two unit vectors spanning the plane with the given normal
func tangentBasis(normal core.Vec3) (core.Vec3, core.Vec3) {
	e1 := normal.Cross(core.NewVec3(1, 0, 0))
	if e1.IsNearZero() {
		e1 = normal.Cross(core.NewVec3(0, 0, 1))
	}
	e1.Normalize()
	e2 := normal.Cross(e1)
	return e1, e2
}
