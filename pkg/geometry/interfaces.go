package geometry

import (
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/material"
)

// Shape interface for objects that can be hit by rays.
// Hit must return the nearest intersection with tMin < t < tMax, or false.
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool)
	GetShading() *material.Phong // may be nil
}

// HitRecord contains information about a ray-object intersection.
// Records are produced per query and are not retained by shapes.
type HitRecord struct {
	Ray       core.Ray        // Incoming ray
	T         float64         // Parameter t along the ray
	Point     core.Vec3       // Point of intersection
	Normal    core.Vec3       // Unit surface normal, facing against the ray
	FrontFace bool            // Whether the ray hit the outward side
	Shading   *material.Phong // Shading of the hit shape, may be nil
	UV        core.Vec2       // Surface coordinate in [0, 1)
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// inRange reports whether t lies strictly inside (tMin, tMax)
func inRange(t, tMin, tMax float64) bool {
	return tMin < t && t < tMax
}
