package integrator

import (
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/lights"
)

// World is the read-only view of a scene that an integrator shades against.
// Defined here so the scene package can delegate tracing without an import cycle.
type World interface {
	FirstHit(ray core.Ray) (*geometry.HitRecord, bool)
	IsFreePath(ray core.Ray, tMin, tMax float64) bool
	GetLights() []lights.PointLight
	GetMaxDepth() int
	GetBackground() core.Vec3
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor computes the color seen along a ray at the given recursion depth
	RayColor(ray core.Ray, world World, depth int) core.Vec3
}
