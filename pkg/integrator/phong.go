package integrator

import (
	"math"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/lights"
	"github.com/df07/go-phong-raytracer/pkg/material"
)

const (
	// AmbientWeight scales the summed light color for the ambient term
	AmbientWeight = 0.1
	// ShadowRayOffset lifts shadow ray origins off the surface
	ShadowRayOffset = 0.001
	// ReflectionRayOffset lifts reflected ray origins off the surface
	ReflectionRayOffset = 1e-4
)

// PhongIntegrator implements recursive Whitted-style tracing with Phong
// local illumination and mirror reflection
type PhongIntegrator struct{}

// NewPhongIntegrator creates a new Phong integrator
func NewPhongIntegrator() *PhongIntegrator {
	return &PhongIntegrator{}
}

// RayColor computes the color for a single ray. Recursion stops once depth
// reaches the world's max depth.
func (pi *PhongIntegrator) RayColor(ray core.Ray, world World, depth int) core.Vec3 {
	hit, isHit := world.FirstHit(ray)
	if !isHit {
		return world.GetBackground()
	}

	// Shapes without shading absorb everything
	shading := hit.Shading
	if shading == nil {
		return core.Vec3{}
	}

	color := shading.ColorAt(hit.UV)
	sceneLights := world.GetLights()

	direct, lit := pi.directLighting(hit, shading, color, sceneLights, world)
	ambient := color.MultiplyVec(lights.TotalColor(sceneLights)).Multiply(AmbientWeight * shading.Ka)

	var reflected core.Vec3
	if depth < world.GetMaxDepth() {
		reflectedRay := core.NewRay(
			hit.Point.Add(hit.Normal.Multiply(ReflectionRayOffset)),
			ray.Direction.Reflect(hit.Normal),
		)
		weight := shading.Ks
		if !lit {
			// Shadowed points dim their reflection by the ambient coefficient too
			weight *= shading.Ka
		}
		reflected = pi.RayColor(reflectedRay, world, depth+1).Multiply(weight)
	}

	return core.Sum(direct, reflected, ambient).Clamp(0, 1)
}

// directLighting sums diffuse and specular contributions of every unoccluded
// light on the illuminated side of the surface. It also reports whether any
// light reached the point.
func (pi *PhongIntegrator) directLighting(hit *geometry.HitRecord, shading *material.Phong, color core.Vec3, sceneLights []lights.PointLight, world World) (core.Vec3, bool) {
	var total core.Vec3
	lit := false

	view := hit.Ray.Direction.Negate().Unit()
	shadowOrigin := hit.Point.Add(hit.Normal.Multiply(ShadowRayOffset))

	for _, light := range sceneLights {
		toLight, dist := light.DirectionFrom(hit.Point)
		cosTheta := hit.Normal.Dot(toLight)
		if cosTheta <= 0 {
			continue
		}
		if !world.IsFreePath(core.NewRay(shadowOrigin, toLight), 0, dist) {
			continue
		}
		lit = true

		diffuse := color.Multiply(shading.Kd * cosTheta)
		specAngle := math.Max(0, toLight.Negate().Reflect(hit.Normal).Dot(view))
		specular := shading.Ks * math.Pow(specAngle, shading.Alpha)

		total = total.Add(diffuse.Add(core.NewVec3(specular, specular, specular)).MultiplyVec(light.Color))
	}

	return total, lit
}
