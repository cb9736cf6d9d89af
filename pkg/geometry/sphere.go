package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/material"
)

// ErrInvalidRadius is returned when a sphere is created with a radius <= 0
var ErrInvalidRadius = errors.New("sphere radius must be positive")

// Sphere represents a sphere shape
type Sphere struct {
	Center  core.Vec3
	Radius  float64
	Shading *material.Phong
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, shading *material.Phong) (*Sphere, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidRadius, radius)
	}
	return &Sphere{
		Center:  center,
		Radius:  radius,
		Shading: shading,
	}, nil
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic a·t² + 2·halfB·t + c = 0
	a := ray.Direction.LengthSquared()
	halfB := ray.Direction.Dot(oc)
	c := oc.LengthSquared() - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return nil, false
	}

	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if !inRange(root, tMin, tMax) {
		root = (-halfB + sqrtD) / a
		if !inRange(root, tMin, tMax) {
			return nil, false
		}
	}

	point := ray.At(root)
	outwardNormal := point.Subtract(s.Center).Divide(s.Radius)

	hitRecord := &HitRecord{
		Ray:     ray,
		T:       root,
		Point:   point,
		Shading: s.Shading,
		UV:      sphereUV(outwardNormal),
	}
	hitRecord.SetFaceNormal(ray, outwardNormal)

	return hitRecord, true
}

// GetShading returns the sphere's shading parameters
func (s *Sphere) GetShading() *material.Phong {
	return s.Shading
}

// SurfaceUV maps a point on the sphere to texture coordinates
func (s *Sphere) SurfaceUV(point core.Vec3) core.Vec2 {
	return sphereUV(point.Subtract(s.Center).Divide(s.Radius))
}

// sphereUV maps an outward unit normal to (u, v), with v = 0 at the north pole
func sphereUV(n core.Vec3) core.Vec2 {
	y := max(-1, min(1, n.Y))
	u := math.Atan2(n.X, n.Z)/(2*math.Pi) + 0.5
	v := 1 - (math.Asin(y)/math.Pi + 0.5)
	return core.NewVec2(u, v).Wrap()
}
