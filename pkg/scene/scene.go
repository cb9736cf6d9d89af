package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/integrator"
	"github.com/df07/go-phong-raytracer/pkg/lights"
	"github.com/df07/go-phong-raytracer/pkg/material"
	"github.com/df07/go-phong-raytracer/pkg/renderer"
)

const (
	// FirstHitEpsilon is the lower bound for primary and reflected ray hits
	FirstHitEpsilon = 1e-5
	// DefaultMaxDepth is the reflection depth used when a scene sets none
	DefaultMaxDepth = 3
	// MaxRecursionDepth bounds the reflection depth a scene may request
	MaxRecursionDepth = 8
)

// ErrInvalidScene is returned by Validate for scenes that cannot be rendered
var ErrInvalidScene = errors.New("invalid scene")

// Scene contains all the elements needed for rendering. A scene must not be
// modified while a render is in progress.
type Scene struct {
	Camera       renderer.Camera
	RenderConfig RenderConfig
	Shapes       []geometry.Shape      // Objects in the scene
	Lights       []lights.PointLight   // Lights in the scene
	MaxDepth     int                   // Maximum reflection depth
	Background   core.Vec3             // Color of rays that hit nothing
	Integrator   integrator.Integrator // Defaults to Phong when nil
}

// RenderConfig contains the default image settings for a scene
type RenderConfig struct {
	Width       int     // Image width
	Height      int     // Image height
	HFovDegrees float64 // Horizontal field of view
}

// HFov returns the horizontal field of view in radians
func (rc RenderConfig) HFov() float64 {
	return rc.HFovDegrees * math.Pi / 180
}

// NewScene creates an empty scene with default depth and a black background
func NewScene(camera renderer.Camera, config RenderConfig) *Scene {
	return &Scene{
		Camera:       camera,
		RenderConfig: config,
		Shapes:       make([]geometry.Shape, 0),
		Lights:       make([]lights.PointLight, 0),
		MaxDepth:     DefaultMaxDepth,
	}
}

// FirstHit returns the nearest intersection along the ray, narrowing the
// search interval as closer hits are found
func (s *Scene) FirstHit(ray core.Ray) (*geometry.HitRecord, bool) {
	var closestHit *geometry.HitRecord
	closestSoFar := math.Inf(1)

	for _, shape := range s.Shapes {
		if hit, isHit := shape.Hit(ray, FirstHitEpsilon, closestSoFar); isHit {
			closestHit = hit
			closestSoFar = hit.T
		}
	}

	return closestHit, closestHit != nil
}

// IsFreePath reports whether no shape intersects the ray within (tMin, tMax)
func (s *Scene) IsFreePath(ray core.Ray, tMin, tMax float64) bool {
	for _, shape := range s.Shapes {
		if _, isHit := shape.Hit(ray, tMin, tMax); isHit {
			return false
		}
	}
	return true
}

// Trace returns the clamped linear color seen along a ray at the given depth
func (s *Scene) Trace(ray core.Ray, depth int) core.Vec3 {
	return s.getIntegrator().RayColor(ray, s, depth)
}

func (s *Scene) getIntegrator() integrator.Integrator {
	if s.Integrator == nil {
		return integrator.NewPhongIntegrator()
	}
	return s.Integrator
}

// GetLights returns the scene's point lights
func (s *Scene) GetLights() []lights.PointLight {
	return s.Lights
}

// GetMaxDepth returns the maximum reflection depth
func (s *Scene) GetMaxDepth() int {
	return s.MaxDepth
}

// GetBackground returns the color of rays that escape the scene
func (s *Scene) GetBackground() core.Vec3 {
	return s.Background
}

// AddSphere adds a sphere to the scene
func (s *Scene) AddSphere(center core.Vec3, radius float64, shading *material.Phong) error {
	sphere, err := geometry.NewSphere(center, radius, shading)
	if err != nil {
		return err
	}
	s.Shapes = append(s.Shapes, sphere)
	return nil
}

// AddPlane adds an infinite plane n·p = distance to the scene
func (s *Scene) AddPlane(normal core.Vec3, distance float64, shading *material.Phong) {
	s.Shapes = append(s.Shapes, geometry.NewPlane(normal, distance, shading))
}

// AddPointLight adds a point light to the scene
func (s *Scene) AddPointLight(position, color core.Vec3) {
	s.Lights = append(s.Lights, lights.NewPointLight(position, color))
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	count := 0
	for _, shape := range s.Shapes {
		switch obj := shape.(type) {
		case *geometry.TriangleMesh:
			// Triangle meshes contain multiple triangles
			count += obj.GetTriangleCount()
		default:
			count++
		}
	}
	return count
}

// Validate checks everything a render relies on, so that invalid data is
// reported before the first ray is traced
func (s *Scene) Validate() error {
	if s.MaxDepth < 0 || s.MaxDepth > MaxRecursionDepth {
		return fmt.Errorf("%w: max depth %d outside [0, %d]", ErrInvalidScene, s.MaxDepth, MaxRecursionDepth)
	}
	if err := s.Camera.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	if !s.Background.IsFinite() {
		return fmt.Errorf("%w: background %v is not finite", ErrInvalidScene, s.Background)
	}

	for i, shape := range s.Shapes {
		if sphere, ok := shape.(*geometry.Sphere); ok && !(sphere.Radius > 0) {
			return fmt.Errorf("%w: shape %d: %w", ErrInvalidScene, i, geometry.ErrInvalidRadius)
		}
		if shading := shape.GetShading(); shading != nil {
			if err := shading.Validate(); err != nil {
				return fmt.Errorf("%w: shape %d: %w", ErrInvalidScene, i, err)
			}
		}
	}

	for i, light := range s.Lights {
		if !light.Position.IsFinite() || !light.Color.IsFinite() {
			return fmt.Errorf("%w: light %d is not finite", ErrInvalidScene, i)
		}
	}

	return nil
}

// NewRenderer validates the scene and creates a renderer with the given
// image settings. Zero width, height or field of view fall back to the
// scene's RenderConfig.
func (s *Scene) NewRenderer(config RenderConfig, options renderer.Options) (*renderer.Renderer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	if config.Width == 0 {
		config.Width = s.RenderConfig.Width
	}
	if config.Height == 0 {
		config.Height = s.RenderConfig.Height
	}
	if config.HFovDegrees == 0 {
		config.HFovDegrees = s.RenderConfig.HFovDegrees
	}

	return renderer.NewRenderer(s, s.Camera, config.Width, config.Height, config.HFov(), options)
}
