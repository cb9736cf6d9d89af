package scene

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/material"
	"github.com/df07/go-phong-raytracer/pkg/renderer"
)

func testCamera() renderer.Camera {
	return renderer.NewCamera(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), core.NewVec3(0, 1, 0))
}

func gray() *material.Phong {
	return material.NewSolidPhong(core.NewVec3(0.5, 0.5, 0.5), 0.2, 0.8, 0.5, 10)
}

func TestScene_FirstHitReturnsNearest(t *testing.T) {
	s := NewScene(testCamera(), RenderConfig{Width: 4, Height: 4, HFovDegrees: 90})
	far := newSphere(core.NewVec3(0, 0, 10), 1, gray())
	near := newSphere(core.NewVec3(0, 0, 5), 1, gray())
	s.Shapes = append(s.Shapes, far, near)

	hit, isHit := s.FirstHit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1)))
	if !isHit {
		t.Fatal("Expected a hit")
	}
	if math.Abs(hit.T-4) > 1e-9 {
		t.Errorf("Expected nearest hit at t=4, got %f", hit.T)
	}

	if _, isHit := s.FirstHit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))); isHit {
		t.Error("Expected no hit looking away from the spheres")
	}
}

func TestScene_FirstHitIgnoresSelfIntersection(t *testing.T) {
	s := NewScene(testCamera(), RenderConfig{})
	s.AddPlane(core.NewVec3(0, 1, 0), 0, gray())

	// Starting on the plane, the surface itself must not count as a hit
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 1))
	if _, isHit := s.FirstHit(ray); isHit {
		t.Error("Expected no hit for a ray leaving the plane surface")
	}
}

func TestScene_IsFreePath(t *testing.T) {
	s := NewScene(testCamera(), RenderConfig{})
	if err := s.AddSphere(core.NewVec3(0, 0, 5), 1, gray()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	tests := []struct {
		name       string
		tMin, tMax float64
		expected   bool
	}{
		{"before sphere", 0, 3, true},
		{"through sphere", 0, 10, false},
		{"beyond sphere", 7, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.IsFreePath(ray, tt.tMin, tt.tMax); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestScene_TraceMissReturnsBackground(t *testing.T) {
	s := NewScene(testCamera(), RenderConfig{})
	s.Background = core.NewVec3(0.2, 0.3, 0.4)

	got := s.Trace(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1)), 0)
	if got != s.Background {
		t.Errorf("Expected %v, got %v", s.Background, got)
	}
}

func TestScene_AddSphereRejectsBadRadius(t *testing.T) {
	s := NewScene(testCamera(), RenderConfig{})
	err := s.AddSphere(core.NewVec3(0, 0, 0), -1, gray())
	if !errors.Is(err, geometry.ErrInvalidRadius) {
		t.Errorf("Expected ErrInvalidRadius, got %v", err)
	}
	if len(s.Shapes) != 0 {
		t.Errorf("Expected no shapes added, got %d", len(s.Shapes))
	}
}

func TestScene_GetPrimitiveCount(t *testing.T) {
	s := NewScene(testCamera(), RenderConfig{})
	s.AddPlane(core.NewVec3(0, 1, 0), 0, gray())
	mesh, err := geometry.NewTriangleMesh(newPyramidMeshData(), gray(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	s.Shapes = append(s.Shapes, mesh)

	if got := s.GetPrimitiveCount(); got != 7 {
		t.Errorf("Expected 7 primitives, got %d", got)
	}
}

func TestScene_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(s *Scene)
	}{
		{"negative depth", func(s *Scene) { s.MaxDepth = -1 }},
		{"depth too large", func(s *Scene) { s.MaxDepth = MaxRecursionDepth + 1 }},
		{"degenerate camera", func(s *Scene) { s.Camera = renderer.NewCamera(core.Vec3{}, core.Vec3{}, core.NewVec3(0, 1, 0)) }},
		{"non-finite background", func(s *Scene) { s.Background = core.NewVec3(math.NaN(), 0, 0) }},
		{"zero radius sphere", func(s *Scene) { s.Shapes = append(s.Shapes, newSphere(core.Vec3{}, 0, gray())) }},
		{"bad shading", func(s *Scene) {
			s.AddPlane(core.NewVec3(0, 1, 0), 0, material.NewSolidPhong(core.NewVec3(1, 1, 1), 2, 0.5, 0.5, 1))
		}},
		{"non-finite light", func(s *Scene) { s.AddPointLight(core.NewVec3(math.Inf(1), 0, 0), core.NewVec3(1, 1, 1)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScene(testCamera(), RenderConfig{})
			tt.modify(s)
			if err := s.Validate(); !errors.Is(err, ErrInvalidScene) {
				t.Errorf("Expected ErrInvalidScene, got %v", err)
			}
		})
	}

	s := NewScene(testCamera(), RenderConfig{})
	s.AddPlane(core.NewVec3(0, 1, 0), 0, nil)
	if err := s.Validate(); err != nil {
		t.Errorf("Expected scene with unshaded plane to be valid, got %v", err)
	}
}

func TestBuiltInScenes_Render(t *testing.T) {
	meshScene, err := NewTriangleMeshScene(nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	tests := []struct {
		name  string
		scene *Scene
	}{
		{"default", NewDefaultScene()},
		{"earth", NewTextureScene(nil)},
		{"mesh", meshScene},
		{"cornell", NewCornellScene()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.scene.Validate(); err != nil {
				t.Fatalf("Expected valid scene, got %v", err)
			}

			r, err := tt.scene.NewRenderer(RenderConfig{Width: 16, Height: 9}, renderer.Options{Workers: 2})
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			pixels := r.Render()
			if len(pixels) != 16*9*renderer.BytesPerPixel {
				t.Fatalf("Expected %d bytes, got %d", 16*9*renderer.BytesPerPixel, len(pixels))
			}

			lit := false
			for _, b := range pixels {
				if b != 0 {
					lit = true
					break
				}
			}
			if !lit {
				t.Error("Expected some non-black pixels")
			}
		})
	}
}

func TestScene_NewRendererUsesSceneDefaults(t *testing.T) {
	s := NewDefaultScene()
	r, err := s.NewRenderer(RenderConfig{Width: 32}, renderer.Options{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.Width() != 32 || r.Height() != s.RenderConfig.Height {
		t.Errorf("Expected 32x%d, got %dx%d", s.RenderConfig.Height, r.Width(), r.Height())
	}

	s.MaxDepth = MaxRecursionDepth + 1
	if _, err := s.NewRenderer(RenderConfig{}, renderer.Options{}); !errors.Is(err, ErrInvalidScene) {
		t.Errorf("Expected ErrInvalidScene, got %v", err)
	}
}

// Rendering the same scene must give identical bytes for any worker count
func TestScene_RenderIsDeterministic(t *testing.T) {
	s := NewScene(
		renderer.NewCamera(core.NewVec3(0, 2, -4), core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0)),
		RenderConfig{Width: 24, Height: 16, HFovDegrees: 70},
	)
	s.MaxDepth = 1
	if err := s.AddSphere(core.NewVec3(0, 1, 0), 1, material.NewSolidPhong(core.NewVec3(0.9, 0.2, 0.1), 0.5, 0.5, 1, 8)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	s.AddPlane(core.NewVec3(0, 1, 0), 0, material.NewSolidPhong(core.NewVec3(0.2, 0.8, 0.2), 0.3, 0.7, 1, 4))
	s.AddPointLight(core.NewVec3(3, 10, -3), core.NewVec3(1, 1, 1))

	render := func(workers int) []byte {
		r, err := s.NewRenderer(RenderConfig{}, renderer.Options{Workers: workers})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		return r.Render()
	}

	reference := render(1)
	for _, workers := range []int{1, 2, 4, 8} {
		for repeat := 0; repeat < 2; repeat++ {
			if got := render(workers); !bytes.Equal(got, reference) {
				t.Errorf("Expected identical output with %d workers (repeat %d)", workers, repeat)
			}
		}
	}
}
