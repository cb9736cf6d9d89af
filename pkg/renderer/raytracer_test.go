package renderer

import (
	"bytes"
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

// MockScene returns a color derived from the ray direction
type MockScene struct {
	mu    sync.Mutex
	calls int
}

func (m *MockScene) Trace(ray core.Ray, depth int) core.Vec3 {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	d := ray.Direction.Unit()
	return core.NewVec3(d.X*0.5+0.5, d.Y*0.5+0.5, -d.Z)
}

// ConstantScene returns the same color for every ray
type ConstantScene struct {
	color core.Vec3
}

func (c ConstantScene) Trace(ray core.Ray, depth int) core.Vec3 {
	return c.color
}

func mustRenderer(t *testing.T, scene Scene, width, height int, options Options) *Renderer {
	t.Helper()
	r, err := NewRenderer(scene, defaultCamera(), width, height, math.Pi/2, options)
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}
	return r
}

func TestNewRenderer_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero", 0, 0},
		{"single column", 1, 10},
		{"single row", 10, 1},
		{"negative", -4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRenderer(&MockScene{}, defaultCamera(), tt.width, tt.height, math.Pi/2, Options{})
			if !errors.Is(err, ErrInvalidDimensions) {
				t.Errorf("Expected ErrInvalidDimensions, got %v", err)
			}
		})
	}
}

func TestNewRenderer_InvalidSetup(t *testing.T) {
	if _, err := NewRenderer(&MockScene{}, defaultCamera(), 4, 4, 0, Options{}); !errors.Is(err, ErrInvalidFieldOfView) {
		t.Errorf("Expected ErrInvalidFieldOfView, got %v", err)
	}
	if _, err := NewRenderer(&MockScene{}, defaultCamera(), 4, 4, math.NaN(), Options{}); !errors.Is(err, ErrInvalidFieldOfView) {
		t.Errorf("Expected ErrInvalidFieldOfView for NaN, got %v", err)
	}

	badCamera := NewCamera(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))
	if _, err := NewRenderer(&MockScene{}, badCamera, 4, 4, math.Pi/2, Options{}); !errors.Is(err, ErrInvalidCamera) {
		t.Errorf("Expected ErrInvalidCamera, got %v", err)
	}
}

func TestRenderer_BufferLayout(t *testing.T) {
	scene := &MockScene{}
	r := mustRenderer(t, scene, 7, 5, Options{Workers: 2})

	pixels := r.Render()
	if len(pixels) != 7*5*3 {
		t.Fatalf("Expected %d bytes, got %d", 7*5*3, len(pixels))
	}
	if scene.calls != 7*5 {
		t.Errorf("Expected one primary ray per pixel (%d), got %d", 7*5, scene.calls)
	}
}

func TestRenderer_ConstantColor(t *testing.T) {
	r := mustRenderer(t, ConstantScene{color: core.NewVec3(1, 0, 0.2)}, 3, 2, Options{})

	pixels := r.Render()
	for i := 0; i < len(pixels); i += 3 {
		if pixels[i] != 255 || pixels[i+1] != 0 || pixels[i+2] != 124 {
			t.Fatalf("Expected pixel (255, 0, 124), got (%d, %d, %d) at byte %d", pixels[i], pixels[i+1], pixels[i+2], i)
		}
	}
}

func TestRenderer_DeterministicAcrossWorkers(t *testing.T) {
	reference := mustRenderer(t, &MockScene{}, 16, 9, Options{Workers: 1}).Render()

	for _, workers := range []int{0, 2, 3, 8, 32} {
		got := mustRenderer(t, &MockScene{}, 16, 9, Options{Workers: workers}).Render()
		if !bytes.Equal(reference, got) {
			t.Errorf("Expected identical output with %d workers", workers)
		}
	}
}

func TestRenderer_RenderRowMatchesRender(t *testing.T) {
	r := mustRenderer(t, &MockScene{}, 6, 4, Options{Workers: 3})
	pixels := r.Render()

	stride := 6 * 3
	for row := 0; row < 4; row++ {
		got := r.RenderRow(row)
		if !bytes.Equal(got, pixels[row*stride:(row+1)*stride]) {
			t.Errorf("Row %d: expected RenderRow to match the full render", row)
		}
	}
}

func TestRenderer_TopRowLooksUp(t *testing.T) {
	// Green encodes the ray's vertical direction, so the top row is brightest
	r := mustRenderer(t, &MockScene{}, 3, 3, Options{Linear: true})
	pixels := r.Render()

	top := pixels[1*3+1]
	bottom := pixels[2*9+1*3+1]
	if top <= bottom {
		t.Errorf("Expected top row green %d > bottom row green %d", top, bottom)
	}
}

func TestRenderer_Progress(t *testing.T) {
	seen := make(map[int]bool)
	r := mustRenderer(t, &MockScene{}, 4, 6, Options{
		Workers: 3,
		Progress: func(result RowResult) {
			if len(result.Pixels) != 4*3 {
				t.Errorf("Expected %d bytes per row, got %d", 4*3, len(result.Pixels))
			}
			seen[result.Row] = true
		},
	})

	_, stats, err := r.RenderContext(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(seen) != 6 {
		t.Errorf("Expected progress for 6 rows, got %d", len(seen))
	}
	if stats.TotalPixels != 24 || stats.Workers != 3 {
		t.Errorf("Expected 24 pixels on 3 workers, got %+v", stats)
	}
}

func TestRenderer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := mustRenderer(t, &MockScene{}, 8, 8, Options{Workers: 2})
	pixels, _, err := r.RenderContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if pixels != nil {
		t.Errorf("Expected no pixels from a cancelled render, got %d bytes", len(pixels))
	}
}

func TestColorToBytes(t *testing.T) {
	tests := []struct {
		name     string
		color    core.Vec3
		linear   bool
		expected [3]byte
	}{
		{"black", core.NewVec3(0, 0, 0), false, [3]byte{0, 0, 0}},
		{"white", core.NewVec3(1, 1, 1), false, [3]byte{255, 255, 255}},
		{"linear mid", core.NewVec3(0.5, 0.2, 0.001), true, [3]byte{128, 51, 0}},
		{"srgb curve", core.NewVec3(0.2, 0.001, 0), false, [3]byte{124, 3, 0}},
		{"clamped", core.NewVec3(-1, 2, 0), true, [3]byte{0, 255, 0}},
		{"nan is black", core.NewVec3(math.NaN(), math.Inf(1), 0), true, [3]byte{0, 255, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := ColorToBytes(tt.color, tt.linear)
			if got := [3]byte{r, g, b}; got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
