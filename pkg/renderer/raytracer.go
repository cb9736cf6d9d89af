package renderer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

// ErrInvalidDimensions is returned for images narrower or shorter than two
// pixels, where the viewport step would divide by zero
var ErrInvalidDimensions = errors.New("invalid image dimensions")

// ErrInvalidFieldOfView is returned for a field of view outside (0, pi)
var ErrInvalidFieldOfView = errors.New("invalid field of view")

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// Scene interface to avoid circular imports
type Scene interface {
	// Trace returns the clamped linear color seen along a ray at a recursion depth
	Trace(ray core.Ray, depth int) core.Vec3
}

// Options controls how a render is executed. None of them change the output
// except Linear.
type Options struct {
	Workers  int             // Number of row workers; 0 uses one per CPU
	Linear   bool            // Skip the sRGB transfer function when encoding bytes
	Logger   core.Logger     // Defaults to a no-op logger
	Progress func(RowResult) // Called once per finished row, in completion order
}

// Renderer turns a scene and camera into a row-major RGB byte buffer
type Renderer struct {
	scene       Scene
	camera      Camera
	width       int
	height      int
	hFov        float64 // Horizontal field of view in radians
	options     Options
	rowRenderer *RowRenderer
}

// NewRenderer validates the image setup and creates a renderer. Nothing is
// traced until Render is called.
func NewRenderer(scene Scene, camera Camera, width, height int, hFov float64, options Options) (*Renderer, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("%w: %dx%d, need at least 2x2", ErrInvalidDimensions, width, height)
	}
	if !(hFov > 0 && hFov < math.Pi) {
		return nil, fmt.Errorf("%w: %g radians", ErrInvalidFieldOfView, hFov)
	}
	if err := camera.Validate(); err != nil {
		return nil, err
	}
	if options.Logger == nil {
		options.Logger = core.NopLogger{}
	}

	view := newViewport(camera, width, height, hFov)
	return &Renderer{
		scene:       scene,
		camera:      camera,
		width:       width,
		height:      height,
		hFov:        hFov,
		options:     options,
		rowRenderer: newRowRenderer(scene, view, width, options.Linear),
	}, nil
}

// Width returns the image width in pixels
func (r *Renderer) Width() int {
	return r.width
}

// Height returns the image height in pixels
func (r *Renderer) Height() int {
	return r.height
}

// PrimaryRay returns the camera ray through pixel (col, row)
func (r *Renderer) PrimaryRay(col, row int) core.Ray {
	return r.rowRenderer.view.GetRay(col, row)
}

// Render traces every pixel and returns width*height*3 bytes, row-major from
// the top-left corner. The result is identical for any worker count.
func (r *Renderer) Render() []byte {
	// Background context never cancels
	pixels, _, _ := r.RenderContext(context.Background())
	return pixels
}

// RenderRow traces a single row and returns its width*3 bytes
func (r *Renderer) RenderRow(row int) []byte {
	pixels := make([]byte, r.width*BytesPerPixel)
	r.rowRenderer.RenderRow(row, pixels)
	return pixels
}

// RenderContext renders like Render but stops dispatching rows once ctx is
// done. A cancelled render returns no pixels.
func (r *Renderer) RenderContext(ctx context.Context) ([]byte, RenderStats, error) {
	startTime := time.Now()
	stride := r.width * BytesPerPixel
	pixels := make([]byte, stride*r.height)

	pool := NewWorkerPool(r.rowRenderer, r.height, r.options.Workers)
	r.options.Logger.Printf("Rendering %dx%d using %d workers...\n", r.width, r.height, pool.GetNumWorkers())

	pool.Start(ctx)
	for row := 0; row < r.height; row++ {
		pool.SubmitTask(RowTask{
			Row:    row,
			Pixels: pixels[row*stride : (row+1)*stride],
		})
	}

	// Collect every result so the pool drains before Stop
	var firstErr error
	for i := 0; i < r.height; i++ {
		result, ok := pool.GetResult()
		if !ok {
			pool.Stop()
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		if r.options.Progress != nil && firstErr == nil {
			r.options.Progress(result)
		}
	}
	pool.Stop()

	if firstErr != nil {
		r.options.Logger.Printf("Rendering cancelled: %v\n", firstErr)
		return nil, RenderStats{}, firstErr
	}

	stats := RenderStats{
		Width:       r.width,
		Height:      r.height,
		TotalPixels: r.width * r.height,
		Workers:     pool.GetNumWorkers(),
		Duration:    time.Since(startTime),
	}
	r.options.Logger.Printf("Render completed in %v (%.0f pixels/sec)\n", stats.Duration, stats.PixelsPerSecond())

	return pixels, stats, nil
}
