package renderer

import "time"

// RenderStats contains statistics about a completed render
type RenderStats struct {
	Width       int           // Image width in pixels
	Height      int           // Image height in pixels
	TotalPixels int           // Number of primary rays traced
	Workers     int           // Number of workers used
	Duration    time.Duration // Wall-clock render time
}

// PixelsPerSecond returns the render throughput
func (rs RenderStats) PixelsPerSecond() float64 {
	if rs.Duration <= 0 {
		return 0
	}
	return float64(rs.TotalPixels) / rs.Duration.Seconds()
}
