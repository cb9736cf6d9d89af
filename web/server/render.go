package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/output"
	"github.com/df07/go-phong-raytracer/pkg/renderer"
	"github.com/df07/go-phong-raytracer/pkg/scene"
)

// progressEvery is the number of finished rows between progress events
const progressEvery = 32

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "progress", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// ProgressUpdate reports how many rows have finished
type ProgressUpdate struct {
	RowsDone  int   `json:"rowsDone"`
	TotalRows int   `json:"totalRows"`
	ElapsedMs int64 `json:"elapsedMs"`
}

// CompleteUpdate carries the finished image and statistics
type CompleteUpdate struct {
	ImageData      string  `json:"imageData"` // Base64 encoded PNG
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Workers        int     `json:"workers"`
	ElapsedMs      int64   `json:"elapsedMs"`
	PixelsPerSec   float64 `json:"pixelsPerSecond"`
	PrimitiveCount int     `json:"primitiveCount"`
}

// UploadResponse is returned by /api/render when the image is uploaded
type UploadResponse struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// renderResult is a finished render with its scene
type renderResult struct {
	pixels []byte
	width  int
	height int
	stats  renderer.RenderStats
	scene  *scene.Scene
}

// handleRender renders a scene and returns the encoded image, or uploads it
// when upload=1
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	if req.Upload && s.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "Uploads are not configured")
		return
	}

	result, status, err := s.render(r.Context(), req, log.Default(), nil)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := output.Encode(&buf, result.pixels, result.width, result.height, req.Format); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to encode image: %v", err))
		return
	}
	contentType := output.ContentType(req.Format)

	if req.Upload {
		key := fmt.Sprintf("%s/render_%s.%s", uploadPrefix(req.Scene), time.Now().Format("20060102_150405"), req.Format)
		if err := s.uploader.Upload(r.Context(), key, buf.Bytes(), contentType); err != nil {
			log.Printf("Upload failed: %v", err)
			writeError(w, http.StatusBadGateway, "Upload failed")
			return
		}
		writeJSON(w, http.StatusOK, UploadResponse{
			Key:       key,
			URL:       s.uploader.URL(key),
			Width:     result.width,
			Height:    result.height,
			ElapsedMs: result.stats.Duration.Milliseconds(),
		})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Render-Time-Ms", strconv.FormatInt(result.stats.Duration.Milliseconds(), 10))
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}

	// Parse common scene parameters using shared function
	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	query := r.URL.Query()
	var err error
	if req.Linear, err = parseBoolParam(query, "linear"); err != nil {
		return nil, err
	}
	if req.Upload, err = parseBoolParam(query, "upload"); err != nil {
		return nil, err
	}

	req.Format = strings.ToLower(query.Get("format"))
	if req.Format == "" {
		req.Format = output.FormatPNG
	}
	if output.ContentType(req.Format) == "application/octet-stream" && req.Format != output.FormatRaw {
		return nil, fmt.Errorf("unsupported format: %s", req.Format)
	}

	// Performance warning
	if req.Width*req.Height > 1920*1080 {
		log.Printf("Render warning: Large image %dx%d may render slowly", req.Width, req.Height)
	}

	return req, nil
}

// render builds the scene for a request and renders it. progress, if set,
// receives the number of finished rows. The returned status is the HTTP
// status to report with a non-nil error.
func (s *Server) render(ctx context.Context, req *RenderRequest, logger core.Logger, progress func(rowsDone, totalRows int)) (*renderResult, int, error) {
	sceneObj, err := s.createScene(req, logger)
	if err != nil {
		if errors.Is(err, scene.ErrUnknownScene) {
			return nil, http.StatusBadRequest, err
		}
		return nil, http.StatusInternalServerError, err
	}

	options := renderer.Options{
		Workers: s.config.Workers,
		Linear:  req.Linear,
		Logger:  logger,
	}
	if progress != nil {
		totalRows := req.Height
		if totalRows == 0 {
			totalRows = sceneObj.RenderConfig.Height
		}
		// Results arrive on a single goroutine
		rowsDone := 0
		options.Progress = func(renderer.RowResult) {
			rowsDone++
			progress(rowsDone, totalRows)
		}
	}

	r, err := sceneObj.NewRenderer(req.renderConfig(), options)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	pixels, stats, err := r.RenderContext(ctx)
	if err != nil {
		return nil, http.StatusServiceUnavailable, fmt.Errorf("render cancelled: %w", err)
	}

	return &renderResult{
		pixels: pixels,
		width:  r.Width(),
		height: r.Height(),
		stats:  stats,
		scene:  sceneObj,
	}, http.StatusOK, nil
}

// handleRenderStream renders a scene while streaming console output and row
// progress via SSE, then sends the finished image
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	s.setSSEHeaders(w)

	ctx := r.Context()

	// Create unified SSE event channel for thread-safe writing
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})

	// Start single SSE writer goroutine
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(ctx, w, sseEventChan)
	}()

	// The writer must finish before the handler returns the ResponseWriter
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Setup console logging and streaming
	consoleChan := make(chan ConsoleMessage, 50)
	webLogger := NewWebLogger(fmt.Sprintf("render-%d", time.Now().UnixNano()), consoleChan)
	var consoleWG sync.WaitGroup
	consoleWG.Add(1)
	go func() {
		defer consoleWG.Done()
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
	}()

	startTime := time.Now()
	progress := func(rowsDone, totalRows int) {
		if rowsDone%progressEvery != 0 && rowsDone != totalRows {
			return
		}
		s.sendEvent(ctx, sseEventChan, "progress", ProgressUpdate{
			RowsDone:  rowsDone,
			TotalRows: totalRows,
			ElapsedMs: time.Since(startTime).Milliseconds(),
		})
	}

	result, _, err := s.render(ctx, req, webLogger, progress)

	// Flush console output before the final event
	close(consoleChan)
	consoleWG.Wait()

	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
		return
	}

	var buf bytes.Buffer
	if err := output.Encode(&buf, result.pixels, result.width, result.height, output.FormatPNG); err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Failed to encode image: %v", err))
		return
	}

	s.sendEvent(ctx, sseEventChan, "complete", CompleteUpdate{
		ImageData:      base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:          result.width,
		Height:         result.height,
		Workers:        result.stats.Workers,
		ElapsedMs:      time.Since(startTime).Milliseconds(),
		PixelsPerSec:   result.stats.PixelsPerSecond(),
		PrimitiveCount: result.scene.GetPrimitiveCount(),
	})
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// writeSSEEvents handles writing all SSE events in a single goroutine. After
// a failed write the remaining events are drained so senders never block.
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, sseEventChan <-chan SSEEvent) {
	failed := false
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				return
			}
			if failed {
				continue
			}

			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				// Client disconnected during write
				failed = true
				continue
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}

// streamConsoleMessages forwards logger output as console events until the
// console channel is closed
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, sseEventChan chan<- SSEEvent) {
	for consoleMsg := range consoleChan {
		data, err := json.Marshal(consoleMsg)
		if err != nil {
			log.Printf("Error marshaling console message: %v", err)
			continue
		}

		select {
		case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
		case <-ctx.Done():
		default:
			// Channel full, skip message to avoid blocking
		}
	}
}

// sendEvent marshals v and queues it unless the client has gone
func (s *Server) sendEvent(ctx context.Context, sseEventChan chan<- SSEEvent, eventType string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshaling %s event: %v", eventType, err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: eventType, Data: string(data)}:
	case <-ctx.Done():
	}
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan<- SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}

// uploadPrefix turns a scene ID into an object key prefix
func uploadPrefix(sceneID string) string {
	name := strings.TrimPrefix(sceneID, "file:")
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ".json")
}
