package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-phong-raytracer/pkg/config"
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/scene"
)

// Limits for request parameters
const (
	MinImageSize = 2
	MaxImageSize = 4000
	MaxFovDeg    = 179
)

// Uploader stores finished renders, implemented by output.S3Uploader
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	URL(key string) string
}

// Server handles web requests for the raytracer
type Server struct {
	config   *config.Config
	uploader Uploader // nil disables uploads
	mux      *http.ServeMux
}

// NewServer creates a new web server. The uploader may be nil.
func NewServer(cfg *config.Config, uploader Uploader) *Server {
	s := &Server{
		config:   cfg,
		uploader: uploader,
		mux:      http.NewServeMux(),
	}

	// Serve static files
	s.mux.Handle("/", http.FileServer(http.Dir("static/")))

	// API endpoints
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/render/stream", s.handleRenderStream)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)

	return s
}

// Handler returns the server's request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the web server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.config.ServerAddress)
	return http.ListenAndServe(s.config.ServerAddress, s.mux)
}

// RenderRequest represents the scene and image settings of a request
type RenderRequest struct {
	Scene  string  `json:"scene"`  // Scene ID as listed by /api/scenes
	Width  int     `json:"width"`  // Image width, 0 for the scene default
	Height int     `json:"height"` // Image height, 0 for the scene default
	FovDeg float64 `json:"fov"`    // Horizontal field of view, 0 for the scene default
	Depth  int     `json:"depth"`  // Reflection depth, -1 for the scene default
	Linear bool    `json:"linear"` // Skip sRGB encoding
	Format string  `json:"format"` // Output format for /api/render
	Upload bool    `json:"upload"` // Store the render instead of returning it
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and file scenes, grouped for display
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.config.ScenesDir, log.Default())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// parseCommonSceneParams parses the scene and image parameters shared by
// render and inspect requests
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	query := r.URL.Query()

	req.Scene = query.Get("scene")
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, MinImageSize, MaxImageSize); err != nil {
		return err
	}
	if req.Height, err = parseIntParam(query, "height", 0, MinImageSize, MaxImageSize); err != nil {
		return err
	}
	if req.FovDeg, err = parseFloatParam(query, "fov", 0, 1, MaxFovDeg); err != nil {
		return err
	}
	if req.Depth, err = parseIntParam(query, "depth", -1, 0, scene.MaxRecursionDepth); err != nil {
		return err
	}
	return nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam accepts 1/0 and the forms understood by strconv.ParseBool
func parseBoolParam(values url.Values, key string) (bool, error) {
	value := values.Get(key)
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %s", key, value)
	}
	return parsed, nil
}

// createScene loads a scene listed by /api/scenes. Arbitrary file paths are
// rejected so requests cannot read outside the scenes directory.
func (s *Server) createScene(req *RenderRequest, logger core.Logger) (*scene.Scene, error) {
	response, err := scene.ListAllScenes(s.config.ScenesDir, logger)
	if err != nil {
		return nil, err
	}

	for _, group := range response.Groups {
		for _, info := range group.Scenes {
			if info.ID != req.Scene {
				continue
			}
			sceneObj, err := scene.LoadScene(info.ID, scene.LoadOptions{
				TextureMaxSize: s.config.TextureMaxSize,
				Logger:         logger,
			})
			if err != nil {
				return nil, err
			}
			if req.Depth >= 0 {
				sceneObj.MaxDepth = req.Depth
			}
			return sceneObj, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", scene.ErrUnknownScene, req.Scene)
}

// renderConfig returns the image settings of a request
func (req *RenderRequest) renderConfig() scene.RenderConfig {
	return scene.RenderConfig{Width: req.Width, Height: req.Height, HFovDegrees: req.FovDeg}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
