package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/material"
	"github.com/df07/go-phong-raytracer/pkg/renderer"
	"github.com/df07/go-phong-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	GeometryType string                 `json:"geometryType,omitempty"`
	ShadingType  string                 `json:"shadingType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	UV           [2]float64             `json:"uv"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Color        string                 `json:"color"` // Traced pixel color
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// InspectResult contains information about the object hit by an inspection ray
type InspectResult struct {
	Hit       bool
	Ray       core.Ray
	HitRecord *geometry.HitRecord
	Shape     geometry.Shape // The shape that was hit, nil when unknown
}

// inspectPixel casts the primary ray through a pixel and returns the first
// object it hits
func inspectPixel(sceneObj *scene.Scene, r *renderer.Renderer, pixelX, pixelY int) InspectResult {
	ray := r.PrimaryRay(pixelX, pixelY)

	hit, isHit := sceneObj.FirstHit(ray)
	if !isHit {
		return InspectResult{Ray: ray}
	}

	// FirstHit returns only the record, so find the shape at the same distance
	for _, shape := range sceneObj.Shapes {
		if shapeHit, ok := shape.Hit(ray, scene.FirstHitEpsilon, math.Inf(1)); ok && shapeHit.T == hit.T {
			return InspectResult{Hit: true, Ray: ray, HitRecord: hit, Shape: shape}
		}
	}

	return InspectResult{Hit: true, Ray: ray, HitRecord: hit}
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vec3Array(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.Plane:
		properties["normal"] = vec3Array(geom.Normal)
		properties["distance"] = geom.Distance
		return "plane", properties

	case *geometry.Triangle:
		properties["vertices"] = [3][3]float64{vec3Array(geom.A), vec3Array(geom.B), vec3Array(geom.C)}
		properties["smooth"] = geom.Normals != nil
		return "triangle", properties

	case *geometry.TriangleMesh:
		properties["triangleCount"] = geom.GetTriangleCount()
		return "triangle_mesh", properties

	default:
		return "unknown", properties
	}
}

// extractShadingInfo extracts the Phong parameters and color source
func extractShadingInfo(shading *material.Phong) (string, map[string]interface{}) {
	properties := make(map[string]interface{})
	if shading == nil {
		return "none", properties
	}

	properties["ks"] = shading.Ks
	properties["kd"] = shading.Kd
	properties["ka"] = shading.Ka
	properties["alpha"] = shading.Alpha

	switch c := shading.Color.(type) {
	case *material.SolidColor:
		properties["color"] = colorHex(c.Color)
		return "solid", properties
	case *material.ImageTexture:
		properties["textureSize"] = [2]int{c.Width, c.Height}
		return "texture", properties
	default:
		return "black", properties
	}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	// Create request object for parameter parsing
	inspectReq := &RenderRequest{}

	// Parse common scene parameters using shared function
	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	// Parse pixel coordinates
	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	sceneObj, err := s.createScene(inspectReq, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rend, err := sceneObj.NewRenderer(inspectReq.renderConfig(), renderer.Options{})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Validate pixel coordinates
	if pixelX < 0 || pixelX >= rend.Width() || pixelY < 0 || pixelY >= rend.Height() {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	result := inspectPixel(sceneObj, rend, pixelX, pixelY)
	color := colorHex(sceneObj.Trace(result.Ray, 0))

	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false, Color: color})
		return
	}

	geometryType, geometryProps := extractGeometryInfo(result.Shape)
	shadingType, shadingProps := extractShadingInfo(result.HitRecord.Shading)

	hit := result.HitRecord
	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		GeometryType: geometryType,
		ShadingType:  shadingType,
		Point:        vec3Array(hit.Point),
		Normal:       vec3Array(hit.Normal),
		UV:           [2]float64{hit.UV.X, hit.UV.Y},
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		Color:        color,
		Properties: map[string]interface{}{
			"geometry": geometryProps,
			"shading":  shadingProps,
		},
	})
}

func vec3Array(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// colorHex formats a linear color as an sRGB hex string
func colorHex(c core.Vec3) string {
	r, g, b := renderer.ColorToBytes(c, false)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
