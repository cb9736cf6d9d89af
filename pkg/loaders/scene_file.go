package loaders

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

// Vector is a JSON [x, y, z] triple
type Vector [3]float64

// Vec3 converts the triple to a core.Vec3
func (v Vector) Vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// SceneFile is the JSON description of a scene. Paths inside it are
// relative to the file's directory.
type SceneFile struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Group       string `json:"group,omitempty"`

	Camera     CameraSpec              `json:"camera"`
	Width      int                     `json:"width,omitempty"`
	Height     int                     `json:"height,omitempty"`
	HFov       float64                 `json:"hfov,omitempty"` // Degrees
	MaxDepth   *int                    `json:"maxDepth,omitempty"`
	Background *Vector                 `json:"background,omitempty"`
	Materials  map[string]MaterialSpec `json:"materials"`
	Lights     []LightSpec             `json:"lights"`
	Shapes     []ShapeSpec             `json:"shapes"`

	// Dir is the directory relative paths are resolved against
	Dir string `json:"-"`
}

// CameraSpec describes the camera
type CameraSpec struct {
	Origin Vector  `json:"origin"`
	LookAt Vector  `json:"lookAt"`
	Up     *Vector `json:"up,omitempty"` // Defaults to +Y
}

// MaterialSpec describes Phong shading over a solid color or a texture
type MaterialSpec struct {
	Color   *Vector `json:"color,omitempty"`
	Texture string  `json:"texture,omitempty"`
	Ks      float64 `json:"ks"`
	Kd      float64 `json:"kd"`
	Ka      float64 `json:"ka"`
	Alpha   float64 `json:"alpha"`
}

// LightSpec describes a point light
type LightSpec struct {
	Position Vector `json:"position"`
	Color    Vector `json:"color"`
}

// ShapeSpec describes one primitive. Type selects which fields apply.
type ShapeSpec struct {
	Type     string `json:"type"` // sphere, plane, triangle or mesh
	Material string `json:"material,omitempty"`

	// sphere
	Center Vector  `json:"center,omitempty"`
	Radius float64 `json:"radius,omitempty"`

	// plane
	Normal   Vector  `json:"normal,omitempty"`
	Distance float64 `json:"distance,omitempty"`

	// triangle
	Vertices [3]Vector `json:"vertices,omitempty"`

	// mesh
	File      string         `json:"file,omitempty"`
	Transform *TransformSpec `json:"transform,omitempty"`
}

// TransformSpec places a mesh: scale, then rotate (degrees about X, Y, Z),
// then translate
type TransformSpec struct {
	Scale       *Vector `json:"scale,omitempty"`
	Rotation    Vector  `json:"rotation,omitempty"`
	Translation Vector  `json:"translation,omitempty"`
}

// LoadSceneFile reads and decodes a JSON scene file
func LoadSceneFile(filename string) (*SceneFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	sf, err := ReadSceneFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene file %q: %w", filename, err)
	}
	sf.Dir = filepath.Dir(filename)
	return sf, nil
}

// ReadSceneFile decodes a JSON scene. Unknown fields are rejected so typos
// surface as errors.
func ReadSceneFile(r io.Reader) (*SceneFile, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var sf SceneFile
	if err := decoder.Decode(&sf); err != nil {
		return nil, fmt.Errorf("invalid scene JSON: %w", err)
	}
	return &sf, nil
}

// ResolvePath returns path relative to the scene file's directory, leaving
// absolute paths untouched
func (sf *SceneFile) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || sf.Dir == "" {
		return path
	}
	return filepath.Join(sf.Dir, path)
}

// Encode writes the scene as indented JSON
func (sf *SceneFile) Encode(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sf)
}
