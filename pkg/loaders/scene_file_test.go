package loaders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

const sampleScene = `{
  "name": "Two Balls",
  "group": "Examples",
  "camera": {"origin": [0, 3, -5], "lookAt": [0, 1, 0]},
  "width": 320,
  "height": 180,
  "hfov": 90,
  "maxDepth": 2,
  "materials": {
    "red": {"color": [1, 0, 0], "ks": 0, "kd": 0.5, "ka": 1, "alpha": 2},
    "earth": {"texture": "textures/earth.png", "ks": 0.2, "kd": 0.8, "ka": 0.02, "alpha": 700}
  },
  "lights": [{"position": [5, 20, -5], "color": [1, 1, 1]}],
  "shapes": [
    {"type": "sphere", "center": [2, 1, 0], "radius": 1, "material": "red"},
    {"type": "plane", "normal": [0, 1, 0], "distance": 0, "material": "red"},
    {"type": "mesh", "file": "teapot.obj", "material": "red",
     "transform": {"scale": [0.5, 0.5, 0.5], "rotation": [0, 90, 0], "translation": [0, 0, 2]}}
  ]
}`

func TestReadSceneFile(t *testing.T) {
	sf, err := ReadSceneFile(strings.NewReader(sampleScene))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if sf.Name != "Two Balls" || sf.Width != 320 || sf.HFov != 90 {
		t.Errorf("Unexpected header fields: %+v", sf)
	}
	if sf.MaxDepth == nil || *sf.MaxDepth != 2 {
		t.Errorf("Expected max depth 2, got %v", sf.MaxDepth)
	}
	if sf.Camera.Up != nil {
		t.Errorf("Expected omitted up vector to stay nil, got %v", sf.Camera.Up)
	}
	if sf.Camera.Origin.Vec3() != core.NewVec3(0, 3, -5) {
		t.Errorf("Expected camera origin (0, 3, -5), got %v", sf.Camera.Origin.Vec3())
	}
	if len(sf.Materials) != 2 || sf.Materials["earth"].Texture != "textures/earth.png" {
		t.Errorf("Unexpected materials: %+v", sf.Materials)
	}
	if len(sf.Shapes) != 3 || sf.Shapes[2].Transform == nil {
		t.Fatalf("Expected 3 shapes with a mesh transform, got %+v", sf.Shapes)
	}
	if sf.Shapes[2].Transform.Rotation[1] != 90 {
		t.Errorf("Expected 90 degree rotation about Y, got %v", sf.Shapes[2].Transform.Rotation)
	}
}

func TestReadSceneFile_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"syntax error", `{"name": `},
		{"unknown field", `{"name": "x", "fov": 40}`},
		{"wrong type", `{"width": "wide"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadSceneFile(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected error for invalid scene JSON")
			}
		})
	}
}

func TestLoadSceneFile_ResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "two-balls.json")
	if err := os.WriteFile(path, []byte(sampleScene), 0644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}

	sf, err := LoadSceneFile(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got := sf.ResolvePath("teapot.obj"); got != filepath.Join(dir, "teapot.obj") {
		t.Errorf("Expected path relative to scene dir, got %s", got)
	}
	abs := filepath.Join(dir, "abs.obj")
	if got := sf.ResolvePath(abs); got != abs {
		t.Errorf("Expected absolute path unchanged, got %s", got)
	}
	if got := sf.ResolvePath(""); got != "" {
		t.Errorf("Expected empty path unchanged, got %s", got)
	}
}
