package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-phong-raytracer/pkg/config"
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/scene"
)

const testSceneJSON = `{
  "name": "Single Ball",
  "camera": {"origin": [0, 1, -4], "lookAt": [0, 1, 0]},
  "width": 16,
  "height": 12,
  "materials": {"white": {"color": [1, 1, 1], "ks": 0.2, "kd": 0.8, "ka": 0.3, "alpha": 8}},
  "lights": [{"position": [2, 6, -4], "color": [1, 1, 1]}],
  "shapes": [{"type": "sphere", "center": [0, 1, 0], "radius": 1, "material": "white"}]
}`

func writeTestScene(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "single-ball.json"), []byte(testSceneJSON), 0644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}
	return dir
}

func TestCreateScene(t *testing.T) {
	scenesDir := writeTestScene(t)
	cfg := &config.Config{ScenesDir: scenesDir}

	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		// Built-in scenes
		{"default scene", "default", false},
		{"earth scene", "earth", false},
		{"mesh scene", "mesh", false},
		{"cornell scene", "cornell", false},

		// Scene files
		{"scene file by name", "single-ball", false},
		{"scene file by path", filepath.Join(scenesDir, "single-ball.json"), false},

		// Invalid scenes
		{"unknown scene", "nonexistent", true},
		{"invalid scene path", filepath.Join(scenesDir, "nonexistent.json"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := createScene(tt.sceneType, cfg, scene.LoadOptions{})

			if tt.expectError {
				if !errors.Is(err, scene.ErrUnknownScene) {
					t.Errorf("Expected ErrUnknownScene for scene type '%s', got %v", tt.sceneType, err)
				}
				if s != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s'", tt.sceneType)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if s.RenderConfig.Width <= 0 || s.RenderConfig.Height <= 0 {
				t.Errorf("Expected positive scene dimensions, got %dx%d", s.RenderConfig.Width, s.RenderConfig.Height)
			}
		})
	}
}

func TestCreateOutputDir(t *testing.T) {
	tests := []struct {
		name      string
		sceneType string
		expected  string
	}{
		{"built-in scene", "cornell", filepath.Join("output", "cornell")},
		{"scene file name", "single-ball", filepath.Join("output", "single-ball")},
		{"scene file path", "scenes/sub/mirror-room.json", filepath.Join("output", "mirror-room")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := createOutputDir("output", tt.sceneType); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

// isolateConfig points configuration at an empty directory so a local .env
// cannot leak into tests
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("RAYTRACER_ROOT_DIR", t.TempDir())
	t.Setenv("S3_BUCKET", "")
	t.Setenv("RAYTRACER_WORKERS", "")
}

func TestRun_RendersToFile(t *testing.T) {
	isolateConfig(t)
	scenesDir := writeTestScene(t)
	outFile := filepath.Join(t.TempDir(), "ball.ppm")

	var stdout bytes.Buffer
	args := []string{"-scene", filepath.Join(scenesDir, "single-ball.json"), "-output", outFile, "-workers", "3"}
	if err := run(context.Background(), args, &stdout, core.NopLogger{}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("Expected output file, got %v", err)
	}
	header := "P6\n16 12\n255\n"
	if !strings.HasPrefix(string(data), header) {
		t.Errorf("Expected PPM header %q, got %q", header, data[:min(len(data), len(header))])
	}
	if len(data) != len(header)+16*12*3 {
		t.Errorf("Expected %d bytes, got %d", len(header)+16*12*3, len(data))
	}
	if !strings.Contains(stdout.String(), "Render saved as "+outFile) {
		t.Errorf("Expected save message, got %q", stdout.String())
	}
}

func TestRun_Overrides(t *testing.T) {
	isolateConfig(t)
	outFile := filepath.Join(t.TempDir(), "small.raw")

	args := []string{"-scene", "default", "-width", "8", "-height", "4", "-fov", "60", "-depth", "0", "-output", outFile}
	if err := run(context.Background(), args, &bytes.Buffer{}, core.NopLogger{}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	info, err := os.Stat(outFile)
	if err != nil {
		t.Fatalf("Expected output file, got %v", err)
	}
	if info.Size() != 8*4*3 {
		t.Errorf("Expected %d raw bytes, got %d", 8*4*3, info.Size())
	}
}

func TestRun_Errors(t *testing.T) {
	isolateConfig(t)
	outDir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-samples", "10"}},
		{"stray argument", []string{"cornell"}},
		{"unknown scene", []string{"-scene", "nonexistent"}},
		{"depth too large", []string{"-scene", "default", "-depth", "20"}},
		{"field of view too wide", []string{"-scene", "default", "-fov", "180"}},
		{"upload without bucket", []string{"-scene", "default", "-width", "4", "-height", "4",
			"-output", filepath.Join(outDir, "up.png"), "-upload"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(context.Background(), tt.args, &bytes.Buffer{}, core.NopLogger{}); err == nil {
				t.Errorf("Expected an error for %v", tt.args)
			}
		})
	}
}

func TestRun_HelpAndList(t *testing.T) {
	isolateConfig(t)

	var help bytes.Buffer
	if err := run(context.Background(), []string{"-help"}, &help, core.NopLogger{}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(help.String(), "Usage:") || !strings.Contains(help.String(), "cornell") {
		t.Errorf("Expected usage with scene names, got %q", help.String())
	}

	t.Setenv("RAYTRACER_SCENES_DIR", writeTestScene(t))
	var list bytes.Buffer
	if err := run(context.Background(), []string{"-list"}, &list, core.NopLogger{}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, want := range []string{"Built-in Scenes:", "Scene Files:", "Single Ball"} {
		if !strings.Contains(list.String(), want) {
			t.Errorf("Expected listing to contain %q, got %q", want, list.String())
		}
	}
}
