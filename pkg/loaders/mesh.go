package loaders

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
)

// ErrUnsupportedFormat is returned for file formats or variants the loaders cannot read
var ErrUnsupportedFormat = errors.New("unsupported format")

// LoadMesh loads OBJ, PLY or STL mesh data, chosen by file extension
func LoadMesh(filename string, logger core.Logger) (*geometry.MeshData, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	startTime := time.Now()

	var data *geometry.MeshData
	var err error
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".obj":
		data, err = LoadOBJ(filename)
	case ".ply":
		data, err = LoadPLY(filename)
	case ".stl":
		data, err = LoadSTL(filename)
	default:
		err = fmt.Errorf("%w: mesh extension %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load mesh %q: %w", filename, err)
	}

	logger.Printf("Loaded mesh %s: %d vertices, %d triangles in %v\n",
		filepath.Base(filename), len(data.Vertices), len(data.Faces), time.Since(startTime))
	return data, nil
}
