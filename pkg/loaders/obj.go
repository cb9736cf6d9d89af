package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
)

// LoadOBJ loads a Wavefront OBJ file. Supports v, vt, vn and f records;
// materials, groups and smoothing groups are ignored.
func LoadOBJ(filename string) (*geometry.MeshData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer file.Close()

	return ReadOBJ(file)
}

// objVertex is one corner of an OBJ face: 0-based indices, -1 when absent
type objVertex struct {
	position, uv, normal int
}

// ReadOBJ parses OBJ data from a reader. Polygons are fan-triangulated and
// texture v coordinates are flipped so that v = 0 is the top image row.
func ReadOBJ(r io.Reader) (*geometry.MeshData, error) {
	data := &geometry.MeshData{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			var v []float64
			if v, err = parseFloats(fields[1:], 3, 4); err == nil {
				data.Vertices = append(data.Vertices, core.NewVec3(v[0], v[1], v[2]))
			}
		case "vn":
			var v []float64
			if v, err = parseFloats(fields[1:], 3, 3); err == nil {
				data.Normals = append(data.Normals, core.NewVec3(v[0], v[1], v[2]))
			}
		case "vt":
			var v []float64
			if v, err = parseFloats(fields[1:], 1, 3); err == nil {
				tv := 0.0
				if len(v) > 1 {
					tv = v[1]
				}
				data.UVs = append(data.UVs, core.NewVec2(v[0], 1-tv))
			}
		case "f":
			err = parseOBJFace(data, fields[1:])
		}

		if err != nil {
			return nil, fmt.Errorf("OBJ line %d: %w", lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read OBJ data: %w", err)
	}

	return data, nil
}

// parseFloats parses between minCount and maxCount floats
func parseFloats(fields []string, minCount, maxCount int) ([]float64, error) {
	if len(fields) < minCount || len(fields) > maxCount {
		return nil, fmt.Errorf("expected %d to %d values, got %d", minCount, maxCount, len(fields))
	}
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		values[i] = v
	}
	return values, nil
}

// parseOBJFace parses one polygon and appends its fan triangulation
func parseOBJFace(data *geometry.MeshData, fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("face needs at least 3 vertices, got %d", len(fields))
	}

	corners := make([]objVertex, len(fields))
	for i, field := range fields {
		corner, err := parseOBJVertex(field, len(data.Vertices), len(data.UVs), len(data.Normals))
		if err != nil {
			return err
		}
		corners[i] = corner
	}

	// Attributes must be present on every corner or none
	hasUV := corners[0].uv >= 0
	hasNormal := corners[0].normal >= 0
	for _, c := range corners[1:] {
		if (c.uv >= 0) != hasUV || (c.normal >= 0) != hasNormal {
			return fmt.Errorf("face mixes vertex formats")
		}
	}

	for k := 1; k+1 < len(corners); k++ {
		a, b, c := corners[0], corners[k], corners[k+1]
		face := geometry.NewFace(a.position, b.position, c.position)
		if hasUV {
			face.UVs = [3]int{a.uv, b.uv, c.uv}
		}
		if hasNormal {
			face.Normals = [3]int{a.normal, b.normal, c.normal}
		}
		data.Faces = append(data.Faces, face)
	}
	return nil
}

// parseOBJVertex parses a/b/c, a//c, a/b or a, resolving negative indices
// relative to the counts seen so far
func parseOBJVertex(field string, numPositions, numUVs, numNormals int) (objVertex, error) {
	parts := strings.Split(field, "/")
	if len(parts) > 3 {
		return objVertex{}, fmt.Errorf("invalid face vertex %q", field)
	}

	corner := objVertex{position: -1, uv: -1, normal: -1}
	counts := [3]int{numPositions, numUVs, numNormals}
	targets := [3]*int{&corner.position, &corner.uv, &corner.normal}

	for i, part := range parts {
		if part == "" {
			if i == 0 {
				return objVertex{}, fmt.Errorf("face vertex %q has no position", field)
			}
			continue
		}
		idx, err := resolveOBJIndex(part, counts[i])
		if err != nil {
			return objVertex{}, fmt.Errorf("face vertex %q: %w", field, err)
		}
		*targets[i] = idx
	}
	return corner, nil
}

// resolveOBJIndex converts a 1-based or negative OBJ index to 0-based
func resolveOBJIndex(s string, count int) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	switch {
	case idx > 0 && idx <= count:
		return idx - 1, nil
	case idx < 0 && -idx <= count:
		return count + idx, nil
	default:
		return 0, fmt.Errorf("index %d out of range (%d defined)", idx, count)
	}
}
