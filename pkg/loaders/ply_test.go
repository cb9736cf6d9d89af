package loaders

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
)

// createTestPLY creates a binary little-endian square made of two triangles
func createTestPLY(t *testing.T, includeNormals bool) []byte {
	t.Helper()
	var buf bytes.Buffer

	buf.WriteString("ply\n")
	buf.WriteString("format binary_little_endian 1.0\n")
	buf.WriteString("comment generated for tests\n")
	buf.WriteString("element vertex 4\n")
	buf.WriteString("property float x\n")
	buf.WriteString("property float y\n")
	buf.WriteString("property float z\n")
	if includeNormals {
		buf.WriteString("property float nx\n")
		buf.WriteString("property float ny\n")
		buf.WriteString("property float nz\n")
	}
	buf.WriteString("property uchar red\n")
	buf.WriteString("element face 2\n")
	buf.WriteString("property list uchar int vertex_indices\n")
	buf.WriteString("property uchar flags\n")
	buf.WriteString("end_header\n")

	vertices := [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	for _, v := range vertices {
		binary.Write(&buf, binary.LittleEndian, v)
		if includeNormals {
			binary.Write(&buf, binary.LittleEndian, [3]float32{0, 0, 1})
		}
		buf.WriteByte(255)
	}

	faces := [][3]int32{{0, 1, 2}, {0, 2, 3}}
	for _, f := range faces {
		buf.WriteByte(3)
		binary.Write(&buf, binary.LittleEndian, f)
		buf.WriteByte(0)
	}

	return buf.Bytes()
}

func TestReadPLY_BinaryLittleEndian(t *testing.T) {
	data, err := ReadPLY(bytes.NewReader(createTestPLY(t, false)))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(data.Vertices) != 4 {
		t.Errorf("Expected 4 vertices, got %d", len(data.Vertices))
	}
	if len(data.Faces) != 2 {
		t.Fatalf("Expected 2 faces, got %d", len(data.Faces))
	}
	if data.Vertices[2] != core.NewVec3(1, 1, 0) {
		t.Errorf("Expected vertex 2 at (1, 1, 0), got %v", data.Vertices[2])
	}
	if data.Faces[1].Vertices != [3]int{0, 2, 3} {
		t.Errorf("Expected second face (0, 2, 3), got %v", data.Faces[1].Vertices)
	}
	if data.Normals != nil || data.Faces[0].Normals != [3]int{-1, -1, -1} {
		t.Errorf("Expected no normals, got %v", data.Normals)
	}
}

func TestReadPLY_WithNormals(t *testing.T) {
	data, err := ReadPLY(bytes.NewReader(createTestPLY(t, true)))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(data.Normals) != 4 {
		t.Fatalf("Expected 4 normals, got %d", len(data.Normals))
	}
	for i, n := range data.Normals {
		if n != core.NewVec3(0, 0, 1) {
			t.Errorf("Normal %d: expected (0, 0, 1), got %v", i, n)
		}
	}
	if data.Faces[0].Normals != data.Faces[0].Vertices {
		t.Errorf("Expected normals to share vertex indices, got %v", data.Faces[0].Normals)
	}

	if _, err := geometry.NewTriangleMesh(data, nil, nil); err != nil {
		t.Errorf("Expected loadable mesh, got %v", err)
	}
}

const asciiPLY = `ply
format ascii 1.0
element vertex 5
property float x
property float y
property float z
property float u
property float v
element face 2
property list uchar int vertex_indices
end_header
0 0 0 0 0
1 0 0 1 0
1 1 0 1 1
0 1 0 0 1
2 0 0 0.5 0.5
4 0 1 2 3
3 1 4 2
`

func TestReadPLY_ASCII(t *testing.T) {
	data, err := ReadPLY(strings.NewReader(asciiPLY))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(data.Vertices) != 5 || len(data.UVs) != 5 {
		t.Fatalf("Expected 5 vertices with uvs, got %d and %d", len(data.Vertices), len(data.UVs))
	}
	// The quad fans into two triangles, plus the explicit triangle
	if len(data.Faces) != 3 {
		t.Fatalf("Expected 3 faces, got %d", len(data.Faces))
	}
	if data.Faces[2].Vertices != [3]int{1, 4, 2} {
		t.Errorf("Expected last face (1, 4, 2), got %v", data.Faces[2].Vertices)
	}
	if data.UVs[4] != core.NewVec2(0.5, 0.5) {
		t.Errorf("Expected uv (0.5, 0.5), got %v", data.UVs[4])
	}
}

func TestReadPLY_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing magic", "format ascii 1.0\nend_header\n"},
		{"missing format", "ply\nelement vertex 0\nproperty float x\nproperty float y\nproperty float z\nend_header\n"},
		{"unterminated header", "ply\nformat ascii 1.0\nelement vertex 1\n"},
		{"bad count", "ply\nformat ascii 1.0\nelement vertex many\nend_header\n"},
		{"no positions", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float nx\nend_header\n0\n"},
		{"unknown type", "ply\nformat ascii 1.0\nelement vertex 1\nproperty quad x\nend_header\n"},
		{"truncated body", "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n1 1\n"},
		{"bad value", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 zero 0\n"},
		{"index out of range", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 7\n"},
		{"degenerate face", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n2 0 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadPLY(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected error for malformed PLY")
			}
		})
	}
}

func TestReadPLY_UnsupportedFormat(t *testing.T) {
	input := "ply\nformat binary_middle_endian 1.0\nelement vertex 0\nproperty float x\nproperty float y\nproperty float z\nend_header\n"
	if _, err := ReadPLY(strings.NewReader(input)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParsePLYHeader(t *testing.T) {
	reader := bufio.NewReader(bytes.NewReader(createTestPLY(t, true)))
	header, err := parsePLYHeader(reader)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if header.Format != "binary_little_endian" || header.Version != "1.0" {
		t.Errorf("Expected binary_little_endian 1.0, got %s %s", header.Format, header.Version)
	}
	if header.VertexCount != 4 || header.FaceCount != 2 {
		t.Errorf("Expected 4 vertices and 2 faces, got %d and %d", header.VertexCount, header.FaceCount)
	}
	if !header.HasNormals || header.NormalIndices != [3]int{3, 4, 5} {
		t.Errorf("Expected normals at indices 3..5, got %v", header.NormalIndices)
	}
	if header.HasTexCoords {
		t.Error("Expected no texture coordinates")
	}
	if len(header.FaceProps) != 2 || !header.FaceProps[0].IsList {
		t.Errorf("Expected list face property followed by flags, got %+v", header.FaceProps)
	}
}

func TestGetTypeSize(t *testing.T) {
	tests := []struct {
		dataType string
		expected int
	}{
		{"float", 4},
		{"float32", 4},
		{"double", 8},
		{"int", 4},
		{"uint", 4},
		{"short", 2},
		{"ushort", 2},
		{"char", 1},
		{"uchar", 1},
		{"unknown", 0},
	}

	for _, tt := range tests {
		t.Run(tt.dataType, func(t *testing.T) {
			if got := getTypeSize(tt.dataType); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestLoadPLY_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.ply")
	if err := os.WriteFile(path, createTestPLY(t, false), 0644); err != nil {
		t.Fatalf("Failed to write PLY: %v", err)
	}

	data, err := LoadMesh(path, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(data.Faces) != 2 {
		t.Errorf("Expected 2 faces, got %d", len(data.Faces))
	}

	if _, err := LoadPLY(filepath.Join(t.TempDir(), "missing.ply")); err == nil {
		t.Error("Expected error for missing file")
	}
}
