package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format      string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version     string // Usually "1.0"
	VertexCount int
	FaceCount   int
	VertexProps []PLYProperty
	FaceProps   []PLYProperty

	// Property detection flags
	HasNormals   bool
	HasTexCoords bool

	// Property indices for efficient access
	PositionIndices [3]int // Indices of x, y, z properties
	NormalIndices   [3]int // Indices of nx, ny, nz properties
	TexCoordIndices [2]int // Indices of u, v or s, t properties
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// LoadPLY loads an ASCII or binary little-endian PLY file. Polygonal faces
// are fan-triangulated.
func LoadPLY(filename string) (*geometry.MeshData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	return ReadPLY(file)
}

// ReadPLY parses PLY data from a reader
func ReadPLY(r io.Reader) (*geometry.MeshData, error) {
	reader := bufio.NewReaderSize(r, 1024*1024) // 1MB buffer

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var source plyValueSource
	switch header.Format {
	case "ascii":
		source = &asciiSource{reader: reader}
	case "binary_little_endian":
		source = &binarySource{reader: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		source = &binarySource{reader: reader, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("%w: PLY format %q", ErrUnsupportedFormat, header.Format)
	}

	data, err := readPLYBody(source, header)
	if err != nil {
		return nil, fmt.Errorf("failed to read PLY data: %w", err)
	}
	return data, nil
}

// parsePLYHeader parses the PLY header up to and including end_header
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	var currentElement string
	positions := 0

	for lineNumber := 1; ; lineNumber++ {
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return nil, fmt.Errorf("unexpected end of header at line %d", lineNumber)
		}
		line = strings.TrimSpace(line)

		if lineNumber == 1 {
			if line != "ply" {
				return nil, fmt.Errorf("missing ply magic number")
			}
			continue
		}
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid format line: %q", line)
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
			// Ignore comments
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line: %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}

			currentElement = parts[1]
			switch currentElement {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			default:
				if count > 0 {
					return nil, fmt.Errorf("%w: PLY element %q", ErrUnsupportedFormat, currentElement)
				}
			}
		case "property":
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to parse property: %w", err)
			}

			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
				propIndex := len(header.VertexProps) - 1

				switch prop.Name {
				case "x":
					header.PositionIndices[0] = propIndex
					positions++
				case "y":
					header.PositionIndices[1] = propIndex
					positions++
				case "z":
					header.PositionIndices[2] = propIndex
					positions++
				case "nx":
					header.HasNormals = true
					header.NormalIndices[0] = propIndex
				case "ny":
					header.NormalIndices[1] = propIndex
				case "nz":
					header.NormalIndices[2] = propIndex
				case "u", "s", "texture_u":
					header.HasTexCoords = true
					header.TexCoordIndices[0] = propIndex
				case "v", "t", "texture_v":
					header.TexCoordIndices[1] = propIndex
				}
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		default:
			return nil, fmt.Errorf("unknown header keyword %q", parts[0])
		}
	}

	if header.Format == "" {
		return nil, fmt.Errorf("missing format line")
	}
	if positions != 3 {
		return nil, fmt.Errorf("vertex element needs x, y and z properties")
	}
	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("invalid property definition")
	}

	prop := PLYProperty{}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("invalid list property definition")
		}
		prop.IsList = true
		prop.ListType = parts[1]
		prop.DataType = parts[2]
		prop.Name = parts[3]
		if getTypeSize(prop.ListType) == 0 || getTypeSize(prop.DataType) == 0 {
			return PLYProperty{}, fmt.Errorf("unsupported list types %s %s", prop.ListType, prop.DataType)
		}
	} else {
		prop.Type = parts[0]
		prop.Name = parts[1]
		if getTypeSize(prop.Type) == 0 {
			return PLYProperty{}, fmt.Errorf("unsupported data type: %s", prop.Type)
		}
	}

	return prop, nil
}

// plyValueSource yields successive scalar values of the PLY body
type plyValueSource interface {
	next(dataType string) (float64, error)
}

type asciiSource struct {
	reader *bufio.Reader
	tokens []string
}

func (s *asciiSource) next(dataType string) (float64, error) {
	for len(s.tokens) == 0 {
		line, err := s.reader.ReadString('\n')
		if line == "" && err != nil {
			return 0, io.ErrUnexpectedEOF
		}
		s.tokens = strings.Fields(line)
	}
	token := s.tokens[0]
	s.tokens = s.tokens[1:]

	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", dataType, token)
	}
	return value, nil
}

type binarySource struct {
	reader *bufio.Reader
	order  binary.ByteOrder
	buf    [8]byte
}

func (s *binarySource) next(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	b := s.buf[:size]
	if _, err := io.ReadFull(s.reader, b); err != nil {
		return 0, io.ErrUnexpectedEOF
	}

	switch dataType {
	case "float", "float32":
		return float64(math.Float32frombits(s.order.Uint32(b))), nil
	case "double", "float64":
		return math.Float64frombits(s.order.Uint64(b)), nil
	case "int", "int32":
		return float64(int32(s.order.Uint32(b))), nil
	case "uint", "uint32":
		return float64(s.order.Uint32(b)), nil
	case "short", "int16":
		return float64(int16(s.order.Uint16(b))), nil
	case "ushort", "uint16":
		return float64(s.order.Uint16(b)), nil
	case "char", "int8":
		return float64(int8(b[0])), nil
	default: // uchar, uint8
		return float64(b[0]), nil
	}
}

// readPLYBody reads vertex and face elements in header order
func readPLYBody(source plyValueSource, header *PLYHeader) (*geometry.MeshData, error) {
	data := &geometry.MeshData{
		Vertices: make([]core.Vec3, 0, header.VertexCount),
		Faces:    make([]geometry.MeshFace, 0, header.FaceCount),
	}
	if header.HasNormals {
		data.Normals = make([]core.Vec3, 0, header.VertexCount)
	}
	if header.HasTexCoords {
		data.UVs = make([]core.Vec2, 0, header.VertexCount)
	}

	values := make([]float64, len(header.VertexProps))
	for i := 0; i < header.VertexCount; i++ {
		for j, prop := range header.VertexProps {
			if prop.IsList {
				if err := skipList(source, prop); err != nil {
					return nil, fmt.Errorf("vertex %d: %w", i, err)
				}
				continue
			}
			v, err := source.next(prop.Type)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
			values[j] = v
		}

		p := header.PositionIndices
		data.Vertices = append(data.Vertices, core.NewVec3(values[p[0]], values[p[1]], values[p[2]]))
		if header.HasNormals {
			n := header.NormalIndices
			data.Normals = append(data.Normals, core.NewVec3(values[n[0]], values[n[1]], values[n[2]]))
		}
		if header.HasTexCoords {
			uv := header.TexCoordIndices
			data.UVs = append(data.UVs, core.NewVec2(values[uv[0]], values[uv[1]]))
		}
	}

	for i := 0; i < header.FaceCount; i++ {
		for _, prop := range header.FaceProps {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if err := skipProperty(source, prop); err != nil {
					return nil, fmt.Errorf("face %d: %w", i, err)
				}
				continue
			}

			indices, err := readList(source, prop)
			if err != nil {
				return nil, fmt.Errorf("face %d: %w", i, err)
			}
			if len(indices) < 3 {
				return nil, fmt.Errorf("face %d has %d vertices, need at least 3", i, len(indices))
			}
			for _, idx := range indices {
				if idx < 0 || idx >= header.VertexCount {
					return nil, fmt.Errorf("face %d references vertex %d of %d", i, idx, header.VertexCount)
				}
			}

			// PLY shares one index space for positions and attributes
			for k := 1; k+1 < len(indices); k++ {
				face := geometry.NewFace(indices[0], indices[k], indices[k+1])
				if header.HasNormals {
					face.Normals = face.Vertices
				}
				if header.HasTexCoords {
					face.UVs = face.Vertices
				}
				data.Faces = append(data.Faces, face)
			}
		}
	}

	return data, nil
}

// readList reads a list property as integers
func readList(source plyValueSource, prop PLYProperty) ([]int, error) {
	count, err := source.next(prop.ListType)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("negative list length %v", count)
	}
	items := make([]int, int(count))
	for k := range items {
		v, err := source.next(prop.DataType)
		if err != nil {
			return nil, err
		}
		items[k] = int(v)
	}
	return items, nil
}

// skipProperty skips a property in the body
func skipProperty(source plyValueSource, prop PLYProperty) error {
	if prop.IsList {
		return skipList(source, prop)
	}
	_, err := source.next(prop.Type)
	return err
}

func skipList(source plyValueSource, prop PLYProperty) error {
	_, err := readList(source, prop)
	return err
}

// getTypeSize returns the size in bytes of a PLY data type, or 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "float", "float32", "int", "int32", "uint", "uint32":
		return 4
	case "double", "float64":
		return 8
	case "short", "int16", "ushort", "uint16":
		return 2
	case "char", "int8", "uchar", "uint8":
		return 1
	default:
		return 0
	}
}
