package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/loaders"
	"github.com/df07/go-phong-raytracer/pkg/material"
	"github.com/df07/go-phong-raytracer/pkg/renderer"
)

// Defaults for scene files that omit image settings
const (
	DefaultWidth       = 640
	DefaultHeight      = 360
	DefaultHFovDegrees = 60
)

// LoadOptions controls how external assets referenced by a scene are loaded
type LoadOptions struct {
	TexturePath    string      // Texture for the earth scene; empty uses a checkerboard
	MeshPath       string      // Model for the mesh scene; empty uses a pyramid
	TextureMaxSize int         // Downscale textures larger than this; 0 keeps full size
	Logger         core.Logger // Defaults to a no-op logger
}

// LoadFileScene loads a JSON scene file together with the meshes and
// textures it references
func LoadFileScene(path string, options LoadOptions) (*Scene, error) {
	sf, err := loaders.LoadSceneFile(path)
	if err != nil {
		return nil, err
	}
	return NewFileScene(sf, options)
}

// NewFileScene builds a scene from a decoded scene file
func NewFileScene(sf *loaders.SceneFile, options LoadOptions) (*Scene, error) {
	if options.Logger == nil {
		options.Logger = core.NopLogger{}
	}

	up := core.NewVec3(0, 1, 0)
	if sf.Camera.Up != nil {
		up = sf.Camera.Up.Vec3()
	}
	camera := renderer.NewCamera(sf.Camera.Origin.Vec3(), sf.Camera.LookAt.Vec3(), up)

	config := RenderConfig{
		Width:       sf.Width,
		Height:      sf.Height,
		HFovDegrees: sf.HFov,
	}
	if config.Width == 0 {
		config.Width = DefaultWidth
	}
	if config.Height == 0 {
		config.Height = DefaultHeight
	}
	if config.HFovDegrees == 0 {
		config.HFovDegrees = DefaultHFovDegrees
	}

	s := NewScene(camera, config)
	if sf.MaxDepth != nil {
		s.MaxDepth = *sf.MaxDepth
	}
	if sf.Background != nil {
		s.Background = sf.Background.Vec3()
	}

	b := &fileSceneBuilder{
		file:     sf,
		options:  options,
		shadings: make(map[string]*material.Phong),
		textures: make(map[string]*material.ImageTexture),
	}

	for i, spec := range sf.Shapes {
		shape, err := b.buildShape(spec)
		if err != nil {
			return nil, fmt.Errorf("shape %d (%s): %w", i, spec.Type, err)
		}
		s.Shapes = append(s.Shapes, shape)
	}

	for _, light := range sf.Lights {
		s.AddPointLight(light.Position.Vec3(), light.Color.Vec3())
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// fileSceneBuilder resolves named materials and caches loaded textures
type fileSceneBuilder struct {
	file     *loaders.SceneFile
	options  LoadOptions
	shadings map[string]*material.Phong
	textures map[string]*material.ImageTexture
}

func (b *fileSceneBuilder) buildShape(spec loaders.ShapeSpec) (geometry.Shape, error) {
	shading, err := b.shading(spec.Material)
	if err != nil {
		return nil, err
	}

	switch spec.Type {
	case "sphere":
		return geometry.NewSphere(spec.Center.Vec3(), spec.Radius, shading)
	case "plane":
		normal := spec.Normal.Vec3()
		if normal.IsNearZero() {
			return nil, fmt.Errorf("plane normal must be non-zero")
		}
		return geometry.NewPlane(normal, spec.Distance, shading), nil
	case "triangle":
		v := spec.Vertices
		return geometry.NewTriangle(v[0].Vec3(), v[1].Vec3(), v[2].Vec3(), shading), nil
	case "mesh":
		if spec.File == "" {
			return nil, fmt.Errorf("mesh needs a file")
		}
		data, err := loaders.LoadMesh(b.file.ResolvePath(spec.File), b.options.Logger)
		if err != nil {
			return nil, err
		}
		return geometry.NewTriangleMesh(data, shading, meshTransform(spec.Transform))
	default:
		return nil, fmt.Errorf("unknown shape type %q", spec.Type)
	}
}

// shading returns the named material; an empty name gives a shape with no
// shading, which renders black
func (b *fileSceneBuilder) shading(name string) (*material.Phong, error) {
	if name == "" {
		return nil, nil
	}
	if shading, ok := b.shadings[name]; ok {
		return shading, nil
	}

	spec, ok := b.file.Materials[name]
	if !ok {
		return nil, fmt.Errorf("unknown material %q", name)
	}

	var color material.ColorSource = material.NoColor{}
	switch {
	case spec.Texture != "":
		texture, err := b.texture(spec.Texture)
		if err != nil {
			return nil, err
		}
		color = texture
	case spec.Color != nil:
		color = material.NewSolidColor(spec.Color.Vec3())
	}

	shading := material.NewPhong(color, spec.Ks, spec.Kd, spec.Ka, spec.Alpha)
	if err := shading.Validate(); err != nil {
		return nil, fmt.Errorf("material %q: %w", name, err)
	}
	b.shadings[name] = shading
	return shading, nil
}

func (b *fileSceneBuilder) texture(path string) (*material.ImageTexture, error) {
	path = b.file.ResolvePath(path)
	if texture, ok := b.textures[path]; ok {
		return texture, nil
	}
	texture, err := loaders.LoadTexture(path, b.options.TextureMaxSize)
	if err != nil {
		return nil, err
	}
	b.options.Logger.Printf("Loaded texture %s: %dx%d\n", path, texture.Width, texture.Height)
	b.textures[path] = texture
	return texture, nil
}

// meshTransform converts a file transform, with rotation in degrees, to a
// geometry transform
func meshTransform(spec *loaders.TransformSpec) *geometry.MeshTransform {
	if spec == nil {
		return nil
	}
	transform := &geometry.MeshTransform{
		Rotation: core.NewVec3(
			mgl64.DegToRad(spec.Rotation[0]),
			mgl64.DegToRad(spec.Rotation[1]),
			mgl64.DegToRad(spec.Rotation[2]),
		),
		Translation: spec.Translation.Vec3(),
	}
	if spec.Scale != nil {
		transform.Scale = spec.Scale.Vec3()
	}
	return transform
}
