package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/loaders"
)

// ErrUnknownScene is returned by LoadScene for unrecognized scene IDs
var ErrUnknownScene = errors.New("unknown scene")

const (
	builtInGroup = "Built-in Scenes"
	fileGroup    = "Scene Files"
	filePrefix   = "file:"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to JSON file (file type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// BuiltInScenes lists the scenes compiled into the program
func BuiltInScenes() []SceneInfo {
	return []SceneInfo{
		{
			ID:          "default",
			Name:        "Two Balls",
			Description: "A matte and a glossy ball on a green floor",
			Group:       builtInGroup,
			Type:        "builtin",
		},
		{
			ID:          "earth",
			Name:        "Earth",
			Description: "Textured globe and mirror ball in a three-walled room",
			Group:       builtInGroup,
			Type:        "builtin",
		},
		{
			ID:          "mesh",
			Name:        "Triangle Mesh",
			Description: "OBJ, PLY or STL model on a reflective floor",
			Group:       builtInGroup,
			Type:        "builtin",
		},
		{
			ID:          "cornell",
			Name:        "Cornell Box",
			Description: "Cornell box with a mirror sphere and a matte sphere",
			Group:       builtInGroup,
			Type:        "builtin",
		},
	}
}

// LoadScene creates a scene by ID. Built-in IDs are listed by BuiltInScenes;
// "file:<path>" loads a JSON scene file.
func LoadScene(id string, options LoadOptions) (*Scene, error) {
	if options.Logger == nil {
		options.Logger = core.NopLogger{}
	}

	if path, ok := strings.CutPrefix(id, filePrefix); ok {
		return LoadFileScene(path, options)
	}

	switch id {
	case "default", "":
		return NewDefaultScene(), nil
	case "earth":
		if options.TexturePath == "" {
			return NewTextureScene(nil), nil
		}
		texture, err := loaders.LoadTexture(options.TexturePath, options.TextureMaxSize)
		if err != nil {
			return nil, err
		}
		return NewTextureScene(texture), nil
	case "mesh":
		if options.MeshPath == "" {
			return NewTriangleMeshScene(nil)
		}
		data, err := loaders.LoadMesh(options.MeshPath, options.Logger)
		if err != nil {
			return nil, err
		}
		return NewTriangleMeshScene(data)
	case "cornell":
		return NewCornellScene(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
}

// ListFileScenes scans dir for JSON scene files. A missing directory yields
// an empty list.
func ListFileScenes(dir string, logger core.Logger) ([]SceneInfo, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		sf, err := loaders.LoadSceneFile(filePath)
		if err != nil {
			// Log warning but continue processing other files
			logger.Printf("Warning: skipping scene %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, fileSceneInfo(filePath, sf))
	}

	// Sort scenes by name
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})

	return scenes, nil
}

// fileSceneInfo builds metadata for a scene file, falling back to the file
// name when the scene has none
func fileSceneInfo(filePath string, sf *loaders.SceneFile) SceneInfo {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	info := SceneInfo{
		ID:          filePrefix + filePath,
		Name:        sf.Name,
		Description: sf.Description,
		Group:       sf.Group,
		Type:        "file",
		FilePath:    filePath,
	}
	if info.Name == "" {
		info.Name = titleCase(base)
	}
	if info.Group == "" {
		info.Group = fileGroup
	}
	return info
}

// ListAllScenes returns built-in scenes and the scene files in dir, grouped
// by category with built-in scenes first
func ListAllScenes(dir string, logger core.Logger) (ScenesResponse, error) {
	var response ScenesResponse

	fileScenes, err := ListFileScenes(dir, logger)
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}

	allScenes := append(BuiltInScenes(), fileScenes...)

	// Group scenes by their Group field
	groupMap := make(map[string][]SceneInfo)
	for _, scene := range allScenes {
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}

	// Other groups follow alphabetically
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtInGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	response.Groups = append(response.Groups, SceneGroup{
		Name:   builtInGroup,
		Scenes: groupMap[builtInGroup],
	})
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Title case each word
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
