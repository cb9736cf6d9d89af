package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-phong-raytracer/pkg/config"
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/output"
	"github.com/df07/go-phong-raytracer/pkg/renderer"
	"github.com/df07/go-phong-raytracer/pkg/scene"
)

// cliOptions holds the parsed command line
type cliOptions struct {
	Scene   string
	Width   int
	Height  int
	FovDeg  float64
	Depth   int
	Workers int
	Output  string
	Linear  bool
	Texture string
	Mesh    string
	Upload  bool
	List    bool
	Help    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, renderer.NewDefaultLogger()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses args, renders the selected scene and writes the result. Loader
// and renderer progress goes to logger.
func run(ctx context.Context, args []string, stdout io.Writer, logger core.Logger) error {
	cfg, err := config.Load(getEnv("RAYTRACER_ROOT_DIR", "."))
	if err != nil {
		return err
	}

	opts, fs, err := parseFlags(args, cfg, stdout)
	if err != nil {
		return err
	}

	if opts.Help {
		printHelp(stdout, fs)
		return nil
	}
	if opts.List {
		return listScenes(stdout, cfg.ScenesDir, logger)
	}

	fmt.Fprintln(stdout, "Starting Phong Raytracer...")

	// Create scene based on command line argument
	sceneObj, err := createScene(opts.Scene, cfg, scene.LoadOptions{
		TexturePath:    opts.Texture,
		MeshPath:       opts.Mesh,
		TextureMaxSize: cfg.TextureMaxSize,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	if opts.Depth >= 0 {
		sceneObj.MaxDepth = opts.Depth
	}

	r, err := sceneObj.NewRenderer(
		scene.RenderConfig{Width: opts.Width, Height: opts.Height, HFovDegrees: opts.FovDeg},
		renderer.Options{Workers: opts.Workers, Linear: opts.Linear, Logger: logger},
	)
	if err != nil {
		return err
	}

	pixels, stats, err := r.RenderContext(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Render completed in %v (%d primitives, %.0f pixels/s)\n",
		stats.Duration, sceneObj.GetPrimitiveCount(), stats.PixelsPerSecond())

	filename := opts.Output
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = filepath.Join(createOutputDir(cfg.OutputDir, opts.Scene), fmt.Sprintf("render_%s.png", timestamp))
	}
	if err := output.Save(filename, pixels, r.Width(), r.Height()); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Render saved as %s\n", filename)

	if opts.Upload {
		return uploadRender(ctx, cfg, logger, filename, sceneName(opts.Scene), stdout)
	}
	return nil
}

func parseFlags(args []string, cfg *config.Config, stdout io.Writer) (*cliOptions, *flag.FlagSet, error) {
	opts := &cliOptions{}
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(stdout)

	fs.StringVar(&opts.Scene, "scene", "default", "Scene: built-in name, scene file name in the scenes directory, or path to a .json file")
	fs.IntVar(&opts.Width, "width", 0, "Image width (0 uses the scene default)")
	fs.IntVar(&opts.Height, "height", 0, "Image height (0 uses the scene default)")
	fs.Float64Var(&opts.FovDeg, "fov", 0, "Horizontal field of view in degrees (0 uses the scene default)")
	fs.IntVar(&opts.Depth, "depth", -1, "Maximum reflection depth (-1 uses the scene default)")
	fs.IntVar(&opts.Workers, "workers", cfg.Workers, "Number of render workers (0 uses all CPUs)")
	fs.StringVar(&opts.Output, "output", "", "Output file; the extension picks the format (png, jpg, gif, tif, bmp, ppm, raw)")
	fs.BoolVar(&opts.Linear, "linear", false, "Write linear color values instead of sRGB")
	fs.StringVar(&opts.Texture, "texture", "", "Texture image for the earth scene")
	fs.StringVar(&opts.Mesh, "mesh", "", "OBJ, PLY or STL model for the mesh scene")
	fs.BoolVar(&opts.Upload, "upload", false, "Upload the render to S3 (needs S3_* settings)")
	fs.BoolVar(&opts.List, "list", false, "List available scenes")
	fs.BoolVar(&opts.Help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() > 0 {
		return nil, nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, fs, nil
}

func printHelp(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Phong Raytracer")
	fmt.Fprintln(w, "Usage: raytracer [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available scenes:")
	for _, info := range scene.BuiltInScenes() {
		fmt.Fprintf(w, "  %-8s - %s\n", info.ID, info.Description)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output will be saved to output/<scene>/render_<timestamp>.png")
}

func listScenes(w io.Writer, scenesDir string, logger core.Logger) error {
	response, err := scene.ListAllScenes(scenesDir, logger)
	if err != nil {
		return err
	}
	for _, group := range response.Groups {
		fmt.Fprintf(w, "%s:\n", group.Name)
		for _, info := range group.Scenes {
			id := info.ID
			if info.Type == "file" {
				id = info.FilePath
			}
			fmt.Fprintf(w, "  %-24s %s\n", id, info.Name)
		}
	}
	return nil
}

// createScene resolves a scene argument. Built-in names win; otherwise the
// argument is a .json path or the name of a file in the scenes directory.
func createScene(sceneType string, cfg *config.Config, options scene.LoadOptions) (*scene.Scene, error) {
	for _, info := range scene.BuiltInScenes() {
		if info.ID == sceneType {
			return scene.LoadScene(sceneType, options)
		}
	}

	path := sceneType
	if !strings.HasSuffix(strings.ToLower(path), ".json") {
		path = filepath.Join(cfg.ScenesDir, sceneType+".json")
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", scene.ErrUnknownScene, sceneType)
		}
		return nil, err
	}
	return scene.LoadScene("file:"+path, options)
}

// sceneName returns a short name for a scene argument, used for output paths
func sceneName(sceneType string) string {
	base := filepath.Base(sceneType)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// createOutputDir returns the directory renders of a scene are written to
func createOutputDir(root, sceneType string) string {
	return filepath.Join(root, sceneName(sceneType))
}

func uploadRender(ctx context.Context, cfg *config.Config, logger core.Logger, filename, name string, stdout io.Writer) error {
	uploader, err := output.NewS3Uploader(cfg.S3, logger)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	key := name + "/" + filepath.Base(filename)
	if err := uploader.Upload(ctx, key, data, output.ContentType(output.FormatFromPath(filename))); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Render uploaded to %s\n", uploader.URL(key))
	return nil
}

// getEnv returns an environment variable or a fallback when it is unset
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
