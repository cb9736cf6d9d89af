package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds settings shared by the CLI and the web server. Values come
// from the environment, optionally seeded from a .env file; command line
// flags override them.
type Config struct {
	RootDir        string // Directory holding .env
	ScenesDir      string // Directory scanned for JSON scene files
	OutputDir      string // Directory renders are written to
	Workers        int    // Render workers; 0 uses every CPU
	TextureMaxSize int    // Textures are downscaled to fit this size; 0 keeps full size
	ServerAddress  string // Listen address for the web server

	S3 S3Config
}

// S3Config holds object storage settings. Uploads are enabled only when a
// bucket is configured.
type S3Config struct {
	AccessKey string
	SecretKey string
	Endpoint  string
	Region    string
	Bucket    string
	CDNURL    string // Public base URL for uploaded objects
}

// Enabled reports whether enough is configured to upload
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Load reads rootDir/.env, if present, then builds the config from the
// environment. Existing environment variables win over .env entries.
func Load(rootDir string) (*Config, error) {
	if err := godotenv.Load(path.Join(rootDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv(rootDir)
}

// FromEnv builds the config from environment variables only
func FromEnv(rootDir string) (*Config, error) {
	cfg := &Config{
		RootDir:       rootDir,
		ScenesDir:     getEnv("RAYTRACER_SCENES_DIR", "scenes"),
		OutputDir:     getEnv("RAYTRACER_OUTPUT_DIR", "output"),
		ServerAddress: getEnv("RAYTRACER_ADDRESS", ":8080"),
		S3: S3Config{
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Bucket:    os.Getenv("S3_BUCKET"),
			CDNURL:    os.Getenv("CDN_URL"),
		},
	}

	var err error
	if cfg.Workers, err = getEnvInt("RAYTRACER_WORKERS", 0); err != nil {
		return nil, err
	}
	if cfg.TextureMaxSize, err = getEnvInt("RAYTRACER_TEXTURE_MAX_SIZE", 2048); err != nil {
		return nil, err
	}
	if cfg.Workers < 0 || cfg.TextureMaxSize < 0 {
		return nil, fmt.Errorf("RAYTRACER_WORKERS and RAYTRACER_TEXTURE_MAX_SIZE must not be negative")
	}

	return cfg, nil
}

// getEnv returns an environment variable or a fallback when it is unset
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return parsed, nil
}
