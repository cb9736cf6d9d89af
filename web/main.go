package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-phong-raytracer/pkg/config"
	"github.com/df07/go-phong-raytracer/pkg/output"
	"github.com/df07/go-phong-raytracer/web/server"
)

// getEnv returns an environment variable or a fallback when it is unset
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func main() {
	cfg, err := config.Load(getEnv("RAYTRACER_ROOT_DIR", "."))
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Parse command line flags
	flag.StringVar(&cfg.ServerAddress, "addr", cfg.ServerAddress, "Address to serve on")
	flag.StringVar(&cfg.ScenesDir, "scenes", cfg.ScenesDir, "Directory with JSON scene files")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Render workers per request (0 uses all CPUs)")
	flag.Parse()

	var uploader server.Uploader
	if cfg.S3.Enabled() {
		s3Uploader, err := output.NewS3Uploader(cfg.S3, log.Default())
		if err != nil {
			log.Fatalf("Failed to create S3 uploader: %v", err)
		}
		uploader = s3Uploader
		log.Printf("Uploads enabled to bucket %s", cfg.S3.Bucket)
	}

	webServer := server.NewServer(cfg, uploader)

	log.Printf("Phong Raytracer Web Server")
	log.Printf("Visit http://localhost%s to start rendering", cfg.ServerAddress)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
