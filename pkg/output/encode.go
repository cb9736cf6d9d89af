package output

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/df07/go-phong-raytracer/pkg/renderer"
)

// Formats handled directly; everything else goes through imaging
const (
	FormatRaw = "raw"
	FormatPPM = "ppm"
	FormatPNG = "png"
)

// ErrBufferSize is returned when a pixel buffer does not match its dimensions
var ErrBufferSize = errors.New("pixel buffer does not match image size")

var contentTypes = map[string]string{
	FormatRaw: "application/octet-stream",
	FormatPPM: "image/x-portable-pixmap",
	FormatPNG: "image/png",
	"jpg":     "image/jpeg",
	"jpeg":    "image/jpeg",
	"gif":     "image/gif",
	"tif":     "image/tiff",
	"tiff":    "image/tiff",
	"bmp":     "image/bmp",
}

// FormatFromPath returns the lower-case extension of path without its dot
func FormatFromPath(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ContentType returns the MIME type for a format
func ContentType(format string) string {
	if ct, ok := contentTypes[strings.ToLower(format)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ToImage wraps an RGB pixel buffer, as produced by the renderer, in an image
func ToImage(pixels []byte, width, height int) (*image.NRGBA, error) {
	if err := checkSize(pixels, width, height); err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		src := pixels[i*renderer.BytesPerPixel:]
		dst := img.Pix[i*4:]
		dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], 255
	}
	return img, nil
}

// Encode writes an RGB pixel buffer in the given format: raw bytes, binary
// PPM, or any format imaging can encode (png, jpg, gif, tif, bmp)
func Encode(w io.Writer, pixels []byte, width, height int, format string) error {
	if err := checkSize(pixels, width, height); err != nil {
		return err
	}

	switch strings.ToLower(format) {
	case FormatRaw:
		_, err := w.Write(pixels)
		return err
	case FormatPPM:
		return encodePPM(w, pixels, width, height)
	}

	imgFormat, err := imaging.FormatFromExtension(format)
	if err != nil {
		return fmt.Errorf("unsupported output format %q: %w", format, err)
	}
	img, err := ToImage(pixels, width, height)
	if err != nil {
		return err
	}
	return imaging.Encode(w, img, imgFormat, imaging.JPEGQuality(95))
}

// Save writes an RGB pixel buffer to a file, choosing the format from the
// file extension. Missing parent directories are created.
func Save(path string, pixels []byte, width, height int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := bufio.NewWriter(file)
	if err := Encode(w, pixels, width, height, FormatFromPath(path)); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// encodePPM writes a binary P6 image with an 8-bit channel depth
func encodePPM(w io.Writer, pixels []byte, width, height int) error {
	if _, err := fmt.Fprintf(w, "P6\n%d %d\n255\n", width, height); err != nil {
		return err
	}
	_, err := w.Write(pixels)
	return err
}

func checkSize(pixels []byte, width, height int) error {
	if width <= 0 || height <= 0 || len(pixels) != width*height*renderer.BytesPerPixel {
		return fmt.Errorf("%w: %d bytes for %dx%d", ErrBufferSize, len(pixels), width, height)
	}
	return nil
}
