package loaders

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/material"
)

// LoadTexture loads a PNG, JPEG, GIF, TIFF or BMP image as a texture. EXIF
// orientation is applied. When maxSize > 0, images larger than maxSize on
// either side are downscaled to fit, preserving aspect ratio.
func LoadTexture(filename string, maxSize int) (*material.ImageTexture, error) {
	img, err := imaging.Open(filename, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load texture %q: %w", filename, err)
	}
	return NewTextureFromImage(img, maxSize), nil
}

// DecodeTexture decodes a texture from a reader, like LoadTexture
func DecodeTexture(r io.Reader, maxSize int) (*material.ImageTexture, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture: %w", err)
	}
	return NewTextureFromImage(img, maxSize), nil
}

// NewTextureFromImage converts an sRGB image to a linear row-major texture
// with row 0 at the top
func NewTextureFromImage(img image.Image, maxSize int) *material.ImageTexture {
	bounds := img.Bounds()
	if maxSize > 0 && (bounds.Dx() > maxSize || bounds.Dy() > maxSize) {
		img = resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Lanczos3)
	}

	// Normalize to NRGBA so pixels can be read without per-pixel interface calls
	nrgba := imaging.Clone(img)
	width := nrgba.Bounds().Dx()
	height := nrgba.Bounds().Dy()
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		for x := 0; x < width; x++ {
			p := row[x*4 : x*4+3]
			pixels[y*width+x] = core.NewVec3(
				srgbToLinear(float64(p[0])/255),
				srgbToLinear(float64(p[1])/255),
				srgbToLinear(float64(p[2])/255),
			)
		}
	}

	return material.NewImageTexture(width, height, pixels)
}

// srgbToLinear inverts the sRGB transfer function for a channel in [0, 1]
func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}
