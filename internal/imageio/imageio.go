// Package imageio loads plate scan images for annotation and suggestion.
package imageio

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"plate-annotator/pkg/geometry"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

var supportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff"}

// PlateImage holds a decoded plate scan plus its source path. The plate
// layout is expressed in this image's pixel space, untouched by any
// display scaling.
type PlateImage struct {
	Path  string
	Image image.Image
}

// Load decodes a plate scan from disk.
func Load(path string) (*PlateImage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &PlateImage{Path: path, Image: img}, nil
}

// Width returns the image width in pixels.
func (p *PlateImage) Width() int {
	if p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (p *PlateImage) Height() int {
	if p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dy()
}

// Size returns the image dimensions.
func (p *PlateImage) Size() geometry.Size {
	return geometry.Size{Width: float64(p.Width()), Height: float64(p.Height())}
}

// PlateID derives the plate identifier from the image filename.
func (p *PlateImage) PlateID() string {
	base := filepath.Base(p.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range supportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// SupportedFormats returns the recognized image file extensions.
func SupportedFormats() []string {
	out := make([]string, len(supportedExtensions))
	copy(out, supportedExtensions)
	return out
}
