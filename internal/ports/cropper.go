package ports

import (
	"context"
	"image"

	"github.com/bft-labs/spreads/internal/domain"
)

// Cropper opens full-resolution pages and writes cropped copies.
type Cropper interface {
	// Open decodes the page at path.
	Open(path string) (image.Image, error)

	// Apply writes the rect region of img to outputPath. The parent
	// directory must exist. No partial file is left behind on failure.
	Apply(ctx context.Context, img image.Image, rect domain.Rect, outputPath string) error
}
