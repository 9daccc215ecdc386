package ports

import (
	"context"
	"image"

	"github.com/bft-labs/spreads/internal/domain"
)

// Source is a page already decoded by the worker. Path is kept for adapters
// that hand the image to an external tool.
type Source struct {
	Path  string
	Image image.Image
}

// Size returns the pixel dimensions of the decoded image.
func (s Source) Size() (int, int) {
	b := s.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Detector finds the live content region of a scanned page.
type Detector interface {
	// Name identifies the implementation in logs and reports.
	Name() string

	// Detect returns the content rectangle in original-image pixel space.
	// The rectangle always lies inside the image. When nothing is trimmed
	// away, or the trim is degenerate, the full image rectangle is returned.
	// Errors wrap domain.ErrDetection.
	Detect(ctx context.Context, src Source) (domain.Rect, error)
}
