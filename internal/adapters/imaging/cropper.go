package imaging

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/bft-labs/spreads/internal/domain"
	"github.com/bft-labs/spreads/internal/ports"
)

// Cropper is the pure Go crop worker.
type Cropper struct {
	jpegQuality int
}

// NewCropper creates a crop worker writing JPEG output at the given quality.
func NewCropper(jpegQuality int) *Cropper {
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	return &Cropper{jpegQuality: jpegQuality}
}

// Open decodes a full-resolution page.
func (c *Cropper) Open(path string) (image.Image, error) {
	return Open(path)
}

// Apply writes the rect region of img to outputPath through a temporary file
// in the same directory, renamed into place once fully written.
func (c *Cropper) Apply(ctx context.Context, img image.Image, rect domain.Rect, outputPath string) (err error) {
	b := img.Bounds()
	if !rect.Within(b.Dx(), b.Dy()) {
		return fmt.Errorf("crop %s outside %dx%d image", rect, b.Dx(), b.Dy())
	}
	encode, err := encoderFor(outputPath, c.jpegQuality)
	if err != nil {
		return err
	}

	region := subImage(img, rect.Image(b.Min))

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = encode(bw, region); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(outputPath), err)
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, outputPath)
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// subImage shares pixels when the concrete type allows it and copies
// otherwise.
func subImage(img image.Image, r image.Rectangle) image.Image {
	if s, ok := img.(subImager); ok {
		return s.SubImage(r)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

var _ ports.Cropper = (*Cropper)(nil)
