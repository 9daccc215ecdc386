//go:build gocv

package cv

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/bft-labs/spreads/internal/domain"
	"github.com/bft-labs/spreads/internal/ports"
)

func page(w, h int, content image.Rectangle) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.Gray{Y: 230}
			if image.Pt(x, y).In(content) {
				c = color.Gray{Y: 30}
			}
			img.SetGray(x, y, c)
		}
	}
	return img
}

func TestDetector_FindsContentWithinImage(t *testing.T) {
	img := page(800, 1200, image.Rect(80, 120, 720, 1080))

	got, err := NewDetector(Config{ReduceFactor: 4}).Detect(context.Background(), ports.Source{Image: img})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if !got.Within(800, 1200) {
		t.Fatalf("Detect() = %v outside image", got)
	}
	if got == domain.Full(800, 1200) {
		t.Errorf("Detect() = full rect, want the content box")
	}
}

func TestDetector_FailuresAreDetectionErrors(t *testing.T) {
	img := page(3, 3, image.Rect(1, 1, 2, 2))

	_, err := NewDetector(Config{ReduceFactor: 4}).Detect(context.Background(), ports.Source{Image: img})
	if !errors.Is(err, domain.ErrDetection) {
		t.Fatalf("Detect() error = %v, want ErrDetection", err)
	}
}
