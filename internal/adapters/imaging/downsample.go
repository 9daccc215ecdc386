package imaging

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Downsample returns a grayscale copy of img shrunk by factor in both
// dimensions. The result is anchored at (0,0).
func Downsample(img image.Image, factor int) (*image.Gray, error) {
	if factor < 1 {
		return nil, fmt.Errorf("reduce factor must be >= 1, got %d", factor)
	}
	b := img.Bounds()
	w, h := b.Dx()/factor, b.Dy()/factor
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("image %dx%d too small for reduce factor %d", b.Dx(), b.Dy(), factor)
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	if factor == 1 {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst, nil
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}
