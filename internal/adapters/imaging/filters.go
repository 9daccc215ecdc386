package imaging

import (
	"image"

	"github.com/bft-labs/spreads/internal/domain"
)

// Normalize stretches the gray levels of g to the full 0..255 range in
// place. Uniform images are left untouched.
func Normalize(g *image.Gray) {
	lo, hi := uint8(255), uint8(0)
	for _, p := range g.Pix {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if hi <= lo {
		return
	}
	span := int(hi - lo)
	for i, p := range g.Pix {
		g.Pix[i] = uint8(int(p-lo) * 255 / span)
	}
}

// OtsuThreshold picks the threshold that best separates g into two classes.
func OtsuThreshold(g *image.Gray) uint8 {
	var hist [256]int
	for _, p := range g.Pix {
		hist[p]++
	}
	total := len(g.Pix)
	if total == 0 {
		return 128
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}

	var sumB, best float64
	var wB int
	threshold := uint8(128)
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(t)
		}
	}
	return threshold
}

// Binarize quantizes g to black and white in place. Pixels above t become
// white.
func Binarize(g *image.Gray, t uint8) {
	for i, p := range g.Pix {
		if p > t {
			g.Pix[i] = 255
		} else {
			g.Pix[i] = 0
		}
	}
}

// BoxBlur returns g blurred with a (2r+1)² box kernel. Pixels outside the
// image repeat the nearest edge pixel.
func BoxBlur(g *image.Gray, r int) *image.Gray {
	if r <= 0 {
		return g
	}
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	tmp := make([]int, w*h)
	n := 2*r + 1

	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for x := 0; x < w; x++ {
			s := 0
			for k := -r; k <= r; k++ {
				s += int(row[clampInt(x+k, 0, w-1)])
			}
			tmp[y*w+x] = s
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s := 0
			for k := -r; k <= r; k++ {
				s += tmp[clampInt(y+k, 0, h-1)*w+x]
			}
			out.Pix[y*out.Stride+x] = uint8(s / (n * n))
		}
	}
	return out
}

// Trim finds the smallest rectangle holding every pixel whose value differs
// from the top-left background pixel by more than fuzz (a fraction of the
// full range). ok is false when the whole image matches the background.
func Trim(g *image.Gray, fuzz float64) (r domain.Rect, ok bool) {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return domain.Rect{}, false
	}
	bg := int(g.Pix[0])
	tol := int(fuzz * 255)

	minX, minY, maxX, maxY := w, h, -1, -1
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for x, p := range row {
			d := int(p) - bg
			if d < 0 {
				d = -d
			}
			if d <= tol {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			maxY = y
		}
	}
	if maxX < 0 {
		return domain.Rect{}, false
	}
	return domain.Rect{Left: minX, Top: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}, true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
