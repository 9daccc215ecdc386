package imaging

import (
	"context"
	"fmt"

	"github.com/bft-labs/spreads/internal/domain"
	"github.com/bft-labs/spreads/internal/ports"
)

// Detection defaults.
const (
	DefaultReduceFactor = 4
	DefaultFuzz         = 0.25
	DefaultBlurRadius   = 1
)

// DetectorConfig tunes the native detector.
type DetectorConfig struct {
	// ReduceFactor is the integer downsampling divisor applied before
	// analysis. Lower values are slower but more accurate.
	ReduceFactor int

	// Fuzz is the colour distance, as a fraction of the full range, under
	// which a pixel still counts as background while trimming.
	Fuzz float64

	// BlurRadius is the box blur radius in reduced pixels. Zero disables
	// the blur.
	BlurRadius int
}

// DefaultDetectorConfig returns the defaults.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		ReduceFactor: DefaultReduceFactor,
		Fuzz:         DefaultFuzz,
		BlurRadius:   DefaultBlurRadius,
	}
}

// Detector finds the content box with an in-process
// gray → normalize → 2-colour → blur → trim chain.
type Detector struct {
	cfg DetectorConfig
}

// NewDetector creates a native detector. Out-of-range settings fall back to
// the defaults.
func NewDetector(cfg DetectorConfig) *Detector {
	if cfg.ReduceFactor < 1 {
		cfg.ReduceFactor = DefaultReduceFactor
	}
	if cfg.Fuzz < 0 || cfg.Fuzz >= 1 {
		cfg.Fuzz = DefaultFuzz
	}
	if cfg.BlurRadius < 0 {
		cfg.BlurRadius = 0
	}
	return &Detector{cfg: cfg}
}

// Name returns "native".
func (d *Detector) Name() string { return "native" }

// Detect implements ports.Detector.
func (d *Detector) Detect(ctx context.Context, src ports.Source) (domain.Rect, error) {
	if err := ctx.Err(); err != nil {
		return domain.Rect{}, err
	}
	w, h := src.Size()

	small, err := Downsample(src.Image, d.cfg.ReduceFactor)
	if err != nil {
		return domain.Rect{}, fmt.Errorf("%w: %v", domain.ErrDetection, err)
	}
	Normalize(small)
	Binarize(small, OtsuThreshold(small))
	small = BoxBlur(small, d.cfg.BlurRadius)

	box, ok := Trim(small, d.cfg.Fuzz)
	return ScaleToOriginal(box, ok, d.cfg.ReduceFactor, w, h), nil
}

// ScaleToOriginal maps a reduced-space trim result back into a w×h image.
// A missing or degenerate box yields the full image rectangle.
func ScaleToOriginal(box domain.Rect, ok bool, factor, w, h int) domain.Rect {
	if !ok || !box.Valid() {
		return domain.Full(w, h)
	}
	full := box.Scale(factor).Clamp(w, h)
	if !full.Valid() {
		return domain.Full(w, h)
	}
	return full
}

var _ ports.Detector = (*Detector)(nil)
