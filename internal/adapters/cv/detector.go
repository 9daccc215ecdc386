//go:build gocv

// Package cv implements the content-box detector on OpenCV through gocv.
// It is compiled only with the gocv build tag since it needs the OpenCV
// libraries at link time.
package cv

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/bft-labs/spreads/internal/adapters/imaging"
	"github.com/bft-labs/spreads/internal/domain"
	"github.com/bft-labs/spreads/internal/ports"
)

// Config tunes the OpenCV detector.
type Config struct {
	ReduceFactor int
	Fuzz         float64
	// Sigma is the Gaussian blur sigma in reduced pixels.
	Sigma float64
}

// Detector runs normalize → Otsu → Gaussian blur in OpenCV and trims the
// result in Go.
type Detector struct {
	cfg Config
}

// NewDetector creates an OpenCV detector.
func NewDetector(cfg Config) *Detector {
	if cfg.ReduceFactor < 1 {
		cfg.ReduceFactor = imaging.DefaultReduceFactor
	}
	if cfg.Fuzz <= 0 || cfg.Fuzz >= 1 {
		cfg.Fuzz = imaging.DefaultFuzz
	}
	if cfg.Sigma <= 0 {
		cfg.Sigma = 1.5
	}
	return &Detector{cfg: cfg}
}

// Name returns "gocv".
func (d *Detector) Name() string { return "gocv" }

// Detect implements ports.Detector.
func (d *Detector) Detect(ctx context.Context, src ports.Source) (domain.Rect, error) {
	w, h := src.Size()

	small, err := imaging.Downsample(src.Image, d.cfg.ReduceFactor)
	if err != nil {
		return domain.Rect{}, fmt.Errorf("%w: %v", domain.ErrDetection, err)
	}

	mat, err := gocv.ImageGrayToMatGray(small)
	if err != nil {
		return domain.Rect{}, fmt.Errorf("%w: %v", domain.ErrDetection, err)
	}
	defer mat.Close()

	norm := gocv.NewMat()
	defer norm.Close()
	if err := gocv.Normalize(mat, &norm, 0, 255, gocv.NormMinMax); err != nil {
		return domain.Rect{}, fmt.Errorf("%w: normalize: %v", domain.ErrDetection, err)
	}

	bin := gocv.NewMat()
	defer bin.Close()
	if _, err := gocv.Threshold(norm, &bin, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu); err != nil {
		return domain.Rect{}, fmt.Errorf("%w: threshold: %v", domain.ErrDetection, err)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	if err := gocv.GaussianBlur(bin, &blurred, image.Pt(0, 0), d.cfg.Sigma, d.cfg.Sigma, gocv.BorderReplicate); err != nil {
		return domain.Rect{}, fmt.Errorf("%w: blur: %v", domain.ErrDetection, err)
	}
	if blurred.Empty() {
		return domain.Rect{}, fmt.Errorf("%w: empty mat after blur", domain.ErrDetection)
	}

	out, err := blurred.ToImage()
	if err != nil {
		return domain.Rect{}, fmt.Errorf("%w: %v", domain.ErrDetection, err)
	}
	gray, ok := out.(*image.Gray)
	if !ok {
		return domain.Rect{}, fmt.Errorf("%w: unexpected mat image type %T", domain.ErrDetection, out)
	}

	box, found := imaging.Trim(gray, d.cfg.Fuzz)
	return imaging.ScaleToOriginal(box, found, d.cfg.ReduceFactor, w, h), nil
}

var _ ports.Detector = (*Detector)(nil)
