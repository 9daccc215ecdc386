// Package magick measures the page content box with ImageMagick's convert.
package magick

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/bft-labs/spreads/internal/adapters/imaging"
	"github.com/bft-labs/spreads/internal/domain"
	"github.com/bft-labs/spreads/internal/ports"
)

// DefaultBinary is looked up on PATH when no binary is configured.
const DefaultBinary = "convert"

// Config tunes the ImageMagick detector.
type Config struct {
	Binary       string
	ReduceFactor int
	// Fuzz is a fraction of the full range, passed as a percentage.
	Fuzz float64
	// TempDir holds the downsampled copies; empty means os.TempDir.
	TempDir string
}

// Detector downsamples the page in Go, writes the reduced copy to a private
// temporary file and lets convert trim it.
type Detector struct {
	cfg Config
}

// NewDetector creates an ImageMagick-backed detector.
func NewDetector(cfg Config) *Detector {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.ReduceFactor < 1 {
		cfg.ReduceFactor = imaging.DefaultReduceFactor
	}
	if cfg.Fuzz <= 0 || cfg.Fuzz >= 1 {
		cfg.Fuzz = imaging.DefaultFuzz
	}
	return &Detector{cfg: cfg}
}

// Name returns "magick".
func (d *Detector) Name() string { return "magick" }

// Detect implements ports.Detector.
func (d *Detector) Detect(ctx context.Context, src ports.Source) (domain.Rect, error) {
	w, h := src.Size()

	small, err := imaging.Downsample(src.Image, d.cfg.ReduceFactor)
	if err != nil {
		return domain.Rect{}, fmt.Errorf("%w: %v", domain.ErrDetection, err)
	}

	tmp, err := os.CreateTemp(d.cfg.TempDir, "spreads-autocrop-*.png")
	if err != nil {
		return domain.Rect{}, err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := png.Encode(tmp, small); err != nil {
		tmp.Close()
		return domain.Rect{}, fmt.Errorf("write reduced copy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.Rect{}, err
	}

	out, err := d.measure(ctx, tmpName)
	if err != nil {
		return domain.Rect{}, err
	}
	box, err := ParseMeasurement(out)
	if err != nil {
		return domain.Rect{}, err
	}
	return imaging.ScaleToOriginal(box, true, d.cfg.ReduceFactor, w, h), nil
}

// Args returns the convert arguments that measure the trimmed content box
// of path.
func (d *Detector) Args(path string) []string {
	return []string{
		path,
		"-colorspace", "gray",
		"-colors", "2",
		"-normalize",
		"-virtual-pixel", "edge",
		"-blur", "0x15",
		"-fuzz", strconv.Itoa(int(d.cfg.Fuzz*100+0.5)) + "%",
		"-trim",
		"-format", "%[fx:page.x],%[fx:page.y],%[fx:w],%[fx:h]",
		"info:",
	}
}

func (d *Detector) measure(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, d.cfg.Binary, d.Args(path)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("%w: %s: %v", domain.ErrDetection, d.cfg.Binary, err)
		}
		return "", fmt.Errorf("%w: %s: %v: %s", domain.ErrDetection, d.cfg.Binary, err, msg)
	}
	return string(out), nil
}

// ParseMeasurement parses "x,y,w,h" in reduced-image pixels. Anything other
// than exactly four non-negative integers is a detection error.
func ParseMeasurement(s string) (domain.Rect, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 4 {
		return domain.Rect{}, fmt.Errorf("%w: want 4 fields, got %q", domain.ErrDetection, s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return domain.Rect{}, fmt.Errorf("%w: field %d of %q: %v", domain.ErrDetection, i, s, err)
		}
		if n < 0 {
			return domain.Rect{}, fmt.Errorf("%w: negative field %d in %q", domain.ErrDetection, i, s)
		}
		v[i] = n
	}
	return domain.Rect{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}, nil
}

var _ ports.Detector = (*Detector)(nil)
