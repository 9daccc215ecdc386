package autocrop

import (
	"fmt"
	"time"

	"github.com/bft-labs/spreads/internal/adapters/imaging"
	"github.com/bft-labs/spreads/internal/adapters/magick"
	"github.com/bft-labs/spreads/internal/app"
	"github.com/bft-labs/spreads/internal/domain"
)

// Config holds configuration options for the autocrop hook. Gutter and crop
// values are in original-image pixels.
type Config struct {
	// GutterOdd is removed from the spine side of odd (right-hand) pages.
	GutterOdd int
	// GutterEven is removed from the spine side of even (left-hand) pages.
	GutterEven int
	// ExtraCrop shaves an extra margin off the detected box.
	ExtraCrop int

	// ReduceFactor is the downsampling divisor used for detection.
	// Default: 4
	ReduceFactor int
	// Fuzz is the background tolerance while trimming, in (0, 1).
	// Default: 0.25
	Fuzz float64
	// BlurRadius is the detection blur radius in reduced pixels; zero
	// disables the blur.
	// Default: 1
	BlurRadius int

	// Detector selects the detection backend: "native", "magick", or
	// "gocv" when built with the gocv tag.
	// Default: "native"
	Detector string
	// MagickBinary is the convert executable used by the magick detector.
	// Default: "convert"
	MagickBinary string

	// Workers bounds the crop parallelism. Zero uses the workflow's hint,
	// which itself defaults to one worker per CPU.
	Workers int
	// JPEGQuality is used when writing JPEG pages.
	// Default: 92
	JPEGQuality int
	// Retries is how many times a failed page is retried.
	// Default: 0
	Retries int
	// RetryBackoff is the first delay between retries; it doubles per
	// attempt.
	// Default: 200 milliseconds
	RetryBackoff time.Duration

	// CreateOutputDir creates raw/done when it is missing instead of
	// failing the invocation.
	CreateOutputDir bool
	// Report writes autocrop-report.json into the stage directory.
	Report bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReduceFactor: imaging.DefaultReduceFactor,
		Fuzz:         imaging.DefaultFuzz,
		BlurRadius:   imaging.DefaultBlurRadius,
		Detector:     DetectorNative,
		MagickBinary: magick.DefaultBinary,
		JPEGQuality:  imaging.DefaultJPEGQuality,
		RetryBackoff: app.DefaultBackoffInitial,
		Report:       true,
	}
}

// Validate checks cfg. Errors wrap domain.ErrConfiguration.
func (c Config) Validate() error {
	if err := c.Gutter().Validate(); err != nil {
		return err
	}
	switch {
	case c.ReduceFactor < 1:
		return fmt.Errorf("%w: reduce_factor must be >= 1, got %d", domain.ErrConfiguration, c.ReduceFactor)
	case c.Fuzz <= 0 || c.Fuzz >= 1:
		return fmt.Errorf("%w: fuzz must be in (0, 1), got %g", domain.ErrConfiguration, c.Fuzz)
	case c.BlurRadius < 0:
		return fmt.Errorf("%w: blur_radius must be >= 0, got %d", domain.ErrConfiguration, c.BlurRadius)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must be >= 0, got %d", domain.ErrConfiguration, c.Workers)
	case c.JPEGQuality < 1 || c.JPEGQuality > 100:
		return fmt.Errorf("%w: jpeg_quality must be in [1, 100], got %d", domain.ErrConfiguration, c.JPEGQuality)
	case c.Retries < 0:
		return fmt.Errorf("%w: retries must be >= 0, got %d", domain.ErrConfiguration, c.Retries)
	}
	if _, ok := lookupDetector(c.Detector); !ok {
		return fmt.Errorf("%w: unknown detector %q (available: %v)", domain.ErrConfiguration, c.Detector, Detectors())
	}
	return nil
}

// Gutter returns the margin part of the configuration.
func (c Config) Gutter() domain.GutterConfig {
	return domain.GutterConfig{
		GutterOdd:  c.GutterOdd,
		GutterEven: c.GutterEven,
		ExtraCrop:  c.ExtraCrop,
	}
}

// withDefaults fills settings left at their zero value. Negative values are
// kept so that Validate reports them.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ReduceFactor == 0 {
		c.ReduceFactor = d.ReduceFactor
	}
	if c.Fuzz == 0 {
		c.Fuzz = d.Fuzz
	}
	if c.Detector == "" {
		c.Detector = d.Detector
	}
	if c.MagickBinary == "" {
		c.MagickBinary = d.MagickBinary
	}
	if c.JPEGQuality == 0 {
		c.JPEGQuality = d.JPEGQuality
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = d.RetryBackoff
	}
	return c
}
