package domain

import "fmt"

// GutterConfig holds the binding-aware crop margins, in original-image pixels.
type GutterConfig struct {
	GutterOdd  int `json:"gutter_odd" toml:"gutter_odd"`
	GutterEven int `json:"gutter_even" toml:"gutter_even"`
	ExtraCrop  int `json:"extra_crop" toml:"extra_crop"`
}

// Validate rejects negative margins.
func (c GutterConfig) Validate() error {
	if c.GutterOdd < 0 {
		return fmt.Errorf("%w: gutter_odd must be >= 0, got %d", ErrConfiguration, c.GutterOdd)
	}
	if c.GutterEven < 0 {
		return fmt.Errorf("%w: gutter_even must be >= 0, got %d", ErrConfiguration, c.GutterEven)
	}
	if c.ExtraCrop < 0 {
		return fmt.Errorf("%w: extra_crop must be >= 0, got %d", ErrConfiguration, c.ExtraCrop)
	}
	return nil
}

// GutterFor returns the gutter applied to pages of the given parity.
func (c GutterConfig) GutterFor(p Parity) int {
	if p == Even {
		return c.GutterEven
	}
	return c.GutterOdd
}
