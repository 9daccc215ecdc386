package autocrop

import "github.com/bft-labs/spreads/pkg/spreads"

// WithAutocrop returns a spreads Option that registers the autocrop hook for
// the process stage.
//
// Usage:
//
//	w, err := spreads.New(
//	    autocrop.WithAutocrop(autocrop.Config{
//	        GutterOdd:  30,
//	        GutterEven: 20,
//	        ExtraCrop:  10,
//	    }),
//	)
func WithAutocrop(cfg Config, opts ...Option) spreads.Option {
	return spreads.WithHook(spreads.StageProcess, New(cfg, opts...))
}

// WithDefaultAutocrop registers the hook with DefaultConfig, which crops
// to the detected content box without gutter or extra margins.
func WithDefaultAutocrop() spreads.Option {
	return WithAutocrop(DefaultConfig())
}
