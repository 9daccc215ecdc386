package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config for TOML. Durations are strings and numbers are
// pointers so that an explicit zero in the file is kept.
type FileConfig struct {
	LogLevel         string             `toml:"log_level"`
	LogFormat        string             `toml:"log_format"`
	Stages           []string           `toml:"stages"`
	OnPartialFailure string             `toml:"on_partial_failure"`
	Workers          *int               `toml:"workers"`
	WatchDebounce    string             `toml:"watch_debounce"`
	Autocrop         AutocropFileConfig `toml:"autocrop"`
}

// AutocropFileConfig is the [autocrop] table.
type AutocropFileConfig struct {
	GutterOdd       *int     `toml:"gutter_odd"`
	GutterEven      *int     `toml:"gutter_even"`
	ExtraCrop       *int     `toml:"extra_crop"`
	ReduceFactor    *int     `toml:"reduce_factor"`
	Fuzz            *float64 `toml:"fuzz"`
	BlurRadius      *int     `toml:"blur_radius"`
	Detector        string   `toml:"detector"`
	MagickBinary    string   `toml:"magick_binary"`
	Workers         *int     `toml:"workers"`
	JPEGQuality     *int     `toml:"jpeg_quality"`
	Retries         *int     `toml:"retries"`
	RetryBackoff    string   `toml:"retry_backoff"`
	CreateOutputDir *bool    `toml:"create_output_dir"`
	Report          *bool    `toml:"report"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
// Unknown keys are rejected so that typos do not silently fall back to the
// defaults.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	f, err := os.Open(path)
	if err != nil {
		return fc, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.spreads/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".spreads", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)
	s.setStrings("stages", fc.Stages, &cfg.Stages)
	s.setString("on-partial-failure", fc.OnPartialFailure, &cfg.OnPartialFailure)
	s.setInt("workers", fc.Workers, &cfg.Workers)
	if err := s.setDuration("debounce", fc.WatchDebounce, &cfg.WatchDebounce); err != nil {
		return err
	}

	ac := fc.Autocrop
	dst := &cfg.Autocrop
	s.setInt("gutter-odd", ac.GutterOdd, &dst.GutterOdd)
	s.setInt("gutter-even", ac.GutterEven, &dst.GutterEven)
	s.setInt("extra-crop", ac.ExtraCrop, &dst.ExtraCrop)
	s.setInt("reduce-factor", ac.ReduceFactor, &dst.ReduceFactor)
	s.setFloat("fuzz", ac.Fuzz, &dst.Fuzz)
	s.setInt("blur-radius", ac.BlurRadius, &dst.BlurRadius)
	s.setString("detector", ac.Detector, &dst.Detector)
	s.setString("magick-binary", ac.MagickBinary, &dst.MagickBinary)
	s.setInt("crop-workers", ac.Workers, &dst.Workers)
	s.setInt("jpeg-quality", ac.JPEGQuality, &dst.JPEGQuality)
	s.setInt("retries", ac.Retries, &dst.Retries)
	if err := s.setDuration("retry-backoff", ac.RetryBackoff, &dst.RetryBackoff); err != nil {
		return err
	}
	s.setBool("create-output-dir", ac.CreateOutputDir, &dst.CreateOutputDir)
	s.setBool("report", ac.Report, &dst.Report)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
