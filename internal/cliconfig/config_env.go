package cliconfig

import (
	"os"
	"strings"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "SPREADS_"

// ApplyEnvConfig applies SPREADS_* environment variables to cfg. They
// override the config file but not explicitly set flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", env("LOG_FORMAT"), &cfg.LogFormat)
	if v := env("STAGES"); v != "" {
		s.setStrings("stages", splitList(v), &cfg.Stages)
	}
	s.setString("on-partial-failure", env("ON_PARTIAL_FAILURE"), &cfg.OnPartialFailure)
	if err := s.setIntFromString("workers", env("WORKERS"), &cfg.Workers); err != nil {
		return err
	}
	if err := s.setDuration("debounce", env("WATCH_DEBOUNCE"), &cfg.WatchDebounce); err != nil {
		return err
	}

	dst := &cfg.Autocrop
	ints := []struct {
		flag string
		key  string
		dst  *int
	}{
		{"gutter-odd", "GUTTER_ODD", &dst.GutterOdd},
		{"gutter-even", "GUTTER_EVEN", &dst.GutterEven},
		{"extra-crop", "EXTRA_CROP", &dst.ExtraCrop},
		{"reduce-factor", "REDUCE_FACTOR", &dst.ReduceFactor},
		{"blur-radius", "BLUR_RADIUS", &dst.BlurRadius},
		{"crop-workers", "CROP_WORKERS", &dst.Workers},
		{"jpeg-quality", "JPEG_QUALITY", &dst.JPEGQuality},
		{"retries", "RETRIES", &dst.Retries},
	}
	for _, i := range ints {
		if err := s.setIntFromString(i.flag, env(i.key), i.dst); err != nil {
			return err
		}
	}
	if err := s.setFloatFromString("fuzz", env("FUZZ"), &dst.Fuzz); err != nil {
		return err
	}
	if err := s.setDuration("retry-backoff", env("RETRY_BACKOFF"), &dst.RetryBackoff); err != nil {
		return err
	}
	s.setString("detector", env("DETECTOR"), &dst.Detector)
	s.setString("magick-binary", env("MAGICK_BINARY"), &dst.MagickBinary)
	s.setBoolFromString("create-output-dir", env("CREATE_OUTPUT_DIR"), &dst.CreateOutputDir)
	s.setBoolFromString("report", env("REPORT"), &dst.Report)

	return nil
}

func env(key string) string {
	return os.Getenv(EnvPrefix + key)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
