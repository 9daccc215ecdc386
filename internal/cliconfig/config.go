package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bft-labs/spreads/internal/domain"
	"github.com/bft-labs/spreads/pkg/spreads"
	"github.com/bft-labs/spreads/plugins/autocrop"
)

// Log output formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// DefaultWatchDebounce is how long watch mode waits for the capture device
// to stop writing before it re-runs the process stage.
const DefaultWatchDebounce = 2 * time.Second

// Config holds CLI configuration for spreads.
type Config struct {
	LogLevel  string
	LogFormat string

	// Stages run by the run command, in order.
	Stages           []string
	OnPartialFailure string
	Workers          int

	WatchDebounce time.Duration

	Autocrop autocrop.Config
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		LogLevel:         "info",
		LogFormat:        LogFormatConsole,
		Stages:           []string{string(spreads.StageProcess)},
		OnPartialFailure: spreads.ContinueOnPartialFailure.String(),
		WatchDebounce:    DefaultWatchDebounce,
		Autocrop:         autocrop.DefaultConfig(),
	}
}

// Validate checks the configuration. Errors wrap domain.ErrConfiguration.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("%w: log format %q (want console or json)", domain.ErrConfiguration, c.LogFormat)
	}
	if _, err := spreads.ParsePartialFailurePolicy(c.OnPartialFailure); err != nil {
		return err
	}
	if _, err := c.StageList(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", domain.ErrConfiguration, c.Workers)
	}
	if c.WatchDebounce <= 0 {
		return fmt.Errorf("%w: watch debounce must be positive", domain.ErrConfiguration)
	}
	return c.Autocrop.Validate()
}

// StageList parses Stages.
func (c *Config) StageList() ([]spreads.Stage, error) {
	if len(c.Stages) == 0 {
		return spreads.Stages(), nil
	}
	out := make([]spreads.Stage, 0, len(c.Stages))
	for _, s := range c.Stages {
		st, err := spreads.ParseStage(s)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// Policy returns the parsed partial failure policy.
func (c *Config) Policy() spreads.PartialFailurePolicy {
	p, _ := spreads.ParsePartialFailurePolicy(c.OnPartialFailure)
	return p
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a list if not empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]string(nil), value...)
}

// setInt sets an int from a pointer. Zero and negative values are applied
// too; Validate rejects the ones that are out of range.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setFloat sets a float64 from a pointer if not nil and flag not changed.
func (s *configSetter) setFloat(flag string, value *float64, dst *float64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination.
// Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
