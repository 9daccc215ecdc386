package cliconfig

import (
	"reflect"
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		changed map[string]bool
		check   func(t *testing.T, cfg Config)
		wantErr bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"SPREADS_LOG_FORMAT":        "json",
				"SPREADS_STAGES":            "process, output",
				"SPREADS_WORKERS":           "3",
				"SPREADS_GUTTER_ODD":        "30",
				"SPREADS_GUTTER_EVEN":       "20",
				"SPREADS_EXTRA_CROP":        "10",
				"SPREADS_FUZZ":              "0.3",
				"SPREADS_DETECTOR":          "magick",
				"SPREADS_RETRY_BACKOFF":     "500ms",
				"SPREADS_CREATE_OUTPUT_DIR": "1",
			},
			changed: map[string]bool{},
			check: func(t *testing.T, cfg Config) {
				if cfg.LogFormat != "json" || cfg.Workers != 3 {
					t.Errorf("top level = %+v", cfg)
				}
				if !reflect.DeepEqual(cfg.Stages, []string{"process", "output"}) {
					t.Errorf("Stages = %v", cfg.Stages)
				}
				ac := cfg.Autocrop
				if ac.GutterOdd != 30 || ac.GutterEven != 20 || ac.ExtraCrop != 10 || ac.Fuzz != 0.3 {
					t.Errorf("autocrop = %+v", ac)
				}
				if ac.Detector != "magick" || ac.RetryBackoff != 500*time.Millisecond || !ac.CreateOutputDir {
					t.Errorf("autocrop = %+v", ac)
				}
			},
		},
		{
			name:    "respects changed flags",
			envVars: map[string]string{"SPREADS_GUTTER_ODD": "30", "SPREADS_DETECTOR": "magick"},
			changed: map[string]bool{"gutter-odd": true},
			check: func(t *testing.T, cfg Config) {
				if cfg.Autocrop.GutterOdd != 0 {
					t.Errorf("GutterOdd = %d, want flag value 0", cfg.Autocrop.GutterOdd)
				}
				if cfg.Autocrop.Detector != "magick" {
					t.Errorf("Detector = %s", cfg.Autocrop.Detector)
				}
			},
		},
		{
			name:    "negative values reach validation",
			envVars: map[string]string{"SPREADS_EXTRA_CROP": "-4"},
			changed: map[string]bool{},
			check: func(t *testing.T, cfg Config) {
				if cfg.Autocrop.ExtraCrop != -4 {
					t.Errorf("ExtraCrop = %d", cfg.Autocrop.ExtraCrop)
				}
				if err := cfg.Validate(); err == nil {
					t.Error("Validate() accepted negative extra crop")
				}
			},
		},
		{
			name:    "handles bool 'false' as false",
			envVars: map[string]string{"SPREADS_REPORT": "false"},
			changed: map[string]bool{},
			check: func(t *testing.T, cfg Config) {
				if cfg.Autocrop.Report {
					t.Error("Report = true")
				}
			},
		},
		{
			name:    "returns error for invalid int",
			envVars: map[string]string{"SPREADS_GUTTER_EVEN": "wide"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid float",
			envVars: map[string]string{"SPREADS_FUZZ": "fuzzy"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"SPREADS_WATCH_DEBOUNCE": "not-a-duration"},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := DefaultConfig()
			err := ApplyEnvConfig(&cfg, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
