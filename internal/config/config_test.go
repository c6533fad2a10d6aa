package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration invalid: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name  string
		field string
		mut   func(*Config)
	}{
		{"zero sample rate", "sample_rate", func(c *Config) { c.SampleRate = 0 }},
		{"non power of two fft", "fft_size", func(c *Config) { c.FFTSize = 100 }},
		{"fft size one", "fft_size", func(c *Config) { c.FFTSize = 1 }},
		{"zero bars", "bars", func(c *Config) { c.Bars = 0 }},
		{"too many bars", "bars", func(c *Config) { c.Bars = c.FFTSize/2 + 1 }},
		{"alpha zero", "alpha", func(c *Config) { c.Alpha = 0 }},
		{"alpha above one", "alpha", func(c *Config) { c.Alpha = 1.5 }},
		{"negative hold", "peak_hold_frames", func(c *Config) { c.PeakHoldFrames = -1 }},
		{"negative decay", "peak_decay_step", func(c *Config) { c.PeakDecayStep = -0.1 }},
		{"bad scale", "scale", func(c *Config) { c.Scale = "cubic" }},
		{"amplitude zero", "amplitude", func(c *Config) { c.Amplitude = 0 }},
		{"inverted sweep", "sweep", func(c *Config) { c.SweepStartHz, c.SweepEndHz = 3000, 200 }},
		{"zero sweep time", "sweep_seconds", func(c *Config) { c.SweepSeconds = 0 }},
		{"zero fps", "frame_rate", func(c *Config) { c.FrameRate = 0 }},
		{"negative tone", "tone_hz", func(c *Config) { c.ToneHz = -100 }},
		{"bad tone in mix", "tones_hz", func(c *Config) { c.TonesHz = []float64{440, 0} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mut(&cfg)
			err := cfg.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Errorf("error on field %q, want %q", ve.Field, tc.field)
			}
		})
	}
}

func TestLoadEmptyPathIsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectro.yaml")
	body := "fft_size: 512\nbars: 32\nscale: linear\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FFTSize != 512 || cfg.Bars != 32 || cfg.Scale != ScaleLinear {
		t.Errorf("loaded %+v, want fft_size=512 bars=32 scale=linear", cfg)
	}
	// Untouched options keep their defaults.
	if cfg.SampleRate != 8000 || cfg.Window != "hann" {
		t.Errorf("defaults clobbered: rate=%d window=%q", cfg.SampleRate, cfg.Window)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("fft_size: [not a number"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/no/such/dir/spectro.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
