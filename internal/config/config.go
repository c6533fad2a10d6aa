package config

import (
	"fmt"
	"math"
)

// ScaleMode selects how spectrum bins are assigned to display bars.
type ScaleMode string

const (
	ScaleLinear      ScaleMode = "linear"
	ScaleLogarithmic ScaleMode = "logarithmic"
)

// Config holds every runtime option for the analyzer. Defaults are layered
// first, then an optional YAML file, then command-line flags.
type Config struct {
	// Analysis
	SampleRate int       `yaml:"sample_rate"` // Hz, used for synthetic sources and bin frequencies
	FFTSize    int       `yaml:"fft_size"`    // transform size N, power of two
	Bars       int       `yaml:"bars"`        // number of display bars B
	Window     string    `yaml:"window"`      // window function name (hann, hamming, ...)
	Scale      ScaleMode `yaml:"scale"`       // bin-to-bar frequency scaling

	// Smoothing
	Alpha          float64 `yaml:"alpha"`            // EMA factor, (0, 1], smaller = smoother
	PeakHoldFrames int     `yaml:"peak_hold_frames"` // frames a peak marker holds before decaying
	PeakDecayStep  float64 `yaml:"peak_decay_step"`  // per-frame peak fall, fraction of display range

	// Source selection
	File      string    `yaml:"file"`       // WAV file path ("" = none)
	Loop      bool      `yaml:"loop"`       // wrap the file at end of data
	SelfTest  bool      `yaml:"self_test"`  // force the sweep source
	LiveInput bool      `yaml:"live_input"` // capture from the default input device
	ToneHz    float64   `yaml:"tone_hz"`    // single-tone source frequency (0 = off)
	TonesHz   []float64 `yaml:"tones_hz"`   // multi-tone source frequencies
	Amplitude float64   `yaml:"amplitude"`  // synthetic source amplitude, (0, 1]

	// Self-test sweep
	SweepStartHz float64 `yaml:"sweep_start_hz"`
	SweepEndHz   float64 `yaml:"sweep_end_hz"`
	SweepSeconds float64 `yaml:"sweep_seconds"`

	// Display
	FrameRate int  `yaml:"frame_rate"` // target frames per second
	Play      bool `yaml:"play"`       // play file audio while visualizing
}

// Default returns the built-in configuration. The analysis defaults follow
// the classic small-display setup: 8 kHz audio, 128-point transform,
// 16 bars, sweep self-test from 200 Hz to 3 kHz.
func Default() Config {
	return Config{
		SampleRate:     8000,
		FFTSize:        128,
		Bars:           16,
		Window:         "hann",
		Scale:          ScaleLogarithmic,
		Alpha:          0.3,
		PeakHoldFrames: 15,
		PeakDecayStep:  0.04,
		Loop:           true,
		Amplitude:      0.8,
		SweepStartHz:   200,
		SweepEndHz:     3000,
		SweepSeconds:   5,
		FrameRate:      30,
	}
}

// ValidationError reports a configuration value rejected before the
// pipeline starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks every option once, before any buffer is allocated.
// The pipeline never re-validates at runtime.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return invalid("sample_rate", "must be positive, got %d", c.SampleRate)
	}
	if c.FFTSize <= 1 {
		return invalid("fft_size", "must be greater than 1, got %d", c.FFTSize)
	}
	if c.FFTSize&(c.FFTSize-1) != 0 {
		return invalid("fft_size", "must be a power of two, got %d", c.FFTSize)
	}
	if c.Bars < 1 || c.Bars > c.FFTSize/2 {
		return invalid("bars", "must be in [1, fft_size/2=%d], got %d", c.FFTSize/2, c.Bars)
	}
	if c.Alpha <= 0 || c.Alpha > 1 || math.IsNaN(c.Alpha) {
		return invalid("alpha", "must be in (0, 1], got %v", c.Alpha)
	}
	if c.PeakHoldFrames < 0 {
		return invalid("peak_hold_frames", "must not be negative, got %d", c.PeakHoldFrames)
	}
	if c.PeakDecayStep < 0 || math.IsNaN(c.PeakDecayStep) {
		return invalid("peak_decay_step", "must not be negative, got %v", c.PeakDecayStep)
	}
	switch c.Scale {
	case ScaleLinear, ScaleLogarithmic:
	default:
		return invalid("scale", "must be %q or %q, got %q", ScaleLinear, ScaleLogarithmic, c.Scale)
	}
	if c.Amplitude <= 0 || c.Amplitude > 1 || math.IsNaN(c.Amplitude) {
		return invalid("amplitude", "must be in (0, 1], got %v", c.Amplitude)
	}
	if c.SweepStartHz <= 0 || c.SweepEndHz <= c.SweepStartHz {
		return invalid("sweep", "range must satisfy 0 < start < end, got %v..%v", c.SweepStartHz, c.SweepEndHz)
	}
	if c.SweepSeconds <= 0 {
		return invalid("sweep_seconds", "must be positive, got %v", c.SweepSeconds)
	}
	if c.FrameRate <= 0 {
		return invalid("frame_rate", "must be positive, got %d", c.FrameRate)
	}
	if c.ToneHz < 0 {
		return invalid("tone_hz", "must not be negative, got %v", c.ToneHz)
	}
	for _, f := range c.TonesHz {
		if f <= 0 {
			return invalid("tones_hz", "frequencies must be positive, got %v", f)
		}
	}
	return nil
}
