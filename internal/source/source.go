// Package source provides the audio sample providers feeding the spectrum
// pipeline: a WAV file reader, synthetic tone generators, a sweep used for
// self-test, and a live capture device.
package source

import (
	"fmt"

	"github.com/olivier-w/spectro/internal/config"
)

// Source streams fixed-size sample blocks. ReadBlock always fills all of
// dst with values in [-1, 1]; n is the count of genuine (non-padding)
// samples and eos reports that the underlying stream is exhausted.
// Implementations never allocate per call.
type Source interface {
	ReadBlock(dst []float64) (n int, eos bool)
	SampleRate() int
	Name() string
	Close() error
}

// FormatError reports an audio container rejected at open time. It is fatal
// for the file-backed source only; Select recovers by falling back to the
// sweep self-test source.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("source: %s: %s", e.Path, e.Reason)
}

// Select is the factory choosing the source variant from configuration.
// Order: forced self-test wins, then live capture, then explicit tones,
// then the file; a missing or malformed file degrades to the sweep source
// instead of aborting, and note explains the degradation for the UI.
func Select(cfg config.Config) (src Source, note string, err error) {
	if cfg.SelfTest {
		return NewSweep(cfg.SampleRate, cfg.SweepStartHz, cfg.SweepEndHz, cfg.SweepSeconds, cfg.Amplitude), "", nil
	}
	if cfg.LiveInput {
		src, err = OpenLive(cfg.SampleRate, cfg.FFTSize)
		return src, "", err
	}
	if len(cfg.TonesHz) > 0 {
		return NewMultiTone(cfg.SampleRate, cfg.TonesHz, cfg.Amplitude), "", nil
	}
	if cfg.ToneHz > 0 {
		return NewSine(cfg.SampleRate, cfg.ToneHz, cfg.Amplitude), "", nil
	}
	if cfg.File != "" {
		src, err = OpenFile(cfg.File, cfg.FFTSize, cfg.Loop)
		if err == nil {
			return src, "", nil
		}
		// Missing or malformed file: degrade to the self-test signal
		// rather than aborting the whole pipeline.
		note = fmt.Sprintf("%v; using sweep self-test", err)
	}
	return NewSweep(cfg.SampleRate, cfg.SweepStartHz, cfg.SweepEndHz, cfg.SweepSeconds, cfg.Amplitude), note, nil
}
