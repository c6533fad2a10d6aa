package source

import (
	"fmt"
	"math"
)

const twoPi = 2 * math.Pi

// SineSource emits a fixed-frequency sine wave. The phase accumulator wraps
// at 2π each sample so it never grows without bound. The stream is endless.
type SineSource struct {
	rate  int
	freq  float64
	amp   float64
	phase float64
}

func NewSine(sampleRate int, freq, amp float64) *SineSource {
	return &SineSource{rate: sampleRate, freq: freq, amp: amp}
}

func (s *SineSource) ReadBlock(dst []float64) (int, bool) {
	inc := twoPi * s.freq / float64(s.rate)
	for i := range dst {
		dst[i] = s.amp * math.Sin(s.phase)
		s.phase += inc
		if s.phase > twoPi {
			s.phase -= twoPi
		}
	}
	return len(dst), false
}

func (s *SineSource) SampleRate() int { return s.rate }
func (s *SineSource) Name() string    { return fmt.Sprintf("tone %.0f Hz", s.freq) }
func (s *SineSource) Close() error    { return nil }

// MultiToneSource sums one sine per configured frequency, each with its own
// phase accumulator, normalizing amplitude by the tone count so the mix
// never clips. The stream is endless.
type MultiToneSource struct {
	rate   int
	freqs  []float64
	amp    float64 // per-tone amplitude, already divided by len(freqs)
	phases []float64
}

func NewMultiTone(sampleRate int, freqs []float64, amp float64) *MultiToneSource {
	return &MultiToneSource{
		rate:   sampleRate,
		freqs:  freqs,
		amp:    amp / float64(len(freqs)),
		phases: make([]float64, len(freqs)),
	}
}

func (s *MultiToneSource) ReadBlock(dst []float64) (int, bool) {
	for i := range dst {
		var v float64
		for t, f := range s.freqs {
			v += s.amp * math.Sin(s.phases[t])
			s.phases[t] += twoPi * f / float64(s.rate)
			if s.phases[t] > twoPi {
				s.phases[t] -= twoPi
			}
		}
		dst[i] = v
	}
	return len(dst), false
}

func (s *MultiToneSource) SampleRate() int { return s.rate }

func (s *MultiToneSource) Name() string {
	return fmt.Sprintf("%d tones", len(s.freqs))
}

func (s *MultiToneSource) Close() error { return nil }

// SweepSource bounces a sine between two frequencies over a fixed duration,
// giving a deterministic, visually verifiable self-test signal that
// exercises every bar without depending on transform correctness. The
// stream is endless.
type SweepSource struct {
	rate    int
	startHz float64
	endHz   float64
	amp     float64

	total float64 // samples per one-way sweep
	n     float64 // samples into the current sweep leg
	dir   int     // +1 rising, -1 falling
	freq  float64
	phase float64
}

func NewSweep(sampleRate int, startHz, endHz, seconds, amp float64) *SweepSource {
	return &SweepSource{
		rate:    sampleRate,
		startHz: startHz,
		endHz:   endHz,
		amp:     amp,
		total:   seconds * float64(sampleRate),
		dir:     1,
		freq:    startHz,
	}
}

func (s *SweepSource) ReadBlock(dst []float64) (int, bool) {
	span := s.endHz - s.startHz
	for i := range dst {
		dst[i] = s.amp * math.Sin(s.phase)
		s.phase += twoPi * s.freq / float64(s.rate)
		if s.phase > twoPi {
			s.phase -= twoPi
		}

		s.n++
		if s.n >= s.total {
			s.n = 0
			s.dir = -s.dir
		}
		progress := s.n / s.total
		if s.dir > 0 {
			s.freq = s.startHz + progress*span
		} else {
			s.freq = s.endHz - progress*span
		}
	}
	return len(dst), false
}

// Frequency reports the instantaneous sweep frequency, for the status line.
func (s *SweepSource) Frequency() float64 { return s.freq }

func (s *SweepSource) SampleRate() int { return s.rate }

func (s *SweepSource) Name() string {
	return fmt.Sprintf("sweep %.0f-%.0f Hz", s.startHz, s.endHz)
}

func (s *SweepSource) Close() error { return nil }
