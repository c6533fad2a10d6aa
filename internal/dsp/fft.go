package dsp

import (
	"fmt"
	"math"
)

// Engine performs an in-place radix-2 Cooley-Tukey FFT over a fixed
// transform size and extracts the one-sided magnitude spectrum. All scratch
// storage (the complex buffer, the bit-reversal table, the twiddle factors
// and the magnitude output) is allocated once at construction; Transform
// never touches the heap.
type Engine struct {
	n    int
	bins int

	windowFn WindowFunc
	window   []float64

	re, im []float64
	rev    []int     // bit-reversal permutation of [0, n)
	twr    []float64 // twiddle real parts, cos(2πk/n) for k in [0, n/2)
	twi    []float64 // twiddle imaginary parts, -sin(2πk/n)
	mags   []float64
}

// NewEngine builds an engine for n-point transforms using the given window
// function. n must be a power of two greater than 1; anything else is a
// configuration error surfaced here, before the frame loop starts.
func NewEngine(n int, fn WindowFunc) (*Engine, error) {
	if n <= 1 || n&(n-1) != 0 {
		return nil, &SizeError{Size: n}
	}
	window, err := NewWindowTable(n, fn)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		n:        n,
		bins:     n / 2,
		windowFn: fn,
		window:   window,
		re:       make([]float64, n),
		im:       make([]float64, n),
		rev:      make([]int, n),
		twr:      make([]float64, n/2),
		twi:      make([]float64, n/2),
		mags:     make([]float64, n/2),
	}

	for i := 1; i < n; i++ {
		e.rev[i] = e.rev[i>>1]>>1 | (i&1)*(n>>1)
	}
	for k := range e.twr {
		angle := 2 * math.Pi * float64(k) / float64(n)
		e.twr[k] = math.Cos(angle)
		e.twi[k] = -math.Sin(angle)
	}
	return e, nil
}

// SizeError reports a transform size that is not a power of two.
type SizeError struct {
	Size int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("dsp: transform size must be a power of two, got %d", e.Size)
}

// Size returns the transform length N.
func (e *Engine) Size() int { return e.n }

// Bins returns the number of one-sided spectrum bins, N/2.
func (e *Engine) Bins() int { return e.bins }

// Window returns the active window function.
func (e *Engine) Window() WindowFunc { return e.windowFn }

// SetWindow swaps the window function, recomputing the coefficient table.
// The transform size never changes, so at most one table is resident.
func (e *Engine) SetWindow(fn WindowFunc) error {
	if fn == e.windowFn {
		return nil
	}
	window, err := NewWindowTable(e.n, fn)
	if err != nil {
		return err
	}
	e.window = window
	e.windowFn = fn
	return nil
}

// Transform windows the samples, runs the FFT and returns the magnitudes of
// the first N/2 bins. DC and the top bin go through the same sqrt(re²+im²)
// as every other bin, with no half-scaling. Non-finite input samples are
// treated as silence. The returned slice is scratch storage owned by the
// engine; callers must consume it before the next Transform.
func (e *Engine) Transform(samples []float64) []float64 {
	n := e.n

	// Window into the complex buffer, bit-reversed.
	for i := 0; i < n; i++ {
		v := 0.0
		if i < len(samples) && !math.IsNaN(samples[i]) && !math.IsInf(samples[i], 0) {
			v = samples[i]
		}
		j := e.rev[i]
		e.re[j] = v * e.window[i]
		e.im[j] = 0
	}

	// log2(n) butterfly stages at doubling stride.
	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		step := n / size // twiddle stride: e^{-2πik/size} = tw[k*step]
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				wr := e.twr[k*step]
				wi := e.twi[k*step]
				a := start + k
				b := a + half
				tr := wr*e.re[b] - wi*e.im[b]
				ti := wr*e.im[b] + wi*e.re[b]
				e.re[b] = e.re[a] - tr
				e.im[b] = e.im[a] - ti
				e.re[a] += tr
				e.im[a] += ti
			}
		}
	}

	for i := 0; i < e.bins; i++ {
		e.mags[i] = math.Sqrt(e.re[i]*e.re[i] + e.im[i]*e.im[i])
	}
	return e.mags
}

// BinFrequency returns the center frequency in Hz of a spectrum bin.
func BinFrequency(bin, fftSize int, sampleRate float64) float64 {
	if bin < 0 || fftSize <= 0 {
		return 0
	}
	return float64(bin) * sampleRate / float64(fftSize)
}
