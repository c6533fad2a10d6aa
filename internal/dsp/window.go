package dsp

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects the window applied to each sample block before the
// transform.
type WindowFunc int

const (
	Hann WindowFunc = iota
	Hamming
	Blackman
	BlackmanHarris
	Nuttall
	BartlettHann
	Lanczos
)

var windowNames = map[WindowFunc]string{
	Hann:           "hann",
	Hamming:        "hamming",
	Blackman:       "blackman",
	BlackmanHarris: "blackmanharris",
	Nuttall:        "nuttall",
	BartlettHann:   "bartletthann",
	Lanczos:        "lanczos",
}

func (w WindowFunc) String() string {
	if name, ok := windowNames[w]; ok {
		return name
	}
	return "unknown"
}

// Next cycles to the following window function, wrapping after the last.
func (w WindowFunc) Next() WindowFunc {
	if w >= Lanczos {
		return Hann
	}
	return w + 1
}

// ParseWindowFunc maps a case-insensitive name to a WindowFunc. Unknown
// names are a configuration-time error.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "blackmanharris":
		return BlackmanHarris, nil
	case "nuttall":
		return Nuttall, nil
	case "bartletthann":
		return BartlettHann, nil
	case "lanczos":
		return Lanczos, nil
	default:
		return Hann, fmt.Errorf("dsp: unknown window function %q", name)
	}
}

// NewWindowTable computes the n coefficients of the given window function.
// The result is deterministic and pure in (n, fn); callers cache it and
// recompute only when n changes. n must be at least 2.
func NewWindowTable(n int, fn WindowFunc) ([]float64, error) {
	if n <= 1 {
		return nil, fmt.Errorf("dsp: window size must be greater than 1, got %d", n)
	}

	coeffs := make([]float64, n)

	// Symmetric closed form: endpoints are exactly zero.
	if fn == Hann {
		for i := 0; i < n; i++ {
			coeffs[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		}
		return coeffs, nil
	}

	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch fn {
	case Hamming:
		window.Hamming(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanHarris:
		window.BlackmanHarris(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	default:
		return nil, fmt.Errorf("dsp: unknown window function %d", fn)
	}
	return coeffs, nil
}
