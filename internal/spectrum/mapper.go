// Package spectrum turns magnitude spectra into display bars: bin-to-bar
// aggregation, temporal smoothing with peak hold, and rendering onto a
// pixel display.
package spectrum

import (
	"fmt"
	"math"
)

// ScaleMode selects the frequency axis mapping from bins to bars.
type ScaleMode int

const (
	Linear ScaleMode = iota
	Logarithmic
)

func (m ScaleMode) String() string {
	if m == Logarithmic {
		return "log"
	}
	return "linear"
}

// Mapper assigns each display bar a contiguous range of spectrum bins. The
// ranges are computed once at construction and partition [0, bins) exactly:
// no gaps, no overlaps, every bar owns at least one bin.
type Mapper struct {
	bins int
	bars int
	mode ScaleMode
	lo   []int // inclusive start bin per bar
	hi   []int // exclusive end bin per bar
}

// NewMapper builds the bin partition for bins spectrum bins (N/2) and bars
// display bars. bars must be in [1, bins].
func NewMapper(bins, bars int, mode ScaleMode) (*Mapper, error) {
	if bins < 1 || bars < 1 || bars > bins {
		return nil, fmt.Errorf("spectrum: need 1 <= bars <= bins, got bars=%d bins=%d", bars, bins)
	}

	m := &Mapper{
		bins: bins,
		bars: bars,
		mode: mode,
		lo:   make([]int, bars),
		hi:   make([]int, bars),
	}

	bounds := make([]int, bars+1)
	bounds[bars] = bins
	switch mode {
	case Logarithmic:
		// Boundaries evenly spaced in log frequency: bins^(i/bars),
		// rounded to bin indices. Collisions at the low end are pushed
		// up, then a backward pass keeps the top strictly increasing,
		// so every bar owns at least one bin even when bars is close
		// to bins. Bin 0 always belongs to the first bar and the top
		// bin to the last.
		for i := 1; i < bars; i++ {
			bounds[i] = int(math.Round(math.Pow(float64(bins), float64(i)/float64(bars))))
		}
		bounds[0] = 0
		for i := 1; i < bars; i++ {
			if bounds[i] <= bounds[i-1] {
				bounds[i] = bounds[i-1] + 1
			}
		}
		for i := bars - 1; i > 0; i-- {
			if bounds[i] >= bounds[i+1] {
				bounds[i] = bounds[i+1] - 1
			}
		}
	default:
		// Evenly spaced in bin index.
		for i := 1; i < bars; i++ {
			bounds[i] = i * bins / bars
		}
	}

	for i := 0; i < bars; i++ {
		m.lo[i] = bounds[i]
		m.hi[i] = bounds[i+1]
	}
	return m, nil
}

// Map aggregates magnitudes into bars, in place, with no allocation. The
// bar value is the maximum magnitude among its owned bins.
func (m *Mapper) Map(mags, bars []float64) {
	for i := 0; i < m.bars; i++ {
		peak := 0.0
		for b := m.lo[i]; b < m.hi[i] && b < len(mags); b++ {
			if mags[b] > peak {
				peak = mags[b]
			}
		}
		bars[i] = peak
	}
}

// BinRange returns the [lo, hi) bin range owned by bar i.
func (m *Mapper) BinRange(i int) (lo, hi int) { return m.lo[i], m.hi[i] }

// BarForBin returns the index of the bar owning the given bin.
func (m *Mapper) BarForBin(bin int) int {
	for i := 0; i < m.bars; i++ {
		if bin >= m.lo[i] && bin < m.hi[i] {
			return i
		}
	}
	return m.bars - 1
}

func (m *Mapper) Bars() int       { return m.bars }
func (m *Mapper) Bins() int       { return m.bins }
func (m *Mapper) Mode() ScaleMode { return m.mode }
