package spectrum

import "math"

// Bar is the per-bar smoothing state. Value and Peak live in the display
// range [0, 1].
type Bar struct {
	Value float64 // EMA-smoothed level
	Peak  float64 // peak marker level, >= Value except while tracking it down
	Hold  int     // frames left before the peak starts falling
}

// Visualizer applies temporal smoothing and peak-hold decay to bar levels
// and draws them. Each bar's state machine is independent: the smoothed
// value follows an EMA of the input, and the peak marker latches the
// maximum, holds for a fixed number of frames, then falls by a fixed step
// per frame until it meets the smoothed value.
type Visualizer struct {
	alpha      float64
	holdFrames int
	decayStep  float64
	showPeaks  bool
	bars       []Bar
	ease       *springField
}

// NewVisualizer creates smoothing state for n bars. alpha is the EMA
// factor in (0, 1] (smaller is smoother), holdFrames the peak hold
// duration in frames, decayStep the per-frame peak fall in display units.
func NewVisualizer(n int, alpha float64, holdFrames int, decayStep float64) *Visualizer {
	return &Visualizer{
		alpha:      alpha,
		holdFrames: holdFrames,
		decayStep:  decayStep,
		showPeaks:  true,
		bars:       make([]Bar, n),
	}
}

// Update advances every bar's state machine with the raw levels for this
// frame. Inputs are expected in [0, 1]; non-finite values are sanitized to
// zero and the smoothed result is clamped, so a bad frame can never poison
// the display.
func (v *Visualizer) Update(raw []float64) {
	for i := range v.bars {
		in := 0.0
		if i < len(raw) {
			in = raw[i]
			if math.IsNaN(in) || math.IsInf(in, 0) {
				in = 0
			}
		}

		b := &v.bars[i]
		b.Value = v.alpha*in + (1-v.alpha)*b.Value
		if b.Value < 0 {
			b.Value = 0
		} else if b.Value > 1 {
			b.Value = 1
		}

		if in > b.Peak {
			b.Peak = in
			if b.Peak > 1 {
				b.Peak = 1
			}
			b.Hold = v.holdFrames
		} else if b.Hold > 0 {
			b.Hold--
		} else if b.Peak > b.Value {
			b.Peak -= v.decayStep
			if b.Peak < b.Value {
				b.Peak = b.Value
			}
		} else {
			b.Peak = b.Value
		}
	}
}

// Render draws one filled rectangle per bar plus a one-pixel peak marker
// line, then presents the frame.
func (v *Visualizer) Render(d Display) {
	width, height := d.Size()
	if width < 1 || height < 1 {
		return
	}
	d.Clear()

	n := len(v.bars)
	cell := width / n
	if cell < 1 {
		cell = 1
	}
	gap := 0
	if cell > 1 {
		gap = 1
	}
	barWidth := cell - gap

	for i, b := range v.bars {
		x := i * cell
		level := b.Value
		if v.ease != nil {
			level = v.ease.step(i, b.Value)
		}
		h := int(level * float64(height))
		if h > 0 {
			d.FillRect(x, height-h, barWidth, h)
		}

		if v.showPeaks && b.Peak > 0 {
			py := height - 1 - int(b.Peak*float64(height-1))
			for dx := 0; dx < barWidth; dx++ {
				d.DrawPixel(x+dx, py)
			}
		}
	}

	d.Present()
}

// Bars exposes the current state for inspection; the slice is live.
func (v *Visualizer) Bars() []Bar { return v.bars }

// SetShowPeaks toggles the peak marker line.
func (v *Visualizer) SetShowPeaks(show bool) { v.showPeaks = show }

func (v *Visualizer) ShowPeaks() bool { return v.showPeaks }

// Reset clears all smoothing state, as on an explicit restart.
func (v *Visualizer) Reset() {
	for i := range v.bars {
		v.bars[i] = Bar{}
	}
}
