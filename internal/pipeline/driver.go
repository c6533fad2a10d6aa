// Package pipeline orchestrates one analysis frame: pull a sample block,
// window and transform it, aggregate bins into bars, advance the smoothing
// state and render. The driver owns every buffer involved and allocates all
// of them up front; a frame performs no heap work.
package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/olivier-w/spectro/internal/config"
	"github.com/olivier-w/spectro/internal/dsp"
	"github.com/olivier-w/spectro/internal/source"
	"github.com/olivier-w/spectro/internal/spectrum"
)

// Magnitudes are mapped to display levels on a dB scale relative to the
// loudest bar of the frame, floored at minDB.
const (
	minDB        = -60.0
	minMagnitude = 1e-3
)

// FrameInfo summarizes one Step.
type FrameInfo struct {
	Samples int           // genuine samples in the block (rest is padding)
	EOS     bool          // source exhausted
	Elapsed time.Duration // wall time the frame took
}

// Driver runs the per-frame sequence against a fixed configuration. The
// sample block is overwritten in place every frame; nothing is retained
// across frames except the smoothing state.
type Driver struct {
	src     source.Source
	engine  *dsp.Engine
	mapper  *spectrum.Mapper
	vis     *spectrum.Visualizer
	display spectrum.Display

	block    []float64
	bars     []float64
	interval time.Duration
	frames   uint64
}

// New wires a driver from an already-validated configuration. The display
// may be resized at any time between frames.
func New(cfg config.Config, src source.Source, display spectrum.Display) (*Driver, error) {
	windowFn, err := dsp.ParseWindowFunc(cfg.Window)
	if err != nil {
		return nil, err
	}
	engine, err := dsp.NewEngine(cfg.FFTSize, windowFn)
	if err != nil {
		return nil, err
	}
	mapper, err := spectrum.NewMapper(engine.Bins(), cfg.Bars, scaleMode(cfg.Scale))
	if err != nil {
		return nil, err
	}

	return &Driver{
		src:      src,
		engine:   engine,
		mapper:   mapper,
		vis:      spectrum.NewVisualizer(cfg.Bars, cfg.Alpha, cfg.PeakHoldFrames, cfg.PeakDecayStep),
		display:  display,
		block:    make([]float64, cfg.FFTSize),
		bars:     make([]float64, cfg.Bars),
		interval: time.Second / time.Duration(cfg.FrameRate),
	}, nil
}

func scaleMode(m config.ScaleMode) spectrum.ScaleMode {
	if m == config.ScaleLinear {
		return spectrum.Linear
	}
	return spectrum.Logarithmic
}

// Step runs one frame: pull → transform → map → smooth → render.
func (d *Driver) Step() FrameInfo {
	start := time.Now()

	n, eos := d.src.ReadBlock(d.block)
	mags := d.engine.Transform(d.block)
	d.mapper.Map(mags, d.bars)
	levelize(d.bars)
	d.vis.Update(d.bars)
	d.vis.Render(d.display)

	d.frames++
	return FrameInfo{Samples: n, EOS: eos, Elapsed: time.Since(start)}
}

// levelize converts raw bar magnitudes to display levels in [0, 1]: each
// bar is expressed in dB relative to the loudest bar of the frame and
// mapped onto [minDB, 0].
func levelize(bars []float64) {
	peak := minMagnitude
	for _, v := range bars {
		if v > peak {
			peak = v
		}
	}
	for i, v := range bars {
		if v < 1e-10 {
			bars[i] = 0
			continue
		}
		db := 20 * math.Log10(v/peak)
		if db < minDB {
			db = minDB
		}
		bars[i] = (db - minDB) / -minDB
	}
}

// Run drives frames at the target interval until the context is cancelled
// or the source reports end-of-stream. Timing is soft: an overrunning frame
// pushes the next one later instead of dropping frames or samples. The
// source is closed on the way out.
func (d *Driver) Run(ctx context.Context) error {
	return d.RunFrames(ctx, 0)
}

// RunFrames is Run bounded to at most n frames; n <= 0 means unlimited.
func (d *Driver) RunFrames(ctx context.Context, n int) error {
	defer d.src.Close()

	deadline := time.Now()
	for produced := 0; n <= 0 || produced < n; produced++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		info := d.Step()
		if info.EOS {
			return nil
		}

		deadline = deadline.Add(d.interval)
		now := time.Now()
		if now.Before(deadline) {
			time.Sleep(deadline.Sub(now))
		} else {
			// Sustained overrun: degrade frame rate, do not burst.
			deadline = now
		}
	}
	return nil
}

// Interval returns the target frame interval.
func (d *Driver) Interval() time.Duration { return d.interval }

// FFTSize returns the transform size.
func (d *Driver) FFTSize() int { return d.engine.Size() }

// Bars returns the number of spectrum bars.
func (d *Driver) Bars() int { return len(d.bars) }

// Frames returns how many frames have been produced.
func (d *Driver) Frames() uint64 { return d.frames }

// Source returns the active sample provider.
func (d *Driver) Source() source.Source { return d.src }

// ScaleMode reports the active bin-to-bar mapping mode.
func (d *Driver) ScaleMode() spectrum.ScaleMode { return d.mapper.Mode() }

// CycleScaleMode switches between linear and logarithmic mapping,
// rebuilding the bin partition. Smoothing state carries over.
func (d *Driver) CycleScaleMode() error {
	next := spectrum.Linear
	if d.mapper.Mode() == spectrum.Linear {
		next = spectrum.Logarithmic
	}
	mapper, err := spectrum.NewMapper(d.engine.Bins(), len(d.bars), next)
	if err != nil {
		return err
	}
	d.mapper = mapper
	return nil
}

// WindowFunc reports the active window function.
func (d *Driver) WindowFunc() dsp.WindowFunc { return d.engine.Window() }

// CycleWindow advances to the next window function.
func (d *Driver) CycleWindow() error {
	return d.engine.SetWindow(d.engine.Window().Next())
}

// TogglePeaks flips the peak marker line and reports the new state.
func (d *Driver) TogglePeaks() bool {
	show := !d.vis.ShowPeaks()
	d.vis.SetShowPeaks(show)
	return show
}

// SetSpringEase forwards display easing configuration to the visualizer.
func (d *Driver) SetSpringEase(fps int) { d.vis.SetSpringEase(fps) }

// Reset clears all smoothing state, as on restart.
func (d *Driver) Reset() { d.vis.Reset() }

// Visualizer exposes the smoothing state, mainly for tests and the UI.
func (d *Driver) Visualizer() *spectrum.Visualizer { return d.vis }

// Mapper exposes the active bin partition.
func (d *Driver) Mapper() *spectrum.Mapper { return d.mapper }

// Close releases the source.
func (d *Driver) Close() error { return d.src.Close() }
