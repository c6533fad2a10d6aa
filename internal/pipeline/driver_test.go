package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/olivier-w/spectro/internal/config"
	"github.com/olivier-w/spectro/internal/fb"
	"github.com/olivier-w/spectro/internal/source"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.SampleRate = 8000
	cfg.FFTSize = 256
	cfg.Bars = 32
	return cfg
}

func TestDriverToneLandsInOwningBar(t *testing.T) {
	cfg := testConfig()
	src := source.NewSine(cfg.SampleRate, 1000, 0.8)
	frame := fb.New(64, 16)

	d, err := New(cfg, src, frame)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	// 1 kHz at 8 kHz over 256 points lands on bin 32.
	wantBar := d.Mapper().BarForBin(32)

	// Let the EMA settle, then the tone's bar must dominate.
	for _i := 0; _i < 15; _i++ {
		d.Step()
	}
	bars := d.Visualizer().Bars()
	argmax := 0
	for i, b := range bars {
		if b.Value > bars[argmax].Value {
			argmax = i
		}
	}
	if argmax != wantBar {
		t.Errorf("loudest bar is %d, want %d (owner of bin 32)", argmax, wantBar)
	}
	if bars[wantBar].Value < 0.9 {
		t.Errorf("owning bar level %v, want near full scale", bars[wantBar].Value)
	}
}

func TestDriverFrameReportsEOS(t *testing.T) {
	cfg := testConfig()
	cfg.Loop = false
	src := &countedSource{rate: cfg.SampleRate, blocksLeft: 3}
	frame := fb.New(32, 8)

	d, err := New(cfg, src, frame)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	var sawEOS bool
	for _i := 0; _i < 5; _i++ {
		if info := d.Step(); info.EOS {
			sawEOS = true
			break
		}
	}
	if !sawEOS {
		t.Error("driver never reported end of stream")
	}
}

// countedSource produces a fixed number of silent blocks then ends.
type countedSource struct {
	rate       int
	blocksLeft int
	closed     bool
}

func (s *countedSource) ReadBlock(dst []float64) (int, bool) {
	for i := range dst {
		dst[i] = 0
	}
	if s.blocksLeft <= 0 {
		return 0, true
	}
	s.blocksLeft--
	return len(dst), false
}

func (s *countedSource) SampleRate() int { return s.rate }
func (s *countedSource) Name() string    { return "counted" }
func (s *countedSource) Close() error    { s.closed = true; return nil }

func TestRunStopsOnEOSAndClosesSource(t *testing.T) {
	cfg := testConfig()
	cfg.FrameRate = 1000 // keep the test fast
	src := &countedSource{rate: cfg.SampleRate, blocksLeft: 2}

	d, err := New(cfg, src, fb.New(32, 8))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run returned %v on clean end of stream", err)
	}
	if !src.closed {
		t.Error("source not closed after Run")
	}
}

func TestRunHonorsContext(t *testing.T) {
	cfg := testConfig()
	cfg.FrameRate = 1000
	src := source.NewSine(cfg.SampleRate, 440, 0.8)

	d, err := New(cfg, src, fb.New(32, 8))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := d.Run(ctx); err != context.DeadlineExceeded {
		t.Errorf("Run returned %v, want context.DeadlineExceeded", err)
	}
}

func TestRunFramesBounded(t *testing.T) {
	cfg := testConfig()
	cfg.FrameRate = 1000
	src := source.NewSine(cfg.SampleRate, 440, 0.8)

	d, err := New(cfg, src, fb.New(32, 8))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.RunFrames(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	if d.Frames() != 7 {
		t.Errorf("Frames() = %d, want 7", d.Frames())
	}
}

func TestCycleScaleModeRebuildsMapper(t *testing.T) {
	cfg := testConfig()
	src := source.NewSine(cfg.SampleRate, 440, 0.8)
	d, err := New(cfg, src, fb.New(32, 8))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	before := d.ScaleMode()
	if err := d.CycleScaleMode(); err != nil {
		t.Fatal(err)
	}
	if d.ScaleMode() == before {
		t.Error("scale mode did not change")
	}
	if err := d.CycleScaleMode(); err != nil {
		t.Fatal(err)
	}
	if d.ScaleMode() != before {
		t.Error("second cycle did not return to the original mode")
	}
}

func TestCycleWindowAdvances(t *testing.T) {
	cfg := testConfig()
	src := source.NewSine(cfg.SampleRate, 440, 0.8)
	d, err := New(cfg, src, fb.New(32, 8))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	before := d.WindowFunc()
	if err := d.CycleWindow(); err != nil {
		t.Fatal(err)
	}
	if d.WindowFunc() == before {
		t.Error("window function did not change")
	}
	d.Step() // the new window must transform cleanly
}

func TestBadFileFallbackKeepsProducingFrames(t *testing.T) {
	cfg := testConfig()
	cfg.File = filepath.Join(t.TempDir(), "not-audio.wav")
	if err := os.WriteFile(cfg.File, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, note, err := source.Select(cfg)
	if err != nil {
		t.Fatalf("fallback should not error, got %v", err)
	}
	if note == "" {
		t.Error("expected a degradation note")
	}

	d, err := New(cfg, src, fb.New(32, 8))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	for i := 0; i < 10; i++ {
		if info := d.Step(); info.EOS {
			t.Fatalf("fallback source ended at frame %d", i)
		}
	}
	if d.Frames() != 10 {
		t.Errorf("Frames() = %d, want 10", d.Frames())
	}
}

func TestLevelize(t *testing.T) {
	bars := []float64{0, 1e-12, 0.001, 10, 100}
	levelize(bars)

	if bars[4] != 1 {
		t.Errorf("loudest bar level = %v, want 1", bars[4])
	}
	if bars[0] != 0 || bars[1] != 0 {
		t.Errorf("silent bars leveled to %v, %v, want 0", bars[0], bars[1])
	}
	for i, v := range bars {
		if v < 0 || v > 1 {
			t.Errorf("bar %d level %v outside [0, 1]", i, v)
		}
	}
	// 10 is -20 dB from 100: level (−20 − −60) / 60.
	want := 40.0 / 60.0
	if diff := bars[3] - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("bar 3 level = %v, want %v", bars[3], want)
	}
}
