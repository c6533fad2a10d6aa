package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/olivier-w/spectro/internal/config"
	"github.com/olivier-w/spectro/internal/fb"
	"github.com/olivier-w/spectro/internal/pipeline"
	"github.com/olivier-w/spectro/internal/player"
	"github.com/olivier-w/spectro/internal/source"
	"github.com/olivier-w/spectro/internal/ui"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if _, ok := err.(*config.ValidationError); ok {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		headless   int
	)
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:           "spectro [file.wav]",
		Short:         "Terminal spectrum analyzer for PCM audio",
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Layering: defaults, then the YAML file, then only the
			// flags the user actually set.
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			overlayFlags(cmd, &loaded, cfg)
			if len(args) == 1 {
				loaded.File = args[0]
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			return run(loaded, headless)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("spectro %s\n", version)
		},
	})

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML configuration file")
	f.IntVar(&headless, "headless", 0, "render N frames without the TUI, then exit")

	f.IntVar(&cfg.SampleRate, "rate", cfg.SampleRate, "sample rate in Hz for synthetic sources")
	f.IntVarP(&cfg.FFTSize, "fft-size", "n", cfg.FFTSize, "transform size, power of two")
	f.IntVarP(&cfg.Bars, "bars", "b", cfg.Bars, "number of spectrum bars")
	f.StringVarP(&cfg.Window, "window", "w", cfg.Window, "window function (hann, hamming, blackman, ...)")
	f.StringVar((*string)(&cfg.Scale), "scale", string(cfg.Scale), "bar frequency scale: linear or logarithmic")
	f.Float64Var(&cfg.Alpha, "alpha", cfg.Alpha, "smoothing factor in (0, 1]")
	f.IntVar(&cfg.PeakHoldFrames, "peak-hold", cfg.PeakHoldFrames, "frames to hold peak markers before decay")
	f.Float64Var(&cfg.PeakDecayStep, "peak-decay", cfg.PeakDecayStep, "per-frame peak fall after the hold")
	f.BoolVar(&cfg.Loop, "loop", cfg.Loop, "loop the file at end of data")
	f.BoolVar(&cfg.SelfTest, "self-test", cfg.SelfTest, "use the built-in sweep signal")
	f.BoolVarP(&cfg.LiveInput, "live", "l", cfg.LiveInput, "capture from the default input device")
	f.Float64Var(&cfg.ToneHz, "tone", cfg.ToneHz, "synthesize a single tone at this frequency")
	f.Float64SliceVar(&cfg.TonesHz, "tones", nil, "synthesize a mix of tones at these frequencies")
	f.Float64Var(&cfg.Amplitude, "amplitude", cfg.Amplitude, "synthetic source amplitude in (0, 1]")
	f.Float64Var(&cfg.SweepStartHz, "sweep-start", cfg.SweepStartHz, "sweep start frequency")
	f.Float64Var(&cfg.SweepEndHz, "sweep-end", cfg.SweepEndHz, "sweep end frequency")
	f.Float64Var(&cfg.SweepSeconds, "sweep-seconds", cfg.SweepSeconds, "seconds per sweep direction")
	f.IntVar(&cfg.FrameRate, "fps", cfg.FrameRate, "target frames per second")
	f.BoolVarP(&cfg.Play, "play", "p", cfg.Play, "play file audio while visualizing")

	return cmd
}

// overlayFlags copies into dst only the options whose flags were set on the
// command line, so flag defaults never shadow YAML values.
func overlayFlags(cmd *cobra.Command, dst *config.Config, flags config.Config) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }

	if set("rate") {
		dst.SampleRate = flags.SampleRate
	}
	if set("fft-size") {
		dst.FFTSize = flags.FFTSize
	}
	if set("bars") {
		dst.Bars = flags.Bars
	}
	if set("window") {
		dst.Window = flags.Window
	}
	if set("scale") {
		dst.Scale = flags.Scale
	}
	if set("alpha") {
		dst.Alpha = flags.Alpha
	}
	if set("peak-hold") {
		dst.PeakHoldFrames = flags.PeakHoldFrames
	}
	if set("peak-decay") {
		dst.PeakDecayStep = flags.PeakDecayStep
	}
	if set("loop") {
		dst.Loop = flags.Loop
	}
	if set("self-test") {
		dst.SelfTest = flags.SelfTest
	}
	if set("live") {
		dst.LiveInput = flags.LiveInput
	}
	if set("tone") {
		dst.ToneHz = flags.ToneHz
	}
	if set("tones") {
		dst.TonesHz = flags.TonesHz
	}
	if set("amplitude") {
		dst.Amplitude = flags.Amplitude
	}
	if set("sweep-start") {
		dst.SweepStartHz = flags.SweepStartHz
	}
	if set("sweep-end") {
		dst.SweepEndHz = flags.SweepEndHz
	}
	if set("sweep-seconds") {
		dst.SweepSeconds = flags.SweepSeconds
	}
	if set("fps") {
		dst.FrameRate = flags.FrameRate
	}
	if set("play") {
		dst.Play = flags.Play
	}
}

func run(cfg config.Config, headless int) error {
	if cfg.LiveInput {
		if err := source.Initialize(); err != nil {
			return err
		}
		defer source.Terminate()
	}

	src, note, err := source.Select(cfg)
	if err != nil {
		return err
	}

	frame := fb.New(80, 20)
	driver, err := pipeline.New(cfg, src, frame)
	if err != nil {
		src.Close()
		return err
	}

	if headless > 0 {
		return runHeadless(driver, headless)
	}

	// Playback is a bonus; the analyzer runs fine without a device.
	var play *player.Player
	if cfg.Play && cfg.File != "" && !cfg.LiveInput {
		play, err = player.New(cfg.File, cfg.Loop)
		if err != nil {
			if note != "" {
				note += "; "
			}
			note += fmt.Sprintf("playback unavailable: %v", err)
			play = nil
		}
	}

	driver.SetSpringEase(cfg.FrameRate)
	model := ui.New(driver, frame, play, note)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// runHeadless paces frames exactly like the interactive mode but draws into
// the off-screen buffer only. Useful for timing and soak runs.
func runHeadless(driver *pipeline.Driver, frames int) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := driver.RunFrames(ctx, frames)
	fmt.Fprintf(os.Stderr, "rendered %d frames\n", driver.Frames())
	return err
}
