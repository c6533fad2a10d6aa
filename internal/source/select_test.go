package source

import (
	"testing"

	"github.com/olivier-w/spectro/internal/config"
)

func TestSelectSelfTestWins(t *testing.T) {
	cfg := config.Default()
	cfg.SelfTest = true
	cfg.File = "whatever.wav"
	cfg.ToneHz = 440

	src, note, err := Select(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	if _, ok := src.(*SweepSource); !ok {
		t.Fatalf("got %T, want *SweepSource", src)
	}
	if note != "" {
		t.Errorf("unexpected note %q", note)
	}
}

func TestSelectTones(t *testing.T) {
	cfg := config.Default()
	cfg.ToneHz = 440
	src, _, err := Select(cfg)
	if err != nil {
		t.Fatal(err)
	}
	src.Close()
	if _, ok := src.(*SineSource); !ok {
		t.Fatalf("got %T, want *SineSource", src)
	}

	cfg.TonesHz = []float64{300, 700}
	src, _, err = Select(cfg)
	if err != nil {
		t.Fatal(err)
	}
	src.Close()
	if _, ok := src.(*MultiToneSource); !ok {
		t.Fatalf("got %T, want *MultiToneSource", src)
	}
}

func TestSelectMissingFileFallsBack(t *testing.T) {
	cfg := config.Default()
	cfg.File = "/no/such/file.wav"

	src, note, err := Select(cfg)
	if err != nil {
		t.Fatalf("fallback should not error, got %v", err)
	}
	defer src.Close()
	if _, ok := src.(*SweepSource); !ok {
		t.Fatalf("got %T, want sweep fallback", src)
	}
	if note == "" {
		t.Error("expected a degradation note")
	}
}

func TestSelectDefaultIsSweep(t *testing.T) {
	src, note, err := Select(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	if _, ok := src.(*SweepSource); !ok {
		t.Fatalf("got %T, want *SweepSource", src)
	}
	if note != "" {
		t.Errorf("unexpected note %q", note)
	}
}

func TestSelectValidFile(t *testing.T) {
	path := writeWAV(t, "ok.wav", 1, 1, 8000, 16, pcm16(0, 100, 200, 300))
	cfg := config.Default()
	cfg.File = path

	src, note, err := Select(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	if _, ok := src.(*FileSource); !ok {
		t.Fatalf("got %T, want *FileSource", src)
	}
	if note != "" {
		t.Errorf("unexpected note %q", note)
	}
}
