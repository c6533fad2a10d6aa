package fb

import (
	"strings"
	"testing"
)

func TestEmptyFrameIsBlankBraille(t *testing.T) {
	f := New(4, 2)
	f.Present()
	lines := strings.Split(f.Frame(), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for _, line := range lines {
		for _, r := range line {
			if r != 0x2800 {
				t.Fatalf("empty cell rendered as %U, want U+2800", r)
			}
		}
		if len([]rune(line)) != 4 {
			t.Fatalf("line has %d cells, want 4", len([]rune(line)))
		}
	}
}

func TestDrawPixelSetsExpectedDot(t *testing.T) {
	// Dot (0,0) is braille bit 0: U+2801.
	f := New(1, 1)
	f.DrawPixel(0, 0)
	f.Present()
	if f.Frame() != "⠁" {
		t.Errorf("frame = %q, want ⠁", f.Frame())
	}

	// Dot (1,3) is bit 7: U+2880.
	f.Clear()
	f.DrawPixel(1, 3)
	f.Present()
	if f.Frame() != "⢀" {
		t.Errorf("frame = %q, want ⢀", f.Frame())
	}
}

func TestFillRectFullCell(t *testing.T) {
	// All eight dots on is U+28FF.
	f := New(1, 1)
	f.FillRect(0, 0, 2, 4)
	f.Present()
	if f.Frame() != "⣿" {
		t.Errorf("frame = %q, want ⣿", f.Frame())
	}
}

func TestDrawClipsOutOfRange(t *testing.T) {
	f := New(2, 2)
	f.DrawPixel(-1, 0)
	f.DrawPixel(0, -5)
	f.DrawPixel(100, 100)
	f.FillRect(-10, -10, 1000, 1000)
	f.Present()

	// The oversized rect covers the whole grid; every cell is full.
	for _, r := range strings.ReplaceAll(f.Frame(), "\n", "") {
		if r != 0x28ff {
			t.Errorf("cell %U, want U+28FF", r)
		}
	}
}

func TestResizeClampsAndClears(t *testing.T) {
	f := New(4, 2)
	f.FillRect(0, 0, 8, 8)
	f.Resize(0, -3)
	w, h := f.Size()
	if w != 2 || h != 4 {
		t.Errorf("Size() = %dx%d after degenerate resize, want 2x4", w, h)
	}
	f.Present()
	if f.Frame() != "⠀" {
		t.Errorf("frame = %q after resize, want blank cell", f.Frame())
	}
}

func TestSizeMatchesDotGeometry(t *testing.T) {
	f := New(40, 10)
	w, h := f.Size()
	if w != 80 || h != 40 {
		t.Errorf("Size() = %dx%d, want 80x40", w, h)
	}
}
