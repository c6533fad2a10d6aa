// Package fb implements the pixel display consumed by the spectrum
// visualizer as a grid of Unicode braille cells. Each terminal cell packs a
// 2x4 dot matrix, giving 2x horizontal and 4x vertical resolution over the
// character grid.
package fb

import "strings"

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// Framebuffer is a monochrome dot grid. Draw calls out of range are
// clipped; nothing panics. Present composes the braille frame string that
// the UI shows verbatim.
type Framebuffer struct {
	cols, rows int // terminal cells
	w, h       int // dots: cols*2 by rows*4
	dots       []bool
	frame      string
}

// New creates a framebuffer spanning cols x rows terminal cells.
func New(cols, rows int) *Framebuffer {
	f := &Framebuffer{}
	f.Resize(cols, rows)
	return f
}

// Resize reallocates the dot grid for a new terminal size and clears it.
// This is a cold path, driven by window size changes only.
func (f *Framebuffer) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	f.cols, f.rows = cols, rows
	f.w, f.h = cols*2, rows*4
	f.dots = make([]bool, f.w*f.h)
	f.frame = ""
}

// Size returns the drawable area in dots.
func (f *Framebuffer) Size() (w, h int) { return f.w, f.h }

// Clear switches every dot off.
func (f *Framebuffer) Clear() {
	for i := range f.dots {
		f.dots[i] = false
	}
}

// DrawPixel switches one dot on.
func (f *Framebuffer) DrawPixel(x, y int) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return
	}
	f.dots[y*f.w+x] = true
}

// FillRect switches on the dots of a w x h rectangle at (x, y), clipped to
// the grid.
func (f *Framebuffer) FillRect(x, y, w, h int) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, f.w), min(y+h, f.h)
	for yy := y0; yy < y1; yy++ {
		row := yy * f.w
		for xx := x0; xx < x1; xx++ {
			f.dots[row+xx] = true
		}
	}
}

// Present packs the dot grid into braille runes and stores the frame.
func (f *Framebuffer) Present() {
	var sb strings.Builder
	sb.Grow(f.rows * (f.cols*3 + 1)) // braille runes are 3 bytes in UTF-8

	for row := 0; row < f.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < f.cols; col++ {
			var pattern uint
			for dx := 0; dx < 2; dx++ {
				x := col*2 + dx
				for dy := 0; dy < 4; dy++ {
					y := row*4 + dy
					if f.dots[y*f.w+x] {
						pattern |= 1 << brailleBits[dx][dy]
					}
				}
			}
			sb.WriteRune(rune(0x2800 + pattern))
		}
	}
	f.frame = sb.String()
}

// Frame returns the string composed by the last Present.
func (f *Framebuffer) Frame() string { return f.frame }
