package spectrum

// Display is the drawing surface the visualizer renders onto. Coordinates
// are pixels with the origin at the top left. Implementations clip
// out-of-range draws instead of failing.
type Display interface {
	Clear()
	FillRect(x, y, w, h int)
	DrawPixel(x, y int)
	Present()
	Size() (w, h int)
}
