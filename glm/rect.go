package glm

// Rect is a viewport rectangle in normalized [0, 1] coordinates
// relative to the size of a render target.
type Rect struct {
	X, Y, W, H float32
}

// FullRect covers the complete render target.
var FullRect = Rect{0, 0, 1, 1}

func (r Rect) IsFull() bool {
	return r == FullRect
}

// Pixels converts the rectangle into pixel coordinates of a target with the
// given size. The result is clamped to the target.
func (r Rect) Pixels(width, height int) (x, y, w, h int) {
	x = int(r.X * float32(width))
	y = int(r.Y * float32(height))
	w = int(r.W * float32(width))
	h = int(r.H * float32(height))

	x = min(max(x, 0), width)
	y = min(max(y, 0), height)
	w = min(max(w, 0), width-x)
	h = min(max(h, 0), height-y)
	return
}
