package controls

import "image"

// Radii holds per-corner radii for rounded rectangles, clockwise from top-left.
type Radii struct {
	TopLeft, TopRight, BottomRight, BottomLeft float32
}

// UniformRadii returns the same radius on every corner.
func UniformRadii(r float32) Radii {
	return Radii{r, r, r, r}
}

// Canvas is the 2D drawing surface viewers paint into.
//
// Text is positioned by its top-left corner; LineHeight reports the distance
// between consecutive lines. Clips nest: PushClip intersects with the current
// clip and PopClip restores the previous one.
type Canvas interface {
	Size() (w, h float32)
	Clear(c Color)
	FillRect(r Rect, c Color)
	StrokeRect(r Rect, c Color)
	FillRoundRect(r Rect, radii Radii, c Color)
	DrawLine(x0, y0, x1, y1 float32, c Color)
	DrawText(text string, x, y float32, c Color)
	MeasureText(text string) float32
	LineHeight() float32
	DrawImage(src image.Image, srcRect Rect, dst Rect)
	PushClip(r Rect)
	PopClip()
}

// Region is a Canvas view onto a sub-rectangle of another Canvas. Coordinates
// passed to a Region are relative to its top-left corner.
type Region struct {
	parent Canvas
	bounds Rect
}

// NewRegion returns a Region of parent covering bounds.
func NewRegion(parent Canvas, bounds Rect) *Region {
	return &Region{parent: parent, bounds: bounds}
}

// SetBounds moves or resizes the region.
func (r *Region) SetBounds(b Rect) { r.bounds = b }

// Bounds returns the region in parent coordinates.
func (r *Region) Bounds() Rect { return r.bounds }

func (r *Region) Size() (float32, float32) { return r.bounds.W, r.bounds.H }

func (r *Region) Clear(c Color) {
	r.parent.FillRect(r.bounds, c)
}

func (r *Region) FillRect(rect Rect, c Color) {
	r.parent.FillRect(r.tr(rect), c)
}

func (r *Region) StrokeRect(rect Rect, c Color) {
	r.parent.StrokeRect(r.tr(rect), c)
}

func (r *Region) FillRoundRect(rect Rect, radii Radii, c Color) {
	r.parent.FillRoundRect(r.tr(rect), radii, c)
}

func (r *Region) DrawLine(x0, y0, x1, y1 float32, c Color) {
	r.parent.DrawLine(x0+r.bounds.X, y0+r.bounds.Y, x1+r.bounds.X, y1+r.bounds.Y, c)
}

func (r *Region) DrawText(text string, x, y float32, c Color) {
	r.parent.DrawText(text, x+r.bounds.X, y+r.bounds.Y, c)
}

func (r *Region) MeasureText(text string) float32 { return r.parent.MeasureText(text) }

func (r *Region) LineHeight() float32 { return r.parent.LineHeight() }

func (r *Region) DrawImage(src image.Image, srcRect Rect, dst Rect) {
	r.parent.DrawImage(src, srcRect, r.tr(dst))
}

func (r *Region) PushClip(rect Rect) { r.parent.PushClip(r.tr(rect)) }

func (r *Region) PopClip() { r.parent.PopClip() }

func (r *Region) tr(rect Rect) Rect {
	return rect.Translate(r.bounds.X, r.bounds.Y)
}

// TrimText shortens text with a trailing ellipsis until it fits maxWidth.
func TrimText(c Canvas, text string, maxWidth float32) string {
	if c.MeasureText(text) <= maxWidth {
		return text
	}
	runes := []rune(text)
	for n := len(runes) - 1; n > 0; n-- {
		s := string(runes[:n]) + "..."
		if c.MeasureText(s) <= maxWidth {
			return s
		}
	}
	return ""
}
