// Package controls holds the canvas painting primitives shared by the viewers:
// geometry, colors, the Canvas contract with a raster implementation, lazily
// loaded images, image frames and the drag payload slot.
package controls

import "github.com/chewxy/math32"

// Point is a plain 2D pair.
type Point struct {
	X, Y float32
}

// Rect is an axis-aligned box.
type Rect struct {
	X, Y, W, H float32
}

// NewRect is shorthand for a Rect literal.
func NewRect(x, y, w, h float32) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Contains reports whether the point lies inside the box. Edges are inclusive.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float32 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float32 { return r.Y + r.H }

// Empty reports whether the box has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Intersect returns the overlap of two boxes, or an empty Rect.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math32.Max(r.X, o.X)
	y0 := math32.Max(r.Y, o.Y)
	x1 := math32.Min(r.Right(), o.Right())
	y1 := math32.Min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Translate returns the box moved by (dx, dy).
func (r Rect) Translate(dx, dy float32) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Inset shrinks the box by d on every side.
func (r Rect) Inset(d float32) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
}

// FrameData describes where a frame lives in its texture and how it maps back
// onto the untrimmed sprite.
//
// Src is the region inside the texture, Dst the trimmed sprite's offset and size
// inside its original bounding box, and SrcSize the original untrimmed size.
// Src.W <= SrcSize.X holds for well formed atlases; it is not validated.
type FrameData struct {
	Index   int
	Src     Rect
	Dst     Rect
	SrcSize Point
}

// FitRect returns the largest box with the aspect ratio of (w, h) that fits
// inside target. The result is vertically centered; horizontally it is
// centered only when center is set, otherwise left aligned.
func FitRect(w, h float32, target Rect, center bool) Rect {
	if w <= 0 || h <= 0 || target.Empty() {
		return Rect{X: target.X, Y: target.Y}
	}

	fitW := w * (target.H / h)
	fitH := target.H
	if fitW > target.W {
		fitH = fitH * (target.W / fitW)
		fitW = target.W
	}

	x := target.X
	if center {
		x += target.W/2 - fitW/2
	}
	y := target.Y + target.H/2 - fitH/2

	return Rect{X: math32.Floor(x), Y: math32.Floor(y), W: fitW, H: fitH}
}
