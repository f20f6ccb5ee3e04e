package viewers

import (
	"github.com/chewxy/math32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/Faultbox/packstudio/internal/controls"
)

// Scrollbar geometry.
const (
	ScrollbarWidth    = 10
	ScrollbarMinThumb = 20
)

// Scrollbar is the vertical scrollbar painted along a viewer's right edge.
// It sizes its thumb from content height against viewport height.
type Scrollbar struct {
	Width float32

	dragging   bool
	dragOffset float32
}

// track returns the scrollbar track for a viewport.
func (s *Scrollbar) track(viewW, viewH float32) controls.Rect {
	return controls.NewRect(viewW-s.Width, 0, s.Width, viewH)
}

// thumb returns the thumb box, or false when everything fits and no
// scrollbar is shown.
func (s *Scrollbar) thumb(viewW, viewH, contentH, scrollY float32) (controls.Rect, bool) {
	if contentH <= viewH || viewH <= 0 {
		return controls.Rect{}, false
	}
	h := math32.Max(ScrollbarMinThumb, viewH*viewH/contentH)
	travel := viewH - h
	y := -scrollY / (contentH - viewH) * travel
	return controls.NewRect(viewW-s.Width, y, s.Width, h), true
}

// scrollForThumbY maps a thumb top position back to a scroll offset.
func (s *Scrollbar) scrollForThumbY(thumbY, thumbH, viewH, contentH float32) float32 {
	travel := viewH - thumbH
	if travel <= 0 {
		return 0
	}
	return -(thumbY / travel) * (contentH - viewH)
}

func (v *Viewer[T]) paintScrollbar(c controls.Canvas) {
	thumb, ok := v.scrollbar.thumb(v.width, v.height, v.contentHeight, v.scrollY)
	if !ok {
		return
	}
	c.FillRect(v.scrollbar.track(v.width, v.height), controls.ColorScrollTrack)
	color := controls.ColorScrollThumb
	if v.scrollbar.dragging {
		color = controls.ColorScrollActive
	}
	c.FillRoundRect(thumb.Inset(2), controls.UniformRadii(3), color)
}

// scrollbarPress handles a press on the scrollbar: grabbing the thumb starts
// a drag, pressing the track jumps so the thumb centers on the pointer.
// It reports whether the press hit the scrollbar.
func (v *Viewer[T]) scrollbarPress(x, y float32) bool {
	thumb, ok := v.scrollbar.thumb(v.width, v.height, v.contentHeight, v.scrollY)
	if !ok || !v.scrollbar.track(v.width, v.height).Contains(x, y) {
		return false
	}
	if thumb.Contains(x, y) {
		v.scrollbar.dragging = true
		v.scrollbar.dragOffset = y - thumb.Y
		return true
	}
	target := v.scrollbar.scrollForThumbY(y-thumb.H/2, thumb.H, v.height, v.contentHeight)
	v.AnimateScrollTo(target, 0.2)
	return true
}

func (v *Viewer[T]) scrollbarDrag(y float32) {
	thumb, ok := v.scrollbar.thumb(v.width, v.height, v.contentHeight, v.scrollY)
	if !ok {
		return
	}
	v.SetScrollY(v.scrollbar.scrollForThumbY(y-v.scrollbar.dragOffset, thumb.H, v.height, v.contentHeight))
}

// --- Animated scrolling ---

// AnimateScrollTo eases the scroll offset to y over duration seconds.
// Tick advances the animation.
func (v *Viewer[T]) AnimateScrollTo(y float32, duration float32) {
	target := v.clampScroll(y)
	if duration <= 0 || target == v.scrollY {
		v.SetScrollY(target)
		return
	}
	v.scrollTween = gween.New(v.scrollY, target, duration, ease.OutCubic)
}

// Animating reports whether a scroll animation is running.
func (v *Viewer[T]) Animating() bool { return v.scrollTween != nil }

// Tick advances animations by dt seconds and repaints when anything moved.
// It reports whether a repaint happened.
func (v *Viewer[T]) Tick(dt float32) bool {
	if v.scrollTween == nil {
		return false
	}
	val, done := v.scrollTween.Update(dt)
	v.scrollY = v.clampScroll(val)
	if done {
		v.scrollTween = nil
	}
	v.Repaint()
	return true
}
