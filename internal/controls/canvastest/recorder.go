// Package canvastest provides a Canvas that records draw calls, for tests
// that assert on what a viewer or cell renderer painted.
package canvastest

import (
	"image"

	"github.com/Faultbox/packstudio/internal/controls"
)

// Op is one recorded draw call.
type Op struct {
	Kind  string // "fill", "stroke", "round", "line", "text", "image", "clear"
	Rect  controls.Rect
	Src   controls.Rect
	Radii controls.Radii
	Text  string
	Color controls.Color
	Image image.Image
}

// Recorder is a controls.Canvas with fixed-width text metrics: every rune is
// CharWidth pixels wide and lines are LineH pixels tall.
type Recorder struct {
	W, H      float32
	CharWidth float32
	LineH     float32
	Ops       []Op
	clips     []controls.Rect
}

// New returns a w x h recorder.
func New(w, h float32) *Recorder {
	return &Recorder{W: w, H: h, CharWidth: 7, LineH: 13}
}

// Reset forgets recorded operations.
func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }

// Count returns the number of recorded ops of a kind.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Texts returns the recorded text strings in paint order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == "text" {
			out = append(out, op.Text)
		}
	}
	return out
}

// Find returns the first op of kind whose text equals text.
func (r *Recorder) Find(kind, text string) (Op, bool) {
	for _, op := range r.Ops {
		if op.Kind == kind && op.Text == text {
			return op, true
		}
	}
	return Op{}, false
}

func (r *Recorder) Size() (float32, float32) { return r.W, r.H }

func (r *Recorder) Clear(c controls.Color) {
	r.Ops = append(r.Ops, Op{Kind: "clear", Color: c})
}

func (r *Recorder) FillRect(rect controls.Rect, c controls.Color) {
	r.Ops = append(r.Ops, Op{Kind: "fill", Rect: rect, Color: c})
}

func (r *Recorder) StrokeRect(rect controls.Rect, c controls.Color) {
	r.Ops = append(r.Ops, Op{Kind: "stroke", Rect: rect, Color: c})
}

func (r *Recorder) FillRoundRect(rect controls.Rect, radii controls.Radii, c controls.Color) {
	r.Ops = append(r.Ops, Op{Kind: "round", Rect: rect, Radii: radii, Color: c})
}

func (r *Recorder) DrawLine(x0, y0, x1, y1 float32, c controls.Color) {
	r.Ops = append(r.Ops, Op{Kind: "line", Rect: controls.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, Color: c})
}

func (r *Recorder) DrawText(text string, x, y float32, c controls.Color) {
	r.Ops = append(r.Ops, Op{
		Kind:  "text",
		Text:  text,
		Rect:  controls.Rect{X: x, Y: y, W: r.MeasureText(text), H: r.LineH},
		Color: c,
	})
}

func (r *Recorder) MeasureText(text string) float32 {
	return float32(len([]rune(text))) * r.CharWidth
}

func (r *Recorder) LineHeight() float32 { return r.LineH }

func (r *Recorder) DrawImage(src image.Image, srcRect controls.Rect, dst controls.Rect) {
	r.Ops = append(r.Ops, Op{Kind: "image", Rect: dst, Src: srcRect, Image: src})
}

func (r *Recorder) PushClip(rect controls.Rect) { r.clips = append(r.clips, rect) }

func (r *Recorder) PopClip() {
	if n := len(r.clips); n > 0 {
		r.clips = r.clips[:n-1]
	}
}

// ClipDepth returns the number of clips currently pushed.
func (r *Recorder) ClipDepth() int { return len(r.clips) }
