package controls

import (
	"context"
	"errors"
	"image"
)

// Image errors.
var (
	ErrImageNotFound = errors.New("image not found")
	ErrImageDecode   = errors.New("image decode failed")
)

// PlaceholderSize is the width and height reported by images that are not ready.
const PlaceholderSize = 16

// PreloadResult tells a caller whether a preload did any new work, so it can
// decide whether a repaint is worthwhile.
type PreloadResult int

const (
	NothingLoaded PreloadResult = iota
	ResourcesLoaded
)

// Max merges two results; any loaded resource wins.
func (r PreloadResult) Max(o PreloadResult) PreloadResult {
	if o > r {
		return o
	}
	return r
}

func (r PreloadResult) String() string {
	if r == ResourcesLoaded {
		return "resources-loaded"
	}
	return "nothing-loaded"
}

// ImageState is the load lifecycle of an Image.
type ImageState int

const (
	ImageUnloaded ImageState = iota
	ImageLoading
	ImageReady
	ImageError // terminal
)

func (s ImageState) String() string {
	switch s {
	case ImageLoading:
		return "loading"
	case ImageReady:
		return "ready"
	case ImageError:
		return "error"
	default:
		return "unloaded"
	}
}

// Image is a lazily loaded bitmap.
//
// Width and Height report the natural size once ready and PlaceholderSize
// before. Preload is idempotent and fails soft: errors move the image to
// ImageError and report NothingLoaded. Painting before the image is ready
// draws a placeholder instead of failing.
type Image interface {
	Width() float32
	Height() float32
	State() ImageState
	Preload(ctx context.Context) PreloadResult
	Bitmap() image.Image
	Paint(c Canvas, x, y, w, h float32, center bool)
	PaintFrame(c Canvas, src Rect, dst Rect)
}

// PaintBitmap draws bmp best-fit into the target box.
func PaintBitmap(c Canvas, bmp image.Image, x, y, w, h float32, center bool) {
	b := bmp.Bounds()
	src := Rect{0, 0, float32(b.Dx()), float32(b.Dy())}
	c.DrawImage(bmp, src, FitRect(src.W, src.H, Rect{x, y, w, h}, center))
}

// PaintPlaceholder draws the small cluster of dashes shown for images that
// are not ready.
func PaintPlaceholder(c Canvas, x, y, w, h float32) {
	const dash, gap = 3, 2
	cx := x + w/2
	cy := y + h/2
	for i := -1; i <= 1; i++ {
		dx := cx + float32(i)*(dash+gap) - dash/2
		c.FillRect(Rect{dx, cy - 0.5, dash, 1}, ColorPlaceholder)
	}
}
