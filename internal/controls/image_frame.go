package controls

import "context"

// ImageFrame is a named region of an Image.
type ImageFrame struct {
	name  string
	image Image
	data  FrameData
}

// NewImageFrame creates a frame. image may be nil when the backing texture
// could not be resolved; the frame then paints a placeholder.
func NewImageFrame(name string, image Image, data FrameData) *ImageFrame {
	return &ImageFrame{name: name, image: image, data: data}
}

func (f *ImageFrame) Name() string { return f.name }

func (f *ImageFrame) Image() Image { return f.image }

func (f *ImageFrame) FrameData() FrameData { return f.data }

// Width returns the untrimmed frame width.
func (f *ImageFrame) Width() float32 {
	if f.data.SrcSize.X > 0 {
		return f.data.SrcSize.X
	}
	return f.data.Src.W
}

// Height returns the untrimmed frame height.
func (f *ImageFrame) Height() float32 {
	if f.data.SrcSize.Y > 0 {
		return f.data.SrcSize.Y
	}
	return f.data.Src.H
}

// Preload loads the backing image.
func (f *ImageFrame) Preload(ctx context.Context) PreloadResult {
	if f.image == nil {
		return NothingLoaded
	}
	return f.image.Preload(ctx)
}

// Paint draws the frame best-fit into the target box, restoring its trimmed
// offset inside the original bounds.
func (f *ImageFrame) Paint(c Canvas, x, y, w, h float32, center bool) {
	if f.image == nil || f.image.State() != ImageReady {
		PaintPlaceholder(c, x, y, w, h)
		return
	}

	box := FitRect(f.Width(), f.Height(), Rect{x, y, w, h}, center)
	scale := box.W / f.Width()

	dst := f.data.Dst
	if dst.Empty() {
		dst = Rect{0, 0, f.data.Src.W, f.data.Src.H}
	}
	f.image.PaintFrame(c, f.data.Src, Rect{
		X: box.X + dst.X*scale,
		Y: box.Y + dst.Y*scale,
		W: dst.W * scale,
		H: dst.H * scale,
	})
}
