package controls

import (
	"image"

	"github.com/chewxy/math32"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RasterCanvas is a Canvas backed by an in-memory RGBA bitmap. The host
// uploads its pixels to the screen; packtool encodes them as PNG.
type RasterCanvas struct {
	img    *image.RGBA
	clips  []image.Rectangle
	face   font.Face
	ascent int
	scaler draw.Interpolator
}

// NewRasterCanvas allocates a w x h canvas.
func NewRasterCanvas(w, h int) *RasterCanvas {
	face := basicfont.Face7x13
	return &RasterCanvas{
		img:    image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1))),
		face:   face,
		ascent: face.Metrics().Ascent.Ceil(),
		// Pixel art stays crisp when scaled up.
		scaler: draw.NearestNeighbor,
	}
}

// Image returns the backing bitmap.
func (c *RasterCanvas) Image() *image.RGBA { return c.img }

// Resize reallocates the bitmap when the size changed. Clips are reset.
func (c *RasterCanvas) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if b := c.img.Bounds(); b.Dx() == w && b.Dy() == h {
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
	c.clips = c.clips[:0]
}

// SetSmoothing switches image scaling between nearest neighbour and bilinear.
func (c *RasterCanvas) SetSmoothing(on bool) {
	if on {
		c.scaler = draw.ApproxBiLinear
	} else {
		c.scaler = draw.NearestNeighbor
	}
}

func (c *RasterCanvas) Size() (float32, float32) {
	b := c.img.Bounds()
	return float32(b.Dx()), float32(b.Dy())
}

func (c *RasterCanvas) clip() image.Rectangle {
	if n := len(c.clips); n > 0 {
		return c.clips[n-1]
	}
	return c.img.Bounds()
}

func (c *RasterCanvas) target() *image.RGBA {
	return c.img.SubImage(c.clip()).(*image.RGBA)
}

func (c *RasterCanvas) PushClip(r Rect) {
	c.clips = append(c.clips, toImageRect(r).Intersect(c.clip()))
}

func (c *RasterCanvas) PopClip() {
	if n := len(c.clips); n > 0 {
		c.clips = c.clips[:n-1]
	}
}

func (c *RasterCanvas) Clear(col Color) {
	draw.Draw(c.img, c.clip(), image.NewUniform(col.NRGBA()), image.Point{}, draw.Src)
}

func (c *RasterCanvas) FillRect(r Rect, col Color) {
	if col.A <= 0 {
		return
	}
	dr := toImageRect(r).Intersect(c.clip())
	if dr.Empty() {
		return
	}
	draw.Draw(c.img, dr, image.NewUniform(col.NRGBA()), image.Point{}, draw.Over)
}

func (c *RasterCanvas) StrokeRect(r Rect, col Color) {
	c.FillRect(Rect{r.X, r.Y, r.W, 1}, col)
	c.FillRect(Rect{r.X, r.Bottom() - 1, r.W, 1}, col)
	c.FillRect(Rect{r.X, r.Y + 1, 1, r.H - 2}, col)
	c.FillRect(Rect{r.Right() - 1, r.Y + 1, 1, r.H - 2}, col)
}

// FillRoundRect fills row by row, insetting each row by the corner arcs.
func (c *RasterCanvas) FillRoundRect(r Rect, radii Radii, col Color) {
	if r.Empty() {
		return
	}
	limit := math32.Min(r.W, r.H) / 2
	tl := math32.Min(radii.TopLeft, limit)
	tr := math32.Min(radii.TopRight, limit)
	br := math32.Min(radii.BottomRight, limit)
	bl := math32.Min(radii.BottomLeft, limit)

	rows := int(math32.Ceil(r.H))
	for i := 0; i < rows; i++ {
		cy := float32(i) + 0.5
		left := cornerInset(tl, cy) + cornerInset(bl, r.H-cy)
		right := cornerInset(tr, cy) + cornerInset(br, r.H-cy)
		c.FillRect(Rect{r.X + left, r.Y + float32(i), r.W - left - right, 1}, col)
	}
}

// cornerInset returns how far a row at distance d from the edge is pushed in
// by an arc of the given radius.
func cornerInset(radius, d float32) float32 {
	if radius <= 0 || d >= radius {
		return 0
	}
	dy := radius - d
	return radius - math32.Sqrt(radius*radius-dy*dy)
}

func (c *RasterCanvas) DrawLine(x0, y0, x1, y1 float32, col Color) {
	switch {
	case y0 == y1:
		c.FillRect(Rect{math32.Min(x0, x1), y0, math32.Abs(x1-x0) + 1, 1}, col)
	case x0 == x1:
		c.FillRect(Rect{x0, math32.Min(y0, y1), 1, math32.Abs(y1-y0) + 1}, col)
	default:
		dx, dy := x1-x0, y1-y0
		steps := int(math32.Max(math32.Abs(dx), math32.Abs(dy)))
		for i := 0; i <= steps; i++ {
			t := float32(i) / float32(steps)
			c.FillRect(Rect{math32.Round(x0 + dx*t), math32.Round(y0 + dy*t), 1, 1}, col)
		}
	}
}

func (c *RasterCanvas) DrawText(text string, x, y float32, col Color) {
	d := &font.Drawer{
		Dst:  c.target(),
		Src:  image.NewUniform(col.NRGBA()),
		Face: c.face,
		Dot:  fixed.P(int(x), int(y)+c.ascent),
	}
	d.DrawString(text)
}

func (c *RasterCanvas) MeasureText(text string) float32 {
	return float32(font.MeasureString(c.face, text)) / 64
}

func (c *RasterCanvas) LineHeight() float32 {
	return float32(c.face.Metrics().Height.Ceil())
}

func (c *RasterCanvas) DrawImage(src image.Image, srcRect Rect, dst Rect) {
	if src == nil || dst.Empty() || srcRect.Empty() {
		return
	}
	origin := src.Bounds().Min
	sr := toImageRect(srcRect).Add(origin).Intersect(src.Bounds())
	dr := toImageRect(dst)
	if sr.Empty() || dr.Empty() {
		return
	}
	c.scaler.Scale(c.target(), dr, src, sr, draw.Over, nil)
}

func toImageRect(r Rect) image.Rectangle {
	return image.Rect(
		int(math32.Round(r.X)),
		int(math32.Round(r.Y)),
		int(math32.Round(r.X+r.W)),
		int(math32.Round(r.Y+r.H)),
	)
}
