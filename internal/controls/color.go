package controls

import "image/color"

// Color represents an RGBA color with float components (0.0 to 1.0).
type Color struct {
	R, G, B, A float32
}

// Predefined colors for viewer theming.
var (
	ColorTransparent = Color{0, 0, 0, 0}
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}

	ColorViewerBg      = Color{0.16, 0.17, 0.2, 1}
	ColorText          = Color{0.9, 0.9, 0.9, 1}
	ColorTextDim       = Color{0.55, 0.56, 0.62, 1}
	ColorSelection     = Color{0.2, 0.45, 0.75, 1}
	ColorSelectionText = Color{1, 1, 1, 1}
	ColorTreeIcon      = Color{0.75, 0.75, 0.8, 1}
	ColorSectionTitle  = Color{0.7, 0.72, 0.8, 1}
	ColorSectionRule   = Color{1, 1, 1, 0.12}
	ColorChip          = Color{0, 0, 0, 0.2}
	ColorScrollTrack   = Color{0, 0, 0, 0.15}
	ColorScrollThumb   = Color{1, 1, 1, 0.25}
	ColorScrollActive  = Color{1, 1, 1, 0.45}
	ColorPlaceholder   = Color{0.6, 0.6, 0.6, 1}
	ColorFolder        = Color{0.87, 0.72, 0.35, 1}
	ColorFile          = Color{0.7, 0.75, 0.82, 1}
	ColorFilterBg      = Color{0.1, 0.1, 0.12, 1}
)

// RGBA creates a color from 8-bit RGBA values (0-255).
func RGBA(r, g, b, a uint8) Color {
	return Color{
		R: float32(r) / 255.0,
		G: float32(g) / 255.0,
		B: float32(b) / 255.0,
		A: float32(a) / 255.0,
	}
}

// RGB creates a color from 8-bit RGB values with full alpha.
func RGB(r, g, b uint8) Color {
	return RGBA(r, g, b, 255)
}

// WithAlpha returns a copy of the color with a different alpha value.
func (c Color) WithAlpha(a float32) Color {
	return Color{c.R, c.G, c.B, a}
}

// Darken returns a darker version of the color.
func (c Color) Darken(factor float32) Color {
	return Color{
		R: c.R * (1 - factor),
		G: c.G * (1 - factor),
		B: c.B * (1 - factor),
		A: c.A,
	}
}

// Lighten returns a lighter version of the color.
func (c Color) Lighten(factor float32) Color {
	return Color{
		R: c.R + (1-c.R)*factor,
		G: c.G + (1-c.G)*factor,
		B: c.B + (1-c.B)*factor,
		A: c.A,
	}
}

// NRGBA converts to the standard library's non-premultiplied color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: to8(c.A),
	}
}

func to8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}
