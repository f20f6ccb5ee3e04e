package controls

// Icon is a small glyph painted into a box.
type Icon interface {
	Paint(c Canvas, x, y, w, h float32)
}

// GlyphKind selects the shape a GlyphIcon draws.
type GlyphKind int

const (
	GlyphFile GlyphKind = iota
	GlyphFolder
	GlyphTreeCollapsed
	GlyphTreeExpanded
)

// GlyphIcon is an Icon drawn from primitives, with an optional one or two
// letter badge ("S" for sound, "{}" for script).
type GlyphIcon struct {
	Kind  GlyphKind
	Color Color
	Badge string
}

// Shared icons.
var (
	IconFile          = &GlyphIcon{Kind: GlyphFile, Color: ColorFile}
	IconFolder        = &GlyphIcon{Kind: GlyphFolder, Color: ColorFolder}
	IconFileImage     = &GlyphIcon{Kind: GlyphFile, Color: ColorFile, Badge: "I"}
	IconFileSound     = &GlyphIcon{Kind: GlyphFile, Color: ColorFile, Badge: "S"}
	IconFileScript    = &GlyphIcon{Kind: GlyphFile, Color: ColorFile, Badge: "{}"}
	IconFileText      = &GlyphIcon{Kind: GlyphFile, Color: ColorFile, Badge: "T"}
	IconFileFont      = &GlyphIcon{Kind: GlyphFile, Color: ColorFile, Badge: "F"}
	IconFileVideo     = &GlyphIcon{Kind: GlyphFile, Color: ColorFile, Badge: "V"}
	IconTreeCollapsed = &GlyphIcon{Kind: GlyphTreeCollapsed, Color: ColorTreeIcon}
	IconTreeExpanded  = &GlyphIcon{Kind: GlyphTreeExpanded, Color: ColorTreeIcon}
)

func (g *GlyphIcon) Paint(c Canvas, x, y, w, h float32) {
	size := w
	if h < size {
		size = h
	}
	x += (w - size) / 2
	y += (h - size) / 2

	switch g.Kind {
	case GlyphFolder:
		tab := Rect{x + size*0.1, y + size*0.2, size * 0.35, size * 0.12}
		body := Rect{x + size*0.1, y + size*0.3, size * 0.8, size * 0.5}
		c.FillRect(tab, g.Color.Darken(0.15))
		c.FillRoundRect(body, UniformRadii(size*0.05), g.Color)
	case GlyphFile:
		body := Rect{x + size*0.2, y + size*0.1, size * 0.6, size * 0.8}
		c.FillRect(body, g.Color)
		c.StrokeRect(body, g.Color.Darken(0.35))
		fold := size * 0.18
		c.FillRect(Rect{body.Right() - fold, body.Y, fold, fold}, g.Color.Darken(0.25))
	case GlyphTreeCollapsed:
		// right-pointing triangle
		for i := float32(0); i < size/2; i++ {
			c.DrawLine(x+size*0.35+i, y+size*0.25+i/2, x+size*0.35+i, y+size*0.75-i/2, g.Color)
		}
	case GlyphTreeExpanded:
		// down-pointing triangle
		for i := float32(0); i < size/2; i++ {
			c.DrawLine(x+size*0.25+i/2, y+size*0.35+i, x+size*0.75-i/2, y+size*0.35+i, g.Color)
		}
	}

	if g.Badge != "" && size >= 14 {
		tw := c.MeasureText(g.Badge)
		c.DrawText(g.Badge, x+(size-tw)/2, y+(size-c.LineHeight())/2, ColorBlack)
	}
}
