package viewers

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Faultbox/packstudio/internal/controls"
)

// Grid layout constants.
const (
	GridPadding = 5
	// GridListThreshold is the cell size at or below which the grid falls
	// back to rows.
	GridListThreshold = 32
	// GridLabelMinCell is the smallest cell size that still gets a label.
	GridLabelMinCell = 48
)

// BackPainter paints behind a grid cell before the cell itself. isLastChild
// is set for the last child of an expanded parent.
type BackPainter[T comparable] func(args *RenderCellArgs[T], selected, isLastChild bool)

// GridTreeViewerRenderer lays nodes out as square cells wrapping left to
// right. Roots listed as sections get a title and rule with their children
// below. Unless flat, an expanded parent's children follow it inline.
type GridTreeViewerRenderer[T comparable] struct {
	viewer      *TreeViewer[T]
	rows        *TreeViewerRenderer[T]
	sections    map[T]bool
	flat        bool
	backPainter BackPainter[T]
	upper       cases.Caser
}

// NewGridTreeViewerRenderer returns the grid layout for viewer.
func NewGridTreeViewerRenderer[T comparable](viewer *TreeViewer[T], flat bool) *GridTreeViewerRenderer[T] {
	return &GridTreeViewerRenderer[T]{
		viewer:   viewer,
		rows:     NewTreeViewerRenderer(viewer),
		sections: make(map[T]bool),
		flat:     flat,
		upper:    cases.Upper(language.Und),
	}
}

// SetSections marks which roots are painted as section headers.
func (r *GridTreeViewerRenderer[T]) SetSections(sections []T) {
	r.sections = make(map[T]bool, len(sections))
	for _, s := range sections {
		r.sections[s] = true
	}
}

func (r *GridTreeViewerRenderer[T]) IsSection(obj T) bool { return r.sections[obj] }

func (r *GridTreeViewerRenderer[T]) SetFlat(flat bool) { r.flat = flat }

func (r *GridTreeViewerRenderer[T]) Flat() bool { return r.flat }

// SetBackPainter sets the hook painting behind each cell.
func (r *GridTreeViewerRenderer[T]) SetBackPainter(p BackPainter[T]) { r.backPainter = p }

// gridCursor tracks the next free cell position.
type gridCursor struct {
	x, y  float32
	rowH  float32
	width float32
}

func (g *gridCursor) newLine() {
	if g.x > GridPadding {
		g.x = GridPadding
		g.y += g.rowH + GridPadding
	}
}

func (r *GridTreeViewerRenderer[T]) Paint(c controls.Canvas) float32 {
	v := r.viewer
	if v.cellSize <= GridListThreshold {
		return r.rows.Paint(c)
	}

	cur := &gridCursor{
		x:     GridPadding,
		y:     v.scrollY + GridPadding,
		rowH:  r.rowHeight(c),
		width: v.ClientWidth(),
	}

	for _, root := range v.Roots() {
		if !r.sections[root] {
			r.paintCell(c, cur, root, false)
			continue
		}
		children := v.VisibleChildren(root)
		if len(children) == 0 {
			continue
		}
		cur.newLine()
		r.paintSectionHeader(c, cur, root)
		for _, child := range children {
			r.paintCell(c, cur, child, false)
		}
		cur.newLine()
	}

	bottom := cur.y
	if cur.x > GridPadding {
		bottom += cur.rowH
	}
	return bottom + GridPadding - v.scrollY
}

func (r *GridTreeViewerRenderer[T]) rowHeight(c controls.Canvas) float32 {
	h := r.viewer.cellSize
	if r.viewer.cellSize >= GridLabelMinCell {
		h += c.LineHeight() + 4
	}
	return h
}

func (r *GridTreeViewerRenderer[T]) paintSectionHeader(c controls.Canvas, cur *gridCursor, obj T) {
	v := r.viewer
	lineH := c.LineHeight()
	headerH := lineH + 12
	if cur.y > -headerH && cur.y < v.height {
		title := r.upper.String(v.Label(obj))
		c.DrawText(title, GridPadding, cur.y+4, controls.ColorSectionTitle)
		ruleX := GridPadding + c.MeasureText(title) + 8
		ruleY := cur.y + 4 + lineH/2
		if ruleX < cur.width-GridPadding {
			c.DrawLine(ruleX, ruleY, cur.width-GridPadding, ruleY, controls.ColorSectionRule)
		}
	}
	cur.y += headerH
}

// paintCell lays out one node, then its children when expanded.
func (r *GridTreeViewerRenderer[T]) paintCell(c controls.Canvas, cur *gridCursor, obj T, isLastChild bool) {
	v := r.viewer
	size := v.cellSize

	if cur.x+size > cur.width && cur.x > GridPadding {
		cur.newLine()
	}

	var children []T
	if !r.flat {
		children = v.VisibleChildren(obj)
	}

	if cur.y > -cur.rowH && cur.y < v.height {
		args := &RenderCellArgs[T]{
			Canvas: c,
			X:      cur.x,
			Y:      cur.y,
			W:      size,
			H:      size,
			Obj:    obj,
			Viewer: v,
			Center: true,
		}
		selected := v.IsSelected(obj)
		if r.backPainter != nil {
			r.backPainter(args, selected, isLastChild)
		}
		if selected {
			c.FillRoundRect(controls.NewRect(cur.x, cur.y, size, cur.rowH), controls.UniformRadii(5), controls.ColorSelection)
		}
		if renderer := v.cellRendererProvider.CellRenderer(obj); renderer != nil {
			v.renderCellSafe(renderer, args)
		}
		if size >= GridLabelMinCell {
			color := controls.ColorText
			if selected {
				color = controls.ColorSelectionText
			}
			label := controls.TrimText(c, v.Label(obj), size)
			lx := cur.x + (size-c.MeasureText(label))/2
			c.DrawText(label, lx, cur.y+size+2, color)
		}
		if len(children) > 0 {
			v.PaintTreeIcon(c, cur.x+size-TreeIconSize, cur.y+(size-TreeIconSize)/2, obj)
		}
	}
	v.addPaintItem(controls.NewRect(cur.x, cur.y, size, cur.rowH), obj)
	cur.x += size + GridPadding

	if len(children) > 0 && v.IsExpanded(obj) {
		for i, child := range children {
			r.paintCell(c, cur, child, i == len(children)-1)
		}
	}
}
