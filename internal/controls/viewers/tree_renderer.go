package viewers

import (
	"github.com/Faultbox/packstudio/internal/controls"
)

// TreeViewerRenderer lays nodes out as indented rows, one per node, with an
// expand glyph in front of every branch.
type TreeViewerRenderer[T comparable] struct {
	viewer *TreeViewer[T]
}

// NewTreeViewerRenderer returns the row layout for viewer.
func NewTreeViewerRenderer[T comparable](viewer *TreeViewer[T]) *TreeViewerRenderer[T] {
	return &TreeViewerRenderer[T]{viewer: viewer}
}

func (r *TreeViewerRenderer[T]) Paint(c controls.Canvas) float32 {
	v := r.viewer
	y := r.paintRows(c, v.Roots(), 0, v.scrollY)
	return y - v.scrollY
}

// paintRows lays out objs at indentation x starting at y and returns the y
// below the last row. Rows outside the viewport are laid out but not painted.
func (r *TreeViewerRenderer[T]) paintRows(c controls.Canvas, objs []T, x, y float32) float32 {
	v := r.viewer
	clientW := v.ClientWidth()

	for _, obj := range objs {
		renderer := v.cellRendererProvider.CellRenderer(obj)
		args := &RenderCellArgs[T]{
			Canvas: c,
			X:      x + LabelMargin,
			Y:      y,
			W:      clientW - x - LabelMargin,
			Obj:    obj,
			Viewer: v,
		}
		h := float32(RowHeight)
		if renderer != nil {
			h = renderer.CellHeight(args)
		}
		args.H = h

		children := v.VisibleChildren(obj)
		if y > -h && y < v.height {
			selected := v.IsSelected(obj)
			if selected {
				c.FillRect(controls.NewRect(0, y, clientW, h), controls.ColorSelection)
			}
			r.paintCell(c, renderer, args, selected)
			if len(children) > 0 {
				v.PaintTreeIcon(c, x, y+(h-TreeIconSize)/2, obj)
			}
		}
		v.addPaintItem(controls.NewRect(0, y, clientW, h), obj)
		y += h

		if len(children) > 0 && v.IsExpanded(obj) {
			y = r.paintRows(c, children, x+LabelMargin, y)
		}
	}
	return y
}

// paintCell paints a row. Rows of label height get the cell as an icon
// before the label; taller rows get the label below the cell.
func (r *TreeViewerRenderer[T]) paintCell(c controls.Canvas, renderer CellRenderer[T], args *RenderCellArgs[T], selected bool) {
	v := r.viewer
	cell := *args
	labelX, labelY := args.X, args.Y
	if args.H <= RowHeight {
		cell.W = TreeIconSize
		labelX += TreeIconSize + 4
		labelY += (args.H - c.LineHeight()) / 2
	} else {
		cell.H = args.H - RowHeight
		labelY += cell.H + (RowHeight-c.LineHeight())/2
	}
	if renderer != nil {
		v.renderCellSafe(renderer, &cell)
	}

	color := controls.ColorText
	if selected {
		color = controls.ColorSelectionText
	}
	label := controls.TrimText(c, v.Label(args.Obj), args.X+args.W-labelX)
	c.DrawText(label, labelX, labelY, color)
}
