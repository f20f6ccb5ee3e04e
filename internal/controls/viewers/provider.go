// Package viewers implements canvas-painted, virtualized tree and grid viewers.
//
// A TreeViewer never knows what it shows. The host plugs in three strategies:
// a ContentProvider for structure, a LabelProvider for text and filtering,
// and a CellRendererProvider for painting, plus a TreeRenderer that lays the
// visible nodes out as indented rows or as a sectioned grid.
package viewers

import (
	"context"

	"github.com/Faultbox/packstudio/internal/controls"
)

// ContentProvider exposes the nodes of a finite, acyclic tree. The viewer
// does not guard against cycles.
type ContentProvider[T comparable] interface {
	Roots(input any) []T
	Children(parent T) []T
}

// LabelProvider names nodes, for painting and for filter matching.
type LabelProvider[T comparable] interface {
	Label(obj T) string
}

// CellRenderer paints one node into a cell.
type CellRenderer[T comparable] interface {
	RenderCell(args *RenderCellArgs[T])
	CellHeight(args *RenderCellArgs[T]) float32
	// Preload loads what the cell needs for an accurate paint. It runs off
	// the UI goroutine and must be safe for concurrent use.
	Preload(ctx context.Context, obj T) controls.PreloadResult
}

// CellRendererProvider maps a node to its cell renderer.
type CellRendererProvider[T comparable] interface {
	CellRenderer(obj T) CellRenderer[T]
}

// TreeRenderer lays out and paints the visible nodes of a viewer. It starts
// at the viewer's scroll offset, records paint items and tree icons on the
// viewer, and returns the total content height.
type TreeRenderer[T comparable] interface {
	Paint(c controls.Canvas) float32
}

// RenderCellArgs is the cell box handed to a CellRenderer.
type RenderCellArgs[T comparable] struct {
	Canvas controls.Canvas
	X, Y   float32
	W, H   float32
	Obj    T
	Viewer *TreeViewer[T]
	Center bool
}

// Rect returns the cell box.
func (a *RenderCellArgs[T]) Rect() controls.Rect {
	return controls.NewRect(a.X, a.Y, a.W, a.H)
}

// PaintItem is a hit-testable record of a node laid out during the last
// paint. Index is its position in paint order.
type PaintItem[T comparable] struct {
	Rect  controls.Rect
	Obj   T
	Index int
}

type treeIcon[T comparable] struct {
	rect controls.Rect
	obj  T
}

// --- Stock providers ---

// ArrayContentProvider shows the elements of a []T input as roots without
// children.
type ArrayContentProvider[T comparable] struct{}

func (ArrayContentProvider[T]) Roots(input any) []T {
	if list, ok := input.([]T); ok {
		return list
	}
	return nil
}

func (ArrayContentProvider[T]) Children(T) []T { return nil }

// LabelFunc adapts a function to LabelProvider.
type LabelFunc[T comparable] func(obj T) string

func (f LabelFunc[T]) Label(obj T) string { return f(obj) }

// CellRendererFunc adapts a function to CellRendererProvider.
type CellRendererFunc[T comparable] func(obj T) CellRenderer[T]

func (f CellRendererFunc[T]) CellRenderer(obj T) CellRenderer[T] { return f(obj) }

// RowHeight is the height of a label row.
const RowHeight = 20

// IconImageCellRenderer paints an icon in a row-height cell.
type IconImageCellRenderer[T comparable] struct {
	Icon func(obj T) controls.Icon
}

// NewIconImageCellRenderer returns a renderer painting the same icon for
// every node.
func NewIconImageCellRenderer[T comparable](icon controls.Icon) *IconImageCellRenderer[T] {
	return &IconImageCellRenderer[T]{Icon: func(T) controls.Icon { return icon }}
}

func (r *IconImageCellRenderer[T]) RenderCell(args *RenderCellArgs[T]) {
	if r.Icon == nil {
		return
	}
	icon := r.Icon(args.Obj)
	if icon == nil {
		return
	}
	size := min(args.W, args.H, 16)
	x := args.X
	if args.Center {
		x += (args.W - size) / 2
	}
	icon.Paint(args.Canvas, x, args.Y+(args.H-size)/2, size, size)
}

func (r *IconImageCellRenderer[T]) CellHeight(*RenderCellArgs[T]) float32 { return RowHeight }

func (r *IconImageCellRenderer[T]) Preload(context.Context, T) controls.PreloadResult {
	return controls.NothingLoaded
}

// IconGridCellRenderer paints an icon filling a grid cell.
type IconGridCellRenderer[T comparable] struct {
	Icon controls.Icon
}

func (r *IconGridCellRenderer[T]) RenderCell(args *RenderCellArgs[T]) {
	if r.Icon == nil {
		return
	}
	inset := args.W / 8
	r.Icon.Paint(args.Canvas, args.X+inset, args.Y+inset, args.W-2*inset, args.H-2*inset)
}

func (r *IconGridCellRenderer[T]) CellHeight(args *RenderCellArgs[T]) float32 {
	if args.Viewer == nil {
		return DefaultCellSize
	}
	return args.Viewer.CellSize()
}

func (r *IconGridCellRenderer[T]) Preload(context.Context, T) controls.PreloadResult {
	return controls.NothingLoaded
}

// ImageCellRenderer paints an image scaled into a cell as tall as the
// viewer's cell size.
type ImageCellRenderer[T comparable] struct {
	Image func(obj T) controls.Image
}

func (r *ImageCellRenderer[T]) RenderCell(args *RenderCellArgs[T]) {
	img := r.Image(args.Obj)
	if img == nil {
		controls.PaintPlaceholder(args.Canvas, args.X, args.Y, args.W, args.H)
		return
	}
	img.Paint(args.Canvas, args.X, args.Y, args.W, args.H, args.Center)
}

func (r *ImageCellRenderer[T]) CellHeight(args *RenderCellArgs[T]) float32 {
	if args.Viewer == nil {
		return DefaultCellSize
	}
	return args.Viewer.CellSize()
}

func (r *ImageCellRenderer[T]) Preload(ctx context.Context, obj T) controls.PreloadResult {
	img := r.Image(obj)
	if img == nil {
		return controls.NothingLoaded
	}
	return img.Preload(ctx)
}
