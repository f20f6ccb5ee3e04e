package viewers

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/tanema/gween"
	"go.uber.org/zap"

	"github.com/Faultbox/packstudio/internal/controls"
	"github.com/Faultbox/packstudio/internal/logger"
)

// Default sizes.
const (
	DefaultCellSize    = 48
	DefaultMinCellSize = 16
	DefaultMaxCellSize = 256
	DefaultScrollStep  = 30
)

// painter is implemented by concrete viewers to lay out and paint.
type painter interface {
	paint(c controls.Canvas)
}

// Viewer holds what every canvas viewer shares: providers, input, cell size,
// selection, scrolling, hit testing, drag source, and the paint/preload cycle.
// TreeViewer embeds it and supplies the painting.
type Viewer[T comparable] struct {
	name string
	log  *zap.Logger

	painter painter
	canvas  controls.Canvas
	width   float32
	height  float32

	input                any
	contentProvider      ContentProvider[T]
	labelProvider        LabelProvider[T]
	cellRendererProvider CellRendererProvider[T]

	cellSize    float32
	minCellSize float32
	maxCellSize float32

	selected          *objectSet[T]
	lastSelectedIndex int

	filterText string
	matcher    *labelMatcher

	scrollY       float32
	contentHeight float32
	scrollStep    float32
	scrollbar     Scrollbar
	scrollTween   *gween.Tween

	paintItems []PaintItem[T]

	// pointer state
	pressed    bool
	pressX     float32
	pressY     float32
	pressIndex int
	dragging   bool
	dragSlot   *controls.DragSlot
	onDrop     func(payload []any, target T, onItem bool) bool

	selectionListeners []func(selection []T)
	openListeners      []func(obj T)

	// preload
	ctx            context.Context
	dispatcher     Dispatcher
	workers        int
	generation     atomic.Uint64
	cancelPreload  context.CancelFunc
	repaintPending atomic.Bool
	preloads       sync.WaitGroup

	warnedMissing bool
}

func (v *Viewer[T]) init(name string, p painter) {
	v.name = name
	v.log = logger.Named("viewer").With(zap.String("viewer", name))
	v.painter = p
	v.cellSize = DefaultCellSize
	v.minCellSize = DefaultMinCellSize
	v.maxCellSize = DefaultMaxCellSize
	v.scrollStep = DefaultScrollStep
	v.scrollbar = Scrollbar{Width: ScrollbarWidth}
	v.selected = newObjectSet[T]()
	v.lastSelectedIndex = -1
	v.matcher = newLabelMatcher("")
	v.ctx = context.Background()
	v.dispatcher = NewQueueDispatcher()
	v.workers = 4
}

// Name returns the viewer's name, used in logs.
func (v *Viewer[T]) Name() string { return v.name }

// --- Providers and input ---

func (v *Viewer[T]) SetContentProvider(p ContentProvider[T]) { v.contentProvider = p }

func (v *Viewer[T]) ContentProvider() ContentProvider[T] { return v.contentProvider }

func (v *Viewer[T]) SetLabelProvider(p LabelProvider[T]) { v.labelProvider = p }

func (v *Viewer[T]) LabelProvider() LabelProvider[T] { return v.labelProvider }

func (v *Viewer[T]) SetCellRendererProvider(p CellRendererProvider[T]) { v.cellRendererProvider = p }

func (v *Viewer[T]) CellRendererProvider() CellRendererProvider[T] { return v.cellRendererProvider }

// SetInput replaces the viewer's input. Expanded and selected node sets are
// kept, so switching back to an earlier input restores its state.
func (v *Viewer[T]) SetInput(input any) {
	v.input = input
	v.paintItems = nil
}

func (v *Viewer[T]) Input() any { return v.input }

// Label returns the node's label, or "" without a label provider.
func (v *Viewer[T]) Label(obj T) string {
	if v.labelProvider == nil {
		return ""
	}
	return v.labelProvider.Label(obj)
}

func (v *Viewer[T]) ready() bool {
	ok := v.contentProvider != nil && v.cellRendererProvider != nil && v.input != nil
	if !ok && !v.warnedMissing {
		v.warnedMissing = true
		v.log.Warn("paint skipped: viewer has no input or providers",
			zap.Bool("content", v.contentProvider != nil),
			zap.Bool("cells", v.cellRendererProvider != nil),
			zap.Bool("input", v.input != nil),
		)
	}
	return ok
}

// --- Canvas and size ---

// SetCanvas sets the surface Repaint paints into.
func (v *Viewer[T]) SetCanvas(c controls.Canvas) {
	v.canvas = c
	if c != nil {
		v.width, v.height = c.Size()
	}
}

func (v *Viewer[T]) Canvas() controls.Canvas { return v.canvas }

// Size returns the viewport size of the last paint.
func (v *Viewer[T]) Size() (float32, float32) { return v.width, v.height }

// ClientWidth returns the width available to cells, excluding the scrollbar.
func (v *Viewer[T]) ClientWidth() float32 {
	if v.contentHeight > v.height {
		return v.width - v.scrollbar.Width
	}
	return v.width
}

// --- Cell size ---

func (v *Viewer[T]) CellSize() float32 { return v.cellSize }

// SetCellSize sets the cell size, clamped to the configured bounds.
func (v *Viewer[T]) SetCellSize(size float32) {
	v.cellSize = math32.Max(v.minCellSize, math32.Min(v.maxCellSize, math32.Round(size)))
}

// SetCellSizeBounds sets the zoom range.
func (v *Viewer[T]) SetCellSizeBounds(min, max float32) {
	v.minCellSize, v.maxCellSize = min, math32.Max(min, max)
	v.SetCellSize(v.cellSize)
}

// --- Selection ---

func (v *Viewer[T]) IsSelected(obj T) bool { return v.selected.has(obj) }

// Selection returns the selected nodes in selection order.
func (v *Viewer[T]) Selection() []T { return v.selected.list() }

// SetSelection replaces the selection and notifies listeners.
func (v *Viewer[T]) SetSelection(objs []T) {
	v.selected.replace(objs)
	v.lastSelectedIndex = -1
	for _, item := range v.paintItems {
		if len(objs) > 0 && item.Obj == objs[len(objs)-1] {
			v.lastSelectedIndex = item.Index
		}
	}
	v.fireSelectionChanged()
}

// SelectAll selects every node laid out in the last paint.
func (v *Viewer[T]) SelectAll() {
	objs := make([]T, 0, len(v.paintItems))
	for _, item := range v.paintItems {
		objs = append(objs, item.Obj)
	}
	v.SetSelection(objs)
}

// ClearSelection empties the selection.
func (v *Viewer[T]) ClearSelection() {
	v.SetSelection(nil)
}

// OnSelectionChanged registers a listener called synchronously after every
// selection change.
func (v *Viewer[T]) OnSelectionChanged(fn func(selection []T)) {
	v.selectionListeners = append(v.selectionListeners, fn)
}

// OnOpen registers a listener for double-click and Enter on a node.
func (v *Viewer[T]) OnOpen(fn func(obj T)) {
	v.openListeners = append(v.openListeners, fn)
}

func (v *Viewer[T]) fireSelectionChanged() {
	sel := v.selected.list()
	for _, fn := range v.selectionListeners {
		fn(sel)
	}
}

func (v *Viewer[T]) fireOpen(obj T) {
	for _, fn := range v.openListeners {
		fn(obj)
	}
}

// selectAt applies click selection semantics to the paint item at index:
// replace on a plain click, toggle with ctrl/meta, and with shift add the
// contiguous paint-order range from the last clicked item.
func (v *Viewer[T]) selectAt(index int, mods KeyModifiers) {
	if index < 0 || index >= len(v.paintItems) {
		return
	}
	obj := v.paintItems[index].Obj

	switch {
	case mods.toggleSelection():
		if !v.selected.remove(obj) {
			v.selected.add(obj)
		}
	case mods.Has(ModShift) && v.lastSelectedIndex >= 0 && v.lastSelectedIndex < len(v.paintItems):
		start := min(v.lastSelectedIndex, index)
		end := max(v.lastSelectedIndex, index)
		for i := start; i <= end; i++ {
			v.selected.add(v.paintItems[i].Obj)
		}
	default:
		v.selected.clear()
		v.selected.add(obj)
	}

	v.lastSelectedIndex = index
	v.fireSelectionChanged()
}

// --- Paint items and hit testing ---

// PaintItems returns the hit-test records of the last paint, in paint order.
func (v *Viewer[T]) PaintItems() []PaintItem[T] { return v.paintItems }

func (v *Viewer[T]) addPaintItem(r controls.Rect, obj T) {
	v.paintItems = append(v.paintItems, PaintItem[T]{Rect: r, Obj: obj, Index: len(v.paintItems)})
}

// PaintItemAt returns the node painted at (x, y), scanning in reverse paint
// order so the topmost item wins.
func (v *Viewer[T]) PaintItemAt(x, y float32) (PaintItem[T], bool) {
	for i := len(v.paintItems) - 1; i >= 0; i-- {
		if v.paintItems[i].Rect.Contains(x, y) {
			return v.paintItems[i], true
		}
	}
	return PaintItem[T]{}, false
}

// indexOf returns the paint index of obj, or -1.
func (v *Viewer[T]) indexOf(obj T) int {
	for _, item := range v.paintItems {
		if item.Obj == obj {
			return item.Index
		}
	}
	return -1
}

// --- Scrolling ---

func (v *Viewer[T]) ScrollY() float32 { return v.scrollY }

// ContentHeight returns the height of everything laid out in the last paint.
func (v *Viewer[T]) ContentHeight() float32 { return v.contentHeight }

// SetScrollStep sets how many pixels one wheel notch scrolls.
func (v *Viewer[T]) SetScrollStep(step float32) { v.scrollStep = step }

// SetScrollY scrolls to y, clamped to [-(contentHeight-viewportHeight), 0].
func (v *Viewer[T]) SetScrollY(y float32) {
	v.scrollTween = nil
	v.scrollY = v.clampScroll(y)
}

// ScrollBy scrolls by dy pixels; positive values move the content down.
func (v *Viewer[T]) ScrollBy(dy float32) {
	v.SetScrollY(v.scrollY + dy)
}

func (v *Viewer[T]) clampScroll(y float32) float32 {
	low := math32.Min(0, v.height-v.contentHeight)
	return math32.Max(low, math32.Min(0, y))
}

// --- Drag and drop ---

// SetDragSlot connects the viewer to the process drag payload slot. Without
// one the viewer is not a drag source.
func (v *Viewer[T]) SetDragSlot(slot *controls.DragSlot) { v.dragSlot = slot }

// SetDropHandler makes the viewer a drop target. The handler receives the
// payload and the node under the pointer (onItem false for empty space) and
// returns whether it accepted the drop.
func (v *Viewer[T]) SetDropHandler(fn func(payload []any, target T, onItem bool) bool) {
	v.onDrop = fn
}

// Dragging reports whether a drag started from this viewer is in progress.
func (v *Viewer[T]) Dragging() bool { return v.dragging }

// dragPayload is the whole selection when the pressed node is part of it,
// otherwise just that node.
func (v *Viewer[T]) dragPayload(obj T) []any {
	if v.selected.has(obj) && v.selected.len() > 1 {
		sel := v.selected.list()
		out := make([]any, len(sel))
		for i, s := range sel {
			out[i] = s
		}
		return out
	}
	return []any{obj}
}

// Drop delivers the pending drag payload to this viewer at (x, y). The
// payload is consumed whether or not the handler accepts it.
func (v *Viewer[T]) Drop(x, y float32) bool {
	if v.dragSlot == nil || v.onDrop == nil {
		return false
	}
	payload, ok := v.dragSlot.Consume()
	if !ok {
		return false
	}
	item, onItem := v.PaintItemAt(x, y)
	return v.onDrop(payload, item.Obj, onItem)
}

// --- Repaint ---

// Repaint paints into the viewer's canvas and then preloads the visible
// nodes in the background. If that preload loads anything, one more paint
// is posted to the dispatcher.
func (v *Viewer[T]) Repaint() {
	if v.canvas == nil {
		return
	}
	v.paintGuarded(v.canvas)
	v.schedulePreload()
}

// Paint paints synchronously into c without scheduling any preload.
func (v *Viewer[T]) Paint(c controls.Canvas) {
	v.paintGuarded(c)
}

// paintGuarded keeps a panicking provider or renderer from taking the host
// down; the failed paint is logged and the canvas keeps what was drawn.
func (v *Viewer[T]) paintGuarded(c controls.Canvas) {
	v.width, v.height = c.Size()
	defer func() {
		if r := recover(); r != nil {
			v.log.Error("paint failed", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	v.painter.paint(c)
}
