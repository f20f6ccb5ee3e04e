package viewers

import (
	"go.uber.org/zap"

	"github.com/Faultbox/packstudio/internal/controls"
)

// Tree icon geometry.
const (
	TreeIconSize = 16
	LabelMargin  = 16
)

// TreeViewer is a filterable, expandable Viewer painted by a TreeRenderer.
type TreeViewer[T comparable] struct {
	Viewer[T]

	renderer  TreeRenderer[T]
	expanded  *objectSet[T]
	treeIcons []treeIcon[T]

	// filtering
	included          map[T]bool
	preFilterExpanded []T

	revealTarget    *T
	revealDuration  float32
	background      controls.Color
	paintBackground bool
}

// NewTreeViewer returns a viewer painting indented rows until another
// renderer is set.
func NewTreeViewer[T comparable](name string) *TreeViewer[T] {
	t := &TreeViewer[T]{
		expanded:        newObjectSet[T](),
		revealDuration:  0.25,
		background:      controls.ColorViewerBg,
		paintBackground: true,
	}
	t.Viewer.init(name, t)
	t.renderer = NewTreeViewerRenderer(t)
	return t
}

// SetTreeRenderer sets the layout strategy.
func (t *TreeViewer[T]) SetTreeRenderer(r TreeRenderer[T]) { t.renderer = r }

func (t *TreeViewer[T]) TreeRenderer() TreeRenderer[T] { return t.renderer }

// SetBackground sets the clear color; a zero alpha leaves the canvas as is.
func (t *TreeViewer[T]) SetBackground(c controls.Color) {
	t.background = c
	t.paintBackground = c.A > 0
}

// SetRevealDuration sets the Reveal scroll animation length in seconds.
func (t *TreeViewer[T]) SetRevealDuration(seconds float32) { t.revealDuration = seconds }

// --- Expansion ---

func (t *TreeViewer[T]) IsExpanded(obj T) bool { return t.expanded.has(obj) }

func (t *TreeViewer[T]) IsCollapsed(obj T) bool { return !t.expanded.has(obj) }

func (t *TreeViewer[T]) SetExpanded(obj T, expanded bool) {
	if expanded {
		t.expanded.add(obj)
	} else {
		t.expanded.remove(obj)
	}
}

// ExpandedObjects returns the expanded nodes.
func (t *TreeViewer[T]) ExpandedObjects() []T { return t.expanded.list() }

// CollapseAll collapses every node.
func (t *TreeViewer[T]) CollapseAll() { t.expanded.clear() }

// ExpandToLevel expands obj and its descendants down to level generations;
// level 1 expands obj alone.
func (t *TreeViewer[T]) ExpandToLevel(obj T, level int) {
	if level <= 0 || t.contentProvider == nil {
		return
	}
	children := t.contentProvider.Children(obj)
	if len(children) == 0 {
		return
	}
	t.expanded.add(obj)
	for _, child := range children {
		t.ExpandToLevel(child, level-1)
	}
}

// ExpandCollapseBranch flips a branch. Under a filter the children of obj
// are added to the include set, so a branch always opens onto its children.
func (t *TreeViewer[T]) ExpandCollapseBranch(obj T) {
	if t.expanded.has(obj) {
		t.expanded.remove(obj)
	} else {
		t.expanded.add(obj)
	}
	if t.filterActive() && t.contentProvider != nil {
		for _, child := range t.contentProvider.Children(obj) {
			t.included[child] = true
		}
	}
}

// SetInput replaces the input and rebuilds the include set of an active
// filter against it.
func (t *TreeViewer[T]) SetInput(input any) {
	t.Viewer.SetInput(input)
	if t.filterActive() {
		t.applyFilter(t.filterText, true)
	}
}

// --- Structure with filtering applied ---

// Roots returns the filter-included roots of the current input.
func (t *TreeViewer[T]) Roots() []T {
	if t.contentProvider == nil || t.input == nil {
		return nil
	}
	return t.keepIncluded(t.contentProvider.Roots(t.input))
}

// VisibleChildren returns the filter-included children of obj.
func (t *TreeViewer[T]) VisibleChildren(obj T) []T {
	if t.contentProvider == nil {
		return nil
	}
	return t.keepIncluded(t.contentProvider.Children(obj))
}

func (t *TreeViewer[T]) keepIncluded(objs []T) []T {
	if !t.filterActive() {
		return objs
	}
	out := make([]T, 0, len(objs))
	for _, obj := range objs {
		if t.included[obj] {
			out = append(out, obj)
		}
	}
	return out
}

// --- Filtering ---

func (t *TreeViewer[T]) filterActive() bool { return t.matcher.active() }

// FilterText returns the active filter.
func (t *TreeViewer[T]) FilterText() string { return t.filterText }

// IsFilterIncluded reports whether obj is shown under the active filter.
// Without a filter every node is included.
func (t *TreeViewer[T]) IsFilterIncluded(obj T) bool {
	return !t.filterActive() || t.included[obj]
}

// FilterIncluded returns the include set of the active filter.
func (t *TreeViewer[T]) FilterIncluded() map[T]bool { return t.included }

// SetFilterText filters the tree by label. A node is shown when its label
// contains the text, ignoring case, or when one of its descendants does.
// Every shown node with shown children is expanded. The expansion state from
// before filtering is restored when the filter is cleared.
func (t *TreeViewer[T]) SetFilterText(text string) {
	t.applyFilter(text, true)
	t.SetScrollY(0)
}

func (t *TreeViewer[T]) applyFilter(text string, autoExpand bool) {
	wasActive := t.filterActive()
	t.filterText = text
	t.matcher = newLabelMatcher(text)

	if !t.filterActive() {
		t.included = nil
		if wasActive && t.preFilterExpanded != nil {
			t.expanded.replace(t.preFilterExpanded)
		}
		t.preFilterExpanded = nil
		return
	}

	if !wasActive && autoExpand {
		t.preFilterExpanded = t.expanded.list()
	}
	t.buildFilterIncludeSet()
	if autoExpand {
		t.expandFilteredParents(t.contentProviderRoots())
	}
}

func (t *TreeViewer[T]) contentProviderRoots() []T {
	if t.contentProvider == nil || t.input == nil {
		return nil
	}
	return t.contentProvider.Roots(t.input)
}

func (t *TreeViewer[T]) buildFilterIncludeSet() {
	t.included = make(map[T]bool)
	for _, root := range t.contentProviderRoots() {
		t.buildFilterIncludeSetOf(root)
	}
}

// buildFilterIncludeSetOf visits every descendant, so all matches below a
// matching node are recorded too.
func (t *TreeViewer[T]) buildFilterIncludeSetOf(obj T) bool {
	include := t.matcher.matches(t.Label(obj))
	for _, child := range t.contentProvider.Children(obj) {
		if t.buildFilterIncludeSetOf(child) {
			include = true
		}
	}
	if include {
		t.included[obj] = true
	}
	return include
}

func (t *TreeViewer[T]) expandFilteredParents(objs []T) {
	for _, obj := range objs {
		if !t.included[obj] {
			continue
		}
		children := t.VisibleChildren(obj)
		if len(children) > 0 {
			t.expanded.add(obj)
			t.expandFilteredParents(children)
		}
	}
}

// --- State ---

// ViewerState is what a host keeps to restore a viewer after swapping its
// input out and back in.
type ViewerState[T comparable] struct {
	FilterText string
	Expanded   []T
	CellSize   float32
}

// SaveState captures filter, expansion and cell size.
func (t *TreeViewer[T]) SaveState() ViewerState[T] {
	return ViewerState[T]{
		FilterText: t.filterText,
		Expanded:   t.expanded.list(),
		CellSize:   t.cellSize,
	}
}

// RestoreState applies a saved state without auto-expanding filter matches,
// so the saved expansion is kept as it was.
func (t *TreeViewer[T]) RestoreState(s ViewerState[T]) {
	t.preFilterExpanded = nil
	t.applyFilter(s.FilterText, false)
	t.expanded.replace(s.Expanded)
	if s.CellSize > 0 {
		t.SetCellSize(s.CellSize)
	}
}

// --- Reveal ---

// Reveal expands the ancestors of each node so it is laid out and scrolls
// the first one into view on the next paint.
func (t *TreeViewer[T]) Reveal(objs ...T) {
	if len(objs) == 0 || t.contentProvider == nil {
		return
	}
	for _, obj := range objs {
		for _, ancestor := range t.pathTo(obj) {
			t.expanded.add(ancestor)
		}
	}
	first := objs[0]
	t.revealTarget = &first
	t.Repaint()
}

// RevealAndSelect reveals the nodes and makes them the selection.
func (t *TreeViewer[T]) RevealAndSelect(objs ...T) {
	t.selected.replace(objs)
	t.fireSelectionChanged()
	t.Reveal(objs...)
}

// pathTo returns the ancestors of obj from the roots down, or nil when obj
// is not in the tree.
func (t *TreeViewer[T]) pathTo(obj T) []T {
	var walk func(nodes []T, path []T) ([]T, bool)
	walk = func(nodes []T, path []T) ([]T, bool) {
		for _, n := range nodes {
			if n == obj {
				return path, true
			}
			if found, ok := walk(t.contentProvider.Children(n), append(path, n)); ok {
				return found, true
			}
		}
		return nil, false
	}
	path, _ := walk(t.contentProviderRoots(), nil)
	return append([]T(nil), path...)
}

func (t *TreeViewer[T]) scrollToRevealTarget() {
	target := *t.revealTarget
	t.revealTarget = nil
	idx := t.indexOf(target)
	if idx < 0 {
		return
	}
	r := t.paintItems[idx].Rect
	switch {
	case r.Y < 0:
		t.AnimateScrollTo(t.scrollY-r.Y, t.revealDuration)
	case r.Bottom() > t.height:
		t.AnimateScrollTo(t.scrollY-(r.Bottom()-t.height), t.revealDuration)
	}
}

// --- Paint ---

func (t *TreeViewer[T]) addTreeIcon(r controls.Rect, obj T) {
	t.treeIcons = append(t.treeIcons, treeIcon[T]{rect: r, obj: obj})
}

// PaintTreeIcon draws the expand or collapse glyph and records its hit box.
func (t *TreeViewer[T]) PaintTreeIcon(c controls.Canvas, x, y float32, obj T) {
	icon := controls.IconTreeCollapsed
	if t.IsExpanded(obj) {
		icon = controls.IconTreeExpanded
	}
	icon.Paint(c, x, y, TreeIconSize, TreeIconSize)
	t.addTreeIcon(controls.NewRect(x, y, TreeIconSize, TreeIconSize), obj)
}

func (t *TreeViewer[T]) paint(c controls.Canvas) {
	t.paintItems = t.paintItems[:0]
	t.treeIcons = t.treeIcons[:0]

	w, h := c.Size()
	c.PushClip(controls.NewRect(0, 0, w, h))
	defer c.PopClip()

	if t.paintBackground {
		c.Clear(t.background)
	}
	if !t.ready() || t.renderer == nil {
		return
	}

	t.contentHeight = t.renderer.Paint(c)

	// Content may have shrunk below the scroll offset; lay out once more.
	if clamped := t.clampScroll(t.scrollY); clamped != t.scrollY {
		t.scrollY = clamped
		t.relayout(c)
	}

	if t.revealTarget != nil {
		before := t.scrollY
		t.scrollToRevealTarget()
		if t.scrollY != before {
			t.relayout(c)
		}
	}

	t.paintScrollbar(c)
}

func (t *TreeViewer[T]) relayout(c controls.Canvas) {
	t.paintItems = t.paintItems[:0]
	t.treeIcons = t.treeIcons[:0]
	if t.paintBackground {
		c.Clear(t.background)
	}
	t.contentHeight = t.renderer.Paint(c)
}

// IsVisibleRow reports whether a row spanning [y, y+h) intersects the viewport.
func (t *TreeViewer[T]) IsVisibleRow(y, h float32) bool {
	return y+h > 0 && y < t.height
}

// renderCellSafe paints one cell, logging instead of propagating a panic so
// one bad node does not blank the rest of the view.
func (t *TreeViewer[T]) renderCellSafe(r CellRenderer[T], args *RenderCellArgs[T]) {
	defer func() {
		if p := recover(); p != nil {
			t.log.Warn("cell render failed", zap.String("label", t.Label(args.Obj)), zap.Any("panic", p))
		}
	}()
	r.RenderCell(args)
}
