package viewers

import (
	"github.com/chewxy/math32"
)

// --- Mouse ---

// HandleMouseDown records a press. A press on the scrollbar is consumed by
// the scrollbar.
func (t *TreeViewer[T]) HandleMouseDown(x, y float32, button MouseButton, mods KeyModifiers) {
	if button != MouseLeft {
		return
	}
	if t.scrollbarPress(x, y) {
		t.Repaint()
		return
	}
	t.pressed = true
	t.pressX, t.pressY = x, y
	t.pressIndex = -1
	if item, ok := t.PaintItemAt(x, y); ok {
		t.pressIndex = item.Index
	}
}

// HandleMouseMove drags the scrollbar thumb, or starts a drag once the
// pointer leaves the dead zone around a press on a node.
func (t *TreeViewer[T]) HandleMouseMove(x, y float32) {
	if t.scrollbar.dragging {
		t.scrollbarDrag(y)
		t.Repaint()
		return
	}
	if !t.pressed || t.dragging || t.pressIndex < 0 || t.dragSlot == nil {
		return
	}
	if math32.Abs(x-t.pressX) < DragDeadZone && math32.Abs(y-t.pressY) < DragDeadZone {
		return
	}
	if t.pressIndex >= len(t.paintItems) {
		return
	}
	obj := t.paintItems[t.pressIndex].Obj
	t.dragging = true
	t.dragSlot.Start(t.dragPayload(obj))
}

// HandleMouseUp finishes a press. Tree icons take priority over cells; a
// release that ends a drag leaves the payload in the drag slot for the drop
// target.
func (t *TreeViewer[T]) HandleMouseUp(x, y float32, button MouseButton, mods KeyModifiers) {
	if button != MouseLeft {
		return
	}
	if t.scrollbar.dragging {
		t.scrollbar.dragging = false
		t.Repaint()
		return
	}
	wasPressed := t.pressed
	t.pressed = false
	if t.dragging {
		t.dragging = false
		return
	}
	if !wasPressed {
		return
	}

	for i := len(t.treeIcons) - 1; i >= 0; i-- {
		icon := t.treeIcons[i]
		if icon.rect.Contains(x, y) {
			t.ExpandCollapseBranch(icon.obj)
			t.Repaint()
			return
		}
	}

	item, ok := t.PaintItemAt(x, y)
	if !ok {
		if mods == 0 {
			t.ClearSelection()
			t.Repaint()
		}
		return
	}
	t.selectAt(item.Index, mods)
	t.Repaint()
}

// HandleDoubleClick opens the node under the pointer.
func (t *TreeViewer[T]) HandleDoubleClick(x, y float32) {
	for _, icon := range t.treeIcons {
		if icon.rect.Contains(x, y) {
			return
		}
	}
	if item, ok := t.PaintItemAt(x, y); ok {
		t.fireOpen(item.Obj)
	}
}

// HandleWheel scrolls by dy notches, or zooms the cell size with ctrl held.
func (t *TreeViewer[T]) HandleWheel(dy float32, mods KeyModifiers) {
	if mods.Has(ModCtrl) || mods.Has(ModMeta) {
		t.zoom(dy)
		return
	}
	t.ScrollBy(dy * t.scrollStep)
	t.Repaint()
}

func (t *TreeViewer[T]) zoom(steps float32) {
	if steps == 0 {
		return
	}
	factor := float32(1.1)
	if steps < 0 {
		factor = 1 / factor
	}
	t.SetCellSize(t.cellSize * factor)
	t.Repaint()
}

// --- Keyboard ---

// HandleKey applies keyboard navigation and reports whether the key was
// used.
func (t *TreeViewer[T]) HandleKey(key Key, mods KeyModifiers) bool {
	switch key {
	case KeyUp:
		t.moveSelection(-1, mods)
	case KeyDown:
		t.moveSelection(1, mods)
	case KeyRight:
		if obj, ok := t.focused(); ok && t.IsCollapsed(obj) && len(t.VisibleChildren(obj)) > 0 {
			t.SetExpanded(obj, true)
			t.Repaint()
		} else {
			t.moveSelection(1, mods)
		}
	case KeyLeft:
		if obj, ok := t.focused(); ok && t.IsExpanded(obj) {
			t.SetExpanded(obj, false)
			t.Repaint()
		} else {
			t.moveSelection(-1, mods)
		}
	case KeyHome:
		t.selectIndex(0, mods)
	case KeyEnd:
		t.selectIndex(len(t.paintItems)-1, mods)
	case KeyPageUp:
		t.ScrollBy(t.height)
		t.Repaint()
	case KeyPageDown:
		t.ScrollBy(-t.height)
		t.Repaint()
	case KeyEnter:
		obj, ok := t.focused()
		if !ok {
			return false
		}
		t.fireOpen(obj)
	case KeyEscape:
		if !t.filterActive() {
			return false
		}
		t.SetFilterText("")
		t.Repaint()
	case KeySelectAll:
		t.SelectAll()
		t.Repaint()
	case KeyZoomIn:
		t.zoom(1)
	case KeyZoomOut:
		t.zoom(-1)
	default:
		return false
	}
	return true
}

// focused returns the node of the last click or keyboard move.
func (t *TreeViewer[T]) focused() (T, bool) {
	if t.lastSelectedIndex < 0 || t.lastSelectedIndex >= len(t.paintItems) {
		var zero T
		return zero, false
	}
	return t.paintItems[t.lastSelectedIndex].Obj, true
}

func (t *TreeViewer[T]) moveSelection(delta int, mods KeyModifiers) {
	if len(t.paintItems) == 0 {
		return
	}
	idx := t.lastSelectedIndex + delta
	if t.lastSelectedIndex < 0 {
		idx = 0
	}
	t.selectIndex(idx, mods)
}

// selectIndex selects a paint item by index, extending from the last
// selected item with shift, and scrolls it into view.
func (t *TreeViewer[T]) selectIndex(idx int, mods KeyModifiers) {
	if len(t.paintItems) == 0 {
		return
	}
	idx = max(0, min(idx, len(t.paintItems)-1))
	t.selectAt(idx, mods&ModShift)

	r := t.paintItems[idx].Rect
	switch {
	case r.Y < 0:
		t.SetScrollY(t.scrollY - r.Y)
	case r.Bottom() > t.height:
		t.SetScrollY(t.scrollY - (r.Bottom() - t.height))
	}
	t.Repaint()
}
