package viewers

import (
	"slices"
	"testing"

	"github.com/Faultbox/packstudio/internal/controls"
	"github.com/Faultbox/packstudio/internal/controls/canvastest"
)

func newGridViewer(tree *mapTree, w, h float32, flat bool) (*TreeViewer[string], *GridTreeViewerRenderer[string], *canvastest.Recorder) {
	v, c := newTestViewer(tree, w, h)
	grid := NewGridTreeViewerRenderer(v, flat)
	v.SetTreeRenderer(grid)
	return v, grid, c
}

func TestGridWrapsAndSections(t *testing.T) {
	tree := &mapTree{
		roots: []string{"images", "empty", "loose"},
		children: map[string][]string{
			"images": {"i0", "i1", "i2", "i3", "i4"},
		},
	}
	v, grid, c := newGridViewer(tree, 200, 300, false)
	grid.SetSections([]string{"images", "empty"})
	c.Reset()
	v.Paint(c)

	want := map[string]controls.Rect{
		"i0":    controls.NewRect(5, 30, 48, 65),
		"i1":    controls.NewRect(58, 30, 48, 65),
		"i2":    controls.NewRect(111, 30, 48, 65),
		"i3":    controls.NewRect(5, 100, 48, 65),
		"i4":    controls.NewRect(58, 100, 48, 65),
		"loose": controls.NewRect(5, 170, 48, 65),
	}
	items := v.PaintItems()
	if len(items) != len(want) {
		t.Fatalf("expected %d paint items, got %d", len(want), len(items))
	}
	for _, item := range items {
		if item.Rect != want[item.Obj] {
			t.Errorf("%s at %+v, want %+v", item.Obj, item.Rect, want[item.Obj])
		}
	}
	if got := v.ContentHeight(); got != 240 {
		t.Errorf("expected content height 240, got %v", got)
	}

	if _, ok := c.Find("text", "IMAGES"); !ok {
		t.Errorf("expected upper-cased section title, got %v", c.Texts())
	}
	if _, ok := c.Find("text", "EMPTY"); ok {
		t.Error("expected empty section skipped")
	}
	if c.Count("line") < 1 {
		t.Error("expected a section rule")
	}
}

func TestGridExpandedChildrenFollowInline(t *testing.T) {
	tree := &mapTree{
		roots: []string{"atlas", "after"},
		children: map[string][]string{
			"atlas": {"f0", "f1"},
		},
	}
	v, grid, c := newGridViewer(tree, 400, 300, false)
	type back struct {
		obj  string
		last bool
	}
	var backs []back
	grid.SetBackPainter(func(args *RenderCellArgs[string], selected, isLastChild bool) {
		backs = append(backs, back{args.Obj, isLastChild})
	})

	v.Paint(c)
	if got := len(v.PaintItems()); got != 2 {
		t.Fatalf("expected collapsed atlas and after, got %d items", got)
	}

	// The expand glyph sits at the right edge of the parent cell.
	click(v, 5+48-8, 5+16, 0)
	if !v.IsExpanded("atlas") {
		t.Fatal("expected atlas expanded")
	}

	backs = nil
	v.Paint(c)
	var order []string
	for _, item := range v.PaintItems() {
		order = append(order, item.Obj)
	}
	if !slices.Equal(order, []string{"atlas", "f0", "f1", "after"}) {
		t.Errorf("unexpected order %v", order)
	}
	wantBacks := []back{{"atlas", false}, {"f0", false}, {"f1", true}, {"after", false}}
	if !slices.Equal(backs, wantBacks) {
		t.Errorf("back painter calls %v, want %v", backs, wantBacks)
	}
}

func TestGridFlatHidesChildren(t *testing.T) {
	tree := &mapTree{
		roots:    []string{"atlas"},
		children: map[string][]string{"atlas": {"f0", "f1"}},
	}
	v, _, c := newGridViewer(tree, 400, 300, true)
	v.SetExpanded("atlas", true)
	v.Paint(c)

	if got := len(v.PaintItems()); got != 1 {
		t.Errorf("expected only the parent, got %d", got)
	}
	if len(v.treeIcons) != 0 {
		t.Error("expected no tree icons in flat mode")
	}
}

func TestGridFallsBackToRows(t *testing.T) {
	v, _, c := newGridViewer(flatRoots(4), 200, 300, false)
	v.SetCellSize(GridListThreshold)
	v.Paint(c)

	items := v.PaintItems()
	if len(items) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(items))
	}
	if items[1].Rect != controls.NewRect(0, 20, 200, 20) {
		t.Errorf("expected row layout, got %+v", items[1].Rect)
	}
}

func TestGridSmallCellsHaveNoLabel(t *testing.T) {
	v, _, c := newGridViewer(flatRoots(2), 200, 300, false)
	v.SetCellSizeBounds(16, 256)
	v.SetCellSize(40)
	c.Reset()
	v.Paint(c)

	if got := c.Texts(); len(got) != 0 {
		t.Errorf("expected no grid labels below %d, got %v", GridLabelMinCell, got)
	}
	if r := v.PaintItems()[0].Rect; r.H != 40 {
		t.Errorf("expected row height 40 without label, got %v", r.H)
	}
}
