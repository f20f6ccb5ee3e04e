package viewers

import (
	"context"
	"image"
	"slices"
	"testing"

	"github.com/Faultbox/packstudio/internal/controls"
	"github.com/Faultbox/packstudio/internal/controls/canvastest"
	cviewers "github.com/Faultbox/packstudio/internal/controls/viewers"
	"github.com/Faultbox/packstudio/internal/pack"
)

// fixedSource serves preloaded texts and ready images.
type fixedSource struct {
	texts  map[string]string
	images map[string]controls.Image
}

func (s *fixedSource) PreloadFileString(context.Context, string) controls.PreloadResult {
	return controls.NothingLoaded
}

func (s *fixedSource) FileString(url string) (string, bool) {
	text, ok := s.texts[url]
	return text, ok
}

func (s *fixedSource) Image(url string) controls.Image {
	if img, ok := s.images[url]; ok {
		return img
	}
	return nil
}

func (s *fixedSource) Exists(url string) bool {
	_, text := s.texts[url]
	_, img := s.images[url]
	return text || img
}

const heroAtlas = `{"frames": {
	"idle": {"frame": {"x": 0, "y": 0, "w": 16, "h": 16}, "spriteSourceSize": {"x": 0, "y": 0, "w": 16, "h": 16}, "sourceSize": {"w": 16, "h": 16}},
	"run": {"frame": {"x": 16, "y": 0, "w": 16, "h": 16}, "spriteSourceSize": {"x": 0, "y": 0, "w": 16, "h": 16}, "sourceSize": {"w": 16, "h": 16}}
}}`

func testPack(t *testing.T) *pack.AssetPack {
	t.Helper()
	ready := func(url string, w, h int) controls.Image {
		return controls.NewReadyImage(url, image.NewRGBA(image.Rect(0, 0, w, h)))
	}
	src := &fixedSource{
		texts: map[string]string{
			"hero.json": heroAtlas,
			"ui.xml":    `<TextureAtlas><SubTexture name="ok" x="0" y="0" width="8" height="8"/></TextureAtlas>`,
		},
		images: map[string]controls.Image{
			"hero.png": ready("hero.png", 32, 16),
			"logo.png": ready("logo.png", 20, 10),
			"ui.png":   ready("ui.png", 8, 8),
		},
	}
	p := pack.NewAssetPack("assets/pack.json", `{"section1": {"files": [
		{"key": "logo", "type": "image", "url": "logo.png"},
		{"key": "hero", "type": "atlas", "atlasURL": "hero.json", "textureURL": "hero.png"},
		{"key": "ui", "type": "atlasXML", "atlasURL": "ui.xml", "textureURL": "ui.png"},
		{"key": "theme", "type": "audio", "url": ["theme.ogg"]},
		{"key": "main", "type": "script", "url": "main.js"}
	]}}`, src)
	if len(p.Items()) != 5 {
		t.Fatalf("expected 5 items, got %d", len(p.Items()))
	}
	p.Preload(context.Background())
	return p
}

func labels(objs []pack.Element) []string {
	var out []string
	for _, o := range objs {
		out = append(out, LabelProvider{}.Label(o))
	}
	return out
}

func TestAssetPackContentProvider(t *testing.T) {
	p := testPack(t)
	var cp AssetPackContentProvider

	if got := labels(cp.Roots(p)); !slices.Equal(got, []string{"logo", "hero", "ui", "theme", "main"}) {
		t.Errorf("unexpected roots %v", got)
	}
	if got := labels(cp.Roots([]*pack.AssetPack{p})); !slices.Equal(got, []string{"pack.json"}) {
		t.Errorf("unexpected pack roots %v", got)
	}
	if got := labels(cp.Children(p.Item("hero"))); !slices.Equal(got, []string{"idle", "run"}) {
		t.Errorf("unexpected atlas children %v", got)
	}
	if got := cp.Children(p.Item("logo")); got != nil {
		t.Errorf("image items have no children, got %v", got)
	}
	if got := cp.Children(p.Item("theme")); got != nil {
		t.Errorf("audio items have no children, got %v", got)
	}
}

func TestEditorContentProviderGroupsAtlases(t *testing.T) {
	p := testPack(t)
	get := func() *pack.AssetPack { return p }

	grouped := NewEditorContentProvider(get, true)
	if got := labels(grouped.Children(pack.SectionType(pack.AtlasType))); !slices.Equal(got, []string{"hero", "ui"}) {
		t.Errorf("expected grouped atlas items, got %v", got)
	}
	roots := labels(grouped.Roots(nil))
	if slices.Contains(roots, pack.AtlasXMLType) || !slices.Contains(roots, pack.AtlasType) {
		t.Errorf("grouped roots should fold atlas variants into atlas, got %v", roots)
	}

	plain := NewEditorContentProvider(get, false)
	if got := labels(plain.Children(pack.SectionType(pack.AtlasType))); !slices.Equal(got, []string{"hero"}) {
		t.Errorf("expected only atlas items, got %v", got)
	}
	if got := len(plain.Roots(nil)); got != len(pack.Types) {
		t.Errorf("expected a root per type, got %d", got)
	}
	if got := labels(plain.Children(p.Item("hero"))); len(got) != 2 {
		t.Errorf("items still expand to frames, got %v", got)
	}

	empty := NewEditorContentProvider(func() *pack.AssetPack { return nil }, true)
	if empty.Roots(nil) != nil || empty.Children(pack.SectionType(pack.ImageType)) != nil {
		t.Error("expected nothing without a pack")
	}
}

func TestOutlineContentProvider(t *testing.T) {
	p := testPack(t)
	outline := NewOutlineContentProvider(func() *pack.AssetPack { return p })

	want := []string{pack.ImageType, pack.AtlasType, pack.AtlasXMLType, pack.ScriptType, pack.AudioType}
	if got := labels(outline.Roots(nil)); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got := labels(outline.Children(pack.SectionType(pack.AtlasType))); !slices.Equal(got, []string{"hero"}) {
		t.Errorf("outline does not group atlases, got %v", got)
	}
}

func TestCellRendererProvider(t *testing.T) {
	p := testPack(t)
	frame := p.Item("hero").FindFrame("idle")

	tests := []struct {
		name   string
		layout string
		obj    pack.Element
		check  func(cviewers.CellRenderer[pack.Element]) bool
	}{
		{"section", LayoutGrid, pack.SectionType(pack.ImageType), isIconRow},
		{"image item", LayoutGrid, p.Item("logo"), isAsset},
		{"atlas in grid", LayoutGrid, p.Item("hero"), isIconGrid},
		{"atlas in tree", LayoutTree, p.Item("hero"), isFirstFrame},
		{"audio in grid", LayoutGrid, p.Item("theme"), isIconGrid},
		{"script in tree", LayoutTree, p.Item("main"), isIconRow},
		{"frame", LayoutTree, frame, isAsset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewCellRendererProvider(tt.layout).CellRenderer(tt.obj)
			if !tt.check(r) {
				t.Errorf("unexpected renderer %T", r)
			}
		})
	}

	// The icon reflects the item type.
	r := NewCellRendererProvider(LayoutGrid).CellRenderer(p.Item("theme")).(*cviewers.IconGridCellRenderer[pack.Element])
	if r.Icon != controls.IconFileSound {
		t.Errorf("expected the sound icon, got %v", r.Icon)
	}
}

func isIconRow(r cviewers.CellRenderer[pack.Element]) bool {
	_, ok := r.(*cviewers.IconImageCellRenderer[pack.Element])
	return ok
}

func isIconGrid(r cviewers.CellRenderer[pack.Element]) bool {
	_, ok := r.(*cviewers.IconGridCellRenderer[pack.Element])
	return ok
}

func isAsset(r cviewers.CellRenderer[pack.Element]) bool {
	_, ok := r.(*AssetCellRenderer)
	return ok
}

func isFirstFrame(r cviewers.CellRenderer[pack.Element]) bool {
	_, ok := r.(*ImageFrameContainerIconCellRenderer)
	return ok
}

func TestSectionTypes(t *testing.T) {
	types := SectionTypes()
	for _, excluded := range []string{pack.AtlasXMLType, pack.UnityAtlasType, pack.MultiAtlasType} {
		if slices.Contains(types, excluded) {
			t.Errorf("%s should fold into the atlas section", excluded)
		}
	}
	if !slices.Contains(types, pack.AtlasType) || types[0] != pack.ImageType {
		t.Errorf("unexpected sections %v", types)
	}
	if len(types) != len(pack.Types)-3 {
		t.Errorf("expected %d sections, got %d", len(pack.Types)-3, len(types))
	}
}

func chips(c *canvastest.Recorder) []canvastest.Op {
	var out []canvastest.Op
	for _, op := range c.Ops {
		if op.Kind == "round" && op.Color == controls.ColorChip {
			out = append(out, op)
		}
	}
	return out
}

func TestAssetPackTreeRendererChips(t *testing.T) {
	p := testPack(t)
	v := NewAssetPackViewer("pack", func() *pack.AssetPack { return p }, true)
	if v.CellSize() != PackCellSize {
		t.Fatalf("expected cell size %d, got %v", PackCellSize, v.CellSize())
	}
	c := canvastest.New(400, 600)
	v.SetCanvas(c)
	hero := p.Item("hero")

	v.Paint(c)
	var collapsed canvastest.Op
	for _, op := range chips(c) {
		if op.Radii == controls.UniformRadii(chipRadius) {
			collapsed = op
		}
	}
	if collapsed.Rect.W != PackCellSize {
		t.Fatalf("expected a rounded chip behind the collapsed atlas, got %+v", chips(c))
	}

	v.SetExpanded(hero, true)
	c.Reset()
	v.Paint(c)

	var heroRect controls.Rect
	for _, item := range v.PaintItems() {
		if item.Obj == pack.Element(hero) {
			heroRect = item.Rect
		}
	}
	x, y := heroRect.X, heroRect.Y
	want := []canvastest.Op{
		{Rect: controls.NewRect(x, y, 64, 64), Radii: controls.Radii{TopLeft: 5, BottomLeft: 5}},
		{Rect: controls.NewRect(x+64, y, 69, 64)},
		{Rect: controls.NewRect(x+133, y, 69, 64), Radii: controls.Radii{TopRight: 5, BottomRight: 5}},
	}
	got := chips(c)
	// The collapsed ui atlas paints its own chip after the hero frames.
	if len(got) < len(want) {
		t.Fatalf("expected at least %d chips, got %+v", len(want), got)
	}
	for i, w := range want {
		if got[i].Rect != w.Rect || got[i].Radii != w.Radii {
			t.Errorf("chip %d: got %+v %+v, want %+v %+v", i, got[i].Rect, got[i].Radii, w.Rect, w.Radii)
		}
	}

	if _, ok := c.Find("text", "ATLAS"); !ok {
		t.Errorf("expected an ATLAS section title, got %v", c.Texts())
	}
	if _, ok := c.Find("text", "ATLASXML"); ok {
		t.Error("grouped atlas variants have no section of their own")
	}
}

func TestFlatRendererHasNoParentChips(t *testing.T) {
	p := testPack(t)
	v := cviewers.NewTreeViewer[pack.Element]("flat")
	v.SetContentProvider(NewEditorContentProvider(func() *pack.AssetPack { return p }, true))
	v.SetLabelProvider(LabelProvider{})
	v.SetCellRendererProvider(NewCellRendererProvider(LayoutGrid))
	NewAssetPackTreeRenderer(v, true)
	v.SetInput(p)

	c := canvastest.New(400, 600)
	v.SetCanvas(c)
	v.Paint(c)
	if got := chips(c); len(got) != 0 {
		t.Errorf("expected no chips in flat mode, got %+v", got)
	}
}

func TestPackTreeViewerFilter(t *testing.T) {
	p := testPack(t)
	v := NewPackTreeViewer("packs", []*pack.AssetPack{p})
	c := canvastest.New(300, 400)
	v.SetCanvas(c)
	v.SetFilterText("RUN")
	v.Paint(c)

	var shown []string
	for _, item := range v.PaintItems() {
		shown = append(shown, LabelProvider{}.Label(item.Obj))
	}
	if !slices.Equal(shown, []string{"pack.json", "hero", "run"}) {
		t.Errorf("expected the path to the matching frame, got %v", shown)
	}
}
