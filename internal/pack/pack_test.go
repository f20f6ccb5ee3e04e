package pack

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/Faultbox/packstudio/internal/files"
)

func TestNewAssetPackSectionOrder(t *testing.T) {
	p := NewAssetPack("assets/pack.json", `{
		"ui": {"files": [{"key": "button", "type": "image", "url": "b.png"}]},
		"10": {"files": [{"key": "ten", "type": "image", "url": "t.png"}]},
		"2": {"files": [{"key": "two", "type": "audio", "url": ["two.ogg"]}]},
		"level": {"files": [
			{"key": "tiles", "type": "spritesheet", "url": "tiles.png", "frameConfig": {"frameWidth": 16, "frameHeight": 16}},
			{"key": "map", "type": "tilemapTiledJSON", "url": "map.json"}
		]},
		"meta": {"contentType": "Phaser v3 Asset Pack"}
	}`, newMemSource())

	var keys []string
	for _, item := range p.Items() {
		keys = append(keys, item.Key())
	}
	want := []string{"two", "ten", "button", "tiles", "map"}
	if !slices.Equal(keys, want) {
		t.Errorf("expected %v, got %v", want, keys)
	}
	if p.Name() != "pack.json" {
		t.Errorf("unexpected name %q", p.Name())
	}

	types := p.Types()
	wantTypes := []string{ImageType, SpritesheetType, TilemapTiledJSONType, AudioType}
	if !slices.Equal(types, wantTypes) {
		t.Errorf("expected types %v, got %v", wantTypes, types)
	}
	if got := p.ItemsOfType(ImageType); len(got) != 2 || got[0].Key() != "ten" {
		t.Errorf("unexpected image items %v", got)
	}
	if p.Item("map") == nil || p.Item("nope") != nil {
		t.Error("Item lookup by key failed")
	}
}

func TestNewAssetPackMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		keys    []string
	}{
		{name: "empty", content: "", keys: nil},
		{name: "not JSON", content: "{ section: ", keys: nil},
		{name: "array manifest", content: `[{"files": []}]`, keys: nil},
		{
			name:    "non object item stops the section",
			content: `{"s": {"files": [{"key": "first", "type": "image"}, 42, {"key": "third", "type": "image"}]}}`,
			keys:    []string{"first"},
		},
		{
			name:    "non object sections are skipped",
			content: `{"a": 1, "b": "x", "c": {"files": [{"key": "kept", "type": "text"}]}}`,
			keys:    []string{"kept"},
		},
		{
			name:    "section without files",
			content: `{"s": {"other": []}}`,
			keys:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewAssetPack("pack.json", tt.content, newMemSource())
			var keys []string
			for _, item := range p.Items() {
				keys = append(keys, item.Key())
			}
			if !slices.Equal(keys, tt.keys) {
				t.Errorf("expected %v, got %v", tt.keys, keys)
			}
		})
	}
}

func TestUnknownTypeIsPlainItem(t *testing.T) {
	item := singleItemPack(t, newMemSource(), `{"key": "x", "type": "somethingNew", "url": "x.bin"}`)
	if item.Type() != "somethingNew" {
		t.Errorf("unexpected type %q", item.Type())
	}
	if item.IsImageFrameContainer() || IsKnownType(item.Type()) {
		t.Error("unknown types are neither known nor frame containers")
	}
	if item.StringField("url") != "x.bin" || item.StringField("missing") != "" {
		t.Error("unexpected string fields")
	}
}

func TestToJSONRoundTrip(t *testing.T) {
	p := NewAssetPack("pack.json", `{
		"a": {"files": [{"key": "one", "type": "image", "url": "1.png"}]},
		"b": {"files": [{"key": "two", "type": "text", "url": "2.txt"}]}
	}`, newMemSource())

	out, err := p.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	var doc struct {
		Section1 struct {
			Files []map[string]any `json:"files"`
		} `json:"section1"`
		Meta map[string]string `json:"meta"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if len(doc.Section1.Files) != 2 || doc.Section1.Files[1]["key"] != "two" {
		t.Errorf("unexpected files %v", doc.Section1.Files)
	}
	if doc.Meta["contentType"] != ManifestContentType || doc.Meta["version"] != ManifestVersion {
		t.Errorf("unexpected meta %v", doc.Meta)
	}
	if !bytes.Contains(out, []byte("\n    \"section1\"")) {
		t.Error("expected four space indentation")
	}

	again := NewAssetPack("pack.json", string(out), newMemSource())
	if len(again.Items()) != 2 || again.Items()[0].Key() != "one" {
		t.Errorf("re-reading the output gave %v", again.Items())
	}
}

func TestObjectMembers(t *testing.T) {
	members, err := objectMembers([]byte(`{"b": 1, "4294967295": 2, "01": 3, "3": 4, "0": 5, "b": 6}`))
	if err != nil {
		t.Fatalf("objectMembers: %v", err)
	}
	var keys []string
	for _, m := range members {
		keys = append(keys, m.Key)
	}
	want := []string{"0", "3", "b", "4294967295", "01"}
	if !slices.Equal(keys, want) {
		t.Errorf("expected %v, got %v", want, keys)
	}
	if string(members[2].Value) != "6" {
		t.Errorf("expected the last value of a repeated key, got %s", members[2].Value)
	}

	if _, err := objectMembers([]byte(`[1]`)); err == nil {
		t.Error("expected an error for an array")
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"12", 12, true},
		{"  -7px", -7, true},
		{"+3", 3, true},
		{"4.9", 4, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseInt(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseInt(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

// --- project backed tests ---

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

// openProject writes files (URL -> content) to a temp dir and opens it with
// the pack content types registered.
func openProject(t *testing.T, tree map[string][]byte) *files.Project {
	t.Helper()
	dir := t.TempDir()
	for url, data := range tree {
		p := filepath.Join(dir, filepath.FromSlash(url))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	project, err := files.OpenProject(dir)
	if err != nil {
		t.Fatalf("OpenProject: %v", err)
	}
	RegisterContentTypes(project.ContentTypes(), project.Storage())
	return project
}

const packManifest = `{
	"section1": {"files": [
		{"key": "logo", "type": "image", "url": "assets/logo.png"},
		{"key": "hero", "type": "atlas", "atlasURL": "assets/hero.json", "textureURL": "assets/hero.png"},
		{"key": "tiles", "type": "spritesheet", "url": "assets/hero.png", "frameConfig": {"frameWidth": 8, "frameHeight": 8}},
		{"key": "theme", "type": "audio", "url": ["assets/theme.ogg"]}
	]},
	"meta": {"app": "Phaser Editor 2D - Asset Pack Editor", "contentType": "Phaser v3 Asset Pack", "url": "https://phasereditor2d.com", "version": "2"}
}`

func TestPackFinder(t *testing.T) {
	project := openProject(t, map[string][]byte{
		"assets/pack.json":  []byte(packManifest),
		"assets/logo.png":   pngBytes(t, 24, 12),
		"assets/hero.png":   pngBytes(t, 16, 16),
		"assets/hero.json":  []byte(atlasArrayJSON),
		"assets/theme.ogg":  []byte("OggS"),
		"assets/other.json": []byte(`{"meta": {"contentType": "something else"}}`),
	})
	finder := NewPackFinder(project)
	ctx := context.Background()

	finder.Preload(ctx)

	packs := finder.Packs()
	if len(packs) != 1 || packs[0].URL() != "assets/pack.json" {
		t.Fatalf("expected the one manifest, got %v", packs)
	}
	if finder.Pack("assets/pack.json") != packs[0] {
		t.Error("Pack(url) should return the loaded pack")
	}
	if n := len(finder.AssetPackItems()); n != 4 {
		t.Errorf("expected 4 items, got %d", n)
	}

	name := "walk-2"
	frame, ok := finder.GetAssetPackItemOrFrame("hero", &name).(*AssetPackImageFrame)
	if !ok || frame.Name() != "walk-2" || frame.PackItem().Key() != "hero" {
		t.Errorf("expected the hero walk-2 frame, got %v", frame)
	}
	if frame.Image().Width() != 16 {
		t.Errorf("expected the preloaded texture, width %v", frame.Image().Width())
	}

	if item, ok := finder.GetAssetPackItemOrFrame("logo", nil).(*AssetPackItem); !ok || item.Key() != "logo" {
		t.Errorf("expected the logo item, got %v", item)
	}
	if got := finder.GetAssetPackItemOrFrame("logo", &name); got != nil {
		t.Errorf("an image item with a frame name resolves to nothing, got %v", got)
	}
	missing := "nope"
	if got := finder.GetAssetPackItemOrFrame("hero", &missing); got != nil {
		t.Errorf("expected no frame, got %v", got)
	}
	if got := finder.GetAssetPackItemOrFrame("theme", &missing); got == nil {
		t.Error("non container items resolve to themselves")
	}
	if got := finder.GetAssetPackItemOrFrame("unknown", nil); got != nil {
		t.Errorf("expected nothing for an unknown key, got %v", got)
	}

	img := finder.GetAssetPackItemImage("logo", nil)
	if img == nil || img.Width() != 24 || img.Height() != 12 {
		t.Errorf("expected the 24x12 logo image, got %v", img)
	}
	three := "3"
	if cell := finder.GetAssetPackItemImage("tiles", &three); cell == nil || cell.Width() != 8 {
		t.Errorf("expected spritesheet cell 3, got %v", cell)
	}
	if finder.GetAssetPackItemImage("theme", nil) != nil {
		t.Error("audio items have no image")
	}
}

func TestPackFinderReload(t *testing.T) {
	project := openProject(t, map[string][]byte{
		"pack.json": []byte(`{"s": {"files": [{"key": "a", "type": "text", "url": "a.txt"}]},
			"meta": {"contentType": "Phaser v3 Asset Pack"}}`),
	})
	finder := NewPackFinder(project)
	ctx := context.Background()
	finder.Preload(ctx)
	if finder.FindAssetPackItem("a") == nil {
		t.Fatal("expected item a")
	}

	next := `{"s": {"files": [{"key": "b", "type": "text", "url": "b.txt"}]},
		"meta": {"contentType": "Phaser v3 Asset Pack"}}`
	if err := os.WriteFile(filepath.Join(project.Dir(), "pack.json"), []byte(next), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := project.Refresh("pack.json"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	finder.Preload(ctx)

	if finder.FindAssetPackItem("a") != nil || finder.FindAssetPackItem("b") == nil {
		t.Error("expected the reloaded manifest")
	}
}

func TestContentTypes(t *testing.T) {
	project := openProject(t, map[string][]byte{
		"pack.json":      []byte(packManifest),
		"broken.json":    []byte("{ nope"),
		"atlas.json":     []byte(atlasMapJSON),
		"multi.json":     []byte(`{"textures": []}`),
		"anims.json":     []byte(`{"anims": [], "meta": {"contentType": "Phaser v3 Animations"}}`),
		"level.json":     []byte(`{"layers": [], "tilesets": []}`),
		"impact.json":    []byte(`{"entities": [], "layer": []}`),
		"sfx.json":       []byte(`{"resources": ["sfx.ogg"], "spritemap": {}}`),
		"plain.json":     []byte(`{"frames": 3}`),
		"ui.xml":         []byte(`<TextureAtlas imagePath="ui.png"><SubTexture name="a"/></TextureAtlas>`),
		"font.xml":       []byte(`<font><info/><chars count="0"></chars></font>`),
		"data.xml":       []byte(`<root/>`),
		"rocks.png.meta": []byte("fileFormatVersion: 2\n"),
		"noext":          pngBytes(t, 2, 2),
	})
	ctx := context.Background()
	types := project.ContentTypes()

	tests := map[string]string{
		"pack.json":      ContentTypeAssetPack,
		"broken.json":    files.ContentTypeJSON,
		"atlas.json":     ContentTypeAtlas,
		"multi.json":     ContentTypeMultiAtlas,
		"anims.json":     ContentTypeAnimations,
		"level.json":     ContentTypeTilemapTiledJSON,
		"impact.json":    ContentTypeTilemapImpact,
		"sfx.json":       ContentTypeAudioSprite,
		"plain.json":     files.ContentTypeJSON,
		"ui.xml":         ContentTypeAtlasXML,
		"font.xml":       ContentTypeBitmapFont,
		"data.xml":       files.ContentTypeXML,
		"rocks.png.meta": ContentTypeUnityAtlas,
		"noext":          files.ContentTypeImage,
	}
	for url, want := range tests {
		if got := types.ContentType(ctx, project.File(url)); got != want {
			t.Errorf("%s: expected %q, got %q", url, want, got)
		}
	}
}

func TestUniqueName(t *testing.T) {
	used := map[string]bool{"hero": true, "hero_1": true}
	if got := uniqueName("hero", used); got != "hero_2" {
		t.Errorf("expected hero_2, got %q", got)
	}
	if got := uniqueName("villain", used); got != "villain" {
		t.Errorf("expected villain, got %q", got)
	}
}

func TestImporters(t *testing.T) {
	project := openProject(t, map[string][]byte{
		"pack.json":             []byte(packManifest),
		"assets/hero.png":       pngBytes(t, 16, 16),
		"assets/hero.json":      []byte(atlasArrayJSON),
		"sprites/boss.json":     []byte(atlasArrayJSON),
		"sprites/boss.json.png": pngBytes(t, 16, 16),
		"ui/ui.png.json":        []byte(atlasArrayJSON),
	})
	ctx := context.Background()
	types := project.ContentTypes()
	for _, f := range project.Root().FlatFiles() {
		types.Preload(ctx, f)
	}

	atlas := ImporterFor(AtlasType)
	if atlas == nil {
		t.Fatal("expected an atlas importer")
	}
	accepted := atlas.AcceptedFiles(project.Root(), types)
	var urls []string
	for _, f := range accepted {
		urls = append(urls, f.URL())
	}
	wantURLs := []string{"assets/hero.json", "sprites/boss.json", "ui/ui.png.json"}
	if !slices.Equal(urls, wantURLs) {
		t.Fatalf("expected %v, got %v", wantURLs, urls)
	}

	finder := NewPackFinder(project)
	finder.Preload(ctx)
	p := finder.Pack("pack.json")
	if p == nil {
		t.Fatal("expected pack.json")
	}

	wantTextures := map[string]string{
		"assets/hero.json":  "assets/hero.png",
		"sprites/boss.json": "sprites/boss.json.png",
		"ui/ui.png.json":    "ui/ui.png",
	}
	for _, f := range accepted {
		item, err := atlas.ImportFile(ctx, p, f, types)
		if err != nil {
			t.Fatalf("ImportFile(%s): %v", f.URL(), err)
		}
		if got := item.StringField("textureURL"); got != wantTextures[f.URL()] {
			t.Errorf("%s: expected texture %q, got %q", f.URL(), wantTextures[f.URL()], got)
		}
		if item.Type() != AtlasType || item.StringField("atlasURL") != f.URL() {
			t.Errorf("unexpected item data %s", item.Data())
		}
	}

	// The manifest already holds "hero".
	if p.Item("hero_1") == nil {
		t.Error("expected the imported hero atlas keyed hero_1")
	}
	if frames := p.Item("hero_1").Frames(); len(frames) != 2 {
		t.Errorf("expected the imported atlas to be preloaded, got %d frames", len(frames))
	}

	sheet := ImporterFor(SpritesheetType)
	item, err := sheet.ImportFile(ctx, p, project.File("assets/hero.png"), types)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if jsonKind(item.Field("frameConfig")) != "object" || item.Key() != "hero_2" {
		t.Errorf("unexpected spritesheet item %s", item.Data())
	}

	if ImporterFor("nope") != nil {
		t.Error("expected no importer for an unknown type")
	}
}
