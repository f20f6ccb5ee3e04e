package files

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Faultbox/packstudio/internal/controls"
)

// buildPNG encodes a w x h opaque image.
func buildPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

// writeTree creates files (URL -> content) under a temp dir.
func writeTree(t *testing.T, files map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	for url, data := range files {
		p := filepath.Join(dir, filepath.FromSlash(url))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestScanSortsFoldersFirst(t *testing.T) {
	dir := writeTree(t, map[string][]byte{
		"b.txt":             []byte("b"),
		"A.txt":             []byte("a"),
		"zeta/one.png":      nil,
		"assets/pack.json":  []byte("{}"),
		".git/config":       nil,
		"assets/sub/x.json": nil,
	})

	root, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	var names []string
	for _, f := range root.Files() {
		names = append(names, f.Name())
	}
	want := []string{"assets", "zeta", "A.txt", "b.txt"}
	if !slices.Equal(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}

	x := root.Find("assets/sub/x.json")
	if x == nil {
		t.Fatal("expected assets/sub/x.json")
	}
	if x.URL() != "assets/sub/x.json" {
		t.Errorf("unexpected URL %q", x.URL())
	}
	if x.Extension() != "json" || x.NameWithoutExtension() != "x" {
		t.Errorf("unexpected name parts %q %q", x.Extension(), x.NameWithoutExtension())
	}
	if got := x.Parent().Find("../pack.json"); got == nil || got.URL() != "assets/pack.json" {
		t.Errorf("expected relative lookup of pack.json, got %v", got)
	}
	if root.URL() != "" {
		t.Errorf("expected empty root URL, got %q", root.URL())
	}
	if got := len(root.FlatFiles()); got != 5 {
		t.Errorf("expected 5 files, got %d", got)
	}
}

func TestScanErrors(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	dir := writeTree(t, map[string][]byte{"f.txt": nil})
	if _, err := Scan(filepath.Join(dir, "f.txt")); !errors.Is(err, ErrNotDir) {
		t.Errorf("expected ErrNotDir, got %v", err)
	}
}

func TestInMemoryTree(t *testing.T) {
	root := NewFolder("project").Add(
		NewFolder("assets").Add(
			NewFile("atlas.json", 10, time.Time{}),
			NewFile("atlas.png", 10, time.Time{}),
		),
	)
	json := root.Find("assets/atlas.json")
	if json.URL() != "assets/atlas.json" {
		t.Errorf("unexpected URL %q", json.URL())
	}
	if sib := json.Sibling("atlas.png"); sib == nil || sib.URL() != "assets/atlas.png" {
		t.Errorf("expected sibling, got %v", sib)
	}
	if root.Find("assets/nope.png") != nil {
		t.Error("expected nil for missing file")
	}
}

func TestStoragePreloadReadsOnce(t *testing.T) {
	dir := writeTree(t, map[string][]byte{"pack.json": []byte(`{"a":1}`)})
	s := NewStorage(dir)

	var wg sync.WaitGroup
	results := make([]controls.PreloadResult, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.PreloadFileString(context.Background(), "pack.json")
		}()
	}
	wg.Wait()

	loaded := 0
	for _, r := range results {
		if r == controls.ResourcesLoaded {
			loaded++
		}
	}
	if loaded < 1 {
		t.Error("expected at least one caller to observe the load")
	}
	if got := s.Cache().Len(); got != 1 {
		t.Errorf("expected one cached file, got %d", got)
	}
	if got := s.FileString("pack.json"); got != `{"a":1}` {
		t.Errorf("unexpected content %q", got)
	}
	if r := s.PreloadFileString(context.Background(), "pack.json"); r != controls.NothingLoaded {
		t.Errorf("expected NothingLoaded once cached, got %v", r)
	}
}

func TestStorageFailuresAndInvalidate(t *testing.T) {
	dir := writeTree(t, map[string][]byte{})
	s := NewStorage(dir)
	ctx := context.Background()

	if r := s.PreloadFileString(ctx, "late.json"); r != controls.NothingLoaded {
		t.Errorf("expected NothingLoaded for missing file, got %v", r)
	}
	if s.FileString("late.json") != "" {
		t.Error("expected empty content for missing file")
	}
	if _, err := s.ReadString(ctx, "late.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "late.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if s.PreloadFileString(ctx, "late.json") != controls.NothingLoaded {
		t.Error("expected the failure to be remembered")
	}
	s.Invalidate("late.json")
	if got, err := s.ReadString(ctx, "late.json"); err != nil || got != "[]" {
		t.Errorf("expected [] after invalidation, got %q %v", got, err)
	}
}

func TestStorageRejectsOutsideRoot(t *testing.T) {
	s := NewStorage(t.TempDir())
	if _, err := s.Path("../secret.txt"); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("expected ErrOutsideRoot, got %v", err)
	}
	if _, err := s.Path("assets/../pack.json"); err != nil {
		t.Errorf("expected inner .. to resolve, got %v", err)
	}
}

func TestContentCacheModTime(t *testing.T) {
	c := NewContentCache()
	t1 := time.Unix(100, 0)
	c.Set("a", "one", t1)

	if _, ok := c.Get("a", t1); !ok {
		t.Error("expected hit at the same mod time")
	}
	if _, ok := c.Get("a", t1.Add(time.Second)); ok {
		t.Error("expected miss for a newer file")
	}
	if _, ok := c.Get("a", time.Time{}); !ok {
		t.Error("expected hit when mod time is unknown")
	}
	hits, misses := c.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("expected 2 hits 1 miss, got %d %d", hits, misses)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Error("expected empty cache")
	}
}

func TestImageLoader(t *testing.T) {
	dir := writeTree(t, map[string][]byte{
		"ok.png":   buildPNG(t, 12, 7),
		"fake.png": []byte("not an image at all"),
	})
	loader := NewImageLoader(NewStorage(dir))
	ctx := context.Background()

	img, err := loader.LoadImage(ctx, "ok.png")
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 12 || b.Dy() != 7 {
		t.Errorf("expected 12x7, got %v", b)
	}

	if _, err := loader.LoadImage(ctx, "fake.png"); !errors.Is(err, controls.ErrImageDecode) {
		t.Errorf("expected ErrImageDecode, got %v", err)
	}
	if _, err := loader.LoadImage(ctx, "none.png"); !errors.Is(err, controls.ErrImageNotFound) {
		t.Errorf("expected ErrImageNotFound, got %v", err)
	}
}

func TestDefaultExtensionResolver(t *testing.T) {
	r := DefaultExtensionTypeResolver()
	tests := []struct {
		name string
		want string
	}{
		{"a.PNG", ContentTypeImage},
		{"a.webp", ContentTypeImage},
		{"a.ogg", ContentTypeAudio},
		{"a.json", ContentTypeJSON},
		{"a.md", ContentTypeText},
		{"a.bin", ContentTypeAny},
		{"Makefile", ContentTypeAny},
	}
	for _, tt := range tests {
		got, err := r.ComputeContentType(context.Background(), NewFile(tt.name, 0, time.Time{}))
		if err != nil || got != tt.want {
			t.Errorf("%s: got %q %v, want %q", tt.name, got, err, tt.want)
		}
	}
}

// countingResolver claims one extension and counts calls.
type countingResolver struct {
	ext   string
	ct    string
	calls int
	err   error
}

func (r *countingResolver) ID() string { return "counting" }

func (r *countingResolver) ComputeContentType(_ context.Context, f *FilePath) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	if f.Extension() == r.ext {
		return r.ct, nil
	}
	return ContentTypeAny, nil
}

func TestContentTypeRegistry(t *testing.T) {
	reg := NewContentTypeRegistry()
	custom := &countingResolver{ext: "json", ct: "phaser-pack"}
	reg.Register(&countingResolver{err: errors.New("broken")})
	reg.Register(custom)

	pack := NewFile("pack.json", 1, time.Unix(1, 0))
	other := NewFile("data.json", 1, time.Unix(1, 0))
	ctx := context.Background()

	if got := reg.CachedContentType(pack); got != ContentTypeAny {
		t.Errorf("expected any before preload, got %q", got)
	}
	if r := reg.Preload(ctx, pack); r != controls.ResourcesLoaded {
		t.Errorf("expected ResourcesLoaded, got %v", r)
	}
	if got := reg.CachedContentType(pack); got != "phaser-pack" {
		t.Errorf("expected custom type, got %q", got)
	}
	if r := reg.Preload(ctx, pack); r != controls.NothingLoaded {
		t.Errorf("expected NothingLoaded when cached, got %v", r)
	}
	if custom.calls != 1 {
		t.Errorf("expected one resolver call, got %d", custom.calls)
	}

	custom.ext = "none"
	if got := reg.ContentType(ctx, other); got != ContentTypeJSON {
		t.Errorf("expected fallback json, got %q", got)
	}

	reg.Invalidate("pack.json")
	if got := reg.CachedContentType(pack); got != ContentTypeAny {
		t.Errorf("expected invalidated entry, got %q", got)
	}
}

func TestProjectImages(t *testing.T) {
	dir := writeTree(t, map[string][]byte{"img/hero.png": buildPNG(t, 20, 10)})
	p, err := OpenProject(dir)
	if err != nil {
		t.Fatalf("OpenProject: %v", err)
	}
	f := p.File("img/hero.png")
	if f == nil {
		t.Fatal("expected img/hero.png")
	}
	img := p.Image(f)
	if img != p.ImageByURL("img/hero.png") {
		t.Error("expected the same shared image")
	}
	if r := img.Preload(context.Background()); r != controls.ResourcesLoaded {
		t.Fatalf("expected ResourcesLoaded, got %v", r)
	}
	if img.Width() != 20 || img.Height() != 10 {
		t.Errorf("expected 20x10, got %vx%v", img.Width(), img.Height())
	}

	missing := p.ImageByURL("img/none.png")
	missing.Preload(context.Background())
	if missing.State() != controls.ImageError {
		t.Errorf("expected error state, got %v", missing.State())
	}
}

func TestProjectRefresh(t *testing.T) {
	dir := writeTree(t, map[string][]byte{"a.json": []byte("1")})
	p, err := OpenProject(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if got, _ := p.Storage().ReadString(ctx, "a.json"); got != "1" {
		t.Fatalf("unexpected content %q", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "a.json"), []byte("2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.json"), []byte("3"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := p.Refresh("a.json", "b.json"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if p.File("b.json") == nil {
		t.Error("expected new file in the tree")
	}
	if got, _ := p.Storage().ReadString(ctx, "a.json"); got != "2" {
		t.Errorf("expected refreshed content, got %q", got)
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := writeTree(t, map[string][]byte{"assets/a.json": []byte("{}")})
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got := make(chan []string, 1)
	go w.Run(ctx, func(urls []string) {
		select {
		case got <- urls:
		default:
		}
	})

	// Give the watcher loop a moment to start.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "assets", "b.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case urls := <-got:
		if !slices.Contains(urls, "assets/b.json") {
			t.Errorf("expected assets/b.json in %v", urls)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for change")
	}
}
