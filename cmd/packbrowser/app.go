package main

import (
	"context"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/packstudio/internal/config"
	"github.com/Faultbox/packstudio/internal/controls"
	"github.com/Faultbox/packstudio/internal/controls/viewers"
	"github.com/Faultbox/packstudio/internal/debug"
	"github.com/Faultbox/packstudio/internal/files"
	"github.com/Faultbox/packstudio/internal/host"
	"github.com/Faultbox/packstudio/internal/logger"
	"github.com/Faultbox/packstudio/internal/pack"
	pviewers "github.com/Faultbox/packstudio/internal/pack/viewers"
)

// Layout in canvas pixels at scale 1.
const (
	sidebarWidth = 280
	filterHeight = 28
	statusHeight = 22
)

// pane is the part of a tree viewer the browser drives.
type pane interface {
	SetCanvas(c controls.Canvas)
	Repaint()
	Tick(dt float32) bool
	SetFilterText(text string)
	HandleMouseDown(x, y float32, button viewers.MouseButton, mods viewers.KeyModifiers)
	HandleMouseMove(x, y float32)
	HandleMouseUp(x, y float32, button viewers.MouseButton, mods viewers.KeyModifiers)
	HandleDoubleClick(x, y float32)
	HandleWheel(dy float32, mods viewers.KeyModifiers)
	HandleKey(key viewers.Key, mods viewers.KeyModifiers) bool
	Drop(x, y float32) bool
}

// App is the pack browser: the project files on the left and the selected
// pack on the right.
type App struct {
	cfg *config.Config
	log *zap.Logger

	window    *host.Window
	presenter *host.Presenter
	input     *host.Input
	canvas    *controls.RasterCanvas
	scale     float32

	ctx        context.Context
	cancel     context.CancelFunc
	dispatcher *viewers.QueueDispatcher
	dragSlot   *controls.DragSlot
	snapshots  *debug.Snapshotter

	project *files.Project
	finder  *pack.PackFinder
	watcher *files.Watcher
	current *pack.AssetPack

	fileView *viewers.TreeViewer[*files.FilePath]
	packView *viewers.TreeViewer[pack.Element]

	fileRegion   *controls.Region
	packRegion   *controls.Region
	filterRegion *controls.Region

	focused pane
	pressed pane
	filters map[pane]string
	status  string
}

// NewApp opens the window and the project at cfg.Project.Root.
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{
		cfg:        cfg,
		log:        logger.Named("browser"),
		input:      host.NewInput(),
		dispatcher: viewers.NewQueueDispatcher(),
		dragSlot:   controls.NewDragSlot(),
		snapshots:  debug.NewSnapshotter("snapshots", "packbrowser"),
		filters:    make(map[pane]string),
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	window, err := host.NewWindow(host.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, err
	}
	app.window = window

	presenter, err := host.NewPresenter()
	if err != nil {
		window.Close()
		return nil, err
	}
	app.presenter = presenter

	dw, dh := window.DrawableSize()
	app.canvas = controls.NewRasterCanvas(dw, dh)
	app.fileRegion = controls.NewRegion(app.canvas, controls.Rect{})
	app.packRegion = controls.NewRegion(app.canvas, controls.Rect{})
	app.filterRegion = controls.NewRegion(app.canvas, controls.Rect{})

	if err := app.openProject(cfg.Project.Root); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// openProject replaces the current project, its viewers and its watcher.
func (a *App) openProject(dir string) error {
	project, err := files.OpenProject(dir)
	if err != nil {
		return err
	}
	pack.RegisterContentTypes(project.ContentTypes(), project.Storage())

	finder := pack.NewPackFinder(project)
	finder.Preload(a.ctx)

	if a.watcher != nil {
		a.watcher.Close()
	}
	watcher, err := files.NewWatcher(project.Dir())
	if err != nil {
		a.log.Warn("file watching disabled", zap.Error(err))
	} else {
		go func() {
			err := watcher.Run(a.ctx, func(urls []string) {
				a.dispatcher.Post(func() { a.refresh(urls) })
			})
			if err != nil && err != context.Canceled {
				a.log.Warn("watcher stopped", zap.Error(err))
			}
		}()
	}

	a.project = project
	a.finder = finder
	a.watcher = watcher
	a.current = nil
	a.cfg.Project.Root = project.Dir()
	a.filters = make(map[pane]string)

	a.fileView = files.NewFileViewer("files", project, false)
	setupViewer(a, a.fileView)
	a.fileView.SetDragSlot(a.dragSlot)
	a.fileView.OnSelectionChanged(a.fileSelectionChanged)

	a.packView = a.newPackViewer()

	a.focused = a.packView
	a.window.SetTitle(fmt.Sprintf("%s - %s", a.cfg.Window.Title, project.Dir()))
	a.setStatus(fmt.Sprintf("%d packs", len(finder.Packs())))

	if packs := finder.Packs(); len(packs) > 0 {
		a.showPack(recentPack(a.cfg, packs))
	}
	a.layout()
	return nil
}

// recentPack picks the most recently shown pack still present.
func recentPack(cfg *config.Config, packs []*pack.AssetPack) *pack.AssetPack {
	for _, url := range cfg.Project.RecentPacks {
		for _, p := range packs {
			if p.URL() == url {
				return p
			}
		}
	}
	return packs[0]
}

func (a *App) newPackViewer() *viewers.TreeViewer[pack.Element] {
	var v *viewers.TreeViewer[pack.Element]
	if a.cfg.Viewer.Layout == config.LayoutTree {
		v = pviewers.NewPackTreeViewer("packs", a.finder.Packs())
	} else {
		v = pviewers.NewAssetPackViewer("pack", func() *pack.AssetPack { return a.current }, a.cfg.Viewer.GroupAtlasItems)
		v.SetCellSize(float32(a.cfg.Viewer.CellSize))
	}
	setupViewer(a, v)
	v.SetDragSlot(a.dragSlot)
	v.SetDropHandler(a.dropOnPack)
	v.OnOpen(a.openElement)
	v.OnSelectionChanged(func(sel []pack.Element) {
		if len(sel) == 1 {
			a.setStatus(pviewers.LabelProvider{}.Label(sel[0]))
		}
	})
	return v
}

func setupViewer[T comparable](a *App, v *viewers.TreeViewer[T]) {
	vc := a.cfg.Viewer
	v.SetContext(a.ctx)
	v.SetDispatcher(a.dispatcher)
	v.SetPreloadWorkers(vc.PreloadWorkers)
	v.SetScrollStep(float32(vc.ScrollStep))
	v.SetCellSizeBounds(float32(vc.MinCellSize), float32(vc.MaxCellSize))
	v.SetRevealDuration(float32(vc.RevealDuration.Seconds()))
}

// --- Selection and drop ---

func (a *App) fileSelectionChanged(sel []*files.FilePath) {
	if len(sel) != 1 || !sel[0].IsFile() {
		return
	}
	f := sel[0]
	if a.project.ContentTypes().CachedContentType(f) != pack.ContentTypeAssetPack {
		return
	}
	if p := a.finder.Pack(f.URL()); p != nil {
		a.showPack(p)
	}
}

func (a *App) showPack(p *pack.AssetPack) {
	a.current = p
	a.cfg.AddRecentPack(p.URL())
	if a.cfg.Viewer.Layout == config.LayoutTree {
		a.packView.RevealAndSelect(p)
	} else {
		a.packView.SetInput(p)
		a.packView.SetScrollY(0)
	}
	a.setStatus(p.String())
	a.packView.Repaint()
}

func (a *App) openElement(obj pack.Element) {
	switch o := obj.(type) {
	case *pack.AssetPackItem:
		if o.IsImageFrameContainer() && o.Type() != pack.ImageType {
			a.packView.ExpandCollapseBranch(o)
			a.packView.Repaint()
		}
	case *pack.AssetPackImageFrame:
		a.setStatus(o.String())
	}
}

// dropOnPack imports files dragged from the file viewer into the shown
// pack and writes its manifest. The watcher reloads the pack afterwards.
func (a *App) dropOnPack(payload []any, _ pack.Element, _ bool) bool {
	p := a.current
	if p == nil {
		return false
	}
	types := a.project.ContentTypes()
	imported := 0
	for _, obj := range payload {
		f, ok := obj.(*files.FilePath)
		if !ok || !f.IsFile() {
			continue
		}
		types.ContentType(a.ctx, f)
		for _, im := range pack.Importers {
			if !im.AcceptFile(f, types) {
				continue
			}
			if _, err := im.ImportFile(a.ctx, p, f, types); err != nil {
				a.log.Warn("import failed", zap.String("url", f.URL()), zap.Error(err))
			} else {
				imported++
			}
			break
		}
	}
	if imported == 0 {
		return false
	}
	if err := a.savePack(p); err != nil {
		a.log.Error("pack save failed", zap.String("url", p.URL()), zap.Error(err))
		return false
	}
	a.setStatus(fmt.Sprintf("imported %d files into %s", imported, p.Name()))
	return true
}

func (a *App) savePack(p *pack.AssetPack) error {
	data, err := p.ToJSON()
	if err != nil {
		return err
	}
	path, err := a.project.Storage().Path(p.URL())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// --- Reload ---

// refresh runs on the UI goroutine after files changed on disk. The packs
// are reloaded in the background and swapped in on the UI goroutine.
func (a *App) refresh(urls []string) {
	if err := a.project.Refresh(urls...); err != nil {
		a.log.Warn("project refresh failed", zap.Error(err))
		return
	}
	a.fileView.Repaint()

	finder := a.finder
	go func() {
		finder.Preload(a.ctx)
		a.dispatcher.Post(func() {
			if finder != a.finder {
				return
			}
			state := a.packView.SaveState()
			if a.cfg.Viewer.Layout == config.LayoutTree {
				a.packView.SetInput(finder.Packs())
			} else if a.current != nil {
				a.current = finder.Pack(a.current.URL())
				a.packView.SetInput(a.current)
			}
			a.packView.RestoreState(state)
			a.packView.Repaint()
			a.setStatus(fmt.Sprintf("reloaded %d files", len(urls)))
		})
	}()
}

// --- Layout and paint ---

func (a *App) layout() {
	w, _ := a.window.Size()
	dw, dh := a.window.DrawableSize()
	a.scale = 1
	if w > 0 {
		a.scale = float32(dw) / float32(w)
	}
	a.input.SetScale(a.scale)
	a.canvas.Resize(dw, dh)

	side := sidebarWidth * a.scale
	top := filterHeight * a.scale
	bottom := statusHeight * a.scale
	fw, fh := float32(dw), float32(dh)

	a.filterRegion.SetBounds(controls.NewRect(0, 0, fw, top))
	a.fileRegion.SetBounds(controls.NewRect(0, top, side, fh-top-bottom))
	a.packRegion.SetBounds(controls.NewRect(side, top, fw-side, fh-top-bottom))

	a.fileView.SetCanvas(a.fileRegion)
	a.packView.SetCanvas(a.packRegion)
	a.paintAll()
}

func (a *App) paintAll() {
	a.canvas.Clear(controls.ColorViewerBg)
	a.fileView.Repaint()
	a.packView.Repaint()
	a.paintFilter()
	a.paintStatus()
}

func (a *App) paintFilter() {
	c := a.filterRegion
	w, h := c.Size()
	c.FillRect(controls.NewRect(0, 0, w, h), controls.ColorFilterBg)
	text := a.filters[a.focused]
	col := controls.ColorText
	if text == "" {
		text = "Filter"
		col = controls.ColorTextDim
	}
	c.DrawText(text, 8, (h-c.LineHeight())/2, col)
}

func (a *App) setStatus(text string) {
	a.status = text
	if a.canvas != nil {
		a.paintStatus()
	}
}

func (a *App) paintStatus() {
	w, h := a.canvas.Size()
	sh := statusHeight * a.scale
	a.canvas.FillRect(controls.NewRect(0, h-sh, w, sh), controls.ColorFilterBg)
	a.canvas.DrawText(controls.TrimText(a.canvas, a.status, w-16), 8, h-sh+(sh-a.canvas.LineHeight())/2, controls.ColorTextDim)
}

// --- Events ---

// paneAt returns the pane under a canvas point and the point in its
// coordinates.
func (a *App) paneAt(x, y float32) (pane, float32, float32) {
	for _, r := range []struct {
		region *controls.Region
		pane   pane
	}{
		{a.fileRegion, a.fileView},
		{a.packRegion, a.packView},
	} {
		b := r.region.Bounds()
		if b.Contains(x, y) {
			return r.pane, x - b.X, y - b.Y
		}
	}
	return nil, 0, 0
}

func (a *App) handle(e host.Event) {
	switch e.Type {
	case host.EventResize:
		a.layout()

	case host.EventMouseDown:
		p, x, y := a.paneAt(e.X, e.Y)
		if p == nil {
			return
		}
		a.focus(p)
		a.pressed = p
		p.HandleMouseDown(x, y, e.Button, e.Mods)

	case host.EventDoubleClick:
		if p, x, y := a.paneAt(e.X, e.Y); p != nil {
			p.HandleDoubleClick(x, y)
		}

	case host.EventMouseMove:
		if a.pressed != nil {
			b := a.regionOf(a.pressed).Bounds()
			a.pressed.HandleMouseMove(e.X-b.X, e.Y-b.Y)
		}

	case host.EventMouseUp:
		if a.pressed != nil {
			b := a.regionOf(a.pressed).Bounds()
			a.pressed.HandleMouseUp(e.X-b.X, e.Y-b.Y, e.Button, e.Mods)
		}
		// A drag leaves its payload in the slot for the pane under the
		// pointer.
		if _, ok := a.dragSlot.Peek(); ok {
			if p, x, y := a.paneAt(e.X, e.Y); p != nil && p.Drop(x, y) {
				p.Repaint()
			}
			a.dragSlot.Clear()
		}
		a.pressed = nil

	case host.EventWheel:
		if a.focused != nil {
			a.focused.HandleWheel(e.Wheel, e.Mods)
		}

	case host.EventText:
		a.setFilter(a.filters[a.focused] + e.Text)

	case host.EventKeyDown:
		a.handleKey(e)

	case host.EventDropFile:
		if info, err := os.Stat(e.Text); err == nil && info.IsDir() {
			if err := a.openProject(e.Text); err != nil {
				a.log.Error("open project failed", zap.String("dir", e.Text), zap.Error(err))
			}
		}
	}
}

func (a *App) handleKey(e host.Event) {
	switch e.Sym {
	case sdl.K_F12:
		a.snapshot(e.Mods.Has(viewers.ModShift))
		return
	case sdl.K_TAB:
		if a.focused == a.fileView {
			a.focus(a.packView)
		} else {
			a.focus(a.fileView)
		}
		return
	case sdl.K_BACKSPACE:
		text := a.filters[a.focused]
		if text != "" {
			_, size := utf8.DecodeLastRuneInString(text)
			a.setFilter(text[:len(text)-size])
		}
		return
	}
	if e.Key == viewers.KeyEscape && a.filters[a.focused] != "" {
		a.setFilter("")
		return
	}
	if a.focused != nil && e.Key != viewers.KeyNone {
		a.focused.HandleKey(e.Key, e.Mods)
	}
}

func (a *App) regionOf(p pane) *controls.Region {
	if p == pane(a.fileView) {
		return a.fileRegion
	}
	return a.packRegion
}

func (a *App) focus(p pane) {
	if a.focused == p {
		return
	}
	a.focused = p
	a.paintFilter()
}

func (a *App) setFilter(text string) {
	if a.focused == nil {
		return
	}
	a.filters[a.focused] = text
	a.focused.SetFilterText(text)
	a.focused.Repaint()
	a.paintFilter()
}

// snapshot saves the presented frame, or with canvas set the canvas
// itself.
func (a *App) snapshot(canvas bool) {
	var (
		path string
		err  error
	)
	if canvas {
		path, err = a.snapshots.CaptureCanvas(a.canvas)
	} else {
		dw, dh := a.window.DrawableSize()
		path, err = a.snapshots.CaptureFromPixels(a.presenter.ReadPixels(dw, dh), dw, dh)
	}
	if err != nil {
		a.log.Error("snapshot failed", zap.Error(err))
		return
	}
	a.setStatus("saved " + path)
}

// --- Loop ---

// Run processes events until the window closes.
func (a *App) Run() error {
	last := time.Now()
	for {
		if a.input.Poll() {
			return nil
		}
		for _, e := range a.input.Events() {
			a.handle(e)
		}

		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now
		a.fileView.Tick(dt)
		a.packView.Tick(dt)
		a.dispatcher.Drain()
		a.paintStatus()

		dw, dh := a.window.DrawableSize()
		a.presenter.Present(a.canvas.Image(), dw, dh)
		a.window.SwapBuffers()

		if !a.cfg.Window.VSync {
			sdl.Delay(16)
		}
	}
}

// Close stops background work and releases the window.
func (a *App) Close() {
	a.cancel()
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.presenter != nil {
		a.presenter.Delete()
	}
	if a.window != nil {
		a.window.Close()
	}
}
