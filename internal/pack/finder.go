package pack

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/packstudio/internal/controls"
	"github.com/Faultbox/packstudio/internal/files"
	"github.com/Faultbox/packstudio/internal/logger"
)

// ImageAsset is what an item key and frame name resolve to for painting:
// a whole image or one frame of it.
type ImageAsset interface {
	Width() float32
	Height() float32
	Preload(ctx context.Context) controls.PreloadResult
	Paint(c controls.Canvas, x, y, w, h float32, center bool)
}

// PackFinder indexes every asset pack of a project.
type PackFinder struct {
	project *files.Project
	source  *ProjectSource
	log     *zap.Logger

	mu    sync.RWMutex
	packs []*AssetPack
}

// NewPackFinder returns a finder over project. Call Preload to load it.
func NewPackFinder(project *files.Project) *PackFinder {
	return &PackFinder{
		project: project,
		source:  NewProjectSource(project),
		log:     logger.Named("pack"),
	}
}

// Source returns the Source the finder's packs read from.
func (f *PackFinder) Source() *ProjectSource { return f.source }

// Preload finds the files with the asset pack content type, decodes them
// and preloads their items. Calling it again rebuilds the index, so it
// picks up changed files after Project.Refresh.
func (f *PackFinder) Preload(ctx context.Context) controls.PreloadResult {
	var packs []*AssetPack
	types := f.project.ContentTypes()
	for _, file := range f.project.Root().FlatFiles() {
		if types.ContentType(ctx, file) != ContentTypeAssetPack {
			continue
		}
		p, err := LoadAssetPack(ctx, f.source, file.URL())
		if err != nil {
			f.log.Warn("asset pack load failed", zap.String("url", file.URL()), zap.Error(err))
			continue
		}
		packs = append(packs, p)
	}
	if err := ctx.Err(); err != nil {
		return controls.NothingLoaded
	}

	var items []*AssetPackItem
	for _, p := range packs {
		items = append(items, p.Items()...)
	}
	PreloadItems(ctx, items)

	f.mu.Lock()
	f.packs = packs
	f.mu.Unlock()

	f.log.Info("asset packs loaded", zap.Int("packs", len(packs)), zap.Int("items", len(items)))
	return controls.ResourcesLoaded
}

// Packs returns the loaded packs.
func (f *PackFinder) Packs() []*AssetPack {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]*AssetPack(nil), f.packs...)
}

// Pack returns the pack read from url, or nil.
func (f *PackFinder) Pack(url string) *AssetPack {
	for _, p := range f.Packs() {
		if p.URL() == url {
			return p
		}
	}
	return nil
}

// AssetPackItems returns the items of every pack.
func (f *PackFinder) AssetPackItems() []*AssetPackItem {
	var items []*AssetPackItem
	for _, p := range f.Packs() {
		items = append(items, p.Items()...)
	}
	return items
}

// FindAssetPackItem returns the first item with key, or nil.
func (f *PackFinder) FindAssetPackItem(key string) *AssetPackItem {
	for _, p := range f.Packs() {
		if item := p.Item(key); item != nil {
			return item
		}
	}
	return nil
}

// GetAssetPackItemOrFrame resolves a key and an optional frame name. An
// image item resolves to itself when no frame is given and to nothing
// otherwise; other frame containers resolve to the named frame; any other
// item resolves to itself.
func (f *PackFinder) GetAssetPackItemOrFrame(key string, frame *string) Element {
	item := f.FindAssetPackItem(key)
	if item == nil {
		return nil
	}
	if item.Type() == ImageType {
		if frame == nil {
			return item
		}
		return nil
	}
	if item.IsImageFrameContainer() {
		name := ""
		if frame != nil {
			name = *frame
		}
		if fr := item.FindFrame(name); fr != nil {
			return fr
		}
		return nil
	}
	return item
}

// GetAssetPackItemImage returns the image an image item points to, or the
// frame named by frame, or nil.
func (f *PackFinder) GetAssetPackItemImage(key string, frame *string) ImageAsset {
	switch asset := f.GetAssetPackItemOrFrame(key, frame).(type) {
	case *AssetPackItem:
		if asset.Type() == ImageType {
			if img := f.source.Image(asset.StringField("url")); img != nil {
				return img
			}
		}
	case *AssetPackImageFrame:
		return asset
	}
	return nil
}
