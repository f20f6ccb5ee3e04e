package pack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/packstudio/internal/controls"
	"github.com/Faultbox/packstudio/internal/logger"
)

// Pack errors.
var (
	ErrInvalidManifest = errors.New("invalid asset pack manifest")
	ErrMissingField    = errors.New("missing field")
	ErrNoImage         = errors.New("texture image not found")
	ErrNoData          = errors.New("data file not found")
)

// Manifest meta block values.
const (
	ManifestApp         = "Phaser Editor 2D - Asset Pack Editor"
	ManifestContentType = "Phaser v3 Asset Pack"
	ManifestURL         = "https://phasereditor2d.com"
	ManifestVersion     = "2"
)

// preloadWorkers bounds concurrent item preloads.
const preloadWorkers = 4

// AssetPack is the ordered list of items of one manifest file. The item
// list is fixed once decoded, except for items added by an Importer.
type AssetPack struct {
	url    string
	source Source
	log    *zap.Logger

	mu    sync.RWMutex
	items []*AssetPackItem
}

// NewAssetPack decodes content, the text of the manifest at url. Every
// entry of every section's "files" array becomes an item, in order. Decode
// errors are logged; the pack keeps the items read before the error.
func NewAssetPack(url, content string, source Source) *AssetPack {
	p := &AssetPack{
		url:    url,
		source: source,
		log:    logger.Named("pack"),
	}
	if content == "" {
		return p
	}
	if err := p.decode([]byte(content)); err != nil {
		p.log.Error("asset pack decode failed", zap.String("url", url), zap.Error(err))
	}
	return p
}

// LoadAssetPack reads and decodes the manifest at url.
func LoadAssetPack(ctx context.Context, source Source, url string) (*AssetPack, error) {
	source.PreloadFileString(ctx, url)
	content, ok := source.FileString(url)
	if !ok {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrNoData, url)
	}
	return NewAssetPack(url, content, source), nil
}

func (p *AssetPack) decode(content []byte) error {
	sections, err := objectMembers(content)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	var items []*AssetPackItem
	for _, section := range sections {
		if jsonKind(section.Value) != "object" {
			continue
		}
		var body struct {
			Files []json.RawMessage `json:"files"`
		}
		if err := json.Unmarshal(section.Value, &body); err != nil {
			p.items = items
			return fmt.Errorf("%w: section %q: %v", ErrInvalidManifest, section.Key, err)
		}
		for _, raw := range body.Files {
			item, err := newAssetPackItem(p, raw)
			if err != nil {
				p.items = items
				return fmt.Errorf("%w: section %q: %v", ErrInvalidManifest, section.Key, err)
			}
			items = append(items, item)
		}
	}
	p.items = items
	return nil
}

// URL returns the project URL of the manifest.
func (p *AssetPack) URL() string { return p.url }

// Name returns the manifest file name.
func (p *AssetPack) Name() string { return path.Base(p.url) }

// Source returns the resolver of the pack's URLs.
func (p *AssetPack) Source() Source { return p.source }

// Items returns the items in manifest order.
func (p *AssetPack) Items() []*AssetPackItem {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*AssetPackItem(nil), p.items...)
}

// ItemsOfType returns the items of type t, in manifest order.
func (p *AssetPack) ItemsOfType(t string) []*AssetPackItem {
	var out []*AssetPackItem
	for _, item := range p.Items() {
		if item.Type() == t {
			out = append(out, item)
		}
	}
	return out
}

// Item returns the item with key, or nil.
func (p *AssetPack) Item(key string) *AssetPackItem {
	for _, item := range p.Items() {
		if item.Key() == key {
			return item
		}
	}
	return nil
}

// Types returns the types present in the pack, in Types order.
func (p *AssetPack) Types() []string {
	present := make(map[string]bool)
	for _, item := range p.Items() {
		present[item.Type()] = true
	}
	var out []string
	for _, t := range Types {
		if present[t] {
			out = append(out, t)
		}
	}
	return out
}

// CreateItem builds an item of this pack from raw item data, without
// adding it.
func (p *AssetPack) CreateItem(data json.RawMessage) (*AssetPackItem, error) {
	return newAssetPackItem(p, data)
}

// AddItem appends an item created by CreateItem.
func (p *AssetPack) AddItem(item *AssetPackItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, item)
}

// Preload preloads every item, a few at a time. It reports
// ResourcesLoaded when any item loaded something.
func (p *AssetPack) Preload(ctx context.Context) controls.PreloadResult {
	return PreloadItems(ctx, p.Items())
}

// PreloadItems preloads items concurrently.
func PreloadItems(ctx context.Context, items []*AssetPackItem) controls.PreloadResult {
	var (
		mu     sync.Mutex
		result = controls.NothingLoaded
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadWorkers)
	for _, item := range items {
		g.Go(func() error {
			r := item.Preload(ctx)
			mu.Lock()
			result = result.Max(r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return result
}

// ToJSON encodes the pack as a manifest: one section holding every item
// followed by the meta block.
func (p *AssetPack) ToJSON() ([]byte, error) {
	items := p.Items()
	files := make([]json.RawMessage, len(items))
	for i, item := range items {
		files[i] = item.Data()
	}

	type section struct {
		Files []json.RawMessage `json:"files"`
	}
	type meta struct {
		App         string `json:"app"`
		ContentType string `json:"contentType"`
		URL         string `json:"url"`
		Version     string `json:"version"`
	}
	doc := struct {
		Section1 section `json:"section1"`
		Meta     meta    `json:"meta"`
	}{
		Section1: section{Files: files},
		Meta: meta{
			App:         ManifestApp,
			ContentType: ManifestContentType,
			URL:         ManifestURL,
			Version:     ManifestVersion,
		},
	}
	return json.MarshalIndent(doc, "", "    ")
}

func (p *AssetPack) String() string {
	return fmt.Sprintf("AssetPack(%s, %d items)", p.url, len(p.Items()))
}
