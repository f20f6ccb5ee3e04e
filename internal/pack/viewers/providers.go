// Package viewers adapts asset packs to the generic tree viewer: content
// providers for the pack browser, the pack editor and its outline, labels,
// cell renderers and the sectioned chip grid.
package viewers

import (
	"context"

	"github.com/Faultbox/packstudio/internal/controls"
	cviewers "github.com/Faultbox/packstudio/internal/controls/viewers"
	"github.com/Faultbox/packstudio/internal/pack"
)

// Cell layouts.
const (
	LayoutTree = "tree"
	LayoutGrid = "grid"
)

// AssetPackContentProvider shows packs, their items and the frames of frame
// containers. The input may be a pack, a slice of packs or a slice of
// elements. Image items have no children even though they hold a frame.
type AssetPackContentProvider struct{}

func (AssetPackContentProvider) Roots(input any) []pack.Element {
	switch in := input.(type) {
	case *pack.AssetPack:
		return itemElements(in.Items())
	case []*pack.AssetPack:
		out := make([]pack.Element, len(in))
		for i, p := range in {
			out[i] = p
		}
		return out
	case []pack.Element:
		return in
	}
	return nil
}

func (AssetPackContentProvider) Children(parent pack.Element) []pack.Element {
	switch p := parent.(type) {
	case *pack.AssetPack:
		return itemElements(p.Items())
	case *pack.AssetPackItem:
		if p.Type() == pack.ImageType || !p.IsImageFrameContainer() {
			return nil
		}
		frames := p.Frames()
		out := make([]pack.Element, len(frames))
		for i, f := range frames {
			out[i] = f
		}
		return out
	}
	return nil
}

func itemElements(items []*pack.AssetPackItem) []pack.Element {
	out := make([]pack.Element, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// EditorContentProvider groups the items of one pack under section types.
// With GroupAtlasItems every atlas type section lists the items of all
// atlas types.
type EditorContentProvider struct {
	AssetPackContentProvider
	Pack            func() *pack.AssetPack
	GroupAtlasItems bool
}

// NewEditorContentProvider returns a provider over the pack p returns.
func NewEditorContentProvider(p func() *pack.AssetPack, groupAtlasItems bool) *EditorContentProvider {
	return &EditorContentProvider{Pack: p, GroupAtlasItems: groupAtlasItems}
}

// Roots returns a section per item type, in display order. Grouped atlas
// items all live in the "atlas" section.
func (p *EditorContentProvider) Roots(any) []pack.Element {
	if p.Pack() == nil {
		return nil
	}
	if p.GroupAtlasItems {
		return pack.Sections(SectionTypes())
	}
	return pack.Sections(pack.Types)
}

func (p *EditorContentProvider) Children(parent pack.Element) []pack.Element {
	section, ok := parent.(pack.SectionType)
	if !ok {
		return p.AssetPackContentProvider.Children(parent)
	}
	ap := p.Pack()
	if ap == nil {
		return nil
	}
	typ := string(section)
	var out []pack.Element
	for _, item := range ap.Items() {
		if item.Type() == typ || (p.GroupAtlasItems && pack.IsAtlasType(typ) && pack.IsAtlasType(item.Type())) {
			out = append(out, item)
		}
	}
	return out
}

// OutlineContentProvider lists the types present in a pack, each with its
// items.
type OutlineContentProvider struct {
	EditorContentProvider
}

// NewOutlineContentProvider returns an outline over the pack p returns.
func NewOutlineContentProvider(p func() *pack.AssetPack) *OutlineContentProvider {
	return &OutlineContentProvider{EditorContentProvider{Pack: p}}
}

func (p *OutlineContentProvider) Roots(any) []pack.Element {
	ap := p.Pack()
	if ap == nil {
		return nil
	}
	return pack.Sections(ap.Types())
}

// LabelProvider names packs by file name, items by key, frames by name
// and sections by type.
type LabelProvider struct{}

func (LabelProvider) Label(obj pack.Element) string {
	switch o := obj.(type) {
	case *pack.AssetPack:
		return o.Name()
	case *pack.AssetPackItem:
		return o.Key()
	case *pack.AssetPackImageFrame:
		return o.Name()
	case pack.SectionType:
		return string(o)
	}
	return ""
}

// CellRendererProvider picks how each element paints in a layout.
type CellRendererProvider struct {
	layout string
}

// NewCellRendererProvider returns a provider for LayoutTree or LayoutGrid.
func NewCellRendererProvider(layout string) *CellRendererProvider {
	return &CellRendererProvider{layout: layout}
}

// SetLayout switches between LayoutTree and LayoutGrid.
func (p *CellRendererProvider) SetLayout(layout string) { p.layout = layout }

func (p *CellRendererProvider) Layout() string { return p.layout }

func (p *CellRendererProvider) CellRenderer(obj pack.Element) cviewers.CellRenderer[pack.Element] {
	switch o := obj.(type) {
	case pack.SectionType:
		return cviewers.NewIconImageCellRenderer[pack.Element](controls.IconFolder)
	case *pack.AssetPackItem:
		switch o.Type() {
		case pack.ImageType:
			return &AssetCellRenderer{Asset: itemImage}
		case pack.MultiAtlasType, pack.AtlasType, pack.UnityAtlasType, pack.AtlasXMLType:
			if p.layout == LayoutGrid {
				return &cviewers.IconGridCellRenderer[pack.Element]{Icon: controls.IconFolder}
			}
			return &ImageFrameContainerIconCellRenderer{}
		case pack.SpritesheetType:
			return &ImageFrameContainerIconCellRenderer{}
		case pack.AudioType:
			return p.iconRenderer(controls.IconFileSound)
		case pack.ScriptType, pack.SceneFileType, pack.ScenePluginType, pack.PluginType,
			pack.CSSType, pack.GLSLType, pack.XMLType, pack.HTMLType, pack.JSONType:
			return p.iconRenderer(controls.IconFileScript)
		case pack.TextType:
			return p.iconRenderer(controls.IconFileText)
		case pack.HTMLTextureType:
			return p.iconRenderer(controls.IconFileImage)
		case pack.BitmapFontType:
			return p.iconRenderer(controls.IconFileFont)
		case pack.VideoType:
			return p.iconRenderer(controls.IconFileVideo)
		}
	case *pack.AssetPackImageFrame:
		return &AssetCellRenderer{Asset: frameAsset}
	}
	return p.iconRenderer(controls.IconFile)
}

func (p *CellRendererProvider) iconRenderer(icon controls.Icon) cviewers.CellRenderer[pack.Element] {
	if p.layout == LayoutGrid {
		return &cviewers.IconGridCellRenderer[pack.Element]{Icon: icon}
	}
	return cviewers.NewIconImageCellRenderer[pack.Element](icon)
}

func itemImage(obj pack.Element) pack.ImageAsset {
	item, ok := obj.(*pack.AssetPackItem)
	if !ok {
		return nil
	}
	if img := item.Pack().Source().Image(item.StringField("url")); img != nil {
		return img
	}
	return nil
}

func frameAsset(obj pack.Element) pack.ImageAsset {
	if f, ok := obj.(*pack.AssetPackImageFrame); ok {
		return f
	}
	return nil
}

// AssetCellRenderer paints an image or a frame scaled into a cell as tall
// as the viewer's cell size.
type AssetCellRenderer struct {
	Asset func(obj pack.Element) pack.ImageAsset
}

func (r *AssetCellRenderer) RenderCell(args *cviewers.RenderCellArgs[pack.Element]) {
	asset := r.Asset(args.Obj)
	if asset == nil {
		controls.PaintPlaceholder(args.Canvas, args.X, args.Y, args.W, args.H)
		return
	}
	asset.Paint(args.Canvas, args.X, args.Y, args.W, args.H, args.Center)
}

func (r *AssetCellRenderer) CellHeight(args *cviewers.RenderCellArgs[pack.Element]) float32 {
	return cellSize(args)
}

func (r *AssetCellRenderer) Preload(ctx context.Context, obj pack.Element) controls.PreloadResult {
	asset := r.Asset(obj)
	if asset == nil {
		return controls.NothingLoaded
	}
	return asset.Preload(ctx)
}

// ImageFrameContainerIconCellRenderer paints the first frame of a frame
// container.
type ImageFrameContainerIconCellRenderer struct{}

func (ImageFrameContainerIconCellRenderer) first(obj pack.Element) *pack.AssetPackImageFrame {
	item, ok := obj.(*pack.AssetPackItem)
	if !ok || !item.IsImageFrameContainer() {
		return nil
	}
	if frames := item.Frames(); len(frames) > 0 {
		return frames[0]
	}
	return nil
}

func (r ImageFrameContainerIconCellRenderer) RenderCell(args *cviewers.RenderCellArgs[pack.Element]) {
	if f := r.first(args.Obj); f != nil {
		f.Paint(args.Canvas, args.X, args.Y, args.W, args.H, args.Center)
	}
}

func (ImageFrameContainerIconCellRenderer) CellHeight(args *cviewers.RenderCellArgs[pack.Element]) float32 {
	return cellSize(args)
}

func (ImageFrameContainerIconCellRenderer) Preload(ctx context.Context, obj pack.Element) controls.PreloadResult {
	if item, ok := obj.(*pack.AssetPackItem); ok {
		return item.Preload(ctx)
	}
	return controls.NothingLoaded
}

func cellSize(args *cviewers.RenderCellArgs[pack.Element]) float32 {
	if args.Viewer == nil {
		return cviewers.DefaultCellSize
	}
	return args.Viewer.CellSize()
}
