package viewers

import (
	"strings"

	"github.com/Faultbox/packstudio/internal/controls"
	cviewers "github.com/Faultbox/packstudio/internal/controls/viewers"
	"github.com/Faultbox/packstudio/internal/pack"
)

// PackCellSize is the cell size of the pack grid.
const PackCellSize = 64

// chipRadius rounds the corners of the background chips.
const chipRadius = 5

// AssetPackTreeRenderer is the pack grid: one section per item type, with
// the atlas types folded into the "atlas" section. Frame containers and
// their expanded frames sit on a shared chip background.
type AssetPackTreeRenderer struct {
	*cviewers.GridTreeViewerRenderer[pack.Element]
	viewer *cviewers.TreeViewer[pack.Element]
}

// NewAssetPackTreeRenderer installs the pack grid on viewer and sets its
// cell size.
func NewAssetPackTreeRenderer(viewer *cviewers.TreeViewer[pack.Element], flat bool) *AssetPackTreeRenderer {
	r := &AssetPackTreeRenderer{
		GridTreeViewerRenderer: cviewers.NewGridTreeViewerRenderer(viewer, flat),
		viewer:                 viewer,
	}
	viewer.SetCellSize(PackCellSize)
	r.SetSections(pack.Sections(SectionTypes()))
	r.SetBackPainter(r.paintCellBack)
	viewer.SetTreeRenderer(r)
	return r
}

// SectionTypes returns the item types shown as grid sections: every type
// but the atlas variants, which "atlas" stands for.
func SectionTypes() []string {
	var out []string
	for _, t := range pack.Types {
		if t == pack.AtlasType || !strings.Contains(strings.ToLower(t), "atlas") {
			out = append(out, t)
		}
	}
	return out
}

// isParent reports whether obj gets a parent chip.
func isParent(obj pack.Element) bool {
	item, ok := obj.(*pack.AssetPackItem)
	if !ok {
		return false
	}
	switch item.Type() {
	case pack.AtlasType, pack.MultiAtlasType, pack.AtlasXMLType, pack.UnityAtlasType, pack.SpritesheetType:
		return true
	}
	return false
}

func isChild(obj pack.Element) bool {
	_, ok := obj.(*pack.AssetPackImageFrame)
	return ok
}

// paintCellBack joins a parent with its children: an expanded parent's
// chip is open on the right, every child chip reaches back over the
// padding before it, and the last child closes the chip.
func (r *AssetPackTreeRenderer) paintCellBack(args *cviewers.RenderCellArgs[pack.Element], _, isLastChild bool) {
	c := args.Canvas
	switch {
	case isParent(args.Obj) && !r.Flat():
		radii := controls.UniformRadii(chipRadius)
		if r.viewer.IsExpanded(args.Obj) {
			radii = controls.Radii{TopLeft: chipRadius, BottomLeft: chipRadius}
		}
		c.FillRoundRect(args.Rect(), radii, controls.ColorChip)
	case isChild(args.Obj):
		var radii controls.Radii
		if isLastChild {
			radii = controls.Radii{TopRight: chipRadius, BottomRight: chipRadius}
		}
		rect := controls.NewRect(args.X-cviewers.GridPadding, args.Y, args.W+cviewers.GridPadding, args.H)
		c.FillRoundRect(rect, radii, controls.ColorChip)
	}
}

// NewAssetPackViewer returns a grid viewer over the items of p grouped by
// type.
func NewAssetPackViewer(name string, p func() *pack.AssetPack, groupAtlasItems bool) *cviewers.TreeViewer[pack.Element] {
	v := cviewers.NewTreeViewer[pack.Element](name)
	v.SetContentProvider(NewEditorContentProvider(p, groupAtlasItems))
	v.SetLabelProvider(LabelProvider{})
	v.SetCellRendererProvider(NewCellRendererProvider(LayoutGrid))
	r := NewAssetPackTreeRenderer(v, false)
	if !groupAtlasItems {
		r.SetSections(pack.Sections(pack.Types))
	}
	v.SetInput(p())
	return v
}

// NewPackTreeViewer returns a list viewer over packs, their items and
// frames.
func NewPackTreeViewer(name string, packs []*pack.AssetPack) *cviewers.TreeViewer[pack.Element] {
	v := cviewers.NewTreeViewer[pack.Element](name)
	v.SetContentProvider(AssetPackContentProvider{})
	v.SetLabelProvider(LabelProvider{})
	v.SetCellRendererProvider(NewCellRendererProvider(LayoutTree))
	v.SetInput(packs)
	return v
}
