package files

import (
	"context"

	"github.com/Faultbox/packstudio/internal/controls"
	"github.com/Faultbox/packstudio/internal/controls/viewers"
)

// Cell layouts.
const (
	LayoutTree = "tree"
	LayoutGrid = "grid"
)

// FileTreeContentProvider exposes a FilePath tree. The input may be a
// single FilePath (shown as the only root), a slice of them, or a Project
// (its root folder's children).
type FileTreeContentProvider struct {
	OnlyFolders bool
}

func (p *FileTreeContentProvider) Roots(input any) []*FilePath {
	switch in := input.(type) {
	case *FilePath:
		if p.OnlyFolders && !in.IsFolder() {
			return nil
		}
		return []*FilePath{in}
	case []*FilePath:
		return p.keep(in)
	case *Project:
		return p.Children(in.Root())
	}
	return nil
}

func (p *FileTreeContentProvider) Children(parent *FilePath) []*FilePath {
	return p.keep(parent.Files())
}

func (p *FileTreeContentProvider) keep(files []*FilePath) []*FilePath {
	if !p.OnlyFolders {
		return files
	}
	out := make([]*FilePath, 0, len(files))
	for _, f := range files {
		if f.IsFolder() {
			out = append(out, f)
		}
	}
	return out
}

// FileLabelProvider labels files by name.
type FileLabelProvider struct{}

func (FileLabelProvider) Label(f *FilePath) string { return f.Name() }

// ContentTypeIcon returns the glyph for a content type.
func ContentTypeIcon(ct string) controls.Icon {
	switch ct {
	case ContentTypeImage, ContentTypeSVG:
		return controls.IconFileImage
	case ContentTypeAudio:
		return controls.IconFileSound
	case ContentTypeVideo:
		return controls.IconFileVideo
	case ContentTypeScript, ContentTypeJavaScript, ContentTypeHTML, ContentTypeCSS,
		ContentTypeJSON, ContentTypeXML, ContentTypeGLSL:
		return controls.IconFileScript
	case ContentTypeText, ContentTypeCSV:
		return controls.IconFileText
	}
	return controls.IconFile
}

// FileCellRenderer paints a folder glyph or the icon of a file's content
// type. Preloading computes the content type.
type FileCellRenderer struct {
	viewers.IconImageCellRenderer[*FilePath]
	types *ContentTypeRegistry
	icons map[string]controls.Icon
}

func newFileCellRenderer(types *ContentTypeRegistry, icons map[string]controls.Icon) *FileCellRenderer {
	r := &FileCellRenderer{types: types, icons: icons}
	r.Icon = r.icon
	return r
}

func (r *FileCellRenderer) icon(f *FilePath) controls.Icon {
	if f.IsFolder() {
		return controls.IconFolder
	}
	ct := r.types.CachedContentType(f)
	if icon, ok := r.icons[ct]; ok {
		return icon
	}
	return ContentTypeIcon(ct)
}

func (r *FileCellRenderer) Preload(ctx context.Context, f *FilePath) controls.PreloadResult {
	return r.types.Preload(ctx, f)
}

// ImageFileCellRenderer paints the thumbnail of an image file.
type ImageFileCellRenderer struct {
	viewers.ImageCellRenderer[*FilePath]
	project *Project
}

func newImageFileCellRenderer(project *Project) *ImageFileCellRenderer {
	r := &ImageFileCellRenderer{project: project}
	r.Image = func(f *FilePath) controls.Image { return project.Image(f) }
	return r
}

func (r *ImageFileCellRenderer) Preload(ctx context.Context, f *FilePath) controls.PreloadResult {
	return r.project.ContentTypes().Preload(ctx, f).Max(r.ImageCellRenderer.Preload(ctx, f))
}

// FileCellRendererProvider picks a renderer by content type. In the grid
// layout images paint thumbnails; other content types may register their
// own renderers or icons.
type FileCellRendererProvider struct {
	project   *Project
	layout    string
	renderers map[string]func(*FilePath) viewers.CellRenderer[*FilePath]
	icons     map[string]controls.Icon
}

// NewFileCellRendererProvider returns a provider for project files.
func NewFileCellRendererProvider(project *Project, layout string) *FileCellRendererProvider {
	return &FileCellRendererProvider{
		project:   project,
		layout:    layout,
		renderers: make(map[string]func(*FilePath) viewers.CellRenderer[*FilePath]),
		icons:     make(map[string]controls.Icon),
	}
}

// SetLayout switches between LayoutTree and LayoutGrid.
func (p *FileCellRendererProvider) SetLayout(layout string) { p.layout = layout }

// RegisterRenderer makes files of a content type paint with fn's renderer.
func (p *FileCellRendererProvider) RegisterRenderer(contentType string, fn func(*FilePath) viewers.CellRenderer[*FilePath]) {
	p.renderers[contentType] = fn
}

// RegisterIcon sets the icon of a content type.
func (p *FileCellRendererProvider) RegisterIcon(contentType string, icon controls.Icon) {
	p.icons[contentType] = icon
}

func (p *FileCellRendererProvider) CellRenderer(f *FilePath) viewers.CellRenderer[*FilePath] {
	if f.IsFile() {
		ct := p.project.ContentTypes().CachedContentType(f)
		if fn, ok := p.renderers[ct]; ok {
			return fn(f)
		}
		if ct == ContentTypeImage && p.layout == LayoutGrid {
			return newImageFileCellRenderer(p.project)
		}
	}
	return newFileCellRenderer(p.project.ContentTypes(), p.icons)
}

// NewFileViewer returns a tree viewer over a project's files.
func NewFileViewer(name string, project *Project, onlyFolders bool) *viewers.TreeViewer[*FilePath] {
	v := viewers.NewTreeViewer[*FilePath](name)
	v.SetContentProvider(&FileTreeContentProvider{OnlyFolders: onlyFolders})
	v.SetLabelProvider(FileLabelProvider{})
	v.SetCellRendererProvider(NewFileCellRendererProvider(project, LayoutTree))
	v.SetInput(project)
	return v
}
