package files

import (
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/packstudio/internal/controls"
	"github.com/Faultbox/packstudio/internal/logger"
)

// Project is an opened project directory: its file tree plus the caches
// shared by everything that reads from it.
type Project struct {
	dir     string
	storage *Storage
	images  *controls.ImageCache
	types   *ContentTypeRegistry
	log     *zap.Logger

	mu   sync.RWMutex
	root *FilePath
}

// OpenProject scans dir and sets up storage, image and content type caches.
func OpenProject(dir string) (*Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	root, err := Scan(abs)
	if err != nil {
		return nil, err
	}
	storage := NewStorage(abs)
	types := NewContentTypeRegistry()
	types.AddFallback(NewSniffImageContentTypeResolver(storage))
	p := &Project{
		dir:     abs,
		storage: storage,
		images:  controls.NewImageCache(NewImageLoader(storage)),
		types:   types,
		log:     logger.Named("files"),
		root:    root,
	}
	p.log.Info("project opened", zap.String("dir", abs), zap.Int("files", len(root.FlatFiles())))
	return p, nil
}

// Dir returns the absolute project directory.
func (p *Project) Dir() string { return p.dir }

// Root returns the current file tree.
func (p *Project) Root() *FilePath {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.root
}

func (p *Project) Storage() *Storage { return p.storage }

func (p *Project) Images() *controls.ImageCache { return p.images }

func (p *Project) ContentTypes() *ContentTypeRegistry { return p.types }

// File returns the node at url, or nil.
func (p *Project) File(url string) *FilePath {
	return p.Root().Find(url)
}

// Image returns the shared image of a file. The cache key includes the
// modification time, so an edited file gets a fresh image.
func (p *Project) Image(file *FilePath) *controls.FileImage {
	return p.images.Image(file.URL(), strconv.FormatInt(file.ModTime().UnixNano(), 10))
}

// ImageByURL returns the image at url, whether or not the file exists.
// Missing files end in the error state on preload.
func (p *Project) ImageByURL(url string) *controls.FileImage {
	if f := p.File(url); f != nil && f.IsFile() {
		return p.Image(f)
	}
	return p.images.Image(url, "")
}

// Refresh rescans the tree and drops cached data of the changed URLs.
func (p *Project) Refresh(changed ...string) error {
	root, err := Scan(p.dir)
	if err != nil {
		return err
	}
	p.storage.Invalidate(changed...)
	p.types.Invalidate(changed...)

	p.mu.Lock()
	p.root = root
	p.mu.Unlock()

	p.log.Debug("project refreshed", zap.Strings("changed", changed))
	return nil
}
