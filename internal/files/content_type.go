package files

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/packstudio/internal/controls"
	"github.com/Faultbox/packstudio/internal/logger"
)

// Content types detected from file extensions.
const (
	ContentTypeAny        = "any"
	ContentTypeImage      = "image"
	ContentTypeSVG        = "svg"
	ContentTypeAudio      = "audio"
	ContentTypeVideo      = "video"
	ContentTypeScript     = "script"
	ContentTypeText       = "text"
	ContentTypeCSV        = "csv"
	ContentTypeJavaScript = "javascript"
	ContentTypeHTML       = "html"
	ContentTypeCSS        = "css"
	ContentTypeJSON       = "json"
	ContentTypeXML        = "xml"
	ContentTypeGLSL       = "glsl"
)

// ContentTypeResolver computes the content type of a file, or
// ContentTypeAny when it does not recognize it.
type ContentTypeResolver interface {
	ID() string
	ComputeContentType(ctx context.Context, file *FilePath) (string, error)
}

// ExtensionContentTypeResolver maps file extensions to content types,
// ignoring case.
type ExtensionContentTypeResolver struct {
	id    string
	types map[string]string
}

// NewExtensionContentTypeResolver builds a resolver from extension and
// content type pairs.
func NewExtensionContentTypeResolver(id string, defs [][2]string) *ExtensionContentTypeResolver {
	r := &ExtensionContentTypeResolver{id: id, types: make(map[string]string, len(defs))}
	for _, def := range defs {
		r.types[strings.ToUpper(def[0])] = def[1]
	}
	return r
}

func (r *ExtensionContentTypeResolver) ID() string { return r.id }

func (r *ExtensionContentTypeResolver) ComputeContentType(_ context.Context, file *FilePath) (string, error) {
	if ct, ok := r.types[strings.ToUpper(file.Extension())]; ok {
		return ct, nil
	}
	return ContentTypeAny, nil
}

// DefaultExtensionTypeResolver recognizes common web asset extensions.
func DefaultExtensionTypeResolver() *ExtensionContentTypeResolver {
	return NewExtensionContentTypeResolver("files.DefaultExtensionTypeResolver", [][2]string{
		{"png", ContentTypeImage},
		{"jpg", ContentTypeImage},
		{"jpeg", ContentTypeImage},
		{"bmp", ContentTypeImage},
		{"gif", ContentTypeImage},
		{"webp", ContentTypeImage},
		{"svg", ContentTypeSVG},
		{"mp3", ContentTypeAudio},
		{"wav", ContentTypeAudio},
		{"ogg", ContentTypeAudio},
		{"mp4", ContentTypeVideo},
		{"ogv", ContentTypeVideo},
		{"webm", ContentTypeVideo},
		{"js", ContentTypeJavaScript},
		{"html", ContentTypeHTML},
		{"css", ContentTypeCSS},
		{"ts", ContentTypeScript},
		{"json", ContentTypeJSON},
		{"xml", ContentTypeXML},
		{"glsl", ContentTypeGLSL},
		{"txt", ContentTypeText},
		{"md", ContentTypeText},
		{"csv", ContentTypeCSV},
	})
}

// SniffImageContentTypeResolver recognizes images by their leading bytes,
// whatever their extension.
type SniffImageContentTypeResolver struct {
	storage *Storage
}

// NewSniffImageContentTypeResolver returns a resolver reading through
// storage.
func NewSniffImageContentTypeResolver(storage *Storage) *SniffImageContentTypeResolver {
	return &SniffImageContentTypeResolver{storage: storage}
}

func (r *SniffImageContentTypeResolver) ID() string { return "files.SniffImageContentTypeResolver" }

func (r *SniffImageContentTypeResolver) ComputeContentType(ctx context.Context, file *FilePath) (string, error) {
	if err := ctx.Err(); err != nil {
		return ContentTypeAny, err
	}
	p, err := r.storage.Path(file.URL())
	if err != nil {
		return ContentTypeAny, err
	}
	f, err := os.Open(p)
	if err != nil {
		return ContentTypeAny, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return ContentTypeAny, err
	}
	if filetype.IsImage(head[:n]) {
		return ContentTypeImage, nil
	}
	return ContentTypeAny, nil
}

// sniffLen is the header size filetype matchers need.
const sniffLen = 262

// ContentTypeRegistry resolves and caches the content type of files.
// Resolvers are asked in registration order and the first answer other
// than ContentTypeAny wins; the fallback resolvers are asked last.
type ContentTypeRegistry struct {
	mu        sync.RWMutex
	resolvers []ContentTypeResolver
	fallbacks []ContentTypeResolver
	cache     map[string]cachedType
	flight    singleflight.Group
	log       *zap.Logger
}

type cachedType struct {
	contentType string
	modTime     time.Time
}

// NewContentTypeRegistry returns a registry falling back to extensions.
func NewContentTypeRegistry() *ContentTypeRegistry {
	return &ContentTypeRegistry{
		fallbacks: []ContentTypeResolver{DefaultExtensionTypeResolver()},
		cache:     make(map[string]cachedType),
		log:       logger.Named("files"),
	}
}

// Register adds a resolver ahead of the fallback.
func (r *ContentTypeRegistry) Register(resolver ContentTypeResolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers = append(r.resolvers, resolver)
}

// AddFallback adds a resolver asked after the registered ones and the
// extension fallback.
func (r *ContentTypeRegistry) AddFallback(resolver ContentTypeResolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks = append(r.fallbacks, resolver)
}

// CachedContentType returns the content type computed by an earlier
// Preload, or ContentTypeAny.
func (r *ContentTypeRegistry) CachedContentType(file *FilePath) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.cache[file.URL()]; ok && e.modTime.Equal(file.ModTime()) {
		return e.contentType
	}
	return ContentTypeAny
}

func (r *ContentTypeRegistry) cached(file *FilePath) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.cache[file.URL()]
	return ok && e.modTime.Equal(file.ModTime())
}

// Preload computes and caches the content type of file. It reports
// ResourcesLoaded when the type was computed by this call.
func (r *ContentTypeRegistry) Preload(ctx context.Context, file *FilePath) controls.PreloadResult {
	if file == nil || file.IsFolder() || r.cached(file) {
		return controls.NothingLoaded
	}
	v, _, _ := r.flight.Do(file.URL(), func() (any, error) {
		if r.cached(file) {
			return controls.NothingLoaded, nil
		}
		ct := r.compute(ctx, file)
		if ctx.Err() != nil {
			return controls.NothingLoaded, nil
		}
		r.mu.Lock()
		r.cache[file.URL()] = cachedType{contentType: ct, modTime: file.ModTime()}
		r.mu.Unlock()
		return controls.ResourcesLoaded, nil
	})
	return v.(controls.PreloadResult)
}

// ContentType preloads and returns the content type of file.
func (r *ContentTypeRegistry) ContentType(ctx context.Context, file *FilePath) string {
	r.Preload(ctx, file)
	return r.CachedContentType(file)
}

func (r *ContentTypeRegistry) compute(ctx context.Context, file *FilePath) string {
	r.mu.RLock()
	resolvers := append([]ContentTypeResolver(nil), r.resolvers...)
	resolvers = append(resolvers, r.fallbacks...)
	r.mu.RUnlock()

	for _, resolver := range resolvers {
		ct, err := resolver.ComputeContentType(ctx, file)
		if err != nil {
			r.log.Debug("content type resolver failed",
				zap.String("resolver", resolver.ID()),
				zap.String("url", file.URL()),
				zap.Error(err))
			continue
		}
		if ct != ContentTypeAny {
			return ct
		}
	}
	return ContentTypeAny
}

// Invalidate forgets the cached types of urls.
func (r *ContentTypeRegistry) Invalidate(urls ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, url := range urls {
		delete(r.cache, url)
	}
}
