package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/packstudio/internal/controls"
	"github.com/Faultbox/packstudio/internal/logger"
)

// Storage reads project files by URL and caches their text. Concurrent
// preloads of the same URL share one read.
type Storage struct {
	root   string
	cache  *ContentCache
	flight singleflight.Group
	log    *zap.Logger

	mu     sync.Mutex
	failed map[string]error
}

// NewStorage returns a storage rooted at dir.
func NewStorage(dir string) *Storage {
	return &Storage{
		root:   dir,
		cache:  NewContentCache(),
		log:    logger.Named("files"),
		failed: make(map[string]error),
	}
}

// Root returns the project directory.
func (s *Storage) Root() string { return s.root }

// Cache returns the content cache.
func (s *Storage) Cache() *ContentCache { return s.cache }

// Path maps a URL to a path on disk. URLs escaping the root are rejected.
func (s *Storage) Path(url string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(url))
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, url)
	}
	return p, nil
}

// ReadBytes reads a file without caching it.
func (s *Storage) ReadBytes(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.Path(url)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
		}
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return data, nil
}

// PreloadFileString reads url into the cache. It reports ResourcesLoaded
// only when this call read the file. Read failures are logged and
// remembered until the file is invalidated.
func (s *Storage) PreloadFileString(ctx context.Context, url string) controls.PreloadResult {
	if _, ok := s.cache.Get(url, time.Time{}); ok {
		return controls.NothingLoaded
	}
	if s.failure(url) != nil {
		return controls.NothingLoaded
	}

	v, _, _ := s.flight.Do(url, func() (any, error) {
		if _, ok := s.cache.Get(url, time.Time{}); ok {
			return controls.NothingLoaded, nil
		}
		p, err := s.Path(url)
		if err == nil {
			var info os.FileInfo
			if info, err = os.Stat(p); err == nil {
				var data []byte
				if data, err = s.ReadBytes(ctx, url); err == nil {
					s.cache.Set(url, string(data), info.ModTime())
					return controls.ResourcesLoaded, nil
				}
			}
		}
		if ctx.Err() == nil {
			s.log.Warn("file read failed", zap.String("url", url), zap.Error(err))
			s.mu.Lock()
			s.failed[url] = err
			s.mu.Unlock()
		}
		return controls.NothingLoaded, nil
	})
	return v.(controls.PreloadResult)
}

// FileString returns the cached text of url, or "" when it has not been
// preloaded.
func (s *Storage) FileString(url string) string {
	content, _ := s.cache.Get(url, time.Time{})
	return content
}

// ReadString preloads url and returns its text.
func (s *Storage) ReadString(ctx context.Context, url string) (string, error) {
	s.PreloadFileString(ctx, url)
	if content, ok := s.cache.Get(url, time.Time{}); ok {
		return content, nil
	}
	if err := s.failure(url); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, url)
}

// failure returns the error of the last failed read of url.
func (s *Storage) failure(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed[url]
}

// Invalidate drops the cached text and any remembered failure of urls.
func (s *Storage) Invalidate(urls ...string) {
	s.mu.Lock()
	for _, url := range urls {
		delete(s.failed, url)
	}
	s.mu.Unlock()
	for _, url := range urls {
		s.cache.Delete(url)
	}
}
