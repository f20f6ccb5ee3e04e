package files

import (
	"context"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/packstudio/internal/logger"
)

// DefaultDebounce is how long the watcher waits for more events before
// reporting a batch.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes below a project directory as batches of URLs.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	log      *zap.Logger
}

// NewWatcher watches root and every folder below it.
func NewWatcher(root string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:     root,
		watcher:  fw,
		debounce: DefaultDebounce,
		log:      logger.Named("files"),
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// SetDebounce sets the quiet period before a batch is reported.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
}

// Run delivers batches of changed URLs to onChange until ctx is done. It
// runs on the calling goroutine; onChange is called from it too.
func (w *Watcher) Run(ctx context.Context, onChange func(urls []string)) error {
	var pending []string
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				if isDir, err := statDir(event.Name); err == nil && isDir {
					if err := w.addTree(event.Name); err != nil {
						w.log.Warn("watch add failed", zap.String("path", event.Name), zap.Error(err))
					}
				}
			case event.Op&fsnotify.Chmod == fsnotify.Chmod:
				continue
			}
			url := w.url(event.Name)
			if url == "" || slices.Contains(pending, url) {
				continue
			}
			pending = append(pending, url)
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := pending
			pending = nil
			onChange(batch)
		}
	}
}

func (w *Watcher) url(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel)
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
