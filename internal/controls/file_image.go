package controls

import (
	"context"
	"image"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/packstudio/internal/logger"
)

// ImageLoader fetches and decodes the bitmap behind a URL.
type ImageLoader interface {
	LoadImage(ctx context.Context, url string) (image.Image, error)
}

// ImageLoaderFunc adapts a function to ImageLoader.
type ImageLoaderFunc func(ctx context.Context, url string) (image.Image, error)

// LoadImage calls f.
func (f ImageLoaderFunc) LoadImage(ctx context.Context, url string) (image.Image, error) {
	return f(ctx, url)
}

// FileImage is an Image loaded on demand through an ImageLoader.
// Concurrent Preload calls share one in-flight load.
type FileImage struct {
	url    string
	loader ImageLoader

	flight singleflight.Group

	mu     sync.RWMutex
	state  ImageState
	bitmap image.Image
	err    error
}

// NewFileImage returns an unloaded image for url.
func NewFileImage(url string, loader ImageLoader) *FileImage {
	return &FileImage{url: url, loader: loader}
}

// NewReadyImage wraps an already decoded bitmap.
func NewReadyImage(url string, bmp image.Image) *FileImage {
	return &FileImage{url: url, state: ImageReady, bitmap: bmp}
}

// URL returns the source the image loads from.
func (img *FileImage) URL() string { return img.url }

// Err returns the load error once the image is in ImageError.
func (img *FileImage) Err() error {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.err
}

func (img *FileImage) State() ImageState {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.state
}

func (img *FileImage) Bitmap() image.Image {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.bitmap
}

func (img *FileImage) Width() float32 {
	if bmp := img.Bitmap(); bmp != nil {
		return float32(bmp.Bounds().Dx())
	}
	return PlaceholderSize
}

func (img *FileImage) Height() float32 {
	if bmp := img.Bitmap(); bmp != nil {
		return float32(bmp.Bounds().Dy())
	}
	return PlaceholderSize
}

func (img *FileImage) Preload(ctx context.Context) PreloadResult {
	switch img.State() {
	case ImageReady, ImageError:
		return NothingLoaded
	}

	res := img.load(ctx)
	// A flight joined from another caller may have been cancelled under us.
	if res == NothingLoaded && ctx.Err() == nil && img.State() == ImageUnloaded {
		res = img.load(ctx)
	}
	return res
}

func (img *FileImage) load(ctx context.Context) PreloadResult {
	v, _, _ := img.flight.Do(img.url, func() (any, error) {
		// A caller may arrive after the previous flight finished.
		if s := img.State(); s == ImageReady || s == ImageError {
			return NothingLoaded, nil
		}

		img.mu.Lock()
		img.state = ImageLoading
		img.mu.Unlock()

		bmp, err := img.loader.LoadImage(ctx, img.url)

		img.mu.Lock()
		defer img.mu.Unlock()
		if err != nil && ctx.Err() != nil {
			// Abandoned by the caller; a later preload may retry.
			img.state = ImageUnloaded
			return NothingLoaded, nil
		}
		if err != nil {
			img.state = ImageError
			img.err = err
			logger.Named("image").Warn("image load failed",
				zap.String("url", img.url),
				zap.Error(err),
			)
			return NothingLoaded, nil
		}
		img.state = ImageReady
		img.bitmap = bmp
		return ResourcesLoaded, nil
	})
	return v.(PreloadResult)
}

func (img *FileImage) Paint(c Canvas, x, y, w, h float32, center bool) {
	bmp := img.Bitmap()
	if bmp == nil {
		PaintPlaceholder(c, x, y, w, h)
		return
	}
	PaintBitmap(c, bmp, x, y, w, h, center)
}

func (img *FileImage) PaintFrame(c Canvas, src Rect, dst Rect) {
	bmp := img.Bitmap()
	if bmp == nil {
		PaintPlaceholder(c, dst.X, dst.Y, dst.W, dst.H)
		return
	}
	c.DrawImage(bmp, src, dst)
}
