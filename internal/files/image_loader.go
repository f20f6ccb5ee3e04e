package files

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/packstudio/internal/controls"
)

// ImageLoader decodes project images for controls.FileImage.
type ImageLoader struct {
	storage *Storage
}

// NewImageLoader returns a loader reading through storage.
func NewImageLoader(storage *Storage) *ImageLoader {
	return &ImageLoader{storage: storage}
}

// LoadImage reads and decodes url. The content is sniffed first, so a file
// with an image extension but other content fails with ErrImageDecode.
func (l *ImageLoader) LoadImage(ctx context.Context, url string) (image.Image, error) {
	data, err := l.storage.ReadBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", controls.ErrImageNotFound, err)
	}
	return DecodeImage(data)
}

// DecodeImage decodes png, jpeg, gif, bmp or webp data.
func DecodeImage(data []byte) (image.Image, error) {
	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("%w: unrecognized content", controls.ErrImageDecode)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		kind, _ := filetype.Match(data)
		return nil, fmt.Errorf("%w: %s: %w", controls.ErrImageDecode, kind.MIME.Value, err)
	}
	return img, nil
}

// IsImageData reports whether data starts with a known image signature.
func IsImageData(data []byte) bool {
	return filetype.IsImage(data)
}
