// Package debug writes PNG snapshots of what a viewer painted.
package debug

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/packstudio/internal/controls"
	"github.com/Faultbox/packstudio/internal/logger"
)

// ErrPixelSize is returned when raw pixel data does not match its size.
var ErrPixelSize = errors.New("pixel data size mismatch")

// Snapshotter saves canvas contents as timestamped PNG files.
type Snapshotter struct {
	outputDir string
	prefix    string
	now       func() time.Time
	log       *zap.Logger
}

// NewSnapshotter returns a snapshotter writing prefix_<time>.png files
// into outputDir.
func NewSnapshotter(outputDir, prefix string) *Snapshotter {
	return &Snapshotter{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
		log:       logger.Named("debug"),
	}
}

// SetOutputDir sets the output directory for snapshots.
func (s *Snapshotter) SetOutputDir(dir string) {
	s.outputDir = dir
}

// CaptureCanvas saves what was painted into c.
func (s *Snapshotter) CaptureCanvas(c *controls.RasterCanvas) (string, error) {
	return s.CaptureImage(c.Image())
}

// CaptureFromPixels saves RGBA pixels read back from the GL framebuffer.
// Rows are flipped since OpenGL has its origin at the bottom left.
func (s *Snapshotter) CaptureFromPixels(pixels []byte, width, height int) (string, error) {
	img, err := FlipPixels(pixels, width, height)
	if err != nil {
		return "", err
	}
	return s.CaptureImage(img)
}

// CaptureImage saves img under a generated name.
func (s *Snapshotter) CaptureImage(img image.Image) (string, error) {
	if s.outputDir != "" {
		if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	filename := s.GenerateFilename()
	if err := WritePNG(filename, img); err != nil {
		return "", err
	}
	s.log.Info("snapshot saved", zap.String("file", filename))
	return filename, nil
}

// GenerateFilename returns the name the next snapshot is saved under.
func (s *Snapshotter) GenerateFilename() string {
	timestamp := s.now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s.png", s.prefix, timestamp)
	if s.outputDir != "" {
		filename = filepath.Join(s.outputDir, filename)
	}
	return filename
}

// FlipPixels copies width*height RGBA pixels into an image, bottom row
// first.
func FlipPixels(pixels []byte, width, height int) (*image.RGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrPixelSize, width*height*4, len(pixels))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := range height {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return file.Close()
}
