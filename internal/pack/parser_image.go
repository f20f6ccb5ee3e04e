package pack

import (
	"context"
	"fmt"

	"github.com/Faultbox/packstudio/internal/controls"
)

// imageParser makes one frame, named after the item key, covering the
// whole image at "url".
type imageParser struct {
	item *AssetPackItem
}

func (p *imageParser) image() controls.Image {
	return p.item.Pack().Source().Image(p.item.StringField("url"))
}

func (p *imageParser) preloadFrames(ctx context.Context) controls.PreloadResult {
	img := p.image()
	if img == nil {
		return controls.NothingLoaded
	}
	return img.Preload(ctx)
}

func (p *imageParser) parseFrames() ([]*AssetPackImageFrame, error) {
	img := p.image()
	if img == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoImage, p.item.StringField("url"))
	}
	w, h := img.Width(), img.Height()
	// SrcSize repeats the width in both components.
	data := controls.FrameData{
		Src:     controls.NewRect(0, 0, w, h),
		Dst:     controls.NewRect(0, 0, w, h),
		SrcSize: controls.Point{X: w, Y: w},
	}
	return []*AssetPackImageFrame{newFrame(p.item, p.item.Key(), img, data)}, nil
}
