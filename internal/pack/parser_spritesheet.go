package pack

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/Faultbox/packstudio/internal/controls"
)

// maxSpritesheetFrame is the last frame index a spritesheet is cut to.
const maxSpritesheetFrame = 50

// frameConfig is the grid of a spritesheet item. Zero margin, spacing and
// startFrame are the defaults; a zero endFrame means "to the end".
type frameConfig struct {
	FrameWidth  float32 `json:"frameWidth"`
	FrameHeight float32 `json:"frameHeight"`
	Margin      float32 `json:"margin"`
	Spacing     float32 `json:"spacing"`
	StartFrame  int     `json:"startFrame"`
	EndFrame    int     `json:"endFrame"`
}

// spritesheetParser cuts an image into a regular grid of frames named by
// their index.
type spritesheetParser struct {
	item *AssetPackItem
}

func (p *spritesheetParser) image() controls.Image {
	return p.item.Pack().Source().Image(p.item.StringField("url"))
}

func (p *spritesheetParser) preloadFrames(ctx context.Context) controls.PreloadResult {
	img := p.image()
	if img == nil {
		return controls.NothingLoaded
	}
	return img.Preload(ctx)
}

func (p *spritesheetParser) config() (frameConfig, error) {
	var cfg frameConfig
	raw := p.item.Field("frameConfig")
	if jsonKind(raw) != "object" {
		return cfg, fmt.Errorf("%w: frameConfig", ErrMissingField)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("frameConfig: %w", err)
	}
	return cfg, nil
}

func (p *spritesheetParser) parseFrames() ([]*AssetPackImageFrame, error) {
	cfg, err := p.config()
	if err != nil {
		return nil, err
	}
	img := p.image()
	if img == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoImage, p.item.StringField("url"))
	}
	return cutSpritesheet(p.item, img, cfg), nil
}

// cutSpritesheet walks the grid row by row from (margin, margin). It stops
// past the image bottom, past endFrame or past maxSpritesheetFrame, and
// keeps the cells from startFrame on that fit inside the image. An invalid
// grid yields no frames.
func cutSpritesheet(item *AssetPackItem, img controls.Image, cfg frameConfig) []*AssetPackImageFrame {
	w, h := cfg.FrameWidth, cfg.FrameHeight
	margin, spacing := cfg.Margin, cfg.Spacing
	if w <= 0 || h <= 0 || spacing < 0 || margin < 0 {
		return nil
	}

	start := max(cfg.StartFrame, 0)
	end := math.MaxInt
	if cfg.EndFrame > 0 {
		end = cfg.EndFrame
	}
	imgW, imgH := img.Width(), img.Height()

	var frames []*AssetPackImageFrame
	x, y := margin, margin
	for i := 0; i <= end && i <= maxSpritesheetFrame && y < imgH; i++ {
		if i >= start && x+w <= imgW && y+h <= imgH {
			frames = append(frames, newFrame(item, strconv.Itoa(i), img, controls.FrameData{
				Index:   i,
				Src:     controls.NewRect(x, y, w, h),
				Dst:     controls.NewRect(0, 0, w, h),
				SrcSize: controls.Point{X: w, Y: h},
			}))
		}
		x += w + spacing
		if x >= imgW {
			x = margin
			y += h + spacing
		}
	}
	return frames
}
