package pack

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Faultbox/packstudio/internal/controls"
)

type multiAtlasTexture struct {
	Image  string          `json:"image"`
	Frames json.RawMessage `json:"frames"`
}

type multiAtlasData struct {
	Textures []multiAtlasTexture `json:"textures"`
}

// multiAtlasParser reads a multi texture atlas: one JSON file listing
// several textures, each an image next to the JSON file plus its frames.
// Frame indexes run on across textures.
type multiAtlasParser struct {
	item *AssetPackItem
}

func (p *multiAtlasParser) url() string { return p.item.StringField("url") }

func (p *multiAtlasParser) preloadFrames(ctx context.Context) controls.PreloadResult {
	src := p.item.Pack().Source()
	url := p.url()
	if !src.Exists(url) {
		return controls.NothingLoaded
	}
	result := src.PreloadFileString(ctx, url)
	content, ok := src.FileString(url)
	if !ok {
		return result
	}
	var data multiAtlasData
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return result
	}
	for _, tex := range data.Textures {
		if img := src.Image(siblingURL(url, tex.Image)); img != nil {
			result = result.Max(img.Preload(ctx))
		}
	}
	return result
}

func (p *multiAtlasParser) parseFrames() ([]*AssetPackImageFrame, error) {
	src := p.item.Pack().Source()
	url := p.url()
	if url == "" {
		return nil, fmt.Errorf("%w: url", ErrMissingField)
	}
	if !src.Exists(url) {
		return nil, fmt.Errorf("%w: %s", ErrNoData, url)
	}
	content, ok := src.FileString(url)
	if !ok {
		return nil, fmt.Errorf("%w: %s not loaded", ErrNoData, url)
	}

	var data multiAtlasData
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, fmt.Errorf("multiatlas JSON: %w", err)
	}

	var frames []*AssetPackImageFrame
	for _, tex := range data.Textures {
		image := src.Image(siblingURL(url, tex.Image))
		var list []jsonFrame
		if err := json.Unmarshal(tex.Frames, &list); err != nil {
			return frames, fmt.Errorf("multiatlas frames of %s: %w", tex.Image, err)
		}
		for _, f := range list {
			frame, err := buildFrame(p.item, image, f, len(frames))
			if err != nil {
				return frames, err
			}
			frames = append(frames, frame)
		}
	}
	return frames, nil
}
