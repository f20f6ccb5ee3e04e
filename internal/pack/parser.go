package pack

import (
	"context"
	"fmt"

	"github.com/Faultbox/packstudio/internal/controls"
)

// frameParser cuts the frames of one item type.
//
// preloadFrames loads the data file and images the frames need and may run
// concurrently with itself. parseFrames reads only preloaded data; for the
// same input it returns the same frames. On error it returns the frames
// read so far.
type frameParser interface {
	preloadFrames(ctx context.Context) controls.PreloadResult
	parseFrames() ([]*AssetPackImageFrame, error)
}

func newFrameParser(item *AssetPackItem) frameParser {
	switch item.Type() {
	case ImageType:
		return &imageParser{item: item}
	case AtlasType:
		return &atlasParser{item: item, decode: parseJSONAtlas}
	case AtlasXMLType:
		return &atlasParser{item: item, decode: parseXMLAtlas}
	case UnityAtlasType:
		return &atlasParser{item: item, decode: parseUnityAtlas}
	case MultiAtlasType:
		return &multiAtlasParser{item: item}
	case SpritesheetType:
		return &spritesheetParser{item: item}
	}
	return nil
}

// atlasParser handles the items made of a texture plus one data file,
// named by the atlasURL and textureURL fields. decode reads the data file's
// format.
type atlasParser struct {
	item   *AssetPackItem
	decode func(item *AssetPackItem, image controls.Image, content string) ([]*AssetPackImageFrame, error)
}

func (p *atlasParser) preloadFrames(ctx context.Context) controls.PreloadResult {
	src := p.item.Pack().Source()
	result := src.PreloadFileString(ctx, p.item.StringField("atlasURL"))
	if img := src.Image(p.item.StringField("textureURL")); img != nil {
		result = result.Max(img.Preload(ctx))
	}
	return result
}

func (p *atlasParser) parseFrames() ([]*AssetPackImageFrame, error) {
	src := p.item.Pack().Source()
	atlasURL := p.item.StringField("atlasURL")
	if atlasURL == "" {
		return nil, fmt.Errorf("%w: atlasURL", ErrMissingField)
	}
	if !src.Exists(atlasURL) {
		return nil, fmt.Errorf("%w: %s", ErrNoData, atlasURL)
	}
	content, ok := src.FileString(atlasURL)
	if !ok {
		return nil, fmt.Errorf("%w: %s not loaded", ErrNoData, atlasURL)
	}
	return p.decode(p.item, src.Image(p.item.StringField("textureURL")), content)
}
