package pack

import (
	"encoding/json"
	"fmt"

	"github.com/Faultbox/packstudio/internal/controls"
)

// --- JSON structure types ---

type jsonRect struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	W float32 `json:"w"`
	H float32 `json:"h"`
}

type jsonSize struct {
	W float32 `json:"w"`
	H float32 `json:"h"`
}

type jsonFrame struct {
	Filename         string    `json:"filename"`
	Frame            *jsonRect `json:"frame"`
	SpriteSourceSize *jsonRect `json:"spriteSourceSize"`
	SourceSize       *jsonSize `json:"sourceSize"`
}

// parseJSONAtlas reads a texture packer JSON atlas. "frames" may be an
// array of frames carrying a filename, or an object mapping names to
// frames.
func parseJSONAtlas(item *AssetPackItem, image controls.Image, content string) ([]*AssetPackImageFrame, error) {
	var probe struct {
		Frames json.RawMessage `json:"frames"`
	}
	if err := json.Unmarshal([]byte(content), &probe); err != nil {
		return nil, fmt.Errorf("atlas JSON: %w", err)
	}

	var frames []*AssetPackImageFrame
	switch jsonKind(probe.Frames) {
	case "array":
		var list []json.RawMessage
		if err := json.Unmarshal(probe.Frames, &list); err != nil {
			return nil, fmt.Errorf("atlas frames: %w", err)
		}
		for _, raw := range list {
			var f jsonFrame
			if err := json.Unmarshal(raw, &f); err != nil {
				return frames, fmt.Errorf("atlas frame %d: %w", len(frames), err)
			}
			frame, err := buildFrame(item, image, f, len(frames))
			if err != nil {
				return frames, err
			}
			frames = append(frames, frame)
		}
	case "object":
		members, err := objectMembers(probe.Frames)
		if err != nil {
			return nil, fmt.Errorf("atlas frames: %w", err)
		}
		for _, m := range members {
			var f jsonFrame
			if err := json.Unmarshal(m.Value, &f); err != nil {
				return frames, fmt.Errorf("atlas frame %q: %w", m.Key, err)
			}
			f.Filename = m.Key
			frame, err := buildFrame(item, image, f, len(frames))
			if err != nil {
				return frames, err
			}
			frames = append(frames, frame)
		}
	}
	return frames, nil
}

// buildFrame maps a texture packer frame: "frame" is the region in the
// texture, "spriteSourceSize" the trimmed sprite inside its original box
// and "sourceSize" the original size.
func buildFrame(item *AssetPackItem, image controls.Image, f jsonFrame, index int) (*AssetPackImageFrame, error) {
	switch {
	case f.Frame == nil:
		return nil, fmt.Errorf("%w: frame of %q", ErrMissingField, f.Filename)
	case f.SpriteSourceSize == nil:
		return nil, fmt.Errorf("%w: spriteSourceSize of %q", ErrMissingField, f.Filename)
	case f.SourceSize == nil:
		return nil, fmt.Errorf("%w: sourceSize of %q", ErrMissingField, f.Filename)
	}
	data := controls.FrameData{
		Index:   index,
		Src:     controls.NewRect(f.Frame.X, f.Frame.Y, f.Frame.W, f.Frame.H),
		Dst:     controls.NewRect(f.SpriteSourceSize.X, f.SpriteSourceSize.Y, f.SpriteSourceSize.W, f.SpriteSourceSize.H),
		SrcSize: controls.Point{X: f.SourceSize.W, Y: f.SourceSize.H},
	}
	return newFrame(item, f.Filename, image, data), nil
}
