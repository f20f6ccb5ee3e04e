package pack

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/packstudio/internal/controls"
)

// framesCacheKey is the editor data slot holding the parsed frames.
const framesCacheKey = "__frames_cache"

// AssetPackItem is one entry of a manifest. Its data is kept as read; key
// and type come from it. Items of the texture types are image frame
// containers and expose their frames.
type AssetPackItem struct {
	pack   *AssetPack
	data   json.RawMessage
	fields map[string]json.RawMessage
	key    string
	typ    string
	parser frameParser

	mu         sync.Mutex
	editorData map[string]any
}

func newAssetPackItem(p *AssetPack, raw json.RawMessage) (*AssetPackItem, error) {
	if jsonKind(raw) != "object" {
		return nil, fmt.Errorf("item is a JSON %s, not an object", jsonKind(raw))
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	item := &AssetPackItem{
		pack:       p,
		data:       append(json.RawMessage(nil), raw...),
		fields:     fields,
		editorData: make(map[string]any),
	}
	item.key = item.StringField("key")
	item.typ = item.StringField("type")
	item.parser = newFrameParser(item)
	return item, nil
}

// Pack returns the owning pack.
func (i *AssetPackItem) Pack() *AssetPack { return i.pack }

func (i *AssetPackItem) Key() string { return i.key }

func (i *AssetPackItem) Type() string { return i.typ }

// Data returns the item's manifest entry.
func (i *AssetPackItem) Data() json.RawMessage { return i.data }

// Field returns the raw value of a manifest entry field, or nil.
func (i *AssetPackItem) Field(name string) json.RawMessage { return i.fields[name] }

// StringField returns a string field, or "" when it is missing or not a
// string.
func (i *AssetPackItem) StringField(name string) string {
	var s string
	if raw, ok := i.fields[name]; ok && jsonKind(raw) == "string" {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

// URLs returns the "url" field as a list; audio and video items carry an
// array of alternatives.
func (i *AssetPackItem) URLs() []string {
	raw := i.fields["url"]
	switch jsonKind(raw) {
	case "string":
		return []string{i.StringField("url")}
	case "array":
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil {
			return list
		}
	}
	return nil
}

// EditorData returns an editor side value stored on the item.
func (i *AssetPackItem) EditorData(key string) (any, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	v, ok := i.editorData[key]
	return v, ok
}

// SetEditorData stores an editor side value on the item.
func (i *AssetPackItem) SetEditorData(key string, value any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.editorData[key] = value
}

// IsImageFrameContainer reports whether the item is cut into frames.
func (i *AssetPackItem) IsImageFrameContainer() bool { return i.parser != nil }

// Preload loads the files the item's frames are cut from. Once the frames
// are parsed it does nothing.
func (i *AssetPackItem) Preload(ctx context.Context) controls.PreloadResult {
	if i.parser == nil || i.framesCached() {
		return controls.NothingLoaded
	}
	return i.parser.preloadFrames(ctx)
}

func (i *AssetPackItem) framesCached() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, ok := i.editorData[framesCacheKey]
	return ok
}

// Frames returns the item's frames, parsing them on first use. The result
// is kept for the life of the item. Parse errors are logged and keep the
// frames read before the error.
func (i *AssetPackItem) Frames() []*AssetPackImageFrame {
	if i.parser == nil {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if frames, ok := i.editorData[framesCacheKey]; ok {
		return frames.([]*AssetPackImageFrame)
	}
	frames, err := i.parser.parseFrames()
	if err != nil {
		i.pack.log.Warn("frame parse failed",
			zap.String("pack", i.pack.url),
			zap.String("key", i.key),
			zap.String("type", i.typ),
			zap.Int("frames", len(frames)),
			zap.Error(err))
	}
	i.editorData[framesCacheKey] = frames
	return frames
}

// FindFrame returns the frame called name, or nil.
func (i *AssetPackItem) FindFrame(name string) *AssetPackImageFrame {
	for _, f := range i.Frames() {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

func (i *AssetPackItem) String() string {
	return fmt.Sprintf("%s(%s)", i.typ, i.key)
}
