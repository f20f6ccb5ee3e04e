package pack

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/Faultbox/packstudio/internal/files"
)

// Content types of pack related files.
const (
	ContentTypeAssetPack        = "PhaserAssetPack"
	ContentTypeAnimations       = "Phaser v3 Animations"
	ContentTypeAtlas            = "phasereditor2d.pack.core.atlas"
	ContentTypeAtlasXML         = "phasereditor2d.pack.core.atlasXML"
	ContentTypeUnityAtlas       = "phasereditor2d.pack.core.unityAtlas"
	ContentTypeMultiAtlas       = "phasereditor2d.pack.core.multiAtlas"
	ContentTypeBitmapFont       = "phasereditor2d.pack.core.bitmapFont"
	ContentTypeAudioSprite      = "phasereditor2d.pack.core.audioSprite"
	ContentTypeTilemapImpact    = "phasereditor2d.pack.core.contentTypes.tilemapImpact"
	ContentTypeTilemapTiledJSON = "phasereditor2d.pack.core.contentTypes.tilemapTiledJSON"
)

// RegisterContentTypes adds the pack resolvers to a project's registry,
// in the order they are asked.
func RegisterContentTypes(registry *files.ContentTypeRegistry, storage *files.Storage) {
	read := func(ctx context.Context, f *files.FilePath) (string, error) {
		return storage.ReadString(ctx, f.URL())
	}
	for _, r := range []files.ContentTypeResolver{
		&jsonResolver{id: "pack.AssetPackContentTypeResolver", read: read, lenient: true, match: isAssetPack},
		&jsonResolver{id: "pack.AtlasContentTypeResolver", read: read, match: isAtlas},
		&jsonResolver{id: "pack.MultiatlasContentTypeResolver", read: read, match: isMultiAtlas},
		&xmlResolver{id: "pack.AtlasXMLContentTypeResolver", read: read, match: isAtlasXML},
		unityAtlasResolver{},
		&jsonResolver{id: "pack.AnimationsContentTypeResolver", read: read, match: isAnimations},
		&xmlResolver{id: "pack.BitmapFontContentTypeResolver", read: read, match: isBitmapFont},
		&jsonResolver{id: "pack.TilemapImpactContentTypeResolver", read: read, match: isTilemapImpact},
		&jsonResolver{id: "pack.TilemapTiledJSONContentTypeResolver", read: read, match: isTilemapTiledJSON},
		&jsonResolver{id: "pack.AudioSpriteContentTypeResolver", read: read, match: isAudioSprite},
	} {
		registry.Register(r)
	}
}

// jsonResolver recognizes .json files by their top level fields. Unless
// lenient, content that is not valid JSON is an error.
type jsonResolver struct {
	id      string
	read    func(context.Context, *files.FilePath) (string, error)
	match   func(fields map[string]json.RawMessage) string
	lenient bool
}

func (r *jsonResolver) ID() string { return r.id }

func (r *jsonResolver) ComputeContentType(ctx context.Context, f *files.FilePath) (string, error) {
	if f.Extension() != "json" {
		return files.ContentTypeAny, nil
	}
	content, err := r.read(ctx, f)
	if err != nil {
		return files.ContentTypeAny, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		if r.lenient {
			return files.ContentTypeAny, nil
		}
		return files.ContentTypeAny, err
	}
	return r.match(fields), nil
}

func isAssetPack(fields map[string]json.RawMessage) string {
	var meta struct {
		ContentType string `json:"contentType"`
	}
	if json.Unmarshal(fields["meta"], &meta) == nil && meta.ContentType == ManifestContentType {
		return ContentTypeAssetPack
	}
	return files.ContentTypeAny
}

func isAnimations(fields map[string]json.RawMessage) string {
	var meta struct {
		ContentType string `json:"contentType"`
	}
	if json.Unmarshal(fields["meta"], &meta) == nil && meta.ContentType == ContentTypeAnimations {
		return ContentTypeAnimations
	}
	return files.ContentTypeAny
}

// isObjectLike matches what a script typeof check calls an object: an
// object, an array or null.
func isObjectLike(raw json.RawMessage) bool {
	switch jsonKind(raw) {
	case "object", "array", "null":
		return true
	}
	return false
}

func isAtlas(fields map[string]json.RawMessage) string {
	if raw, ok := fields["frames"]; ok && isObjectLike(raw) {
		return ContentTypeAtlas
	}
	return files.ContentTypeAny
}

func isMultiAtlas(fields map[string]json.RawMessage) string {
	if raw, ok := fields["textures"]; ok && isObjectLike(raw) {
		return ContentTypeMultiAtlas
	}
	return files.ContentTypeAny
}

func isTilemapImpact(fields map[string]json.RawMessage) string {
	if jsonKind(fields["entities"]) == "array" && jsonKind(fields["layer"]) == "array" {
		return ContentTypeTilemapImpact
	}
	return files.ContentTypeAny
}

func isTilemapTiledJSON(fields map[string]json.RawMessage) string {
	if jsonKind(fields["layers"]) == "array" && jsonKind(fields["tilesets"]) == "array" {
		return ContentTypeTilemapTiledJSON
	}
	return files.ContentTypeAny
}

func isAudioSprite(fields map[string]json.RawMessage) string {
	if jsonKind(fields["resources"]) == "array" && isObjectLike(fields["spritemap"]) {
		return ContentTypeAudioSprite
	}
	return files.ContentTypeAny
}

// xmlResolver recognizes .xml files by how many elements of each name
// they hold.
type xmlResolver struct {
	id    string
	read  func(context.Context, *files.FilePath) (string, error)
	match func(counts map[string]int) string
}

func (r *xmlResolver) ID() string { return r.id }

func (r *xmlResolver) ComputeContentType(ctx context.Context, f *files.FilePath) (string, error) {
	if f.Extension() != "xml" {
		return files.ContentTypeAny, nil
	}
	content, err := r.read(ctx, f)
	if err != nil {
		return files.ContentTypeAny, err
	}
	counts, err := countElements(content)
	if err != nil {
		return files.ContentTypeAny, err
	}
	return r.match(counts), nil
}

// countElements counts the elements of an XML document by local name.
func countElements(content string) (map[string]int, error) {
	counts := make(map[string]int)
	dec := xml.NewDecoder(strings.NewReader(content))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return counts, nil
		}
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			counts[start.Name.Local]++
		}
	}
}

func isAtlasXML(counts map[string]int) string {
	if counts["TextureAtlas"] == 1 {
		return ContentTypeAtlasXML
	}
	return files.ContentTypeAny
}

func isBitmapFont(counts map[string]int) string {
	if counts["font"] == 1 && counts["chars"] == 1 {
		return ContentTypeBitmapFont
	}
	return files.ContentTypeAny
}

// unityAtlasResolver takes every .meta file for Unity sprite metadata.
type unityAtlasResolver struct{}

func (unityAtlasResolver) ID() string { return "pack.UnityAtlasContentTypeResolver" }

func (unityAtlasResolver) ComputeContentType(_ context.Context, f *files.FilePath) (string, error) {
	if f.Extension() == "meta" {
		return ContentTypeUnityAtlas, nil
	}
	return files.ContentTypeAny, nil
}
