package pack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Faultbox/packstudio/internal/files"
)

// Importer turns project files of one content type into items of one pack
// item type.
type Importer struct {
	Type        string
	ContentType string
	itemData    func(f *files.FilePath, types *files.ContentTypeRegistry) []member
}

// AcceptFile reports whether f has the importer's content type. The type
// must have been computed already.
func (im *Importer) AcceptFile(f *files.FilePath, types *files.ContentTypeRegistry) bool {
	return f.IsFile() && types.CachedContentType(f) == im.ContentType
}

// AcceptedFiles returns the files under folder the importer accepts.
func (im *Importer) AcceptedFiles(folder *files.FilePath, types *files.ContentTypeRegistry) []*files.FilePath {
	var out []*files.FilePath
	for _, f := range folder.FlatFiles() {
		if im.AcceptFile(f, types) {
			out = append(out, f)
		}
	}
	return out
}

// ImportFile adds an item for f to p, keyed by the file name made unique
// among the pack's keys, and preloads it.
func (im *Importer) ImportFile(ctx context.Context, p *AssetPack, f *files.FilePath, types *files.ContentTypeRegistry) (*AssetPackItem, error) {
	used := make(map[string]bool)
	for _, item := range p.Items() {
		used[item.Key()] = true
	}

	fields := im.itemData(f, types)
	fields = setMember(fields, stringMember("type", im.Type))
	fields = setMember(fields, stringMember("key", uniqueName(f.NameWithoutExtension(), used)))
	data, err := marshalMembers(fields)
	if err != nil {
		return nil, err
	}

	item, err := p.CreateItem(data)
	if err != nil {
		return nil, err
	}
	p.AddItem(item)
	item.Preload(ctx)
	return item, nil
}

// uniqueName returns base, or base with the first free "_N" suffix.
func uniqueName(base string, used map[string]bool) string {
	if !used[base] {
		return base
	}
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s_%d", base, n)
		if !used[name] {
			return name
		}
	}
}

func stringMember(key, value string) member {
	raw, _ := json.Marshal(value)
	return member{Key: key, Value: raw}
}

func valueMember(key string, value any) member {
	raw, _ := json.Marshal(value)
	return member{Key: key, Value: raw}
}

// setMember replaces the member with m's key, or appends m.
func setMember(members []member, m member) []member {
	for i := range members {
		if members[i].Key == m.Key {
			members[i].Value = m.Value
			return members
		}
	}
	return append(members, m)
}

// marshalMembers encodes members as a JSON object, keeping their order.
func marshalMembers(members []member) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(m.Value)
	}
	buf.WriteByte('}')
	if !json.Valid(buf.Bytes()) {
		return nil, fmt.Errorf("%w: item data", ErrInvalidManifest)
	}
	return buf.Bytes(), nil
}

// folderURL joins name to the URL of folder.
func folderURL(folder *files.FilePath, name string) string {
	if folder == nil || folder.URL() == "" {
		return name
	}
	return folder.URL() + "/" + name
}

// withExtension returns the URL of f's name with another extension.
func withExtension(f *files.FilePath, ext string) string {
	return folderURL(f.Parent(), f.NameWithoutExtension()+"."+ext)
}

// --- Importers ---

func singleFileImporter(contentType, itemType string, urlIsArray bool, defaults ...member) *Importer {
	return &Importer{
		Type:        itemType,
		ContentType: contentType,
		itemData: func(f *files.FilePath, _ *files.ContentTypeRegistry) []member {
			var url member
			if urlIsArray {
				url = valueMember("url", []string{f.URL()})
			} else {
				url = stringMember("url", f.URL())
			}
			return append([]member{url}, defaults...)
		},
	}
}

// atlasImporter pairs a data file with its texture: "x.png.json" with
// "x.png", "x.json" with "x.png", and "x.json.png" when it exists.
func atlasImporter(contentType, itemType string) *Importer {
	return &Importer{
		Type:        itemType,
		ContentType: contentType,
		itemData: func(f *files.FilePath, _ *files.ContentTypeRegistry) []member {
			textureURL := withExtension(f, "png")
			if strings.HasSuffix(f.NameWithoutExtension(), ".png") {
				textureURL = folderURL(f.Parent(), f.NameWithoutExtension())
			}
			if f.Parent() != nil {
				if alt := f.Parent().File(f.Name() + ".png"); alt != nil {
					textureURL = alt.URL()
				}
			}
			return []member{
				stringMember("atlasURL", f.URL()),
				stringMember("textureURL", textureURL),
			}
		},
	}
}

func multiAtlasImporter() *Importer {
	return &Importer{
		Type:        MultiAtlasType,
		ContentType: ContentTypeMultiAtlas,
		itemData: func(f *files.FilePath, _ *files.ContentTypeRegistry) []member {
			return []member{
				stringMember("type", MultiAtlasType),
				stringMember("url", f.URL()),
			}
		},
	}
}

func spritesheetImporter() *Importer {
	return singleFileImporter(files.ContentTypeImage, SpritesheetType, false,
		valueMember("frameConfig", map[string]int{"frameWidth": 32, "frameHeight": 32}))
}

func bitmapFontImporter() *Importer {
	return &Importer{
		Type:        BitmapFontType,
		ContentType: ContentTypeBitmapFont,
		itemData: func(f *files.FilePath, _ *files.ContentTypeRegistry) []member {
			return []member{
				stringMember("textureURL", withExtension(f, "png")),
				stringMember("fontDataURL", f.URL()),
			}
		},
	}
}

// audioSpriteImporter collects the audio files sharing the JSON file's
// base name.
func audioSpriteImporter() *Importer {
	return &Importer{
		Type:        AudioSpriteType,
		ContentType: ContentTypeAudioSprite,
		itemData: func(f *files.FilePath, types *files.ContentTypeRegistry) []member {
			urls := []string{}
			if f.Parent() != nil {
				for _, sib := range f.Parent().Files() {
					if types.CachedContentType(sib) == files.ContentTypeAudio && sib.NameWithoutExtension() == f.NameWithoutExtension() {
						urls = append(urls, sib.URL())
					}
				}
			}
			return []member{
				stringMember("jsonURL", f.URL()),
				valueMember("audioURL", urls),
			}
		},
	}
}

// Importers lists an importer per importable item type.
var Importers = []*Importer{
	atlasImporter(ContentTypeAtlas, AtlasType),
	multiAtlasImporter(),
	atlasImporter(ContentTypeAtlasXML, AtlasXMLType),
	atlasImporter(ContentTypeUnityAtlas, UnityAtlasType),
	singleFileImporter(files.ContentTypeImage, ImageType, false),
	singleFileImporter(files.ContentTypeSVG, SVGType, false),
	spritesheetImporter(),
	singleFileImporter(ContentTypeAnimations, AnimationsType, false),
	bitmapFontImporter(),
	singleFileImporter(files.ContentTypeCSV, TilemapCSVType, false),
	singleFileImporter(ContentTypeTilemapImpact, TilemapImpactType, false),
	singleFileImporter(ContentTypeTilemapTiledJSON, TilemapTiledJSONType, false),
	singleFileImporter(files.ContentTypeJavaScript, PluginType, false),
	singleFileImporter(files.ContentTypeJavaScript, SceneFileType, false),
	singleFileImporter(files.ContentTypeJavaScript, ScenePluginType, false),
	singleFileImporter(files.ContentTypeJavaScript, ScriptType, false),
	singleFileImporter(files.ContentTypeAudio, AudioType, true),
	audioSpriteImporter(),
	singleFileImporter(files.ContentTypeVideo, VideoType, true),
	singleFileImporter(files.ContentTypeText, TextType, false),
	singleFileImporter(files.ContentTypeCSS, CSSType, false),
	singleFileImporter(files.ContentTypeHTML, HTMLType, false),
	singleFileImporter(files.ContentTypeHTML, HTMLTextureType, false,
		valueMember("width", 512), valueMember("height", 512)),
	singleFileImporter(files.ContentTypeGLSL, GLSLType, false),
	singleFileImporter(files.ContentTypeAny, BinaryType, false),
	singleFileImporter(files.ContentTypeJSON, JSONType, false),
	singleFileImporter(files.ContentTypeXML, XMLType, false),
}

// ImporterFor returns the importer of an item type, or nil.
func ImporterFor(itemType string) *Importer {
	for _, im := range Importers {
		if im.Type == itemType {
			return im
		}
	}
	return nil
}
