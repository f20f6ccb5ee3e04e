// Package pack reads asset pack manifests and cuts their texture items into
// frames.
//
// An AssetPack is an ordered list of items decoded from a manifest file.
// Items whose type describes a texture (plain images, JSON and XML atlases,
// Unity sprite metadata, multi-atlases, grid spritesheets) are image frame
// containers: a type specific parser preloads the files they reference and
// normalizes them into AssetPackImageFrame values.
package pack

// Item types.
const (
	ImageType            = "image"
	SVGType              = "svg"
	AtlasType            = "atlas"
	AtlasXMLType         = "atlasXML"
	UnityAtlasType       = "unityAtlas"
	MultiAtlasType       = "multiatlas"
	SpritesheetType      = "spritesheet"
	AnimationsType       = "animations"
	BitmapFontType       = "bitmapFont"
	TilemapCSVType       = "tilemapCSV"
	TilemapImpactType    = "tilemapImpact"
	TilemapTiledJSONType = "tilemapTiledJSON"
	PluginType           = "plugin"
	SceneFileType        = "sceneFile"
	ScenePluginType      = "scenePlugin"
	ScriptType           = "script"
	AudioType            = "audio"
	AudioSpriteType      = "audioSprite"
	VideoType            = "video"
	TextType             = "text"
	CSSType              = "css"
	GLSLType             = "glsl"
	HTMLType             = "html"
	HTMLTextureType      = "htmlTexture"
	BinaryType           = "binary"
	JSONType             = "json"
	XMLType              = "xml"
)

// Types lists every item type in display order.
var Types = []string{
	ImageType,
	SVGType,
	AtlasType,
	AtlasXMLType,
	UnityAtlasType,
	MultiAtlasType,
	SpritesheetType,
	AnimationsType,
	BitmapFontType,
	TilemapCSVType,
	TilemapImpactType,
	TilemapTiledJSONType,
	PluginType,
	SceneFileType,
	ScenePluginType,
	ScriptType,
	AudioType,
	AudioSpriteType,
	VideoType,
	TextType,
	CSSType,
	GLSLType,
	HTMLType,
	HTMLTextureType,
	BinaryType,
	JSONType,
	XMLType,
}

var atlasTypes = map[string]bool{
	MultiAtlasType: true,
	AtlasType:      true,
	UnityAtlasType: true,
	AtlasXMLType:   true,
}

// IsAtlasType reports whether t is one of the atlas types.
func IsAtlasType(t string) bool { return atlasTypes[t] }

// IsKnownType reports whether t is listed in Types.
func IsKnownType(t string) bool {
	for _, known := range Types {
		if known == t {
			return true
		}
	}
	return false
}

// isFrameContainerType reports whether items of type t are cut into frames.
func isFrameContainerType(t string) bool {
	switch t {
	case ImageType, AtlasType, AtlasXMLType, UnityAtlasType, MultiAtlasType, SpritesheetType:
		return true
	}
	return false
}
