package pack

import (
	"regexp"
	"strings"

	"github.com/Faultbox/packstudio/internal/controls"
)

// unityLine matches "key: value" lines of a Unity .meta file, with an
// optional "- " list marker.
var unityLine = regexp.MustCompile(`^[ ]*(- )*(\w+)+[: ]+(.*)`)

type unityRect struct {
	x, y, width, height int
}

// parseUnityAtlas reads the sprite list of a Unity texture importer .meta
// file. A sprite starts at its "name" key; its rect fields follow until
// the next list item. Unity measures y from the bottom of the texture, so
// rects are flipped to top-left origin using the image height. Without an
// image no frame can be placed.
func parseUnityAtlas(item *AssetPackItem, image controls.Image, content string) ([]*AssetPackImageFrame, error) {
	var (
		frames     []*AssetPackImageFrame
		prevSprite string
		curSprite  string
		rect       unityRect
	)

	add := func(name string, r unityRect) {
		if image == nil {
			return
		}
		src := controls.NewRect(float32(r.x), float32(r.y), float32(r.width), float32(r.height))
		src.Y = image.Height() - src.Y - src.H
		frames = append(frames, newFrame(item, name, image, controls.FrameData{
			Index:   len(frames),
			Src:     src,
			Dst:     controls.NewRect(0, 0, src.W, src.H),
			SrcSize: controls.Point{X: src.W, Y: src.H},
		}))
	}

	for _, line := range strings.Split(content, "\n") {
		m := unityLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		isList, key, value := m[1] == "- ", m[2], m[3]

		if isList {
			if curSprite != prevSprite {
				add(curSprite, rect)
				prevSprite = curSprite
			}
			rect = unityRect{}
		}

		switch key {
		case "name":
			curSprite = value
		case "x":
			rect.x = unityInt(value)
		case "y":
			rect.y = unityInt(value)
		case "width":
			rect.width = unityInt(value)
		case "height":
			rect.height = unityInt(value)
		}
	}
	if curSprite != prevSprite {
		add(curSprite, rect)
	}

	if image == nil && curSprite != "" {
		return nil, ErrNoImage
	}
	return frames, nil
}

func unityInt(s string) int {
	n, _ := parseInt(s)
	return n
}
