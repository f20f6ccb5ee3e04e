package pack

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Faultbox/packstudio/internal/controls"
)

// subTexture is one SubTexture element of a Starling style XML atlas.
type subTexture struct {
	Name        string  `xml:"name,attr"`
	X           string  `xml:"x,attr"`
	Y           string  `xml:"y,attr"`
	Width       string  `xml:"width,attr"`
	Height      string  `xml:"height,attr"`
	FrameX      *string `xml:"frameX,attr"`
	FrameY      string  `xml:"frameY,attr"`
	FrameWidth  string  `xml:"frameWidth,attr"`
	FrameHeight string  `xml:"frameHeight,attr"`
}

// parseXMLAtlas reads every SubTexture element, at any depth. x, y, width
// and height give the region in the texture. frameX, frameY, frameWidth
// and frameHeight, when present, place the trimmed sprite; otherwise it
// covers the region.
func parseXMLAtlas(item *AssetPackItem, image controls.Image, content string) ([]*AssetPackImageFrame, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	var frames []*AssetPackImageFrame
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, fmt.Errorf("atlas XML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "SubTexture" {
			continue
		}
		var st subTexture
		if err := dec.DecodeElement(&st, &start); err != nil {
			return frames, fmt.Errorf("atlas XML SubTexture %d: %w", len(frames), err)
		}
		frames = append(frames, newFrame(item, st.Name, image, st.frameData(len(frames))))
	}
}

func (st subTexture) frameData(index int) controls.FrameData {
	x, y, w, h := xmlInt(st.X), xmlInt(st.Y), xmlInt(st.Width), xmlInt(st.Height)
	dst := controls.NewRect(x, y, w, h)
	if st.FrameX != nil {
		dst = controls.NewRect(xmlInt(*st.FrameX), xmlInt(st.FrameY), xmlInt(st.FrameWidth), xmlInt(st.FrameHeight))
	}
	return controls.FrameData{
		Index:   index,
		Src:     controls.NewRect(x, y, w, h),
		Dst:     dst,
		SrcSize: controls.Point{X: w, Y: h},
	}
}

// xmlInt reads an integer attribute; missing or malformed values are 0.
func xmlInt(s string) float32 {
	n, _ := parseInt(s)
	return float32(n)
}
