package pack

import (
	"fmt"

	"github.com/Faultbox/packstudio/internal/controls"
)

// AssetPackImageFrame is a frame cut from a pack item. Only parsers create
// them.
type AssetPackImageFrame struct {
	*controls.ImageFrame
	packItem *AssetPackItem
}

func newFrame(item *AssetPackItem, name string, image controls.Image, data controls.FrameData) *AssetPackImageFrame {
	return &AssetPackImageFrame{
		ImageFrame: controls.NewImageFrame(name, image, data),
		packItem:   item,
	}
}

// PackItem returns the item the frame was cut from.
func (f *AssetPackImageFrame) PackItem() *AssetPackItem { return f.packItem }

func (f *AssetPackImageFrame) String() string {
	return fmt.Sprintf("%s/%s", f.packItem.Key(), f.Name())
}
