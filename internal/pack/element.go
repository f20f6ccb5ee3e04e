package pack

// Element is a node of a pack viewer: an *AssetPack, an *AssetPackItem, an
// *AssetPackImageFrame or a SectionType. The set is closed.
type Element interface {
	isElement()
}

// SectionType groups the items of one type in a pack viewer.
type SectionType string

func (SectionType) isElement()          {}
func (*AssetPack) isElement()           {}
func (*AssetPackItem) isElement()       {}
func (*AssetPackImageFrame) isElement() {}

// Sections returns the types as section elements.
func Sections(types []string) []Element {
	out := make([]Element, len(types))
	for i, t := range types {
		out[i] = SectionType(t)
	}
	return out
}
