package viewers

// --- Modifiers ---

// KeyModifiers is a bitmask of held modifier keys.
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether every bit of m is set.
func (k KeyModifiers) Has(m KeyModifiers) bool { return k&m == m }

// toggleSelection reports whether a click should toggle membership rather
// than replace the selection.
func (k KeyModifiers) toggleSelection() bool {
	return k&ModCtrl != 0 || k&ModMeta != 0
}

// --- Mouse ---

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
)

// DragDeadZone is how far (in pixels) the pointer must travel with the left
// button held before a drag starts.
const DragDeadZone = 4

// --- Keys ---

// Key is a navigation or command key understood by viewers.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyEnter
	KeyEscape
	KeySelectAll // ctrl+A
	KeyZoomIn
	KeyZoomOut
)
