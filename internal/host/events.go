package host

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/packstudio/internal/controls/viewers"
)

// EventType classifies translated events.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventResize
	EventKeyDown
	EventText
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventDoubleClick
	EventWheel
	EventDropFile
)

// Event is an SDL event in viewer terms.
type Event struct {
	Type   EventType
	Key    viewers.Key
	Sym    sdl.Keycode
	Mods   viewers.KeyModifiers
	X, Y   float32
	Button viewers.MouseButton
	Wheel  float32
	Text   string
	Width  int
	Height int
}

// Input polls SDL and keeps the events of the last poll.
type Input struct {
	events []Event
	scale  float32
}

// NewInput returns an input handler. scale converts window coordinates to
// canvas pixels.
func NewInput() *Input {
	return &Input{events: make([]Event, 0, 16), scale: 1}
}

// SetScale sets the window to canvas coordinate scale.
func (in *Input) SetScale(scale float32) { in.scale = scale }

// Poll drains the SDL queue. It reports whether the window should close.
func (in *Input) Poll() bool {
	in.events = in.events[:0]
	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		e, ok := Translate(event, sdl.GetModState(), in.scale)
		if !ok {
			continue
		}
		if e.Type == EventQuit {
			quit = true
		}
		in.events = append(in.events, e)
	}
	return quit
}

// Events returns the events of the last Poll.
func (in *Input) Events() []Event { return in.events }

// Translate converts one SDL event. mods is the modifier state to attach
// to mouse events.
func Translate(event sdl.Event, mods sdl.Keymod, scale float32) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{Type: EventResize, Width: int(e.Data1), Height: int(e.Data2)}, true
		}

	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN {
			return Event{}, false
		}
		m := Modifiers(sdl.Keymod(e.Keysym.Mod))
		return Event{
			Type: EventKeyDown,
			Key:  KeyFor(e.Keysym.Sym, m),
			Sym:  e.Keysym.Sym,
			Mods: m,
		}, true

	case *sdl.TextInputEvent:
		return Event{Type: EventText, Text: e.GetText()}, true

	case *sdl.MouseMotionEvent:
		return Event{
			Type: EventMouseMove,
			X:    float32(e.X) * scale,
			Y:    float32(e.Y) * scale,
			Mods: Modifiers(mods),
		}, true

	case *sdl.MouseButtonEvent:
		button, ok := buttonFor(e.Button)
		if !ok {
			return Event{}, false
		}
		ev := Event{
			X:      float32(e.X) * scale,
			Y:      float32(e.Y) * scale,
			Button: button,
			Mods:   Modifiers(mods),
		}
		switch {
		case e.Type == sdl.MOUSEBUTTONDOWN && e.Clicks == 2 && button == viewers.MouseLeft:
			ev.Type = EventDoubleClick
		case e.Type == sdl.MOUSEBUTTONDOWN:
			ev.Type = EventMouseDown
		default:
			ev.Type = EventMouseUp
		}
		return ev, true

	case *sdl.MouseWheelEvent:
		dy := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			dy = -dy
		}
		return Event{Type: EventWheel, Wheel: dy, Mods: Modifiers(mods)}, true

	case *sdl.DropEvent:
		if e.Type == sdl.DROPFILE {
			return Event{Type: EventDropFile, Text: e.File}, true
		}
	}
	return Event{}, false
}

// Modifiers maps SDL modifier bits to viewer modifiers.
func Modifiers(m sdl.Keymod) viewers.KeyModifiers {
	var out viewers.KeyModifiers
	if m&sdl.KMOD_SHIFT != 0 {
		out |= viewers.ModShift
	}
	if m&sdl.KMOD_CTRL != 0 {
		out |= viewers.ModCtrl
	}
	if m&sdl.KMOD_ALT != 0 {
		out |= viewers.ModAlt
	}
	if m&sdl.KMOD_GUI != 0 {
		out |= viewers.ModMeta
	}
	return out
}

// KeyFor maps a key symbol to a viewer key, or KeyNone.
func KeyFor(sym sdl.Keycode, mods viewers.KeyModifiers) viewers.Key {
	command := mods&viewers.ModCtrl != 0 || mods&viewers.ModMeta != 0
	switch sym {
	case sdl.K_UP:
		return viewers.KeyUp
	case sdl.K_DOWN:
		return viewers.KeyDown
	case sdl.K_LEFT:
		return viewers.KeyLeft
	case sdl.K_RIGHT:
		return viewers.KeyRight
	case sdl.K_HOME:
		return viewers.KeyHome
	case sdl.K_END:
		return viewers.KeyEnd
	case sdl.K_PAGEUP:
		return viewers.KeyPageUp
	case sdl.K_PAGEDOWN:
		return viewers.KeyPageDown
	case sdl.K_RETURN, sdl.K_KP_ENTER:
		return viewers.KeyEnter
	case sdl.K_ESCAPE:
		return viewers.KeyEscape
	case sdl.K_a:
		if command {
			return viewers.KeySelectAll
		}
	case sdl.K_EQUALS, sdl.K_PLUS, sdl.K_KP_PLUS:
		if command {
			return viewers.KeyZoomIn
		}
	case sdl.K_MINUS, sdl.K_KP_MINUS:
		if command {
			return viewers.KeyZoomOut
		}
	}
	return viewers.KeyNone
}

func buttonFor(b uint8) (viewers.MouseButton, bool) {
	switch b {
	case sdl.BUTTON_LEFT:
		return viewers.MouseLeft, true
	case sdl.BUTTON_MIDDLE:
		return viewers.MouseMiddle, true
	case sdl.BUTTON_RIGHT:
		return viewers.MouseRight, true
	}
	return 0, false
}
