package host

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/packstudio/internal/controls/viewers"
)

func TestKeyFor(t *testing.T) {
	tests := []struct {
		sym  sdl.Keycode
		mods viewers.KeyModifiers
		want viewers.Key
	}{
		{sdl.K_UP, 0, viewers.KeyUp},
		{sdl.K_END, 0, viewers.KeyEnd},
		{sdl.K_KP_ENTER, 0, viewers.KeyEnter},
		{sdl.K_a, 0, viewers.KeyNone},
		{sdl.K_a, viewers.ModCtrl, viewers.KeySelectAll},
		{sdl.K_a, viewers.ModMeta, viewers.KeySelectAll},
		{sdl.K_EQUALS, viewers.ModCtrl, viewers.KeyZoomIn},
		{sdl.K_MINUS, 0, viewers.KeyNone},
	}
	for _, tt := range tests {
		if got := KeyFor(tt.sym, tt.mods); got != tt.want {
			t.Errorf("KeyFor(%v, %v) = %v, want %v", tt.sym, tt.mods, got, tt.want)
		}
	}
}

func TestModifiers(t *testing.T) {
	got := Modifiers(sdl.KMOD_LSHIFT | sdl.KMOD_RCTRL)
	if !got.Has(viewers.ModShift | viewers.ModCtrl) {
		t.Errorf("expected shift and ctrl, got %v", got)
	}
	if got.Has(viewers.ModAlt) || got.Has(viewers.ModMeta) {
		t.Errorf("unexpected modifiers %v", got)
	}
}

func TestTranslateMouse(t *testing.T) {
	e, ok := Translate(&sdl.MouseButtonEvent{
		Type:   sdl.MOUSEBUTTONDOWN,
		Button: sdl.BUTTON_LEFT,
		Clicks: 1,
		X:      10,
		Y:      20,
	}, sdl.KMOD_LSHIFT, 2)
	if !ok || e.Type != EventMouseDown || e.X != 20 || e.Y != 40 || !e.Mods.Has(viewers.ModShift) {
		t.Errorf("unexpected event %+v", e)
	}

	e, _ = Translate(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT, Clicks: 2}, 0, 1)
	if e.Type != EventDoubleClick {
		t.Errorf("expected a double click, got %v", e.Type)
	}

	if _, ok := Translate(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: 9}, 0, 1); ok {
		t.Error("expected extra buttons to be ignored")
	}

	e, _ = Translate(&sdl.MouseWheelEvent{Y: 1}, sdl.KMOD_LCTRL, 1)
	if e.Type != EventWheel || e.Wheel != 1 || !e.Mods.Has(viewers.ModCtrl) {
		t.Errorf("unexpected wheel event %+v", e)
	}

	e, _ = Translate(&sdl.MouseWheelEvent{Y: 1, Direction: sdl.MOUSEWHEEL_FLIPPED}, 0, 1)
	if e.Wheel != -1 {
		t.Errorf("expected a flipped wheel to be negated, got %v", e.Wheel)
	}
}

func TestTranslateKeyboard(t *testing.T) {
	e, ok := Translate(&sdl.KeyboardEvent{
		Type:   sdl.KEYDOWN,
		Keysym: sdl.Keysym{Sym: sdl.K_a, Mod: uint16(sdl.KMOD_LCTRL)},
	}, 0, 1)
	if !ok || e.Key != viewers.KeySelectAll {
		t.Errorf("expected ctrl+A to select all, got %+v", e)
	}
	if _, ok := Translate(&sdl.KeyboardEvent{Type: sdl.KEYUP}, 0, 1); ok {
		t.Error("key up events are ignored")
	}
}
