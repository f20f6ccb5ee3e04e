package controls_test

import (
	"image"
	"testing"

	"github.com/Faultbox/packstudio/internal/controls"
	"github.com/Faultbox/packstudio/internal/controls/canvastest"
)

func TestImageFramePaintRestoresTrim(t *testing.T) {
	bmp := image.NewRGBA(image.Rect(0, 0, 64, 64))
	img := controls.NewReadyImage("atlas.png", bmp)

	frame := controls.NewImageFrame("walk-1", img, controls.FrameData{
		Src:     controls.NewRect(10, 10, 16, 16),
		Dst:     controls.NewRect(8, 0, 16, 16),
		SrcSize: controls.Point{X: 32, Y: 32},
	})

	rec := canvastest.New(100, 100)
	frame.Paint(rec, 0, 0, 64, 64, false)

	if rec.Count("image") != 1 {
		t.Fatalf("expected one image blit, got %d", rec.Count("image"))
	}
	op := rec.Ops[0]
	// 32x32 untrimmed bounds scaled by 2 into the 64x64 cell.
	if op.Rect != controls.NewRect(16, 0, 32, 32) {
		t.Errorf("unexpected destination %+v", op.Rect)
	}
	if op.Src != controls.NewRect(10, 10, 16, 16) {
		t.Errorf("unexpected source %+v", op.Src)
	}
}

func TestImageFramePlaceholderWhenNotReady(t *testing.T) {
	img := controls.NewFileImage("later.png", controls.ImageLoaderFunc(nil))
	frame := controls.NewImageFrame("f", img, controls.FrameData{Src: controls.NewRect(0, 0, 8, 8)})

	rec := canvastest.New(50, 50)
	frame.Paint(rec, 0, 0, 32, 32, true)

	if rec.Count("image") != 0 {
		t.Error("expected no image blit before the image is ready")
	}
	if rec.Count("fill") == 0 {
		t.Error("expected placeholder dashes")
	}
}

func TestRegionTranslates(t *testing.T) {
	rec := canvastest.New(200, 200)
	region := controls.NewRegion(rec, controls.NewRect(50, 60, 100, 100))

	region.FillRect(controls.NewRect(1, 2, 3, 4), controls.ColorWhite)
	region.DrawText("hi", 5, 5, controls.ColorWhite)

	if rec.Ops[0].Rect != controls.NewRect(51, 62, 3, 4) {
		t.Errorf("unexpected translated fill %+v", rec.Ops[0].Rect)
	}
	if rec.Ops[1].Rect.X != 55 || rec.Ops[1].Rect.Y != 65 {
		t.Errorf("unexpected translated text %+v", rec.Ops[1].Rect)
	}
	if w, h := region.Size(); w != 100 || h != 100 {
		t.Errorf("unexpected region size %vx%v", w, h)
	}
}

func TestTrimText(t *testing.T) {
	rec := canvastest.New(100, 100)
	if got := controls.TrimText(rec, "short", 100); got != "short" {
		t.Errorf("expected untouched text, got %q", got)
	}
	if got := controls.TrimText(rec, "a_very_long_label", 70); got != "a_very_..." {
		t.Errorf("unexpected trimmed text %q", got)
	}
}
