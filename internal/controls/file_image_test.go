package controls

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingLoader struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (l *countingLoader) LoadImage(ctx context.Context, url string) (image.Image, error) {
	l.calls.Add(1)
	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if l.err != nil {
		return nil, l.err
	}
	return image.NewRGBA(image.Rect(0, 0, 32, 16)), nil
}

func TestFileImagePreloadIdempotent(t *testing.T) {
	loader := &countingLoader{delay: 20 * time.Millisecond}
	img := NewFileImage("sprites/hero.png", loader)

	if img.Width() != PlaceholderSize || img.Height() != PlaceholderSize {
		t.Errorf("expected placeholder size before load, got %vx%v", img.Width(), img.Height())
	}

	var wg sync.WaitGroup
	results := make([]PreloadResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = img.Preload(context.Background())
		}(i)
	}
	wg.Wait()

	if n := loader.calls.Load(); n != 1 {
		t.Fatalf("expected exactly one load, got %d", n)
	}
	if img.State() != ImageReady {
		t.Fatalf("expected ready, got %s", img.State())
	}
	// Callers that joined the flight share its result; a straggler arriving
	// after it finished sees the terminal state instead.
	loaded := 0
	for _, r := range results {
		if r == ResourcesLoaded {
			loaded++
		}
	}
	if loaded == 0 {
		t.Error("expected at least one caller to observe resources-loaded")
	}

	if r := img.Preload(context.Background()); r != NothingLoaded {
		t.Errorf("expected nothing-loaded after success, got %s", r)
	}
	if n := loader.calls.Load(); n != 1 {
		t.Errorf("expected no further loads, got %d", n)
	}
	if img.Width() != 32 || img.Height() != 16 {
		t.Errorf("expected natural size 32x16, got %vx%v", img.Width(), img.Height())
	}
}

func TestFileImagePreloadErrorIsTerminal(t *testing.T) {
	loader := &countingLoader{err: errors.New("404")}
	img := NewFileImage("missing.png", loader)

	if r := img.Preload(context.Background()); r != NothingLoaded {
		t.Errorf("expected nothing-loaded on failure, got %s", r)
	}
	if img.State() != ImageError {
		t.Fatalf("expected error state, got %s", img.State())
	}
	if img.Err() == nil {
		t.Error("expected the load error to be kept")
	}

	img.Preload(context.Background())
	if n := loader.calls.Load(); n != 1 {
		t.Errorf("expected the error to be terminal, got %d loads", n)
	}
}

func TestFileImagePreloadCancelled(t *testing.T) {
	loader := &countingLoader{delay: time.Second}
	img := NewFileImage("slow.png", loader)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if r := img.Preload(ctx); r != NothingLoaded {
		t.Errorf("expected nothing-loaded, got %s", r)
	}
	if img.State() != ImageUnloaded {
		t.Errorf("expected a cancelled load to leave the image unloaded, got %s", img.State())
	}
}

// gateLoader blocks the first load until its context ends, and loads
// immediately after that.
type gateLoader struct {
	calls   atomic.Int32
	started chan struct{}
}

func (l *gateLoader) LoadImage(ctx context.Context, url string) (image.Image, error) {
	if l.calls.Add(1) == 1 {
		close(l.started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return image.NewRGBA(image.Rect(0, 0, 8, 8)), nil
}

func TestFileImageJoinerSurvivesCancelledFlight(t *testing.T) {
	loader := &gateLoader{started: make(chan struct{})}
	img := NewFileImage("shared.png", loader)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan PreloadResult)
	go func() { first <- img.Preload(ctx) }()
	<-loader.started

	second := make(chan PreloadResult)
	go func() { second <- img.Preload(context.Background()) }()
	// Let the second caller join the running flight before it is cancelled.
	time.Sleep(20 * time.Millisecond)
	cancel()

	if r := <-first; r != NothingLoaded {
		t.Errorf("expected the cancelled caller to get nothing-loaded, got %s", r)
	}
	if r := <-second; r != ResourcesLoaded {
		t.Errorf("expected the live caller to load, got %s", r)
	}
	if img.State() != ImageReady {
		t.Errorf("expected ready, got %s", img.State())
	}
	if n := loader.calls.Load(); n != 2 {
		t.Errorf("expected one retried load, got %d loads", n)
	}
}

func TestImageCache(t *testing.T) {
	cache := NewImageCache(&countingLoader{})

	a := cache.Image("a.png", "1")
	if cache.Image("a.png", "1") != a {
		t.Error("expected the same image for the same url and key")
	}
	if cache.Image("a.png", "2") == a {
		t.Error("expected a different image for a new cache key")
	}

	hits, misses := cache.Stats()
	if hits != 1 || misses != 2 {
		t.Errorf("expected 1 hit / 2 misses, got %d / %d", hits, misses)
	}
	if cache.Len() != 2 {
		t.Errorf("expected 2 cached images, got %d", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Error("expected empty cache after Clear")
	}
}

func TestDragSlotConsumeOnce(t *testing.T) {
	slot := NewDragSlot()
	if _, ok := slot.Consume(); ok {
		t.Error("expected empty slot")
	}

	slot.Start([]any{"a", "b"})
	if p, ok := slot.Peek(); !ok || len(p) != 2 {
		t.Errorf("unexpected peek %v %v", p, ok)
	}

	p, ok := slot.Consume()
	if !ok || len(p) != 2 || p[0] != "a" {
		t.Errorf("unexpected payload %v", p)
	}
	if _, ok := slot.Consume(); ok {
		t.Error("expected the payload to be consumed once")
	}
}
