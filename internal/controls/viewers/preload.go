package viewers

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/packstudio/internal/controls"
)

// Dispatcher runs functions on the UI goroutine.
type Dispatcher interface {
	Post(fn func())
}

// QueueDispatcher collects posted functions until the UI loop drains them.
type QueueDispatcher struct {
	mu    sync.Mutex
	queue []func()
}

// NewQueueDispatcher returns an empty queue.
func NewQueueDispatcher() *QueueDispatcher {
	return &QueueDispatcher{}
}

func (q *QueueDispatcher) Post(fn func()) {
	q.mu.Lock()
	q.queue = append(q.queue, fn)
	q.mu.Unlock()
}

// Drain runs every queued function on the calling goroutine and returns how
// many ran.
func (q *QueueDispatcher) Drain() int {
	q.mu.Lock()
	fns := q.queue
	q.queue = nil
	q.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// SetContext sets the parent context of background preloads. Cancelling it
// stops them.
func (v *Viewer[T]) SetContext(ctx context.Context) { v.ctx = ctx }

// SetDispatcher sets where follow-up repaints are posted.
func (v *Viewer[T]) SetDispatcher(d Dispatcher) { v.dispatcher = d }

// Dispatcher returns the viewer's dispatcher.
func (v *Viewer[T]) Dispatcher() Dispatcher { return v.dispatcher }

// SetPreloadWorkers bounds how many nodes preload concurrently.
func (v *Viewer[T]) SetPreloadWorkers(n int) { v.workers = max(n, 1) }

// WaitPreload blocks until every background preload has finished.
func (v *Viewer[T]) WaitPreload() { v.preloads.Wait() }

// Generation returns the stamp of the most recent preload.
func (v *Viewer[T]) Generation() uint64 { return v.generation.Load() }

type preloadJob[T comparable] struct {
	renderer CellRenderer[T]
	obj      T
}

// visibleJobs collects one job per distinct node whose paint item overlaps
// the viewport.
func (v *Viewer[T]) visibleJobs() []preloadJob[T] {
	if v.cellRendererProvider == nil {
		return nil
	}
	viewport := controls.NewRect(0, 0, v.width, v.height)
	seen := make(map[T]bool)
	var jobs []preloadJob[T]
	for _, item := range v.paintItems {
		if seen[item.Obj] || item.Rect.Intersect(viewport).Empty() {
			continue
		}
		seen[item.Obj] = true
		if r := v.cellRendererProvider.CellRenderer(item.Obj); r != nil {
			jobs = append(jobs, preloadJob[T]{renderer: r, obj: item.Obj})
		}
	}
	return jobs
}

// schedulePreload starts a background preload stamped with a new generation
// and cancels the previous one. Only the current generation requests the
// follow-up paint, and requests coalesce into a single paint until it has
// run. The follow-up paint does not preload again.
func (v *Viewer[T]) schedulePreload() {
	jobs := v.visibleJobs()
	gen := v.generation.Add(1)

	if v.cancelPreload != nil {
		v.cancelPreload()
		v.cancelPreload = nil
	}
	if len(jobs) == 0 {
		return
	}

	ctx, cancel := context.WithCancel(v.ctx)
	v.cancelPreload = cancel

	v.preloads.Add(1)
	go func() {
		defer v.preloads.Done()

		if v.preloadJobs(ctx, jobs) != controls.ResourcesLoaded {
			return
		}
		if gen != v.generation.Load() {
			v.log.Debug("dropping stale preload", zap.Uint64("generation", gen))
			return
		}
		v.log.Debug("preload loaded resources", zap.Uint64("generation", gen))
		if !v.repaintPending.CompareAndSwap(false, true) {
			return
		}
		v.dispatcher.Post(func() {
			v.repaintPending.Store(false)
			if v.canvas != nil {
				v.paintGuarded(v.canvas)
			}
		})
	}()
}

func (v *Viewer[T]) preloadJobs(ctx context.Context, jobs []preloadJob[T]) controls.PreloadResult {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)

	var loaded atomic.Bool
	for _, job := range jobs {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					v.log.Error("preload failed", zap.Any("panic", r))
				}
			}()
			if job.renderer.Preload(gctx, job.obj) == controls.ResourcesLoaded {
				loaded.Store(true)
			}
			return nil
		})
	}
	_ = g.Wait()

	if loaded.Load() {
		return controls.ResourcesLoaded
	}
	return controls.NothingLoaded
}

// PreloadVisible preloads the visible nodes on the calling goroutine and
// reports whether anything was loaded. Headless callers use it between two
// Paint calls.
func (v *Viewer[T]) PreloadVisible(ctx context.Context) controls.PreloadResult {
	return v.preloadJobs(ctx, v.visibleJobs())
}
