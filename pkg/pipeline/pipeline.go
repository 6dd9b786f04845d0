// Package pipeline coordinates asynchronous image loading for a
// viewer session.
//
// A single loader worker serves one request at a time; the coordinator
// decides what to load next from the current cursor, view mode, and
// grid viewport, applies results to the entry list, and evicts loaded
// resources that fall outside the windows of interest. All state is
// owned by the coordinator goroutine; the public API posts commands to
// it and never touches entries directly.
package pipeline

import (
	"fmt"
	"time"

	"github.com/JoshuaHockley/rlens/internal/logger"
	"github.com/JoshuaHockley/rlens/pkg/gallery"
	"github.com/JoshuaHockley/rlens/pkg/loader"
	"github.com/JoshuaHockley/rlens/pkg/metrics"
	"github.com/JoshuaHockley/rlens/pkg/thumbcache"
)

// Mode selects which resources the pipeline prioritizes.
type Mode int

const (
	// ModeImage views a single image; full-resolution loads around the
	// cursor take priority.
	ModeImage Mode = iota
	// ModeGallery views the thumbnail grid; visible thumbnails take
	// priority, with full preloads filling spare capacity.
	ModeGallery
)

func (m Mode) String() string {
	switch m {
	case ModeImage:
		return "image"
	case ModeGallery:
		return "gallery"
	default:
		return "unknown"
	}
}

// Consumer receives the pipeline's output. Bind turns decoded pixels
// into a Texture the viewer can draw; Invalidate signals that entry
// state changed and a redraw is due.
//
// Both methods are called from the coordinator goroutine only.
type Consumer interface {
	Bind(frame *loader.Frame) (gallery.Texture, error)
	Invalidate()
}

// Options configures a Pipeline.
type Options struct {
	// Paths are the image files in viewing order.
	Paths []string
	// Consumer receives textures and redraw notifications.
	Consumer Consumer

	// Cache is the thumbnail store. Nil disables caching.
	Cache *thumbcache.Store
	// ThumbnailSize bounds the longer side of generated thumbnails.
	ThumbnailSize int
	// SaveThumbnails writes generated thumbnails back to the cache.
	SaveThumbnails bool

	// PreloadForward and PreloadBackward size the full-image preload
	// window around the cursor.
	PreloadForward  int
	PreloadBackward int

	// TileWidth and HeightWidthRatio configure the gallery grid.
	TileWidth        float64
	HeightWidthRatio float64

	// Watch enables reloading entries when their source files change.
	Watch bool

	// Metrics may be nil.
	Metrics *metrics.PipelineMetrics
}

// Pipeline owns the entry list and drives the loader worker.
type Pipeline struct {
	opts     Options
	entries  []*gallery.Entry
	grid     *gallery.Grid
	mode     Mode
	cursor   int
	viewport gallery.Size

	requests chan loader.Request
	signals  chan loader.Signal

	// workerParked is set while the worker has announced readiness and
	// no request has been sent; only then may dispatch send.
	workerParked bool
	inFlight     *loader.Request

	commands  chan func()
	stopCh    chan struct{}
	stoppedCh chan struct{}

	idleWaiters []chan struct{}

	watcher *watcher
}

// New builds a pipeline over the given image paths. Call Start to
// begin loading.
func New(opts Options) (*Pipeline, error) {
	if len(opts.Paths) == 0 {
		return nil, fmt.Errorf("pipeline: no images to view")
	}
	if opts.Consumer == nil {
		return nil, fmt.Errorf("pipeline: consumer is required")
	}
	if opts.ThumbnailSize <= 0 {
		return nil, fmt.Errorf("pipeline: invalid thumbnail size %d", opts.ThumbnailSize)
	}
	if opts.PreloadForward < 0 || opts.PreloadBackward < 0 {
		return nil, fmt.Errorf("pipeline: negative preload window")
	}

	p := &Pipeline{
		opts:      opts,
		entries:   gallery.NewList(opts.Paths),
		grid:      gallery.NewGrid(),
		requests:  make(chan loader.Request, 1),
		signals:   make(chan loader.Signal, 1),
		commands:  make(chan func()),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
	if opts.TileWidth > 0 {
		p.grid.SetTileWidth(opts.TileWidth)
	}
	if opts.HeightWidthRatio > 0 {
		p.grid.SetHeightWidthRatio(opts.HeightWidthRatio)
	}

	if opts.Watch {
		w, err := newWatcher(opts.Paths)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		p.watcher = w
	}
	return p, nil
}

// Start launches the worker and the coordinator goroutine.
func (p *Pipeline) Start() {
	worker := loader.NewWorker(loader.Options{
		Cache:         p.opts.Cache,
		ThumbnailSize: p.opts.ThumbnailSize,
		Save:          p.opts.SaveThumbnails,
		Metrics:       p.opts.Metrics,
	}, p.requests, p.signals)
	go worker.Run()
	go p.run()

	logger.Info("pipeline started",
		"images", len(p.entries),
		"preload_forward", p.opts.PreloadForward,
		"preload_backward", p.opts.PreloadBackward)
}

// Stop shuts the pipeline down, waiting up to timeout for the worker
// to finish any in-flight load.
func (p *Pipeline) Stop(timeout time.Duration) error {
	close(p.stopCh)
	select {
	case <-p.stoppedCh:
		logger.Debug("pipeline stopped")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("pipeline: shutdown timed out after %s", timeout)
	}
}

// run is the coordinator loop. It is the only goroutine that touches
// entries, the grid, and scheduling state.
func (p *Pipeline) run() {
	defer close(p.stoppedCh)

	var events <-chan fileEvent
	if p.watcher != nil {
		events = p.watcher.events
	}

	for {
		select {
		case sig := <-p.signals:
			if sig.Ready {
				p.workerParked = true
				p.dispatch()
			} else {
				p.apply(sig.Result)
			}

		case cmd := <-p.commands:
			cmd()
			p.dispatch()

		case ev := <-events:
			p.handleFileEvent(ev)
			p.dispatch()

		case <-p.stopCh:
			p.shutdown()
			return
		}
	}
}

// shutdown closes the worker's request channel and drains its signals
// until it exits, then releases every loaded texture.
func (p *Pipeline) shutdown() {
	if p.watcher != nil {
		p.watcher.close()
	}

	close(p.requests)
	for sig := range p.signals {
		if sig.Result != nil {
			// Discard without binding; the consumer is going away.
			logger.Debug("discarding in-flight result on shutdown",
				logger.KeyIndex, sig.Result.Index)
		}
	}

	for _, e := range p.entries {
		if tex, had := e.Full.Unload(); had {
			tex.Release()
		}
		if tex, had := e.Thumb.Unload(); had {
			tex.Release()
		}
	}
}

// do posts fn to the coordinator and waits for it to run. Returns
// false if the pipeline has stopped.
func (p *Pipeline) do(fn func()) bool {
	done := make(chan struct{})
	select {
	case p.commands <- func() { fn(); close(done) }:
	case <-p.stoppedCh:
		return false
	}
	select {
	case <-done:
		return true
	case <-p.stoppedCh:
		return false
	}
}

// SetCursor moves the cursor, shifting the preload window and the grid
// anchor. Out-of-range indices are clamped.
func (p *Pipeline) SetCursor(index int) {
	p.do(func() {
		if index < 0 {
			index = 0
		}
		if index >= len(p.entries) {
			index = len(p.entries) - 1
		}
		if index == p.cursor {
			return
		}
		p.cursor = index
		p.grid.SetCursor(index, p.viewport)
		p.sweep()
		logger.Debug("cursor moved", logger.KeyCursor, index)
	})
}

// SetMode switches between image and gallery viewing.
func (p *Pipeline) SetMode(mode Mode) {
	p.do(func() {
		if mode == p.mode {
			return
		}
		p.mode = mode
		p.sweep()
		logger.Debug("mode changed", logger.KeyMode, mode.String())
	})
}

// SetViewport updates the drawable area used for grid layout.
func (p *Pipeline) SetViewport(view gallery.Size) {
	p.do(func() {
		p.viewport = view
		p.sweep()
	})
}

// SetPreload resizes the full-image preload window. Negative values
// are clamped to zero. Shrinking the window evicts immediately.
func (p *Pipeline) SetPreload(forward, backward int) {
	p.do(func() {
		p.opts.PreloadForward = max(forward, 0)
		p.opts.PreloadBackward = max(backward, 0)
		p.sweep()
	})
}

// Reload drops everything loaded for an entry, including its failure
// mark, so the next poll loads it fresh from disk.
func (p *Pipeline) Reload(index int) {
	p.do(func() {
		if index < 0 || index >= len(p.entries) {
			return
		}
		e := p.entries[index]
		if tex, had := e.Full.Unload(); had {
			tex.Release()
		}
		if tex, had := e.Thumb.Unload(); had {
			tex.Release()
		}
		e.Meta.Unload()
		e.ForgetUnloadable()
		p.updateGauges()
		p.opts.Consumer.Invalidate()
	})
}

// Cursor returns the current cursor index.
func (p *Pipeline) Cursor() int {
	var c int
	p.do(func() { c = p.cursor })
	return c
}

// EntryState reports which resources are loaded for an entry.
type EntryState struct {
	Path       string
	Full       bool
	Thumb      bool
	Meta       gallery.Metadata
	HasMeta    bool
	Unloadable bool
}

// State returns a snapshot of an entry's load state.
func (p *Pipeline) State(index int) (EntryState, bool) {
	var (
		st EntryState
		ok bool
	)
	p.do(func() {
		if index < 0 || index >= len(p.entries) {
			return
		}
		e := p.entries[index]
		st = EntryState{
			Path:       e.Path(),
			Full:       e.Full.IsLoaded(),
			Thumb:      e.Thumb.IsLoaded(),
			Unloadable: e.Unloadable(),
		}
		st.Meta, st.HasMeta = e.Meta.Loaded()
		ok = true
	})
	return st, ok
}

// Len returns the number of entries.
func (p *Pipeline) Len() int {
	return len(p.entries)
}

// WaitIdle blocks until the worker is parked with nothing left to
// load, or the pipeline stops.
func (p *Pipeline) WaitIdle() {
	ch := make(chan struct{})
	ok := p.do(func() {
		if p.idle() {
			close(ch)
			return
		}
		p.idleWaiters = append(p.idleWaiters, ch)
	})
	if !ok {
		return
	}
	select {
	case <-ch:
	case <-p.stoppedCh:
	}
}

// idle reports whether no load is running and nothing is schedulable.
func (p *Pipeline) idle() bool {
	if !p.workerParked || p.inFlight != nil {
		return false
	}
	_, ok := p.pollNext()
	return !ok
}

func (p *Pipeline) notifyIfIdle() {
	if len(p.idleWaiters) == 0 || !p.idle() {
		return
	}
	for _, ch := range p.idleWaiters {
		close(ch)
	}
	p.idleWaiters = nil
}
