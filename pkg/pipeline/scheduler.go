package pipeline

import (
	"github.com/JoshuaHockley/rlens/pkg/gallery"
	"github.com/JoshuaHockley/rlens/pkg/loader"
)

// dispatch sends the next schedulable request if the worker is parked.
// Called whenever scheduling inputs may have changed.
func (p *Pipeline) dispatch() {
	if !p.workerParked {
		p.notifyIfIdle()
		return
	}

	req, ok := p.pollNext()
	if !ok {
		p.notifyIfIdle()
		return
	}

	// The worker announced readiness and is parked on a receive, so
	// this send cannot block meaningfully.
	p.requests <- req
	p.inFlight = &req
	p.workerParked = false
}

// pollNext picks the most urgent load. Thumbnails for the visible grid
// come first in gallery mode; full images around the cursor fill the
// rest in both modes, so returning to the image view stays instant.
func (p *Pipeline) pollNext() (loader.Request, bool) {
	if p.mode == ModeGallery {
		if req, ok := p.pollThumb(); ok {
			return req, true
		}
	}
	return p.pollFull()
}

// pollFull scans the preload window around the cursor and picks the
// unloaded full image nearest the cursor, forward side winning ties.
func (p *Pipeline) pollFull() (loader.Request, bool) {
	var (
		best    loader.Request
		bestKey int
		found   bool
	)
	for i, e := range p.entries {
		off := gallery.CalculateOffset(p.cursor, i, len(p.entries))
		if !off.InRange(p.opts.PreloadForward, p.opts.PreloadBackward) {
			continue
		}
		if !p.wantsFull(i, e) {
			continue
		}
		if key := off.Key(); !found || key < bestKey {
			best = loader.Request{Kind: loader.KindFull, Index: i, Path: e.Path()}
			bestKey = key
			found = true
		}
	}
	return best, found
}

// pollThumb picks the lowest-index visible grid tile without a
// thumbnail.
func (p *Pipeline) pollThumb() (loader.Request, bool) {
	first, tiles, ok := p.grid.VisibleRange(p.viewport)
	if !ok {
		return loader.Request{}, false
	}
	for i := max(first, 0); i < min(first+tiles, len(p.entries)); i++ {
		e := p.entries[i]
		if !p.wantsThumb(i, e) {
			continue
		}
		return loader.Request{Kind: loader.KindThumbnail, Index: i, Path: e.Path()}, true
	}
	return loader.Request{}, false
}

func (p *Pipeline) wantsFull(i int, e *gallery.Entry) bool {
	if e.Full.IsLoaded() || e.Unloadable() {
		return false
	}
	return !p.isInFlight(loader.KindFull, i)
}

func (p *Pipeline) wantsThumb(i int, e *gallery.Entry) bool {
	if e.Thumb.IsLoaded() || e.Unloadable() {
		return false
	}
	return !p.isInFlight(loader.KindThumbnail, i)
}

func (p *Pipeline) isInFlight(kind loader.Kind, index int) bool {
	return p.inFlight != nil && p.inFlight.Kind == kind && p.inFlight.Index == index
}

// apply folds a worker result into the entry list, then evicts
// anything the result pushed out of interest.
func (p *Pipeline) apply(res *loader.Result) {
	if p.inFlight != nil && p.inFlight.Kind == res.Kind && p.inFlight.Index == res.Index {
		p.inFlight = nil
	}

	e := p.entries[res.Index]

	if res.Err != nil {
		// Stop retrying the entry until its file changes.
		if !e.Full.IsLoaded() {
			e.MarkUnloadable()
		}
		p.opts.Consumer.Invalidate()
		p.sweep()
		return
	}

	tex, err := p.opts.Consumer.Bind(res.Frame)
	if err != nil {
		if !e.Full.IsLoaded() {
			e.MarkUnloadable()
		}
		p.opts.Metrics.RecordFailure(res.Kind.String())
		p.opts.Consumer.Invalidate()
		p.sweep()
		return
	}

	switch res.Kind {
	case loader.KindFull:
		e.Full.Load(tex)
	case loader.KindThumbnail:
		e.Thumb.Load(tex)
	}
	e.Meta.SetLoaded(res.Meta)

	p.opts.Consumer.Invalidate()
	p.sweep()
}
