package loader

import (
	"bytes"
	"errors"
	"time"

	"github.com/JoshuaHockley/rlens/internal/logger"
	"github.com/JoshuaHockley/rlens/pkg/gallery"
	"github.com/JoshuaHockley/rlens/pkg/metrics"
	"github.com/JoshuaHockley/rlens/pkg/thumbcache"
)

// Options configures a Worker.
type Options struct {
	// Cache is the thumbnail store. Nil disables caching entirely.
	Cache *thumbcache.Store
	// ThumbnailSize bounds the longer side of generated thumbnails.
	ThumbnailSize int
	// Save controls whether freshly generated thumbnails are written
	// back to the cache.
	Save bool
	// Metrics may be nil.
	Metrics *metrics.PipelineMetrics
}

// Worker loads images one request at a time.
//
// The protocol alternates strictly: the worker sends Signal{Ready:
// true}, receives one Request, then sends the Result. Both channels
// should have capacity 1 so neither side blocks on a handoff the
// other has already committed to.
type Worker struct {
	opts     Options
	requests <-chan Request
	signals  chan<- Signal
}

// NewWorker wires a worker to its channels. Call Run on a dedicated
// goroutine to start serving.
func NewWorker(opts Options, requests <-chan Request, signals chan<- Signal) *Worker {
	if opts.ThumbnailSize <= 0 {
		panic("loader: non-positive thumbnail size")
	}
	return &Worker{opts: opts, requests: requests, signals: signals}
}

// Run serves requests until the request channel is closed, then closes
// the signal channel and returns.
func (w *Worker) Run() {
	defer close(w.signals)
	for {
		w.signals <- Signal{Ready: true}

		req, ok := <-w.requests
		if !ok {
			return
		}

		res := w.load(req)
		w.signals <- Signal{Result: &res}
	}
}

func (w *Worker) load(req Request) Result {
	start := time.Now()

	res := Result{Kind: req.Kind, Index: req.Index, Path: req.Path}
	switch req.Kind {
	case KindFull:
		res.Frame, res.Meta, res.Err = decodeFile(req.Path)
	case KindThumbnail:
		res.Frame, res.Meta, res.Err = w.loadThumbnail(req.Path)
	default:
		res.Err = errors.New("loader: unknown request kind")
	}
	res.Elapsed = time.Since(start)

	if res.Err != nil {
		logger.Warn("image load failed",
			logger.KeyKind, req.Kind.String(),
			logger.KeyPath, req.Path,
			logger.KeyError, res.Err)
		w.opts.Metrics.RecordFailure(req.Kind.String())
		return res
	}

	width, height := res.Frame.Size()
	logger.Debug("image loaded",
		logger.KeyKind, req.Kind.String(),
		logger.KeyPath, req.Path,
		logger.KeyWidth, width,
		logger.KeyHeight, height,
		logger.KeyDuration, res.Elapsed)
	w.opts.Metrics.RecordLoad(req.Kind.String(), res.Elapsed)
	return res
}

// loadThumbnail produces a downscaled rendition of the source, reusing
// a fresh cache artifact when one exists.
func (w *Worker) loadThumbnail(path string) (*Frame, gallery.Metadata, error) {
	canonical := ""
	if w.opts.Cache != nil {
		c, err := thumbcache.Canonicalize(path)
		if err != nil {
			logger.Warn("failed to canonicalize source path, skipping cache",
				logger.KeyPath, path, logger.KeyError, err)
		} else {
			canonical = c
		}
	}

	if canonical != "" {
		if frame, meta, ok := w.fromCache(canonical); ok {
			return frame, meta, nil
		}
	}

	full, meta, err := decodeFile(path)
	if err != nil {
		return nil, meta, err
	}
	thumb := full.Thumbnail(w.opts.ThumbnailSize)

	if canonical != "" && w.opts.Save {
		w.saveArtifact(canonical, thumb)
	}
	return thumb, meta, nil
}

// fromCache attempts to serve a thumbnail from the cache. The reported
// metadata describes the original source, read from its header, not
// the artifact.
func (w *Worker) fromCache(canonical string) (*Frame, gallery.Metadata, bool) {
	r, err := w.opts.Cache.Open(canonical)
	if err != nil {
		return nil, gallery.Metadata{}, false
	}
	defer r.Close()

	frame, _, err := decode(r, canonical)
	if err != nil {
		// A corrupt artifact should not poison the source; drop it
		// and regenerate.
		logger.Warn("discarding unreadable cache artifact",
			logger.KeyPath, canonical, logger.KeyError, err)
		_ = w.opts.Cache.Remove(canonical)
		return nil, gallery.Metadata{}, false
	}

	meta, err := probeMetadata(canonical)
	if err != nil {
		return nil, gallery.Metadata{}, false
	}
	return frame, meta, true
}

func (w *Worker) saveArtifact(canonical string, thumb *Frame) {
	var buf bytes.Buffer
	if err := encodePNG(thumb, &buf); err != nil {
		logger.Warn("failed to encode thumbnail artifact",
			logger.KeyPath, canonical, logger.KeyError, err)
		return
	}
	if _, err := w.opts.Cache.Put(canonical, &buf); err != nil {
		logger.Warn("failed to cache thumbnail",
			logger.KeyPath, canonical, logger.KeyError, err)
	}
}
