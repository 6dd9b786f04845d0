package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/JoshuaHockley/rlens/internal/logger"
	"github.com/JoshuaHockley/rlens/pkg/thumbcache"
)

// fileEvent reports that a source image changed on disk.
type fileEvent struct {
	path string
}

// watcher observes the directories containing the source images and
// surfaces change events for known paths.
//
// Directories are watched rather than files so replace-by-rename, the
// usual editor save pattern, is still observed.
type watcher struct {
	fs     *fsnotify.Watcher
	paths  map[string]struct{}
	events chan fileEvent
	done   chan struct{}
}

func newWatcher(paths []string) (*watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &watcher{
		fs:     fs,
		paths:  make(map[string]struct{}, len(paths)),
		events: make(chan fileEvent),
		done:   make(chan struct{}),
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		w.paths[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fs.Add(dir); err != nil {
			logger.Warn("failed to watch directory",
				logger.KeyPath, dir, logger.KeyError, err)
		}
	}

	go w.run()
	return w, nil
}

func (w *watcher) run() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			if _, known := w.paths[abs]; !known {
				continue
			}
			select {
			case w.events <- fileEvent{path: abs}:
			case <-w.done:
				return
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", logger.KeyError, err)

		case <-w.done:
			return
		}
	}
}

func (w *watcher) close() {
	close(w.done)
	_ = w.fs.Close()
}

// handleFileEvent drops every loaded resource of a changed entry and
// clears its failure mark so the next poll reloads it fresh. The
// cached thumbnail artifact is dropped too, since its source moved on.
func (p *Pipeline) handleFileEvent(ev fileEvent) {
	for _, e := range p.entries {
		abs, err := filepath.Abs(e.Path())
		if err != nil || abs != ev.path {
			continue
		}

		if tex, had := e.Full.Unload(); had {
			tex.Release()
		}
		if tex, had := e.Thumb.Unload(); had {
			tex.Release()
		}
		e.Meta.Unload()
		e.ForgetUnloadable()

		if p.opts.Cache != nil {
			canonical, err := thumbcache.Canonicalize(e.Path())
			if err != nil {
				// File may be gone; fall back to the plain absolute
				// path, which matches when no symlinks were involved.
				canonical = abs
			}
			_ = p.opts.Cache.Remove(canonical)
		}

		logger.Info("source changed, reloading", logger.KeyPath, e.Path())
		p.opts.Consumer.Invalidate()
	}
	p.updateGauges()
}
