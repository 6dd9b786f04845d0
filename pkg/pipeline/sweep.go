package pipeline

import (
	"github.com/JoshuaHockley/rlens/internal/logger"
	"github.com/JoshuaHockley/rlens/pkg/gallery"
)

// sweep releases loaded resources that fell outside the windows of
// interest: full images beyond the preload window, thumbnails beyond
// the visible grid.
//
// Runs after every applied result and after any command that moves a
// window, so the number of loaded full images never exceeds the
// preload window size plus the cursor's own slot.
func (p *Pipeline) sweep() {
	first, tiles, gridOK := p.grid.VisibleRange(p.viewport)

	var evictedFull, evictedThumb int
	for i, e := range p.entries {
		off := gallery.CalculateOffset(p.cursor, i, len(p.entries))
		if !off.InRange(p.opts.PreloadForward, p.opts.PreloadBackward) {
			if tex, had := e.Full.Unload(); had {
				tex.Release()
				evictedFull++
			}
		}

		visible := gridOK && i >= first && i < first+tiles
		if !visible {
			if tex, had := e.Thumb.Unload(); had {
				tex.Release()
				evictedThumb++
			}
		}
	}

	if evictedFull > 0 {
		p.opts.Metrics.RecordEviction("full", evictedFull)
	}
	if evictedThumb > 0 {
		p.opts.Metrics.RecordEviction("thumbnail", evictedThumb)
	}
	if evictedFull > 0 || evictedThumb > 0 {
		logger.Debug("evicted resources",
			"full", evictedFull, "thumbnails", evictedThumb)
	}

	p.updateGauges()
}

func (p *Pipeline) updateGauges() {
	var fulls, thumbs int
	for _, e := range p.entries {
		if e.Full.IsLoaded() {
			fulls++
		}
		if e.Thumb.IsLoaded() {
			thumbs++
		}
	}
	p.opts.Metrics.SetLoaded(fulls, thumbs)
}
