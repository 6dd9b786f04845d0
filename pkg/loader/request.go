// Package loader implements the image loading worker: decoding source
// files, generating thumbnails, and reusing cached artifacts.
//
// The worker serves one request at a time over a pair of channels. It
// announces readiness before each receive, so the coordinator always
// knows whether a send would be accepted immediately.
package loader

import (
	"time"

	"github.com/JoshuaHockley/rlens/pkg/gallery"
)

// Kind distinguishes the two load operations.
type Kind int

const (
	// KindFull loads the image at its native resolution.
	KindFull Kind = iota
	// KindThumbnail loads a downscaled rendition, via the cache when
	// a fresh artifact exists.
	KindThumbnail
)

func (k Kind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindThumbnail:
		return "thumbnail"
	default:
		return "unknown"
	}
}

// Request asks the worker to load one image.
type Request struct {
	Kind  Kind
	Index int
	Path  string
}

// Result reports the outcome of a Request.
//
// On success Frame holds the decoded pixels and Meta the source
// image's properties. On failure Err is set and Frame is nil.
type Result struct {
	Kind    Kind
	Index   int
	Path    string
	Frame   *Frame
	Meta    gallery.Metadata
	Err     error
	Elapsed time.Duration
}

// Signal is the worker's side of the handoff: either a readiness
// announcement (Ready true, Result nil) or a completed load.
type Signal struct {
	Ready  bool
	Result *Result
}
