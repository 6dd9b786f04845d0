package logger

// Standard field keys for structured logging.
// Use these consistently across log statements so output stays
// greppable.
const (
	// Image identification
	KeyPath  = "path"  // source image path
	KeyIndex = "index" // position in the image list
	KeyKind  = "kind"  // resource kind: full, thumbnail

	// Image properties
	KeyWidth  = "width"  // image width in pixels
	KeyHeight = "height" // image height in pixels
	KeyFormat = "format" // encoded format, e.g. png

	// Thumbnail cache
	KeyArtifact = "artifact" // on-disk thumbnail artifact path
	KeyCacheKey = "key"      // content-derived cache key
	KeySize     = "size"     // size in bytes

	// Pipeline
	KeyCursor   = "cursor"   // current cursor position
	KeyMode     = "mode"     // view mode: image, gallery
	KeyDuration = "duration" // operation duration
	KeyError    = "error"    // error detail
)
