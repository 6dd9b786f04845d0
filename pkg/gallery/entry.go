package gallery

// Texture is a renderer-owned handle to a decoded image.
//
// The pipeline never inspects pixel data through this interface; it
// only tracks sizes and releases handles when entries are evicted.
type Texture interface {
	// Size returns the image dimensions in pixels.
	Size() (width, height int)

	// Release frees the underlying resource. The handle must not be
	// used afterwards.
	Release()
}

// Metadata describes a source image without holding its pixels.
type Metadata struct {
	// Width and Height are the dimensions of the source image.
	Width  int
	Height int
	// Format is a short name for the encoded format, e.g. "png".
	// Empty when the format could not be determined.
	Format string
}

// Entry is the resource slot for a single image in the list.
//
// The full image, its thumbnail, and its metadata load and unload
// independently. Entries are created once at startup and mutated only
// by the pipeline coordinator.
type Entry struct {
	path string

	// Full holds the decoded full image once loaded.
	Full LoadState[Texture]
	// Thumb holds the thumbnail once loaded.
	Thumb LoadState[Texture]
	// Meta holds the source image metadata once known.
	Meta LoadState[Metadata]

	// unloadable records that a previous load of this source failed.
	// Set only while Full is unloaded; cleared by ForgetUnloadable.
	unloadable bool
}

// NewEntry creates an entry in the unloaded state.
func NewEntry(path string) *Entry {
	return &Entry{path: path}
}

// Path returns the source path. Immutable after creation.
func (e *Entry) Path() string {
	return e.path
}

// Unloadable reports whether the source is known to fail loading.
// Unloadable entries are skipped by the scheduler until a reload
// clears the flag.
func (e *Entry) Unloadable() bool {
	return e.unloadable
}

// MarkUnloadable records a failed load of the source.
//
// The flag may only be set while the full image is unloaded; a loaded
// full image contradicts "cannot be loaded" and indicates a
// coordinator bug.
func (e *Entry) MarkUnloadable() {
	if e.Full.IsLoaded() {
		panic("gallery: marked a loaded entry unloadable")
	}
	e.unloadable = true
}

// ForgetUnloadable clears the unloadable flag so the load can be
// retried.
func (e *Entry) ForgetUnloadable() {
	e.unloadable = false
}

// NewList creates one unloaded entry per source path.
func NewList(paths []string) []*Entry {
	entries := make([]*Entry, len(paths))
	for i, p := range paths {
		entries[i] = NewEntry(p)
	}
	return entries
}
