// Package gallery holds the in-memory image list: per-image resource
// slots, the cyclic distance metric used for load scheduling and
// eviction, and the grid layout that determines which thumbnails are
// visible.
package gallery

// LoadState is a two-state container for a lazily loaded resource:
// either unloaded, or loaded with a payload of type T.
//
// The zero value is unloaded and ready to use.
//
// A LoadState owns its payload exclusively. Unloading transfers the
// payload out so the caller can tear it down (e.g. release a GPU
// texture) before the slot returns to the unloaded state.
type LoadState[T any] struct {
	val    T
	loaded bool
}

// IsLoaded reports whether a payload is present.
func (s *LoadState[T]) IsLoaded() bool {
	return s.loaded
}

// Loaded returns the payload without clearing it.
// The second return is false when unloaded.
func (s *LoadState[T]) Loaded() (T, bool) {
	return s.val, s.loaded
}

// Load stores a payload into an unloaded slot.
//
// Loading over an already loaded slot is a programming error, not a
// recoverable condition, and panics.
func (s *LoadState[T]) Load(val T) {
	if s.loaded {
		panic("gallery: loaded over a loaded slot")
	}
	s.val = val
	s.loaded = true
}

// SetLoaded stores a payload, replacing any previous one.
// The previous payload is returned so the caller can discard or
// release it; the second return is false if the slot was unloaded.
func (s *LoadState[T]) SetLoaded(val T) (T, bool) {
	prev, had := s.val, s.loaded
	s.val = val
	s.loaded = true
	return prev, had
}

// Unload extracts the payload and clears the slot.
// The second return is false if the slot was already unloaded.
func (s *LoadState[T]) Unload() (T, bool) {
	prev, had := s.val, s.loaded
	var zero T
	s.val = zero
	s.loaded = false
	return prev, had
}
