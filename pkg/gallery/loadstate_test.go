package gallery

import "testing"

func TestLoadState_ZeroValueUnloaded(t *testing.T) {
	var s LoadState[int]

	if s.IsLoaded() {
		t.Error("zero value should be unloaded")
	}
	if _, ok := s.Loaded(); ok {
		t.Error("Loaded should report no payload")
	}
}

func TestLoadState_Load(t *testing.T) {
	var s LoadState[int]

	s.Load(7)

	if !s.IsLoaded() {
		t.Error("slot should be loaded")
	}
	if v, ok := s.Loaded(); !ok || v != 7 {
		t.Errorf("Loaded = (%d, %t), want (7, true)", v, ok)
	}
}

func TestLoadState_LoadOverLoadedPanics(t *testing.T) {
	var s LoadState[int]
	s.Load(1)

	defer func() {
		if recover() == nil {
			t.Error("Load over a loaded slot should panic")
		}
	}()
	s.Load(2)
}

func TestLoadState_SetLoadedReturnsPrevious(t *testing.T) {
	var s LoadState[string]

	if prev, had := s.SetLoaded("a"); had {
		t.Errorf("first SetLoaded returned previous %q", prev)
	}

	prev, had := s.SetLoaded("b")
	if !had || prev != "a" {
		t.Errorf("SetLoaded = (%q, %t), want (\"a\", true)", prev, had)
	}
	if v, _ := s.Loaded(); v != "b" {
		t.Errorf("payload = %q, want \"b\"", v)
	}
}

func TestLoadState_Unload(t *testing.T) {
	var s LoadState[int]
	s.Load(9)

	v, had := s.Unload()
	if !had || v != 9 {
		t.Errorf("Unload = (%d, %t), want (9, true)", v, had)
	}
	if s.IsLoaded() {
		t.Error("slot should be unloaded after Unload")
	}

	if _, had := s.Unload(); had {
		t.Error("second Unload should report no payload")
	}

	// Unloading returns the slot to a loadable state.
	s.Load(10)
	if v, _ := s.Loaded(); v != 10 {
		t.Errorf("payload after reload = %d, want 10", v)
	}
}

func TestEntry_Unloadable(t *testing.T) {
	e := NewEntry("/tmp/a.png")

	if e.Unloadable() {
		t.Error("new entry should not be unloadable")
	}

	e.MarkUnloadable()
	if !e.Unloadable() {
		t.Error("entry should be unloadable after MarkUnloadable")
	}

	e.ForgetUnloadable()
	if e.Unloadable() {
		t.Error("ForgetUnloadable should clear the flag")
	}
}

func TestEntry_MarkUnloadableWithLoadedFullPanics(t *testing.T) {
	e := NewEntry("/tmp/a.png")
	e.Full.Load(fakeTexture{w: 1, h: 1})

	defer func() {
		if recover() == nil {
			t.Error("MarkUnloadable with a loaded full image should panic")
		}
	}()
	e.MarkUnloadable()
}

func TestNewList(t *testing.T) {
	paths := []string{"/a.png", "/b.png", "/c.png"}
	entries := NewList(paths)

	if len(entries) != len(paths) {
		t.Fatalf("got %d entries, want %d", len(entries), len(paths))
	}
	for i, e := range entries {
		if e.Path() != paths[i] {
			t.Errorf("entry %d path = %q, want %q", i, e.Path(), paths[i])
		}
		if e.Full.IsLoaded() || e.Thumb.IsLoaded() || e.Meta.IsLoaded() {
			t.Errorf("entry %d should start unloaded", i)
		}
	}
}

// fakeTexture is a renderer-free Texture for tests.
type fakeTexture struct {
	w, h     int
	released bool
}

func (f fakeTexture) Size() (int, int) { return f.w, f.h }
func (f fakeTexture) Release()         {}
