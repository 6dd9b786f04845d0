package loader

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writePNG writes a solid-color PNG of the given size and returns its
// path.
func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return path
}

func TestDecodeFile(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png", 64, 48)

	frame, meta, err := decodeFile(path)
	if err != nil {
		t.Fatalf("decodeFile: %v", err)
	}
	if w, h := frame.Size(); w != 64 || h != 48 {
		t.Errorf("frame size %dx%d, want 64x48", w, h)
	}
	if meta.Width != 64 || meta.Height != 48 || meta.Format != "png" {
		t.Errorf("meta = %+v, want 64x48 png", meta)
	}
}

func TestDecodeFileMissing(t *testing.T) {
	if _, _, err := decodeFile(filepath.Join(t.TempDir(), "absent.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDecodeFileNotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, _, err := decodeFile(path); err == nil {
		t.Fatal("expected decode error for non-image content")
	}
}

func TestProbeMetadata(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png", 30, 20)

	meta, err := probeMetadata(path)
	if err != nil {
		t.Fatalf("probeMetadata: %v", err)
	}
	if meta.Width != 30 || meta.Height != 20 || meta.Format != "png" {
		t.Errorf("meta = %+v, want 30x20 png", meta)
	}
}

func TestThumbnailScaling(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		maxDim   int
		wantW    int
		wantH    int
		unscaled bool
	}{
		{name: "landscape", w: 100, h: 50, maxDim: 10, wantW: 10, wantH: 5},
		{name: "portrait", w: 50, h: 100, maxDim: 10, wantW: 5, wantH: 10},
		{name: "square", w: 80, h: 80, maxDim: 16, wantW: 16, wantH: 16},
		{name: "already small", w: 8, h: 6, maxDim: 10, wantW: 8, wantH: 6, unscaled: true},
		{name: "extreme aspect", w: 1000, h: 1, maxDim: 10, wantW: 10, wantH: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frame := &Frame{img: image.NewRGBA(image.Rect(0, 0, tc.w, tc.h))}
			thumb := frame.Thumbnail(tc.maxDim)
			if w, h := thumb.Size(); w != tc.wantW || h != tc.wantH {
				t.Errorf("thumbnail size %dx%d, want %dx%d", w, h, tc.wantW, tc.wantH)
			}
			if tc.unscaled && thumb != frame {
				t.Error("frame within bound should be returned as-is")
			}
		})
	}
}

func TestThumbnailPanicsOnBadSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-positive size")
		}
	}()
	frame := &Frame{img: image.NewRGBA(image.Rect(0, 0, 4, 4))}
	frame.Thumbnail(0)
}
