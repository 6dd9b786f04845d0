package loader

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"

	"github.com/JoshuaHockley/rlens/pkg/gallery"

	// Formats registered for image.Decode.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Frame holds a decoded image in memory.
type Frame struct {
	img image.Image
}

// Image returns the decoded pixels.
func (f *Frame) Image() image.Image {
	return f.img
}

// Size returns the frame's dimensions in pixels.
func (f *Frame) Size() (width, height int) {
	b := f.img.Bounds()
	return b.Dx(), b.Dy()
}

// Thumbnail returns a rendition of the frame scaled so its longer side
// is at most maxDim pixels, preserving aspect ratio. Frames already
// within the bound are returned unscaled.
func (f *Frame) Thumbnail(maxDim int) *Frame {
	if maxDim <= 0 {
		panic("loader: non-positive thumbnail size")
	}

	w, h := f.Size()
	if w <= maxDim && h <= maxDim {
		return f
	}

	var tw, th int
	if w >= h {
		tw = maxDim
		th = max(h*maxDim/w, 1)
	} else {
		th = maxDim
		tw = max(w*maxDim/h, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), f.img, f.img.Bounds(), draw.Src, nil)
	return &Frame{img: dst}
}

// decodeFile decodes an image file at full resolution.
func decodeFile(path string) (*Frame, gallery.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, gallery.Metadata{}, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()
	return decode(f, path)
}

func decode(r io.Reader, path string) (*Frame, gallery.Metadata, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, gallery.Metadata{}, fmt.Errorf("failed to decode %q: %w", path, err)
	}
	b := img.Bounds()
	meta := gallery.Metadata{
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: format,
	}
	return &Frame{img: img}, meta, nil
}

// probeMetadata reads an image file's header without decoding pixels.
func probeMetadata(path string) (gallery.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return gallery.Metadata{}, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return gallery.Metadata{}, fmt.Errorf("failed to read header of %q: %w", path, err)
	}
	return gallery.Metadata{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// encodePNG writes the frame as a PNG. Cache artifacts use this
// regardless of the source format.
func encodePNG(f *Frame, w io.Writer) error {
	if err := png.Encode(w, f.img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}
