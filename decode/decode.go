// Package decode turns encoded images into the RGBA8 buffers the renderer
// consumes. PNG, JPEG, GIF, BMP, TIFF and WebP are supported.
package decode

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"honnef.co/go/prism/renderer"
)

// DefaultMaxDimension matches the largest texture most GPUs accept.
const DefaultMaxDimension = 8192

var ErrEmpty = errors.New("image has no pixels")

type Options struct {
	// MaxDimension limits the width and height of decoded images. Larger
	// images are downscaled, preserving their aspect ratio. Zero means
	// DefaultMaxDimension.
	MaxDimension int
}

func (opts *Options) maxDimension() int {
	if opts == nil || opts.MaxDimension <= 0 {
		return DefaultMaxDimension
	}
	return opts.MaxDimension
}

// Error is returned when an image couldn't be decoded.
type Error struct {
	Path string
	Err  error
}

func (err *Error) Error() string {
	if err.Path == "" {
		return fmt.Sprintf("couldn't decode image: %s", err.Err)
	}
	return fmt.Sprintf("couldn't decode %s: %s", err.Path, err.Err)
}

func (err *Error) Unwrap() error { return err.Err }

// Decode reads an image in any supported format from r.
func Decode(r io.Reader, opts *Options) (*renderer.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, &Error{Err: err}
	}
	out, err := Convert(img, opts)
	if err != nil {
		return nil, &Error{Err: err}
	}
	return out, nil
}

// File decodes the image stored at path.
func File(path string, opts *Options) (*renderer.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	defer f.Close()
	img, err := Decode(f, opts)
	if err != nil {
		var derr *Error
		if errors.As(err, &derr) {
			derr.Path = path
		}
		return nil, err
	}
	return img, nil
}

// Convert converts img to straight-alpha RGBA8, downscaling it if it exceeds
// the maximum dimension.
func Convert(img image.Image, opts *Options) (*renderer.Image, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmpty
	}
	w, h := fitWithin(b.Dx(), b.Dy(), opts.maxDimension())

	var dst *image.NRGBA
	if n, ok := img.(*image.NRGBA); ok && w == b.Dx() && h == b.Dy() && n.Stride == 4*w && len(n.Pix) == 4*w*h {
		dst = n
	} else {
		dst = image.NewNRGBA(image.Rect(0, 0, w, h))
		if w == b.Dx() && h == b.Dy() {
			draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		} else {
			draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		}
	}
	return renderer.NewImage(uint32(w), uint32(h), dst.Pix)
}

// fitWithin scales w and h down so that neither exceeds limit.
func fitWithin(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, int(int64(h)*int64(limit)/int64(w)))
	}
	return max(1, int(int64(w)*int64(limit)/int64(h))), limit
}

type Result struct {
	Path  string
	Image *renderer.Image
	Err   error
}

// Start decodes the image at path on a new goroutine. The returned channel
// receives exactly one result, unless ctx is cancelled first, in which case
// it is closed without a result.
func Start(ctx context.Context, path string, opts *Options) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		if ctx.Err() != nil {
			return
		}
		img, err := File(path, opts)
		select {
		case ch <- Result{Path: path, Image: img, Err: err}:
		case <-ctx.Done():
		}
	}()
	return ch
}
