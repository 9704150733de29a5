package renderer

import (
	"fmt"

	"honnef.co/go/prism/jmath"
)

// BytesPerPixel is the size of an RGBA8 texel.
const BytesPerPixel = 4

// Image is a decoded source image in RGBA8, row-major, top row first.
type Image struct {
	Width  uint32
	Height uint32
	Pix    []byte
}

// NewImage returns an image after checking that pix holds exactly
// width*height RGBA8 texels.
func NewImage(width, height uint32, pix []byte) (*Image, error) {
	img := &Image{Width: width, Height: height, Pix: pix}
	if err := img.validate(); err != nil {
		return nil, err
	}
	return img, nil
}

func (img *Image) validate() error {
	if img == nil {
		return ErrNoImage
	}
	if img.Width == 0 || img.Height == 0 {
		return fmt.Errorf("%dx%d: %w", img.Width, img.Height, ErrEmptyImage)
	}
	if len(img.Pix) != int(img.Width)*int(img.Height)*BytesPerPixel {
		return &PixelLengthError{Width: img.Width, Height: img.Height, Got: len(img.Pix)}
	}
	return nil
}

// Stride returns the number of bytes per row.
func (img *Image) Stride() uint32 {
	return img.Width * BytesPerPixel
}

func (img *Image) Aspect() float32 {
	return jmath.Aspect(img.Width, img.Height)
}

// ImageTexture owns the texture backing the currently displayed image.
//
// Submitted images are staged and only turned into GPU work by the next call
// to Refresh, which always replaces the texture wholesale: the old texture is
// freed and a new one, sized exactly to the new image, is uploaded.
type ImageTexture struct {
	staged  *Image
	current *Image
	dirty   bool
	proxy   ImageProxy
}

// The placeholder is bound until the first image arrives so that the texture
// bind group is always valid.
var placeholderPixel = [BytesPerPixel]byte{}

func newImageTexture(rec *Recording) *ImageTexture {
	tex := &ImageTexture{}
	tex.proxy = rec.UploadImage(1, 1, Rgba8Srgb, placeholderPixel[:])
	return tex
}

// Submit stages img for the next refresh. It does not touch the GPU.
func (tex *ImageTexture) Submit(img *Image) error {
	if err := img.validate(); err != nil {
		return err
	}
	tex.staged = img
	tex.dirty = true
	return nil
}

func (tex *ImageTexture) Dirty() bool { return tex.dirty }

// HasImage reports whether an image has been submitted.
func (tex *ImageTexture) HasImage() bool {
	return tex.staged != nil || tex.current != nil
}

func (tex *ImageTexture) image() *Image {
	if tex.staged != nil {
		return tex.staged
	}
	return tex.current
}

// Dimensions returns the size of the most recently submitted image, or 1x1 if
// no image was ever submitted.
func (tex *ImageTexture) Dimensions() (width, height uint32) {
	if img := tex.image(); img != nil {
		return img.Width, img.Height
	}
	return 1, 1
}

// Pixels returns the texels of the most recently submitted image.
func (tex *ImageTexture) Pixels() ([]byte, error) {
	img := tex.image()
	if img == nil {
		return nil, ErrNoImage
	}
	return img.Pix, nil
}

// Proxy returns the image proxy that the next draw will bind.
func (tex *ImageTexture) Proxy() ImageProxy { return tex.proxy }

// Refresh records the replacement of the texture if an image is staged, and
// stores the new image's aspect ratio in u. It reports whether anything was
// recorded.
func (tex *ImageTexture) Refresh(rec *Recording, u *ShaderUniform) bool {
	if !tex.dirty {
		return false
	}
	img := tex.staged
	rec.FreeImage(tex.proxy)
	tex.proxy = rec.UploadImage(img.Width, img.Height, Rgba8Srgb, img.Pix)
	u.ImageAspect = img.Aspect()

	tex.current = img
	tex.staged = nil
	tex.dirty = false
	return true
}

// record adds an upload of the most recently submitted image to rec without
// changing which proxy is active, and returns the uploaded proxy along with
// the image's aspect ratio.
func (tex *ImageTexture) record(rec *Recording) (ImageProxy, float32) {
	img := tex.image()
	if img == nil {
		return rec.UploadImage(1, 1, Rgba8Srgb, placeholderPixel[:]), 1
	}
	return rec.UploadImage(img.Width, img.Height, Rgba8Srgb, img.Pix), img.Aspect()
}
