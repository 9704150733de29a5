package renderer

import (
	"errors"
	"fmt"
)

var (
	// ErrNoImage is returned when pixel data is requested but no image has
	// been submitted, or when a nil image is submitted.
	ErrNoImage = errors.New("no image loaded")

	// ErrEmptyImage is returned for images with a zero width or height.
	ErrEmptyImage = errors.New("image has no pixels")

	// ErrSurfaceLost is returned by engines when the presentation surface has
	// to be reconfigured before the next frame can be presented.
	ErrSurfaceLost = errors.New("surface lost")

	// ErrOutOfMemory is returned by engines when presenting failed because
	// the device ran out of memory. The session cannot continue.
	ErrOutOfMemory = errors.New("out of memory")
)

// PixelLengthError reports a pixel buffer whose length doesn't match the
// dimensions it was submitted with.
type PixelLengthError struct {
	Width  uint32
	Height uint32
	Got    int
}

func (err *PixelLengthError) Want() int {
	return int(err.Width) * int(err.Height) * BytesPerPixel
}

func (err *PixelLengthError) Error() string {
	return fmt.Sprintf("pixel buffer for %dx%d image has %d bytes, want %d",
		err.Width, err.Height, err.Got, err.Want())
}
