package frontend

import (
	"image"

	"honnef.co/go/prism/renderer"
)

// Event is a message to the render loop.
type Event interface {
	isEvent()
}

func (MainEventsCleared) isEvent() {}
func (Step) isEvent()              {}
func (ToggleFill) isEvent()        {}
func (NewImage) isEvent()          {}
func (NewColors) isEvent()         {}
func (Resize) isEvent()            {}
func (Capture) isEvent()           {}
func (Quit) isEvent()              {}

// MainEventsCleared requests a redraw.
type MainEventsCleared struct{}

// Step selects the next effect.
type Step struct{}

// ToggleFill switches between fitting and stretching the image.
type ToggleFill struct{}

// NewImage replaces the displayed image.
type NewImage struct {
	Image *renderer.Image
}

// NewColors is accepted for compatibility with palette changes and otherwise
// ignored; the palette doesn't influence rendering.
type NewColors struct{}

// Resize reports a new drawable size in pixels.
type Resize struct {
	Width  uint32
	Height uint32
}

// Capture renders the current state off-screen and sends the result on
// Reply, which should be buffered.
type Capture struct {
	Reply chan<- CaptureResult
}

type CaptureResult struct {
	Image *image.RGBA
	Err   error
}

// Quit stops the loop.
type Quit struct{}
