// Package ui contains the state of the user interface and the pure update
// function that reacts to user input. Side effects are described by the
// returned commands and carried out by an Executor.
package ui

import (
	"fmt"

	"honnef.co/go/prism/export"
	"honnef.co/go/prism/frontend"
	"honnef.co/go/prism/jmath"
	"honnef.co/go/prism/renderer"
)

type State struct {
	Effect     int
	Fill       bool
	Palette    int
	PaletteLen int
	Status     string
	HasImage   bool
	Decoding   bool
}

// NewState returns the initial UI state for a palette list of the given
// length.
func NewState(paletteLen int) State {
	return State{
		PaletteLen: max(paletteLen, 1),
		Status:     "Open an image to begin",
	}
}

type Input interface{ isInput() }

func (StepPressed) isInput()    {}
func (FillPressed) isInput()    {}
func (PalettePressed) isInput() {}
func (OpenRequested) isInput()  {}
func (DecodeDone) isInput()     {}
func (DecodeFailed) isInput()   {}
func (SaveRequested) isInput()  {}
func (SaveDone) isInput()       {}

type StepPressed struct{}
type FillPressed struct{}
type PalettePressed struct{}

type OpenRequested struct {
	Path string
}

type DecodeDone struct {
	Path  string
	Image *renderer.Image
}

type DecodeFailed struct {
	Path string
	Err  error
}

// SaveRequested asks for the current frame to be saved. An empty path means
// export.DefaultName.
type SaveRequested struct {
	Path string
}

type SaveDone struct {
	Path string
	Err  error
}

type Command interface{ isCommand() }

func (Send) isCommand()        {}
func (StartDecode) isCommand() {}
func (Save) isCommand()        {}

// Send forwards an event to the render loop.
type Send struct {
	Event frontend.Event
}

type StartDecode struct {
	Path string
}

type Save struct {
	Path string
}

// Update applies in to s. It has no side effects.
func Update(s State, in Input) (State, []Command) {
	switch in := in.(type) {
	case StepPressed:
		s.Effect = jmath.Wrap(s.Effect+1, renderer.NumEffects)
		return s, []Command{Send{frontend.Step{}}}

	case FillPressed:
		s.Fill = !s.Fill
		return s, []Command{Send{frontend.ToggleFill{}}}

	case PalettePressed:
		s.Palette = jmath.Wrap(s.Palette+1, max(s.PaletteLen, 1))
		return s, []Command{Send{frontend.NewColors{}}}

	case OpenRequested:
		if in.Path == "" {
			return s, nil
		}
		s.Decoding = true
		s.Status = fmt.Sprintf("Loading %s", in.Path)
		return s, []Command{StartDecode{in.Path}}

	case DecodeDone:
		s.Decoding = false
		s.HasImage = true
		s.Status = fmt.Sprintf("Loaded %s (%dx%d)", in.Path, in.Image.Width, in.Image.Height)
		return s, []Command{Send{frontend.NewImage{Image: in.Image}}}

	case DecodeFailed:
		s.Decoding = false
		s.Status = fmt.Sprintf("Couldn't open image: %s", in.Err)
		return s, nil

	case SaveRequested:
		path := in.Path
		if path == "" {
			path = export.DefaultName
		}
		s.Status = fmt.Sprintf("Saving %s", path)
		return s, []Command{Save{path}}

	case SaveDone:
		if in.Err != nil {
			s.Status = fmt.Sprintf("Couldn't save %s: %s", in.Path, in.Err)
		} else {
			s.Status = fmt.Sprintf("Saved %s", in.Path)
		}
		return s, nil

	default:
		panic(fmt.Sprintf("unhandled input %T", in))
	}
}
