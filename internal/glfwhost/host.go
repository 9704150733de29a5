// Package glfwhost presents frames to a glfw window.
package glfwhost

import (
	"errors"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"honnef.co/go/wgpu"
)

var ErrUnsupportedPlatform = errors.New("no wgpu surface support for this platform")

// Host implements wgpu_engine.Host for a glfw window. The window must have
// been created with the NoAPI client API hint.
type Host struct {
	Window *glfw.Window
}

func (h Host) SurfaceDescriptor() (wgpu.SurfaceDescriptor, error) {
	return surfaceDescriptor(h.Window)
}

func xlibDescriptor(display unsafe.Pointer, window uint64) wgpu.SurfaceDescriptor {
	return wgpu.SurfaceDescriptor{
		Label: "prism window",
		Native: wgpu.XlibWindow{
			Display: display,
			Window:  window,
		},
	}
}

func (h Host) Size() (width, height uint32) {
	w, hh := h.Window.GetFramebufferSize()
	return uint32(max(w, 0)), uint32(max(hh, 0))
}
