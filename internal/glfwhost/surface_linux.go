//go:build linux && !android

package glfwhost

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"honnef.co/go/wgpu"
)

func surfaceDescriptor(w *glfw.Window) (wgpu.SurfaceDescriptor, error) {
	display := unsafe.Pointer(glfw.GetX11Display())
	if display == nil {
		return wgpu.SurfaceDescriptor{}, ErrUnsupportedPlatform
	}
	return xlibDescriptor(display, uint64(w.GetX11Window())), nil
}
