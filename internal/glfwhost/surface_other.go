//go:build !linux || android

package glfwhost

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"honnef.co/go/wgpu"
)

func surfaceDescriptor(*glfw.Window) (wgpu.SurfaceDescriptor, error) {
	return wgpu.SurfaceDescriptor{}, ErrUnsupportedPlatform
}
