package glfwhost

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"honnef.co/go/wgpu"
)

func TestXlibDescriptor(t *testing.T) {
	var display int
	desc := xlibDescriptor(unsafe.Pointer(&display), 0x2a00007)
	assert.Equal(t, "prism window", desc.Label)
	native, ok := desc.Native.(wgpu.XlibWindow)
	require.True(t, ok)
	assert.Equal(t, unsafe.Pointer(&display), native.Display)
	assert.Equal(t, uint64(0x2a00007), native.Window)
}
