package wgpu_engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"honnef.co/go/prism/engine/wgpu_engine/shaders"
	"honnef.co/go/prism/internal/xlog"
	"honnef.co/go/prism/renderer"
	"honnef.co/go/wgpu"
)

func TestSurfaceStatusError(t *testing.T) {
	assert.NoError(t, surfaceStatusError(nil))

	tests := []struct {
		err  error
		want error
	}{
		{wgpu.ErrCurrentTextureLost, renderer.ErrSurfaceLost},
		{wgpu.ErrCurrentTextureOutdated, renderer.ErrSurfaceLost},
		{wgpu.ErrCurrentTextureOutOfMemory, renderer.ErrOutOfMemory},
	}
	for _, tt := range tests {
		err := surfaceStatusError(tt.err)
		assert.ErrorIs(t, err, tt.want, "mapping %v", tt.err)
		assert.ErrorIs(t, err, tt.err, "mapping %v", tt.err)
	}

	for _, cause := range []error{wgpu.ErrCurrentTextureTimeout, wgpu.ErrCurrentTextureDeviceLost} {
		err := surfaceStatusError(cause)
		var serr *SurfaceError
		require.True(t, errors.As(err, &serr), "mapping %v", cause)
		assert.Same(t, cause, serr.Err)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, renderer.ErrSurfaceLost)
		assert.NotErrorIs(t, err, renderer.ErrOutOfMemory)
	}

	wrapped := fmt.Errorf("acquire: %w", wgpu.ErrCurrentTextureLost)
	assert.ErrorIs(t, surfaceStatusError(wrapped), renderer.ErrSurfaceLost)
}

func TestChooseFormat(t *testing.T) {
	_, ok := chooseFormat(nil)
	assert.False(t, ok)

	f, ok := chooseFormat([]wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb})
	require.True(t, ok)
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, f)

	f, ok = chooseFormat([]wgpu.TextureFormat{wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatBGRA8Unorm})
	require.True(t, ok)
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, f)
}

func TestImageFormat(t *testing.T) {
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, imageFormatToWGPU(renderer.Rgba8Srgb))
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, imageFormatToWGPU(renderer.Rgba8))
	assert.Panics(t, func() { imageFormatToWGPU(renderer.ImageFormat(99)) })
}

func TestBindGroupLayoutEntries(t *testing.T) {
	groups := shaders.Effect.BindGroups
	require.Len(t, groups, 2)

	tex := bindGroupLayoutEntry(0, groups[0][0])
	assert.NotNil(t, tex.Texture)
	assert.Equal(t, wgpu.ShaderStageFragment, tex.Visibility)

	smp := bindGroupLayoutEntry(1, groups[0][1])
	require.NotNil(t, smp.Sampler)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, smp.Sampler.Type)

	uni := bindGroupLayoutEntry(0, groups[1][0])
	require.NotNil(t, uni.Buffer)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, uni.Visibility)
	assert.Equal(t, uint64(16), uni.Buffer.MinBindingSize)
}

func TestSamplerDescriptor(t *testing.T) {
	desc := samplerDescriptor("effect sampler")
	assert.Equal(t, "effect sampler", desc.Label)
	assert.Equal(t, wgpu.AddressModeMirrorRepeat, desc.AddressModeU)
	assert.Equal(t, wgpu.AddressModeMirrorRepeat, desc.AddressModeV)
	assert.Equal(t, wgpu.FilterModeLinear, desc.MagFilter)
	assert.Equal(t, float32(0), desc.LODMinClamp)
	assert.Equal(t, float32(32), desc.LODMaxClamp)
}

func TestNopProfiler(t *testing.T) {
	p := NewNopProfiler()
	p.Begin(1)
	assert.Nil(t, p.Render("pass"))
	p.Resolve(nil)
	p.End()
	assert.Nil(t, p.Collect(xlog.Nop()))
	p.Release()
}
