package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstFrameUploadsPlaceholder(t *testing.T) {
	s := NewState(800, 600)
	rec := s.Frame()
	require.Len(t, rec.Commands, 3)

	up, ok := rec.Commands[0].(*UploadImage)
	require.True(t, ok)
	assert.Equal(t, uint32(1), up.Image.Width)
	assert.Equal(t, uint32(1), up.Image.Height)

	uni, ok := rec.Commands[1].(*UploadUniform)
	require.True(t, ok)
	assert.Equal(t, s.UniformBuffer().ID, uni.Buffer.ID)
	assert.Len(t, uni.Data, int(UniformSize))

	draw, ok := rec.Commands[2].(*Draw)
	require.True(t, ok)
	assert.Equal(t, up.Image.ID, draw.Image.ID)
	assert.Equal(t, uint32(6), draw.VertexCount)
	assert.Equal(t, uint32(1), draw.InstanceCount)
	assert.Equal(t, DefaultBackground, draw.Clear)

	// Later frames only upload the uniform and draw.
	rec = s.Frame()
	require.Len(t, rec.Commands, 2)
}

func TestFrameUploadsUniformEveryFrame(t *testing.T) {
	s := NewState(100, 100)
	s.Frame()
	for range 3 {
		rec := s.Frame()
		var n int
		for _, cmd := range rec.Commands {
			if _, ok := cmd.(*UploadUniform); ok {
				n++
			}
		}
		assert.Equal(t, 1, n)
	}
}

func TestFrameRefreshesTexture(t *testing.T) {
	s := NewState(100, 50)
	s.Frame()
	require.NoError(t, s.Texture.Submit(solid(4, 2, [4]byte{1, 2, 3, 4})))

	rec := s.Frame()
	require.Len(t, rec.Commands, 4)
	assert.IsType(t, &FreeImage{}, rec.Commands[0])
	assert.IsType(t, &UploadImage{}, rec.Commands[1])
	assert.Equal(t, float32(2), s.Uniform.ImageAspect)

	draw := rec.Commands[3].(*Draw)
	assert.Equal(t, s.Texture.Proxy().ID, draw.Image.ID)
}

func TestResize(t *testing.T) {
	s := NewState(800, 600)
	assert.True(t, s.Resize(1000, 500))
	assert.Equal(t, float32(2), s.Uniform.ViewportAspect)
	w, h := s.Size()
	assert.Equal(t, uint32(1000), w)
	assert.Equal(t, uint32(500), h)

	assert.False(t, s.Resize(0, 500))
	assert.Equal(t, float32(2), s.Uniform.ViewportAspect)
}

func TestSnapshot(t *testing.T) {
	s := NewState(100, 100)
	s.Uniform.Step()
	require.NoError(t, s.Texture.Submit(solid(2, 1, [4]byte{})))

	rec := s.Snapshot()
	require.Len(t, rec.Commands, 5)
	up := rec.Commands[0].(*UploadImage)
	assert.Equal(t, uint32(2), up.Image.Width)
	uni := rec.Commands[1].(*UploadUniform)
	draw := rec.Commands[2].(*Draw)
	assert.Equal(t, up.Image.ID, draw.Image.ID)
	assert.Equal(t, uni.Buffer.ID, draw.Uniform.ID)
	assert.NotEqual(t, s.UniformBuffer().ID, draw.Uniform.ID)
	assert.IsType(t, &FreeImage{}, rec.Commands[3])
	assert.IsType(t, &FreeBuffer{}, rec.Commands[4])

	// The snapshot must not consume the staged image.
	assert.True(t, s.Texture.Dirty())
	assert.Equal(t, float32(1), s.Uniform.ImageAspect)
}

func TestClearColor(t *testing.T) {
	c := ClearColor(1, 0.5, 0)
	assert.Equal(t, 1.0, c[0])
	assert.InDelta(t, 0.2176, c[1], 1e-4)
	assert.Equal(t, 0.0, c[2])
	assert.Equal(t, 1.0, c[3])
}
