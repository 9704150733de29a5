package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep(t *testing.T) {
	for n := 0; n < 3*NumEffects; n++ {
		u := NewShaderUniform(1)
		for range n {
			u.Step()
		}
		assert.Equal(t, int32(n%NumEffects), u.Effect, "after %d steps", n)
	}
}

func TestStepWrapsAfterLastEffect(t *testing.T) {
	u := NewShaderUniform(1)
	for range NumEffects {
		u.Step()
	}
	assert.Equal(t, int32(0), u.Effect)
}

func TestSetEffect(t *testing.T) {
	u := NewShaderUniform(1)
	u.SetEffect(9)
	assert.Equal(t, int32(2), u.Effect)
	u.SetEffect(-1)
	assert.Equal(t, int32(6), u.Effect)
}

func TestToggleFill(t *testing.T) {
	u := NewShaderUniform(1)
	u.ToggleFill()
	assert.Equal(t, FillStretch, u.FillMode)
	u.ToggleFill()
	assert.Equal(t, FillFit, u.FillMode)
}

func TestNewShaderUniform(t *testing.T) {
	u := NewShaderUniform(800.0 / 600.0)
	assert.Equal(t, int32(0), u.Effect)
	assert.Equal(t, FillFit, u.FillMode)
	assert.InDelta(t, 800.0/600.0, u.ViewportAspect, 1e-6)
	assert.Equal(t, float32(1), u.ImageAspect)
}

func TestUniformBytes(t *testing.T) {
	u := ShaderUniform{Effect: 3, FillMode: 1, ViewportAspect: 1.5, ImageAspect: 0.25}
	b := u.Bytes()
	require.Len(t, b, int(UniformSize))
	assert.EqualValues(t, 16, UniformSize)

	le := binary.LittleEndian
	assert.Equal(t, uint32(3), le.Uint32(b[0:]))
	assert.Equal(t, uint32(1), le.Uint32(b[4:]))
	assert.Equal(t, float32(1.5), math.Float32frombits(le.Uint32(b[8:])))
	assert.Equal(t, float32(0.25), math.Float32frombits(le.Uint32(b[12:])))

	// The payload must not change when the uniform does.
	u.Step()
	assert.Equal(t, uint32(3), le.Uint32(b[0:]))
}

func TestQuad(t *testing.T) {
	assert.EqualValues(t, 16, VertexStride)
	assert.Len(t, QuadBytes(), 6*16)

	for _, v := range QuadVertices {
		// Clip y=+1 is the top row of the image.
		assert.Equal(t, v.Position[0], v.TexCoords[0]*2-1)
		assert.Equal(t, v.Position[1], 1-v.TexCoords[1]*2)
	}
}
