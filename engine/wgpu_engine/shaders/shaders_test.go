package shaders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectSource(t *testing.T) {
	src := string(Effect.WGSL)
	assert.NotContains(t, src, "#import")
	assert.Contains(t, src, "fn "+Effect.VertexEntry+"(")
	assert.Contains(t, src, "fn "+Effect.FragmentEntry+"(")
	assert.Contains(t, src, "struct InputUniform")
	assert.Contains(t, src, "@group(0) @binding(0)")
	assert.Contains(t, src, "@group(0) @binding(1)")
	assert.Contains(t, src, "@group(1) @binding(0)")
}

func TestWithSource(t *testing.T) {
	sh := Effect.WithSource([]byte("x"))
	assert.Equal(t, "x", string(sh.WGSL))
	assert.NotEqual(t, "x", string(Effect.WGSL))
	assert.Equal(t, Effect.BindGroups, sh.BindGroups)
}
