package renderer

import (
	"slices"
	"structs"
	"unsafe"

	"honnef.co/go/prism/jmath"
	"honnef.co/go/safeish"
)

// NumEffects is the number of effects the fragment shader implements.
const NumEffects = 7

const (
	FillFit     int32 = 0
	FillStretch int32 = 1
)

// ShaderUniform is the uniform block bound at group 1. Its layout must match
// InputUniform in the shader.
type ShaderUniform struct {
	_              structs.HostLayout
	Effect         int32
	FillMode       int32
	ViewportAspect float32
	ImageAspect    float32
}

const UniformSize = uint64(unsafe.Sizeof(ShaderUniform{}))

func NewShaderUniform(viewportAspect float32) ShaderUniform {
	return ShaderUniform{
		ViewportAspect: viewportAspect,
		ImageAspect:    1,
	}
}

// Step advances to the next effect, wrapping around after the last one.
func (u *ShaderUniform) Step() {
	u.Effect = jmath.Wrap(u.Effect+1, NumEffects)
}

// SetEffect selects effect n, taken modulo NumEffects.
func (u *ShaderUniform) SetEffect(n int) {
	u.Effect = int32(jmath.Wrap(n, NumEffects))
}

func (u *ShaderUniform) ToggleFill() {
	u.FillMode = 1 - u.FillMode
}

// Bytes returns a copy of the uniform's upload payload.
func (u *ShaderUniform) Bytes() []byte {
	return slices.Clone(safeish.AsBytes(u))
}
