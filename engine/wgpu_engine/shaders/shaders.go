// Package shaders contains the WGSL sources of the wgpu engine and a
// description of their resource bindings.
package shaders

import (
	_ "embed"
)

//go:generate go run honnef.co/go/prism/internal/cmd/compile-shaders -in src -out gen

//go:embed gen/effect.wgsl
var effectSource []byte

type BindType int

const (
	Uniform BindType = iota + 1
	Image
	Sampler
)

// RenderShader describes a vertex+fragment module. BindGroups lists the
// bindings of each bind group, in binding order.
type RenderShader struct {
	Name          string
	VertexEntry   string
	FragmentEntry string
	BindGroups    [][]BindType
	WGSL          []byte
}

// Effect is the full-screen quad shader. Group 0 holds the source image and
// its sampler, group 1 the input uniform.
var Effect = RenderShader{
	Name:          "effect",
	VertexEntry:   "vs_main",
	FragmentEntry: "fs_main",
	BindGroups: [][]BindType{
		{Image, Sampler},
		{Uniform},
	},
	WGSL: effectSource,
}

// WithSource returns a copy of sh that uses src instead of the built-in
// module. src must declare the same entry points and bindings.
func (sh RenderShader) WithSource(src []byte) RenderShader {
	sh.WGSL = src
	return sh
}
