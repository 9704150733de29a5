// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"honnef.co/go/curve"
	"honnef.co/go/prism/renderer"
)

func checker() *Texture {
	// 2x2: red, green / blue, white
	return &Texture{
		Width:  2,
		Height: 2,
		Texels: [][4]float32{
			{1, 0, 0, 1}, {0, 1, 0, 1},
			{0, 0, 1, 1}, {1, 1, 1, 1},
		},
	}
}

func TestMirror(t *testing.T) {
	want := []int{0, 1, 2, 2, 1, 0, 0, 1}
	for i, w := range want {
		assert.Equal(t, w, mirror(i, 3), "mirror(%d, 3)", i)
	}
	assert.Equal(t, 0, mirror(-1, 3))
	assert.Equal(t, 2, mirror(-3, 3))
}

func TestSampleTexelCentres(t *testing.T) {
	tex := checker()
	assert.Equal(t, [4]float32{1, 0, 0, 1}, tex.Sample(curve.Vec(0.25, 0.25)))
	assert.Equal(t, [4]float32{0, 1, 0, 1}, tex.Sample(curve.Vec(0.75, 0.25)))
	assert.Equal(t, [4]float32{0, 0, 1, 1}, tex.Sample(curve.Vec(0.25, 0.75)))
	assert.Equal(t, [4]float32{1, 1, 1, 1}, tex.Sample(curve.Vec(0.75, 0.75)))
}

func TestSampleBilinear(t *testing.T) {
	tex := checker()
	c := tex.Sample(curve.Vec(0.5, 0.5))
	assert.InDeltaSlice(t, []float32{0.5, 0.5, 0.5, 1}, c[:], 1e-6)

	// Mirror-repeat at the edge duplicates the border texel.
	c = tex.Sample(curve.Vec(0, 0.25))
	assert.InDeltaSlice(t, []float32{1, 0, 0, 1}, c[:], 1e-6)
}

func TestTexCoords(t *testing.T) {
	uv := TexCoords(0, 0, 4, 2)
	assert.InDelta(t, 0.125, uv.X, 1e-9)
	assert.InDelta(t, 0.25, uv.Y, 1e-9)
	uv = TexCoords(3, 1, 4, 2)
	assert.InDelta(t, 0.875, uv.X, 1e-9)
	assert.InDelta(t, 0.75, uv.Y, 1e-9)
}

func TestFitUV(t *testing.T) {
	center := curve.Vec(0.5, 0.5)
	assert.Equal(t, center, FitUV(center, FILL_FIT, 2, 1))

	// Square image in a 2:1 window: pillarboxed.
	uv := FitUV(curve.Vec(0.1, 0.5), FILL_FIT, 2, 1)
	assert.Less(t, uv.X, 0.0)
	uv = FitUV(curve.Vec(0.25, 0.5), FILL_FIT, 2, 1)
	assert.InDelta(t, 0, uv.X, 1e-9)

	// Wide image in a square window: letterboxed.
	uv = FitUV(curve.Vec(0.5, 0.1), FILL_FIT, 1, 2)
	assert.Less(t, uv.Y, 0.0)

	// Stretch leaves coordinates alone.
	uv = FitUV(curve.Vec(0.1, 0.1), FILL_STRETCH, 2, 1)
	assert.Equal(t, curve.Vec(0.1, 0.1), uv)
}

func TestPixelateUV(t *testing.T) {
	uv := PixelateUV(curve.Vec(0.001, 0.999), 1)
	assert.InDelta(t, 0.5/64, uv.X, 1e-9)
	assert.InDelta(t, 1-0.5/64, uv.Y, 1e-9)

	// Wide image: 64 cells vertically, 128 horizontally.
	uv = PixelateUV(curve.Vec(0.001, 0.001), 2)
	assert.InDelta(t, 0.5/128, uv.X, 1e-9)
	assert.InDelta(t, 0.5/64, uv.Y, 1e-9)
}

func TestApplyEffect(t *testing.T) {
	c := [4]float32{0.2, 0.4, 0.6, 0.5}

	assert.Equal(t, c, ApplyEffect(EFFECT_NONE, c))
	assert.Equal(t, c, ApplyEffect(99, c))

	grey := ApplyEffect(EFFECT_GREY, c)
	assert.InDelta(t, 0.2*0.2126+0.4*0.7152+0.6*0.0722, grey[0], 1e-6)
	assert.Equal(t, grey[0], grey[1])
	assert.Equal(t, grey[0], grey[2])
	assert.Equal(t, float32(0.5), grey[3])

	inv := ApplyEffect(EFFECT_INVERT, c)
	assert.InDeltaSlice(t, []float32{0.8, 0.6, 0.4, 0.5}, inv[:], 1e-6)

	sepia := ApplyEffect(EFFECT_SEPIA, [4]float32{1, 1, 1, 1})
	assert.InDeltaSlice(t, []float32{1, 1, 0.937, 1}, sepia[:], 1e-6)

	post := ApplyEffect(EFFECT_POSTERIZE, c)
	assert.InDeltaSlice(t, []float32{1.0 / 3, 1.0 / 3, 2.0 / 3, 0.5}, post[:], 1e-6)

	rot := ApplyEffect(EFFECT_ROTATE, c)
	assert.Equal(t, [4]float32{0.4, 0.6, 0.2, 0.5}, rot)
}

func TestFragmentLetterbox(t *testing.T) {
	tex := checker()
	u := renderer.ShaderUniform{FillMode: FILL_FIT, ViewportAspect: 2, ImageAspect: 1}
	assert.Equal(t, [4]float32{}, Fragment(tex, u, curve.Vec(0.05, 0.5)))
	assert.Equal(t, [4]float32{1, 0, 0, 1}, Fragment(tex, u, curve.Vec(0.375, 0.25)))

	u.FillMode = FILL_STRETCH
	assert.Equal(t, [4]float32{1, 0, 0, 1}, Fragment(tex, u, curve.Vec(0.25, 0.25)))
}

func TestBlend(t *testing.T) {
	dst := [4]float32{0, 0, 1, 1}
	assert.Equal(t, dst, Blend([4]float32{}, dst))
	assert.Equal(t, [4]float32{1, 0, 0, 1}, Blend([4]float32{1, 0, 0, 1}, dst))
	assert.InDeltaSlice(t, []float32{0.5, 0, 0.5, 1}, func() []float32 {
		c := Blend([4]float32{1, 0, 0, 0.5}, dst)
		return c[:]
	}(), 1e-6)
}
