// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package cpu provides CPU implementations of the render shaders.
//
// The functions mirror effect.wgsl line for line so that the CPU engine
// produces the same frames as the GPU, up to filtering precision.
package cpu

import (
	"math"

	"honnef.co/go/curve"
	"honnef.co/go/prism/renderer"
)

const (
	EFFECT_NONE      = 0
	EFFECT_GREY      = 1
	EFFECT_INVERT    = 2
	EFFECT_SEPIA     = 3
	EFFECT_POSTERIZE = 4
	EFFECT_ROTATE    = 5
	EFFECT_PIXELATE  = 6
)

const (
	FILL_FIT     = 0
	FILL_STRETCH = 1
)

const POSTERIZE_LEVELS = 4.0
const PIXELATE_CELLS = 64.0

// Texture holds linear, straight-alpha texels in row-major order.
type Texture struct {
	Width  int
	Height int
	Texels [][4]float32
}

func mirror(i, n int) int {
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

func (tex *Texture) texel(x, y int) [4]float32 {
	x = mirror(x, tex.Width)
	y = mirror(y, tex.Height)
	return tex.Texels[y*tex.Width+x]
}

// Sample samples tex at uv with bilinear filtering and mirror-repeat
// addressing. The fragment shader samples at an explicit level of zero, which
// always selects the magnification filter.
func (tex *Texture) Sample(uv curve.Vec2) [4]float32 {
	x := uv.X*float64(tex.Width) - 0.5
	y := uv.Y*float64(tex.Height) - 0.5
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	fx := float32(x - x0)
	fy := float32(y - y0)
	ix := int(x0)
	iy := int(y0)

	c00 := tex.texel(ix, iy)
	c10 := tex.texel(ix+1, iy)
	c01 := tex.texel(ix, iy+1)
	c11 := tex.texel(ix+1, iy+1)

	var out [4]float32
	for i := range out {
		top := c00[i]*(1-fx) + c10[i]*fx
		bottom := c01[i]*(1-fx) + c11[i]*fx
		out[i] = top*(1-fy) + bottom*fy
	}
	return out
}

// TexCoords returns the interpolated texture coordinates of the pixel centre
// (x, y) in a width by height target.
func TexCoords(x, y, width, height int) curve.Vec2 {
	clip := curve.Vec(
		(float64(x)+0.5)/float64(width)*2-1,
		1-(float64(y)+0.5)/float64(height)*2,
	)
	return curve.Vec((clip.X+1)/2, (1-clip.Y)/2)
}

func FitUV(uv curve.Vec2, fillMode int32, windowRatio, imgRatio float32) curve.Vec2 {
	if fillMode != FILL_FIT {
		return uv
	}
	wr := float64(windowRatio)
	ir := float64(imgRatio)
	if ir > wr {
		return curve.Vec(uv.X, (uv.Y-0.5)*ir/wr+0.5)
	}
	return curve.Vec((uv.X-0.5)*wr/ir+0.5, uv.Y)
}

func PixelateUV(uv curve.Vec2, imgRatio float32) curve.Vec2 {
	cells := curve.Vec(PIXELATE_CELLS, PIXELATE_CELLS)
	if imgRatio >= 1 {
		cells.X = PIXELATE_CELLS * float64(imgRatio)
	} else {
		cells.Y = PIXELATE_CELLS / float64(imgRatio)
	}
	return curve.Vec(
		(math.Floor(uv.X*cells.X)+0.5)/cells.X,
		(math.Floor(uv.Y*cells.Y)+0.5)/cells.Y,
	)
}

func dot3(c [4]float32, x, y, z float32) float32 {
	return c[0]*x + c[1]*y + c[2]*z
}

func ApplyEffect(effect int32, c [4]float32) [4]float32 {
	switch effect {
	case EFFECT_GREY:
		l := dot3(c, 0.2126, 0.7152, 0.0722)
		return [4]float32{l, l, l, c[3]}
	case EFFECT_INVERT:
		return [4]float32{1 - c[0], 1 - c[1], 1 - c[2], c[3]}
	case EFFECT_SEPIA:
		return [4]float32{
			min(dot3(c, 0.393, 0.769, 0.189), 1),
			min(dot3(c, 0.349, 0.686, 0.168), 1),
			min(dot3(c, 0.272, 0.534, 0.131), 1),
			c[3],
		}
	case EFFECT_POSTERIZE:
		const steps = POSTERIZE_LEVELS - 1
		var out [4]float32
		for i := range 3 {
			out[i] = float32(math.Floor(float64(c[i])*steps+0.5) / steps)
		}
		out[3] = c[3]
		return out
	case EFFECT_ROTATE:
		return [4]float32{c[1], c[2], c[0], c[3]}
	default:
		return c
	}
}

// Fragment is fs_main.
func Fragment(tex *Texture, in renderer.ShaderUniform, texCoords curve.Vec2) [4]float32 {
	uv := FitUV(texCoords, in.FillMode, in.ViewportAspect, in.ImageAspect)
	if uv.X < 0 || uv.Y < 0 || uv.X > 1 || uv.Y > 1 {
		return [4]float32{}
	}
	if in.Effect == EFFECT_PIXELATE {
		uv = PixelateUV(uv, in.ImageAspect)
	}
	return ApplyEffect(in.Effect, tex.Sample(uv))
}

// Blend composites src over dst using src-alpha/one-minus-src-alpha for
// colour and one/one-minus-src-alpha for alpha.
func Blend(src, dst [4]float32) [4]float32 {
	a := src[3]
	return [4]float32{
		src[0]*a + dst[0]*(1-a),
		src[1]*a + dst[1]*(1-a),
		src[2]*a + dst[2]*(1-a),
		a + dst[3]*(1-a),
	}
}
