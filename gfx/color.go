// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package gfx converts between the colour representations used by the
// renderer, the CPU engine and the palette.
package gfx

import (
	"sync"

	"honnef.co/go/color"
)

// SRGB returns a colour from gamma-encoded sRGB components in [0, 1].
func SRGB(r, g, b, a float64) *color.Color {
	return color.Make(color.SRGB, r, g, b, a)
}

// LinearSRGB returns a colour from linear sRGB components in [0, 1].
func LinearSRGB(r, g, b, a float64) *color.Color {
	return color.Make(color.LinearSRGB, r, g, b, a)
}

// Linear returns c's straight-alpha linear sRGB components.
func Linear(c *color.Color) [4]float64 {
	cc := c.Convert(color.LinearSRGB)
	return [4]float64{cc.Values[0], cc.Values[1], cc.Values[2], cc.Alpha}
}

// Encoded returns c's straight-alpha gamma-encoded sRGB components.
func Encoded(c *color.Color) [4]float64 {
	cc := c.Convert(color.SRGB)
	return [4]float64{cc.Values[0], cc.Values[1], cc.Values[2], cc.Alpha}
}

const encodeSteps = 4096

var (
	decodeLUT [256]float32
	encodeLUT [encodeSteps + 1]uint8
	lutOnce   sync.Once
)

func initLUTs() {
	for i := range decodeLUT {
		v := float64(i) / 255
		decodeLUT[i] = float32(Linear(SRGB(v, v, v, 1))[0])
	}
	for i := range encodeLUT {
		v := float64(i) / encodeSteps
		e := Encoded(LinearSRGB(v, v, v, 1))[0]
		encodeLUT[i] = uint8(min(max(e, 0), 1)*255 + 0.5)
	}
}

// DecodeByte converts an 8-bit sRGB channel to linear.
func DecodeByte(v uint8) float32 {
	lutOnce.Do(initLUTs)
	return decodeLUT[v]
}

// EncodeByte converts a linear channel in [0, 1] to 8-bit sRGB. Values
// outside of the range are clamped.
func EncodeByte(v float32) uint8 {
	lutOnce.Do(initLUTs)
	if !(v > 0) {
		return encodeLUT[0]
	}
	if v >= 1 {
		return encodeLUT[encodeSteps]
	}
	return encodeLUT[int(v*encodeSteps+0.5)]
}
