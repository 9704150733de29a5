// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package jmath contains small numeric helpers shared by the renderer, the
// engines and the UI layer.
package jmath

import "golang.org/x/exp/constraints"

// Wrap returns v modulo n, in the range [0, n). n must be positive.
func Wrap[T constraints.Integer](v, n T) T {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Clamp limits v to the closed range [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Aspect returns width / height. A zero height yields 1 so that callers never
// divide by zero when no image is loaded.
func Aspect[T constraints.Integer | constraints.Float](width, height T) float32 {
	if height == 0 {
		return 1
	}
	return float32(width) / float32(height)
}
