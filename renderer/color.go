package renderer

import "math"

// Gamma is the exponent used to turn the configured sRGB-ish background into
// the linear clear colour.
const Gamma = 2.2

// DefaultBackground is the linear clear colour used when no background is
// configured.
var DefaultBackground = ClearColor(0.16471, 0.08627, 0.67843)

// ClearColor decodes r, g, b with a pure power curve and returns an opaque
// linear colour.
func ClearColor(r, g, b float64) [4]float64 {
	return [4]float64{
		math.Pow(r, Gamma),
		math.Pow(g, Gamma),
		math.Pow(b, Gamma),
		1,
	}
}
