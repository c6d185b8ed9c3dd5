package anim

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Blend mixes a toward b by t in RGB space. t is clamped; the endpoints are
// returned untouched so blend(a, b, 0) == a and blend(a, b, 1) == b exactly.
func Blend(a, b colorful.Color, t float64) colorful.Color {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return a.BlendRgb(b, t)
}

// RGBA converts c into a straight-alpha color for drawing surfaces.
func RGBA(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(Clamp01(alpha)*255 + 0.5)}
}

// Brighten pushes c toward white by amount in [0,1].
func Brighten(c colorful.Color, amount float64) colorful.Color {
	return Blend(c, colorful.Color{R: 1, G: 1, B: 1}, amount)
}
