// Package surface describes the 2D drawing primitives the layers draw with
// and provides an offscreen raster backend plus a recording stub for tests.
package surface

import (
	"image/color"
	"math"
)

// Point is a vertex in surface pixels.
type Point struct {
	X, Y float64
}

// GradientStop is one ring of a radial gradient. Offset runs from 0 (center)
// to 1 (outer radius).
type GradientStop struct {
	Offset float64
	Color  color.NRGBA
}

// Surface is a 2D drawing target with rectangle, path, gradient and arc
// primitives. Colors use straight alpha.
type Surface interface {
	Size() (w, h int)
	FillRect(x, y, w, h float64, c color.NRGBA)
	FillPolygon(pts []Point, c color.NRGBA)
	StrokePolygon(pts []Point, width float64, c color.NRGBA)
	StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA)
	FillCircle(cx, cy, r float64, c color.NRGBA)
	StrokeArc(cx, cy, r, from, to, width float64, c color.NRGBA)
	RadialGradient(cx, cy, r float64, stops []GradientStop)
}

// Hexagon returns the six corners of a pointy-top hexagon.
func Hexagon(cx, cy, r float64) []Point {
	pts := make([]Point, 6)
	for i := range pts {
		a := math.Pi/3*float64(i) - math.Pi/2
		pts[i] = Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return pts
}

// gradientBands is how many discrete rings backends use to approximate a
// smooth radial gradient.
const gradientBands = 32

// sampleGradient interpolates the stop list at offset t.
func sampleGradient(stops []GradientStop, t float64) color.NRGBA {
	if len(stops) == 0 {
		return color.NRGBA{}
	}
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t <= b.Offset {
			span := b.Offset - a.Offset
			if span <= 0 {
				return b.Color
			}
			k := (t - a.Offset) / span
			return color.NRGBA{
				R: mix8(a.Color.R, b.Color.R, k),
				G: mix8(a.Color.G, b.Color.G, k),
				B: mix8(a.Color.B, b.Color.B, k),
				A: mix8(a.Color.A, b.Color.A, k),
			}
		}
	}
	return stops[len(stops)-1].Color
}

func mix8(a, b uint8, k float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*k + 0.5)
}

// Band is one annulus of a banded radial gradient.
type Band struct {
	Inner, Outer float64
	Color        color.NRGBA
}

// GradientBands slices a radial gradient into annuli sampled at their middle
// offset. Fully transparent bands are dropped.
func GradientBands(r float64, stops []GradientStop) []Band {
	bands := make([]Band, 0, gradientBands)
	step := r / gradientBands
	for i := 0; i < gradientBands; i++ {
		c := sampleGradient(stops, (float64(i)+0.5)/gradientBands)
		if c.A == 0 {
			continue
		}
		bands = append(bands, Band{Inner: float64(i) * step, Outer: float64(i+1) * step, Color: c})
	}
	return bands
}

// DrawBands renders gradient bands with disc and arc primitives; backends
// without a native gradient use it.
func DrawBands(s Surface, cx, cy float64, bands []Band) {
	for _, b := range bands {
		if b.Inner <= 0 {
			s.FillCircle(cx, cy, b.Outer, b.Color)
			continue
		}
		s.StrokeArc(cx, cy, (b.Inner+b.Outer)/2, 0, 2*math.Pi, b.Outer-b.Inner, b.Color)
	}
}
