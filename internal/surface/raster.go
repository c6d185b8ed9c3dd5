package surface

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// circleSegments is the polygon resolution used for discs and arcs.
const circleSegments = 48

// Raster draws into an in-memory RGBA image with an anti-aliasing
// rasterizer. It backs headless snapshot rendering.
type Raster struct {
	img  *image.RGBA
	z    *vector.Rasterizer
	mask *image.Alpha
}

// NewRaster allocates a w x h transparent canvas.
func NewRaster(w, h int) *Raster {
	return &Raster{
		img: image.NewRGBA(image.Rect(0, 0, w, h)),
		z:   vector.NewRasterizer(1, 1),
	}
}

// Image exposes the backing image for encoding.
func (s *Raster) Image() *image.RGBA { return s.img }

// Clear fills the canvas with c.
func (s *Raster) Clear(c color.Color) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (s *Raster) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *Raster) FillRect(x, y, w, h float64, c color.NRGBA) {
	if c.A == 0 || w <= 0 || h <= 0 {
		return
	}
	r := image.Rect(int(math.Floor(x)), int(math.Floor(y)), int(math.Ceil(x+w)), int(math.Ceil(y+h)))
	draw.Draw(s.img, r.Intersect(s.img.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

func (s *Raster) FillPolygon(pts []Point, c color.NRGBA) {
	if len(pts) < 3 || c.A == 0 {
		return
	}
	s.fill([][]Point{pts}, c)
}

func (s *Raster) StrokePolygon(pts []Point, width float64, c color.NRGBA) {
	if len(pts) < 2 || c.A == 0 {
		return
	}
	quads := make([][]Point, 0, len(pts))
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		quads = append(quads, segmentQuad(a, b, width))
	}
	s.fill(quads, c)
}

func (s *Raster) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	s.fill([][]Point{segmentQuad(Point{x0, y0}, Point{x1, y1}, width)}, c)
}

func (s *Raster) FillCircle(cx, cy, r float64, c color.NRGBA) {
	if r <= 0 || c.A == 0 {
		return
	}
	pts := make([]Point, circleSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = Point{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	s.fill([][]Point{pts}, c)
}

func (s *Raster) StrokeArc(cx, cy, r, from, to, width float64, c color.NRGBA) {
	if r <= 0 || c.A == 0 {
		return
	}
	n := int(math.Ceil(math.Abs(to-from) / (2 * math.Pi) * circleSegments))
	n = max(n, 2)
	inner, outer := math.Max(r-width/2, 0), r+width/2
	ring := make([]Point, 0, 2*(n+1))
	for i := 0; i <= n; i++ {
		a := from + (to-from)*float64(i)/float64(n)
		ring = append(ring, Point{cx + outer*math.Cos(a), cy + outer*math.Sin(a)})
	}
	for i := n; i >= 0; i-- {
		a := from + (to-from)*float64(i)/float64(n)
		ring = append(ring, Point{cx + inner*math.Cos(a), cy + inner*math.Sin(a)})
	}
	s.fill([][]Point{ring}, c)
}

func (s *Raster) RadialGradient(cx, cy, r float64, stops []GradientStop) {
	if r <= 0 {
		return
	}
	DrawBands(s, cx, cy, GradientBands(r, stops))
}

// fill rasterizes the union of polygons inside their bounding box only, so
// small shapes never pay for a full-canvas coverage buffer.
func (s *Raster) fill(polys [][]Point, c color.NRGBA) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, poly := range polys {
		for _, p := range poly {
			minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
			maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
		}
	}
	box := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1)
	clip := box.Intersect(s.img.Bounds())
	if clip.Empty() {
		return
	}

	// The rasterizer works in box-local coordinates, all non-negative; the
	// coverage mask is then composited through the clipped rectangle.
	s.z.Reset(box.Dx(), box.Dy())
	s.z.DrawOp = draw.Src
	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		s.z.MoveTo(float32(poly[0].X-ox), float32(poly[0].Y-oy))
		for _, p := range poly[1:] {
			s.z.LineTo(float32(p.X-ox), float32(p.Y-oy))
		}
		s.z.ClosePath()
	}
	mask := s.maskFor(box.Dx(), box.Dy())
	s.z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(s.img, clip, image.NewUniform(c), image.Point{}, mask, clip.Min.Sub(box.Min), draw.Over)
}

// maskFor returns a w x h coverage buffer. The rasterizer writes masks with
// the stride equal to the width, so the buffer is reused only on an exact size
// match; draw.Src overwrites every pixel.
func (s *Raster) maskFor(w, h int) *image.Alpha {
	if s.mask == nil || s.mask.Rect.Dx() != w || s.mask.Rect.Dy() != h {
		s.mask = image.NewAlpha(image.Rect(0, 0, w, h))
	}
	return s.mask
}

// segmentQuad widens a line segment into a rectangle.
func segmentQuad(a, b Point, width float64) []Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		l = 1
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	return []Point{
		{a.X + nx, a.Y + ny},
		{b.X + nx, b.Y + ny},
		{b.X - nx, b.Y - ny},
		{a.X - nx, a.Y - ny},
	}
}
