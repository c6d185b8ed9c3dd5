package game

import (
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/boot-sequence/internal/surface"
)

var (
	whiteOnce     sync.Once
	whiteSubImage *ebiten.Image
)

func solidSource() *ebiten.Image {
	whiteOnce.Do(func() {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteSubImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	})
	return whiteSubImage
}

// ebitenSurface draws onto an ebiten image, usually the screen passed to Draw.
type ebitenSurface struct {
	dst *ebiten.Image

	vertices []ebiten.Vertex
	indices  []uint16
}

// target rebinds the surface to a new frame image, keeping scratch buffers.
// A nil image yields a nil surface so layers treat a missing screen like any
// other missing surface.
func (s *ebitenSurface) target(dst *ebiten.Image) surface.Surface {
	if dst == nil {
		return nil
	}
	s.dst = dst
	return s
}

func (s *ebitenSurface) Size() (int, int) {
	b := s.dst.Bounds()
	return b.Dx(), b.Dy()
}

func (s *ebitenSurface) FillRect(x, y, w, h float64, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	vector.DrawFilledRect(s.dst, float32(x), float32(y), float32(w), float32(h), c, false)
}

func (s *ebitenSurface) FillPolygon(pts []surface.Point, c color.NRGBA) {
	if len(pts) < 3 || c.A == 0 {
		return
	}
	var path vector.Path
	polygonPath(&path, pts)
	s.vertices, s.indices = path.AppendVerticesAndIndicesForFilling(s.vertices[:0], s.indices[:0])
	s.drawTriangles(c)
}

func (s *ebitenSurface) StrokePolygon(pts []surface.Point, width float64, c color.NRGBA) {
	if len(pts) < 2 || c.A == 0 {
		return
	}
	var path vector.Path
	polygonPath(&path, pts)
	s.stroke(&path, width, c)
}

func (s *ebitenSurface) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	vector.StrokeLine(s.dst, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), c, true)
}

func (s *ebitenSurface) FillCircle(cx, cy, r float64, c color.NRGBA) {
	if r <= 0 || c.A == 0 {
		return
	}
	vector.DrawFilledCircle(s.dst, float32(cx), float32(cy), float32(r), c, true)
}

func (s *ebitenSurface) StrokeArc(cx, cy, r, from, to, width float64, c color.NRGBA) {
	if r <= 0 || c.A == 0 {
		return
	}
	var path vector.Path
	path.Arc(float32(cx), float32(cy), float32(r), float32(from), float32(to), vector.Clockwise)
	s.stroke(&path, width, c)
}

func (s *ebitenSurface) RadialGradient(cx, cy, r float64, stops []surface.GradientStop) {
	if r <= 0 {
		return
	}
	surface.DrawBands(s, cx, cy, surface.GradientBands(r, stops))
}

func (s *ebitenSurface) stroke(path *vector.Path, width float64, c color.NRGBA) {
	op := &vector.StrokeOptions{
		Width:    float32(width),
		LineJoin: vector.LineJoinRound,
	}
	s.vertices, s.indices = path.AppendVerticesAndIndicesForStroke(s.vertices[:0], s.indices[:0], op)
	s.drawTriangles(c)
}

func (s *ebitenSurface) drawTriangles(c color.NRGBA) {
	r := float32(c.R) / 0xff
	g := float32(c.G) / 0xff
	b := float32(c.B) / 0xff
	a := float32(c.A) / 0xff
	for i := range s.vertices {
		s.vertices[i].SrcX = 1
		s.vertices[i].SrcY = 1
		s.vertices[i].ColorR = r
		s.vertices[i].ColorG = g
		s.vertices[i].ColorB = b
		s.vertices[i].ColorA = a
	}
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	s.dst.DrawTriangles(s.vertices, s.indices, solidSource(), op)
}

func polygonPath(path *vector.Path, pts []surface.Point) {
	path.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		path.LineTo(float32(p.X), float32(p.Y))
	}
	path.Close()
}
