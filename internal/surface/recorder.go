package surface

import "image/color"

// Op names a primitive recorded by Recorder.
type Op string

const (
	OpFillRect       Op = "fill_rect"
	OpFillPolygon    Op = "fill_polygon"
	OpStrokePolygon  Op = "stroke_polygon"
	OpStrokeLine     Op = "stroke_line"
	OpFillCircle     Op = "fill_circle"
	OpStrokeArc      Op = "stroke_arc"
	OpRadialGradient Op = "radial_gradient"
)

// Call is one recorded primitive. Center is the anchor of the shape: the
// rectangle origin, the polygon centroid, the line midpoint or the circle
// center.
type Call struct {
	Op     Op
	Center Point
	Radius float64
	Color  color.NRGBA
	Stops  []GradientStop
}

// Recorder is a Surface that draws nothing and remembers every call.
type Recorder struct {
	W, H  int
	Calls []Call
}

func NewRecorder(w, h int) *Recorder {
	return &Recorder{W: w, H: h}
}

func (r *Recorder) Size() (int, int) { return r.W, r.H }

// Reset forgets recorded calls.
func (r *Recorder) Reset() { r.Calls = r.Calls[:0] }

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Filter returns the calls of op in order.
func (r *Recorder) Filter(op Op) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) FillRect(x, y, w, h float64, c color.NRGBA) {
	r.Calls = append(r.Calls, Call{Op: OpFillRect, Center: Point{x + w/2, y + h/2}, Color: c})
}

func (r *Recorder) FillPolygon(pts []Point, c color.NRGBA) {
	r.Calls = append(r.Calls, Call{Op: OpFillPolygon, Center: centroid(pts), Color: c})
}

func (r *Recorder) StrokePolygon(pts []Point, _ float64, c color.NRGBA) {
	r.Calls = append(r.Calls, Call{Op: OpStrokePolygon, Center: centroid(pts), Color: c})
}

func (r *Recorder) StrokeLine(x0, y0, x1, y1, _ float64, c color.NRGBA) {
	r.Calls = append(r.Calls, Call{Op: OpStrokeLine, Center: Point{(x0 + x1) / 2, (y0 + y1) / 2}, Color: c})
}

func (r *Recorder) FillCircle(cx, cy, radius float64, c color.NRGBA) {
	r.Calls = append(r.Calls, Call{Op: OpFillCircle, Center: Point{cx, cy}, Radius: radius, Color: c})
}

func (r *Recorder) StrokeArc(cx, cy, radius, _, _, _ float64, c color.NRGBA) {
	r.Calls = append(r.Calls, Call{Op: OpStrokeArc, Center: Point{cx, cy}, Radius: radius, Color: c})
}

func (r *Recorder) RadialGradient(cx, cy, radius float64, stops []GradientStop) {
	cp := append([]GradientStop(nil), stops...)
	r.Calls = append(r.Calls, Call{Op: OpRadialGradient, Center: Point{cx, cy}, Radius: radius, Stops: cp})
}

func centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(pts))
	return Point{c.X / n, c.Y / n}
}
