package anim

// ParallaxSample is a pointer offset with both axes in [-1,1].
type ParallaxSample struct {
	X, Y float64
}

// Parallax holds the latest pointer sample. Input handlers write it, layers
// read it during redraw.
type Parallax struct {
	sample ParallaxSample
}

// Set normalizes a pointer position inside a w x h viewport.
func (p *Parallax) Set(px, py float64, w, h int) {
	if w <= 0 || h <= 0 {
		p.sample = ParallaxSample{}
		return
	}
	p.sample = ParallaxSample{
		X: clampUnit(px/float64(w)*2 - 1),
		Y: clampUnit(py/float64(h)*2 - 1),
	}
}

func (p *Parallax) Sample() ParallaxSample {
	if p == nil {
		return ParallaxSample{}
	}
	return p.sample
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// Follower chases a target offset, covering a fixed fraction of the remaining
// distance per step so it never snaps.
type Follower struct {
	X, Y     float64
	Fraction float64
}

// Step moves toward (tx, ty).
func (f *Follower) Step(tx, ty float64) {
	k := Clamp01(f.Fraction)
	f.X += (tx - f.X) * k
	f.Y += (ty - f.Y) * k
}

func (f *Follower) Reset() {
	f.X, f.Y = 0, 0
}
