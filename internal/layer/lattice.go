package layer

import (
	"log/slog"
	"math"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/iburimskiy/boot-sequence/internal/anim"
	"github.com/iburimskiy/boot-sequence/internal/surface"
)

// Axis is the direction the boot sweep travels.
type Axis int

const (
	AxisHorizontal Axis = iota
	AxisVertical
)

// LatticeConfig tunes the hex grid.
type LatticeConfig struct {
	CellRadius float64
	Gap        float64
	Start, End colorful.Color

	Axis          Axis
	SweepDuration time.Duration
	// SweepWidth is the half-width of the sweep band as a fraction of the
	// axis extent.
	SweepWidth float64

	RippleDuration time.Duration
	RippleWidth    float64

	HeartbeatInterval time.Duration
	HeartbeatJitter   time.Duration
	BreathPeriod      time.Duration
	Vignette          float64
}

// DefaultLatticeConfig is the blue to gold grid used by the default scene.
func DefaultLatticeConfig() LatticeConfig {
	return LatticeConfig{
		CellRadius:        18,
		Gap:               3,
		Start:             colorful.Color{R: 0.16, G: 0.47, B: 0.96},
		End:               colorful.Color{R: 0.98, G: 0.76, B: 0.26},
		Axis:              AxisHorizontal,
		SweepDuration:     2200 * time.Millisecond,
		SweepWidth:        0.12,
		RippleDuration:    1400 * time.Millisecond,
		RippleWidth:       28,
		HeartbeatInterval: 9 * time.Second,
		HeartbeatJitter:   time.Second,
		BreathPeriod:      6 * time.Second,
		Vignette:          0.55,
	}
}

const (
	latticeBaseAlpha  = 0.32
	latticeEdgeFloor  = 0.12
	latticeShimmerHz  = 3.1
	latticeBreathAmp  = 0.18
	latticeOffGlimmer = 0.22
)

type hexCell struct {
	x, y     float64
	row, col int
	falloff  float64
	flicker  bool
	phase    float64
}

// Lattice is the pulsing hex grid.
type Lattice struct {
	base
	cfg   LatticeConfig
	cells []hexCell

	sweepStart time.Time
	sweeping   bool

	heartbeats    int
	nextHeartbeat time.Time
}

// NewLattice creates an un-booted lattice.
func NewLattice(cfg LatticeConfig, clock anim.Clock, logger *slog.Logger) *Lattice {
	if cfg.CellRadius <= 0 {
		cfg.CellRadius = DefaultLatticeConfig().CellRadius
	}
	return &Lattice{
		base: newBase("lattice", clock, logger, cfg.RippleDuration),
		cfg:  cfg,
	}
}

func (l *Lattice) SetIntensity(v float64) {
	l.setIntensity(v)
	if l.intensity > 0 && l.mode == ModeOff {
		l.startSweep()
	}
}

// Reveal starts the sweep.
func (l *Lattice) Reveal() {
	if l.closed || l.mode != ModeOff {
		return
	}
	l.startSweep()
}

func (l *Lattice) EnterIdle() {
	if !l.enterIdle() {
		return
	}
	l.sweeping = false
	l.scheduleHeartbeat(l.clock.Now())
}

func (l *Lattice) TriggerTransientEvent(x, y float64, kind anim.EventKind) {
	l.trigger(x, y, kind)
}

func (l *Lattice) Reset() {
	l.reset()
	l.sweeping = false
	l.heartbeats = 0
	l.nextHeartbeat = time.Time{}
}

func (l *Lattice) Close() {
	l.Reset()
	l.close()
	l.cells = nil
}

func (l *Lattice) startSweep() {
	l.mode = ModeBooting
	l.sweeping = true
	l.sweepStart = l.clock.Now()
}

// SweepProgress is how far the boot sweep has travelled, in [0,1].
func (l *Lattice) SweepProgress() float64 {
	switch {
	case l.mode == ModeIdle:
		return 1
	case !l.sweeping:
		return 0
	}
	return anim.Progress(l.now.Sub(l.sweepStart), l.cfg.SweepDuration)
}

// Cells reports how many hexes the current viewport holds.
func (l *Lattice) Cells() int { return len(l.cells) }

func (l *Lattice) Tick(f Frame) {
	if l.closed {
		return
	}
	if l.advance(f) {
		l.layout()
	}
	if l.mode == ModeIdle && !l.nextHeartbeat.IsZero() && !l.now.Before(l.nextHeartbeat) {
		cx, cy := l.center()
		l.trigger(cx, cy, anim.Heartbeat)
		l.heartbeats++
		l.scheduleHeartbeat(l.now)
	}
	l.events.Active(l.now)
}

// scheduleHeartbeat picks the next heartbeat time. The jitter cycles through
// a fixed sequence so runs are reproducible yet not metronomic.
func (l *Lattice) scheduleHeartbeat(from time.Time) {
	if l.cfg.HeartbeatInterval <= 0 {
		return
	}
	steps := [...]float64{0.5, 0.1, 0.8, 0.35, 0.95, 0.2, 0.65}
	jitter := time.Duration(steps[l.heartbeats%len(steps)] * float64(l.cfg.HeartbeatJitter))
	l.nextHeartbeat = from.Add(l.cfg.HeartbeatInterval + jitter)
}

// NextHeartbeat is zero when no heartbeat is pending.
func (l *Lattice) NextHeartbeat() time.Time { return l.nextHeartbeat }

// Heartbeats counts heartbeats fired since the last reset.
func (l *Lattice) Heartbeats() int { return l.heartbeats }

func (l *Lattice) layout() {
	l.cells = l.cells[:0]
	if l.width <= 0 || l.height <= 0 {
		return
	}
	r := l.cfg.CellRadius
	dx := math.Sqrt(3)*r + l.cfg.Gap
	dy := 1.5*r + l.cfg.Gap*math.Sqrt(3)/2
	cols := int(math.Ceil(float64(l.width)/dx)) + 1
	rows := int(math.Ceil(float64(l.height)/dy)) + 1

	cx, cy := l.center()
	maxDist := math.Hypot(cx, cy)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := float64(col) * dx
			if row%2 == 1 {
				x += dx / 2
			}
			y := float64(row) * dy
			d := math.Hypot(x-cx, y-cy) / maxDist
			l.cells = append(l.cells, hexCell{
				x:       x,
				y:       y,
				row:     row,
				col:     col,
				falloff: latticeEdgeFloor + (1-latticeEdgeFloor)*(1-anim.Clamp01(d*d)),
				flicker: (row+col)%3 == 0,
				phase:   float64(row*7+col*13) * 0.37,
			})
		}
	}
	l.logger.Debug("lattice laid out", "cells", len(l.cells), "cols", cols, "rows", rows)
}

// cellLevel returns the alpha and color of one cell for the current frame.
func (l *Lattice) cellLevel(c *hexCell, events []anim.Event) (float64, colorful.Color) {
	t := l.t()
	alpha := latticeBaseAlpha * l.intensity * c.falloff
	col := l.cfg.Start

	switch l.mode {
	case ModeOff:
		return 0, col
	case ModeBooting:
		p := l.SweepProgress()
		col = anim.Blend(l.cfg.Start, l.cfg.End, p)
		pos, coord := l.sweepCoords(c, p)
		if coord > pos {
			alpha *= latticeOffGlimmer
		}
		if w := l.cfg.SweepWidth * l.axisExtent(); w > 0 {
			band := math.Exp(-math.Pow((coord-pos)/w, 2))
			alpha += band * l.intensity * 0.6
			col = anim.Brighten(col, band*0.35)
		}
		if c.flicker {
			alpha *= 0.55 + 0.45*math.Sin(t*2*math.Pi*latticeShimmerHz+c.phase)
		}
	case ModeIdle:
		col = l.cfg.End
		if l.cfg.BreathPeriod > 0 {
			alpha *= 1 + latticeBreathAmp*math.Sin(2*math.Pi*t/l.cfg.BreathPeriod.Seconds())
		}
		boost := l.rippleBoost(c, events)
		alpha += boost * 0.7
		col = anim.Brighten(col, boost*0.5)
	}
	return anim.Clamp01(alpha), col
}

// rippleBoost sums the ring highlight of every active event over a cell.
func (l *Lattice) rippleBoost(c *hexCell, events []anim.Event) float64 {
	if len(events) == 0 || l.cfg.RippleWidth <= 0 {
		return 0
	}
	maxRadius := math.Hypot(float64(l.width), float64(l.height)) / 2
	boost := 0.0
	for _, e := range events {
		p := e.Progress(l.now)
		radius := p * maxRadius
		ring := 1 - math.Abs(math.Hypot(c.x-e.X, c.y-e.Y)-radius)/l.cfg.RippleWidth
		if ring <= 0 {
			continue
		}
		strength := 1.0
		if e.Kind == anim.Heartbeat {
			strength = 0.6
		}
		boost += ring * (1 - p) * strength
	}
	return anim.Clamp01(boost)
}

func (l *Lattice) sweepCoords(c *hexCell, p float64) (pos, coord float64) {
	if l.cfg.Axis == AxisVertical {
		return p * float64(l.height), c.y
	}
	return p * float64(l.width), c.x
}

func (l *Lattice) axisExtent() float64 {
	if l.cfg.Axis == AxisVertical {
		return float64(l.height)
	}
	return float64(l.width)
}

func (l *Lattice) Draw(s surface.Surface) {
	if s == nil || l.closed || l.mode == ModeOff {
		return
	}
	var events []anim.Event
	if l.mode == ModeIdle {
		events = l.events.Active(l.now)
	}
	r := l.cfg.CellRadius
	for i := range l.cells {
		c := &l.cells[i]
		alpha, col := l.cellLevel(c, events)
		if alpha < 1.0/255 {
			continue
		}
		s.FillPolygon(surface.Hexagon(c.x, c.y, r), anim.RGBA(col, alpha))
		if alpha > 0.5 {
			s.StrokePolygon(surface.Hexagon(c.x, c.y, r), 1.5, anim.RGBA(anim.Brighten(col, 0.4), alpha))
		}
	}
	l.drawVignette(s)
}

func (l *Lattice) drawVignette(s surface.Surface) {
	strength := l.cfg.Vignette * l.intensity
	if strength <= 0 {
		return
	}
	cx, cy := l.center()
	s.RadialGradient(cx, cy, math.Hypot(cx, cy), []surface.GradientStop{
		{Offset: 0, Color: anim.RGBA(colorful.Color{}, 0)},
		{Offset: 0.55, Color: anim.RGBA(colorful.Color{}, 0)},
		{Offset: 1, Color: anim.RGBA(colorful.Color{}, strength)},
	})
}
