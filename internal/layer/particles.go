package layer

import (
	"log/slog"
	"math"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/iburimskiy/boot-sequence/internal/anim"
	"github.com/iburimskiy/boot-sequence/internal/surface"
)

// ParticleConfig tunes the particle field and the emblem silhouette.
type ParticleConfig struct {
	// Density is particles per 10,000 square pixels of viewport.
	Density    float64
	Activation float64
	MaxSpeed   float64
	DriftAmp   float64
	DriftHz    float64
	MinSize    float64
	MaxSize    float64
	Margin     float64
	Start, End colorful.Color

	ParallaxOffset float64
	ParallaxFollow float64

	// EmblemRadius is a fraction of the shorter viewport side.
	EmblemRadius   float64
	EmblemDots     int
	RevealDuration time.Duration
}

func DefaultParticleConfig() ParticleConfig {
	return ParticleConfig{
		Density:        0.9,
		Activation:     0.35,
		MaxSpeed:       0.6,
		DriftAmp:       6,
		DriftHz:        0.25,
		MinSize:        1,
		MaxSize:        3,
		Margin:         12,
		Start:          colorful.Color{R: 0.55, G: 0.75, B: 1.00},
		End:            colorful.Color{R: 1.00, G: 0.88, B: 0.55},
		ParallaxOffset: 24,
		ParallaxFollow: 0.08,
		EmblemRadius:   0.18,
		EmblemDots:     42,
		RevealDuration: time.Second,
	}
}

// Particle is one member of the fixed pool.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Phase  float64
	Color  colorful.Color
	Size   float64
}

// Particles is the particle field plus the emblem silhouette it surrounds.
type Particles struct {
	base
	cfg      ParticleConfig
	pool     []Particle
	parallax *anim.Parallax
	// poolW and poolH are the bounds pool positions are expressed in.
	poolW, poolH int
	follow       anim.Follower

	reveal      *anim.Ramp
	revealLevel float64
}

// NewParticles creates the layer. parallax may be nil to disable depth drift.
func NewParticles(cfg ParticleConfig, parallax *anim.Parallax, clock anim.Clock, logger *slog.Logger) *Particles {
	return &Particles{
		base:     newBase("particles", clock, logger, 0),
		cfg:      cfg,
		parallax: parallax,
		follow:   anim.Follower{Fraction: cfg.ParallaxFollow},
	}
}

func (p *Particles) SetIntensity(v float64) {
	p.setIntensity(v)
	if p.intensity > 0 && p.mode == ModeOff {
		p.mode = ModeBooting
	}
}

// Reveal fades the emblem silhouette in.
func (p *Particles) Reveal() {
	if p.closed || p.reveal != nil {
		return
	}
	p.reveal = anim.Animate(p.clock, 0, 1, p.cfg.RevealDuration, func(v float64) { p.revealLevel = v })
	p.reveal.Step(p.clock.Now())
}

// EnterIdle settles a reveal still in flight.
func (p *Particles) EnterIdle() {
	if !p.enterIdle() {
		return
	}
	if p.reveal != nil {
		p.reveal.Settle()
	}
}

// TriggerTransientEvent is a no-op: particles react to parallax, not events.
func (p *Particles) TriggerTransientEvent(float64, float64, anim.EventKind) {}

func (p *Particles) Reset() {
	p.reset()
	p.reveal = nil
	p.revealLevel = 0
	p.follow.Reset()
	p.seed()
}

func (p *Particles) Close() {
	p.Reset()
	p.close()
	p.pool = nil
}

// Pool returns a copy of the particle pool.
func (p *Particles) Pool() []Particle {
	return append([]Particle(nil), p.pool...)
}

// Revealed is the emblem reveal level in [0,1].
func (p *Particles) Revealed() float64 { return p.revealLevel }

// Offset is the current smoothed parallax offset.
func (p *Particles) Offset() (float64, float64) { return p.follow.X, p.follow.Y }

func (p *Particles) Tick(f Frame) {
	if p.closed {
		return
	}
	if p.advance(f) {
		p.resize()
	}
	if p.reveal != nil {
		p.reveal.Step(p.now)
	}
	if !f.Visible {
		return
	}
	if p.parallax != nil {
		s := p.parallax.Sample()
		p.follow.Step(s.X*p.cfg.ParallaxOffset, s.Y*p.cfg.ParallaxOffset)
	}
	if p.intensity < p.cfg.Activation {
		return
	}
	for i := range p.pool {
		pt := &p.pool[i]
		pt.X += pt.VX
		pt.Y += pt.VY
		p.wrap(pt)
	}
}

// resize builds the pool on the first real viewport and afterwards only
// rescales positions; the pool size never changes after creation. A zero
// viewport (minimized window) leaves positions in the last real bounds so
// they rescale from there once it comes back.
func (p *Particles) resize() {
	if p.width <= 0 || p.height <= 0 {
		return
	}
	if p.pool == nil {
		p.populate()
		return
	}
	sx := float64(p.width) / float64(p.poolW)
	sy := float64(p.height) / float64(p.poolH)
	p.poolW, p.poolH = p.width, p.height
	for i := range p.pool {
		p.pool[i].X *= sx
		p.pool[i].Y *= sy
		p.wrap(&p.pool[i])
	}
}

func (p *Particles) populate() {
	n := max(1, int(p.cfg.Density*float64(p.width*p.height)/10000))
	p.pool = make([]Particle, n)
	p.poolW, p.poolH = p.width, p.height
	p.seed()
	p.logger.Debug("particle pool created", "count", n)
}

// seed puts every particle at its index-derived starting state inside the
// pool bounds, so the same pool always starts from the same layout.
func (p *Particles) seed() {
	for i := range p.pool {
		fi := float64(i)
		dir := fi * goldenAngle
		speed := p.cfg.MaxSpeed * (0.25 + 0.75*frac(fi*0.7548776662))
		p.pool[i] = Particle{
			X:     frac(fi*0.6180339887) * float64(p.poolW),
			Y:     frac(fi*0.5698402910) * float64(p.poolH),
			VX:    math.Cos(dir) * speed,
			VY:    math.Sin(dir) * speed,
			Phase: fi * 0.9,
			Color: anim.Blend(p.cfg.Start, p.cfg.End, frac(fi*0.41)),
			Size:  anim.Lerp(p.cfg.MinSize, p.cfg.MaxSize, frac(fi*0.3819660113)),
		}
	}
}

// wrap moves a particle that left the padded bounds to the opposite side.
func (p *Particles) wrap(pt *Particle) {
	m := p.cfg.Margin
	w, h := float64(p.width), float64(p.height)
	switch {
	case pt.X < -m:
		pt.X += w + 2*m
	case pt.X > w+m:
		pt.X -= w + 2*m
	}
	switch {
	case pt.Y < -m:
		pt.Y += h + 2*m
	case pt.Y > h+m:
		pt.Y -= h + 2*m
	}
}

func (p *Particles) Draw(s surface.Surface) {
	if s == nil || p.closed {
		return
	}
	p.drawEmblem(s)
	if p.intensity < p.cfg.Activation {
		return
	}
	t := p.t()
	// fade in from the activation threshold instead of popping
	level := anim.Clamp01((p.intensity - p.cfg.Activation) / math.Max(1-p.cfg.Activation, 1e-6))
	for i := range p.pool {
		pt := &p.pool[i]
		drift := p.cfg.DriftAmp * math.Sin(2*math.Pi*p.cfg.DriftHz*t+pt.Phase)
		x := pt.X + drift + p.follow.X
		y := pt.Y + drift*0.6 + p.follow.Y
		alpha := level * (0.45 + 0.35*math.Sin(t*1.9+pt.Phase))
		s.FillCircle(x, y, pt.Size*(0.5+0.5*p.intensity), anim.RGBA(pt.Color, alpha))
	}
}

// drawEmblem traces the silhouette dot by dot as the reveal progresses.
func (p *Particles) drawEmblem(s surface.Surface) {
	if p.revealLevel <= 0 || p.cfg.EmblemDots <= 0 {
		return
	}
	cx, cy := p.center()
	cx += p.follow.X * 0.5
	cy += p.follow.Y * 0.5
	r := p.cfg.EmblemRadius * float64(min(p.width, p.height))
	corners := surface.Hexagon(cx, cy, r)

	alpha := p.revealLevel * math.Max(p.intensity, 0.4)
	s.StrokePolygon(corners, 2, anim.RGBA(p.cfg.End, alpha*0.6))

	n := p.cfg.EmblemDots
	shown := int(math.Ceil(p.revealLevel * float64(n)))
	for i := 0; i < shown; i++ {
		u := float64(i) / float64(n) * 6
		side := int(u) % 6
		k := u - math.Floor(u)
		a, b := corners[side], corners[(side+1)%6]
		s.FillCircle(anim.Lerp(a.X, b.X, k), anim.Lerp(a.Y, b.Y, k), 2.5, anim.RGBA(anim.Brighten(p.cfg.End, 0.3), alpha))
	}
}
