package layer

import (
	"log/slog"
	"math"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/iburimskiy/boot-sequence/internal/anim"
	"github.com/iburimskiy/boot-sequence/internal/surface"
)

// BeamConfig tunes the directional energy beams.
type BeamConfig struct {
	Start, End colorful.Color
	// Spacing is how many horizontal pixels each beam accounts for.
	Spacing              float64
	MinBeams             int
	MinLength, MaxLength float64
	Width                float64
	FlickerHz            float64
	CaptureRadius        float64
	EventDuration        time.Duration
}

func DefaultBeamConfig() BeamConfig {
	return BeamConfig{
		Start:         colorful.Color{R: 0.35, G: 0.62, B: 1.00},
		End:           colorful.Color{R: 1.00, G: 0.86, B: 0.45},
		Spacing:       48,
		MinBeams:      8,
		MinLength:     40,
		MaxLength:     160,
		Width:         2,
		FlickerHz:     1.3,
		CaptureRadius: 220,
		EventDuration: 1200 * time.Millisecond,
	}
}

const goldenAngle = math.Pi * (3 - 2.2360679774997896) // pi * (3 - sqrt(5))

type segment struct {
	ax, ay float64
	angle  float64
	length float64
	phase  float64
	base   float64
}

// Beam is a fixed population of radial line segments.
type Beam struct {
	base
	cfg      BeamConfig
	segments []segment
}

func NewBeam(cfg BeamConfig, clock anim.Clock, logger *slog.Logger) *Beam {
	if cfg.Spacing <= 0 {
		cfg.Spacing = DefaultBeamConfig().Spacing
	}
	return &Beam{
		base: newBase("beam", clock, logger, cfg.EventDuration),
		cfg:  cfg,
	}
}

func (b *Beam) SetIntensity(v float64) {
	b.setIntensity(v)
	if b.intensity > 0 && b.mode == ModeOff {
		b.mode = ModeBooting
	}
}

func (b *Beam) EnterIdle() { b.enterIdle() }

func (b *Beam) TriggerTransientEvent(x, y float64, kind anim.EventKind) {
	b.trigger(x, y, kind)
}

func (b *Beam) Reset() { b.reset() }

func (b *Beam) Close() {
	b.close()
	b.segments = nil
}

// Segments is the current beam count.
func (b *Beam) Segments() int { return len(b.segments) }

func (b *Beam) Tick(f Frame) {
	if b.closed {
		return
	}
	if b.advance(f) {
		b.layout()
	}
	b.events.Active(b.now)
}

func (b *Beam) layout() {
	n := max(b.cfg.MinBeams, int(float64(b.width)/b.cfg.Spacing))
	if b.width <= 0 || b.height <= 0 {
		n = 0
	}
	b.segments = b.segments[:0]
	cx, cy := b.center()
	halfDiag := math.Hypot(cx, cy)
	for i := 0; i < n; i++ {
		fi := float64(i)
		spread := frac(fi * 0.6180339887)
		dir := fi * goldenAngle
		dist := (0.2 + 0.65*spread) * halfDiag
		b.segments = append(b.segments, segment{
			ax:     cx + math.Cos(dir)*dist,
			ay:     cy + math.Sin(dir)*dist,
			angle:  dir + (frac(fi*0.3819660113)-0.5)*0.3,
			length: anim.Lerp(b.cfg.MinLength, b.cfg.MaxLength, frac(fi*0.7548776662)),
			phase:  fi * 1.7,
			base:   0.35 + 0.65*frac(fi*0.5698402910),
		})
	}
}

func frac(v float64) float64 { return v - math.Floor(v) }

// flicker stays within [0.3, 1] and never repeats exactly between beams.
func (b *Beam) flicker(phase float64) float64 {
	t := b.t()
	w := 2 * math.Pi * b.cfg.FlickerHz
	return 0.65 + 0.35*math.Sin(t*w+phase)*math.Cos(t*w*0.37+phase*0.5)
}

// eventBoost is the distance- and age-weighted lift from nearby events.
func (b *Beam) eventBoost(sg *segment, events []anim.Event) float64 {
	r := b.cfg.CaptureRadius
	if r <= 0 {
		return 0
	}
	boost := 0.0
	for _, e := range events {
		d := math.Hypot(sg.ax-e.X, sg.ay-e.Y)
		if d >= r {
			continue
		}
		boost += (1 - d/r) * (1 - e.Progress(b.now))
	}
	return boost
}

// visibility combines the segment base, global intensity, flicker and event boost.
func (b *Beam) visibility(sg *segment, events []anim.Event) float64 {
	return anim.Clamp01(sg.base*b.intensity*b.flicker(sg.phase) + b.eventBoost(sg, events))
}

func (b *Beam) Draw(s surface.Surface) {
	if s == nil || b.closed {
		return
	}
	events := b.events.Active(b.now)
	if b.intensity <= 0 && len(events) == 0 {
		return
	}
	col := anim.Blend(b.cfg.Start, b.cfg.End, b.intensity)
	for i := range b.segments {
		sg := &b.segments[i]
		v := b.visibility(sg, events)
		if v < 1.0/255 {
			continue
		}
		ex := sg.ax + math.Cos(sg.angle)*sg.length
		ey := sg.ay + math.Sin(sg.angle)*sg.length
		s.StrokeLine(sg.ax, sg.ay, ex, ey, b.cfg.Width, anim.RGBA(col, v))
		s.FillCircle(ex, ey, b.cfg.Width*1.5, anim.RGBA(anim.Brighten(col, 0.5), v))
	}
}
