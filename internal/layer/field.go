package layer

import (
	"log/slog"
	"math"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/iburimskiy/boot-sequence/internal/anim"
	"github.com/iburimskiy/boot-sequence/internal/surface"
)

// FieldConfig tunes the radial energy field.
type FieldConfig struct {
	Start, End colorful.Color
	// MinRadius and MaxRadius are fractions of the viewport half-diagonal.
	MinRadius, MaxRadius float64
	PeakAlpha            float64
	BreathPeriod         time.Duration
	BreathDepth          float64
	Vignette             float64
}

func DefaultFieldConfig() FieldConfig {
	return FieldConfig{
		Start:        colorful.Color{R: 0.10, G: 0.36, B: 0.92},
		End:          colorful.Color{R: 1.00, G: 0.80, B: 0.32},
		MinRadius:    0.15,
		MaxRadius:    0.85,
		PeakAlpha:    0.75,
		BreathPeriod: 5 * time.Second,
		BreathDepth:  0.08,
		Vignette:     0.7,
	}
}

// Field is a single radial glow centered on the viewport with a vignette
// that deepens as the scene lights up.
type Field struct {
	base
	cfg FieldConfig
}

func NewField(cfg FieldConfig, clock anim.Clock, logger *slog.Logger) *Field {
	return &Field{
		base: newBase("field", clock, logger, 0),
		cfg:  cfg,
	}
}

func (f *Field) SetIntensity(v float64) {
	f.setIntensity(v)
	if f.intensity > 0 && f.mode == ModeOff {
		f.mode = ModeBooting
	}
}

func (f *Field) EnterIdle() { f.enterIdle() }

// TriggerTransientEvent is accepted for contract completeness; the field is
// a global glow and keeps no point effects.
func (f *Field) TriggerTransientEvent(float64, float64, anim.EventKind) {}

func (f *Field) Reset() { f.reset() }

func (f *Field) Close() { f.close() }

func (f *Field) Tick(fr Frame) {
	if f.closed {
		return
	}
	f.advance(fr)
}

// breath is 1 outside idle and oscillates around 1 while idle.
func (f *Field) breath() float64 {
	if f.mode != ModeIdle || f.cfg.BreathPeriod <= 0 {
		return 1
	}
	return 1 + f.cfg.BreathDepth*math.Sin(2*math.Pi*f.t()/f.cfg.BreathPeriod.Seconds())
}

// Glow returns the gradient radius and peak alpha for the current frame.
func (f *Field) Glow() (radius, alpha float64) {
	halfDiag := math.Hypot(float64(f.width), float64(f.height)) / 2
	b := f.breath()
	radius = halfDiag * anim.Lerp(f.cfg.MinRadius, f.cfg.MaxRadius, f.intensity) * b
	alpha = anim.Clamp01(f.cfg.PeakAlpha * f.intensity * b)
	return radius, alpha
}

func (f *Field) Draw(s surface.Surface) {
	if s == nil || f.closed || f.intensity <= 0 {
		return
	}
	cx, cy := f.center()
	radius, alpha := f.Glow()
	col := anim.Blend(f.cfg.Start, f.cfg.End, f.intensity)
	s.RadialGradient(cx, cy, radius, []surface.GradientStop{
		{Offset: 0, Color: anim.RGBA(anim.Brighten(col, 0.25), alpha)},
		{Offset: 0.45, Color: anim.RGBA(col, alpha*0.55)},
		{Offset: 1, Color: anim.RGBA(col, 0)},
	})

	v := anim.Clamp01(f.cfg.Vignette * f.intensity)
	if v <= 0 {
		return
	}
	black := colorful.Color{}
	s.RadialGradient(cx, cy, math.Hypot(cx, cy), []surface.GradientStop{
		{Offset: 0, Color: anim.RGBA(black, 0)},
		{Offset: 0.6, Color: anim.RGBA(black, v*0.15)},
		{Offset: 1, Color: anim.RGBA(black, v)},
	})
}
