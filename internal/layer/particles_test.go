package layer

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/boot-sequence/internal/anim"
	"github.com/iburimskiy/boot-sequence/internal/surface"
)

func newParticles(t *testing.T) (*Particles, *anim.FakeClock, *anim.Parallax) {
	t.Helper()
	clock := anim.NewFakeClock(epoch)
	var parallax anim.Parallax
	p := NewParticles(DefaultParticleConfig(), &parallax, clock, nil)
	p.Tick(frame(clock))
	require.NotEmpty(t, p.pool)
	return p, clock, &parallax
}

func TestParticlePoolSizedByDensity(t *testing.T) {
	p, _, _ := newParticles(t)
	// 0.9 per 10k px² over 800x600
	assert.Len(t, p.Pool(), 43)
}

func TestParticlesStillBelowActivation(t *testing.T) {
	p, clock, _ := newParticles(t)
	p.SetIntensity(p.cfg.Activation / 2)
	before := p.Pool()

	clock.Advance(time.Second)
	p.Tick(frame(clock))
	assert.Equal(t, before, p.Pool())

	rec := surface.NewRecorder(viewW, viewH)
	p.Draw(rec)
	assert.Zero(t, rec.Count(surface.OpFillCircle))
}

func TestParticlesMoveWhenLitAndVisible(t *testing.T) {
	p, clock, _ := newParticles(t)
	p.SetIntensity(1)
	before := p.Pool()

	p.Tick(Frame{Now: clock.Now(), Width: viewW, Height: viewH, Visible: false})
	assert.Equal(t, before, p.Pool(), "hidden frames do not advance motion")

	p.Tick(frame(clock))
	assert.NotEqual(t, before, p.Pool())
}

func TestParticlesResetRestoresInitialLayout(t *testing.T) {
	p, clock, parallax := newParticles(t)
	initial := p.Pool()

	p.SetIntensity(1)
	p.Reveal()
	parallax.Set(viewW, viewH, viewW, viewH)
	for i := 0; i < 30; i++ {
		clock.Advance(16 * time.Millisecond)
		p.Tick(frame(clock))
	}
	require.NotEqual(t, initial, p.Pool())

	p.Reset()
	assert.Equal(t, initial, p.Pool())
	assert.Zero(t, p.Revealed())
	x, y := p.Offset()
	assert.Zero(t, x)
	assert.Zero(t, y)
	assert.Equal(t, ModeOff, p.Mode())
}

func TestParticlesRescaleAfterZeroViewport(t *testing.T) {
	p, clock, _ := newParticles(t)
	before := p.Pool()

	p.Tick(Frame{Now: clock.Now(), Width: 0, Height: 0, Visible: false})
	assert.Equal(t, before, p.Pool(), "minimized frames keep positions")

	p.Tick(Frame{Now: clock.Now(), Width: viewW / 2, Height: viewH / 2, Visible: true})
	after := p.Pool()
	require.Len(t, after, len(before))
	for i := range before {
		assert.InDelta(t, before[i].X/2, after[i].X, 1e-9, "particle %d", i)
		assert.InDelta(t, before[i].Y/2, after[i].Y, 1e-9, "particle %d", i)
	}
}

func TestParticleConservation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("pool size and bounds survive any tick sequence", prop.ForAll(
		func(ticks int, widths []int) bool {
			clock := anim.NewFakeClock(epoch)
			p := NewParticles(DefaultParticleConfig(), nil, clock, nil)
			p.Tick(frame(clock))
			p.SetIntensity(1)
			size := len(p.pool)

			w, h := viewW, viewH
			for i := 0; i < ticks; i++ {
				if len(widths) > 0 && i%25 == 0 {
					w = widths[(i/25)%len(widths)]
				}
				clock.Advance(16 * time.Millisecond)
				p.Tick(Frame{Now: clock.Now(), Width: w, Height: h, Visible: true})
			}
			if len(p.pool) != size {
				return false
			}
			m := p.cfg.Margin
			for _, pt := range p.pool {
				if pt.X < -m || pt.X > float64(w)+m || pt.Y < -m || pt.Y > float64(h)+m {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 400),
		gen.SliceOf(gen.IntRange(200, 2000)),
	))

	properties.TestingRun(t)
}

func TestParticleParallaxIsSmoothed(t *testing.T) {
	p, clock, parallax := newParticles(t)
	parallax.Set(viewW, viewH/2, viewW, viewH)

	p.Tick(frame(clock))
	x, _ := p.Offset()
	target := p.cfg.ParallaxOffset
	assert.InDelta(t, target*p.cfg.ParallaxFollow, x, 1e-9, "one step covers a fixed fraction")

	for i := 0; i < 500; i++ {
		p.Tick(frame(clock))
	}
	x, y := p.Offset()
	assert.InDelta(t, target, x, 1e-3)
	assert.InDelta(t, 0, y, 1e-9)
}

func TestEmblemReveal(t *testing.T) {
	p, clock, _ := newParticles(t)
	p.SetIntensity(1)
	p.Reveal()
	assert.Equal(t, 0.0, p.Revealed())

	clock.Advance(p.cfg.RevealDuration / 2)
	p.Tick(frame(clock))
	assert.InDelta(t, 0.5, p.Revealed(), 1e-9)

	rec := surface.NewRecorder(viewW, viewH)
	p.Draw(rec)
	assert.Equal(t, 1, rec.Count(surface.OpStrokePolygon))

	p.EnterIdle()
	assert.Equal(t, 1.0, p.Revealed(), "idle settles the reveal")

	p.Reset()
	assert.Equal(t, 0.0, p.Revealed())
}
