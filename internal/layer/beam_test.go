package layer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/boot-sequence/internal/anim"
	"github.com/iburimskiy/boot-sequence/internal/surface"
)

func TestBeamCountFollowsWidth(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	b := NewBeam(DefaultBeamConfig(), clock, nil)
	b.Tick(frame(clock))
	assert.Equal(t, viewW/48, b.Segments())

	b.Tick(Frame{Now: clock.Now(), Width: 100, Height: 100})
	assert.Equal(t, b.cfg.MinBeams, b.Segments(), "narrow viewports keep a minimum population")
}

func TestBeamLayoutIsDeterministic(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	a := NewBeam(DefaultBeamConfig(), clock, nil)
	b := NewBeam(DefaultBeamConfig(), clock, nil)
	a.Tick(frame(clock))
	b.Tick(frame(clock))
	assert.Equal(t, a.segments, b.segments)
}

func TestBeamVisibilityBounded(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	b := NewBeam(DefaultBeamConfig(), clock, nil)
	b.Tick(frame(clock))
	b.SetIntensity(1)

	for i := 0; i < 50; i++ {
		clock.Advance(37 * time.Millisecond)
		b.Tick(frame(clock))
		for j := range b.segments {
			v := b.visibility(&b.segments[j], nil)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestBeamEventBoost(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	b := NewBeam(DefaultBeamConfig(), clock, nil)
	b.Tick(frame(clock))
	b.SetIntensity(0.3)

	sg := &b.segments[0]
	quiet := b.visibility(sg, nil)

	b.TriggerTransientEvent(sg.ax, sg.ay, anim.Ripple)
	b.TriggerTransientEvent(sg.ax+5000, sg.ay, anim.Ripple)
	b.Tick(frame(clock))
	events := b.ActiveEvents()
	require.Len(t, events, 2)

	assert.Greater(t, b.visibility(sg, events), quiet)
	assert.InDelta(t, 1.0, b.eventBoost(sg, events), 1e-9, "far event contributes nothing")

	clock.Advance(b.cfg.EventDuration / 2)
	b.Tick(frame(clock))
	assert.InDelta(t, 0.5, b.eventBoost(sg, b.ActiveEvents()), 1e-9, "boost fades with age")

	clock.Advance(b.cfg.EventDuration)
	b.Tick(frame(clock))
	assert.Empty(t, b.ActiveEvents())
}

func TestBeamDrawsEventsEvenWhenDark(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	b := NewBeam(DefaultBeamConfig(), clock, nil)
	b.Tick(frame(clock))

	rec := surface.NewRecorder(viewW, viewH)
	b.Draw(rec)
	assert.Empty(t, rec.Calls)

	sg := b.segments[3]
	b.TriggerTransientEvent(sg.ax, sg.ay, anim.Ripple)
	b.Draw(rec)
	assert.Positive(t, rec.Count(surface.OpStrokeLine))
}
