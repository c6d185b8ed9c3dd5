package layer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/boot-sequence/internal/anim"
	"github.com/iburimskiy/boot-sequence/internal/surface"
)

func TestFieldGlowGrowsWithIntensity(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	f := NewField(DefaultFieldConfig(), clock, nil)
	f.Tick(frame(clock))

	f.SetIntensity(0.2)
	r1, a1 := f.Glow()
	f.SetIntensity(0.9)
	r2, a2 := f.Glow()

	assert.Greater(t, r2, r1)
	assert.Greater(t, a2, a1)
	assert.LessOrEqual(t, a2, 1.0)
}

func TestFieldBreathesOnlyWhenIdle(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	f := NewField(DefaultFieldConfig(), clock, nil)
	f.Tick(frame(clock))
	f.SetIntensity(1)

	r0, _ := f.Glow()
	clock.Advance(1250 * time.Millisecond)
	f.Tick(frame(clock))
	r1, _ := f.Glow()
	assert.Equal(t, r0, r1, "booting glow is a pure function of intensity")

	f.EnterIdle()
	r2, _ := f.Glow()
	assert.NotEqual(t, r1, r2)
}

func TestFieldDrawsGlowAndVignette(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	f := NewField(DefaultFieldConfig(), clock, nil)
	f.Tick(frame(clock))

	rec := surface.NewRecorder(viewW, viewH)
	f.Draw(rec)
	assert.Empty(t, rec.Calls, "dark field draws nothing")

	f.SetIntensity(1)
	f.Draw(rec)
	grads := rec.Filter(surface.OpRadialGradient)
	require.Len(t, grads, 2)
	assert.Equal(t, surface.Point{X: viewW / 2, Y: viewH / 2}, grads[0].Center)

	vignette := grads[1].Stops
	assert.Equal(t, uint8(0), vignette[0].Color.A)
	assert.Greater(t, vignette[len(vignette)-1].Color.A, uint8(100))
}
