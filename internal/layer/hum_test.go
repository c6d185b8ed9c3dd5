package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/boot-sequence/internal/anim"
)

func streamLevel(t *testing.T, tap *Tap, n int) float64 {
	t.Helper()
	buf := make([][2]float64, 512)
	for read := 0; read < n; read += len(buf) {
		got, ok := tap.Stream(buf)
		require.True(t, ok)
		require.Equal(t, len(buf), got)
	}
	return tap.Level(2048)
}

func TestHumFollowsIntensity(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	h := NewHum(DefaultHumConfig(), clock, nil)
	tap := NewTap(h, 8192)

	assert.Equal(t, 0.0, streamLevel(t, tap, 8192), "silent before boot")

	h.SetIntensity(1)
	loud := streamLevel(t, tap, 44100)
	assert.Greater(t, loud, 0.05)

	h.EnterIdle()
	quieter := streamLevel(t, tap, 44100)
	assert.Less(t, quieter, loud)
}

func TestHumPingsOnEvents(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	h := NewHum(DefaultHumConfig(), clock, nil)
	tap := NewTap(h, 4096)

	h.TriggerTransientEvent(0, 0, anim.Ripple)
	assert.Greater(t, streamLevel(t, tap, 2048), 0.01)

	// pings are short-lived
	streamLevel(t, tap, 44100)
	assert.Equal(t, 0.0, tap.Level(2048))
}

func TestHumCloseEndsStream(t *testing.T) {
	h := NewHum(DefaultHumConfig(), anim.NewFakeClock(epoch), nil)
	h.Close()
	n, ok := h.Stream(make([][2]float64, 16))
	assert.Zero(t, n)
	assert.False(t, ok)
	assert.NoError(t, h.Err())
	assert.Equal(t, 2, h.Format().NumChannels)
}

func TestTapSnapshotOrder(t *testing.T) {
	h := NewHum(DefaultHumConfig(), anim.NewFakeClock(epoch), nil)
	tap := NewTap(h, 4)
	for i := 0; i < 6; i++ {
		tap.mu.Lock()
		tap.buffer[tap.nextIndex] = [2]float64{float64(i), float64(i)}
		tap.nextIndex = (tap.nextIndex + 1) % len(tap.buffer)
		tap.mu.Unlock()
	}
	snap := tap.Snapshot(3)
	require.Len(t, snap, 3)
	assert.Equal(t, [][2]float64{{3, 3}, {4, 4}, {5, 5}}, snap)
	assert.Len(t, tap.Snapshot(99), 4)
}
