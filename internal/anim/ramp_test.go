package anim

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestRampReachesTarget(t *testing.T) {
	var got []float64
	r := NewRamp(epoch, 0, 1, time.Second, func(v float64) { got = append(got, v) })

	assert.False(t, r.Step(epoch))
	assert.False(t, r.Step(epoch.Add(500*time.Millisecond)))
	assert.True(t, r.Step(epoch.Add(time.Second)))

	require.Equal(t, []float64{0, 0.5, 1}, got)

	r.Step(epoch.Add(2 * time.Second))
	assert.Len(t, got, 3, "completed ramp stays silent")
}

func TestRampClockAnomalies(t *testing.T) {
	var last float64
	r := NewRamp(epoch, 0.2, 0.8, time.Second, func(v float64) { last = v })

	r.Step(epoch.Add(-time.Hour))
	assert.Equal(t, 0.2, last, "backwards clock clamps to start value")

	assert.True(t, r.Step(epoch.Add(time.Hour)))
	assert.Equal(t, 0.8, last, "overshoot lands exactly on target")
}

func TestRampZeroDuration(t *testing.T) {
	var last float64
	r := NewRamp(epoch, 0, 1, 0, func(v float64) { last = v })
	assert.True(t, r.Step(epoch))
	assert.Equal(t, 1.0, last)
}

func TestRampSettle(t *testing.T) {
	calls := 0
	var last float64
	r := NewRamp(epoch, 1, 0, time.Second, func(v float64) { calls++; last = v })
	r.Settle()
	r.Settle()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0.0, last)
	assert.True(t, r.Step(epoch), "settled ramp reports done")
	assert.Equal(t, 1, calls)
}

func TestRampIndependence(t *testing.T) {
	clock := NewFakeClock(epoch)
	var a, b float64
	ra := Animate(clock, 0, 1, time.Second, func(v float64) { a = v })
	clock.Advance(250 * time.Millisecond)
	rb := Animate(clock, 0, 1, time.Second, func(v float64) { b = v })

	clock.Advance(750 * time.Millisecond)
	assert.True(t, ra.Step(clock.Now()))
	assert.False(t, rb.Step(clock.Now()))
	assert.Equal(t, 1.0, a)
	assert.InDelta(t, 0.75, b, 1e-9)
}

func TestRampMonotonicProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 150
	properties := gopter.NewProperties(parameters)

	properties.Property("values are monotonic, bounded and end on target", prop.ForAll(
		func(from, to float64, durMs int, steps []int) bool {
			d := time.Duration(durMs) * time.Millisecond
			var values []float64
			r := NewRamp(epoch, from, to, d, func(v float64) { values = append(values, v) })

			now := epoch
			for _, s := range steps {
				now = now.Add(time.Duration(s) * time.Millisecond)
				r.Step(now)
			}
			done := r.Step(epoch.Add(d))

			lo, hi := min(from, to), max(from, to)
			for i, v := range values {
				if v < lo || v > hi {
					return false
				}
				if i == 0 {
					continue
				}
				if from < to && v < values[i-1] {
					return false
				}
				if from > to && v > values[i-1] {
					return false
				}
			}
			return len(values) > 0 && values[len(values)-1] == to && done
		},
		gen.Float64Range(-10, 10),
		gen.Float64Range(-10, 10),
		gen.IntRange(1, 5000),
		gen.SliceOf(gen.IntRange(0, 700)),
	))

	properties.TestingRun(t)
}
