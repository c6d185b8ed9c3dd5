package timeline

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/boot-sequence/internal/anim"
	"github.com/iburimskiy/boot-sequence/internal/layer"
)

var epoch = time.Date(2024, 5, 4, 9, 0, 0, 0, time.UTC)

// stubLayer records every handle call.
type stubLayer struct {
	intensity float64
	values    []float64
	idle      int
	reveals   int
	resets    int
	events    int
}

func (l *stubLayer) SetIntensity(v float64) {
	l.intensity = anim.Clamp01(v)
	l.values = append(l.values, l.intensity)
}
func (l *stubLayer) EnterIdle()                                             { l.idle++ }
func (l *stubLayer) TriggerTransientEvent(float64, float64, anim.EventKind) { l.events++ }
func (l *stubLayer) Reset()                                                 { l.resets++ }
func (l *stubLayer) Reveal()                                                { l.reveals++ }

func bootActions(counts map[string]int) map[string]Action {
	count := func(id string) func(layer.Handle) {
		return func(h layer.Handle) { counts[id]++ }
	}
	return map[string]Action{
		"black":      {Kind: Call, Targets: []string{"field"}, Call: func(h layer.Handle) { counts["black"]++; Blackout(h) }},
		"sweepStart": {Kind: Ramp, Targets: []string{"field", "lattice", "emblem"}, From: 0, To: 1, Duration: 2 * time.Second},
		"emblem":     {Kind: Call, Targets: []string{"emblem"}, Call: func(h layer.Handle) { counts["emblem"]++; Reveal(h) }},
		"idle":       {Kind: Call, Targets: []string{"field"}, Call: count("idle")},
	}
}

func bootEntries() []Entry {
	return []Entry{
		{Offset: 0, Action: "black"},
		{Offset: 300 * time.Millisecond, Action: "sweepStart"},
		{Offset: 2500 * time.Millisecond, Action: "emblem"},
		{Offset: 5000 * time.Millisecond, Action: "idle"},
	}
}

func bootLayers() (map[string]layer.Handle, map[string]*stubLayer) {
	stubs := map[string]*stubLayer{
		"field":   {},
		"lattice": {},
		"emblem":  {},
	}
	handles := make(map[string]layer.Handle, len(stubs))
	for k, v := range stubs {
		handles[k] = v
	}
	return handles, stubs
}

func TestScenarioJumpToEnd(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	counts := map[string]int{}
	completed := 0
	s := New(clock, bootActions(counts), WithOnBootComplete(func() { completed++ }))
	handles, stubs := bootLayers()

	require.NoError(t, s.Start(bootEntries(), handles))
	assert.Equal(t, Booting, s.Phase())

	clock.Set(epoch.Add(5000 * time.Millisecond))
	s.Tick()

	for _, id := range []string{"black", "sweepStart", "emblem", "idle"} {
		assert.True(t, s.Fired(id), id)
	}
	assert.Equal(t, Idle, s.Phase())
	assert.False(t, s.Running())
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, counts["black"])
	assert.Equal(t, 1, counts["emblem"])
	assert.Equal(t, 1, counts["idle"])
	assert.Equal(t, 1.0, stubs["lattice"].intensity)
	assert.Equal(t, 1, stubs["emblem"].reveals)
	for name, st := range stubs {
		assert.Equal(t, 1, st.idle, name)
	}

	s.Tick()
	assert.Equal(t, 1, completed, "completion fires once")
}

func TestRampsFanOutInLockStep(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	s := New(clock, bootActions(map[string]int{}))
	handles, stubs := bootLayers()
	require.NoError(t, s.Start(bootEntries(), handles))

	clock.Advance(1300 * time.Millisecond)
	s.Tick()
	assert.InDelta(t, 0.5, stubs["field"].intensity, 1e-9, "ramp runs from its authored offset")
	assert.Equal(t, stubs["field"].intensity, stubs["lattice"].intensity)

	clock.Advance(700 * time.Millisecond)
	s.Tick()
	assert.InDelta(t, 0.85, stubs["lattice"].intensity, 1e-9)
	assert.Equal(t, stubs["field"].intensity, stubs["lattice"].intensity)
}

func TestOutOfOrderAuthoring(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	counts := map[string]int{}
	s := New(clock, bootActions(counts))
	handles, _ := bootLayers()

	entries := bootEntries()
	entries[0], entries[3] = entries[3], entries[0]
	entries[1], entries[2] = entries[2], entries[1]
	require.NoError(t, s.Start(entries, handles))

	clock.Advance(2600 * time.Millisecond)
	s.Tick()
	assert.True(t, s.Fired("emblem"))
	assert.False(t, s.Fired("idle"))
	assert.Equal(t, Booting, s.Phase())

	clock.Advance(3 * time.Second)
	s.Tick()
	assert.Equal(t, Idle, s.Phase())
	assert.Equal(t, 1, counts["idle"])
}

func TestDuplicateActionFiresOnce(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	counts := map[string]int{}
	s := New(clock, bootActions(counts))
	handles, _ := bootLayers()
	entries := append(bootEntries(), Entry{Offset: 4 * time.Second, Action: "emblem"})
	require.NoError(t, s.Start(entries, handles))

	clock.Advance(10 * time.Second)
	s.Tick()
	assert.Equal(t, 1, counts["emblem"])
}

func TestExactlyOnceRegardlessOfTickGranularity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("every action fires exactly once", prop.ForAll(
		func(offsets []int, steps []int) bool {
			counts := map[string]int{}
			actions := map[string]Action{}
			entries := make([]Entry, len(offsets))
			for i, off := range offsets {
				id := string(rune('a'+i%26)) + string(rune('a'+i/26))
				entries[i] = Entry{Offset: time.Duration(off) * time.Millisecond, Action: id}
				actions[id] = Action{Kind: Call, Targets: []string{"x"}, Call: func(layer.Handle) { counts[id]++ }}
			}

			clock := anim.NewFakeClock(epoch)
			s := New(clock, actions)
			if err := s.Start(entries, map[string]layer.Handle{"x": &stubLayer{}}); err != nil {
				return false
			}
			for i := 0; s.Running(); i++ {
				step := 1
				if len(steps) > 0 {
					step = steps[i%len(steps)]
				}
				clock.Advance(time.Duration(step) * time.Millisecond)
				s.Tick()
			}
			for _, e := range entries {
				if counts[e.Action] != 1 {
					return false
				}
			}
			return s.Phase() == Idle
		},
		gen.SliceOfN(12, gen.IntRange(0, 3000)),
		gen.SliceOf(gen.IntRange(1, 1500)),
	))

	properties.TestingRun(t)
}

func TestReducedMotionMatchesFullRun(t *testing.T) {
	full := func(reduced bool) (map[string]*stubLayer, map[string]int, *Scheduler) {
		clock := anim.NewFakeClock(epoch)
		counts := map[string]int{}
		s := New(clock, bootActions(counts), WithReducedMotion(reduced))
		handles, stubs := bootLayers()
		require.NoError(t, s.Start(bootEntries(), handles))
		if !reduced {
			for s.Running() {
				clock.Advance(16 * time.Millisecond)
				s.Tick()
			}
		}
		return stubs, counts, s
	}

	animated, animatedCounts, a := full(false)
	settled, settledCounts, r := full(true)

	assert.Equal(t, Idle, r.Phase(), "reduced motion is idle as soon as Start returns")
	assert.Equal(t, a.Phase(), r.Phase())
	assert.Equal(t, animatedCounts, settledCounts)
	for name := range animated {
		assert.Equal(t, animated[name].intensity, settled[name].intensity, name)
		assert.Equal(t, animated[name].reveals, settled[name].reveals, name)
		assert.Equal(t, 1, settled[name].idle, name)
	}
	assert.Equal(t, 1.0, settled["emblem"].intensity)
}

func TestMissingLayersAreSkipped(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	counts := map[string]int{}
	s := New(clock, bootActions(counts))
	handles := map[string]layer.Handle{"field": &stubLayer{}, "lattice": nil}

	require.NotPanics(t, func() {
		require.NoError(t, s.Start(bootEntries(), handles))
		clock.Advance(6 * time.Second)
		s.Tick()
	})
	assert.Equal(t, Idle, s.Phase())
	assert.Equal(t, 0, counts["emblem"], "no emblem layer to call")
	assert.Equal(t, 1, counts["idle"])
}

func TestUnknownActionIsSkipped(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	s := New(clock, map[string]Action{})
	require.NoError(t, s.Start([]Entry{{Offset: 0, Action: "ghost"}}, nil))
	assert.True(t, s.Fired("ghost"))
	assert.Equal(t, Idle, s.Phase())
}

func TestCancelMidSequence(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	completed := 0
	counts := map[string]int{}
	s := New(clock, bootActions(counts), WithOnBootComplete(func() { completed++ }))
	handles, _ := bootLayers()
	require.NoError(t, s.Start(bootEntries(), handles))

	clock.Advance(time.Second)
	s.Tick()
	s.Cancel()
	assert.False(t, s.Running())

	clock.Advance(10 * time.Second)
	s.Tick()
	assert.Equal(t, 0, completed)
	assert.Equal(t, 0, counts["emblem"])
	assert.Equal(t, Booting, s.Phase())
}

func TestSettleMargin(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	s := New(clock, bootActions(map[string]int{}), WithSettleMargin(500*time.Millisecond))
	handles, _ := bootLayers()
	require.NoError(t, s.Start(bootEntries(), handles))

	clock.Advance(5200 * time.Millisecond)
	s.Tick()
	assert.True(t, s.Fired("idle"))
	assert.Equal(t, Booting, s.Phase())

	clock.Advance(300 * time.Millisecond)
	s.Tick()
	assert.Equal(t, Idle, s.Phase())
}

func TestStartValidation(t *testing.T) {
	clock := anim.NewFakeClock(epoch)
	s := New(clock, nil)
	err := s.Start([]Entry{{Offset: -time.Second, Action: "x"}}, nil)
	assert.ErrorIs(t, err, ErrInvalidEntry)
	assert.Equal(t, Gate, s.Phase())

	require.NoError(t, s.Start(nil, nil))
	assert.ErrorIs(t, s.Start(nil, nil), ErrNotGate)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "gate", Gate.String())
	assert.Equal(t, "booting", Booting.String())
	assert.Equal(t, "idle", Idle.String())
}
