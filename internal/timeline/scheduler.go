// Package timeline choreographs layers over a boot sequence: it fires
// authored actions at their offsets, drives intensity ramps across layers and
// hands off to idle.
package timeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/iburimskiy/boot-sequence/internal/anim"
	"github.com/iburimskiy/boot-sequence/internal/layer"
)

var (
	ErrNotGate      = errors.New("timeline: scheduler already started")
	ErrInvalidEntry = errors.New("timeline: invalid entry")
)

// Entry schedules the action with the given identifier at Offset after start.
type Entry struct {
	Offset time.Duration
	Action string
}

// ActionKind selects what an Action does when it fires.
type ActionKind int

const (
	// Call invokes Call once on every target handle.
	Call ActionKind = iota
	// Ramp animates intensity From -> To over Duration on every target.
	Ramp
)

// Action is what a timeline entry refers to. Targets name layers in the map
// passed to Start.
type Action struct {
	Kind     ActionKind
	Targets  []string
	Call     func(layer.Handle)
	From, To float64
	Duration time.Duration
}

// Reveal is a Call body that triggers a layer's one-shot reveal when it has one.
func Reveal(h layer.Handle) {
	if r, ok := h.(layer.Revealer); ok {
		r.Reveal()
	}
}

// Blackout is a Call body that drops a layer to zero intensity.
func Blackout(h layer.Handle) {
	h.SetIntensity(0)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithReducedMotion settles the whole timeline synchronously on Start.
func WithReducedMotion(on bool) Option {
	return func(s *Scheduler) { s.reducedMotion = on }
}

// WithSettleMargin delays the idle hand-off past the last entry.
func WithSettleMargin(d time.Duration) Option {
	return func(s *Scheduler) { s.settle = d }
}

// WithOnBootComplete registers the callback invoked once on the switch to Idle.
func WithOnBootComplete(fn func()) Option {
	return func(s *Scheduler) { s.onComplete = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// Scheduler is driven by Tick once per host redraw. It never touches layer
// internals, only the Handle methods.
type Scheduler struct {
	clock   anim.Clock
	actions map[string]Action
	logger  *slog.Logger

	reducedMotion bool
	settle        time.Duration
	onComplete    func()

	phase   Phase
	running bool
	start   time.Time
	entries []Entry
	layers  map[string]layer.Handle
	fired   map[string]bool
	ramps   []*anim.Ramp
	end     time.Duration
}

// New creates a scheduler in the Gate phase.
func New(clock anim.Clock, actions map[string]Action, opts ...Option) *Scheduler {
	if clock == nil {
		clock = anim.SystemClock{}
	}
	s := &Scheduler{
		clock:   clock,
		actions: actions,
		logger:  slog.Default(),
		fired:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "timeline")
	return s
}

func (s *Scheduler) Phase() Phase { return s.phase }

// Running reports whether the polling loop still wants ticks.
func (s *Scheduler) Running() bool { return s.running }

// Fired reports whether the action id has run.
func (s *Scheduler) Fired(id string) bool { return s.fired[id] }

// Elapsed is the time since Start, or zero before it.
func (s *Scheduler) Elapsed() time.Duration {
	if s.start.IsZero() {
		return 0
	}
	return max(s.clock.Now().Sub(s.start), 0)
}

// Start leaves the Gate and begins the boot sequence. Entries may be authored
// in any order. With reduced motion the sequence settles before Start returns.
func (s *Scheduler) Start(entries []Entry, layers map[string]layer.Handle) error {
	if s.phase != Gate {
		return ErrNotGate
	}
	for _, e := range entries {
		if e.Offset < 0 {
			return fmt.Errorf("%w: %q has negative offset %v", ErrInvalidEntry, e.Action, e.Offset)
		}
		s.end = max(s.end, e.Offset)
	}
	s.entries = append([]Entry(nil), entries...)
	s.layers = layers
	s.start = s.clock.Now()
	s.phase = Booting
	s.logger.Info("boot started", "entries", len(entries), "reduced_motion", s.reducedMotion)

	if s.reducedMotion {
		s.settleNow()
		return nil
	}
	s.running = true
	s.Tick()
	return nil
}

// Tick fires every due entry, steps live ramps and completes the boot once
// the last entry plus the settle margin has passed. Because progress is
// measured against the clock, one late tick does the same work as many
// punctual ones.
func (s *Scheduler) Tick() {
	if !s.running {
		return
	}
	now := s.clock.Now()
	elapsed := now.Sub(s.start)
	for _, e := range s.entries {
		if e.Offset <= elapsed && !s.fired[e.Action] {
			s.fire(e)
		}
	}

	live := s.ramps[:0]
	for _, r := range s.ramps {
		if !r.Step(now) {
			live = append(live, r)
		}
	}
	s.ramps = live

	if elapsed >= s.end+s.settle {
		s.finish()
	}
}

// Cancel stops the loop mid-sequence. No completion callback is made and the
// phase stays where it was.
func (s *Scheduler) Cancel() {
	if !s.running {
		return
	}
	s.running = false
	s.ramps = nil
	s.logger.Info("boot cancelled", "elapsed", s.Elapsed())
}

func (s *Scheduler) fire(e Entry) {
	s.fired[e.Action] = true
	a, ok := s.actions[e.Action]
	if !ok {
		s.logger.Debug("entry references unknown action", "action", e.Action)
		return
	}
	s.logger.Debug("action fired", "action", e.Action, "offset", e.Offset)

	switch a.Kind {
	case Call:
		if a.Call == nil {
			return
		}
		s.each(a, a.Call)
	case Ramp:
		// ramps are anchored to their authored offset, not to the tick that
		// noticed them, so a late tick lands them where they would have been
		at := s.start.Add(e.Offset)
		s.each(a, func(h layer.Handle) {
			s.ramps = append(s.ramps, anim.NewRamp(at, a.From, a.To, a.Duration, h.SetIntensity))
		})
	}
}

// each applies fn to every present target; absent or nil handles are skipped
// so one missing layer never blocks the sequence.
func (s *Scheduler) each(a Action, fn func(layer.Handle)) {
	for _, name := range a.Targets {
		h, ok := s.layers[name]
		if !ok || h == nil {
			s.logger.Debug("skipping missing layer", "layer", name)
			continue
		}
		fn(h)
	}
}

func (s *Scheduler) finish() {
	s.running = false
	for _, r := range s.ramps {
		r.Settle()
	}
	s.ramps = nil
	s.enterIdle()
}

// settleNow is the reduced-motion path: full intensity, every entry in offset
// order with ramps landed on their targets, then idle.
func (s *Scheduler) settleNow() {
	for name, h := range s.layers {
		if h == nil {
			s.logger.Debug("skipping missing layer", "layer", name)
			continue
		}
		h.SetIntensity(1)
	}
	ordered := append([]Entry(nil), s.entries...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Offset < ordered[j].Offset })
	for _, e := range ordered {
		if !s.fired[e.Action] {
			s.fire(e)
		}
	}
	for _, r := range s.ramps {
		r.Settle()
	}
	s.ramps = nil
	s.enterIdle()
}

func (s *Scheduler) enterIdle() {
	s.phase = Idle
	for name, h := range s.layers {
		if h == nil {
			s.logger.Debug("skipping missing layer", "layer", name)
			continue
		}
		h.EnterIdle()
	}
	s.logger.Info("boot complete", "elapsed", s.Elapsed())
	if s.onComplete != nil {
		s.onComplete()
	}
}
