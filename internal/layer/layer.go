// Package layer holds the visual subsystems that make up the boot sequence.
// Every layer owns its own state and is driven once per host redraw through
// Tick and Draw; the scheduler only talks to the Handle methods.
package layer

import (
	"log/slog"
	"time"

	"github.com/iburimskiy/boot-sequence/internal/anim"
	"github.com/iburimskiy/boot-sequence/internal/surface"
)

// Handle is the control surface exposed to the timeline scheduler.
type Handle interface {
	// SetIntensity sets how far the layer is booted; v is clamped to [0,1].
	SetIntensity(v float64)
	// EnterIdle switches the layer to its ambient behavior. Idempotent.
	EnterIdle()
	// TriggerTransientEvent enqueues a point-anchored, time-boxed effect.
	TriggerTransientEvent(x, y float64, kind anim.EventKind)
	// Reset returns the layer to its initial un-booted state.
	Reset()
}

// Revealer is implemented by layers with a one-shot reveal, such as starting
// the lattice sweep or showing the emblem.
type Revealer interface {
	Reveal()
}

// Layer is a Handle plus the redraw entry points used by the host.
type Layer interface {
	Handle
	Name() string
	Tick(f Frame)
	Draw(s surface.Surface)
	// Close stops the layer for good: no more ticks, queue cleared,
	// heartbeat cancelled.
	Close()
}

// Frame is what the host knows at each redraw.
type Frame struct {
	Now           time.Time
	Width, Height int
	// Visible is false while the window is unfocused or minimized. Per-frame
	// motion is skipped then; time-based effects still read the clock.
	Visible bool
}

// Mode is the per-layer boot state.
type Mode int

const (
	ModeOff Mode = iota
	ModeBooting
	ModeIdle
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeBooting:
		return "booting"
	case ModeIdle:
		return "idle"
	}
	return "unknown"
}

// base carries what every layer tracks: intensity, mode, viewport, the
// transient queue and the closed flag. Concrete layers embed it.
type base struct {
	name      string
	clock     anim.Clock
	logger    *slog.Logger
	intensity float64
	mode      Mode
	closed    bool

	width, height int
	origin        time.Time
	now           time.Time

	events   anim.Queue
	eventTTL time.Duration
}

func newBase(name string, clock anim.Clock, logger *slog.Logger, eventTTL time.Duration) base {
	if clock == nil {
		clock = anim.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	now := clock.Now()
	return base{
		name:     name,
		clock:    clock,
		logger:   logger.With("component", "layer", "layer", name),
		origin:   now,
		now:      now,
		eventTTL: eventTTL,
	}
}

func (b *base) Name() string { return b.name }

// Intensity reports the current clamped intensity.
func (b *base) Intensity() float64 { return b.intensity }

// Mode reports the current boot mode.
func (b *base) Mode() Mode { return b.mode }

func (b *base) Closed() bool { return b.closed }

// ActiveEvents returns unexpired transient events as of the last tick.
func (b *base) ActiveEvents() []anim.Event { return b.events.Active(b.now) }

func (b *base) setIntensity(v float64) {
	if b.closed {
		return
	}
	b.intensity = anim.Clamp01(v)
}

func (b *base) enterIdle() bool {
	if b.closed || b.mode == ModeIdle {
		return false
	}
	b.mode = ModeIdle
	b.logger.Debug("entered idle")
	return true
}

func (b *base) trigger(x, y float64, kind anim.EventKind) {
	if b.closed {
		return
	}
	b.events.Push(anim.Event{
		X:        x,
		Y:        y,
		Start:    b.clock.Now(),
		Duration: b.eventTTL,
		Kind:     kind,
	})
}

func (b *base) reset() {
	b.intensity = 0
	b.mode = ModeOff
	b.events.Clear()
	b.origin = b.clock.Now()
	b.now = b.origin
}

func (b *base) close() {
	b.reset()
	b.closed = true
}

// advance records the frame time and reports whether the viewport changed.
func (b *base) advance(f Frame) (resized bool) {
	if f.Now.After(b.now) {
		b.now = f.Now
	}
	if f.Width != b.width || f.Height != b.height {
		b.width, b.height = f.Width, f.Height
		return true
	}
	return false
}

// t is seconds since the layer was created or last reset.
func (b *base) t() float64 { return anim.Seconds(b.now, b.origin) }

func (b *base) center() (float64, float64) {
	return float64(b.width) / 2, float64(b.height) / 2
}
