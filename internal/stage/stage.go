// Package stage mounts a scene: it builds the layers and wires the timeline
// to them. Windows and headless renders both drive a Stage.
package stage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/iburimskiy/boot-sequence/internal/anim"
	"github.com/iburimskiy/boot-sequence/internal/config"
	"github.com/iburimskiy/boot-sequence/internal/layer"
	"github.com/iburimskiy/boot-sequence/internal/surface"
	"github.com/iburimskiy/boot-sequence/internal/timeline"
)

// Stage owns one mounted boot sequence: the layers built from a scene, the
// scheduler driving them and the parallax input they share. It knows nothing
// about windows, so snapshots and tests drive it directly.
type Stage struct {
	clock         anim.Clock
	root          *slog.Logger
	logger        *slog.Logger
	reducedMotion bool
	onMount       func(*layer.Hum)
	onComplete    func()

	scene    *config.Scene
	parallax *anim.Parallax
	layers   []layer.Layer
	byName   map[string]layer.Layer
	lattice  *layer.Lattice
	hum      *layer.Hum
	sched    *timeline.Scheduler

	width, height int
	heartbeats    int
}

type Option func(*Stage)

// WithReducedMotion is read once per mount, when the boot starts.
func WithReducedMotion(on bool) Option {
	return func(s *Stage) { s.reducedMotion = on }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Stage) { s.root = l }
}

// WithMountHook is called with the fresh hum layer after every mount so the
// host can route it to the speaker.
func WithMountHook(fn func(*layer.Hum)) Option {
	return func(s *Stage) { s.onMount = fn }
}

func WithBootComplete(fn func()) Option {
	return func(s *Stage) { s.onComplete = fn }
}

func New(scene *config.Scene, clock anim.Clock, opts ...Option) *Stage {
	if clock == nil {
		clock = anim.SystemClock{}
	}
	s := &Stage{
		clock:    clock,
		root:     slog.Default(),
		parallax: &anim.Parallax{},
		width:    scene.Viewport.Width,
		height:   scene.Viewport.Height,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.root.With("component", "stage")
	s.mount(scene)
	return s
}

func (s *Stage) mount(scene *config.Scene) {
	s.scene = scene
	cfg := scene.Layers

	s.lattice = layer.NewLattice(cfg.Lattice.Config(scene.Palette), s.clock, s.root)
	s.hum = layer.NewHum(cfg.Hum.Config(), s.clock, s.root)
	field := layer.NewField(cfg.Field.Config(), s.clock, s.root)
	beam := layer.NewBeam(cfg.Beam.Config(), s.clock, s.root)
	particles := layer.NewParticles(cfg.Particles.Config(), s.parallax, s.clock, s.root)

	// draw order, back to front
	s.layers = []layer.Layer{field, s.lattice, beam, particles, s.hum}
	s.byName = make(map[string]layer.Layer, len(s.layers))
	for _, l := range s.layers {
		s.byName[l.Name()] = l
	}
	s.heartbeats = 0

	s.sched = timeline.New(s.clock, s.actions(),
		timeline.WithReducedMotion(s.reducedMotion),
		timeline.WithSettleMargin(scene.SettleMargin()),
		timeline.WithOnBootComplete(s.bootComplete),
		timeline.WithLogger(s.root),
	)
	s.logger.Debug("scene mounted", "scene", scene.Name, "layers", len(s.layers))
	if s.onMount != nil {
		s.onMount(s.hum)
	}
}

// actions turns the scene's action table into scheduler actions.
func (s *Stage) actions() map[string]timeline.Action {
	out := make(map[string]timeline.Action, len(s.scene.Actions))
	for id, spec := range s.scene.Actions {
		a := timeline.Action{Kind: timeline.Call, Targets: spec.Targets}
		if spec.Ramp != nil {
			a.Kind = timeline.Ramp
			a.From, a.To = spec.Ramp.From, spec.Ramp.To
			a.Duration = time.Duration(spec.Ramp.Ms) * time.Millisecond
		} else {
			switch spec.Call {
			case config.CallBlackout:
				a.Call = timeline.Blackout
			case config.CallReveal:
				a.Call = timeline.Reveal
			case config.CallEvent:
				kind, err := spec.EventKind()
				if err != nil {
					s.logger.Warn("skipping event action", "action", id, "error", err)
					continue
				}
				a.Call = func(h layer.Handle) {
					x, y := s.center()
					h.TriggerTransientEvent(x, y, kind)
				}
			}
		}
		out[id] = a
	}
	return out
}

func (s *Stage) entries() []timeline.Entry {
	out := make([]timeline.Entry, len(s.scene.Timeline))
	for i, e := range s.scene.Timeline {
		out[i] = timeline.Entry{Offset: time.Duration(e.At) * time.Millisecond, Action: e.Action}
	}
	return out
}

func (s *Stage) handles() map[string]layer.Handle {
	out := make(map[string]layer.Handle, len(s.byName))
	for name, l := range s.byName {
		out[name] = l
	}
	return out
}

func (s *Stage) bootComplete() {
	if s.onComplete != nil {
		s.onComplete()
	}
}

// Start leaves the gate.
func (s *Stage) Start() error {
	if err := s.sched.Start(s.entries(), s.handles()); err != nil {
		return fmt.Errorf("stage: start %s: %w", s.scene.Name, err)
	}
	return nil
}

// Remount tears the current sequence down and mounts scene in its place,
// skipping the gate.
func (s *Stage) Remount(scene *config.Scene) error {
	s.sched.Cancel()
	for _, l := range s.layers {
		l.Reset()
		l.Close()
	}
	s.mount(scene)
	s.logger.Info("scene remounted", "scene", scene.Name)
	return s.Start()
}

// Tick advances the scheduler and every layer by one redraw.
func (s *Stage) Tick(width, height int, visible bool) {
	s.width, s.height = width, height
	s.sched.Tick()
	f := layer.Frame{Now: s.clock.Now(), Width: width, Height: height, Visible: visible}
	for _, l := range s.layers {
		l.Tick(f)
	}
	s.forwardHeartbeat()
}

// forwardHeartbeat lets the hum ping on the lattice's auto-heartbeat.
func (s *Stage) forwardHeartbeat() {
	n := s.lattice.Heartbeats()
	if n > s.heartbeats {
		x, y := s.center()
		s.hum.TriggerTransientEvent(x, y, anim.Heartbeat)
	}
	s.heartbeats = n
}

// Draw paints the background and then every layer, back to front.
func (s *Stage) Draw(dst surface.Surface) {
	if dst == nil {
		return
	}
	w, h := dst.Size()
	dst.FillRect(0, 0, float64(w), float64(h), anim.RGBA(s.scene.Palette.Background.Color, 1))
	for _, l := range s.layers {
		l.Draw(dst)
	}
}

// Ripple is the call-to-action hook: a ripple on the lattice and beam at
// the element's center. The hum pings along.
func (s *Stage) Ripple(x, y float64) {
	for _, name := range []string{"lattice", "beam", "hum"} {
		if l, ok := s.byName[name]; ok {
			l.TriggerTransientEvent(x, y, anim.Ripple)
		}
	}
}

// Point feeds pointer positions to parallax.
func (s *Stage) Point(x, y float64) {
	s.parallax.Set(x, y, s.width, s.height)
}

// Close stops the sequence and every layer for good.
func (s *Stage) Close() {
	s.sched.Cancel()
	for _, l := range s.layers {
		l.Close()
	}
}

func (s *Stage) Phase() timeline.Phase { return s.sched.Phase() }

func (s *Stage) Elapsed() time.Duration { return s.sched.Elapsed() }

func (s *Stage) Scene() *config.Scene { return s.scene }

func (s *Stage) Hum() *layer.Hum { return s.hum }

// Layer returns the mounted layer with the given name, or nil.
func (s *Stage) Layer(name string) layer.Layer { return s.byName[name] }

func (s *Stage) center() (float64, float64) {
	return float64(s.width) / 2, float64(s.height) / 2
}
