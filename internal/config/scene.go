package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/iburimskiy/boot-sequence/internal/anim"
	"github.com/iburimskiy/boot-sequence/internal/layer"
)

//go:embed scene.yaml
var defaultScene []byte

// LayerNames are the layers a scene may target, in draw order.
var LayerNames = []string{"field", "lattice", "beam", "particles", "hum"}

// Call names accepted in action specs.
const (
	CallNone     = "none"
	CallBlackout = "blackout"
	CallReveal   = "reveal"
	CallEvent    = "event"
)

var ErrInvalidScene = errors.New("config: invalid scene")

// Scene describes one boot sequence: palette, per-layer tuning, the action
// table and the timeline that schedules it.
type Scene struct {
	Name           string                `yaml:"name"`
	Viewport       ViewportSpec          `yaml:"viewport"`
	Palette        PaletteSpec           `yaml:"palette"`
	SettleMarginMs int                   `yaml:"settle_margin_ms"`
	Layers         LayersSpec            `yaml:"layers"`
	Actions        map[string]ActionSpec `yaml:"actions"`
	Timeline       []EntrySpec           `yaml:"timeline"`
	CTAs           []CTASpec             `yaml:"ctas"`
}

type ViewportSpec struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type PaletteSpec struct {
	Background Color `yaml:"background"`
	Start      Color `yaml:"start"`
	End        Color `yaml:"end"`
}

type LayersSpec struct {
	Lattice   LatticeSpec   `yaml:"lattice"`
	Field     FieldSpec     `yaml:"field"`
	Beam      BeamSpec      `yaml:"beam"`
	Particles ParticlesSpec `yaml:"particles"`
	Hum       HumSpec       `yaml:"hum"`
}

type LatticeSpec struct {
	CellRadius        float64 `yaml:"cell_radius"`
	Gap               float64 `yaml:"gap"`
	Axis              string  `yaml:"axis"`
	SweepMs           int     `yaml:"sweep_ms"`
	SweepWidth        float64 `yaml:"sweep_width"`
	RippleMs          int     `yaml:"ripple_ms"`
	RippleWidth       float64 `yaml:"ripple_width"`
	HeartbeatMs       int     `yaml:"heartbeat_ms"`
	HeartbeatJitterMs int     `yaml:"heartbeat_jitter_ms"`
	BreathMs          int     `yaml:"breath_ms"`
	Vignette          float64 `yaml:"vignette"`
}

type FieldSpec struct {
	Start       Color   `yaml:"start"`
	End         Color   `yaml:"end"`
	MinRadius   float64 `yaml:"min_radius"`
	MaxRadius   float64 `yaml:"max_radius"`
	PeakAlpha   float64 `yaml:"peak_alpha"`
	BreathMs    int     `yaml:"breath_ms"`
	BreathDepth float64 `yaml:"breath_depth"`
	Vignette    float64 `yaml:"vignette"`
}

type BeamSpec struct {
	Start         Color   `yaml:"start"`
	End           Color   `yaml:"end"`
	Spacing       float64 `yaml:"spacing"`
	MinBeams      int     `yaml:"min_beams"`
	MinLength     float64 `yaml:"min_length"`
	MaxLength     float64 `yaml:"max_length"`
	Width         float64 `yaml:"width"`
	FlickerHz     float64 `yaml:"flicker_hz"`
	CaptureRadius float64 `yaml:"capture_radius"`
	EventMs       int     `yaml:"event_ms"`
}

type ParticlesSpec struct {
	Start          Color   `yaml:"start"`
	End            Color   `yaml:"end"`
	Density        float64 `yaml:"density"`
	Activation     float64 `yaml:"activation"`
	MaxSpeed       float64 `yaml:"max_speed"`
	DriftAmp       float64 `yaml:"drift_amp"`
	DriftHz        float64 `yaml:"drift_hz"`
	MinSize        float64 `yaml:"min_size"`
	MaxSize        float64 `yaml:"max_size"`
	Margin         float64 `yaml:"margin"`
	ParallaxOffset float64 `yaml:"parallax_offset"`
	ParallaxFollow float64 `yaml:"parallax_follow"`
	EmblemRadius   float64 `yaml:"emblem_radius"`
	EmblemDots     int     `yaml:"emblem_dots"`
	RevealMs       int     `yaml:"reveal_ms"`
}

type HumSpec struct {
	BaseFreq float64 `yaml:"base_freq"`
	MaxGain  float64 `yaml:"max_gain"`
	IdleGain float64 `yaml:"idle_gain"`
	PingFreq float64 `yaml:"ping_freq"`
	PingMs   int     `yaml:"ping_ms"`
}

// ActionSpec is either a call or a ramp. Kind names the transient event an
// "event" call triggers at the viewport center; it defaults to ripple.
type ActionSpec struct {
	Call    string    `yaml:"call"`
	Kind    string    `yaml:"kind"`
	Ramp    *RampSpec `yaml:"ramp"`
	Targets []string  `yaml:"targets"`
}

// EventKind resolves Kind. Validate has already rejected unknown names.
func (a ActionSpec) EventKind() (anim.EventKind, error) {
	if a.Kind == "" {
		return anim.Ripple, nil
	}
	return anim.ParseEventKind(a.Kind)
}

type RampSpec struct {
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
	Ms   int     `yaml:"ms"`
}

type EntrySpec struct {
	At     int    `yaml:"at"`
	Action string `yaml:"action"`
}

type CTASpec struct {
	Label string `yaml:"label"`
}

// Color accepts "#rrggbb", "#rrggbbaa" or an SVG color name. Alpha is ignored.
type Color struct {
	colorful.Color
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return errors.New("config: color must be a string")
	}
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	c.Color = parsed
	return nil
}

// ParseColor resolves hex and named colors.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if named, ok := colornames.Map[strings.ToLower(s)]; ok {
		r, g, b := named.R, named.G, named.B
		return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return colorful.Color{}, fmt.Errorf("invalid color format: %s", s)
	}
	var ch [3]float64
	for i := range ch {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return colorful.Color{}, fmt.Errorf("invalid color format: %s: %w", s, err)
		}
		ch[i] = float64(v) / 255
	}
	return colorful.Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// Default returns the embedded scene.
func Default() (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(defaultScene, &s); err != nil {
		return nil, fmt.Errorf("config: unmarshal default scene: %w", err)
	}
	return &s, nil
}

// Load reads a scene file layered over the embedded default, so a file only
// needs the keys it changes. Actions merge by name; the timeline and CTA list
// are replaced wholesale when present. An empty path yields the default.
func Load(path string) (*Scene, error) {
	s, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return s, s.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	// an editor may truncate before it writes; an empty file is never a scene
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("config: %s: %w: empty file", path, ErrInvalidScene)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return s, nil
}

// Validate checks cross references between timeline, actions and layers.
func (s *Scene) Validate() error {
	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalidScene, s.Viewport.Width, s.Viewport.Height)
	}
	if s.SettleMarginMs < 0 {
		return fmt.Errorf("%w: negative settle margin", ErrInvalidScene)
	}
	switch s.Layers.Lattice.Axis {
	case "", "horizontal", "vertical":
	default:
		return fmt.Errorf("%w: lattice axis %q", ErrInvalidScene, s.Layers.Lattice.Axis)
	}
	for name, a := range s.Actions {
		if err := a.validate(); err != nil {
			return fmt.Errorf("%w: action %q: %w", ErrInvalidScene, name, err)
		}
	}
	for i, e := range s.Timeline {
		if e.At < 0 {
			return fmt.Errorf("%w: timeline[%d] at %d is negative", ErrInvalidScene, i, e.At)
		}
		if _, ok := s.Actions[e.Action]; !ok {
			return fmt.Errorf("%w: timeline[%d] references unknown action %q", ErrInvalidScene, i, e.Action)
		}
	}
	return nil
}

func (a ActionSpec) validate() error {
	if a.Ramp != nil && a.Call != "" {
		return errors.New("both call and ramp set")
	}
	if a.Ramp != nil {
		if a.Ramp.Ms < 0 {
			return errors.New("negative ramp duration")
		}
	} else {
		switch a.Call {
		case CallEvent:
			if _, err := a.EventKind(); err != nil {
				return err
			}
		case CallNone, CallBlackout, CallReveal:
			if a.Kind != "" {
				return fmt.Errorf("kind %q set on %s call", a.Kind, a.Call)
			}
		case "":
			return errors.New("neither call nor ramp set")
		default:
			return fmt.Errorf("unknown call %q", a.Call)
		}
	}
	for _, t := range a.Targets {
		if !slices.Contains(LayerNames, t) {
			return fmt.Errorf("unknown target layer %q", t)
		}
	}
	return nil
}

// SettleMargin is the idle hand-off delay after the last entry.
func (s *Scene) SettleMargin() time.Duration { return ms(s.SettleMarginMs) }

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

func (s LatticeSpec) Config(p PaletteSpec) layer.LatticeConfig {
	axis := layer.AxisHorizontal
	if s.Axis == "vertical" {
		axis = layer.AxisVertical
	}
	return layer.LatticeConfig{
		CellRadius:        s.CellRadius,
		Gap:               s.Gap,
		Start:             p.Start.Color,
		End:               p.End.Color,
		Axis:              axis,
		SweepDuration:     ms(s.SweepMs),
		SweepWidth:        s.SweepWidth,
		RippleDuration:    ms(s.RippleMs),
		RippleWidth:       s.RippleWidth,
		HeartbeatInterval: ms(s.HeartbeatMs),
		HeartbeatJitter:   ms(s.HeartbeatJitterMs),
		BreathPeriod:      ms(s.BreathMs),
		Vignette:          s.Vignette,
	}
}

func (s FieldSpec) Config() layer.FieldConfig {
	return layer.FieldConfig{
		Start:        s.Start.Color,
		End:          s.End.Color,
		MinRadius:    s.MinRadius,
		MaxRadius:    s.MaxRadius,
		PeakAlpha:    s.PeakAlpha,
		BreathPeriod: ms(s.BreathMs),
		BreathDepth:  s.BreathDepth,
		Vignette:     s.Vignette,
	}
}

func (s BeamSpec) Config() layer.BeamConfig {
	return layer.BeamConfig{
		Start:         s.Start.Color,
		End:           s.End.Color,
		Spacing:       s.Spacing,
		MinBeams:      s.MinBeams,
		MinLength:     s.MinLength,
		MaxLength:     s.MaxLength,
		Width:         s.Width,
		FlickerHz:     s.FlickerHz,
		CaptureRadius: s.CaptureRadius,
		EventDuration: ms(s.EventMs),
	}
}

func (s ParticlesSpec) Config() layer.ParticleConfig {
	return layer.ParticleConfig{
		Density:        s.Density,
		Activation:     s.Activation,
		MaxSpeed:       s.MaxSpeed,
		DriftAmp:       s.DriftAmp,
		DriftHz:        s.DriftHz,
		MinSize:        s.MinSize,
		MaxSize:        s.MaxSize,
		Margin:         s.Margin,
		Start:          s.Start.Color,
		End:            s.End.Color,
		ParallaxOffset: s.ParallaxOffset,
		ParallaxFollow: s.ParallaxFollow,
		EmblemRadius:   s.EmblemRadius,
		EmblemDots:     s.EmblemDots,
		RevealDuration: ms(s.RevealMs),
	}
}

func (s HumSpec) Config() layer.HumConfig {
	cfg := layer.DefaultHumConfig()
	cfg.BaseFreq = s.BaseFreq
	cfg.MaxGain = s.MaxGain
	cfg.IdleGain = s.IdleGain
	cfg.PingFreq = s.PingFreq
	cfg.PingDuration = ms(s.PingMs)
	return cfg
}
