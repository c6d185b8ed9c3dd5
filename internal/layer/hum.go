package layer

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"

	"github.com/iburimskiy/boot-sequence/internal/anim"
	"github.com/iburimskiy/boot-sequence/internal/surface"
)

// HumConfig tunes the boot drone.
type HumConfig struct {
	SampleRate   beep.SampleRate
	BaseFreq     float64
	MaxGain      float64
	IdleGain     float64
	PingFreq     float64
	PingDuration time.Duration
	// Glide is the per-sample fraction the gain moves toward its target.
	Glide float64
}

func DefaultHumConfig() HumConfig {
	return HumConfig{
		SampleRate:   beep.SampleRate(44100),
		BaseFreq:     55,
		MaxGain:      0.22,
		IdleGain:     0.5,
		PingFreq:     880,
		PingDuration: 180 * time.Millisecond,
		Glide:        0.0005,
	}
}

type ping struct {
	phase     float64
	freq      float64
	remaining int
	total     int
}

// Hum is an audio layer: a low drone whose loudness follows intensity, with
// a short ping for every transient event. It draws nothing.
// Stream runs on the audio device goroutine, so the fields it shares with
// the redraw side are guarded by mu.
type Hum struct {
	base
	cfg HumConfig

	mu     sync.Mutex
	target float64
	gain   float64
	phase  float64
	phase2 float64
	pings  []ping
	ended  bool
}

func NewHum(cfg HumConfig, clock anim.Clock, logger *slog.Logger) *Hum {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultHumConfig().SampleRate
	}
	return &Hum{
		base: newBase("hum", clock, logger, 0),
		cfg:  cfg,
	}
}

// Format is the stream format the speaker should be initialized with.
func (h *Hum) Format() beep.Format {
	return beep.Format{SampleRate: h.cfg.SampleRate, NumChannels: 2, Precision: 2}
}

func (h *Hum) SetIntensity(v float64) {
	h.setIntensity(v)
	if h.intensity > 0 && h.mode == ModeOff {
		h.mode = ModeBooting
	}
	h.retarget()
}

func (h *Hum) EnterIdle() {
	if h.enterIdle() {
		h.retarget()
	}
}

func (h *Hum) TriggerTransientEvent(_, _ float64, kind anim.EventKind) {
	if h.closed {
		return
	}
	freq := h.cfg.PingFreq
	if kind == anim.Heartbeat {
		freq /= 2
	}
	n := h.cfg.SampleRate.N(h.cfg.PingDuration)
	h.mu.Lock()
	h.pings = append(h.pings, ping{freq: freq, remaining: n, total: n})
	h.mu.Unlock()
}

func (h *Hum) Reset() {
	h.reset()
	h.mu.Lock()
	h.pings = nil
	h.target = 0
	h.mu.Unlock()
}

// Close silences the stream and lets the speaker drop it.
func (h *Hum) Close() {
	h.Reset()
	h.close()
	h.mu.Lock()
	h.ended = true
	h.mu.Unlock()
}

func (h *Hum) Tick(f Frame) {
	if h.closed {
		return
	}
	h.advance(f)
}

func (h *Hum) Draw(surface.Surface) {}

func (h *Hum) retarget() {
	g := h.intensity * h.cfg.MaxGain
	if h.mode == ModeIdle {
		g *= h.cfg.IdleGain
	}
	h.mu.Lock()
	h.target = g
	h.mu.Unlock()
}

// Stream implements beep.Streamer.
func (h *Hum) Stream(samples [][2]float64) (n int, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ended {
		return 0, false
	}

	sr := float64(h.cfg.SampleRate)
	step := 2 * math.Pi * h.cfg.BaseFreq / sr
	for i := range samples {
		h.gain += (h.target - h.gain) * h.cfg.Glide
		h.phase = math.Mod(h.phase+step, 2*math.Pi)
		h.phase2 = math.Mod(h.phase2+step*1.5, 2*math.Pi)
		v := (0.7*math.Sin(h.phase) + 0.3*math.Sin(h.phase2)) * h.gain

		live := h.pings[:0]
		for _, p := range h.pings {
			env := float64(p.remaining) / float64(p.total)
			v += math.Sin(p.phase) * env * env * 0.2
			p.phase = math.Mod(p.phase+2*math.Pi*p.freq/sr, 2*math.Pi)
			p.remaining--
			if p.remaining > 0 {
				live = append(live, p)
			}
		}
		h.pings = live

		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (h *Hum) Err() error { return nil }
