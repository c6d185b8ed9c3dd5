package game

import (
	"fmt"
	"log/slog"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"

	"github.com/iburimskiy/boot-sequence/internal/config"
	"github.com/iburimskiy/boot-sequence/internal/layer"
)

// audio routes the hum layer to the speaker: hum -> tap -> volume -> ctrl.
// The speaker is initialized once; a remount swaps the chain.
type audio struct {
	logger   *slog.Logger
	initDone bool
	failed   bool
	format   beep.Format

	tap    *layer.Tap
	volume *effects.Volume
	ctrl   *beep.Ctrl
	muted  bool
}

func newAudio(muted bool, logger *slog.Logger) *audio {
	return &audio{muted: muted, logger: logger.With("component", "audio")}
}

// attach plays h, replacing whatever was playing. A speaker that fails to
// initialize leaves the hum silent; the animation runs regardless.
func (a *audio) attach(h *layer.Hum) {
	if a.failed || h == nil {
		return
	}
	format := h.Format()
	if err := a.init(format); err != nil {
		a.failed = true
		a.logger.Warn("audio disabled", "error", err)
		return
	}

	t := layer.NewTap(h, config.TapRingSize)
	vol := &effects.Volume{Streamer: t, Base: 2, Volume: 0, Silent: a.muted}
	ctrl := &beep.Ctrl{Streamer: vol}

	speaker.Lock()
	speaker.Clear()
	a.tap, a.volume, a.ctrl = t, vol, ctrl
	speaker.Unlock()
	speaker.Play(ctrl)
}

func (a *audio) init(format beep.Format) error {
	bufferSize := format.SampleRate.N(config.SpeakerLatency)
	switch {
	case !a.initDone:
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			return fmt.Errorf("game: init speaker: %w", err)
		}
		a.initDone = true
	case a.format.SampleRate != format.SampleRate:
		speaker.Lock()
		speaker.Clear()
		speaker.Unlock()
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			return fmt.Errorf("game: reinit speaker: %w", err)
		}
	}
	a.format = format
	return nil
}

func (a *audio) toggleMute() {
	a.muted = !a.muted
	if a.volume == nil {
		return
	}
	speaker.Lock()
	a.volume.Silent = a.muted
	speaker.Unlock()
}

// pause holds the stream while the window is hidden.
func (a *audio) pause(paused bool) {
	if a.ctrl == nil || a.ctrl.Paused == paused {
		return
	}
	speaker.Lock()
	a.ctrl.Paused = paused
	speaker.Unlock()
}

// level is the RMS of what was played most recently.
func (a *audio) level() float64 {
	if a.tap == nil {
		return 0
	}
	return a.tap.Level(config.TapLevelSpan)
}

func (a *audio) close() {
	if !a.initDone {
		return
	}
	speaker.Lock()
	speaker.Clear()
	speaker.Unlock()
}
