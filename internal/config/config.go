package config

import "time"

// Window
const (
	WindowWidth  = 1280
	WindowHeight = 720
	TargetFPS    = 60
	WindowTitle  = "boot sequence"
)

// Audio
const (
	SpeakerLatency = time.Second / 20
	TapRingSize    = 8192
	TapLevelSpan   = 2048
)

// Call-to-action buttons
const (
	ButtonWidth  = 168
	ButtonHeight = 44
	ButtonGap    = 24
)

// Gate
const (
	GateButtonWidth  = 200
	GateButtonHeight = 48
	GateLabel        = "continue"
)

// Hot reload
const (
	WatchDebounce = 100 * time.Millisecond
)

// Snapshot rendering
const (
	SnapshotStep = time.Second / TargetFPS
)
