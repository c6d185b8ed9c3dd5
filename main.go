package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/zenity"

	"github.com/iburimskiy/boot-sequence/internal/config"
	"github.com/iburimskiy/boot-sequence/internal/game"
	"github.com/iburimskiy/boot-sequence/internal/stage"
)

var (
	scenePath      = flag.String("scene", "", "Scene YAML file; the built-in scene when empty")
	pickScene      = flag.Bool("pick", false, "Choose the scene file in a dialog")
	reducedMotion  = flag.Bool("reduced-motion", false, "Settle the boot instantly")
	skipGate       = flag.Bool("skip-gate", false, "Start the boot without the continue screen")
	watchScene     = flag.Bool("watch", false, "Remount when the scene file changes")
	debugMode      = flag.Bool("debug", false, "Debug logging and overlay")
	mute           = flag.Bool("mute", false, "Start with the hum muted")
	snapshotDir    = flag.String("snapshot", "", "Render frames into this directory instead of opening a window")
	snapshotAt     = flag.String("snapshot-at", "0,300,2500,5000", "Comma separated snapshot offsets in milliseconds")
	snapshotFormat = flag.String("snapshot-format", "png", "Snapshot image format: png, bmp, tiff")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *debugMode {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(); err != nil {
		slog.Error("boot sequence failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.Default()

	path := *scenePath
	if *pickScene {
		picked, err := pickSceneFile()
		if err != nil {
			return err
		}
		if picked != "" {
			path = picked
		}
	}

	scene, err := config.Load(path)
	if err != nil {
		return err
	}
	logger.Info("scene loaded", "scene", scene.Name, "path", path)

	if *snapshotDir != "" {
		offsets, err := parseOffsets(*snapshotAt)
		if err != nil {
			return err
		}
		_, err = stage.Snapshot(scene, stage.SnapshotOptions{
			Dir:           *snapshotDir,
			Offsets:       offsets,
			Format:        *snapshotFormat,
			ReducedMotion: *reducedMotion,
			Logger:        logger,
		})
		return err
	}

	opts := game.Options{
		ReducedMotion: *reducedMotion,
		SkipGate:      *skipGate,
		Muted:         *mute,
		Debug:         *debugMode,
		Logger:        logger,
	}
	if *watchScene && path != "" {
		w, err := config.NewWatcher(path, config.WatchDebounce)
		if err != nil {
			return err
		}
		defer w.Close()
		opts.Reload = reloads(w, logger)
	}
	return game.Run(scene, opts)
}

// reloads turns watcher events into loaded scenes. A scene that fails to
// load is logged and skipped so a half-saved file never takes the window down.
func reloads(w *config.Watcher, logger *slog.Logger) <-chan *config.Scene {
	out := make(chan *config.Scene, 1)
	go func() {
		defer close(out)
		for {
			select {
			case path, ok := <-w.Events:
				if !ok {
					return
				}
				scene, err := config.Load(path)
				if err != nil {
					logger.Warn("scene reload skipped", "error", err)
					continue
				}
				select {
				case <-out:
				default:
				}
				out <- scene
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("scene watch error", "error", err)
			}
		}
	}()
	return out
}

func pickSceneFile() (string, error) {
	filename, err := zenity.SelectFile(
		zenity.Title("Open Scene"),
		zenity.FileFilters{{
			Name:     "Scene",
			Patterns: []string{"*.yaml", "*.yml"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", nil
		}
		return "", fmt.Errorf("pick scene: %w", err)
	}
	return filename, nil
}

func parseOffsets(s string) ([]time.Duration, error) {
	var out []time.Duration
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		ms, err := strconv.Atoi(f)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("snapshot offset %q: must be a non-negative integer", f)
		}
		out = append(out, time.Duration(ms)*time.Millisecond)
	}
	if len(out) == 0 {
		return nil, errors.New("no snapshot offsets")
	}
	return out, nil
}
