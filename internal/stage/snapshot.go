package stage

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/iburimskiy/boot-sequence/internal/anim"
	"github.com/iburimskiy/boot-sequence/internal/config"
	"github.com/iburimskiy/boot-sequence/internal/surface"
)

var ErrSnapshotFormat = errors.New("stage: unknown snapshot format")

// snapshotEpoch pins the fake clock so repeated runs produce identical files.
var snapshotEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type encoder func(io.Writer, image.Image) error

var encoders = map[string]encoder{
	"png":  png.Encode,
	"bmp":  bmp.Encode,
	"tiff": func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) },
}

// SnapshotOptions controls a headless render.
type SnapshotOptions struct {
	Dir           string
	Offsets       []time.Duration
	Format        string
	ReducedMotion bool
	Logger        *slog.Logger
}

// Snapshot boots scene on a fake clock and writes one image per offset.
// Frames are stepped at the target frame rate in between so per-frame
// motion matches a live run. It returns the written paths in offset order.
func Snapshot(scene *config.Scene, opts SnapshotOptions) ([]string, error) {
	format := opts.Format
	if format == "" {
		format = "png"
	}
	encode, ok := encoders[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSnapshotFormat, format)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("stage: snapshot dir: %w", err)
	}

	offsets := slices.Clone(opts.Offsets)
	slices.Sort(offsets)

	w, h := scene.Viewport.Width, scene.Viewport.Height
	clock := anim.NewFakeClock(snapshotEpoch)
	st := New(scene, clock, WithReducedMotion(opts.ReducedMotion), WithLogger(logger))
	defer st.Close()

	if err := st.Start(); err != nil {
		return nil, err
	}
	st.Tick(w, h, true)

	raster := surface.NewRaster(w, h)
	paths := make([]string, 0, len(offsets))
	var elapsed time.Duration
	for _, at := range offsets {
		for elapsed < at {
			step := min(config.SnapshotStep, at-elapsed)
			clock.Advance(step)
			elapsed += step
			st.Tick(w, h, true)
		}

		raster.Clear(image.Transparent)
		st.Draw(raster)

		path := filepath.Join(opts.Dir, fmt.Sprintf("%s-%05dms.%s", scene.Name, at.Milliseconds(), format))
		if err := writeImage(path, raster.Image(), encode); err != nil {
			return paths, err
		}
		logger.Info("snapshot written", "path", path, "phase", st.Phase())
		paths = append(paths, path)
	}
	return paths, nil
}

func writeImage(path string, m image.Image, encode encoder) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stage: snapshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("stage: snapshot: %w", cerr)
		}
	}()
	if err := encode(f, m); err != nil {
		return fmt.Errorf("stage: encode %s: %w", path, err)
	}
	return nil
}
