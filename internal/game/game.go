// Package game hosts the boot sequence in an ebiten window: the gate, the
// call-to-action row, pointer and keyboard routing, hot reload and the
// debug overlay.
package game

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/iburimskiy/boot-sequence/internal/config"
	"github.com/iburimskiy/boot-sequence/internal/layer"
	"github.com/iburimskiy/boot-sequence/internal/stage"
	"github.com/iburimskiy/boot-sequence/internal/timeline"
)

// Options are the host settings read once at startup.
type Options struct {
	ReducedMotion bool
	SkipGate      bool
	Muted         bool
	Debug         bool
	// Reload delivers freshly loaded scenes; nil disables hot reload.
	Reload <-chan *config.Scene
	Logger *slog.Logger
}

type Game struct {
	opts   Options
	logger *slog.Logger

	stage   *stage.Stage
	audio   *audio
	surface ebitenSurface

	gate *stage.Menu
	ctas *stage.Menu
	// ctaReady is set by the stage once the boot hands off to idle.
	ctaReady bool

	width, height int
	lastErr       error
}

func NewGame(scene *config.Scene, opts Options) *Game {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := &Game{
		opts:   opts,
		logger: logger.With("component", "game"),
		audio:  newAudio(opts.Muted, logger),
		gate:   stage.NewMenu(config.GateLabel),
		width:  scene.Viewport.Width,
		height: scene.Viewport.Height,
	}
	g.stage = stage.New(scene, nil,
		stage.WithReducedMotion(opts.ReducedMotion),
		stage.WithLogger(logger),
		stage.WithMountHook(g.audio.attach),
		stage.WithBootComplete(g.bootComplete),
	)
	g.ctas = g.menuFor(scene)

	if opts.SkipGate {
		g.start()
	}
	return g
}

func (g *Game) menuFor(scene *config.Scene) *stage.Menu {
	labels := make([]string, len(scene.CTAs))
	for i, c := range scene.CTAs {
		labels[i] = c.Label
	}
	return stage.NewMenu(labels...)
}

func (g *Game) bootComplete() {
	g.ctaReady = true
	g.logger.Info("boot complete, call to action enabled", "buttons", len(g.ctas.Buttons))
}

func (g *Game) start() {
	if err := g.stage.Start(); err != nil {
		g.lastErr = err
		g.logger.Error("boot start failed", "error", err)
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.audio.toggleMute()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.opts.Debug = !g.opts.Debug
	}
	g.reload()

	w, h := float64(g.width), float64(g.height)
	g.gate.Layout(g.width, g.height, config.GateButtonWidth, config.GateButtonHeight, 0, 0.5)
	g.ctas.Layout(g.width, g.height, config.ButtonWidth, config.ButtonHeight, config.ButtonGap, 0.82)

	cx, cy := ebiten.CursorPosition()
	mx, my := float64(cx), float64(cy)
	if mx >= 0 && my >= 0 && mx <= w && my <= h {
		g.stage.Point(mx, my)
	}

	switch {
	case g.stage.Phase() == timeline.Gate:
		g.updateGate(mx, my)
	case g.ctaReady:
		g.updateCTAs(mx, my)
	}

	visible := ebiten.IsFocused()
	g.audio.pause(!visible)
	g.stage.Tick(g.width, g.height, visible)
	return nil
}

func (g *Game) updateGate(mx, my float64) {
	g.gate.Hover(mx, my)
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.gate.Press(mx, my)
	}
	clicked := false
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		clicked = g.gate.Release(mx, my) != nil
	}
	if clicked || inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.start()
	}
}

func (g *Game) updateCTAs(mx, my float64) {
	for _, b := range g.ctas.Hover(mx, my) {
		g.stage.Ripple(b.Center())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if b := g.ctas.FocusNext(); b != nil {
			g.stage.Ripple(b.Center())
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.ctas.Press(mx, my)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if b := g.ctas.Release(mx, my); b != nil {
			// navigation is the surrounding site's concern
			g.logger.Info("call to action", "label", b.Label)
		}
	}
}

// reload remounts on the newest pending scene.
func (g *Game) reload() {
	if g.opts.Reload == nil {
		return
	}
	var scene *config.Scene
drain:
	for {
		select {
		case s, ok := <-g.opts.Reload:
			if !ok {
				g.opts.Reload = nil
				break drain
			}
			scene = s
		default:
			break drain
		}
	}
	if scene == nil {
		return
	}
	g.ctas = g.menuFor(scene)
	g.ctaReady = false
	if err := g.stage.Remount(scene); err != nil {
		g.lastErr = err
		g.logger.Error("remount failed", "error", err)
		return
	}
	g.lastErr = nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.stage.Draw(g.surface.target(screen))

	switch {
	case g.stage.Phase() == timeline.Gate:
		g.drawMenu(screen, g.gate)
	case g.ctaReady:
		g.drawMenu(screen, g.ctas)
	}

	if g.opts.Debug {
		g.drawDebug(screen)
	}
	if g.lastErr != nil {
		ebitenutil.DebugPrintAt(screen, "Error: "+g.lastErr.Error(), 12, g.height-24)
	}
}

func (g *Game) drawMenu(screen *ebiten.Image, m *stage.Menu) {
	m.Draw(g.surface.target(screen))
	for _, b := range m.Buttons {
		x, y := labelOrigin(b.Label, b.X, b.Y, b.W, b.H)
		ebitenutil.DebugPrintAt(screen, b.Label, x, y)
	}
}

func (g *Game) drawDebug(screen *ebiten.Image) {
	status := fmt.Sprintf("phase %s | t %s | fps %.1f | hum %.3f",
		g.stage.Phase(), formatElapsed(g.stage.Elapsed()), ebiten.ActualFPS(), g.audio.level())
	if g.audio.muted {
		status += " (muted)"
	}
	ebitenutil.DebugPrintAt(screen, status, 12, 12)

	y := 28
	for _, name := range config.LayerNames {
		l := g.stage.Layer(name)
		if l == nil {
			continue
		}
		if s, ok := l.(interface {
			Intensity() float64
			Mode() layer.Mode
		}); ok {
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%-9s %-7s %.2f", name, s.Mode(), s.Intensity()), 12, y)
			y += 16
		}
	}
}

// Layout tracks the window size; layers pick it up from the next frame.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		g.width, g.height = outsideWidth, outsideHeight
	}
	return g.width, g.height
}

// Close releases the audio device and stops every layer.
func (g *Game) Close() {
	g.stage.Close()
	g.audio.close()
}

// Run opens the window and blocks until it is closed.
func Run(scene *config.Scene, opts Options) error {
	ebiten.SetWindowSize(scene.Viewport.Width, scene.Viewport.Height)
	ebiten.SetWindowTitle(config.WindowTitle)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(config.TargetFPS)

	g := NewGame(scene, opts)
	defer g.Close()
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("game: run: %w", err)
	}
	return nil
}
