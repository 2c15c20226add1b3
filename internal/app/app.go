//go:build ebiten

package app

import (
	"campfire/internal/core"
	"campfire/internal/render"
	"campfire/internal/scene"
	"campfire/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// hudWidth is the width of the parameter panel.
const hudWidth = 240

// Game adapts a scene to the ebiten.Game interface.
type Game struct {
	scene   *scene.Scene
	clock   core.Clock
	painter *render.Painter
	hud     *ui.HUD
	overlay *ui.Overlay
	showHUD bool
	width   int
	height  int
}

// New constructs a Game driving sc. The scene is ticked from Update.
func New(sc *scene.Scene, clock core.Clock, showHUD bool) *Game {
	if clock == nil {
		clock = core.SystemClock
	}
	return &Game{
		scene:   sc,
		clock:   clock,
		painter: render.NewPainter(),
		hud:     ui.NewHUD(sc, hudWidth),
		overlay: ui.NewOverlay(),
		showHUD: showHUD,
	}
}

var modeKeys = map[ebiten.Key]core.Mode{
	ebiten.Key1: core.ModeLanding,
	ebiten.Key2: core.ModePublic,
	ebiten.Key3: core.ModePrivate,
}

// Update handles input and advances the scene by one tick.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		_ = g.scene.Push(scene.SetMuted{Muted: !g.scene.Muted()})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.scene.Flare()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	for key, mode := range modeKeys {
		if inpututil.IsKeyJustPressed(key) {
			_ = g.scene.Push(scene.SetMode{Mode: mode})
		}
	}
	g.overlay.Update()
	if g.showHUD {
		g.hud.Update(g.width - hudWidth)
	}

	g.scene.Tick(g.clock())
	return nil
}

// Draw renders the last scene state.
func (g *Game) Draw(screen *ebiten.Image) {
	st := g.scene.State()
	g.painter.Draw(screen, st)
	g.overlay.Draw(screen, st)
	if g.showHUD {
		g.hud.Draw(screen, g.width-hudWidth)
	}
}

// Layout reports the window size as the logical size and forwards changes
// to the scene viewport.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.scene.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
