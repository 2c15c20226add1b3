package tty

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"campfire/internal/core"
	"campfire/internal/entity"
	"campfire/internal/scene"
	"campfire/internal/world"

	"github.com/gdamore/tcell/v2"
)

var t0 = time.UnixMilli(1_700_000_000_000)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func newScene(t *testing.T, r *Renderer) *scene.Scene {
	t.Helper()
	cfg := scene.DefaultConfig()
	wc := world.DefaultConfig()
	wc.Params.GrassClumps = 4
	wc.Params.Stars = 4
	wc.Params.Fireflies = 2
	cfg.World = wc
	s := scene.New(cfg, scene.Deps{
		Renderer: r,
		Clock:    func() time.Time { return t0 },
		Rand:     rand.New(rand.NewSource(3)),
	})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func screenText(screen tcell.SimulationScreen) []string {
	w, h := screen.Size()
	rows := make([]string, h)
	for y := 0; y < h; y++ {
		var b strings.Builder
		for x := 0; x < w; x++ {
			ch, _, _, _ := screen.GetContent(x, y)
			if ch == 0 {
				ch = ' '
			}
			b.WriteRune(ch)
		}
		rows[y] = b.String()
	}
	return rows
}

func contains(rows []string, s string) bool {
	for _, row := range rows {
		if strings.Contains(row, s) {
			return true
		}
	}
	return false
}

func TestRendersGlyphAndSpeech(t *testing.T) {
	screen := newScreen(t, 80, 24)
	r := NewRenderer(screen)
	s := newScene(t, r)

	heart := int(entity.GlyphHeart)
	p := entity.Participant{ID: "ana", JoinedAt: t0.UnixMilli(), GlyphIndex: &heart}
	if err := s.Push(scene.SetParticipants{Participants: []entity.Participant{p}, Seed: 42}); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := s.Push(scene.SetMessages{Messages: []entity.Message{{SenderID: "ana", Text: "hello", CreatedAt: t0.UnixMilli()}}}); err != nil {
		t.Fatalf("push: %v", err)
	}
	for i := 0; i < 60; i++ {
		s.Tick(t0.Add(time.Duration(i) * 50 * time.Millisecond))
	}

	rows := screenText(screen)
	if !contains(rows, string(entity.GlyphHeart.Rune())) {
		t.Fatalf("expected the heart glyph on screen:\n%s", strings.Join(rows, "\n"))
	}
	if !contains(rows, "hello") {
		t.Fatalf("expected the speech preview on screen:\n%s", strings.Join(rows, "\n"))
	}
	if !strings.HasPrefix(rows[22], "public") {
		t.Fatalf("expected the status line, got %q", rows[22])
	}
}

func TestRendersFireAtCentre(t *testing.T) {
	screen := newScreen(t, 80, 24)
	r := NewRenderer(screen)
	s := newScene(t, r)
	for i := 0; i < 10; i++ {
		s.Tick(t0.Add(time.Duration(i) * 50 * time.Millisecond))
	}
	x, y := r.view.Cell(core.Vec3{})
	if ch, _, _, _ := screen.GetContent(x, y); ch == ' ' || ch == 0 {
		t.Fatalf("expected heat at the fire cell (%d,%d)", x, y)
	}
}

func TestPromptShowsTypedLine(t *testing.T) {
	screen := newScreen(t, 40, 12)
	r := NewRenderer(screen)
	p := NewPrompt(10)
	r.SetPrompt(p)
	for _, ch := range "hi" {
		p.Key(tcell.NewEventKey(tcell.KeyRune, ch, tcell.ModNone))
	}
	r.Render(&scene.State{Mode: core.ModeLanding})
	if row := screenText(screen)[11]; !strings.HasPrefix(row, "> hi") {
		t.Fatalf("expected the prompt line, got %q", row)
	}
}

func TestPromptKeys(t *testing.T) {
	p := NewPrompt(3)
	for _, ch := range "abcd" {
		p.Key(tcell.NewEventKey(tcell.KeyRune, ch, tcell.ModNone))
	}
	if p.Text() != "abc" {
		t.Fatalf("expected the limit to hold, got %q", p.Text())
	}
	p.Key(tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone))
	if p.Text() != "ab" {
		t.Fatalf("expected backspace to drop a rune, got %q", p.Text())
	}
	line, ok := p.Key(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	if !ok || line != "ab" || p.Text() != "" {
		t.Fatalf("expected enter to submit, got %q ok=%v rest=%q", line, ok, p.Text())
	}
	if _, ok := p.Key(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)); ok {
		t.Fatal("expected a blank line to be swallowed")
	}
}

func TestHeatCoolsAndSaturates(t *testing.T) {
	g := NewHeat(4, 3)
	g.Add(1, 1, 200)
	g.Add(1, 1, 200)
	if g.At(1, 1) != 255 {
		t.Fatalf("expected saturation, got %d", g.At(1, 1))
	}
	g.Add(9, 9, 50)
	if g.At(9, 9) != 0 {
		t.Fatal("expected writes off the grid to be ignored")
	}
	g.Cool(100)
	g.Cool(200)
	if g.At(1, 1) != 0 {
		t.Fatalf("expected cooling to stop at zero, got %d", g.At(1, 1))
	}
}

func TestViewFitsExtent(t *testing.T) {
	v := NewView(80, 24)
	cx, cy := v.Cell(core.Vec3{})
	if cx != 40 || cy != 11 {
		t.Fatalf("expected the centre at 40,11, got %d,%d", cx, cy)
	}
	_, top := v.Cell(core.Vec3{Z: -Extent + 0.01})
	_, bottom := v.Cell(core.Vec3{Z: Extent - 0.01})
	if top < 0 || bottom >= 24-reserved {
		t.Fatalf("expected the extent to fit, got rows %d..%d", top, bottom)
	}
	lx, _ := v.Cell(core.Vec3{X: -1})
	rx, _ := v.Cell(core.Vec3{X: 1})
	if rx-lx < 2 {
		t.Fatalf("expected X to be stretched, got %d..%d", lx, rx)
	}
}
