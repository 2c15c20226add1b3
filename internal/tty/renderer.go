package tty

import (
	"fmt"
	"math"

	"campfire/internal/core"
	"campfire/internal/fire"
	"campfire/internal/scene"

	"github.com/gdamore/tcell/v2"
)

// Heat tuning, in intensity units per frame.
const (
	coolStep   = 36
	coreHeat   = 70
	fuelHeat   = 45
	emberHeat  = 110
	heatRadius = 0.5
)

var heatRunes = []rune{' ', '.', ':', '*', '#', '@'}

// heatPalette runs from banked coals to white-hot, indexed by intensity/43.
var heatPalette = []tcell.Color{
	tcell.NewRGBColor(0x1F, 0x07, 0x07),
	tcell.NewRGBColor(0x77, 0x1F, 0x07),
	tcell.NewRGBColor(0xBF, 0x47, 0x07),
	tcell.NewRGBColor(0xDF, 0x57, 0x07),
	tcell.NewRGBColor(0xCF, 0x87, 0x17),
	tcell.NewRGBColor(0xEF, 0xEF, 0xC7),
}

var (
	base      = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	treeStyle = base.Foreground(tcell.NewRGBColor(0x2E, 0x6B, 0x3A))
	rockStyle = base.Foreground(tcell.ColorGray)
	dimStyle  = base.Foreground(tcell.ColorDarkGray)
	flyStyle  = base.Foreground(tcell.NewRGBColor(0xE8, 0xF0, 0x8A))
)

// Renderer draws scene frames onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
	heat   *Heat
	view   View
	prompt *Prompt
	status string
}

// NewRenderer draws onto screen, which must already be initialised.
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// SetPrompt shows p on the bottom line. Nil hides it.
func (r *Renderer) SetPrompt(p *Prompt) { r.prompt = p }

// SetStatus appends s to the status line.
func (r *Renderer) SetStatus(s string) { r.status = s }

// Render draws one frame.
func (r *Renderer) Render(st *scene.State) {
	w, h := r.screen.Size()
	if w <= 0 || h <= 0 {
		return
	}
	if r.heat == nil || r.heat.W != w || r.heat.H != h {
		r.heat = NewHeat(w, h)
	}
	r.view = NewView(w, h)
	r.screen.Clear()

	if st.ShowForest && st.World != nil && st.World.Visible {
		r.drawForest(st)
	}
	r.heat.Cool(coolStep)
	if st.ShowFire {
		r.stoke(st)
	}
	r.drawHeat()
	r.drawEntities(st)
	r.drawStatus(st, h)
	r.screen.Show()
}

func (r *Renderer) drawForest(st *scene.State) {
	for _, b := range st.World.Boulders {
		r.put(b.Position, 'o', rockStyle)
	}
	for _, f := range st.World.Fireflies {
		if st.World.FireflyOpacity > 0.3 {
			r.put(f.Position, '·', flyStyle)
		}
	}
	for _, t := range st.World.Trees {
		r.put(t.Position, '▲', treeStyle)
	}
}

// stoke adds the core glow and every live ember to the heat field.
func (r *Renderer) stoke(st *scene.State) {
	level := st.Fuel / fire.MaxFuel
	radius := r.view.Span(heatRadius + level*heatRadius)
	cx, cy := r.view.Cell(core.Vec3{})
	heat := coreHeat + int(level*fuelHeat*(1+st.Light.Flicker))
	for dy := -radius; dy <= radius; dy++ {
		for dx := -2 * radius; dx <= 2*radius; dx++ {
			d := math.Hypot(float64(dx)/2, float64(dy)) / math.Max(1, float64(radius))
			if d > 1 {
				continue
			}
			r.heat.Add(cx+dx, cy+dy, int(float64(heat)*(1-d*0.6)))
		}
	}
	for _, pool := range []*fire.Pool{st.Embers, st.BodyEmbers} {
		if pool == nil {
			continue
		}
		for _, pt := range pool.Points {
			if pt.Y == fire.Dead {
				continue
			}
			x, y := r.view.Cell(pt)
			r.heat.Add(x, y, emberHeat)
		}
	}
}

func (r *Renderer) drawHeat() {
	for y := 0; y < r.heat.H-reserved; y++ {
		for x := 0; x < r.heat.W; x++ {
			v := r.heat.At(x, y)
			if v < 16 {
				continue
			}
			i := min(int(v)/43, len(heatRunes)-1)
			r.screen.SetContent(x, y, heatRunes[i], nil, base.Foreground(heatPalette[i]))
		}
	}
}

func (r *Renderer) drawEntities(st *scene.State) {
	for _, e := range st.Entities {
		style := base
		if e.Leaving || e.Progress < 1 {
			style = dimStyle
		}
		x, y := r.put(e.Position, e.Glyph.Rune(), style)
		if e.Notice.Visible {
			r.screen.SetContent(x+2, y, e.Notice.Glyph.Rune(), nil, base.Foreground(tcell.ColorYellow))
		}
		if e.Speech.Shown() {
			preview := []rune(e.Speech.Preview)
			r.text(x-len(preview)/2, y-1, string(preview), base.Foreground(color(e.Speech.Tint)))
		}
	}
}

func (r *Renderer) drawStatus(st *scene.State, h int) {
	line := fmt.Sprintf("%s  %d here  fuel %.2f", st.Mode, len(st.Entities), st.Fuel)
	if st.Muted {
		line += "  muted"
	}
	if r.status != "" {
		line += "  " + r.status
	}
	r.text(0, h-reserved, line, dimStyle)
	if r.prompt != nil {
		r.text(0, h-1, "> "+r.prompt.Text(), base)
		r.screen.ShowCursor(2+len([]rune(r.prompt.Text())), h-1)
	}
}

// put draws ch at the ground position of p and returns its cell.
func (r *Renderer) put(p core.Vec3, ch rune, style tcell.Style) (int, int) {
	x, y := r.view.Cell(p)
	if r.heat.In(x, y) && y < r.heat.H-reserved {
		r.screen.SetContent(x, y, ch, nil, style)
	}
	return x, y
}

func (r *Renderer) text(x, y int, s string, style tcell.Style) {
	for _, ch := range s {
		if r.heat.In(x, y) {
			r.screen.SetContent(x, y, ch, nil, style)
		}
		x++
	}
}

func color(c core.RGB) tcell.Color {
	return tcell.NewRGBColor(channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) int32 { return int32(core.Clamp(v, 0, 1) * 255) }
