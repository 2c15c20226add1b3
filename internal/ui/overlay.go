//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"campfire/internal/core"
	"campfire/internal/render"
	"campfire/internal/scene"
	"campfire/internal/world"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Placement band radii, matching entity placement.
const (
	ringInner = 2.0
	ringOuter = 3.5
	arcSteps  = 64
)

// Overlay draws debugging guides over the scene: the band participants are
// placed in, the tree gap and a marker on every entity.
type Overlay struct {
	visible bool
	params  world.Params
	pixel   *ebiten.Image
}

// NewOverlay constructs a hidden overlay using the default forest layout.
func NewOverlay() *Overlay {
	o := &Overlay{params: world.DefaultConfig().Params}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles the overlay with O.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		o.visible = !o.visible
	}
}

// Draw renders the guides for st.
func (o *Overlay) Draw(screen *ebiten.Image, st *scene.State) {
	if !o.visible || st == nil {
		return
	}
	b := screen.Bounds()
	proj := render.NewProjector(st.Camera, b.Dx(), b.Dy())

	band := color.RGBA{R: 60, G: 140, B: 220, A: 160}
	o.drawPath(screen, proj, render.Arc(ringInner, 0, 2*math.Pi, arcSteps), band)
	o.drawPath(screen, proj, render.Arc(ringOuter, 0, 2*math.Pi, arcSteps), band)

	gap := color.RGBA{R: 220, G: 90, B: 40, A: 200}
	dist := o.params.TreeDistMin
	o.drawPath(screen, proj, render.Arc(dist, o.params.TreeGapMin, o.params.TreeGapMax, arcSteps/4), gap)
	for _, a := range []float64{o.params.TreeGapMin, o.params.TreeGapMax} {
		o.drawPath(screen, proj, []core.Vec3{core.Polar(a, ringOuter, 0.02), core.Polar(a, dist, 0.02)}, gap)
	}

	mark := color.RGBA{R: 240, G: 240, B: 120, A: 220}
	for _, e := range st.Entities {
		if x, y, _, ok := proj.Project(e.Placement.Position); ok {
			o.drawPoint(screen, x, y, 5, mark)
		}
	}
}

func (o *Overlay) drawPath(screen *ebiten.Image, proj render.Projector, pts []core.Vec3, col color.RGBA) {
	for i := 1; i < len(pts); i++ {
		x1, y1, _, ok1 := proj.Project(pts[i-1])
		x2, y2, _, ok2 := proj.Project(pts[i])
		if ok1 && ok2 {
			o.drawLine(screen, x1, y1, x2, y2, 1.5, col)
		}
	}
}

func (o *Overlay) drawPoint(screen *ebiten.Image, x, y, size float64, col color.RGBA) {
	if size <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(x-size*0.5, y-size*0.5)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 || thickness <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}
