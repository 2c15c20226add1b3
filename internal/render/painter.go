//go:build ebiten

package render

import (
	"image/color"
	"math"

	"campfire/internal/core"
	"campfire/internal/entity"
	"campfire/internal/fire"
	"campfire/internal/scene"
	"campfire/internal/world"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

var (
	skyColor    = color.RGBA{R: 0x05, G: 0x07, B: 0x12, A: 0xff}
	groundColor = core.RGB{R: 0.03, G: 0.025, B: 0.02}
	moonColor   = core.RGB{R: 0.9, G: 0.92, B: 1}
	emberColor  = core.RGB{R: 1, G: 0.55, B: 0.15}
	bodyColor   = core.RGB{R: 0.08, G: 0.06, B: 0.05}
	faceColor   = core.RGB{R: 1, G: 0.85, B: 0.6}
	grassColor  = core.RGB{R: 0.05, G: 0.12, B: 0.04}
	rockColor   = core.RGB{R: 0.12, G: 0.11, B: 0.1}
	fireflyTint = core.RGB{R: 0.8, G: 1, B: 0.4}
)

// Painter draws a scene state with ebiten primitives. Objects are projected
// through the scene camera and painted back to front.
type Painter struct {
	sprite *ebiten.Image
	white  *ebiten.Image
	vs     []ebiten.Vertex
	is     []uint16
	items  []drawItem
}

// NewPainter allocates the shared sprite images.
func NewPainter() *Painter {
	buf := make([]byte, fire.SpriteTexSize*fire.SpriteTexSize*4)
	fillRadialRGBA(buf, fire.SpriteTexSize, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	sprite := ebiten.NewImage(fire.SpriteTexSize, fire.SpriteTexSize)
	sprite.WritePixels(buf)
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	return &Painter{sprite: sprite, white: white}
}

// Draw paints st onto dst.
func (p *Painter) Draw(dst *ebiten.Image, st *scene.State) {
	dst.Fill(skyColor)
	if st == nil || st.World == nil {
		return
	}
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	proj := NewProjector(st.Camera, w, h)

	p.drawSky(dst, proj, st.World)
	p.items = p.items[:0]
	if st.ShowForest && st.World.Visible {
		p.queueForest(dst, proj, st)
	}
	if st.ShowFire {
		p.drawGroundGlow(dst, proj, st.Light)
		p.queueFire(dst, proj, st)
	}
	for _, e := range st.Entities {
		p.queueEntity(dst, proj, st, e)
	}
	sortBackToFront(p.items)
	for _, it := range p.items {
		it.draw()
	}
}

func (p *Painter) drawSky(dst *ebiten.Image, proj Projector, b *world.Bundle) {
	for _, s := range b.Stars {
		if x, y, _, ok := proj.Project(s); ok {
			vector.DrawFilledRect(dst, float32(x), float32(y), 1, 1, rgba(moonColor, 0.8), false)
		}
	}
	if x, y, depth, ok := proj.Project(b.Moon); ok {
		r := proj.PixelsPerUnit(depth) * 2
		p.glow(dst, x, y, r*4, rgba(moonColor, 0.15))
		vector.DrawFilledCircle(dst, float32(x), float32(y), float32(r), rgba(moonColor, 1), true)
	}
}

func (p *Painter) queueForest(dst *ebiten.Image, proj Projector, st *scene.State) {
	foliage := shade(st.Arena.Material(st.Materials.Foliage), st.Light)
	trunk := shade(st.Arena.Material(st.Materials.Trunk), st.Light)
	fog := st.Fog
	for _, t := range st.World.Trees {
		depth := proj.Depth(t.Position)
		p.items = append(p.items, drawItem{depth: depth, draw: func() {
			p.drawTree(dst, proj, t, foliage, trunk, fogFactor(depth, fog))
		}})
	}
	for _, b := range st.World.Boulders {
		depth := proj.Depth(b.Position)
		p.items = append(p.items, drawItem{depth: depth, draw: func() {
			if x, y, d, ok := proj.Project(b.Position); ok {
				r := b.Radius * proj.PixelsPerUnit(d)
				vector.DrawFilledCircle(dst, float32(x), float32(y), float32(r), rgba(rockColor, fogFactor(d, fog)), true)
			}
		}})
	}
	for _, g := range st.World.Grass {
		depth := proj.Depth(g.Position)
		p.items = append(p.items, drawItem{depth: depth, draw: func() {
			p.drawGrass(dst, proj, g, fogFactor(depth, fog))
		}})
	}
	for _, f := range st.World.Fireflies {
		depth := proj.Depth(f.Position)
		alpha := st.World.FireflyOpacity
		p.items = append(p.items, drawItem{depth: depth, draw: func() {
			if x, y, d, ok := proj.Project(f.Position); ok {
				p.glow(dst, x, y, proj.PixelsPerUnit(d)*0.4, rgba(fireflyTint, alpha))
			}
		}})
	}
}

func (p *Painter) drawTree(dst *ebiten.Image, proj Projector, t world.Tree, foliage, trunk core.RGB, fade float64) {
	bx, by, d, ok := proj.Project(t.Position)
	if !ok {
		return
	}
	ppu := proj.PixelsPerUnit(d) * t.Scale
	top := by - world.TrunkHeight*ppu
	vector.StrokeLine(dst, float32(bx), float32(by), float32(bx), float32(top), float32(world.TrunkRadius*2*ppu), rgba(trunk, fade), true)
	col := rgba(foliage, fade)
	for i := 0; i < world.ConeCount; i++ {
		cy := by - world.ConeY(i)*ppu
		half := world.ConeHeight / 2 * ppu
		r := world.ConeRadius(i) * ppu
		p.fillPolygon(dst, [][2]float64{{bx - r, cy + half}, {bx + r, cy + half}, {bx, cy - half}}, col)
	}
}

func (p *Painter) drawGrass(dst *ebiten.Image, proj Projector, g world.GrassClump, fade float64) {
	col := rgba(grassColor, fade)
	for _, b := range g.Blades {
		base := g.Position.Add(b.Offset.Scale(g.Scale))
		tip := base.Add(core.Vec3{X: math.Sin(b.TiltX) * 0.3 * g.Scale, Y: 0.4 * g.Scale})
		x0, y0, _, ok0 := proj.Project(base)
		x1, y1, _, ok1 := proj.Project(tip)
		if ok0 && ok1 {
			vector.StrokeLine(dst, float32(x0), float32(y0), float32(x1), float32(y1), 1, col, true)
		}
	}
}

func (p *Painter) drawGroundGlow(dst *ebiten.Image, proj Projector, l fire.Light) {
	x, y, d, ok := proj.Project(core.Vec3{})
	if !ok {
		return
	}
	r := fire.GlowRadius * l.GlowScale * proj.PixelsPerUnit(d)
	p.glow(dst, x, y, r, rgba(l.Color, l.GlowOpacity))
}

func (p *Painter) queueFire(dst *ebiten.Image, proj Projector, st *scene.State) {
	l := st.Light
	hearth := core.Vec3{Y: fire.CoreY}
	p.items = append(p.items, drawItem{depth: proj.Depth(hearth), draw: func() {
		for _, lg := range fire.Logs {
			half := core.Vec3{X: math.Cos(lg.Rotation.Y), Z: math.Sin(lg.Rotation.Y)}.Scale(fire.LogLength / 2)
			x0, y0, d, ok0 := proj.Project(lg.Position.Sub(half))
			x1, y1, _, ok1 := proj.Project(lg.Position.Add(half))
			if ok0 && ok1 {
				w := fire.LogRadius * 2 * proj.PixelsPerUnit(d)
				vector.StrokeLine(dst, float32(x0), float32(y0), float32(x1), float32(y1), float32(w), rgba(groundColor, 1), true)
			}
		}
		if x, y, d, ok := proj.Project(hearth); ok {
			r := fire.CoreRadius * l.CoreScale * proj.PixelsPerUnit(d) * 3
			p.glow(dst, x, y, r, rgba(l.Color, l.CoreOpacity))
			p.glow(dst, x, y, r*0.4, rgba(core.RGB{R: 1, G: 0.9, B: 0.6}, l.CoreOpacity))
		}
	}})
	for _, pool := range []*fire.Pool{st.Embers, st.BodyEmbers} {
		alpha := pool.Opacity
		for _, pt := range pool.Points {
			if pt.Y == fire.Dead {
				continue
			}
			p.items = append(p.items, drawItem{depth: proj.Depth(pt), draw: func() {
				if x, y, _, ok := proj.Project(pt); ok {
					vector.DrawFilledRect(dst, float32(x), float32(y), 2, 2, rgba(emberColor, alpha), false)
				}
			}})
		}
	}
}

func (p *Painter) queueEntity(dst *ebiten.Image, proj Projector, st *scene.State, e *entity.Entity) {
	depth := proj.Depth(e.Position)
	fog := fogFactor(depth, st.Fog)
	p.items = append(p.items, drawItem{depth: depth, draw: func() {
		bx, by, d, ok := proj.Project(e.Position)
		if !ok {
			return
		}
		ppu := proj.PixelsPerUnit(d) * e.Scale
		height := entity.BodyHeight * e.ScaleY * ppu
		width := 0.5 * ppu
		body := rgba(bodyColor, e.Body.Opacity*fog)
		vector.DrawFilledRect(dst, float32(bx-width/2), float32(by-height), float32(width), float32(height), body, true)
		vector.DrawFilledCircle(dst, float32(bx), float32(by-height), float32(width/2), body, true)

		faceY := by - entity.FaceHeight*e.ScaleY*ppu
		if e.Glow.Opacity > 0 {
			p.glow(dst, bx, faceY, width*2, rgba(st.Light.Color, e.Glow.Opacity))
		}
		p.drawGlyph(dst, e.Glyph, bx, faceY, width*0.35, rgba(faceColor, e.Face.Opacity*fog))

		if e.Notice.Visible {
			ny := by - height - 0.6*ppu
			r := 0.25 * ppu * e.Notice.Scale
			vector.DrawFilledCircle(dst, float32(bx), float32(ny), float32(r), rgba(core.White, e.Notice.Opacity*0.9), true)
			p.drawGlyph(dst, e.Notice.Glyph, bx, ny, r*0.6, rgba(bodyColor, e.Notice.Opacity))
		}
		if e.Speech.Shown() && e.Speech.Opacity > 0 {
			p.drawSpeech(dst, bx, by-e.Speech.Y*ppu, &e.Speech)
		}
	}})
}

func (p *Painter) drawSpeech(dst *ebiten.Image, x, baseY float64, s *entity.Speech) {
	face := basicfont.Face7x13
	const lineH, pad = 14, 6
	width := 0
	for _, line := range s.Lines {
		width = max(width, text.BoundString(face, line).Dx())
	}
	w := float64(width+2*pad) * max(s.ScaleX, 0.1)
	h := float64(len(s.Lines)*lineH + 2*pad)
	left, top := x-w/2, baseY-h
	vector.DrawFilledRect(dst, float32(left), float32(top), float32(w), float32(h), rgba(s.Tint, s.Opacity*0.9), true)
	ink := rgba(core.RGB{R: 0.1, G: 0.08, B: 0.06}, s.Opacity)
	for i, line := range s.Lines {
		text.Draw(dst, line, face, int(left)+pad, int(top)+pad+(i+1)*lineH-3, ink)
	}
}

// drawGlyph fills the glyph outline centred on x, y with radius r.
func (p *Painter) drawGlyph(dst *ebiten.Image, g entity.Glyph, x, y, r float64, col color.RGBA) {
	for _, poly := range entity.Outline(g, 1) {
		pts := make([][2]float64, len(poly))
		for i, pt := range poly {
			pts[i] = [2]float64{x + pt[0]*r, y - pt[1]*r}
		}
		p.fillPolygon(dst, pts, col)
	}
}

func (p *Painter) fillPolygon(dst *ebiten.Image, pts [][2]float64, col color.RGBA) {
	if len(pts) < 3 {
		return
	}
	var path vector.Path
	path.MoveTo(float32(pts[0][0]), float32(pts[0][1]))
	for _, pt := range pts[1:] {
		path.LineTo(float32(pt[0]), float32(pt[1]))
	}
	path.Close()
	p.vs, p.is = path.AppendVerticesAndIndicesForFilling(p.vs[:0], p.is[:0])
	r, g, b, a := float32(col.R)/255, float32(col.G)/255, float32(col.B)/255, float32(col.A)/255
	for i := range p.vs {
		p.vs[i].SrcX, p.vs[i].SrcY = 1, 1
		p.vs[i].ColorR, p.vs[i].ColorG, p.vs[i].ColorB, p.vs[i].ColorA = r, g, b, a
	}
	op := &ebiten.DrawTrianglesOptions{FillRule: ebiten.EvenOdd, AntiAlias: true}
	dst.DrawTriangles(p.vs, p.is, p.white, op)
}

// glow draws the radial sprite with radius r, blended additively.
func (p *Painter) glow(dst *ebiten.Image, x, y, r float64, col color.RGBA) {
	if r <= 0 || col.A == 0 {
		return
	}
	scale := 2 * r / fire.SpriteTexSize
	op := &ebiten.DrawImageOptions{Blend: ebiten.BlendLighter}
	op.GeoM.Translate(-fire.SpriteTexSize/2, -fire.SpriteTexSize/2)
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	dst.DrawImage(p.sprite, op)
}
