package fire

import (
	"image/color"
	"math"

	"campfire/internal/core"
	"campfire/internal/gfx"
)

// Log is one piece of firewood in the stack.
type Log struct {
	Position core.Vec3
	Rotation core.Vec3
}

// Logs is the fixed firewood arrangement.
var Logs = []Log{
	{Position: core.Vec3{Y: 0.1}, Rotation: core.Vec3{Y: math.Pi / 4, Z: math.Pi / 2.2}},
	{Position: core.Vec3{Y: 0.1}, Rotation: core.Vec3{Y: -math.Pi / 4, Z: math.Pi / 1.8}},
	{Position: core.Vec3{X: 0.1, Y: 0.2}, Rotation: core.Vec3{X: math.Pi / 2}},
	{Position: core.Vec3{X: -0.1, Y: 0.15}, Rotation: core.Vec3{X: math.Pi / 2.1, Y: math.Pi / 2, Z: 0.2}},
	{Position: core.Vec3{Y: 0.25, Z: 0.1}, Rotation: core.Vec3{X: 0.3, Y: 1.1, Z: math.Pi / 2}},
}

// Hearth geometry.
const (
	LogRadius     = 0.12
	LogLength     = 1.8
	CoreRadius    = 0.3
	CoreY         = 0.3
	GlowRadius    = 5
	GroundSize    = 100
	LightY        = 1.5
	SpriteTexSize = 32
)

// Hearth owns the fire's static meshes: logs, core, ground, ground glow and
// the two ember point clouds.
type Hearth struct {
	LogGeo       gfx.Handle
	LogMat       gfx.Handle
	CoreGeo      gfx.Handle
	CoreMat      gfx.Handle
	GroundGeo    gfx.Handle
	GroundMat    gfx.Handle
	GlowGeo      gfx.Handle
	GlowMat      gfx.Handle
	Sprite       gfx.Handle
	EmberGeo     gfx.Handle
	EmberMat     gfx.Handle
	BodyEmberGeo gfx.Handle
	BodyEmberMat gfx.Handle

	group *gfx.Group
}

// NewHearth allocates the hearth resources.
func NewHearth(arena *gfx.Arena, embers, body PoolConfig) *Hearth {
	g := gfx.NewGroup(arena)
	h := &Hearth{group: g}
	h.LogGeo = g.Geometry(gfx.Geometry{Shape: gfx.ShapeCylinder, Dims: []float64{LogRadius, LogLength, 8}})
	h.LogMat = g.Material(gfx.Material{Name: "log", Color: color.RGBA{R: 0x1a, G: 0x12, B: 0x12, A: 0xff}, Opacity: 1})
	h.CoreGeo = g.Geometry(gfx.Geometry{Shape: gfx.ShapeIcosahedron, Dims: []float64{CoreRadius, 1}})
	h.CoreMat = g.Material(gfx.Material{Name: "core", Color: color.RGBA{R: 0xff, G: 0x44, B: 0x00, A: 0xff}, Opacity: 0.8, Blend: gfx.BlendAdditive})
	h.GroundGeo = g.Geometry(gfx.Geometry{Shape: gfx.ShapePlane, Dims: []float64{GroundSize, GroundSize}})
	h.GroundMat = g.Material(gfx.Material{Name: "ground", Color: color.RGBA{R: 0x02, G: 0x04, B: 0x02, A: 0xff}, Opacity: 1})
	h.GlowGeo = g.Geometry(gfx.Geometry{Shape: gfx.ShapeCircle, Dims: []float64{GlowRadius, 32}})
	h.GlowMat = g.Material(gfx.Material{Name: "ground-glow", Color: color.RGBA{R: 0x44, G: 0x22, B: 0x00, A: 0xff}, Opacity: 0.2, Blend: gfx.BlendAdditive})
	h.Sprite = g.Texture(gfx.Texture{Label: "radial", W: SpriteTexSize, H: SpriteTexSize})

	h.EmberGeo = g.Geometry(gfx.Geometry{Shape: gfx.ShapePoints, Points: embers.Capacity})
	h.EmberMat = g.Material(gfx.Material{Name: embers.Name, Color: embers.Color, Opacity: embers.OpacityBase, Size: embers.Size, Blend: gfx.BlendAdditive})
	h.BodyEmberGeo = g.Geometry(gfx.Geometry{Shape: gfx.ShapePoints, Points: body.Capacity})
	h.BodyEmberMat = g.Material(gfx.Material{Name: body.Name, Color: body.Color, Opacity: 0.3, Size: body.Size, Blend: gfx.BlendAdditive})
	return h
}

// Dispose releases the hearth resources. Safe to repeat.
func (h *Hearth) Dispose() {
	if h == nil {
		return
	}
	h.group.Dispose()
}
