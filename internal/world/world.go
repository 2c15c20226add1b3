// Package world builds the seeded forest that surrounds the fire: the tree
// ring, ground cover, sky and fireflies. Every client of a room derives the
// same placements from the room seed.
package world

import (
	"image/color"
	"math"
	"time"

	"campfire/internal/core"
	"campfire/internal/gfx"
	pcore "campfire/pkg/core"
)

// Tree silhouette proportions, in tree-local units before scaling.
const (
	TrunkRadius = 0.2
	TrunkHeight = 1.0
	ConeHeight  = 2.5
	ConeCount   = 3
)

// ConeRadius returns the base radius of cone i (0 is the lowest).
func ConeRadius(i int) float64 { return 1.5 - float64(i)*0.3 }

// ConeY returns the centre height of cone i.
func ConeY(i int) float64 { return 2 + float64(i)*1.5 }

// BladesPerClump is the number of blades in a grass clump.
const BladesPerClump = 5

// Tree is one silhouette in the outer ring.
type Tree struct {
	Position core.Vec3
	Scale    float64
	RotY     float64
}

// Blade is a single tilted grass plane, relative to its clump.
type Blade struct {
	Offset core.Vec3
	RotY   float64
	TiltX  float64
}

// GrassClump is a group of blades. AtTree marks the clumps planted at a trunk.
type GrassClump struct {
	Position core.Vec3
	Scale    float64
	RotY     float64
	AtTree   bool
	Blades   [BladesPerClump]Blade
}

// Boulder is a low-poly rock near the fire.
type Boulder struct {
	Position core.Vec3
	Radius   float64
	Rotation core.Vec3
	Geometry gfx.Handle
}

// MossPatch is a flat additive disc on the ground.
type MossPatch struct {
	Position core.Vec3
	Scale    float64
}

// Needle is a strip of forest litter lying flat.
type Needle struct {
	Position core.Vec3
	RotZ     float64
}

// Firefly is a drifting point light.
type Firefly struct {
	Position core.Vec3
	BaseY    float64
	Offset   float64
}

// Resources are the gfx handles a bundle owns. Foliage and Trunk belong to
// the shared Materials cache and are not released with the bundle.
type Resources struct {
	Foliage    gfx.Handle
	Trunk      gfx.Handle
	TrunkGeo   gfx.Handle
	ConeGeo    [ConeCount]gfx.Handle
	BladeGeo   gfx.Handle
	MossGeo    gfx.Handle
	MossMat    gfx.Handle
	NeedleGeo  gfx.Handle
	NeedleMat  gfx.Handle
	MistGeo    gfx.Handle
	MistMat    gfx.Handle
	StarGeo    gfx.Handle
	StarMat    gfx.Handle
	MoonGeo    gfx.Handle
	MoonMat    gfx.Handle
	HaloGeo    gfx.Handle
	HaloMat    gfx.Handle
	FireflyGeo gfx.Handle
	FireflyMat gfx.Handle
}

// Bundle is the output of one build. It is replaced wholesale on seed change.
type Bundle struct {
	// Seed is the effective seed, never zero.
	Seed    int64
	Visible bool

	Trees     []Tree
	Grass     []GrassClump
	Boulders  []Boulder
	Moss      []MossPatch
	Litter    []Needle
	Mist      []core.Vec3
	Stars     []core.Vec3
	Moon      core.Vec3
	Fireflies []Firefly

	// FireflyOpacity is refreshed by Drift.
	FireflyOpacity float64

	Resources Resources

	group      *gfx.Group
	pulsePhase float64
	disposed   bool
}

// Builder produces bundles. It owns the RNG exclusively for the duration of
// each build.
type Builder struct {
	cfg       Config
	arena     *gfx.Arena
	materials *Materials
	rng       *pcore.RNG
}

// NewBuilder creates a builder that allocates from arena and reuses materials.
func NewBuilder(cfg Config, arena *gfx.Arena, materials *Materials) *Builder {
	if materials == nil {
		materials = NewMaterials(arena)
	}
	return &Builder{cfg: cfg, arena: arena, materials: materials, rng: pcore.NewRNG(0)}
}

// Materials returns the shared material cache.
func (b *Builder) Materials() *Materials { return b.materials }

// Build resets the RNG and generates a bundle. The draw order is part of the
// cross-client contract: trees, boulders, grass, moss, litter, mist, stars,
// fireflies. Callers dispose the previous bundle first.
func (b *Builder) Build(seed int64, mode core.Mode, now time.Time) *Bundle {
	if seed == 0 {
		seed = pcore.DefaultSeed
	}
	b.rng.Seed(seed)
	b.materials.Ensure()

	p := b.cfg.Params
	g := gfx.NewGroup(b.arena)
	out := &Bundle{
		Seed:    seed,
		Visible: mode.IsChat(),
		group:   g,
	}
	res := &out.Resources
	res.Foliage = b.materials.Foliage
	res.Trunk = b.materials.Trunk
	res.TrunkGeo = g.Geometry(gfx.Geometry{Shape: gfx.ShapeCylinder, Dims: []float64{TrunkRadius, TrunkHeight, 8}})
	for i := range res.ConeGeo {
		res.ConeGeo[i] = g.Geometry(gfx.Geometry{Shape: gfx.ShapeCone, Dims: []float64{ConeRadius(i), ConeHeight, 8}})
	}
	res.BladeGeo = g.Geometry(gfx.Geometry{Shape: gfx.ShapePlane, Dims: []float64{0.8, 0.6}})

	// Tree ring. Slots inside the gap are skipped without drawing.
	for i := 0; i < p.TreeSlots; i++ {
		angle := float64(i) / float64(p.TreeSlots) * math.Pi * 2
		if angle > p.TreeGapMin && angle < p.TreeGapMax {
			continue
		}
		dist := p.TreeDistMin + b.rng.Next()*p.TreeDistSpan
		s := 1.6 + b.rng.Next()*2
		tree := Tree{
			Position: core.Polar(angle, dist, 0),
			Scale:    s,
			RotY:     b.rng.Next() * math.Pi,
		}
		out.Trees = append(out.Trees, tree)

		clump := b.grass()
		clump.Position = tree.Position
		clump.Scale = s * 0.5
		clump.AtTree = true
		out.Grass = append(out.Grass, clump)
	}

	for i := 0; i < p.Boulders; i++ {
		radius := 0.3 + b.rng.Next()*0.4
		angle := b.rng.Angle()
		dist := 3.5 + b.rng.Next()*2
		rot := core.Vec3{X: b.rng.Next(), Y: b.rng.Next(), Z: b.rng.Next()}
		out.Boulders = append(out.Boulders, Boulder{
			Position: core.Polar(angle, dist, 0.1),
			Radius:   radius,
			Rotation: rot,
			Geometry: g.Geometry(gfx.Geometry{Shape: gfx.ShapeIcosahedron, Dims: []float64{radius, 0}}),
		})
	}

	// Scattered grass. The angle is drawn before the gap test.
	for i := 0; i < p.GrassClumps; i++ {
		angle := b.rng.Angle()
		if angle > p.GrassGapMin && angle < p.GrassGapMax {
			continue
		}
		dist := 6 + b.rng.Next()*22
		clump := b.grass()
		clump.Position = core.Polar(angle, dist, 0)
		clump.Scale = 0.4 + b.rng.Next()*1.3
		clump.RotY = b.rng.Next() * math.Pi
		out.Grass = append(out.Grass, clump)
	}

	res.MossMat = g.Material(gfx.Material{
		Name:    "moss",
		Color:   color.RGBA{R: 0x01, G: 0x12, B: 0x01, A: 0xff},
		Opacity: 0.3,
		Blend:   gfx.BlendAdditive,
	})
	res.MossGeo = g.Geometry(gfx.Geometry{Shape: gfx.ShapeCircle, Dims: []float64{1, 12}})
	for i := 0; i < p.MossPatches; i++ {
		angle := b.rng.Angle()
		dist := 5 + b.rng.Next()*20
		out.Moss = append(out.Moss, MossPatch{
			Position: core.Polar(angle, dist, 0.01),
			Scale:    0.8 + b.rng.Next()*2.5,
		})
	}

	res.NeedleGeo = g.Geometry(gfx.Geometry{Shape: gfx.ShapePlane, Dims: []float64{0.18, 0.02}})
	res.NeedleMat = g.Material(gfx.Material{
		Name:    "needle",
		Color:   color.RGBA{R: 0x14, G: 0x0a, B: 0x00, A: 0xff},
		Opacity: 0.7,
	})
	for i := 0; i < p.Litter; i++ {
		angle := b.rng.Angle()
		dist := 4 + b.rng.Next()*18
		out.Litter = append(out.Litter, Needle{
			Position: core.Polar(angle, dist, 0.015),
			RotZ:     b.rng.Next() * math.Pi,
		})
	}

	for i := 0; i < p.MistPoints; i++ {
		angle := b.rng.Angle()
		dist := 6 + b.rng.Next()*15
		y := 0.1 + b.rng.Next()*0.5
		out.Mist = append(out.Mist, core.Polar(angle, dist, y))
	}
	res.MistGeo = g.Geometry(gfx.Geometry{Shape: gfx.ShapePoints, Points: len(out.Mist)})
	res.MistMat = g.Material(gfx.Material{
		Name:    "mist",
		Color:   color.RGBA{R: 0x44, G: 0x55, B: 0x66, A: 0xff},
		Opacity: 0.1,
		Size:    2.5,
		Blend:   gfx.BlendAdditive,
	})

	for i := 0; i < p.Stars; i++ {
		r := 40 + b.rng.Next()*20
		theta := b.rng.Angle()
		phi := b.rng.Next() * math.Pi * 0.5
		out.Stars = append(out.Stars, core.Vec3{
			X: r * math.Sin(phi) * math.Cos(theta),
			Y: r*math.Cos(phi) + 5,
			Z: r * math.Sin(phi) * math.Sin(theta),
		})
	}
	res.StarGeo = g.Geometry(gfx.Geometry{Shape: gfx.ShapePoints, Points: len(out.Stars)})
	res.StarMat = g.Material(gfx.Material{Name: "star", Color: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, Opacity: 0.8, Size: 0.1})

	res.MoonGeo = g.Geometry(gfx.Geometry{Shape: gfx.ShapeSphere, Dims: []float64{2.5, 32, 32}})
	res.MoonMat = g.Material(gfx.Material{Name: "moon", Color: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, Opacity: 1})
	res.HaloGeo = g.Geometry(gfx.Geometry{Shape: gfx.ShapeCircle, Dims: []float64{4, 32}})
	res.HaloMat = g.Material(gfx.Material{
		Name:    "halo",
		Color:   color.RGBA{R: 0x88, G: 0xcc, B: 0xff, A: 0xff},
		Opacity: 0.2,
		Blend:   gfx.BlendAdditive,
	})
	out.Moon = MoonPosition(now)

	for i := 0; i < p.Fireflies; i++ {
		angle := b.rng.Angle()
		dist := 4 + b.rng.Next()*8
		y := 0.5 + b.rng.Next()*3
		out.Fireflies = append(out.Fireflies, Firefly{
			Position: core.Polar(angle, dist, y),
			BaseY:    y,
			Offset:   b.rng.Next() * 100,
		})
	}
	res.FireflyGeo = g.Geometry(gfx.Geometry{Shape: gfx.ShapePoints, Points: len(out.Fireflies)})
	res.FireflyMat = g.Material(gfx.Material{
		Name:    "firefly",
		Color:   color.RGBA{R: 0xff, G: 0xcc, B: 0x00, A: 0xff},
		Opacity: 0.8,
		Size:    0.15,
		Blend:   gfx.BlendAdditive,
	})
	out.FireflyOpacity = 0.8
	out.pulsePhase = float64(b.rng.State())

	return out
}

// grass draws the ten blade values of one clump.
func (b *Builder) grass() GrassClump {
	var c GrassClump
	for i := range c.Blades {
		angle := float64(i) / BladesPerClump * math.Pi * 2
		dist := 0.4 + b.rng.Next()*0.5
		c.Blades[i] = Blade{
			Offset: core.Polar(angle, dist, 0.3),
			RotY:   angle + math.Pi/2,
			TiltX:  -0.2 - b.rng.Next()*0.3,
		}
	}
	return c
}

// MoonPosition places the moon on its slow wall-clock arc behind the forest.
func MoonPosition(now time.Time) core.Vec3 {
	t := core.Millis(now) * 0.000005
	x := math.Cos(t)
	return core.Vec3{X: x * 50, Y: 3 + (1-x*x)*8, Z: -50}
}

// SetVisible toggles forest visibility for the active mode.
func (b *Bundle) SetVisible(mode core.Mode) {
	if b == nil {
		return
	}
	b.Visible = mode.IsChat()
}

// Tick advances the moon and the fireflies.
func (b *Bundle) Tick(now time.Time) {
	if b == nil || b.disposed {
		return
	}
	b.Moon = MoonPosition(now)
	b.Drift(now)
}

// Drift moves fireflies along their phase-offset paths. Fireflies that stray
// beyond radius 20 are mirrored back across the clearing.
func (b *Bundle) Drift(now time.Time) {
	t := core.Millis(now) * 0.001
	for i := range b.Fireflies {
		f := &b.Fireflies[i]
		f.Position.X += math.Sin(t*0.5+f.Offset) * 0.005
		f.Position.Y = f.BaseY + math.Sin(t*0.3+f.Offset)*0.003
		f.Position.Z += math.Cos(t*0.5+f.Offset) * 0.005
		if f.Position.X*f.Position.X+f.Position.Z*f.Position.Z > 400 {
			f.Position.X *= -0.9
			f.Position.Z *= -0.9
		}
	}
	b.FireflyOpacity = 0.4 + math.Abs(math.Sin(t+b.pulsePhase))*0.6
}

// Disposed reports whether Dispose has run.
func (b *Bundle) Disposed() bool { return b == nil || b.disposed }

// Dispose releases every resource the bundle owns. Shared materials stay
// alive. Repeated calls are no-ops.
func (b *Bundle) Dispose() {
	if b == nil || b.disposed {
		return
	}
	b.group.Dispose()
	b.disposed = true
}
