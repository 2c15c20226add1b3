// Package gfx tracks the geometry, material and texture resources a scene
// allocates so renderers can upload them and teardown can prove nothing leaks.
package gfx

import (
	"image/color"
	"sort"
)

// Kind classifies a resource.
type Kind uint8

const (
	KindGeometry Kind = iota + 1
	KindMaterial
	KindTexture
)

// Shape names a geometry primitive.
type Shape string

const (
	ShapeBox         Shape = "box"
	ShapeCylinder    Shape = "cylinder"
	ShapeCone        Shape = "cone"
	ShapeIcosahedron Shape = "icosahedron"
	ShapeSphere      Shape = "sphere"
	ShapePlane       Shape = "plane"
	ShapeCircle      Shape = "circle"
	ShapeRing        Shape = "ring"
	ShapeOutline     Shape = "outline"
	ShapePoints      Shape = "points"
)

// Blend selects how a material composites.
type Blend uint8

const (
	BlendNormal Blend = iota
	BlendAdditive
)

// Geometry describes a primitive. Dims are shape specific (radius, height,
// width, segments ...). Contours hold 2D outlines for ShapeOutline.
type Geometry struct {
	Shape    Shape
	Dims     []float64
	Contours [][][2]float64
	Points   int
}

// Material describes surface appearance.
type Material struct {
	Name              string
	Color             color.RGBA
	Emissive          color.RGBA
	EmissiveIntensity float64
	Opacity           float64
	Blend             Blend
	Size              float64
	DoubleSided       bool
}

// Texture describes generated image content, e.g. a bubble label.
type Texture struct {
	Label string
	Lines []string
	Glyph int
	W, H  int
}

// Handle references a live resource. The zero Handle is never valid.
type Handle uint32

type entry struct {
	kind     Kind
	geometry *Geometry
	material *Material
	texture  *Texture
}

// Arena owns resource descriptors. It is used from the scene tick only.
type Arena struct {
	next     Handle
	live     map[Handle]*entry
	disposed int
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{live: make(map[Handle]*entry)}
}

func (a *Arena) add(e *entry) Handle {
	a.next++
	a.live[a.next] = e
	return a.next
}

// NewGeometry registers a geometry descriptor.
func (a *Arena) NewGeometry(g Geometry) Handle {
	return a.add(&entry{kind: KindGeometry, geometry: &g})
}

// NewMaterial registers a material descriptor.
func (a *Arena) NewMaterial(m Material) Handle {
	return a.add(&entry{kind: KindMaterial, material: &m})
}

// NewTexture registers a texture descriptor.
func (a *Arena) NewTexture(t Texture) Handle {
	return a.add(&entry{kind: KindTexture, texture: &t})
}

// Geometry returns the descriptor for h, or nil if h is not a live geometry.
func (a *Arena) Geometry(h Handle) *Geometry {
	if e, ok := a.live[h]; ok && e.kind == KindGeometry {
		return e.geometry
	}
	return nil
}

// Material returns the descriptor for h, or nil if h is not a live material.
// Callers may mutate the returned descriptor (opacity, emissive intensity).
func (a *Arena) Material(h Handle) *Material {
	if e, ok := a.live[h]; ok && e.kind == KindMaterial {
		return e.material
	}
	return nil
}

// Texture returns the descriptor for h, or nil if h is not a live texture.
func (a *Arena) Texture(h Handle) *Texture {
	if e, ok := a.live[h]; ok && e.kind == KindTexture {
		return e.texture
	}
	return nil
}

// Alive reports whether h is live.
func (a *Arena) Alive(h Handle) bool {
	_, ok := a.live[h]
	return ok
}

// Dispose releases h. Disposing an unknown or already released handle is a no-op.
func (a *Arena) Dispose(h Handle) {
	if _, ok := a.live[h]; !ok {
		return
	}
	delete(a.live, h)
	a.disposed++
}

// Live reports the number of live resources, optionally filtered by kind
// (pass 0 for all kinds).
func (a *Arena) Live(kind Kind) int {
	if kind == 0 {
		return len(a.live)
	}
	n := 0
	for _, e := range a.live {
		if e.kind == kind {
			n++
		}
	}
	return n
}

// Disposed reports how many handles have been released over the arena's life.
func (a *Arena) Disposed() int { return a.disposed }

// Handles lists live handles in allocation order.
func (a *Arena) Handles() []Handle {
	out := make([]Handle, 0, len(a.live))
	for h := range a.live {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Group collects handles that share a lifetime.
type Group struct {
	arena   *Arena
	handles []Handle
}

// NewGroup returns a group that allocates from a.
func NewGroup(a *Arena) *Group {
	return &Group{arena: a}
}

// Geometry allocates and tracks a geometry.
func (g *Group) Geometry(desc Geometry) Handle {
	h := g.arena.NewGeometry(desc)
	g.handles = append(g.handles, h)
	return h
}

// Material allocates and tracks a material.
func (g *Group) Material(desc Material) Handle {
	h := g.arena.NewMaterial(desc)
	g.handles = append(g.handles, h)
	return h
}

// Texture allocates and tracks a texture.
func (g *Group) Texture(desc Texture) Handle {
	h := g.arena.NewTexture(desc)
	g.handles = append(g.handles, h)
	return h
}

// Len reports the number of tracked handles.
func (g *Group) Len() int {
	if g == nil {
		return 0
	}
	return len(g.handles)
}

// Dispose releases every tracked handle. It is safe to call repeatedly and on nil.
func (g *Group) Dispose() {
	if g == nil {
		return
	}
	for _, h := range g.handles {
		g.arena.Dispose(h)
	}
	g.handles = nil
}
