package world

import (
	"image/color"

	"campfire/internal/gfx"
)

// Materials holds the foliage and trunk materials shared by every rebuild.
// They are created on first use and survive seed changes.
type Materials struct {
	arena   *gfx.Arena
	Foliage gfx.Handle
	Trunk   gfx.Handle
}

// NewMaterials returns an empty cache bound to arena.
func NewMaterials(arena *gfx.Arena) *Materials {
	return &Materials{arena: arena}
}

// Ensure creates any material that was never initialised or has been disposed.
func (m *Materials) Ensure() {
	if !m.arena.Alive(m.Foliage) {
		m.Foliage = m.arena.NewMaterial(gfx.Material{
			Name:              "foliage",
			Color:             color.RGBA{R: 0x01, G: 0x10, B: 0x01, A: 0xff},
			Emissive:          color.RGBA{R: 0x11, G: 0x08, B: 0x00, A: 0xff},
			EmissiveIntensity: 0.1,
			Opacity:           1,
			DoubleSided:       true,
		})
	}
	if !m.arena.Alive(m.Trunk) {
		m.Trunk = m.arena.NewMaterial(gfx.Material{
			Name:              "trunk",
			Color:             color.RGBA{R: 0x0a, G: 0x05, B: 0x00, A: 0xff},
			Emissive:          color.RGBA{R: 0x11, G: 0x08, B: 0x00, A: 0xff},
			EmissiveIntensity: 0.1,
			Opacity:           1,
			DoubleSided:       true,
		})
	}
}

// SetGlow updates the emissive intensity of both shared materials.
func (m *Materials) SetGlow(foliage, trunk float64) {
	if mat := m.arena.Material(m.Foliage); mat != nil {
		mat.EmissiveIntensity = foliage
	}
	if mat := m.arena.Material(m.Trunk); mat != nil {
		mat.EmissiveIntensity = trunk
	}
}

// Dispose releases both materials. It is safe to call repeatedly.
func (m *Materials) Dispose() {
	m.arena.Dispose(m.Foliage)
	m.arena.Dispose(m.Trunk)
}
