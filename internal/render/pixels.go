package render

import (
	"image/color"
	"math"

	"campfire/internal/core"
	"campfire/internal/fire"
	"campfire/internal/gfx"
)

// fillRadialRGBA paints a size×size sprite into buf: col at the centre fading
// quadratically to transparent at the edge. Colours are premultiplied.
func fillRadialRGBA(buf []byte, size int, col color.RGBA) {
	half := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := (float64(x) + 0.5 - half) / half
			dy := (float64(y) + 0.5 - half) / half
			a := 1 - math.Hypot(dx, dy)
			if a < 0 {
				a = 0
			}
			a *= a
			base := (y*size + x) * 4
			buf[base+0] = uint8(float64(col.R) * a)
			buf[base+1] = uint8(float64(col.G) * a)
			buf[base+2] = uint8(float64(col.B) * a)
			buf[base+3] = uint8(float64(col.A) * a)
		}
	}
}

// rgba converts a linear colour and opacity into a premultiplied color.RGBA.
func rgba(c core.RGB, alpha float64) color.RGBA {
	alpha = core.Clamp(alpha, 0, 1)
	ch := func(v float64) uint8 { return uint8(math.Round(core.Clamp(v, 0, 1) * alpha * 255)) }
	return color.RGBA{R: ch(c.R), G: ch(c.G), B: ch(c.B), A: uint8(math.Round(alpha * 255))}
}

// shade lights a material: its base colour plus the emissive colour scaled by
// the emissive intensity and tinted by the fire.
func shade(m *gfx.Material, l fire.Light) core.RGB {
	if m == nil {
		return core.RGB{}
	}
	k := m.EmissiveIntensity * 4
	return core.RGB{
		R: float64(m.Color.R)/255 + float64(m.Emissive.R)/255*k*l.Color.R,
		G: float64(m.Color.G)/255 + float64(m.Emissive.G)/255*k*l.Color.G,
		B: float64(m.Color.B)/255 + float64(m.Emissive.B)/255*k*l.Color.B,
	}
}

// fogFactor fades distant objects when fog is on.
func fogFactor(depth float64, fog bool) float64 {
	if !fog {
		return 1
	}
	return core.Clamp(1-(depth-fogNear)/(fogFar-fogNear), 0.2, 1)
}

const (
	fogNear = 8
	fogFar  = 35
)
